package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"tennis_club_backend/billing"
	"tennis_club_backend/models"
)

type RegisterLister interface {
	ListRegisters(ctx context.Context, coachID, clubID int, start, end time.Time) ([]models.AttendanceRegister, error)
}

type RegisterHandler struct {
	registers RegisterLister
	logger    *zap.Logger
}

func NewRegisterHandler(registers RegisterLister, logger *zap.Logger) *RegisterHandler {
	return &RegisterHandler{registers: registers, logger: logger}
}

// GetRegisters lists the sessions a coach worked at a club in one month,
// with the role they held on each.
func (h *RegisterHandler) GetRegisters(c *gin.Context) {
	clubID, err := parsePositive(c.Query("club_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "club_id is required"})
		return
	}
	month, err := strconv.Atoi(c.Query("month"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "month is required"})
		return
	}
	year, err := strconv.Atoi(c.Query("year"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "year is required"})
		return
	}
	start, end, err := billing.PeriodRange(month, year)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	requested, err := queryCoachID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid coach_id"})
		return
	}
	coachID, err := coachFor(c, clubID, requested)
	if err != nil {
		respondError(c, h.logger, err, "Failed to fetch registers")
		return
	}

	regs, err := h.registers.ListRegisters(c.Request.Context(), coachID, clubID, start, end)
	if err != nil {
		h.logger.Error("error fetching registers", zap.Int("coach_id", coachID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch registers"})
		return
	}

	resp := make([]models.RegisterResponse, 0, len(regs))
	for _, reg := range regs {
		role, err := billing.Classify(reg, coachID)
		if err != nil {
			continue
		}
		resp = append(resp, models.RegisterResponse{AttendanceRegister: reg, Role: role})
	}

	c.JSON(http.StatusOK, resp)
}
