package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"tennis_club_backend/models"
)

type RateStore interface {
	ListRates(ctx context.Context, coachID, clubID int) ([]models.CoachingRate, error)
	UpsertRate(ctx context.Context, rate models.CoachingRate) (models.CoachingRate, error)
}

type RateHandler struct {
	store  RateStore
	logger *zap.Logger
}

func NewRateHandler(store RateStore, logger *zap.Logger) *RateHandler {
	return &RateHandler{store: store, logger: logger}
}

// UpsertRate creates or replaces a coaching rate, keyed by its name.
func (h *RateHandler) UpsertRate(c *gin.Context) {
	var req models.UpsertRateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.HourlyRate.IsNegative() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "hourly_rate cannot be negative"})
		return
	}

	coachID, err := coachFor(c, req.ClubID, req.CoachID)
	if err != nil {
		respondError(c, h.logger, err, "Failed to save rate")
		return
	}

	rate, err := h.store.UpsertRate(c.Request.Context(), models.CoachingRate{
		CoachID:    coachID,
		ClubID:     req.ClubID,
		Name:       req.Name,
		RateType:   req.RateType,
		HourlyRate: req.HourlyRate,
	})
	if err != nil {
		h.logger.Error("error saving coaching rate", zap.Int("coach_id", coachID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save rate"})
		return
	}

	c.JSON(http.StatusOK, rate)
}

// GetRates lists a coach's rates at a club.
func (h *RateHandler) GetRates(c *gin.Context) {
	clubID, err := parsePositive(c.Query("club_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "club_id is required"})
		return
	}
	requested, err := queryCoachID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid coach_id"})
		return
	}
	coachID, err := coachFor(c, clubID, requested)
	if err != nil {
		respondError(c, h.logger, err, "Failed to fetch rates")
		return
	}

	rates, err := h.store.ListRates(c.Request.Context(), coachID, clubID)
	if err != nil {
		h.logger.Error("error fetching coaching rates", zap.Int("coach_id", coachID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch rates"})
		return
	}
	if rates == nil {
		rates = []models.CoachingRate{}
	}

	c.JSON(http.StatusOK, rates)
}
