package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"tennis_club_backend/billing"
	"tennis_club_backend/middleware"
)

// statusFor maps engine errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, billing.ErrInvalidPeriod),
		errors.Is(err, billing.ErrInvalidLineItem),
		errors.Is(err, billing.ErrReasonRequired):
		return http.StatusBadRequest
	case errors.Is(err, billing.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, billing.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, billing.ErrInvalidTransition),
		errors.Is(err, billing.ErrConcurrentModification),
		errors.Is(err, billing.ErrDuplicatePeriod):
		return http.StatusConflict
	case errors.Is(err, billing.ErrInvalidInterval),
		errors.Is(err, billing.ErrNotParticipant),
		errors.Is(err, billing.ErrUnresolved):
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

func respondError(c *gin.Context, logger *zap.Logger, err error, fallback string) {
	status := statusFor(err)
	_ = c.Error(err)
	if status == http.StatusInternalServerError {
		logger.Error(fallback,
			zap.String("request_id", c.GetString(middleware.ContextRequestID)),
			zap.Error(err))
		c.JSON(status, gin.H{"error": fallback})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

// actorFrom builds the acting user from what AuthMiddleware stored.
func actorFrom(c *gin.Context) billing.Actor {
	actor := billing.Actor{UserID: c.GetInt(middleware.ContextUserID)}
	if clubs, ok := c.Get(middleware.ContextAdminClubs); ok {
		actor.AdminClubs, _ = clubs.([]int)
	}
	if clubs, ok := c.Get(middleware.ContextCoachClubs); ok {
		actor.CoachClubs, _ = clubs.([]int)
	}
	return actor
}

func paramID(c *gin.Context, name string) (int, bool) {
	id, err := parsePositive(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid " + name})
		return 0, false
	}
	return id, true
}
