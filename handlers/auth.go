package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"tennis_club_backend/models"
)

type AuthHandler struct{}

func NewAuthHandler() *AuthHandler {
	return &AuthHandler{}
}

// GetUserInfo reports the authenticated user and the clubs they administer
// or coach at.
func (h *AuthHandler) GetUserInfo(c *gin.Context) {
	actor := actorFrom(c)
	c.JSON(http.StatusOK, models.UserInfoResponse{
		UserID:     actor.UserID,
		AdminClubs: orEmpty(actor.AdminClubs),
		CoachClubs: orEmpty(actor.CoachClubs),
	})
}

func orEmpty(clubs []int) []int {
	if clubs == nil {
		return []int{}
	}
	return clubs
}
