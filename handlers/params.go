package handlers

import (
	"fmt"
	"strconv"

	"github.com/gin-gonic/gin"

	"tennis_club_backend/billing"
)

func parsePositive(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, err
	}
	if n <= 0 {
		return 0, fmt.Errorf("must be positive, got %d", n)
	}
	return n, nil
}

// coachFor resolves whose data a request targets: the caller by default, or
// another coach when the caller administers clubID. Callers acting for
// themselves must coach at or administer clubID.
func coachFor(c *gin.Context, clubID int, requested *int) (int, error) {
	actor := actorFrom(c)
	switch {
	case actor.IsAdminOf(clubID):
		if requested != nil {
			return *requested, nil
		}
		return actor.UserID, nil
	case requested != nil && *requested != actor.UserID:
		return 0, fmt.Errorf("%w: only club admins can act for other coaches", billing.ErrForbidden)
	case !actor.CoachesAt(clubID):
		return 0, fmt.Errorf("%w: user %d is not a coach at club %d", billing.ErrForbidden, actor.UserID, clubID)
	}
	return actor.UserID, nil
}

func queryCoachID(c *gin.Context) (*int, error) {
	raw := c.Query("coach_id")
	if raw == "" {
		return nil, nil
	}
	id, err := parsePositive(raw)
	if err != nil {
		return nil, err
	}
	return &id, nil
}
