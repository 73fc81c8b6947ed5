package billing

import (
	"fmt"
	"slices"

	"tennis_club_backend/models"
)

// Classify reports the role coachID held on reg.
func Classify(reg models.AttendanceRegister, coachID int) (models.CoachRole, error) {
	if reg.LeadCoachID == coachID {
		return models.RoleLead, nil
	}
	if slices.Contains(reg.AssistantCoachIDs, coachID) {
		return models.RoleAssistant, nil
	}
	return "", fmt.Errorf("%w: coach %d, register %d", ErrNotParticipant, coachID, reg.ID)
}
