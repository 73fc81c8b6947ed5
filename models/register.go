package models

import "time"

// TimeSlot is the weekly slot a register was recorded against.
type TimeSlot struct {
	ID        int       `json:"id"`
	DayOfWeek string    `json:"day_of_week"`
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
	GroupID   int       `json:"group_id"`
	GroupName string    `json:"group_name"`
}

// AttendanceRegister is one coached session instance.
type AttendanceRegister struct {
	ID                int       `json:"id"`
	ClubID            int       `json:"club_id"`
	Date              time.Time `json:"date"`
	TimeSlot          TimeSlot  `json:"time_slot"`
	LeadCoachID       int       `json:"lead_coach_id"`
	AssistantCoachIDs []int     `json:"assistant_coach_ids"`
}

type CoachRole string

const (
	RoleLead      CoachRole = "Lead"
	RoleAssistant CoachRole = "Assistant"
)

// RateType maps a coaching role onto the rate type billed for it.
func (r CoachRole) RateType() RateType {
	if r == RoleAssistant {
		return RateTypeAssistant
	}
	return RateTypeLead
}

type RegisterResponse struct {
	AttendanceRegister
	Role CoachRole `json:"role"`
}
