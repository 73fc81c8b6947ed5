package models

import "github.com/shopspring/decimal"

type RateType string

const (
	RateTypeLead      RateType = "Lead"
	RateTypeAssistant RateType = "Assistant"
	RateTypeAdmin     RateType = "Admin"
	RateTypeOther     RateType = "Other"
)

func (t RateType) Valid() bool {
	switch t {
	case RateTypeLead, RateTypeAssistant, RateTypeAdmin, RateTypeOther:
		return true
	}
	return false
}

// CoachingRate is an hourly rate a coach has defined for a club.
// (coach, club, name) is unique.
type CoachingRate struct {
	ID         int             `json:"id"`
	CoachID    int             `json:"coach_id"`
	ClubID     int             `json:"club_id"`
	Name       string          `json:"name"`
	RateType   RateType        `json:"rate_type"`
	HourlyRate decimal.Decimal `json:"hourly_rate"`
}

type UpsertRateRequest struct {
	ClubID     int             `json:"club_id" binding:"required"`
	CoachID    *int            `json:"coach_id"`
	Name       string          `json:"name" binding:"required"`
	RateType   RateType        `json:"rate_type" binding:"required,oneof=Lead Assistant Admin Other"`
	HourlyRate decimal.Decimal `json:"hourly_rate"`
}
