package billing_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"tennis_club_backend/models"
	"tennis_club_backend/repository"
)

const (
	clubID  = 1
	coachID = 7
	adminID = 100
)

func clock(h, m int) time.Time {
	return time.Date(0, 1, 1, h, m, 0, 0, time.UTC)
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func register(id int, date time.Time, group string, start, end time.Time, lead int, assistants ...int) models.AttendanceRegister {
	return models.AttendanceRegister{
		ID:     id,
		ClubID: clubID,
		Date:   date,
		TimeSlot: models.TimeSlot{
			ID:        id,
			DayOfWeek: date.Weekday().String(),
			StartTime: start,
			EndTime:   end,
			GroupName: group,
		},
		LeadCoachID:       lead,
		AssistantCoachIDs: assistants,
	}
}

func rate(coach int, name string, t models.RateType, hourly string) models.CoachingRate {
	return models.CoachingRate{
		CoachID:    coach,
		ClubID:     clubID,
		Name:       name,
		RateType:   t,
		HourlyRate: dec(hourly),
	}
}

func addRates(t *testing.T, store *repository.MemoryStore, rates ...models.CoachingRate) {
	t.Helper()
	for _, r := range rates {
		if _, err := store.UpsertRate(context.Background(), r); err != nil {
			t.Fatalf("UpsertRate: %v", err)
		}
	}
}

func assertDecimal(t *testing.T, name string, got, want decimal.Decimal) {
	t.Helper()
	if !got.Equal(want) {
		t.Errorf("%s = %s, want %s", name, got, want)
	}
}
