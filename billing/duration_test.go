package billing_test

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"tennis_club_backend/billing"
)

func TestComputeBillableHours(t *testing.T) {
	date := day(2026, time.May, 4)
	tests := []struct {
		name       string
		start, end time.Time
		want       string
	}{
		{"full hour", clock(16, 0), clock(17, 0), "1"},
		{"forty five minutes stays exact", clock(16, 0), clock(16, 45), "0.75"},
		{"forty six minutes rounds up", clock(16, 0), clock(16, 46), "1"},
		{"fifty minutes rounds up", clock(16, 0), clock(16, 50), "1"},
		{"thirty minutes", clock(9, 0), clock(9, 30), "0.5"},
		{"ninety minutes", clock(9, 0), clock(10, 30), "2"},
		{"two and a half hours", clock(9, 0), clock(11, 30), "3"},
		{"two hours", clock(18, 0), clock(20, 0), "2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := billing.ComputeBillableHours(tt.start, tt.end, date)
			if err != nil {
				t.Fatalf("ComputeBillableHours: %v", err)
			}
			assertDecimal(t, "hours", got, dec(tt.want))
		})
	}
}

func TestComputeBillableHoursFortyMinutes(t *testing.T) {
	got, err := billing.ComputeBillableHours(clock(16, 0), clock(16, 40), day(2026, time.May, 4))
	if err != nil {
		t.Fatalf("ComputeBillableHours: %v", err)
	}
	assertDecimal(t, "hours rounded to 3 places", got.Round(3), dec("0.667"))
	assertDecimal(t, "amount at 15/hr", billing.LineAmount(got, dec("15")), dec("10.00"))
}

func TestComputeBillableHoursInvalidInterval(t *testing.T) {
	date := day(2026, time.May, 4)
	cases := map[string][2]time.Time{
		"zero length":       {clock(16, 0), clock(16, 0)},
		"ends before start": {clock(17, 0), clock(16, 0)},
	}
	for name, c := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := billing.ComputeBillableHours(c[0], c[1], date)
			if !errors.Is(err, billing.ErrInvalidInterval) {
				t.Fatalf("err = %v, want ErrInvalidInterval", err)
			}
		})
	}
}

func TestComputeBillableHoursNeverUnderbills(t *testing.T) {
	date := day(2026, time.June, 1)
	sixty := decimal.NewFromInt(60)
	for minutes := 1; minutes <= 300; minutes++ {
		end := clock(8, 0).Add(time.Duration(minutes) * time.Minute)
		got, err := billing.ComputeBillableHours(clock(8, 0), end, date)
		if err != nil {
			t.Fatalf("%d minutes: %v", minutes, err)
		}
		exact := decimal.NewFromInt(int64(minutes)).Div(sixty)
		if got.LessThan(exact) {
			t.Errorf("%d minutes billed %s hours, less than %s", minutes, got, exact)
		}
		if minutes > 45 && !got.Equal(got.Truncate(0)) {
			t.Errorf("%d minutes billed %s hours, want a whole number", minutes, got)
		}
	}
}

func TestComputeBillableHoursIgnoresDateZone(t *testing.T) {
	// A day on which clocks change in many zones.
	zoned := time.Date(2026, time.March, 29, 0, 0, 0, 0, time.FixedZone("UTC+2", 2*60*60))
	got, err := billing.ComputeBillableHours(clock(1, 30), clock(3, 30), zoned)
	if err != nil {
		t.Fatalf("ComputeBillableHours: %v", err)
	}
	assertDecimal(t, "hours", got, dec("2"))
}
