package billing

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

var (
	minutesPerHour   = decimal.NewFromInt(60)
	roundUpThreshold = decimal.NewFromInt(45)
)

// ComputeBillableHours converts a session's clock times on date into billable
// hours. Sessions longer than 45 minutes are rounded up to the next full hour;
// shorter ones bill the exact fraction of an hour.
func ComputeBillableHours(start, end, date time.Time) (decimal.Decimal, error) {
	from := onDate(date, start)
	to := onDate(date, end)
	if !to.After(from) {
		return decimal.Zero, fmt.Errorf("%w: %s-%s on %s", ErrInvalidInterval,
			start.Format("15:04"), end.Format("15:04"), date.Format(time.DateOnly))
	}

	minutes := decimal.NewFromFloat(to.Sub(from).Minutes())
	hours := minutes.Div(minutesPerHour)
	if minutes.GreaterThan(roundUpThreshold) {
		return hours.Ceil(), nil
	}
	return hours, nil
}

// onDate places a clock time on the given calendar day in UTC so DST changes
// never alter a session's length.
func onDate(date, clock time.Time) time.Time {
	y, m, d := date.Date()
	return time.Date(y, m, d, clock.Hour(), clock.Minute(), clock.Second(), 0, time.UTC)
}
