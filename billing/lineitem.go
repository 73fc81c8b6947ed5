package billing

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"tennis_club_backend/models"
)

// LineItemGenerator turns attendance registers into invoice line items for
// one coach, pricing them from a RateCatalog.
type LineItemGenerator struct {
	catalog *RateCatalog
	logger  *zap.Logger
}

func NewLineItemGenerator(catalog *RateCatalog, logger *zap.Logger) *LineItemGenerator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LineItemGenerator{catalog: catalog, logger: logger}
}

// Generate builds the line item for coachID's part in reg. A missing rate
// does not fail: the item is priced at zero and its notes say so.
func (g *LineItemGenerator) Generate(reg models.AttendanceRegister, coachID int, role models.CoachRole) (models.InvoiceLineItem, error) {
	hours, err := ComputeBillableHours(reg.TimeSlot.StartTime, reg.TimeSlot.EndTime, reg.Date)
	if err != nil {
		return models.InvoiceLineItem{}, fmt.Errorf("register %d: %w", reg.ID, err)
	}

	registerID := reg.ID
	item := models.InvoiceLineItem{
		RegisterID:  &registerID,
		ItemType:    itemTypeFor(role),
		Description: Describe(reg.TimeSlot.GroupName, reg.TimeSlot.DayOfWeek, role),
		Date:        reg.Date,
		Hours:       hours,
		Rate:        decimal.Zero,
	}

	res, err := g.catalog.Resolve(reg.TimeSlot.GroupName, role)
	switch {
	case errors.Is(err, ErrUnresolved):
		g.logger.Warn("coaching rate not found, billing session at zero",
			zap.Int("coach_id", coachID),
			zap.Int("club_id", reg.ClubID),
			zap.Int("register_id", reg.ID),
			zap.String("group", reg.TimeSlot.GroupName),
			zap.String("role", string(role)))
		item.Notes = RateNotFoundNote
	case err != nil:
		return models.InvoiceLineItem{}, err
	default:
		item.Rate = res.HourlyRate
		item.Notes = res.Note()
	}

	item.Amount = LineAmount(item.Hours, item.Rate)
	return item, nil
}

// Describe formats a session line, e.g. "Green Group - Monday (Lead Coach)".
func Describe(groupName, dayOfWeek string, role models.CoachRole) string {
	return fmt.Sprintf("%s - %s (%s Coach)", groupName, dayOfWeek, role)
}

func itemTypeFor(role models.CoachRole) models.LineItemType {
	if role == models.RoleAssistant {
		return models.ItemAssistantCoaching
	}
	return models.ItemLeadCoaching
}
