package billing

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"tennis_club_backend/models"
)

type GenerateResult struct {
	InvoiceID int
	Created   bool
}

// Aggregator builds a coach's monthly invoice from their attendance registers.
type Aggregator struct {
	store  Store
	logger *zap.Logger
	now    func() time.Time
}

func NewAggregator(store Store, logger *zap.Logger) *Aggregator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Aggregator{
		store:  store,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// WithClock overrides the aggregator's time source.
func (a *Aggregator) WithClock(now func() time.Time) *Aggregator {
	if now != nil {
		a.now = now
	}
	return a
}

// GenerateInvoice creates the Draft invoice for (coachID, clubID, month,
// year). If one already exists its id is returned untouched, so calling this
// again is always safe.
func (a *Aggregator) GenerateInvoice(ctx context.Context, coachID, clubID, month, year int) (GenerateResult, error) {
	start, end, err := PeriodRange(month, year)
	if err != nil {
		return GenerateResult{}, err
	}

	var result GenerateResult
	err = a.store.Do(ctx, func(repos Repositories) error {
		existing, err := repos.Invoices.FindByPeriod(ctx, coachID, clubID, month, year)
		if err != nil {
			return err
		}
		if existing != nil {
			result = GenerateResult{InvoiceID: existing.ID}
			return nil
		}

		id, err := a.create(ctx, repos, coachID, clubID, month, year, start, end)
		if err != nil {
			return err
		}
		result = GenerateResult{InvoiceID: id, Created: true}
		return nil
	})

	if errors.Is(err, ErrDuplicatePeriod) {
		// A concurrent request created the invoice between our check and insert.
		return a.existing(ctx, coachID, clubID, month, year)
	}
	if err != nil {
		return GenerateResult{}, err
	}

	if result.Created {
		a.logger.Info("invoice generated",
			zap.Int("invoice_id", result.InvoiceID),
			zap.Int("coach_id", coachID),
			zap.Int("club_id", clubID),
			zap.Int("month", month),
			zap.Int("year", year))
	} else {
		a.logger.Debug("invoice already exists for period",
			zap.Int("invoice_id", result.InvoiceID),
			zap.Int("coach_id", coachID))
	}
	return result, nil
}

func (a *Aggregator) create(ctx context.Context, repos Repositories, coachID, clubID, month, year int, start, end time.Time) (int, error) {
	now := a.now()
	inv := &models.Invoice{
		CoachID:       coachID,
		ClubID:        clubID,
		Month:         month,
		Year:          year,
		Status:        models.StatusDraft,
		InvoiceNumber: InvoiceNumber(coachID, clubID, month, year),
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := repos.Invoices.Create(ctx, inv); err != nil {
		return 0, err
	}

	items, err := a.buildLineItems(ctx, repos, coachID, clubID, start, end)
	if err != nil {
		return 0, err
	}
	for i := range items {
		items[i].InvoiceID = inv.ID
		items[i].Position = i + 1
	}

	saved, err := repos.Invoices.SaveLineItems(ctx, items)
	if err != nil {
		return 0, err
	}

	inv.SetTotals(ComputeTotals(saved))
	if err := repos.Invoices.Save(ctx, inv, models.StatusDraft); err != nil {
		return 0, err
	}
	return inv.ID, nil
}

// buildLineItems reads rates once and registers once per role, then prices
// every session in the order it was held.
func (a *Aggregator) buildLineItems(ctx context.Context, repos Repositories, coachID, clubID int, start, end time.Time) ([]models.InvoiceLineItem, error) {
	rates, err := repos.Rates.FindRates(ctx, coachID, clubID)
	if err != nil {
		return nil, fmt.Errorf("loading rates: %w", err)
	}
	gen := NewLineItemGenerator(NewRateCatalog(rates), a.logger)

	var registers []models.AttendanceRegister
	for _, role := range []models.CoachRole{models.RoleLead, models.RoleAssistant} {
		regs, err := repos.Registers.FindByCoachAndDateRange(ctx, coachID, clubID, start, end, role)
		if err != nil {
			return nil, fmt.Errorf("loading %s registers: %w", role, err)
		}
		registers = append(registers, regs...)
	}

	registers = uniqueRegisters(registers)
	sort.SliceStable(registers, func(i, j int) bool {
		return sessionStart(registers[i]).Before(sessionStart(registers[j]))
	})

	items := make([]models.InvoiceLineItem, 0, len(registers))
	for _, reg := range registers {
		role, err := Classify(reg, coachID)
		if err != nil {
			return nil, err
		}
		item, err := gen.Generate(reg, coachID, role)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}

func uniqueRegisters(regs []models.AttendanceRegister) []models.AttendanceRegister {
	seen := make(map[int]bool, len(regs))
	out := regs[:0]
	for _, reg := range regs {
		if seen[reg.ID] {
			continue
		}
		seen[reg.ID] = true
		out = append(out, reg)
	}
	return out
}

func sessionStart(reg models.AttendanceRegister) time.Time {
	return onDate(reg.Date, reg.TimeSlot.StartTime)
}

func (a *Aggregator) existing(ctx context.Context, coachID, clubID, month, year int) (GenerateResult, error) {
	var inv *models.Invoice
	err := a.store.Do(ctx, func(repos Repositories) error {
		var err error
		inv, err = repos.Invoices.FindByPeriod(ctx, coachID, clubID, month, year)
		return err
	})
	if err != nil {
		return GenerateResult{}, err
	}
	if inv == nil {
		return GenerateResult{}, fmt.Errorf("%w: conflicting invoice for coach %d %04d-%02d vanished", ErrNotFound, coachID, year, month)
	}
	return GenerateResult{InvoiceID: inv.ID}, nil
}

// PeriodRange returns the first and last day of the month.
func PeriodRange(month, year int) (time.Time, time.Time, error) {
	if month < 1 || month > 12 || year <= 0 {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: month %d, year %d", ErrInvalidPeriod, month, year)
	}
	first := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	last := first.AddDate(0, 1, -1)
	return first, last, nil
}

func InvoiceNumber(coachID, clubID, month, year int) string {
	return fmt.Sprintf("INV-%04d%02d-%d-%d", year, month, clubID, coachID)
}
