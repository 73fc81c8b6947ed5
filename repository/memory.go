package repository

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"sort"
	"sync"
	"time"

	"tennis_club_backend/billing"
	"tennis_club_backend/models"
)

// MemoryStore keeps everything in process. Units of work run one at a time
// and are rolled back by restoring a snapshot taken before fn ran.
type MemoryStore struct {
	mu sync.Mutex

	registers   []models.AttendanceRegister
	rates       []models.CoachingRate
	invoices    map[int]models.Invoice
	lineItems   map[int]models.InvoiceLineItem
	clubAdmins  map[int][]int
	clubCoaches map[int][]int

	nextRateID    int
	nextInvoiceID int
	nextItemID    int
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		invoices:    make(map[int]models.Invoice),
		lineItems:   make(map[int]models.InvoiceLineItem),
		clubAdmins:  make(map[int][]int),
		clubCoaches: make(map[int][]int),
	}
}

type memorySnapshot struct {
	rates         []models.CoachingRate
	invoices      map[int]models.Invoice
	lineItems     map[int]models.InvoiceLineItem
	nextRateID    int
	nextInvoiceID int
	nextItemID    int
}

func (s *MemoryStore) snapshot() memorySnapshot {
	return memorySnapshot{
		rates:         slices.Clone(s.rates),
		invoices:      maps.Clone(s.invoices),
		lineItems:     maps.Clone(s.lineItems),
		nextRateID:    s.nextRateID,
		nextInvoiceID: s.nextInvoiceID,
		nextItemID:    s.nextItemID,
	}
}

func (s *MemoryStore) restore(snap memorySnapshot) {
	s.rates = snap.rates
	s.invoices = snap.invoices
	s.lineItems = snap.lineItems
	s.nextRateID = snap.nextRateID
	s.nextInvoiceID = snap.nextInvoiceID
	s.nextItemID = snap.nextItemID
}

func (s *MemoryStore) Do(ctx context.Context, fn func(billing.Repositories) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := s.snapshot()
	repos := billing.Repositories{
		Registers: memoryRegisters{s},
		Rates:     memoryRates{s},
		Invoices:  memoryInvoices{s},
	}
	if err := fn(repos); err != nil {
		s.restore(snap)
		return err
	}
	return nil
}

// AddRegister records a session. Registers come from scheduling, which this
// service does not own, so there is no SQL counterpart.
func (s *MemoryStore) AddRegister(reg models.AttendanceRegister) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.registers = append(s.registers, reg)
}

func (s *MemoryStore) SetClubAdmins(userID int, clubIDs ...int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clubAdmins[userID] = slices.Clone(clubIDs)
}

func (s *MemoryStore) AdminClubs(_ context.Context, userID int) ([]int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.clubAdmins[userID]), nil
}

func (s *MemoryStore) SetClubCoaches(userID int, clubIDs ...int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clubCoaches[userID] = slices.Clone(clubIDs)
}

func (s *MemoryStore) CoachClubs(_ context.Context, userID int) ([]int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.clubCoaches[userID]), nil
}

func (s *MemoryStore) Ping(ctx context.Context) error { return ctx.Err() }

func (s *MemoryStore) ListRates(ctx context.Context, coachID, clubID int) ([]models.CoachingRate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return memoryRates{s}.FindRates(ctx, coachID, clubID)
}

// UpsertRate creates the rate or replaces the one with the same
// (coach, club, name).
func (s *MemoryStore) UpsertRate(_ context.Context, rate models.CoachingRate) (models.CoachingRate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, r := range s.rates {
		if r.CoachID == rate.CoachID && r.ClubID == rate.ClubID && r.Name == rate.Name {
			rate.ID = r.ID
			s.rates[i] = rate
			return rate, nil
		}
	}
	s.nextRateID++
	rate.ID = s.nextRateID
	s.rates = append(s.rates, rate)
	return rate, nil
}

func (s *MemoryStore) ListRegisters(ctx context.Context, coachID, clubID int, start, end time.Time) ([]models.AttendanceRegister, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r := memoryRegisters{s}
	lead, err := r.FindByCoachAndDateRange(ctx, coachID, clubID, start, end, models.RoleLead)
	if err != nil {
		return nil, err
	}
	assist, err := r.FindByCoachAndDateRange(ctx, coachID, clubID, start, end, models.RoleAssistant)
	if err != nil {
		return nil, err
	}

	// A coach listed as both lead and assistant sees the register once.
	regs := lead
	for _, reg := range assist {
		if !slices.ContainsFunc(lead, func(l models.AttendanceRegister) bool { return l.ID == reg.ID }) {
			regs = append(regs, reg)
		}
	}
	sortRegisters(regs)
	return regs, nil
}

type memoryRegisters struct{ s *MemoryStore }

func (r memoryRegisters) FindByCoachAndDateRange(ctx context.Context, coachID, clubID int, start, end time.Time, role models.CoachRole) ([]models.AttendanceRegister, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var out []models.AttendanceRegister
	for _, reg := range r.s.registers {
		if reg.ClubID != clubID || reg.Date.Before(start) || reg.Date.After(end) {
			continue
		}
		switch role {
		case models.RoleLead:
			if reg.LeadCoachID != coachID {
				continue
			}
		case models.RoleAssistant:
			if !slices.Contains(reg.AssistantCoachIDs, coachID) {
				continue
			}
		default:
			return nil, fmt.Errorf("unknown coach role %q", role)
		}
		reg.AssistantCoachIDs = slices.Clone(reg.AssistantCoachIDs)
		out = append(out, reg)
	}
	sortRegisters(out)
	return out, nil
}

func sortRegisters(regs []models.AttendanceRegister) {
	sort.SliceStable(regs, func(i, j int) bool {
		if !regs[i].Date.Equal(regs[j].Date) {
			return regs[i].Date.Before(regs[j].Date)
		}
		return regs[i].TimeSlot.StartTime.Before(regs[j].TimeSlot.StartTime)
	})
}

type memoryRates struct{ s *MemoryStore }

func (r memoryRates) FindRates(_ context.Context, coachID, clubID int) ([]models.CoachingRate, error) {
	var out []models.CoachingRate
	for _, rate := range r.s.rates {
		if rate.CoachID == coachID && rate.ClubID == clubID {
			out = append(out, rate)
		}
	}
	return out, nil
}

type memoryInvoices struct{ s *MemoryStore }

func (r memoryInvoices) FindByPeriod(_ context.Context, coachID, clubID, month, year int) (*models.Invoice, error) {
	for _, inv := range r.s.invoices {
		if inv.CoachID == coachID && inv.ClubID == clubID && inv.Month == month && inv.Year == year {
			return &inv, nil
		}
	}
	return nil, nil
}

func (r memoryInvoices) FindByID(_ context.Context, id int) (*models.Invoice, error) {
	inv, ok := r.s.invoices[id]
	if !ok {
		return nil, fmt.Errorf("%w: invoice %d", billing.ErrNotFound, id)
	}
	return &inv, nil
}

// FindByIDForUpdate needs no lock of its own: Do already runs one unit of
// work at a time.
func (r memoryInvoices) FindByIDForUpdate(ctx context.Context, id int) (*models.Invoice, error) {
	return r.FindByID(ctx, id)
}

func (r memoryInvoices) Create(ctx context.Context, inv *models.Invoice) error {
	existing, _ := r.FindByPeriod(ctx, inv.CoachID, inv.ClubID, inv.Month, inv.Year)
	if existing != nil {
		return fmt.Errorf("%w: invoice %d", billing.ErrDuplicatePeriod, existing.ID)
	}
	r.s.nextInvoiceID++
	inv.ID = r.s.nextInvoiceID
	r.s.invoices[inv.ID] = *inv
	return nil
}

func (r memoryInvoices) Save(_ context.Context, inv *models.Invoice, expected models.InvoiceStatus) error {
	stored, ok := r.s.invoices[inv.ID]
	if !ok {
		return fmt.Errorf("%w: invoice %d", billing.ErrNotFound, inv.ID)
	}
	if stored.Status != expected {
		return fmt.Errorf("%w: invoice %d is %s, expected %s", billing.ErrConcurrentModification, inv.ID, stored.Status, expected)
	}
	r.s.invoices[inv.ID] = *inv
	return nil
}

func (r memoryInvoices) SaveLineItems(_ context.Context, items []models.InvoiceLineItem) ([]models.InvoiceLineItem, error) {
	saved := make([]models.InvoiceLineItem, 0, len(items))
	for _, item := range items {
		if _, ok := r.s.invoices[item.InvoiceID]; !ok {
			return nil, fmt.Errorf("%w: invoice %d", billing.ErrNotFound, item.InvoiceID)
		}
		r.s.nextItemID++
		item.ID = r.s.nextItemID
		r.s.lineItems[item.ID] = item
		saved = append(saved, item)
	}
	return saved, nil
}

func (r memoryInvoices) ListLineItems(_ context.Context, invoiceID int) ([]models.InvoiceLineItem, error) {
	var out []models.InvoiceLineItem
	for _, item := range r.s.lineItems {
		if item.InvoiceID == invoiceID {
			out = append(out, item)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Position != out[j].Position {
			return out[i].Position < out[j].Position
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r memoryInvoices) UpdateLineItem(_ context.Context, item models.InvoiceLineItem) error {
	stored, ok := r.s.lineItems[item.ID]
	if !ok || stored.InvoiceID != item.InvoiceID {
		return fmt.Errorf("%w: line item %d", billing.ErrNotFound, item.ID)
	}
	r.s.lineItems[item.ID] = item
	return nil
}

func (r memoryInvoices) DeleteLineItem(_ context.Context, invoiceID, itemID int) error {
	stored, ok := r.s.lineItems[itemID]
	if !ok || stored.InvoiceID != invoiceID {
		return fmt.Errorf("%w: line item %d", billing.ErrNotFound, itemID)
	}
	delete(r.s.lineItems, itemID)
	return nil
}

func (s *MemoryStore) InvoiceCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.invoices)
}

func (s *MemoryStore) LineItemCount(invoiceID int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, item := range s.lineItems {
		if item.InvoiceID == invoiceID {
			n++
		}
	}
	return n
}
