package billing

import (
	"context"
	"time"

	"tennis_club_backend/models"
)

type RegisterRepository interface {
	// FindByCoachAndDateRange returns the club's registers dated within
	// [start, end] on which coachID held role, ordered by date and start time.
	FindByCoachAndDateRange(ctx context.Context, coachID, clubID int, start, end time.Time, role models.CoachRole) ([]models.AttendanceRegister, error)
}

type RateRepository interface {
	FindRates(ctx context.Context, coachID, clubID int) ([]models.CoachingRate, error)
}

type InvoiceRepository interface {
	// FindByPeriod returns nil, nil when no invoice exists for the period.
	FindByPeriod(ctx context.Context, coachID, clubID, month, year int) (*models.Invoice, error)
	FindByID(ctx context.Context, id int) (*models.Invoice, error)
	// FindByIDForUpdate is FindByID that also locks the invoice until the
	// unit of work ends, so writers to the same invoice run one after another.
	FindByIDForUpdate(ctx context.Context, id int) (*models.Invoice, error)
	// Create assigns inv.ID. It returns ErrDuplicatePeriod when another
	// invoice already holds the (coach, club, month, year) slot.
	Create(ctx context.Context, inv *models.Invoice) error
	// Save persists inv only if the stored status still equals expected,
	// returning ErrConcurrentModification otherwise.
	Save(ctx context.Context, inv *models.Invoice, expected models.InvoiceStatus) error
	SaveLineItems(ctx context.Context, items []models.InvoiceLineItem) ([]models.InvoiceLineItem, error)
	ListLineItems(ctx context.Context, invoiceID int) ([]models.InvoiceLineItem, error)
	UpdateLineItem(ctx context.Context, item models.InvoiceLineItem) error
	DeleteLineItem(ctx context.Context, invoiceID, itemID int) error
}

type Repositories struct {
	Registers RegisterRepository
	Rates     RateRepository
	Invoices  InvoiceRepository
}

// Store runs fn as one atomic unit: if fn returns an error nothing it wrote
// is kept.
type Store interface {
	Do(ctx context.Context, fn func(Repositories) error) error
}
