package billing

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"tennis_club_backend/models"
)

type Action string

const (
	ActionSubmit   Action = "submit"
	ActionApprove  Action = "approve"
	ActionReject   Action = "reject"
	ActionMarkPaid Action = "mark paid"
	ActionEdit     Action = "edit"
	ActionView     Action = "view"
)

// Actor is the user performing an operation.
type Actor struct {
	UserID     int
	AdminClubs []int
	CoachClubs []int
}

func (a Actor) IsAdminOf(clubID int) bool {
	return slices.Contains(a.AdminClubs, clubID)
}

func (a Actor) CoachesAt(clubID int) bool {
	return slices.Contains(a.CoachClubs, clubID)
}

type party uint8

const (
	partyOwner party = 1 << iota
	partyClubAdmin
)

func (a Actor) parties(inv *models.Invoice) party {
	var p party
	if inv.CoachID == a.UserID {
		p |= partyOwner
	}
	if a.IsAdminOf(inv.ClubID) {
		p |= partyClubAdmin
	}
	return p
}

type transition struct {
	to models.InvoiceStatus
	by party
}

var transitions = map[Action]map[models.InvoiceStatus]transition{
	ActionSubmit: {
		models.StatusDraft:    {to: models.StatusSubmitted, by: partyOwner},
		models.StatusRejected: {to: models.StatusSubmitted, by: partyOwner},
	},
	ActionApprove: {
		models.StatusSubmitted: {to: models.StatusApproved, by: partyClubAdmin},
	},
	ActionReject: {
		models.StatusSubmitted: {to: models.StatusRejected, by: partyClubAdmin},
	},
	ActionMarkPaid: {
		models.StatusApproved: {to: models.StatusPaid, by: partyClubAdmin},
	},
}

// editors lists who may change line items in each status. Statuses missing
// from the map admit no edits at all.
var editors = map[models.InvoiceStatus]party{
	models.StatusDraft:    partyOwner | partyClubAdmin,
	models.StatusApproved: partyClubAdmin,
	models.StatusRejected: partyOwner,
}

// CanTransition reports whether action has an edge out of status.
func CanTransition(status models.InvoiceStatus, action Action) bool {
	_, ok := transitions[action][status]
	return ok
}

// Lifecycle moves invoices through Draft, Submitted, Approved, Rejected and
// Paid, and guards line-item edits in each of those states.
type Lifecycle struct {
	store    Store
	notifier Notifier
	logger   *zap.Logger
	now      func() time.Time
}

func NewLifecycle(store Store, notifier Notifier, logger *zap.Logger) *Lifecycle {
	if logger == nil {
		logger = zap.NewNop()
	}
	if notifier == nil {
		notifier = NewLogNotifier(logger)
	}
	return &Lifecycle{
		store:    store,
		notifier: notifier,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (l *Lifecycle) WithClock(now func() time.Time) *Lifecycle {
	if now != nil {
		l.now = now
	}
	return l
}

// Get returns the invoice with its line items. Only the owning coach and the
// club's admins may see it.
func (l *Lifecycle) Get(ctx context.Context, invoiceID int, actor Actor) (*models.InvoiceDetail, error) {
	var detail *models.InvoiceDetail
	err := l.store.Do(ctx, func(repos Repositories) error {
		inv, err := repos.Invoices.FindByID(ctx, invoiceID)
		if err != nil {
			return err
		}
		if actor.parties(inv) == 0 {
			return forbidden(ActionView, inv)
		}
		items, err := repos.Invoices.ListLineItems(ctx, invoiceID)
		if err != nil {
			return err
		}
		detail = &models.InvoiceDetail{Invoice: *inv, LineItems: items}
		return nil
	})
	return detail, err
}

func (l *Lifecycle) Submit(ctx context.Context, invoiceID int, actor Actor) (*models.Invoice, error) {
	return l.transition(ctx, invoiceID, actor, ActionSubmit, "")
}

func (l *Lifecycle) Approve(ctx context.Context, invoiceID int, actor Actor) (*models.Invoice, error) {
	return l.transition(ctx, invoiceID, actor, ActionApprove, "")
}

func (l *Lifecycle) Reject(ctx context.Context, invoiceID int, actor Actor, reason string) (*models.Invoice, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, ErrReasonRequired
	}
	return l.transition(ctx, invoiceID, actor, ActionReject, reason)
}

func (l *Lifecycle) MarkPaid(ctx context.Context, invoiceID int, actor Actor) (*models.Invoice, error) {
	return l.transition(ctx, invoiceID, actor, ActionMarkPaid, "")
}

func (l *Lifecycle) transition(ctx context.Context, invoiceID int, actor Actor, action Action, reason string) (*models.Invoice, error) {
	var (
		inv  *models.Invoice
		from models.InvoiceStatus
	)
	err := l.store.Do(ctx, func(repos Repositories) error {
		var err error
		inv, err = repos.Invoices.FindByIDForUpdate(ctx, invoiceID)
		if err != nil {
			return err
		}

		t, ok := transitions[action][inv.Status]
		if !ok {
			return &TransitionError{Status: inv.Status, Action: action}
		}
		if actor.parties(inv)&t.by == 0 {
			return forbidden(action, inv)
		}

		from = inv.Status
		now := l.now()
		inv.Status = t.to
		inv.UpdatedAt = now
		switch action {
		case ActionSubmit:
			inv.SubmittedAt = &now
			inv.RejectionReason = ""
		case ActionApprove:
			approver := actor.UserID
			inv.ApprovedAt = &now
			inv.ApprovedBy = &approver
		case ActionReject:
			inv.RejectionReason = reason
		case ActionMarkPaid:
			inv.PaidAt = &now
		}
		return repos.Invoices.Save(ctx, inv, from)
	})
	if err != nil {
		return nil, err
	}

	l.logger.Info("invoice status changed",
		zap.Int("invoice_id", inv.ID),
		zap.String("from", string(from)),
		zap.String("to", string(inv.Status)),
		zap.Int("actor_id", actor.UserID))

	n := Notification{
		InvoiceID:    inv.ID,
		CoachID:      inv.CoachID,
		ClubID:       inv.ClubID,
		Status:       inv.Status,
		Reason:       reason,
		Resubmission: action == ActionSubmit && from == models.StatusRejected,
		At:           inv.UpdatedAt,
	}
	if err := l.notifier.Notify(ctx, n); err != nil {
		l.logger.Warn("invoice notification failed", zap.Int("invoice_id", inv.ID), zap.Error(err))
	}
	return inv, nil
}

// LineItemInput is a caller-supplied manual line item. Its amount is always
// derived from Hours and Rate.
type LineItemInput struct {
	ItemType    models.LineItemType
	IsDeduction bool
	Description string
	Date        time.Time
	Hours       decimal.Decimal
	Rate        decimal.Decimal
	Notes       string
}

func (in LineItemInput) validate() error {
	switch {
	case !in.ItemType.Valid():
		return fmt.Errorf("%w: unknown item type %q", ErrInvalidLineItem, in.ItemType)
	case strings.TrimSpace(in.Description) == "":
		return fmt.Errorf("%w: description is required", ErrInvalidLineItem)
	case in.Hours.IsNegative():
		return fmt.Errorf("%w: hours cannot be negative", ErrInvalidLineItem)
	case in.Rate.IsNegative():
		return fmt.Errorf("%w: rate cannot be negative", ErrInvalidLineItem)
	case in.Date.IsZero():
		return fmt.Errorf("%w: date is required", ErrInvalidLineItem)
	}
	return nil
}

func (in LineItemInput) apply(item *models.InvoiceLineItem) {
	item.ItemType = in.ItemType
	item.IsDeduction = in.IsDeduction
	item.Description = strings.TrimSpace(in.Description)
	item.Date = in.Date
	item.Hours = in.Hours
	item.Rate = in.Rate
	item.Notes = in.Notes
	item.Amount = LineAmount(in.Hours, in.Rate)
}

// AddLineItem appends a manual item and returns it with the refreshed totals.
func (l *Lifecycle) AddLineItem(ctx context.Context, invoiceID int, actor Actor, in LineItemInput) (models.InvoiceLineItem, models.Totals, error) {
	if err := in.validate(); err != nil {
		return models.InvoiceLineItem{}, models.Totals{}, err
	}

	var (
		item   models.InvoiceLineItem
		totals models.Totals
	)
	err := l.edit(ctx, invoiceID, actor, func(repos Repositories, items []models.InvoiceLineItem) ([]models.InvoiceLineItem, error) {
		item = models.InvoiceLineItem{InvoiceID: invoiceID, Position: nextPosition(items)}
		in.apply(&item)
		saved, err := repos.Invoices.SaveLineItems(ctx, []models.InvoiceLineItem{item})
		if err != nil {
			return nil, err
		}
		item = saved[0]
		return append(items, item), nil
	}, &totals)
	return item, totals, err
}

// UpdateLineItem replaces an item's editable fields. Items generated from a
// register keep their register link.
func (l *Lifecycle) UpdateLineItem(ctx context.Context, invoiceID, itemID int, actor Actor, in LineItemInput) (models.InvoiceLineItem, models.Totals, error) {
	if err := in.validate(); err != nil {
		return models.InvoiceLineItem{}, models.Totals{}, err
	}

	var (
		item   models.InvoiceLineItem
		totals models.Totals
	)
	err := l.edit(ctx, invoiceID, actor, func(repos Repositories, items []models.InvoiceLineItem) ([]models.InvoiceLineItem, error) {
		idx := slices.IndexFunc(items, func(it models.InvoiceLineItem) bool { return it.ID == itemID })
		if idx < 0 {
			return nil, fmt.Errorf("%w: line item %d on invoice %d", ErrNotFound, itemID, invoiceID)
		}
		in.apply(&items[idx])
		if err := repos.Invoices.UpdateLineItem(ctx, items[idx]); err != nil {
			return nil, err
		}
		item = items[idx]
		return items, nil
	}, &totals)
	return item, totals, err
}

func (l *Lifecycle) RemoveLineItem(ctx context.Context, invoiceID, itemID int, actor Actor) (models.Totals, error) {
	var totals models.Totals
	err := l.edit(ctx, invoiceID, actor, func(repos Repositories, items []models.InvoiceLineItem) ([]models.InvoiceLineItem, error) {
		idx := slices.IndexFunc(items, func(it models.InvoiceLineItem) bool { return it.ID == itemID })
		if idx < 0 {
			return nil, fmt.Errorf("%w: line item %d on invoice %d", ErrNotFound, itemID, invoiceID)
		}
		if err := repos.Invoices.DeleteLineItem(ctx, invoiceID, itemID); err != nil {
			return nil, err
		}
		return slices.Delete(items, idx, idx+1), nil
	}, &totals)
	return totals, err
}

type editFunc func(repos Repositories, items []models.InvoiceLineItem) ([]models.InvoiceLineItem, error)

// edit checks the actor may change the invoice in its current status, runs
// mutate, then recomputes and stores the totals in the same unit of work. The
// invoice is locked before its items are read, so totals always cover every
// committed item.
func (l *Lifecycle) edit(ctx context.Context, invoiceID int, actor Actor, mutate editFunc, totals *models.Totals) error {
	return l.store.Do(ctx, func(repos Repositories) error {
		inv, err := repos.Invoices.FindByIDForUpdate(ctx, invoiceID)
		if err != nil {
			return err
		}
		allowed, ok := editors[inv.Status]
		if !ok {
			return &TransitionError{Status: inv.Status, Action: ActionEdit}
		}
		if actor.parties(inv)&allowed == 0 {
			return forbidden(ActionEdit, inv)
		}

		items, err := repos.Invoices.ListLineItems(ctx, invoiceID)
		if err != nil {
			return err
		}
		items, err = mutate(repos, items)
		if err != nil {
			return err
		}

		inv.SetTotals(ComputeTotals(items))
		inv.UpdatedAt = l.now()
		if err := repos.Invoices.Save(ctx, inv, inv.Status); err != nil {
			return err
		}
		*totals = inv.Totals()
		return nil
	})
}

func nextPosition(items []models.InvoiceLineItem) int {
	pos := 0
	for _, it := range items {
		pos = max(pos, it.Position)
	}
	return pos + 1
}

func forbidden(action Action, inv *models.Invoice) error {
	return fmt.Errorf("%w: %s invoice %d in %s status", ErrForbidden, action, inv.ID, inv.Status)
}
