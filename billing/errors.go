package billing

import (
	"errors"
	"fmt"

	"tennis_club_backend/models"
)

var (
	ErrInvalidInterval        = errors.New("session must end after it starts")
	ErrNotParticipant         = errors.New("coach is neither lead nor assistant on register")
	ErrUnresolved             = errors.New("no coaching rate found")
	ErrInvalidTransition      = errors.New("invalid invoice transition")
	ErrDuplicatePeriod        = errors.New("invoice already exists for period")
	ErrConcurrentModification = errors.New("invoice was modified concurrently, reload and retry")
	ErrNotFound               = errors.New("not found")
	ErrForbidden              = errors.New("not permitted for this user")
	ErrInvalidPeriod          = errors.New("invalid invoice period")
	ErrInvalidLineItem        = errors.New("invalid line item")
	ErrReasonRequired         = errors.New("rejection reason is required")
)

// TransitionError reports an action the invoice's current status has no edge for.
type TransitionError struct {
	Status models.InvoiceStatus
	Action Action
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("cannot %s an invoice in %s status", e.Action, e.Status)
}

func (e *TransitionError) Unwrap() error { return ErrInvalidTransition }
