package billing

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"tennis_club_backend/models"
)

// Notification describes a lifecycle transition someone should hear about.
// Delivery is left to the Notifier.
type Notification struct {
	InvoiceID    int
	CoachID      int
	ClubID       int
	Status       models.InvoiceStatus
	Reason       string
	Resubmission bool
	At           time.Time
}

type Notifier interface {
	Notify(ctx context.Context, n Notification) error
}

type NotifierFunc func(ctx context.Context, n Notification) error

func (f NotifierFunc) Notify(ctx context.Context, n Notification) error { return f(ctx, n) }

// LogNotifier records notifications in the application log.
type LogNotifier struct {
	logger *zap.Logger
}

func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) Notify(_ context.Context, note Notification) error {
	fields := []zap.Field{
		zap.Int("invoice_id", note.InvoiceID),
		zap.Int("coach_id", note.CoachID),
		zap.Int("club_id", note.ClubID),
		zap.String("status", string(note.Status)),
		zap.Time("at", note.At),
	}
	if note.Reason != "" {
		fields = append(fields, zap.String("reason", note.Reason))
	}
	if note.Resubmission {
		fields = append(fields, zap.Bool("resubmission", true))
	}
	n.logger.Info("invoice notification", fields...)
	return nil
}

// MultiNotifier delivers to every notifier and joins their errors.
type MultiNotifier []Notifier

func (m MultiNotifier) Notify(ctx context.Context, n Notification) error {
	var errs []error
	for _, notifier := range m {
		if err := notifier.Notify(ctx, n); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
