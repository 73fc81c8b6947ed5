package billing

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// CoachOutcome is the result of generating one coach's invoice in a batch.
type CoachOutcome struct {
	CoachID int
	Result  GenerateResult
	Err     error
}

// BatchError accumulates per-coach failures from a batch run.
type BatchError struct {
	Errors []error
}

func (e *BatchError) Error() string {
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	msg := fmt.Sprintf("%d invoices failed:", len(e.Errors))
	for _, err := range e.Errors {
		msg += " " + err.Error() + ";"
	}
	return msg
}

func (e *BatchError) Unwrap() []error { return e.Errors }

// BatchGenerator runs end-of-month generation for many coaches. Each coach's
// invoice touches only that coach's data, so coaches run in parallel.
type BatchGenerator struct {
	aggregator *Aggregator
	workers    int
}

func NewBatchGenerator(aggregator *Aggregator, workers int) *BatchGenerator {
	if workers <= 0 {
		workers = 4
	}
	return &BatchGenerator{aggregator: aggregator, workers: workers}
}

// GenerateForCoaches returns one outcome per coach, in input order. The error
// is a *BatchError when any coach failed, or the context error if cancelled.
func (b *BatchGenerator) GenerateForCoaches(ctx context.Context, clubID int, coachIDs []int, month, year int) ([]CoachOutcome, error) {
	outcomes := make([]CoachOutcome, len(coachIDs))
	if len(coachIDs) == 0 {
		return outcomes, nil
	}

	indexCh := make(chan int)
	var wg sync.WaitGroup
	for i := 0; i < min(b.workers, len(coachIDs)); i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range indexCh {
				coachID := coachIDs[idx]
				res, err := b.aggregator.GenerateInvoice(ctx, coachID, clubID, month, year)
				if err != nil {
					err = fmt.Errorf("coach %d: %w", coachID, err)
				}
				outcomes[idx] = CoachOutcome{CoachID: coachID, Result: res, Err: err}
			}
		}()
	}

Loop:
	for i := range coachIDs {
		select {
		case indexCh <- i:
		case <-ctx.Done():
			break Loop
		}
	}
	close(indexCh)
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return outcomes, err
	}

	var batchErr BatchError
	for _, o := range outcomes {
		if o.Err == nil {
			continue
		}
		if errors.Is(o.Err, context.Canceled) || errors.Is(o.Err, context.DeadlineExceeded) {
			return outcomes, o.Err
		}
		batchErr.Errors = append(batchErr.Errors, o.Err)
	}
	if len(batchErr.Errors) > 0 {
		return outcomes, &batchErr
	}
	return outcomes, nil
}
