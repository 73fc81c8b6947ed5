package billing_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"tennis_club_backend/billing"
	"tennis_club_backend/models"
	"tennis_club_backend/repository"
)

func batchStore(t *testing.T, coaches ...int) *repository.MemoryStore {
	t.Helper()
	store := repository.NewMemoryStore()
	for i, coach := range coaches {
		store.AddRegister(register(i+1, day(2026, time.May, 4+i), "Green Group", clock(16, 0), clock(17, 0), coach))
		addRates(t, store, rate(coach, "Green Group", models.RateTypeLead, "20"))
	}
	return store
}

func TestGenerateForCoaches(t *testing.T) {
	coaches := []int{21, 22, 23, 24, 25}
	store := batchStore(t, coaches...)
	batch := billing.NewBatchGenerator(billing.NewAggregator(store, nil), 2)

	outcomes, err := batch.GenerateForCoaches(context.Background(), clubID, coaches, 5, 2026)
	if err != nil {
		t.Fatalf("GenerateForCoaches: %v", err)
	}
	if len(outcomes) != len(coaches) {
		t.Fatalf("outcomes = %d, want %d", len(outcomes), len(coaches))
	}
	for i, o := range outcomes {
		if o.CoachID != coaches[i] {
			t.Errorf("outcome %d is for coach %d, want %d", i, o.CoachID, coaches[i])
		}
		if o.Err != nil || !o.Result.Created {
			t.Errorf("coach %d: %+v", o.CoachID, o)
		}
	}
	if store.InvoiceCount() != len(coaches) {
		t.Errorf("invoices = %d, want %d", store.InvoiceCount(), len(coaches))
	}

	again, err := batch.GenerateForCoaches(context.Background(), clubID, coaches, 5, 2026)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	for i, o := range again {
		if o.Result.Created || o.Result.InvoiceID != outcomes[i].Result.InvoiceID {
			t.Errorf("coach %d rerun = %+v, want existing invoice", o.CoachID, o.Result)
		}
	}
}

func TestGenerateForCoachesCollectsFailures(t *testing.T) {
	coaches := []int{21, 22, 23}
	store := batchStore(t, coaches...)
	store.AddRegister(register(50, day(2026, time.May, 20), "Green Group", clock(17, 0), clock(16, 0), 22))

	outcomes, err := billing.NewBatchGenerator(billing.NewAggregator(store, nil), 0).
		GenerateForCoaches(context.Background(), clubID, coaches, 5, 2026)

	var batchErr *billing.BatchError
	if !errors.As(err, &batchErr) {
		t.Fatalf("err = %v, want *BatchError", err)
	}
	if len(batchErr.Errors) != 1 || !errors.Is(err, billing.ErrInvalidInterval) {
		t.Errorf("batch errors = %v", batchErr.Errors)
	}
	if outcomes[1].Err == nil {
		t.Error("coach 22 should have failed")
	}
	for _, i := range []int{0, 2} {
		if outcomes[i].Err != nil || !outcomes[i].Result.Created {
			t.Errorf("coach %d: %+v", outcomes[i].CoachID, outcomes[i])
		}
	}
	if store.InvoiceCount() != 2 {
		t.Errorf("invoices = %d, want 2", store.InvoiceCount())
	}
}

func TestGenerateForCoachesCancelled(t *testing.T) {
	coaches := []int{21, 22, 23}
	store := batchStore(t, coaches...)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := billing.NewBatchGenerator(billing.NewAggregator(store, nil), 2).
		GenerateForCoaches(ctx, clubID, coaches, 5, 2026)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	if store.InvoiceCount() != 0 {
		t.Errorf("invoices = %d, want 0", store.InvoiceCount())
	}
}

func TestGenerateForCoachesEmpty(t *testing.T) {
	outcomes, err := billing.NewBatchGenerator(billing.NewAggregator(repository.NewMemoryStore(), nil), 4).
		GenerateForCoaches(context.Background(), clubID, nil, 5, 2026)
	if err != nil || len(outcomes) != 0 {
		t.Fatalf("outcomes = %v, err = %v", outcomes, err)
	}
}
