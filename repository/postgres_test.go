package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"tennis_club_backend/billing"
	"tennis_club_backend/models"
)

func newMockStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() {
		db.Close()
	})
	return NewStore(db), mock
}

func expectationsMet(t *testing.T, mock sqlmock.Sqlmock) {
	t.Helper()
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestStoreDoCommits(t *testing.T) {
	s, mock := newMockStore(t)
	mock.ExpectBegin()
	mock.ExpectCommit()

	if err := s.Do(context.Background(), func(billing.Repositories) error { return nil }); err != nil {
		t.Fatalf("Do: %v", err)
	}
	expectationsMet(t, mock)
}

func TestStoreDoRollsBack(t *testing.T) {
	s, mock := newMockStore(t)
	boom := errors.New("boom")
	mock.ExpectBegin()
	mock.ExpectRollback()

	err := s.Do(context.Background(), func(billing.Repositories) error { return boom })
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want boom", err)
	}
	expectationsMet(t, mock)
}

func TestInvoiceCreate(t *testing.T) {
	s, mock := newMockStore(t)
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO invoices")).
		WithArgs(7, 1, 5, 2026, models.StatusDraft, sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), "INV-202605-1-7", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(42))
	mock.ExpectCommit()

	inv := &models.Invoice{CoachID: 7, ClubID: 1, Month: 5, Year: 2026, Status: models.StatusDraft, InvoiceNumber: "INV-202605-1-7"}
	err := s.Do(context.Background(), func(repos billing.Repositories) error {
		return repos.Invoices.Create(context.Background(), inv)
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if inv.ID != 42 {
		t.Errorf("id = %d, want 42", inv.ID)
	}
	expectationsMet(t, mock)
}

func TestInvoiceCreateConflict(t *testing.T) {
	tests := map[string]func(q *sqlmock.ExpectedQuery){
		"on conflict do nothing": func(q *sqlmock.ExpectedQuery) {
			q.WillReturnRows(sqlmock.NewRows([]string{"id"}))
		},
		"unique violation": func(q *sqlmock.ExpectedQuery) {
			q.WillReturnError(&pq.Error{Code: uniqueViolation})
		},
	}
	for name, respond := range tests {
		t.Run(name, func(t *testing.T) {
			s, mock := newMockStore(t)
			mock.ExpectBegin()
			respond(mock.ExpectQuery(regexp.QuoteMeta("ON CONFLICT (coach_id, club_id, month, year) DO NOTHING")))
			mock.ExpectRollback()

			err := s.Do(context.Background(), func(repos billing.Repositories) error {
				return repos.Invoices.Create(context.Background(), &models.Invoice{CoachID: 7, ClubID: 1, Month: 5, Year: 2026})
			})
			if !errors.Is(err, billing.ErrDuplicatePeriod) {
				t.Fatalf("err = %v, want ErrDuplicatePeriod", err)
			}
			expectationsMet(t, mock)
		})
	}
}

func TestInvoiceSaveChecksStatus(t *testing.T) {
	s, mock := newMockStore(t)
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("WHERE id = $11 AND status = $12")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	inv := &models.Invoice{ID: 3, Status: models.StatusApproved}
	err := s.Do(context.Background(), func(repos billing.Repositories) error {
		return repos.Invoices.Save(context.Background(), inv, models.StatusSubmitted)
	})
	if !errors.Is(err, billing.ErrConcurrentModification) {
		t.Fatalf("err = %v, want ErrConcurrentModification", err)
	}
	expectationsMet(t, mock)
}

func TestInvoiceFindByPeriodMissing(t *testing.T) {
	s, mock := newMockStore(t)
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("FROM invoices")).
		WithArgs(7, 1, 5, 2026).
		WillReturnError(sql.ErrNoRows)
	mock.ExpectCommit()

	var inv *models.Invoice
	err := s.Do(context.Background(), func(repos billing.Repositories) error {
		var err error
		inv, err = repos.Invoices.FindByPeriod(context.Background(), 7, 1, 5, 2026)
		return err
	})
	if err != nil || inv != nil {
		t.Fatalf("FindByPeriod = %v, %v; want nil, nil", inv, err)
	}
	expectationsMet(t, mock)
}

func TestInvoiceFindByIDMissing(t *testing.T) {
	s, mock := newMockStore(t)
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("FROM invoices")).
		WithArgs(9).
		WillReturnError(sql.ErrNoRows)
	mock.ExpectRollback()

	err := s.Do(context.Background(), func(repos billing.Repositories) error {
		_, err := repos.Invoices.FindByID(context.Background(), 9)
		return err
	})
	if !errors.Is(err, billing.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
	expectationsMet(t, mock)
}

func TestAddLineItemLocksInvoice(t *testing.T) {
	s, mock := newMockStore(t)
	created := time.Date(2026, time.June, 1, 9, 0, 0, 0, time.UTC)
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("FROM invoices WHERE id = $1 FOR UPDATE")).
		WithArgs(4).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "coach_id", "club_id", "month", "year", "status",
			"subtotal", "deductions", "total", "invoice_number",
			"submitted_at", "approved_at", "paid_at", "approved_by", "rejection_reason",
			"created_at", "updated_at",
		}).AddRow(
			4, 7, 1, 5, 2026, "Draft",
			"30.00", "0.00", "30.00", "INV-202605-1-7",
			nil, nil, nil, nil, "",
			created, created,
		))
	mock.ExpectQuery(regexp.QuoteMeta("FROM invoice_line_items")).
		WithArgs(4).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "invoice_id", "register_id", "item_type", "is_deduction", "description",
			"date", "hours", "rate", "amount", "notes", "position",
		}).AddRow(
			11, 4, 2, "lead_coaching", false, "Green Group",
			created, "1.5", "20", "30.00", "", 1,
		))
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO invoice_line_items")).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(12))
	mock.ExpectExec(regexp.QuoteMeta("WHERE id = $11 AND status = $12")).
		WithArgs(models.StatusDraft, sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(),
			nil, nil, nil, nil, "", sqlmock.AnyArg(), 4, models.StatusDraft).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	_, totals, err := billing.NewLifecycle(s, nil, nil).AddLineItem(context.Background(), 4, billing.Actor{UserID: 7}, billing.LineItemInput{
		ItemType:    models.ItemExpense,
		Description: "Balls",
		Date:        created,
		Hours:       decimal.NewFromInt(1),
		Rate:        decimal.NewFromInt(6),
	})
	if err != nil {
		t.Fatalf("AddLineItem: %v", err)
	}
	if want := decimal.RequireFromString("36.00"); !totals.Total.Equal(want) {
		t.Errorf("total = %s, want %s", totals.Total, want)
	}
	expectationsMet(t, mock)
}

func TestDeleteLineItemMissing(t *testing.T) {
	s, mock := newMockStore(t)
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM invoice_line_items")).
		WithArgs(5, 3).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := s.Do(context.Background(), func(repos billing.Repositories) error {
		return repos.Invoices.DeleteLineItem(context.Background(), 3, 5)
	})
	if !errors.Is(err, billing.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
	expectationsMet(t, mock)
}

func TestFindRates(t *testing.T) {
	s, mock := newMockStore(t)
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("FROM coaching_rates")).
		WithArgs(7, 1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "coach_id", "club_id", "name", "rate_type", "hourly_rate"}).
			AddRow(1, 7, 1, "Green Group", "Lead", "20.00").
			AddRow(2, 7, 1, "Helping", "Assistant", "12.50"))
	mock.ExpectCommit()

	var rates []models.CoachingRate
	err := s.Do(context.Background(), func(repos billing.Repositories) error {
		var err error
		rates, err = repos.Rates.FindRates(context.Background(), 7, 1)
		return err
	})
	if err != nil {
		t.Fatalf("FindRates: %v", err)
	}
	if len(rates) != 2 {
		t.Fatalf("rates = %d, want 2", len(rates))
	}
	if rates[1].RateType != models.RateTypeAssistant || !rates[1].HourlyRate.Equal(decimal.RequireFromString("12.5")) {
		t.Errorf("second rate = %+v", rates[1])
	}
	expectationsMet(t, mock)
}

func TestFindRegistersByRole(t *testing.T) {
	s, mock := newMockStore(t)
	start := time.Date(2026, time.May, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, time.May, 31, 0, 0, 0, 0, time.UTC)
	columns := []string{"id", "club_id", "date", "slot_id", "day_of_week", "start_time", "end_time", "group_id", "group_name", "lead_coach_id", "assistant_ids"}

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("r.lead_coach_id = $4")).
		WithArgs(1, start, end, 7).
		WillReturnRows(sqlmock.NewRows(columns).
			AddRow(11, 1, time.Date(2026, time.May, 4, 0, 0, 0, 0, time.UTC), 3, "Monday",
				time.Date(0, 1, 1, 16, 0, 0, 0, time.UTC), time.Date(0, 1, 1, 17, 0, 0, 0, time.UTC),
				2, "Green Group", 7, "{8,9}"))
	mock.ExpectCommit()

	var regs []models.AttendanceRegister
	err := s.Do(context.Background(), func(repos billing.Repositories) error {
		var err error
		regs, err = repos.Registers.FindByCoachAndDateRange(context.Background(), 7, 1, start, end, models.RoleLead)
		return err
	})
	if err != nil {
		t.Fatalf("FindByCoachAndDateRange: %v", err)
	}
	if len(regs) != 1 {
		t.Fatalf("registers = %d, want 1", len(regs))
	}
	reg := regs[0]
	if reg.TimeSlot.GroupName != "Green Group" || reg.LeadCoachID != 7 {
		t.Errorf("register = %+v", reg)
	}
	if len(reg.AssistantCoachIDs) != 2 || reg.AssistantCoachIDs[0] != 8 || reg.AssistantCoachIDs[1] != 9 {
		t.Errorf("assistants = %v, want [8 9]", reg.AssistantCoachIDs)
	}
	expectationsMet(t, mock)
}

func TestAdminClubs(t *testing.T) {
	s, mock := newMockStore(t)
	mock.ExpectQuery(regexp.QuoteMeta("FROM club_admins")).
		WithArgs(100).
		WillReturnRows(sqlmock.NewRows([]string{"club_id"}).AddRow(1).AddRow(4))

	clubs, err := s.AdminClubs(context.Background(), 100)
	if err != nil {
		t.Fatalf("AdminClubs: %v", err)
	}
	if len(clubs) != 2 || clubs[0] != 1 || clubs[1] != 4 {
		t.Errorf("clubs = %v", clubs)
	}
	expectationsMet(t, mock)
}

func TestCoachClubs(t *testing.T) {
	s, mock := newMockStore(t)
	mock.ExpectQuery(regexp.QuoteMeta("FROM club_coaches")).
		WithArgs(7).
		WillReturnRows(sqlmock.NewRows([]string{"club_id"}).AddRow(1))
	mock.ExpectQuery(regexp.QuoteMeta("FROM club_coaches")).
		WithArgs(8).
		WillReturnError(errors.New("connection reset"))

	clubs, err := s.CoachClubs(context.Background(), 7)
	if err != nil {
		t.Fatalf("CoachClubs: %v", err)
	}
	if len(clubs) != 1 || clubs[0] != 1 {
		t.Errorf("clubs = %v", clubs)
	}
	if _, err := s.CoachClubs(context.Background(), 8); err == nil {
		t.Error("query failure not reported")
	}
	expectationsMet(t, mock)
}

func TestUpsertRate(t *testing.T) {
	s, mock := newMockStore(t)
	mock.ExpectQuery(regexp.QuoteMeta("ON CONFLICT (coach_id, club_id, name)")).
		WithArgs(7, 1, "Green Group", models.RateTypeLead, sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(5))

	rate, err := s.UpsertRate(context.Background(), models.CoachingRate{
		CoachID: 7, ClubID: 1, Name: "Green Group", RateType: models.RateTypeLead, HourlyRate: decimal.NewFromInt(20),
	})
	if err != nil {
		t.Fatalf("UpsertRate: %v", err)
	}
	if rate.ID != 5 {
		t.Errorf("id = %d, want 5", rate.ID)
	}
	expectationsMet(t, mock)
}
