package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"tennis_club_backend/billing"
	"tennis_club_backend/models"
)

// uniqueViolation is the postgres SQLSTATE for a unique constraint conflict.
const uniqueViolation = "23505"

// dbtx is satisfied by both *sql.DB and *sql.Tx.
type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// Do runs fn inside a single transaction.
func (s *Store) Do(ctx context.Context, fn func(billing.Repositories) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("error starting transaction: %w", err)
	}

	if err := fn(repositories(tx)); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			return errors.Join(err, fmt.Errorf("error rolling back transaction: %w", rbErr))
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("error committing transaction: %w", err)
	}
	return nil
}

func repositories(q dbtx) billing.Repositories {
	return billing.Repositories{
		Registers: &registerRepository{q: q},
		Rates:     &rateRepository{q: q},
		Invoices:  &invoiceRepository{q: q},
	}
}

func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// AdminClubs returns the ids of the clubs userID administers.
func (s *Store) AdminClubs(ctx context.Context, userID int) ([]int, error) {
	clubs, err := s.userClubs(ctx, `
		SELECT club_id FROM club_admins
		WHERE user_id = $1
		ORDER BY club_id
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("error fetching club admins: %w", err)
	}
	return clubs, nil
}

// CoachClubs returns the ids of the clubs userID coaches at.
func (s *Store) CoachClubs(ctx context.Context, userID int) ([]int, error) {
	clubs, err := s.userClubs(ctx, `
		SELECT club_id FROM club_coaches
		WHERE user_id = $1
		ORDER BY club_id
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("error fetching club coaches: %w", err)
	}
	return clubs, nil
}

func (s *Store) userClubs(ctx context.Context, query string, userID int) ([]int, error) {
	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var clubs []int
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		clubs = append(clubs, id)
	}
	return clubs, rows.Err()
}

func (s *Store) ListRates(ctx context.Context, coachID, clubID int) ([]models.CoachingRate, error) {
	return (&rateRepository{q: s.db}).FindRates(ctx, coachID, clubID)
}

// UpsertRate creates the rate or updates the existing one with the same
// (coach, club, name).
func (s *Store) UpsertRate(ctx context.Context, rate models.CoachingRate) (models.CoachingRate, error) {
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO coaching_rates (coach_id, club_id, name, rate_type, hourly_rate)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (coach_id, club_id, name)
		DO UPDATE SET rate_type = EXCLUDED.rate_type, hourly_rate = EXCLUDED.hourly_rate
		RETURNING id
	`, rate.CoachID, rate.ClubID, rate.Name, rate.RateType, rate.HourlyRate).Scan(&rate.ID)
	if err != nil {
		return models.CoachingRate{}, fmt.Errorf("error saving coaching rate: %w", err)
	}
	return rate, nil
}

func (s *Store) ListRegisters(ctx context.Context, coachID, clubID int, start, end time.Time) ([]models.AttendanceRegister, error) {
	return (&registerRepository{q: s.db}).find(ctx, clubID, start, end,
		`(r.lead_coach_id = $4 OR EXISTS (
			SELECT 1 FROM register_assistants x
			WHERE x.register_id = r.id AND x.coach_id = $4
		))`, coachID)
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}
