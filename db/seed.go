package db

import (
	"context"
	"database/sql"
	"fmt"
)

// SeedData populates the database with a demo club, its admin, a coach and
// coaching groups so the invoice flow can be exercised locally.
func SeedData(ctx context.Context, db *sql.DB) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("error starting transaction: %w", err)
	}
	defer tx.Rollback()

	var clubID int
	err = tx.QueryRowContext(ctx, `
		INSERT INTO clubs (name) VALUES ($1)
		ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
		RETURNING id
	`, "Demo Tennis Club").Scan(&clubID)
	if err != nil {
		return fmt.Errorf("error seeding club: %w", err)
	}

	var adminID int
	err = tx.QueryRowContext(ctx, `
		INSERT INTO users (first_name, last_name, email) VALUES ($1, $2, $3)
		ON CONFLICT (email) DO UPDATE SET email = EXCLUDED.email
		RETURNING id
	`, "Club", "Admin", "admin@example.com").Scan(&adminID)
	if err != nil {
		return fmt.Errorf("error seeding admin user: %w", err)
	}

	if _, err = tx.ExecContext(ctx, `
		INSERT INTO club_admins (club_id, user_id) VALUES ($1, $2) ON CONFLICT DO NOTHING
	`, clubID, adminID); err != nil {
		return fmt.Errorf("error seeding club admin: %w", err)
	}

	var coachID int
	err = tx.QueryRowContext(ctx, `
		INSERT INTO users (first_name, last_name, email) VALUES ($1, $2, $3)
		ON CONFLICT (email) DO UPDATE SET email = EXCLUDED.email
		RETURNING id
	`, "Demo", "Coach", "coach@example.com").Scan(&coachID)
	if err != nil {
		return fmt.Errorf("error seeding coach user: %w", err)
	}

	if _, err = tx.ExecContext(ctx, `
		INSERT INTO club_coaches (club_id, user_id) VALUES ($1, $2) ON CONFLICT DO NOTHING
	`, clubID, coachID); err != nil {
		return fmt.Errorf("error seeding club coach: %w", err)
	}

	groups := []string{"Green Group", "Orange Group", "Red Group"}
	for _, group := range groups {
		if _, err = tx.ExecContext(ctx, `
			INSERT INTO coaching_groups (club_id, name) VALUES ($1, $2) ON CONFLICT DO NOTHING
		`, clubID, group); err != nil {
			return fmt.Errorf("error seeding coaching groups: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("error committing transaction: %w", err)
	}
	return nil
}
