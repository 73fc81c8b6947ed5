package db

import (
	"context"
	"database/sql"
	"fmt"
)

const Schema = `
-- Create users table
CREATE TABLE IF NOT EXISTS users (
    id SERIAL PRIMARY KEY,
    first_name VARCHAR(50) NOT NULL,
    last_name VARCHAR(50) NOT NULL,
    email VARCHAR(255) UNIQUE NOT NULL,
    created_at TIMESTAMPTZ DEFAULT NOW()
);

-- Create clubs table
CREATE TABLE IF NOT EXISTS clubs (
    id SERIAL PRIMARY KEY,
    name VARCHAR(255) UNIQUE NOT NULL,
    created_at TIMESTAMPTZ DEFAULT NOW()
);

-- Create club_admins table
CREATE TABLE IF NOT EXISTS club_admins (
    id SERIAL PRIMARY KEY,
    club_id INTEGER NOT NULL,
    user_id INTEGER NOT NULL,
    created_at TIMESTAMPTZ DEFAULT NOW(),
    FOREIGN KEY (club_id) REFERENCES clubs(id) ON DELETE CASCADE,
    FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE,
    UNIQUE(club_id, user_id)
);

-- Create club_coaches table
CREATE TABLE IF NOT EXISTS club_coaches (
    id SERIAL PRIMARY KEY,
    club_id INTEGER NOT NULL,
    user_id INTEGER NOT NULL,
    created_at TIMESTAMPTZ DEFAULT NOW(),
    FOREIGN KEY (club_id) REFERENCES clubs(id) ON DELETE CASCADE,
    FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE,
    UNIQUE(club_id, user_id)
);

-- Create coaching_groups table
CREATE TABLE IF NOT EXISTS coaching_groups (
    id SERIAL PRIMARY KEY,
    club_id INTEGER NOT NULL,
    name VARCHAR(255) NOT NULL,
    FOREIGN KEY (club_id) REFERENCES clubs(id) ON DELETE CASCADE,
    UNIQUE(club_id, name)
);

-- Create time_slots table
CREATE TABLE IF NOT EXISTS time_slots (
    id SERIAL PRIMARY KEY,
    group_id INTEGER NOT NULL,
    day_of_week VARCHAR(10) NOT NULL,
    start_time TIME NOT NULL,
    end_time TIME NOT NULL,
    FOREIGN KEY (group_id) REFERENCES coaching_groups(id) ON DELETE CASCADE
);

-- Create attendance_registers table
CREATE TABLE IF NOT EXISTS attendance_registers (
    id SERIAL PRIMARY KEY,
    club_id INTEGER NOT NULL,
    time_slot_id INTEGER NOT NULL,
    date DATE NOT NULL,
    lead_coach_id INTEGER NOT NULL,
    created_at TIMESTAMPTZ DEFAULT NOW(),
    FOREIGN KEY (club_id) REFERENCES clubs(id) ON DELETE CASCADE,
    FOREIGN KEY (time_slot_id) REFERENCES time_slots(id),
    FOREIGN KEY (lead_coach_id) REFERENCES users(id)
);

CREATE INDEX IF NOT EXISTS idx_registers_lead_date
    ON attendance_registers (club_id, lead_coach_id, date);

-- Create register_assistants table
CREATE TABLE IF NOT EXISTS register_assistants (
    id SERIAL PRIMARY KEY,
    register_id INTEGER NOT NULL,
    coach_id INTEGER NOT NULL,
    FOREIGN KEY (register_id) REFERENCES attendance_registers(id) ON DELETE CASCADE,
    FOREIGN KEY (coach_id) REFERENCES users(id),
    UNIQUE(register_id, coach_id)
);

-- Create coaching_rates table
CREATE TABLE IF NOT EXISTS coaching_rates (
    id SERIAL PRIMARY KEY,
    coach_id INTEGER NOT NULL,
    club_id INTEGER NOT NULL,
    name VARCHAR(255) NOT NULL,
    rate_type VARCHAR(20) NOT NULL CHECK (rate_type IN ('Lead', 'Assistant', 'Admin', 'Other')),
    hourly_rate NUMERIC(10, 2) NOT NULL CHECK (hourly_rate >= 0),
    created_at TIMESTAMPTZ DEFAULT NOW(),
    FOREIGN KEY (coach_id) REFERENCES users(id) ON DELETE CASCADE,
    FOREIGN KEY (club_id) REFERENCES clubs(id) ON DELETE CASCADE,
    UNIQUE(coach_id, club_id, name)
);

-- Create invoices table
CREATE TABLE IF NOT EXISTS invoices (
    id SERIAL PRIMARY KEY,
    coach_id INTEGER NOT NULL,
    club_id INTEGER NOT NULL,
    month INTEGER NOT NULL CHECK (month BETWEEN 1 AND 12),
    year INTEGER NOT NULL,
    status VARCHAR(20) NOT NULL DEFAULT 'Draft'
        CHECK (status IN ('Draft', 'Submitted', 'Approved', 'Rejected', 'Paid')),
    subtotal NUMERIC(12, 2) NOT NULL DEFAULT 0,
    deductions NUMERIC(12, 2) NOT NULL DEFAULT 0,
    total NUMERIC(12, 2) NOT NULL DEFAULT 0,
    invoice_number VARCHAR(64) NOT NULL,
    submitted_at TIMESTAMPTZ,
    approved_at TIMESTAMPTZ,
    paid_at TIMESTAMPTZ,
    approved_by INTEGER,
    rejection_reason TEXT NOT NULL DEFAULT '',
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    FOREIGN KEY (coach_id) REFERENCES users(id),
    FOREIGN KEY (club_id) REFERENCES clubs(id),
    FOREIGN KEY (approved_by) REFERENCES users(id),
    UNIQUE(coach_id, club_id, month, year)
);

-- Create invoice_line_items table
CREATE TABLE IF NOT EXISTS invoice_line_items (
    id SERIAL PRIMARY KEY,
    invoice_id INTEGER NOT NULL,
    register_id INTEGER,
    item_type VARCHAR(32) NOT NULL,
    is_deduction BOOLEAN NOT NULL DEFAULT FALSE,
    description TEXT NOT NULL,
    date DATE NOT NULL,
    hours NUMERIC(12, 6) NOT NULL,
    rate NUMERIC(10, 2) NOT NULL,
    amount NUMERIC(12, 2) NOT NULL,
    notes TEXT NOT NULL DEFAULT '',
    position INTEGER NOT NULL,
    FOREIGN KEY (invoice_id) REFERENCES invoices(id) ON DELETE CASCADE,
    FOREIGN KEY (register_id) REFERENCES attendance_registers(id)
);

CREATE INDEX IF NOT EXISTS idx_line_items_invoice
    ON invoice_line_items (invoice_id, position);
`

// InitSchema initializes the database schema
func InitSchema(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, Schema)
	if err != nil {
		return fmt.Errorf("error initializing database schema: %w", err)
	}
	return nil
}
