package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"tennis_club_backend/billing"
	"tennis_club_backend/models"
)

type invoiceRepository struct {
	q dbtx
}

const invoiceColumns = `
	id, coach_id, club_id, month, year, status,
	subtotal, deductions, total, invoice_number,
	submitted_at, approved_at, paid_at, approved_by, rejection_reason,
	created_at, updated_at
`

type scanner interface {
	Scan(dest ...any) error
}

func scanInvoice(row scanner) (*models.Invoice, error) {
	var inv models.Invoice
	err := row.Scan(
		&inv.ID,
		&inv.CoachID,
		&inv.ClubID,
		&inv.Month,
		&inv.Year,
		&inv.Status,
		&inv.Subtotal,
		&inv.Deductions,
		&inv.Total,
		&inv.InvoiceNumber,
		&inv.SubmittedAt,
		&inv.ApprovedAt,
		&inv.PaidAt,
		&inv.ApprovedBy,
		&inv.RejectionReason,
		&inv.CreatedAt,
		&inv.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &inv, nil
}

func (r *invoiceRepository) FindByPeriod(ctx context.Context, coachID, clubID, month, year int) (*models.Invoice, error) {
	inv, err := scanInvoice(r.q.QueryRowContext(ctx, `
		SELECT `+invoiceColumns+`
		FROM invoices
		WHERE coach_id = $1 AND club_id = $2 AND month = $3 AND year = $4
	`, coachID, clubID, month, year))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("error fetching invoice for period: %w", err)
	}
	return inv, nil
}

func (r *invoiceRepository) FindByID(ctx context.Context, id int) (*models.Invoice, error) {
	return r.findByID(ctx, id, "")
}

// FindByIDForUpdate row-locks the invoice for the rest of the transaction.
func (r *invoiceRepository) FindByIDForUpdate(ctx context.Context, id int) (*models.Invoice, error) {
	return r.findByID(ctx, id, "FOR UPDATE")
}

func (r *invoiceRepository) findByID(ctx context.Context, id int, lock string) (*models.Invoice, error) {
	inv, err := scanInvoice(r.q.QueryRowContext(ctx, `
		SELECT `+invoiceColumns+`
		FROM invoices
		WHERE id = $1
		`+lock, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: invoice %d", billing.ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("error fetching invoice: %w", err)
	}
	return inv, nil
}

// Create inserts a new invoice. The period's unique constraint decides races:
// the losing insert affects no row and reports ErrDuplicatePeriod.
func (r *invoiceRepository) Create(ctx context.Context, inv *models.Invoice) error {
	err := r.q.QueryRowContext(ctx, `
		INSERT INTO invoices (
			coach_id, club_id, month, year, status,
			subtotal, deductions, total, invoice_number,
			created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (coach_id, club_id, month, year) DO NOTHING
		RETURNING id
	`,
		inv.CoachID, inv.ClubID, inv.Month, inv.Year, inv.Status,
		inv.Subtotal, inv.Deductions, inv.Total, inv.InvoiceNumber,
		inv.CreatedAt, inv.UpdatedAt,
	).Scan(&inv.ID)
	if errors.Is(err, sql.ErrNoRows) || isUniqueViolation(err) {
		return fmt.Errorf("%w: coach %d, club %d, %04d-%02d",
			billing.ErrDuplicatePeriod, inv.CoachID, inv.ClubID, inv.Year, inv.Month)
	}
	if err != nil {
		return fmt.Errorf("error creating invoice: %w", err)
	}
	return nil
}

// Save writes inv only while the stored status still matches expected.
func (r *invoiceRepository) Save(ctx context.Context, inv *models.Invoice, expected models.InvoiceStatus) error {
	result, err := r.q.ExecContext(ctx, `
		UPDATE invoices
		SET status = $1,
			subtotal = $2,
			deductions = $3,
			total = $4,
			submitted_at = $5,
			approved_at = $6,
			paid_at = $7,
			approved_by = $8,
			rejection_reason = $9,
			updated_at = $10
		WHERE id = $11 AND status = $12
	`,
		inv.Status, inv.Subtotal, inv.Deductions, inv.Total,
		inv.SubmittedAt, inv.ApprovedAt, inv.PaidAt, inv.ApprovedBy,
		inv.RejectionReason, inv.UpdatedAt,
		inv.ID, expected,
	)
	if err != nil {
		return fmt.Errorf("error saving invoice: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("error verifying invoice update: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("%w: invoice %d is no longer %s", billing.ErrConcurrentModification, inv.ID, expected)
	}
	return nil
}

func (r *invoiceRepository) SaveLineItems(ctx context.Context, items []models.InvoiceLineItem) ([]models.InvoiceLineItem, error) {
	saved := make([]models.InvoiceLineItem, 0, len(items))
	for _, item := range items {
		err := r.q.QueryRowContext(ctx, `
			INSERT INTO invoice_line_items (
				invoice_id, register_id, item_type, is_deduction, description,
				date, hours, rate, amount, notes, position
			)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
			RETURNING id
		`,
			item.InvoiceID, item.RegisterID, item.ItemType, item.IsDeduction, item.Description,
			item.Date, item.Hours, item.Rate, item.Amount, item.Notes, item.Position,
		).Scan(&item.ID)
		if err != nil {
			return nil, fmt.Errorf("error saving line item: %w", err)
		}
		saved = append(saved, item)
	}
	return saved, nil
}

func (r *invoiceRepository) ListLineItems(ctx context.Context, invoiceID int) ([]models.InvoiceLineItem, error) {
	rows, err := r.q.QueryContext(ctx, `
		SELECT id, invoice_id, register_id, item_type, is_deduction, description,
			date, hours, rate, amount, notes, position
		FROM invoice_line_items
		WHERE invoice_id = $1
		ORDER BY position, id
	`, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("error fetching line items: %w", err)
	}
	defer rows.Close()

	items := []models.InvoiceLineItem{}
	for rows.Next() {
		var item models.InvoiceLineItem
		if err := rows.Scan(
			&item.ID,
			&item.InvoiceID,
			&item.RegisterID,
			&item.ItemType,
			&item.IsDeduction,
			&item.Description,
			&item.Date,
			&item.Hours,
			&item.Rate,
			&item.Amount,
			&item.Notes,
			&item.Position,
		); err != nil {
			return nil, fmt.Errorf("error scanning line item: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error reading line items: %w", err)
	}
	return items, nil
}

func (r *invoiceRepository) UpdateLineItem(ctx context.Context, item models.InvoiceLineItem) error {
	result, err := r.q.ExecContext(ctx, `
		UPDATE invoice_line_items
		SET item_type = $1,
			is_deduction = $2,
			description = $3,
			date = $4,
			hours = $5,
			rate = $6,
			amount = $7,
			notes = $8
		WHERE id = $9 AND invoice_id = $10
	`,
		item.ItemType, item.IsDeduction, item.Description, item.Date,
		item.Hours, item.Rate, item.Amount, item.Notes,
		item.ID, item.InvoiceID,
	)
	if err != nil {
		return fmt.Errorf("error updating line item: %w", err)
	}
	return expectOneRow(result, item.ID)
}

func (r *invoiceRepository) DeleteLineItem(ctx context.Context, invoiceID, itemID int) error {
	result, err := r.q.ExecContext(ctx, `
		DELETE FROM invoice_line_items
		WHERE id = $1 AND invoice_id = $2
	`, itemID, invoiceID)
	if err != nil {
		return fmt.Errorf("error deleting line item: %w", err)
	}
	return expectOneRow(result, itemID)
}

func expectOneRow(result sql.Result, itemID int) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("error verifying line item change: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("%w: line item %d", billing.ErrNotFound, itemID)
	}
	return nil
}
