package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type InvoiceStatus string

const (
	StatusDraft     InvoiceStatus = "Draft"
	StatusSubmitted InvoiceStatus = "Submitted"
	StatusApproved  InvoiceStatus = "Approved"
	StatusRejected  InvoiceStatus = "Rejected"
	StatusPaid      InvoiceStatus = "Paid"
)

type Invoice struct {
	ID              int             `json:"id"`
	CoachID         int             `json:"coach_id"`
	ClubID          int             `json:"club_id"`
	Month           int             `json:"month"`
	Year            int             `json:"year"`
	Status          InvoiceStatus   `json:"status"`
	Subtotal        decimal.Decimal `json:"subtotal"`
	Deductions      decimal.Decimal `json:"deductions"`
	Total           decimal.Decimal `json:"total"`
	InvoiceNumber   string          `json:"invoice_number"`
	SubmittedAt     *time.Time      `json:"submitted_at,omitempty"`
	ApprovedAt      *time.Time      `json:"approved_at,omitempty"`
	PaidAt          *time.Time      `json:"paid_at,omitempty"`
	ApprovedBy      *int            `json:"approved_by,omitempty"`
	RejectionReason string          `json:"rejection_reason,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// Totals returns the invoice's stored money totals.
func (inv *Invoice) Totals() Totals {
	return Totals{Subtotal: inv.Subtotal, Deductions: inv.Deductions, Total: inv.Total}
}

func (inv *Invoice) SetTotals(t Totals) {
	inv.Subtotal = t.Subtotal
	inv.Deductions = t.Deductions
	inv.Total = t.Total
}

type Totals struct {
	Subtotal   decimal.Decimal `json:"subtotal"`
	Deductions decimal.Decimal `json:"deductions"`
	Total      decimal.Decimal `json:"total"`
}

type LineItemType string

const (
	ItemLeadCoaching      LineItemType = "lead_coaching"
	ItemAssistantCoaching LineItemType = "assistant_coaching"
	ItemAdmin             LineItemType = "admin"
	ItemExpense           LineItemType = "expense"
	ItemAdjustment        LineItemType = "adjustment"
	ItemOther             LineItemType = "other"
)

func (t LineItemType) Valid() bool {
	switch t {
	case ItemLeadCoaching, ItemAssistantCoaching, ItemAdmin, ItemExpense, ItemAdjustment, ItemOther:
		return true
	}
	return false
}

// InvoiceLineItem is one billable or deduction entry. Amount is always
// derived from Hours and Rate.
type InvoiceLineItem struct {
	ID          int             `json:"id"`
	InvoiceID   int             `json:"invoice_id"`
	RegisterID  *int            `json:"register_id,omitempty"`
	ItemType    LineItemType    `json:"item_type"`
	IsDeduction bool            `json:"is_deduction"`
	Description string          `json:"description"`
	Date        time.Time       `json:"date"`
	Hours       decimal.Decimal `json:"hours"`
	Rate        decimal.Decimal `json:"rate"`
	Amount      decimal.Decimal `json:"amount"`
	Notes       string          `json:"notes"`
	Position    int             `json:"position"`
}

type InvoiceDetail struct {
	Invoice
	LineItems []InvoiceLineItem `json:"line_items"`
}

type GenerateInvoiceRequest struct {
	ClubID  int  `json:"club_id" binding:"required"`
	CoachID *int `json:"coach_id"`
	Month   int  `json:"month" binding:"required,min=1,max=12"`
	Year    int  `json:"year" binding:"required,min=2000"`
}

type GenerateInvoiceResponse struct {
	InvoiceID int  `json:"invoice_id"`
	Created   bool `json:"created"`
}

type BatchGenerateRequest struct {
	CoachIDs []int `json:"coach_ids" binding:"required,min=1"`
	Month    int   `json:"month" binding:"required,min=1,max=12"`
	Year     int   `json:"year" binding:"required,min=2000"`
}

type RejectInvoiceRequest struct {
	Reason string `json:"reason" binding:"required"`
}

type LineItemRequest struct {
	ItemType    LineItemType    `json:"item_type" binding:"required"`
	IsDeduction bool            `json:"is_deduction"`
	Description string          `json:"description" binding:"required"`
	Date        string          `json:"date" binding:"required"`
	Hours       decimal.Decimal `json:"hours"`
	Rate        decimal.Decimal `json:"rate"`
	Notes       string          `json:"notes"`
}

type BatchCoachResult struct {
	CoachID   int    `json:"coach_id"`
	InvoiceID int    `json:"invoice_id,omitempty"`
	Created   bool   `json:"created"`
	Error     string `json:"error,omitempty"`
}

type BatchGenerateResponse struct {
	Results []BatchCoachResult `json:"results"`
	Failed  int                `json:"failed"`
}

type LineItemResponse struct {
	LineItem InvoiceLineItem `json:"line_item"`
	Totals   Totals          `json:"totals"`
}
