package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"tennis_club_backend/billing"
	"tennis_club_backend/models"
)

type InvoiceHandler struct {
	aggregator *billing.Aggregator
	batch      *billing.BatchGenerator
	lifecycle  *billing.Lifecycle
	logger     *zap.Logger
}

func NewInvoiceHandler(aggregator *billing.Aggregator, batch *billing.BatchGenerator, lifecycle *billing.Lifecycle, logger *zap.Logger) *InvoiceHandler {
	return &InvoiceHandler{
		aggregator: aggregator,
		batch:      batch,
		lifecycle:  lifecycle,
		logger:     logger,
	}
}

// GenerateInvoice creates the caller's draft for a month, or returns the one
// that already exists. Club admins may generate for another coach.
func (h *InvoiceHandler) GenerateInvoice(c *gin.Context) {
	var req models.GenerateInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	coachID, err := coachFor(c, req.ClubID, req.CoachID)
	if err != nil {
		respondError(c, h.logger, err, "Failed to generate invoice")
		return
	}

	res, err := h.aggregator.GenerateInvoice(c.Request.Context(), coachID, req.ClubID, req.Month, req.Year)
	if err != nil {
		respondError(c, h.logger, err, "Failed to generate invoice")
		return
	}

	status := http.StatusOK
	if res.Created {
		status = http.StatusCreated
	}
	c.JSON(status, models.GenerateInvoiceResponse{InvoiceID: res.InvoiceID, Created: res.Created})
}

// GenerateClubInvoices runs month-end generation for a list of coaches.
func (h *InvoiceHandler) GenerateClubInvoices(c *gin.Context) {
	clubID, ok := paramID(c, "club_id")
	if !ok {
		return
	}
	if !actorFrom(c).IsAdminOf(clubID) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Only club admins can run batch generation"})
		return
	}

	var req models.BatchGenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	outcomes, err := h.batch.GenerateForCoaches(c.Request.Context(), clubID, req.CoachIDs, req.Month, req.Year)
	var batchErr *billing.BatchError
	if err != nil && !errors.As(err, &batchErr) {
		respondError(c, h.logger, err, "Failed to generate invoices")
		return
	}

	resp := models.BatchGenerateResponse{Results: make([]models.BatchCoachResult, 0, len(outcomes))}
	for _, o := range outcomes {
		result := models.BatchCoachResult{
			CoachID:   o.CoachID,
			InvoiceID: o.Result.InvoiceID,
			Created:   o.Result.Created,
		}
		if o.Err != nil {
			result.Error = o.Err.Error()
			resp.Failed++
		}
		resp.Results = append(resp.Results, result)
	}

	if resp.Failed > 0 {
		h.logger.Warn("batch invoice generation had failures",
			zap.Int("club_id", clubID),
			zap.Int("failed", resp.Failed),
			zap.Error(err))
		c.JSON(http.StatusMultiStatus, resp)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *InvoiceHandler) GetInvoice(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	detail, err := h.lifecycle.Get(c.Request.Context(), id, actorFrom(c))
	if err != nil {
		respondError(c, h.logger, err, "Failed to fetch invoice")
		return
	}
	c.JSON(http.StatusOK, detail)
}

func (h *InvoiceHandler) SubmitInvoice(c *gin.Context) {
	h.changeStatus(c, h.lifecycle.Submit)
}

func (h *InvoiceHandler) ApproveInvoice(c *gin.Context) {
	h.changeStatus(c, h.lifecycle.Approve)
}

func (h *InvoiceHandler) MarkInvoicePaid(c *gin.Context) {
	h.changeStatus(c, h.lifecycle.MarkPaid)
}

func (h *InvoiceHandler) RejectInvoice(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	var req models.RejectInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	inv, err := h.lifecycle.Reject(c.Request.Context(), id, actorFrom(c), req.Reason)
	if err != nil {
		respondError(c, h.logger, err, "Failed to reject invoice")
		return
	}
	c.JSON(http.StatusOK, inv)
}

type statusChange func(ctx context.Context, invoiceID int, actor billing.Actor) (*models.Invoice, error)

func (h *InvoiceHandler) changeStatus(c *gin.Context, change statusChange) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	inv, err := change(c.Request.Context(), id, actorFrom(c))
	if err != nil {
		respondError(c, h.logger, err, "Failed to update invoice status")
		return
	}
	c.JSON(http.StatusOK, inv)
}

func (h *InvoiceHandler) AddLineItem(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	in, ok := bindLineItem(c)
	if !ok {
		return
	}

	item, totals, err := h.lifecycle.AddLineItem(c.Request.Context(), id, actorFrom(c), in)
	if err != nil {
		respondError(c, h.logger, err, "Failed to add line item")
		return
	}
	c.JSON(http.StatusCreated, models.LineItemResponse{LineItem: item, Totals: totals})
}

func (h *InvoiceHandler) UpdateLineItem(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	itemID, ok := paramID(c, "item_id")
	if !ok {
		return
	}
	in, ok := bindLineItem(c)
	if !ok {
		return
	}

	item, totals, err := h.lifecycle.UpdateLineItem(c.Request.Context(), id, itemID, actorFrom(c), in)
	if err != nil {
		respondError(c, h.logger, err, "Failed to update line item")
		return
	}
	c.JSON(http.StatusOK, models.LineItemResponse{LineItem: item, Totals: totals})
}

func (h *InvoiceHandler) DeleteLineItem(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	itemID, ok := paramID(c, "item_id")
	if !ok {
		return
	}

	totals, err := h.lifecycle.RemoveLineItem(c.Request.Context(), id, itemID, actorFrom(c))
	if err != nil {
		respondError(c, h.logger, err, "Failed to delete line item")
		return
	}
	c.JSON(http.StatusOK, gin.H{"totals": totals})
}

func bindLineItem(c *gin.Context) (billing.LineItemInput, bool) {
	var req models.LineItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return billing.LineItemInput{}, false
	}

	date, err := time.Parse(time.DateOnly, req.Date)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid date format. Use YYYY-MM-DD"})
		return billing.LineItemInput{}, false
	}

	return billing.LineItemInput{
		ItemType:    req.ItemType,
		IsDeduction: req.IsDeduction,
		Description: req.Description,
		Date:        date,
		Hours:       req.Hours,
		Rate:        req.Rate,
		Notes:       req.Notes,
	}, true
}
