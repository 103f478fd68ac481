package handler

import (
	"errors"
	"net/http"
	"strconv"

	"tiketi/internal/middleware"
	"tiketi/internal/service"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type LedgerHandler struct {
	ledgerSvc  *service.LedgerService
	rebuildSvc *service.RebuildService
}

func NewLedgerHandler(ledgerSvc *service.LedgerService, rebuildSvc *service.RebuildService) *LedgerHandler {
	return &LedgerHandler{ledgerSvc: ledgerSvc, rebuildSvc: rebuildSvc}
}

// List handles GET /ledger.
func (h *LedgerHandler) List(c *gin.Context) {
	ledgers, err := h.ledgerSvc.List()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "ledger list failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ledgers": ledgers})
}

// Get handles GET /ledger/:partnerId.
func (h *LedgerHandler) Get(c *gin.Context) {
	partnerID, ok := paramUint(c, "partnerId")
	if !ok {
		return
	}
	l, err := h.ledgerSvc.Snapshot(partnerID)
	if err != nil {
		writeLedgerError(c, err, partnerID)
		return
	}
	c.JSON(http.StatusOK, l)
}

// Activity handles GET /ledger/:partnerId/activity.
func (h *LedgerHandler) Activity(c *gin.Context) {
	partnerID, ok := paramUint(c, "partnerId")
	if !ok {
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	entries, err := h.ledgerSvc.Activity(partnerID, limit)
	if err != nil {
		writeLedgerError(c, err, partnerID)
		return
	}
	c.JSON(http.StatusOK, gin.H{"partner_id": partnerID, "entries": entries})
}

// ApplyBookings handles POST /ledger/bookings. Accepts one or more booking
// ids; each application is idempotent, so re-posting is safe.
func (h *LedgerHandler) ApplyBookings(c *gin.Context) {
	var req struct {
		BookingIDs []uint `json:"booking_ids" binding:"required,min=1"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	type result struct {
		BookingID uint        `json:"booking_id"`
		Ledger    interface{} `json:"ledger,omitempty"`
		Error     string      `json:"error,omitempty"`
	}
	results := make([]result, 0, len(req.BookingIDs))
	for _, id := range req.BookingIDs {
		l, err := h.ledgerSvc.ApplyBooking(id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				results = append(results, result{BookingID: id, Error: "booking_not_found"})
			} else {
				results = append(results, result{BookingID: id, Error: err.Error()})
			}
			continue
		}
		results = append(results, result{BookingID: id, Ledger: l})
	}
	c.JSON(http.StatusOK, gin.H{"results": results})
}

// ApplyWithdrawal handles POST /ledger/withdrawals. Either an existing
// approved withdrawal id, or an inline partner/amount/bucket event.
func (h *LedgerHandler) ApplyWithdrawal(c *gin.Context) {
	var req struct {
		WithdrawalID uint   `json:"withdrawal_id"`
		PartnerID    uint   `json:"partner_id"`
		AmountCents  int64  `json:"amount_cents"`
		Bucket       string `json:"bucket"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.WithdrawalID != 0 {
		l, err := h.ledgerSvc.ApplyWithdrawal(req.WithdrawalID)
		if err != nil {
			writeLedgerError(c, err, req.PartnerID)
			return
		}
		c.JSON(http.StatusOK, l)
		return
	}
	l, w, err := h.ledgerSvc.Withdraw(req.PartnerID, req.AmountCents, req.Bucket, middleware.GetActor(c))
	if err != nil {
		writeLedgerError(c, err, req.PartnerID)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ledger": l, "withdrawal": w})
}

// Adjust handles PATCH /ledger/:partnerId/adjust.
func (h *LedgerHandler) Adjust(c *gin.Context) {
	partnerID, ok := paramUint(c, "partnerId")
	if !ok {
		return
	}
	var req struct {
		Bucket        string `json:"bucket" binding:"required"`
		DeltaCents    int64  `json:"delta_cents" binding:"required"`
		Reason        string `json:"reason" binding:"required"`
		AllowNegative bool   `json:"allow_negative"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	l, err := h.ledgerSvc.Adjust(partnerID, req.Bucket, req.DeltaCents, req.Reason, middleware.GetActor(c), req.AllowNegative)
	if err != nil {
		writeLedgerError(c, err, partnerID)
		return
	}
	c.JSON(http.StatusOK, l)
}

// Reset handles POST /ledger/:partnerId/reset.
func (h *LedgerHandler) Reset(c *gin.Context) {
	partnerID, ok := paramUint(c, "partnerId")
	if !ok {
		return
	}
	l, err := h.ledgerSvc.Reset(partnerID, middleware.GetActor(c))
	if err != nil {
		writeLedgerError(c, err, partnerID)
		return
	}
	c.JSON(http.StatusOK, l)
}

// Rebuild handles POST /ledger/:partnerId/rebuild.
func (h *LedgerHandler) Rebuild(c *gin.Context) {
	partnerID, ok := paramUint(c, "partnerId")
	if !ok {
		return
	}
	res, err := h.rebuildSvc.Rebuild(partnerID, middleware.GetActor(c))
	if err != nil {
		writeLedgerError(c, err, partnerID)
		return
	}
	c.JSON(http.StatusOK, res)
}

// RebuildAll handles POST /ledger/rebuild.
func (h *LedgerHandler) RebuildAll(c *gin.Context) {
	results, err := h.rebuildSvc.RebuildAll(middleware.GetActor(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "rebuild failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"results": results})
}

func paramUint(c *gin.Context, name string) (uint, bool) {
	n, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return 0, false
	}
	return uint(n), true
}

// writeLedgerError maps service errors to a structured response with a
// machine-readable kind and partner context.
func writeLedgerError(c *gin.Context, err error, partnerID uint) {
	switch {
	case errors.Is(err, service.ErrPartnerNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "partner_not_found", "partner_id": partnerID})
	case errors.Is(err, service.ErrInsufficientBalance):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "insufficient_balance", "partner_id": partnerID})
	case errors.Is(err, service.ErrInvalidAdjustment):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "invalid_adjustment", "partner_id": partnerID})
	case errors.Is(err, service.ErrInvalidBucket), errors.Is(err, service.ErrInvalidAmount):
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request", "partner_id": partnerID})
	case errors.Is(err, service.ErrWithdrawalNotApproved):
		c.JSON(http.StatusConflict, gin.H{"error": "withdrawal_not_approved", "partner_id": partnerID})
	case errors.Is(err, gorm.ErrRecordNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not_found", "partner_id": partnerID})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_error", "partner_id": partnerID})
	}
}
