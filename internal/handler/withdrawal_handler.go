package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"tiketi/internal/domain"
	"tiketi/internal/middleware"
	"tiketi/internal/models"
	"tiketi/internal/repository"
	"tiketi/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// WithdrawalHandler owns the pending -> approved/rejected request lifecycle.
// Only approval touches the ledger, via the withdrawal applier; a rejected
// request never produced a debit, so there is nothing to release.
type WithdrawalHandler struct {
	withdrawalRepo *repository.WithdrawalRepository
	partnerRepo    *repository.PartnerRepository
	ledgerSvc      *service.LedgerService
}

func NewWithdrawalHandler(
	withdrawalRepo *repository.WithdrawalRepository,
	partnerRepo *repository.PartnerRepository,
	ledgerSvc *service.LedgerService,
) *WithdrawalHandler {
	return &WithdrawalHandler{
		withdrawalRepo: withdrawalRepo,
		partnerRepo:    partnerRepo,
		ledgerSvc:      ledgerSvc,
	}
}

// Create handles POST /withdrawals. Partner accounts request against their
// own ledger; admins may pass any partner_id.
func (h *WithdrawalHandler) Create(c *gin.Context) {
	var req struct {
		PartnerID   uint   `json:"partner_id"`
		AmountCents int64  `json:"amount_cents" binding:"required,min=1"`
		Bucket      string `json:"bucket" binding:"required,oneof=FEE RECEIVABLE"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	partnerID := req.PartnerID
	if own := middleware.GetPartnerID(c); own != 0 {
		partnerID = own
	}
	if partnerID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "partner_id required"})
		return
	}
	if _, err := h.partnerRepo.GetByID(partnerID); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "partner_not_found", "partner_id": partnerID})
		return
	}
	// Early sufficiency check for a friendlier reject; the authoritative
	// check still happens atomically at apply time.
	if l, err := h.ledgerSvc.Snapshot(partnerID); err == nil {
		available := l.ReceivableCents
		if req.Bucket == domain.BucketFee {
			available = l.ServiceFeeCents
		}
		if req.AmountCents > available {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "insufficient_balance", "partner_id": partnerID})
			return
		}
	}
	w := &models.Withdrawal{
		PartnerID:   partnerID,
		OrderID:     fmt.Sprintf("wd-%s", uuid.New().String()),
		AmountCents: req.AmountCents,
		Bucket:      req.Bucket,
		Status:      domain.WithdrawalStatusPending,
	}
	if err := h.withdrawalRepo.Create(w); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "withdrawal create failed"})
		return
	}
	c.JSON(http.StatusCreated, w)
}

// Approve handles POST /withdrawals/:id/approve. The status transition and
// the ledger debit happen here, back to back; if the debit fails on
// sufficiency the approval is rolled back to rejected.
func (h *WithdrawalHandler) Approve(c *gin.Context) {
	w, ok := h.load(c)
	if !ok {
		return
	}
	actor := middleware.GetActor(c)
	if err := h.withdrawalRepo.Decide(w, domain.WithdrawalStatusApproved, actor); err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": "withdrawal_not_pending"})
		return
	}
	l, err := h.ledgerSvc.ApplyWithdrawal(w.ID)
	if err != nil {
		if errors.Is(err, service.ErrInsufficientBalance) {
			// Undo the approval so the request doesn't sit approved-but-unapplied.
			_ = h.withdrawalRepo.Revert(w, domain.WithdrawalStatusRejected, actor)
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "insufficient_balance", "partner_id": w.PartnerID})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "ledger apply failed", "partner_id": w.PartnerID})
		return
	}
	c.JSON(http.StatusOK, gin.H{"withdrawal": w, "ledger": l})
}

// Reject handles POST /withdrawals/:id/reject.
func (h *WithdrawalHandler) Reject(c *gin.Context) {
	w, ok := h.load(c)
	if !ok {
		return
	}
	if err := h.withdrawalRepo.Decide(w, domain.WithdrawalStatusRejected, middleware.GetActor(c)); err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": "withdrawal_not_pending"})
		return
	}
	c.JSON(http.StatusOK, w)
}

// ListByPartner handles GET /withdrawals?partner_id=N.
func (h *WithdrawalHandler) ListByPartner(c *gin.Context) {
	partnerID, err := strconv.ParseUint(c.Query("partner_id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid partner_id"})
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	list, err := h.withdrawalRepo.ListByPartner(uint(partnerID), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "withdrawal list failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"withdrawals": list})
}

func (h *WithdrawalHandler) load(c *gin.Context) (*models.Withdrawal, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return nil, false
	}
	w, err := h.withdrawalRepo.GetByID(uint(id))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "withdrawal_not_found"})
			return nil, false
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "withdrawal fetch failed"})
		return nil, false
	}
	return w, true
}
