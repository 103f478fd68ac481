package handler

import (
	"errors"
	"net/http"
	"strconv"

	"tiketi/internal/domain"
	"tiketi/internal/models"
	"tiketi/internal/repository"
	"tiketi/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// BookingHandler is the ingestion boundary of the booking workflow: it
// creates booking records with the fee percent captured at creation time and
// feeds finalized bookings to the ledger.
type BookingHandler struct {
	bookingRepo *repository.BookingRepository
	partnerRepo *repository.PartnerRepository
	feeSvc      *service.FeeService
	ledgerSvc   *service.LedgerService
}

func NewBookingHandler(
	bookingRepo *repository.BookingRepository,
	partnerRepo *repository.PartnerRepository,
	feeSvc *service.FeeService,
	ledgerSvc *service.LedgerService,
) *BookingHandler {
	return &BookingHandler{
		bookingRepo: bookingRepo,
		partnerRepo: partnerRepo,
		feeSvc:      feeSvc,
		ledgerSvc:   ledgerSvc,
	}
}

// Create handles POST /bookings. The fee percent is resolved once, here, and
// stays immutable on the record; later rate changes never touch it.
func (h *BookingHandler) Create(c *gin.Context) {
	var req struct {
		PartnerID     uint   `json:"partner_id" binding:"required"`
		Reference     string `json:"reference"`
		AmountCents   int64  `json:"amount_cents" binding:"required,min=1"`
		DiscountCents int64  `json:"discount_cents" binding:"min=0"`
		Status        string `json:"status"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if _, err := h.partnerRepo.GetByID(req.PartnerID); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "partner_not_found", "partner_id": req.PartnerID})
		return
	}
	if req.DiscountCents > req.AmountCents {
		c.JSON(http.StatusBadRequest, gin.H{"error": "discount exceeds amount"})
		return
	}
	status := req.Status
	if status == "" {
		status = domain.BookingStatusPending
	}
	percent, err := h.feeSvc.CurrentRate()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "rate resolution failed"})
		return
	}
	reference := req.Reference
	if reference == "" {
		reference = "bk-" + uuid.New().String()
	}
	b := &models.Booking{
		PartnerID:     req.PartnerID,
		Reference:     reference,
		AmountCents:   req.AmountCents,
		DiscountCents: req.DiscountCents,
		FeePercent:    percent,
		Status:        status,
	}
	if err := h.bookingRepo.Create(b); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "booking create failed"})
		return
	}
	// A booking born in a counted status is counted right away.
	if domain.IsCountedStatus(b.Status) {
		if _, err := h.ledgerSvc.ApplyBooking(b.ID); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "ledger apply failed", "booking_id": b.ID})
			return
		}
		if fresh, err := h.bookingRepo.GetByID(b.ID); err == nil {
			b = fresh
		}
	}
	c.JSON(http.StatusCreated, b)
}

// UpdateStatus handles POST /bookings/:id/status. A transition into the
// counted set applies the booking to the ledger synchronously.
func (h *BookingHandler) UpdateStatus(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	var req struct {
		Status string `json:"status" binding:"required,oneof=PENDING PAID COMPLETED CANCELLED"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	b, err := h.bookingRepo.GetByID(uint(id))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "booking_not_found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "booking fetch failed"})
		return
	}
	if b.Counted && !domain.IsCountedStatus(req.Status) {
		c.JSON(http.StatusConflict, gin.H{"error": "booking already counted"})
		return
	}
	if err := h.bookingRepo.UpdateStatus(b, req.Status); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "status update failed"})
		return
	}
	if domain.IsCountedStatus(b.Status) {
		if _, err := h.ledgerSvc.ApplyBooking(b.ID); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "ledger apply failed", "booking_id": b.ID})
			return
		}
		if fresh, err := h.bookingRepo.GetByID(b.ID); err == nil {
			b = fresh
		}
	}
	c.JSON(http.StatusOK, b)
}

// ListByPartner handles GET /bookings?partner_id=N.
func (h *BookingHandler) ListByPartner(c *gin.Context) {
	partnerID, err := strconv.ParseUint(c.Query("partner_id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid partner_id"})
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	bookings, err := h.bookingRepo.ListByPartner(uint(partnerID), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "booking list failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"bookings": bookings})
}
