package handler

import (
	"errors"
	"net/http"
	"time"

	"tiketi/internal/middleware"
	"tiketi/internal/service"

	"github.com/gin-gonic/gin"
)

type FeeHandler struct {
	feeSvc *service.FeeService
}

func NewFeeHandler(feeSvc *service.FeeService) *FeeHandler {
	return &FeeHandler{feeSvc: feeSvc}
}

// Config handles GET /fees/config. Returns the rate new bookings capture
// right now, plus the system default.
func (h *FeeHandler) Config(c *gin.Context) {
	current, err := h.feeSvc.CurrentRate()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "rate resolution failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"current_percent": current,
		"default_percent": h.feeSvc.DefaultPercent(),
	})
}

// Update handles PUT /fees/update. Records a rate change, effective at
// applied_at (defaults to now).
func (h *FeeHandler) Update(c *gin.Context) {
	var req struct {
		NewPercent float64    `json:"new_percent" binding:"min=0,max=100"`
		AppliedAt  *time.Time `json:"applied_at"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	appliedAt := time.Time{}
	if req.AppliedAt != nil {
		appliedAt = *req.AppliedAt
	}
	fc, err := h.feeSvc.RecordRateChange(req.NewPercent, appliedAt, middleware.GetActor(c))
	if err != nil {
		if errors.Is(err, service.ErrInvalidRate) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_rate"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "rate change failed"})
		return
	}
	c.JSON(http.StatusOK, fc)
}

// History handles GET /fees/history.
func (h *FeeHandler) History(c *gin.Context) {
	history, err := h.feeSvc.History()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "history fetch failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"history": history})
}
