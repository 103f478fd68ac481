package handler

import (
	"errors"
	"net/http"
	"strconv"

	"tiketi/internal/models"
	"tiketi/internal/repository"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// PartnerHandler is the partner directory boundary.
type PartnerHandler struct {
	partnerRepo *repository.PartnerRepository
}

func NewPartnerHandler(partnerRepo *repository.PartnerRepository) *PartnerHandler {
	return &PartnerHandler{partnerRepo: partnerRepo}
}

// Create handles POST /partners.
func (h *PartnerHandler) Create(c *gin.Context) {
	var req struct {
		Name  string `json:"name" binding:"required"`
		Email string `json:"email" binding:"required,email"`
		Phone string `json:"phone"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	p := &models.Partner{Name: req.Name, Email: req.Email, Phone: req.Phone, IsActive: true}
	if err := h.partnerRepo.Create(p); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "partner create failed"})
		return
	}
	c.JSON(http.StatusCreated, p)
}

// List handles GET /partners.
func (h *PartnerHandler) List(c *gin.Context) {
	partners, err := h.partnerRepo.List()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "partner list failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"partners": partners})
}

// Get handles GET /partners/:id.
func (h *PartnerHandler) Get(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	p, err := h.partnerRepo.GetByID(uint(id))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "partner_not_found", "partner_id": id})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "partner fetch failed"})
		return
	}
	c.JSON(http.StatusOK, p)
}
