package handler

import (
	"net/http"

	"tiketi/internal/service"

	"github.com/gin-gonic/gin"
)

type ReportHandler struct {
	reportSvc *service.ReportService
}

func NewReportHandler(reportSvc *service.ReportService) *ReportHandler {
	return &ReportHandler{reportSvc: reportSvc}
}

// Debts handles GET /withdrawals/report/debts.
func (h *ReportHandler) Debts(c *gin.Context) {
	report, err := h.reportSvc.GenerateDebtReport()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "report generation failed"})
		return
	}
	c.JSON(http.StatusOK, report)
}
