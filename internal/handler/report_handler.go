package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gmdqs/attendance-admin-api/internal/models"
	"github.com/gmdqs/attendance-admin-api/internal/service"
	appErrors "github.com/gmdqs/attendance-admin-api/pkg/errors"
	"github.com/gmdqs/attendance-admin-api/pkg/response"
)

// ReportHandler exposes range reports and their downloads.
type ReportHandler struct {
	reports *service.ReportService
	export  *service.ExportService
	metrics *service.MetricsService
}

// NewReportHandler creates a new handler.
func NewReportHandler(reports *service.ReportService, export *service.ExportService, metrics *service.MetricsService) *ReportHandler {
	return &ReportHandler{reports: reports, export: export, metrics: metrics}
}

// Generate runs a report. Selecting an employee yields per-day rows for that
// employee; otherwise one aggregate row per employee in scope.
func (h *ReportHandler) Generate(c *gin.Context) {
	var req models.ReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid report payload"))
		return
	}

	result, err := h.reports.Generate(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// Export streams a report as a CSV or PDF download.
func (h *ReportHandler) Export(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req models.ReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid report payload"))
		return
	}

	format := service.ExportFormat(c.DefaultQuery("format", "csv"))
	file, err := h.export.ExportReport(c.Request.Context(), claims.UserID, req, format)
	if err != nil {
		response.Error(c, err)
		return
	}

	h.metrics.RecordExport("report", string(format))
	response.File(c, file.Filename, file.ContentType, file.Data)
}
