package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/gmdqs/attendance-admin-api/internal/models"
	"github.com/gmdqs/attendance-admin-api/internal/service"
	appErrors "github.com/gmdqs/attendance-admin-api/pkg/errors"
	"github.com/gmdqs/attendance-admin-api/pkg/response"
)

// AttendanceHandler exposes the month grid and single-cell writes. Months in
// query parameters are 0-indexed, matching the dashboard's month selector.
type AttendanceHandler struct {
	grid    *service.GridService
	export  *service.ExportService
	metrics *service.MetricsService
}

// NewAttendanceHandler creates a new handler.
func NewAttendanceHandler(grid *service.GridService, export *service.ExportService, metrics *service.MetricsService) *AttendanceHandler {
	return &AttendanceHandler{grid: grid, export: export, metrics: metrics}
}

// Grid loads the month grid. Defaults to the current month when year or
// month is absent.
func (h *AttendanceHandler) Grid(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	year, month, err := yearMonthQuery(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	grid, err := h.grid.Load(c.Request.Context(), claims.UserID, year, month)
	if err != nil {
		response.Error(c, err)
		return
	}

	h.metrics.RecordGridLoad()
	response.JSON(c, http.StatusOK, grid, nil)
}

// SetStatus writes one cell. A zero status id clears the cell.
func (h *AttendanceHandler) SetStatus(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req models.SetStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid attendance payload"))
		return
	}

	grid, err := h.grid.SetStatus(c.Request.Context(), claims.UserID, req)
	if err != nil {
		if appErr := appErrors.FromError(err); appErr.Code == appErrors.ErrSaveInFlight.Code {
			h.metrics.RecordSaveConflict()
		} else {
			h.metrics.RecordCellWrite("rolled_back")
		}
		response.Error(c, err)
		return
	}

	if req.StatusID == 0 {
		h.metrics.RecordCellWrite("cleared")
	} else {
		h.metrics.RecordCellWrite("saved")
	}
	response.JSON(c, http.StatusOK, grid, nil)
}

// Export streams the month grid as a CSV or PDF download.
func (h *AttendanceHandler) Export(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	year, month, err := yearMonthQuery(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	format := service.ExportFormat(c.DefaultQuery("format", "csv"))
	file, err := h.export.ExportGrid(c.Request.Context(), claims.UserID, year, month, format)
	if err != nil {
		response.Error(c, err)
		return
	}

	h.metrics.RecordExport("grid", string(format))
	response.File(c, file.Filename, file.ContentType, file.Data)
}

func yearMonthQuery(c *gin.Context) (int, int, error) {
	now := time.Now()
	year := now.Year()
	month := int(now.Month()) - 1

	if raw := c.Query("year"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			return 0, 0, appErrors.Clone(appErrors.ErrValidation, "year must be an integer")
		}
		year = parsed
	}
	if raw := c.Query("month"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			return 0, 0, appErrors.Clone(appErrors.ErrValidation, "month must be an integer")
		}
		month = parsed
	}
	return year, month, nil
}
