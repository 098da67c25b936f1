package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gmdqs/attendance-admin-api/internal/models"
	"github.com/gmdqs/attendance-admin-api/internal/service"
	appErrors "github.com/gmdqs/attendance-admin-api/pkg/errors"
	"github.com/gmdqs/attendance-admin-api/pkg/response"
)

// ExportHandler exposes the background export archive: enqueue, poll,
// download by token.
type ExportHandler struct {
	archive *service.ExportArchiveService
}

// NewExportHandler creates a new handler.
func NewExportHandler(archive *service.ExportArchiveService) *ExportHandler {
	return &ExportHandler{archive: archive}
}

// EnqueueGrid queues a month grid export and returns the job to poll.
func (h *ExportHandler) EnqueueGrid(c *gin.Context) {
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
	job, err := h.archive.EnqueueGrid(claims.UserID, year, month, format)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusAccepted, job, nil)
}

// EnqueueReport queues a range report export.
func (h *ExportHandler) EnqueueReport(c *gin.Context) {
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
	job, err := h.archive.EnqueueReport(claims.UserID, req, format)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusAccepted, job, nil)
}

// Status returns the tracked job state.
func (h *ExportHandler) Status(c *gin.Context) {
	job, err := h.archive.Job(c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, job, nil)
}

// Download streams an archived export by signed token.
func (h *ExportHandler) Download(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "token required"))
		return
	}

	path, filename, err := h.archive.Resolve(token)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.FileAttachment(path, filename)
}
