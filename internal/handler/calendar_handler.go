package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/gmdqs/attendance-admin-api/internal/calendar"
	"github.com/gmdqs/attendance-admin-api/pkg/response"
)

// CalendarHandler serves the month and year options the dashboard's
// navigation selectors are built from.
type CalendarHandler struct{}

// NewCalendarHandler creates a new handler.
func NewCalendarHandler() *CalendarHandler {
	return &CalendarHandler{}
}

// Options returns the twelve month names and the selectable year window
// around the current year.
func (h *CalendarHandler) Options(c *gin.Context) {
	now := time.Now()
	response.JSON(c, http.StatusOK, gin.H{
		"months":        calendar.MonthNames(),
		"years":         calendar.YearOptions(now.Year()),
		"current_year":  now.Year(),
		"current_month": int(now.Month()) - 1,
	}, nil)
}
