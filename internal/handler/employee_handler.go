package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/gmdqs/attendance-admin-api/internal/models"
	"github.com/gmdqs/attendance-admin-api/internal/service"
	appErrors "github.com/gmdqs/attendance-admin-api/pkg/errors"
	"github.com/gmdqs/attendance-admin-api/pkg/response"
)

// EmployeeHandler exposes roster browsing and employee management.
type EmployeeHandler struct {
	employees *service.EmployeeService
	roster    *service.RosterService
}

// NewEmployeeHandler creates a new handler.
func NewEmployeeHandler(employees *service.EmployeeService, roster *service.RosterService) *EmployeeHandler {
	return &EmployeeHandler{employees: employees, roster: roster}
}

// List returns one page of the filtered roster. Query parameters: q for the
// substring filter, department_id for the exact department, page for the
// 1-indexed page. Supplying a filter always starts from page one.
func (h *EmployeeHandler) List(c *gin.Context) {
	filter := models.RosterFilter{Query: c.Query("q")}
	if raw := c.Query("department_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "department_id must be an integer"))
			return
		}
		filter.DepartmentID = id
	}

	page := 1
	if raw := c.Query("page"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "page must be an integer"))
			return
		}
		page = parsed
	}

	view, err := h.roster.ViewWith(c.Request.Context(), filter, page)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, view.Employees, &view.Pagination)
}

// Get returns one employee.
func (h *EmployeeHandler) Get(c *gin.Context) {
	id, err := idParam(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	emp, err := h.employees.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, emp, nil)
}

// Create registers an employee.
func (h *EmployeeHandler) Create(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req models.EmployeeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid employee payload"))
		return
	}

	emp, err := h.employees.Create(c.Request.Context(), req, claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, emp)
}

// Update edits an employee's identity fields.
func (h *EmployeeHandler) Update(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	id, err := idParam(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	var req models.EmployeeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid employee payload"))
		return
	}

	emp, err := h.employees.Update(c.Request.Context(), id, req, claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, emp, nil)
}

// Delete removes an employee and their attendance.
func (h *EmployeeHandler) Delete(c *gin.Context) {
	id, err := idParam(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	if err := h.employees.Delete(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}

	response.NoContent(c)
}

func idParam(c *gin.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id < 1 {
		return 0, appErrors.Clone(appErrors.ErrValidation, "id must be a positive integer")
	}
	return id, nil
}
