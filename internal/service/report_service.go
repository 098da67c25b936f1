package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/gmdqs/attendance-admin-api/internal/models"
	appErrors "github.com/gmdqs/attendance-admin-api/pkg/errors"
)

type reportRepository interface {
	EmployeeDays(ctx context.Context, employeeID int64, start, end string) ([]models.EmployeeDayRow, error)
	EmployeeSummary(ctx context.Context, employeeID int64, start, end string) (*models.EmployeeSummary, error)
	DepartmentRows(ctx context.Context, departmentID int64, start, end string) ([]models.DepartmentReportRow, error)
	OverallSummary(ctx context.Context, departmentID int64, start, end string) (*models.OverallSummary, error)
}

type reportEmployeeLookup interface {
	FindByID(ctx context.Context, id int64) (*models.Employee, error)
}

// ReportService produces the two range report shapes. Selecting an employee
// switches the report to per-day detail for that employee; otherwise the
// report aggregates per employee across the selected department, or all
// departments when none is chosen.
type ReportService struct {
	reports   reportRepository
	employees reportEmployeeLookup
	validator *validator.Validate
	logger    *zap.Logger
}

// NewReportService constructs a ReportService.
func NewReportService(reports reportRepository, employees reportEmployeeLookup, validate *validator.Validate, logger *zap.Logger) *ReportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &ReportService{reports: reports, employees: employees, validator: validate, logger: logger}
}

// Generate runs a report for the requested scope and range.
func (s *ReportService) Generate(ctx context.Context, req models.ReportRequest) (*models.ReportResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid report payload")
	}

	start, err := parseISODate(req.StartDate)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "start date must be YYYY-MM-DD")
	}
	end, err := parseISODate(req.EndDate)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "end date must be YYYY-MM-DD")
	}
	if start.After(end) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "start date must not be after end date")
	}

	if req.EmployeeID != nil && *req.EmployeeID > 0 {
		return s.employeeReport(ctx, *req.EmployeeID, req.StartDate, req.EndDate)
	}

	var departmentID int64
	if req.DepartmentID != nil {
		departmentID = *req.DepartmentID
	}
	return s.departmentReport(ctx, departmentID, req.StartDate, req.EndDate)
}

func (s *ReportService) employeeReport(ctx context.Context, employeeID int64, start, end string) (*models.ReportResult, error) {
	emp, err := s.employees.FindByID(ctx, employeeID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "employee not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load employee")
	}

	rows, err := s.reports.EmployeeDays(ctx, employeeID, start, end)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to build employee report")
	}

	summary, err := s.reports.EmployeeSummary(ctx, employeeID, start, end)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to summarise employee report")
	}

	return &models.ReportResult{
		Mode:            models.ReportModeEmployee,
		Employee:        emp,
		EmployeeRows:    rows,
		EmployeeSummary: summary,
		StartDate:       start,
		EndDate:         end,
	}, nil
}

func (s *ReportService) departmentReport(ctx context.Context, departmentID int64, start, end string) (*models.ReportResult, error) {
	rows, err := s.reports.DepartmentRows(ctx, departmentID, start, end)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to build department report")
	}

	summary, err := s.reports.OverallSummary(ctx, departmentID, start, end)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to summarise department report")
	}

	return &models.ReportResult{
		Mode:           models.ReportModeDepartment,
		DepartmentRows: rows,
		OverallSummary: summary,
		StartDate:      start,
		EndDate:        end,
	}, nil
}
