package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/gmdqs/attendance-admin-api/internal/calendar"
	"github.com/gmdqs/attendance-admin-api/internal/models"
	appErrors "github.com/gmdqs/attendance-admin-api/pkg/errors"
	"github.com/gmdqs/attendance-admin-api/pkg/export"
)

// ExportFormat selects the rendered file type.
type ExportFormat string

const (
	FormatCSV ExportFormat = "csv"
	FormatPDF ExportFormat = "pdf"
)

// ExportFile is a rendered download ready to stream.
type ExportFile struct {
	Filename    string
	ContentType string
	Data        []byte
}

type exportDepartmentLookup interface {
	FindByID(ctx context.Context, id int64) (*models.Department, error)
}

// ExportService renders the month grid and the range reports as CSV or PDF
// downloads. Requires the export capability.
type ExportService struct {
	employees   employeeRepository
	departments exportDepartmentLookup
	statuses    gridStatusCatalog
	attendance  attendanceRepository
	reports     *ReportService
	perms       gridPermissions
	csv         *export.CSVExporter
	pdf         *export.PDFExporter
	logger      *zap.Logger
}

// NewExportService constructs an ExportService.
func NewExportService(
	employees employeeRepository,
	departments exportDepartmentLookup,
	statuses gridStatusCatalog,
	attendance attendanceRepository,
	reports *ReportService,
	perms gridPermissions,
	logger *zap.Logger,
) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{
		employees:   employees,
		departments: departments,
		statuses:    statuses,
		attendance:  attendance,
		reports:     reports,
		perms:       perms,
		csv:         export.NewCSVExporter(),
		pdf:         export.NewPDFExporter(),
		logger:      logger,
	}
}

// ExportGrid renders the month grid with one column per day. Month is
// 0-indexed. The filename embeds the month name and year, for example
// attendance_February_2024.csv.
func (s *ExportService) ExportGrid(ctx context.Context, userID string, year, month int, format ExportFormat) (*ExportFile, error) {
	if err := s.requireExport(ctx, userID); err != nil {
		return nil, err
	}

	year, month = calendar.Normalize(year, month)
	last := calendar.DaysInMonth(year, month)

	employees, err := s.employees.ListActive(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load roster")
	}

	statuses, err := s.statuses.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	names := models.NewStatusMap(statuses)

	records, err := s.attendance.ListRange(ctx, calendar.ISODate(year, month, 1), calendar.ISODate(year, month, last))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load attendance")
	}

	cells := make(map[int64]map[string]int64)
	for _, rec := range records {
		row, ok := cells[rec.EmployeeID]
		if !ok {
			row = make(map[string]int64)
			cells[rec.EmployeeID] = row
		}
		row[rec.Date.Format("2006-01-02")] = rec.StatusID
	}

	headers := []string{"Employee ID", "Full Name", "Department"}
	for d := 1; d <= last; d++ {
		headers = append(headers, strconv.Itoa(d))
	}

	rows := make([]map[string]string, 0, len(employees))
	for _, emp := range employees {
		row := map[string]string{
			"Employee ID": emp.Code,
			"Full Name":   emp.FullName,
			"Department":  emp.Department,
		}
		for d := 1; d <= last; d++ {
			if statusID, ok := cells[emp.ID][calendar.ISODate(year, month, d)]; ok {
				row[strconv.Itoa(d)] = names.Name(statusID)
			}
		}
		rows = append(rows, row)
	}

	name := fmt.Sprintf("attendance_%s_%d", calendar.MonthName(month), year)
	title := fmt.Sprintf("Attendance %s %d", calendar.MonthName(month), year)
	return s.render(export.Dataset{Headers: headers, Rows: rows}, name, title, format)
}

// ExportReport renders a range report. Employee reports are per-day rows for
// one employee; department reports are one aggregate row per employee. The
// filename encodes the scope and range, for example
// attendance_report_GMDQS042_2024-01-01_to_2024-01-31.csv.
func (s *ExportService) ExportReport(ctx context.Context, userID string, req models.ReportRequest, format ExportFormat) (*ExportFile, error) {
	if err := s.requireExport(ctx, userID); err != nil {
		return nil, err
	}

	result, err := s.reports.Generate(ctx, req)
	if err != nil {
		return nil, err
	}

	if result.Mode == models.ReportModeEmployee {
		return s.renderEmployeeReport(result, format)
	}
	return s.renderDepartmentReport(ctx, req, result, format)
}

func (s *ExportService) renderEmployeeReport(result *models.ReportResult, format ExportFormat) (*ExportFile, error) {
	headers := []string{"Employee ID", "Employee Name", "Mobile Number", "Department", "Date", "Day", "Status"}
	rows := make([]map[string]string, 0, len(result.EmployeeRows)+1)
	for _, day := range result.EmployeeRows {
		rows = append(rows, map[string]string{
			"Employee ID":   result.Employee.Code,
			"Employee Name": result.Employee.FullName,
			"Mobile Number": result.Employee.MobileNumber,
			"Department":    result.Employee.Department,
			"Date":          day.Date.Format("2006-01-02"),
			"Day":           day.Date.Format("Monday"),
			"Status":        day.Status,
		})
	}
	if sum := result.EmployeeSummary; sum != nil {
		rows = append(rows, map[string]string{
			"Date":   "Summary",
			"Status": fmt.Sprintf("Present %d/%d (%.2f%%)", sum.PresentDays, sum.TotalDays, sum.Percentage),
		})
	}

	name := fmt.Sprintf("attendance_report_%s_%s_to_%s", result.Employee.Code, result.StartDate, result.EndDate)
	title := fmt.Sprintf("Attendance Report %s", result.Employee.FullName)
	return s.render(export.Dataset{Headers: headers, Rows: rows}, name, title, format)
}

func (s *ExportService) renderDepartmentReport(ctx context.Context, req models.ReportRequest, result *models.ReportResult, format ExportFormat) (*ExportFile, error) {
	headers := []string{"Employee ID", "Employee Name", "Department", "Total Days", "Present", "Absent", "Holiday", "On Leave", "Other", "Attendance %"}
	rows := make([]map[string]string, 0, len(result.DepartmentRows)+1)
	for _, r := range result.DepartmentRows {
		rows = append(rows, map[string]string{
			"Employee ID":   r.EmployeeCode,
			"Employee Name": r.FullName,
			"Department":    r.DepartmentName,
			"Total Days":    strconv.Itoa(r.TotalDays),
			"Present":       strconv.Itoa(r.PresentDays),
			"Absent":        strconv.Itoa(r.AbsentDays),
			"Holiday":       strconv.Itoa(r.HolidayDays),
			"On Leave":      strconv.Itoa(r.LeaveDays),
			"Other":         strconv.Itoa(r.OtherDays),
			"Attendance %":  fmt.Sprintf("%.2f", r.Percentage),
		})
	}
	if sum := result.OverallSummary; sum != nil {
		rows = append(rows, map[string]string{
			"Employee ID":   "Overall",
			"Employee Name": fmt.Sprintf("%d employees", sum.TotalEmployees),
			"Total Days":    strconv.Itoa(sum.TotalDays),
			"Present":       strconv.Itoa(sum.TotalPresent),
			"Absent":        strconv.Itoa(sum.TotalAbsent),
			"Holiday":       strconv.Itoa(sum.TotalHolidays),
			"On Leave":      strconv.Itoa(sum.TotalLeaves),
			"Attendance %":  fmt.Sprintf("%.2f", sum.Percentage),
		})
	}

	var name, title string
	if req.DepartmentID != nil && *req.DepartmentID > 0 {
		dept, err := s.departments.FindByID(ctx, *req.DepartmentID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, appErrors.Clone(appErrors.ErrNotFound, "department not found")
			}
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load department")
		}
		slug := strings.ReplaceAll(strings.TrimSpace(dept.Name), " ", "_")
		name = fmt.Sprintf("department_report_%s_%s_to_%s", slug, result.StartDate, result.EndDate)
		title = fmt.Sprintf("Department Report %s", dept.Name)
	} else {
		name = fmt.Sprintf("all_departments_report_%s_to_%s", result.StartDate, result.EndDate)
		title = "All Departments Report"
	}

	return s.render(export.Dataset{Headers: headers, Rows: rows}, name, title, format)
}

func (s *ExportService) render(data export.Dataset, name, title string, format ExportFormat) (*ExportFile, error) {
	switch format {
	case FormatPDF:
		payload, err := s.pdf.Render(data, title)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf")
		}
		return &ExportFile{Filename: name + ".pdf", ContentType: "application/pdf", Data: payload}, nil
	case FormatCSV, "":
		payload, err := s.csv.Render(data)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv")
		}
		return &ExportFile{Filename: name + ".csv", ContentType: "text/csv", Data: payload}, nil
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, "unsupported export format")
	}
}

func (s *ExportService) requireExport(ctx context.Context, userID string) error {
	set, err := s.perms.Load(ctx, userID)
	if err != nil {
		return err
	}
	if !set.Allows(models.CapExportData) {
		return appErrors.Clone(appErrors.ErrForbidden, "exporting requires the export data permission")
	}
	return nil
}
