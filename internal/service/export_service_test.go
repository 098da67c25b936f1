package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gmdqs/attendance-admin-api/internal/models"
	appErrors "github.com/gmdqs/attendance-admin-api/pkg/errors"
)

type departmentLookupStub struct {
	departments map[int64]models.Department
}

func (s departmentLookupStub) FindByID(ctx context.Context, id int64) (*models.Department, error) {
	dept, ok := s.departments[id]
	if !ok {
		return nil, assert.AnError
	}
	return &dept, nil
}

func newExportServiceForTest(employees []models.Employee, attendance *attendanceRepoStub, reports reportRepoStub) *ExportService {
	empRepo := employeeRepoStub{employees: employees}
	statuses := statusCatalogStub{statuses: []models.AttendanceStatus{
		{ID: 1, Name: "Present", Active: true},
		{ID: 2, Name: "Absent", Active: true},
	}}
	departments := departmentLookupStub{departments: map[int64]models.Department{
		2: {ID: 2, Name: "Physics Lab"},
	}}
	reportSvc := NewReportService(reports, empRepo, validator.New(), nil)
	perms := permsStub{set: models.PermissionSet{CanExportData: true}}
	return NewExportService(empRepo, departments, statuses, attendance, reportSvc, perms, nil)
}

func parseCSV(t *testing.T, data []byte) [][]string {
	t.Helper()
	records, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	require.NoError(t, err)
	return records
}

func TestExportGridLeapFebruary(t *testing.T) {
	employees := []models.Employee{
		{ID: 1, Code: "GMDQS001", FullName: "Aisha Khan", Department: "Teaching", MobileNumber: "0300111"},
		{ID: 2, Code: "GMDQS002", FullName: "Bilal Ahmed", Department: "Administration", MobileNumber: "0300222"},
	}
	attendance := newAttendanceRepoStub()
	attendance.rows[1] = map[string]int64{"2024-02-29": 1}

	svc := newExportServiceForTest(employees, attendance, reportRepoStub{})

	file, err := svc.ExportGrid(context.Background(), "u1", 2024, 1, FormatCSV)
	require.NoError(t, err)
	assert.Equal(t, "attendance_February_2024.csv", file.Filename)
	assert.Equal(t, "text/csv", file.ContentType)

	records := parseCSV(t, file.Data)
	require.Len(t, records, 3)

	header := records[0]
	require.Len(t, header, 3+29)
	assert.Equal(t, []string{"Employee ID", "Full Name", "Department"}, header[:3])
	assert.Equal(t, "1", header[3])
	assert.Equal(t, "29", header[len(header)-1])

	// Day 29 is marked Present for the first employee only.
	assert.Equal(t, "Present", records[1][len(header)-1])
	assert.Equal(t, "", records[2][len(header)-1])
}

func TestExportGridRequiresExportPermission(t *testing.T) {
	svc := newExportServiceForTest(nil, newAttendanceRepoStub(), reportRepoStub{})
	svc.perms = permsStub{set: models.PermissionSet{CanViewAttendance: true}}

	_, err := svc.ExportGrid(context.Background(), "u1", 2024, 1, FormatCSV)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
}

func TestExportGridPDFFilename(t *testing.T) {
	svc := newExportServiceForTest(nil, newAttendanceRepoStub(), reportRepoStub{})

	file, err := svc.ExportGrid(context.Background(), "u1", 2023, 0, FormatPDF)
	require.NoError(t, err)
	assert.Equal(t, "attendance_January_2023.pdf", file.Filename)
	assert.Equal(t, "application/pdf", file.ContentType)
	assert.NotEmpty(t, file.Data)
}

func TestExportEmployeeReportFilename(t *testing.T) {
	employees := []models.Employee{{ID: 1, Code: "GMDQS042", FullName: "Aisha Khan"}}
	svc := newExportServiceForTest(employees, newAttendanceRepoStub(), reportRepoStub{})

	file, err := svc.ExportReport(context.Background(), "u1", models.ReportRequest{
		EmployeeID: int64Ptr(1),
		StartDate:  "2024-01-01",
		EndDate:    "2024-01-31",
	}, FormatCSV)
	require.NoError(t, err)
	assert.Equal(t, "attendance_report_GMDQS042_2024-01-01_to_2024-01-31.csv", file.Filename)
}

func TestExportEmployeeReportCarriesIdentityAndWeekday(t *testing.T) {
	employees := []models.Employee{
		{ID: 1, Code: "GMDQS042", FullName: "Aisha Khan", Department: "Teaching", MobileNumber: "0300111"},
	}
	reports := reportRepoStub{employeeRows: []models.EmployeeDayRow{
		{Date: time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), Status: "Present"},
		{Date: time.Date(2024, 1, 6, 0, 0, 0, 0, time.UTC), Status: "On Leave"},
	}}
	svc := newExportServiceForTest(employees, newAttendanceRepoStub(), reports)

	file, err := svc.ExportReport(context.Background(), "u1", models.ReportRequest{
		EmployeeID: int64Ptr(1),
		StartDate:  "2024-01-01",
		EndDate:    "2024-01-31",
	}, FormatCSV)
	require.NoError(t, err)

	records := parseCSV(t, file.Data)
	require.Equal(t, []string{"Employee ID", "Employee Name", "Mobile Number", "Department", "Date", "Day", "Status"}, records[0])

	require.Len(t, records, 4)
	assert.Equal(t, []string{"GMDQS042", "Aisha Khan", "0300111", "Teaching", "2024-01-02", "Tuesday", "Present"}, records[1])
	assert.Equal(t, "Saturday", records[2][5])
	assert.Equal(t, "On Leave", records[2][6])

	// The trailing summary row only fills the Date and Status columns.
	assert.Equal(t, "Summary", records[3][4])
	assert.Contains(t, records[3][6], "Present 0/2")
}

func TestExportDepartmentReportFilenameSlugsName(t *testing.T) {
	svc := newExportServiceForTest(nil, newAttendanceRepoStub(), reportRepoStub{})

	file, err := svc.ExportReport(context.Background(), "u1", models.ReportRequest{
		DepartmentID: int64Ptr(2),
		StartDate:    "2024-01-01",
		EndDate:      "2024-01-31",
	}, FormatCSV)
	require.NoError(t, err)
	assert.Equal(t, "department_report_Physics_Lab_2024-01-01_to_2024-01-31.csv", file.Filename)
}

func TestExportAllDepartmentsFilename(t *testing.T) {
	svc := newExportServiceForTest(nil, newAttendanceRepoStub(), reportRepoStub{})

	file, err := svc.ExportReport(context.Background(), "u1", models.ReportRequest{
		StartDate: "2024-01-01",
		EndDate:   "2024-01-31",
	}, FormatCSV)
	require.NoError(t, err)
	assert.Equal(t, "all_departments_report_2024-01-01_to_2024-01-31.csv", file.Filename)
}

func TestExportRejectsUnknownFormat(t *testing.T) {
	svc := newExportServiceForTest(nil, newAttendanceRepoStub(), reportRepoStub{})

	_, err := svc.ExportGrid(context.Background(), "u1", 2024, 1, ExportFormat("xlsx"))
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}
