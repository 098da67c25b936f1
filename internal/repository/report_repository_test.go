package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmployeeDaysOrderedOldestFirst(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewReportRepository(db)

	rows := sqlmock.NewRows([]string{"date", "status"}).
		AddRow(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), "Present").
		AddRow(time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), "Absent")

	mock.ExpectQuery("JOIN attendance_statuses s ON s.id = a.status_id").
		WithArgs(int64(1), "2024-01-01", "2024-01-31").
		WillReturnRows(rows)

	days, err := repo.EmployeeDays(context.Background(), 1, "2024-01-01", "2024-01-31")
	require.NoError(t, err)
	require.Len(t, days, 2)
	assert.Equal(t, "Present", days[0].Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEmployeeSummaryBuckets(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewReportRepository(db)

	rows := sqlmock.NewRows([]string{
		"total_days", "present_days", "absent_days", "holiday_days", "leave_days", "other_days", "attendance_percentage",
	}).AddRow(20, 18, 1, 0, 1, 0, 90.0)

	mock.ExpectQuery("SELECT COUNT(.+) AS total_days").
		WithArgs(int64(1), "2024-01-01", "2024-01-31").
		WillReturnRows(rows)

	summary, err := repo.EmployeeSummary(context.Background(), 1, "2024-01-01", "2024-01-31")
	require.NoError(t, err)
	assert.Equal(t, 18, summary.PresentDays)
	assert.InDelta(t, 90.0, summary.Percentage, 0.001)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEmployeeSummaryCountsOnLeaveAsLeave(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewReportRepository(db)

	rows := sqlmock.NewRows([]string{
		"total_days", "present_days", "absent_days", "holiday_days", "leave_days", "other_days", "attendance_percentage",
	}).AddRow(20, 18, 0, 0, 2, 0, 90.0)

	mock.ExpectQuery(regexp.QuoteMeta("IN ('leave', 'on leave')) AS leave_days")).
		WithArgs(int64(1), "2024-01-01", "2024-01-31").
		WillReturnRows(rows)

	summary, err := repo.EmployeeSummary(context.Background(), 1, "2024-01-01", "2024-01-31")
	require.NoError(t, err)
	assert.Equal(t, 2, summary.LeaveDays)
	assert.Equal(t, 0, summary.OtherDays)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOverallSummaryCountsOnLeaveAsLeave(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewReportRepository(db)

	rows := sqlmock.NewRows([]string{
		"total_employees", "total_days", "total_present", "total_absent", "total_holidays", "total_leaves", "overall_attendance_percentage",
	}).AddRow(5, 100, 95, 2, 0, 3, 95.0)

	mock.ExpectQuery(regexp.QuoteMeta("IN ('leave', 'on leave')) AS total_leaves")).
		WithArgs(int64(2), "2024-01-01", "2024-01-31").
		WillReturnRows(rows)

	summary, err := repo.OverallSummary(context.Background(), 2, "2024-01-01", "2024-01-31")
	require.NoError(t, err)
	assert.Equal(t, 3, summary.TotalLeaves)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDepartmentRowsKeepZeroMarkEmployees(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewReportRepository(db)

	rows := sqlmock.NewRows([]string{
		"employee_id", "employee_code", "full_name", "department_name",
		"total_days", "present_days", "absent_days", "holiday_days", "leave_days", "other_days", "attendance_percentage",
	}).
		AddRow(int64(1), "GMDQS001", "Aisha Khan", "Teaching", 20, 19, 1, 0, 0, 0, 95.0).
		AddRow(int64(3), "GMDQS003", "Carmen Diaz", "Teaching", 0, 0, 0, 0, 0, 0, 0.0)

	mock.ExpectQuery("LEFT JOIN attendance a ON a.employee_id = e.id").
		WithArgs(int64(1), "2024-01-01", "2024-01-31").
		WillReturnRows(rows)

	report, err := repo.DepartmentRows(context.Background(), 1, "2024-01-01", "2024-01-31")
	require.NoError(t, err)
	require.Len(t, report, 2)
	assert.Equal(t, 0, report[1].TotalDays)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOverallSummarySpansAllDepartmentsOnZero(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewReportRepository(db)

	rows := sqlmock.NewRows([]string{
		"total_employees", "total_days", "total_present", "total_absent", "total_holidays", "total_leaves", "overall_attendance_percentage",
	}).AddRow(12, 240, 230, 8, 0, 2, 95.83)

	mock.ExpectQuery("SELECT COUNT\\(DISTINCT e.id\\) AS total_employees").
		WithArgs(int64(0), "2024-01-01", "2024-01-31").
		WillReturnRows(rows)

	summary, err := repo.OverallSummary(context.Background(), 0, "2024-01-01", "2024-01-31")
	require.NoError(t, err)
	assert.Equal(t, 12, summary.TotalEmployees)
	assert.NoError(t, mock.ExpectationsWereMet())
}
