package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/gmdqs/attendance-admin-api/internal/models"
)

// ReportRepository runs the aggregate queries behind the two report modes.
// Status buckets are matched by lowercased status name so renamed custom
// statuses still land in the "other" bucket rather than vanishing.
type ReportRepository struct {
	db *sqlx.DB
}

// NewReportRepository constructs the repository.
func NewReportRepository(db *sqlx.DB) *ReportRepository {
	return &ReportRepository{db: db}
}

const statusBuckets = `
COUNT(*) FILTER (WHERE LOWER(s.name) = 'present')  AS present_days,
COUNT(*) FILTER (WHERE LOWER(s.name) = 'absent')   AS absent_days,
COUNT(*) FILTER (WHERE LOWER(s.name) = 'holiday')  AS holiday_days,
COUNT(*) FILTER (WHERE LOWER(s.name) IN ('leave', 'on leave')) AS leave_days,
COUNT(*) FILTER (WHERE LOWER(s.name) NOT IN ('present', 'absent', 'holiday', 'leave', 'on leave')) AS other_days`

// EmployeeDays returns the per-day detail rows for one employee, oldest first.
func (r *ReportRepository) EmployeeDays(ctx context.Context, employeeID int64, start, end string) ([]models.EmployeeDayRow, error) {
	query := `SELECT a.date, s.name AS status
FROM attendance a
JOIN attendance_statuses s ON s.id = a.status_id
WHERE a.employee_id = $1 AND a.date >= $2 AND a.date <= $3
ORDER BY a.date`
	var rows []models.EmployeeDayRow
	if err := r.db.SelectContext(ctx, &rows, query, employeeID, start, end); err != nil {
		return nil, fmt.Errorf("employee report rows: %w", err)
	}
	return rows, nil
}

// EmployeeSummary aggregates one employee's range into the bucket counts.
// The percentage is present days over total marked days; an empty range
// yields zero, never a division error.
func (r *ReportRepository) EmployeeSummary(ctx context.Context, employeeID int64, start, end string) (*models.EmployeeSummary, error) {
	query := fmt.Sprintf(`SELECT COUNT(*) AS total_days, %s,
COALESCE(ROUND(COUNT(*) FILTER (WHERE LOWER(s.name) = 'present') * 100.0 / NULLIF(COUNT(*), 0), 2), 0) AS attendance_percentage
FROM attendance a
JOIN attendance_statuses s ON s.id = a.status_id
WHERE a.employee_id = $1 AND a.date >= $2 AND a.date <= $3`, statusBuckets)
	var out models.EmployeeSummary
	if err := r.db.GetContext(ctx, &out, query, employeeID, start, end); err != nil {
		return nil, fmt.Errorf("employee report summary: %w", err)
	}
	return &out, nil
}

// DepartmentRows returns one aggregate row per active employee in the
// department. Pass departmentID = 0 to span all departments. Employees
// with no marks in the range still appear with zero counts.
func (r *ReportRepository) DepartmentRows(ctx context.Context, departmentID int64, start, end string) ([]models.DepartmentReportRow, error) {
	query := fmt.Sprintf(`SELECT e.id AS employee_id, e.employee_code, e.full_name, d.name AS department_name,
COUNT(a.id) AS total_days, %s,
COALESCE(ROUND(COUNT(*) FILTER (WHERE LOWER(s.name) = 'present') * 100.0 / NULLIF(COUNT(a.id), 0), 2), 0) AS attendance_percentage
FROM employees e
JOIN departments d ON d.id = e.department_id
LEFT JOIN attendance a ON a.employee_id = e.id AND a.date >= $2 AND a.date <= $3
LEFT JOIN attendance_statuses s ON s.id = a.status_id
WHERE e.is_active = TRUE AND ($1 = 0 OR e.department_id = $1)
GROUP BY e.id, e.employee_code, e.full_name, d.name
ORDER BY e.full_name`, statusBuckets)
	var rows []models.DepartmentReportRow
	if err := r.db.SelectContext(ctx, &rows, query, departmentID, start, end); err != nil {
		return nil, fmt.Errorf("department report rows: %w", err)
	}
	return rows, nil
}

// OverallSummary collapses the same scope into a single organization row.
func (r *ReportRepository) OverallSummary(ctx context.Context, departmentID int64, start, end string) (*models.OverallSummary, error) {
	query := `SELECT COUNT(DISTINCT e.id) AS total_employees,
COUNT(a.id) AS total_days,
COUNT(*) FILTER (WHERE LOWER(s.name) = 'present') AS total_present,
COUNT(*) FILTER (WHERE LOWER(s.name) = 'absent')  AS total_absent,
COUNT(*) FILTER (WHERE LOWER(s.name) = 'holiday') AS total_holidays,
COUNT(*) FILTER (WHERE LOWER(s.name) IN ('leave', 'on leave')) AS total_leaves,
COALESCE(ROUND(COUNT(*) FILTER (WHERE LOWER(s.name) = 'present') * 100.0 / NULLIF(COUNT(a.id), 0), 2), 0) AS overall_attendance_percentage
FROM employees e
LEFT JOIN attendance a ON a.employee_id = e.id AND a.date >= $2 AND a.date <= $3
LEFT JOIN attendance_statuses s ON s.id = a.status_id
WHERE e.is_active = TRUE AND ($1 = 0 OR e.department_id = $1)`
	var out models.OverallSummary
	if err := r.db.GetContext(ctx, &out, query, departmentID, start, end); err != nil {
		return nil, fmt.Errorf("overall report summary: %w", err)
	}
	return &out, nil
}
