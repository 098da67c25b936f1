package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/gmdqs/attendance-admin-api/internal/models"
)

// AttendanceRepository persists one row per employee per day.
// The (employee_id, date) pair is unique; writes converge through upsert.
type AttendanceRepository struct {
	db *sqlx.DB
}

// NewAttendanceRepository constructs the repository.
func NewAttendanceRepository(db *sqlx.DB) *AttendanceRepository {
	return &AttendanceRepository{db: db}
}

const attendanceColumns = `id, employee_id, date, status_id, created_by, updated_by, created_at, updated_at`

// ListRange returns every attendance row whose date falls in [start, end],
// both inclusive, as YYYY-MM-DD strings.
func (r *AttendanceRepository) ListRange(ctx context.Context, start, end string) ([]models.AttendanceRecord, error) {
	query := fmt.Sprintf(`SELECT %s FROM attendance
WHERE date >= $1 AND date <= $2
ORDER BY employee_id, date`, attendanceColumns)
	var rows []models.AttendanceRecord
	if err := r.db.SelectContext(ctx, &rows, query, start, end); err != nil {
		return nil, fmt.Errorf("list attendance %s..%s: %w", start, end, err)
	}
	return rows, nil
}

// Upsert writes a status for one cell. A second write for the same
// employee and date replaces the status instead of adding a row.
func (r *AttendanceRepository) Upsert(ctx context.Context, rec *models.AttendanceRecord) (*models.AttendanceRecord, error) {
	now := time.Now().UTC()
	query := fmt.Sprintf(`INSERT INTO attendance (employee_id, date, status_id, created_by, updated_by, created_at, updated_at)
VALUES ($1, $2, $3, $4, $4, $5, $5)
ON CONFLICT (employee_id, date) DO UPDATE
SET status_id = EXCLUDED.status_id, updated_by = EXCLUDED.updated_by, updated_at = EXCLUDED.updated_at
RETURNING %s`, attendanceColumns)
	var out models.AttendanceRecord
	if err := r.db.GetContext(ctx, &out, query, rec.EmployeeID, rec.Date, rec.StatusID, rec.UpdatedBy, now); err != nil {
		return nil, fmt.Errorf("upsert attendance: %w", err)
	}
	return &out, nil
}

// Delete clears a single cell. Missing rows are not an error.
func (r *AttendanceRepository) Delete(ctx context.Context, employeeID int64, date string) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM attendance WHERE employee_id = $1 AND date = $2", employeeID, date); err != nil {
		return fmt.Errorf("delete attendance: %w", err)
	}
	return nil
}

// DeleteByEmployee purges every row for an employee. Used when the
// employee is removed from the roster.
func (r *AttendanceRepository) DeleteByEmployee(ctx context.Context, employeeID int64) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM attendance WHERE employee_id = $1", employeeID); err != nil {
		return fmt.Errorf("delete attendance for employee %d: %w", employeeID, err)
	}
	return nil
}
