package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/gmdqs/attendance-admin-api/internal/models"
)

// StatusRepository handles persistence for the attendance status catalog.
type StatusRepository struct {
	db *sqlx.DB
}

// NewStatusRepository constructs the repository.
func NewStatusRepository(db *sqlx.DB) *StatusRepository {
	return &StatusRepository{db: db}
}

const statusColumns = "id, name, is_active, created_by, updated_by, created_at, updated_at"

// List returns every catalog entry ordered by name.
func (r *StatusRepository) List(ctx context.Context) ([]models.AttendanceStatus, error) {
	query := fmt.Sprintf("SELECT %s FROM attendance_statuses ORDER BY name", statusColumns)
	var rows []models.AttendanceStatus
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("list attendance statuses: %w", err)
	}
	return rows, nil
}

// ListActive returns the active catalog ordered by name; this is what grid
// cells may be set to.
func (r *StatusRepository) ListActive(ctx context.Context) ([]models.AttendanceStatus, error) {
	query := fmt.Sprintf("SELECT %s FROM attendance_statuses WHERE is_active = TRUE ORDER BY name", statusColumns)
	var rows []models.AttendanceStatus
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("list active attendance statuses: %w", err)
	}
	return rows, nil
}

// Create inserts a catalog entry.
func (r *StatusRepository) Create(ctx context.Context, name, createdBy string) (*models.AttendanceStatus, error) {
	now := time.Now().UTC()
	query := fmt.Sprintf(`INSERT INTO attendance_statuses (name, is_active, created_by, updated_by, created_at, updated_at)
VALUES ($1, TRUE, $2, $2, $3, $3) RETURNING %s`, statusColumns)
	var status models.AttendanceStatus
	if err := r.db.GetContext(ctx, &status, query, name, createdBy, now); err != nil {
		return nil, fmt.Errorf("create attendance status: %w", err)
	}
	return &status, nil
}

// Update renames a catalog entry.
func (r *StatusRepository) Update(ctx context.Context, id int64, name, updatedBy string) (*models.AttendanceStatus, error) {
	query := fmt.Sprintf(`UPDATE attendance_statuses SET name = $2, updated_by = $3, updated_at = $4
WHERE id = $1 RETURNING %s`, statusColumns)
	var status models.AttendanceStatus
	if err := r.db.GetContext(ctx, &status, query, id, name, updatedBy, time.Now().UTC()); err != nil {
		return nil, err
	}
	return &status, nil
}

// SetActive toggles a catalog entry; deactivation guards run in the service.
func (r *StatusRepository) SetActive(ctx context.Context, id int64, active bool, updatedBy string) error {
	_, err := r.db.ExecContext(ctx,
		"UPDATE attendance_statuses SET is_active = $2, updated_by = $3, updated_at = $4 WHERE id = $1",
		id, active, updatedBy, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("set attendance status active: %w", err)
	}
	return nil
}

// Delete removes a catalog entry; the in-use guard runs in the service.
func (r *StatusRepository) Delete(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM attendance_statuses WHERE id = $1", id); err != nil {
		return fmt.Errorf("delete attendance status: %w", err)
	}
	return nil
}

// CountRecords returns how many attendance rows reference a status.
func (r *StatusRepository) CountRecords(ctx context.Context, id int64) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, "SELECT COUNT(*) FROM attendance WHERE status_id = $1", id); err != nil {
		return 0, fmt.Errorf("count status records: %w", err)
	}
	return count, nil
}
