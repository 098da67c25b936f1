package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/gmdqs/attendance-admin-api/internal/models"
)

// DepartmentRepository handles persistence for department reference data.
type DepartmentRepository struct {
	db *sqlx.DB
}

// NewDepartmentRepository constructs the repository.
func NewDepartmentRepository(db *sqlx.DB) *DepartmentRepository {
	return &DepartmentRepository{db: db}
}

const departmentColumns = "id, name, is_active, created_by, updated_by, created_at, updated_at"

// List returns all departments ordered by name.
func (r *DepartmentRepository) List(ctx context.Context) ([]models.Department, error) {
	query := fmt.Sprintf("SELECT %s FROM departments ORDER BY name", departmentColumns)
	var rows []models.Department
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("list departments: %w", err)
	}
	return rows, nil
}

// FindByID returns a single department.
func (r *DepartmentRepository) FindByID(ctx context.Context, id int64) (*models.Department, error) {
	query := fmt.Sprintf("SELECT %s FROM departments WHERE id = $1 LIMIT 1", departmentColumns)
	var dept models.Department
	if err := r.db.GetContext(ctx, &dept, query, id); err != nil {
		return nil, err
	}
	return &dept, nil
}

// Create inserts a department.
func (r *DepartmentRepository) Create(ctx context.Context, name, createdBy string) (*models.Department, error) {
	now := time.Now().UTC()
	query := fmt.Sprintf(`INSERT INTO departments (name, is_active, created_by, updated_by, created_at, updated_at)
VALUES ($1, TRUE, $2, $2, $3, $3) RETURNING %s`, departmentColumns)
	var dept models.Department
	if err := r.db.GetContext(ctx, &dept, query, name, createdBy, now); err != nil {
		return nil, fmt.Errorf("create department: %w", err)
	}
	return &dept, nil
}

// Update renames a department.
func (r *DepartmentRepository) Update(ctx context.Context, id int64, name, updatedBy string) (*models.Department, error) {
	query := fmt.Sprintf(`UPDATE departments SET name = $2, updated_by = $3, updated_at = $4
WHERE id = $1 RETURNING %s`, departmentColumns)
	var dept models.Department
	if err := r.db.GetContext(ctx, &dept, query, id, name, updatedBy, time.Now().UTC()); err != nil {
		return nil, err
	}
	return &dept, nil
}

// Delete removes a department; the caller is responsible for the in-use
// integrity guard.
func (r *DepartmentRepository) Delete(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM departments WHERE id = $1", id); err != nil {
		return fmt.Errorf("delete department: %w", err)
	}
	return nil
}

// CountEmployees returns how many active employees reference a department.
func (r *DepartmentRepository) CountEmployees(ctx context.Context, id int64) (int, error) {
	var count int
	query := "SELECT COUNT(*) FROM employees WHERE department_id = $1 AND is_active = TRUE"
	if err := r.db.GetContext(ctx, &count, query, id); err != nil {
		return 0, fmt.Errorf("count department employees: %w", err)
	}
	return count, nil
}
