package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/gmdqs/attendance-admin-api/internal/models"
)

// EmployeeRepository handles persistence for employee identity records.
type EmployeeRepository struct {
	db *sqlx.DB
}

// NewEmployeeRepository constructs the repository.
func NewEmployeeRepository(db *sqlx.DB) *EmployeeRepository {
	return &EmployeeRepository{db: db}
}

const employeeSelect = `SELECT e.id, e.employee_code, e.full_name, e.department_id, d.name AS department_name,
e.mobile_number, e.is_active, e.created_by, e.updated_by, e.created_at, e.updated_at
FROM employees e
JOIN departments d ON d.id = e.department_id`

// ListActive returns active employees joined to their department name,
// ordered by full name. This is the grid roster.
func (r *EmployeeRepository) ListActive(ctx context.Context) ([]models.Employee, error) {
	query := employeeSelect + " WHERE e.is_active = TRUE ORDER BY e.full_name"
	var rows []models.Employee
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("list active employees: %w", err)
	}
	return rows, nil
}

// FindByID returns a single employee by surrogate id.
func (r *EmployeeRepository) FindByID(ctx context.Context, id int64) (*models.Employee, error) {
	query := employeeSelect + " WHERE e.id = $1 LIMIT 1"
	var emp models.Employee
	if err := r.db.GetContext(ctx, &emp, query, id); err != nil {
		return nil, err
	}
	return &emp, nil
}

// Create registers a new employee. Code arrives already prefixed.
func (r *EmployeeRepository) Create(ctx context.Context, emp *models.Employee) (*models.Employee, error) {
	now := time.Now().UTC()
	query := `INSERT INTO employees (employee_code, full_name, department_id, mobile_number, is_active, created_by, updated_by, created_at, updated_at)
VALUES ($1, $2, $3, $4, TRUE, $5, $5, $6, $6)
RETURNING id`
	var id int64
	if err := r.db.GetContext(ctx, &id, query, emp.Code, emp.FullName, emp.DepartmentID, emp.MobileNumber, emp.CreatedBy, now); err != nil {
		return nil, fmt.Errorf("create employee: %w", err)
	}
	return r.FindByID(ctx, id)
}

// Update mutates the identity fields; the surrogate id never changes.
func (r *EmployeeRepository) Update(ctx context.Context, emp *models.Employee) (*models.Employee, error) {
	query := `UPDATE employees SET employee_code = $2, full_name = $3, department_id = $4, mobile_number = $5, updated_by = $6, updated_at = $7
WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, emp.ID, emp.Code, emp.FullName, emp.DepartmentID, emp.MobileNumber, emp.UpdatedBy, time.Now().UTC())
	if err != nil {
		return nil, fmt.Errorf("update employee: %w", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return nil, fmt.Errorf("update employee %d: no row", emp.ID)
	}
	return r.FindByID(ctx, emp.ID)
}

// Delete removes an employee; attendance rows cascade at the database.
func (r *EmployeeRepository) Delete(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM employees WHERE id = $1", id); err != nil {
		return fmt.Errorf("delete employee: %w", err)
	}
	return nil
}
