package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/gmdqs/attendance-admin-api/internal/models"
	appErrors "github.com/gmdqs/attendance-admin-api/pkg/errors"
)

type employeeRepository interface {
	ListActive(ctx context.Context) ([]models.Employee, error)
	FindByID(ctx context.Context, id int64) (*models.Employee, error)
	Create(ctx context.Context, emp *models.Employee) (*models.Employee, error)
	Update(ctx context.Context, emp *models.Employee) (*models.Employee, error)
	Delete(ctx context.Context, id int64) error
}

// gridPurger drops an employee's in-memory grid state after removal.
type gridPurger interface {
	PurgeEmployee(employeeID int64)
}

// EmployeeService manages the roster. Employee codes are stored with the
// organization prefix prepended; callers submit the bare suffix.
type EmployeeService struct {
	repo       employeeRepository
	purger     gridPurger
	codePrefix string
	validator  *validator.Validate
	logger     *zap.Logger
}

// NewEmployeeService constructs an EmployeeService.
func NewEmployeeService(repo employeeRepository, purger gridPurger, codePrefix string, validate *validator.Validate, logger *zap.Logger) *EmployeeService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &EmployeeService{repo: repo, purger: purger, codePrefix: codePrefix, validator: validate, logger: logger}
}

// List returns the active roster ordered by name.
func (s *EmployeeService) List(ctx context.Context) ([]models.Employee, error) {
	employees, err := s.repo.ListActive(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list employees")
	}
	return employees, nil
}

// Get returns one employee.
func (s *EmployeeService) Get(ctx context.Context, id int64) (*models.Employee, error) {
	emp, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "employee not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load employee")
	}
	return emp, nil
}

// Create registers an employee; the stored code carries the fixed prefix.
func (s *EmployeeService) Create(ctx context.Context, req models.EmployeeRequest, actorID string) (*models.Employee, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid employee payload")
	}

	emp := &models.Employee{
		Code:         s.applyPrefix(req.Code),
		FullName:     strings.TrimSpace(req.FullName),
		DepartmentID: req.DepartmentID,
		MobileNumber: strings.TrimSpace(req.MobileNumber),
		CreatedBy:    actorID,
	}

	stored, err := s.repo.Create(ctx, emp)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create employee")
	}
	return stored, nil
}

// Update edits identity fields. The surrogate id is stable, so existing
// attendance rows follow the employee through code and department changes.
func (s *EmployeeService) Update(ctx context.Context, id int64, req models.EmployeeRequest, actorID string) (*models.Employee, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid employee payload")
	}

	existing, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	existing.Code = s.applyPrefix(req.Code)
	existing.FullName = strings.TrimSpace(req.FullName)
	existing.DepartmentID = req.DepartmentID
	existing.MobileNumber = strings.TrimSpace(req.MobileNumber)
	existing.UpdatedBy = actorID

	stored, err := s.repo.Update(ctx, existing)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update employee")
	}
	return stored, nil
}

// Delete removes an employee. Attendance rows cascade at the database and the
// in-memory grid state is purged so the change is visible without a reload.
func (s *EmployeeService) Delete(ctx context.Context, id int64) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete employee")
	}

	if s.purger != nil {
		s.purger.PurgeEmployee(id)
	}
	return nil
}

// applyPrefix normalises a submitted code to its stored, prefixed form. A
// code already carrying the prefix passes through unchanged.
func (s *EmployeeService) applyPrefix(code string) string {
	code = strings.TrimSpace(code)
	if s.codePrefix == "" || strings.HasPrefix(code, s.codePrefix) {
		return code
	}
	return s.codePrefix + code
}
