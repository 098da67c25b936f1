package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/gmdqs/attendance-admin-api/internal/models"
	appErrors "github.com/gmdqs/attendance-admin-api/pkg/errors"
)

const departmentCacheKey = "reference:departments"

type departmentRepository interface {
	List(ctx context.Context) ([]models.Department, error)
	FindByID(ctx context.Context, id int64) (*models.Department, error)
	Create(ctx context.Context, name, createdBy string) (*models.Department, error)
	Update(ctx context.Context, id int64, name, updatedBy string) (*models.Department, error)
	Delete(ctx context.Context, id int64) error
	CountEmployees(ctx context.Context, id int64) (int, error)
}

type referenceCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	DeleteByPattern(ctx context.Context, pattern string) error
}

// DepartmentService manages the department reference catalog.
type DepartmentService struct {
	repo      departmentRepository
	cache     referenceCache
	cacheTTL  time.Duration
	validator *validator.Validate
	logger    *zap.Logger
}

// NewDepartmentService constructs a DepartmentService.
func NewDepartmentService(repo departmentRepository, cache referenceCache, cacheTTL time.Duration, validate *validator.Validate, logger *zap.Logger) *DepartmentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &DepartmentService{repo: repo, cache: cache, cacheTTL: cacheTTL, validator: validate, logger: logger}
}

// List returns all departments, served from cache when warm.
func (s *DepartmentService) List(ctx context.Context) ([]models.Department, error) {
	if s.cache != nil {
		var cached []models.Department
		if err := s.cache.Get(ctx, departmentCacheKey, &cached); err == nil {
			return cached, nil
		} else if !errors.Is(err, appErrors.ErrCacheMiss) {
			s.logger.Warn("department cache read failed", zap.Error(err))
		}
	}

	departments, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list departments")
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, departmentCacheKey, departments, s.cacheTTL); err != nil {
			s.logger.Warn("department cache write failed", zap.Error(err))
		}
	}
	return departments, nil
}

// Create adds a department to the catalog.
func (s *DepartmentService) Create(ctx context.Context, req models.DepartmentRequest, actorID string) (*models.Department, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid department payload")
	}

	dept, err := s.repo.Create(ctx, req.Name, actorID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create department")
	}

	s.invalidateCache(ctx)
	return dept, nil
}

// Update renames a department.
func (s *DepartmentService) Update(ctx context.Context, id int64, req models.DepartmentRequest, actorID string) (*models.Department, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid department payload")
	}

	dept, err := s.repo.Update(ctx, id, req.Name, actorID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "department not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update department")
	}

	s.invalidateCache(ctx)
	return dept, nil
}

// Delete removes a department. A department that still has employees is
// protected; the error names the blocking count so the caller can explain.
func (s *DepartmentService) Delete(ctx context.Context, id int64) error {
	count, err := s.repo.CountEmployees(ctx, id)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count department employees")
	}
	if count > 0 {
		return appErrors.Clone(appErrors.ErrConflict, fmt.Sprintf("department still has %d employees", count))
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete department")
	}

	s.invalidateCache(ctx)
	return nil
}

func (s *DepartmentService) invalidateCache(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.DeleteByPattern(ctx, departmentCacheKey); err != nil {
		s.logger.Warn("department cache invalidation failed", zap.Error(err))
	}
}
