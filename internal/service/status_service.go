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

const statusCacheKey = "reference:statuses"

type statusRepository interface {
	List(ctx context.Context) ([]models.AttendanceStatus, error)
	ListActive(ctx context.Context) ([]models.AttendanceStatus, error)
	Create(ctx context.Context, name, createdBy string) (*models.AttendanceStatus, error)
	Update(ctx context.Context, id int64, name, updatedBy string) (*models.AttendanceStatus, error)
	SetActive(ctx context.Context, id int64, active bool, updatedBy string) error
	Delete(ctx context.Context, id int64) error
	CountRecords(ctx context.Context, id int64) (int, error)
}

// StatusService manages the attendance status catalog.
type StatusService struct {
	repo      statusRepository
	cache     referenceCache
	cacheTTL  time.Duration
	validator *validator.Validate
	logger    *zap.Logger
}

// NewStatusService constructs a StatusService.
func NewStatusService(repo statusRepository, cache referenceCache, cacheTTL time.Duration, validate *validator.Validate, logger *zap.Logger) *StatusService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &StatusService{repo: repo, cache: cache, cacheTTL: cacheTTL, validator: validate, logger: logger}
}

// List returns the full catalog including inactive entries.
func (s *StatusService) List(ctx context.Context) ([]models.AttendanceStatus, error) {
	statuses, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list statuses")
	}
	return statuses, nil
}

// ListActive returns the active catalog the grid offers for marking, served
// from cache when warm.
func (s *StatusService) ListActive(ctx context.Context) ([]models.AttendanceStatus, error) {
	if s.cache != nil {
		var cached []models.AttendanceStatus
		if err := s.cache.Get(ctx, statusCacheKey, &cached); err == nil {
			return cached, nil
		} else if !errors.Is(err, appErrors.ErrCacheMiss) {
			s.logger.Warn("status cache read failed", zap.Error(err))
		}
	}

	statuses, err := s.repo.ListActive(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list active statuses")
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, statusCacheKey, statuses, s.cacheTTL); err != nil {
			s.logger.Warn("status cache write failed", zap.Error(err))
		}
	}
	return statuses, nil
}

// Create adds a status to the catalog.
func (s *StatusService) Create(ctx context.Context, req models.StatusRequest, actorID string) (*models.AttendanceStatus, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid status payload")
	}

	status, err := s.repo.Create(ctx, req.Name, actorID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create status")
	}

	s.invalidateCache(ctx)
	return status, nil
}

// Update renames a catalog entry. Existing attendance rows keep their status
// id, so they pick up the new display name.
func (s *StatusService) Update(ctx context.Context, id int64, req models.StatusRequest, actorID string) (*models.AttendanceStatus, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid status payload")
	}

	status, err := s.repo.Update(ctx, id, req.Name, actorID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "status not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update status")
	}

	s.invalidateCache(ctx)
	return status, nil
}

// SetActive toggles a status in or out of the marking catalog without
// touching existing cells.
func (s *StatusService) SetActive(ctx context.Context, id int64, active bool, actorID string) error {
	if err := s.repo.SetActive(ctx, id, active, actorID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "status not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to toggle status")
	}

	s.invalidateCache(ctx)
	return nil
}

// Delete removes a status that no attendance row references. Referenced
// statuses are protected; deactivate them instead.
func (s *StatusService) Delete(ctx context.Context, id int64) error {
	count, err := s.repo.CountRecords(ctx, id)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count status usage")
	}
	if count > 0 {
		return appErrors.Clone(appErrors.ErrConflict, fmt.Sprintf("status is used by %d attendance records", count))
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete status")
	}

	s.invalidateCache(ctx)
	return nil
}

func (s *StatusService) invalidateCache(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.DeleteByPattern(ctx, statusCacheKey); err != nil {
		s.logger.Warn("status cache invalidation failed", zap.Error(err))
	}
}
