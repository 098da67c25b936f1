package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/gmdqs/attendance-admin-api/internal/models"
	appErrors "github.com/gmdqs/attendance-admin-api/pkg/errors"
)

type permissionRepository interface {
	Find(ctx context.Context, userID string) (*models.PermissionSet, error)
	Upsert(ctx context.Context, set *models.PermissionSet) (*models.PermissionSet, error)
	Delete(ctx context.Context, userID string) error
	ListAdmins(ctx context.Context) ([]models.AdminUser, error)
}

type permissionAuditor interface {
	CreateAuditLog(ctx context.Context, log *models.AuditLog) error
}

// PermissionService resolves and manages per-user permission sets. Resolved
// sets are cached per user for the session; mutations invalidate the cache so
// the next check sees the new flags.
type PermissionService struct {
	repo    permissionRepository
	auditor permissionAuditor
	logger  *zap.Logger

	mu    sync.RWMutex
	cache map[string]models.PermissionSet
}

// NewPermissionService constructs a PermissionService.
func NewPermissionService(repo permissionRepository, auditor permissionAuditor, logger *zap.Logger) *PermissionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PermissionService{
		repo:    repo,
		auditor: auditor,
		logger:  logger,
		cache:   make(map[string]models.PermissionSet),
	}
}

// Load resolves the permission set for a user. A user without a stored row
// resolves to the all-false zero set; that absence is a valid answer, not an
// error. Any other lookup failure is surfaced so callers deny access rather
// than silently degrade.
func (s *PermissionService) Load(ctx context.Context, userID string) (models.PermissionSet, error) {
	s.mu.RLock()
	if set, ok := s.cache[userID]; ok {
		s.mu.RUnlock()
		return set, nil
	}
	s.mu.RUnlock()

	set, err := s.repo.Find(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			zero := models.PermissionSet{UserID: userID}
			s.store(userID, zero)
			return zero, nil
		}
		return models.PermissionSet{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load permissions")
	}

	s.store(userID, *set)
	return *set, nil
}

// Check reports whether the user holds a capability. Errors resolve to deny.
func (s *PermissionService) Check(ctx context.Context, userID string, cap models.Capability) bool {
	set, err := s.Load(ctx, userID)
	if err != nil {
		s.logger.Warn("permission lookup failed, denying", zap.String("user_id", userID), zap.Error(err))
		return false
	}
	return set.Allows(cap)
}

// Update replaces the stored flags for a target user. The actor must hold the
// manage-admins capability. When the actor updates their own row the cached
// set is swapped immediately so the change applies to their next request.
func (s *PermissionService) Update(ctx context.Context, actorID, targetID string, req models.UpdatePermissionsRequest) (*models.PermissionSet, error) {
	actor, err := s.Load(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if !actor.Allows(models.CapManageAdmins) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "managing admins requires the manage admins permission")
	}

	set := &models.PermissionSet{
		UserID:             targetID,
		CanViewAttendance:  req.CanViewAttendance,
		CanWriteAttendance: req.CanWriteAttendance,
		CanExportData:      req.CanExportData,
		CanManageEmployees: req.CanManageEmployees,
		CanManageAdmins:    req.CanManageAdmins,
		IsSuperAdmin:       req.IsSuperAdmin,
		UpdatedBy:          actorID,
	}

	stored, err := s.repo.Upsert(ctx, set)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store permissions")
	}

	s.invalidate(targetID)
	if actorID == targetID {
		s.store(targetID, *stored)
	}

	s.audit(ctx, actorID, targetID, models.AuditActionPermissionsUpdate, req)
	return stored, nil
}

// Revoke removes the stored permission row for a user, returning them to the
// all-false zero set.
func (s *PermissionService) Revoke(ctx context.Context, actorID, targetID string) error {
	actor, err := s.Load(ctx, actorID)
	if err != nil {
		return err
	}
	if !actor.Allows(models.CapManageAdmins) {
		return appErrors.Clone(appErrors.ErrForbidden, "managing admins requires the manage admins permission")
	}
	if actorID == targetID {
		return appErrors.Clone(appErrors.ErrConflict, "cannot revoke your own permissions")
	}

	if err := s.repo.Delete(ctx, targetID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to revoke permissions")
	}

	s.invalidate(targetID)
	s.audit(ctx, actorID, targetID, models.AuditActionPermissionsRevoke, nil)
	return nil
}

// ListAdmins returns every account with its permission flags for the admin
// management screen.
func (s *PermissionService) ListAdmins(ctx context.Context, actorID string) ([]models.AdminUser, error) {
	actor, err := s.Load(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if !actor.Allows(models.CapManageAdmins) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "managing admins requires the manage admins permission")
	}

	admins, err := s.repo.ListAdmins(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list admins")
	}
	return admins, nil
}

// Invalidate drops a user's cached permission set.
func (s *PermissionService) Invalidate(userID string) {
	s.invalidate(userID)
}

func (s *PermissionService) store(userID string, set models.PermissionSet) {
	s.mu.Lock()
	s.cache[userID] = set
	s.mu.Unlock()
}

func (s *PermissionService) invalidate(userID string) {
	s.mu.Lock()
	delete(s.cache, userID)
	s.mu.Unlock()
}

func (s *PermissionService) audit(ctx context.Context, actorID, targetID string, action models.AuditAction, payload interface{}) {
	if s.auditor == nil {
		return
	}
	var values []byte
	if payload != nil {
		values, _ = json.Marshal(payload)
	}
	if err := s.auditor.CreateAuditLog(ctx, &models.AuditLog{
		UserID:     &actorID,
		Action:     action,
		Resource:   "permissions",
		ResourceID: &targetID,
		NewValues:  values,
		CreatedAt:  time.Now().UTC(),
	}); err != nil {
		s.logger.Warn("failed to record permissions audit log", zap.Error(err))
	}
}
