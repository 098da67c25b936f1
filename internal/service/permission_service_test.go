package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gmdqs/attendance-admin-api/internal/models"
	appErrors "github.com/gmdqs/attendance-admin-api/pkg/errors"
)

type permissionRepoStub struct {
	sets    map[string]models.PermissionSet
	findErr error
	calls   int
}

func (s *permissionRepoStub) Find(ctx context.Context, userID string) (*models.PermissionSet, error) {
	s.calls++
	if s.findErr != nil {
		return nil, s.findErr
	}
	set, ok := s.sets[userID]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &set, nil
}

func (s *permissionRepoStub) Upsert(ctx context.Context, set *models.PermissionSet) (*models.PermissionSet, error) {
	if s.sets == nil {
		s.sets = make(map[string]models.PermissionSet)
	}
	s.sets[set.UserID] = *set
	return set, nil
}

func (s *permissionRepoStub) Delete(ctx context.Context, userID string) error {
	delete(s.sets, userID)
	return nil
}

func (s *permissionRepoStub) ListAdmins(ctx context.Context) ([]models.AdminUser, error) {
	out := make([]models.AdminUser, 0, len(s.sets))
	for id, set := range s.sets {
		out = append(out, models.AdminUser{ID: id, Permissions: set})
	}
	return out, nil
}

type auditLoggerStub struct {
	logs []*models.AuditLog
}

func (a *auditLoggerStub) CreateAuditLog(ctx context.Context, log *models.AuditLog) error {
	a.logs = append(a.logs, log)
	return nil
}

func TestPermissionSuperAdminImpliesAllCapabilities(t *testing.T) {
	set := models.PermissionSet{IsSuperAdmin: true}
	for _, cap := range []models.Capability{
		models.CapViewAttendance,
		models.CapWriteAttendance,
		models.CapExportData,
		models.CapManageEmployees,
		models.CapManageAdmins,
	} {
		assert.True(t, set.Allows(cap), string(cap))
	}
}

func TestPermissionLoadMissingRowResolvesToZeroSet(t *testing.T) {
	repo := &permissionRepoStub{}
	svc := NewPermissionService(repo, &auditLoggerStub{}, nil)

	set, err := svc.Load(context.Background(), "ghost")
	require.NoError(t, err)
	assert.False(t, set.CanViewAttendance)
	assert.False(t, set.IsSuperAdmin)
	assert.False(t, set.Allows(models.CapViewAttendance))
}

func TestPermissionLoadSurfacesBackendFailure(t *testing.T) {
	repo := &permissionRepoStub{findErr: errors.New("connection refused")}
	svc := NewPermissionService(repo, &auditLoggerStub{}, nil)

	_, err := svc.Load(context.Background(), "u1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInternal.Code, appErrors.FromError(err).Code)
	assert.False(t, svc.Check(context.Background(), "u1", models.CapViewAttendance))
}

func TestPermissionLoadCachesResolvedSet(t *testing.T) {
	repo := &permissionRepoStub{sets: map[string]models.PermissionSet{
		"u1": {UserID: "u1", CanViewAttendance: true},
	}}
	svc := NewPermissionService(repo, &auditLoggerStub{}, nil)

	_, err := svc.Load(context.Background(), "u1")
	require.NoError(t, err)
	_, err = svc.Load(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, 1, repo.calls)
}

func TestPermissionUpdateRequiresManageAdmins(t *testing.T) {
	repo := &permissionRepoStub{sets: map[string]models.PermissionSet{
		"actor": {UserID: "actor", CanViewAttendance: true},
	}}
	svc := NewPermissionService(repo, &auditLoggerStub{}, nil)

	_, err := svc.Update(context.Background(), "actor", "target", models.UpdatePermissionsRequest{CanViewAttendance: true})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
}

func TestPermissionUpdateSelfSwapsCachedSet(t *testing.T) {
	repo := &permissionRepoStub{sets: map[string]models.PermissionSet{
		"actor": {UserID: "actor", IsSuperAdmin: true},
	}}
	audit := &auditLoggerStub{}
	svc := NewPermissionService(repo, audit, nil)

	updated, err := svc.Update(context.Background(), "actor", "actor", models.UpdatePermissionsRequest{
		CanViewAttendance: true,
		CanManageAdmins:   true,
	})
	require.NoError(t, err)
	assert.False(t, updated.IsSuperAdmin)

	// The next check sees the new flags without a repository round trip.
	calls := repo.calls
	set, err := svc.Load(context.Background(), "actor")
	require.NoError(t, err)
	assert.Equal(t, calls, repo.calls)
	assert.False(t, set.IsSuperAdmin)
	assert.True(t, set.Allows(models.CapManageAdmins))
	assert.False(t, set.Allows(models.CapExportData))

	require.Len(t, audit.logs, 1)
	assert.Equal(t, models.AuditActionPermissionsUpdate, audit.logs[0].Action)
}

func TestPermissionUpdateInvalidatesTargetCache(t *testing.T) {
	repo := &permissionRepoStub{sets: map[string]models.PermissionSet{
		"actor":  {UserID: "actor", IsSuperAdmin: true},
		"target": {UserID: "target"},
	}}
	svc := NewPermissionService(repo, &auditLoggerStub{}, nil)

	_, err := svc.Load(context.Background(), "target")
	require.NoError(t, err)

	_, err = svc.Update(context.Background(), "actor", "target", models.UpdatePermissionsRequest{CanExportData: true})
	require.NoError(t, err)

	set, err := svc.Load(context.Background(), "target")
	require.NoError(t, err)
	assert.True(t, set.Allows(models.CapExportData))
}

func TestPermissionRevokeSelfRejected(t *testing.T) {
	repo := &permissionRepoStub{sets: map[string]models.PermissionSet{
		"actor": {UserID: "actor", IsSuperAdmin: true},
	}}
	svc := NewPermissionService(repo, &auditLoggerStub{}, nil)

	err := svc.Revoke(context.Background(), "actor", "actor")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
}

func TestPermissionRevokeReturnsTargetToZeroSet(t *testing.T) {
	repo := &permissionRepoStub{sets: map[string]models.PermissionSet{
		"actor":  {UserID: "actor", IsSuperAdmin: true},
		"target": {UserID: "target", CanViewAttendance: true},
	}}
	svc := NewPermissionService(repo, &auditLoggerStub{}, nil)

	require.NoError(t, svc.Revoke(context.Background(), "actor", "target"))

	set, err := svc.Load(context.Background(), "target")
	require.NoError(t, err)
	assert.False(t, set.Allows(models.CapViewAttendance))
}
