package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/gmdqs/attendance-admin-api/internal/models"
)

// PermissionRepository persists the six-flag permission bundle per principal.
type PermissionRepository struct {
	db *sqlx.DB
}

// NewPermissionRepository constructs the repository.
func NewPermissionRepository(db *sqlx.DB) *PermissionRepository {
	return &PermissionRepository{db: db}
}

const permissionColumns = `user_id, can_view_attendance, can_write_attendance, can_export_data,
can_manage_employees, can_manage_admins, is_super_admin, updated_by, created_at, updated_at`

// Find returns the stored permission set for a principal. Absence of a row
// surfaces as sql.ErrNoRows; the caller decides whether that fails open.
func (r *PermissionRepository) Find(ctx context.Context, userID string) (*models.PermissionSet, error) {
	var set models.PermissionSet
	query := fmt.Sprintf("SELECT %s FROM admin_permissions WHERE user_id = $1 LIMIT 1", permissionColumns)
	if err := r.db.GetContext(ctx, &set, query, userID); err != nil {
		return nil, err
	}
	return &set, nil
}

// Upsert inserts or replaces the permission bundle keyed on user_id.
func (r *PermissionRepository) Upsert(ctx context.Context, set *models.PermissionSet) (*models.PermissionSet, error) {
	now := time.Now().UTC()
	if set.CreatedAt.IsZero() {
		set.CreatedAt = now
	}
	set.UpdatedAt = now
	query := `INSERT INTO admin_permissions (user_id, can_view_attendance, can_write_attendance, can_export_data,
can_manage_employees, can_manage_admins, is_super_admin, updated_by, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
ON CONFLICT (user_id)
DO UPDATE SET can_view_attendance = EXCLUDED.can_view_attendance,
	can_write_attendance = EXCLUDED.can_write_attendance,
	can_export_data = EXCLUDED.can_export_data,
	can_manage_employees = EXCLUDED.can_manage_employees,
	can_manage_admins = EXCLUDED.can_manage_admins,
	is_super_admin = EXCLUDED.is_super_admin,
	updated_by = EXCLUDED.updated_by,
	updated_at = EXCLUDED.updated_at
RETURNING ` + permissionColumns
	var stored models.PermissionSet
	if err := r.db.GetContext(ctx, &stored, query,
		set.UserID, set.CanViewAttendance, set.CanWriteAttendance, set.CanExportData,
		set.CanManageEmployees, set.CanManageAdmins, set.IsSuperAdmin,
		set.UpdatedBy, set.CreatedAt, set.UpdatedAt); err != nil {
		return nil, fmt.Errorf("upsert admin permissions: %w", err)
	}
	return &stored, nil
}

// Delete revokes a principal's permission bundle entirely.
func (r *PermissionRepository) Delete(ctx context.Context, userID string) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM admin_permissions WHERE user_id = $1", userID); err != nil {
		return fmt.Errorf("delete admin permissions: %w", err)
	}
	return nil
}

// ListAdmins returns every account joined with its stored flags; users
// without a permissions row carry the zero set.
func (r *PermissionRepository) ListAdmins(ctx context.Context) ([]models.AdminUser, error) {
	query := `SELECT u.id, u.email, u.full_name, u.active,
	COALESCE(p.can_view_attendance, FALSE) AS "permissions.can_view_attendance",
	COALESCE(p.can_write_attendance, FALSE) AS "permissions.can_write_attendance",
	COALESCE(p.can_export_data, FALSE) AS "permissions.can_export_data",
	COALESCE(p.can_manage_employees, FALSE) AS "permissions.can_manage_employees",
	COALESCE(p.can_manage_admins, FALSE) AS "permissions.can_manage_admins",
	COALESCE(p.is_super_admin, FALSE) AS "permissions.is_super_admin"
FROM users u
LEFT JOIN admin_permissions p ON p.user_id = u.id
ORDER BY u.email`
	var admins []models.AdminUser
	if err := r.db.SelectContext(ctx, &admins, query); err != nil {
		return nil, fmt.Errorf("list admins: %w", err)
	}
	for i := range admins {
		admins[i].Permissions.UserID = admins[i].ID
	}
	return admins, nil
}
