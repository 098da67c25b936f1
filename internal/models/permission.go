package models

import "time"

// Capability names one of the six permission flags attached to a principal.
type Capability string

const (
	CapViewAttendance  Capability = "view_attendance"
	CapWriteAttendance Capability = "write_attendance"
	CapExportData      Capability = "export_data"
	CapManageEmployees Capability = "manage_employees"
	CapManageAdmins    Capability = "manage_admins"
)

// PermissionSet is the fixed six-flag authorization bundle attached 1:1 to a
// principal. A missing admin_permissions row is represented by the zero value
// (all flags false).
type PermissionSet struct {
	UserID             string    `db:"user_id" json:"user_id"`
	CanViewAttendance  bool      `db:"can_view_attendance" json:"can_view_attendance"`
	CanWriteAttendance bool      `db:"can_write_attendance" json:"can_write_attendance"`
	CanExportData      bool      `db:"can_export_data" json:"can_export_data"`
	CanManageEmployees bool      `db:"can_manage_employees" json:"can_manage_employees"`
	CanManageAdmins    bool      `db:"can_manage_admins" json:"can_manage_admins"`
	IsSuperAdmin       bool      `db:"is_super_admin" json:"is_super_admin"`
	UpdatedBy          string    `db:"updated_by" json:"updated_by,omitempty"`
	CreatedAt          time.Time `db:"created_at" json:"created_at"`
	UpdatedAt          time.Time `db:"updated_at" json:"updated_at"`
}

// Allows reports whether the set grants the given capability. The super admin
// flag implies every other flag regardless of its stored value, so gating
// checks must go through this method rather than reading fields directly.
func (p PermissionSet) Allows(cap Capability) bool {
	if p.IsSuperAdmin {
		return true
	}
	switch cap {
	case CapViewAttendance:
		return p.CanViewAttendance
	case CapWriteAttendance:
		return p.CanWriteAttendance
	case CapExportData:
		return p.CanExportData
	case CapManageEmployees:
		return p.CanManageEmployees
	case CapManageAdmins:
		return p.CanManageAdmins
	default:
		return false
	}
}

// AdminUser joins a principal with its stored permission flags for the admin
// management screen. Users without a permissions row carry the zero set.
type AdminUser struct {
	ID          string        `db:"id" json:"id"`
	Email       string        `db:"email" json:"email"`
	FullName    string        `db:"full_name" json:"full_name"`
	Active      bool          `db:"active" json:"active"`
	Permissions PermissionSet `db:"permissions" json:"permissions"`
}

// UpdatePermissionsRequest carries new flag values for a target principal.
type UpdatePermissionsRequest struct {
	CanViewAttendance  bool `json:"can_view_attendance"`
	CanWriteAttendance bool `json:"can_write_attendance"`
	CanExportData      bool `json:"can_export_data"`
	CanManageEmployees bool `json:"can_manage_employees"`
	CanManageAdmins    bool `json:"can_manage_admins"`
	IsSuperAdmin       bool `json:"is_super_admin"`
}
