package models

import "time"

// AuditAction labels an audit log entry.
type AuditAction string

const (
	AuditActionLogin             AuditAction = "LOGIN"
	AuditActionLogout            AuditAction = "LOGOUT"
	AuditActionPasswordChange    AuditAction = "PASSWORD_CHANGE"
	AuditActionPasswordReset     AuditAction = "PASSWORD_RESET"
	AuditActionPermissionsUpdate AuditAction = "PERMISSIONS_UPDATE"
	AuditActionPermissionsRevoke AuditAction = "PERMISSIONS_REVOKE"
)

// AuditLog records security-relevant actions against a principal.
type AuditLog struct {
	ID         string      `db:"id" json:"id"`
	UserID     *string     `db:"user_id" json:"user_id,omitempty"`
	Action     AuditAction `db:"action" json:"action"`
	Resource   string      `db:"resource" json:"resource"`
	ResourceID *string     `db:"resource_id" json:"resource_id,omitempty"`
	NewValues  []byte      `db:"new_values" json:"new_values,omitempty"`
	IPAddress  string      `db:"ip_address" json:"-"`
	UserAgent  string      `db:"user_agent" json:"-"`
	CreatedAt  time.Time   `db:"created_at" json:"created_at"`
}
