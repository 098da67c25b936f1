package models

import "time"

// AttendanceStatus is one entry of the backend-managed status catalog
// (Present, Absent, Holiday, ...). The catalog is admin-extensible, so cells
// reference statuses by id rather than display name.
type AttendanceStatus struct {
	ID        int64     `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Active    bool      `db:"is_active" json:"is_active"`
	CreatedBy string    `db:"created_by" json:"created_by,omitempty"`
	UpdatedBy string    `db:"updated_by" json:"updated_by,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// StatusRequest is the create/update payload for catalog entries.
type StatusRequest struct {
	Name string `json:"name" validate:"required"`
}

// StatusMap is an id keyed lookup of display names, built from the active
// catalog once per grid load.
type StatusMap map[int64]string

// NewStatusMap folds a status list into an id keyed name lookup.
func NewStatusMap(statuses []AttendanceStatus) StatusMap {
	m := make(StatusMap, len(statuses))
	for _, s := range statuses {
		m[s.ID] = s.Name
	}
	return m
}

// Name returns the display name for a status id, empty when unknown.
func (m StatusMap) Name(id int64) string {
	return m[id]
}
