package models

import "time"

// AttendanceRecord is one stored fact: (employee, date) carries a status.
// At most one row exists per (employee_id, date); writes upsert on that pair.
type AttendanceRecord struct {
	ID         int64     `db:"id" json:"id"`
	EmployeeID int64     `db:"employee_id" json:"employee_id"`
	Date       time.Time `db:"date" json:"date"`
	StatusID   int64     `db:"status_id" json:"status_id"`
	CreatedBy  string    `db:"created_by" json:"created_by,omitempty"`
	UpdatedBy  string    `db:"updated_by" json:"updated_by,omitempty"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time `db:"updated_at" json:"updated_at"`
}

// GridDay is one column of the calendar grid.
type GridDay struct {
	Day     int    `json:"day"`
	Date    string `json:"date"`
	Weekend bool   `json:"weekend"`
}

// AttendanceGrid is the month view handed to the UI: the dense date axis plus
// the sparse employee -> iso date -> status id map. Absent keys mean "no
// status"; cells are never materialised.
type AttendanceGrid struct {
	Year     int                        `json:"year"`
	Month    int                        `json:"month"`
	Days     []GridDay                  `json:"days"`
	Cells    map[int64]map[string]int64 `json:"cells"`
	Statuses []AttendanceStatus         `json:"statuses"`
}

// StatusAt returns the status id at a cell and whether one is set.
func (g *AttendanceGrid) StatusAt(employeeID int64, isoDate string) (int64, bool) {
	row, ok := g.Cells[employeeID]
	if !ok {
		return 0, false
	}
	id, ok := row[isoDate]
	return id, ok
}

// SetStatusRequest is the single-cell mutation payload. A zero StatusID
// clears the cell.
type SetStatusRequest struct {
	EmployeeID int64  `json:"employee_id" validate:"required,gt=0"`
	Date       string `json:"date" validate:"required"`
	StatusID   int64  `json:"status_id" validate:"gte=0"`
}
