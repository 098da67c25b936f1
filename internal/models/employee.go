package models

import "time"

// Employee is an identity record. The surrogate ID is stable and never
// reassigned; the human-facing Code is mutable and displayed with a fixed
// prefix. Attendance rows reference the surrogate id only.
type Employee struct {
	ID           int64     `db:"id" json:"id"`
	Code         string    `db:"employee_code" json:"employee_code"`
	FullName     string    `db:"full_name" json:"full_name"`
	DepartmentID int64     `db:"department_id" json:"department_id"`
	Department   string    `db:"department_name" json:"department"`
	MobileNumber string    `db:"mobile_number" json:"mobile_number"`
	Active       bool      `db:"is_active" json:"is_active"`
	CreatedBy    string    `db:"created_by" json:"created_by,omitempty"`
	UpdatedBy    string    `db:"updated_by" json:"updated_by,omitempty"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// EmployeeRequest is the registration/edit payload. Code is supplied without
// the fixed prefix; the service prepends it before storage.
type EmployeeRequest struct {
	Code         string `json:"employee_code" validate:"required"`
	FullName     string `json:"full_name" validate:"required"`
	DepartmentID int64  `json:"department_id" validate:"required,gt=0"`
	MobileNumber string `json:"mobile_number" validate:"required"`
}

// RosterFilter narrows the employee list. Query is a case-insensitive
// substring matched against name, code, department and mobile number;
// DepartmentID of zero means all departments.
type RosterFilter struct {
	Query        string `json:"query"`
	DepartmentID int64  `json:"department_id"`
}

// RosterPage is one page of the filtered roster.
type RosterPage struct {
	Employees  []Employee   `json:"employees"`
	Filter     RosterFilter `json:"filter"`
	Pagination Pagination   `json:"pagination"`
}
