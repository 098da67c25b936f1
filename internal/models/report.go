package models

import "time"

// ReportMode selects which of the two structurally different report shapes
// was requested. This is a binary branch, not a spectrum.
type ReportMode string

const (
	// ReportModeEmployee yields per-day detail rows for one employee.
	ReportModeEmployee ReportMode = "employee"
	// ReportModeDepartment yields one aggregate row per employee.
	ReportModeDepartment ReportMode = "department"
)

// ReportRequest scopes a report run. DepartmentID and EmployeeID are
// optional; the date range is required and must satisfy start <= end.
type ReportRequest struct {
	DepartmentID *int64 `json:"department_id"`
	EmployeeID   *int64 `json:"employee_id"`
	StartDate    string `json:"start_date" validate:"required"`
	EndDate      string `json:"end_date" validate:"required"`
}

// EmployeeDayRow is one per-day detail entry for a single-employee report.
type EmployeeDayRow struct {
	Date   time.Time `db:"date" json:"date"`
	Status string    `db:"status" json:"status"`
}

// EmployeeSummary aggregates a single employee's range.
type EmployeeSummary struct {
	TotalDays   int     `db:"total_days" json:"total_days"`
	PresentDays int     `db:"present_days" json:"present_days"`
	AbsentDays  int     `db:"absent_days" json:"absent_days"`
	HolidayDays int     `db:"holiday_days" json:"holiday_days"`
	LeaveDays   int     `db:"leave_days" json:"leave_days"`
	OtherDays   int     `db:"other_days" json:"other_days"`
	Percentage  float64 `db:"attendance_percentage" json:"attendance_percentage"`
}

// DepartmentReportRow is one per-employee aggregate in a department report.
type DepartmentReportRow struct {
	EmployeeID     int64   `db:"employee_id" json:"employee_id"`
	EmployeeCode   string  `db:"employee_code" json:"employee_code"`
	FullName       string  `db:"full_name" json:"full_name"`
	DepartmentName string  `db:"department_name" json:"department_name"`
	TotalDays      int     `db:"total_days" json:"total_days"`
	PresentDays    int     `db:"present_days" json:"present_days"`
	AbsentDays     int     `db:"absent_days" json:"absent_days"`
	HolidayDays    int     `db:"holiday_days" json:"holiday_days"`
	LeaveDays      int     `db:"leave_days" json:"leave_days"`
	OtherDays      int     `db:"other_days" json:"other_days"`
	Percentage     float64 `db:"attendance_percentage" json:"attendance_percentage"`
}

// OverallSummary is the single department/organization aggregate row.
type OverallSummary struct {
	TotalEmployees int     `db:"total_employees" json:"total_employees"`
	TotalDays      int     `db:"total_days" json:"total_days"`
	TotalPresent   int     `db:"total_present" json:"total_present"`
	TotalAbsent    int     `db:"total_absent" json:"total_absent"`
	TotalHolidays  int     `db:"total_holidays" json:"total_holidays"`
	TotalLeaves    int     `db:"total_leaves" json:"total_leaves"`
	Percentage     float64 `db:"overall_attendance_percentage" json:"overall_attendance_percentage"`
}

// ReportResult carries whichever shape was produced; consumers branch on Mode.
type ReportResult struct {
	Mode            ReportMode            `json:"mode"`
	Employee        *Employee             `json:"employee,omitempty"`
	EmployeeRows    []EmployeeDayRow      `json:"employee_rows,omitempty"`
	EmployeeSummary *EmployeeSummary      `json:"employee_summary,omitempty"`
	DepartmentRows  []DepartmentReportRow `json:"department_rows,omitempty"`
	OverallSummary  *OverallSummary       `json:"overall_summary,omitempty"`
	StartDate       string                `json:"start_date"`
	EndDate         string                `json:"end_date"`
}
