// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package models

import "time"

// AttendanceStatus classifies a work day.
type AttendanceStatus string

const (
	StatusPresent AttendanceStatus = "PRESENT"
	StatusAbsent  AttendanceStatus = "ABSENT"
	StatusLate    AttendanceStatus = "LATE"
	StatusHalfDay AttendanceStatus = "HALF_DAY"
	StatusOnLeave AttendanceStatus = "ON_LEAVE"
)

// Valid reports whether s is one of the known statuses.
func (s AttendanceStatus) Valid() bool {
	switch s {
	case StatusPresent, StatusAbsent, StatusLate, StatusHalfDay, StatusOnLeave:
		return true
	}
	return false
}

// DateLayout is the format of Attendance.WorkDate.
const DateLayout = "2006-01-02"

// Attendance is one account's record for one work day.
type Attendance struct { //nolint:govet // fieldalignment: readability over optimization
	ID            string           `db:"id" json:"id"`
	AccountID     string           `db:"account_id" json:"account_id"`
	EmployeeID    string           `db:"employee_id" json:"employee_id"`
	WorkDate      string           `db:"work_date" json:"work_date"`
	CheckInAt     time.Time        `db:"check_in_at" json:"check_in_at"`
	CheckOutAt    *time.Time       `db:"check_out_at" json:"check_out_at,omitempty"`
	Status        AttendanceStatus `db:"status" json:"status"`
	WorkHours     float64          `db:"work_hours" json:"work_hours"`
	IsLate        bool             `db:"is_late" json:"is_late"`
	LateByMinutes int              `db:"late_by_minutes" json:"late_by_minutes"`
	Remarks       *string          `db:"remarks" json:"remarks,omitempty"`
	Location      *string          `db:"location" json:"location,omitempty"`
	CreatedAt     time.Time        `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time        `db:"updated_at" json:"updated_at"`
}

// AttendanceSummary aggregates attendance records over a date range.
type AttendanceSummary struct {
	TotalDays        int     `json:"total_days"`
	PresentDays      int     `json:"present_days"`
	AbsentDays       int     `json:"absent_days"`
	LateDays         int     `json:"late_days"`
	HalfDays         int     `json:"half_days"`
	LeaveDays        int     `json:"leave_days"`
	TotalWorkHours   float64 `json:"total_work_hours"`
	AverageWorkHours float64 `json:"average_work_hours"`
}
