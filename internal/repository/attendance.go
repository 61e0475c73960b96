// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package repository

import (
	"context"
	"time"

	"github.com/KushalvDesai/DAYFLOW-odooxGCET/internal/models"
)

const attendanceColumns = `id, account_id, employee_id, work_date, check_in_at, check_out_at,
	status, work_hours, is_late, late_by_minutes, remarks, location, created_at, updated_at`

// CreateAttendance inserts a check-in. A second row for the same account and
// work date fails with ErrDuplicate.
func (r *Repository) CreateAttendance(ctx context.Context, a *models.Attendance) error {
	_, err := r.exec(ctx,
		`INSERT INTO attendance (`+attendanceColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.AccountID, a.EmployeeID, a.WorkDate, utc(a.CheckInAt), a.CheckOutAt,
		a.Status, a.WorkHours, a.IsLate, a.LateByMinutes, a.Remarks, a.Location,
		utc(a.CreatedAt), utc(a.UpdatedAt))
	return err
}

// GetAttendanceByID retrieves an attendance record by ID.
func (r *Repository) GetAttendanceByID(ctx context.Context, id string) (*models.Attendance, error) {
	var a models.Attendance
	if err := r.get(ctx, &a, `SELECT `+attendanceColumns+` FROM attendance WHERE id = ?`, id); err != nil {
		return nil, err
	}
	return &a, nil
}

// GetAttendanceForDay retrieves the record of an account for a work date.
func (r *Repository) GetAttendanceForDay(ctx context.Context, accountID, workDate string) (*models.Attendance, error) {
	var a models.Attendance
	err := r.get(ctx, &a,
		`SELECT `+attendanceColumns+` FROM attendance WHERE account_id = ? AND work_date = ?`,
		accountID, workDate)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// SaveCheckOut stores check-out time, hours, status and remarks. It only
// matches records that are still open.
func (r *Repository) SaveCheckOut(ctx context.Context, a *models.Attendance) error {
	var checkOut *time.Time
	if a.CheckOutAt != nil {
		t := utc(*a.CheckOutAt)
		checkOut = &t
	}
	res, err := r.exec(ctx,
		`UPDATE attendance SET check_out_at = ?, work_hours = ?, status = ?, remarks = ?, updated_at = ?
		WHERE id = ? AND check_out_at IS NULL`,
		checkOut, a.WorkHours, a.Status, a.Remarks, utc(a.UpdatedAt), a.ID)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

// UpdateAttendance applies an HR correction. Nil arguments are left unchanged.
func (r *Repository) UpdateAttendance(ctx context.Context, id string, status *models.AttendanceStatus, remarks *string, now time.Time) error {
	res, err := r.exec(ctx,
		`UPDATE attendance SET status = COALESCE(?, status), remarks = COALESCE(?, remarks), updated_at = ?
		WHERE id = ?`,
		status, remarks, utc(now), id)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

// DeleteAttendance deletes an attendance record by ID.
func (r *Repository) DeleteAttendance(ctx context.Context, id string) error {
	res, err := r.exec(ctx, `DELETE FROM attendance WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

// ListAttendanceByAccount returns an account's records with from <= work_date <= to, newest first.
func (r *Repository) ListAttendanceByAccount(ctx context.Context, accountID, from, to string) ([]models.Attendance, error) {
	records := []models.Attendance{}
	err := r.selectAll(ctx, &records,
		`SELECT `+attendanceColumns+` FROM attendance
		WHERE account_id = ? AND work_date >= ? AND work_date <= ?
		ORDER BY work_date DESC`,
		accountID, from, to)
	if err != nil {
		return nil, err
	}
	return records, nil
}

// ListAttendanceByEmployeeID is ListAttendanceByAccount keyed by employee identifier.
func (r *Repository) ListAttendanceByEmployeeID(ctx context.Context, employeeID, from, to string) ([]models.Attendance, error) {
	records := []models.Attendance{}
	err := r.selectAll(ctx, &records,
		`SELECT `+attendanceColumns+` FROM attendance
		WHERE employee_id = ? AND work_date >= ? AND work_date <= ?
		ORDER BY work_date DESC`,
		employeeID, from, to)
	if err != nil {
		return nil, err
	}
	return records, nil
}

// ListAttendance returns all records, optionally bounded by work date, newest first.
func (r *Repository) ListAttendance(ctx context.Context, from, to string) ([]models.Attendance, error) {
	records := []models.Attendance{}
	var err error
	if from != "" && to != "" {
		err = r.selectAll(ctx, &records,
			`SELECT `+attendanceColumns+` FROM attendance
			WHERE work_date >= ? AND work_date <= ? ORDER BY work_date DESC, check_in_at DESC`,
			from, to)
	} else {
		err = r.selectAll(ctx, &records,
			`SELECT `+attendanceColumns+` FROM attendance ORDER BY work_date DESC, check_in_at DESC`)
	}
	if err != nil {
		return nil, err
	}
	return records, nil
}
