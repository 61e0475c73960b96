// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package attendance records daily check-ins and check-outs.
package attendance

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"time"

	"github.com/KushalvDesai/DAYFLOW-odooxGCET/internal/apperr"
	"github.com/KushalvDesai/DAYFLOW-odooxGCET/internal/config"
	"github.com/KushalvDesai/DAYFLOW-odooxGCET/internal/i18n"
	"github.com/KushalvDesai/DAYFLOW-odooxGCET/internal/metrics"
	"github.com/KushalvDesai/DAYFLOW-odooxGCET/internal/models"
	"github.com/KushalvDesai/DAYFLOW-odooxGCET/internal/repository"
	"github.com/KushalvDesai/DAYFLOW-odooxGCET/internal/services/directory"
	"github.com/KushalvDesai/DAYFLOW-odooxGCET/internal/validation"
	"github.com/google/uuid"
)

var (
	ErrAttendanceNotFound = apperr.New(apperr.KindNotFound, "attendance_not_found", "Attendance record not found")
	ErrAlreadyCheckedIn   = apperr.New(apperr.KindConflict, "already_checked_in", "You have already checked in today")
	ErrAlreadyCheckedOut  = apperr.New(apperr.KindConflict, "already_checked_out", "You have already checked out today")
	ErrNotCheckedIn       = apperr.New(apperr.KindNotFound, "not_checked_in",
		"No check-in record found for today. Please check in first.")
	ErrInvalidDateRange = apperr.New(apperr.KindValidation, "invalid_date_range", "Invalid date range")
)

// Defaults for a zero AttendanceConfig.
const (
	DefaultOfficeStartHour = 9
	DefaultLateGrace       = 15 * time.Minute
	DefaultHalfDayHours    = 4.0
)

// Operation names used for metrics.
const (
	OpCheckIn  = "check_in"
	OpCheckOut = "check_out"
)

// Store is the persistence used by Service. *repository.Repository satisfies it.
type Store interface {
	GetAccountByID(ctx context.Context, id string) (*models.Account, error)
	CreateAttendance(ctx context.Context, a *models.Attendance) error
	GetAttendanceByID(ctx context.Context, id string) (*models.Attendance, error)
	GetAttendanceForDay(ctx context.Context, accountID, workDate string) (*models.Attendance, error)
	SaveCheckOut(ctx context.Context, a *models.Attendance) error
	UpdateAttendance(ctx context.Context, id string, status *models.AttendanceStatus, remarks *string, now time.Time) error
	DeleteAttendance(ctx context.Context, id string) error
	ListAttendanceByAccount(ctx context.Context, accountID, from, to string) ([]models.Attendance, error)
	ListAttendanceByEmployeeID(ctx context.Context, employeeID, from, to string) ([]models.Attendance, error)
	ListAttendance(ctx context.Context, from, to string) ([]models.Attendance, error)
}

var _ Store = (*repository.Repository)(nil)

// CheckInInput is the optional check-in payload.
type CheckInInput struct {
	Location *string `json:"location" validate:"omitempty,max=256"`
	Remarks  *string `json:"remarks" validate:"omitempty,max=1024"`
}

// CheckOutInput is the optional check-out payload.
type CheckOutInput struct {
	Remarks *string `json:"remarks" validate:"omitempty,max=1024"`
}

// RangeInput selects records by inclusive work date bounds.
type RangeInput struct {
	StartDate  string `query:"start_date" json:"start_date"`
	EndDate    string `query:"end_date" json:"end_date"`
	EmployeeID string `query:"employee_id" json:"employee_id"`
}

// UpdateInput is an HR correction.
type UpdateInput struct {
	Status  *models.AttendanceStatus `json:"status" validate:"omitempty,attendance_status"`
	Remarks *string                  `json:"remarks" validate:"omitempty,max=1024"`
}

// CheckInResult is returned by CheckIn.
type CheckInResult struct {
	Message    string             `json:"message"`
	Success    bool               `json:"success"`
	Attendance *models.Attendance `json:"attendance"`
}

// CheckOutResult is returned by CheckOut.
type CheckOutResult struct {
	Message    string             `json:"message"`
	Success    bool               `json:"success"`
	Attendance *models.Attendance `json:"attendance"`
	WorkHours  float64            `json:"work_hours"`
}

// Service applies the office rules to attendance records.
type Service struct {
	store        Store
	validator    *validation.Validator
	metrics      *metrics.Metrics
	loc          *time.Location
	now          func() time.Time
	startMinutes int
	halfDayHours float64
}

// NewService creates a Service. Work dates and lateness are evaluated in loc.
func NewService(store Store, cfg config.AttendanceConfig, loc *time.Location, now func() time.Time, m *metrics.Metrics) *Service {
	if loc == nil {
		loc = time.Local
	}
	if now == nil {
		now = time.Now
	}
	if cfg.OfficeStartHour == 0 && cfg.LateGrace == 0 {
		cfg.OfficeStartHour = DefaultOfficeStartHour
		cfg.LateGrace = DefaultLateGrace
	}
	if cfg.HalfDayHours <= 0 {
		cfg.HalfDayHours = DefaultHalfDayHours
	}
	return &Service{
		store:        store,
		validator:    validation.New(),
		metrics:      m,
		loc:          loc,
		now:          now,
		startMinutes: cfg.OfficeStartHour*60 + int(cfg.LateGrace/time.Minute),
		halfDayHours: cfg.HalfDayHours,
	}
}

// CheckIn opens today's record for the account.
func (s *Service) CheckIn(ctx context.Context, accountID string, in CheckInInput) (*CheckInResult, error) {
	res, err := s.checkIn(ctx, accountID, in)
	s.record(OpCheckIn, err)
	return res, err
}

func (s *Service) checkIn(ctx context.Context, accountID string, in CheckInInput) (*CheckInResult, error) {
	if err := s.validator.Validate(in); err != nil {
		return nil, err
	}

	account, err := s.store.GetAccountByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, directory.ErrAccountNotFound
		}
		return nil, fmt.Errorf("failed to load account: %w", err)
	}

	now := s.now()
	workDate := s.workDate(now)

	if _, err := s.store.GetAttendanceForDay(ctx, account.ID, workDate); err == nil {
		return nil, ErrAlreadyCheckedIn
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("failed to load attendance: %w", err)
	}

	lateBy := s.lateBy(now)
	status := models.StatusPresent
	if lateBy > 0 {
		status = models.StatusLate
	}

	a := &models.Attendance{
		ID:            uuid.NewString(),
		AccountID:     account.ID,
		EmployeeID:    account.EmployeeID,
		WorkDate:      workDate,
		CheckInAt:     now,
		Status:        status,
		IsLate:        lateBy > 0,
		LateByMinutes: lateBy,
		Remarks:       in.Remarks,
		Location:      in.Location,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.store.CreateAttendance(ctx, a); err != nil {
		// The unique (account_id, work_date) index decides concurrent check-ins
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrAlreadyCheckedIn
		}
		return nil, fmt.Errorf("failed to store attendance: %w", err)
	}

	slog.Info("checked_in", "account_id", a.AccountID, "work_date", a.WorkDate, "late_by", a.LateByMinutes)

	msg := i18n.T(ctx, "checked_in")
	if a.IsLate {
		msg = i18n.TData(ctx, "checked_in_late", map[string]any{"Minutes": a.LateByMinutes})
	}
	return &CheckInResult{Message: msg, Success: true, Attendance: a}, nil
}

// CheckOut closes today's record for the account.
func (s *Service) CheckOut(ctx context.Context, accountID string, in CheckOutInput) (*CheckOutResult, error) {
	res, err := s.checkOut(ctx, accountID, in)
	s.record(OpCheckOut, err)
	return res, err
}

func (s *Service) checkOut(ctx context.Context, accountID string, in CheckOutInput) (*CheckOutResult, error) {
	if err := s.validator.Validate(in); err != nil {
		return nil, err
	}

	now := s.now()
	a, err := s.store.GetAttendanceForDay(ctx, accountID, s.workDate(now))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotCheckedIn
		}
		return nil, fmt.Errorf("failed to load attendance: %w", err)
	}
	if a.CheckOutAt != nil {
		return nil, ErrAlreadyCheckedOut
	}

	a.CheckOutAt = &now
	a.WorkHours = round2(now.Sub(a.CheckInAt).Hours())
	if a.WorkHours < s.halfDayHours {
		a.Status = models.StatusHalfDay
	}
	a.Remarks = appendRemarks(a.Remarks, in.Remarks)
	a.UpdatedAt = now

	if err := s.store.SaveCheckOut(ctx, a); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrAlreadyCheckedOut
		}
		return nil, fmt.Errorf("failed to store check-out: %w", err)
	}

	slog.Info("checked_out", "account_id", a.AccountID, "work_date", a.WorkDate, "work_hours", a.WorkHours)

	return &CheckOutResult{
		Message: i18n.TData(ctx, "checked_out", map[string]any{
			"Hours": strconv.FormatFloat(a.WorkHours, 'f', -1, 64),
		}),
		Success:    true,
		Attendance: a,
		WorkHours:  a.WorkHours,
	}, nil
}

// Today returns the account's record for the current work date, or nil.
func (s *Service) Today(ctx context.Context, accountID string) (*models.Attendance, error) {
	a, err := s.store.GetAttendanceForDay(ctx, accountID, s.workDate(s.now()))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load attendance: %w", err)
	}
	return a, nil
}

// ByDateRange lists the viewer's records. HR and ADMIN may select another
// employee through EmployeeID; for everyone else it is ignored.
func (s *Service) ByDateRange(ctx context.Context, viewer *models.Account, in RangeInput) ([]models.Attendance, error) {
	from, to, err := parseRange(in.StartDate, in.EndDate, true)
	if err != nil {
		return nil, err
	}

	var records []models.Attendance
	if in.EmployeeID != "" && viewer.Role.Privileged() {
		records, err = s.store.ListAttendanceByEmployeeID(ctx, in.EmployeeID, from, to)
	} else {
		records, err = s.store.ListAttendanceByAccount(ctx, viewer.ID, from, to)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list attendance: %w", err)
	}
	return records, nil
}

// All lists every record, bounded only when both dates are given.
func (s *Service) All(ctx context.Context, startDate, endDate string) ([]models.Attendance, error) {
	from, to, err := parseRange(startDate, endDate, false)
	if err != nil {
		return nil, err
	}
	records, err := s.store.ListAttendance(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list attendance: %w", err)
	}
	return records, nil
}

// Summary aggregates the account's records between two dates.
func (s *Service) Summary(ctx context.Context, accountID, startDate, endDate string) (*models.AttendanceSummary, error) {
	from, to, err := parseRange(startDate, endDate, true)
	if err != nil {
		return nil, err
	}
	records, err := s.store.ListAttendanceByAccount(ctx, accountID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list attendance: %w", err)
	}
	return Summarize(records), nil
}

// Update applies an HR correction and returns the stored record.
func (s *Service) Update(ctx context.Context, id string, in UpdateInput) (*models.Attendance, error) {
	if err := s.validator.Validate(in); err != nil {
		return nil, err
	}
	if in.Remarks != nil && *in.Remarks == "" {
		in.Remarks = nil
	}

	if err := s.store.UpdateAttendance(ctx, id, in.Status, in.Remarks, s.now()); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrAttendanceNotFound
		}
		return nil, fmt.Errorf("failed to update attendance: %w", err)
	}

	a, err := s.store.GetAttendanceByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrAttendanceNotFound
		}
		return nil, fmt.Errorf("failed to load attendance: %w", err)
	}

	slog.Info("attendance_updated", "attendance_id", id, "status", a.Status)
	return a, nil
}

// Delete removes a record and reports whether it existed.
func (s *Service) Delete(ctx context.Context, id string) (bool, error) {
	if err := s.store.DeleteAttendance(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("failed to delete attendance: %w", err)
	}
	slog.Info("attendance_deleted", "attendance_id", id)
	return true, nil
}

// Summarize counts records by status. LATE days also count as present.
func Summarize(records []models.Attendance) *models.AttendanceSummary {
	sum := &models.AttendanceSummary{TotalDays: len(records)}
	for _, r := range records {
		switch r.Status {
		case models.StatusPresent:
			sum.PresentDays++
		case models.StatusLate:
			sum.LateDays++
			sum.PresentDays++
		case models.StatusAbsent:
			sum.AbsentDays++
		case models.StatusHalfDay:
			sum.HalfDays++
		case models.StatusOnLeave:
			sum.LeaveDays++
		}
		sum.TotalWorkHours += r.WorkHours
	}
	sum.TotalWorkHours = round2(sum.TotalWorkHours)
	if sum.TotalDays > 0 {
		sum.AverageWorkHours = round2(sum.TotalWorkHours / float64(sum.TotalDays))
	}
	return sum
}

func (s *Service) workDate(t time.Time) string {
	return t.In(s.loc).Format(models.DateLayout)
}

// lateBy returns the minutes past the grace threshold, zero when on time.
func (s *Service) lateBy(t time.Time) int {
	local := t.In(s.loc)
	minutes := local.Hour()*60 + local.Minute()
	if minutes > s.startMinutes {
		return minutes - s.startMinutes
	}
	return 0
}

func (s *Service) record(op string, err error) {
	if err == nil {
		s.metrics.RecordOperation(op, metrics.ResultSuccess, "")
		return
	}
	reason := "internal"
	if e, ok := apperr.As(err); ok {
		reason = e.Code
	}
	s.metrics.RecordOperation(op, metrics.ResultFailure, reason)
}

// parseRange checks YYYY-MM-DD bounds. Unless required, two empty bounds mean
// no filter.
func parseRange(startDate, endDate string, required bool) (string, string, error) {
	if !required && startDate == "" && endDate == "" {
		return "", "", nil
	}
	from, err := time.Parse(models.DateLayout, startDate)
	if err != nil {
		return "", "", ErrInvalidDateRange.WithField("start_date", "must be a date in YYYY-MM-DD format")
	}
	to, err := time.Parse(models.DateLayout, endDate)
	if err != nil {
		return "", "", ErrInvalidDateRange.WithField("end_date", "must be a date in YYYY-MM-DD format")
	}
	if to.Before(from) {
		return "", "", ErrInvalidDateRange.WithField("end_date", "must not be before start_date")
	}
	return startDate, endDate, nil
}

func appendRemarks(existing, added *string) *string {
	if added == nil || *added == "" {
		return existing
	}
	if existing == nil || *existing == "" {
		return added
	}
	joined := *existing + " | Checkout: " + *added
	return &joined
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
