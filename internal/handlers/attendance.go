// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package handlers

import (
	"net/http"

	"github.com/KushalvDesai/DAYFLOW-odooxGCET/internal/services/attendance"
	"github.com/labstack/echo/v4"
)

// AttendanceHandlers exposes check-in, check-out and reports.
type AttendanceHandlers struct {
	attendance *attendance.Service
}

// NewAttendance creates a new AttendanceHandlers instance.
func NewAttendance(svc *attendance.Service) *AttendanceHandlers {
	return &AttendanceHandlers{attendance: svc}
}

// CheckIn opens today's record for the caller.
func (h *AttendanceHandlers) CheckIn(c echo.Context) error {
	viewer, err := currentAccount(c)
	if err != nil {
		return err
	}

	var req attendance.CheckInInput
	if err := bind(c, &req); err != nil {
		return err
	}

	res, err := h.attendance.CheckIn(c.Request().Context(), viewer.ID, req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, res)
}

// CheckOut closes today's record for the caller.
func (h *AttendanceHandlers) CheckOut(c echo.Context) error {
	viewer, err := currentAccount(c)
	if err != nil {
		return err
	}

	var req attendance.CheckOutInput
	if err := bind(c, &req); err != nil {
		return err
	}

	res, err := h.attendance.CheckOut(c.Request().Context(), viewer.ID, req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, res)
}

// Today returns the caller's record for the current work date, or null.
func (h *AttendanceHandlers) Today(c echo.Context) error {
	viewer, err := currentAccount(c)
	if err != nil {
		return err
	}

	record, err := h.attendance.Today(c.Request().Context(), viewer.ID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, record)
}

// Range lists records between start_date and end_date.
func (h *AttendanceHandlers) Range(c echo.Context) error {
	viewer, err := currentAccount(c)
	if err != nil {
		return err
	}

	var req attendance.RangeInput
	if err := bind(c, &req); err != nil {
		return err
	}

	records, err := h.attendance.ByDateRange(c.Request().Context(), viewer, req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, records)
}

// Summary aggregates the caller's records between start_date and end_date.
func (h *AttendanceHandlers) Summary(c echo.Context) error {
	viewer, err := currentAccount(c)
	if err != nil {
		return err
	}

	sum, err := h.attendance.Summary(c.Request().Context(), viewer.ID,
		c.QueryParam("start_date"), c.QueryParam("end_date"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, sum)
}

// All lists every record, optionally bounded by start_date and end_date.
func (h *AttendanceHandlers) All(c echo.Context) error {
	records, err := h.attendance.All(c.Request().Context(),
		c.QueryParam("start_date"), c.QueryParam("end_date"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, records)
}

// Update corrects the status or remarks of a record.
func (h *AttendanceHandlers) Update(c echo.Context) error {
	var req attendance.UpdateInput
	if err := bind(c, &req); err != nil {
		return err
	}

	record, err := h.attendance.Update(c.Request().Context(), c.Param("id"), req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, record)
}

// Delete removes a record.
func (h *AttendanceHandlers) Delete(c echo.Context) error {
	deleted, err := h.attendance.Delete(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	if !deleted {
		return attendance.ErrAttendanceNotFound
	}
	return c.JSON(http.StatusOK, map[string]bool{"success": true})
}
