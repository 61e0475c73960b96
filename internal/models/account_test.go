// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package models_test

import (
	"testing"
	"time"

	"github.com/KushalvDesai/DAYFLOW-odooxGCET/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestRole_Valid(t *testing.T) {
	tests := []struct {
		role     models.Role
		valid    bool
		elevated bool
	}{
		{models.RoleEmployee, true, false},
		{models.RoleHR, true, true},
		{models.RoleAdmin, true, true},
		{"admin", false, false},
		{"", false, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.role), func(t *testing.T) {
			assert.Equal(t, tt.valid, tt.role.Valid())
			assert.Equal(t, tt.elevated, tt.role.Privileged())
		})
	}
}

func TestProfileUpdate_Empty(t *testing.T) {
	assert.True(t, models.ProfileUpdate{}.Empty())

	phone := "+49 30 1234"
	assert.False(t, models.ProfileUpdate{Phone: &phone}.Empty())
}

func TestPendingRegistration_Account(t *testing.T) {
	dept := "Engineering"
	joined := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	now := time.Date(2025, 3, 2, 12, 0, 0, 0, time.UTC)
	p := &models.PendingRegistration{
		ID:           "pending-1",
		Email:        "Jo.Doe@Example.com",
		EmployeeID:   "OIJODO20250001",
		PasswordHash: "$2a$10$hash",
		FirstName:    "John",
		LastName:     "Doe",
		Department:   &dept,
		Role:         models.RoleHR,
		JoiningDate:  joined,
		OTPCode:      "123456",
	}

	a := p.Account("account-1", now)

	assert.Equal(t, "account-1", a.ID)
	assert.Equal(t, p.Email, a.Email)
	assert.Equal(t, p.EmployeeID, a.EmployeeID)
	assert.Equal(t, p.PasswordHash, a.PasswordHash)
	assert.Equal(t, "John Doe", a.FullName())
	assert.Equal(t, &dept, a.Department)
	assert.Equal(t, models.RoleHR, a.Role)
	assert.Equal(t, joined, a.JoiningDate)
	assert.True(t, a.EmailVerified)
	assert.True(t, a.Active)
	assert.Nil(t, a.LastLoginAt)
	assert.Equal(t, now, a.CreatedAt)
}

func TestPendingRegistration_Stale(t *testing.T) {
	created := time.Date(2025, 1, 1, 8, 0, 0, 0, time.UTC)
	p := &models.PendingRegistration{CreatedAt: created}

	assert.False(t, p.Stale(created.Add(models.PendingMaxAge)))
	assert.True(t, p.Stale(created.Add(models.PendingMaxAge+time.Second)))
}

func TestAttendanceStatus_Valid(t *testing.T) {
	for _, s := range []models.AttendanceStatus{
		models.StatusPresent, models.StatusAbsent, models.StatusLate,
		models.StatusHalfDay, models.StatusOnLeave,
	} {
		assert.True(t, s.Valid(), s)
	}
	assert.False(t, models.AttendanceStatus("SICK").Valid())
}
