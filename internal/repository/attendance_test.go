// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/KushalvDesai/DAYFLOW-odooxGCET/internal/models"
	"github.com/KushalvDesai/DAYFLOW-odooxGCET/internal/repository"
	"github.com/KushalvDesai/DAYFLOW-odooxGCET/internal/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAttendance(account *models.Account, day string) *models.Attendance {
	now := time.Now().UTC()
	return &models.Attendance{
		ID:         uuid.NewString(),
		AccountID:  account.ID,
		EmployeeID: account.EmployeeID,
		WorkDate:   day,
		CheckInAt:  now,
		Status:     models.StatusPresent,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

func TestCreateAttendance_OnePerDay(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()
	account := testutil.NewTestAccount(t, repo, "jane@example.com")

	require.NoError(t, repo.CreateAttendance(ctx, newAttendance(account, "2025-03-03")))
	err := repo.CreateAttendance(ctx, newAttendance(account, "2025-03-03"))

	assert.ErrorIs(t, err, repository.ErrDuplicate)
	assert.NotErrorIs(t, err, repository.ErrDuplicateEmployeeID)
	require.NoError(t, repo.CreateAttendance(ctx, newAttendance(account, "2025-03-04")))
}

func TestGetAttendanceForDay(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()
	account := testutil.NewTestAccount(t, repo, "jane@example.com")
	a := newAttendance(account, "2025-03-03")
	require.NoError(t, repo.CreateAttendance(ctx, a))

	got, err := repo.GetAttendanceForDay(ctx, account.ID, "2025-03-03")
	require.NoError(t, err)
	assert.Equal(t, a.ID, got.ID)
	assert.Nil(t, got.CheckOutAt)

	_, err = repo.GetAttendanceForDay(ctx, account.ID, "2025-03-04")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestSaveCheckOut_OnlyOnce(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()
	account := testutil.NewTestAccount(t, repo, "jane@example.com")
	a := newAttendance(account, "2025-03-03")
	require.NoError(t, repo.CreateAttendance(ctx, a))

	out := time.Now().UTC()
	a.CheckOutAt = &out
	a.WorkHours = 3.5
	a.Status = models.StatusHalfDay
	require.NoError(t, repo.SaveCheckOut(ctx, a))

	got, err := repo.GetAttendanceByID(ctx, a.ID)
	require.NoError(t, err)
	require.NotNil(t, got.CheckOutAt)
	assert.InDelta(t, 3.5, got.WorkHours, 0.001)
	assert.Equal(t, models.StatusHalfDay, got.Status)

	assert.ErrorIs(t, repo.SaveCheckOut(ctx, a), repository.ErrNotFound)
}

func TestUpdateAttendance(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()
	account := testutil.NewTestAccount(t, repo, "jane@example.com")
	a := newAttendance(account, "2025-03-03")
	require.NoError(t, repo.CreateAttendance(ctx, a))
	status := models.StatusOnLeave

	require.NoError(t, repo.UpdateAttendance(ctx, a.ID, &status, nil, time.Now()))

	got, err := repo.GetAttendanceByID(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusOnLeave, got.Status)
	assert.Nil(t, got.Remarks)

	assert.ErrorIs(t, repo.UpdateAttendance(ctx, uuid.NewString(), &status, nil, time.Now()), repository.ErrNotFound)
}

func TestListAttendance(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()
	jane := testutil.NewTestAccount(t, repo, "jane@example.com")
	john := testutil.NewTestAccount(t, repo, "john@example.com")
	for _, day := range []string{"2025-03-01", "2025-03-02", "2025-03-03"} {
		require.NoError(t, repo.CreateAttendance(ctx, newAttendance(jane, day)))
	}
	require.NoError(t, repo.CreateAttendance(ctx, newAttendance(john, "2025-03-02")))

	mine, err := repo.ListAttendanceByAccount(ctx, jane.ID, "2025-03-02", "2025-03-03")
	require.NoError(t, err)
	require.Len(t, mine, 2)
	assert.Equal(t, "2025-03-03", mine[0].WorkDate)
	assert.Equal(t, "2025-03-02", mine[1].WorkDate)

	byEmployee, err := repo.ListAttendanceByEmployeeID(ctx, john.EmployeeID, "2025-03-01", "2025-03-31")
	require.NoError(t, err)
	require.Len(t, byEmployee, 1)
	assert.Equal(t, john.ID, byEmployee[0].AccountID)

	all, err := repo.ListAttendance(ctx, "", "")
	require.NoError(t, err)
	assert.Len(t, all, 4)

	bounded, err := repo.ListAttendance(ctx, "2025-03-02", "2025-03-02")
	require.NoError(t, err)
	assert.Len(t, bounded, 2)
}

func TestDeleteAccount_CascadesAttendance(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()
	account := testutil.NewTestAccount(t, repo, "jane@example.com")
	a := newAttendance(account, "2025-03-03")
	require.NoError(t, repo.CreateAttendance(ctx, a))

	require.NoError(t, repo.DeleteAccount(ctx, account.ID))

	_, err := repo.GetAttendanceByID(ctx, a.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
	assert.ErrorIs(t, repo.DeleteAttendance(ctx, a.ID), repository.ErrNotFound)
}
