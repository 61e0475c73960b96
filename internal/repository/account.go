// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package repository

import (
	"context"
	"time"

	"github.com/KushalvDesai/DAYFLOW-odooxGCET/internal/models"
)

const accountColumns = `id, email, employee_id, password_hash, first_name, last_name,
	company_name, department, designation, phone, address, profile_picture, role,
	basic_salary, joining_date, email_verified, active, last_login_at, created_at, updated_at`

// CreateAccount inserts a verified account.
func (r *Repository) CreateAccount(ctx context.Context, a *models.Account) error {
	_, err := r.exec(ctx,
		`INSERT INTO accounts (`+accountColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.Email, a.EmployeeID, a.PasswordHash, a.FirstName, a.LastName,
		a.CompanyName, a.Department, a.Designation, a.Phone, a.Address, a.ProfilePicture, a.Role,
		a.BasicSalary, utc(a.JoiningDate), a.EmailVerified, a.Active, a.LastLoginAt,
		utc(a.CreatedAt), utc(a.UpdatedAt))
	return err
}

// GetAccountByID retrieves an account by ID.
func (r *Repository) GetAccountByID(ctx context.Context, id string) (*models.Account, error) {
	var a models.Account
	if err := r.get(ctx, &a, `SELECT `+accountColumns+` FROM accounts WHERE id = ?`, id); err != nil {
		return nil, err
	}
	return &a, nil
}

// GetAccountByEmail retrieves an account by its exact email address.
func (r *Repository) GetAccountByEmail(ctx context.Context, email string) (*models.Account, error) {
	var a models.Account
	if err := r.get(ctx, &a, `SELECT `+accountColumns+` FROM accounts WHERE email = ?`, email); err != nil {
		return nil, err
	}
	return &a, nil
}

// ListAccounts returns all accounts, newest first.
func (r *Repository) ListAccounts(ctx context.Context) ([]models.Account, error) {
	accounts := []models.Account{}
	if err := r.selectAll(ctx, &accounts, `SELECT `+accountColumns+` FROM accounts ORDER BY created_at DESC`); err != nil {
		return nil, err
	}
	return accounts, nil
}

// CountAccountsCreatedBetween counts accounts with from <= created_at < to.
func (r *Repository) CountAccountsCreatedBetween(ctx context.Context, from, to time.Time) (int, error) {
	var count int
	err := r.get(ctx, &count,
		`SELECT COUNT(*) FROM accounts WHERE created_at >= ? AND created_at < ?`, utc(from), utc(to))
	return count, err
}

// TouchLastLogin records a successful sign-in.
func (r *Repository) TouchLastLogin(ctx context.Context, id string, at time.Time) error {
	res, err := r.exec(ctx,
		`UPDATE accounts SET last_login_at = ?, updated_at = ? WHERE id = ?`, utc(at), utc(at), id)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

// UpdateAccountProfile applies the non-nil fields of upd.
func (r *Repository) UpdateAccountProfile(ctx context.Context, id string, upd models.ProfileUpdate, now time.Time) error {
	res, err := r.exec(ctx,
		`UPDATE accounts SET
			phone = COALESCE(?, phone),
			address = COALESCE(?, address),
			profile_picture = COALESCE(?, profile_picture),
			department = COALESCE(?, department),
			designation = COALESCE(?, designation),
			updated_at = ?
		WHERE id = ?`,
		upd.Phone, upd.Address, upd.ProfilePicture, upd.Department, upd.Designation, utc(now), id)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

// SetAccountActive activates or deactivates an account.
func (r *Repository) SetAccountActive(ctx context.Context, id string, active bool, now time.Time) error {
	res, err := r.exec(ctx,
		`UPDATE accounts SET active = ?, updated_at = ? WHERE id = ?`, active, utc(now), id)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

// DeleteAccount removes an account and, through the foreign key, its attendance.
func (r *Repository) DeleteAccount(ctx context.Context, id string) error {
	res, err := r.exec(ctx, `DELETE FROM accounts WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return requireAffected(res)
}
