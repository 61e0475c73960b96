// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package repository

import (
	"context"
	"time"

	"github.com/KushalvDesai/DAYFLOW-odooxGCET/internal/models"
)

const pendingColumns = `id, email, employee_id, password_hash, first_name, last_name,
	company_name, department, designation, phone, address, role, joining_date,
	otp_code, otp_expires_at, created_at, updated_at`

// CreatePending stages a registration. Email must not have another pending row.
func (r *Repository) CreatePending(ctx context.Context, p *models.PendingRegistration) error {
	_, err := r.exec(ctx,
		`INSERT INTO pending_registrations (`+pendingColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.Email, p.EmployeeID, p.PasswordHash, p.FirstName, p.LastName,
		p.CompanyName, p.Department, p.Designation, p.Phone, p.Address, p.Role, utc(p.JoiningDate),
		p.OTPCode, utc(p.OTPExpiresAt), utc(p.CreatedAt), utc(p.UpdatedAt))
	return err
}

// GetPendingByEmail retrieves a pending registration created at or after notBefore.
// Older rows are treated as already expired.
func (r *Repository) GetPendingByEmail(ctx context.Context, email string, notBefore time.Time) (*models.PendingRegistration, error) {
	var p models.PendingRegistration
	err := r.get(ctx, &p,
		`SELECT `+pendingColumns+` FROM pending_registrations WHERE email = ? AND created_at >= ?`,
		email, utc(notBefore))
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// UpdatePendingOTP replaces the code and expiry of a pending registration.
func (r *Repository) UpdatePendingOTP(ctx context.Context, id, code string, expiresAt, now time.Time) error {
	res, err := r.exec(ctx,
		`UPDATE pending_registrations SET otp_code = ?, otp_expires_at = ?, updated_at = ? WHERE id = ?`,
		code, utc(expiresAt), utc(now), id)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

// DeletePending deletes a pending registration by ID.
func (r *Repository) DeletePending(ctx context.Context, id string) error {
	res, err := r.exec(ctx, `DELETE FROM pending_registrations WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

// DeletePendingByEmail deletes any pending registration for email, regardless of age.
func (r *Repository) DeletePendingByEmail(ctx context.Context, email string) error {
	_, err := r.exec(ctx, `DELETE FROM pending_registrations WHERE email = ?`, email)
	return err
}

// DeletePendingCreatedBefore deletes registrations created before cutoff.
func (r *Repository) DeletePendingCreatedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.exec(ctx, `DELETE FROM pending_registrations WHERE created_at < ?`, utc(cutoff))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// ActivatePending creates the account and deletes the pending row in one
// transaction. ErrNotFound means the pending row was already consumed.
func (r *Repository) ActivatePending(ctx context.Context, pendingID string, account *models.Account) error {
	return r.WithTx(ctx, func(tx *Repository) error {
		if err := tx.CreateAccount(ctx, account); err != nil {
			return err
		}
		return tx.DeletePending(ctx, pendingID)
	})
}
