// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package models

import "time"

// PendingMaxAge is how long an unverified registration stays visible.
const PendingMaxAge = 24 * time.Hour

// PendingRegistration stages a signup until its OTP is confirmed.
type PendingRegistration struct { //nolint:govet // fieldalignment: readability over optimization
	ID           string    `db:"id" json:"id"`
	Email        string    `db:"email" json:"email"`
	EmployeeID   string    `db:"employee_id" json:"employee_id"`
	PasswordHash string    `db:"password_hash" json:"-"`
	FirstName    string    `db:"first_name" json:"first_name"`
	LastName     string    `db:"last_name" json:"last_name"`
	CompanyName  *string   `db:"company_name" json:"company_name,omitempty"`
	Department   *string   `db:"department" json:"department,omitempty"`
	Designation  *string   `db:"designation" json:"designation,omitempty"`
	Phone        *string   `db:"phone" json:"phone,omitempty"`
	Address      *string   `db:"address" json:"address,omitempty"`
	Role         Role      `db:"role" json:"role"`
	JoiningDate  time.Time `db:"joining_date" json:"joining_date"`
	OTPCode      string    `db:"otp_code" json:"-"`
	OTPExpiresAt time.Time `db:"otp_expires_at" json:"otp_expires_at"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// Stale reports whether the registration is older than PendingMaxAge at now.
func (p *PendingRegistration) Stale(now time.Time) bool {
	return now.Sub(p.CreatedAt) > PendingMaxAge
}

// Account builds the verified account for this registration. Identity and
// profile fields are copied verbatim.
func (p *PendingRegistration) Account(id string, now time.Time) *Account {
	return &Account{
		ID:            id,
		Email:         p.Email,
		EmployeeID:    p.EmployeeID,
		PasswordHash:  p.PasswordHash,
		FirstName:     p.FirstName,
		LastName:      p.LastName,
		CompanyName:   p.CompanyName,
		Department:    p.Department,
		Designation:   p.Designation,
		Phone:         p.Phone,
		Address:       p.Address,
		Role:          p.Role,
		JoiningDate:   p.JoiningDate,
		EmailVerified: true,
		Active:        true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}
