// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package models

import (
	"time"
)

// Role is the coarse authorization tag carried by every account.
type Role string

const (
	RoleEmployee Role = "EMPLOYEE"
	RoleHR       Role = "HR"
	RoleAdmin    Role = "ADMIN"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleEmployee, RoleHR, RoleAdmin:
		return true
	}
	return false
}

// Privileged reports whether r may manage other accounts' records.
func (r Role) Privileged() bool {
	return r == RoleHR || r == RoleAdmin
}

// Account is a verified, login-capable identity.
type Account struct { //nolint:govet // fieldalignment: readability over optimization
	ID             string     `db:"id" json:"id"`
	Email          string     `db:"email" json:"email"`
	EmployeeID     string     `db:"employee_id" json:"employee_id"`
	PasswordHash   string     `db:"password_hash" json:"-"`
	FirstName      string     `db:"first_name" json:"first_name"`
	LastName       string     `db:"last_name" json:"last_name"`
	CompanyName    *string    `db:"company_name" json:"company_name,omitempty"`
	Department     *string    `db:"department" json:"department,omitempty"`
	Designation    *string    `db:"designation" json:"designation,omitempty"`
	Phone          *string    `db:"phone" json:"phone,omitempty"`
	Address        *string    `db:"address" json:"address,omitempty"`
	ProfilePicture *string    `db:"profile_picture" json:"profile_picture,omitempty"`
	Role           Role       `db:"role" json:"role"`
	BasicSalary    *float64   `db:"basic_salary" json:"basic_salary,omitempty"`
	JoiningDate    time.Time  `db:"joining_date" json:"joining_date"`
	EmailVerified  bool       `db:"email_verified" json:"email_verified"`
	Active         bool       `db:"active" json:"active"`
	LastLoginAt    *time.Time `db:"last_login_at" json:"last_login_at,omitempty"`
	CreatedAt      time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time  `db:"updated_at" json:"updated_at"`
}

// FullName returns first and last name separated by a space.
func (a *Account) FullName() string {
	return a.FirstName + " " + a.LastName
}

// ProfileUpdate holds the self-service profile fields. Nil fields are left unchanged.
type ProfileUpdate struct {
	Phone          *string `json:"phone" validate:"omitempty,max=32"`
	Address        *string `json:"address" validate:"omitempty,max=512"`
	ProfilePicture *string `json:"profile_picture" validate:"omitempty,max=2048"`
	Department     *string `json:"department" validate:"omitempty,max=128"`
	Designation    *string `json:"designation" validate:"omitempty,max=128"`
}

// Empty reports whether the update changes nothing.
func (u ProfileUpdate) Empty() bool {
	return u.Phone == nil && u.Address == nil && u.ProfilePicture == nil &&
		u.Department == nil && u.Designation == nil
}
