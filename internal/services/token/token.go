// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package token mints and verifies signed session tokens.
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/KushalvDesai/DAYFLOW-odooxGCET/internal/apperr"
	"github.com/KushalvDesai/DAYFLOW-odooxGCET/internal/models"
	"github.com/golang-jwt/jwt/v5"
)

// Lifetime is the fixed validity of a session token.
const Lifetime = 7 * 24 * time.Hour

var (
	ErrTokenInvalid = apperr.New(apperr.KindUnauthorized, "invalid_token", "Invalid or malformed token")
	ErrTokenExpired = apperr.New(apperr.KindUnauthorized, "token_expired", "Token has expired")
)

// Claims is the claim set carried by a session token.
type Claims struct {
	Email      string      `json:"email"`
	EmployeeID string      `json:"employee_id"`
	Role       models.Role `json:"role"`
	jwt.RegisteredClaims
}

// AccountID returns the subject claim.
func (c *Claims) AccountID() string {
	return c.Subject
}

// Issuer creates HS256 tokens.
type Issuer struct {
	secret []byte
	issuer string
	now    func() time.Time
}

// NewIssuer creates an Issuer. now defaults to time.Now.
func NewIssuer(secret []byte, issuer string, now func() time.Time) *Issuer {
	if now == nil {
		now = time.Now
	}
	return &Issuer{secret: secret, issuer: issuer, now: now}
}

// Issue mints a token for the account and returns it with its expiry.
func (i *Issuer) Issue(a *models.Account) (string, time.Time, error) {
	now := i.now()
	expires := now.Add(Lifetime)
	claims := Claims{
		Email:      a.Email,
		EmployeeID: a.EmployeeID,
		Role:       a.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    i.issuer,
			Subject:   a.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, expires, nil
}

// Parse verifies signature, algorithm, expiry and claim shape.
func (i *Issuer) Parse(raw string) (*Claims, error) {
	claims := &Claims{}
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(i.now),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
	}
	if i.issuer != "" {
		opts = append(opts, jwt.WithIssuer(i.issuer))
	}

	_, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) {
		return i.secret, nil
	}, opts...)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired.Wrap(err)
		}
		return nil, ErrTokenInvalid.Wrap(err)
	}

	if claims.Subject == "" || claims.Email == "" || !claims.Role.Valid() {
		return nil, ErrTokenInvalid
	}
	return claims, nil
}
