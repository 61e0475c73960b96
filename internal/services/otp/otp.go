// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package otp issues and validates numeric one-time codes for registrations.
package otp

import (
	"crypto/rand"
	"crypto/subtle"
	"fmt"
	"io"
	"math/big"
	"time"

	"github.com/KushalvDesai/DAYFLOW-odooxGCET/internal/apperr"
	"github.com/KushalvDesai/DAYFLOW-odooxGCET/internal/models"
)

// DefaultWindow is how long a code stays valid.
const DefaultWindow = 10 * time.Minute

const (
	minCode = 100000
	maxCode = 999999
)

var (
	ErrNoPendingRegistration = apperr.New(apperr.KindNotFound, "no_pending_registration",
		"No pending registration found for this email. Please sign up first.")
	ErrOTPMissing = apperr.New(apperr.KindNotFound, "otp_missing",
		"No OTP found. Please request a new one.")
	ErrOTPExpired = apperr.New(apperr.KindExpired, "otp_expired",
		"OTP has expired. Please request a new one.")
	ErrOTPMismatch = apperr.New(apperr.KindUnauthorized, "otp_mismatch", "Invalid OTP")
)

// Code is a freshly issued one-time code.
type Code struct {
	Value     string
	ExpiresAt time.Time
}

// Engine issues codes from a cryptographic source.
type Engine struct {
	window time.Duration
	now    func() time.Time
	rand   io.Reader
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock sets the time source.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithRandom sets the entropy source.
func WithRandom(r io.Reader) Option {
	return func(e *Engine) { e.rand = r }
}

// NewEngine creates an Engine. A non-positive window selects DefaultWindow.
func NewEngine(window time.Duration, opts ...Option) *Engine {
	if window <= 0 {
		window = DefaultWindow
	}
	e := &Engine{window: window, now: time.Now, rand: rand.Reader}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Window returns the validity window of issued codes.
func (e *Engine) Window() time.Duration {
	return e.window
}

// Issue returns a uniformly chosen six digit code and its expiry.
func (e *Engine) Issue() (Code, error) {
	n, err := rand.Int(e.rand, big.NewInt(maxCode-minCode+1))
	if err != nil {
		return Code{}, fmt.Errorf("failed to generate otp: %w", err)
	}
	return Code{
		Value:     fmt.Sprintf("%06d", n.Int64()+minCode),
		ExpiresAt: e.now().Add(e.window),
	}, nil
}

// Validate checks supplied against the registration's stored code at now.
// A code is still valid at the exact expiry instant.
func Validate(p *models.PendingRegistration, supplied string, now time.Time) error {
	if p == nil {
		return ErrNoPendingRegistration
	}
	if p.OTPCode == "" || p.OTPExpiresAt.IsZero() {
		return ErrOTPMissing
	}
	if now.After(p.OTPExpiresAt) {
		return ErrOTPExpired
	}
	if subtle.ConstantTimeCompare([]byte(p.OTPCode), []byte(supplied)) != 1 {
		return ErrOTPMismatch
	}
	return nil
}
