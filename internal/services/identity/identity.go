// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package identity runs staged registration, verification and sign-in.
package identity

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/KushalvDesai/DAYFLOW-odooxGCET/internal/apperr"
	"github.com/KushalvDesai/DAYFLOW-odooxGCET/internal/i18n"
	"github.com/KushalvDesai/DAYFLOW-odooxGCET/internal/metrics"
	"github.com/KushalvDesai/DAYFLOW-odooxGCET/internal/models"
	"github.com/KushalvDesai/DAYFLOW-odooxGCET/internal/repository"
	"github.com/KushalvDesai/DAYFLOW-odooxGCET/internal/services/credential"
	"github.com/KushalvDesai/DAYFLOW-odooxGCET/internal/services/otp"
	"github.com/KushalvDesai/DAYFLOW-odooxGCET/internal/services/token"
	"github.com/KushalvDesai/DAYFLOW-odooxGCET/internal/validation"
	"github.com/google/uuid"
)

var (
	ErrAlreadyRegistered = apperr.New(apperr.KindConflict, "already_registered", "Email already registered")
	ErrAlreadyVerified   = apperr.New(apperr.KindConflict, "already_verified",
		"Email is already verified. Please sign in.")
	ErrEmployeeIDConflict = apperr.New(apperr.KindConflict, "employee_id_conflict",
		"Employee ID is already taken. Please sign up again.")
	ErrRegistrationInProgress = apperr.New(apperr.KindConflict, "registration_in_progress",
		"A registration for this email is already in progress. Please try again.")
	ErrDeliveryFailed = apperr.New(apperr.KindDeliveryFailure, "delivery_failed",
		"Failed to send verification email. Please try again.")
	ErrInvalidCredentials = apperr.New(apperr.KindUnauthorized, "invalid_credentials", "Invalid credentials")
	ErrAccountDeactivated = apperr.New(apperr.KindUnauthorized, "account_deactivated",
		"Your account has been deactivated")
	ErrEmailNotVerified = apperr.New(apperr.KindUnauthorized, "email_not_verified",
		"Please verify your email before signing in")
)

// Operation names used for logs and metrics.
const (
	OpSignUp         = "signup"
	OpVerifyEmail    = "verify_email"
	OpResendOTP      = "resend_otp"
	OpSignIn         = "signin"
	OpCurrentAccount = "current_account"
)

// Store is the persistence used by Service. *repository.Repository satisfies it.
type Store interface {
	GetAccountByID(ctx context.Context, id string) (*models.Account, error)
	GetAccountByEmail(ctx context.Context, email string) (*models.Account, error)
	TouchLastLogin(ctx context.Context, id string, at time.Time) error
	CreatePending(ctx context.Context, p *models.PendingRegistration) error
	GetPendingByEmail(ctx context.Context, email string, notBefore time.Time) (*models.PendingRegistration, error)
	UpdatePendingOTP(ctx context.Context, id, code string, expiresAt, now time.Time) error
	DeletePending(ctx context.Context, id string) error
	DeletePendingByEmail(ctx context.Context, email string) error
	DeletePendingCreatedBefore(ctx context.Context, cutoff time.Time) (int64, error)
	ActivatePending(ctx context.Context, pendingID string, account *models.Account) error
}

var _ Store = (*repository.Repository)(nil)

// Allocator hands out employee identifiers.
type Allocator interface {
	Allocate(ctx context.Context, firstName, lastName string, year int) (string, error)
}

// Notifier delivers OTP codes. It reports whether the message was accepted.
type Notifier interface {
	SendOTP(ctx context.Context, to, otp, employeeID, firstName string) bool
}

// SignUpInput is the registration request.
type SignUpInput struct {
	Email       string      `json:"email" validate:"required,email,max=254"`
	Password    string      `json:"password" validate:"required,min=8,max=72"`
	FirstName   string      `json:"first_name" validate:"required,max=64"`
	LastName    string      `json:"last_name" validate:"required,max=64"`
	Role        models.Role `json:"role" validate:"required,role"`
	CompanyName *string     `json:"company_name" validate:"omitempty,max=128"`
	Phone       *string     `json:"phone" validate:"omitempty,max=32"`
	Department  *string     `json:"department" validate:"omitempty,max=128"`
	Designation *string     `json:"designation" validate:"omitempty,max=128"`
	Address     *string     `json:"address" validate:"omitempty,max=512"`
	JoiningDate *time.Time  `json:"joining_date"`
}

// VerifyInput confirms a pending registration.
type VerifyInput struct {
	Email string `json:"email" validate:"required,email"`
	OTP   string `json:"otp" validate:"required"`
}

// ResendInput asks for a fresh code.
type ResendInput struct {
	Email string `json:"email" validate:"required,email"`
}

// SignInInput holds login credentials.
type SignInInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Result is returned by the registration steps.
type Result struct {
	Message    string `json:"message"`
	Success    bool   `json:"success"`
	EmployeeID string `json:"employee_id,omitempty"`
}

// Session is a successful sign-in.
type Session struct {
	Token     string          `json:"token"`
	ExpiresAt time.Time       `json:"expires_at"`
	Account   *models.Account `json:"user"`
}

// Service coordinates the registration state machine.
type Service struct {
	store     Store
	ids       Allocator
	notifier  Notifier
	codec     *credential.Codec
	otps      *otp.Engine
	tokens    *token.Issuer
	validator *validation.Validator
	metrics   *metrics.Metrics
	now       func() time.Time
	loc       *time.Location
}

// Option configures a Service.
type Option func(*Service)

// WithClock sets the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithLocation sets the zone used to derive the joining year.
func WithLocation(loc *time.Location) Option {
	return func(s *Service) { s.loc = loc }
}

// WithMetrics records operation outcomes on m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// NewService creates a Service.
func NewService(store Store, ids Allocator, notifier Notifier, codec *credential.Codec,
	otps *otp.Engine, tokens *token.Issuer, opts ...Option) *Service {
	s := &Service{
		store:     store,
		ids:       ids,
		notifier:  notifier,
		codec:     codec,
		otps:      otps,
		tokens:    tokens,
		validator: validation.New(),
		now:       time.Now,
		loc:       time.Local,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SignUp stages a registration and sends its OTP.
func (s *Service) SignUp(ctx context.Context, in SignUpInput) (*Result, error) {
	in.Email = normalizeEmail(in.Email)
	res, err := s.signUp(ctx, in)
	s.record(OpSignUp, err)
	return res, err
}

func (s *Service) signUp(ctx context.Context, in SignUpInput) (*Result, error) {
	if err := s.validator.Validate(in); err != nil {
		return nil, err
	}

	if _, err := s.store.GetAccountByEmail(ctx, in.Email); err == nil {
		return nil, ErrAlreadyRegistered
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("failed to look up account: %w", err)
	}

	// A previous unfinished signup for this email is replaced.
	if err := s.store.DeletePendingByEmail(ctx, in.Email); err != nil {
		return nil, fmt.Errorf("failed to discard pending registration: %w", err)
	}

	now := s.now()
	joining := now
	if in.JoiningDate != nil && !in.JoiningDate.IsZero() {
		joining = *in.JoiningDate
	}

	employeeID, err := s.ids.Allocate(ctx, in.FirstName, in.LastName, joining.In(s.loc).Year())
	if err != nil {
		return nil, fmt.Errorf("failed to allocate employee id: %w", err)
	}

	hash, err := s.codec.Hash(in.Password)
	if err != nil {
		if errors.Is(err, credential.ErrSecretTooLong) || errors.Is(err, credential.ErrEmptySecret) {
			return nil, apperr.Validation("Invalid input", map[string]string{"password": "must be 8 to 72 bytes"})
		}
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	code, err := s.otps.Issue()
	if err != nil {
		return nil, err
	}

	p := &models.PendingRegistration{
		ID:           uuid.NewString(),
		Email:        in.Email,
		EmployeeID:   employeeID,
		PasswordHash: hash,
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		CompanyName:  in.CompanyName,
		Department:   in.Department,
		Designation:  in.Designation,
		Phone:        in.Phone,
		Address:      in.Address,
		Role:         in.Role,
		JoiningDate:  joining,
		OTPCode:      code.Value,
		OTPExpiresAt: code.ExpiresAt,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.store.CreatePending(ctx, p); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, ErrRegistrationInProgress
		}
		return nil, fmt.Errorf("failed to store pending registration: %w", err)
	}

	if !s.deliver(ctx, p, code.Value, OpSignUp) {
		if err := s.store.DeletePending(ctx, p.ID); err != nil && !errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("failed to roll back pending registration: %w", err)
		}
		return nil, ErrDeliveryFailed
	}

	slog.Info("signup_initiated", "email", p.Email, "employee_id", p.EmployeeID, "role", p.Role)

	return &Result{
		Message:    i18n.TData(ctx, "signup_initiated", map[string]any{"EmployeeID": p.EmployeeID}),
		Success:    true,
		EmployeeID: p.EmployeeID,
	}, nil
}

// VerifyEmail checks the OTP and turns the pending registration into an account.
func (s *Service) VerifyEmail(ctx context.Context, in VerifyInput) (*Result, error) {
	in.Email = normalizeEmail(in.Email)
	res, err := s.verifyEmail(ctx, in)
	s.record(OpVerifyEmail, err)
	return res, err
}

func (s *Service) verifyEmail(ctx context.Context, in VerifyInput) (*Result, error) {
	if err := s.validator.Validate(in); err != nil {
		return nil, err
	}

	now := s.now()
	p, err := s.lookupPending(ctx, in.Email, now)
	if err != nil {
		return nil, err
	}

	if err := otp.Validate(p, in.OTP, now); err != nil {
		return nil, err
	}

	account := p.Account(uuid.NewString(), now)
	if err := s.store.ActivatePending(ctx, p.ID, account); err != nil {
		switch {
		case errors.Is(err, repository.ErrDuplicateEmployeeID):
			return nil, ErrEmployeeIDConflict
		case errors.Is(err, repository.ErrDuplicateEmail), errors.Is(err, repository.ErrNotFound):
			return nil, ErrAlreadyVerified
		default:
			return nil, fmt.Errorf("failed to activate account: %w", err)
		}
	}

	slog.Info("email_verified", "email", account.Email, "employee_id", account.EmployeeID, "account_id", account.ID)

	return &Result{
		Message:    i18n.TData(ctx, "email_verified", map[string]any{"EmployeeID": account.EmployeeID}),
		Success:    true,
		EmployeeID: account.EmployeeID,
	}, nil
}

// ResendOTP replaces the code of a pending registration and sends it again.
// The new code stays stored even when delivery fails.
func (s *Service) ResendOTP(ctx context.Context, in ResendInput) (*Result, error) {
	in.Email = normalizeEmail(in.Email)
	res, err := s.resendOTP(ctx, in)
	s.record(OpResendOTP, err)
	return res, err
}

func (s *Service) resendOTP(ctx context.Context, in ResendInput) (*Result, error) {
	if err := s.validator.Validate(in); err != nil {
		return nil, err
	}

	now := s.now()
	p, err := s.store.GetPendingByEmail(ctx, in.Email, now.Add(-models.PendingMaxAge))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, otp.ErrNoPendingRegistration
		}
		return nil, fmt.Errorf("failed to look up pending registration: %w", err)
	}

	code, err := s.otps.Issue()
	if err != nil {
		return nil, err
	}
	if err := s.store.UpdatePendingOTP(ctx, p.ID, code.Value, code.ExpiresAt, now); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, otp.ErrNoPendingRegistration
		}
		return nil, fmt.Errorf("failed to store otp: %w", err)
	}

	if !s.deliver(ctx, p, code.Value, OpResendOTP) {
		return nil, ErrDeliveryFailed
	}

	slog.Info("otp_resent", "email", p.Email, "employee_id", p.EmployeeID)

	return &Result{Message: i18n.T(ctx, "otp_resent"), Success: true}, nil
}

// SignIn checks credentials and issues a session token.
func (s *Service) SignIn(ctx context.Context, in SignInInput) (*Session, error) {
	in.Email = normalizeEmail(in.Email)
	sess, err := s.signIn(ctx, in)
	s.record(OpSignIn, err)
	if err != nil {
		if e, ok := apperr.As(err); ok && e.Kind == apperr.KindUnauthorized {
			slog.Warn("login_failed", "email", in.Email, "reason", e.Code)
		}
		return nil, err
	}
	slog.Info("login_success", "account_id", sess.Account.ID, "employee_id", sess.Account.EmployeeID)
	return sess, nil
}

func (s *Service) signIn(ctx context.Context, in SignInInput) (*Session, error) {
	if err := s.validator.Validate(in); err != nil {
		return nil, err
	}

	account, err := s.store.GetAccountByEmail(ctx, in.Email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.codec.VerifyDummy(in.Password)
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to look up account: %w", err)
	}

	if !s.codec.Verify(in.Password, account.PasswordHash) {
		return nil, ErrInvalidCredentials
	}
	if !account.Active {
		return nil, ErrAccountDeactivated
	}
	if !account.EmailVerified {
		return nil, ErrEmailNotVerified
	}

	now := s.now()
	if err := s.store.TouchLastLogin(ctx, account.ID, now); err != nil {
		return nil, fmt.Errorf("failed to record login: %w", err)
	}
	account.LastLoginAt = &now

	signed, expiresAt, err := s.tokens.Issue(account)
	if err != nil {
		return nil, err
	}

	return &Session{Token: signed, ExpiresAt: expiresAt, Account: account}, nil
}

// Authenticate verifies a bearer token and loads its account.
func (s *Service) Authenticate(ctx context.Context, raw string) (*token.Claims, *models.Account, error) {
	claims, err := s.tokens.Parse(raw)
	if err != nil {
		return nil, nil, err
	}

	account, err := s.store.GetAccountByID(ctx, claims.AccountID())
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil, token.ErrTokenInvalid
		}
		return nil, nil, fmt.Errorf("failed to load account: %w", err)
	}
	if !account.Active {
		return nil, nil, ErrAccountDeactivated
	}

	return claims, account, nil
}

// CurrentAccount returns the account a token belongs to.
func (s *Service) CurrentAccount(ctx context.Context, raw string) (*models.Account, error) {
	_, account, err := s.Authenticate(ctx, raw)
	s.record(OpCurrentAccount, err)
	return account, err
}

// PurgeExpiredPending deletes pending registrations older than models.PendingMaxAge.
func (s *Service) PurgeExpiredPending(ctx context.Context) (int64, error) {
	n, err := s.store.DeletePendingCreatedBefore(ctx, s.now().Add(-models.PendingMaxAge))
	if err != nil {
		return 0, fmt.Errorf("failed to purge pending registrations: %w", err)
	}
	s.metrics.AddPurged(n)
	if n > 0 {
		slog.Info("pending_registrations_purged", "count", n)
	}
	return n, nil
}

// RunSweeper purges stale registrations every interval until ctx is done.
func (s *Service) RunSweeper(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := s.PurgeExpiredPending(ctx); err != nil && ctx.Err() == nil {
				slog.Error("pending_sweep_failed", "error", err)
			}
		}
	}
}

// lookupPending finds a live pending registration, telling a consumed one
// apart from one that never existed.
func (s *Service) lookupPending(ctx context.Context, email string, now time.Time) (*models.PendingRegistration, error) {
	p, err := s.store.GetPendingByEmail(ctx, email, now.Add(-models.PendingMaxAge))
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("failed to look up pending registration: %w", err)
	}

	if _, err := s.store.GetAccountByEmail(ctx, email); err == nil {
		return nil, ErrAlreadyVerified
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("failed to look up account: %w", err)
	}
	return nil, otp.ErrNoPendingRegistration
}

func (s *Service) deliver(ctx context.Context, p *models.PendingRegistration, code, op string) bool {
	delivered := s.notifier.SendOTP(ctx, p.Email, code, p.EmployeeID, p.FirstName)
	s.metrics.RecordOTPDelivery(delivered)
	if !delivered {
		slog.Warn("otp_delivery_failed", "email", p.Email, "employee_id", p.EmployeeID, "operation", op)
	}
	return delivered
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

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
