// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package testutil provides test helpers and fixtures.
package testutil

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/KushalvDesai/DAYFLOW-odooxGCET/internal/database"
	"github.com/KushalvDesai/DAYFLOW-odooxGCET/internal/models"
	"github.com/KushalvDesai/DAYFLOW-odooxGCET/internal/repository"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"github.com/vinovest/sqlx"
	"golang.org/x/crypto/bcrypt"
)

// TestPassword is the plaintext password of accounts created by NewTestAccount.
const TestPassword = "correct-horse-battery"

// TestSecret is a signing secret long enough for the token issuer.
var TestSecret = []byte(strings.Repeat("t", 32))

// NewTestDB creates an in-memory SQLite database for tests.
// Returns both the database connection and the repository for convenience.
func NewTestDB(t *testing.T) (*sqlx.DB, *repository.Repository) {
	t.Helper()
	db, err := database.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = db.Close()
	})
	repo := repository.New(db)
	return db, repo
}

// AccountOption customizes NewTestAccount.
type AccountOption func(*models.PendingRegistration)

// WithRole sets the role of the test account.
func WithRole(role models.Role) AccountOption {
	return func(p *models.PendingRegistration) { p.Role = role }
}

// WithEmployeeID sets the employee identifier of the test account.
func WithEmployeeID(id string) AccountOption {
	return func(p *models.PendingRegistration) { p.EmployeeID = id }
}

// WithCreatedAt sets the creation time of the test account.
func WithCreatedAt(at time.Time) AccountOption {
	return func(p *models.PendingRegistration) { p.CreatedAt = at }
}

// NewTestPending builds a pending registration that has not been stored yet.
func NewTestPending(t *testing.T, email string, opts ...AccountOption) *models.PendingRegistration {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(TestPassword), bcrypt.MinCost)
	require.NoError(t, err)

	now := time.Now().UTC()
	p := &models.PendingRegistration{
		ID:           uuid.NewString(),
		Email:        email,
		EmployeeID:   "OITEAC" + uuid.NewString()[:8],
		PasswordHash: string(hash),
		FirstName:    "Test",
		LastName:     "Account",
		Role:         models.RoleEmployee,
		JoiningDate:  now,
		OTPCode:      "123456",
		OTPExpiresAt: now.Add(10 * time.Minute),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// NewTestAccount creates a verified account through the regular activation path.
func NewTestAccount(t *testing.T, repo *repository.Repository, email string, opts ...AccountOption) *models.Account {
	t.Helper()
	ctx := context.Background()
	p := NewTestPending(t, email, opts...)
	require.NoError(t, repo.CreatePending(ctx, p))

	account := p.Account(uuid.NewString(), p.CreatedAt)
	require.NoError(t, repo.ActivatePending(ctx, p.ID, account))
	return account
}

// SentOTP records one notification handed to FakeNotifier.
type SentOTP struct {
	To         string
	OTP        string
	EmployeeID string
	FirstName  string
}

// FakeNotifier records OTP notifications instead of sending them.
type FakeNotifier struct {
	mu   sync.Mutex
	sent []SentOTP
	fail bool
}

// SendOTP records the notification and reports the configured outcome.
func (n *FakeNotifier) SendOTP(_ context.Context, to, otp, employeeID, firstName string) bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, SentOTP{To: to, OTP: otp, EmployeeID: employeeID, FirstName: firstName})
	return !n.fail
}

// SetFail makes subsequent sends report failure.
func (n *FakeNotifier) SetFail(fail bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.fail = fail
}

// Sent returns a copy of all recorded notifications.
func (n *FakeNotifier) Sent() []SentOTP {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]SentOTP(nil), n.sent...)
}

// Last returns the most recent notification.
func (n *FakeNotifier) Last() (SentOTP, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.sent) == 0 {
		return SentOTP{}, false
	}
	return n.sent[len(n.sent)-1], true
}

// Clock is a manually advanced time source.
type Clock struct {
	mu  sync.Mutex
	now time.Time
}

// NewClock creates a Clock starting at now.
func NewClock(now time.Time) *Clock {
	return &Clock{now: now}
}

// Now returns the current fake time.
func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock forward by d.
func (c *Clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// Set moves the clock to t.
func (c *Clock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

// NewEchoContext creates an Echo context for handler tests.
func NewEchoContext(e *echo.Echo, method, path string, body io.Reader) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(method, path, body)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	return c, rec
}

// NewEchoContextWithHeaders creates an Echo context with custom headers.
func NewEchoContextWithHeaders(e *echo.Echo, method, path string, body io.Reader, headers map[string]string) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(method, path, body)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	return c, rec
}

// NewRequest creates an HTTP request for testing.
func NewRequest(method, path string, body io.Reader) *http.Request {
	req := httptest.NewRequest(method, path, body)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	return req
}
