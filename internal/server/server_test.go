// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package server

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/KushalvDesai/DAYFLOW-odooxGCET/internal/config"
	"github.com/KushalvDesai/DAYFLOW-odooxGCET/internal/metrics"
	"github.com/KushalvDesai/DAYFLOW-odooxGCET/internal/models"
	"github.com/KushalvDesai/DAYFLOW-odooxGCET/internal/repository"
	"github.com/KushalvDesai/DAYFLOW-odooxGCET/internal/services/email"
	"github.com/KushalvDesai/DAYFLOW-odooxGCET/internal/testutil"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{Host: "localhost", Port: 8080, MaxBodySize: 1},
		Auth: config.AuthConfig{
			JWTSecret:          string(testutil.TestSecret),
			JWTIssuer:          "dayflow",
			OTPExpiry:          10 * time.Minute,
			CompanyPrefix:      "OI",
			EmployeeIDStrategy: config.StrategySequence,
			BcryptCost:         bcrypt.MinCost,
		},
		Attendance: config.AttendanceConfig{Timezone: "UTC", OfficeStartHour: 9, LateGrace: 15 * time.Minute, HalfDayHours: 4},
		Metrics:    config.MetricsConfig{Enabled: true},
	}
}

type testApp struct {
	e        *echo.Echo
	repo     *repository.Repository
	notifier *testutil.FakeNotifier
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	_, repo := testutil.NewTestDB(t)
	notifier := &testutil.FakeNotifier{}
	cfg := testConfig()
	m := metrics.New(cfg.Metrics.Enabled)

	svc, err := NewServices(cfg, repo, notifier, m)
	require.NoError(t, err)

	return &testApp{
		e:        NewEcho(cfg, svc, m, newLogger(io.Discard, "error", "text")),
		repo:     repo,
		notifier: notifier,
	}
}

func (a *testApp) do(t *testing.T, method, path, token, body string) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	a.e.ServeHTTP(rec, req)
	return rec
}

// signIn registers email with role through the public API and returns a token.
func (a *testApp) signIn(t *testing.T, email string, role models.Role) string {
	t.Helper()
	rec := a.do(t, http.MethodPost, "/api/auth/signup", "",
		`{"email":"`+email+`","password":"s3cret-password","first_name":"Test","last_name":"User","role":"`+string(role)+`"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	sent, ok := a.notifier.Last()
	require.True(t, ok)
	rec = a.do(t, http.MethodPost, "/api/auth/verify-email", "", `{"email":"`+email+`","otp":"`+sent.OTP+`"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = a.do(t, http.MethodPost, "/api/auth/signin", "", `{"email":"`+email+`","password":"s3cret-password"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var sess struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &sess))
	return sess.Token
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Code string `json:"code"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body.Code
}

func TestHealthRoute(t *testing.T) {
	app := newTestApp(t)

	rec := app.do(t, http.MethodGet, "/health", "", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get(echo.HeaderXRequestID))
	assert.Equal(t, "nosniff", rec.Header().Get(echo.HeaderXContentTypeOptions))
}

func TestMetricsRoute(t *testing.T) {
	app := newTestApp(t)
	app.do(t, http.MethodPost, "/api/auth/signin", "", `{"email":"nobody@example.com","password":"whatever-it-is"}`)

	rec := app.do(t, http.MethodGet, "/metrics", "", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `dayflow_operations_total{operation="signin",reason="invalid_credentials",result="failure"} 1`)
}

func TestRegistrationFlow(t *testing.T) {
	app := newTestApp(t)
	token := app.signIn(t, "john@example.com", models.RoleEmployee)

	rec := app.do(t, http.MethodGet, "/api/auth/me", token, "")

	require.Equal(t, http.StatusOK, rec.Code)
	var me models.Account
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &me))
	assert.Equal(t, "john@example.com", me.Email)
	assert.True(t, me.EmailVerified)
}

func TestSignUpDuplicate(t *testing.T) {
	app := newTestApp(t)
	app.signIn(t, "john@example.com", models.RoleEmployee)

	rec := app.do(t, http.MethodPost, "/api/auth/signup", "",
		`{"email":"john@example.com","password":"s3cret-password","first_name":"John","last_name":"Doe","role":"EMPLOYEE"}`)

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "already_registered", errorCode(t, rec))
}

func TestSignUpValidation(t *testing.T) {
	app := newTestApp(t)

	rec := app.do(t, http.MethodPost, "/api/auth/signup", "", `{"email":"john@example.com"}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "validation_failed", errorCode(t, rec))
}

func TestLocalizedError(t *testing.T) {
	app := newTestApp(t)
	req := httptest.NewRequest(http.MethodPost, "/api/auth/signin",
		strings.NewReader(`{"email":"nobody@example.com","password":"whatever-it-is"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	req.Header.Set("Accept-Language", "de")
	rec := httptest.NewRecorder()

	app.e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "Ungültige Zugangsdaten")
}

func TestProtectedRoutes(t *testing.T) {
	app := newTestApp(t)

	tests := []struct {
		method, path string
	}{
		{http.MethodGet, "/api/auth/me"},
		{http.MethodGet, "/api/users"},
		{http.MethodPost, "/api/attendance/check-in"},
		{http.MethodGet, "/api/attendance"},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			rec := app.do(t, tt.method, tt.path, "", "")
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.Equal(t, "missing_token", errorCode(t, rec))

			rec = app.do(t, tt.method, tt.path, "not.a.jwt", "")
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.Equal(t, "invalid_token", errorCode(t, rec))
		})
	}
}

func TestRoleGates(t *testing.T) {
	app := newTestApp(t)
	employee := app.signIn(t, "emp@example.com", models.RoleEmployee)
	hr := app.signIn(t, "hr@example.com", models.RoleHR)
	admin := app.signIn(t, "admin@example.com", models.RoleAdmin)

	rec := app.do(t, http.MethodGet, "/api/users/by-email?email=emp@example.com", hr, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var target models.Account
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &target))

	tests := []struct {
		name   string
		token  string
		method string
		path   string
		body   string
		want   int
	}{
		{"employee lists users", employee, http.MethodGet, "/api/users", "", http.StatusOK},
		{"employee lists all attendance", employee, http.MethodGet, "/api/attendance", "", http.StatusForbidden},
		{"hr lists all attendance", hr, http.MethodGet, "/api/attendance", "", http.StatusOK},
		{"employee deactivates", employee, http.MethodPut, "/api/users/" + target.ID + "/active", `{"active":false}`, http.StatusForbidden},
		{"hr removes", hr, http.MethodDelete, "/api/users/" + target.ID, "", http.StatusForbidden},
		{"hr deactivates", hr, http.MethodPut, "/api/users/" + target.ID + "/active", `{"active":false}`, http.StatusOK},
		{"deactivated token rejected", employee, http.MethodGet, "/api/users", "", http.StatusUnauthorized},
		{"admin removes", admin, http.MethodDelete, "/api/users/" + target.ID, "", http.StatusOK},
		{"admin removes again", admin, http.MethodDelete, "/api/users/" + target.ID, "", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := app.do(t, tt.method, tt.path, tt.token, tt.body)
			assert.Equal(t, tt.want, rec.Code, rec.Body.String())
		})
	}
}

func TestAttendanceRoutes(t *testing.T) {
	app := newTestApp(t)
	token := app.signIn(t, "john@example.com", models.RoleEmployee)

	rec := app.do(t, http.MethodPost, "/api/attendance/check-in", token, `{"location":"HQ"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = app.do(t, http.MethodPost, "/api/attendance/check-in", token, "")
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "already_checked_in", errorCode(t, rec))

	rec = app.do(t, http.MethodPost, "/api/attendance/check-out/", token, "")
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = app.do(t, http.MethodGet, "/api/attendance/range?start_date=2025-13-01&end_date=2025-01-01", token, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid_date_range", errorCode(t, rec))
}

func TestUnknownRoute(t *testing.T) {
	app := newTestApp(t)

	rec := app.do(t, http.MethodGet, "/api/nope", "", "")

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "route_not_found", errorCode(t, rec))
}

func TestBodyLimit(t *testing.T) {
	app := newTestApp(t)
	large := `{"email":"` + strings.Repeat("a", 2<<20) + `"}`

	rec := app.do(t, http.MethodPost, "/api/auth/resend-otp", "", large)

	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestNewServices_BadTimezone(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	cfg := testConfig()
	cfg.Attendance.Timezone = "Mars/Olympus"

	_, err := NewServices(cfg, repo, &testutil.FakeNotifier{}, metrics.New(false))

	require.Error(t, err)
}

func TestNewNotifier(t *testing.T) {
	cfg := testConfig()

	n, err := NewNotifier(cfg)
	require.NoError(t, err)
	assert.IsType(t, email.LogNotifier{}, n)

	cfg.SMTP = config.SMTPConfig{Host: "smtp.example.com", Port: 587, From: "noreply@example.com"}
	n, err = NewNotifier(cfg)
	require.NoError(t, err)
	assert.IsType(t, &email.Service{}, n)
}
