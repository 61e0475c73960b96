// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package token_test

import (
	"strings"
	"testing"
	"time"

	"github.com/KushalvDesai/DAYFLOW-odooxGCET/internal/models"
	"github.com/KushalvDesai/DAYFLOW-odooxGCET/internal/services/token"
	"github.com/KushalvDesai/DAYFLOW-odooxGCET/internal/testutil"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testAccount() *models.Account {
	return &models.Account{
		ID:         "8d1e1b7e-4f7c-4b1e-9a57-0f3f2c1d9e11",
		Email:      "jo@example.com",
		EmployeeID: "OIJODO20250001",
		Role:       models.RoleEmployee,
	}
}

func TestIssueAndParse(t *testing.T) {
	clock := testutil.NewClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	issuer := token.NewIssuer(testutil.TestSecret, "dayflow", clock.Now)

	raw, expires, err := issuer.Issue(testAccount())
	require.NoError(t, err)
	assert.Equal(t, clock.Now().Add(token.Lifetime), expires)

	claims, err := issuer.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "8d1e1b7e-4f7c-4b1e-9a57-0f3f2c1d9e11", claims.AccountID())
	assert.Equal(t, "jo@example.com", claims.Email)
	assert.Equal(t, "OIJODO20250001", claims.EmployeeID)
	assert.Equal(t, models.RoleEmployee, claims.Role)
	assert.Equal(t, "dayflow", claims.Issuer)
	assert.Equal(t, clock.Now(), claims.IssuedAt.Time.UTC())
	assert.Equal(t, expires, claims.ExpiresAt.Time.UTC())
}

func TestParse_Expired(t *testing.T) {
	clock := testutil.NewClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	issuer := token.NewIssuer(testutil.TestSecret, "dayflow", clock.Now)
	raw, _, err := issuer.Issue(testAccount())
	require.NoError(t, err)

	clock.Advance(token.Lifetime - time.Minute)
	_, err = issuer.Parse(raw)
	require.NoError(t, err)

	clock.Advance(2 * time.Minute)
	_, err = issuer.Parse(raw)
	assert.ErrorIs(t, err, token.ErrTokenExpired)
}

func TestParse_WrongSecret(t *testing.T) {
	issuer := token.NewIssuer(testutil.TestSecret, "dayflow", nil)
	other := token.NewIssuer([]byte(strings.Repeat("x", 32)), "dayflow", nil)
	raw, _, err := other.Issue(testAccount())
	require.NoError(t, err)

	_, err = issuer.Parse(raw)

	assert.ErrorIs(t, err, token.ErrTokenInvalid)
}

func TestParse_Tampered(t *testing.T) {
	issuer := token.NewIssuer(testutil.TestSecret, "dayflow", nil)
	raw, _, err := issuer.Issue(testAccount())
	require.NoError(t, err)

	parts := strings.Split(raw, ".")
	require.Len(t, parts, 3)
	forged := token.Claims{
		Email: "jo@example.com",
		Role:  models.RoleAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "8d1e1b7e-4f7c-4b1e-9a57-0f3f2c1d9e11",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	forgedRaw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, forged).SigningString()
	require.NoError(t, err)

	_, err = issuer.Parse(forgedRaw + "." + parts[2])

	assert.ErrorIs(t, err, token.ErrTokenInvalid)
}

func TestParse_RejectsOtherAlgorithms(t *testing.T) {
	issuer := token.NewIssuer(testutil.TestSecret, "dayflow", nil)
	claims := token.Claims{
		Email: "jo@example.com",
		Role:  models.RoleAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "dayflow",
			Subject:   "id",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString(testutil.TestSecret)
	require.NoError(t, err)

	_, err = issuer.Parse(raw)

	assert.ErrorIs(t, err, token.ErrTokenInvalid)
}

func TestParse_MalformedClaims(t *testing.T) {
	issuer := token.NewIssuer(testutil.TestSecret, "dayflow", nil)
	sign := func(c token.Claims) string {
		raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(testutil.TestSecret)
		require.NoError(t, err)
		return raw
	}
	registered := func(subject string, exp *jwt.NumericDate) jwt.RegisteredClaims {
		return jwt.RegisteredClaims{Issuer: "dayflow", Subject: subject, ExpiresAt: exp}
	}
	future := jwt.NewNumericDate(time.Now().Add(time.Hour))

	tests := []struct {
		name string
		raw  string
	}{
		{"garbage", "not.a.token"},
		{"empty", ""},
		{"missing subject", sign(token.Claims{Email: "a@x.com", Role: models.RoleHR, RegisteredClaims: registered("", future)})},
		{"unknown role", sign(token.Claims{Email: "a@x.com", Role: "ROOT", RegisteredClaims: registered("id", future)})},
		{"missing expiry", sign(token.Claims{Email: "a@x.com", Role: models.RoleHR, RegisteredClaims: registered("id", nil)})},
		{"wrong issuer", sign(token.Claims{Email: "a@x.com", Role: models.RoleHR, RegisteredClaims: jwt.RegisteredClaims{
			Issuer: "someone-else", Subject: "id", ExpiresAt: future,
		}})},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := issuer.Parse(tt.raw)
			assert.ErrorIs(t, err, token.ErrTokenInvalid)
		})
	}
}
