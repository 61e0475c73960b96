// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package i18n_test

import (
	"context"
	"testing"

	"github.com/KushalvDesai/DAYFLOW-odooxGCET/internal/i18n"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"
)

func TestInit(t *testing.T) {
	require.NoError(t, i18n.Init())
	// Repeated calls are harmless
	require.NoError(t, i18n.Init())
}

func TestT(t *testing.T) {
	require.NoError(t, i18n.Init())

	ctx := i18n.WithLocale(context.Background(), language.English)

	assert.Equal(t, "Invalid OTP", i18n.T(ctx, "error_otp_mismatch"))
}

func TestT_German(t *testing.T) {
	require.NoError(t, i18n.Init())

	ctx := i18n.WithLocale(context.Background(), language.German)

	assert.Equal(t, "Ungültiger Einmalcode", i18n.T(ctx, "error_otp_mismatch"))
}

func TestT_UnknownKey(t *testing.T) {
	ctx := i18n.WithLocale(context.Background(), language.English)

	// Should return the key itself for unknown messages
	result := i18n.T(ctx, "unknown_key_that_does_not_exist")
	assert.Equal(t, "unknown_key_that_does_not_exist", result)
}

func TestT_NoLocaleContext(t *testing.T) {
	// Without WithLocale, should fallback to English
	result := i18n.T(context.Background(), "error_invalid_credentials")
	assert.Equal(t, "Invalid credentials", result)
}

func TestTData(t *testing.T) {
	ctx := i18n.WithLocale(context.Background(), language.English)

	result := i18n.TData(ctx, "signup_initiated", map[string]any{"EmployeeID": "OIJODO20250001"})

	assert.Contains(t, result, "Your Employee ID is OIJODO20250001.")
}

func TestTData_German(t *testing.T) {
	ctx := i18n.WithLocale(context.Background(), language.German)

	result := i18n.TData(ctx, "email_verified", map[string]any{"EmployeeID": "OIJODO20250001"})

	assert.Contains(t, result, "Mitarbeiter-ID OIJODO20250001")
}

func TestTOr(t *testing.T) {
	ctx := context.Background()

	assert.Equal(t, "fallback", i18n.TOr(ctx, "error_nope", "fallback", nil))
	assert.Equal(t, "Token has expired", i18n.TOr(ctx, "error_token_expired", "fallback", nil))
}

func TestTPlural(t *testing.T) {
	ctx := i18n.WithLocale(context.Background(), language.English)

	// Will return the message if no plural forms are defined
	result := i18n.TPlural(ctx, "app_name", 1)
	assert.NotEmpty(t, result)
}

func TestGetLocale(t *testing.T) {
	assert.Equal(t, "en", i18n.GetLocale(context.Background()))

	ctx := i18n.WithLocale(context.Background(), language.German)
	assert.Equal(t, "de", i18n.GetLocale(ctx))
}

func TestMatchLanguage(t *testing.T) {
	tests := []struct {
		header string
		want   language.Tag
	}{
		{"de-DE,de;q=0.9,en;q=0.8", language.German},
		{"en-US,en;q=0.9", language.English},
		{"fr-FR", language.English},
		{"", language.English},
	}

	for _, tt := range tests {
		t.Run(tt.header, func(t *testing.T) {
			assert.Equal(t, tt.want, i18n.MatchLanguage(tt.header))
		})
	}
}
