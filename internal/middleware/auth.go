// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package middleware

import (
	"context"
	"strings"

	"github.com/KushalvDesai/DAYFLOW-odooxGCET/internal/apperr"
	"github.com/KushalvDesai/DAYFLOW-odooxGCET/internal/auth"
	"github.com/KushalvDesai/DAYFLOW-odooxGCET/internal/models"
	"github.com/KushalvDesai/DAYFLOW-odooxGCET/internal/services/token"
	"github.com/labstack/echo/v4"
)

var (
	ErrMissingToken = apperr.New(apperr.KindUnauthorized, "missing_token", "Authentication required")
	ErrForbidden    = apperr.New(apperr.KindForbidden, "forbidden", "You do not have permission to perform this action")
)

// Authenticator resolves a bearer token to its claims and account.
type Authenticator interface {
	Authenticate(ctx context.Context, raw string) (*token.Claims, *models.Account, error)
}

// RequireAuth rejects requests without a valid bearer token and stores the
// account in the request context.
func RequireAuth(authn Authenticator) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw, ok := BearerToken(c.Request().Header.Get(echo.HeaderAuthorization))
			if !ok {
				return ErrMissingToken
			}

			ctx := c.Request().Context()
			claims, account, err := authn.Authenticate(ctx, raw)
			if err != nil {
				return err
			}

			c.SetRequest(c.Request().WithContext(auth.WithAccount(ctx, account, claims)))
			return next(c)
		}
	}
}

// RequireRole allows only authenticated accounts with one of roles.
// It must run after RequireAuth.
func RequireRole(roles ...models.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := c.Request().Context()
			if !auth.IsAuthenticated(ctx) {
				return ErrMissingToken
			}
			if !auth.HasRole(ctx, roles...) {
				return ErrForbidden
			}
			return next(c)
		}
	}
}

// BearerToken extracts the token from an Authorization header value.
func BearerToken(header string) (string, bool) {
	scheme, raw, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	raw = strings.TrimSpace(raw)
	return raw, raw != ""
}
