// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package auth provides authentication context helpers.
package auth

import (
	"context"

	"github.com/KushalvDesai/DAYFLOW-odooxGCET/internal/ctxkeys"
	"github.com/KushalvDesai/DAYFLOW-odooxGCET/internal/models"
	"github.com/KushalvDesai/DAYFLOW-odooxGCET/internal/services/token"
)

// WithAccount returns a context carrying the authenticated account and its claims.
func WithAccount(ctx context.Context, account *models.Account, claims *token.Claims) context.Context {
	ctx = context.WithValue(ctx, ctxkeys.Account{}, account)
	return context.WithValue(ctx, ctxkeys.Claims{}, claims)
}

// GetAccount returns the authenticated account from the context, or nil if not authenticated.
func GetAccount(ctx context.Context) *models.Account {
	if account, ok := ctx.Value(ctxkeys.Account{}).(*models.Account); ok {
		return account
	}
	return nil
}

// GetClaims returns the verified token claims, or nil.
func GetClaims(ctx context.Context) *token.Claims {
	if claims, ok := ctx.Value(ctxkeys.Claims{}).(*token.Claims); ok {
		return claims
	}
	return nil
}

// IsAuthenticated returns true if the context has an authenticated account.
func IsAuthenticated(ctx context.Context) bool {
	return GetAccount(ctx) != nil
}

// HasRole reports whether the authenticated account has one of roles.
func HasRole(ctx context.Context, roles ...models.Role) bool {
	account := GetAccount(ctx)
	if account == nil {
		return false
	}
	for _, r := range roles {
		if account.Role == r {
			return true
		}
	}
	return false
}
