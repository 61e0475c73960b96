// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package handlers

import (
	"github.com/KushalvDesai/DAYFLOW-odooxGCET/internal/apperr"
	"github.com/KushalvDesai/DAYFLOW-odooxGCET/internal/auth"
	"github.com/KushalvDesai/DAYFLOW-odooxGCET/internal/middleware"
	"github.com/KushalvDesai/DAYFLOW-odooxGCET/internal/models"
	"github.com/labstack/echo/v4"
)

// ErrInvalidBody is returned when a request body or query cannot be decoded.
var ErrInvalidBody = apperr.New(apperr.KindValidation, "invalid_body", "Request body could not be parsed")

// bind decodes path, query and body parameters into dst.
func bind(c echo.Context, dst any) error {
	if err := c.Bind(dst); err != nil {
		return ErrInvalidBody.Wrap(err)
	}
	return nil
}

// currentAccount returns the account stored by middleware.RequireAuth.
func currentAccount(c echo.Context) (*models.Account, error) {
	account := auth.GetAccount(c.Request().Context())
	if account == nil {
		return nil, middleware.ErrMissingToken
	}
	return account, nil
}
