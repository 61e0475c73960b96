// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package handlers

import (
	"net/http"

	"github.com/KushalvDesai/DAYFLOW-odooxGCET/internal/middleware"
	"github.com/KushalvDesai/DAYFLOW-odooxGCET/internal/services/identity"
	"github.com/labstack/echo/v4"
)

// AuthHandlers contains handlers for registration and sign-in.
type AuthHandlers struct {
	identity *identity.Service
}

// NewAuth creates a new AuthHandlers instance.
func NewAuth(svc *identity.Service) *AuthHandlers {
	return &AuthHandlers{identity: svc}
}

// SignUp stages a registration and mails its OTP.
func (h *AuthHandlers) SignUp(c echo.Context) error {
	var req identity.SignUpInput
	if err := bind(c, &req); err != nil {
		return err
	}

	res, err := h.identity.SignUp(c.Request().Context(), req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, res)
}

// VerifyEmail confirms the OTP and activates the account.
func (h *AuthHandlers) VerifyEmail(c echo.Context) error {
	var req identity.VerifyInput
	if err := bind(c, &req); err != nil {
		return err
	}

	res, err := h.identity.VerifyEmail(c.Request().Context(), req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, res)
}

// ResendOTP issues a fresh code for a pending registration.
func (h *AuthHandlers) ResendOTP(c echo.Context) error {
	var req identity.ResendInput
	if err := bind(c, &req); err != nil {
		return err
	}

	res, err := h.identity.ResendOTP(c.Request().Context(), req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, res)
}

// SignIn exchanges credentials for a bearer token.
func (h *AuthHandlers) SignIn(c echo.Context) error {
	var req identity.SignInInput
	if err := bind(c, &req); err != nil {
		return err
	}

	sess, err := h.identity.SignIn(c.Request().Context(), req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, sess)
}

// Me returns the account the bearer token belongs to.
func (h *AuthHandlers) Me(c echo.Context) error {
	raw, ok := middleware.BearerToken(c.Request().Header.Get(echo.HeaderAuthorization))
	if !ok {
		return middleware.ErrMissingToken
	}

	account, err := h.identity.CurrentAccount(c.Request().Context(), raw)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, account)
}
