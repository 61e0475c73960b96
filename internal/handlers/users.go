// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package handlers

import (
	"net/http"

	"github.com/KushalvDesai/DAYFLOW-odooxGCET/internal/middleware"
	"github.com/KushalvDesai/DAYFLOW-odooxGCET/internal/models"
	"github.com/KushalvDesai/DAYFLOW-odooxGCET/internal/services/directory"
	"github.com/labstack/echo/v4"
)

// UserHandlers exposes the employee directory.
type UserHandlers struct {
	directory *directory.Service
}

// NewUsers creates a new UserHandlers instance.
func NewUsers(svc *directory.Service) *UserHandlers {
	return &UserHandlers{directory: svc}
}

// List returns all accounts, newest first.
func (h *UserHandlers) List(c echo.Context) error {
	accounts, err := h.directory.List(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, accounts)
}

// Get returns one account by id.
func (h *UserHandlers) Get(c echo.Context) error {
	account, err := h.directory.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, account)
}

// GetByEmail returns the account with the email query parameter.
func (h *UserHandlers) GetByEmail(c echo.Context) error {
	account, err := h.directory.GetByEmail(c.Request().Context(), c.QueryParam("email"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, account)
}

// Update changes profile fields. Accounts may edit themselves; HR and ADMIN
// may edit anyone.
func (h *UserHandlers) Update(c echo.Context) error {
	viewer, err := currentAccount(c)
	if err != nil {
		return err
	}
	id := c.Param("id")
	if viewer.ID != id && !viewer.Role.Privileged() {
		return middleware.ErrForbidden
	}

	var req models.ProfileUpdate
	if err := bind(c, &req); err != nil {
		return err
	}

	account, err := h.directory.Update(c.Request().Context(), id, req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, account)
}

// SetActiveRequest is the body of PUT /api/users/:id/active.
type SetActiveRequest struct {
	Active *bool `json:"active"`
}

// SetActive activates or deactivates an account.
func (h *UserHandlers) SetActive(c echo.Context) error {
	var req SetActiveRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	if req.Active == nil {
		return ErrInvalidBody.WithField("active", "is required")
	}

	account, err := h.directory.SetActive(c.Request().Context(), c.Param("id"), *req.Active)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, account)
}

// Remove deletes an account.
func (h *UserHandlers) Remove(c echo.Context) error {
	removed, err := h.directory.Remove(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	if !removed {
		return directory.ErrAccountNotFound
	}
	return c.JSON(http.StatusOK, map[string]bool{"success": true})
}
