// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
)

// Pinger reports whether the database is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Handlers contains the infrastructure HTTP handlers.
type Handlers struct {
	db Pinger
}

// New creates a new Handlers instance.
func New(db Pinger) *Handlers {
	return &Handlers{db: db}
}

// Health returns the health status.
func (h *Handlers) Health(c echo.Context) error {
	if err := h.db.Ping(c.Request().Context()); err != nil {
		slog.Error("health_check_failed", "error", err)
		return c.JSON(http.StatusServiceUnavailable, map[string]string{
			"status": "unavailable",
		})
	}
	return c.JSON(http.StatusOK, map[string]string{
		"status": "ok",
	})
}
