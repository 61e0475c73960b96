// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package server

import (
	"fmt"
	"log/slog"

	"github.com/KushalvDesai/DAYFLOW-odooxGCET/internal/config"
	appmw "github.com/KushalvDesai/DAYFLOW-odooxGCET/internal/middleware"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

func setupMiddleware(e *echo.Echo, cfg *config.Config, logger *slog.Logger) {
	e.Pre(middleware.RemoveTrailingSlash())

	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(appmw.RequestLogger(logger))
	e.Use(middleware.Secure())
	e.Use(middleware.BodyLimit(bodyLimit(cfg.Server.MaxBodySize)))
	e.Use(appmw.Locale())
}

func bodyLimit(mb int) string {
	if mb <= 0 {
		mb = 1
	}
	return fmt.Sprintf("%dM", mb)
}
