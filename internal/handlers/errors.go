// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/KushalvDesai/DAYFLOW-odooxGCET/internal/apperr"
	"github.com/KushalvDesai/DAYFLOW-odooxGCET/internal/i18n"
	"github.com/labstack/echo/v4"
)

// ErrorBody is the JSON shape of every error response.
type ErrorBody struct {
	Error  string            `json:"error"`
	Code   string            `json:"code"`
	Fields map[string]string `json:"fields,omitempty"`
}

// StatusFor maps an error kind to its HTTP status code.
func StatusFor(kind apperr.Kind) int {
	switch kind {
	case apperr.KindValidation, apperr.KindExpired:
		return http.StatusBadRequest
	case apperr.KindConflict:
		return http.StatusConflict
	case apperr.KindNotFound:
		return http.StatusNotFound
	case apperr.KindUnauthorized:
		return http.StatusUnauthorized
	case apperr.KindForbidden:
		return http.StatusForbidden
	case apperr.KindDeliveryFailure:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// ErrorHandler is the echo.HTTPErrorHandler of the API. It renders every
// error as an ErrorBody and logs server side failures.
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	ctx := c.Request().Context()
	status, body := errorResponse(ctx, err)
	if status >= http.StatusInternalServerError {
		slog.Error("request_failed",
			"method", c.Request().Method,
			"path", c.Request().URL.Path,
			"status", status,
			"error", err,
		)
	}

	if c.Request().Method == http.MethodHead {
		err = c.NoContent(status)
	} else {
		err = c.JSON(status, body)
	}
	if err != nil {
		slog.Error("error_response_failed", "error", err)
	}
}

func errorResponse(ctx context.Context, err error) (int, ErrorBody) {
	if e, ok := apperr.As(err); ok {
		if e.Kind == apperr.KindInternal {
			return http.StatusInternalServerError, internalBody(ctx)
		}
		return StatusFor(e.Kind), ErrorBody{
			Error:  i18n.TOr(ctx, "error_"+e.Code, e.Message, nil),
			Code:   e.Code,
			Fields: e.Fields,
		}
	}

	var he *echo.HTTPError
	if errors.As(err, &he) {
		if he.Code >= http.StatusInternalServerError {
			return he.Code, internalBody(ctx)
		}
		code := httpCode(he.Code)
		return he.Code, ErrorBody{
			Error: i18n.TOr(ctx, "error_"+code, http.StatusText(he.Code), nil),
			Code:  code,
		}
	}

	return http.StatusInternalServerError, internalBody(ctx)
}

func internalBody(ctx context.Context) ErrorBody {
	return ErrorBody{
		Error: i18n.TOr(ctx, "error_internal", "Internal server error", nil),
		Code:  "internal",
	}
}

func httpCode(status int) string {
	switch status {
	case http.StatusNotFound:
		return "route_not_found"
	case http.StatusMethodNotAllowed:
		return "method_not_allowed"
	case http.StatusRequestEntityTooLarge:
		return "payload_too_large"
	case http.StatusUnauthorized:
		return "missing_token"
	case http.StatusForbidden:
		return "forbidden"
	default:
		return "bad_request"
	}
}
