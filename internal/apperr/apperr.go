// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package apperr defines the error kinds that surface to API clients.
package apperr

import (
	"errors"
	"maps"
)

// Kind groups errors by how a client should react to them.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindConflict
	KindNotFound
	KindExpired
	KindUnauthorized
	KindForbidden
	KindDeliveryFailure
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindConflict:
		return "conflict"
	case KindNotFound:
		return "not_found"
	case KindExpired:
		return "expired"
	case KindUnauthorized:
		return "unauthorized"
	case KindForbidden:
		return "forbidden"
	case KindDeliveryFailure:
		return "delivery_failure"
	default:
		return "internal"
	}
}

// Error is a classified error with a stable machine code.
type Error struct { //nolint:govet // fieldalignment not critical
	Kind    Kind
	Code    string
	Message string
	Fields  map[string]string
	err     error
}

// New returns an Error of the given kind. Use it for package level sentinels.
func New(kind Kind, code, message string) *Error {
	return &Error{Kind: kind, Code: code, Message: message}
}

func (e *Error) Error() string {
	if e.err != nil {
		return e.Message + ": " + e.err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.err
}

// Is matches any *Error with the same code.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return e.Code == t.Code
}

// WithMessage returns a copy carrying a different human readable message.
func (e *Error) WithMessage(message string) *Error {
	c := *e
	c.Message = message
	return &c
}

// WithField returns a copy with one more per-field message.
func (e *Error) WithField(field, message string) *Error {
	c := *e
	c.Fields = make(map[string]string, len(e.Fields)+1)
	maps.Copy(c.Fields, e.Fields)
	c.Fields[field] = message
	return &c
}

// Wrap returns a copy of e that records cause for logging.
func (e *Error) Wrap(cause error) *Error {
	c := *e
	c.err = cause
	return &c
}

// Validation builds a validation error with per-field messages.
func Validation(message string, fields map[string]string) *Error {
	return &Error{Kind: KindValidation, Code: "validation_failed", Message: message, Fields: fields}
}

// KindOf returns the kind of the first *Error in err's chain, KindInternal otherwise.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// As returns the first *Error in err's chain.
func As(err error) (*Error, bool) {
	var e *Error
	ok := errors.As(err, &e)
	return e, ok
}
