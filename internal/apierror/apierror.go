// Package apierror provides the standardized error surface of the API:
// the JSON envelopes returned to clients and the typed domain errors the
// services raise. Handlers translate the typed errors to status codes; raw
// internals (stack traces, DB errors) never reach a client.
package apierror

import (
	"errors"
	"fmt"
)

// APIError is the canonical error envelope for all 4xx/5xx HTTP responses.
type APIError struct {
	Detail string `json:"detail"`
}

func New(msg string) *APIError {
	return &APIError{Detail: msg}
}

// ValidationError wraps multiple field errors.
type ValidationError struct {
	Detail string            `json:"detail"`
	Fields map[string]string `json:"fields"`
}

func NewValidation(fields map[string]string) *ValidationError {
	return &ValidationError{Detail: "Error de validacion", Fields: fields}
}

// ── Typed domain errors ──────────────────────────────────────────────────────
// Services return these; the handler layer maps them:
//   ErrValidacion   → 422
//   ErrNoEncontrado → 404
//   ErrConflicto    → 409
// Anything else is a 500. Dependency failures (estadísticas, auditoría) are
// never returned at all: they are logged and swallowed at the call site.

type ErrValidacion struct{ Detail string }

func (e *ErrValidacion) Error() string { return e.Detail }

func Validacionf(format string, args ...interface{}) error {
	return &ErrValidacion{Detail: fmt.Sprintf(format, args...)}
}

type ErrNoEncontrado struct{ Detail string }

func (e *ErrNoEncontrado) Error() string { return e.Detail }

func NoEncontradof(format string, args ...interface{}) error {
	return &ErrNoEncontrado{Detail: fmt.Sprintf(format, args...)}
}

type ErrConflicto struct{ Detail string }

func (e *ErrConflicto) Error() string { return e.Detail }

func Conflictof(format string, args ...interface{}) error {
	return &ErrConflicto{Detail: fmt.Sprintf(format, args...)}
}

func IsValidacion(err error) bool {
	var e *ErrValidacion
	return errors.As(err, &e)
}

func IsNoEncontrado(err error) bool {
	var e *ErrNoEncontrado
	return errors.As(err, &e)
}

func IsConflicto(err error) bool {
	var e *ErrConflicto
	return errors.As(err, &e)
}
