// Package server provides the HTTP REST API for the job funnel.
package server

import (
	"fmt"
	"net/http"
)

// ErrInvalidCredentials indicates invalid login credentials
type ErrInvalidCredentials struct{}

func (e *ErrInvalidCredentials) Error() string {
	return "invalid username or password"
}

// ErrNotFound indicates a requested entity was not found
type ErrNotFound struct {
	Kind string
	Key  string
}

func (e *ErrNotFound) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Kind, e.Key)
}

// ErrValidation indicates request validation failure
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}

// ErrBadPayload indicates a structurally unusable request body
type ErrBadPayload struct {
	Message string
}

func (e *ErrBadPayload) Error() string {
	return fmt.Sprintf("bad payload: %s", e.Message)
}

// HTTPStatus returns the appropriate HTTP status code for an error
func HTTPStatus(err error) int {
	switch err.(type) {
	case *ErrInvalidCredentials:
		return http.StatusUnauthorized
	case *ErrNotFound:
		return http.StatusNotFound
	case *ErrValidation, *ErrBadPayload:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
