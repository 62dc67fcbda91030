package server

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{"invalid credentials", &ErrInvalidCredentials{}, http.StatusUnauthorized},
		{"not found", &ErrNotFound{Kind: "job", Key: "https://example.com"}, http.StatusNotFound},
		{"validation", &ErrValidation{Field: "job_url", Message: "required"}, http.StatusBadRequest},
		{"bad payload", &ErrBadPayload{Message: "no jobs array"}, http.StatusBadRequest},
		{"unknown error", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, HTTPStatus(tt.err))
		})
	}
}

func TestErrorMessages(t *testing.T) {
	assert.Equal(t, "invalid username or password", (&ErrInvalidCredentials{}).Error())
	assert.Equal(t, "job not found: abc", (&ErrNotFound{Kind: "job", Key: "abc"}).Error())
	assert.Equal(t, "validation error: job_url - required", (&ErrValidation{Field: "job_url", Message: "required"}).Error())
	assert.Equal(t, "bad payload: no jobs array", (&ErrBadPayload{Message: "no jobs array"}).Error())
}
