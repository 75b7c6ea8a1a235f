package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidationError(t *testing.T) {
	err := ValidationError("invalid input")

	assert.Equal(t, TypeValidation, err.Type)
	assert.Equal(t, "invalid input", err.Message)
	assert.Nil(t, err.Cause)
	assert.NotNil(t, err.Context)
	assert.Equal(t, http.StatusBadRequest, err.HTTPStatus())
	assert.Contains(t, err.Error(), "validation")
	assert.Contains(t, err.Error(), "invalid input")
}

func TestStatusMapping(t *testing.T) {
	tests := []struct {
		err    *Error
		status int
	}{
		{UnauthenticatedError("login required"), http.StatusUnauthorized},
		{PermissionDenied("not the author"), http.StatusForbidden},
		{NotFoundError("question not found"), http.StatusNotFound},
		{ConflictError("username taken"), http.StatusConflict},
		{InternalError("boom", nil), http.StatusInternalServerError},
		{&Error{Type: "mystery"}, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(string(tt.err.Type), func(t *testing.T) {
			assert.Equal(t, tt.status, tt.err.HTTPStatus())
		})
	}
}

func TestInternalError(t *testing.T) {
	cause := fmt.Errorf("database connection failed")
	err := InternalError("failed to save vote", cause)

	assert.Equal(t, TypeInternal, err.Type)
	assert.Equal(t, cause, err.Cause)
	assert.Contains(t, err.Error(), "failed to save vote")
	assert.Contains(t, err.Error(), "database connection failed")
	assert.True(t, errors.Is(err, cause))
}

func TestInternalErrorWithoutCause(t *testing.T) {
	err := InternalError("something went wrong", nil)

	assert.Nil(t, err.Cause)
	assert.NotContains(t, err.Error(), "<nil>")
}

func TestWithFields(t *testing.T) {
	err := ValidationError("invalid question").WithFields(map[string]string{
		"title": "title is required",
	})

	assert.Equal(t, "title is required", err.Fields()["title"])

	resp := err.ToResponse()
	assert.Equal(t, "invalid question", resp.Error)
	assert.Equal(t, TypeValidation, resp.Type)
	require.Contains(t, resp.Context, "fields")
}

func TestToResponse_HidesInternalContext(t *testing.T) {
	err := InternalError("internal server error", errors.New("pq: secret")).
		WithContext("query", "SELECT 1")

	resp := err.ToResponse()
	assert.Nil(t, resp.Context)
}

func TestAsStructuredError(t *testing.T) {
	assert.Nil(t, AsStructuredError(nil))

	original := NotFoundError("tag not found")
	wrapped := fmt.Errorf("listing: %w", original)
	assert.Same(t, original, AsStructuredError(wrapped))

	plain := errors.New("disk full")
	structured := AsStructuredError(plain)
	assert.Equal(t, TypeInternal, structured.Type)
	assert.Equal(t, plain, structured.Cause)
}

func TestIsType(t *testing.T) {
	err := fmt.Errorf("vote: %w", PermissionDenied("login required"))

	assert.True(t, IsType(err, TypePermission))
	assert.False(t, IsType(err, TypeNotFound))
	assert.False(t, IsType(errors.New("plain"), TypePermission))
}
