package errors

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConstructors(t *testing.T) {
	cause := errors.New("cause")

	tests := []struct {
		name string
		err  *AppError
		code int
	}{
		{"not found", NewNotFoundError("missing", cause), http.StatusNotFound},
		{"validation", NewValidationError("bad", cause), http.StatusBadRequest},
		{"too large", NewPayloadTooLargeError("big", cause), http.StatusRequestEntityTooLarge},
		{"conflict", NewConflictError("busy", cause), http.StatusConflict},
		{"rate", NewTooManyRequestsError("slow down"), http.StatusTooManyRequests},
		{"timeout", NewGatewayTimeoutError("timeout", cause), http.StatusGatewayTimeout},
		{"unavailable", NewServiceUnavailableError("down", cause), http.StatusServiceUnavailable},
		{"internal", NewInternalError("boom", cause), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.code, tt.err.StatusCode())
			if tt.err.Err != nil {
				assert.True(t, errors.Is(tt.err, cause))
			}
		})
	}
}

func TestInternalErrorHidesDetails(t *testing.T) {
	err := NewInternalError("db exploded", errors.New("disk full"))
	assert.Equal(t, "Internal server error", err.UserMessage())
	assert.Contains(t, err.Error(), "disk full")
}

func TestWrapError(t *testing.T) {
	assert.Nil(t, WrapError(nil, "ctx"))

	inner := NewValidationError("bad column", nil).WithDetail("missing_columns", []string{"supplier"})
	wrapped := WrapError(inner, "upload")
	assert.Equal(t, http.StatusBadRequest, wrapped.Code)
	assert.Equal(t, "upload: bad column", wrapped.Message)
	assert.Equal(t, []string{"supplier"}, wrapped.Details["missing_columns"])

	plain := WrapError(errors.New("x"), "reload")
	assert.Equal(t, http.StatusInternalServerError, plain.Code)
}
