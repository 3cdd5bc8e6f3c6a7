package apperrors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{New(InvalidRequest, "invalid request"), http.StatusBadRequest},
		{New(Unconfigured, "service unconfigured"), http.StatusInternalServerError},
		{New(UpstreamFailure, "generation failed"), http.StatusInternalServerError},
		{New(NotAuthenticated, "sign in required"), http.StatusUnauthorized},
		{New(NotFound, "recipe not found"), http.StatusNotFound},
		{New(Conflict, "email already registered"), http.StatusConflict},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, HTTPStatus(tt.err), tt.err.Error())
	}
}

func TestIsMatchesKind(t *testing.T) {
	err := fmt.Errorf("loading: %w", New(NotFound, "recipe not found"))
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.False(t, errors.Is(err, ErrConflict))
}

func TestToResponse(t *testing.T) {
	resp := ToResponse(Wrap(UpstreamFailure, "generation failed", errors.New("timeout")))
	assert.Equal(t, "generation failed", resp.Message)
	assert.Equal(t, "timeout", resp.Error)
	assert.Equal(t, UpstreamFailure, resp.Code)
	assert.True(t, resp.Retryable)

	resp = ToResponse(errors.New("db exploded"))
	assert.Equal(t, "internal server error", resp.Message)
	assert.Empty(t, resp.Error)
	assert.False(t, resp.Retryable)
}
