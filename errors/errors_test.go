package errors

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromStatusCode(t *testing.T) {
	assert.Nil(t, FromStatusCode(200, ""))
	assert.Nil(t, FromStatusCode(204, ""))

	tests := []struct {
		status int
		kind   Kind
	}{
		{http.StatusUnauthorized, KindAuthorization},
		{http.StatusForbidden, KindNotAllowed},
		{http.StatusNotFound, KindNotFound},
		{http.StatusBadRequest, KindBadRequest},
		{http.StatusInternalServerError, KindUnexpectedResponse},
	}
	for _, tc := range tests {
		err := FromStatusCode(tc.status, "")
		require.NotNil(t, err, "status %d", tc.status)
		assert.Equal(t, tc.kind, err.Kind, "status %d", tc.status)
	}
}

func TestErrorMessage(t *testing.T) {
	err := NewUnexpectedResponse(500, "boom")
	assert.Equal(t, "rt: unexpected_response (HTTP 500): boom", err.Error())

	err = NewInvalidUse("base URL is required")
	assert.Equal(t, "rt: invalid_use: base URL is required", err.Error())
}

func TestConnectionUnwrap(t *testing.T) {
	cause := fmt.Errorf("connection refused")
	err := NewConnection("request failed", cause)
	assert.Equal(t, cause, err.Unwrap())
	assert.Contains(t, err.Error(), "connection refused")
	assert.True(t, IsConnection(err))
}

func TestKindPredicatesMatchWrappedErrors(t *testing.T) {
	err := fmt.Errorf("fetching ticket: %w", NewNotFound("no such resource found"))
	assert.True(t, IsNotFound(err))
	assert.False(t, IsAuthorization(err))
}
