package kinde

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorMessage(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{
			name: "structured errors array",
			body: `{"errors":[{"code":"TOKEN_INVALID","message":"token expired"},{"code":"ID_REQUIRED","message":"id is required"}]}`,
			want: "TOKEN_INVALID: token expired; ID_REQUIRED: id is required",
		},
		{
			name: "top-level code and message",
			body: `{"code":"USER_NOT_FOUND","message":"user not found"}`,
			want: "USER_NOT_FOUND: user not found",
		},
		{
			name: "message without code",
			body: `{"message":"something broke"}`,
			want: ": something broke",
		},
		{
			name: "raw text fallback",
			body: `upstream connect error`,
			want: "upstream connect error",
		},
		{
			name: "json without recognised fields",
			body: `{"detail":"nope"}`,
			want: `{"detail":"nope"}`,
		},
		{
			name: "empty body",
			body: "",
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, errorMessage([]byte(tt.body)))
		})
	}
}

func TestAPIError_Error(t *testing.T) {
	err := newAPIError(http.StatusBadGateway, []byte("bad gateway"))
	assert.Equal(t, "kinde: API error (status 502): bad gateway", err.Error())

	err = newAPIError(http.StatusBadGateway, nil)
	assert.Equal(t, "kinde: API error (status 502)", err.Error())
}

func TestIsRetryable(t *testing.T) {
	assert.True(t, IsRetryable(http.StatusTooManyRequests))
	assert.True(t, IsRetryable(http.StatusInternalServerError))
	assert.True(t, IsRetryable(http.StatusBadGateway))
	assert.False(t, IsRetryable(http.StatusUnauthorized))
	assert.False(t, IsRetryable(http.StatusBadRequest))
	assert.False(t, IsRetryable(http.StatusNotFound))
	assert.False(t, IsRetryable(http.StatusOK))
}
