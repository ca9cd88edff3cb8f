package oidc

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestError_Is(t *testing.T) {
	err := ErrInvalidGrant().WithDescription("code expired")

	assert.ErrorIs(t, err, ErrInvalidGrant())
	assert.ErrorIs(t, err, ErrInvalidGrant().WithDescription("code expired"))
	assert.NotErrorIs(t, err, ErrInvalidGrant().WithDescription("other description"))
	assert.NotErrorIs(t, err, ErrInvalidRequest())
	assert.NotErrorIs(t, err, io.EOF)
}

func TestError_Unwrap(t *testing.T) {
	parent := errors.New("connection refused")
	err := ErrServerError().WithParent(parent)
	assert.ErrorIs(t, err, parent)
}

func TestError_MarshalJSON(t *testing.T) {
	parent := errors.New("pq: unique_violation")

	t.Run("parent hidden by default", func(t *testing.T) {
		data, err := json.Marshal(ErrServerError().WithDescription("storage failed").WithParent(parent))
		require.NoError(t, err)
		assert.JSONEq(t, `{"error":"server_error","error_description":"storage failed"}`, string(data))
	})

	t.Run("parent returned when allowed", func(t *testing.T) {
		data, err := json.Marshal(ErrInvalidRequest().WithParent(parent).WithReturnParentToClient(true))
		require.NoError(t, err)
		assert.JSONEq(t, `{"error":"invalid_request","parent":"pq: unique_violation"}`, string(data))
	})
}

func TestError_WithDescription(t *testing.T) {
	err := ErrUnauthorizedClient().WithDescription("grant_type %q not allowed for this client", "password")
	assert.Equal(t, `grant_type "password" not allowed for this client`, err.Description)
}

func TestDefaultToServerError(t *testing.T) {
	t.Run("oauth error passes through", func(t *testing.T) {
		orig := ErrInvalidGrant().WithDescription("code expired")
		got := DefaultToServerError(orig, "fallback")
		assert.Equal(t, orig, got)
	})

	t.Run("other errors are wrapped", func(t *testing.T) {
		parent := errors.New("connection refused")
		got := DefaultToServerError(parent, "cannot load session")
		assert.Equal(t, ServerError, got.ErrorType)
		assert.Equal(t, "cannot load session", got.Description)
		assert.ErrorIs(t, got, parent)
	})
}

func TestError_LogLevel(t *testing.T) {
	assert.Equal(t, slog.LevelError, ErrServerError().LogLevel())
	assert.Equal(t, slog.LevelWarn, ErrInvalidRequest().LogLevel())
}

func TestError_LogValue(t *testing.T) {
	err := ErrInvalidRequest().
		WithDescription("cannot parse form").
		WithParent(errors.New("bad encoding"))
	value := err.LogValue()
	require.Equal(t, slog.KindGroup, value.Kind())
	attrs := value.Group()
	keys := make([]string, 0, len(attrs))
	for _, a := range attrs {
		keys = append(keys, a.Key)
	}
	assert.ElementsMatch(t, []string{"oauth_error", "description", "parent"}, keys)
}
