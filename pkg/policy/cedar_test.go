package policy

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testPolicies = `
permit (
    principal,
    action == Action::"authorize",
    resource
) when {
    context.trusted == true
};

permit (
    principal == client::"admin-cli",
    action,
    resource
);
`

func TestNewCedarEvaluator(t *testing.T) {
	_, err := NewCedarEvaluator([]byte("not cedar at all ~~~"))
	assert.Error(t, err)

	evaluator, err := NewCedarEvaluator([]byte(testPolicies))
	require.NoError(t, err)
	assert.NotNil(t, evaluator)
}

func TestCedarEvaluator_Evaluate(t *testing.T) {
	evaluator, err := NewCedarEvaluator([]byte(testPolicies))
	require.NoError(t, err)
	ctx := context.Background()

	t.Run("context condition met", func(t *testing.T) {
		req := evaluationRequest("client", "web", "authorize", "endpoint", "authorization")
		req.Context = map[string]any{"trusted": true}
		resp, err := evaluator.Evaluate(ctx, req)
		require.NoError(t, err)
		assert.True(t, resp.Decision)
	})

	t.Run("context condition not met", func(t *testing.T) {
		req := evaluationRequest("client", "web", "authorize", "endpoint", "authorization")
		req.Context = map[string]any{"trusted": false}
		resp, err := evaluator.Evaluate(ctx, req)
		require.NoError(t, err)
		assert.False(t, resp.Decision)
	})

	t.Run("principal match allows any action", func(t *testing.T) {
		req := evaluationRequest("client", "admin-cli", "revoke_session", "session", "sess-1")
		resp, err := evaluator.Evaluate(ctx, req)
		require.NoError(t, err)
		assert.True(t, resp.Decision)
	})

	t.Run("default deny", func(t *testing.T) {
		req := evaluationRequest("client", "other", "introspect", "token", "at-1")
		resp, err := evaluator.Evaluate(ctx, req)
		require.NoError(t, err)
		assert.False(t, resp.Decision)
	})
}
