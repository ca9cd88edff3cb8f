package policy

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/auric-id/auric/pkg/oidc"
)

func evaluationRequest(subjectType, subjectID, action, resourceType, resourceID string) *oidc.EvaluationRequest {
	return &oidc.EvaluationRequest{
		Subject:  oidc.EvaluationEntity{Type: subjectType, ID: subjectID},
		Action:   oidc.EvaluationAction{Name: action},
		Resource: oidc.EvaluationEntity{Type: resourceType, ID: resourceID},
	}
}

func TestAttributeEvaluator(t *testing.T) {
	evaluator := NewAttributeEvaluator(
		Rule{SubjectType: "client", ActionName: "authorize"},
		Rule{SubjectID: "admin", ResourceType: "registration"},
	)
	ctx := context.Background()

	tests := []struct {
		name string
		req  *oidc.EvaluationRequest
		want bool
	}{
		{
			name: "client may authorize",
			req:  evaluationRequest("client", "web", "authorize", "authorization_endpoint", ""),
			want: true,
		},
		{
			name: "user may not authorize",
			req:  evaluationRequest("user", "id1", "authorize", "authorization_endpoint", ""),
		},
		{
			name: "admin on registrations",
			req:  evaluationRequest("user", "admin", "delete", "registration", "web"),
			want: true,
		},
		{
			name: "admin on other resources",
			req:  evaluationRequest("user", "admin", "delete", "session", "sess-1"),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := evaluator.Evaluate(ctx, tt.req)
			require.NoError(t, err)
			assert.Equal(t, tt.want, resp.Decision)
		})
	}
}

func TestAttributeEvaluator_zeroValueDenies(t *testing.T) {
	resp, err := new(AttributeEvaluator).Evaluate(context.Background(),
		evaluationRequest("client", "web", "authorize", "", ""))
	require.NoError(t, err)
	assert.False(t, resp.Decision)
}

func TestAllowAll(t *testing.T) {
	resp, err := AllowAll{}.Evaluate(context.Background(),
		evaluationRequest("client", "web", "anything", "", ""))
	require.NoError(t, err)
	assert.True(t, resp.Decision)
}
