package policy

import (
	"context"
	"fmt"

	cedar "github.com/cedar-policy/cedar-go"

	"github.com/auric-id/auric/pkg/oidc"
)

// CedarEvaluator answers evaluation requests against a Cedar policy
// set. Subjects, resources and actions map onto Cedar entities of the
// same types, request context and properties become the Cedar
// context record.
type CedarEvaluator struct {
	policies *cedar.PolicySet
	entities cedar.EntityMap
}

// NewCedarEvaluator parses policies in the Cedar language.
func NewCedarEvaluator(policySource []byte) (*CedarEvaluator, error) {
	policies, err := cedar.NewPolicySetFromBytes("policy.cedar", policySource)
	if err != nil {
		return nil, fmt.Errorf("parse cedar policies: %w", err)
	}
	return &CedarEvaluator{
		policies: policies,
		entities: cedar.EntityMap{},
	}, nil
}

// WithEntities sets the entity store evaluated alongside the
// policies, for example client groups.
func (e *CedarEvaluator) WithEntities(entities cedar.EntityMap) *CedarEvaluator {
	e.entities = entities
	return e
}

func (e *CedarEvaluator) Evaluate(_ context.Context, req *oidc.EvaluationRequest) (*oidc.EvaluationResponse, error) {
	cedarCtx := cedar.RecordMap{}
	for key, value := range req.Context {
		cedarCtx[cedar.String(key)] = cedarValue(value)
	}
	for key, value := range req.Action.Properties {
		cedarCtx[cedar.String(key)] = cedarValue(value)
	}
	decision, diagnostic := cedar.Authorize(e.policies, e.entities, cedar.Request{
		Principal: cedar.NewEntityUID(cedar.EntityType(req.Subject.Type), cedar.String(req.Subject.ID)),
		Action:    cedar.NewEntityUID("Action", cedar.String(req.Action.Name)),
		Resource:  cedar.NewEntityUID(cedar.EntityType(req.Resource.Type), cedar.String(req.Resource.ID)),
		Context:   cedar.NewRecord(cedarCtx),
	})
	resp := &oidc.EvaluationResponse{Decision: decision == cedar.Allow}
	if len(diagnostic.Errors) > 0 {
		resp.Context = map[string]any{"errors": diagnostic.Errors}
	}
	return resp, nil
}

func cedarValue(value any) cedar.Value {
	switch v := value.(type) {
	case string:
		return cedar.String(v)
	case bool:
		return cedar.Boolean(v)
	case int:
		return cedar.Long(v)
	case int64:
		return cedar.Long(v)
	case float64:
		return cedar.Long(int64(v))
	default:
		return cedar.String(fmt.Sprint(v))
	}
}
