// Package policy provides op.AccessEvaluator implementations for the
// access evaluation endpoint and the internal authorization hooks: a
// simple attribute rule evaluator and a Cedar policy evaluator.
package policy

import (
	"context"

	"github.com/auric-id/auric/pkg/oidc"
)

// Rule allows a subject/action/resource combination. Empty fields
// match anything.
type Rule struct {
	SubjectType  string
	SubjectID    string
	ActionName   string
	ResourceType string
	ResourceID   string
}

func (r Rule) matches(req *oidc.EvaluationRequest) bool {
	if r.SubjectType != "" && r.SubjectType != req.Subject.Type {
		return false
	}
	if r.SubjectID != "" && r.SubjectID != req.Subject.ID {
		return false
	}
	if r.ActionName != "" && r.ActionName != req.Action.Name {
		return false
	}
	if r.ResourceType != "" && r.ResourceType != req.Resource.Type {
		return false
	}
	if r.ResourceID != "" && r.ResourceID != req.Resource.ID {
		return false
	}
	return true
}

// AttributeEvaluator is a default-deny evaluator over a static rule
// list. The zero value denies everything.
type AttributeEvaluator struct {
	rules []Rule
}

func NewAttributeEvaluator(rules ...Rule) *AttributeEvaluator {
	return &AttributeEvaluator{rules: rules}
}

func (e *AttributeEvaluator) Evaluate(_ context.Context, req *oidc.EvaluationRequest) (*oidc.EvaluationResponse, error) {
	for _, rule := range e.rules {
		if rule.matches(req) {
			return &oidc.EvaluationResponse{Decision: true}, nil
		}
	}
	return &oidc.EvaluationResponse{Decision: false}, nil
}

// AllowAll is handy in tests and development setups.
type AllowAll struct{}

func (AllowAll) Evaluate(context.Context, *oidc.EvaluationRequest) (*oidc.EvaluationResponse, error) {
	return &oidc.EvaluationResponse{Decision: true}, nil
}
