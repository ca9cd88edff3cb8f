package oidc

// The evaluation types implement the AuthZEN Authorization API 1.0
// access evaluation request and response,
// https://openid.net/specs/authorization-api-1_0.html

type EvaluationEntity struct {
	Type       string         `json:"type"`
	ID         string         `json:"id"`
	Properties map[string]any `json:"properties,omitempty"`
}

type EvaluationAction struct {
	Name       string         `json:"name"`
	Properties map[string]any `json:"properties,omitempty"`
}

type EvaluationRequest struct {
	Subject  EvaluationEntity `json:"subject"`
	Resource EvaluationEntity `json:"resource"`
	Action   EvaluationAction `json:"action"`
	Context  map[string]any   `json:"context,omitempty"`
}

type EvaluationResponse struct {
	Decision bool           `json:"decision"`
	Context  map[string]any `json:"context,omitempty"`
}
