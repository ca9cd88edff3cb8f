package oidc

import (
	"encoding/json"
	"fmt"
)

// mergeAndMarshalClaims merges registered and extra claims into a single
// JSON object. The extra claims take precedence over registered ones.
func mergeAndMarshalClaims(registered any, extraClaims any) ([]byte, error) {
	base, err := json.Marshal(registered)
	if err != nil {
		return nil, fmt.Errorf("oidc registered claims: %w", err)
	}
	if extraClaims == nil {
		return base, nil
	}
	merged := make(map[string]json.RawMessage)
	if err := json.Unmarshal(base, &merged); err != nil {
		return nil, fmt.Errorf("oidc registered claims: %w", err)
	}
	extra, err := json.Marshal(extraClaims)
	if err != nil {
		return nil, fmt.Errorf("oidc extra claims: %w", err)
	}
	extraMap := make(map[string]json.RawMessage)
	if err := json.Unmarshal(extra, &extraMap); err != nil {
		return nil, fmt.Errorf("oidc extra claims: %w", err)
	}
	for k, v := range extraMap {
		merged[k] = v
	}
	return json.Marshal(merged)
}
