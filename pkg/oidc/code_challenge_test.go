package oidc

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVerifyCodeChallenge(t *testing.T) {
	tests := []struct {
		name      string
		challenge *CodeChallenge
		verifier  string
		want      bool
	}{
		{
			name:     "nil challenge",
			verifier: "verifier",
		},
		{
			name:      "empty verifier",
			challenge: &CodeChallenge{Challenge: "verifier", Method: PKCEMethodPlain},
		},
		{
			name:      "plain match",
			challenge: &CodeChallenge{Challenge: "verifier", Method: PKCEMethodPlain},
			verifier:  "verifier",
			want:      true,
		},
		{
			name:      "plain mismatch",
			challenge: &CodeChallenge{Challenge: "verifier", Method: PKCEMethodPlain},
			verifier:  "other",
		},
		{
			name:      "S256 match",
			challenge: &CodeChallenge{Challenge: NewSHACodeChallenge("verifier"), Method: PKCEMethodS256},
			verifier:  "verifier",
			want:      true,
		},
		{
			name:      "S256 raw verifier does not match itself",
			challenge: &CodeChallenge{Challenge: NewSHACodeChallenge("verifier"), Method: PKCEMethodS256},
			verifier:  NewSHACodeChallenge("verifier"),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, VerifyCodeChallenge(tt.challenge, tt.verifier))
		})
	}
}
