package op_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/auric-id/auric/pkg/op"
)

func TestCompileGlob(t *testing.T) {
	g, err := op.CompileGlob("https://*.example.com/callback")
	require.NoError(t, err)
	assert.True(t, g.Match("https://app.example.com/callback"))
	assert.False(t, g.Match("https://example.com/callback"))

	// the cache returns the stored error on repeat lookups
	for i := 0; i < 2; i++ {
		_, err = op.CompileGlob("[")
		assert.Error(t, err)
	}
}

func TestMatchAnyGlob(t *testing.T) {
	patterns := []string{
		"[",
		"https://*.example.com/callback",
		"custom://callback*",
	}
	tests := []struct {
		s    string
		want bool
	}{
		{"https://app.example.com/callback", true},
		{"custom://callback?state=1", true},
		{"https://attacker.com/callback", false},
		{"", false},
	}
	for _, tt := range tests {
		t.Run(tt.s, func(t *testing.T) {
			assert.Equal(t, tt.want, op.MatchAnyGlob(tt.s, patterns))
		})
	}
	assert.False(t, op.MatchAnyGlob("anything", nil))
}
