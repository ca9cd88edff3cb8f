package crypto_test

import (
	"crypto/sha256"
	"testing"

	jose "github.com/go-jose/go-jose/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/auric-id/auric/pkg/crypto"
)

func TestGetHashAlgorithm(t *testing.T) {
	tests := []struct {
		name     string
		alg      jose.SignatureAlgorithm
		wantSize int
		wantErr  bool
	}{
		{name: "RS256", alg: jose.RS256, wantSize: 32},
		{name: "ES384", alg: jose.ES384, wantSize: 48},
		{name: "PS512", alg: jose.PS512, wantSize: 64},
		{name: "EdDSA", alg: jose.EdDSA, wantSize: 64},
		{name: "unsupported", alg: jose.SignatureAlgorithm("XX999"), wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, err := crypto.GetHashAlgorithm(tt.alg)
			if tt.wantErr {
				assert.ErrorIs(t, err, crypto.ErrUnsupportedAlgorithm)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantSize, h.Size())
		})
	}
}

func TestHashString(t *testing.T) {
	t.Run("nil hash returns input", func(t *testing.T) {
		assert.Equal(t, "some token", crypto.HashString(nil, "some token", true))
	})
	t.Run("at_hash uses first half of the sum", func(t *testing.T) {
		got := crypto.HashString(sha256.New(), "jHkWEdUXMU1BwAsC4vtUsZwnNvTIxEl0z9K3vx5KF0Y", true)
		assert.Equal(t, "77QmUPtjPfzWtF2AnpK9RQ", got)
	})
	t.Run("full sum", func(t *testing.T) {
		got := crypto.HashString(sha256.New(), "jHkWEdUXMU1BwAsC4vtUsZwnNvTIxEl0z9K3vx5KF0Y", false)
		assert.Len(t, got, 43)
	})
}
