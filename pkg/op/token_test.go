package op_test

import (
	"context"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/auric-id/auric/pkg/oidc"
	"github.com/auric-id/auric/pkg/op"
	"github.com/auric-id/auric/pkg/op/mock"
	"github.com/auric-id/auric/pkg/storage"
)

func newPairwiseClient(t *testing.T, sector string, redirectURIs []string) op.Client {
	c := mock.NewClient(t).(*mock.MockClient)
	c.EXPECT().SubjectType().AnyTimes().Return(oidc.SubjectTypePairwise)
	c.EXPECT().SectorIdentifier().AnyTimes().Return(sector)
	c.EXPECT().RedirectURIs().AnyTimes().Return(redirectURIs)
	return c
}

func TestSubjectForClient(t *testing.T) {
	config := &op.Config{PairwiseSalt: "salt"}

	t.Run("public subject type", func(t *testing.T) {
		c := mock.NewClient(t).(*mock.MockClient)
		c.EXPECT().SubjectType().AnyTimes().Return(oidc.SubjectTypePublic)
		assert.Equal(t, "sub-1", op.SubjectForClient(c, "sub-1", config))
	})

	t.Run("pairwise is deterministic", func(t *testing.T) {
		c := newPairwiseClient(t, "https://sector.example.com", nil)
		first := op.SubjectForClient(c, "sub-1", config)
		second := op.SubjectForClient(c, "sub-1", config)
		require.NotEmpty(t, first)
		assert.NotEqual(t, "sub-1", first)
		assert.Equal(t, first, second)
	})

	t.Run("pairwise differs per subject", func(t *testing.T) {
		c := newPairwiseClient(t, "https://sector.example.com", nil)
		assert.NotEqual(t,
			op.SubjectForClient(c, "sub-1", config),
			op.SubjectForClient(c, "sub-2", config),
		)
	})

	t.Run("sector falls back to first redirect uri host", func(t *testing.T) {
		withSector := newPairwiseClient(t, "registered.com", nil)
		withRedirect := newPairwiseClient(t, "", []string{"https://registered.com/callback"})
		assert.Equal(t,
			op.SubjectForClient(withSector, "sub-1", config),
			op.SubjectForClient(withRedirect, "sub-1", config),
		)
	})

	t.Run("different sectors unlink the subject", func(t *testing.T) {
		a := newPairwiseClient(t, "https://a.example.com", nil)
		b := newPairwiseClient(t, "https://b.example.com", nil)
		assert.NotEqual(t,
			op.SubjectForClient(a, "sub-1", config),
			op.SubjectForClient(b, "sub-1", config),
		)
	})

	t.Run("empty subject stays empty", func(t *testing.T) {
		c := newPairwiseClient(t, "https://sector.example.com", nil)
		assert.Empty(t, op.SubjectForClient(c, "", config))
	})
}

func TestTokenBindingHash(t *testing.T) {
	r := httptest.NewRequest("POST", "/oauth/token", nil)
	assert.Empty(t, op.TokenBindingHash(r))

	r.Header.Set("Sec-Token-Binding", "binding-message")
	hash := op.TokenBindingHash(r)
	require.NotEmpty(t, hash)
	// base64url encoded sha256, no padding
	assert.Len(t, hash, 43)
	assert.NotContains(t, hash, "=")
}

func TestCreateIDToken_HashAndConfirmationClaims(t *testing.T) {
	store, err := storage.NewMemoryStorage(func(grantID string) string { return "/login?id=" + grantID })
	require.NoError(t, err)
	provider, err := op.NewProvider(&op.Config{CryptoKey: sha256.Sum256([]byte("test"))}, store, "https://issuer.example.com/")
	require.NoError(t, err)

	client := storage.NewClient(&op.ClientRegistration{
		ClientID: "web",
		Metadata: &oidc.ClientMetadata{},
	}, nil)
	issuance := &op.TokenIssuance{
		SessionID:        "sess-1",
		ClientID:         "web",
		Subject:          "sub-1",
		Scopes:           []string{oidc.ScopeOpenID},
		Nonce:            "nonce",
		GrantType:        oidc.GrantTypeCode,
		TokenBindingHash: "tbh-value",
	}

	idToken, err := op.CreateIDToken(context.Background(), issuance, client, provider, "the-access-token", "the-code", "the-state")
	require.NoError(t, err)

	parts := strings.Split(idToken, ".")
	require.Len(t, parts, 3)
	payload, err := base64.RawURLEncoding.DecodeString(parts[1])
	require.NoError(t, err)
	claims := new(oidc.IDTokenClaims)
	require.NoError(t, json.Unmarshal(payload, claims))

	assert.NotEmpty(t, claims.AccessTokenHash)
	assert.NotEmpty(t, claims.CodeHash)
	assert.NotEmpty(t, claims.StateHash)
	require.NotNil(t, claims.Confirmation)
	assert.Equal(t, "tbh-value", claims.Confirmation.TokenBindingHash)
	assert.Equal(t, "sess-1", claims.SessionID)

	t.Run("unavailable id token algorithm", func(t *testing.T) {
		esClient := storage.NewClient(&op.ClientRegistration{
			ClientID: "es",
			Metadata: &oidc.ClientMetadata{IDTokenSignedResponseAlg: "ES256"},
		}, nil)
		_, err := op.CreateIDToken(context.Background(), issuance, esClient, provider, "the-access-token", "", "")
		assert.Error(t, err)
	})
}

func TestIssuanceFromGrant(t *testing.T) {
	grant := &op.Grant{
		ID:        "grant-1",
		SessionID: "sess-1",
		ClientID:  "web",
		Subject:   "sub-1",
		Scopes:    []string{"openid", "profile"},
		ACR:       "basic",
		AMR:       []string{"pwd"},
		Nonce:     "nonce",
	}
	issuance := op.IssuanceFromGrant(grant, oidc.GrantTypeCode)
	assert.Equal(t, grant.ID, issuance.GrantID)
	assert.Equal(t, grant.SessionID, issuance.SessionID)
	assert.Equal(t, grant.ClientID, issuance.ClientID)
	assert.Equal(t, grant.Subject, issuance.Subject)
	assert.Equal(t, grant.Scopes, issuance.Scopes)
	assert.Equal(t, oidc.GrantTypeCode, issuance.GrantType)
}
