package storage

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/auric-id/auric/pkg/oidc"
	"github.com/auric-id/auric/pkg/op"
)

func TestClient_IsScopeAllowed(t *testing.T) {
	client := NewClient(&op.ClientRegistration{
		ClientID: "web",
		Metadata: &oidc.ClientMetadata{
			Scope:                  oidc.SpaceDelimitedArray{"openid", "profile"},
			AllowSpontaneousScopes: true,
			SpontaneousScopes:      []string{"urn:acme:org:*"},
		},
	}, nil)

	assert.True(t, client.IsScopeAllowed("openid"))
	assert.True(t, client.IsScopeAllowed("profile"))
	assert.True(t, client.IsScopeAllowed("urn:acme:org:42"))
	assert.False(t, client.IsScopeAllowed("email"))
	assert.False(t, client.IsScopeAllowed("urn:other:org:42"))

	noSpontaneous := NewClient(&op.ClientRegistration{
		ClientID: "strict",
		Metadata: &oidc.ClientMetadata{
			Scope:             oidc.SpaceDelimitedArray{"openid"},
			SpontaneousScopes: []string{"urn:acme:org:*"},
		},
	}, nil)
	assert.False(t, noSpontaneous.IsScopeAllowed("urn:acme:org:42"))
}

func TestClient_AccessTokenType(t *testing.T) {
	jwt := NewClient(&op.ClientRegistration{Metadata: &oidc.ClientMetadata{AccessTokenAsJWT: true}}, nil)
	assert.Equal(t, op.AccessTokenTypeJWT, jwt.AccessTokenType())

	opaque := NewClient(&op.ClientRegistration{Metadata: &oidc.ClientMetadata{}}, nil)
	assert.Equal(t, op.AccessTokenTypeBearer, opaque.AccessTokenType())
}

func TestClient_AccessTokenLifetime(t *testing.T) {
	client := NewClient(&op.ClientRegistration{Metadata: &oidc.ClientMetadata{AccessTokenLifetime: 300}}, nil)
	assert.Equal(t, 5*time.Minute, client.AccessTokenLifetime())

	serverDefault := NewClient(&op.ClientRegistration{Metadata: &oidc.ClientMetadata{}}, nil)
	assert.Zero(t, serverDefault.AccessTokenLifetime())
}

func TestClient_LoginURL(t *testing.T) {
	client := NewClient(&op.ClientRegistration{Metadata: &oidc.ClientMetadata{}}, func(grantID string) string {
		return "https://issuer.example.com/login?id=" + grantID
	})
	assert.Equal(t, "https://issuer.example.com/login?id=grant-1", client.LoginURL("grant-1"))

	bare := NewClient(&op.ClientRegistration{Metadata: &oidc.ClientMetadata{}}, nil)
	assert.Empty(t, bare.LoginURL("grant-1"))
}
