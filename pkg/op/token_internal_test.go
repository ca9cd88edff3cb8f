package op

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/auric-id/auric/pkg/oidc"
)

// stubClient answers the methods a test overrides, everything else
// panics through the embedded nil interface.
type stubClient struct {
	Client
	grantTypes []oidc.GrantType
}

func (c stubClient) GrantTypes() []oidc.GrantType { return c.grantTypes }

func Test_needsRefreshToken(t *testing.T) {
	refreshClient := stubClient{grantTypes: []oidc.GrantType{oidc.GrantTypeCode, oidc.GrantTypeRefreshToken}}
	codeOnlyClient := stubClient{grantTypes: []oidc.GrantType{oidc.GrantTypeCode}}

	tests := []struct {
		name     string
		issuance *TokenIssuance
		client   Client
		want     bool
	}{
		{
			name: "offline_access on refresh client",
			issuance: &TokenIssuance{
				GrantType: oidc.GrantTypeCode,
				Scopes:    []string{"openid", "offline_access"},
			},
			client: refreshClient,
			want:   true,
		},
		{
			name: "no offline_access",
			issuance: &TokenIssuance{
				GrantType: oidc.GrantTypeCode,
				Scopes:    []string{"openid"},
			},
			client: refreshClient,
		},
		{
			name: "client without refresh grant",
			issuance: &TokenIssuance{
				GrantType: oidc.GrantTypeCode,
				Scopes:    []string{"openid", "offline_access"},
			},
			client: codeOnlyClient,
		},
		{
			name: "client credentials never refresh",
			issuance: &TokenIssuance{
				GrantType: oidc.GrantTypeClientCredentials,
				Scopes:    []string{"offline_access"},
			},
			client: refreshClient,
		},
		{
			name: "refresh exchange rotates instead",
			issuance: &TokenIssuance{
				GrantType: oidc.GrantTypeRefreshToken,
				Scopes:    []string{"openid", "offline_access"},
			},
			client: refreshClient,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, needsRefreshToken(tt.issuance, tt.client))
		})
	}
}

func Test_audienceWithClient(t *testing.T) {
	tests := []struct {
		name     string
		audience []string
		clientID string
		want     []string
	}{
		{
			name:     "empty audience",
			clientID: "web",
			want:     []string{"web"},
		},
		{
			name:     "client already present",
			audience: []string{"api", "web"},
			clientID: "web",
			want:     []string{"api", "web"},
		},
		{
			name:     "client appended",
			audience: []string{"api"},
			clientID: "web",
			want:     []string{"api", "web"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, audienceWithClient(tt.audience, tt.clientID))
		})
	}
}

func Test_audienceWithClient_noAliasing(t *testing.T) {
	audience := make([]string, 1, 4)
	audience[0] = "api"
	got := audienceWithClient(audience, "web")
	require.Equal(t, []string{"api", "web"}, got)
	// the append must not write into the callers backing array
	audienceWithClient(audience, "other")
	assert.Equal(t, []string{"api", "web"}, got)
}

func Test_opaqueTokenRoundtrip(t *testing.T) {
	crypt := NewAESCrypto([32]byte{1, 2, 3})

	token, err := createOpaqueToken("token-id", "sub-1", crypt)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	tokenID, subject, err := ParseOpaqueToken(token, crypt)
	require.NoError(t, err)
	assert.Equal(t, "token-id", tokenID)
	assert.Equal(t, "sub-1", subject)

	t.Run("garbage", func(t *testing.T) {
		_, _, err := ParseOpaqueToken("not a token", crypt)
		assert.Error(t, err)
	})
}

func Test_narrowScopes(t *testing.T) {
	granted := []string{"openid", "profile", "offline_access"}

	got, err := narrowScopes(granted, nil)
	require.NoError(t, err)
	assert.Equal(t, granted, got)

	got, err = narrowScopes(granted, []string{"openid"})
	require.NoError(t, err)
	assert.Equal(t, []string{"openid"}, got)

	_, err = narrowScopes(granted, []string{"openid", "email"})
	require.Error(t, err)
	target := new(oidc.Error)
	require.ErrorAs(t, err, &target)
	assert.Equal(t, oidc.InvalidScope, target.ErrorType)
}
