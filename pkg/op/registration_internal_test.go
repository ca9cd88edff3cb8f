package op

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/auric-id/auric/pkg/oidc"
)

func Test_validateClientMetadata(t *testing.T) {
	valid := func() *oidc.ClientMetadata {
		m := &oidc.ClientMetadata{
			RedirectURIs:            []string{"https://registered.com/callback"},
			GrantTypes:              []oidc.GrantType{oidc.GrantTypeCode},
			ResponseTypes:           []oidc.ResponseType{oidc.ResponseTypeCode},
			TokenEndpointAuthMethod: oidc.AuthMethodBasic,
			SubjectType:             oidc.SubjectTypePublic,
		}
		return m
	}

	blocked := []string{"https://*.attacker.com/*", "http://blocked.example.com/*"}

	tests := []struct {
		name    string
		change  func(m *oidc.ClientMetadata)
		wantErr bool
	}{
		{
			name:   "valid metadata",
			change: func(m *oidc.ClientMetadata) {},
		},
		{
			name: "unsupported grant type",
			change: func(m *oidc.ClientMetadata) {
				m.GrantTypes = []oidc.GrantType{"urn:ietf:params:oauth:grant-type:device_code"}
			},
			wantErr: true,
		},
		{
			name: "code grant without redirect uris",
			change: func(m *oidc.ClientMetadata) {
				m.RedirectURIs = nil
			},
			wantErr: true,
		},
		{
			name: "client credentials without redirect uris",
			change: func(m *oidc.ClientMetadata) {
				m.RedirectURIs = nil
				m.GrantTypes = []oidc.GrantType{oidc.GrantTypeClientCredentials}
				m.ResponseTypes = nil
			},
		},
		{
			name: "redirect uri glob instead of exact uri",
			change: func(m *oidc.ClientMetadata) {
				m.RedirectURIs = nil
				m.RedirectURIsRegex = []string{"https://*.registered.com/callback"}
			},
		},
		{
			name: "invalid redirect uri glob",
			change: func(m *oidc.ClientMetadata) {
				m.RedirectURIsRegex = []string{"["}
			},
			wantErr: true,
		},
		{
			name: "unsupported response type",
			change: func(m *oidc.ClientMetadata) {
				m.ResponseTypes = []oidc.ResponseType{"token id_token code extra"}
			},
			wantErr: true,
		},
		{
			name: "unsupported auth method",
			change: func(m *oidc.ClientMetadata) {
				m.TokenEndpointAuthMethod = "tls_client_auth"
			},
			wantErr: true,
		},
		{
			name: "pairwise without sector or redirect uri",
			change: func(m *oidc.ClientMetadata) {
				m.RedirectURIs = nil
				m.GrantTypes = []oidc.GrantType{oidc.GrantTypeClientCredentials}
				m.SubjectType = oidc.SubjectTypePairwise
			},
			wantErr: true,
		},
		{
			name: "pairwise with sector identifier",
			change: func(m *oidc.ClientMetadata) {
				m.SubjectType = oidc.SubjectTypePairwise
				m.SectorIdentifierURI = "https://registered.com/sector.json"
			},
		},
		{
			name: "blocked redirect uri",
			change: func(m *oidc.ClientMetadata) {
				m.RedirectURIs = []string{"https://www.attacker.com/foo/bar"}
			},
			wantErr: true,
		},
		{
			name: "blocked redirect uri among registered ones",
			change: func(m *oidc.ClientMetadata) {
				m.RedirectURIs = append(m.RedirectURIs, "http://blocked.example.com/cb")
			},
			wantErr: true,
		},
		{
			name: "blocked pattern with different scheme does not match",
			change: func(m *oidc.ClientMetadata) {
				m.RedirectURIs = []string{"https://blocked.example.com/cb"}
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := valid()
			tt.change(m)
			err := validateClientMetadata(m, blocked)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func Test_newSecret(t *testing.T) {
	first := newSecret()
	second := newSecret()
	assert.NotEmpty(t, first)
	assert.NotEqual(t, first, second)
}
