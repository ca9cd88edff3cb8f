// Package storage provides ready to use implementations of the
// op.Storage contract: an in-memory store for development and tests
// and a Redis backed store for shared state.
package storage

import (
	"time"

	jose "github.com/go-jose/go-jose/v3"

	"github.com/auric-id/auric/pkg/oidc"
	"github.com/auric-id/auric/pkg/op"
)

// Client adapts a stored registration to the op.Client interface.
type Client struct {
	registration *op.ClientRegistration
	loginURL     func(grantID string) string
}

// NewClient wraps a registration. loginURL renders the address of the
// login UI for a grant id.
func NewClient(registration *op.ClientRegistration, loginURL func(grantID string) string) *Client {
	return &Client{registration: registration, loginURL: loginURL}
}

func (c *Client) GetID() string {
	return c.registration.ClientID
}

func (c *Client) RedirectURIs() []string {
	return c.registration.Metadata.RedirectURIs
}

func (c *Client) RedirectURIGlobs() []string {
	return c.registration.Metadata.RedirectURIsRegex
}

func (c *Client) PostLogoutRedirectURIGlobs() []string {
	return c.registration.Metadata.PostLogoutRedirectURIsRegex
}

func (c *Client) AuthMethod() oidc.AuthMethod {
	return c.registration.Metadata.TokenEndpointAuthMethod
}

func (c *Client) ResponseTypes() []oidc.ResponseType {
	return c.registration.Metadata.ResponseTypes
}

func (c *Client) GrantTypes() []oidc.GrantType {
	return c.registration.Metadata.GrantTypes
}

func (c *Client) LoginURL(grantID string) string {
	if c.loginURL == nil {
		return ""
	}
	return c.loginURL(grantID)
}

func (c *Client) AccessTokenType() op.AccessTokenType {
	if c.registration.Metadata.AccessTokenAsJWT {
		return op.AccessTokenTypeJWT
	}
	return op.AccessTokenTypeBearer
}

func (c *Client) AccessTokenLifetime() time.Duration {
	return time.Duration(c.registration.Metadata.AccessTokenLifetime) * time.Second
}

func (c *Client) IDTokenLifetime() time.Duration {
	return 0
}

func (c *Client) IDTokenSigAlgorithm() jose.SignatureAlgorithm {
	return jose.SignatureAlgorithm(c.registration.Metadata.IDTokenSignedResponseAlg)
}

func (c *Client) IntrospectionSigAlgorithm() jose.SignatureAlgorithm {
	return jose.SignatureAlgorithm(c.registration.Metadata.IntrospectionSignedResponseAlg)
}

// IsScopeAllowed accepts registered scopes and, when the client opted
// in, spontaneous scopes matching one of its glob patterns.
func (c *Client) IsScopeAllowed(scope string) bool {
	for _, registered := range c.registration.Metadata.Scope {
		if registered == scope {
			return true
		}
	}
	if !c.registration.Metadata.AllowSpontaneousScopes {
		return false
	}
	for _, pattern := range c.registration.Metadata.SpontaneousScopes {
		matcher, err := op.CompileGlob(pattern)
		if err != nil {
			continue
		}
		if matcher.Match(scope) {
			return true
		}
	}
	return false
}

func (c *Client) AuthorizedACRValues() []string {
	return c.registration.Metadata.AuthorizedACRValues
}

func (c *Client) AuthorizationDetailTypes() []string {
	return c.registration.Metadata.AuthorizationDetailsTypes
}

func (c *Client) SubjectType() oidc.SubjectType {
	return c.registration.Metadata.SubjectType
}

func (c *Client) SectorIdentifier() string {
	return c.registration.Metadata.SectorIdentifierURI
}

func (c *Client) CustomParamsReturned() []string {
	return c.registration.Metadata.CustomParamNamesReturnedInResponse
}

func (c *Client) RegistrationAccessToken() string {
	return c.registration.RegistrationAccessToken
}

func (c *Client) SecretExpiresAt() time.Time {
	return c.registration.SecretExpiresAt
}

func (c *Client) Metadata() *oidc.ClientMetadata {
	return c.registration.Metadata
}

