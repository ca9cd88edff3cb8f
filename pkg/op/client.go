package op

import (
	"time"

	jose "github.com/go-jose/go-jose/v3"

	"github.com/auric-id/auric/pkg/oidc"
)

type AccessTokenType int

const (
	AccessTokenTypeBearer AccessTokenType = iota // opaque
	AccessTokenTypeJWT                           // JWT
)

// Client is the registry view of a registered relying party. The
// complete registered metadata is reachable through Metadata, the
// getters cover the fields hot paths need.
type Client interface {
	GetID() string
	RedirectURIs() []string

	// RedirectURIGlobs are matched in addition to the exact
	// RedirectURIs. See https://pkg.go.dev/github.com/gobwas/glob#Compile
	// for glob interpretation.
	RedirectURIGlobs() []string
	PostLogoutRedirectURIGlobs() []string

	AuthMethod() oidc.AuthMethod
	ResponseTypes() []oidc.ResponseType
	GrantTypes() []oidc.GrantType

	// LoginURL is the UI url the user agent is redirected to for
	// authentication, with the grant id as parameter.
	LoginURL(grantID string) string

	AccessTokenType() AccessTokenType
	AccessTokenLifetime() time.Duration
	IDTokenLifetime() time.Duration
	IDTokenSigAlgorithm() jose.SignatureAlgorithm

	// IntrospectionSigAlgorithm is empty when introspection responses
	// are returned as plain JSON.
	IntrospectionSigAlgorithm() jose.SignatureAlgorithm

	IsScopeAllowed(scope string) bool
	AuthorizedACRValues() []string
	AuthorizationDetailTypes() []string
	SubjectType() oidc.SubjectType
	SectorIdentifier() string
	CustomParamsReturned() []string

	// RegistrationAccessToken authorizes management of this registration
	// via the registration_client_uri. Empty for statically
	// configured clients.
	RegistrationAccessToken() string
	SecretExpiresAt() time.Time

	Metadata() *oidc.ClientMetadata
}

func ContainsResponseType(types []oidc.ResponseType, responseType oidc.ResponseType) bool {
	for _, t := range types {
		if t == responseType {
			return true
		}
	}
	return false
}

func ContainsGrantType(types []oidc.GrantType, grantType oidc.GrantType) bool {
	for _, t := range types {
		if t == grantType {
			return true
		}
	}
	return false
}

// ValidateGrantType checks that the client registered the grant type.
func ValidateGrantType(client Client, grantType oidc.GrantType) error {
	if client == nil {
		return oidc.ErrInvalidRequest().WithDescription("missing client")
	}
	if !ContainsGrantType(client.GrantTypes(), grantType) {
		return oidc.ErrUnauthorizedClient().WithDescription("grant_type %q not allowed for this client", grantType)
	}
	return nil
}

func IsConfidentialType(c Client) bool {
	return c.AuthMethod() != oidc.AuthMethodNone
}

// ACRAllowed checks a requested acr value against the authorized
// values of the client. An empty registration allows every value.
func ACRAllowed(client Client, acr string) bool {
	authorized := client.AuthorizedACRValues()
	if len(authorized) == 0 {
		return true
	}
	for _, a := range authorized {
		if a == acr {
			return true
		}
	}
	return false
}
