package oidc

// ClientMetadata implements the client metadata of RFC 7591 section 2 and
// https://openid.net/specs/openid-connect-registration-1_0.html#ClientMetadata,
// plus the non-standard extensions understood by this server.
//
// The metadata values are used in two ways:
//
//   - as input values to registration requests (ClientRegistrationRequest), and
//   - as output values in registration responses and read responses (ClientInformationResponse).
type ClientMetadata struct {
	// RedirectURIs is an array of redirection URI strings for use in
	// redirect-based flows. Clients using the authorization code or
	// implicit grant types MUST register their redirection URI values.
	RedirectURIs []string `json:"redirect_uris"`

	// RedirectURIsRegex contains glob patterns matched against the
	// redirect_uri in addition to the exact RedirectURIs values.
	RedirectURIsRegex []string `json:"redirect_uris_regex,omitempty"`

	// TokenEndpointAuthMethod is the requested authentication method for
	// the token endpoint. Defaults to client_secret_basic.
	TokenEndpointAuthMethod AuthMethod `json:"token_endpoint_auth_method,omitempty"`

	// GrantTypes is an array of OAuth 2.0 grant type strings that the
	// client can use at the token endpoint. Defaults to ["authorization_code"].
	GrantTypes []GrantType `json:"grant_types,omitempty"`

	// ResponseTypes is an array of the OAuth 2.0 response_type strings
	// that the client can use at the authorization endpoint.
	// Defaults to ["code"].
	ResponseTypes []ResponseType `json:"response_types,omitempty"`

	// ClientName is a human-readable string name of the client
	// to be presented to the end-user during authorization.
	ClientName string `json:"client_name,omitempty"`

	// ClientURI is a URL string of a web page providing information about the client.
	ClientURI string `json:"client_uri,omitempty"`

	// LogoURI is a URL string that references a logo for the client.
	LogoURI string `json:"logo_uri,omitempty"`

	// Scope is a string containing a space-separated list of scope values
	// the client can use when requesting access tokens.
	Scope SpaceDelimitedArray `json:"scope,omitempty"`

	// Contacts is an array of strings representing ways to contact people
	// responsible for this client, typically email addresses.
	Contacts []string `json:"contacts,omitempty"`

	// TosURI is a URL string pointing to the client's terms of service.
	TosURI string `json:"tos_uri,omitempty"`

	// PolicyURI is a URL string pointing to the client's privacy policy.
	PolicyURI string `json:"policy_uri,omitempty"`

	// JwksURI is a URL string referencing the client's JSON Web Key Set
	// document. Mutually exclusive with Jwks.
	JwksURI string `json:"jwks_uri,omitempty"`

	// SoftwareID identifies the software of the client, stable across
	// dynamically registered instances of the same software.
	SoftwareID string `json:"software_id,omitempty"`

	// SoftwareVersion is a version identifier for the client software.
	SoftwareVersion string `json:"software_version,omitempty"`

	// SoftwareStatement is a signed software statement assertion,
	// issued by the ssa endpoint, asserting client metadata values.
	SoftwareStatement string `json:"software_statement,omitempty"`

	// ApplicationType is either `web` or `native`. Defaults to web.
	ApplicationType string `json:"application_type,omitempty"`

	// SubjectType requested for responses to this client,
	// either `public` or `pairwise`. Defaults to public.
	SubjectType SubjectType `json:"subject_type,omitempty"`

	// SectorIdentifierURI is used for pairwise subject calculation
	// across clients of the same operator.
	SectorIdentifierURI string `json:"sector_identifier_uri,omitempty"`

	// IDTokenSignedResponseAlg is the JWS alg used for signing the ID Token
	// issued to this client. Defaults to RS256.
	IDTokenSignedResponseAlg string `json:"id_token_signed_response_alg,omitempty"`

	// UserinfoSignedResponseAlg is the JWS alg for signed userinfo responses.
	// If empty userinfo is returned as plain JSON.
	UserinfoSignedResponseAlg string `json:"userinfo_signed_response_alg,omitempty"`

	// IntrospectionSignedResponseAlg is the JWS alg for signed introspection
	// responses. If empty introspection is returned as plain JSON.
	IntrospectionSignedResponseAlg string `json:"introspection_signed_response_alg,omitempty"`

	// DefaultMaxAge specifies that the end-user must be actively
	// authenticated within this number of seconds.
	DefaultMaxAge *uint `json:"default_max_age,omitempty"`

	// RequireAuthTime specifies whether the auth_time claim
	// in the ID Token is required.
	RequireAuthTime bool `json:"require_auth_time,omitempty"`

	// DefaultACRValues are the requested default ACR values,
	// used when the authorization request carries none.
	DefaultACRValues []string `json:"default_acr_values,omitempty"`

	// AuthorizedACRValues restricts which ACR values may be used with this
	// client. Empty means all values provided by the server are allowed.
	AuthorizedACRValues []string `json:"authorized_acr_values,omitempty"`

	// PostLogoutRedirectURIsRegex contains glob patterns matched against
	// the post_logout_redirect_uri in addition to PostLogoutRedirectURIs.
	PostLogoutRedirectURIsRegex []string `json:"post_logout_redirect_uris_regex,omitempty"`

	// PostLogoutRedirectURIs are the URIs the end_session endpoint may
	// redirect to after logout. Glob patterns are allowed.
	PostLogoutRedirectURIs []string `json:"post_logout_redirect_uris,omitempty"`

	// FrontChannelLogoutURI is notified on sessions termination.
	FrontChannelLogoutURI string `json:"frontchannel_logout_uri,omitempty"`

	// FrontChannelLogoutSessionRequired adds sid and iss to the
	// front-channel logout notification when true.
	FrontChannelLogoutSessionRequired bool `json:"frontchannel_logout_session_required,omitempty"`

	// AccessTokenAsJWT causes access tokens for this client to be issued
	// as signed JWTs instead of opaque tokens.
	AccessTokenAsJWT bool `json:"access_token_as_jwt,omitempty"`

	// AccessTokenSigningAlg is the JWS alg for JWT access tokens.
	// Defaults to RS256.
	AccessTokenSigningAlg string `json:"access_token_signing_alg,omitempty"`

	// AccessTokenLifetime overrides the server default access token
	// lifetime, in seconds.
	AccessTokenLifetime uint64 `json:"access_token_lifetime,omitempty"`

	// AllowSpontaneousScopes permits scopes not registered for the client
	// when they match one of the SpontaneousScopes patterns.
	AllowSpontaneousScopes bool `json:"allow_spontaneous_scopes,omitempty"`

	// SpontaneousScopes are glob patterns for dynamically granted scopes.
	SpontaneousScopes []string `json:"spontaneous_scopes,omitempty"`

	// AuthorizationDetailsTypes lists the authorization_details types
	// this client may request, RFC 9396.
	AuthorizationDetailsTypes []string `json:"authorization_details_types,omitempty"`

	// CustomParamNamesReturnedInResponse names the custom authorization
	// request parameters echoed back in the token response.
	CustomParamNamesReturnedInResponse []string `json:"custom_param_names_returned_in_response,omitempty"`

	// RunIntrospectionScriptBeforeJWTCreation invokes the configured access
	// evaluation hook before minting JWT access tokens when true.
	RunIntrospectionScriptBeforeJWTCreation bool `json:"run_introspection_script_before_jwt_creation,omitempty"`
}

// ApplyDefaults fills the defaulted metadata fields of RFC 7591.
func (m *ClientMetadata) ApplyDefaults() {
	if m.TokenEndpointAuthMethod == "" {
		m.TokenEndpointAuthMethod = AuthMethodBasic
	}
	if len(m.GrantTypes) == 0 {
		m.GrantTypes = []GrantType{GrantTypeCode}
	}
	if len(m.ResponseTypes) == 0 {
		m.ResponseTypes = []ResponseType{ResponseTypeCode}
	}
	if m.ApplicationType == "" {
		m.ApplicationType = ApplicationTypeWeb
	}
	if m.SubjectType == "" {
		m.SubjectType = SubjectTypePublic
	}
	if m.IDTokenSignedResponseAlg == "" {
		m.IDTokenSignedResponseAlg = "RS256"
	}
	if m.AccessTokenSigningAlg == "" {
		m.AccessTokenSigningAlg = "RS256"
	}
}

const (
	ApplicationTypeWeb    = "web"
	ApplicationTypeNative = "native"
)

// ClientRegistrationRequest is the body of a POST to the registration
// endpoint, RFC 7591 section 3.1.
type ClientRegistrationRequest struct {
	ClientMetadata
}

// ClientInformationResponse is the body of successful registration,
// read and update responses, RFC 7592 section 3.
type ClientInformationResponse struct {
	ClientID              string `json:"client_id"`
	ClientSecret          string `json:"client_secret,omitempty"`
	ClientIDIssuedAt      Time   `json:"client_id_issued_at,omitempty"`
	ClientSecretExpiresAt Time   `json:"client_secret_expires_at"`

	// RegistrationAccessToken authorizes subsequent reads and updates of
	// the registration. It is only returned on the initial registration.
	RegistrationAccessToken string `json:"registration_access_token,omitempty"`

	// RegistrationClientURI is the client configuration endpoint of
	// this registration.
	RegistrationClientURI string `json:"registration_client_uri,omitempty"`

	ClientMetadata
}

// ClientUpdateRequest is the body of a PUT to the client configuration
// endpoint, RFC 7592 section 2.2.
type ClientUpdateRequest struct {
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"client_secret,omitempty"`
	ClientMetadata
}
