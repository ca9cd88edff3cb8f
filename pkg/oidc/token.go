package oidc

import (
	"encoding/json"

	"github.com/go-jose/go-jose/v3"
)

// TokenClaims contains the claims shared by ID tokens and JWT access tokens.
type TokenClaims struct {
	Issuer                              string              `json:"iss,omitempty"`
	Subject                             string              `json:"sub,omitempty"`
	Audience                            Audience            `json:"aud,omitempty"`
	Expiration                          Time                `json:"exp,omitempty"`
	IssuedAt                            Time                `json:"iat,omitempty"`
	AuthTime                            Time                `json:"auth_time,omitempty"`
	NotBefore                           Time                `json:"nbf,omitempty"`
	Nonce                               string              `json:"nonce,omitempty"`
	AuthenticationContextClassReference string              `json:"acr,omitempty"`
	AuthenticationMethodsReferences     []string            `json:"amr,omitempty"`
	AuthorizedParty                     string              `json:"azp,omitempty"`
	ClientID                            string              `json:"client_id,omitempty"`
	JWTID                               string              `json:"jti,omitempty"`
	SessionID                           string              `json:"sid,omitempty"`
	Confirmation                        *Confirmation       `json:"cnf,omitempty"`

	// SignatureAlg is set by the token verifier or signer, it is not a claim.
	SignatureAlg jose.SignatureAlgorithm `json:"-"`
}

// Confirmation is the cnf claim of RFC 8471: proof of possession
// key bindings of the token. tbh is the base64url encoded SHA-256
// hash of the token binding the token was issued to.
type Confirmation struct {
	TokenBindingHash string `json:"tbh,omitempty"`
	JWK              *jose.JSONWebKey `json:"jwk,omitempty"`
}

func (c *TokenClaims) GetIssuer() string {
	return c.Issuer
}

func (c *TokenClaims) GetSubject() string {
	return c.Subject
}

func (c *TokenClaims) GetAudience() []string {
	return c.Audience
}

func (c *TokenClaims) GetExpiration() Time {
	return c.Expiration
}

func (c *TokenClaims) GetIssuedAt() Time {
	return c.IssuedAt
}

// IDTokenClaims are the claims of an ID token,
// https://openid.net/specs/openid-connect-core-1_0.html#IDToken
type IDTokenClaims struct {
	TokenClaims
	AccessTokenHash string `json:"at_hash,omitempty"`
	CodeHash        string `json:"c_hash,omitempty"`
	StateHash       string `json:"s_hash,omitempty"`
	UserInfo        *UserInfo `json:"-"`
}

// MarshalJSON flattens the optional profile claims of the
// userinfo into the token payload.
func (c *IDTokenClaims) MarshalJSON() ([]byte, error) {
	type alias IDTokenClaims
	return mergeAndMarshalClaims((*alias)(c), c.UserInfo)
}

func (c *IDTokenClaims) UnmarshalJSON(data []byte) error {
	type alias IDTokenClaims
	if err := json.Unmarshal(data, (*alias)(c)); err != nil {
		return err
	}
	return nil
}

// AccessTokenClaims are the claims of a JWT encoded access token,
// https://datatracker.ietf.org/doc/html/rfc9068
type AccessTokenClaims struct {
	TokenClaims
	Scopes               SpaceDelimitedArray  `json:"scope,omitempty"`
	AuthorizationDetails AuthorizationDetails `json:"authorization_details,omitempty"`
	Claims               map[string]any       `json:"-"`
}

func (c *AccessTokenClaims) MarshalJSON() ([]byte, error) {
	type alias AccessTokenClaims
	return mergeAndMarshalClaims((*alias)(c), c.Claims)
}

func (c *AccessTokenClaims) UnmarshalJSON(data []byte) error {
	type alias AccessTokenClaims
	if err := json.Unmarshal(data, (*alias)(c)); err != nil {
		return err
	}
	return nil
}

// AccessTokenResponse is the success body of the token endpoint,
// https://datatracker.ietf.org/doc/html/rfc6749#section-5.1
type AccessTokenResponse struct {
	AccessToken          string               `json:"access_token,omitempty" schema:"access_token"`
	TokenType            string               `json:"token_type,omitempty" schema:"token_type"`
	RefreshToken         string               `json:"refresh_token,omitempty" schema:"refresh_token"`
	ExpiresIn            uint64               `json:"expires_in,omitempty" schema:"expires_in"`
	IDToken              string               `json:"id_token,omitempty" schema:"id_token"`
	State                string               `json:"state,omitempty" schema:"state"`
	Scope                SpaceDelimitedArray  `json:"scope,omitempty" schema:"scope"`
	AuthorizationDetails AuthorizationDetails `json:"authorization_details,omitempty" schema:"-"`

	// CustomParameters are the registered custom parameters of the client,
	// carried over from the authorization request.
	CustomParameters map[string]string `json:"-" schema:"-"`
}

type responseAlias AccessTokenResponse

func (r *AccessTokenResponse) MarshalJSON() ([]byte, error) {
	if len(r.CustomParameters) == 0 {
		return json.Marshal((*responseAlias)(r))
	}
	return mergeAndMarshalClaims((*responseAlias)(r), r.CustomParameters)
}
