package oidc

import (
	"encoding/json"

	"github.com/muhlemmer/gu"
)

type IntrospectionRequest struct {
	Token string `schema:"token"`
	// TokenTypeHint is accepted but not required, the token type is
	// detected from the token itself.
	TokenTypeHint string `schema:"token_type_hint"`
}

type ClientAssertionParams struct {
	ClientAssertion     string `schema:"client_assertion"`
	ClientAssertionType string `schema:"client_assertion_type"`
}

// IntrospectionResponse implements RFC 7662, section 2.2 and the
// OIDC profile claims of the token's subject.
type IntrospectionResponse struct {
	Active                              bool                 `json:"active"`
	Scope                               SpaceDelimitedArray  `json:"scope,omitempty"`
	ClientID                            string               `json:"client_id,omitempty"`
	TokenType                           string               `json:"token_type,omitempty"`
	Expiration                          Time                 `json:"exp,omitempty"`
	IssuedAt                            Time                 `json:"iat,omitempty"`
	NotBefore                           Time                 `json:"nbf,omitempty"`
	Subject                             string               `json:"sub,omitempty"`
	Audience                            Audience             `json:"aud,omitempty"`
	Issuer                              string               `json:"iss,omitempty"`
	JWTID                               string               `json:"jti,omitempty"`
	Username                            string               `json:"username,omitempty"`
	AuthTime                            Time                 `json:"auth_time,omitempty"`
	AuthenticationContextClassReference string               `json:"acr,omitempty"`
	SessionID                           string               `json:"sid,omitempty"`
	AuthorizationDetails                AuthorizationDetails `json:"authorization_details,omitempty"`
	UserInfoProfile
	UserInfoEmail
	UserInfoPhone
	Address *UserInfoAddress `json:"address,omitempty"`

	Claims map[string]any `json:"-"`
}

// SetUserInfo copies the profile claims of the userinfo into the response.
func (i *IntrospectionResponse) SetUserInfo(u *UserInfo) {
	i.Username = u.PreferredUsername
	i.Subject = u.Subject
	i.UserInfoProfile = u.UserInfoProfile
	i.UserInfoEmail = u.UserInfoEmail
	i.UserInfoPhone = u.UserInfoPhone
	i.Address = gu.PtrCopy(u.Address)
	for k, v := range u.Claims {
		if i.Claims == nil {
			i.Claims = make(map[string]any, len(u.Claims))
		}
		i.Claims[k] = v
	}
}

type iAlias IntrospectionResponse

func (i *IntrospectionResponse) MarshalJSON() ([]byte, error) {
	if i.PreferredUsername != "" {
		i.Username = i.PreferredUsername
	}
	return mergeAndMarshalClaims((*iAlias)(i), i.Claims)
}

func (i *IntrospectionResponse) UnmarshalJSON(data []byte) error {
	if err := json.Unmarshal(data, (*iAlias)(i)); err != nil {
		return err
	}
	return nil
}

// IntrospectionJWTClaims is the payload of a signed introspection
// response, requested through introspection_signed_response_alg.
// https://datatracker.ietf.org/doc/html/draft-ietf-oauth-jwt-introspection-response
type IntrospectionJWTClaims struct {
	Issuer             string                 `json:"iss,omitempty"`
	Audience           Audience               `json:"aud,omitempty"`
	IssuedAt           Time                   `json:"iat,omitempty"`
	TokenIntrospection *IntrospectionResponse `json:"token_introspection"`
}
