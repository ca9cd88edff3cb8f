package oidc

// AuthRequest according to:
// https://openid.net/specs/openid-connect-core-1_0.html#AuthRequest
type AuthRequest struct {
	Scopes       SpaceDelimitedArray `json:"scope" schema:"scope"`
	ResponseType ResponseType        `json:"response_type" schema:"response_type"`
	ResponseMode ResponseMode        `json:"response_mode,omitempty" schema:"response_mode"`
	ClientID     string              `json:"client_id" schema:"client_id"`
	RedirectURI  string              `json:"redirect_uri" schema:"redirect_uri"`

	State string `json:"state,omitempty" schema:"state"`
	Nonce string `json:"nonce,omitempty" schema:"nonce"`

	Display     Display             `json:"display,omitempty" schema:"display"`
	Prompt      SpaceDelimitedArray `json:"prompt,omitempty" schema:"prompt"`
	MaxAge      *uint               `json:"max_age,omitempty" schema:"max_age"`
	UILocales   Locales             `json:"ui_locales,omitempty" schema:"ui_locales"`
	IDTokenHint string              `json:"id_token_hint,omitempty" schema:"id_token_hint"`
	LoginHint   string              `json:"login_hint,omitempty" schema:"login_hint"`
	ACRValues   SpaceDelimitedArray `json:"acr_values,omitempty" schema:"acr_values"`

	CodeChallenge       string              `json:"code_challenge,omitempty" schema:"code_challenge"`
	CodeChallengeMethod CodeChallengeMethod `json:"code_challenge_method,omitempty" schema:"code_challenge_method"`

	// AuthorizationDetails describes the rich authorization requests of RFC 9396.
	// On the wire it is a JSON array inside a single form parameter.
	AuthorizationDetails AuthorizationDetails `json:"authorization_details,omitempty" schema:"authorization_details"`

	// RequestParam is the (unsupported) `request` parameter of JWT secured
	// authorization requests. If set, the request is rejected with
	// request_not_supported.
	RequestParam string `json:"request,omitempty" schema:"request"`

	// SessionID carries the session a prior challenge bound this request to.
	SessionID string `json:"session_id,omitempty" schema:"session_id"`

	// CustomParameters holds the non protocol form parameters, so that
	// registered custom parameter names can be passed through to the response.
	CustomParameters map[string]string `json:"custom_parameters,omitempty" schema:"-"`
}

// GetRedirectURI returns the redirect_uri value for the ErrAuthRequest interface
func (a *AuthRequest) GetRedirectURI() string {
	return a.RedirectURI
}

// GetResponseType returns the response_type value for the ErrAuthRequest interface
func (a *AuthRequest) GetResponseType() ResponseType {
	return a.ResponseType
}

// GetResponseMode returns the optional response_mode value for the ErrAuthRequest interface
func (a *AuthRequest) GetResponseMode() ResponseMode {
	return a.ResponseMode
}

// GetState returns the optional state value for the ErrAuthRequest interface
func (a *AuthRequest) GetState() string {
	return a.State
}

// HasPrompt reports whether prompt contains the given value.
func (a *AuthRequest) HasPrompt(prompt string) bool {
	for _, p := range a.Prompt {
		if p == prompt {
			return true
		}
	}
	return false
}

// AuthChallengeRequest is the direct, interactionless variant of the
// authorization request: first factor credentials are passed along with
// the usual authorization parameters and a code is returned in a JSON
// body instead of a redirect.
type AuthChallengeRequest struct {
	AuthRequest
	Username string `json:"-" schema:"username"`
	Password string `json:"-" schema:"password"`
}

// AuthChallengeResponse is the success body of the challenge endpoint.
type AuthChallengeResponse struct {
	AuthorizationCode string `json:"authorization_code"`
	SessionID         string `json:"session_id,omitempty"`
}
