package oidc

// GrantTypes reports the grant_type a parsed token request asks for,
// used to authorize the client for that grant.
type GrantTypes interface {
	GrantType() GrantType
}

type AccessTokenRequest struct {
	Code         string `schema:"code"`
	RedirectURI  string `schema:"redirect_uri"`
	ClientID     string `schema:"client_id"`
	ClientSecret string `schema:"client_secret"`
	CodeVerifier string `schema:"code_verifier"`
}

func (a *AccessTokenRequest) GrantType() GrantType {
	return GrantTypeCode
}

// SetClientID implements op.AuthenticatedTokenRequest
func (a *AccessTokenRequest) SetClientID(clientID string) {
	a.ClientID = clientID
}

// SetClientSecret implements op.AuthenticatedTokenRequest
func (a *AccessTokenRequest) SetClientSecret(clientSecret string) {
	a.ClientSecret = clientSecret
}

type RefreshTokenRequest struct {
	RefreshToken string              `schema:"refresh_token"`
	Scopes       SpaceDelimitedArray `schema:"scope"`
	ClientID     string              `schema:"client_id"`
	ClientSecret string              `schema:"client_secret"`
}

func (a *RefreshTokenRequest) GrantType() GrantType {
	return GrantTypeRefreshToken
}

// SetClientID implements op.AuthenticatedTokenRequest
func (a *RefreshTokenRequest) SetClientID(clientID string) {
	a.ClientID = clientID
}

// SetClientSecret implements op.AuthenticatedTokenRequest
func (a *RefreshTokenRequest) SetClientSecret(clientSecret string) {
	a.ClientSecret = clientSecret
}

type ClientCredentialsRequest struct {
	GrantType GrantType           `schema:"grant_type"`
	Scope     SpaceDelimitedArray `schema:"scope"`
	ClientID  string              `schema:"client_id"`
	ClientSecret string           `schema:"client_secret"`
}

// SetClientID implements op.AuthenticatedTokenRequest
func (c *ClientCredentialsRequest) SetClientID(clientID string) {
	c.ClientID = clientID
}

// SetClientSecret implements op.AuthenticatedTokenRequest
func (c *ClientCredentialsRequest) SetClientSecret(clientSecret string) {
	c.ClientSecret = clientSecret
}

// PasswordGrantRequest is the resource owner password credentials grant.
type PasswordGrantRequest struct {
	GrantType    GrantType           `schema:"grant_type"`
	Username     string              `schema:"username"`
	Password     string              `schema:"password"`
	Scope        SpaceDelimitedArray `schema:"scope"`
	ClientID     string              `schema:"client_id"`
	ClientSecret string              `schema:"client_secret"`
}

// SetClientID implements op.AuthenticatedTokenRequest
func (p *PasswordGrantRequest) SetClientID(clientID string) {
	p.ClientID = clientID
}

// SetClientSecret implements op.AuthenticatedTokenRequest
func (p *PasswordGrantRequest) SetClientSecret(clientSecret string) {
	p.ClientSecret = clientSecret
}
