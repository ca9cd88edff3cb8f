package oidc

// EndSessionRequest for the RP-initiated logout,
// https://openid.net/specs/openid-connect-rpinitiated-1_0.html
type EndSessionRequest struct {
	IdTokenHint           string  `schema:"id_token_hint"`
	ClientID              string  `schema:"client_id"`
	SessionID             string  `schema:"sid"`
	PostLogoutRedirectURI string  `schema:"post_logout_redirect_uri"`
	State                 string  `schema:"state"`
	UILocales             Locales `schema:"ui_locales"`
}

// RevokeSessionRequest terminates all sessions whose subject matches
// the given user attribute, for example userinfo claim uid or email.
type RevokeSessionRequest struct {
	UserCriterionKey   string `schema:"user_criterion_key"`
	UserCriterionValue string `schema:"user_criterion_value"`
}

// RevokeSessionResponse reports the number of sessions terminated.
type RevokeSessionResponse struct {
	Revoked int `json:"revoked"`
}
