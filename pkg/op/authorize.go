package op

import (
	"context"
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	httphelper "github.com/auric-id/auric/pkg/http"
	"github.com/auric-id/auric/pkg/oidc"
)

type Authorizer interface {
	Storage() Storage
	Decoder() httphelper.Decoder
	Encoder() httphelper.Encoder
	Crypto() Crypto
	Logger() *slog.Logger
	Evaluator() AccessEvaluator
	CookieHandler() *httphelper.CookieHandler
	Config() *Config
	Metrics() *Metrics
	AuthorizationEndpoint() *Endpoint
	IssuerFromRequest(*http.Request) string
	CodeMethodS256Supported() bool
	Insecure() bool
}

func authorizeHandler(o *Provider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		Authorize(w, r, o)
	}
}

func authorizeCallbackHandler(o *Provider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		AuthorizeCallback(w, r, o)
	}
}

func authorizeChallengeHandler(o *Provider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		AuthorizeChallenge(w, r, o)
	}
}

// protocolParams are the authorize form parameters that are not
// custom parameters of the client.
var protocolParams = map[string]bool{
	"scope": true, "response_type": true, "response_mode": true,
	"client_id": true, "redirect_uri": true, "state": true, "nonce": true,
	"display": true, "prompt": true, "max_age": true, "ui_locales": true,
	"id_token_hint": true, "login_hint": true, "acr_values": true,
	"code_challenge": true, "code_challenge_method": true,
	"authorization_details": true, "request": true, "session_id": true,
	"username": true, "password": true,
}

// ParseAuthorizeRequest parses the query or form into an AuthRequest,
// collecting unknown parameters as custom parameters.
func ParseAuthorizeRequest(r *http.Request, decoder httphelper.Decoder) (*oidc.AuthRequest, error) {
	err := r.ParseForm()
	if err != nil {
		return nil, oidc.ErrInvalidRequest().WithDescription("cannot parse form").WithParent(err)
	}
	authReq := new(oidc.AuthRequest)
	err = decoder.Decode(authReq, r.Form)
	if err != nil {
		return nil, oidc.ErrInvalidRequest().WithDescription("cannot parse auth request").WithParent(err)
	}
	for param, values := range r.Form {
		if !protocolParams[param] && len(values) > 0 {
			if authReq.CustomParameters == nil {
				authReq.CustomParameters = make(map[string]string)
			}
			authReq.CustomParameters[param] = values[0]
		}
	}
	return authReq, nil
}

// Authorize handles the authorization request. Requests from a browser
// with an active session are answered directly, everything else is
// redirected to the login UI of the client.
func Authorize(w http.ResponseWriter, r *http.Request, authorizer Authorizer) {
	ctx, span := tracer.Start(r.Context(), "Authorize")
	r = r.WithContext(ctx)
	defer span.End()

	authReq, err := ParseAuthorizeRequest(r, authorizer.Decoder())
	if err != nil {
		AuthRequestError(w, r, nil, err, authorizer)
		return
	}
	if authReq.RequestParam != "" {
		AuthRequestError(w, r, authReq,
			oidc.ErrRequestNotSupported().WithDescription("request parameter is not supported"), authorizer)
		return
	}
	client, err := ValidateAuthRequestClient(ctx, authReq, authorizer)
	if err != nil {
		AuthRequestError(w, r, authReq, err, authorizer)
		return
	}
	if err := ValidateAuthRequest(ctx, authReq, client, authorizer); err != nil {
		AuthRequestError(w, r, authReq, err, authorizer)
		return
	}
	if err := evaluateAuthorizeAccess(ctx, authorizer, authReq, client); err != nil {
		AuthRequestError(w, r, authReq, err, authorizer)
		return
	}

	state := BrowserStateFromRequest(authorizer, r)
	session, err := ActiveSession(ctx, authorizer, state)
	if err != nil {
		AuthRequestError(w, r, authReq, oidc.DefaultToServerError(err, "cannot load session"), authorizer)
		return
	}
	session = matchSession(session, authReq)

	grant := NewGrant(authReq, client.GetID(), authorizer.Config().CodeLifetime)

	if authReq.HasPrompt(oidc.PromptNone) {
		if session == nil {
			AuthRequestError(w, r, authReq, oidc.ErrLoginRequired(), authorizer)
			return
		}
		// reuse the session without any interaction
		grant.Authenticate(session)
		grant.Consent()
		if err := authorizer.Storage().CreateGrant(ctx, grant); err != nil {
			AuthRequestError(w, r, authReq, oidc.DefaultToServerError(err, "cannot store grant"), authorizer)
			return
		}
		AuthResponse(grant, authorizer, w, r)
		return
	}

	if session != nil && !authReq.HasPrompt(oidc.PromptLogin) && !authReq.HasPrompt(oidc.PromptSelectAccount) {
		// single sign-on from the existing session
		grant.Authenticate(session)
		if !authReq.HasPrompt(oidc.PromptConsent) || ConsentBypassed(client, grant.Scopes) {
			grant.Consent()
			if err := authorizer.Storage().CreateGrant(ctx, grant); err != nil {
				AuthRequestError(w, r, authReq, oidc.DefaultToServerError(err, "cannot store grant"), authorizer)
				return
			}
			AuthResponse(grant, authorizer, w, r)
			return
		}
	}

	if err := authorizer.Storage().CreateGrant(ctx, grant); err != nil {
		AuthRequestError(w, r, authReq, oidc.DefaultToServerError(err, "cannot store grant"), authorizer)
		return
	}
	RedirectToLogin(grant.ID, client, w, r)
}

// ConsentBypassed reports the no-PII shortcut: a pairwise client
// requesting only openid learns nothing but an unlinkable subject, so
// no consent step is required.
func ConsentBypassed(client Client, scopes []string) bool {
	return client.SubjectType() == oidc.SubjectTypePairwise &&
		len(scopes) == 1 && scopes[0] == oidc.ScopeOpenID
}

// matchSession invalidates the session for this request when the
// request demands a fresher or different authentication.
func matchSession(session *Session, authReq *oidc.AuthRequest) *Session {
	if session == nil {
		return nil
	}
	if authReq.SessionID != "" && authReq.SessionID != session.ID {
		return nil
	}
	if authReq.MaxAge != nil && time.Since(session.AuthTime) > time.Duration(*authReq.MaxAge)*time.Second {
		return nil
	}
	if authReq.LoginHint != "" && session.Username != authReq.LoginHint {
		return nil
	}
	return session
}

// ValidateAuthRequestClient loads the client and checks the parts of
// the request that decide whether the redirect uri can be trusted.
func ValidateAuthRequestClient(ctx context.Context, authReq *oidc.AuthRequest, authorizer Authorizer) (Client, error) {
	if authReq.ClientID == "" {
		return nil, oidc.ErrInvalidRequestRedirectURI().WithDescription("client_id missing")
	}
	client, err := authorizer.Storage().ClientByID(ctx, authReq.ClientID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, oidc.ErrInvalidRequestRedirectURI().WithDescription("unknown client")
		}
		return nil, oidc.DefaultToServerError(err, "cannot load client")
	}
	if err := ValidateAuthReqRedirectURI(client, authReq.RedirectURI, authReq.ResponseType, authorizer.Insecure()); err != nil {
		return nil, err
	}
	return client, nil
}

// ValidateAuthRequest validates the remaining request parameters
// against the client registration and server configuration.
func ValidateAuthRequest(ctx context.Context, authReq *oidc.AuthRequest, client Client, authorizer Authorizer) error {
	scopes, err := ValidateAuthReqScopes(client, authReq.Scopes)
	if err != nil {
		return err
	}
	authReq.Scopes = scopes
	if err := ValidateAuthReqResponseType(client, authReq.ResponseType); err != nil {
		return err
	}
	if authReq.ResponseMode.Unsupported() {
		return oidc.ErrInvalidRequest().WithDescription("response_mode %q is not supported", authReq.ResponseMode)
	}
	if err := ValidateAuthReqACRValues(client, authReq.ACRValues); err != nil {
		return err
	}
	if err := ValidateAuthReqAuthorizationDetails(authReq.AuthorizationDetails, client, authorizer.Config()); err != nil {
		return err
	}
	return ValidateAuthReqPKCE(client, authReq, authorizer.CodeMethodS256Supported())
}

// ValidateAuthReqScopes drops unknown scopes and fails when no
// usable scope remains or openid is missing.
func ValidateAuthReqScopes(client Client, scopes []string) ([]string, error) {
	if len(scopes) == 0 {
		return nil, oidc.ErrInvalidRequest().
			WithDescription("The scope of your request is missing. Please ensure some scopes are requested. " +
				"If you have any questions, you may contact the administrator of the application.")
	}
	openID := false
	allowed := make([]string, 0, len(scopes))
	for _, scope := range scopes {
		if scope == oidc.ScopeOpenID {
			openID = true
			allowed = append(allowed, scope)
			continue
		}
		if client.IsScopeAllowed(scope) {
			allowed = append(allowed, scope)
		}
	}
	if !openID {
		return nil, oidc.ErrInvalidScope().WithDescription("The scope openid is missing in your request. " +
			"Please ensure the scope openid is added to the request. " +
			"If you have any questions, you may contact the administrator of the application.")
	}
	return allowed, nil
}

// ValidateAuthReqRedirectURI checks the registered uris and glob
// patterns. Errors here never redirect.
func ValidateAuthReqRedirectURI(client Client, uri string, responseType oidc.ResponseType, insecure bool) error {
	if uri == "" {
		return oidc.ErrInvalidRequestRedirectURI().WithDescription("The redirect_uri is missing in the request. " +
			"Please ensure it is added to the request. If you have any questions, you may contact the administrator of the application.")
	}
	for _, registered := range client.RedirectURIs() {
		if registered == uri {
			return validateRedirectURIScheme(client, uri, insecure)
		}
	}
	if MatchAnyGlob(uri, client.RedirectURIGlobs()) {
		return validateRedirectURIScheme(client, uri, insecure)
	}
	return oidc.ErrInvalidRequestRedirectURI().
		WithDescription("The requested redirect_uri is missing in the client configuration. " +
			"If you have any questions, you may contact the administrator of the application.")
}

func validateRedirectURIScheme(client Client, uri string, insecure bool) error {
	parsed, err := url.Parse(uri)
	if err != nil {
		return oidc.ErrInvalidRequestRedirectURI().WithDescription("redirect_uri is invalid").WithParent(err)
	}
	if parsed.Scheme == "https" {
		return nil
	}
	if parsed.Scheme == "http" {
		if insecure || isLoopback(parsed) || client.Metadata().ApplicationType == oidc.ApplicationTypeNative {
			return nil
		}
		return oidc.ErrInvalidRequestRedirectURI().
			WithDescription("This client must use https for the redirect_uri.")
	}
	// custom schemes are reserved for native apps
	if client.Metadata().ApplicationType != oidc.ApplicationTypeNative {
		return oidc.ErrInvalidRequestRedirectURI().
			WithDescription("Custom redirect_uri schemes are only allowed for native applications.")
	}
	return nil
}

func isLoopback(u *url.URL) bool {
	hostname := u.Hostname()
	return hostname == "localhost" || hostname == "127.0.0.1" || hostname == "::1"
}

func ValidateAuthReqResponseType(client Client, responseType oidc.ResponseType) error {
	if responseType == "" {
		return oidc.ErrInvalidRequest().WithDescription("The response type is missing in your request. " +
			"If you have any questions, you may contact the administrator of the application.")
	}
	if !ContainsResponseType(client.ResponseTypes(), responseType) {
		return oidc.ErrUnauthorizedClient().WithDescription("The requested response type is missing in the client configuration. " +
			"If you have any questions, you may contact the administrator of the application.")
	}
	return nil
}

func ValidateAuthReqACRValues(client Client, acrValues []string) error {
	for _, acr := range acrValues {
		if !ACRAllowed(client, acr) {
			return oidc.ErrInvalidRequest().WithDescription("acr value %q is not authorized for this client", acr)
		}
	}
	return nil
}

func ValidateAuthReqAuthorizationDetails(details oidc.AuthorizationDetails, client Client, config *Config) error {
	if len(details) == 0 {
		return nil
	}
	clientTypes := client.AuthorizationDetailTypes()
	for _, typ := range details.Types() {
		if typ == "" {
			return oidc.ErrInvalidRequest().WithDescription("authorization_details entry without type")
		}
		if !containsString(config.SupportedAuthorizationDetailTypes, typ) {
			return oidc.ErrInvalidRequest().WithDescription("authorization_details type %q is not supported", typ)
		}
		if !containsString(clientTypes, typ) {
			return oidc.ErrUnauthorizedClient().WithDescription("authorization_details type %q is not registered for this client", typ)
		}
	}
	return nil
}

func ValidateAuthReqPKCE(client Client, authReq *oidc.AuthRequest, s256Required bool) error {
	if authReq.CodeChallenge == "" {
		if client.AuthMethod() == oidc.AuthMethodNone && authReq.ResponseType == oidc.ResponseTypeCode {
			return oidc.ErrInvalidRequest().WithDescription("code_challenge required for public clients")
		}
		return nil
	}
	if authReq.CodeChallengeMethod == "" {
		authReq.CodeChallengeMethod = oidc.PKCEMethodPlain
	}
	if authReq.CodeChallengeMethod != oidc.PKCEMethodPlain && authReq.CodeChallengeMethod != oidc.PKCEMethodS256 {
		return oidc.ErrInvalidRequest().WithDescription("code_challenge_method %q is not supported", authReq.CodeChallengeMethod)
	}
	if s256Required && authReq.CodeChallengeMethod == oidc.PKCEMethodPlain {
		return oidc.ErrInvalidRequest().WithDescription("code_challenge_method plain is not allowed on this server")
	}
	return nil
}

func containsString(list []string, s string) bool {
	for _, e := range list {
		if e == s {
			return true
		}
	}
	return false
}

// evaluateAuthorizeAccess asks the configured policy decision point
// whether this client may authorize this request.
func evaluateAuthorizeAccess(ctx context.Context, authorizer Authorizer, authReq *oidc.AuthRequest, client Client) error {
	evaluator := authorizer.Evaluator()
	if evaluator == nil {
		return nil
	}
	resp, err := evaluator.Evaluate(ctx, &oidc.EvaluationRequest{
		Subject: oidc.EvaluationEntity{
			Type: "client",
			ID:   client.GetID(),
		},
		Resource: oidc.EvaluationEntity{
			Type: "authorization_endpoint",
			ID:   authorizer.AuthorizationEndpoint().Relative(),
		},
		Action: oidc.EvaluationAction{
			Name: "authorize",
			Properties: map[string]any{
				"scopes":        strings.Join(authReq.Scopes, " "),
				"response_type": string(authReq.ResponseType),
			},
		},
	})
	if err != nil {
		return oidc.DefaultToServerError(err, "access evaluation failed")
	}
	if !resp.Decision {
		return oidc.ErrAccessDenied().WithDescription("denied by access policy")
	}
	return nil
}

// NewGrant creates the requested stage grant for an auth request.
func NewGrant(authReq *oidc.AuthRequest, clientID string, lifetime time.Duration) *Grant {
	now := time.Now()
	grant := &Grant{
		ID:                   uuid.NewString(),
		ClientID:             clientID,
		Scopes:               authReq.Scopes,
		AuthorizationDetails: authReq.AuthorizationDetails,
		RedirectURI:          authReq.RedirectURI,
		ResponseType:         authReq.ResponseType,
		ResponseMode:         authReq.ResponseMode,
		State:                authReq.State,
		Nonce:                authReq.Nonce,
		CustomParameters:     authReq.CustomParameters,
		Stage:                StageRequested,
		CreatedAt:            now,
		ExpiresAt:            now.Add(lifetime),
	}
	if authReq.CodeChallenge != "" {
		method := authReq.CodeChallengeMethod
		if method == "" {
			method = oidc.PKCEMethodPlain
		}
		grant.CodeChallenge = &oidc.CodeChallenge{
			Challenge: authReq.CodeChallenge,
			Method:    method,
		}
	}
	return grant
}

// Authenticate binds the grant to an authenticated session.
func (g *Grant) Authenticate(session *Session) {
	g.SessionID = session.ID
	g.Subject = session.Subject
	g.ACR = session.ACR
	g.AMR = session.AMR
	g.AuthTime = session.AuthTime
	if g.Stage == StageRequested {
		g.Stage = StageAuthenticated
	}
}

// Consent marks the grant as consented.
func (g *Grant) Consent() {
	if g.Stage == StageAuthenticated {
		g.Stage = StageConsented
	}
}

// RedirectToLogin redirects the user agent to the login UI of the
// client, carrying the grant id.
func RedirectToLogin(grantID string, client Client, w http.ResponseWriter, r *http.Request) {
	login := client.LoginURL(grantID)
	http.Redirect(w, r, login, http.StatusFound)
}

// AuthorizeCallback is called by the login UI after it finished
// authentication and consent for a grant.
func AuthorizeCallback(w http.ResponseWriter, r *http.Request, authorizer Authorizer) {
	ctx, span := tracer.Start(r.Context(), "AuthorizeCallback")
	r = r.WithContext(ctx)
	defer span.End()

	id := r.URL.Query().Get("id")
	if id == "" {
		AuthRequestError(w, r, nil, oidc.ErrInvalidRequest().WithDescription("grant id missing"), authorizer)
		return
	}
	grant, err := authorizer.Storage().GrantByID(ctx, id)
	if err != nil {
		AuthRequestError(w, r, nil, oidc.DefaultToServerError(err, "unknown grant"), authorizer)
		return
	}
	if !grant.Done() {
		AuthRequestError(w, r, grant,
			oidc.ErrInteractionRequired().WithDescription("Unfortunately, the user may be not logged in and/or additional interaction is required."),
			authorizer)
		return
	}
	// attach the session to the browser that completed the login
	if grant.SessionID != "" {
		state := BrowserStateFromRequest(authorizer, r)
		if session, err := authorizer.Storage().SessionByID(ctx, grant.SessionID); err == nil {
			if state.BrowserID == "" {
				state.BrowserID = session.BrowserID
			}
			state.AddSession(session.ID)
			if err := WriteBrowserState(authorizer, w, state); err != nil {
				authorizer.Logger().WarnContext(ctx, "write browser state", "err", err)
			}
		}
	}
	AuthResponse(grant, authorizer, w, r)
}

// AuthResponse creates the successful response for a finished grant,
// either an authorization code or tokens for the implicit flow.
func AuthResponse(grant *Grant, authorizer Authorizer, w http.ResponseWriter, r *http.Request) {
	client, err := authorizer.Storage().ClientByID(r.Context(), grant.ClientID)
	if err != nil {
		AuthRequestError(w, r, grant, oidc.DefaultToServerError(err, "unable to load client"), authorizer)
		return
	}
	if grant.ResponseType == oidc.ResponseTypeCode {
		AuthResponseCode(w, r, grant, authorizer, client)
		return
	}
	AuthResponseToken(w, r, grant, authorizer, client)
}

type codeResponse struct {
	Code      string `schema:"code"`
	State     string `schema:"state,omitempty"`
	SessionID string `schema:"session_id,omitempty"`
}

// AuthResponseCode issues the authorization code and redirects.
func AuthResponseCode(w http.ResponseWriter, r *http.Request, grant *Grant, authorizer Authorizer, client Client) {
	ctx, span := tracer.Start(r.Context(), "AuthResponseCode")
	defer span.End()

	code, err := CreateGrantCode(ctx, grant, authorizer)
	if err != nil {
		AuthRequestError(w, r, grant, err, authorizer)
		return
	}
	resp := &codeResponse{
		Code:      code,
		State:     grant.State,
		SessionID: grant.SessionID,
	}
	url, err := AuthResponseURL(grant.RedirectURI, grant.ResponseType, grant.ResponseMode, resp, authorizer.Encoder())
	if err != nil {
		AuthRequestError(w, r, grant, err, authorizer)
		return
	}
	http.Redirect(w, r, url, http.StatusFound)
}

// AuthResponseToken issues tokens directly for the implicit and
// hybrid flows and responds in the fragment.
func AuthResponseToken(w http.ResponseWriter, r *http.Request, grant *Grant, authorizer Authorizer, client Client) {
	ctx, span := tracer.Start(r.Context(), "AuthResponseToken")
	defer span.End()

	if grant.ResponseMode == "" {
		grant.ResponseMode = oidc.ResponseModeFragment
	}
	creator, ok := authorizer.(TokenCreator)
	if !ok {
		AuthRequestError(w, r, grant, oidc.ErrUnsupportedResponseType().WithDescription("implicit flow not available"), authorizer)
		return
	}
	resp, err := CreateImplicitTokenResponse(ctx, grant, creator, client)
	if err != nil {
		AuthRequestError(w, r, grant, err, authorizer)
		return
	}
	url, err := AuthResponseURL(grant.RedirectURI, grant.ResponseType, grant.ResponseMode, resp, authorizer.Encoder())
	if err != nil {
		AuthRequestError(w, r, grant, err, authorizer)
		return
	}
	http.Redirect(w, r, url, http.StatusFound)
}

// CreateGrantCode mints the opaque code bound to the grant and moves
// the grant to the issued stage.
func CreateGrantCode(ctx context.Context, grant *Grant, authorizer Authorizer) (string, error) {
	if !grant.Done() {
		return "", oidc.ErrServerError().WithDescription("grant is not ready for code issuance")
	}
	code, err := authorizer.Crypto().Encrypt(grant.ID)
	if err != nil {
		return "", oidc.DefaultToServerError(err, "unable to create code")
	}
	if err := authorizer.Storage().BindGrantCode(ctx, grant.ID, code); err != nil {
		return "", oidc.DefaultToServerError(err, "unable to store code")
	}
	grant.Stage = StageIssued
	if err := authorizer.Storage().UpdateGrant(ctx, grant); err != nil {
		return "", oidc.DefaultToServerError(err, "unable to update grant")
	}
	authorizer.Metrics().CodesIssued.Inc()
	return code, nil
}

// AuthResponseURL encodes the response into the redirect uri,
// by query for codes, by fragment for tokens, unless a response_mode
// overrides the default.
func AuthResponseURL(redirectURI string, responseType oidc.ResponseType, responseMode oidc.ResponseMode, response any, encoder httphelper.Encoder) (string, error) {
	uri, err := url.Parse(redirectURI)
	if err != nil {
		return "", oidc.ErrServerError().WithParent(err)
	}
	params, err := httphelper.URLEncodeParams(response, encoder)
	if err != nil {
		return "", oidc.ErrServerError().WithParent(err)
	}
	switch responseMode {
	case oidc.ResponseModeQuery:
		return mergeQueryParams(uri, params), nil
	case oidc.ResponseModeFragment:
		return setFragment(uri, params), nil
	}
	// without a response_mode, codes go into the query,
	// token bearing responses into the fragment
	if responseType == "" || responseType == oidc.ResponseTypeCode {
		return mergeQueryParams(uri, params), nil
	}
	return setFragment(uri, params), nil
}

func setFragment(uri *url.URL, params url.Values) string {
	uri.Fragment = params.Encode()
	return uri.String()
}

func mergeQueryParams(uri *url.URL, params url.Values) string {
	queries := uri.Query()
	for param, values := range params {
		for _, value := range values {
			queries.Add(param, value)
		}
	}
	uri.RawQuery = queries.Encode()
	return uri.String()
}

var formPostTmpl = template.Must(template.New("form_post").Parse(
	`<!doctype html><html><body onload="document.forms[0].submit()">` +
		`<form method="post" action="{{.RedirectURI}}">` +
		`{{range $name, $values := .Params}}{{range $values}}` +
		`<input type="hidden" name="{{$name}}" value="{{.}}"/>` +
		`{{end}}{{end}}` +
		`<noscript><button type="submit">Continue</button></noscript>` +
		`</form></body></html>`))

// AuthResponseFormPost renders the self submitting form of the
// form_post response mode.
func AuthResponseFormPost(w http.ResponseWriter, redirectURI string, response any, encoder httphelper.Encoder) error {
	params, err := httphelper.URLEncodeParams(response, encoder)
	if err != nil {
		return oidc.ErrServerError().WithParent(err)
	}
	w.Header().Set("content-type", "text/html; charset=utf-8")
	return formPostTmpl.Execute(w, struct {
		RedirectURI string
		Params      url.Values
	}{redirectURI, params})
}

// AuthorizeChallenge is the interactionless variant of Authorize:
// first factor credentials are exchanged directly for an
// authorization code, RFC-style first party flow.
func AuthorizeChallenge(w http.ResponseWriter, r *http.Request, authorizer Authorizer) {
	ctx, span := tracer.Start(r.Context(), "AuthorizeChallenge")
	r = r.WithContext(ctx)
	defer span.End()

	if err := r.ParseForm(); err != nil {
		RequestError(w, r, oidc.ErrInvalidRequest().WithDescription("cannot parse form"), authorizer.Logger())
		return
	}
	challengeReq := new(oidc.AuthChallengeRequest)
	if err := authorizer.Decoder().Decode(challengeReq, r.Form); err != nil {
		RequestError(w, r, oidc.ErrInvalidRequest().WithDescription("cannot parse challenge request").WithParent(err), authorizer.Logger())
		return
	}
	authReq := &challengeReq.AuthRequest
	authReq.ResponseType = oidc.ResponseTypeCode

	client, err := ValidateAuthRequestClient(ctx, authReq, authorizer)
	if err != nil {
		RequestError(w, r, err, authorizer.Logger())
		return
	}
	if err := ValidateAuthRequest(ctx, authReq, client, authorizer); err != nil {
		RequestError(w, r, err, authorizer.Logger())
		return
	}

	var session *Session
	if authReq.SessionID != "" {
		// an existing session can be presented instead of credentials
		session, err = authorizer.Storage().SessionByID(ctx, authReq.SessionID)
		if err != nil {
			RequestError(w, r, oidc.ErrSessionNotPassed().WithDescription("unknown session"), authorizer.Logger())
			return
		}
	} else {
		if challengeReq.Username == "" || challengeReq.Password == "" {
			RequestError(w, r, oidc.ErrInvalidRequest().WithDescription("username and password required"), authorizer.Logger())
			return
		}
		subject, err := authorizer.Storage().AuthenticateUser(ctx, challengeReq.Username, challengeReq.Password)
		if err != nil {
			RequestError(w, r, err, authorizer.Logger())
			return
		}
		acr := firstAllowedACR(client, authReq.ACRValues)
		session, err = NewSession(ctx, authorizer, new(BrowserState), subject, challengeReq.Username, acr, []string{"pwd"}, nil)
		if err != nil {
			RequestError(w, r, oidc.DefaultToServerError(err, "cannot create session"), authorizer.Logger())
			return
		}
		authorizer.Metrics().SessionsCreated.Inc()
	}

	grant := NewGrant(authReq, client.GetID(), authorizer.Config().CodeLifetime)
	grant.Authenticate(session)
	grant.Consent()
	if err := authorizer.Storage().CreateGrant(ctx, grant); err != nil {
		RequestError(w, r, oidc.DefaultToServerError(err, "cannot store grant"), authorizer.Logger())
		return
	}
	code, err := CreateGrantCode(ctx, grant, authorizer)
	if err != nil {
		RequestError(w, r, err, authorizer.Logger())
		return
	}
	httphelper.MarshalJSON(w, &oidc.AuthChallengeResponse{
		AuthorizationCode: code,
		SessionID:         session.ID,
	})
}

func firstAllowedACR(client Client, requested []string) string {
	for _, acr := range requested {
		if ACRAllowed(client, acr) {
			return acr
		}
	}
	return ""
}
