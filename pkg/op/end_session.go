package op

import (
	"context"
	"html/template"
	"log/slog"
	"net/http"
	"net/url"

	httphelper "github.com/auric-id/auric/pkg/http"
	"github.com/auric-id/auric/pkg/oidc"
)

type SessionEnder interface {
	Storage() Storage
	Decoder() httphelper.Decoder
	Logger() *slog.Logger
	Metrics() *Metrics
	CookieHandler() *httphelper.CookieHandler
	DefaultLogoutRedirectURI() string
}

func endSessionHandler(o *Provider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		EndSession(w, r, o)
	}
}

func revokeSessionHandler(o *Provider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		RevokeSessions(w, r, o)
	}
}

// EndSession implements RP initiated logout. The session is resolved
// from the sid parameter, the id_token_hint or the browser cookie, in
// that order.
func EndSession(w http.ResponseWriter, r *http.Request, p *Provider) {
	ctx, span := tracer.Start(r.Context(), "EndSession")
	r = r.WithContext(ctx)
	defer span.End()

	if err := r.ParseForm(); err != nil {
		RequestError(w, r, oidc.ErrInvalidRequest().WithDescription("cannot parse form"), p.Logger())
		return
	}
	endSessionReq := new(oidc.EndSessionRequest)
	if err := p.Decoder().Decode(endSessionReq, r.Form); err != nil {
		RequestError(w, r, oidc.ErrInvalidRequest().WithDescription("cannot parse end session request").WithParent(err), p.Logger())
		return
	}

	clientID := endSessionReq.ClientID
	sessionID := endSessionReq.SessionID
	if endSessionReq.IdTokenHint != "" {
		claims, err := VerifyIDTokenHint(ctx, endSessionReq.IdTokenHint, p)
		if err != nil {
			RequestError(w, r, err, p.Logger())
			return
		}
		if clientID == "" {
			clientID = claims.ClientID
		}
		if sessionID == "" {
			sessionID = claims.SessionID
		}
	}

	state := BrowserStateFromRequest(p, r)
	if sessionID == "" {
		sessionID = state.SessionID
	}
	if sessionID == "" {
		RequestError(w, r, oidc.ErrInvalidGrantAndSession().WithDescription("no session to end"), p.Logger())
		return
	}

	var client Client
	if clientID != "" {
		c, err := p.Storage().ClientByID(ctx, clientID)
		if err != nil {
			RequestError(w, r, oidc.ErrInvalidRequest().WithDescription("unknown client").WithParent(err), p.Logger())
			return
		}
		client = c
	}
	redirectURI, err := logoutRedirectURI(endSessionReq, client, p)
	if err != nil {
		RequestError(w, r, err, p.Logger())
		return
	}

	if err := p.Storage().RevokeTokensForSession(ctx, sessionID); err != nil {
		p.Logger().ErrorContext(ctx, "revoke session tokens on logout", "session_id", sessionID, "err", err)
	}
	if err := p.Storage().TerminateSession(ctx, sessionID); err != nil {
		RequestError(w, r, oidc.ErrInvalidGrantAndSession().WithDescription("session already ended").WithParent(err), p.Logger())
		return
	}
	p.Metrics().SessionsTerminated.Inc()

	state.RemoveSession(sessionID)
	if err := WriteBrowserState(p, w, state); err != nil {
		p.Logger().WarnContext(ctx, "write browser state", "err", err)
	}

	if endSessionReq.State != "" && redirectURI != "" {
		parsed, err := url.Parse(redirectURI)
		if err == nil {
			query := parsed.Query()
			query.Set("state", endSessionReq.State)
			parsed.RawQuery = query.Encode()
			redirectURI = parsed.String()
		}
	}
	writeLogoutPage(ctx, w, sessionID, client, redirectURI, p)
}

// writeLogoutPage renders the logout confirmation. The client's front
// channel logout uri is embedded as a hidden notification frame, the
// post logout redirect uri as the continue link.
func writeLogoutPage(ctx context.Context, w http.ResponseWriter, sessionID string, client Client, redirectURI string, p *Provider) {
	var frontChannelURI string
	if client != nil {
		frontChannelURI = client.Metadata().FrontChannelLogoutURI
		if frontChannelURI != "" && client.Metadata().FrontChannelLogoutSessionRequired {
			if parsed, err := url.Parse(frontChannelURI); err == nil {
				query := parsed.Query()
				query.Set("iss", IssuerFromContext(ctx))
				query.Set("sid", sessionID)
				parsed.RawQuery = query.Encode()
				frontChannelURI = parsed.String()
			}
		}
	}
	w.Header().Set("content-type", "text/html; charset=utf-8")
	err := logoutTmpl.Execute(w, struct {
		FrontChannelLogoutURI string
		PostLogoutRedirectURI string
	}{frontChannelURI, redirectURI})
	if err != nil {
		p.Logger().ErrorContext(ctx, "render logout page", "err", err)
	}
}

var logoutTmpl = template.Must(template.New("logged_out").Parse(
	`<!doctype html><html><body>` +
		`<h1>You have been signed out</h1>` +
		`{{if .FrontChannelLogoutURI}}<iframe style="display:none" src="{{.FrontChannelLogoutURI}}"></iframe>{{end}}` +
		`{{if .PostLogoutRedirectURI}}<a href="{{.PostLogoutRedirectURI}}">Continue</a>{{end}}` +
		`</body></html>`))

// logoutRedirectURI validates a requested post_logout_redirect_uri
// against the client registration, falling back to the server
// default.
func logoutRedirectURI(endSessionReq *oidc.EndSessionRequest, client Client, p *Provider) (string, error) {
	requested := endSessionReq.PostLogoutRedirectURI
	if requested == "" {
		return p.DefaultLogoutRedirectURI(), nil
	}
	if client == nil {
		return "", oidc.ErrInvalidRequest().WithDescription("post_logout_redirect_uri requires a client_id or id_token_hint")
	}
	for _, registered := range client.Metadata().PostLogoutRedirectURIs {
		if registered == requested {
			return requested, nil
		}
	}
	if MatchAnyGlob(requested, client.PostLogoutRedirectURIGlobs()) {
		return requested, nil
	}
	return "", oidc.ErrInvalidRequest().WithDescription("post_logout_redirect_uri is not registered for this client")
}

// RevokeSessions is the administrative bulk logout: every session of
// the users matching the criterion is terminated and their tokens
// revoked.
func RevokeSessions(w http.ResponseWriter, r *http.Request, p *Provider) {
	ctx, span := tracer.Start(r.Context(), "RevokeSessions")
	r = r.WithContext(ctx)
	defer span.End()

	if _, err := RequireTokenScope(ctx, r, p, p.Config().RevokeSessionScope); err != nil {
		RequestError(w, r, err, p.Logger())
		return
	}
	if err := r.ParseForm(); err != nil {
		RequestError(w, r, oidc.ErrInvalidRequest().WithDescription("cannot parse form"), p.Logger())
		return
	}
	revokeReq := new(oidc.RevokeSessionRequest)
	if err := p.Decoder().Decode(revokeReq, r.PostForm); err != nil {
		RequestError(w, r, oidc.ErrInvalidRequest().WithDescription("cannot parse revoke session request").WithParent(err), p.Logger())
		return
	}
	if revokeReq.UserCriterionKey == "" || revokeReq.UserCriterionValue == "" {
		RequestError(w, r, oidc.ErrInvalidRequest().WithDescription("user_criterion_key and user_criterion_value required"), p.Logger())
		return
	}
	revoked, err := p.Storage().TerminateSessionsByUserAttribute(ctx, revokeReq.UserCriterionKey, revokeReq.UserCriterionValue)
	if err != nil {
		RequestError(w, r, oidc.DefaultToServerError(err, "cannot revoke sessions"), p.Logger())
		return
	}
	p.Metrics().SessionsTerminated.Add(float64(revoked))
	httphelper.MarshalJSON(w, &oidc.RevokeSessionResponse{Revoked: revoked})
}
