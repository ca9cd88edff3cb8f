package op

import (
	"log/slog"
	"net/http"
	"net/url"

	"github.com/auric-id/auric/pkg/crypto"
	httphelper "github.com/auric-id/auric/pkg/http"
	"github.com/auric-id/auric/pkg/oidc"
)

type Introspector interface {
	Storage() Storage
	Decoder() httphelper.Decoder
	Crypto() Crypto
	Logger() *slog.Logger
	Metrics() *Metrics
}

func introspectionHandler(o *Provider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		Introspect(w, r, o)
	}
}

// Introspect handles the token introspection request of RFC 7662.
// Client authentication failures are rejected, any problem with the
// token itself degrades to an inactive response.
func Introspect(w http.ResponseWriter, r *http.Request, p *Provider) {
	ctx, span := tracer.Start(r.Context(), "Introspect")
	r = r.WithContext(ctx)
	defer span.End()

	if err := r.ParseForm(); err != nil {
		RequestError(w, r, oidc.ErrInvalidRequest().WithDescription("cannot parse form"), p.Logger())
		return
	}
	introspectReq := new(oidc.IntrospectionRequest)
	if err := p.Decoder().Decode(introspectReq, r.PostForm); err != nil {
		RequestError(w, r, oidc.ErrInvalidRequest().WithDescription("cannot parse introspection request").WithParent(err), p.Logger())
		return
	}
	client, err := authorizeIntrospectionClient(r, p)
	if err != nil {
		RequestError(w, r, err, p.Logger())
		return
	}
	if introspectReq.Token == "" {
		RequestError(w, r, oidc.ErrInvalidRequest().WithDescription("token missing"), p.Logger())
		return
	}

	record, err := ResolveAccessToken(ctx, introspectReq.Token, p)
	if err != nil {
		p.Metrics().Introspections.WithLabelValues("false").Inc()
		respondIntrospection(w, r, p, client, &oidc.IntrospectionResponse{Active: false})
		return
	}
	resp := &oidc.IntrospectionResponse{
		Active:               true,
		Scope:                record.Scopes,
		ClientID:             record.ClientID,
		TokenType:            oidc.BearerToken,
		Expiration:           oidc.FromTime(record.ExpiresAt),
		IssuedAt:             oidc.FromTime(record.CreatedAt),
		Subject:              record.Subject,
		Audience:             record.Audience,
		Issuer:               IssuerFromContext(ctx),
		JWTID:                record.ID,
		SessionID:            record.SessionID,
		AuthorizationDetails: record.AuthorizationDetails,
	}
	if record.SessionID != "" {
		if session, err := p.Storage().SessionByID(ctx, record.SessionID); err == nil {
			resp.Username = session.Username
			resp.AuthTime = oidc.FromTime(session.AuthTime)
			resp.AuthenticationContextClassReference = session.ACR
		}
	}
	if record.Subject != record.ClientID {
		if userInfo, err := p.Storage().UserInfoBySubject(ctx, record.Subject, record.Scopes); err == nil {
			resp.SetUserInfo(userInfo)
		}
	}
	p.Metrics().Introspections.WithLabelValues("true").Inc()
	respondIntrospection(w, r, p, client, resp)
}

// authorizeIntrospectionClient authenticates the caller, either with a
// valid access token as bearer auth or with basic / form client
// credentials.
func authorizeIntrospectionClient(r *http.Request, p *Provider) (Client, error) {
	if token := BearerTokenFromRequest(r); token != "" {
		record, err := ResolveAccessToken(r.Context(), token, p)
		if err != nil {
			return nil, oidc.ErrInvalidClient().WithDescription("invalid bearer token").WithParent(err)
		}
		client, err := p.Storage().ClientByID(r.Context(), record.ClientID)
		if err != nil {
			return nil, oidc.ErrInvalidClient().WithDescription("unknown client").WithParent(err)
		}
		return client, nil
	}
	clientID, clientSecret, ok := r.BasicAuth()
	if ok {
		var err error
		if clientID, err = url.QueryUnescape(clientID); err != nil {
			return nil, oidc.ErrInvalidClient().WithDescription("invalid basic auth header").WithParent(err)
		}
		if clientSecret, err = url.QueryUnescape(clientSecret); err != nil {
			return nil, oidc.ErrInvalidClient().WithDescription("invalid basic auth header").WithParent(err)
		}
	} else {
		clientID = r.PostFormValue("client_id")
		clientSecret = r.PostFormValue("client_secret")
	}
	if clientID == "" || clientSecret == "" {
		return nil, oidc.ErrInvalidClient().WithDescription("client credentials missing")
	}
	client, err := p.Storage().ClientByID(r.Context(), clientID)
	if err != nil {
		return nil, oidc.ErrInvalidClient().WithDescription("unknown client").WithParent(err)
	}
	if err := p.Storage().AuthorizeClientIDSecret(r.Context(), clientID, clientSecret); err != nil {
		return nil, oidc.ErrInvalidClient().WithDescription("invalid client credentials").WithParent(err)
	}
	return client, nil
}

// respondIntrospection writes the response, signed as a JWT when the
// client registered an introspection signing algorithm.
func respondIntrospection(w http.ResponseWriter, r *http.Request, p *Provider, client Client, resp *oidc.IntrospectionResponse) {
	if client.IntrospectionSigAlgorithm() == "" {
		httphelper.MarshalJSON(w, resp)
		return
	}
	_, signer, err := signingKeyAndSigner(r.Context(), p.Storage())
	if err != nil {
		RequestError(w, r, oidc.DefaultToServerError(err, "no signing key available"), p.Logger())
		return
	}
	claims := &oidc.IntrospectionJWTClaims{
		Issuer:             IssuerFromContext(r.Context()),
		Audience:           []string{client.GetID()},
		IssuedAt:           oidc.NowTime(),
		TokenIntrospection: resp,
	}
	signed, err := crypto.Sign(claims, signer)
	if err != nil {
		RequestError(w, r, oidc.DefaultToServerError(err, "cannot sign introspection response"), p.Logger())
		return
	}
	w.Header().Set("content-type", "application/token-introspection+jwt")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(signed))
}
