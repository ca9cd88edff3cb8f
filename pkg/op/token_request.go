package op

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"

	httphelper "github.com/auric-id/auric/pkg/http"
	"github.com/auric-id/auric/pkg/oidc"
)

type Exchanger interface {
	Storage() Storage
	Decoder() httphelper.Decoder
	Crypto() Crypto
	Config() *Config
	Logger() *slog.Logger
	Metrics() *Metrics
	AuthMethodPostSupported() bool
	AuthMethodPrivateKeyJWTSupported() bool
	GrantTypeRefreshTokenSupported() bool
	GrantTypePasswordSupported() bool
}

func tokenHandler(o *Provider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		Exchange(w, r, o)
	}
}

// Exchange dispatches the token request by its grant type.
func Exchange(w http.ResponseWriter, r *http.Request, exchanger *Provider) {
	ctx, span := tracer.Start(r.Context(), "Exchange")
	r = r.WithContext(ctx)
	defer span.End()

	grantType := r.FormValue("grant_type")
	switch oidc.GrantType(grantType) {
	case oidc.GrantTypeCode:
		CodeExchange(w, r, exchanger)
		return
	case oidc.GrantTypeRefreshToken:
		if exchanger.GrantTypeRefreshTokenSupported() {
			RefreshTokenExchange(w, r, exchanger)
			return
		}
	case oidc.GrantTypeClientCredentials:
		ClientCredentialsExchange(w, r, exchanger)
		return
	case oidc.GrantTypePassword:
		if exchanger.GrantTypePasswordSupported() {
			PasswordExchange(w, r, exchanger)
			return
		}
	case "":
		RequestError(w, r, oidc.ErrInvalidRequest().WithDescription("grant_type missing"), exchanger.Logger())
		return
	}
	RequestError(w, r, oidc.ErrUnsupportedGrantType().WithDescription("%s not supported", grantType), exchanger.Logger())
}

// AuthenticatedTokenRequest is a token request with client
// credentials that may arrive in the basic auth header instead of the
// form.
type AuthenticatedTokenRequest interface {
	SetClientID(string)
	SetClientSecret(string)
}

// ParseAuthenticatedTokenRequest parses the form into the request
// and merges in basic auth credentials.
func ParseAuthenticatedTokenRequest[T AuthenticatedTokenRequest](r *http.Request, decoder httphelper.Decoder, request T) (T, error) {
	if err := r.ParseForm(); err != nil {
		return request, oidc.ErrInvalidRequest().WithDescription("error parsing form").WithParent(err)
	}
	if err := decoder.Decode(request, r.PostForm); err != nil {
		return request, oidc.ErrInvalidRequest().WithDescription("error decoding form").WithParent(err)
	}
	clientID, clientSecret, ok := r.BasicAuth()
	if ok {
		// client id and secret are form encoded inside basic auth
		clientID, err := url.QueryUnescape(clientID)
		if err != nil {
			return request, oidc.ErrInvalidClient().WithDescription("invalid basic auth header").WithParent(err)
		}
		clientSecret, err = url.QueryUnescape(clientSecret)
		if err != nil {
			return request, oidc.ErrInvalidClient().WithDescription("invalid basic auth header").WithParent(err)
		}
		request.SetClientID(clientID)
		request.SetClientSecret(clientSecret)
	}
	return request, nil
}

// AuthorizeClient authenticates a client by the method it registered.
// Public clients pass with the bare id.
func AuthorizeClient(ctx context.Context, exchanger Exchanger, clientID, clientSecret string) (Client, error) {
	ctx, span := tracer.Start(ctx, "AuthorizeClient")
	defer span.End()

	if clientID == "" {
		return nil, oidc.ErrInvalidClient().WithDescription("client_id missing")
	}
	client, err := exchanger.Storage().ClientByID(ctx, clientID)
	if err != nil {
		return nil, oidc.ErrInvalidClient().WithDescription("unknown client").WithParent(err)
	}
	switch client.AuthMethod() {
	case oidc.AuthMethodNone:
		if clientSecret != "" {
			return nil, oidc.ErrInvalidClient().WithDescription("this client must not authenticate")
		}
		return client, nil
	case oidc.AuthMethodPost:
		if !exchanger.AuthMethodPostSupported() {
			return nil, oidc.ErrInvalidClient().WithDescription("auth_method post not supported")
		}
	case oidc.AuthMethodPrivateKeyJWT:
		return nil, oidc.ErrInvalidClient().WithDescription("private_key_jwt assertion missing")
	}
	if err := exchanger.Storage().AuthorizeClientIDSecret(ctx, clientID, clientSecret); err != nil {
		return nil, oidc.ErrInvalidClient().WithDescription("invalid client credentials").WithParent(err)
	}
	return client, nil
}
