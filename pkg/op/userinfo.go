package op

import (
	"log/slog"
	"net/http"

	"github.com/auric-id/auric/pkg/crypto"
	httphelper "github.com/auric-id/auric/pkg/http"
	"github.com/auric-id/auric/pkg/oidc"
)

type UserinfoProvider interface {
	Storage() Storage
	Decoder() httphelper.Decoder
	Crypto() Crypto
	Logger() *slog.Logger
}

func userinfoHandler(o *Provider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		Userinfo(w, r, o)
	}
}

// Userinfo returns the claims of the user an access token was issued
// for, limited by the scopes of the token.
func Userinfo(w http.ResponseWriter, r *http.Request, p *Provider) {
	ctx, span := tracer.Start(r.Context(), "Userinfo")
	r = r.WithContext(ctx)
	defer span.End()

	if err := r.ParseForm(); err != nil {
		RequestError(w, r, oidc.ErrInvalidRequest().WithDescription("cannot parse form"), p.Logger())
		return
	}
	token := BearerTokenFromRequest(r)
	if token == "" {
		RequestError(w, r, oidc.ErrInvalidToken().WithDescription("access token missing"), p.Logger())
		return
	}
	record, err := ResolveAccessToken(ctx, token, p)
	if err != nil {
		RequestError(w, r, err, p.Logger())
		return
	}
	if !containsString(record.Scopes, oidc.ScopeOpenID) {
		RequestError(w, r, oidc.ErrAccessDenied().WithDescription("token is missing the openid scope"), p.Logger())
		return
	}
	client, err := p.Storage().ClientByID(ctx, record.ClientID)
	if err != nil {
		RequestError(w, r, oidc.DefaultToServerError(err, "cannot load client"), p.Logger())
		return
	}
	userInfo, err := p.Storage().UserInfoBySubject(ctx, record.Subject, record.Scopes)
	if err != nil {
		RequestError(w, r, oidc.DefaultToServerError(err, "cannot load userinfo"), p.Logger())
		return
	}
	userInfo.Subject = SubjectForClient(client, record.Subject, p.Config())

	if alg := client.Metadata().UserinfoSignedResponseAlg; alg != "" {
		_, signer, err := signingKeyAndSigner(ctx, p.Storage())
		if err != nil {
			RequestError(w, r, oidc.DefaultToServerError(err, "no signing key available"), p.Logger())
			return
		}
		userInfo.AppendClaims("iss", IssuerFromContext(ctx))
		userInfo.AppendClaims("aud", client.GetID())
		signed, err := crypto.Sign(userInfo, signer)
		if err != nil {
			RequestError(w, r, oidc.DefaultToServerError(err, "cannot sign userinfo"), p.Logger())
			return
		}
		w.Header().Set("content-type", "application/jwt")
		_, _ = w.Write([]byte(signed))
		return
	}
	httphelper.MarshalJSON(w, userInfo)
}
