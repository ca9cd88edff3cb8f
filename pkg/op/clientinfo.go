package op

import (
	"log/slog"
	"net/http"

	httphelper "github.com/auric-id/auric/pkg/http"
	"github.com/auric-id/auric/pkg/oidc"
)

type ClientProvider interface {
	Storage() Storage
	Logger() *slog.Logger
}

func clientinfoHandler(o *Provider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		Clientinfo(w, r, o)
	}
}

// Clientinfo returns the public registration data of the client an
// access token was issued to. Secrets and the registration access
// token are never included.
func Clientinfo(w http.ResponseWriter, r *http.Request, p *Provider) {
	ctx, span := tracer.Start(r.Context(), "Clientinfo")
	r = r.WithContext(ctx)
	defer span.End()

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
	client, err := p.Storage().ClientByID(ctx, record.ClientID)
	if err != nil {
		RequestError(w, r, oidc.DefaultToServerError(err, "cannot load client"), p.Logger())
		return
	}
	resp := &oidc.ClientInformationResponse{
		ClientID:       client.GetID(),
		ClientMetadata: *client.Metadata(),
	}
	if expiry := client.SecretExpiresAt(); !expiry.IsZero() {
		resp.ClientSecretExpiresAt = oidc.FromTime(expiry)
	}
	httphelper.MarshalJSON(w, resp)
}
