package op

import (
	"net/http"
	"time"

	httphelper "github.com/auric-id/auric/pkg/http"
	"github.com/auric-id/auric/pkg/oidc"
)

// PasswordExchange handles the resource owner password grant for
// clients explicitly registered for it.
func PasswordExchange(w http.ResponseWriter, r *http.Request, exchanger *Provider) {
	ctx, span := tracer.Start(r.Context(), "PasswordExchange")
	r = r.WithContext(ctx)
	defer span.End()

	tokenReq, err := ParseAuthenticatedTokenRequest(r, exchanger.Decoder(), new(oidc.PasswordGrantRequest))
	if err != nil {
		RequestError(w, r, err, exchanger.Logger())
		return
	}
	client, err := AuthorizeClient(ctx, exchanger, tokenReq.ClientID, tokenReq.ClientSecret)
	if err != nil {
		RequestError(w, r, err, exchanger.Logger())
		return
	}
	if err := ValidateGrantType(client, oidc.GrantTypePassword); err != nil {
		RequestError(w, r, err, exchanger.Logger())
		return
	}
	if tokenReq.Username == "" || tokenReq.Password == "" {
		RequestError(w, r, oidc.ErrInvalidRequest().WithDescription("username and password required"), exchanger.Logger())
		return
	}
	subject, err := exchanger.Storage().AuthenticateUser(ctx, tokenReq.Username, tokenReq.Password)
	if err != nil {
		RequestError(w, r, err, exchanger.Logger())
		return
	}
	scopes := make([]string, 0, len(tokenReq.Scope))
	for _, scope := range tokenReq.Scope {
		if scope == oidc.ScopeOpenID || scope == oidc.ScopeOfflineAccess || client.IsScopeAllowed(scope) {
			scopes = append(scopes, scope)
		}
	}
	issuance := &TokenIssuance{
		ClientID:         client.GetID(),
		Subject:          subject,
		Scopes:           scopes,
		AMR:              []string{"pwd"},
		AuthTime:         time.Now(),
		GrantType:        oidc.GrantTypePassword,
		TokenBindingHash: TokenBindingHash(r),
	}
	resp, err := CreateTokenResponse(ctx, issuance, client, exchanger, "", "")
	if err != nil {
		RequestError(w, r, err, exchanger.Logger())
		return
	}
	httphelper.MarshalJSON(w, resp)
}
