package op

import (
	"net/http"

	httphelper "github.com/auric-id/auric/pkg/http"
	"github.com/auric-id/auric/pkg/oidc"
)

// ClientCredentialsExchange handles the client_credentials grant.
// The client itself becomes the token subject, no user and no
// refresh token are involved.
func ClientCredentialsExchange(w http.ResponseWriter, r *http.Request, exchanger *Provider) {
	ctx, span := tracer.Start(r.Context(), "ClientCredentialsExchange")
	r = r.WithContext(ctx)
	defer span.End()

	tokenReq, err := ParseAuthenticatedTokenRequest(r, exchanger.Decoder(), new(oidc.ClientCredentialsRequest))
	if err != nil {
		RequestError(w, r, err, exchanger.Logger())
		return
	}
	client, err := AuthorizeClient(ctx, exchanger, tokenReq.ClientID, tokenReq.ClientSecret)
	if err != nil {
		RequestError(w, r, err, exchanger.Logger())
		return
	}
	if client.AuthMethod() == oidc.AuthMethodNone {
		RequestError(w, r, oidc.ErrInvalidClient().WithDescription("public clients cannot use this grant"), exchanger.Logger())
		return
	}
	if err := ValidateGrantType(client, oidc.GrantTypeClientCredentials); err != nil {
		RequestError(w, r, err, exchanger.Logger())
		return
	}
	scopes := make([]string, 0, len(tokenReq.Scope))
	for _, scope := range tokenReq.Scope {
		if client.IsScopeAllowed(scope) {
			scopes = append(scopes, scope)
		}
	}
	issuance := &TokenIssuance{
		ClientID:         client.GetID(),
		Subject:          client.GetID(),
		Scopes:           scopes,
		GrantType:        oidc.GrantTypeClientCredentials,
		TokenBindingHash: TokenBindingHash(r),
	}
	resp, err := CreateTokenResponse(ctx, issuance, client, exchanger, "", "")
	if err != nil {
		RequestError(w, r, err, exchanger.Logger())
		return
	}
	httphelper.MarshalJSON(w, resp)
}
