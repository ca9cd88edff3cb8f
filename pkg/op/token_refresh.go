package op

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	httphelper "github.com/auric-id/auric/pkg/http"
	"github.com/auric-id/auric/pkg/oidc"
)

// RefreshTokenExchange handles the refresh_token grant with
// mandatory rotation: the presented token is invalidated and a
// successor issued.
func RefreshTokenExchange(w http.ResponseWriter, r *http.Request, exchanger *Provider) {
	ctx, span := tracer.Start(r.Context(), "RefreshTokenExchange")
	r = r.WithContext(ctx)
	defer span.End()

	tokenReq, err := ParseAuthenticatedTokenRequest(r, exchanger.Decoder(), new(oidc.RefreshTokenRequest))
	if err != nil {
		RequestError(w, r, err, exchanger.Logger())
		return
	}
	if tokenReq.RefreshToken == "" {
		RequestError(w, r, oidc.ErrInvalidRequest().WithDescription("refresh_token missing"), exchanger.Logger())
		return
	}
	client, err := AuthorizeClient(ctx, exchanger, tokenReq.ClientID, tokenReq.ClientSecret)
	if err != nil {
		RequestError(w, r, err, exchanger.Logger())
		return
	}
	if err := ValidateGrantType(client, oidc.GrantTypeRefreshToken); err != nil {
		RequestError(w, r, err, exchanger.Logger())
		return
	}
	tokenID, subject, err := ParseOpaqueToken(tokenReq.RefreshToken, exchanger.Crypto())
	if err != nil {
		RequestError(w, r, oidc.ErrInvalidGrant().WithDescription("invalid refresh token").WithParent(err), exchanger.Logger())
		return
	}
	record, err := exchanger.Storage().RefreshTokenByID(ctx, tokenID)
	if err != nil {
		RequestError(w, r, oidc.ErrInvalidGrant().WithDescription("invalid refresh token").WithParent(err), exchanger.Logger())
		return
	}
	if record.ClientID != client.GetID() || record.Subject != subject {
		RequestError(w, r, oidc.ErrInvalidGrant().WithDescription("invalid refresh token"), exchanger.Logger())
		return
	}
	if time.Now().After(record.ExpiresAt) {
		RequestError(w, r, oidc.ErrInvalidGrant().WithDescription("refresh token has expired"), exchanger.Logger())
		return
	}
	scopes, err := narrowScopes(record.Scopes, tokenReq.Scopes)
	if err != nil {
		RequestError(w, r, err, exchanger.Logger())
		return
	}

	now := time.Now()
	successor := &RefreshToken{
		ID:                   uuid.NewString(),
		GrantID:              record.GrantID,
		SessionID:            record.SessionID,
		ClientID:             record.ClientID,
		Subject:              record.Subject,
		Audience:             record.Audience,
		Scopes:               scopes,
		AuthorizationDetails: record.AuthorizationDetails,
		ACR:                  record.ACR,
		AMR:                  record.AMR,
		AuthTime:             record.AuthTime,
		Nonce:                record.Nonce,
		CreatedAt:            now,
		ExpiresAt:            now.Add(exchanger.Config().RefreshTokenLifetime),
	}
	if err := exchanger.Storage().RotateRefreshToken(ctx, record.ID, successor); err != nil {
		RequestError(w, r, oidc.DefaultToServerError(err, "cannot rotate refresh token"), exchanger.Logger())
		return
	}
	rotated, err := createOpaqueToken(successor.ID, successor.Subject, exchanger.Crypto())
	if err != nil {
		RequestError(w, r, err, exchanger.Logger())
		return
	}

	issuance := &TokenIssuance{
		GrantID:              record.GrantID,
		SessionID:            record.SessionID,
		ClientID:             record.ClientID,
		Subject:              record.Subject,
		Audience:             record.Audience,
		Scopes:               scopes,
		AuthorizationDetails: record.AuthorizationDetails,
		ACR:                  record.ACR,
		AMR:                  record.AMR,
		AuthTime:             record.AuthTime,
		Nonce:                record.Nonce,
		GrantType:            oidc.GrantTypeRefreshToken,
		TokenBindingHash:     TokenBindingHash(r),
	}
	resp, err := CreateTokenResponse(ctx, issuance, client, exchanger, "", "")
	if err != nil {
		RequestError(w, r, err, exchanger.Logger())
		return
	}
	resp.RefreshToken = rotated
	httphelper.MarshalJSON(w, resp)
}

// narrowScopes allows a refresh to request a subset of the originally
// granted scopes, never an extension.
func narrowScopes(granted, requested []string) ([]string, error) {
	if len(requested) == 0 {
		return granted, nil
	}
	for _, scope := range requested {
		if !containsString(granted, scope) {
			return nil, oidc.ErrInvalidScope().WithDescription("scope %q was not granted", scope)
		}
	}
	return requested, nil
}
