package op

import (
	"context"
	"errors"
	"net/http"
	"time"

	httphelper "github.com/auric-id/auric/pkg/http"
	"github.com/auric-id/auric/pkg/oidc"
)

// CodeExchange handles the authorization_code grant.
func CodeExchange(w http.ResponseWriter, r *http.Request, exchanger *Provider) {
	ctx, span := tracer.Start(r.Context(), "CodeExchange")
	r = r.WithContext(ctx)
	defer span.End()

	tokenReq, err := ParseAuthenticatedTokenRequest(r, exchanger.Decoder(), new(oidc.AccessTokenRequest))
	if err != nil {
		RequestError(w, r, err, exchanger.Logger())
		return
	}
	if tokenReq.Code == "" {
		RequestError(w, r, oidc.ErrInvalidRequest().WithDescription("code missing"), exchanger.Logger())
		return
	}
	client, err := AuthorizeClient(ctx, exchanger, tokenReq.ClientID, tokenReq.ClientSecret)
	if err != nil {
		RequestError(w, r, err, exchanger.Logger())
		return
	}
	if err := ValidateGrantType(client, oidc.GrantTypeCode); err != nil {
		RequestError(w, r, err, exchanger.Logger())
		return
	}
	grant, err := exchanger.Storage().TakeGrantByCode(ctx, tokenReq.Code)
	if err != nil {
		if errors.Is(err, ErrCodeConsumed) && grant != nil {
			RequestError(w, r, codeReplayed(ctx, grant, exchanger), exchanger.Logger())
			return
		}
		RequestError(w, r, oidc.ErrInvalidGrant().WithDescription("invalid code").WithParent(err), exchanger.Logger())
		return
	}
	exchanger.Metrics().CodesConsumed.Inc()
	if err := validateCodeGrant(grant, client, tokenReq); err != nil {
		RequestError(w, r, err, exchanger.Logger())
		return
	}
	grant.Stage = StageConsumed
	if err := exchanger.Storage().UpdateGrant(ctx, grant); err != nil {
		RequestError(w, r, oidc.DefaultToServerError(err, "cannot update grant"), exchanger.Logger())
		return
	}
	issuance := IssuanceFromGrant(grant, oidc.GrantTypeCode)
	issuance.TokenBindingHash = TokenBindingHash(r)
	resp, err := CreateTokenResponse(ctx, issuance, client, exchanger, tokenReq.Code, grant.State)
	if err != nil {
		RequestError(w, r, err, exchanger.Logger())
		return
	}
	httphelper.MarshalJSON(w, resp)
}

// codeReplayed handles the second use of an authorization code: the
// session is terminated and every token of the grant revoked, so a
// leaked code cannot be replayed for a live session.
func codeReplayed(ctx context.Context, grant *Grant, exchanger *Provider) error {
	logger := exchanger.Logger()
	if err := exchanger.Storage().RevokeTokensForGrant(ctx, grant.ID); err != nil {
		logger.ErrorContext(ctx, "revoke tokens after code replay", "grant_id", grant.ID, "err", err)
	}
	if grant.SessionID != "" {
		if err := exchanger.Storage().RevokeTokensForSession(ctx, grant.SessionID); err != nil {
			logger.ErrorContext(ctx, "revoke session tokens after code replay", "session_id", grant.SessionID, "err", err)
		}
		if err := exchanger.Storage().TerminateSession(ctx, grant.SessionID); err != nil {
			logger.ErrorContext(ctx, "terminate session after code replay", "session_id", grant.SessionID, "err", err)
		}
		exchanger.Metrics().SessionsTerminated.Inc()
	}
	return oidc.ErrInvalidGrantAndSession().WithDescription("authorization code was already used, the session has been revoked")
}

func validateCodeGrant(grant *Grant, client Client, tokenReq *oidc.AccessTokenRequest) error {
	if grant.ClientID != client.GetID() {
		return oidc.ErrInvalidGrant().WithDescription("code was issued to another client")
	}
	if grant.Stage != StageIssued {
		return oidc.ErrInvalidGrant().WithDescription("code is not valid anymore")
	}
	if time.Now().After(grant.ExpiresAt) {
		return oidc.ErrInvalidGrant().WithDescription("code has expired")
	}
	if grant.RedirectURI != tokenReq.RedirectURI {
		return oidc.ErrInvalidGrant().WithDescription("redirect_uri does not correspond")
	}
	if grant.CodeChallenge != nil {
		if !oidc.VerifyCodeChallenge(grant.CodeChallenge, tokenReq.CodeVerifier) {
			return oidc.ErrInvalidGrant().WithDescription("invalid code challenge")
		}
	}
	return nil
}
