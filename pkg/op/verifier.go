package op

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	jose "github.com/go-jose/go-jose/v3"

	"github.com/auric-id/auric/pkg/oidc"
)

// BearerTokenFromRequest extracts the access token from the
// Authorization header or, as a fallback, the access_token form value.
func BearerTokenFromRequest(r *http.Request) string {
	auth := r.Header.Get("authorization")
	if auth != "" {
		if token, ok := strings.CutPrefix(auth, oidc.PrefixBearer); ok {
			return token
		}
		return ""
	}
	return r.FormValue("access_token")
}

// ResolveAccessToken resolves either an opaque or a JWT access token
// back to its stored record, verifying signature, binding and expiry.
func ResolveAccessToken(ctx context.Context, token string, p *Provider) (*AccessToken, error) {
	ctx, span := tracer.Start(ctx, "ResolveAccessToken")
	defer span.End()

	if strings.Count(token, ".") == 2 {
		return resolveJWTAccessToken(ctx, token, p)
	}
	tokenID, subject, err := ParseOpaqueToken(token, p.Crypto())
	if err != nil {
		return nil, oidc.ErrInvalidToken().WithDescription("malformed token").WithParent(err)
	}
	record, err := p.Storage().AccessTokenByID(ctx, tokenID)
	if err != nil {
		return nil, oidc.ErrInvalidToken().WithDescription("unknown token").WithParent(err)
	}
	if record.Subject != subject {
		return nil, oidc.ErrInvalidToken().WithDescription("token subject mismatch")
	}
	return validateTokenExpiry(record)
}

func resolveJWTAccessToken(ctx context.Context, token string, p *Provider) (*AccessToken, error) {
	jws, err := jose.ParseSigned(token)
	if err != nil {
		return nil, oidc.ErrInvalidToken().WithDescription("malformed jwt").WithParent(err)
	}
	payload, err := p.openIDKeySet().VerifySignature(ctx, jws)
	if err != nil {
		return nil, oidc.ErrInvalidToken().WithDescription("invalid signature").WithParent(err)
	}
	claims := new(oidc.AccessTokenClaims)
	if err := json.Unmarshal(payload, claims); err != nil {
		return nil, oidc.ErrInvalidToken().WithDescription("malformed claims").WithParent(err)
	}
	if claims.JWTID == "" {
		return nil, oidc.ErrInvalidToken().WithDescription("jti missing")
	}
	record, err := p.Storage().AccessTokenByID(ctx, claims.JWTID)
	if err != nil {
		return nil, oidc.ErrInvalidToken().WithDescription("unknown token").WithParent(err)
	}
	return validateTokenExpiry(record)
}

func validateTokenExpiry(record *AccessToken) (*AccessToken, error) {
	if time.Now().After(record.ExpiresAt) {
		return nil, oidc.ErrInvalidToken().WithDescription("token has expired")
	}
	return record, nil
}

// RequireTokenScope resolves the bearer token of an internal API
// request and checks that it carries the required scope.
func RequireTokenScope(ctx context.Context, r *http.Request, p *Provider, scope string) (*AccessToken, error) {
	token := BearerTokenFromRequest(r)
	if token == "" {
		return nil, oidc.ErrInvalidToken().WithDescription("access token missing")
	}
	record, err := ResolveAccessToken(ctx, token, p)
	if err != nil {
		return nil, err
	}
	if !containsString(record.Scopes, scope) {
		return nil, oidc.ErrAccessDenied().WithDescription("scope %s required", scope)
	}
	return record, nil
}

// VerifyIDTokenHint parses and verifies an id_token_hint against the
// server's own signing keys. Expiry is not checked, a logout request
// may well arrive with an expired id token.
func VerifyIDTokenHint(ctx context.Context, hint string, p *Provider) (*oidc.IDTokenClaims, error) {
	jws, err := jose.ParseSigned(hint)
	if err != nil {
		return nil, oidc.ErrInvalidRequest().WithDescription("malformed id_token_hint").WithParent(err)
	}
	payload, err := p.openIDKeySet().VerifySignature(ctx, jws)
	if err != nil {
		return nil, oidc.ErrInvalidRequest().WithDescription("invalid id_token_hint signature").WithParent(err)
	}
	claims := new(oidc.IDTokenClaims)
	if err := json.Unmarshal(payload, claims); err != nil {
		return nil, oidc.ErrInvalidRequest().WithDescription("malformed id_token_hint claims").WithParent(err)
	}
	return claims, nil
}
