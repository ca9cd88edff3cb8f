package op

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	jose "github.com/go-jose/go-jose/v3"
	"github.com/google/uuid"

	"github.com/auric-id/auric/pkg/crypto"
	httphelper "github.com/auric-id/auric/pkg/http"
	"github.com/auric-id/auric/pkg/oidc"
)

func ssaCreateHandler(o *Provider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		CreateSSA(w, r, o)
	}
}

func ssaListHandler(o *Provider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ListSSAs(w, r, o)
	}
}

func ssaRevokeHandler(o *Provider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		RevokeSSA(w, r, o)
	}
}

// CreateSSA signs a software statement assertion for later use in
// dynamic client registration.
func CreateSSA(w http.ResponseWriter, r *http.Request, p *Provider) {
	ctx, span := tracer.Start(r.Context(), "CreateSSA")
	r = r.WithContext(ctx)
	defer span.End()

	if _, err := RequireTokenScope(ctx, r, p, p.Config().SSAScope); err != nil {
		RequestError(w, r, err, p.Logger())
		return
	}
	ssaReq := new(oidc.SSARequest)
	if err := json.NewDecoder(r.Body).Decode(ssaReq); err != nil {
		RequestError(w, r, oidc.ErrInvalidRequest().WithDescription("cannot parse request body").WithParent(err), p.Logger())
		return
	}
	if ssaReq.SoftwareID == "" || ssaReq.OrgID == "" {
		RequestError(w, r, oidc.ErrInvalidRequest().WithDescription("software_id and org_id required"), p.Logger())
		return
	}
	now := time.Now()
	expiresAt := now.Add(p.Config().SSALifetime)
	if ssaReq.Expiration != 0 {
		expiresAt = ssaReq.Expiration.AsTime()
	}
	_, signer, err := signingKeyAndSigner(ctx, p.Storage())
	if err != nil {
		RequestError(w, r, oidc.DefaultToServerError(err, "no signing key available"), p.Logger())
		return
	}
	claims := &oidc.SSAClaims{
		Issuer:     IssuerFromContext(ctx),
		JWTID:      uuid.NewString(),
		IssuedAt:   oidc.FromTime(now),
		Expiration: oidc.FromTime(expiresAt),
		SSARequest: *ssaReq,
	}
	token, err := crypto.Sign(claims, signer)
	if err != nil {
		RequestError(w, r, oidc.DefaultToServerError(err, "cannot sign software statement"), p.Logger())
		return
	}
	record := &SSA{
		JTI:       claims.JWTID,
		OrgID:     ssaReq.OrgID,
		Request:   *ssaReq,
		Token:     token,
		CreatedAt: now,
		ExpiresAt: expiresAt,
	}
	if err := p.Storage().SaveSSA(ctx, record); err != nil {
		RequestError(w, r, oidc.DefaultToServerError(err, "cannot store software statement"), p.Logger())
		return
	}
	httphelper.MarshalJSONWithStatus(w, &oidc.SSAResponse{SSA: token}, http.StatusCreated)
}

// ListSSAs returns the software statements of an organization.
func ListSSAs(w http.ResponseWriter, r *http.Request, p *Provider) {
	ctx, span := tracer.Start(r.Context(), "ListSSAs")
	r = r.WithContext(ctx)
	defer span.End()

	if _, err := RequireTokenScope(ctx, r, p, p.Config().SSAScope); err != nil {
		RequestError(w, r, err, p.Logger())
		return
	}
	orgID := r.URL.Query().Get("org_id")
	if orgID == "" {
		RequestError(w, r, oidc.ErrInvalidRequest().WithDescription("org_id missing"), p.Logger())
		return
	}
	records, err := p.Storage().SSAsByOrg(ctx, orgID)
	if err != nil {
		RequestError(w, r, oidc.DefaultToServerError(err, "cannot list software statements"), p.Logger())
		return
	}
	infos := make([]*oidc.SSAInfo, len(records))
	for i, record := range records {
		infos[i] = &oidc.SSAInfo{
			JWTID:      record.JTI,
			CreatedAt:  oidc.FromTime(record.CreatedAt),
			ExpiresAt:  oidc.FromTime(record.ExpiresAt),
			Revoked:    record.Revoked,
			SSARequest: record.Request,
		}
	}
	httphelper.MarshalJSON(w, infos)
}

// RevokeSSA revokes a software statement by its jti.
func RevokeSSA(w http.ResponseWriter, r *http.Request, p *Provider) {
	ctx, span := tracer.Start(r.Context(), "RevokeSSA")
	r = r.WithContext(ctx)
	defer span.End()

	if _, err := RequireTokenScope(ctx, r, p, p.Config().SSAScope); err != nil {
		RequestError(w, r, err, p.Logger())
		return
	}
	jti := r.URL.Query().Get("jti")
	if jti == "" {
		RequestError(w, r, oidc.ErrInvalidRequest().WithDescription("jti missing"), p.Logger())
		return
	}
	if err := p.Storage().RevokeSSA(ctx, jti); err != nil {
		RequestError(w, r, oidc.DefaultToServerError(err, "cannot revoke software statement"), p.Logger())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// verifySSA checks a presented software statement against the
// server's keys and revocation state. One time use statements are
// revoked on first verification.
func verifySSA(ctx context.Context, token string, p *Provider) (*oidc.SSAClaims, error) {
	jws, err := jose.ParseSigned(token)
	if err != nil {
		return nil, oidc.ErrInvalidSoftwareStatement().WithDescription("malformed software statement").WithParent(err)
	}
	payload, err := p.openIDKeySet().VerifySignature(ctx, jws)
	if err != nil {
		return nil, oidc.ErrInvalidSoftwareStatement().WithDescription("invalid software statement signature").WithParent(err)
	}
	claims := new(oidc.SSAClaims)
	if err := json.Unmarshal(payload, claims); err != nil {
		return nil, oidc.ErrInvalidSoftwareStatement().WithDescription("malformed software statement claims").WithParent(err)
	}
	if claims.Expiration != 0 && time.Now().After(claims.Expiration.AsTime()) {
		return nil, oidc.ErrInvalidSoftwareStatement().WithDescription("software statement has expired")
	}
	record, err := p.Storage().SSAByJTI(ctx, claims.JWTID)
	if err != nil {
		return nil, oidc.ErrInvalidSoftwareStatement().WithDescription("unknown software statement").WithParent(err)
	}
	if record.Revoked {
		return nil, oidc.ErrInvalidSoftwareStatement().WithDescription("software statement has been revoked")
	}
	if record.Request.OneTimeUse {
		if err := p.Storage().RevokeSSA(ctx, record.JTI); err != nil {
			return nil, oidc.DefaultToServerError(err, "cannot consume software statement")
		}
	}
	return claims, nil
}
