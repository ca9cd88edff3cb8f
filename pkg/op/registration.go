package op

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	httphelper "github.com/auric-id/auric/pkg/http"
	"github.com/auric-id/auric/pkg/oidc"
)

func registrationHandler(o *Provider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		RegisterClient(w, r, o)
	}
}

func clientReadHandler(o *Provider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ReadClientRegistration(w, r, o)
	}
}

func clientUpdateHandler(o *Provider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		UpdateClientRegistration(w, r, o)
	}
}

func clientDeleteHandler(o *Provider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		DeleteClientRegistration(w, r, o)
	}
}

// RegisterClient handles dynamic client registration, RFC 7591.
func RegisterClient(w http.ResponseWriter, r *http.Request, p *Provider) {
	ctx, span := tracer.Start(r.Context(), "RegisterClient")
	r = r.WithContext(ctx)
	defer span.End()

	registerReq := new(oidc.ClientRegistrationRequest)
	if err := json.NewDecoder(r.Body).Decode(registerReq); err != nil {
		RequestError(w, r, oidc.ErrInvalidClientMetadata().WithDescription("cannot parse request body").WithParent(err), p.Logger())
		return
	}
	metadata := registerReq.ClientMetadata
	if metadata.SoftwareStatement != "" {
		if err := applySoftwareStatement(ctx, &metadata, p); err != nil {
			RequestError(w, r, err, p.Logger())
			return
		}
	}
	metadata.ApplyDefaults()
	if err := validateClientMetadata(&metadata, p.Config().BlockedRedirectURIPatterns); err != nil {
		RequestError(w, r, err, p.Logger())
		return
	}

	now := time.Now()
	registration := &ClientRegistration{
		ClientID:                uuid.NewString(),
		RegistrationAccessToken: newSecret(),
		IssuedAt:                now,
		Metadata:                &metadata,
	}
	if metadata.TokenEndpointAuthMethod != oidc.AuthMethodNone {
		registration.ClientSecret = newSecret()
		if p.Config().RegistrationLifetime > 0 {
			registration.SecretExpiresAt = now.Add(p.Config().RegistrationLifetime)
		}
	}
	if _, err := p.Storage().RegisterClient(ctx, registration); err != nil {
		RequestError(w, r, oidc.DefaultToServerError(err, "cannot store client"), p.Logger())
		return
	}
	resp := informationResponse(ctx, registration, p)
	resp.RegistrationAccessToken = registration.RegistrationAccessToken
	httphelper.MarshalJSONWithStatus(w, resp, http.StatusCreated)
}

// applySoftwareStatement verifies the software statement against the
// server's own signing keys and lets its claims override the
// metadata presented in the plain request.
func applySoftwareStatement(ctx context.Context, metadata *oidc.ClientMetadata, p *Provider) error {
	claims, err := verifySSA(ctx, metadata.SoftwareStatement, p)
	if err != nil {
		return err
	}
	metadata.SoftwareID = claims.SoftwareID
	if len(claims.GrantTypes) > 0 {
		metadata.GrantTypes = claims.GrantTypes
	}
	if len(claims.Scope) > 0 {
		metadata.Scope = claims.Scope
	}
	return nil
}

func validateClientMetadata(metadata *oidc.ClientMetadata, blockedRedirectURIs []string) error {
	for _, uri := range metadata.RedirectURIs {
		if MatchAnyGlob(uri, blockedRedirectURIs) {
			return oidc.ErrInvalidRedirectURI().WithDescription("redirect uri %q is not allowed", uri)
		}
	}
	interactive := false
	for _, grantType := range metadata.GrantTypes {
		switch grantType {
		case oidc.GrantTypeCode, oidc.GrantTypeImplicit:
			interactive = true
		case oidc.GrantTypeRefreshToken, oidc.GrantTypeClientCredentials, oidc.GrantTypePassword:
		default:
			return oidc.ErrInvalidClientMetadata().WithDescription("grant type %q is not supported", grantType)
		}
	}
	if interactive && len(metadata.RedirectURIs) == 0 && len(metadata.RedirectURIsRegex) == 0 {
		return oidc.ErrInvalidRedirectURI().WithDescription("redirect_uris required for this grant type")
	}
	for _, pattern := range metadata.RedirectURIsRegex {
		if _, err := CompileGlob(pattern); err != nil {
			return oidc.ErrInvalidRedirectURI().WithDescription("invalid redirect uri pattern %q", pattern).WithParent(err)
		}
	}
	for _, responseType := range metadata.ResponseTypes {
		switch responseType {
		case oidc.ResponseTypeCode, oidc.ResponseTypeIDToken, oidc.ResponseTypeIDTokenOnly,
			oidc.ResponseTypeCodeIDToken, oidc.ResponseTypeCodeToken, oidc.ResponseTypeCodeIDTokenToken:
		default:
			return oidc.ErrInvalidClientMetadata().WithDescription("response type %q is not supported", responseType)
		}
	}
	switch metadata.TokenEndpointAuthMethod {
	case oidc.AuthMethodBasic, oidc.AuthMethodPost, oidc.AuthMethodNone, oidc.AuthMethodPrivateKeyJWT:
	default:
		return oidc.ErrInvalidClientMetadata().WithDescription("token endpoint auth method %q is not supported", metadata.TokenEndpointAuthMethod)
	}
	if metadata.SubjectType == oidc.SubjectTypePairwise && metadata.SectorIdentifierURI == "" && len(metadata.RedirectURIs) == 0 {
		return oidc.ErrInvalidClientMetadata().WithDescription("pairwise subject type requires a sector identifier or redirect uri")
	}
	return nil
}

// clientFromRegistrationAuth resolves the client of a registration
// management request and checks the registration access token.
func clientFromRegistrationAuth(r *http.Request, p *Provider) (Client, error) {
	clientID := chi.URLParam(r, "client_id")
	if clientID == "" {
		return nil, oidc.ErrInvalidRequest().WithDescription("client_id missing")
	}
	token := BearerTokenFromRequest(r)
	if token == "" {
		return nil, oidc.ErrInvalidToken().WithDescription("registration access token missing")
	}
	client, err := p.Storage().ClientByID(r.Context(), clientID)
	if err != nil {
		return nil, oidc.ErrInvalidToken().WithDescription("unknown client").WithParent(err)
	}
	expected := client.RegistrationAccessToken()
	if expected == "" || subtle.ConstantTimeCompare([]byte(token), []byte(expected)) != 1 {
		return nil, oidc.ErrInvalidToken().WithDescription("invalid registration access token")
	}
	return client, nil
}

// ReadClientRegistration handles reads on the registration client
// uri, RFC 7592 section 2.1.
func ReadClientRegistration(w http.ResponseWriter, r *http.Request, p *Provider) {
	ctx, span := tracer.Start(r.Context(), "ReadClientRegistration")
	r = r.WithContext(ctx)
	defer span.End()

	client, err := clientFromRegistrationAuth(r, p)
	if err != nil {
		RequestError(w, r, err, p.Logger())
		return
	}
	resp := &oidc.ClientInformationResponse{
		ClientID:       client.GetID(),
		ClientMetadata: *client.Metadata(),
	}
	if expiry := client.SecretExpiresAt(); !expiry.IsZero() {
		resp.ClientSecretExpiresAt = oidc.FromTime(expiry)
	}
	resp.RegistrationClientURI = registrationClientURI(ctx, p, client.GetID())
	httphelper.MarshalJSON(w, resp)
}

// UpdateClientRegistration handles updates on the registration client
// uri, RFC 7592 section 2.2.
func UpdateClientRegistration(w http.ResponseWriter, r *http.Request, p *Provider) {
	ctx, span := tracer.Start(r.Context(), "UpdateClientRegistration")
	r = r.WithContext(ctx)
	defer span.End()

	client, err := clientFromRegistrationAuth(r, p)
	if err != nil {
		RequestError(w, r, err, p.Logger())
		return
	}
	updateReq := new(oidc.ClientUpdateRequest)
	if err := json.NewDecoder(r.Body).Decode(updateReq); err != nil {
		RequestError(w, r, oidc.ErrInvalidClientMetadata().WithDescription("cannot parse request body").WithParent(err), p.Logger())
		return
	}
	if updateReq.ClientID != "" && updateReq.ClientID != client.GetID() {
		RequestError(w, r, oidc.ErrInvalidClientMetadata().WithDescription("client_id cannot be changed"), p.Logger())
		return
	}
	metadata := updateReq.ClientMetadata
	metadata.ApplyDefaults()
	if err := validateClientMetadata(&metadata, p.Config().BlockedRedirectURIPatterns); err != nil {
		RequestError(w, r, err, p.Logger())
		return
	}
	updated, err := p.Storage().UpdateClient(ctx, client.GetID(), &metadata)
	if err != nil {
		RequestError(w, r, oidc.DefaultToServerError(err, "cannot update client"), p.Logger())
		return
	}
	resp := &oidc.ClientInformationResponse{
		ClientID:       updated.GetID(),
		ClientMetadata: *updated.Metadata(),
	}
	if expiry := updated.SecretExpiresAt(); !expiry.IsZero() {
		resp.ClientSecretExpiresAt = oidc.FromTime(expiry)
	}
	resp.RegistrationClientURI = registrationClientURI(ctx, p, updated.GetID())
	httphelper.MarshalJSON(w, resp)
}

// DeleteClientRegistration handles deprovisioning on the registration
// client uri, RFC 7592 section 2.3.
func DeleteClientRegistration(w http.ResponseWriter, r *http.Request, p *Provider) {
	ctx, span := tracer.Start(r.Context(), "DeleteClientRegistration")
	r = r.WithContext(ctx)
	defer span.End()

	client, err := clientFromRegistrationAuth(r, p)
	if err != nil {
		RequestError(w, r, err, p.Logger())
		return
	}
	if err := p.Storage().DeleteClient(ctx, client.GetID()); err != nil {
		RequestError(w, r, oidc.DefaultToServerError(err, "cannot delete client"), p.Logger())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func informationResponse(ctx context.Context, registration *ClientRegistration, p *Provider) *oidc.ClientInformationResponse {
	resp := &oidc.ClientInformationResponse{
		ClientID:              registration.ClientID,
		ClientSecret:          registration.ClientSecret,
		ClientIDIssuedAt:      oidc.FromTime(registration.IssuedAt),
		RegistrationClientURI: registrationClientURI(ctx, p, registration.ClientID),
		ClientMetadata:        *registration.Metadata,
	}
	if !registration.SecretExpiresAt.IsZero() {
		resp.ClientSecretExpiresAt = oidc.FromTime(registration.SecretExpiresAt)
	}
	return resp
}

func registrationClientURI(ctx context.Context, p *Provider, clientID string) string {
	return p.RegistrationEndpoint().Absolute(IssuerFromContext(ctx)) + "/" + clientID
}

func newSecret() string {
	secret := make([]byte, 32)
	if _, err := rand.Read(secret); err != nil {
		panic(err)
	}
	return base64.RawURLEncoding.EncodeToString(secret)
}
