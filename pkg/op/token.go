package op

import (
	"context"
	"crypto/sha256"
	"encoding/base64"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"

	"github.com/auric-id/auric/pkg/crypto"
	"github.com/auric-id/auric/pkg/oidc"
)

// TokenCreator is implemented by the Provider and exposes everything
// needed to mint access, refresh and id tokens.
type TokenCreator interface {
	Storage() Storage
	Crypto() Crypto
	Config() *Config
	Metrics() *Metrics
}

// TokenIssuance collects the attributes a token issuing grant type
// resolved, independent of where they came from (grant, refresh
// token, client credentials or password grant).
type TokenIssuance struct {
	GrantID              string
	SessionID            string
	ClientID             string
	Subject              string
	Audience             []string
	Scopes               []string
	AuthorizationDetails oidc.AuthorizationDetails
	ACR                  string
	AMR                  []string
	AuthTime             time.Time
	Nonce                string
	GrantType            oidc.GrantType

	// TokenBindingHash is set when the request carried a
	// Sec-Token-Binding header and ends up in the cnf claim.
	TokenBindingHash string
}

// CreateTokenResponse assembles the full token endpoint response for
// an issuance: access token, optional refresh token and id token.
func CreateTokenResponse(ctx context.Context, issuance *TokenIssuance, client Client, creator TokenCreator, code, state string) (*oidc.AccessTokenResponse, error) {
	ctx, span := tracer.Start(ctx, "CreateTokenResponse")
	defer span.End()

	accessToken, validity, err := CreateAccessToken(ctx, issuance, client, creator)
	if err != nil {
		return nil, err
	}
	resp := &oidc.AccessTokenResponse{
		AccessToken:          accessToken,
		TokenType:            oidc.BearerToken,
		ExpiresIn:            uint64(validity.Seconds()),
		Scope:                issuance.Scopes,
		State:                state,
		AuthorizationDetails: issuance.AuthorizationDetails,
	}
	if needsRefreshToken(issuance, client) {
		refreshToken, err := CreateRefreshToken(ctx, issuance, creator)
		if err != nil {
			return nil, err
		}
		resp.RefreshToken = refreshToken
	}
	if containsString(issuance.Scopes, oidc.ScopeOpenID) && issuance.Subject != "" &&
		issuance.GrantType != oidc.GrantTypeClientCredentials {
		idToken, err := CreateIDToken(ctx, issuance, client, creator, accessToken, code, state)
		if err != nil {
			return nil, err
		}
		resp.IDToken = idToken
	}
	resp.CustomParameters = returnedCustomParams(ctx, issuance, client, creator)
	creator.Metrics().TokensIssued.WithLabelValues(string(issuance.GrantType)).Inc()
	return resp, nil
}

func needsRefreshToken(issuance *TokenIssuance, client Client) bool {
	// the refresh exchange rotates its own token
	if issuance.GrantType == oidc.GrantTypeClientCredentials || issuance.GrantType == oidc.GrantTypeRefreshToken {
		return false
	}
	return containsString(issuance.Scopes, oidc.ScopeOfflineAccess) &&
		ContainsGrantType(client.GrantTypes(), oidc.GrantTypeRefreshToken)
}

// returnedCustomParams filters the custom parameters captured on the
// grant down to the names the client registered for echoing.
func returnedCustomParams(ctx context.Context, issuance *TokenIssuance, client Client, creator TokenCreator) map[string]string {
	names := client.CustomParamsReturned()
	if len(names) == 0 || issuance.GrantID == "" {
		return nil
	}
	grant, err := creator.Storage().GrantByID(ctx, issuance.GrantID)
	if err != nil || len(grant.CustomParameters) == 0 {
		return nil
	}
	params := make(map[string]string)
	for _, name := range names {
		if value, ok := grant.CustomParameters[name]; ok {
			params[name] = value
		}
	}
	if len(params) == 0 {
		return nil
	}
	return params
}

// CreateAccessToken stores the token record and renders it either as
// an opaque encrypted reference or as a signed JWT, depending on the
// client registration.
func CreateAccessToken(ctx context.Context, issuance *TokenIssuance, client Client, creator TokenCreator) (accessToken string, validity time.Duration, err error) {
	ctx, span := tracer.Start(ctx, "CreateAccessToken")
	defer span.End()

	validity = client.AccessTokenLifetime()
	if validity == 0 {
		validity = creator.Config().AccessTokenLifetime
	}
	now := time.Now()
	record := &AccessToken{
		ID:                   uuid.NewString(),
		GrantID:              issuance.GrantID,
		SessionID:            issuance.SessionID,
		ClientID:             client.GetID(),
		Subject:              issuance.Subject,
		Audience:             issuance.Audience,
		Scopes:               issuance.Scopes,
		AuthorizationDetails: issuance.AuthorizationDetails,
		CreatedAt:            now,
		ExpiresAt:            now.Add(validity),
	}
	if err = creator.Storage().SaveAccessToken(ctx, record); err != nil {
		return "", 0, oidc.DefaultToServerError(err, "cannot store access token")
	}
	if client.AccessTokenType() == AccessTokenTypeJWT {
		accessToken, err = createJWTAccessToken(ctx, record, issuance, client, creator)
	} else {
		accessToken, err = createOpaqueToken(record.ID, issuance.Subject, creator.Crypto())
	}
	if err != nil {
		return "", 0, err
	}
	return accessToken, validity, nil
}

// createOpaqueToken renders "tokenID:subject" encrypted, so the
// server can resolve the record without a database roundtrip for the
// subject.
func createOpaqueToken(tokenID, subject string, crypt Crypto) (string, error) {
	token, err := crypt.Encrypt(tokenID + ":" + subject)
	if err != nil {
		return "", oidc.DefaultToServerError(err, "cannot encrypt token")
	}
	return token, nil
}

// ParseOpaqueToken reverses createOpaqueToken.
func ParseOpaqueToken(token string, crypt Crypto) (tokenID, subject string, err error) {
	plain, err := crypt.Decrypt(token)
	if err != nil {
		return "", "", err
	}
	for i := 0; i < len(plain); i++ {
		if plain[i] == ':' {
			return plain[:i], plain[i+1:], nil
		}
	}
	return "", "", oidc.ErrInvalidToken().WithDescription("malformed token")
}

func createJWTAccessToken(ctx context.Context, record *AccessToken, issuance *TokenIssuance, client Client, creator TokenCreator) (string, error) {
	_, signer, err := signingKeyAndSigner(ctx, creator.Storage())
	if err != nil {
		return "", oidc.DefaultToServerError(err, "no signing key available")
	}
	issuer := IssuerFromContext(ctx)
	claims := &oidc.AccessTokenClaims{
		TokenClaims: oidc.TokenClaims{
			Issuer:     issuer,
			Subject:    SubjectForClient(client, issuance.Subject, creator.Config()),
			Audience:   audienceWithClient(issuance.Audience, client.GetID()),
			Expiration: oidc.FromTime(record.ExpiresAt),
			IssuedAt:   oidc.FromTime(record.CreatedAt),
			JWTID:      record.ID,
			ClientID:   client.GetID(),
			SessionID:  issuance.SessionID,
		},
		Scopes:               issuance.Scopes,
		AuthorizationDetails: issuance.AuthorizationDetails,
	}
	if issuance.TokenBindingHash != "" {
		claims.Confirmation = &oidc.Confirmation{TokenBindingHash: issuance.TokenBindingHash}
	}
	return crypto.Sign(claims, signer)
}

// CreateRefreshToken stores the server side refresh token record and
// returns its opaque representation.
func CreateRefreshToken(ctx context.Context, issuance *TokenIssuance, creator TokenCreator) (string, error) {
	now := time.Now()
	record := &RefreshToken{
		ID:                   uuid.NewString(),
		GrantID:              issuance.GrantID,
		SessionID:            issuance.SessionID,
		ClientID:             issuance.ClientID,
		Subject:              issuance.Subject,
		Audience:             issuance.Audience,
		Scopes:               issuance.Scopes,
		AuthorizationDetails: issuance.AuthorizationDetails,
		ACR:                  issuance.ACR,
		AMR:                  issuance.AMR,
		AuthTime:             issuance.AuthTime,
		Nonce:                issuance.Nonce,
		CreatedAt:            now,
		ExpiresAt:            now.Add(defaultDuration(0, issuanceRefreshLifetime(creator))),
	}
	if err := creator.Storage().SaveRefreshToken(ctx, record); err != nil {
		return "", oidc.DefaultToServerError(err, "cannot store refresh token")
	}
	return createOpaqueToken(record.ID, record.Subject, creator.Crypto())
}

func issuanceRefreshLifetime(creator TokenCreator) time.Duration {
	return creator.Config().RefreshTokenLifetime
}

func defaultDuration(d, fallback time.Duration) time.Duration {
	if d != 0 {
		return d
	}
	return fallback
}

// CreateIDToken signs the id token for an issuance. With an access
// token present only the hashes are embedded, otherwise the full
// userinfo claims are inlined.
func CreateIDToken(ctx context.Context, issuance *TokenIssuance, client Client, creator TokenCreator, accessToken, code, state string) (string, error) {
	ctx, span := tracer.Start(ctx, "CreateIDToken")
	defer span.End()

	key, signer, err := signingKeyAndSigner(ctx, creator.Storage())
	if err != nil {
		return "", oidc.DefaultToServerError(err, "no signing key available")
	}
	if alg := client.IDTokenSigAlgorithm(); alg != "" && alg != key.SignatureAlgorithm() {
		return "", oidc.ErrServerError().WithDescription("id token algorithm %q is not available", string(alg))
	}
	validity := client.IDTokenLifetime()
	if validity == 0 {
		validity = creator.Config().IDTokenLifetime
	}
	now := time.Now()
	claims := &oidc.IDTokenClaims{
		TokenClaims: oidc.TokenClaims{
			Issuer:          IssuerFromContext(ctx),
			Subject:         SubjectForClient(client, issuance.Subject, creator.Config()),
			Audience:        audienceWithClient(issuance.Audience, client.GetID()),
			Expiration:      oidc.FromTime(now.Add(validity)),
			IssuedAt:        oidc.FromTime(now),
			AuthTime:        oidc.FromTime(issuance.AuthTime),
			Nonce:           issuance.Nonce,
			AuthenticationContextClassReference: issuance.ACR,
			AuthenticationMethodsReferences:     issuance.AMR,
			AuthorizedParty: client.GetID(),
			ClientID:        client.GetID(),
			SessionID:       issuance.SessionID,
		},
	}
	if issuance.TokenBindingHash != "" {
		claims.Confirmation = &oidc.Confirmation{TokenBindingHash: issuance.TokenBindingHash}
	}
	hashAlg, err := crypto.GetHashAlgorithm(key.SignatureAlgorithm())
	if err != nil {
		return "", oidc.DefaultToServerError(err, "unsupported id token algorithm")
	}
	if accessToken != "" {
		claims.AccessTokenHash = crypto.HashString(hashAlg, accessToken, true)
		hashAlg.Reset()
	}
	if code != "" {
		claims.CodeHash = crypto.HashString(hashAlg, code, true)
		hashAlg.Reset()
	}
	if state != "" {
		claims.StateHash = crypto.HashString(hashAlg, state, true)
		hashAlg.Reset()
	}
	if accessToken == "" {
		userInfo, err := creator.Storage().UserInfoBySubject(ctx, issuance.Subject, issuance.Scopes)
		if err != nil {
			return "", oidc.DefaultToServerError(err, "cannot load userinfo")
		}
		userInfo.Subject = claims.Subject
		claims.UserInfo = userInfo
	}
	return crypto.Sign(claims, signer)
}

// SubjectForClient renders the pairwise subject for clients
// registered with subject_type pairwise.
func SubjectForClient(client Client, subject string, config *Config) string {
	if client.SubjectType() != oidc.SubjectTypePairwise || subject == "" {
		return subject
	}
	sector := client.SectorIdentifier()
	if sector == "" {
		if uris := client.RedirectURIs(); len(uris) > 0 {
			if u, err := url.Parse(uris[0]); err == nil {
				sector = u.Hostname()
			}
		}
	}
	sum := sha256.Sum256([]byte(sector + subject + config.PairwiseSalt))
	return base64.RawURLEncoding.EncodeToString(sum[:])
}

func audienceWithClient(audience []string, clientID string) []string {
	if containsString(audience, clientID) {
		return audience
	}
	return append(audience[:len(audience):len(audience)], clientID)
}

// TokenBindingHash computes the cnf.tbh value from the
// Sec-Token-Binding header, empty when the header is absent.
func TokenBindingHash(r *http.Request) string {
	binding := r.Header.Get("Sec-Token-Binding")
	if binding == "" {
		return ""
	}
	sum := sha256.Sum256([]byte(binding))
	return base64.RawURLEncoding.EncodeToString(sum[:])
}

// ImplicitResponse is the fragment response of the implicit and hybrid
// flows, which may carry a code alongside the tokens.
type ImplicitResponse struct {
	Code        string                   `schema:"code,omitempty"`
	AccessToken string                   `schema:"access_token,omitempty"`
	TokenType   string                   `schema:"token_type,omitempty"`
	IDToken     string                   `schema:"id_token,omitempty"`
	ExpiresIn   uint64                   `schema:"expires_in,omitempty"`
	State       string                   `schema:"state,omitempty"`
	Scope       oidc.SpaceDelimitedArray `schema:"scope,omitempty"`
	SessionID   string                   `schema:"session_id,omitempty"`
}

// CreateImplicitTokenResponse issues tokens, and for the hybrid
// response types also a code, for delivery in the redirect fragment.
func CreateImplicitTokenResponse(ctx context.Context, grant *Grant, creator TokenCreator, client Client) (*ImplicitResponse, error) {
	issuance := IssuanceFromGrant(grant, oidc.GrantTypeImplicit)
	resp := &ImplicitResponse{
		State:     grant.State,
		SessionID: grant.SessionID,
	}
	withCode := grant.ResponseType == oidc.ResponseTypeCodeIDToken ||
		grant.ResponseType == oidc.ResponseTypeCodeToken ||
		grant.ResponseType == oidc.ResponseTypeCodeIDTokenToken
	withToken := grant.ResponseType == oidc.ResponseTypeIDToken ||
		grant.ResponseType == oidc.ResponseTypeCodeToken ||
		grant.ResponseType == oidc.ResponseTypeCodeIDTokenToken
	withIDToken := grant.ResponseType != oidc.ResponseTypeCodeToken

	if withCode {
		authorizer, ok := creator.(Authorizer)
		if !ok {
			return nil, oidc.ErrUnsupportedResponseType().WithDescription("hybrid flow not available")
		}
		code, err := CreateGrantCode(ctx, grant, authorizer)
		if err != nil {
			return nil, err
		}
		resp.Code = code
	}
	if withToken {
		accessToken, validity, err := CreateAccessToken(ctx, issuance, client, creator)
		if err != nil {
			return nil, err
		}
		resp.AccessToken = accessToken
		resp.TokenType = oidc.BearerToken
		resp.ExpiresIn = uint64(validity.Seconds())
		resp.Scope = grant.Scopes
	}
	if withIDToken {
		idToken, err := CreateIDToken(ctx, issuance, client, creator, resp.AccessToken, resp.Code, grant.State)
		if err != nil {
			return nil, err
		}
		resp.IDToken = idToken
	}
	creator.Metrics().TokensIssued.WithLabelValues(string(oidc.GrantTypeImplicit)).Inc()
	return resp, nil
}

// IssuanceFromGrant maps a finished grant to a token issuance.
func IssuanceFromGrant(grant *Grant, grantType oidc.GrantType) *TokenIssuance {
	return &TokenIssuance{
		GrantID:              grant.ID,
		SessionID:            grant.SessionID,
		ClientID:             grant.ClientID,
		Subject:              grant.Subject,
		Scopes:               grant.Scopes,
		AuthorizationDetails: grant.AuthorizationDetails,
		ACR:                  grant.ACR,
		AMR:                  grant.AMR,
		AuthTime:             grant.AuthTime,
		Nonce:                grant.Nonce,
		GrantType:            grantType,
	}
}
