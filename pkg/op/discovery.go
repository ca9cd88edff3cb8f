package op

import (
	"net/http"
	"strings"

	httphelper "github.com/auric-id/auric/pkg/http"
	"github.com/auric-id/auric/pkg/oidc"
)

func discoveryHandler(o *Provider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		Discover(w, CreateDiscoveryConfig(r, o))
	}
}

func Discover(w http.ResponseWriter, config *oidc.DiscoveryConfiguration) {
	httphelper.MarshalJSON(w, config)
}

func CreateDiscoveryConfig(r *http.Request, o *Provider) *oidc.DiscoveryConfiguration {
	issuer := IssuerFromContext(r.Context())
	config := o.Config()
	return &oidc.DiscoveryConfiguration{
		Issuer:                             issuer,
		AuthorizationEndpoint:              o.AuthorizationEndpoint().Absolute(issuer),
		AuthorizationChallengeEndpoint:     o.AuthorizationChallengeEndpoint().Absolute(issuer),
		TokenEndpoint:                      o.TokenEndpoint().Absolute(issuer),
		IntrospectionEndpoint:              o.IntrospectionEndpoint().Absolute(issuer),
		UserinfoEndpoint:                   o.UserinfoEndpoint().Absolute(issuer),
		ClientinfoEndpoint:                 o.ClientinfoEndpoint().Absolute(issuer),
		EndSessionEndpoint:                 o.EndSessionEndpoint().Absolute(issuer),
		RevokeSessionEndpoint:              o.RevokeSessionEndpoint().Absolute(issuer),
		JwksURI:                            o.KeysEndpoint().Absolute(issuer),
		RegistrationEndpoint:               o.RegistrationEndpoint().Absolute(issuer),
		SoftwareStatementAssertionEndpoint: o.SSAEndpoint().Absolute(issuer),
		AccessEvaluationEndpoint:           o.EvaluationEndpoint().Absolute(issuer),
		ScopesSupported:                    config.SupportedScopes,
		ResponseTypesSupported:             responseTypesSupported(),
		ResponseModesSupported:             responseModesSupported(),
		GrantTypesSupported:                grantTypesSupported(o),
		ACRValuesSupported:                 config.SupportedACRValues,
		SubjectTypesSupported:              []string{string(oidc.SubjectTypePublic), string(oidc.SubjectTypePairwise)},
		IDTokenSigningAlgValuesSupported:       []string{"RS256"},
		AccessTokenSigningAlgValuesSupported:   []string{"RS256"},
		UserinfoSigningAlgValuesSupported:      []string{"RS256"},
		IntrospectionSigningAlgValuesSupported: []string{"RS256"},
		TokenEndpointAuthMethodsSupported:      authMethodsSupported(o),
		IntrospectionEndpointAuthMethodsSupported: []oidc.AuthMethod{oidc.AuthMethodBasic, oidc.AuthMethodPost},
		ClaimsSupported:                    config.SupportedClaims,
		CodeChallengeMethodsSupported:      codeChallengeMethodsSupported(o),
		AuthorizationDetailsTypesSupported: config.SupportedAuthorizationDetailTypes,
		UILocalesSupported:                 uiLocalesSupported(o),
	}
}

func responseTypesSupported() []string {
	return []string{
		string(oidc.ResponseTypeCode),
		string(oidc.ResponseTypeIDTokenOnly),
		string(oidc.ResponseTypeIDToken),
		string(oidc.ResponseTypeCodeIDToken),
		string(oidc.ResponseTypeCodeToken),
		string(oidc.ResponseTypeCodeIDTokenToken),
	}
}

func responseModesSupported() []string {
	return []string{
		string(oidc.ResponseModeQuery),
		string(oidc.ResponseModeFragment),
	}
}

func grantTypesSupported(o *Provider) []oidc.GrantType {
	grantTypes := []oidc.GrantType{
		oidc.GrantTypeCode,
		oidc.GrantTypeImplicit,
		oidc.GrantTypeClientCredentials,
	}
	if o.GrantTypeRefreshTokenSupported() {
		grantTypes = append(grantTypes, oidc.GrantTypeRefreshToken)
	}
	if o.GrantTypePasswordSupported() {
		grantTypes = append(grantTypes, oidc.GrantTypePassword)
	}
	return grantTypes
}

func authMethodsSupported(o *Provider) []oidc.AuthMethod {
	authMethods := []oidc.AuthMethod{
		oidc.AuthMethodNone,
		oidc.AuthMethodBasic,
	}
	if o.AuthMethodPostSupported() {
		authMethods = append(authMethods, oidc.AuthMethodPost)
	}
	if o.AuthMethodPrivateKeyJWTSupported() {
		authMethods = append(authMethods, oidc.AuthMethodPrivateKeyJWT)
	}
	return authMethods
}

func codeChallengeMethodsSupported(o *Provider) []oidc.CodeChallengeMethod {
	if o.CodeMethodS256Supported() {
		return []oidc.CodeChallengeMethod{oidc.PKCEMethodS256}
	}
	return []oidc.CodeChallengeMethod{oidc.PKCEMethodPlain, oidc.PKCEMethodS256}
}

func uiLocalesSupported(o *Provider) []string {
	locales := make([]string, len(o.Config().SupportedUILocales))
	for i, tag := range o.Config().SupportedUILocales {
		locales[i] = tag.String()
	}
	return locales
}

func webfingerHandler(o *Provider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		Webfinger(w, r, o)
	}
}

// Webfinger implements issuer discovery, RFC 7033. Whatever resource
// is asked for, this server only ever claims itself as issuer.
func Webfinger(w http.ResponseWriter, r *http.Request, o *Provider) {
	resource := r.URL.Query().Get("resource")
	if resource == "" {
		RequestError(w, r, oidc.ErrInvalidRequest().WithDescription("resource missing"), o.Logger())
		return
	}
	if !strings.Contains(resource, ":") {
		RequestError(w, r, oidc.ErrInvalidRequest().WithDescription("resource must be a uri"), o.Logger())
		return
	}
	issuer := IssuerFromContext(r.Context())
	w.Header().Set("content-type", "application/jrd+json")
	httphelper.MarshalJSON(w, &oidc.WebfingerResponse{
		Subject: resource,
		Links: []oidc.WebfingerLink{
			{Rel: oidc.WebfingerRelIssuer, Href: issuer},
		},
	})
}
