package op

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	jose "github.com/go-jose/go-jose/v3"
	"github.com/rs/cors"
	"github.com/zitadel/schema"
	"golang.org/x/text/language"

	"github.com/auric-id/auric/internal/otel"
	httphelper "github.com/auric-id/auric/pkg/http"
	"github.com/auric-id/auric/pkg/oidc"
)

var tracer = otel.Tracer("github.com/auric-id/auric/pkg/op")

const (
	healthEndpoint               = "/healthz"
	readinessEndpoint            = "/ready"
	authCallbackPathSuffix       = "/callback"
	defaultAuthorizationEndpoint = "authorize"
	defaultAuthChallengeEndpoint = "authorize/challenge"
	defaultTokenEndpoint         = "token"
	defaultIntrospectEndpoint    = "introspect"
	defaultUserinfoEndpoint      = "userinfo"
	defaultClientinfoEndpoint    = "clientinfo"
	defaultEndSessionEndpoint    = "end_session"
	defaultRevokeSessionEndpoint = "revoke_session"
	defaultKeysEndpoint          = "jwks"
	defaultRegistrationEndpoint  = "register"
	defaultSSAEndpoint           = "ssa"
	defaultEvaluationEndpoint    = "access_evaluation"
	defaultStatEndpoint          = "internal/stat"
)

func DefaultEndpoints() *Endpoints {
	return &Endpoints{
		Authorization:          NewEndpoint(defaultAuthorizationEndpoint),
		AuthorizationChallenge: NewEndpoint(defaultAuthChallengeEndpoint),
		Token:                  NewEndpoint(defaultTokenEndpoint),
		Introspection:          NewEndpoint(defaultIntrospectEndpoint),
		Userinfo:               NewEndpoint(defaultUserinfoEndpoint),
		Clientinfo:             NewEndpoint(defaultClientinfoEndpoint),
		EndSession:             NewEndpoint(defaultEndSessionEndpoint),
		RevokeSession:          NewEndpoint(defaultRevokeSessionEndpoint),
		JwksURI:                NewEndpoint(defaultKeysEndpoint),
		Registration:           NewEndpoint(defaultRegistrationEndpoint),
		SSA:                    NewEndpoint(defaultSSAEndpoint),
		Evaluation:             NewEndpoint(defaultEvaluationEndpoint),
		Stat:                   NewEndpoint(defaultStatEndpoint),
	}
}

var defaultCORSOptions = cors.Options{
	AllowCredentials: true,
	AllowedHeaders: []string{
		"Origin",
		"Accept",
		"Accept-Language",
		"Authorization",
		"Content-Type",
		"X-Requested-With",
	},
	AllowedMethods: []string{
		http.MethodGet,
		http.MethodHead,
		http.MethodPost,
		http.MethodPut,
		http.MethodDelete,
	},
	ExposedHeaders: []string{
		"Location",
		"Content-Length",
	},
	AllowOriginFunc: func(_ string) bool {
		return true
	},
}

// AccessEvaluator decides externalized authorization questions,
// implemented by the policy package.
type AccessEvaluator interface {
	Evaluate(ctx context.Context, req *oidc.EvaluationRequest) (*oidc.EvaluationResponse, error)
}

type OpenIDProvider interface {
	Authorizer
	Exchanger
	Introspector
	UserinfoProvider
	SessionEnder
	ClientProvider
	KeyProvider

	IssuerFromRequest(r *http.Request) string
	Insecure() bool
	Probes() []ProbesFn
	HttpHandler() http.Handler
}

type HttpInterceptor func(http.Handler) http.Handler

func CreateRouter(o *Provider, interceptors ...HttpInterceptor) chi.Router {
	router := chi.NewRouter()
	router.Use(cors.New(defaultCORSOptions).Handler)
	router.Use(intercept(o.IssuerFromRequest, interceptors...))
	router.HandleFunc(healthEndpoint, healthHandler)
	router.HandleFunc(readinessEndpoint, readyHandler(o.Probes()))
	router.HandleFunc(oidc.DiscoveryEndpoint, discoveryHandler(o))
	router.HandleFunc(oidc.WebfingerEndpoint, webfingerHandler(o))
	router.HandleFunc(o.AuthorizationEndpoint().Relative(), authorizeHandler(o))
	router.Get(authCallbackPath(o), authorizeCallbackHandler(o))
	router.Post(o.AuthorizationChallengeEndpoint().Relative(), authorizeChallengeHandler(o))
	router.Post(o.TokenEndpoint().Relative(), tokenHandler(o))
	router.Post(o.IntrospectionEndpoint().Relative(), introspectionHandler(o))
	router.HandleFunc(o.UserinfoEndpoint().Relative(), userinfoHandler(o))
	router.Get(o.ClientinfoEndpoint().Relative(), clientinfoHandler(o))
	router.HandleFunc(o.EndSessionEndpoint().Relative(), endSessionHandler(o))
	router.Post(o.RevokeSessionEndpoint().Relative(), revokeSessionHandler(o))
	router.Get(o.KeysEndpoint().Relative(), keysHandler(o.Storage()))
	router.Post(o.RegistrationEndpoint().Relative(), registrationHandler(o))
	router.Route(o.RegistrationEndpoint().Relative()+"/{client_id}", func(r chi.Router) {
		r.Get("/", clientReadHandler(o))
		r.Put("/", clientUpdateHandler(o))
		r.Delete("/", clientDeleteHandler(o))
	})
	router.Post(o.SSAEndpoint().Relative(), ssaCreateHandler(o))
	router.Get(o.SSAEndpoint().Relative(), ssaListHandler(o))
	router.Delete(o.SSAEndpoint().Relative(), ssaRevokeHandler(o))
	router.Post(o.EvaluationEndpoint().Relative(), evaluationHandler(o))
	router.Get(o.StatEndpoint().Relative(), statHandler(o))
	return router
}

// AuthCallbackURL builds the url for the redirect (with the grant id) after a successful login
func AuthCallbackURL(o Authorizer) func(context.Context, string) string {
	return func(ctx context.Context, grantID string) string {
		return o.AuthorizationEndpoint().Absolute(IssuerFromContext(ctx)) + authCallbackPathSuffix + "?id=" + grantID
	}
}

func authCallbackPath(o *Provider) string {
	return o.AuthorizationEndpoint().Relative() + authCallbackPathSuffix
}

type Config struct {
	CryptoKey                [32]byte
	DefaultLogoutRedirectURI string

	CodeMethodS256          bool
	AuthMethodPost          bool
	AuthMethodPrivateKeyJWT bool
	GrantTypeRefreshToken   bool
	GrantTypePassword       bool

	SupportedUILocales []language.Tag
	SupportedScopes    []string
	SupportedACRValues []string
	SupportedClaims    []string

	// SupportedAuthorizationDetailTypes limits the rich authorization
	// request types accepted server wide. Empty disables RAR.
	SupportedAuthorizationDetailTypes []string

	// PairwiseSalt is mixed into pairwise subject calculation.
	PairwiseSalt string

	// BlockedRedirectURIPatterns rejects any redirect uri matching one
	// of these glob patterns during client registration and update.
	BlockedRedirectURIPatterns []string

	CodeLifetime          time.Duration
	AccessTokenLifetime   time.Duration
	IDTokenLifetime       time.Duration
	RefreshTokenLifetime  time.Duration
	SessionLifetime       time.Duration
	SessionIdleTimeout    time.Duration
	RegistrationLifetime  time.Duration
	SSALifetime           time.Duration

	// StatScope is the scope required on tokens calling the internal
	// stat endpoint.
	StatScope string

	// SSAScope is the scope required to manage software statements.
	SSAScope string

	// RevokeSessionScope is the scope required for administrative
	// session revocation.
	RevokeSessionScope string
}

const (
	DefaultCodeLifetime         = 2 * time.Minute
	DefaultAccessTokenLifetime  = 5 * time.Minute
	DefaultIDTokenLifetime      = 5 * time.Minute
	DefaultRefreshTokenLifetime = 14 * 24 * time.Hour
	DefaultSessionLifetime      = 24 * time.Hour
	DefaultSessionIdleTimeout   = 8 * time.Hour
	DefaultSSALifetime          = 90 * 24 * time.Hour

	DefaultStatScope          = "auric.stat"
	DefaultSSAScope           = "auric.ssa.admin"
	DefaultRevokeSessionScope = "auric.revoke_session"
)

// applyDefaults fills the zero valued lifetimes and scopes.
func (c *Config) applyDefaults() {
	if c.CodeLifetime == 0 {
		c.CodeLifetime = DefaultCodeLifetime
	}
	if c.AccessTokenLifetime == 0 {
		c.AccessTokenLifetime = DefaultAccessTokenLifetime
	}
	if c.IDTokenLifetime == 0 {
		c.IDTokenLifetime = DefaultIDTokenLifetime
	}
	if c.RefreshTokenLifetime == 0 {
		c.RefreshTokenLifetime = DefaultRefreshTokenLifetime
	}
	if c.SessionLifetime == 0 {
		c.SessionLifetime = DefaultSessionLifetime
	}
	if c.SessionIdleTimeout == 0 {
		c.SessionIdleTimeout = DefaultSessionIdleTimeout
	}
	if c.SSALifetime == 0 {
		c.SSALifetime = DefaultSSALifetime
	}
	if c.StatScope == "" {
		c.StatScope = DefaultStatScope
	}
	if c.SSAScope == "" {
		c.SSAScope = DefaultSSAScope
	}
	if c.RevokeSessionScope == "" {
		c.RevokeSessionScope = DefaultRevokeSessionScope
	}
	if len(c.SupportedScopes) == 0 {
		c.SupportedScopes = []string{
			oidc.ScopeOpenID, oidc.ScopeProfile, oidc.ScopeEmail,
			oidc.ScopePhone, oidc.ScopeAddress, oidc.ScopeOfflineAccess,
		}
	}
}

type Endpoints struct {
	Authorization          *Endpoint
	AuthorizationChallenge *Endpoint
	Token                  *Endpoint
	Introspection          *Endpoint
	Userinfo               *Endpoint
	Clientinfo             *Endpoint
	EndSession             *Endpoint
	RevokeSession          *Endpoint
	JwksURI                *Endpoint
	Registration           *Endpoint
	SSA                    *Endpoint
	Evaluation             *Endpoint
	Stat                   *Endpoint
}

// NewProvider creates a provider for a fixed issuer.
func NewProvider(config *Config, storage Storage, issuer string, opOpts ...Option) (*Provider, error) {
	return newProvider(config, storage, StaticIssuer(issuer), opOpts...)
}

// NewDynamicProvider creates a provider answering for the issuer of
// each request's host.
func NewDynamicProvider(config *Config, storage Storage, path string, opOpts ...Option) (*Provider, error) {
	return newProvider(config, storage, IssuerFromHost(path), opOpts...)
}

func newProvider(config *Config, storage Storage, issuer func(bool) (IssuerFromRequest, error), opOpts ...Option) (_ *Provider, err error) {
	config.applyDefaults()
	o := &Provider{
		config:    config,
		storage:   storage,
		endpoints: DefaultEndpoints(),
		logger:    slog.Default(),
		metrics:   NewMetrics(),
	}

	for _, optFunc := range opOpts {
		if err := optFunc(o); err != nil {
			return nil, err
		}
	}

	o.issuer, err = issuer(o.insecure)
	if err != nil {
		return nil, err
	}

	o.decoder = schema.NewDecoder()
	o.decoder.IgnoreUnknownKeys(true)

	o.encoder = oidc.NewEncoder()

	o.crypto = NewAESCrypto(config.CryptoKey)

	if o.cookieHandler == nil {
		o.cookieHandler = httphelper.NewCookieHandler(
			config.CryptoKey[:], config.CryptoKey[:], httphelper.WithUnsecure(),
		)
	}

	o.httpHandler = CreateRouter(o, o.interceptors...)

	return o, nil
}

type Provider struct {
	config        *Config
	issuer        IssuerFromRequest
	insecure      bool
	endpoints     *Endpoints
	storage       Storage
	keySet        *openIDKeySet
	crypto        Crypto
	httpHandler   http.Handler
	decoder       *schema.Decoder
	encoder       httphelper.Encoder
	interceptors  []HttpInterceptor
	logger        *slog.Logger
	evaluator     AccessEvaluator
	cookieHandler *httphelper.CookieHandler
	metrics       *Metrics
}

func (o *Provider) IssuerFromRequest(r *http.Request) string {
	return o.issuer(r)
}

func (o *Provider) Insecure() bool {
	return o.insecure
}

func (o *Provider) Config() *Config {
	return o.config
}

func (o *Provider) AuthorizationEndpoint() *Endpoint {
	return o.endpoints.Authorization
}

func (o *Provider) AuthorizationChallengeEndpoint() *Endpoint {
	return o.endpoints.AuthorizationChallenge
}

func (o *Provider) TokenEndpoint() *Endpoint {
	return o.endpoints.Token
}

func (o *Provider) IntrospectionEndpoint() *Endpoint {
	return o.endpoints.Introspection
}

func (o *Provider) UserinfoEndpoint() *Endpoint {
	return o.endpoints.Userinfo
}

func (o *Provider) ClientinfoEndpoint() *Endpoint {
	return o.endpoints.Clientinfo
}

func (o *Provider) EndSessionEndpoint() *Endpoint {
	return o.endpoints.EndSession
}

func (o *Provider) RevokeSessionEndpoint() *Endpoint {
	return o.endpoints.RevokeSession
}

func (o *Provider) KeysEndpoint() *Endpoint {
	return o.endpoints.JwksURI
}

func (o *Provider) RegistrationEndpoint() *Endpoint {
	return o.endpoints.Registration
}

func (o *Provider) SSAEndpoint() *Endpoint {
	return o.endpoints.SSA
}

func (o *Provider) EvaluationEndpoint() *Endpoint {
	return o.endpoints.Evaluation
}

func (o *Provider) StatEndpoint() *Endpoint {
	return o.endpoints.Stat
}

func (o *Provider) AuthMethodPostSupported() bool {
	return o.config.AuthMethodPost
}

func (o *Provider) CodeMethodS256Supported() bool {
	return o.config.CodeMethodS256
}

func (o *Provider) AuthMethodPrivateKeyJWTSupported() bool {
	return o.config.AuthMethodPrivateKeyJWT
}

func (o *Provider) GrantTypeRefreshTokenSupported() bool {
	return o.config.GrantTypeRefreshToken
}

func (o *Provider) GrantTypePasswordSupported() bool {
	return o.config.GrantTypePassword
}

func (o *Provider) Storage() Storage {
	return o.storage
}

func (o *Provider) Decoder() httphelper.Decoder {
	return o.decoder
}

func (o *Provider) Encoder() httphelper.Encoder {
	return o.encoder
}

func (o *Provider) Crypto() Crypto {
	return o.crypto
}

func (o *Provider) Logger() *slog.Logger {
	return o.logger
}

func (o *Provider) Evaluator() AccessEvaluator {
	return o.evaluator
}

func (o *Provider) CookieHandler() *httphelper.CookieHandler {
	return o.cookieHandler
}

func (o *Provider) Metrics() *Metrics {
	return o.metrics
}

func (o *Provider) DefaultLogoutRedirectURI() string {
	return o.config.DefaultLogoutRedirectURI
}

func (o *Provider) KeySet(ctx context.Context) ([]Key, error) {
	return o.storage.KeySet(ctx)
}

func (o *Provider) openIDKeySet() oidc.KeySet {
	if o.keySet == nil {
		o.keySet = &openIDKeySet{o.Storage()}
	}
	return o.keySet
}

func (o *Provider) Probes() []ProbesFn {
	return []ProbesFn{
		ReadyStorage(o.Storage()),
	}
}

func (o *Provider) HttpHandler() http.Handler {
	return o.httpHandler
}

type openIDKeySet struct {
	Storage
}

// VerifySignature implements the oidc.KeySet interface
// providing an implementation for the keys stored in the OP Storage
func (o *openIDKeySet) VerifySignature(ctx context.Context, jws *jose.JSONWebSignature) ([]byte, error) {
	keySet, err := o.Storage.KeySet(ctx)
	if err != nil {
		return nil, fmt.Errorf("error fetching keys: %w", err)
	}
	keyID, alg := oidc.GetKeyIDAndAlg(jws)
	key, err := oidc.FindMatchingKey(keyID, oidc.KeyUseSignature, alg, jsonWebKeySet(keySet).Keys...)
	if err != nil {
		return nil, fmt.Errorf("invalid signature: %w", err)
	}
	return jws.Verify(&key)
}

type Option func(o *Provider) error

// WithAllowInsecure allows the use of http (instead of https) for issuers
// this is not recommended for production use and violates the OIDC specification
func WithAllowInsecure() Option {
	return func(o *Provider) error {
		o.insecure = true
		return nil
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(o *Provider) error {
		o.logger = logger
		return nil
	}
}

// WithAccessEvaluator wires an externalized policy decision point into
// the authorize flow and the access evaluation endpoint.
func WithAccessEvaluator(evaluator AccessEvaluator) Option {
	return func(o *Provider) error {
		o.evaluator = evaluator
		return nil
	}
}

func WithCookieHandler(handler *httphelper.CookieHandler) Option {
	return func(o *Provider) error {
		o.cookieHandler = handler
		return nil
	}
}

func WithCustomAuthEndpoint(endpoint *Endpoint) Option {
	return func(o *Provider) error {
		if err := endpoint.Validate(); err != nil {
			return err
		}
		o.endpoints.Authorization = endpoint
		return nil
	}
}

func WithCustomTokenEndpoint(endpoint *Endpoint) Option {
	return func(o *Provider) error {
		if err := endpoint.Validate(); err != nil {
			return err
		}
		o.endpoints.Token = endpoint
		return nil
	}
}

func WithCustomEndpoints(endpoints *Endpoints) Option {
	return func(o *Provider) error {
		o.endpoints = endpoints
		return nil
	}
}

func WithHttpInterceptors(interceptors ...HttpInterceptor) Option {
	return func(o *Provider) error {
		o.interceptors = append(o.interceptors, interceptors...)
		return nil
	}
}

func intercept(i IssuerFromRequest, interceptors ...HttpInterceptor) func(handler http.Handler) http.Handler {
	issuerInterceptor := NewIssuerInterceptor(i)
	return func(handler http.Handler) http.Handler {
		for i := len(interceptors) - 1; i >= 0; i-- {
			handler = interceptors[i](handler)
		}
		return issuerInterceptor.Handler(handler)
	}
}
