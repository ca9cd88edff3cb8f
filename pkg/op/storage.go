package op

import (
	"context"
	"errors"
	"time"

	"github.com/auric-id/auric/pkg/oidc"
)

var (
	// ErrNotFound is returned by all storage lookups that found no record.
	ErrNotFound = errors.New("not found")

	// ErrCodeConsumed is returned by TakeGrantByCode when the code was
	// already exchanged. The caller must treat this as a replay.
	ErrCodeConsumed = errors.New("authorization code already consumed")
)

// GrantStage is the lifecycle of an authorization grant. Stages only
// move forward, a regression is a storage bug.
type GrantStage int

const (
	StageRequested GrantStage = iota
	StageAuthenticated
	StageConsented
	StageIssued
	StageConsumed
)

func (s GrantStage) String() string {
	switch s {
	case StageRequested:
		return "requested"
	case StageAuthenticated:
		return "authenticated"
	case StageConsented:
		return "consented"
	case StageIssued:
		return "issued"
	case StageConsumed:
		return "consumed"
	default:
		return "unknown"
	}
}

// CanProgress reports whether a transition to the next stage is legal.
func (s GrantStage) CanProgress(next GrantStage) bool {
	return next == s+1
}

// Grant is the server side state of one authorization request,
// from first parse until the code is exchanged.
type Grant struct {
	ID        string
	ClientID  string
	SessionID string
	Subject   string

	Scopes               []string
	AuthorizationDetails oidc.AuthorizationDetails
	RedirectURI          string
	ResponseType         oidc.ResponseType
	ResponseMode         oidc.ResponseMode
	State                string
	Nonce                string
	CodeChallenge        *oidc.CodeChallenge
	CustomParameters     map[string]string

	ACR      string
	AMR      []string
	AuthTime time.Time

	Stage     GrantStage
	CreatedAt time.Time
	ExpiresAt time.Time
}

// Done reports whether authentication and consent completed, the
// precondition for issuing a code or tokens.
func (g *Grant) Done() bool {
	return g.Stage >= StageConsented
}

func (g *Grant) GetRedirectURI() string             { return g.RedirectURI }
func (g *Grant) GetResponseType() oidc.ResponseType { return g.ResponseType }
func (g *Grant) GetResponseMode() oidc.ResponseMode { return g.ResponseMode }
func (g *Grant) GetState() string                   { return g.State }

// Session is an authenticated end-user session. Attributes holds the
// userinfo claims sessions can be searched and revoked by.
type Session struct {
	ID        string
	Subject   string
	Username  string
	BrowserID string

	ACR      string
	AMR      []string
	AuthTime time.Time

	Attributes map[string]string

	CreatedAt time.Time
	LastUsed  time.Time
	ExpiresAt time.Time
}

// AccessToken is the stored state of an issued access token. The token
// handed to the client is either this ID encrypted (opaque) or a JWT
// with this ID as jti.
type AccessToken struct {
	ID        string
	GrantID   string
	SessionID string
	ClientID  string
	Subject   string

	Audience             []string
	Scopes               []string
	AuthorizationDetails oidc.AuthorizationDetails

	CreatedAt time.Time
	ExpiresAt time.Time
}

// RefreshToken is the stored state of an issued refresh token.
// Rotation replaces the record under a new ID.
type RefreshToken struct {
	ID        string
	GrantID   string
	SessionID string
	ClientID  string
	Subject   string

	Audience             []string
	Scopes               []string
	AuthorizationDetails oidc.AuthorizationDetails

	ACR      string
	AMR      []string
	AuthTime time.Time
	Nonce    string

	CreatedAt time.Time
	ExpiresAt time.Time
}

// SSA is a stored software statement assertion.
type SSA struct {
	JTI       string
	OrgID     string
	Request   oidc.SSARequest
	Token     string
	Revoked   bool
	CreatedAt time.Time
	ExpiresAt time.Time
}

type ClientStorage interface {
	// ClientByID loads a client. ErrNotFound for unknown ids.
	ClientByID(ctx context.Context, clientID string) (Client, error)

	// AuthorizeClientIDSecret authenticates a confidential client.
	AuthorizeClientIDSecret(ctx context.Context, clientID, clientSecret string) error

	// RegisterClient persists a new dynamic registration.
	RegisterClient(ctx context.Context, registration *ClientRegistration) (Client, error)

	// UpdateClient replaces the metadata of an existing registration.
	// Client id, secret and registration access token are not touched.
	UpdateClient(ctx context.Context, clientID string, metadata *oidc.ClientMetadata) (Client, error)

	// DeleteClient removes a registration.
	DeleteClient(ctx context.Context, clientID string) error
}

// ClientRegistration is the storage input of a dynamic registration,
// ids and credentials are generated by the server before the call.
type ClientRegistration struct {
	ClientID                string
	ClientSecret            string
	RegistrationAccessToken string
	IssuedAt                time.Time
	SecretExpiresAt         time.Time
	Metadata                *oidc.ClientMetadata
}

type SessionStorage interface {
	CreateSession(ctx context.Context, session *Session) error
	SessionByID(ctx context.Context, id string) (*Session, error)
	SessionsByIDs(ctx context.Context, ids []string) ([]*Session, error)

	// TouchSession resets the idle expiry of a session.
	TouchSession(ctx context.Context, id string) error

	TerminateSession(ctx context.Context, id string) error

	// TerminateSessionsByUserAttribute terminates every session whose
	// attribute key equals value and returns how many were affected.
	TerminateSessionsByUserAttribute(ctx context.Context, key, value string) (int, error)
}

type GrantStorage interface {
	CreateGrant(ctx context.Context, grant *Grant) error
	GrantByID(ctx context.Context, id string) (*Grant, error)

	// UpdateGrant persists a stage transition. Implementations must
	// reject regressions of the stage.
	UpdateGrant(ctx context.Context, grant *Grant) error

	// BindGrantCode associates an authorization code with a grant.
	BindGrantCode(ctx context.Context, grantID, code string) error

	// TakeGrantByCode resolves a code to its grant exactly once.
	// A second call with the same code returns the grant together
	// with ErrCodeConsumed.
	TakeGrantByCode(ctx context.Context, code string) (*Grant, error)

	DeleteGrant(ctx context.Context, id string) error
}

type TokenStorage interface {
	SaveAccessToken(ctx context.Context, token *AccessToken) error
	AccessTokenByID(ctx context.Context, id string) (*AccessToken, error)
	RevokeAccessToken(ctx context.Context, id string) error

	SaveRefreshToken(ctx context.Context, token *RefreshToken) error
	RefreshTokenByID(ctx context.Context, id string) (*RefreshToken, error)

	// RotateRefreshToken atomically invalidates the old token and
	// stores its replacement.
	RotateRefreshToken(ctx context.Context, oldID string, token *RefreshToken) error
	RevokeRefreshToken(ctx context.Context, id string) error

	// RevokeTokensForGrant deletes all tokens issued from a grant,
	// used when a code replay is detected.
	RevokeTokensForGrant(ctx context.Context, grantID string) error

	// RevokeTokensForSession deletes all tokens bound to a session,
	// used on logout.
	RevokeTokensForSession(ctx context.Context, sessionID string) error
}

type UserStorage interface {
	// AuthenticateUser verifies first factor credentials and returns the
	// subject. Unknown usernames are reported as oidc.ErrUsernameInvalid,
	// wrong passwords as oidc.ErrAccessDenied.
	AuthenticateUser(ctx context.Context, username, password string) (subject string, err error)

	// UserInfoBySubject returns the claims of the subject allowed
	// by the given scopes.
	UserInfoBySubject(ctx context.Context, subject string, scopes []string) (*oidc.UserInfo, error)
}

type KeyStorage interface {
	SigningKey(ctx context.Context) (SigningKey, error)
	KeySet(ctx context.Context) ([]Key, error)
}

type SSAStorage interface {
	SaveSSA(ctx context.Context, ssa *SSA) error
	SSAByJTI(ctx context.Context, jti string) (*SSA, error)
	SSAsByOrg(ctx context.Context, orgID string) ([]*SSA, error)
	RevokeSSA(ctx context.Context, jti string) error
}

// Storage is the complete persistence interface of the provider.
type Storage interface {
	ClientStorage
	SessionStorage
	GrantStorage
	TokenStorage
	UserStorage
	KeyStorage
	SSAStorage

	// Health reports whether the storage is usable.
	Health(ctx context.Context) error
}
