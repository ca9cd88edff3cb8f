package storage

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/subtle"
	"sync"
	"time"

	jose "github.com/go-jose/go-jose/v3"
	"github.com/google/uuid"

	"github.com/auric-id/auric/pkg/oidc"
	"github.com/auric-id/auric/pkg/op"
)

// User is an end-user account of the in-memory store.
type User struct {
	ID       string
	Username string
	Password string
	UserInfo *oidc.UserInfo

	// Attributes are matched by administrative session revocation, in
	// addition to the builtin sub and uid criteria.
	Attributes map[string]string
}

// MemoryStorage implements op.Storage with plain maps behind a single
// mutex. It is meant for development, tests and as the client and key
// layer under the Redis store.
type MemoryStorage struct {
	mu sync.Mutex

	clients       map[string]*op.ClientRegistration
	sessions      map[string]*op.Session
	grants        map[string]*op.Grant
	codes         map[string]string
	consumedCodes map[string]string
	accessTokens  map[string]*op.AccessToken
	refreshTokens map[string]*op.RefreshToken
	ssas          map[string]*op.SSA
	users         map[string]*User

	loginURL   func(grantID string) string
	signingKey *signingKey
}

// NewMemoryStorage creates an empty store with a fresh RSA signing
// key. loginURL renders the login UI address for a grant id.
func NewMemoryStorage(loginURL func(grantID string) string) (*MemoryStorage, error) {
	privateKey, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		return nil, err
	}
	return &MemoryStorage{
		clients:       make(map[string]*op.ClientRegistration),
		sessions:      make(map[string]*op.Session),
		grants:        make(map[string]*op.Grant),
		codes:         make(map[string]string),
		consumedCodes: make(map[string]string),
		accessTokens:  make(map[string]*op.AccessToken),
		refreshTokens: make(map[string]*op.RefreshToken),
		ssas:          make(map[string]*op.SSA),
		users:         make(map[string]*User),
		loginURL:      loginURL,
		signingKey: &signingKey{
			id:        uuid.NewString(),
			algorithm: jose.RS256,
			key:       privateKey,
		},
	}, nil
}

// AddUser registers an end-user account.
func (s *MemoryStorage) AddUser(user *User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[user.Username] = user
}

// AddClient registers a client without going through the dynamic
// registration endpoint.
func (s *MemoryStorage) AddClient(registration *op.ClientRegistration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clients[registration.ClientID] = registration
}

func (s *MemoryStorage) Health(context.Context) error {
	return nil
}

func (s *MemoryStorage) ClientByID(_ context.Context, clientID string) (op.Client, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	registration, ok := s.clients[clientID]
	if !ok {
		return nil, op.ErrNotFound
	}
	return NewClient(registration, s.loginURL), nil
}

func (s *MemoryStorage) AuthorizeClientIDSecret(_ context.Context, clientID, clientSecret string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	registration, ok := s.clients[clientID]
	if !ok {
		return op.ErrNotFound
	}
	if registration.ClientSecret == "" ||
		subtle.ConstantTimeCompare([]byte(registration.ClientSecret), []byte(clientSecret)) != 1 {
		return oidc.ErrInvalidClient().WithDescription("invalid secret")
	}
	if !registration.SecretExpiresAt.IsZero() && time.Now().After(registration.SecretExpiresAt) {
		return oidc.ErrInvalidClient().WithDescription("secret has expired")
	}
	return nil
}

func (s *MemoryStorage) RegisterClient(_ context.Context, registration *op.ClientRegistration) (op.Client, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.clients[registration.ClientID]; exists {
		return nil, oidc.ErrInvalidClientMetadata().WithDescription("client already exists")
	}
	s.clients[registration.ClientID] = registration
	return NewClient(registration, s.loginURL), nil
}

func (s *MemoryStorage) UpdateClient(_ context.Context, clientID string, metadata *oidc.ClientMetadata) (op.Client, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	registration, ok := s.clients[clientID]
	if !ok {
		return nil, op.ErrNotFound
	}
	registration.Metadata = metadata
	return NewClient(registration, s.loginURL), nil
}

func (s *MemoryStorage) DeleteClient(_ context.Context, clientID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.clients[clientID]; !ok {
		return op.ErrNotFound
	}
	delete(s.clients, clientID)
	return nil
}

func (s *MemoryStorage) CreateSession(_ context.Context, session *op.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.ID] = session
	return nil
}

func (s *MemoryStorage) SessionByID(_ context.Context, id string) (*op.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[id]
	if !ok {
		return nil, op.ErrNotFound
	}
	return session, nil
}

func (s *MemoryStorage) SessionsByIDs(_ context.Context, ids []string) ([]*op.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sessions := make([]*op.Session, 0, len(ids))
	for _, id := range ids {
		if session, ok := s.sessions[id]; ok {
			sessions = append(sessions, session)
		}
	}
	return sessions, nil
}

func (s *MemoryStorage) TouchSession(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[id]
	if !ok {
		return op.ErrNotFound
	}
	session.LastUsed = time.Now()
	return nil
}

func (s *MemoryStorage) TerminateSession(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[id]; !ok {
		return op.ErrNotFound
	}
	delete(s.sessions, id)
	return nil
}

// TerminateSessionsByUserAttribute terminates every session matching
// the criterion and revokes the tokens bound to it. The keys sub and
// uid address the subject and username, anything else the session
// attributes.
func (s *MemoryStorage) TerminateSessionsByUserAttribute(_ context.Context, key, value string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	revoked := 0
	for id, session := range s.sessions {
		if !sessionMatches(session, key, value) {
			continue
		}
		delete(s.sessions, id)
		s.revokeSessionTokensLocked(id)
		revoked++
	}
	return revoked, nil
}

func sessionMatches(session *op.Session, key, value string) bool {
	switch key {
	case "sub":
		return session.Subject == value
	case "uid":
		return session.Username == value
	}
	return session.Attributes[key] == value
}

func (s *MemoryStorage) CreateGrant(_ context.Context, grant *op.Grant) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.grants[grant.ID] = grant
	return nil
}

func (s *MemoryStorage) GrantByID(_ context.Context, id string) (*op.Grant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	grant, ok := s.grants[id]
	if !ok {
		return nil, op.ErrNotFound
	}
	return grant, nil
}

func (s *MemoryStorage) UpdateGrant(_ context.Context, grant *op.Grant) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.grants[grant.ID]
	if !ok {
		return op.ErrNotFound
	}
	if grant.Stage < stored.Stage {
		return oidc.ErrInvalidGrant().WithDescription("grant stage cannot regress")
	}
	s.grants[grant.ID] = grant
	return nil
}

func (s *MemoryStorage) BindGrantCode(_ context.Context, grantID, code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.grants[grantID]; !ok {
		return op.ErrNotFound
	}
	s.codes[code] = grantID
	return nil
}

func (s *MemoryStorage) TakeGrantByCode(_ context.Context, code string) (*op.Grant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if grantID, ok := s.codes[code]; ok {
		delete(s.codes, code)
		s.consumedCodes[code] = grantID
		grant, ok := s.grants[grantID]
		if !ok {
			return nil, op.ErrNotFound
		}
		return grant, nil
	}
	if grantID, ok := s.consumedCodes[code]; ok {
		return s.grants[grantID], op.ErrCodeConsumed
	}
	return nil, op.ErrNotFound
}

func (s *MemoryStorage) DeleteGrant(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.grants[id]; !ok {
		return op.ErrNotFound
	}
	delete(s.grants, id)
	return nil
}

func (s *MemoryStorage) SaveAccessToken(_ context.Context, token *op.AccessToken) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accessTokens[token.ID] = token
	return nil
}

func (s *MemoryStorage) AccessTokenByID(_ context.Context, id string) (*op.AccessToken, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	token, ok := s.accessTokens[id]
	if !ok {
		return nil, op.ErrNotFound
	}
	return token, nil
}

func (s *MemoryStorage) RevokeAccessToken(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.accessTokens, id)
	return nil
}

func (s *MemoryStorage) SaveRefreshToken(_ context.Context, token *op.RefreshToken) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.refreshTokens[token.ID] = token
	return nil
}

func (s *MemoryStorage) RefreshTokenByID(_ context.Context, id string) (*op.RefreshToken, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	token, ok := s.refreshTokens[id]
	if !ok {
		return nil, op.ErrNotFound
	}
	return token, nil
}

func (s *MemoryStorage) RotateRefreshToken(_ context.Context, oldID string, token *op.RefreshToken) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.refreshTokens[oldID]; !ok {
		return op.ErrNotFound
	}
	delete(s.refreshTokens, oldID)
	s.refreshTokens[token.ID] = token
	return nil
}

func (s *MemoryStorage) RevokeRefreshToken(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.refreshTokens, id)
	return nil
}

func (s *MemoryStorage) RevokeTokensForGrant(_ context.Context, grantID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, token := range s.accessTokens {
		if token.GrantID == grantID {
			delete(s.accessTokens, id)
		}
	}
	for id, token := range s.refreshTokens {
		if token.GrantID == grantID {
			delete(s.refreshTokens, id)
		}
	}
	return nil
}

func (s *MemoryStorage) RevokeTokensForSession(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.revokeSessionTokensLocked(sessionID)
	return nil
}

func (s *MemoryStorage) revokeSessionTokensLocked(sessionID string) {
	for id, token := range s.accessTokens {
		if token.SessionID == sessionID {
			delete(s.accessTokens, id)
		}
	}
	for id, token := range s.refreshTokens {
		if token.SessionID == sessionID {
			delete(s.refreshTokens, id)
		}
	}
}

func (s *MemoryStorage) AuthenticateUser(_ context.Context, username, password string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[username]
	if !ok {
		return "", oidc.ErrUsernameInvalid()
	}
	if subtle.ConstantTimeCompare([]byte(user.Password), []byte(password)) != 1 {
		return "", oidc.ErrAccessDenied().WithDescription("invalid credentials")
	}
	return user.ID, nil
}

func (s *MemoryStorage) UserInfoBySubject(_ context.Context, subject string, scopes []string) (*oidc.UserInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, user := range s.users {
		if user.ID == subject {
			return scopedUserInfo(user.UserInfo, scopes), nil
		}
	}
	return nil, op.ErrNotFound
}

// scopedUserInfo reduces the stored claims to what the granted scopes
// allow.
func scopedUserInfo(info *oidc.UserInfo, scopes []string) *oidc.UserInfo {
	scoped := &oidc.UserInfo{Subject: info.Subject}
	for _, scope := range scopes {
		switch scope {
		case oidc.ScopeProfile:
			scoped.UserInfoProfile = info.UserInfoProfile
		case oidc.ScopeEmail:
			scoped.UserInfoEmail = info.UserInfoEmail
		case oidc.ScopePhone:
			scoped.UserInfoPhone = info.UserInfoPhone
		case oidc.ScopeAddress:
			scoped.Address = info.Address
		}
	}
	return scoped
}

func (s *MemoryStorage) SaveSSA(_ context.Context, ssa *op.SSA) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ssas[ssa.JTI] = ssa
	return nil
}

func (s *MemoryStorage) SSAByJTI(_ context.Context, jti string) (*op.SSA, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ssa, ok := s.ssas[jti]
	if !ok {
		return nil, op.ErrNotFound
	}
	return ssa, nil
}

func (s *MemoryStorage) SSAsByOrg(_ context.Context, orgID string) ([]*op.SSA, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ssas := make([]*op.SSA, 0)
	for _, ssa := range s.ssas {
		if ssa.OrgID == orgID {
			ssas = append(ssas, ssa)
		}
	}
	return ssas, nil
}

func (s *MemoryStorage) RevokeSSA(_ context.Context, jti string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	ssa, ok := s.ssas[jti]
	if !ok {
		return op.ErrNotFound
	}
	ssa.Revoked = true
	return nil
}

func (s *MemoryStorage) SigningKey(context.Context) (op.SigningKey, error) {
	return s.signingKey, nil
}

func (s *MemoryStorage) KeySet(context.Context) ([]op.Key, error) {
	return []op.Key{&publicKey{s.signingKey}}, nil
}

type signingKey struct {
	id        string
	algorithm jose.SignatureAlgorithm
	key       *rsa.PrivateKey
}

func (k *signingKey) SignatureAlgorithm() jose.SignatureAlgorithm {
	return k.algorithm
}

func (k *signingKey) Key() any {
	return k.key
}

func (k *signingKey) ID() string {
	return k.id
}

type publicKey struct {
	*signingKey
}

func (k *publicKey) Use() string {
	return "sig"
}

func (k *publicKey) Algorithm() jose.SignatureAlgorithm {
	return k.algorithm
}

func (k *publicKey) Key() any {
	return &k.key.PublicKey
}
