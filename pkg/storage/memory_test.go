package storage

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/auric-id/auric/pkg/oidc"
	"github.com/auric-id/auric/pkg/op"
)

func newTestStorage(t *testing.T) *MemoryStorage {
	t.Helper()
	s, err := NewMemoryStorage(func(grantID string) string {
		return "https://issuer.example.com/login?id=" + grantID
	})
	require.NoError(t, err)
	return s
}

func testUser() *User {
	return &User{
		ID:       "id1",
		Username: "test-user",
		Password: "verysecure",
		UserInfo: &oidc.UserInfo{
			Subject: "id1",
			UserInfoProfile: oidc.UserInfoProfile{
				Name:              "Test User",
				PreferredUsername: "test-user",
			},
			UserInfoEmail: oidc.UserInfoEmail{
				Email:         "test-user@example.com",
				EmailVerified: true,
			},
		},
		Attributes: map[string]string{"org": "acme"},
	}
}

func TestMemoryStorage_AuthorizeClientIDSecret(t *testing.T) {
	s := newTestStorage(t)
	s.AddClient(&op.ClientRegistration{
		ClientID:     "web",
		ClientSecret: "secret",
		Metadata:     &oidc.ClientMetadata{},
	})
	s.AddClient(&op.ClientRegistration{
		ClientID:        "expired",
		ClientSecret:    "secret",
		SecretExpiresAt: time.Now().Add(-time.Hour),
		Metadata:        &oidc.ClientMetadata{},
	})
	ctx := context.Background()

	assert.NoError(t, s.AuthorizeClientIDSecret(ctx, "web", "secret"))
	assert.Error(t, s.AuthorizeClientIDSecret(ctx, "web", "wrong"))
	assert.Error(t, s.AuthorizeClientIDSecret(ctx, "unknown", "secret"))
	assert.Error(t, s.AuthorizeClientIDSecret(ctx, "expired", "secret"))
}

func TestMemoryStorage_ClientByID(t *testing.T) {
	s := newTestStorage(t)
	s.AddClient(&op.ClientRegistration{ClientID: "web", Metadata: &oidc.ClientMetadata{}})
	ctx := context.Background()

	client, err := s.ClientByID(ctx, "web")
	require.NoError(t, err)
	assert.Equal(t, "web", client.GetID())

	_, err = s.ClientByID(ctx, "unknown")
	assert.ErrorIs(t, err, op.ErrNotFound)
}

func TestMemoryStorage_UpdateGrant_stageRegression(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()
	grant := &op.Grant{
		ID:        "grant-1",
		ClientID:  "web",
		Stage:     op.StageConsented,
		ExpiresAt: time.Now().Add(time.Minute),
	}
	require.NoError(t, s.CreateGrant(ctx, grant))

	forward := *grant
	forward.Stage = op.StageIssued
	require.NoError(t, s.UpdateGrant(ctx, &forward))

	backward := *grant
	backward.Stage = op.StageAuthenticated
	assert.Error(t, s.UpdateGrant(ctx, &backward))

	stored, err := s.GrantByID(ctx, "grant-1")
	require.NoError(t, err)
	assert.Equal(t, op.StageIssued, stored.Stage)
}

func TestMemoryStorage_TakeGrantByCode(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()
	grant := &op.Grant{
		ID:        "grant-1",
		ClientID:  "web",
		Stage:     op.StageConsented,
		ExpiresAt: time.Now().Add(time.Minute),
	}
	require.NoError(t, s.CreateGrant(ctx, grant))
	require.NoError(t, s.BindGrantCode(ctx, "grant-1", "the-code"))

	got, err := s.TakeGrantByCode(ctx, "the-code")
	require.NoError(t, err)
	assert.Equal(t, "grant-1", got.ID)

	// the replay returns the grant so the caller can revoke it
	replayed, err := s.TakeGrantByCode(ctx, "the-code")
	assert.ErrorIs(t, err, op.ErrCodeConsumed)
	require.NotNil(t, replayed)
	assert.Equal(t, "grant-1", replayed.ID)

	_, err = s.TakeGrantByCode(ctx, "unknown-code")
	assert.ErrorIs(t, err, op.ErrNotFound)
}

func TestMemoryStorage_RotateRefreshToken(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()
	old := &op.RefreshToken{
		ID:        "rt-1",
		GrantID:   "grant-1",
		ClientID:  "web",
		Subject:   "id1",
		ExpiresAt: time.Now().Add(time.Hour),
	}
	require.NoError(t, s.SaveRefreshToken(ctx, old))

	successor := &op.RefreshToken{
		ID:        "rt-2",
		GrantID:   "grant-1",
		ClientID:  "web",
		Subject:   "id1",
		ExpiresAt: time.Now().Add(time.Hour),
	}
	require.NoError(t, s.RotateRefreshToken(ctx, "rt-1", successor))

	_, err := s.RefreshTokenByID(ctx, "rt-1")
	assert.ErrorIs(t, err, op.ErrNotFound)
	got, err := s.RefreshTokenByID(ctx, "rt-2")
	require.NoError(t, err)
	assert.Equal(t, "grant-1", got.GrantID)
}

func TestMemoryStorage_RevokeTokensForGrant(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()
	require.NoError(t, s.SaveAccessToken(ctx, &op.AccessToken{ID: "at-1", GrantID: "grant-1", ExpiresAt: time.Now().Add(time.Hour)}))
	require.NoError(t, s.SaveAccessToken(ctx, &op.AccessToken{ID: "at-2", GrantID: "grant-2", ExpiresAt: time.Now().Add(time.Hour)}))
	require.NoError(t, s.SaveRefreshToken(ctx, &op.RefreshToken{ID: "rt-1", GrantID: "grant-1", ExpiresAt: time.Now().Add(time.Hour)}))

	require.NoError(t, s.RevokeTokensForGrant(ctx, "grant-1"))

	_, err := s.AccessTokenByID(ctx, "at-1")
	assert.ErrorIs(t, err, op.ErrNotFound)
	_, err = s.RefreshTokenByID(ctx, "rt-1")
	assert.ErrorIs(t, err, op.ErrNotFound)
	_, err = s.AccessTokenByID(ctx, "at-2")
	assert.NoError(t, err)
}

func TestMemoryStorage_TerminateSessionsByUserAttribute(t *testing.T) {
	ctx := context.Background()
	expires := time.Now().Add(time.Hour)

	tests := []struct {
		name        string
		key, value  string
		wantRevoked int
		wantGone    []string
	}{
		{"by subject", "sub", "id1", 2, []string{"sess-1", "sess-2"}},
		{"by username", "uid", "other", 1, []string{"sess-3"}},
		{"by attribute", "org", "acme", 1, []string{"sess-3"}},
		{"no match", "sub", "id9", 0, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestStorage(t)
			require.NoError(t, s.CreateSession(ctx, &op.Session{ID: "sess-1", Subject: "id1", Username: "test-user", ExpiresAt: expires}))
			require.NoError(t, s.CreateSession(ctx, &op.Session{ID: "sess-2", Subject: "id1", Username: "test-user", ExpiresAt: expires}))
			require.NoError(t, s.CreateSession(ctx, &op.Session{ID: "sess-3", Subject: "id2", Username: "other", ExpiresAt: expires, Attributes: map[string]string{"org": "acme"}}))

			revoked, err := s.TerminateSessionsByUserAttribute(ctx, tt.key, tt.value)
			require.NoError(t, err)
			assert.Equal(t, tt.wantRevoked, revoked)
			for _, id := range tt.wantGone {
				_, err := s.SessionByID(ctx, id)
				assert.ErrorIs(t, err, op.ErrNotFound, "session %s should be gone", id)
			}
		})
	}
}

func TestMemoryStorage_AuthenticateUser(t *testing.T) {
	s := newTestStorage(t)
	s.AddUser(testUser())
	ctx := context.Background()

	subject, err := s.AuthenticateUser(ctx, "test-user", "verysecure")
	require.NoError(t, err)
	assert.Equal(t, "id1", subject)

	_, err = s.AuthenticateUser(ctx, "unknown", "verysecure")
	assert.ErrorIs(t, err, oidc.ErrUsernameInvalid())

	_, err = s.AuthenticateUser(ctx, "test-user", "wrong")
	assert.ErrorIs(t, err, oidc.ErrAccessDenied())
}

func TestMemoryStorage_UserInfoBySubject(t *testing.T) {
	s := newTestStorage(t)
	s.AddUser(testUser())
	ctx := context.Background()

	t.Run("openid only", func(t *testing.T) {
		info, err := s.UserInfoBySubject(ctx, "id1", []string{oidc.ScopeOpenID})
		require.NoError(t, err)
		assert.Equal(t, "id1", info.Subject)
		assert.Empty(t, info.Name)
		assert.Empty(t, info.Email)
	})

	t.Run("profile and email", func(t *testing.T) {
		info, err := s.UserInfoBySubject(ctx, "id1", []string{oidc.ScopeOpenID, oidc.ScopeProfile, oidc.ScopeEmail})
		require.NoError(t, err)
		assert.Equal(t, "Test User", info.Name)
		assert.Equal(t, "test-user@example.com", info.Email)
		assert.True(t, info.EmailVerified)
	})

	t.Run("unknown subject", func(t *testing.T) {
		_, err := s.UserInfoBySubject(ctx, "id9", []string{oidc.ScopeOpenID})
		assert.ErrorIs(t, err, op.ErrNotFound)
	})
}

func TestMemoryStorage_SSA(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()
	expires := time.Now().Add(time.Hour)
	require.NoError(t, s.SaveSSA(ctx, &op.SSA{JTI: "jti-1", OrgID: "org-1", ExpiresAt: expires}))
	require.NoError(t, s.SaveSSA(ctx, &op.SSA{JTI: "jti-2", OrgID: "org-1", ExpiresAt: expires}))
	require.NoError(t, s.SaveSSA(ctx, &op.SSA{JTI: "jti-3", OrgID: "org-2", ExpiresAt: expires}))

	ssas, err := s.SSAsByOrg(ctx, "org-1")
	require.NoError(t, err)
	assert.Len(t, ssas, 2)

	require.NoError(t, s.RevokeSSA(ctx, "jti-1"))
	ssa, err := s.SSAByJTI(ctx, "jti-1")
	require.NoError(t, err)
	assert.True(t, ssa.Revoked)

	assert.ErrorIs(t, s.RevokeSSA(ctx, "jti-9"), op.ErrNotFound)
}

func TestMemoryStorage_Keys(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	signing, err := s.SigningKey(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, signing.ID())

	keys, err := s.KeySet(ctx)
	require.NoError(t, err)
	require.Len(t, keys, 1)
	assert.Equal(t, signing.ID(), keys[0].ID())
	assert.Equal(t, "sig", keys[0].Use())
}
