package storage

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/auric-id/auric/pkg/oidc"
	"github.com/auric-id/auric/pkg/op"
)

func newTestRedisStorage(t *testing.T) (*RedisStorage, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	memory := newTestStorage(t)
	return NewRedisStorage(client, memory), mr
}

func TestRedisStorage_Health(t *testing.T) {
	s, mr := newTestRedisStorage(t)
	assert.NoError(t, s.Health(context.Background()))
	mr.Close()
	assert.Error(t, s.Health(context.Background()))
}

func TestRedisStorage_Sessions(t *testing.T) {
	s, mr := newTestRedisStorage(t)
	ctx := context.Background()
	session := &op.Session{
		ID:        "sess-1",
		Subject:   "id1",
		Username:  "test-user",
		ExpiresAt: time.Now().Add(time.Hour),
	}
	require.NoError(t, s.CreateSession(ctx, session))

	got, err := s.SessionByID(ctx, "sess-1")
	require.NoError(t, err)
	assert.Equal(t, "id1", got.Subject)

	t.Run("expiry", func(t *testing.T) {
		mr.FastForward(2 * time.Hour)
		_, err := s.SessionByID(ctx, "sess-1")
		assert.ErrorIs(t, err, op.ErrNotFound)
	})
}

func TestRedisStorage_TerminateSession(t *testing.T) {
	s, _ := newTestRedisStorage(t)
	ctx := context.Background()
	require.NoError(t, s.CreateSession(ctx, &op.Session{ID: "sess-1", Subject: "id1", ExpiresAt: time.Now().Add(time.Hour)}))

	require.NoError(t, s.TerminateSession(ctx, "sess-1"))
	_, err := s.SessionByID(ctx, "sess-1")
	assert.ErrorIs(t, err, op.ErrNotFound)
	assert.ErrorIs(t, s.TerminateSession(ctx, "sess-1"), op.ErrNotFound)
}

func TestRedisStorage_TerminateSessionsByUserAttribute(t *testing.T) {
	s, _ := newTestRedisStorage(t)
	ctx := context.Background()
	expires := time.Now().Add(time.Hour)
	require.NoError(t, s.CreateSession(ctx, &op.Session{ID: "sess-1", Subject: "id1", ExpiresAt: expires}))
	require.NoError(t, s.CreateSession(ctx, &op.Session{ID: "sess-2", Subject: "id1", ExpiresAt: expires}))
	require.NoError(t, s.CreateSession(ctx, &op.Session{ID: "sess-3", Subject: "id2", ExpiresAt: expires}))
	require.NoError(t, s.SaveAccessToken(ctx, &op.AccessToken{ID: "at-1", SessionID: "sess-1", ExpiresAt: expires}))

	revoked, err := s.TerminateSessionsByUserAttribute(ctx, "sub", "id1")
	require.NoError(t, err)
	assert.Equal(t, 2, revoked)

	_, err = s.SessionByID(ctx, "sess-1")
	assert.ErrorIs(t, err, op.ErrNotFound)
	_, err = s.AccessTokenByID(ctx, "at-1")
	assert.ErrorIs(t, err, op.ErrNotFound)
	_, err = s.SessionByID(ctx, "sess-3")
	assert.NoError(t, err)
}

func TestRedisStorage_TakeGrantByCode(t *testing.T) {
	s, _ := newTestRedisStorage(t)
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

	// the consumed marker survives the code and resolves the grant
	replayed, err := s.TakeGrantByCode(ctx, "the-code")
	assert.ErrorIs(t, err, op.ErrCodeConsumed)
	require.NotNil(t, replayed)
	assert.Equal(t, "grant-1", replayed.ID)

	_, err = s.TakeGrantByCode(ctx, "unknown-code")
	assert.ErrorIs(t, err, op.ErrNotFound)
}

func TestRedisStorage_UpdateGrant_stageRegression(t *testing.T) {
	s, _ := newTestRedisStorage(t)
	ctx := context.Background()
	grant := &op.Grant{
		ID:        "grant-1",
		ClientID:  "web",
		Stage:     op.StageIssued,
		ExpiresAt: time.Now().Add(time.Minute),
	}
	require.NoError(t, s.CreateGrant(ctx, grant))

	backward := *grant
	backward.Stage = op.StageRequested
	assert.Error(t, s.UpdateGrant(ctx, &backward))

	forward := *grant
	forward.Stage = op.StageConsumed
	assert.NoError(t, s.UpdateGrant(ctx, &forward))
}

func TestRedisStorage_RevokeTokensForGrant(t *testing.T) {
	s, _ := newTestRedisStorage(t)
	ctx := context.Background()
	expires := time.Now().Add(time.Hour)
	require.NoError(t, s.SaveAccessToken(ctx, &op.AccessToken{ID: "at-1", GrantID: "grant-1", ExpiresAt: expires}))
	require.NoError(t, s.SaveRefreshToken(ctx, &op.RefreshToken{ID: "rt-1", GrantID: "grant-1", ExpiresAt: expires}))
	require.NoError(t, s.SaveAccessToken(ctx, &op.AccessToken{ID: "at-2", GrantID: "grant-2", ExpiresAt: expires}))

	require.NoError(t, s.RevokeTokensForGrant(ctx, "grant-1"))

	_, err := s.AccessTokenByID(ctx, "at-1")
	assert.ErrorIs(t, err, op.ErrNotFound)
	_, err = s.RefreshTokenByID(ctx, "rt-1")
	assert.ErrorIs(t, err, op.ErrNotFound)
	_, err = s.AccessTokenByID(ctx, "at-2")
	assert.NoError(t, err)
}

func TestRedisStorage_RotateRefreshToken(t *testing.T) {
	s, _ := newTestRedisStorage(t)
	ctx := context.Background()
	expires := time.Now().Add(time.Hour)
	require.NoError(t, s.SaveRefreshToken(ctx, &op.RefreshToken{ID: "rt-1", GrantID: "grant-1", ExpiresAt: expires}))

	successor := &op.RefreshToken{ID: "rt-2", GrantID: "grant-1", ExpiresAt: expires}
	require.NoError(t, s.RotateRefreshToken(ctx, "rt-1", successor))

	_, err := s.RefreshTokenByID(ctx, "rt-1")
	assert.ErrorIs(t, err, op.ErrNotFound)
	_, err = s.RefreshTokenByID(ctx, "rt-2")
	assert.NoError(t, err)

	// rotating an already rotated token must fail
	assert.ErrorIs(t, s.RotateRefreshToken(ctx, "rt-1", &op.RefreshToken{ID: "rt-3", ExpiresAt: expires}), op.ErrNotFound)
}

func TestRedisStorage_SSA(t *testing.T) {
	s, _ := newTestRedisStorage(t)
	ctx := context.Background()
	expires := time.Now().Add(time.Hour)
	require.NoError(t, s.SaveSSA(ctx, &op.SSA{JTI: "jti-1", OrgID: "org-1", ExpiresAt: expires}))
	require.NoError(t, s.SaveSSA(ctx, &op.SSA{JTI: "jti-2", OrgID: "org-1", ExpiresAt: expires}))

	ssas, err := s.SSAsByOrg(ctx, "org-1")
	require.NoError(t, err)
	assert.Len(t, ssas, 2)

	require.NoError(t, s.RevokeSSA(ctx, "jti-1"))
	ssa, err := s.SSAByJTI(ctx, "jti-1")
	require.NoError(t, err)
	assert.True(t, ssa.Revoked)
}

func TestRedisStorage_clientsStayLocal(t *testing.T) {
	s, mr := newTestRedisStorage(t)
	s.AddClient(&op.ClientRegistration{ClientID: "web", Metadata: &oidc.ClientMetadata{}})
	ctx := context.Background()

	client, err := s.ClientByID(ctx, "web")
	require.NoError(t, err)
	assert.Equal(t, "web", client.GetID())
	assert.Empty(t, mr.Keys())
}
