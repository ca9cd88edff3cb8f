package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/auric-id/auric/pkg/op"
)

const (
	keySession       = "auric:session:"
	keySessionIndex  = "auric:sessions"
	keyGrant         = "auric:grant:"
	keyCode          = "auric:code:"
	keyCodeConsumed  = "auric:code:used:"
	keyAccessToken   = "auric:at:"
	keyRefreshToken  = "auric:rt:"
	keyGrantTokens   = "auric:grant:tokens:"
	keySessionTokens = "auric:session:tokens:"
	keySSA           = "auric:ssa:"
	keySSAOrg        = "auric:ssa:org:"
)

// consumedCodeRetention keeps the used marker of a code around long
// enough to detect replays after the code itself expired.
const consumedCodeRetention = 24 * time.Hour

// RedisStorage keeps the hot, shared state (sessions, grants, codes,
// tokens, software statements) in Redis and delegates clients, users
// and keys to the embedded in-memory store.
type RedisStorage struct {
	*MemoryStorage
	client redis.UniversalClient
}

func NewRedisStorage(client redis.UniversalClient, memory *MemoryStorage) *RedisStorage {
	return &RedisStorage{MemoryStorage: memory, client: client}
}

func (s *RedisStorage) Health(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func setJSON(ctx context.Context, client redis.UniversalClient, key string, value any, expiresAt time.Time) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	var ttl time.Duration
	if !expiresAt.IsZero() {
		ttl = time.Until(expiresAt)
		if ttl <= 0 {
			return fmt.Errorf("%s already expired", key)
		}
	}
	return client.Set(ctx, key, data, ttl).Err()
}

func getJSON[T any](ctx context.Context, client redis.UniversalClient, key string) (*T, error) {
	data, err := client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, op.ErrNotFound
		}
		return nil, err
	}
	value := new(T)
	if err := json.Unmarshal(data, value); err != nil {
		return nil, err
	}
	return value, nil
}

func (s *RedisStorage) CreateSession(ctx context.Context, session *op.Session) error {
	if err := setJSON(ctx, s.client, keySession+session.ID, session, session.ExpiresAt); err != nil {
		return err
	}
	return s.client.SAdd(ctx, keySessionIndex, session.ID).Err()
}

func (s *RedisStorage) SessionByID(ctx context.Context, id string) (*op.Session, error) {
	return getJSON[op.Session](ctx, s.client, keySession+id)
}

func (s *RedisStorage) SessionsByIDs(ctx context.Context, ids []string) ([]*op.Session, error) {
	sessions := make([]*op.Session, 0, len(ids))
	for _, id := range ids {
		session, err := s.SessionByID(ctx, id)
		if errors.Is(err, op.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, session)
	}
	return sessions, nil
}

func (s *RedisStorage) TouchSession(ctx context.Context, id string) error {
	session, err := s.SessionByID(ctx, id)
	if err != nil {
		return err
	}
	session.LastUsed = time.Now()
	return setJSON(ctx, s.client, keySession+id, session, session.ExpiresAt)
}

func (s *RedisStorage) TerminateSession(ctx context.Context, id string) error {
	deleted, err := s.client.Del(ctx, keySession+id).Result()
	if err != nil {
		return err
	}
	if deleted == 0 {
		return op.ErrNotFound
	}
	return s.client.SRem(ctx, keySessionIndex, id).Err()
}

func (s *RedisStorage) TerminateSessionsByUserAttribute(ctx context.Context, key, value string) (int, error) {
	ids, err := s.client.SMembers(ctx, keySessionIndex).Result()
	if err != nil {
		return 0, err
	}
	revoked := 0
	for _, id := range ids {
		session, err := s.SessionByID(ctx, id)
		if errors.Is(err, op.ErrNotFound) {
			s.client.SRem(ctx, keySessionIndex, id)
			continue
		}
		if err != nil {
			return revoked, err
		}
		if !sessionMatches(session, key, value) {
			continue
		}
		if err := s.RevokeTokensForSession(ctx, id); err != nil {
			return revoked, err
		}
		if err := s.TerminateSession(ctx, id); err != nil && !errors.Is(err, op.ErrNotFound) {
			return revoked, err
		}
		revoked++
	}
	return revoked, nil
}

func (s *RedisStorage) CreateGrant(ctx context.Context, grant *op.Grant) error {
	// grants live beyond the code lifetime, tokens reference them
	return setJSON(ctx, s.client, keyGrant+grant.ID, grant, time.Time{})
}

func (s *RedisStorage) GrantByID(ctx context.Context, id string) (*op.Grant, error) {
	return getJSON[op.Grant](ctx, s.client, keyGrant+id)
}

func (s *RedisStorage) UpdateGrant(ctx context.Context, grant *op.Grant) error {
	stored, err := s.GrantByID(ctx, grant.ID)
	if err != nil {
		return err
	}
	if grant.Stage < stored.Stage {
		return errors.New("grant stage cannot regress")
	}
	return setJSON(ctx, s.client, keyGrant+grant.ID, grant, time.Time{})
}

func (s *RedisStorage) BindGrantCode(ctx context.Context, grantID, code string) error {
	grant, err := s.GrantByID(ctx, grantID)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, keyCode+code, grantID, time.Until(grant.ExpiresAt)).Err()
}

// TakeGrantByCode consumes the code atomically with GETDEL, so two
// racing exchanges can never both succeed.
func (s *RedisStorage) TakeGrantByCode(ctx context.Context, code string) (*op.Grant, error) {
	grantID, err := s.client.GetDel(ctx, keyCode+code).Result()
	if err == nil && grantID != "" {
		if err := s.client.Set(ctx, keyCodeConsumed+code, grantID, consumedCodeRetention).Err(); err != nil {
			return nil, err
		}
		return s.GrantByID(ctx, grantID)
	}
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, err
	}
	grantID, err = s.client.Get(ctx, keyCodeConsumed+code).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, op.ErrNotFound
		}
		return nil, err
	}
	grant, grantErr := s.GrantByID(ctx, grantID)
	if grantErr != nil {
		return nil, op.ErrCodeConsumed
	}
	return grant, op.ErrCodeConsumed
}

func (s *RedisStorage) DeleteGrant(ctx context.Context, id string) error {
	deleted, err := s.client.Del(ctx, keyGrant+id).Result()
	if err != nil {
		return err
	}
	if deleted == 0 {
		return op.ErrNotFound
	}
	return nil
}

func (s *RedisStorage) SaveAccessToken(ctx context.Context, token *op.AccessToken) error {
	if err := setJSON(ctx, s.client, keyAccessToken+token.ID, token, token.ExpiresAt); err != nil {
		return err
	}
	return s.indexToken(ctx, "at:"+token.ID, token.GrantID, token.SessionID)
}

func (s *RedisStorage) AccessTokenByID(ctx context.Context, id string) (*op.AccessToken, error) {
	return getJSON[op.AccessToken](ctx, s.client, keyAccessToken+id)
}

func (s *RedisStorage) RevokeAccessToken(ctx context.Context, id string) error {
	return s.client.Del(ctx, keyAccessToken+id).Err()
}

func (s *RedisStorage) SaveRefreshToken(ctx context.Context, token *op.RefreshToken) error {
	if err := setJSON(ctx, s.client, keyRefreshToken+token.ID, token, token.ExpiresAt); err != nil {
		return err
	}
	return s.indexToken(ctx, "rt:"+token.ID, token.GrantID, token.SessionID)
}

func (s *RedisStorage) RefreshTokenByID(ctx context.Context, id string) (*op.RefreshToken, error) {
	return getJSON[op.RefreshToken](ctx, s.client, keyRefreshToken+id)
}

func (s *RedisStorage) RotateRefreshToken(ctx context.Context, oldID string, token *op.RefreshToken) error {
	deleted, err := s.client.Del(ctx, keyRefreshToken+oldID).Result()
	if err != nil {
		return err
	}
	if deleted == 0 {
		return op.ErrNotFound
	}
	return s.SaveRefreshToken(ctx, token)
}

func (s *RedisStorage) RevokeRefreshToken(ctx context.Context, id string) error {
	return s.client.Del(ctx, keyRefreshToken+id).Err()
}

func (s *RedisStorage) indexToken(ctx context.Context, member, grantID, sessionID string) error {
	if grantID != "" {
		if err := s.client.SAdd(ctx, keyGrantTokens+grantID, member).Err(); err != nil {
			return err
		}
	}
	if sessionID != "" {
		if err := s.client.SAdd(ctx, keySessionTokens+sessionID, member).Err(); err != nil {
			return err
		}
	}
	return nil
}

func (s *RedisStorage) RevokeTokensForGrant(ctx context.Context, grantID string) error {
	return s.revokeIndexedTokens(ctx, keyGrantTokens+grantID)
}

func (s *RedisStorage) RevokeTokensForSession(ctx context.Context, sessionID string) error {
	return s.revokeIndexedTokens(ctx, keySessionTokens+sessionID)
}

func (s *RedisStorage) revokeIndexedTokens(ctx context.Context, indexKey string) error {
	members, err := s.client.SMembers(ctx, indexKey).Result()
	if err != nil {
		return err
	}
	for _, member := range members {
		var key string
		switch {
		case len(member) > 3 && member[:3] == "at:":
			key = keyAccessToken + member[3:]
		case len(member) > 3 && member[:3] == "rt:":
			key = keyRefreshToken + member[3:]
		default:
			continue
		}
		if err := s.client.Del(ctx, key).Err(); err != nil {
			return err
		}
	}
	return s.client.Del(ctx, indexKey).Err()
}

func (s *RedisStorage) SaveSSA(ctx context.Context, ssa *op.SSA) error {
	if err := setJSON(ctx, s.client, keySSA+ssa.JTI, ssa, time.Time{}); err != nil {
		return err
	}
	return s.client.SAdd(ctx, keySSAOrg+ssa.OrgID, ssa.JTI).Err()
}

func (s *RedisStorage) SSAByJTI(ctx context.Context, jti string) (*op.SSA, error) {
	return getJSON[op.SSA](ctx, s.client, keySSA+jti)
}

func (s *RedisStorage) SSAsByOrg(ctx context.Context, orgID string) ([]*op.SSA, error) {
	jtis, err := s.client.SMembers(ctx, keySSAOrg+orgID).Result()
	if err != nil {
		return nil, err
	}
	ssas := make([]*op.SSA, 0, len(jtis))
	for _, jti := range jtis {
		ssa, err := s.SSAByJTI(ctx, jti)
		if errors.Is(err, op.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		ssas = append(ssas, ssa)
	}
	return ssas, nil
}

func (s *RedisStorage) RevokeSSA(ctx context.Context, jti string) error {
	ssa, err := s.SSAByJTI(ctx, jti)
	if err != nil {
		return err
	}
	ssa.Revoked = true
	return setJSON(ctx, s.client, keySSA+jti, ssa, time.Time{})
}
