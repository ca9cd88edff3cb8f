package op

import (
	"testing"
	"time"

	"github.com/muhlemmer/gu"
	"github.com/stretchr/testify/assert"

	"github.com/auric-id/auric/pkg/oidc"
)

func Test_matchSession(t *testing.T) {
	session := &Session{
		ID:       "sess-1",
		Subject:  "sub-1",
		Username: "test-user",
		AuthTime: time.Now().Add(-time.Hour),
	}
	tests := []struct {
		name    string
		authReq *oidc.AuthRequest
		want    bool
	}{
		{
			name:    "plain request keeps session",
			authReq: &oidc.AuthRequest{},
			want:    true,
		},
		{
			name:    "matching session_id",
			authReq: &oidc.AuthRequest{SessionID: "sess-1"},
			want:    true,
		},
		{
			name:    "other session_id",
			authReq: &oidc.AuthRequest{SessionID: "sess-2"},
		},
		{
			name:    "max_age exceeded",
			authReq: &oidc.AuthRequest{MaxAge: gu.Ptr[uint](60)},
		},
		{
			name:    "max_age satisfied",
			authReq: &oidc.AuthRequest{MaxAge: gu.Ptr[uint](7200)},
			want:    true,
		},
		{
			name:    "login_hint for other user",
			authReq: &oidc.AuthRequest{LoginHint: "other-user"},
		},
		{
			name:    "login_hint for same user",
			authReq: &oidc.AuthRequest{LoginHint: "test-user"},
			want:    true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := matchSession(session, tt.authReq)
			if tt.want {
				assert.Equal(t, session, got)
				return
			}
			assert.Nil(t, got)
		})
	}
	t.Run("nil session", func(t *testing.T) {
		assert.Nil(t, matchSession(nil, &oidc.AuthRequest{}))
	})
}
