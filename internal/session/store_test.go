package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/HealthDash/HealthDash/internal/db/dbtest"
	"github.com/HealthDash/HealthDash/internal/db/kvstore"
	"github.com/HealthDash/HealthDash/internal/rbac"
)

func TestTokenStore(t *testing.T) {
	backends := map[string]func(t *testing.T) *TokenStore{
		"memory": func(*testing.T) *TokenStore {
			return NewTokenStore(newMemoryStorage())
		},
		"kvstore": func(t *testing.T) *TokenStore {
			return NewTokenStore(kvstore.New(dbtest.New(t), "session:"))
		},
	}

	for name, open := range backends {
		t.Run(name, func(t *testing.T) {
			store := open(t)

			token, err := store.Load()
			require.NoError(t, err)
			assert.Empty(t, token.AccessToken)
			assert.Empty(t, token.RefreshToken)

			require.NoError(t, store.Save(&oauth2.Token{AccessToken: "a1", RefreshToken: "r1"}))
			require.NoError(t, store.SaveAccessToken("a2"))

			token, err = store.Load()
			require.NoError(t, err)
			assert.Equal(t, "a2", token.AccessToken)
			assert.Equal(t, "r1", token.RefreshToken)
			assert.Equal(t, "Bearer", token.Type())

			require.NoError(t, store.SaveRefreshToken(""))

			token, err = store.Load()
			require.NoError(t, err)
			assert.Equal(t, "a2", token.AccessToken)
			assert.Empty(t, token.RefreshToken)

			require.NoError(t, store.Clear())
			require.NoError(t, store.Clear())

			token, err = store.Load()
			require.NoError(t, err)
			assert.Empty(t, token.AccessToken)
		})
	}
}

func TestSession_Viewer(t *testing.T) {
	var s Session

	role, ok := s.CurrentRole()
	assert.False(t, ok)
	assert.Empty(t, role)
	assert.False(t, s.Authenticated())

	for _, p := range []string{"dashboard:read", "users:write", "anything"} {
		assert.False(t, s.HasPermission(rbac.Permission(p)))
	}
}
