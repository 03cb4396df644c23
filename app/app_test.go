package app

import (
	"bytes"
	"context"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HealthDash/HealthDash/internal/auth"
	"github.com/HealthDash/HealthDash/internal/config"
	"github.com/HealthDash/HealthDash/internal/db"
	"github.com/HealthDash/HealthDash/internal/db/dbtest"
	"github.com/HealthDash/HealthDash/internal/db/kvstore"
	"github.com/HealthDash/HealthDash/internal/rbac"
	"github.com/HealthDash/HealthDash/internal/session"
	"github.com/HealthDash/HealthDash/internal/web"
)

type testServer struct {
	web     *web.Service
	url     string
	tokenDB string
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	t.Setenv(EnvPassword, "")

	cfg := &config.Config{
		Title:     "HealthDash",
		Webserver: config.Webserver{Port: 8000, URL: "http://localhost", LoginRateLimit: 100},
		Auth: config.Auth{
			JWTSecret:           "test-secret",
			Issuer:              "healthdash-test",
			AccessTokenTTL:      config.Duration{Duration: 30 * time.Minute},
			RefreshTokenTTL:     config.Duration{Duration: time.Hour},
			SessionTTL:          config.Duration{Duration: time.Hour},
			RotateRefreshTokens: true,
		},
	}

	svc := web.New(cfg, dbtest.New(t), nil)

	_, err := svc.Auth().Users().CreateUser(context.Background(), auth.NewUser{
		Username: "qa",
		Email:    "qa@example.com",
		Password: "changeme",
		Role:     rbac.RoleQA,
	})
	require.NoError(t, err)

	srv := httptest.NewServer(adaptor.FiberApp(svc.App))
	t.Cleanup(srv.Close)

	return &testServer{
		web:     svc,
		url:     srv.URL + web.APIPath,
		tokenDB: filepath.Join(t.TempDir(), "nested", "tokens.db"),
	}
}

// run executes cmd against the test server and returns stdout and stderr.
func (s *testServer) run(t *testing.T, cmd *cobra.Command, stdin string, args ...string) (string, string, error) {
	t.Helper()

	var stdout, stderr bytes.Buffer

	cmd.SetArgs(append(args, "--"+flagAPIURL, s.url, "--"+flagTokenDB, s.tokenDB))
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)

	err := cmd.Execute()

	return stdout.String(), stderr.String(), err
}

// tokens opens the token database the commands share.
func (s *testServer) tokens(t *testing.T) *session.TokenStore {
	t.Helper()

	gdb, err := db.OpenSQLite(s.tokenDB)
	require.NoError(t, err)

	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	return session.NewTokenStore(kvstore.New(gdb, tokenPrefix))
}

func TestClientSettings(t *testing.T) {
	t.Setenv(EnvPrefix+"_API_URL", "http://env.example.com/api/v1")
	t.Setenv(EnvPrefix+"_TOKEN_DB", "")
	t.Setenv(EnvPrefix+"_TIMEOUT", "")

	cmd := &cobra.Command{Use: "test"}
	addClientFlags(cmd)

	settings, err := clientSettings(cmd)
	require.NoError(t, err)
	assert.Equal(t, "http://env.example.com/api/v1", settings.APIURL)
	assert.Equal(t, config.DefaultClientTimeout, settings.Timeout.Duration)
	assert.Equal(t, "tokens.db", filepath.Base(settings.TokenDB))

	require.NoError(t, cmd.Flags().Parse([]string{"--api-url", "http://flag.example.com", "--timeout", "5s"}))

	settings, err = clientSettings(cmd)
	require.NoError(t, err)
	assert.Equal(t, "http://flag.example.com", settings.APIURL)
	assert.Equal(t, 5*time.Second, settings.Timeout.Duration)
}

func TestLoginWhoamiLogout(t *testing.T) {
	s := newTestServer(t)

	_, _, err := s.run(t, newLoginCmd(), "wrong\n", "-u", "qa")
	require.ErrorIs(t, err, session.ErrInvalidCredentials)

	out, stderr, err := s.run(t, newLoginCmd(), "qa\nchangeme\n")
	require.NoError(t, err)
	assert.Equal(t, "logged in as qa (qa)\n", out)
	assert.Equal(t, "Username: Password: ", stderr)

	out, _, err = s.run(t, newWhoamiCmd(), "")
	require.NoError(t, err)
	assert.Contains(t, out, `"username": "qa"`)
	assert.Contains(t, out, `"performance:read"`)
	assert.NotContains(t, out, `"users:read"`)

	out, _, err = s.run(t, newRoutesCmd(), "")
	require.NoError(t, err)
	assert.Regexp(t, `/users\s+Users\s+forbidden\s+/dashboard`, out)
	assert.Regexp(t, `/dashboard\s+Dashboard\s+allowed\s+-`, out)

	out, _, err = s.run(t, newLogoutCmd(), "")
	require.NoError(t, err)
	assert.Equal(t, "logged out\n", out)

	_, _, err = s.run(t, newWhoamiCmd(), "")
	require.ErrorIs(t, err, session.ErrNotAuthenticated)

	out, _, err = s.run(t, newRoutesCmd(), "")
	require.NoError(t, err)
	assert.Regexp(t, `/dashboard\s+Dashboard\s+unauthenticated\s+/login`, out)
}

func TestGet(t *testing.T) {
	s := newTestServer(t)

	_, _, err := s.run(t, newLoginCmd(), "", "-u", "qa")
	require.Error(t, err, "empty password")

	t.Setenv(EnvPassword, "changeme")

	_, _, err = s.run(t, newLoginCmd(), "", "-u", "qa")
	require.NoError(t, err)

	out, _, err := s.run(t, newGetCmd(), "", "navigation")
	require.NoError(t, err)
	assert.Contains(t, out, `"menu"`)

	out, _, err = s.run(t, newGetCmd(), "", "/auth/users")
	require.ErrorIs(t, err, ErrRequestFailed)
	assert.Contains(t, out, auth.DetailNotEnoughPermissions)
}

func TestGetSessionExpired(t *testing.T) {
	s := newTestServer(t)
	t.Setenv(EnvPassword, "changeme")

	_, _, err := s.run(t, newLoginCmd(), "", "-u", "qa")
	require.NoError(t, err)

	store := s.tokens(t)

	token, err := store.Load()
	require.NoError(t, err)
	require.NoError(t, s.web.Auth().Logout(context.Background(), token.RefreshToken))
	require.NoError(t, store.SaveAccessToken("expired"))

	_, stderr, err := s.run(t, newGetCmd(), "", "/navigation")
	require.ErrorIs(t, err, session.ErrSessionExpired)
	assert.Contains(t, stderr, loginHint)

	token, err = store.Load()
	require.NoError(t, err)
	assert.Empty(t, token.AccessToken)
}
