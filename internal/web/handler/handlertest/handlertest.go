// Package handlertest wires API handlers onto an in-memory database for tests.
package handlertest

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/HealthDash/HealthDash/internal/auth"
	"github.com/HealthDash/HealthDash/internal/config"
	"github.com/HealthDash/HealthDash/internal/db/dbtest"
	"github.com/HealthDash/HealthDash/internal/db/models"
	"github.com/HealthDash/HealthDash/internal/rbac"
	"github.com/HealthDash/HealthDash/internal/web/handler"
)

// Password is the password of every seeded user.
const Password = "password123"

// Env is a fiber app with an auth service on a fresh database.
type Env struct {
	T    *testing.T
	App  *fiber.App
	API  fiber.Router
	DB   *gorm.DB
	Cfg  *config.Config
	Auth *auth.Service
}

// New returns an Env whose API group is mounted at /api/v1.
func New(t *testing.T) *Env {
	t.Helper()

	cfg := &config.Config{
		Title: "HealthDash",
		Auth: config.Auth{
			JWTSecret:           "test-secret",
			Issuer:              "healthdash-test",
			AccessTokenTTL:      config.Duration{Duration: 30 * time.Minute},
			RefreshTokenTTL:     config.Duration{Duration: time.Hour},
			SessionTTL:          config.Duration{Duration: time.Hour},
			RotateRefreshTokens: true,
		},
	}

	db := dbtest.New(t)
	app := fiber.New(fiber.Config{ErrorHandler: handler.ErrorHandler})

	return &Env{
		T:    t,
		App:  app,
		API:  app.Group("/api/v1"),
		DB:   db,
		Cfg:  cfg,
		Auth: auth.NewService(db, cfg.Auth),
	}
}

// Init registers s on the API group.
func (e *Env) Init(s handler.Service) *Env {
	e.T.Helper()

	require.NoError(e.T, s.Init(e.API, e.Cfg, e.Auth))

	return e
}

// Seed creates an active user with role.
func (e *Env) Seed(username string, role rbac.Role) *models.User {
	e.T.Helper()

	user, err := e.Auth.Users().CreateUser(context.Background(), auth.NewUser{
		Username:  username,
		Email:     username + "@example.com",
		Password:  Password,
		FirstName: "Test",
		LastName:  "User",
		Role:      role,
	})
	require.NoError(e.T, err)

	return user
}

// Login returns the tokens of a seeded user.
func (e *Env) Login(username string) *auth.Tokens {
	e.T.Helper()

	tokens, err := e.Auth.Login(context.Background(), username, Password, auth.Client{IP: "127.0.0.1"})
	require.NoError(e.T, err)

	return tokens
}

// Do sends a request to the app. A non-nil body is sent as JSON and a
// non-empty token as bearer.
func (e *Env) Do(method, path, token string, body any) *http.Response {
	e.T.Helper()

	var reader io.Reader

	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(e.T, err)

		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)

	if body != nil {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}

	if token != "" {
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	}

	resp, err := e.App.Test(req, -1)
	require.NoError(e.T, err)

	return resp
}

// Decode reads the JSON body of resp into out.
func (e *Env) Decode(resp *http.Response, out any) {
	e.T.Helper()

	defer resp.Body.Close()

	require.NoError(e.T, json.NewDecoder(resp.Body).Decode(out))
}
