package session

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HealthDash/HealthDash/internal/api"
	"github.com/HealthDash/HealthDash/internal/rbac"
)

// memoryStorage is an in-memory fiber.Storage.
type memoryStorage struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newMemoryStorage() *memoryStorage {
	return &memoryStorage{data: make(map[string][]byte)}
}

func (m *memoryStorage) Get(key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.data[key], nil
}

func (m *memoryStorage) Set(key string, val []byte, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.data[key] = append([]byte(nil), val...)

	return nil
}

func (m *memoryStorage) Delete(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.data, key)

	return nil
}

func (m *memoryStorage) Reset() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.data = make(map[string][]byte)

	return nil
}

func (m *memoryStorage) Close() error {
	return nil
}

func (m *memoryStorage) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return len(m.data)
}

// backend simulates the dashboard API. Access tokens listed in valid are
// accepted; refresh exchanges refreshToken for nextAccess.
type backend struct {
	t *testing.T

	mu           sync.Mutex
	valid        map[string]bool
	refreshToken string
	nextAccess   string
	rotateTo     string
	refreshDelay time.Duration
	user         api.User

	logins    atomic.Int32
	logouts   atomic.Int32
	refreshes atomic.Int32
	data      atomic.Int32
	lastBody  atomic.Value

	// dataHook runs before /data answers.
	dataHook func(token string)
}

func newBackend(t *testing.T) (*backend, *httptest.Server) {
	t.Helper()

	b := &backend{
		t:            t,
		valid:        map[string]bool{},
		refreshToken: "refresh-1",
		nextAccess:   "access-2",
		user:         api.User{ID: 1, Username: "ada", Email: "ada@example.com", Role: rbac.RoleDevOps, IsActive: true},
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /auth/login", b.login)
	mux.HandleFunc("POST /auth/logout", b.logout)
	mux.HandleFunc("GET /auth/me", b.me)
	mux.HandleFunc("POST /auth/refresh", b.refresh)
	mux.HandleFunc("/data", b.serveData)

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	return b, srv
}

func (b *backend) accept(token string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.valid[token] = true
}

func (b *backend) revoke(token string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	delete(b.valid, token)
}

func (b *backend) authorized(r *http.Request) (string, bool) {
	token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")

	b.mu.Lock()
	defer b.mu.Unlock()

	return token, b.valid[token]
}

func (b *backend) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	assert.NoError(b.t, json.NewEncoder(w).Encode(v))
}

func (b *backend) login(w http.ResponseWriter, r *http.Request) {
	b.logins.Add(1)

	var req api.LoginRequest
	assert.NoError(b.t, json.NewDecoder(r.Body).Decode(&req))

	if req.Username != "ada" || req.Password != "secret" {
		b.writeJSON(w, http.StatusUnauthorized, api.ErrorResponse{Detail: "Incorrect username or password"})

		return
	}

	b.accept("access-1")

	b.writeJSON(w, http.StatusOK, api.LoginResponse{
		User:         &b.user,
		Token:        "access-1",
		AccessToken:  "access-1",
		RefreshToken: b.refreshToken,
		TokenType:    api.TokenTypeBearer,
	})
}

func (b *backend) logout(w http.ResponseWriter, r *http.Request) {
	b.logouts.Add(1)

	var req api.RefreshRequest
	assert.NoError(b.t, json.NewDecoder(r.Body).Decode(&req))
	b.lastBody.Store(req.RefreshToken)

	b.writeJSON(w, http.StatusOK, api.Message{Message: "Successfully logged out"})
}

func (b *backend) me(w http.ResponseWriter, r *http.Request) {
	token, ok := b.authorized(r)
	if !ok {
		b.writeJSON(w, http.StatusUnauthorized, api.ErrorResponse{Detail: "Could not validate credentials"})

		return
	}

	b.writeJSON(w, http.StatusOK, api.MeResponse{User: &b.user, Token: token})
}

func (b *backend) refresh(w http.ResponseWriter, r *http.Request) {
	b.refreshes.Add(1)

	if b.refreshDelay > 0 {
		time.Sleep(b.refreshDelay)
	}

	var req api.RefreshRequest
	assert.NoError(b.t, json.NewDecoder(r.Body).Decode(&req))

	b.mu.Lock()
	ok := req.RefreshToken == b.refreshToken
	next, rotated := b.nextAccess, b.rotateTo

	if ok && rotated != "" {
		b.refreshToken = rotated
	}
	b.mu.Unlock()

	if !ok {
		b.writeJSON(w, http.StatusUnauthorized, api.ErrorResponse{Detail: "Invalid refresh token"})

		return
	}

	b.accept(next)

	b.writeJSON(w, http.StatusOK, api.RefreshResponse{
		Token:        next,
		AccessToken:  next,
		RefreshToken: rotated,
		TokenType:    api.TokenTypeBearer,
	})
}

func (b *backend) serveData(w http.ResponseWriter, r *http.Request) {
	b.data.Add(1)

	if b.dataHook != nil {
		b.dataHook(strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer "))
	}

	token, ok := b.authorized(r)
	if !ok {
		b.writeJSON(w, http.StatusUnauthorized, api.ErrorResponse{Detail: "Could not validate credentials"})

		return
	}

	var body map[string]string
	if r.Body != nil && r.ContentLength != 0 {
		assert.NoError(b.t, json.NewDecoder(r.Body).Decode(&body))
	}

	b.writeJSON(w, http.StatusOK, map[string]any{"token": token, "echo": body})
}

func newTestClient(t *testing.T, url string, opts ...Option) (*Client, *memoryStorage) {
	t.Helper()

	storage := newMemoryStorage()

	return NewClient(url, NewTokenStore(storage), opts...), storage
}

func storedTokens(t *testing.T, storage *memoryStorage) (string, string) {
	t.Helper()

	token, err := NewTokenStore(storage).Load()
	require.NoError(t, err)

	return token.AccessToken, token.RefreshToken
}

func serve(t *testing.T, h http.Handler) string {
	t.Helper()

	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	return srv.URL
}
