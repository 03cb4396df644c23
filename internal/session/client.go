package session

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"
	"golang.org/x/sync/singleflight"

	"github.com/HealthDash/HealthDash/internal/api"
	"github.com/HealthDash/HealthDash/internal/rbac"
	"github.com/HealthDash/HealthDash/internal/web/navigation"
)

// API endpoints relative to the base URL.
const (
	PathLogin   = "/auth/login"
	PathLogout  = "/auth/logout"
	PathMe      = "/auth/me"
	PathRefresh = "/auth/refresh"
)

// maxErrorBody bounds how much of a discarded response is drained.
const maxErrorBody = 64 << 10

// refreshTimeout bounds a shared refresh when the client has no timeout.
const refreshTimeout = 30 * time.Second

// Credentials are exchanged for a token pair by Login.
type Credentials struct {
	Username string
	Password string
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets the transport client. The default is a new
// http.Client without timeout.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

// WithTimeout sets the timeout of every HTTP exchange.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.timeout = d
	}
}

// OnSessionExpired registers fn to run whenever Do clears the session after
// a failed refresh. Requests sharing one rejected refresh run fn once.
func OnSessionExpired(fn func()) Option {
	return func(c *Client) {
		c.onExpired = fn
	}
}

// Client maintains the Session and authenticates outbound requests.
type Client struct {
	baseURL   string
	http      *http.Client
	timeout   time.Duration
	store     *TokenStore
	onExpired func()

	mu        sync.RWMutex
	session   Session
	restoring atomic.Bool
	refreshes singleflight.Group
}

// NewClient returns a Client for the API at baseURL, persisting tokens in store.
func NewClient(baseURL string, store *TokenStore, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{},
		store:   store,
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.timeout > 0 {
		hc := *c.http
		hc.Timeout = c.timeout
		c.http = &hc
	}

	return c
}

// Snapshot returns a copy of the current session.
func (c *Client) Snapshot() Session {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.session.clone()
}

// Restoring reports whether RestoreSession is in flight.
func (c *Client) Restoring() bool {
	return c.restoring.Load()
}

// HasPermission reports whether the current session grants p.
func (c *Client) HasPermission(p rbac.Permission) bool {
	return c.Snapshot().HasPermission(p)
}

// CanAccessRoute evaluates rule against the current session.
func (c *Client) CanAccessRoute(rule navigation.RouteRule) navigation.Decision {
	return navigation.Evaluate(c.Snapshot(), c.Restoring(), rule)
}

// Login exchanges credentials for a token pair and persists it. A rejected
// login leaves the session and the store empty.
func (c *Client) Login(ctx context.Context, creds Credentials) (Session, error) {
	resp, err := c.postJSON(ctx, PathLogin, api.LoginRequest{
		Username: creds.Username,
		Password: creds.Password,
	}, "")
	if err != nil {
		return Session{}, &NetworkError{Op: "login", Err: err}
	}
	defer resp.Body.Close()

	if !success(resp) {
		discard(resp)

		if err = c.reset(); err != nil {
			log.Warn().Err(err).Msg("failed to clear token store")
		}

		return Session{}, ErrInvalidCredentials
	}

	var body api.LoginResponse
	if err = json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return Session{}, fmt.Errorf("failed to decode login response: %w", err)
	}

	token := &oauth2.Token{AccessToken: body.BearerToken(), RefreshToken: body.RefreshToken}
	if token.AccessToken == "" || body.User == nil {
		return Session{}, errors.New("login response lacks token or user")
	}

	if err = c.store.Save(token); err != nil {
		return Session{}, err
	}

	s := Session{
		IsAuthenticated: true,
		User:            body.User,
		AccessToken:     token.AccessToken,
		RefreshToken:    token.RefreshToken,
	}
	c.setSession(s)

	log.Debug().Str("username", body.User.Username).Msg("logged in")

	return s.clone(), nil
}

// Logout asks the server to revoke the refresh token and clears the local
// session. Local state is cleared whatever the server answers; the returned
// error only reports a failure to clear the store.
func (c *Client) Logout(ctx context.Context) (err error) {
	defer func() {
		err = c.reset()
	}()

	token, loadErr := c.store.Load()
	if loadErr != nil || token.RefreshToken == "" {
		return nil
	}

	resp, postErr := c.postJSON(ctx, PathLogout, api.RefreshRequest{RefreshToken: token.RefreshToken}, token.AccessToken)
	if postErr != nil {
		log.Debug().Err(postErr).Msg("logout request failed")

		return nil
	}

	discard(resp)
	resp.Body.Close()

	if !success(resp) {
		log.Debug().Int("status", resp.StatusCode).Msg("server rejected logout")
	}

	return nil
}

// RestoreSession validates the stored access token against the server and
// repopulates the session. A rejected token clears the store.
func (c *Client) RestoreSession(ctx context.Context) (Session, error) {
	c.restoring.Store(true)
	defer c.restoring.Store(false)

	token, err := c.store.Load()
	if err != nil {
		return Session{}, err
	}

	if token.AccessToken == "" {
		return Session{}, ErrNotAuthenticated
	}

	req, err := c.NewRequest(ctx, http.MethodGet, PathMe, nil)
	if err != nil {
		return Session{}, err
	}

	resp, err := c.send(req, token.AccessToken)
	if err != nil {
		return Session{}, &NetworkError{Op: "restore session", Err: err}
	}
	defer resp.Body.Close()

	if !success(resp) {
		discard(resp)

		if err = c.reset(); err != nil {
			log.Warn().Err(err).Msg("failed to clear token store")
		}

		return Session{}, ErrNotAuthenticated
	}

	var body api.MeResponse
	if err = json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return Session{}, fmt.Errorf("failed to decode session: %w", err)
	}

	if body.User == nil {
		return Session{}, errors.New("session response lacks user")
	}

	s := Session{
		IsAuthenticated: true,
		User:            body.User,
		AccessToken:     token.AccessToken,
		RefreshToken:    token.RefreshToken,
	}
	c.setSession(s)

	return s.clone(), nil
}

// RefreshToken exchanges the stored refresh token for a new access token and
// returns it. A rotated refresh token replaces the stored one. A rejected
// refresh clears the session and returns ErrRefreshInvalid.
func (c *Client) RefreshToken(ctx context.Context) (string, error) {
	token, err := c.store.Load()
	if err != nil {
		return "", err
	}

	if token.RefreshToken == "" {
		return "", ErrNotAuthenticated
	}

	resp, err := c.postJSON(ctx, PathRefresh, api.RefreshRequest{RefreshToken: token.RefreshToken}, "")
	if err != nil {
		refreshTotal.WithLabelValues(refreshNetwork).Inc()

		return "", &NetworkError{Op: "refresh", Err: err}
	}
	defer resp.Body.Close()

	if !success(resp) {
		discard(resp)
		refreshTotal.WithLabelValues(refreshInvalid).Inc()

		if err = c.reset(); err != nil {
			log.Warn().Err(err).Msg("failed to clear token store")
		}

		return "", ErrRefreshInvalid
	}

	var body api.RefreshResponse
	if err = json.NewDecoder(resp.Body).Decode(&body); err != nil {
		refreshTotal.WithLabelValues(refreshDecoding).Inc()

		return "", fmt.Errorf("failed to decode refresh response: %w", err)
	}

	access := body.BearerToken()
	if access == "" {
		refreshTotal.WithLabelValues(refreshDecoding).Inc()

		return "", errors.New("refresh response lacks token")
	}

	if err = c.store.SaveAccessToken(access); err != nil {
		return "", err
	}

	if body.RefreshToken != "" {
		if err = c.store.SaveRefreshToken(body.RefreshToken); err != nil {
			return "", err
		}
	}

	c.mu.Lock()
	c.session.AccessToken = access
	if body.RefreshToken != "" {
		c.session.RefreshToken = body.RefreshToken
	}
	c.mu.Unlock()

	refreshTotal.WithLabelValues(refreshSuccess).Inc()

	return access, nil
}

// NewRequest builds a request for path under the base URL. A non-nil body is
// sent as JSON.
func (c *Client) NewRequest(ctx context.Context, method, path string, body any) (*http.Request, error) {
	var reader io.Reader

	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}

		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, err
	}

	req.Header.Set("Accept", "application/json")

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	return req, nil
}

// Do sends req with the stored bearer token. On a 401 it refreshes the
// access token once and resends req once. When the refresh is rejected the
// session is cleared, the OnSessionExpired hook runs and ErrSessionExpired
// is returned.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	if err := replayable(req); err != nil {
		return nil, err
	}

	token, err := c.store.Load()
	if err != nil {
		return nil, err
	}

	resp, err := c.send(req, token.AccessToken)
	if err != nil {
		return nil, &NetworkError{Op: "request", Err: err}
	}

	if resp.StatusCode != http.StatusUnauthorized {
		return resp, nil
	}

	discard(resp)
	resp.Body.Close()

	access, err := c.refreshAfter(req.Context(), token.AccessToken)

	switch {
	case errors.Is(err, ErrRefreshInvalid):
		return nil, fmt.Errorf("%w: %w", ErrSessionExpired, err)
	case err != nil:
		return nil, err
	}

	retry, err := rewind(req)
	if err != nil {
		return nil, err
	}

	resp, err = c.send(retry, access)
	if err != nil {
		return nil, &NetworkError{Op: "request", Err: err}
	}

	return resp, nil
}

// refreshAfter returns an access token newer than stale. When a concurrent
// refresh already replaced stale the stored token is used as is; otherwise
// concurrent callers share one refresh call, each waiting on its own ctx.
func (c *Client) refreshAfter(ctx context.Context, stale string) (string, error) {
	if token, err := c.store.Load(); err == nil && token.AccessToken != "" && token.AccessToken != stale {
		refreshTotal.WithLabelValues(refreshReused).Inc()

		return token.AccessToken, nil
	}

	results := c.refreshes.DoChan("refresh", func() (any, error) {
		return c.sharedRefresh(ctx)
	})

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res := <-results:
		if res.Err != nil {
			return "", res.Err
		}

		return res.Val.(string), nil //nolint:forcetypeassert
	}
}

// sharedRefresh is the refresh every waiting caller shares. It keeps running
// when the caller that started it goes away, bounded by the client timeout,
// and expires the session once when the refresh token is rejected.
func (c *Client) sharedRefresh(ctx context.Context) (string, error) {
	timeout := c.timeout
	if timeout <= 0 {
		timeout = refreshTimeout
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
	defer cancel()

	access, err := c.RefreshToken(ctx)
	if errors.Is(err, ErrRefreshInvalid) {
		c.expire()
	}

	return access, err
}

func (c *Client) expire() {
	if err := c.reset(); err != nil {
		log.Warn().Err(err).Msg("failed to clear token store")
	}

	expiredTotal.Inc()

	log.Info().Msg("session expired")

	if c.onExpired != nil {
		c.onExpired()
	}
}

// reset empties the session and the store.
func (c *Client) reset() error {
	c.setSession(Session{})

	return c.store.Clear()
}

func (c *Client) setSession(s Session) {
	c.mu.Lock()
	c.session = s
	c.mu.Unlock()
}

func (c *Client) postJSON(ctx context.Context, path string, body any, bearer string) (*http.Response, error) {
	req, err := c.NewRequest(ctx, http.MethodPost, path, body)
	if err != nil {
		return nil, err
	}

	return c.send(req, bearer)
}

// send dispatches a copy of req carrying bearer, if any.
func (c *Client) send(req *http.Request, bearer string) (*http.Response, error) {
	out := req.Clone(req.Context())

	if bearer != "" {
		(&oauth2.Token{AccessToken: bearer, TokenType: "Bearer"}).SetAuthHeader(out)
	} else {
		out.Header.Del("Authorization")
	}

	return c.http.Do(out)
}

// replayable makes sure req's body can be read a second time.
func replayable(req *http.Request) error {
	if req.Body == nil || req.Body == http.NoBody || req.GetBody != nil {
		return nil
	}

	data, err := io.ReadAll(req.Body)
	req.Body.Close()

	if err != nil {
		return fmt.Errorf("failed to buffer request body: %w", err)
	}

	req.GetBody = func() (io.ReadCloser, error) {
		return io.NopCloser(bytes.NewReader(data)), nil
	}
	req.Body, _ = req.GetBody()

	return nil
}

// rewind returns a copy of req with a fresh body.
func rewind(req *http.Request) (*http.Request, error) {
	out := req.Clone(req.Context())

	if req.GetBody == nil {
		return out, nil
	}

	body, err := req.GetBody()
	if err != nil {
		return nil, fmt.Errorf("failed to rewind request body: %w", err)
	}

	out.Body = body

	return out, nil
}

func success(resp *http.Response) bool {
	return resp.StatusCode >= http.StatusOK && resp.StatusCode < http.StatusMultipleChoices
}

func discard(resp *http.Response) {
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxErrorBody))
}
