package session

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/oauth2"
)

const (
	keyAccessToken  = "access_token"
	keyRefreshToken = "refresh_token"
)

// TokenStore persists the token pair in a fiber.Storage. Each token is its
// own key; writes are last-writer-wins and the pair is never written
// atomically.
type TokenStore struct {
	storage fiber.Storage
}

// NewTokenStore returns a TokenStore on storage.
func NewTokenStore(storage fiber.Storage) *TokenStore {
	return &TokenStore{storage: storage}
}

// Load returns the stored tokens. Missing tokens are empty strings.
func (s *TokenStore) Load() (*oauth2.Token, error) {
	access, err := s.storage.Get(keyAccessToken)
	if err != nil {
		return nil, fmt.Errorf("failed to load access token: %w", err)
	}

	refresh, err := s.storage.Get(keyRefreshToken)
	if err != nil {
		return nil, fmt.Errorf("failed to load refresh token: %w", err)
	}

	return &oauth2.Token{
		AccessToken:  string(access),
		RefreshToken: string(refresh),
		TokenType:    "Bearer",
	}, nil
}

// Save stores both tokens.
func (s *TokenStore) Save(token *oauth2.Token) error {
	if err := s.SaveAccessToken(token.AccessToken); err != nil {
		return err
	}

	return s.SaveRefreshToken(token.RefreshToken)
}

// SaveAccessToken replaces the stored access token.
func (s *TokenStore) SaveAccessToken(token string) error {
	return s.put(keyAccessToken, token)
}

// SaveRefreshToken replaces the stored refresh token.
func (s *TokenStore) SaveRefreshToken(token string) error {
	return s.put(keyRefreshToken, token)
}

// Clear removes both tokens. Both deletes are attempted.
func (s *TokenStore) Clear() error {
	return errors.Join(
		s.storage.Delete(keyAccessToken),
		s.storage.Delete(keyRefreshToken),
	)
}

func (s *TokenStore) put(key, value string) error {
	if value == "" {
		return s.storage.Delete(key)
	}

	if err := s.storage.Set(key, []byte(value), 0); err != nil {
		return fmt.Errorf("failed to store %s: %w", key, err)
	}

	return nil
}
