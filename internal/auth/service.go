package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/HealthDash/HealthDash/internal/config"
	"github.com/HealthDash/HealthDash/internal/db/models"
	"github.com/HealthDash/HealthDash/internal/rbac"
)

// Service provides authentication and authorization functionality.
type Service struct {
	db       *gorm.DB
	cfg      config.Auth
	provider *LocalProvider
	issuer   *TokenIssuer
	now      func() time.Time
}

// NewService creates a new auth service.
func NewService(db *gorm.DB, cfg config.Auth) *Service {
	return &Service{
		db:       db,
		cfg:      cfg,
		provider: NewLocalProvider(db),
		issuer:   NewTokenIssuer(cfg.JWTSecret, cfg.Issuer, cfg.AccessTokenTTL.Duration),
		now:      time.Now,
	}
}

// Users returns the user management provider.
func (s *Service) Users() *LocalProvider {
	return s.provider
}

// Issuer returns the access token issuer.
func (s *Service) Issuer() *TokenIssuer {
	return s.issuer
}

// Client identifies the caller of a login.
type Client struct {
	IP        string
	UserAgent string
}

// Tokens is the outcome of a login or refresh. RefreshToken is empty after a
// refresh that did not rotate.
type Tokens struct {
	User         *models.User
	AccessToken  string
	RefreshToken string
	ExpiresIn    time.Duration
	SessionID    string
}

// Login verifies credentials and issues a token pair.
func (s *Service) Login(ctx context.Context, username, password string, client Client) (*Tokens, error) {
	user, err := s.provider.Authenticate(ctx, username, password)
	if err != nil {
		return nil, err
	}

	now := s.now()

	access, err := s.issuer.Issue(user)
	if err != nil {
		return nil, err
	}

	out := &Tokens{
		User:         user,
		AccessToken:  access,
		RefreshToken: newRefreshToken(),
		ExpiresIn:    s.issuer.TTL(),
		SessionID:    uuid.NewString(),
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&models.RefreshToken{
			Token:     out.RefreshToken,
			UserID:    user.ID,
			ExpiresAt: now.Add(s.cfg.RefreshTokenTTL.Duration),
		}).Error; err != nil {
			return fmt.Errorf("failed to store refresh token: %w", err)
		}

		if err := tx.Create(&models.LoginSession{
			SessionID:    out.SessionID,
			UserID:       user.ID,
			IPAddress:    client.IP,
			UserAgent:    truncate(client.UserAgent, 500),
			ExpiresAt:    now.Add(s.cfg.SessionTTL.Duration),
			LastActivity: now,
		}).Error; err != nil {
			return fmt.Errorf("failed to store login session: %w", err)
		}

		if err := tx.Model(user).Update("last_login", now).Error; err != nil {
			return fmt.Errorf("failed to stamp last login: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Info().Uint64("user_id", user.ID).Str("role", user.Role.String()).Str("ip", client.IP).Msg("user logged in")

	return out, nil
}

// Refresh exchanges a refresh token for a new access token. With rotation
// enabled the presented token is revoked and a new one is returned.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*Tokens, error) {
	db := s.db.WithContext(ctx)
	now := s.now()

	var stored models.RefreshToken

	err := db.Where("token = ?", refreshToken).First(&stored).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrInvalidRefreshToken
	}

	if err != nil {
		return nil, fmt.Errorf("failed to query refresh token: %w", err)
	}

	if stored.Revoked {
		return nil, ErrInvalidRefreshToken
	}

	if !stored.Usable(now) {
		return nil, ErrRefreshTokenExpired
	}

	user, err := s.provider.GetUserByID(ctx, stored.UserID)
	if err != nil {
		return nil, err
	}

	if !user.Active {
		return nil, ErrUserAccountDisabled
	}

	access, err := s.issuer.Issue(user)
	if err != nil {
		return nil, err
	}

	out := &Tokens{User: user, AccessToken: access, ExpiresIn: s.issuer.TTL()}

	if !s.cfg.RotateRefreshTokens {
		return out, nil
	}

	out.RefreshToken = newRefreshToken()

	err = db.Transaction(func(tx *gorm.DB) error {
		// only one concurrent refresh may consume the token
		result := tx.Model(&models.RefreshToken{}).
			Where("id = ? AND revoked = ?", stored.ID, false).
			Update("revoked", true)
		if result.Error != nil {
			return fmt.Errorf("failed to revoke refresh token: %w", result.Error)
		}

		if result.RowsAffected == 0 {
			return ErrInvalidRefreshToken
		}

		return tx.Create(&models.RefreshToken{
			Token:     out.RefreshToken,
			UserID:    user.ID,
			ExpiresAt: now.Add(s.cfg.RefreshTokenTTL.Duration),
		}).Error
	})
	if err != nil {
		return nil, err
	}

	return out, nil
}

// Logout revokes a refresh token.
func (s *Service) Logout(ctx context.Context, refreshToken string) error {
	result := s.db.WithContext(ctx).Model(&models.RefreshToken{}).
		Where("token = ? AND revoked = ?", refreshToken, false).
		Update("revoked", true)
	if result.Error != nil {
		return fmt.Errorf("failed to revoke refresh token: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		return ErrInvalidRefreshToken
	}

	return nil
}

// Authenticate verifies an access token and loads its active user.
func (s *Service) Authenticate(ctx context.Context, accessToken string) (*models.User, error) {
	claims, err := s.issuer.Parse(accessToken)
	if err != nil {
		return nil, err
	}

	user, err := s.provider.GetUserByID(ctx, claims.UserID)
	if err != nil {
		return nil, err
	}

	if !user.Active {
		return nil, ErrUserAccountDisabled
	}

	return user, nil
}

// PurgeExpired deletes expired refresh tokens and login sessions.
func (s *Service) PurgeExpired(ctx context.Context) (int64, error) {
	db := s.db.WithContext(ctx)
	now := s.now()

	tokens := db.Where("expires_at < ?", now).Delete(&models.RefreshToken{})
	if tokens.Error != nil {
		return 0, tokens.Error
	}

	sessions := db.Where("expires_at < ?", now).Delete(&models.LoginSession{})
	if sessions.Error != nil {
		return tokens.RowsAffected, sessions.Error
	}

	return tokens.RowsAffected + sessions.RowsAffected, nil
}

// HasPermission reports whether user's role grants permission. A nil user has none.
func HasPermission(user *models.User, permission rbac.Permission) bool {
	if user == nil {
		return false
	}

	return rbac.RoleHas(user.Role, permission)
}

// PermissionsOf returns the permission set of user's role.
func PermissionsOf(user *models.User) rbac.PermissionSet {
	if user == nil {
		return rbac.NewPermissionSet()
	}

	return rbac.PermissionsFor(user.Role)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}

	return s[:n]
}
