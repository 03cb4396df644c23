package auth

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/HealthDash/HealthDash/internal/api"
	"github.com/HealthDash/HealthDash/internal/auth"
	"github.com/HealthDash/HealthDash/internal/db/models"
)

const (
	// DetailInvalidCredentials is the body detail of 401 responses.
	DetailInvalidCredentials = "Could not validate credentials"
	// DetailInactiveUser is the body detail for deactivated accounts.
	DetailInactiveUser = "Inactive user"
)

// Authenticator resolves an access token to its user.
type Authenticator interface {
	Authenticate(ctx context.Context, accessToken string) (*models.User, error)
}

// New returns middleware that rejects requests without a valid bearer token.
func New(authenticator Authenticator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := auth.BearerToken(c)
		if token == "" {
			return Unauthorized(c)
		}

		user, err := authenticator.Authenticate(c.UserContext(), token)

		switch {
		case err == nil:
		case errors.Is(err, auth.ErrUserAccountDisabled):
			return c.Status(fiber.StatusBadRequest).JSON(api.ErrorResponse{Detail: DetailInactiveUser})
		case errors.Is(err, auth.ErrInvalidToken), errors.Is(err, auth.ErrUserNotFound):
			log.Debug().Err(err).Str("ip", c.IP()).Msg("rejected bearer token")

			return Unauthorized(c)
		default:
			return err
		}

		auth.SetCurrentUser(c, user, token)

		return c.Next()
	}
}

// Unauthorized answers with 401 and a bearer challenge.
func Unauthorized(c *fiber.Ctx) error {
	c.Set(fiber.HeaderWWWAuthenticate, "Bearer")

	return c.Status(fiber.StatusUnauthorized).JSON(api.ErrorResponse{Detail: DetailInvalidCredentials})
}
