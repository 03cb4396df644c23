package daemon

import (
	"context"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/HealthDash/HealthDash/internal/auth"
	"github.com/HealthDash/HealthDash/internal/rbac"
)

// Bootstrap account created on an empty user table.
const (
	SeedUsername = "admin"
	SeedEmail    = "admin@localhost"
	SeedPassword = "changeme"
)

// seed creates the bootstrap admin when the user table is empty.
func seed(ctx context.Context, db *gorm.DB) error {
	users := auth.NewLocalProvider(db)

	count, err := users.CountUsers(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to count users")
	}

	if count > 0 {
		return nil
	}

	if _, err = users.CreateUser(ctx, auth.NewUser{
		Username:    SeedUsername,
		Email:       SeedEmail,
		Password:    SeedPassword,
		FirstName:   "Admin",
		Role:        rbac.RoleManagement,
		IsSuperuser: true,
	}); err != nil {
		return errors.Wrap(err, "failed to seed admin user")
	}

	log.Warn().Str("username", SeedUsername).Msg("created bootstrap admin, change its password")

	return nil
}
