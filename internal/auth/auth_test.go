package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/HealthDash/HealthDash/internal/config"
	"github.com/HealthDash/HealthDash/internal/db/dbtest"
	"github.com/HealthDash/HealthDash/internal/db/models"
	"github.com/HealthDash/HealthDash/internal/rbac"
)

func testAuthConfig(rotate bool) config.Auth {
	return config.Auth{
		JWTSecret:           "test-secret",
		Issuer:              "healthdash-test",
		AccessTokenTTL:      config.Duration{Duration: 30 * time.Minute},
		RefreshTokenTTL:     config.Duration{Duration: 7 * 24 * time.Hour},
		SessionTTL:          config.Duration{Duration: 24 * time.Hour},
		RotateRefreshTokens: rotate,
	}
}

func newTestService(t *testing.T, rotate bool) (*Service, *gorm.DB) {
	t.Helper()

	db := dbtest.New(t)

	return NewService(db, testAuthConfig(rotate)), db
}

func createUser(t *testing.T, p *LocalProvider, username string, role rbac.Role) *models.User {
	t.Helper()

	user, err := p.CreateUser(context.Background(), NewUser{
		Username:  username,
		Email:     username + "@example.com",
		Password:  "password123",
		FirstName: "Test",
		LastName:  "User",
		Role:      role,
	})
	require.NoError(t, err)

	return user
}
