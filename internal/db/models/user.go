package models

import (
	"time"

	"github.com/alexedwards/argon2id"
	"github.com/rs/zerolog/log"

	"github.com/HealthDash/HealthDash/internal/rbac"
)

// User represents a dashboard account.
// Its Role selects the permission set from the static role table.
type User struct {
	// ID is the unique identifier for the user.
	ID uint64 `gorm:"primaryKey"`
	// Active indicates whether the user account is active and can log in.
	Active bool `gorm:"not null;default:true"`
	// Username is the unique username for login.
	Username string `gorm:"uniqueIndex;size:50;not null"`
	// Email is the user's unique email address.
	Email string `gorm:"uniqueIndex;size:100;not null"`
	// Password is the Argon2id hashed password.
	Password string `gorm:"size:255;not null"`
	// FirstName is the user's first or given name.
	FirstName string `gorm:"size:50"`
	// LastName is the user's last or family name.
	LastName string `gorm:"size:50"`
	// Role is the user's role.
	Role rbac.Role `gorm:"type:varchar(20);not null;default:'other'"`
	// IsSuperuser marks accounts seeded for bootstrap administration.
	IsSuperuser bool `gorm:"not null;default:false"`
	// LastLogin is stamped on every successful login.
	LastLogin *time.Time
	// CreatedAt is the timestamp when the user was created (managed by GORM).
	CreatedAt time.Time
	// UpdatedAt is the timestamp when the user was last updated (managed by GORM).
	UpdatedAt time.Time
}

// TableName specifies the database table name for the User model.
func (User) TableName() string {
	return "users"
}

// HashPassword hashes a plaintext password using the Argon2id algorithm.
func HashPassword(password string) (string, error) {
	return argon2id.CreateHash(password, argon2id.DefaultParams)
}

// VerifyPassword verifies a plaintext password against the user's stored hashed password.
// Returns true if the password matches, false otherwise.
func (u *User) VerifyPassword(password string) bool {
	match, err := argon2id.ComparePasswordAndHash(password, u.Password)
	if err != nil {
		log.Error().Msgf("failed to verify password: %v", err)
		return false
	}

	return match
}

// FullName joins first and last name, falling back to the username.
func (u *User) FullName() string {
	switch {
	case u.FirstName != "" && u.LastName != "":
		return u.FirstName + " " + u.LastName
	case u.FirstName != "":
		return u.FirstName
	case u.LastName != "":
		return u.LastName
	}

	return u.Username
}
