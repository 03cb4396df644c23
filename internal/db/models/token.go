package models

import "time"

// RefreshToken is an opaque, long-lived token exchanged for new access tokens.
type RefreshToken struct {
	ID        uint64    `gorm:"primaryKey"`
	Token     string    `gorm:"uniqueIndex;size:255;not null"`
	UserID    uint64    `gorm:"index;not null"`
	User      User      `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	ExpiresAt time.Time `gorm:"not null"`
	Revoked   bool      `gorm:"not null;default:false"`
	CreatedAt time.Time
}

// TableName specifies the database table name for the RefreshToken model.
func (RefreshToken) TableName() string {
	return "refresh_tokens"
}

// Usable reports whether the token may still be exchanged at now.
func (t *RefreshToken) Usable(now time.Time) bool {
	return !t.Revoked && now.Before(t.ExpiresAt)
}

// LoginSession records a successful login.
type LoginSession struct {
	ID           uint64    `gorm:"primaryKey"`
	SessionID    string    `gorm:"uniqueIndex;size:36;not null"`
	UserID       uint64    `gorm:"index;not null"`
	User         User      `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	IPAddress    string    `gorm:"size:45"`
	UserAgent    string    `gorm:"size:500"`
	ExpiresAt    time.Time `gorm:"not null"`
	LastActivity time.Time `gorm:"not null"`
	CreatedAt    time.Time
}

// TableName specifies the database table name for the LoginSession model.
func (LoginSession) TableName() string {
	return "user_sessions"
}
