// Package models contains database model definitions.
package models

import "time"

// Setting is a key/value row with an optional expiry.
type Setting struct {
	ID        uint64 `gorm:"primaryKey"`
	Name      string `gorm:"uniqueIndex;size:255;not null"`
	Value     []byte
	ExpiresAt *time.Time
}

// Expired reports whether the setting carries an expiry that lies before now.
func (s *Setting) Expired(now time.Time) bool {
	return s.ExpiresAt != nil && !now.Before(*s.ExpiresAt)
}

// All returns every model the schema consists of, in migration order.
func All() []any {
	return []any{
		&User{},
		&RefreshToken{},
		&LoginSession{},
		&Setting{},
	}
}
