// Package kvstore implements fiber.Storage on the settings table.
package kvstore

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/HealthDash/HealthDash/internal/db/controller/setting"
	"github.com/HealthDash/HealthDash/internal/db/models"
)

// Store is a fiber.Storage backed by gorm. Keys map to setting names,
// optionally under a prefix so several stores can share one table.
type Store struct {
	db     *gorm.DB
	prefix string
}

// New returns a Store on db. Keys are stored as prefix+key.
func New(db *gorm.DB, prefix string) *Store {
	return &Store{db: db, prefix: prefix}
}

// Get returns the value stored for key, or nil when there is none.
func (s *Store) Get(key string) ([]byte, error) {
	if key == "" {
		return nil, nil
	}

	row, err := setting.Get(s.db, s.prefix+key)
	if errors.Is(err, setting.ErrSettingNotFound) {
		return nil, nil
	}

	if err != nil {
		return nil, err
	}

	return row.Value, nil
}

// Set stores val under key. A zero exp never expires.
func (s *Store) Set(key string, val []byte, exp time.Duration) error {
	if key == "" || len(val) == 0 {
		return nil
	}

	_, err := setting.Set(s.db, s.prefix+key, val, exp)

	return err
}

// Delete removes key. Deleting a missing key is not an error.
func (s *Store) Delete(key string) error {
	if key == "" {
		return nil
	}

	err := setting.DeleteByName(s.db, s.prefix+key)
	if errors.Is(err, setting.ErrSettingNotFound) {
		return nil
	}

	return err
}

// Reset removes every key of the store's prefix. The prefix is matched with
// LIKE, so it should not contain % or _.
func (s *Store) Reset() error {
	if s.prefix == "" {
		return setting.DeleteAll(s.db)
	}

	return s.db.Where("name LIKE ?", s.prefix+"%").Delete(&models.Setting{}).Error
}

// Close releases nothing; the caller owns the gorm connection.
func (s *Store) Close() error {
	return nil
}

// GC removes expired keys and reports how many were dropped.
func (s *Store) GC() (int64, error) {
	return setting.DeleteExpired(s.db, time.Now())
}
