// Package setting provides CRUD operations on key/value settings rows.
package setting

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/HealthDash/HealthDash/internal/db/models"
)

const (
	nameQueryPattern = "name = ?"
)

var (
	// ErrSettingNotFound is returned when a setting is not found or has expired.
	ErrSettingNotFound = errors.New("setting not found")
	// ErrSettingNameEmpty is returned when attempting to read or write a setting with an empty name.
	ErrSettingNameEmpty = errors.New("setting name cannot be empty")
	// ErrDBNil is returned when the database connection is nil.
	ErrDBNil = errors.New("database connection is nil")
)

func check(db *gorm.DB, name string) error {
	if db == nil {
		return ErrDBNil
	}

	if name == "" {
		return ErrSettingNameEmpty
	}

	return nil
}

// Get retrieves a live setting by its name. Expired rows are reported as not found.
func Get(db *gorm.DB, name string) (*models.Setting, error) {
	if err := check(db, name); err != nil {
		return nil, err
	}

	var setting models.Setting

	result := db.Where(nameQueryPattern, name).First(&setting)
	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return nil, ErrSettingNotFound
	}

	if result.Error != nil {
		return nil, result.Error
	}

	if setting.Expired(time.Now()) {
		return nil, ErrSettingNotFound
	}

	return &setting, nil
}

// Set creates or updates a setting by name. A zero ttl never expires.
func Set(db *gorm.DB, name string, value []byte, ttl time.Duration) (*models.Setting, error) {
	if err := check(db, name); err != nil {
		return nil, err
	}

	var expiresAt *time.Time

	if ttl > 0 {
		t := time.Now().Add(ttl)
		expiresAt = &t
	}

	var setting models.Setting

	result := db.Where(nameQueryPattern, name).First(&setting)

	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		setting = models.Setting{Name: name, Value: value, ExpiresAt: expiresAt}
		if err := db.Create(&setting).Error; err != nil {
			return nil, err
		}

		return &setting, nil
	}

	if result.Error != nil {
		return nil, result.Error
	}

	setting.Value = value
	setting.ExpiresAt = expiresAt

	if err := db.Save(&setting).Error; err != nil {
		return nil, err
	}

	return &setting, nil
}

// DeleteByName deletes a setting by name.
func DeleteByName(db *gorm.DB, name string) error {
	if err := check(db, name); err != nil {
		return err
	}

	result := db.Where(nameQueryPattern, name).Delete(&models.Setting{})
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return ErrSettingNotFound
	}

	return nil
}

// DeleteExpired removes every setting whose expiry lies before now.
func DeleteExpired(db *gorm.DB, now time.Time) (int64, error) {
	if db == nil {
		return 0, ErrDBNil
	}

	result := db.Where("expires_at IS NOT NULL AND expires_at <= ?", now).Delete(&models.Setting{})

	return result.RowsAffected, result.Error
}

// DeleteAll removes every setting.
func DeleteAll(db *gorm.DB) error {
	if db == nil {
		return ErrDBNil
	}

	return db.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&models.Setting{}).Error
}
