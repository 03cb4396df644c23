package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/HealthDash/HealthDash/internal/db/models"
	"github.com/HealthDash/HealthDash/internal/rbac"
)

// LocalProvider handles local database authentication and user management.
type LocalProvider struct {
	db *gorm.DB
}

const whereID = "id = ?"

// NewLocalProvider creates a new local authentication provider.
func NewLocalProvider(db *gorm.DB) *LocalProvider {
	return &LocalProvider{
		db: db,
	}
}

// NewUser describes an account to create.
type NewUser struct {
	Username    string
	Email       string
	Password    string
	FirstName   string
	LastName    string
	Role        rbac.Role
	Inactive    bool
	IsSuperuser bool
}

// UserChanges describes a partial account update. Nil fields stay unchanged.
type UserChanges struct {
	Username  *string
	Email     *string
	FirstName *string
	LastName  *string
	Role      *rbac.Role
	Active    *bool
}

// Authenticate authenticates a user against the local database.
func (p *LocalProvider) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	var user models.User

	err := p.db.WithContext(ctx).Where("username = ?", username).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("failed to query user: %w", err)
	}

	if !user.VerifyPassword(password) {
		return nil, ErrInvalidPassword
	}

	if !user.Active {
		return nil, ErrUserAccountDisabled
	}

	return &user, nil
}

// CreateUser creates a new local user.
func (p *LocalProvider) CreateUser(ctx context.Context, nu NewUser) (*models.User, error) {
	role := nu.Role
	if role == "" {
		role = rbac.DefaultRole
	}

	if !role.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrUnknownRole, role)
	}

	db := p.db.WithContext(ctx)

	if err := p.ensureUnique(db, 0, nu.Username, nu.Email); err != nil {
		return nil, err
	}

	hashedPassword, err := models.HashPassword(nu.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := models.User{
		Active:      true,
		Username:    nu.Username,
		Email:       nu.Email,
		Password:    hashedPassword,
		FirstName:   nu.FirstName,
		LastName:    nu.LastName,
		Role:        role,
		IsSuperuser: nu.IsSuperuser,
	}

	if err = db.Create(&user).Error; err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	// a false bool is a zero value gorm would skip on create
	if nu.Inactive {
		if err = db.Model(&user).Update("active", false).Error; err != nil {
			return nil, fmt.Errorf("failed to deactivate user: %w", err)
		}
	}

	return &user, nil
}

// UpdateUser applies changes to an existing user and returns the stored result.
func (p *LocalProvider) UpdateUser(ctx context.Context, userID uint64, changes UserChanges) (*models.User, error) {
	db := p.db.WithContext(ctx)

	user, err := p.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	updates := map[string]any{}

	if changes.Username != nil {
		updates["username"] = *changes.Username
	}

	if changes.Email != nil {
		updates["email"] = *changes.Email
	}

	if changes.FirstName != nil {
		updates["first_name"] = *changes.FirstName
	}

	if changes.LastName != nil {
		updates["last_name"] = *changes.LastName
	}

	if changes.Role != nil {
		if !changes.Role.Valid() {
			return nil, fmt.Errorf("%w: %q", ErrUnknownRole, *changes.Role)
		}

		updates["role"] = *changes.Role
	}

	if changes.Active != nil {
		updates["active"] = *changes.Active
	}

	if changes.Username != nil || changes.Email != nil {
		username, email := user.Username, user.Email
		if changes.Username != nil {
			username = *changes.Username
		}

		if changes.Email != nil {
			email = *changes.Email
		}

		if err = p.ensureUnique(db, userID, username, email); err != nil {
			return nil, err
		}
	}

	if len(updates) > 0 {
		if err = db.Model(user).Updates(updates).Error; err != nil {
			return nil, fmt.Errorf("failed to update user: %w", err)
		}
	}

	return p.GetUserByID(ctx, userID)
}

func (p *LocalProvider) ensureUnique(db *gorm.DB, exceptID uint64, username, email string) error {
	var count int64

	err := db.Model(&models.User{}).
		Where("(username = ? OR email = ?) AND id <> ?", username, email, exceptID).
		Count(&count).Error
	if err != nil {
		return fmt.Errorf("failed to check existing user: %w", err)
	}

	if count > 0 {
		return ErrUserNameOrEmailExists
	}

	return nil
}

// ChangePassword changes a user's password after verifying the current one.
func (p *LocalProvider) ChangePassword(ctx context.Context, userID uint64, oldPassword, newPassword string) error {
	user, err := p.GetUserByID(ctx, userID)
	if err != nil {
		return err
	}

	if !user.VerifyPassword(oldPassword) {
		return ErrInvalidOldPassword
	}

	return p.ResetPassword(ctx, userID, newPassword)
}

// ResetPassword sets a new password without checking the old one.
func (p *LocalProvider) ResetPassword(ctx context.Context, userID uint64, newPassword string) error {
	hashedPassword, err := models.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	return p.db.WithContext(ctx).Model(&models.User{}).
		Where(whereID, userID).
		Update("password", hashedPassword).Error
}

// DeactivateUser soft deletes a user by marking the account inactive.
// actorID is the user performing the change; nobody may deactivate themselves.
func (p *LocalProvider) DeactivateUser(ctx context.Context, actorID, userID uint64) error {
	if actorID == userID {
		return ErrCannotDeleteSelf
	}

	result := p.db.WithContext(ctx).Model(&models.User{}).
		Where(whereID, userID).
		Update("active", false)
	if result.Error != nil {
		return fmt.Errorf("failed to deactivate user: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		return ErrUserNotFound
	}

	return nil
}

// TouchLastLogin stamps the user's last login time.
func (p *LocalProvider) TouchLastLogin(ctx context.Context, userID uint64, at time.Time) error {
	return p.db.WithContext(ctx).Model(&models.User{}).
		Where(whereID, userID).
		Update("last_login", at).Error
}

// GetUserByID retrieves a user by ID.
func (p *LocalProvider) GetUserByID(ctx context.Context, userID uint64) (*models.User, error) {
	var user models.User

	err := p.db.WithContext(ctx).First(&user, userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("failed to query user: %w", err)
	}

	return &user, nil
}

// GetUserByEmail retrieves a user by email address.
func (p *LocalProvider) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User

	err := p.db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("failed to query user: %w", err)
	}

	return &user, nil
}

// ListUsers lists users ordered by ID with optional filters.
// A limit of zero or less returns every row.
func (p *LocalProvider) ListUsers(
	ctx context.Context,
	role rbac.Role,
	active *bool,
	limit, offset int,
) ([]models.User, int64, error) {
	var (
		users []models.User
		total int64
	)

	query := p.db.WithContext(ctx).Model(&models.User{})

	if role != "" {
		query = query.Where("role = ?", role)
	}

	if active != nil {
		query = query.Where("active = ?", *active)
	}

	query = query.Session(&gorm.Session{})

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page := query.Order("id")
	if limit > 0 {
		page = page.Limit(limit).Offset(offset)
	}

	if err := page.Find(&users).Error; err != nil {
		return nil, 0, err
	}

	return users, total, nil
}

// CountUsers returns the number of stored users.
func (p *LocalProvider) CountUsers(ctx context.Context) (int64, error) {
	var count int64

	err := p.db.WithContext(ctx).Model(&models.User{}).Count(&count).Error

	return count, err
}
