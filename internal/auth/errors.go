package auth

import "errors"

var (
	// ErrInvalidOldPassword is returned when the provided current password does not match.
	ErrInvalidOldPassword = errors.New("invalid old password")

	// ErrUserNameOrEmailExists is returned when a username or email is already taken.
	ErrUserNameOrEmailExists = errors.New("user with username or email already exists")

	// ErrUserAccountDisabled is returned when attempting to authenticate a disabled user account.
	ErrUserAccountDisabled = errors.New("user account is disabled")

	// ErrInvalidPassword is returned when the provided password is incorrect during authentication.
	ErrInvalidPassword = errors.New("invalid password")

	// ErrUserNotFound is returned when a user cannot be found in the database.
	ErrUserNotFound = errors.New("user not found")

	// ErrInvalidToken is returned for access tokens that fail verification.
	ErrInvalidToken = errors.New("invalid access token")

	// ErrInvalidRefreshToken is returned for unknown or revoked refresh tokens.
	ErrInvalidRefreshToken = errors.New("invalid refresh token")

	// ErrRefreshTokenExpired is returned for refresh tokens past their expiry.
	ErrRefreshTokenExpired = errors.New("refresh token expired")

	// ErrCannotDeleteSelf is returned when a user tries to delete their own account.
	ErrCannotDeleteSelf = errors.New("cannot delete yourself")

	// ErrUnknownRole is returned when a user is assigned a role outside the role table.
	ErrUnknownRole = errors.New("unknown role")
)
