package session

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidCredentials is returned when the server rejects a login.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrRefreshInvalid is returned when the server rejects the refresh token.
	// The local session has been cleared.
	ErrRefreshInvalid = errors.New("refresh token invalid")

	// ErrSessionExpired is returned by Client.Do when a 401 could not be
	// recovered by a refresh. The local session has been cleared.
	ErrSessionExpired = errors.New("session expired")

	// ErrNotAuthenticated is returned when there is no usable stored session.
	ErrNotAuthenticated = errors.New("not authenticated")

	// ErrNetwork matches every *NetworkError.
	ErrNetwork = errors.New("network error")
)

// NetworkError is a transport failure. It never changes session state.
type NetworkError struct {
	Op  string
	Err error
}

// Error implements error.
func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Op, ErrNetwork, e.Err)
}

// Unwrap returns the transport error.
func (e *NetworkError) Unwrap() error {
	return e.Err
}

// Is makes errors.Is(err, ErrNetwork) true.
func (e *NetworkError) Is(target error) bool {
	return target == ErrNetwork
}
