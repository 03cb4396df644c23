// Package auth provides bearer token authentication middleware for the API.
//
// The middleware reads the "Authorization: Bearer" header, resolves the
// access token to an active user and stores it in fiber.Locals, where the
// permission guards of internal/auth pick it up.
//
// Usage:
//
//	api.Use(authmiddleware.New(authService))
//
// Missing or invalid tokens are answered with 401 and a
// "WWW-Authenticate: Bearer" challenge. Deactivated accounts get 400.
package auth
