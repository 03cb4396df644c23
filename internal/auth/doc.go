// Package auth authenticates dashboard users and guards API routes.
//
// # Authentication
//
// LocalProvider verifies usernames and Argon2id password hashes stored in the
// database and manages the user table.
//
// Service turns a successful login into a token pair: a short lived HS256 JWT
// access token issued by TokenIssuer and an opaque refresh token persisted
// with an expiry and a revoked flag. Refresh exchanges a refresh token for a
// new access token and, when configured, rotates the refresh token.
//
// # Authorization
//
// Permissions come from the static role table in package rbac. The fiber
// middleware reads the user stored by the bearer token middleware:
//
//	api.Get("/auth/users",
//	    auth.RequirePermission(rbac.PermUsersRead),
//	    handler,
//	)
package auth
