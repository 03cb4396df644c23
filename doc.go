// Package main provides the entry point of HealthDash, a role based health
// monitoring dashboard. "healthdash start" runs the JSON API server built on
// Fiber with gorm persistence. The login, logout, whoami, get and routes
// commands hold a bearer and refresh token pair in a local sqlite file and
// call the server on the user's behalf, refreshing an expired access token
// once per request.
package main
