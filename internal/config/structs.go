package config

import (
	"time"

	"github.com/HealthDash/HealthDash/internal/logger"
)

// Duration is a time.Duration read from strings like "30m" in TOML and JSON.
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err //nolint: wrapcheck
	}

	d.Duration = v

	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Config overall data structure.
type Config struct {
	DevMode     bool // enable dev mode for development
	DB          DB
	Log         logger.Log
	Title       string
	Environment string
	Webserver   Webserver
	Auth        Auth
	Client      Client
}

// Webserver implement webserver settings.
type Webserver struct {
	DisableRecover bool     // disable recover middleware
	Port           int      // listening port for the webserver
	ShutDownTime   int      // wait time for shutdown in seconds
	URL            string   // base url for the webserver
	AllowedOrigins []string // CORS origins, empty allows any
	LoginRateLimit int      // login attempts per minute and client
}

// Auth holds token and session settings.
type Auth struct {
	JWTSecret           string
	Issuer              string
	AccessTokenTTL      Duration
	RefreshTokenTTL     Duration
	SessionTTL          Duration
	RotateRefreshTokens bool
}

// Client holds the settings of the session client commands.
type Client struct {
	APIURL  string
	TokenDB string
	Timeout Duration
}
