// Package config handles input from etc/*.toml files
package config

import (
	"bytes"
	"encoding/json"
	"os"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"
)

// EnvConfigJSON names the environment variable holding a JSON config override.
const EnvConfigJSON = "HEALTHDASH_CONFIG_JSON"

// Defaults applied by ReadConfig for unset values.
const (
	DefaultShutDownTime    = 5
	DefaultAccessTokenTTL  = 30 * time.Minute
	DefaultRefreshTokenTTL = 7 * 24 * time.Hour
	DefaultSessionTTL      = 24 * time.Hour
	DefaultLoginRateLimit  = 100
	DefaultClientTimeout   = 30 * time.Second
	DefaultIssuer          = "healthdash"
)

// ReadConfig from config file.
func ReadConfig(path string) (Config, error) {
	var (
		c             Config
		JSONConfigEnv string
		err           error
	)

	// Read main configuration
	if path == "" {
		path = "./etc/"
	}

	if _, err = toml.DecodeFile(path+"main.toml", &c); err != nil {
		return Config{}, errors.Wrap(err, "failed to read main config file")
	}

	// override it from env
	JSONConfigEnv = os.Getenv(EnvConfigJSON)

	if JSONConfigEnv != "" {
		c, err = decodeAndMergeConfig(c, JSONConfigEnv)
		if err != nil {
			return c, err
		}
	}

	return c, validate(&c)
}

func decodeAndMergeConfig(c Config, configAsJSON string) (Config, error) {
	err := json.Unmarshal([]byte(configAsJSON), &c)
	if err != nil {
		return Config{}, errors.Wrap(err, "failed to decode "+EnvConfigJSON)
	}

	return c, nil
}

// DumpConfig config as TOML String.
func DumpConfig(c *Config) (string, error) {
	var buffer bytes.Buffer
	t := toml.NewEncoder(&buffer)

	if err := t.Encode(c); err != nil {
		return "", err //nolint: wrapcheck
	}

	return buffer.String(), nil
}

// DumpConfigJSON config as JSON String.
func DumpConfigJSON(c *Config) (string, error) {
	var buffer bytes.Buffer
	j := json.NewEncoder(&buffer)
	j.SetIndent("", "  ")

	if err := j.Encode(c); err != nil {
		return "", err //nolint: wrapcheck
	}

	return buffer.String(), nil
}

// validate the settings the server cannot start without and fill in
// defaults for the optional ones.
func validate(c *Config) error {
	invalidErrMessage := "invalid config"

	if c.Webserver.Port == 0 {
		return errors.Wrap(ErrWebServerPortCanNotBeZero, invalidErrMessage)
	}

	if c.Webserver.URL == "" {
		return errors.Wrap(ErrEmptyURL, invalidErrMessage)
	}

	if c.Auth.JWTSecret == "" {
		return errors.Wrap(ErrEmptyJWTSecret, invalidErrMessage)
	}

	switch c.DB.GormEngine {
	case "", EngineSQLite, EngineMySQL, EnginePostgres:
	default:
		return errors.Wrapf(ErrUnknownDBEngine, "%s: %q", invalidErrMessage, c.DB.GormEngine)
	}

	c.setDefaults()

	return nil
}

func (c *Config) setDefaults() {
	if c.DB.GormEngine == "" {
		c.DB.GormEngine = EngineSQLite
	}

	if c.Webserver.ShutDownTime == 0 {
		c.Webserver.ShutDownTime = DefaultShutDownTime
	}

	if c.Webserver.LoginRateLimit == 0 {
		c.Webserver.LoginRateLimit = DefaultLoginRateLimit
	}

	if c.Auth.AccessTokenTTL.Duration == 0 {
		c.Auth.AccessTokenTTL.Duration = DefaultAccessTokenTTL
	}

	if c.Auth.RefreshTokenTTL.Duration == 0 {
		c.Auth.RefreshTokenTTL.Duration = DefaultRefreshTokenTTL
	}

	if c.Auth.SessionTTL.Duration == 0 {
		c.Auth.SessionTTL.Duration = DefaultSessionTTL
	}

	if c.Auth.Issuer == "" {
		c.Auth.Issuer = DefaultIssuer
	}

	if c.Client.Timeout.Duration == 0 {
		c.Client.Timeout.Duration = DefaultClientTimeout
	}
}
