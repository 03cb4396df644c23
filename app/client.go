package app

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/HealthDash/HealthDash/internal/config"
	"github.com/HealthDash/HealthDash/internal/db"
	"github.com/HealthDash/HealthDash/internal/db/kvstore"
	"github.com/HealthDash/HealthDash/internal/db/models"
	"github.com/HealthDash/HealthDash/internal/session"
)

// EnvPrefix prefixes the environment variables read by the client commands.
const EnvPrefix = "HEALTHDASH"

// DefaultAPIURL is the API the client commands talk to unless configured.
const DefaultAPIURL = "http://localhost:8000/api/v1"

const (
	keyAPIURL  = "api_url"
	keyTokenDB = "token_db"
	keyTimeout = "timeout"

	flagAPIURL  = "api-url"
	flagTokenDB = "token-db"
	flagTimeout = "timeout"

	tokenPrefix = "session:"

	loginHint = "session expired, run `healthdash login` to sign in again"
)

// addClientFlags registers the connection flags shared by the client commands.
func addClientFlags(cmd *cobra.Command) {
	cmd.Flags().String(flagAPIURL, "", "Base URL of the HealthDash API (env "+EnvPrefix+"_API_URL)")
	cmd.Flags().String(flagTokenDB, "", "sqlite file holding the session tokens (env "+EnvPrefix+"_TOKEN_DB)")
	cmd.Flags().Duration(flagTimeout, 0, "Per request timeout (env "+EnvPrefix+"_TIMEOUT)")
}

// clientSettings resolves flags, then HEALTHDASH_* variables, then defaults.
func clientSettings(cmd *cobra.Command) (config.Client, error) {
	v := viper.New()

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))

	v.SetDefault(keyAPIURL, DefaultAPIURL)
	v.SetDefault(keyTimeout, config.DefaultClientTimeout)

	if home, err := os.UserHomeDir(); err == nil {
		v.SetDefault(keyTokenDB, filepath.Join(home, ".healthdash", "tokens.db"))
	} else {
		v.SetDefault(keyTokenDB, "tokens.db")
	}

	for key, flag := range map[string]string{
		keyAPIURL:  flagAPIURL,
		keyTokenDB: flagTokenDB,
		keyTimeout: flagTimeout,
	} {
		if f := cmd.Flags().Lookup(flag); f != nil && f.Changed {
			if err := v.BindPFlag(key, f); err != nil {
				return config.Client{}, errors.Wrapf(err, "failed to bind flag %s", flag)
			}
		}
	}

	v.AutomaticEnv()

	return config.Client{
		APIURL:  v.GetString(keyAPIURL),
		TokenDB: v.GetString(keyTokenDB),
		Timeout: config.Duration{Duration: v.GetDuration(keyTimeout)},
	}, nil
}

// openClient builds a session client on the local token database. The
// returned func closes the database.
func openClient(cmd *cobra.Command) (*session.Client, func(), error) {
	settings, err := clientSettings(cmd)
	if err != nil {
		return nil, nil, err
	}

	if err = os.MkdirAll(filepath.Dir(settings.TokenDB), 0o700); err != nil { //nolint: mnd
		return nil, nil, errors.Wrap(err, "failed to create token directory")
	}

	gdb, err := db.OpenSQLite(settings.TokenDB)
	if err != nil {
		return nil, nil, err //nolint: wrapcheck
	}

	if err = gdb.AutoMigrate(&models.Setting{}); err != nil {
		return nil, nil, errors.Wrap(err, "failed to migrate token database")
	}

	sqlDB, err := gdb.DB()
	if err != nil {
		return nil, nil, errors.Wrap(err, "failed to open token database")
	}

	stderr := cmd.ErrOrStderr()

	client := session.NewClient(
		settings.APIURL,
		session.NewTokenStore(kvstore.New(gdb, tokenPrefix)),
		session.WithTimeout(settings.Timeout.Duration),
		session.OnSessionExpired(func() {
			_, _ = fmt.Fprintln(stderr, loginHint)
		}),
	)

	return client, func() { _ = sqlDB.Close() }, nil
}
