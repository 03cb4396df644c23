// Package daemon wires the database, the auth service and the web service
// into the running server.
package daemon

import (
	"context"
	"fmt"

	"github.com/gofiber/fiber/v2"
	storagemysql "github.com/gofiber/storage/mysql/v2"
	storagepostgres "github.com/gofiber/storage/postgres/v3"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/HealthDash/HealthDash/internal/auth"
	"github.com/HealthDash/HealthDash/internal/config"
	"github.com/HealthDash/HealthDash/internal/db"
	"github.com/HealthDash/HealthDash/internal/db/dsn"
	"github.com/HealthDash/HealthDash/internal/db/kvstore"
	"github.com/HealthDash/HealthDash/internal/web"
)

// limiterTable holds the login rate limit counters on shared databases.
const limiterTable = "login_limiter"

// Daemon represents the main application daemon.
type Daemon struct {
	cfg        *config.Config
	webService *web.Service
}

// Start runs the web service until SIGINT or SIGTERM.
func (d *Daemon) Start() error {
	go d.webService.WaitShutdown()

	return d.webService.Start(fmt.Sprintf(":%d", d.cfg.Webserver.Port))
}

// New creates a new Daemon instance with the provided configuration.
func New(cfg *config.Config) (*Daemon, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}

	gdb, err := open(&cfg.DB)
	if err != nil {
		return nil, err
	}

	if err = seed(context.Background(), gdb); err != nil {
		return nil, err
	}

	webService := web.New(cfg, gdb, limiterStorage(&cfg.DB))

	purge(context.Background(), webService.Auth(), kvstore.New(gdb, ""))

	return &Daemon{
		cfg:        cfg,
		webService: webService,
	}, nil
}

// purge drops expired refresh tokens, login sessions and settings rows.
func purge(ctx context.Context, authService *auth.Service, settings *kvstore.Store) {
	tokens, err := authService.PurgeExpired(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("failed to purge expired tokens")
	}

	rows, err := settings.GC()
	if err != nil {
		log.Warn().Err(err).Msg("failed to purge expired settings")
	}

	if tokens > 0 || rows > 0 {
		log.Info().Int64("tokens", tokens).Int64("settings", rows).Msg("expired records removed")
	}
}

// limiterStorage shares the login limiter counters between instances
// on mysql and postgres. sqlite keeps them in memory.
func limiterStorage(cfg *config.DB) fiber.Storage {
	switch cfg.GormEngine {
	case config.EngineMySQL:
		return storagemysql.New(storagemysql.Config{
			ConnectionURI: dsn.URI(cfg),
			Table:         limiterTable,
		})
	case config.EnginePostgres:
		return storagepostgres.New(storagepostgres.Config{
			ConnectionURI: dsn.URI(cfg),
			Table:         limiterTable,
		})
	}

	return nil
}

func open(cfg *config.DB) (*gorm.DB, error) {
	gdb, err := db.Open(cfg)
	if err != nil {
		return nil, err //nolint: wrapcheck
	}

	return gdb, db.Migrate(gdb) //nolint: wrapcheck
}
