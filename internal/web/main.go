package web

import (
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/HealthDash/HealthDash/internal/auth"
	"github.com/HealthDash/HealthDash/internal/config"
	fiberlogger "github.com/HealthDash/HealthDash/internal/logger/adapter/fiber"
	"github.com/HealthDash/HealthDash/internal/web/handler"
	"github.com/HealthDash/HealthDash/internal/web/handler/authapi"
	"github.com/HealthDash/HealthDash/internal/web/handler/dashboard"
	"github.com/HealthDash/HealthDash/internal/web/handler/user"
	"github.com/HealthDash/HealthDash/internal/web/middleware/metrics"
)

const (
	// APIPath is the mount point of the JSON API.
	APIPath = "/api/v1"

	// HealthPath answers load balancer checks.
	HealthPath = "/health"

	// MetricsPath exposes prometheus metrics.
	MetricsPath = "/metrics"

	// Version of the API.
	Version = "1.0.0"
)

// Service represents the web service.
type Service struct {
	App          *fiber.App
	cfg          *config.Config
	fastShutDown bool
	alive        atomic.Bool
	authService  *auth.Service
	registry     *prometheus.Registry
}

// Start starts the web service on the given address.
func (s *Service) Start(addr string) error {
	var doneFiber = make(chan bool)

	go func() {
		if err := s.App.Listen(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Msgf("fiber listen error: %v", err)
		}

		doneFiber <- true
	}()

	<-doneFiber // wait for fiber to stop

	return nil
}

// WaitShutdown waits for SIGINT or SIGTERM and shuts the server down.
func (s *Service) WaitShutdown() {
	irqSig := make(chan os.Signal, 1)
	signal.Notify(irqSig, syscall.SIGINT, syscall.SIGTERM)

	sig := <-irqSig
	log.Info().Msgf("shutdown request (signal: %v)", sig)

	s.Shutdown()
}

// Shutdown fails the health check for ShutDownTime seconds, so load
// balancers drain the instance, then stops the HTTP server.
func (s *Service) Shutdown() {
	if !s.fastShutDown {
		log.Info().Msgf(
			"graceful shutdown: return 503 while %d seconds to let LB to remove this pod from active targets",
			s.cfg.Webserver.ShutDownTime,
		)

		s.alive.Store(false)
		time.Sleep(time.Duration(s.cfg.Webserver.ShutDownTime) * time.Second)
	}

	log.Info().Msg("stopping http server ...")

	if err := s.App.Shutdown(); err != nil {
		log.Error().Err(err).Msg("")
	}

	log.Info().Msg("http server was stopped ... good bye...")
}

// Alive reports whether the health check passes.
func (s *Service) Alive() bool {
	return s.alive.Load()
}

// Auth returns the auth service the handlers share.
func (s *Service) Auth() *auth.Service {
	return s.authService
}

// New creates a new web service with the given configuration. Login rate
// limit counters live in limiterStorage; nil keeps them in memory.
func New(cfg *config.Config, db *gorm.DB, limiterStorage fiber.Storage) *Service {
	if cfg == nil {
		panic("config cannot be nil")
	}

	if db == nil {
		panic("db cannot be nil")
	}

	appName := cfg.Title
	if appName == "" {
		appName = "HealthDash"
	}

	// create fiber app
	app := fiber.New(
		fiber.Config{
			ReadBufferSize: 8192,
			AppName:        appName,
			CaseSensitive:  true,
			Prefork:        false,
			Immutable:      true,
			ErrorHandler:   handler.ErrorHandler,
		},
	)

	service := &Service{
		cfg:          cfg,
		App:          app,
		authService:  auth.NewService(db, cfg.Auth),
		fastShutDown: cfg.DevMode,
		registry:     prometheus.NewRegistry(),
	}
	service.alive.Store(true)

	httpMetrics, err := metrics.New(metrics.Options{Registerer: service.registry})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to register http metrics")
	}

	app.Use(requestid.New(requestid.Config{Generator: uuid.NewString}))

	if !cfg.Webserver.DisableRecover {
		app.Use(recover.New(recover.Config{EnableStackTrace: cfg.DevMode}))
	}

	app.Use(fiberlogger.New(fiberlogger.Config{Config: cfg.Log, CheckAliveURI: HealthPath}))
	app.Use(httpMetrics.Handler())
	app.Use(cors.New(corsConfig(cfg.Webserver.AllowedOrigins)))

	app.Get(handler.RootPath, service.info)
	app.Get(HealthPath, service.health)
	app.Get(MetricsPath, adaptor.HTTPHandler(promhttp.HandlerFor(
		prometheus.Gatherers{prometheus.DefaultGatherer, service.registry},
		promhttp.HandlerOpts{},
	)))

	api := app.Group(APIPath)

	api.Use(authapi.LoginPath, limiter.New(limiter.Config{
		Next: func(c *fiber.Ctx) bool {
			return c.Method() != fiber.MethodPost
		},
		Max:        cfg.Webserver.LoginRateLimit,
		Expiration: time.Minute,
		Storage:    limiterStorage,
		LimitReached: func(c *fiber.Ctx) error {
			return handler.Error(c, fiber.StatusTooManyRequests, "Too many login attempts")
		},
	}))

	// init handlers (they register their own routes with permission checks)
	for _, h := range []handler.Service{&authapi.Service{}, &user.Service{}, &dashboard.Service{}} {
		if err = h.Init(api, cfg, service.authService); err != nil {
			log.Fatal().Err(err).Msg("failed to init handler")
		}
	}

	return service
}

func corsConfig(origins []string) cors.Config {
	c := cors.Config{
		AllowOrigins:  "*",
		AllowMethods:  "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders:  "Origin, Content-Type, Accept, Authorization",
		ExposeHeaders: handler.HeaderTotalCount + ", " + fiber.HeaderXRequestID,
	}

	// credentials are only allowed with an explicit origin list
	if len(origins) > 0 {
		c.AllowOrigins = strings.Join(origins, ",")
		c.AllowCredentials = true
	}

	return c
}

func (s *Service) info(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"message": s.App.Config().AppName + " API",
		"version": Version,
		"health":  HealthPath,
		"api":     APIPath,
	})
}

func (s *Service) health(c *fiber.Ctx) error {
	status, code := "healthy", fiber.StatusOK
	if !s.alive.Load() {
		status, code = "shutting down", fiber.StatusServiceUnavailable
	}

	return c.Status(code).JSON(fiber.Map{
		"status":      status,
		"timestamp":   time.Now().Unix(),
		"version":     Version,
		"environment": s.cfg.Environment,
	})
}
