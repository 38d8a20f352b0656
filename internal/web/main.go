// Package web provides the JSON admin API of the service.
package web

import (
	"errors"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/shopkeep/shopkeep/internal/auth"
	"github.com/shopkeep/shopkeep/internal/config"
	accesslog "github.com/shopkeep/shopkeep/internal/logger/adapter/fiber"
	"github.com/shopkeep/shopkeep/internal/web/handler"
	"github.com/shopkeep/shopkeep/internal/web/handler/login"
	"github.com/shopkeep/shopkeep/internal/web/handler/logout"
	"github.com/shopkeep/shopkeep/internal/web/handler/permission"
	"github.com/shopkeep/shopkeep/internal/web/handler/resource"
	"github.com/shopkeep/shopkeep/internal/web/handler/role"
	"github.com/shopkeep/shopkeep/internal/web/handler/staff"
	"github.com/shopkeep/shopkeep/internal/web/handler/store"
	authmiddleware "github.com/shopkeep/shopkeep/internal/web/middleware/auth"
)

const (
	// CheckAlivePath answers load balancer health checks.
	CheckAlivePath = "/checkalive"
	// MetricsPath serves the prometheus metrics.
	MetricsPath = "/metrics"
)

// Service represents the web service.
type Service struct {
	App          *fiber.App
	cfg          *config.Config
	fastShutDown bool
	alive        atomic.Bool
	db           *gorm.DB
	authService  *auth.Service
}

// Start starts the web service on the given address.
func (s *Service) Start(addr string) error {
	var doneFiber = make(chan error, 1)

	go func() {
		err := s.App.Listen(addr)
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			doneFiber <- err
			return
		}

		doneFiber <- nil
	}()

	return <-doneFiber // wait for fiber to stop
}

// WaitShutdown waits for an interrupt and shuts the web service down gracefully.
func (s *Service) WaitShutdown() {
	irqSig := make(chan os.Signal, 1)
	signal.Notify(irqSig, syscall.SIGINT, syscall.SIGTERM)

	sig := <-irqSig
	log.Info().Msgf("shutdown request (signal: %v)", sig)

	// Graceful shutdown for reverse proxies: set status to fail, so checkalive returns fail.
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

// New creates a new web service with the given configuration.
func New(cfg *config.Config, db *gorm.DB) *Service {
	if cfg == nil {
		panic("config cannot be nil")
	}

	if db == nil {
		panic("db cannot be nil")
	}

	app := fiber.New(
		fiber.Config{
			ReadBufferSize: 8192,
			AppName:        cfg.Title,
			CaseSensitive:  true,
			Prefork:        false,
			Immutable:      true,
			ReadTimeout:    cfg.Webserver.ReadTimeout,
			WriteTimeout:   cfg.Webserver.WriteTimeout,
			ErrorHandler:   errorHandler,
		},
	)

	if !cfg.Webserver.DisableRecover {
		app.Use(recover.New())
	}

	app.Use(accesslog.New(accesslog.Config{
		Config:        cfg.Log,
		CheckAliveURI: CheckAlivePath,
		Locals:        []string{auth.LocalsUserID},
		Params:        []string{auth.ParamStoreID},
	}))

	service := &Service{
		cfg:          cfg,
		App:          app,
		db:           db,
		authService:  auth.NewService(db),
		fastShutDown: cfg.DevMode,
	}
	service.alive.Store(true)

	app.Get(CheckAlivePath, service.checkAlive)
	app.Get(MetricsPath, adaptor.HTTPHandler(promhttp.Handler()))

	// session user for everything below
	app.Use(authmiddleware.New(auth.NewLocalProvider(db)))

	handlers := []handler.Service{
		&login.Handler,
		&logout.Handler,
		&permission.Handler,
		&role.Handler,
		&staff.Handler,
		&store.Handler,
		&resource.Handler,
	}

	for _, h := range handlers {
		if err := h.Init(app, cfg, db, service.authService); err != nil {
			log.Fatal().Err(err).Msg(handler.ErrNilACDFatalLogMsg)
		}
	}

	return service
}

func (s *Service) checkAlive(c *fiber.Ctx) error {
	if !s.alive.Load() {
		return c.SendStatus(fiber.StatusServiceUnavailable)
	}

	return c.SendString("OK")
}

// errorHandler answers errors that escaped the handlers as JSON.
func errorHandler(c *fiber.Ctx, err error) error {
	status, msg := handler.StatusOf(err)

	if status >= fiber.StatusInternalServerError {
		log.Error().Err(err).Str("tag", "unhandled").Str("path", c.Path()).Msg("request failed")
	}

	return c.Status(status).JSON(fiber.Map{"error": msg})
}
