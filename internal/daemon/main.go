// Package daemon wires configuration, database, sessions and the web service together.
package daemon

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	sessionmysql "github.com/gofiber/storage/mysql/v2"
	sessionpostgres "github.com/gofiber/storage/postgres/v3"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	gormmysql "gorm.io/driver/mysql"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/shopkeep/shopkeep/internal/config"
	"github.com/shopkeep/shopkeep/internal/db/controller/permission"
	"github.com/shopkeep/shopkeep/internal/db/dsn"
	"github.com/shopkeep/shopkeep/internal/db/models"
	"github.com/shopkeep/shopkeep/internal/logger/adapter/stdlogger"
	"github.com/shopkeep/shopkeep/internal/web"
	"github.com/shopkeep/shopkeep/internal/web/session"
)

const (
	sessionTable     = "sessions"
	slowSQLThreshold = 200 * time.Millisecond
)

// Daemon represents the main application daemon.
type Daemon struct {
	cfg        *config.Config
	webService *web.Service
}

// Start starts the Daemon's web service and blocks until it was shut down.
func (d *Daemon) Start() error {
	go d.webService.WaitShutdown()

	return d.webService.Start(":" + strconv.Itoa(d.cfg.Webserver.Port))
}

// New creates a new Daemon instance with the provided configuration.
func New(cfg *config.Config) (*Daemon, error) {
	if cfg == nil {
		return nil, ErrConfigNil
	}

	db, err := OpenDB(cfg)
	if err != nil {
		return nil, err
	}

	if err = Migrate(context.Background(), db); err != nil {
		return nil, err
	}

	if err = seed(context.Background(), cfg, db); err != nil {
		return nil, err
	}

	session.Init(sessionStorage(cfg), cfg.Webserver.Session.ExpiryTime)

	return &Daemon{
		cfg:        cfg,
		webService: web.New(cfg, db),
	}, nil
}

// OpenDB opens the database of the configured gorm engine.
func OpenDB(cfg *config.Config) (*gorm.DB, error) {
	var dialector gorm.Dialector

	switch cfg.DB.GormEngine {
	case config.EnginePostgres:
		dialector = gormpostgres.Open(dsn.Create(cfg))
	case config.EngineSQLite:
		dialector = sqlite.Open(dsn.Create(cfg))
	case config.EngineMySQL, "":
		dialector = gormmysql.Open(dsn.Create(cfg))
	default:
		return nil, fmt.Errorf("%w: %s", config.ErrUnsupportedGormEngine, cfg.DB.GormEngine)
	}

	level := gormlogger.Warn
	if cfg.Log.LogSQL {
		level = gormlogger.Info
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormlogger.New(stdlogger.NewComponent("gorm", zerolog.InfoLevel), gormlogger.Config{
			SlowThreshold:             slowSQLThreshold,
			LogLevel:                  level,
			IgnoreRecordNotFoundError: true,
		}),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect database: %w", err)
	}

	return db, nil
}

// Migrate creates or updates the schema and mirrors the permission catalog
// into the permissions table.
func Migrate(ctx context.Context, db *gorm.DB) error {
	if err := db.WithContext(ctx).AutoMigrate(
		&models.User{},
		&models.Store{},
		&models.Permission{},
		&models.Role{},
		&models.RolePermission{},
		&models.RoleAssignment{},
	); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	if err := permission.Sync(ctx, db); err != nil {
		return fmt.Errorf("failed to sync permission catalog: %w", err)
	}

	return nil
}

// sessionStorage returns the session backend of the configured engine.
// sqlite keeps sessions in memory.
func sessionStorage(cfg *config.Config) fiber.Storage {
	switch cfg.DB.GormEngine {
	case config.EnginePostgres:
		return sessionpostgres.New(sessionpostgres.Config{
			ConnectionURI: dsn.SessionURI(cfg),
			Table:         sessionTable,
		})
	case config.EngineSQLite:
		log.Warn().Msg("sqlite engine: sessions are kept in memory and lost on restart")

		return nil
	default:
		return sessionmysql.New(sessionmysql.Config{
			ConnectionURI: dsn.SessionURI(cfg),
			Table:         sessionTable,
		})
	}
}
