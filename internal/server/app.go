// Package server wires configuration, storage clients, services and the REST
// router together, and runs the HTTP server until a shutdown signal arrives.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dmitrijs2005/rosebudthorn/internal/logging"
	"github.com/dmitrijs2005/rosebudthorn/internal/server/cache"
	"github.com/dmitrijs2005/rosebudthorn/internal/server/config"
	"github.com/dmitrijs2005/rosebudthorn/internal/server/handlers"
	"github.com/dmitrijs2005/rosebudthorn/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/rosebudthorn/internal/server/rest"
	"github.com/dmitrijs2005/rosebudthorn/internal/server/services"
	"github.com/dmitrijs2005/rosebudthorn/internal/server/storage"
)

const startupTimeout = 15 * time.Second

type App struct {
	config  *config.Config
	logger  logging.Logger
	db      *sql.DB
	redis   *cache.RedisCache
	server  *rest.HTTPServer
	closers []io.Closer
}

// NewApp opens every storage client, applies migrations and builds the
// router. Clients opened before a failure are closed again.
func NewApp(c *config.Config) (_ *App, err error) {
	logger, logCloser := logging.New(logging.Options{
		File:   c.LogFile,
		Stdout: true,
		JSON:   true,
		Level:  c.LogLevel,
	})
	app := &App{config: c, logger: logger, closers: []io.Closer{logCloser}}
	defer func() {
		if err != nil {
			app.close()
		}
	}()

	loc, err := c.Location()
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), startupTimeout)
	defer cancel()

	app.db, err = repomanager.OpenPostgres(ctx, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, app.db); err != nil {
		return nil, fmt.Errorf("migrations error: %w", err)
	}

	var store cache.Store
	if c.RedisAddr != "" {
		rc := cache.NewRedisCache(c.RedisAddr, c.RedisPassword, c.RedisDB)
		if err := rc.Ping(ctx); err != nil {
			logger.Warn(ctx, "Redis connection failed, running without cache", "addr", c.RedisAddr, "error", err)
			_ = rc.Close()
		} else {
			logger.Info(ctx, "Redis cache connected", "addr", c.RedisAddr)
			app.redis = rc
			store = rc
		}
	}

	var objects storage.ObjectStore
	if c.S3Bucket != "" {
		s3store, err := storage.NewS3Store(ctx, storage.S3Config{
			AccessKey: c.S3AccessKey,
			SecretKey: c.S3SecretKey,
			Bucket:    c.S3Bucket,
			Region:    c.S3Region,
			Endpoint:  c.S3Endpoint,
		})
		if err != nil {
			return nil, fmt.Errorf("s3 init error: %w", err)
		}
		objects = s3store
	} else {
		logger.Info(ctx, "S3 bucket not configured, journal export disabled")
	}

	users := services.NewUserService(app.db, rm, c)
	entries := services.NewEntryService(app.db, rm, cache.NewEntryCache(store), loc, logger)
	groups := services.NewGroupService(app.db, rm, cache.NewCodeReservations(store), logger)
	exports := services.NewExportService(entries, objects, logger)

	router := handlers.NewRouter(handlers.Deps{
		Users:          users,
		Entries:        entries,
		Groups:         groups,
		Exports:        exports,
		SecretKey:      []byte(c.SecretKey),
		AllowedOrigins: c.AllowedOrigins,
		AccessLog:      os.Stdout,
		HealthCheck:    app.db.PingContext,
		Log:            logger.With("module", "http"),
	})
	app.server = rest.NewHTTPServer(c.HTTPAddr, router, logger)

	return app, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

// Run serves until ctx is cancelled or a signal arrives, then releases every
// storage client.
func (app *App) Run(ctx context.Context) error {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...", "timezone", app.config.Timezone)

	app.initSignalHandler(cancelFunc)

	err := app.server.Run(ctx)
	if err != nil {
		app.logger.Error(ctx, "HTTP server failed", "error", err)
	}

	app.logger.Info(context.Background(), "Closing storage clients...")
	app.close()
	return err
}

func (app *App) close() {
	if app.redis != nil {
		if err := app.redis.Close(); err != nil {
			app.logger.Error(context.Background(), "closing redis", "error", err)
		}
	}
	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error(context.Background(), "closing database", "error", err)
		}
	}
	for _, c := range app.closers {
		_ = c.Close()
	}
}
