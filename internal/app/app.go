// Package app initializes and runs the bookmark API service. It configures
// logging, storage, authentication, and routing, and handles graceful
// shutdown.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/vishnucprasad/bookmarkapi/internal/auth"
	"github.com/vishnucprasad/bookmarkapi/internal/config"
	"github.com/vishnucprasad/bookmarkapi/internal/db/jsondb"
	"github.com/vishnucprasad/bookmarkapi/internal/db/memorystorage"
	"github.com/vishnucprasad/bookmarkapi/internal/db/postgresdb"
	"github.com/vishnucprasad/bookmarkapi/internal/db/storage"
	"github.com/vishnucprasad/bookmarkapi/internal/ipchecker"
	"github.com/vishnucprasad/bookmarkapi/internal/logger"
	"github.com/vishnucprasad/bookmarkapi/internal/models"
	"github.com/vishnucprasad/bookmarkapi/internal/passhash"
	"github.com/vishnucprasad/bookmarkapi/internal/router"
	"github.com/vishnucprasad/bookmarkapi/internal/service"
)

// App encapsulates the configuration, HTTP handler and storage backend
// needed to run the bookmark API service.
type App struct {
	cfg         *config.Config
	db          storage.Storage
	httpHandler http.Handler
}

// New initializes a new instance of App by:
// - loading configuration
// - initializing the logger
// - selecting and setting up storage
// - constructing the auth and bookmark components
// - setting up the router and middleware
func New() (*App, error) {
	var err error
	app := &App{}

	app.cfg, err = config.New()
	if err != nil {
		return nil, err
	}

	if err := logger.Init(app.cfg.LogLevel); err != nil {
		return nil, err
	}

	app.db, err = getStorageByType(app.cfg)
	if err != nil {
		return nil, err
	}

	authService := auth.New(
		app.db,
		[]byte(app.cfg.JWTSecret),
		app.cfg.AccessTokenTTL,
		passhash.Params{
			Memory:      app.cfg.HashMemory,
			Iterations:  app.cfg.HashIterations,
			Parallelism: app.cfg.HashParallelism,
			SaltLength:  passhash.DefaultSaltLength,
			KeyLength:   passhash.DefaultKeyLength,
		},
	)

	ipChecker, err := ipchecker.New(app.cfg.TrustedSubnet)
	if err != nil {
		return nil, err
	}

	app.httpHandler = router.New(
		service.New(app.db),
		authService,
		authService,
		ipChecker,
	)

	return app, nil
}

// Run starts the HTTP server with graceful shutdown support.
// It listens for system signals and cleans up resources upon termination.
func (a *App) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Log.Infow("server running", "RunAddr", a.cfg.RunAddr)

	server := &http.Server{
		Addr:    a.cfg.RunAddr,
		Handler: a.httpHandler,
	}

	serverErrCh := make(chan error, 1)
	go func() {
		serverErrCh <- server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		logger.Log.Infoln("Received shutdown signal. Saving database and exiting...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown error: %w", err)
		}

		return a.db.Close()

	case err := <-serverErrCh:
		return fmt.Errorf("server error: %w", err)
	}
}

// Close finalizes resources used by App such as logging.
func (a *App) Close() {
	if err := logger.Sync(); err != nil {
		fmt.Println("Logger sync error:", err)
	}
}

func getAvailableStorageType(cfg *config.Config) int {
	if cfg.DatabaseDSN != "" {
		return models.StorageTypePostgresql
	}

	if cfg.DBFileName != "" {
		return models.StorageTypeFile
	}

	return models.StorageTypeMemory
}

func getStorageByType(cfg *config.Config) (storage.Storage, error) {
	switch getAvailableStorageType(cfg) {
	case models.StorageTypeUnknown:
		return nil, errors.New("unknown storage type")

	case models.StorageTypePostgresql:
		return postgresdb.New(
			context.Background(),
			cfg.DatabaseDSN,
			cfg.DBConnectionTimeout,
			cfg.MigrationsDir,
		)

	case models.StorageTypeFile:
		return jsondb.New(cfg.DBFileName)
	}

	return memorystorage.New()
}
