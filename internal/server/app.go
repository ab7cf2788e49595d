// Package server wires the vault together: storage, session table, the HTTP
// API, the gRPC health service and the optional snapshot uploader, and runs
// them until the process is signalled.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/dmitrijs2005/sitevault/internal/logging"
	"github.com/dmitrijs2005/sitevault/internal/server/backup"
	"github.com/dmitrijs2005/sitevault/internal/server/config"
	"github.com/dmitrijs2005/sitevault/internal/server/httpapi"
	"github.com/dmitrijs2005/sitevault/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/sitevault/internal/server/services"
	"github.com/dmitrijs2005/sitevault/internal/server/session"

	gs "github.com/dmitrijs2005/sitevault/internal/server/grpc"
)

const (
	sweepInterval  = time.Minute
	healthInterval = 10 * time.Second
)

type App struct {
	config   *config.Config
	logger   logging.Logger
	db       *sql.DB
	sessions *session.Table
	vault    *services.Vault
	backup   *backup.Service
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.New(os.Stdout, c.LogLevel, c.LogFormat)

	if err := c.Validate(); err != nil {
		return nil, err
	}

	db, rm, err := repomanager.Open(ctx, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	if err := rm.RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrations: %w", err)
	}

	sessions := session.NewTable(c.SessionTimeout, c.TokenValidityDuration, logger)
	app := &App{
		config:   c,
		logger:   logger,
		db:       db,
		sessions: sessions,
		vault:    services.NewVault(db, rm, sessions, c, logger),
	}

	if c.BackupEnabled() {
		client, err := backup.NewS3Client(ctx, c)
		if err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("s3 client: %w", err)
		}
		app.backup = backup.NewService(db, rm, client, c.S3Bucket, c.BackupInterval, logger)
	}

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

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	s := httpapi.NewHTTPServer(app.logger, app.vault, app.config)
	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) startGRPCServer(ctx context.Context, cancelFunc context.CancelFunc) {
	s := gs.NewGRPCServer(app.config.GRPCHealthAddr, app.logger, app.db, healthInterval)
	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

// Run blocks until a signal arrives or ctx is cancelled. Sessions are wiped
// and the database closed before it returns.
func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	if app.config.GRPCHealthAddr != "" {
		wg.Add(1)
		go func() {
			defer wg.Done()
			app.startGRPCServer(ctx, cancelFunc)
		}()
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.sessions.Run(ctx, sweepInterval)
	}()

	if app.backup != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			app.backup.Run(ctx)
		}()
	}

	wg.Wait()

	app.sessions.CloseAll()
	if err := app.db.Close(); err != nil {
		app.logger.Error(context.Background(), "closing db", "error", err)
	}
	app.logger.Info(context.Background(), "App stopped")
}
