// Package server initializes and runs the AudioVault server application.
// It wires the database, object storage, services and the HTTP surface,
// runs migrations and master account seeding, and handles graceful shutdown.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/audiovault/audiovault/internal/logging"
	"github.com/audiovault/audiovault/internal/server/config"
	serverhttp "github.com/audiovault/audiovault/internal/server/http"
	"github.com/audiovault/audiovault/internal/server/objstore"
	"github.com/audiovault/audiovault/internal/server/repositories/repomanager"
	"github.com/audiovault/audiovault/internal/server/services"
)

type App struct {
	config       *config.Config
	logger       logging.Logger
	db           *sql.DB
	userService  *services.UserService
	audioService *services.AudioFileService
}

func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	logger := logging.NewDefault(cfg.Production)

	db, err := sql.Open("pgx", cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		return nil, fmt.Errorf("migration error: %w", err)
	}

	store, err := objstore.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("object storage init error: %w", err)
	}

	us := services.NewUserService(db, rm, cfg)
	as := services.NewAudioFileService(db, rm, store, cfg)

	if err := us.EnsureMaster(ctx, cfg.MasterPassword); err != nil {
		logger.Warn(ctx, "master account seeding failed", "error", err)
	}

	return &App{
		config:       cfg,
		logger:       logger,
		db:           db,
		userService:  us,
		audioService: as,
	}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	s := serverhttp.NewServer(app.config.EndpointAddr, app.logger, app.userService, app.audioService, app.config.SecretKey)

	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	wg.Wait()

	if err := app.db.Close(); err != nil {
		app.logger.Error(ctx, "db close error", "error", err)
	}
}
