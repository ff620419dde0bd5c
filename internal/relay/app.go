// Package relay wires the relay server: postgres-backed repositories, the
// domain services and the HTTP surface, plus graceful shutdown and the
// expired-transfer janitor.
package relay

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/clientpro-app/clientpro/internal/logging"
	"github.com/clientpro-app/clientpro/internal/relay/config"
	"github.com/clientpro-app/clientpro/internal/relay/httpapi"
	"github.com/clientpro-app/clientpro/internal/relay/repositories/repomanager"
	"github.com/clientpro-app/clientpro/internal/relay/services"
)

type App struct {
	config    *config.Config
	log       logging.Logger
	db        *sql.DB
	transfers *services.TransferService
	server    *http.Server
}

func NewApp(c *config.Config) (*App, error) {
	log := logging.NewSlogLogger(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	db, err := sql.Open("pgx", c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(context.Background(), db); err != nil {
		return nil, fmt.Errorf("migrations error: %w", err)
	}

	authService := services.NewAuthService(db, rm, c, log)
	transferService := services.NewTransferService(db, rm, log)
	driveService := services.NewDriveService(c)

	api := httpapi.NewServer(authService, transferService, driveService, log)

	return &App{
		config:    c,
		log:       log,
		db:        db,
		transfers: transferService,
		server:    &http.Server{Addr: c.Addr, Handler: api.Handler()},
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

func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.log.Info(ctx, "starting relay", "addr", app.config.Addr)

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.transfers.StartJanitor(ctx, app.config.JanitorInterval)
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := app.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			app.log.Error(ctx, "http server failed", "error", err)
			cancelFunc()
		}
	}()

	<-ctx.Done()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := app.server.Shutdown(shutdownCtx); err != nil {
		app.log.Warn(shutdownCtx, "shutdown error", "error", err)
	}

	wg.Wait()
	_ = app.db.Close()
	app.log.Info(context.Background(), "relay stopped")
}
