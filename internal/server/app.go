// Package server wires the ProdHub backend together: database and
// migrations, blob storage, services, the HTTP API, the gRPC health
// endpoint and the notification hub, and runs them until a signal arrives.
package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dmitrijs2005/prodhub/internal/logging"
	"github.com/dmitrijs2005/prodhub/internal/server/blob"
	"github.com/dmitrijs2005/prodhub/internal/server/config"
	"github.com/dmitrijs2005/prodhub/internal/server/httpapi"
	"github.com/dmitrijs2005/prodhub/internal/server/notify"
	"github.com/dmitrijs2005/prodhub/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/prodhub/internal/server/services"
	"github.com/dmitrijs2005/prodhub/internal/transfer"
	"golang.org/x/sync/errgroup"

	gs "github.com/dmitrijs2005/prodhub/internal/server/grpc"
)

const shutdownTimeout = 30 * time.Second

type App struct {
	config *config.Config
	logger logging.Logger
	db     *sql.DB
	hub    *notify.Hub
	api    *httpapi.Handler
	grpc   *gs.GRPCServer
}

// NewApp connects to the database, applies migrations and builds every
// component. The caller owns the returned App and must call Close.
func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.NewJSONLogger(os.Stdout, c.LogLevel)

	db, err := sql.Open("pgx", c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrations error: %w", err)
	}

	store, err := blob.New(ctx, c)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("blob store init error: %w", err)
	}

	hub := notify.NewHub(notify.DefaultBuffer, logger.With("module", "notify"))
	uploader := transfer.NewUploader(store)

	svc := httpapi.Services{
		Repositories:  services.NewRepositoryService(db, rm, logger),
		Commits:       services.NewCommitService(db, rm, uploader, hub, c, logger),
		Users:         services.NewUserService(db, rm, logger),
		Stars:         services.NewStarService(db, rm, hub, logger),
		Notifications: services.NewNotificationService(db, rm, hub, logger),
	}

	return &App{
		config: c,
		logger: logger,
		db:     db,
		hub:    hub,
		api:    httpapi.NewHandler(svc, c.SecretKey, c.MaxFileSize, logger),
		grpc:   gs.NewGRPCServer(c.EndpointAddrGRPC, db, c.HealthCheckInterval, logger),
	}, nil
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

func (app *App) startHTTPServer(ctx context.Context) error {
	srv := &http.Server{
		Addr:              app.config.EndpointAddrHTTP,
		Handler:           app.api.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		app.logger.Info(ctx, "Starting HTTP server", "address", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	app.logger.Info(ctx, "Stopping HTTP server...")
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Run serves until ctx is canceled, a termination signal arrives or one of
// the servers fails; the first failure stops the others.
func (app *App) Run(ctx context.Context) error {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")
	app.initSignalHandler(cancelFunc)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return app.hub.Run(ctx) })
	g.Go(func() error { return app.startHTTPServer(ctx) })
	g.Go(func() error { return app.grpc.Run(ctx) })

	err := g.Wait()
	if err != nil {
		app.logger.Error(ctx, "app stopped with error", "error", err)
	} else {
		app.logger.Info(ctx, "app stopped")
	}
	return err
}

// Close releases the database pool.
func (app *App) Close() error {
	return app.db.Close()
}
