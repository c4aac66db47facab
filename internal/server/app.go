// Package server wires the Hydratr components together: it opens the
// database, applies migrations, builds the services and runs the HTTP API
// and the gRPC health service until a shutdown signal arrives.
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

	"github.com/dmitrijs2005/hydratr/internal/logging"
	"github.com/dmitrijs2005/hydratr/internal/server/config"
	"github.com/dmitrijs2005/hydratr/internal/server/httpapi"
	"github.com/dmitrijs2005/hydratr/internal/server/render"
	"github.com/dmitrijs2005/hydratr/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/hydratr/internal/server/services"
	"github.com/dmitrijs2005/hydratr/internal/server/storage"
	"golang.org/x/time/rate"

	gs "github.com/dmitrijs2005/hydratr/internal/server/grpc"
)

const healthCheckInterval = 10 * time.Second

type runner interface {
	Run(ctx context.Context) error
}

type App struct {
	config  *config.Config
	logger  logging.Logger
	db      *sql.DB
	servers map[string]runner
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {

	logger := logging.New(c.LogLevel, logging.Output(c.LogFile))

	db, err := repomanager.Open(ctx, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migration error: %w", err)
	}

	st, err := storage.New(ctx, c)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("storage init error: %w", err)
	}

	us := services.NewUserService(db, rm, st, c, logger)
	es := services.NewEntryService(db, rm)
	rs := services.NewReportService(db, rm, render.NewPDFRenderer())

	h := httpapi.NewHandler(c, logger, us, es, rs)
	limiter := httpapi.NewIPRateLimiter(rate.Limit(c.RateLimitRPS), c.RateLimitBurst)

	return &App{
		config: c,
		logger: logger,
		db:     db,
		servers: map[string]runner{
			"http": httpapi.NewServer(c.EndpointAddrHTTP, logger, h.NewRouter(limiter), limiter),
			"grpc": gs.NewHealthServer(c.EndpointAddrGRPC, logger, db, healthCheckInterval),
		},
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

// Run blocks until a signal arrives or any server fails, then stops the
// rest and closes the database.
func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	for name, s := range app.servers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := s.Run(ctx); err != nil {
				app.logger.Error(ctx, "server stopped with error", "server", name, "error", err)
				cancelFunc()
			}
		}()
	}

	wg.Wait()

	if err := app.db.Close(); err != nil {
		app.logger.Error(ctx, "error closing database", "error", err)
	}
	app.logger.Info(ctx, "App stopped")
}
