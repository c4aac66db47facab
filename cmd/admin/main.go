package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/alecthomas/kong"

	"github.com/dmitrijs2005/hydratr/internal/admin"
	"github.com/dmitrijs2005/hydratr/internal/logging"
	"github.com/dmitrijs2005/hydratr/internal/server/config"
	"github.com/dmitrijs2005/hydratr/internal/server/render"
	"github.com/dmitrijs2005/hydratr/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/hydratr/internal/server/services"
	"github.com/dmitrijs2005/hydratr/internal/server/storage"
)

func main() {
	var cli admin.CLI
	kctx := kong.Parse(&cli,
		kong.Name("hydratr-admin"),
		kong.Description("Maintenance tool for the Hydratr server"),
		kong.UsageOnError(),
	)

	if err := run(kctx, &cli); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(kctx *kong.Context, cli *admin.CLI) error {
	ctx := context.Background()

	cfg := config.LoadEnvConfig()
	if cli.DSN != "" {
		cfg.DatabaseDSN = cli.DSN
	}
	logger := logging.New(cfg.LogLevel, logging.Output(cfg.LogFile))

	db, err := repomanager.Open(ctx, cfg.DatabaseDSN)
	if err != nil {
		return fmt.Errorf("db init error: %w", err)
	}
	defer db.Close()

	rm := repomanager.NewPostgresRepositoryManager()
	st, err := storage.New(ctx, cfg)
	if err != nil {
		return fmt.Errorf("storage init error: %w", err)
	}

	return kctx.Run(&admin.Context{
		Ctx:     ctx,
		Migrate: func(ctx context.Context) error { return rm.RunMigrations(ctx, db) },
		Users:   services.NewUserService(db, rm, st, cfg, logger),
		Entries: services.NewEntryService(db, rm),
		Reports: services.NewReportService(db, rm, render.NewPDFRenderer()),
		Out:     os.Stdout,
		Now:     time.Now,
	})
}
