package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"

	"github.com/elameta/quoteregistry/internal/imports"
	"github.com/elameta/quoteregistry/internal/positions"
	"github.com/elameta/quoteregistry/pkg/config"
	"github.com/elameta/quoteregistry/pkg/db"
	"github.com/elameta/quoteregistry/pkg/logger"
	"github.com/elameta/quoteregistry/pkg/storage/local"
)

func main() {
	ctx := context.Background()
	logg := logger.New(logger.Options{ServiceName: "import"})

	_ = godotenv.Load()

	file := flag.String("file", "", "CSV or XLSX file with a header row")
	dryRun := flag.Bool("dry-run", false, "validate rows without creating positions")
	report := flag.String("report", "", "write row errors to this XLSX path")
	flag.Parse()

	if *file == "" {
		fmt.Fprintln(os.Stderr, "missing -file")
		os.Exit(1)
	}

	cfg, err := config.Load()
	requireResource(ctx, logg, "config", err)

	logg = logger.New(logger.Options{
		ServiceName: "import",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})
	ctx = logg.WithFields(ctx, map[string]any{
		"env":     cfg.App.Env,
		"file":    filepath.Base(*file),
		"dry_run": *dryRun,
	})

	dbClient, err := db.New(ctx, cfg.DB, logg)
	requireResource(ctx, logg, "database", err)
	defer dbClient.Close()

	mediaStore, err := local.New(ctx, cfg.Media.Root, logg)
	requireResource(ctx, logg, "media store", err)

	svc, err := positions.NewService(positions.NewRepository(dbClient.DB()), dbClient, logg, positions.Options{
		Listing: cfg.Listing,
		Media:   mediaStore,
	})
	requireResource(ctx, logg, "position service", err)

	importer, err := imports.NewImporter(svc, logg, nil)
	requireResource(ctx, logg, "importer", err)

	f, err := os.Open(*file)
	requireResource(ctx, logg, "input file", err)
	defer f.Close()

	result, err := importer.Import(ctx, filepath.Base(*file), f, imports.Options{DryRun: *dryRun})
	if result != nil {
		printSummary(result)
	}
	if err != nil {
		logg.Error(ctx, "import aborted", err)
		os.Exit(1)
	}

	if *report != "" && len(result.Errors) > 0 {
		body, err := imports.ErrorReport(result.Errors)
		requireResource(ctx, logg, "error report", err)
		if err := os.WriteFile(*report, body, 0o644); err != nil {
			requireResource(ctx, logg, "error report file", err)
		}
		fmt.Println("error report written:", *report)
	}

	if result.Failed > 0 {
		os.Exit(2)
	}
}

func printSummary(r *imports.Result) {
	mode := "import"
	if r.DryRun {
		mode = "dry run"
	}
	fmt.Printf("%s: %d rows, %d created, %d valid, %d failed\n", mode, r.TotalRows, r.Created, r.Valid, r.Failed)
	for _, col := range r.Unrecognized {
		fmt.Printf("  unrecognized column: %s\n", col)
	}
	for _, e := range r.Errors {
		fmt.Printf("  row %d %s: %s\n", e.Row, e.Field, e.Message)
	}
}

func requireResource(ctx context.Context, logg *logger.Logger, resource string, err error) {
	if err == nil {
		return
	}
	logg.Error(ctx, fmt.Sprintf("resource not working: %s", resource), err)
	os.Exit(1)
}
