package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/sholt94/congress-ai/internal/config"
	"github.com/sholt94/congress-ai/internal/progress"
	"github.com/sholt94/congress-ai/internal/scan"
	"github.com/sholt94/congress-ai/internal/store"
	"github.com/sholt94/congress-ai/pkg/billstatus"
)

func runIngest(args []string) int {
	fs := flag.NewFlagSet("ingest", flag.ExitOnError)

	configPath := fs.String("config", "", "Path to YAML config file")
	root := fs.String("root", "", "Project root (default: current directory)")
	databaseURL := fs.String("database-url", "", "Postgres connection string (default: $DATABASE_URL)")
	dryRun := fs.Bool("dry-run", false, "Parse only; no database writes")
	limit := fs.Int("limit", 0, "Process only the first N files (0 = all)")

	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, `Usage: billfetch ingest [options]

Find BILLSTATUS XML files under <root>/data and upsert bills, actions,
and cosponsors into Postgres. Files that fail to parse are skipped and
counted. DATABASE_URL may come from the environment or <root>/.env.

Options:`)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return ExitInvalidArgs
	}

	cfg, err := loadConfig(*configPath, config.Config{
		Root:        *root,
		DatabaseURL: *databaseURL,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return ExitInvalidArgs
	}

	files, err := scan.BillStatusFiles(cfg.Root)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return ExitGeneralError
	}
	if *limit > 0 && len(files) > *limit {
		files = files[:*limit]
	}
	if len(files) == 0 {
		fmt.Fprintf(os.Stderr, "Error: no BILLSTATUS XML files found under %s\n",
			filepath.Join(cfg.Root, "data"))
		return ExitNoFiles
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		fmt.Fprintln(os.Stderr, "\n[billfetch] Received interrupt, shutting down...")
		cancel()
	}()

	return ingestFiles(ctx, cfg, files, *dryRun, os.Stdout, os.Stderr)
}

func ingestFiles(ctx context.Context, cfg config.Config, files []string, dryRun bool, out, errOut io.Writer) int {
	label := "Ingesting"
	if dryRun {
		label = "Parsing"
	}

	reporter := progress.NewReporter(progress.Options{
		Total:  len(files),
		Label:  label,
		Output: errOut,
	})
	reporter.Start()
	defer reporter.Stop()

	if dryRun {
		for _, path := range files {
			if ctx.Err() != nil {
				fmt.Fprintf(errOut, "Error: %v\n", ctx.Err())
				return ExitGeneralError
			}
			if _, err := billstatus.ParseFile(path); err != nil {
				reporter.FileSkipped()
				continue
			}
			reporter.FileCompleted()
		}
		reporter.Stop()
		fmt.Fprintf(out, "Dry run complete. OK=%d Skipped=%d\n", reporter.Completed(), reporter.Skipped())
		return ExitSuccess
	}

	if cfg.DatabaseURL == "" {
		fmt.Fprintln(errOut, "Error: DATABASE_URL is not set (environment or <root>/.env)")
		return ExitDatabaseError
	}

	s, err := store.Connect(ctx, cfg.DatabaseURL, store.Options{
		CommitEvery: cfg.Ingest.CommitEvery,
		FlushRows:   cfg.Ingest.FlushRows,
	})
	if err != nil {
		fmt.Fprintf(errOut, "Error: %v\n", err)
		return ExitDatabaseError
	}
	if err := s.EnsureSchema(ctx); err != nil {
		s.Close(ctx)
		fmt.Fprintf(errOut, "Error: %v\n", err)
		return ExitDatabaseError
	}

	for _, path := range files {
		if ctx.Err() != nil {
			s.Close(context.Background())
			fmt.Fprintf(errOut, "Error: %v\n", ctx.Err())
			return ExitGeneralError
		}

		rec, err := billstatus.ParseFile(path)
		if err != nil {
			reporter.FileSkipped()
			continue
		}

		if rel, err := filepath.Rel(cfg.Root, path); err == nil {
			rec.SourcePath = filepath.ToSlash(rel)
		}

		if err := s.Add(ctx, rec); err != nil {
			s.Close(context.Background())
			fmt.Fprintf(errOut, "Error: %v\n", err)
			return ExitDatabaseError
		}
		reporter.FileCompleted()
	}

	if err := s.Close(ctx); err != nil {
		fmt.Fprintf(errOut, "Error: %v\n", err)
		return ExitDatabaseError
	}

	reporter.Stop()
	fmt.Fprintf(out, "Ingest complete. OK=%d Skipped=%d\n", reporter.Completed(), reporter.Skipped())
	return ExitSuccess
}
