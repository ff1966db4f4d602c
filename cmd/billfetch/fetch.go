package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/sholt94/congress-ai/internal/config"
	"github.com/sholt94/congress-ai/internal/runner"
	"github.com/sholt94/congress-ai/internal/scan"
)

// loadConfig builds the effective configuration: defaults, then the YAML
// file if given, then .env, then environment variables, then flag
// overrides.
func loadConfig(configPath string, overrides config.Config) (config.Config, error) {
	cfg := config.Default()

	if configPath != "" {
		fileCfg, err := config.LoadFromFile(configPath)
		if err != nil {
			return config.Config{}, err
		}
		cfg = fileCfg
	}

	cfg = cfg.Merge(overrides)

	if err := cfg.LoadDotenv(); err != nil {
		return config.Config{}, err
	}
	if err := cfg.LoadFromEnv(); err != nil {
		return config.Config{}, err
	}

	// Flags win over environment too.
	cfg = cfg.Merge(overrides)

	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

func runFetch(args []string) int {
	fs := flag.NewFlagSet("fetch", flag.ExitOnError)

	configPath := fs.String("config", "", "Path to YAML config file")
	root := fs.String("root", "", "Project root (default: current directory)")
	tool := fs.String("tool", "", "Path to the usc-run downloader")
	category := fs.String("category", "", "Bulk data category (default: BILLS)")
	start := fs.Int("start", 0, "First congress to fetch (default: 93)")
	end := fs.Int("end", 0, "Last congress to fetch (default: 119)")

	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, `Usage: billfetch fetch [options]

Invoke the govinfo bulk-data downloader once per congress, in ascending
order, then report the bill text files found under <root>/data. Stops
at the first failing invocation and exits with the downloader's status.

Options:`)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return ExitInvalidArgs
	}

	cfg, err := loadConfig(*configPath, config.Config{
		Root:     *root,
		Tool:     *tool,
		Category: *category,
		Sessions: config.SessionRange{Start: *start, End: *end},
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return ExitInvalidArgs
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

	return fetchSessions(ctx, cfg, os.Stdout, os.Stderr)
}

func fetchSessions(ctx context.Context, cfg config.Config, out, errOut io.Writer) int {
	tool := &runner.Tool{
		Path:       cfg.ToolPath(),
		WorkingDir: cfg.Root,
		Stdout:     out,
		Stderr:     errOut,
	}

	if err := tool.Preflight(); err != nil {
		fmt.Fprintf(errOut, "Error: %v\n", err)
		fmt.Fprintf(errOut, `The govinfo downloader is not set up. From the project root, run:

  python3 -m venv env
  env/bin/pip install usc-run
  source env/bin/activate
`)
		return ExitGeneralError
	}

	for c := cfg.Sessions.Start; c <= cfg.Sessions.End; c++ {
		fmt.Fprintf(out, "=== Fetching %s for congress %d ===\n", cfg.Category, c)
		if err := tool.FetchBulkData(ctx, cfg.Category, c); err != nil {
			fmt.Fprintf(errOut, "Error: %v\n", err)
			return runner.ExitStatus(err)
		}
		fmt.Fprintf(out, "=== Congress %d complete ===\n", c)
	}

	return summarize(cfg.Root, cfg.Category, out, errOut)
}

// summarize scans the data tree and prints up to 10 example files plus
// the total count.
func summarize(root, category string, out, errOut io.Writer) int {
	matches, err := scan.BillTextFiles(root)
	if err != nil {
		fmt.Fprintf(errOut, "Error: %v\n", err)
		return ExitGeneralError
	}

	for i, m := range matches {
		if i >= 10 {
			break
		}
		fmt.Fprintln(out, m)
	}
	fmt.Fprintf(out, "Total %s (bill text) files: %d\n", category, len(matches))
	return ExitSuccess
}
