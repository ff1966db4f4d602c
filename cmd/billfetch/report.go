package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/sholt94/congress-ai/internal/config"
)

func runReport(args []string) int {
	fs := flag.NewFlagSet("report", flag.ExitOnError)

	configPath := fs.String("config", "", "Path to YAML config file")
	root := fs.String("root", "", "Project root (default: current directory)")
	category := fs.String("category", "", "Bulk data category (default: BILLS)")

	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, `Usage: billfetch report [options]

Scan <root>/data for downloaded bill text files, print up to 10 examples
in traversal order, and print the total count.

Options:`)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return ExitInvalidArgs
	}

	cfg, err := loadConfig(*configPath, config.Config{
		Root:     *root,
		Category: *category,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return ExitInvalidArgs
	}

	return summarize(cfg.Root, cfg.Category, os.Stdout, os.Stderr)
}
