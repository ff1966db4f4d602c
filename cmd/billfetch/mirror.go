package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path"
	"path/filepath"
	"syscall"

	"gocloud.dev/blob"
	_ "gocloud.dev/blob/fileblob"
	_ "gocloud.dev/blob/gcsblob"
	_ "gocloud.dev/blob/s3blob"

	"github.com/sholt94/congress-ai/internal/config"
	"github.com/sholt94/congress-ai/internal/progress"
	"github.com/sholt94/congress-ai/internal/scan"
)

func runMirror(args []string) int {
	fs := flag.NewFlagSet("mirror", flag.ExitOnError)

	configPath := fs.String("config", "", "Path to YAML config file")
	root := fs.String("root", "", "Project root (default: current directory)")
	bucket := fs.String("bucket", "", "Destination bucket URL (required; s3://, gs://, file://)")
	prefix := fs.String("prefix", "", "Object key prefix")
	workers := fs.Int("workers", 0, "Number of parallel upload workers")

	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, `Usage: billfetch mirror [options]

Copy downloaded bill text files to object storage for archival. Object
keys mirror the paths relative to the project root.

Options:`)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return ExitInvalidArgs
	}

	cfg, err := loadConfig(*configPath, config.Config{
		Root:    *root,
		Bucket:  *bucket,
		Prefix:  *prefix,
		Workers: *workers,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return ExitInvalidArgs
	}
	if cfg.Bucket == "" {
		fmt.Fprintln(os.Stderr, "Error: -bucket is required")
		fs.Usage()
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

	files, err := scan.BillTextFiles(cfg.Root)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return ExitGeneralError
	}
	if len(files) == 0 {
		fmt.Fprintf(os.Stderr, "[billfetch] Nothing to mirror under %s\n",
			filepath.Join(cfg.Root, "data"))
		return ExitSuccess
	}

	b, err := blob.OpenBucket(ctx, cfg.Bucket)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return ExitStorageError
	}
	defer b.Close()

	if err := mirrorFiles(ctx, b, cfg.Root, cfg.Prefix, files, cfg.Workers, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return ExitStorageError
	}

	fmt.Fprintf(os.Stderr, "[billfetch] Mirrored %d files to %s\n", len(files), cfg.Bucket)
	return ExitSuccess
}

// mirrorFiles uploads files to the bucket with a worker pool. Object
// keys are the file paths relative to root, optionally prefixed. The
// first error cancels remaining work.
func mirrorFiles(ctx context.Context, b *blob.Bucket, root, prefix string, files []string, workers int, errOut io.Writer) error {
	if workers <= 0 {
		workers = 1
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	reporter := progress.NewReporter(progress.Options{
		Total:  len(files),
		Label:  "Mirroring",
		Output: errOut,
	})
	reporter.Start()
	defer reporter.Stop()

	type result struct {
		path string
		err  error
	}

	workCh := make(chan string)
	resultCh := make(chan result)

	for w := 0; w < workers; w++ {
		go func() {
			for p := range workCh {
				err := uploadFile(ctx, b, root, prefix, p)
				resultCh <- result{path: p, err: err}
			}
		}()
	}

	// Send all work; once the context is canceled workers drain the
	// remaining items immediately with ctx.Err results.
	go func() {
		for _, p := range files {
			workCh <- p
		}
		close(workCh)
	}()

	var firstErr error
	for i := 0; i < len(files); i++ {
		r := <-resultCh
		if r.err != nil {
			if firstErr == nil {
				firstErr = fmt.Errorf("mirror %s: %w", r.path, r.err)
				cancel()
			}
			continue
		}
		reporter.FileCompleted()
	}

	return firstErr
}

func uploadFile(ctx context.Context, b *blob.Bucket, root, prefix, p string) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}

	rel, err := filepath.Rel(root, p)
	if err != nil {
		return err
	}
	key := filepath.ToSlash(rel)
	if prefix != "" {
		key = path.Join(prefix, key)
	}

	f, err := os.Open(p)
	if err != nil {
		return err
	}
	defer f.Close()

	w, err := b.NewWriter(ctx, key, nil)
	if err != nil {
		return err
	}
	if _, err := io.Copy(w, f); err != nil {
		w.Close()
		return err
	}
	return w.Close()
}
