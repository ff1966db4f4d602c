package progress

import (
	"fmt"
	"io"
	"os"
	"sync"
	"sync/atomic"
	"time"
)

// Options configures the progress reporter.
type Options struct {
	// Total is the total number of files to process.
	Total int

	// Label describes the operation (e.g. "Ingesting", "Mirroring").
	Label string

	// Output is where to write progress output.
	// Default: os.Stderr
	Output io.Writer

	// UpdateInterval is how often to update the progress display.
	// Default: 500ms
	UpdateInterval time.Duration
}

// Reporter outputs human-readable progress for a batch of files.
type Reporter struct {
	opts Options

	mu        sync.Mutex
	completed atomic.Int64
	skipped   atomic.Int64
	startTime time.Time
	stopCh    chan struct{}
	doneCh    chan struct{}
	stopped   bool
}

// NewReporter creates a new progress reporter.
func NewReporter(opts Options) *Reporter {
	if opts.Output == nil {
		opts.Output = os.Stderr
	}
	if opts.UpdateInterval == 0 {
		opts.UpdateInterval = 500 * time.Millisecond
	}
	if opts.Label == "" {
		opts.Label = "Processing"
	}

	return &Reporter{
		opts:   opts,
		stopCh: make(chan struct{}),
		doneCh: make(chan struct{}),
	}
}

// Start begins outputting progress information.
func (r *Reporter) Start() {
	r.startTime = time.Now()
	go r.updateLoop()
}

// Stop stops the reporter and prints the final status. Safe to call more
// than once.
func (r *Reporter) Stop() {
	r.mu.Lock()
	if r.stopped {
		r.mu.Unlock()
		return
	}
	r.stopped = true
	r.mu.Unlock()

	close(r.stopCh)
	<-r.doneCh
}

// FileCompleted marks one file as successfully processed.
func (r *Reporter) FileCompleted() {
	r.completed.Add(1)
}

// FileSkipped marks one file as skipped (e.g. parse failure).
func (r *Reporter) FileSkipped() {
	r.skipped.Add(1)
}

// Completed returns the number of files marked completed so far.
func (r *Reporter) Completed() int {
	return int(r.completed.Load())
}

// Skipped returns the number of files marked skipped so far.
func (r *Reporter) Skipped() int {
	return int(r.skipped.Load())
}

func (r *Reporter) updateLoop() {
	defer close(r.doneCh)

	ticker := time.NewTicker(r.opts.UpdateInterval)
	defer ticker.Stop()

	for {
		select {
		case <-r.stopCh:
			r.printFinalStatus()
			return
		case <-ticker.C:
			r.printProgress()
		}
	}
}

func (r *Reporter) printProgress() {
	done := int(r.completed.Load() + r.skipped.Load())
	rate := r.rate(done)

	fmt.Fprintf(r.opts.Output, "\r[billfetch] %s: %d/%d files | %.0f files/s | ETA: %s    ",
		r.opts.Label,
		done,
		r.opts.Total,
		rate,
		r.eta(done, rate),
	)
}

func (r *Reporter) printFinalStatus() {
	done := int(r.completed.Load() + r.skipped.Load())
	rate := r.rate(done)

	fmt.Fprintf(r.opts.Output, "\r[billfetch] %s: %d/%d files | %.0f files/s | %d skipped | Total time: %s\n",
		r.opts.Label,
		done,
		r.opts.Total,
		rate,
		r.skipped.Load(),
		formatDuration(time.Since(r.startTime)),
	)
}

func (r *Reporter) rate(done int) float64 {
	elapsed := time.Since(r.startTime).Seconds()
	if elapsed < 0.1 {
		elapsed = 0.1
	}
	return float64(done) / elapsed
}

func (r *Reporter) eta(done int, rate float64) string {
	if rate <= 0 || r.opts.Total <= 0 {
		return "calculating..."
	}
	remaining := float64(r.opts.Total - done)
	return formatDuration(time.Duration(remaining / rate * float64(time.Second)))
}

// formatDuration formats a duration as a human-readable string.
func formatDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%.0fs", d.Seconds())
	}
	if d < time.Hour {
		m := int(d.Minutes())
		s := int(d.Seconds()) % 60
		return fmt.Sprintf("%dm %ds", m, s)
	}
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60
	return fmt.Sprintf("%dh %dm %ds", h, m, s)
}
