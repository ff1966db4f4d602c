package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
)

// Common errors.
var (
	ErrToolMissing       = errors.New("runner: downloader tool not found")
	ErrToolNotExecutable = errors.New("runner: downloader tool is not executable")
)

// Tool wraps the external govinfo bulk-data downloader (usc-run).
// The orchestrator treats it as opaque: arguments in, exit status out.
type Tool struct {
	// Path is the path to the downloader executable.
	Path string

	// WorkingDir is the directory the tool runs in. The tool writes
	// retrieved data under <WorkingDir>/data.
	WorkingDir string

	// Env is the environment for the tool. Defaults to the current
	// process environment.
	Env []string

	// Stdout and Stderr receive the tool's output. Default: the
	// current process's stdout/stderr.
	Stdout io.Writer
	Stderr io.Writer
}

// Preflight verifies the tool exists and is executable. It is the only
// check performed before the fetch loop starts.
func (t *Tool) Preflight() error {
	info, err := os.Stat(t.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrToolMissing, t.Path)
		}
		return fmt.Errorf("runner: stat tool: %w", err)
	}
	if info.IsDir() || info.Mode().Perm()&0111 == 0 {
		return fmt.Errorf("%w: %s", ErrToolNotExecutable, t.Path)
	}
	return nil
}

// FetchBulkData invokes the tool once for a single congress:
//
//	<tool> govinfo --bulkdata=<category> --congress=<congress>
//
// The call blocks until the tool exits. A non-zero exit status is
// returned as an error wrapping *exec.ExitError; use ExitStatus to
// recover the tool's exit code.
func (t *Tool) FetchBulkData(ctx context.Context, category string, congress int) error {
	cmd := exec.CommandContext(ctx, t.Path,
		"govinfo",
		fmt.Sprintf("--bulkdata=%s", category),
		fmt.Sprintf("--congress=%d", congress),
	)
	cmd.Dir = t.WorkingDir
	cmd.Env = t.Env
	cmd.Stdout = t.Stdout
	cmd.Stderr = t.Stderr
	if cmd.Stdout == nil {
		cmd.Stdout = os.Stdout
	}
	if cmd.Stderr == nil {
		cmd.Stderr = os.Stderr
	}

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("runner: fetch %s congress %d: %w", category, congress, err)
	}
	return nil
}

// ExitStatus extracts the process exit code from a FetchBulkData error.
// Returns 1 for errors that did not come from a process exit.
func ExitStatus(err error) int {
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		if code := exitErr.ExitCode(); code > 0 {
			return code
		}
	}
	return 1
}
