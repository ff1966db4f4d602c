package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/sholt94/congress-ai/internal/config"
)

// newTestRoot creates a project root with a fake downloader tool at the
// default env/bin/usc-run location. The script runs after a line that
// appends the tool's arguments to invocations.log under the root.
func newTestRoot(t *testing.T, script string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("fake tool scripts require a POSIX shell")
	}

	root := t.TempDir()
	binDir := filepath.Join(root, "env", "bin")
	if err := os.MkdirAll(binDir, 0755); err != nil {
		t.Fatalf("mkdir %s: %v", binDir, err)
	}
	logging := fmt.Sprintf("echo \"$@\" >> %q\n", filepath.Join(root, "invocations.log"))
	toolPath := filepath.Join(binDir, "usc-run")
	if err := os.WriteFile(toolPath, []byte("#!/bin/sh\n"+logging+script), 0755); err != nil {
		t.Fatalf("write tool script: %v", err)
	}
	return root
}

func readInvocations(t *testing.T, root string) []string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(root, "invocations.log"))
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		t.Fatalf("read invocation log: %v", err)
	}
	return strings.Split(strings.TrimSpace(string(data)), "\n")
}

func testConfig(root string) config.Config {
	cfg := config.Default()
	cfg.Root = root
	return cfg
}

// Scenario: tool path missing. No invocations, exit 1, remediation hint.
func TestFetchToolMissing(t *testing.T) {
	root := t.TempDir()

	var out, errOut bytes.Buffer
	code := fetchSessions(context.Background(), testConfig(root), &out, &errOut)

	if code != ExitGeneralError {
		t.Errorf("expected exit %d, got %d", ExitGeneralError, code)
	}
	if got := readInvocations(t, root); len(got) != 0 {
		t.Errorf("expected zero invocations, got %v", got)
	}
	if !strings.Contains(errOut.String(), "usc-run") {
		t.Errorf("error output should name the tool: %q", errOut.String())
	}
	if !strings.Contains(errOut.String(), "venv") {
		t.Errorf("error output should include remediation hint: %q", errOut.String())
	}
	if strings.Contains(out.String(), "Total") {
		t.Error("summary should not be printed on preflight failure")
	}
}

// Scenario: all sessions succeed, no files downloaded. 27 progress
// pairs, then a zero total.
func TestFetchFullRangeNoFiles(t *testing.T) {
	root := newTestRoot(t, "")

	var out, errOut bytes.Buffer
	code := fetchSessions(context.Background(), testConfig(root), &out, &errOut)

	if code != ExitSuccess {
		t.Fatalf("expected exit 0, got %d (stderr: %s)", code, errOut.String())
	}

	invocations := readInvocations(t, root)
	if len(invocations) != 27 {
		t.Fatalf("expected 27 invocations, got %d", len(invocations))
	}
	for i, inv := range invocations {
		want := fmt.Sprintf("govinfo --bulkdata=BILLS --congress=%d", 93+i)
		if inv != want {
			t.Errorf("invocation %d = %q, want %q", i, inv, want)
		}
	}

	if got := strings.Count(out.String(), "=== Fetching BILLS for congress "); got != 27 {
		t.Errorf("expected 27 progress markers, got %d", got)
	}
	if got := strings.Count(out.String(), "complete ==="); got != 27 {
		t.Errorf("expected 27 completion markers, got %d", got)
	}
	if !strings.Contains(out.String(), "Total BILLS (bill text) files: 0") {
		t.Errorf("expected zero total, got: %s", out.String())
	}
}

// Scenario: the invocation for congress 95 fails. 93 and 94 run, 95 is
// attempted, 96+ are not, no summary, downloader's exit status is
// propagated.
func TestFetchHaltsOnFirstFailure(t *testing.T) {
	root := newTestRoot(t, `case "$*" in *--congress=95*) exit 7;; esac`+"\n")

	var out, errOut bytes.Buffer
	code := fetchSessions(context.Background(), testConfig(root), &out, &errOut)

	if code != 7 {
		t.Errorf("expected propagated exit status 7, got %d", code)
	}

	invocations := readInvocations(t, root)
	if len(invocations) != 3 {
		t.Fatalf("expected 3 invocations (93, 94, 95), got %d: %v", len(invocations), invocations)
	}
	last := invocations[len(invocations)-1]
	if !strings.Contains(last, "--congress=95") {
		t.Errorf("last invocation should be congress 95, got %q", last)
	}
	if strings.Contains(out.String(), "Total") {
		t.Error("summary should not be printed after a failed invocation")
	}
}

// Scenario: downloaded files exist; summary prints at most 10 examples
// and the correct total.
func TestFetchSummaryWithFiles(t *testing.T) {
	root := newTestRoot(t, "")

	for i := 0; i < 12; i++ {
		p := filepath.Join(root, "data", "govinfo", "BILLS", "117", "1", "bills", "hr",
			fmt.Sprintf("BILLS-117hr%dih.xml", i+1))
		if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
		if err := os.WriteFile(p, []byte("<xml/>"), 0644); err != nil {
			t.Fatalf("write: %v", err)
		}
	}
	// A file outside the bills layout must not be counted.
	stray := filepath.Join(root, "data", "notes.xml")
	if err := os.WriteFile(stray, []byte("<xml/>"), 0644); err != nil {
		t.Fatalf("write stray: %v", err)
	}

	cfg := testConfig(root)
	cfg.Sessions = config.SessionRange{Start: 117, End: 117}

	var out, errOut bytes.Buffer
	code := fetchSessions(context.Background(), cfg, &out, &errOut)
	if code != ExitSuccess {
		t.Fatalf("expected exit 0, got %d (stderr: %s)", code, errOut.String())
	}

	if !strings.Contains(out.String(), "Total BILLS (bill text) files: 12") {
		t.Errorf("expected total 12, got: %s", out.String())
	}
	examples := 0
	for _, line := range strings.Split(out.String(), "\n") {
		if strings.Contains(line, "BILLS-117hr") && strings.HasSuffix(line, ".xml") {
			examples++
		}
	}
	if examples != 10 {
		t.Errorf("expected 10 example lines, got %d", examples)
	}
}

func TestRunUnknownCommand(t *testing.T) {
	if code := run([]string{"frobnicate"}); code != ExitInvalidArgs {
		t.Errorf("expected exit %d, got %d", ExitInvalidArgs, code)
	}
}

func TestRunNoArgs(t *testing.T) {
	if code := run(nil); code != ExitInvalidArgs {
		t.Errorf("expected exit %d, got %d", ExitInvalidArgs, code)
	}
}
