package testutil

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func buildBinary(t *testing.T) string {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping binary build in short mode")
	}
	if _, err := exec.LookPath("go"); err != nil {
		t.Skip("skipping: go toolchain not on PATH")
	}
	tdir := t.TempDir()
	bin := filepath.Join(tdir, "nativebridge")
	cmd := exec.Command("go", "build", "-o", bin, ".")
	cmd.Dir = RepoRoot(t)
	cmd.Env = append(os.Environ(), "GOCACHE="+filepath.Join(tdir, ".gocache"))
	if out, err := cmd.CombinedOutput(); err != nil {
		t.Fatalf("failed to build binary: %v\n%s", err, out)
	}
	return bin
}

func TestBenchmarkModeReportsReady(t *testing.T) {
	bin := buildBinary(t)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	script := filepath.Join(RepoRoot(t), "testdata", "scripts", "sidebar.js")
	cmd := exec.CommandContext(ctx, bin,
		"-benchmark",
		"-toolkit", "headless",
		"-script", script,
		"-log-file", filepath.Join(t.TempDir(), "nativebridge.log"),
	)
	out, err := cmd.Output()
	if err != nil {
		t.Fatalf("benchmark run failed: %v", err)
	}
	if strings.TrimSpace(string(out)) != "ready" {
		t.Fatalf("expected ready, got %q", out)
	}
}
