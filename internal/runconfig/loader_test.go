package runconfig

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadValidManifest(t *testing.T) {
	dir := t.TempDir()

	manifestPath := filepath.Join(dir, "run.yaml")
	manifest := []byte(`command: /usr/bin/python3
args: ["-c", "print('hi')"]
cpu_time_limit_ms: 2000
memory_limit_bytes: 134217728
endpoints:
  stdin: /tmp/sandboxsup-stdin.sock
  stdout: /tmp/sandboxsup-stdout.sock
  stderr: /tmp/sandboxsup-stderr.sock
`)
	if err := os.WriteFile(manifestPath, manifest, 0o644); err != nil {
		t.Fatalf("write manifest: %v", err)
	}

	doc, err := Load(manifestPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if got, want := doc.Command, "/usr/bin/python3"; got != want {
		t.Fatalf("unexpected command: got %q want %q", got, want)
	}
	if got, want := doc.CPUTimeLimitMs, int64(2000); got != want {
		t.Fatalf("unexpected cpu_time_limit_ms: got %d want %d", got, want)
	}
	if got, want := doc.MemoryLimitBytes, int64(134217728); got != want {
		t.Fatalf("unexpected memory_limit_bytes: got %d want %d", got, want)
	}
	if got, want := doc.Endpoints.Stdout, "/tmp/sandboxsup-stdout.sock"; got != want {
		t.Fatalf("unexpected stdout endpoint: got %q want %q", got, want)
	}
}

func TestLoadRelativeDirResolvesAgainstManifestDir(t *testing.T) {
	dir := t.TempDir()
	workdir := filepath.Join(dir, "work")
	if err := os.Mkdir(workdir, 0o755); err != nil {
		t.Fatalf("mkdir workdir: %v", err)
	}

	manifestPath := filepath.Join(dir, "run.yaml")
	manifest := []byte(`command: /bin/echo
dir: ./work
endpoints:
  stdin: /tmp/a.sock
  stdout: /tmp/b.sock
  stderr: /tmp/c.sock
`)
	if err := os.WriteFile(manifestPath, manifest, 0o644); err != nil {
		t.Fatalf("write manifest: %v", err)
	}

	doc, err := Load(manifestPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if doc.Dir != workdir {
		t.Fatalf("unexpected resolved dir: got %q want %q", doc.Dir, workdir)
	}
}

func TestLoadRejectsMissingCommand(t *testing.T) {
	dir := t.TempDir()
	manifestPath := filepath.Join(dir, "run.yaml")
	manifest := []byte(`endpoints:
  stdin: /tmp/a.sock
  stdout: /tmp/b.sock
  stderr: /tmp/c.sock
`)
	if err := os.WriteFile(manifestPath, manifest, 0o644); err != nil {
		t.Fatalf("write manifest: %v", err)
	}

	_, err := Load(manifestPath)
	if err == nil {
		t.Fatal("expected error for missing command")
	}
	if !strings.Contains(err.Error(), "command is required") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestLoadRejectsMissingEndpoints(t *testing.T) {
	dir := t.TempDir()
	manifestPath := filepath.Join(dir, "run.yaml")
	manifest := []byte(`command: /bin/echo
`)
	if err := os.WriteFile(manifestPath, manifest, 0o644); err != nil {
		t.Fatalf("write manifest: %v", err)
	}

	_, err := Load(manifestPath)
	if err == nil {
		t.Fatal("expected error for missing endpoints")
	}
	if !strings.Contains(err.Error(), "endpoints") {
		t.Fatalf("unexpected error: %v", err)
	}
}
