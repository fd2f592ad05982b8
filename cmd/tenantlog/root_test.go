package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const testTenants = `
engine:
  err_stream: none
tenants:
  - id: acme
    destination:
      kind: memory
  - id: globex
    destination:
      kind: memory
      async: true
  - id: hooli
    silent: true
`

func writeTenants(t *testing.T, doc string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tenants.yaml")
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestValidate(t *testing.T) {
	path := writeTenants(t, testTenants)
	out, _, err := execute(t, "validate", "--config", path)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if !strings.Contains(out, "ok (3 tenants)") {
		t.Errorf("unexpected output: %q", out)
	}
}

func TestValidate_Invalid(t *testing.T) {
	path := writeTenants(t, "tenants:\n  - id: a\n    destination:\n      kind: carrier-pigeon\n")
	if _, _, err := execute(t, "validate", "--config", path); err == nil {
		t.Fatal("expected validation error")
	}
}

func TestTenants(t *testing.T) {
	path := writeTenants(t, testTenants)
	out, _, err := execute(t, "tenants", "--config", path)
	if err != nil {
		t.Fatalf("tenants: %v", err)
	}
	for _, want := range []string{"acme", "*handler.MemoryHandler", "*handler.AsyncHandler", "hooli", "none"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in output, got:\n%s", want, out)
		}
	}
}

func TestRun_EachFrontEnd(t *testing.T) {
	path := writeTenants(t, testTenants)
	for _, via := range []string{"logger", "slog", "zap", "logrus", "zerolog"} {
		t.Run(via, func(t *testing.T) {
			out, _, err := execute(t, "run", "--config", path, "--via", via, "-n", "5")
			if err != nil {
				t.Fatalf("run: %v", err)
			}
			for _, want := range []string{"acme: 5 records in memory", "globex: 5 records in memory"} {
				if !strings.Contains(out, want) {
					t.Errorf("expected %q in output, got:\n%s", want, out)
				}
			}
		})
	}
}

func TestRun_UnknownFrontEnd(t *testing.T) {
	path := writeTenants(t, testTenants)
	if _, _, err := execute(t, "run", "--config", path, "--via", "printf"); err == nil {
		t.Fatal("expected error for unknown front end")
	}
}
