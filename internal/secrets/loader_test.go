package secrets

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadPrefersFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "key")
	if err := os.WriteFile(path, []byte(" from-file \n"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	got, err := Load(Source{Name: "api key", Value: "inline", File: path})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "from-file" {
		t.Fatalf("expected file secret, got %q", got)
	}
}

func TestLoadFallsBackToEnv(t *testing.T) {
	t.Setenv("RECRUITAI_TEST_SECRET", "  from-env ")

	got, err := Load(Source{Name: "admin secret", Env: "RECRUITAI_TEST_SECRET"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "from-env" {
		t.Fatalf("expected env secret, got %q", got)
	}

	got, err = Load(Source{Name: "admin secret", Value: "inline", Env: "RECRUITAI_TEST_SECRET"})
	if err != nil || got != "inline" {
		t.Fatalf("inline value must win over env, got %q, %v", got, err)
	}
}

func TestLoadErrors(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty")
	if err := os.WriteFile(path, []byte("\n"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	if _, err := Load(Source{Name: "api key", File: path}); err == nil || !strings.Contains(err.Error(), "is empty") {
		t.Fatalf("expected empty file error, got %v", err)
	}
	if _, err := Load(Source{}); err == nil || !strings.Contains(err.Error(), "secret is not configured") {
		t.Fatalf("expected not configured error, got %v", err)
	}
	if _, err := Load(Source{File: filepath.Join(t.TempDir(), "missing")}); err == nil {
		t.Fatalf("expected read error for missing file")
	}
}

func TestOptional(t *testing.T) {
	got, err := Optional(Source{Name: "database url"})
	if err != nil || got != "" {
		t.Fatalf("expected empty optional secret, got %q, %v", got, err)
	}

	got, err = Optional(Source{Name: "database url", Value: "postgres://x"})
	if err != nil || got != "postgres://x" {
		t.Fatalf("expected inline value, got %q, %v", got, err)
	}
}
