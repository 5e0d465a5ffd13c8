package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "does-not-exist.jsonc"))
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg != Default() {
		t.Errorf("Load(missing) = %+v, want Default() = %+v", cfg, Default())
	}
}

func TestLoadOverridesOnlySetFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "machscan.jsonc")
	contents := `{
		// JSONC: comments and trailing commas are fine
		"results_limit": 50,
		"log_level": "debug",
	}`
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}

	want := Default()
	want.ResultsLimit = 50
	want.LogLevel = "debug"

	if cfg != want {
		t.Errorf("Load() = %+v, want %+v", cfg, want)
	}
}

func TestLoadInvalidJSONCReturnsError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.jsonc")
	if err := os.WriteFile(path, []byte("{ not json "), 0o644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}

	if _, err := Load(path); err == nil {
		t.Error("Load with malformed JSONC: expected error, got nil")
	}
}

func TestLoadMinAddressZeroIsAccepted(t *testing.T) {
	path := filepath.Join(t.TempDir(), "machscan.jsonc")
	if err := os.WriteFile(path, []byte(`{"min_address": 0, "max_address": 4096}`), 0o644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.MinAddress != 0 || cfg.MaxAddress != 4096 {
		t.Errorf("cfg = %+v, want MinAddress=0 MaxAddress=4096", cfg)
	}
}
