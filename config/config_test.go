package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Parse.Validator != "javascript" {
		t.Errorf("expected Validator=javascript, got %s", cfg.Parse.Validator)
	}
	if cfg.Parse.MaxContinuations != 16 {
		t.Errorf("expected MaxContinuations=16, got %d", cfg.Parse.MaxContinuations)
	}
	if cfg.Parse.MaxBufferLines != 20 {
		t.Errorf("expected MaxBufferLines=20, got %d", cfg.Parse.MaxBufferLines)
	}
	if cfg.Scan.CacheTTL != 10*time.Minute {
		t.Errorf("expected CacheTTL=10m, got %s", cfg.Scan.CacheTTL)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("expected defaults to validate, got %v", err)
	}
}

func TestLoad_NonExistent(t *testing.T) {
	cfg, err := Load("/nonexistent/path/config.yaml")
	if err != nil {
		t.Errorf("expected no error for non-existent file, got %v", err)
	}
	if cfg == nil {
		t.Error("expected default config, got nil")
	}
}

func TestLoad_ValidYAML(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "docblock.yaml")

	content := `
parse:
  validator: balanced
  validators:
    php: none
  max_continuations: 4
scan:
  workers: 2
  cache_ttl: 30s
grammars:
  c:
    types: [u8, u16]
`
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Parse.Validator != "balanced" {
		t.Errorf("expected Validator=balanced, got %s", cfg.Parse.Validator)
	}
	if cfg.Parse.Validators["php"] != "none" {
		t.Errorf("expected php validator none, got %q", cfg.Parse.Validators["php"])
	}
	if cfg.Parse.MaxContinuations != 4 {
		t.Errorf("expected MaxContinuations=4, got %d", cfg.Parse.MaxContinuations)
	}
	if cfg.Parse.MaxBufferLines != 20 {
		t.Errorf("expected untouched MaxBufferLines=20, got %d", cfg.Parse.MaxBufferLines)
	}
	if cfg.Scan.Workers != 2 {
		t.Errorf("expected Workers=2, got %d", cfg.Scan.Workers)
	}
	if cfg.Scan.CacheTTL != 30*time.Second {
		t.Errorf("expected CacheTTL=30s, got %s", cfg.Scan.CacheTTL)
	}
	if got := cfg.Grammars["c"].Types; len(got) != 2 || got[0] != "u8" {
		t.Errorf("expected c grammar types [u8 u16], got %v", got)
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "docblock.yaml")
	if err := os.WriteFile(configPath, []byte("parse: [\n"), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(configPath); err == nil {
		t.Error("expected error for malformed yaml")
	}
}

func TestLoad_ValidationErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"unknown validator", "parse:\n  validator: ruby\n"},
		{"unknown language validator", "parse:\n  validators:\n    c: ruby\n"},
		{"buffer lines", "parse:\n  max_buffer_lines: 0\n"},
		{"log level", "logging:\n  level: loud\n"},
		{"type and modifier", "grammars:\n  c:\n    types: [x]\n    modifiers: [x]\n"},
		{"identifier pattern", "grammars:\n  c:\n    identifier: '[a-'\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			configPath := filepath.Join(t.TempDir(), "docblock.yaml")
			if err := os.WriteFile(configPath, []byte(tt.content), 0644); err != nil {
				t.Fatal(err)
			}
			if _, err := Load(configPath); err == nil {
				t.Errorf("expected validation error for %q", tt.content)
			}
		})
	}
}

func TestLoadFromDir(t *testing.T) {
	tmpDir := t.TempDir()
	if err := EnsureDir(tmpDir); err != nil {
		t.Fatal(err)
	}
	configPath := filepath.Join(tmpDir, ".docblock", "config.yaml")

	content := `
logging:
  format: json
`
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFromDir(tmpDir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Logging.Format != "json" {
		t.Errorf("expected Format=json, got %s", cfg.Logging.Format)
	}
}

func TestLoadFromDir_Empty(t *testing.T) {
	cfg, err := LoadFromDir(t.TempDir())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("expected default Level=info, got %s", cfg.Logging.Level)
	}
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("DOCBLOCK_LOG_LEVEL", "debug")
	t.Setenv("DOCBLOCK_WORKERS", "3")
	t.Setenv("DOCBLOCK_CACHE_TTL", "1m")

	cfg, err := LoadFromDir(t.TempDir())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Logging.Level != "debug" {
		t.Errorf("expected Level=debug, got %s", cfg.Logging.Level)
	}
	if cfg.Scan.Workers != 3 {
		t.Errorf("expected Workers=3, got %d", cfg.Scan.Workers)
	}
	if cfg.Scan.CacheTTL != time.Minute {
		t.Errorf("expected CacheTTL=1m, got %s", cfg.Scan.CacheTTL)
	}
}

func TestLoad_EnvOverrideInvalid(t *testing.T) {
	t.Setenv("DOCBLOCK_VALIDATOR", "ruby")

	if _, err := LoadFromDir(t.TempDir()); err == nil {
		t.Error("expected env override to be validated")
	}
}

func TestSave_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "docblock.yaml")

	cfg := DefaultConfig()
	cfg.Parse.Validator = "python"
	cfg.Scan.CacheTTL = 90 * time.Second
	if err := cfg.Save(path); err != nil {
		t.Fatalf("save: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded.Parse.Validator != "python" {
		t.Errorf("expected Validator=python, got %s", loaded.Parse.Validator)
	}
	if loaded.Scan.CacheTTL != 90*time.Second {
		t.Errorf("expected CacheTTL=90s, got %s", loaded.Scan.CacheTTL)
	}
	if len(loaded.Scan.Includes) != len(cfg.Scan.Includes) {
		t.Errorf("expected %d includes, got %d", len(cfg.Scan.Includes), len(loaded.Scan.Includes))
	}
}

func TestDBPath(t *testing.T) {
	path := DBPath("/home/user/project")
	expected := filepath.Join("/home/user/project", ".docblock", "index.db")
	if path != expected {
		t.Errorf("expected %s, got %s", expected, path)
	}
}
