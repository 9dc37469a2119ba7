package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	"docblock/internal/adapter/grammar"
)

// Config holds all configuration for the docblock tool.
type Config struct {
	Parse   ParseConfig   `yaml:"parse"`
	Scan    ScanConfig    `yaml:"scan"`
	Logging LoggingConfig `yaml:"logging"`

	// Grammars adds keywords to the built-in language tables, keyed by
	// language name.
	Grammars map[string]grammar.Spec `yaml:"grammars,omitempty"`
}

// ParseConfig holds lexer and parser configuration.
type ParseConfig struct {
	Validator        string            `yaml:"validator" envconfig:"DOCBLOCK_VALIDATOR" validate:"oneof=javascript python balanced none"`
	Validators       map[string]string `yaml:"validators,omitempty" validate:"dive,oneof=javascript python balanced none"`
	MaxContinuations int               `yaml:"max_continuations" envconfig:"DOCBLOCK_MAX_CONTINUATIONS" validate:"gte=0,lte=256"`
	MaxBufferLines   int               `yaml:"max_buffer_lines" envconfig:"DOCBLOCK_MAX_BUFFER_LINES" validate:"gte=1,lte=500"`
}

// ScanConfig holds directory scan configuration.
type ScanConfig struct {
	Includes    []string      `yaml:"includes" validate:"min=1,dive,required"`
	Excludes    []string      `yaml:"excludes"`
	Workers     int           `yaml:"workers" envconfig:"DOCBLOCK_WORKERS" validate:"gte=0,lte=256"` // 0 = one per CPU
	MaxFileSize int64         `yaml:"max_file_size" envconfig:"DOCBLOCK_MAX_FILE_SIZE" validate:"gte=0"`
	CacheSize   int           `yaml:"cache_size" envconfig:"DOCBLOCK_CACHE_SIZE" validate:"gte=0"`
	CacheTTL    time.Duration `yaml:"cache_ttl" envconfig:"DOCBLOCK_CACHE_TTL" validate:"gte=0"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `yaml:"level" envconfig:"DOCBLOCK_LOG_LEVEL" validate:"oneof=debug info warn error"`
	Format string `yaml:"format" envconfig:"DOCBLOCK_LOG_FORMAT" validate:"oneof=text json"`
}

// validate caches struct info between calls.
var validate = validator.New()

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Parse: ParseConfig{
			Validator:        "javascript",
			MaxContinuations: 16,
			MaxBufferLines:   20,
		},
		Scan: ScanConfig{
			Includes:    []string{"**/*.c", "**/*.h", "**/*.java", "**/*.js", "**/*.mjs", "**/*.cjs", "**/*.jsx", "**/*.php", "**/*.scss"},
			Excludes:    []string{"**/node_modules/**", "**/vendor/**", "**/.git/**", "**/dist/**", "**/build/**", "**/*.min.js", "**/.docblock/**"},
			Workers:     0,
			MaxFileSize: 1 << 20,
			CacheSize:   4096,
			CacheTTL:    10 * time.Minute,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load loads configuration from a YAML file, then applies DOCBLOCK_*
// environment overrides and validates the result. A missing file yields the
// defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
	case !os.IsNotExist(err):
		return nil, err
	}

	return finish(cfg)
}

// LoadFromDir loads configuration from a directory (looks for docblock.yaml,
// then .docblock/config.yaml).
func LoadFromDir(dir string) (*Config, error) {
	for _, path := range []string{
		filepath.Join(dir, "docblock.yaml"),
		filepath.Join(dir, ".docblock", "config.yaml"),
	} {
		if _, err := os.Stat(path); err == nil {
			return Load(path)
		}
	}
	return finish(DefaultConfig())
}

func finish(cfg *Config) (*Config, error) {
	if err := envconfig.Process("", cfg); err != nil {
		return nil, fmt.Errorf("processing env config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	return cfg, nil
}

// Validate checks field constraints and that every grammar extension
// compiles.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return err
	}
	for lang, spec := range c.Grammars {
		if _, err := grammar.New(spec); err != nil {
			return fmt.Errorf("grammar %s: %w", lang, err)
		}
	}
	return nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// DBPath returns the path to the declaration database.
func DBPath(dir string) string {
	return filepath.Join(dir, ".docblock", "index.db")
}

// EnsureDir ensures the .docblock directory exists.
func EnsureDir(dir string) error {
	return os.MkdirAll(filepath.Join(dir, ".docblock"), 0755)
}
