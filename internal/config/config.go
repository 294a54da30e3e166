// Package config loads autostruct's generation settings.
//
// Settings come from three layers, lowest precedence first: built-in
// defaults, an optional YAML file, and the environment (a .env file is
// loaded when present). Flag handling lives in cmd — the CLI overlays its
// flags onto the *Config it gets from Load.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"go.yaml.in/yaml/v3"

	"github.com/koustreak/autostruct/internal/errs"
)

// Framework selects which framework-specific code is attached to the
// generated declarations.
type Framework string

const (
	FrameworkNone Framework = "none"
	FrameworkSQLX Framework = "sqlx"
)

// Publish holds the optional object-store publication settings. When nil,
// generated files are only written to the local output directory.
type Publish struct {
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	UseSSL    bool   `yaml:"use_ssl"`
	Bucket    string `yaml:"bucket"`
	Prefix    string `yaml:"prefix"`
}

// Log holds logger settings.
type Log struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Config holds all settings for one generation run.
type Config struct {
	// OutputDir is the directory the generated files are published into.
	OutputDir string `yaml:"output"`

	// DatabaseURL is the full connection string. The database kind is
	// inferred from its scheme. Falls back to the DATABASE_URL
	// environment variable when empty.
	DatabaseURL string `yaml:"database_url"`

	// Singular generates struct names in the singular form of the table name.
	Singular bool `yaml:"singular"`

	// Exclude lists table names that are skipped entirely.
	Exclude []string `yaml:"exclude"`

	// Framework selects framework-specific augmentation (none, sqlx).
	Framework Framework `yaml:"framework"`

	// ConnectTimeout bounds connection establishment. A timeout aborts
	// the whole run before anything is written.
	ConnectTimeout time.Duration `yaml:"connect_timeout"`

	// Package is the package name of the generated files.
	Package string `yaml:"package"`

	// SingleFile writes all declarations into one file instead of one
	// file per table.
	SingleFile bool `yaml:"single_file"`

	Log     Log      `yaml:"log"`
	Publish *Publish `yaml:"publish"`
}

// Default returns the built-in settings, mirroring the CLI defaults.
func Default() *Config {
	return &Config{
		OutputDir:      "./autostructs",
		Framework:      FrameworkNone,
		ConnectTimeout: 3 * time.Second,
		Package:        "models",
		Log:            Log{Level: "info", Format: "console"},
	}
}

// Load builds a Config from defaults, the YAML file at path (skipped when
// path is empty), and the environment. Validate is left to the caller so
// CLI flags can still be overlaid.
func Load(path string) (*Config, error) {
	// Load .env if present (silently ignore if missing)
	_ = godotenv.Load()

	cfg := Default()

	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, errs.Wrap(errs.KindInvalidConfig, "failed to read config file", err)
		}
		if err := yaml.Unmarshal(raw, cfg); err != nil {
			return nil, errs.Wrap(errs.KindInvalidConfig, "failed to parse config file", err)
		}
	}

	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	}

	return cfg, nil
}

// Validate checks the assembled configuration. It is called once, after
// all layers (defaults, file, environment, flags) have been applied.
func (c *Config) Validate() error {
	if c.DatabaseURL == "" {
		return errs.New(errs.KindInvalidConfig,
			"no database url provided - set it via command line arguments, the config file, or the DATABASE_URL environment variable")
	}
	if c.OutputDir == "" {
		return errs.New(errs.KindInvalidConfig, "output directory must not be empty")
	}
	if c.Package == "" {
		return errs.New(errs.KindInvalidConfig, "generated package name must not be empty")
	}
	switch c.Framework {
	case FrameworkNone, FrameworkSQLX:
	default:
		return errs.Newf(errs.KindInvalidConfig, "unknown framework %q (want none or sqlx)", c.Framework)
	}
	if c.ConnectTimeout <= 0 {
		return errs.New(errs.KindInvalidConfig, "connect timeout must be positive")
	}
	if c.Publish != nil {
		if c.Publish.Endpoint == "" || c.Publish.Bucket == "" {
			return errs.New(errs.KindInvalidConfig, "publish requires both an endpoint and a bucket")
		}
	}
	return nil
}

// String renders the config for debug logging, with credentials elided.
func (c *Config) String() string {
	return fmt.Sprintf("output=%s singular=%t framework=%s exclude=%v timeout=%s package=%s single_file=%t",
		c.OutputDir, c.Singular, c.Framework, c.Exclude, c.ConnectTimeout, c.Package, c.SingleFile)
}
