// Package config loads the portal configuration: application settings, the
// database connection and external services. Values come from built-in
// defaults, optional YAML files under {root}/config and environment overrides,
// in that order.
package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
)

// Environments.
const (
	EnvTesting     = "testing"
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Template engines.
const (
	EngineHTML     = "html"
	EngineFallback = "fallback"
)

// Database drivers.
const (
	DriverSQLite   = "sqlite"
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
)

// DevSecret signs cookies outside production when no secret is configured.
const DevSecret = "cureconnect-development-secret-change-me"

var (
	ErrInvalidEnvironment = errors.New("config: invalid environment")
	ErrInvalidDriver      = errors.New("config: unsupported database driver")
	ErrInvalidEngine      = errors.New("config: unsupported template engine")
	ErrMissingSecret      = errors.New("config: production requires APP_SECRET of at least 32 bytes")
	ErrMissingName        = errors.New("config: application name is required")
	ErrParse              = errors.New("config: cannot parse file")
)

// Config is the complete, immutable-after-boot configuration.
type Config struct {
	App      App      `yaml:"app" json:"app"`
	Database Database `yaml:"database" json:"database"`
	Services Services `yaml:"services" json:"services"`
}

type App struct {
	Name           string `yaml:"name" json:"name"`
	Version        string `yaml:"version" json:"version"`
	Environment    string `yaml:"environment" json:"environment"`
	Debug          bool   `yaml:"debug" json:"debug"`
	Timezone       string `yaml:"timezone" json:"timezone"`
	BaseURL        string `yaml:"base_url" json:"base_url"`
	AssetsURL      string `yaml:"assets_url" json:"assets_url"`
	TemplatesPath  string `yaml:"templates_path" json:"templates_path"`
	LangPath       string `yaml:"lang_path" json:"lang_path"`
	CachePath      string `yaml:"cache_path" json:"cache_path"`
	LogsPath       string `yaml:"logs_path" json:"logs_path"`
	TemplateEngine string `yaml:"template_engine" json:"template_engine"`
	Secret         string `yaml:"secret" json:"-"`
}

type Database struct {
	Driver   string `yaml:"driver" json:"driver"`
	Host     string `yaml:"host" json:"host"`
	Port     int    `yaml:"port" json:"port"`
	Name     string `yaml:"name" json:"name"`
	Username string `yaml:"username" json:"username"`
	Password string `yaml:"password" json:"-"`
	Charset  string `yaml:"charset" json:"charset"`
}

type Services struct {
	Mailer Mailer         `yaml:"mailer" json:"mailer"`
	Redis  Redis          `yaml:"redis" json:"redis"`
	Sentry Sentry         `yaml:"sentry" json:"sentry"`
	Extra  map[string]any `yaml:"extra" json:"extra,omitempty"`
}

type Mailer struct {
	APIKey string `yaml:"api_key" json:"-"`
	From   string `yaml:"from" json:"from"`
	Admin  string `yaml:"admin" json:"admin"`
}

// Enabled reports whether inquiry notifications can be sent.
func (m Mailer) Enabled() bool {
	return m.APIKey != "" && m.From != "" && m.Admin != ""
}

type Redis struct {
	URL string `yaml:"url" json:"-"`
}

type Sentry struct {
	DSN string `yaml:"dsn" json:"-"`
}

// Environment reads APP_ENV; anything unrecognised is development.
func Environment() string {
	switch env := strings.ToLower(strings.TrimSpace(os.Getenv("APP_ENV"))); env {
	case EnvTesting, EnvProduction:
		return env
	default:
		return EnvDevelopment
	}
}

// Default returns the built-in configuration rooted at root.
func Default(root string) *Config {
	return &Config{
		App: App{
			Name:           "CureConnect Medical Tourism Portal",
			Version:        "1.0.0",
			Environment:    EnvDevelopment,
			Debug:          true,
			Timezone:       "Asia/Kolkata",
			BaseURL:        "http://localhost/CureConnect",
			AssetsURL:      "http://localhost/CureConnect/assets",
			TemplatesPath:  filepath.Join(root, "templates"),
			LangPath:       filepath.Join(root, "lang"),
			CachePath:      filepath.Join(root, "var", "cache"),
			LogsPath:       filepath.Join(root, "var", "logs"),
			TemplateEngine: EngineHTML,
			Secret:         DevSecret,
		},
		Database: Database{
			Driver:   DriverMySQL,
			Host:     "localhost",
			Port:     3306,
			Name:     "cureconnect_db",
			Username: "root",
			Charset:  "utf8mb4",
		},
	}
}

// Testing returns the configuration used under APP_ENV=testing: debug on,
// in-memory sqlite, local URLs.
func Testing(root string) *Config {
	cfg := Default(root)
	cfg.App.Name = "CureConnect Test"
	cfg.App.Environment = EnvTesting
	cfg.App.Debug = true
	cfg.App.BaseURL = "http://localhost:8001"
	cfg.App.AssetsURL = "http://localhost:8001"
	cfg.Database = Database{Driver: DriverSQLite, Name: ":memory:"}
	return cfg
}

// IsProduction reports whether the application runs in production.
func (c *Config) IsProduction() bool { return c.App.Environment == EnvProduction }

// IsTesting reports whether the application runs under tests.
func (c *Config) IsTesting() bool { return c.App.Environment == EnvTesting }

// Validate checks the enumerated settings and production requirements.
func (c *Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.App.Name) == "" {
		errs = append(errs, ErrMissingName)
	}
	switch c.App.Environment {
	case EnvTesting, EnvDevelopment, EnvProduction:
	default:
		errs = append(errs, errors.Join(ErrInvalidEnvironment, errors.New(c.App.Environment)))
	}
	switch c.Database.Driver {
	case DriverSQLite, DriverMySQL, DriverPostgres:
	default:
		errs = append(errs, errors.Join(ErrInvalidDriver, errors.New(c.Database.Driver)))
	}
	switch c.App.TemplateEngine {
	case EngineHTML, EngineFallback:
	default:
		errs = append(errs, errors.Join(ErrInvalidEngine, errors.New(c.App.TemplateEngine)))
	}
	if c.IsProduction() && (len(c.App.Secret) < 32 || c.App.Secret == DevSecret) {
		errs = append(errs, ErrMissingSecret)
	}
	return errors.Join(errs...)
}
