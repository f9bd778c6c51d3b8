package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joeshaw/envdecode"
	"gopkg.in/yaml.v3"
)

// Option configures Load.
type Option func(*loader)

type loader struct {
	parser Parser
	env    bool
}

// WithParser selects the file parser. The default is ViperParser.
func WithParser(p Parser) Option {
	return func(l *loader) { l.parser = p }
}

// WithoutEnv disables environment overrides.
func WithoutEnv() Option {
	return func(l *loader) { l.env = false }
}

// Load builds the configuration for root: defaults, then config/app.yaml,
// config/database.yaml and config/services.yaml when present, then environment
// overrides, then validation. Relative paths are resolved against root.
func Load(root string, opts ...Option) (*Config, error) {
	l := loader{parser: ViperParser{}, env: true}
	for _, opt := range opts {
		opt(&l)
	}

	cfg := Default(root)
	sections := []struct {
		file string
		dst  any
	}{
		{"app.yaml", &cfg.App},
		{"database.yaml", &cfg.Database},
		{"services.yaml", &cfg.Services},
	}
	for _, s := range sections {
		path := filepath.Join(root, "config", s.file)
		if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
			continue
		}
		values, err := l.parser.Parse(path)
		if err != nil {
			return nil, err
		}
		if err := decode(values, s.dst); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrParse, path, err)
		}
	}

	if l.env {
		if err := applyEnv(cfg); err != nil {
			return nil, err
		}
	}
	cfg.resolvePaths(root)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// decode copies a generic map onto a tagged struct, keeping fields the map
// does not mention.
func decode(values map[string]any, dst any) error {
	data, err := yaml.Marshal(values)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, dst)
}

type envOverrides struct {
	Env       string `env:"APP_ENV"`
	Name      string `env:"APP_NAME"`
	Debug     string `env:"APP_DEBUG"`
	BaseURL   string `env:"APP_BASE_URL"`
	AssetsURL string `env:"APP_ASSETS_URL"`
	Secret    string `env:"APP_SECRET"`
	Engine    string `env:"APP_TEMPLATE_ENGINE"`
	Timezone  string `env:"APP_TIMEZONE"`
	Driver    string `env:"DB_DRIVER"`
	Host      string `env:"DB_HOST"`
	Port      string `env:"DB_PORT"`
	DBName    string `env:"DB_NAME"`
	Username  string `env:"DB_USERNAME"`
	Password  string `env:"DB_PASSWORD"`
	RedisURL  string `env:"REDIS_URL"`
	ResendKey string `env:"RESEND_API_KEY"`
	MailFrom  string `env:"MAIL_FROM"`
	MailAdmin string `env:"MAIL_ADMIN"`
	SentryDSN string `env:"SENTRY_DSN"`
}

func applyEnv(cfg *Config) error {
	var o envOverrides
	if err := envdecode.Decode(&o); err != nil {
		if errors.Is(err, envdecode.ErrNoTargetFieldsAreSet) {
			return nil
		}
		return fmt.Errorf("config: environment: %w", err)
	}

	set := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	if o.Env != "" {
		cfg.App.Environment = Environment()
	}
	set(&cfg.App.Name, o.Name)
	set(&cfg.App.BaseURL, o.BaseURL)
	set(&cfg.App.AssetsURL, o.AssetsURL)
	set(&cfg.App.Secret, o.Secret)
	set(&cfg.App.TemplateEngine, o.Engine)
	set(&cfg.App.Timezone, o.Timezone)
	set(&cfg.Database.Driver, o.Driver)
	set(&cfg.Database.Host, o.Host)
	set(&cfg.Database.Name, o.DBName)
	set(&cfg.Database.Username, o.Username)
	set(&cfg.Database.Password, o.Password)
	set(&cfg.Services.Redis.URL, o.RedisURL)
	set(&cfg.Services.Mailer.APIKey, o.ResendKey)
	set(&cfg.Services.Mailer.From, o.MailFrom)
	set(&cfg.Services.Mailer.Admin, o.MailAdmin)
	set(&cfg.Services.Sentry.DSN, o.SentryDSN)

	if o.Debug != "" {
		debug, err := strconv.ParseBool(o.Debug)
		if err != nil {
			return fmt.Errorf("config: APP_DEBUG: %w", err)
		}
		cfg.App.Debug = debug
	}
	if o.Port != "" {
		port, err := strconv.Atoi(o.Port)
		if err != nil {
			return fmt.Errorf("config: DB_PORT: %w", err)
		}
		cfg.Database.Port = port
	}
	return nil
}

func (c *Config) resolvePaths(root string) {
	for _, p := range []*string{&c.App.TemplatesPath, &c.App.LangPath, &c.App.CachePath, &c.App.LogsPath} {
		if *p != "" && !filepath.IsAbs(*p) && !strings.HasPrefix(*p, root) {
			*p = filepath.Join(root, *p)
		}
	}
	if c.Database.Driver == DriverSQLite && c.Database.Name != ":memory:" && !filepath.IsAbs(c.Database.Name) {
		c.Database.Name = filepath.Join(root, c.Database.Name)
	}
}
