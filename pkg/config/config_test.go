package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cureconnect/portal/pkg/config"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "config"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config", name), []byte(content), 0o600))
}

func TestDefaultAndTesting(t *testing.T) {
	t.Parallel()

	d := config.Default("/srv/portal")
	assert.Equal(t, "CureConnect Medical Tourism Portal", d.App.Name)
	assert.Equal(t, "Asia/Kolkata", d.App.Timezone)
	assert.Equal(t, "/srv/portal/templates", d.App.TemplatesPath)
	assert.Equal(t, config.DriverMySQL, d.Database.Driver)
	assert.Equal(t, 3306, d.Database.Port)
	assert.Equal(t, "utf8mb4", d.Database.Charset)
	require.NoError(t, d.Validate())

	tc := config.Testing("/srv/portal")
	assert.Equal(t, "CureConnect Test", tc.App.Name)
	assert.True(t, tc.App.Debug)
	assert.True(t, tc.IsTesting())
	assert.Equal(t, "http://localhost:8001", tc.App.BaseURL)
	assert.Equal(t, config.DriverSQLite, tc.Database.Driver)
	assert.Equal(t, ":memory:", tc.Database.Name)
}

func TestValidate(t *testing.T) {
	t.Parallel()

	cfg := config.Default(".")
	cfg.Database.Driver = "oracle"
	cfg.App.TemplateEngine = "twig"
	cfg.App.Environment = config.EnvProduction

	err := cfg.Validate()
	require.Error(t, err)
	assert.ErrorIs(t, err, config.ErrInvalidDriver)
	assert.ErrorIs(t, err, config.ErrInvalidEngine)
	assert.ErrorIs(t, err, config.ErrMissingSecret)
}

func TestLoad_Parsers(t *testing.T) {
	t.Parallel()

	parsers := map[string]config.Parser{
		"viper":  config.ViperParser{},
		"simple": config.SimpleParser{},
	}

	for name, p := range parsers {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			root := t.TempDir()
			writeFile(t, root, "app.yaml", "# portal\nname: \"Portal From File\"\ndebug: false\ntemplate_engine: fallback\n")
			writeFile(t, root, "database.yaml", "driver: sqlite\nname: var/portal.db\n")
			writeFile(t, root, "services.yaml", "mailer:\n  from: care@example.com\n  admin: desk@example.com\nredis:\n  url: redis://localhost:6379/0\n")

			cfg, err := config.Load(root, config.WithParser(p), config.WithoutEnv())
			require.NoError(t, err)

			assert.Equal(t, "Portal From File", cfg.App.Name)
			assert.False(t, cfg.App.Debug)
			assert.Equal(t, config.EngineFallback, cfg.App.TemplateEngine)
			assert.Equal(t, "Asia/Kolkata", cfg.App.Timezone, "unset keys keep defaults")
			assert.Equal(t, config.DriverSQLite, cfg.Database.Driver)
			assert.Equal(t, filepath.Join(root, "var/portal.db"), cfg.Database.Name)
			assert.Equal(t, "care@example.com", cfg.Services.Mailer.From)
			assert.Equal(t, "redis://localhost:6379/0", cfg.Services.Redis.URL)
			assert.False(t, cfg.Services.Mailer.Enabled())
		})
	}
}

func TestLoad_NoFilesUsesDefaults(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	cfg, err := config.Load(root, config.WithoutEnv())
	require.NoError(t, err)
	assert.Equal(t, config.Default(root), cfg)
}

func TestLoad_ParseError(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeFile(t, root, "app.yaml", "name Portal\n")

	_, err := config.Load(root, config.WithParser(config.SimpleParser{}), config.WithoutEnv())
	require.ErrorIs(t, err, config.ErrParse)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("APP_NAME", "Env Portal")
	t.Setenv("APP_DEBUG", "false")
	t.Setenv("DB_DRIVER", "postgres")
	t.Setenv("DB_PORT", "5432")
	t.Setenv("RESEND_API_KEY", "re_test")
	t.Setenv("MAIL_FROM", "care@example.com")
	t.Setenv("MAIL_ADMIN", "desk@example.com")
	t.Setenv("APP_TIMEZONE", "Asia/Dhaka")

	cfg, err := config.Load(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "Env Portal", cfg.App.Name)
	assert.False(t, cfg.App.Debug)
	assert.Equal(t, config.DriverPostgres, cfg.Database.Driver)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.True(t, cfg.Services.Mailer.Enabled())
	assert.Equal(t, "Asia/Dhaka", cfg.App.Timezone)
}

func TestLoad_BadEnvValue(t *testing.T) {
	t.Setenv("DB_PORT", "not-a-port")

	_, err := config.Load(t.TempDir())
	require.Error(t, err)
}

func TestEnvironment(t *testing.T) {
	for in, want := range map[string]string{
		"testing":    config.EnvTesting,
		"PRODUCTION": config.EnvProduction,
		"staging":    config.EnvDevelopment,
		"":           config.EnvDevelopment,
	} {
		t.Setenv("APP_ENV", in)
		assert.Equal(t, want, config.Environment(), in)
	}
}
