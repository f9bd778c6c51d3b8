package db

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"

	"github.com/jmoiron/sqlx"
	"github.com/pressly/goose/v3"
)

// Dialect maps an sqlx driver name to the goose dialect.
func Dialect(driver string) (goose.Dialect, error) {
	switch driver {
	case DriverSQLite:
		return goose.DialectSQLite3, nil
	case DriverMySQL:
		return goose.DialectMySQL, nil
	case DriverPostgres:
		return goose.DialectPostgres, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedDriver, driver)
}

// Migrate applies every pending migration in fsys. A goose provider is used
// instead of the package-level API so that several databases can migrate
// concurrently.
func Migrate(ctx context.Context, conn *sqlx.DB, fsys fs.FS, log *slog.Logger) error {
	dialect, err := Dialect(conn.DriverName())
	if err != nil {
		return err
	}

	provider, err := goose.NewProvider(dialect, conn.DB, fsys)
	if err != nil {
		return errors.Join(ErrApplyMigrations, err)
	}

	results, err := provider.Up(ctx)
	if err != nil {
		return errors.Join(ErrApplyMigrations, err)
	}
	for _, r := range results {
		log.DebugContext(ctx, "migration applied",
			slog.Int64("version", r.Source.Version),
			slog.String("file", r.Source.Path),
			slog.Duration("duration", r.Duration),
		)
	}
	return nil
}
