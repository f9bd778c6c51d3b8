package models

import (
	"embed"
	"fmt"
	"io/fs"

	"github.com/cureconnect/portal/pkg/db"
)

//go:embed migrations
var migrations embed.FS

// Migrations returns the goose migrations for the given sqlx driver name.
func Migrations(driver string) (fs.FS, error) {
	var dir string
	switch driver {
	case db.DriverSQLite:
		dir = "migrations/sqlite"
	case db.DriverMySQL:
		dir = "migrations/mysql"
	case db.DriverPostgres:
		dir = "migrations/postgres"
	default:
		return nil, fmt.Errorf("%w: %q", db.ErrUnsupportedDriver, driver)
	}
	return fs.Sub(migrations, dir)
}
