package db_test

import (
	"context"
	"errors"
	"testing"
	"testing/fstest"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cureconnect/portal/pkg/config"
	"github.com/cureconnect/portal/pkg/db"
	"github.com/cureconnect/portal/pkg/logger"
)

func openMemory(t *testing.T) *sqlx.DB {
	t.Helper()
	conn, err := db.Open(context.Background(), config.Database{Driver: config.DriverSQLite, Name: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func TestDSN(t *testing.T) {
	t.Parallel()

	driver, dsn, err := db.DSN(config.Database{Driver: config.DriverMySQL, Host: "db", Port: 3307, Name: "cureconnect_db", Username: "root", Password: "pw"})
	require.NoError(t, err)
	assert.Equal(t, db.DriverMySQL, driver)
	assert.Contains(t, dsn, "root:pw@tcp(db:3307)/cureconnect_db")
	assert.Contains(t, dsn, "charset=utf8mb4")
	assert.Contains(t, dsn, "parseTime=true")

	driver, dsn, err = db.DSN(config.Database{Driver: config.DriverPostgres, Host: "pg", Name: "portal", Username: "u", Password: "p"})
	require.NoError(t, err)
	assert.Equal(t, db.DriverPostgres, driver)
	assert.Equal(t, "postgres://u:p@pg:5432/portal?sslmode=disable", dsn)

	driver, dsn, err = db.DSN(config.Database{Driver: config.DriverSQLite})
	require.NoError(t, err)
	assert.Equal(t, db.DriverSQLite, driver)
	assert.Contains(t, dsn, "file::memory:?")
	assert.Contains(t, dsn, "foreign_keys(1)")

	_, _, err = db.DSN(config.Database{Driver: "oracle"})
	require.ErrorIs(t, err, db.ErrUnsupportedDriver)
}

func TestOpen_UnreachableFails(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := db.Open(ctx, config.Database{Driver: config.DriverMySQL, Host: "127.0.0.1", Port: 1, Name: "x"})
	require.ErrorIs(t, err, db.ErrFailedToOpenDBConnection)
}

func TestMigrateAndWithTx(t *testing.T) {
	t.Parallel()

	conn := openMemory(t)
	ctx := context.Background()

	migrations := fstest.MapFS{
		"00001_notes.sql": {Data: []byte("-- +goose Up\nCREATE TABLE notes (id INTEGER PRIMARY KEY, body TEXT NOT NULL);\n\n-- +goose Down\nDROP TABLE notes;\n")},
	}
	require.NoError(t, db.Migrate(ctx, conn, migrations, logger.NewNope()))
	require.NoError(t, db.Migrate(ctx, conn, migrations, logger.NewNope()), "re-running is a no-op")

	t.Run("commit", func(t *testing.T) {
		err := db.WithTx(ctx, conn, func(tx *sqlx.Tx) error {
			_, err := tx.ExecContext(ctx, "INSERT INTO notes (body) VALUES (?)", "kept")
			return err
		})
		require.NoError(t, err)
	})

	t.Run("rollback on error", func(t *testing.T) {
		boom := errors.New("boom")
		err := db.WithTx(ctx, conn, func(tx *sqlx.Tx) error {
			if _, err := tx.ExecContext(ctx, "INSERT INTO notes (body) VALUES (?)", "dropped"); err != nil {
				return err
			}
			return boom
		})
		require.ErrorIs(t, err, boom)
	})

	t.Run("rollback on panic", func(t *testing.T) {
		assert.Panics(t, func() {
			_ = db.WithTx(ctx, conn, func(tx *sqlx.Tx) error {
				_, _ = tx.ExecContext(ctx, "INSERT INTO notes (body) VALUES (?)", "panicked")
				panic("boom")
			})
		})
	})

	var bodies []string
	require.NoError(t, conn.SelectContext(ctx, &bodies, "SELECT body FROM notes ORDER BY id"))
	assert.Equal(t, []string{"kept"}, bodies)

	require.NoError(t, db.Healthcheck(conn)(ctx))
}
