package models_test

import (
	"context"
	"io/fs"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cureconnect/portal/internal/models"
	"github.com/cureconnect/portal/pkg/config"
	"github.com/cureconnect/portal/pkg/db"
	"github.com/cureconnect/portal/pkg/logger"
)

// openDB returns a migrated and seeded in-memory database.
func openDB(t *testing.T) *sqlx.DB {
	t.Helper()
	ctx := context.Background()

	conn, err := db.Open(ctx, config.Database{Driver: config.DriverSQLite, Name: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	fsys, err := models.Migrations(conn.DriverName())
	require.NoError(t, err)
	require.NoError(t, db.Migrate(ctx, conn, fsys, logger.NewNope()))
	return conn
}

func TestMigrations(t *testing.T) {
	t.Parallel()

	for _, driver := range []string{db.DriverSQLite, db.DriverMySQL, db.DriverPostgres} {
		fsys, err := models.Migrations(driver)
		require.NoError(t, err, driver)

		for _, name := range []string{"00001_schema.sql", "00002_seed.sql"} {
			src, err := fs.ReadFile(fsys, name)
			require.NoError(t, err, "%s/%s", driver, name)
			assert.Contains(t, string(src), "-- +goose Up")
			assert.Contains(t, string(src), "-- +goose Down")
		}
	}

	_, err := models.Migrations("oracle")
	require.ErrorIs(t, err, db.ErrUnsupportedDriver)
}

func TestSettings(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	settings := models.NewSettings(openDB(t))

	name, err := settings.Get(ctx, "site_name")
	require.NoError(t, err)
	assert.Contains(t, name, "CureConnect")

	_, err = settings.Get(ctx, "missing")
	require.ErrorIs(t, err, models.ErrNotFound)
	assert.Equal(t, "fallback", settings.GetOr(ctx, "missing", "fallback"))

	all, err := settings.All(ctx)
	require.NoError(t, err)
	assert.Equal(t, name, all["site_name"])
	assert.Contains(t, all, "contact_email")
}

func TestCatalog(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	catalog := models.NewCatalog(openDB(t))

	doctors, err := catalog.Doctors(ctx)
	require.NoError(t, err)
	require.Len(t, doctors, 3)
	assert.Equal(t, "Dr. Anil Sharma", doctors[0].Name)
	assert.Equal(t, "Fortis Hospital Delhi", doctors[0].HospitalName)

	hospitals, err := catalog.Hospitals(ctx)
	require.NoError(t, err)
	assert.Len(t, hospitals, 3)

	services, err := catalog.Services(ctx)
	require.NoError(t, err)
	require.Len(t, services, len(models.ServiceTypes))
	for i, s := range services {
		assert.Equal(t, models.ServiceTypes[i], s.Slug)
	}

	countries, err := catalog.VisaCountries(ctx)
	require.NoError(t, err)
	assert.Len(t, countries, 9)
	for _, c := range countries {
		assert.True(t, c.MedicalVisaEligible, c.Name)
		assert.NotEqual(t, "PK", c.Code)
	}
}

func TestTags(t *testing.T) {
	t.Parallel()

	var tags models.Tags
	require.NoError(t, tags.Scan([]byte(`["a","b"]`)))
	assert.Equal(t, models.Tags{"a", "b"}, tags)

	require.NoError(t, tags.Scan(nil))
	assert.Empty(t, tags)

	require.NoError(t, tags.Scan(""))
	assert.Empty(t, tags)

	require.Error(t, tags.Scan("{not json"))
	require.Error(t, tags.Scan(42))

	v, err := models.Tags(nil).Value()
	require.NoError(t, err)
	assert.Equal(t, "[]", v)

	v, err = models.Tags{"visa"}.Value()
	require.NoError(t, err)
	assert.Equal(t, `["visa"]`, v)
}
