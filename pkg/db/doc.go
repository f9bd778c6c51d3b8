// Package db opens the portal's SQL storage handle and applies migrations.
//
// One *sqlx.DB is shared by all models. The driver follows config.Database:
//
//	sqlite    modernc.org/sqlite, a file or ":memory:", foreign keys on,
//	          a single connection so in-memory databases survive
//	mysql     github.com/go-sql-driver/mysql, utf8mb4, parseTime
//	postgres  github.com/jackc/pgx/v5/stdlib
//
// Models write queries with '?' placeholders and pass them through
// (*sqlx.DB).Rebind so the same SQL runs on every driver.
//
//	conn, err := db.Open(ctx, cfg.Database, db.WithRetry(3, time.Second))
//	if err != nil {
//		return err
//	}
//	defer conn.Close()
//
//	migrations, err := models.Migrations(conn.DriverName())
//	if err != nil {
//		return err
//	}
//	if err := db.Migrate(ctx, conn, migrations, log); err != nil {
//		return err
//	}
package db
