// Package models is the portal's data layer: appointments with their
// patients, articles, contact inquiries, site settings and the reference
// catalog of doctors, hospitals, services and countries.
//
// Every model wraps the shared *sqlx.DB. Queries use '?' placeholders and are
// rebound for the active driver, so sqlite, mysql and postgres run the same
// code. Migrations returns the embedded goose migrations for a driver:
//
//	fsys, err := models.Migrations(conn.DriverName())
//	if err != nil {
//		return err
//	}
//	err = db.Migrate(ctx, conn, fsys, log)
//
// Form structs carry validator tags; failures come back as ValidationErrors
// keyed by form field name with the message shown next to the field.
package models
