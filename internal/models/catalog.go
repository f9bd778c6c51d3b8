package models

import (
	"context"

	"github.com/jmoiron/sqlx"
)

// Doctor is a listed specialist.
type Doctor struct {
	ID              int64  `db:"id"`
	Name            string `db:"name"`
	Specialization  string `db:"specialization"`
	HospitalName    string `db:"hospital_name"`
	ExperienceYears int    `db:"experience_years"`
}

// Hospital is a partner hospital.
type Hospital struct {
	ID            int64  `db:"id"`
	Name          string `db:"name"`
	City          string `db:"city"`
	Accreditation string `db:"accreditation"`
	Beds          int    `db:"beds"`
	Description   string `db:"description"`
}

// Service is a bookable service type.
type Service struct {
	ID          int64  `db:"id"`
	Name        string `db:"name"`
	Slug        string `db:"slug"`
	Description string `db:"description"`
}

// Country is a patient home country.
type Country struct {
	ID                  int64  `db:"id"`
	Name                string `db:"name"`
	Code                string `db:"code"`
	MedicalVisaEligible bool   `db:"medical_visa_eligible"`
}

// Catalog reads the reference data the forms and pages list.
type Catalog struct {
	db *sqlx.DB
}

func NewCatalog(conn *sqlx.DB) *Catalog {
	return &Catalog{db: conn}
}

func (m *Catalog) Doctors(ctx context.Context) ([]Doctor, error) {
	out := []Doctor{}
	err := list(ctx, m.db, &out, `SELECT d.id, d.name, d.specialization, COALESCE(h.name, '') AS hospital_name, d.experience_years
		FROM doctors d LEFT JOIN hospitals h ON d.hospital_id = h.id ORDER BY d.name`)
	return out, err
}

func (m *Catalog) Hospitals(ctx context.Context) ([]Hospital, error) {
	out := []Hospital{}
	err := list(ctx, m.db, &out, "SELECT id, name, city, accreditation, beds, description FROM hospitals ORDER BY name")
	return out, err
}

func (m *Catalog) Services(ctx context.Context) ([]Service, error) {
	out := []Service{}
	err := list(ctx, m.db, &out, "SELECT id, name, slug, description FROM services ORDER BY id")
	return out, err
}

// VisaCountries returns the countries eligible for the e-Medical visa.
func (m *Catalog) VisaCountries(ctx context.Context) ([]Country, error) {
	out := []Country{}
	err := list(ctx, m.db, &out,
		"SELECT id, name, code, medical_visa_eligible FROM countries WHERE medical_visa_eligible = ? ORDER BY name", true)
	return out, err
}
