package models

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/cureconnect/portal/pkg/db"
)

// Appointment statuses.
const (
	StatusPending   = "pending"
	StatusConfirmed = "confirmed"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
)

// ServiceTypes lists the service slugs an appointment may reference.
var ServiceTypes = []string{"consultation", "surgery", "treatment", "diagnostic", "follow-up"}

// Statuses lists the appointment statuses in workflow order.
var Statuses = []string{StatusPending, StatusConfirmed, StatusCompleted, StatusCancelled}

// Appointment is an appointments row joined with its patient, doctor and
// service. Missing doctor or service read as zero values.
type Appointment struct {
	ID          int64      `db:"id"`
	PatientID   int64      `db:"patient_id"`
	DoctorID    int64      `db:"doctor_id"`
	ServiceID   int64      `db:"service_id"`
	Date        string     `db:"appointment_date"`
	Time        string     `db:"appointment_time"`
	Status      string     `db:"status"`
	Notes       string     `db:"notes"`
	CreatedAt   time.Time  `db:"created_at"`
	UpdatedAt   *time.Time `db:"updated_at"`
	FirstName   string     `db:"first_name"`
	LastName    string     `db:"last_name"`
	Email       string     `db:"email"`
	Phone       string     `db:"phone"`
	DoctorName  string     `db:"doctor_name"`
	ServiceName string     `db:"service_name"`
	ServiceType string     `db:"service_type"`

	PatientName string `db:"-"`
}

// Input returns the form values that would recreate a.
func (a *Appointment) Input() AppointmentInput {
	return AppointmentInput{
		PatientName:  a.PatientName,
		PatientEmail: a.Email,
		PatientPhone: a.Phone,
		Date:         a.Date,
		Time:         a.Time,
		DoctorID:     a.DoctorID,
		ServiceType:  a.ServiceType,
		Notes:        a.Notes,
		Status:       a.Status,
	}
}

// AppointmentInput is the appointment form. Field names follow the form keys.
type AppointmentInput struct {
	PatientName  string `form:"patient_name" validate:"required"`
	PatientEmail string `form:"patient_email" validate:"required,email"`
	PatientPhone string `form:"patient_phone" validate:"required,phone"`
	Date         string `form:"appointment_date" validate:"required,ymd,notpast"`
	Time         string `form:"appointment_time" validate:"required,hm"`
	DoctorID     int64  `form:"doctor_id"`
	ServiceType  string `form:"service_type" validate:"omitempty,oneof=consultation surgery treatment diagnostic follow-up"`
	Notes        string `form:"notes"`
	Status       string `form:"status" validate:"omitempty,oneof=pending confirmed completed cancelled"`
}

// names splits the patient name on the first space.
func (in AppointmentInput) names() (first, last string) {
	first, last, _ = strings.Cut(strings.TrimSpace(in.PatientName), " ")
	return first, strings.TrimSpace(last)
}

func (in AppointmentInput) status() string {
	if in.Status == "" {
		return StatusPending
	}
	return in.Status
}

const appointmentSelect = `
SELECT
	a.id, a.patient_id,
	COALESCE(a.doctor_id, 0) AS doctor_id,
	COALESCE(a.service_id, 0) AS service_id,
	a.appointment_date, a.appointment_time, a.status, a.notes,
	a.created_at, a.updated_at,
	COALESCE(p.first_name, '') AS first_name,
	COALESCE(p.last_name, '') AS last_name,
	COALESCE(p.email, '') AS email,
	COALESCE(p.phone, '') AS phone,
	COALESCE(d.name, '') AS doctor_name,
	COALESCE(s.name, '') AS service_name,
	COALESCE(s.slug, '') AS service_type
FROM appointments a
LEFT JOIN patients p ON a.patient_id = p.id
LEFT JOIN doctors d ON a.doctor_id = d.id
LEFT JOIN services s ON a.service_id = s.id`

// Appointments manages appointment records and the patients they belong to.
type Appointments struct {
	db *sqlx.DB
}

func NewAppointments(conn *sqlx.DB) *Appointments {
	return &Appointments{db: conn}
}

// All returns every appointment, latest first.
func (m *Appointments) All(ctx context.Context) ([]Appointment, error) {
	var out []Appointment
	if err := list(ctx, m.db, &out, appointmentSelect+" ORDER BY a.appointment_date DESC, a.appointment_time DESC, a.id DESC"); err != nil {
		return nil, err
	}
	for i := range out {
		out[i].PatientName = strings.TrimSpace(out[i].FirstName + " " + out[i].LastName)
	}
	return out, nil
}

// FindByID returns the appointment or ErrNotFound.
func (m *Appointments) FindByID(ctx context.Context, id int64) (*Appointment, error) {
	if id <= 0 {
		return nil, ErrInvalidID
	}
	return m.find(ctx, m.db, id)
}

func (m *Appointments) find(ctx context.Context, q sqlx.ExtContext, id int64) (*Appointment, error) {
	var a Appointment
	if err := get(ctx, q, &a, appointmentSelect+" WHERE a.id = ?", id); err != nil {
		return nil, err
	}
	a.PatientName = strings.TrimSpace(a.FirstName + " " + a.LastName)
	return &a, nil
}

// Validate checks in and returns ValidationErrors keyed by form field.
func (m *Appointments) Validate(in AppointmentInput) error {
	return validateStruct(in)
}

// Create validates in and stores it with its patient in one transaction.
// The patient is matched by email and updated, or created.
func (m *Appointments) Create(ctx context.Context, in AppointmentInput) (int64, error) {
	if err := m.Validate(in); err != nil {
		return 0, err
	}
	var id int64
	err := db.WithTx(ctx, m.db, func(tx *sqlx.Tx) error {
		patientID, err := upsertPatient(ctx, tx, in)
		if err != nil {
			return err
		}
		doctorID, serviceID, err := references(ctx, tx, in)
		if err != nil {
			return err
		}
		id, err = insert(ctx, tx, `INSERT INTO appointments
			(patient_id, doctor_id, service_id, appointment_date, appointment_time, status, notes, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			patientID, nullInt(doctorID), nullInt(serviceID), in.Date, in.Time, in.status(), in.Notes, time.Now().UTC(),
		)
		return err
	})
	return id, err
}

// Update validates in and rewrites appointment id and its patient.
func (m *Appointments) Update(ctx context.Context, id int64, in AppointmentInput) error {
	if id <= 0 {
		return ErrInvalidID
	}
	if err := m.Validate(in); err != nil {
		return err
	}
	return db.WithTx(ctx, m.db, func(tx *sqlx.Tx) error {
		if _, err := m.find(ctx, tx, id); err != nil {
			return err
		}
		patientID, err := upsertPatient(ctx, tx, in)
		if err != nil {
			return err
		}
		doctorID, serviceID, err := references(ctx, tx, in)
		if err != nil {
			return err
		}
		_, err = exec(ctx, tx, `UPDATE appointments SET
			patient_id = ?, doctor_id = ?, service_id = ?, appointment_date = ?,
			appointment_time = ?, status = ?, notes = ?, updated_at = ?
			WHERE id = ?`,
			patientID, nullInt(doctorID), nullInt(serviceID), in.Date, in.Time, in.status(), in.Notes, time.Now().UTC(), id,
		)
		return err
	})
}

// Delete removes appointment id. A missing row is ErrNotFound.
func (m *Appointments) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return ErrInvalidID
	}
	n, err := exec(ctx, m.db, "DELETE FROM appointments WHERE id = ?", id)
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func upsertPatient(ctx context.Context, tx *sqlx.Tx, in AppointmentInput) (int64, error) {
	first, last := in.names()
	now := time.Now().UTC()

	var id int64
	err := get(ctx, tx, &id, "SELECT id FROM patients WHERE email = ?", in.PatientEmail)
	switch {
	case err == nil:
		_, err = exec(ctx, tx, "UPDATE patients SET first_name = ?, last_name = ?, phone = ?, updated_at = ? WHERE id = ?",
			first, last, in.PatientPhone, now, id)
		return id, err
	case errors.Is(err, ErrNotFound):
		return insert(ctx, tx, "INSERT INTO patients (first_name, last_name, email, phone, created_at) VALUES (?, ?, ?, ?, ?)",
			first, last, in.PatientEmail, in.PatientPhone, now)
	default:
		return 0, err
	}
}

// references resolves the doctor and the service slug of in. Unknown
// references are reported as field errors.
func references(ctx context.Context, tx *sqlx.Tx, in AppointmentInput) (doctorID, serviceID int64, err error) {
	if in.DoctorID > 0 {
		if err := get(ctx, tx, &doctorID, "SELECT id FROM doctors WHERE id = ?", in.DoctorID); err != nil {
			if errors.Is(err, ErrNotFound) {
				return 0, 0, ValidationErrors{"doctor_id": "Please select a valid doctor"}
			}
			return 0, 0, err
		}
	}
	if in.ServiceType != "" {
		err := get(ctx, tx, &serviceID, "SELECT id FROM services WHERE slug = ?", in.ServiceType)
		if err != nil && !errors.Is(err, ErrNotFound) {
			return 0, 0, err
		}
	}
	return doctorID, serviceID, nil
}
