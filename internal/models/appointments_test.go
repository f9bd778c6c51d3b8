package models_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cureconnect/portal/internal/models"
)

func tomorrow() string {
	return time.Now().AddDate(0, 0, 1).Format(models.DateLayout)
}

func validAppointment() models.AppointmentInput {
	return models.AppointmentInput{
		PatientName:  "Rahim Uddin Ahmed",
		PatientEmail: "rahim@example.com",
		PatientPhone: "+880 1712-345678",
		Date:         tomorrow(),
		Time:         "10:30",
		DoctorID:     1,
		ServiceType:  "consultation",
		Notes:        "Second opinion on bypass surgery",
	}
}

func TestAppointments_Validate(t *testing.T) {
	t.Parallel()

	m := models.NewAppointments(nil)
	require.NoError(t, m.Validate(validAppointment()))

	tests := []struct {
		name    string
		mutate  func(in *models.AppointmentInput)
		field   string
		message string
	}{
		{"missing name", func(in *models.AppointmentInput) { in.PatientName = "" }, "patient_name", "Patient name is required"},
		{"missing email", func(in *models.AppointmentInput) { in.PatientEmail = "" }, "patient_email", "Patient email is required"},
		{"bad email", func(in *models.AppointmentInput) { in.PatientEmail = "not-an-email" }, "patient_email", "Please enter a valid email address"},
		{"missing phone", func(in *models.AppointmentInput) { in.PatientPhone = "" }, "patient_phone", "Patient phone is required"},
		{"bad phone", func(in *models.AppointmentInput) { in.PatientPhone = "call me" }, "patient_phone", "Please enter a valid phone number"},
		{"missing date", func(in *models.AppointmentInput) { in.Date = "" }, "appointment_date", "Appointment date is required"},
		{"bad date", func(in *models.AppointmentInput) { in.Date = "31/12/2099" }, "appointment_date", "Please enter a valid date"},
		{"past date", func(in *models.AppointmentInput) { in.Date = "2000-01-01" }, "appointment_date", "Appointment date cannot be in the past"},
		{"missing time", func(in *models.AppointmentInput) { in.Time = "" }, "appointment_time", "Appointment time is required"},
		{"bad time", func(in *models.AppointmentInput) { in.Time = "25:61" }, "appointment_time", "Please enter a valid time"},
		{"bad service", func(in *models.AppointmentInput) { in.ServiceType = "massage" }, "service_type", "Please select a valid service type"},
		{"bad status", func(in *models.AppointmentInput) { in.Status = "lost" }, "status", "Please select a valid status"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			in := validAppointment()
			tt.mutate(&in)
			err := m.Validate(in)

			fields, ok := models.AsValidationErrors(err)
			require.True(t, ok, "expected validation errors, got %v", err)
			assert.Equal(t, tt.message, fields[tt.field])
			assert.Len(t, fields, 1)
		})
	}

	t.Run("today is allowed", func(t *testing.T) {
		t.Parallel()
		in := validAppointment()
		in.Date = time.Now().Format(models.DateLayout)
		assert.NoError(t, m.Validate(in))
	})
}

func TestAppointments_CRUD(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	m := models.NewAppointments(openDB(t))

	in := validAppointment()
	id, err := m.Create(ctx, in)
	require.NoError(t, err)
	require.Positive(t, id)

	got, err := m.FindByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Rahim Uddin Ahmed", got.PatientName)
	assert.Equal(t, "Rahim", got.FirstName)
	assert.Equal(t, "Uddin Ahmed", got.LastName)
	assert.Equal(t, "Dr. Anil Sharma", got.DoctorName)
	assert.Equal(t, "Consultation", got.ServiceName)
	assert.Equal(t, "consultation", got.ServiceType)
	assert.Equal(t, models.StatusPending, got.Status)
	assert.Nil(t, got.UpdatedAt)
	assert.Equal(t, in.Date, got.Input().Date)

	t.Run("same email reuses the patient", func(t *testing.T) {
		second := validAppointment()
		second.PatientName = "Rahim Ahmed"
		second.DoctorID = 0
		second.ServiceType = ""
		second.Time = "09:00"
		id2, err := m.Create(ctx, second)
		require.NoError(t, err)

		a2, err := m.FindByID(ctx, id2)
		require.NoError(t, err)
		assert.Equal(t, got.PatientID, a2.PatientID)
		assert.Empty(t, a2.DoctorName)
		assert.Zero(t, a2.DoctorID)

		first, err := m.FindByID(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, "Rahim Ahmed", first.PatientName, "patient details follow the latest booking")
	})

	t.Run("all is ordered latest first", func(t *testing.T) {
		all, err := m.All(ctx)
		require.NoError(t, err)
		require.Len(t, all, 2)
		assert.Equal(t, "10:30", all[0].Time)
		assert.Equal(t, "09:00", all[1].Time)
	})

	t.Run("update", func(t *testing.T) {
		upd := validAppointment()
		upd.Status = models.StatusConfirmed
		upd.ServiceType = "surgery"
		require.NoError(t, m.Update(ctx, id, upd))

		a, err := m.FindByID(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, models.StatusConfirmed, a.Status)
		assert.Equal(t, "Surgery", a.ServiceName)
		assert.NotNil(t, a.UpdatedAt)

		require.ErrorIs(t, m.Update(ctx, 9999, upd), models.ErrNotFound)
		require.ErrorIs(t, m.Update(ctx, 0, upd), models.ErrInvalidID)
	})

	t.Run("unknown doctor", func(t *testing.T) {
		bad := validAppointment()
		bad.DoctorID = 42
		_, err := m.Create(ctx, bad)
		fields, ok := models.AsValidationErrors(err)
		require.True(t, ok)
		assert.Equal(t, "Please select a valid doctor", fields["doctor_id"])
	})

	t.Run("invalid input is not stored", func(t *testing.T) {
		bad := validAppointment()
		bad.PatientEmail = ""
		_, err := m.Create(ctx, bad)
		_, ok := models.AsValidationErrors(err)
		require.True(t, ok)
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, m.Delete(ctx, id))
		require.ErrorIs(t, m.Delete(ctx, id), models.ErrNotFound)

		_, err := m.FindByID(ctx, id)
		require.ErrorIs(t, err, models.ErrNotFound)
		_, err = m.FindByID(ctx, -1)
		require.ErrorIs(t, err, models.ErrInvalidID)
	})
}

func TestAppointments_CreateRollsBackOnFailure(t *testing.T) {
	t.Parallel()

	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	boom := errors.New("connection reset")
	mock.ExpectBegin()
	mock.ExpectQuery("SELECT id FROM patients WHERE email").WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectExec("INSERT INTO patients").WillReturnResult(sqlmock.NewResult(7, 1))
	mock.ExpectQuery("SELECT id FROM doctors WHERE id").WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	mock.ExpectQuery("SELECT id FROM services WHERE slug").WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	mock.ExpectExec("INSERT INTO appointments").WillReturnError(boom)
	mock.ExpectRollback()

	m := models.NewAppointments(sqlx.NewDb(conn, "sqlmock"))
	_, err = m.Create(context.Background(), validAppointment())
	require.ErrorIs(t, err, boom)
	require.NoError(t, mock.ExpectationsWereMet())
}
