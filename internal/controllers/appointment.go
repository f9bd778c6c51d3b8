package controllers

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/cureconnect/portal/internal"
	"github.com/cureconnect/portal/internal/models"
	"github.com/cureconnect/portal/pkg/httpx"
	"github.com/cureconnect/portal/pkg/security"
)

const appointmentsPath = "/appointments"

// Appointment manages appointment records.
type Appointment struct {
	base
	appointments *models.Appointments
	catalog      *models.Catalog
}

func NewAppointment(app *internal.Application) internal.Controller {
	a := &Appointment{
		base:         base{app: app},
		appointments: models.NewAppointments(app.DB()),
		catalog:      models.NewCatalog(app.DB()),
	}
	return internal.Actions{
		"index":  a.Index,
		"show":   a.Show,
		"create": a.Create,
		"update": a.Update,
		"delete": a.Delete,
	}
}

func (a *Appointment) Index(c *internal.Context) (*httpx.Response, error) {
	list, err := a.appointments.All(c.Context())
	if err != nil {
		return nil, fmt.Errorf("load appointments: %w", err)
	}
	return a.render(c, "appointments/index", map[string]any{
		"title":        a.trans(c, "Appointments"),
		"appointments": list,
		"body_class":   "appointments-page",
	})
}

func (a *Appointment) Show(c *internal.Context) (*httpx.Response, error) {
	appt, err := a.find(c)
	if err != nil {
		return nil, err
	}
	return a.render(c, "appointments/show", map[string]any{
		"title":       a.trans(c, "Appointment Details"),
		"appointment": appt,
		"body_class":  "appointments-page",
	})
}

func (a *Appointment) Create(c *internal.Context) (*httpx.Response, error) {
	data := map[string]any{"title": a.trans(c, "Create Appointment")}
	if !c.Request().IsMethod(http.MethodPost) {
		return a.form(c, "appointments/create", data, models.AppointmentInput{}, nil, http.StatusOK)
	}
	if err := verifyCSRF(c); err != nil {
		return nil, err
	}

	in := appointmentInput(c)
	if _, err := a.appointments.Create(c.Context(), in); err != nil {
		return a.failed(c, "appointments/create", data, in, err, "Unable to create appointment. Please try again.")
	}
	c.SetFlash("success", a.trans(c, "Appointment created successfully"))
	return a.redirect(appointmentsPath)
}

func (a *Appointment) Update(c *internal.Context) (*httpx.Response, error) {
	appt, err := a.find(c)
	if err != nil {
		return nil, err
	}
	data := map[string]any{
		"title":       a.trans(c, "Update Appointment"),
		"appointment": appt,
	}
	if !c.Request().IsMethod(http.MethodPost) {
		return a.form(c, "appointments/update", data, appt.Input(), nil, http.StatusOK)
	}
	if err := verifyCSRF(c); err != nil {
		return nil, err
	}

	in := appointmentInput(c)
	if err := a.appointments.Update(c.Context(), appt.ID, in); err != nil {
		return a.failed(c, "appointments/update", data, in, err, "Unable to update appointment details.")
	}
	c.SetFlash("success", a.trans(c, "Appointment updated successfully"))
	return a.redirect(appointmentsPath)
}

// Delete removes the appointment on POST. Any other method only redirects.
func (a *Appointment) Delete(c *internal.Context) (*httpx.Response, error) {
	id := queryID(c)
	if id <= 0 {
		return nil, internal.ErrBadRequest(a.trans(c, "Invalid appointment ID"))
	}
	if !c.Request().IsMethod(http.MethodPost) {
		return a.redirect(appointmentsPath)
	}
	if err := verifyCSRF(c); err != nil {
		return nil, err
	}

	if err := a.appointments.Delete(c.Context(), id); err != nil {
		c.Logger().WarnContext(c.Context(), "failed to delete appointment", slog.Int64("id", id), slog.Any("error", err))
		c.SetFlash("error", a.trans(c, "Unable to delete appointment"))
	} else {
		c.SetFlash("success", a.trans(c, "Appointment deleted successfully"))
	}
	return a.redirect(appointmentsPath)
}

// find loads the appointment named by ?id=.
func (a *Appointment) find(c *internal.Context) (*models.Appointment, error) {
	id := queryID(c)
	if id <= 0 {
		return nil, internal.ErrBadRequest(a.trans(c, "Invalid appointment ID"))
	}
	appt, err := a.appointments.FindByID(c.Context(), id)
	switch {
	case err == nil:
		return appt, nil
	case errors.Is(err, models.ErrNotFound):
		return nil, internal.ErrNotFound(a.trans(c, "Appointment not found"), internal.WithError(err))
	default:
		return nil, fmt.Errorf("load appointment %d: %w", id, err)
	}
}

// failed re-renders the form after a rejected submission: field errors with
// 422, anything else logged and shown as a general error.
func (a *Appointment) failed(c *internal.Context, tpl string, data map[string]any, in models.AppointmentInput, err error, general string) (*httpx.Response, error) {
	if fields, ok := models.AsValidationErrors(err); ok {
		return a.form(c, tpl, data, in, fields, http.StatusUnprocessableEntity)
	}
	c.Logger().ErrorContext(c.Context(), "appointment not saved", slog.Any("error", err))
	return a.form(c, tpl, data, in, models.ValidationErrors{"general": a.trans(c, general)}, http.StatusInternalServerError)
}

func (a *Appointment) form(c *internal.Context, tpl string, data map[string]any, in models.AppointmentInput, errs models.ValidationErrors, status int) (*httpx.Response, error) {
	doctors, err := a.catalog.Doctors(c.Context())
	if err != nil {
		c.Logger().WarnContext(c.Context(), "doctors unavailable", slog.Any("error", err))
	}
	if errs == nil {
		errs = models.ValidationErrors{}
	}
	data["data"] = in
	data["errors"] = errs
	data["doctors"] = doctors
	data["service_types"] = models.ServiceTypes
	data["statuses"] = models.Statuses
	data["body_class"] = "appointments-page"
	return a.render(c, tpl, data, status)
}

func appointmentInput(c *internal.Context) models.AppointmentInput {
	doctorID, _ := strconv.ParseInt(c.Request().Form("doctor_id", "0"), 10, 64)
	return models.AppointmentInput{
		PatientName:  form(c, "patient_name"),
		PatientEmail: form(c, "patient_email"),
		PatientPhone: form(c, "patient_phone"),
		Date:         form(c, "appointment_date"),
		Time:         form(c, "appointment_time"),
		DoctorID:     max(doctorID, 0),
		ServiceType:  form(c, "service_type"),
		Notes:        form(c, "notes"),
		Status:       form(c, "status"),
	}
}

func verifyCSRF(c *internal.Context) error {
	if !security.VerifyCSRFToken(c.Session(), c.Request().Form("csrf_token", "")) {
		return internal.ErrForbidden(c.T("Invalid CSRF token"))
	}
	return nil
}
