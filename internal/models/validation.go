package models

import (
	"errors"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/cureconnect/portal/pkg/security"
)

// Date and time layouts accepted by the appointment form.
const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func validatorInstance() *validator.Validate {
	validateOnce.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name, _, _ := strings.Cut(f.Tag.Get("form"), ",")
			if name == "-" {
				return ""
			}
			return name
		})
		_ = v.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
			return security.ValidatePhone(fl.Field().String())
		})
		_ = v.RegisterValidation("ymd", func(fl validator.FieldLevel) bool {
			_, err := time.Parse(DateLayout, fl.Field().String())
			return err == nil
		})
		_ = v.RegisterValidation("hm", func(fl validator.FieldLevel) bool {
			_, err := time.Parse(TimeLayout, fl.Field().String())
			return err == nil
		})
		_ = v.RegisterValidation("notpast", func(fl validator.FieldLevel) bool {
			d, err := time.Parse(DateLayout, fl.Field().String())
			if err != nil {
				return false
			}
			now := time.Now()
			return !d.Before(time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC))
		})
		validate = v
	})
	return validate
}

// messages maps "field.tag" (or "field" for any tag) to the text shown under
// the form field.
var messages = map[string]string{
	"patient_name.required":     "Patient name is required",
	"patient_email.required":    "Patient email is required",
	"patient_email":             "Please enter a valid email address",
	"patient_phone.required":    "Patient phone is required",
	"patient_phone":             "Please enter a valid phone number",
	"appointment_date.required": "Appointment date is required",
	"appointment_date.notpast":  "Appointment date cannot be in the past",
	"appointment_date":          "Please enter a valid date",
	"appointment_time.required": "Appointment time is required",
	"appointment_time":          "Please enter a valid time",
	"service_type":              "Please select a valid service type",
	"status":                    "Please select a valid status",
	"title.required":            "Title is required",
	"content.required":          "Content is required",
	"language":                  "Please select a valid language",
	"name.required":             "Name is required",
	"email.required":            "Email is required",
	"email":                     "Please enter a valid email address",
	"phone":                     "Please enter a valid phone number",
	"message.required":          "Message is required",
}

// validateStruct runs the struct tags of v and converts failures into
// ValidationErrors keyed by form field name.
func validateStruct(v any) error {
	err := validatorInstance().Struct(v)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}
	out := make(ValidationErrors, len(fieldErrs))
	for _, fe := range fieldErrs {
		field := fe.Field()
		if _, seen := out[field]; seen {
			continue
		}
		msg, ok := messages[field+"."+fe.Tag()]
		if !ok {
			msg, ok = messages[field]
		}
		if !ok {
			msg = "Invalid value"
		}
		out[field] = msg
	}
	return out
}
