package controllers

import "github.com/cureconnect/portal/internal"

// Registry returns the factories for every controller the default route
// table names.
func Registry() internal.Registry {
	return internal.Registry{
		internal.HomeController:        NewHome,
		internal.PageController:        NewPage,
		internal.AppointmentController: NewAppointment,
	}
}
