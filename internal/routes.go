package internal

import "maps"

// Route names the controller and action serving one literal path.
type Route struct {
	Controller string
	Action     string
}

// Controller identifiers used by the route table.
const (
	HomeController        = "home"
	PageController        = "page"
	AppointmentController = "appointment"
)

// DefaultRoutes returns the route table. Paths are matched exactly; extra
// parameters travel in the query string (/article?slug=..., /appointments/show?id=...).
func DefaultRoutes() map[string]Route {
	return map[string]Route{
		"/":                    {HomeController, "index"},
		"/about":               {PageController, "about"},
		"/contact":             {PageController, "contact"},
		"/gallery":             {PageController, "gallery"},
		"/government-schemes":  {PageController, "governmentSchemes"},
		"/articles":            {PageController, "articles"},
		"/article":             {PageController, "article"},
		"/appointments":        {AppointmentController, "index"},
		"/appointments/show":   {AppointmentController, "show"},
		"/appointments/create": {AppointmentController, "create"},
		"/appointments/update": {AppointmentController, "update"},
		"/appointments/delete": {AppointmentController, "delete"},
	}
}

// Routes returns a copy of the route table.
func (a *Application) Routes() map[string]Route {
	return maps.Clone(a.routes)
}

// lookup matches path exactly, tolerating one trailing slash.
func (a *Application) lookup(path string) (Route, bool) {
	if r, ok := a.routes[path]; ok {
		return r, true
	}
	if len(path) > 1 && path[len(path)-1] == '/' {
		r, ok := a.routes[path[:len(path)-1]]
		return r, ok
	}
	return Route{}, false
}
