package portal

import (
	"github.com/cureconnect/portal/internal"
	"github.com/cureconnect/portal/internal/controllers"
	"github.com/cureconnect/portal/web"
)

// DefaultOptions wires the portal controllers and the embedded templates,
// translations, mail templates and static assets. Directories configured
// under app.templates_path and app.lang_path take precedence when present.
func DefaultOptions() []internal.Option {
	return []internal.Option{
		internal.WithControllers(controllers.Registry()),
		internal.WithTemplatesFS(web.Templates()),
		internal.WithLangFS(web.Lang()),
		internal.WithMailTemplatesFS(web.Mail()),
		internal.WithStaticFS(web.Static()),
	}
}

// Boot returns the process-wide portal application rooted at root. opts are
// applied after DefaultOptions.
func Boot(root string, opts ...internal.Option) (*internal.Application, error) {
	return internal.Boot(root, append(DefaultOptions(), opts...)...)
}

// New builds an independent portal application, for tests and tooling.
func New(root string, opts ...internal.Option) (*internal.Application, error) {
	return internal.New(root, append(DefaultOptions(), opts...)...)
}
