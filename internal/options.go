package internal

import (
	"io/fs"
	"log/slog"

	"github.com/cureconnect/portal/pkg/config"
	"github.com/cureconnect/portal/pkg/mailer"
	"github.com/cureconnect/portal/pkg/session"
)

// Option configures an Application under construction.
type Option func(*settings)

// settings collects option values; construction reads them once.
type settings struct {
	logger      *slog.Logger
	config      *config.Config
	parser      config.Parser
	controllers Registry
	routes      map[string]Route
	templates   fs.FS
	lang        fs.FS
	static      fs.FS
	mail        fs.FS
	mailSender  mailer.Sender
	sessions    session.Store
}

// WithLogger sets the application logger. Without it a JSON logger is built
// from the configuration (debug level when app.debug is set).
func WithLogger(l *slog.Logger) Option {
	return func(s *settings) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithConfig skips configuration loading and uses cfg as is.
func WithConfig(cfg *config.Config) Option {
	return func(s *settings) {
		s.config = cfg
	}
}

// WithConfigParser selects the configuration file parser.
func WithConfigParser(p config.Parser) Option {
	return func(s *settings) {
		if p != nil {
			s.parser = p
		}
	}
}

// WithControllers registers the controller factories the route table refers to.
//
// Example:
//
//	app, err := internal.Boot(root,
//	    internal.WithControllers(controllers.Registry()),
//	)
func WithControllers(reg Registry) Option {
	return func(s *settings) {
		if s.controllers == nil {
			s.controllers = make(Registry, len(reg))
		}
		for id, f := range reg {
			s.controllers[id] = f
		}
	}
}

// WithRoutes replaces the route table. Used by tests and tooling.
func WithRoutes(routes map[string]Route) Option {
	return func(s *settings) {
		s.routes = routes
	}
}

// WithTemplatesFS serves templates from fsys when the configured templates
// directory does not exist.
func WithTemplatesFS(fsys fs.FS) Option {
	return func(s *settings) {
		s.templates = fsys
	}
}

// WithLangFS serves translation tables from fsys when the configured language
// directory does not exist.
func WithLangFS(fsys fs.FS) Option {
	return func(s *settings) {
		s.lang = fsys
	}
}

// WithStaticFS mounts fsys under /assets/.
func WithStaticFS(fsys fs.FS) Option {
	return func(s *settings) {
		s.static = fsys
	}
}

// WithMailTemplatesFS sets the mail templates (with a layouts/ directory).
func WithMailTemplatesFS(fsys fs.FS) Option {
	return func(s *settings) {
		s.mail = fsys
	}
}

// WithMailSender overrides the mail transport chosen from the configuration.
func WithMailSender(sender mailer.Sender) Option {
	return func(s *settings) {
		s.mailSender = sender
	}
}

// WithSessionStore overrides the session store chosen from the configuration.
func WithSessionStore(store session.Store) Option {
	return func(s *settings) {
		s.sessions = store
	}
}
