package internal

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/cureconnect/portal/middlewares"
	"github.com/cureconnect/portal/pkg/health"
	"github.com/cureconnect/portal/pkg/httpx"
	"github.com/cureconnect/portal/pkg/logger"
)

// Infrastructure paths served outside the route table.
const (
	LivenessPath  = "/health/live"
	ReadinessPath = "/health/ready"
	AssetsPrefix  = "/assets/"
)

const defaultRequestTimeout = 30 * time.Second

// Handler returns the HTTP handler: health checks, static assets and, for
// every other path, the session and language middleware in front of the
// dispatcher.
func (a *Application) Handler() http.Handler {
	a.handlerOnce.Do(func() {
		a.handler = a.buildHandler()
	})
	return a.handler
}

// ServeHTTP makes the Application an http.Handler.
func (a *Application) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.Handler().ServeHTTP(w, r)
}

func (a *Application) buildHandler() http.Handler {
	r := chi.NewRouter()
	r.Use(
		middlewares.RequestID(),
		middlewares.Recover(middlewares.WithRecoverLogger(a.log)),
		middlewares.Timeout(defaultRequestTimeout, middlewares.WithTimeoutLogger(a.log)),
	)

	r.Get(LivenessPath, health.LivenessHandler())
	r.Get(ReadinessPath, health.ReadinessHandler(a.checks, a.log))

	if a.static != nil {
		r.Handle(AssetsPrefix+"*", http.StripPrefix(AssetsPrefix, http.FileServerFS(a.static)))
	}

	r.Group(func(r chi.Router) {
		r.Use(
			middlewares.Session(a.sessions, a.cookies, middlewares.WithSessionLogger(a.log)),
			middlewares.I18n(),
		)
		r.HandleFunc("/*", a.serveDispatch)
	})
	return r
}

func (a *Application) serveDispatch(w http.ResponseWriter, r *http.Request) {
	resp := a.HandleRequest(httpx.FromHTTP(r))
	if err := resp.Send(w); err != nil {
		a.log.ErrorContext(r.Context(), "failed to send response", slog.Any("error", err))
	}
}

// Run serves the application on addr until SIGINT/SIGTERM, then shuts the
// server and the application down.
//
// Example:
//
//	app, err := internal.Boot(root, internal.WithControllers(controllers.Registry()))
//	if err != nil {
//	    return err
//	}
//	return app.Run(internal.Address(":8080"))
func (a *Application) Run(opts ...RunOption) error {
	cfg := buildRunConfig(opts...)
	if cfg.logger == nil {
		cfg.logger = a.log
	}

	return runServer(runtimeConfig{
		handler:         a,
		address:         cfg.address,
		logger:          cfg.logger,
		shutdownTimeout: cfg.shutdownTimeout,
		shutdownHooks: append(cfg.shutdownHooks, a.Shutdown, func(context.Context) error {
			logger.FlushSentry(2 * time.Second)
			return nil
		}),
		onListen: cfg.onListen,
		baseCtx:  cfg.baseCtx,
	})
}
