// Package middlewares provides the HTTP middleware of the portal. Every
// middleware has the standard func(http.Handler) http.Handler shape and is
// mounted on the chi router by the Application.
//
// # Request ID
//
// RequestID assigns a unique ID to each request for tracing. It reuses an
// incoming X-Request-ID (or X-Correlation-ID) header or generates a ULID.
// RequestIDExtractor adds the ID to every log entry:
//
//	log := logger.New(cfg, middlewares.RequestIDExtractor())
//	r.Use(middlewares.RequestID())
//
// # Recover
//
// Recover catches panics that escape handlers outside the dispatcher, logs
// them with the stack and sends a generic 500 page when nothing was written.
//
//	r.Use(middlewares.Recover(middlewares.WithRecoverLogger(log)))
//
// # Timeout
//
// Timeout puts a deadline on the request context and answers 504 when the
// handler gave up without writing a response.
//
//	r.Use(middlewares.Timeout(30 * time.Second))
//
// # Session
//
// Session loads the visitor session from the signed __sid cookie, stores it in
// the request context and saves it right before the response headers go out.
//
//	store := session.NewCacheStore(cache.NewMemory[session.Session]())
//	r.Use(middlewares.Session(store, cookies))
//
// # I18n
//
// I18n resolves the visitor language (?lang, session, Accept-Language,
// default) and persists the choice in the session. It must run after Session.
//
//	r.Use(middlewares.Session(store, cookies), middlewares.I18n())
//	lang := middlewares.GetLanguage(r.Context())
package middlewares
