// Package logger builds the slog loggers used across the portal.
//
// Every logger writes structured records to stdout (JSON in production, text in
// development) and can enrich each record with request-scoped attributes pulled
// from the context, such as the request id or the active language:
//
//	log := logger.New(logger.Config{Level: slog.LevelDebug},
//		middlewares.RequestIDExtractor(),
//		middlewares.LanguageExtractor(),
//	)
//
// When a Sentry DSN is configured, records at warn level and above are also
// forwarded to Sentry; errors become Sentry issues.
package logger
