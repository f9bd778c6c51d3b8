// Package security collects the request-level safeguards used by the portal's
// forms: output escaping, input cleaning, CSRF tokens, contact-field
// validation, client address detection and session based rate limiting.
//
// State such as the CSRF token and rate-limit counters lives in the visitor's
// session.Session, so these helpers work the same behind the HTTP server and
// in the offline render command.
package security
