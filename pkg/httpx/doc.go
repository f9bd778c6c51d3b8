// Package httpx is the request and response abstraction controllers work
// against. A Request is built either from a live *http.Request (FromHTTP) or
// from plain values (NewRequest) so the same dispatch path serves the HTTP
// server, the offline render command and tests. A Response is a value until
// Send writes it exactly once.
package httpx
