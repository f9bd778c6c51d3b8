package httpx

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
)

// ErrSent is returned when a Response is sent twice.
var ErrSent = errors.New("httpx: response already sent")

// Response is a buffered HTTP response.
type Response struct {
	Header http.Header
	Body   string
	Status int

	beforeSend []func(http.Header)
	sent       bool
}

// NewResponse returns a response with an empty header map.
func NewResponse(status int, body string) *Response {
	return &Response{Status: status, Body: body, Header: http.Header{}}
}

// HTML returns a text/html response.
func HTML(status int, body string) *Response {
	r := NewResponse(status, body)
	r.Header.Set("Content-Type", "text/html; charset=utf-8")
	return r
}

// Text returns a text/plain response.
func Text(status int, body string) *Response {
	r := NewResponse(status, body)
	r.Header.Set("Content-Type", "text/plain; charset=utf-8")
	return r
}

// JSON encodes v. An encoding failure produces a 500 JSON error body.
func JSON(status int, v any) *Response {
	data, err := json.Marshal(v)
	if err != nil {
		status = http.StatusInternalServerError
		data = []byte(`{"error":"response encoding failed"}`)
	}
	r := NewResponse(status, string(data))
	r.Header.Set("Content-Type", "application/json")
	return r
}

// Redirect returns a redirect to location; status defaults to 302.
func Redirect(location string, status int) *Response {
	if status < 300 || status > 399 {
		status = http.StatusFound
	}
	r := NewResponse(status, "")
	r.Header.Set("Location", location)
	return r
}

// OnBeforeSend registers fn to adjust headers right before they are written.
func (r *Response) OnBeforeSend(fn func(http.Header)) {
	r.beforeSend = append(r.beforeSend, fn)
}

// Sent reports whether Send has been called.
func (r *Response) Sent() bool { return r.sent }

// Send writes the response to w. Only the first call writes.
func (r *Response) Send(w http.ResponseWriter) error {
	if r.sent {
		return ErrSent
	}
	r.sent = true

	if r.Header == nil {
		r.Header = http.Header{}
	}
	for _, fn := range r.beforeSend {
		fn(r.Header)
	}
	r.beforeSend = nil

	h := w.Header()
	for k, vals := range r.Header {
		h[k] = append([]string(nil), vals...)
	}
	h.Set("Content-Length", strconv.Itoa(len(r.Body)))

	status := r.Status
	if status == 0 {
		status = http.StatusOK
	}
	w.WriteHeader(status)
	if r.Body == "" {
		return nil
	}
	_, err := w.Write([]byte(r.Body))
	return err
}
