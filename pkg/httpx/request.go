package httpx

import (
	"context"
	"net/http"
	"net/url"
	"strings"
)

// MaxFormBytes bounds parsed request bodies.
const MaxFormBytes = 1 << 20

// Request is the read-only view of an incoming request.
type Request interface {
	Method() string
	// Path is the URL path without the query string.
	Path() string
	// URI is the path plus the raw query.
	URI() string
	Query(key, def string) string
	Form(key, def string) string
	FormValues() url.Values
	Header(key string) string
	IsMethod(method string) bool
	RemoteAddr() string
	Context() context.Context
}

type httpRequest struct {
	r    *http.Request
	form url.Values
}

// FromHTTP wraps r. Form bodies are parsed eagerly with a MaxFormBytes limit;
// a body that fails to parse yields empty form values.
func FromHTTP(r *http.Request) Request {
	req := &httpRequest{r: r, form: url.Values{}}
	if r.Method == http.MethodPost || r.Method == http.MethodPut || r.Method == http.MethodPatch {
		if r.Body != nil {
			r.Body = http.MaxBytesReader(nil, r.Body, MaxFormBytes)
		}
		if err := r.ParseForm(); err == nil {
			req.form = r.PostForm
		}
	}
	return req
}

func (h *httpRequest) Method() string { return h.r.Method }

func (h *httpRequest) Path() string {
	if h.r.URL.Path == "" {
		return "/"
	}
	return h.r.URL.Path
}

func (h *httpRequest) URI() string { return h.r.URL.RequestURI() }

func (h *httpRequest) Query(key, def string) string {
	return valueOr(h.r.URL.Query(), key, def)
}

func (h *httpRequest) Form(key, def string) string { return valueOr(h.form, key, def) }

func (h *httpRequest) FormValues() url.Values { return h.form }

func (h *httpRequest) Header(key string) string { return h.r.Header.Get(key) }

func (h *httpRequest) IsMethod(m string) bool { return strings.EqualFold(h.r.Method, m) }

func (h *httpRequest) RemoteAddr() string { return h.r.RemoteAddr }

func (h *httpRequest) Context() context.Context { return h.r.Context() }

type plainRequest struct {
	ctx    context.Context
	method string
	path   string
	query  url.Values
	uri    string
	form   url.Values
	header http.Header
	remote string
}

// RequestOption configures NewRequest.
type RequestOption func(*plainRequest)

// WithForm sets the submitted form values.
func WithForm(v url.Values) RequestOption {
	return func(p *plainRequest) { p.form = v }
}

// WithHeader adds a request header.
func WithHeader(key, value string) RequestOption {
	return func(p *plainRequest) { p.header.Add(key, value) }
}

// WithRemoteAddr sets the client address.
func WithRemoteAddr(addr string) RequestOption {
	return func(p *plainRequest) { p.remote = addr }
}

// WithContext sets the request context.
func WithContext(ctx context.Context) RequestOption {
	return func(p *plainRequest) { p.ctx = ctx }
}

// NewRequest builds a Request from plain values. uri may carry a query string.
func NewRequest(method, uri string, opts ...RequestOption) Request {
	p := &plainRequest{
		ctx:    context.Background(),
		method: strings.ToUpper(method),
		form:   url.Values{},
		header: http.Header{},
		remote: "127.0.0.1",
	}
	if p.method == "" {
		p.method = http.MethodGet
	}

	u, err := url.Parse(uri)
	if err != nil || u.Path == "" {
		u = &url.URL{Path: "/"}
		if err == nil {
			u.RawQuery = strings.TrimPrefix(uri, "?")
		}
	}
	p.path = u.Path
	p.query = u.Query()
	p.uri = u.RequestURI()

	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *plainRequest) Method() string { return p.method }

func (p *plainRequest) Path() string { return p.path }

func (p *plainRequest) URI() string { return p.uri }

func (p *plainRequest) Query(key, def string) string { return valueOr(p.query, key, def) }

func (p *plainRequest) Form(key, def string) string { return valueOr(p.form, key, def) }

func (p *plainRequest) FormValues() url.Values { return p.form }

func (p *plainRequest) Header(key string) string { return p.header.Get(key) }

func (p *plainRequest) IsMethod(m string) bool { return strings.EqualFold(p.method, m) }

func (p *plainRequest) RemoteAddr() string { return p.remote }

func (p *plainRequest) Context() context.Context { return p.ctx }

func valueOr(v url.Values, key, def string) string {
	if vals, ok := v[key]; ok && len(vals) > 0 {
		return vals[0]
	}
	return def
}
