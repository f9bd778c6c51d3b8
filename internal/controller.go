package internal

import (
	"context"
	"log/slog"

	"github.com/cureconnect/portal/middlewares"
	"github.com/cureconnect/portal/pkg/httpx"
	"github.com/cureconnect/portal/pkg/i18n"
	"github.com/cureconnect/portal/pkg/id"
	"github.com/cureconnect/portal/pkg/session"
)

// Action handles one request. An error becomes an error page: an *HTTPError
// keeps its status, anything else is a 500.
type Action func(c *Context) (*httpx.Response, error)

// Controller resolves actions by the names used in the route table.
type Controller interface {
	Action(name string) (Action, bool)
}

// Factory builds a controller bound to the application. A fresh controller is
// built for every request.
type Factory func(app *Application) Controller

// Registry maps controller identifiers to factories.
type Registry map[string]Factory

// Actions is a map-backed Controller.
type Actions map[string]Action

func (a Actions) Action(name string) (Action, bool) {
	act, ok := a[name]
	return act, ok && act != nil
}

// Flash session keys.
const (
	flashTypeKey    = "flash_type"
	flashMessageKey = "flash_message"
)

// Flash is a one-shot message shown on the next rendered page.
type Flash struct {
	Type    string
	Message string
}

// Context is the per-request state handed to actions.
type Context struct {
	app  *Application
	req  httpx.Request
	sess *session.Session
	lang string
}

func newContext(app *Application, req httpx.Request) *Context {
	sess, ok := session.FromContext(req.Context())
	if !ok {
		// No session middleware (CLI render, tests): state lives for this request only.
		sess = session.New(id.RandomToken(32), middlewares.DefaultSessionTTL)
	}
	return &Context{app: app, req: req, sess: sess}
}

// NewContext builds a request context outside the dispatcher.
func NewContext(app *Application, req httpx.Request) *Context {
	return newContext(app, req)
}

func (c *Context) App() *Application { return c.app }
func (c *Context) Request() httpx.Request { return c.req }
func (c *Context) Session() *session.Session { return c.sess }
func (c *Context) Context() context.Context { return c.req.Context() }
func (c *Context) Logger() *slog.Logger { return c.app.log }
func (c *Context) RequestID() string { return middlewares.GetRequestID(c.req.Context()) }
func (c *Context) Translator() *i18n.Translator { return c.app.translator }

// Lang returns the visitor language. The I18n middleware resolves it for HTTP
// requests; otherwise it is negotiated here and persisted in the session.
func (c *Context) Lang() string {
	if c.lang != "" {
		return c.lang
	}
	if lang := middlewares.GetLanguage(c.req.Context()); lang != "" {
		c.lang = lang
		return lang
	}
	lang, persist := i18n.Negotiate(
		c.req.Query("lang", ""),
		c.sess.GetOr(middlewares.LanguageSessionKey, ""),
		c.req.Header("Accept-Language"),
	)
	if persist {
		c.sess.Set(middlewares.LanguageSessionKey, lang)
	}
	c.lang = lang
	return lang
}

// T translates key into the visitor language.
func (c *Context) T(key string, params ...map[string]any) string {
	var p map[string]any
	if len(params) > 0 {
		p = params[0]
	}
	return c.app.translator.Translate(c.Lang(), key, p)
}

// SetFlash stores a message for the next rendered page.
func (c *Context) SetFlash(typ, message string) {
	c.sess.Set(flashTypeKey, typ)
	c.sess.Set(flashMessageKey, message)
}

// TakeFlash returns and clears the pending flash message.
func (c *Context) TakeFlash() (Flash, bool) {
	msg, ok := c.sess.Get(flashMessageKey)
	if !ok {
		return Flash{}, false
	}
	f := Flash{Type: c.sess.GetOr(flashTypeKey, "info"), Message: msg}
	c.sess.Delete(flashTypeKey)
	c.sess.Delete(flashMessageKey)
	return f, true
}
