package internal

import (
	"errors"
	"fmt"
	"html"
	"log/slog"
	"maps"
	"net/http"
	"runtime/debug"

	"github.com/cureconnect/portal/middlewares"
	"github.com/cureconnect/portal/pkg/httpx"
	"github.com/cureconnect/portal/pkg/i18n"
	"github.com/cureconnect/portal/pkg/security"
)

// Error page templates and titles.
const (
	NotFoundTemplate = "errors/404"
	ServerTemplate   = "errors/500"
	ErrorTemplate    = "error"

	NotFoundTitle = "Page Not Found"
	ServerTitle   = "Internal Server Error"
)

var errNoResponse = errors.New("dispatcher: action returned no response")

// Static bodies used when even the error templates cannot be rendered.
const (
	staticNotFoundBody = "<h1>Page Not Found</h1><p>The page you are looking for does not exist.</p>"
	staticServerBody   = middlewares.RecoverBody
)

// HandleRequest resolves req against the route table and runs the matching
// controller action. It always returns a response: misses become 404 pages,
// errors and panics become error pages.
func (a *Application) HandleRequest(req httpx.Request) (resp *httpx.Response) {
	c := newContext(a, req)

	defer func() {
		if p := recover(); p != nil {
			resp = a.errorResponse(c, &middlewares.PanicError{Value: p, Stack: debug.Stack()})
		}
		if resp == nil {
			resp = a.errorResponse(c, ErrInternal(ServerTitle, WithError(errNoResponse)))
		}
		if c.lang != "" {
			lang := c.lang
			resp.OnBeforeSend(func(h http.Header) {
				if h.Get("Content-Language") == "" {
					h.Set("Content-Language", lang)
				}
			})
		}
	}()

	route, ok := a.lookup(req.Path())
	if !ok {
		return a.notFound(c)
	}

	resp, err := a.dispatch(c, route)
	if err != nil {
		return a.errorResponse(c, err)
	}
	return resp
}

func (a *Application) dispatch(c *Context, route Route) (*httpx.Response, error) {
	factory, ok := a.controllers[route.Controller]
	if !ok || factory == nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownController, route.Controller)
	}
	act, ok := factory(a).Action(route.Action)
	if !ok {
		return nil, fmt.Errorf("%w: %s.%s", ErrUnknownAction, route.Controller, route.Action)
	}

	a.log.DebugContext(c.Context(), "dispatch",
		slog.String("path", c.req.Path()),
		slog.String("controller", route.Controller),
		slog.String("action", route.Action),
	)
	return act(c)
}

func (a *Application) notFound(c *Context) *httpx.Response {
	body, err := a.safeRender(c, NotFoundTemplate, map[string]any{"title": NotFoundTitle})
	if err != nil {
		a.log.ErrorContext(c.Context(), "failed to render not found page", slog.Any("error", err))
		body = staticNotFoundBody
	}
	return httpx.HTML(http.StatusNotFound, body)
}

// errorResponse turns err into a page. Client errors render the generic error
// template with their message; everything else is a 500 that reveals the
// message and stack only in debug mode.
func (a *Application) errorResponse(c *Context, err error) *httpx.Response {
	ctx := c.Context()

	if he := AsHTTPError(err); he != nil && he.Code < http.StatusInternalServerError {
		a.log.WarnContext(ctx, "request failed",
			slog.Int("status", he.Code),
			slog.String("message", he.Message),
			slog.Any("error", he.Err),
		)
		title := he.Title
		if title == "" {
			title = he.StatusText()
		}
		data := map[string]any{
			"title":      title,
			"message":    he.Message,
			"status":     he.Code,
			"request_id": c.RequestID(),
		}
		tpl := ErrorTemplate
		if he.Code == http.StatusNotFound && he.Message == "" {
			tpl, data["title"] = NotFoundTemplate, NotFoundTitle
		}
		body, rerr := a.safeRender(c, tpl, data)
		if rerr != nil {
			a.log.ErrorContext(ctx, "failed to render error page", slog.Any("error", rerr))
			body = "<h1>" + html.EscapeString(title) + "</h1><p>" + html.EscapeString(he.Message) + "</p>"
		}
		return httpx.HTML(he.Code, body)
	}

	var stack []byte
	pe, panicked := middlewares.AsPanicError(err)
	if panicked {
		stack = pe.Stack
	} else {
		stack = debug.Stack()
	}
	detail := err.Error()
	if he := AsHTTPError(err); he != nil && he.Err != nil {
		detail = he.Message + ": " + he.Err.Error()
	}
	a.log.ErrorContext(ctx, "request error",
		slog.String("path", c.req.Path()),
		slog.String("error", detail),
		slog.Bool("panic", panicked),
		slog.String("stack", string(stack)),
	)

	if a.cfg.App.Debug {
		return httpx.HTML(http.StatusInternalServerError,
			"<h1>Error</h1><pre>"+html.EscapeString(detail+"\n"+string(stack))+"</pre>")
	}

	body, rerr := a.safeRender(c, ServerTemplate, map[string]any{"title": ServerTitle})
	if rerr != nil {
		a.log.ErrorContext(ctx, "failed to render server error page", slog.Any("error", rerr))
		body = staticServerBody
	}
	return httpx.HTML(http.StatusInternalServerError, body)
}

// safeRender renders an error page, turning a renderer panic into an error.
func (a *Application) safeRender(c *Context, name string, data map[string]any) (body string, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("render %s: panic: %v", name, p)
		}
	}()
	return a.renderer.Render(name, c.ViewData(data))
}

// ViewData returns data merged over the values every page expects: lang,
// dir, languages, config, request_uri, csrf_token and a pending flash.
func (c *Context) ViewData(data map[string]any) map[string]any {
	lang := c.Lang()
	cfg := c.app.cfg.App
	out := map[string]any{
		"lang":      lang,
		"dir":       i18n.Direction(lang),
		"languages": i18n.Languages(),
		"config": map[string]any{
			"name":        cfg.Name,
			"version":     cfg.Version,
			"environment": cfg.Environment,
			"base_url":    cfg.BaseURL,
			"assets_url":  cfg.AssetsURL,
		},
		"request_uri": c.req.URI(),
		"csrf_token":  security.CSRFToken(c.sess),
		"request_id":  c.RequestID(),
	}
	if f, ok := c.TakeFlash(); ok {
		out["flash"] = map[string]any{"type": f.Type, "message": f.Message}
	}
	maps.Copy(out, data)
	return out
}

// Render renders a page template into an HTML response.
func (c *Context) Render(status int, name string, data map[string]any) (*httpx.Response, error) {
	body, err := c.app.renderer.Render(name, c.ViewData(data))
	if err != nil {
		return nil, err
	}
	return httpx.HTML(status, body), nil
}
