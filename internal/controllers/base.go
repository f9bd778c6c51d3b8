package controllers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/cureconnect/portal/internal"
	"github.com/cureconnect/portal/pkg/httpx"
	"github.com/cureconnect/portal/pkg/sanitizer"
)

// base holds the helpers every controller shares.
type base struct {
	app *internal.Application
}

// render renders a page with the shared view data. status defaults to 200.
func (b base) render(c *internal.Context, name string, data map[string]any, status ...int) (*httpx.Response, error) {
	code := http.StatusOK
	if len(status) > 0 {
		code = status[0]
	}
	return c.Render(code, name, data)
}

func (b base) json(status int, v any) (*httpx.Response, error) {
	return httpx.JSON(status, v), nil
}

// redirect answers with 302 Found.
func (b base) redirect(url string) (*httpx.Response, error) {
	return httpx.Redirect(url, http.StatusFound), nil
}

func (b base) trans(c *internal.Context, key string, params ...map[string]any) string {
	return c.T(key, params...)
}

// metaTags returns the SEO and social tags for a page. og_url is the request
// URI.
func (b base) metaTags(c *internal.Context, title, description, keywords, image string) map[string]any {
	return map[string]any{
		"title":               title,
		"description":         description,
		"keywords":            keywords,
		"og_title":            title,
		"og_description":      description,
		"og_image":            image,
		"og_url":              c.Request().URI(),
		"twitter_title":       title,
		"twitter_description": description,
	}
}

// asset returns the absolute URL of a file under the assets root.
func (b base) asset(path string) string {
	return strings.TrimRight(b.app.Config().App.AssetsURL, "/") + "/" + strings.TrimLeft(path, "/")
}

// form returns a submitted field as plain text: trimmed, without markup.
func form(c *internal.Context, key string) string {
	return sanitizer.StripHTML(c.Request().Form(key, ""))
}

// queryID parses the positive integer id query parameter; 0 means absent or
// invalid.
func queryID(c *internal.Context) int64 {
	id, err := strconv.ParseInt(strings.TrimSpace(c.Request().Query("id", "")), 10, 64)
	if err != nil || id < 0 {
		return 0
	}
	return id
}

func queryInt(c *internal.Context, key string, def int) int {
	n, err := strconv.Atoi(c.Request().Query(key, ""))
	if err != nil || n <= 0 {
		return def
	}
	return n
}
