package render

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"path"
	"strconv"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/cureconnect/portal/pkg/cache"
	"github.com/cureconnect/portal/pkg/i18n"
	"github.com/cureconnect/portal/pkg/logger"
	"github.com/cureconnect/portal/pkg/sanitizer"
)

// LayoutFile is the layout every HTML page template builds on.
const LayoutFile = "base.gohtml"

// Translator is the subset of i18n.Translator the HTML engine needs.
type Translator interface {
	Translate(lang, key string, params map[string]any) string
}

// HTMLEngine renders html/template files. A page template invokes the layout
// and defines the blocks it fills:
//
//	{{template "base.gohtml" .}}
//	{{define "content"}}<h1>{{.title}}</h1>{{end}}
//
// Shared partials under shared/ are parsed with every page.
type HTMLEngine struct {
	globals
	fsys  fs.FS
	tr    Translator
	log   *slog.Logger
	sets  *cache.Memory[*template.Template]
	cache bool
}

// HTMLOption configures an HTMLEngine.
type HTMLOption func(*HTMLEngine)

// WithTranslator enables the t helper.
func WithTranslator(tr Translator) HTMLOption {
	return func(h *HTMLEngine) { h.tr = tr }
}

// WithTemplateCache keeps parsed template sets between renders.
func WithTemplateCache(enabled bool) HTMLOption {
	return func(h *HTMLEngine) { h.cache = enabled }
}

// WithHTMLLogger sets the logger.
func WithHTMLLogger(l *slog.Logger) HTMLOption {
	return func(h *HTMLEngine) { h.log = l }
}

// NewHTMLEngine returns an engine over fsys or ErrNoTemplates when the layout
// is missing.
func NewHTMLEngine(fsys fs.FS, opts ...HTMLOption) (*HTMLEngine, error) {
	if fsys == nil {
		return nil, ErrNoTemplates
	}
	if _, err := fs.Stat(fsys, LayoutFile); err != nil {
		return nil, errors.Join(ErrNoTemplates, err)
	}
	h := &HTMLEngine{
		fsys: fsys,
		log:  logger.NewNope(),
		sets: cache.NewMemory[*template.Template](cache.WithDefaultTTL(-1), cache.WithSweepInterval(0)),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h, nil
}

// HasLayout reports whether fsys carries the HTML layout.
func HasLayout(fsys fs.FS) bool {
	if fsys == nil {
		return false
	}
	_, err := fs.Stat(fsys, LayoutFile)
	return err == nil
}

// Render executes the page template name (without extension).
func (h *HTMLEngine) Render(name string, data map[string]any) (string, error) {
	file := strings.TrimPrefix(path.Clean("/"+name), "/") + ".gohtml"
	ctx := h.merge(data)
	lang := i18n.Normalize(str(ctx, "lang"))

	set, err := h.set(file)
	if err != nil {
		return "", err
	}
	tpl, err := set.Clone()
	if err != nil {
		return "", err
	}
	tpl.Funcs(h.langFuncs(lang, ctx))

	var buf bytes.Buffer
	if err := tpl.ExecuteTemplate(&buf, path.Base(file), ctx); err != nil {
		return "", fmt.Errorf("render: %s: %w", file, err)
	}
	return buf.String(), nil
}

func (h *HTMLEngine) set(file string) (*template.Template, error) {
	parse := func(context.Context) (*template.Template, error) {
		if _, err := fs.Stat(h.fsys, file); err != nil {
			return nil, fmt.Errorf("%w: %s", ErrTemplateNotFound, file)
		}
		patterns := []string{LayoutFile}
		if shared, _ := fs.Glob(h.fsys, "shared/*.gohtml"); len(shared) > 0 {
			patterns = append(patterns, "shared/*.gohtml")
		}
		patterns = append(patterns, file)
		return template.New(path.Base(file)).Funcs(h.langFuncs(i18n.Default, nil)).ParseFS(h.fsys, patterns...)
	}
	if !h.cache {
		return parse(context.Background())
	}
	return cache.GetOrLoad(context.Background(), h.sets, file, 0, parse)
}

// ClearCache drops parsed template sets.
func (h *HTMLEngine) ClearCache() {
	_ = h.sets.Clear(context.Background())
}

// Close releases the template cache.
func (h *HTMLEngine) Close() error {
	return h.sets.Close()
}

func (h *HTMLEngine) langFuncs(lang string, ctx map[string]any) template.FuncMap {
	assets := strings.TrimRight(str(ctx, "assets_url"), "/")
	base := strings.TrimRight(str(ctx, "base_url"), "/")
	return template.FuncMap{
		"t": func(key string, params ...any) string {
			if h.tr == nil {
				return key
			}
			return h.tr.Translate(lang, key, pairs(params))
		},
		"dir": func() string { return i18n.Direction(lang) },
		"formatNumber": func(n any, decimals ...int) string {
			d := 0
			if len(decimals) > 0 {
				d = decimals[0]
			}
			return i18n.FormatNumber(toFloat(n), d, lang)
		},
		"formatCurrency": func(amount any, code string) string {
			return i18n.FormatCurrency(toFloat(amount), code, lang)
		},
		"formatDate": func(date any) string {
			return i18n.FormatDate(fmt.Sprint(date), lang)
		},
		"markdown": h.markdown,
		"asset": func(p string) string {
			return assets + "/" + strings.TrimLeft(p, "/")
		},
		"url": func(p string) string {
			return base + "/" + strings.TrimLeft(p, "/")
		},
		"langURL": func(uri, code string) string {
			return withQuery(uri, "lang", code)
		},
		"add": func(a, b int) int { return a + b },
		"sub": func(a, b int) int { return a - b },
		"seq": func(from, to int) []int {
			var out []int
			for i := from; i <= to; i++ {
				out = append(out, i)
			}
			return out
		},
	}
}

func (h *HTMLEngine) markdown(src string) template.HTML {
	out, err := Markdown(src)
	if err != nil {
		h.log.Warn("markdown conversion failed", slog.Any("error", err))
	}
	return out
}

var markdownEngine = goldmark.New(goldmark.WithExtensions(extension.GFM))

// Markdown converts src to sanitized HTML. On failure it returns src escaped
// together with the error.
func Markdown(src string) (template.HTML, error) {
	var buf bytes.Buffer
	if err := markdownEngine.Convert([]byte(src), &buf); err != nil {
		return template.HTML(template.HTMLEscapeString(src)), err
	}
	return template.HTML(sanitizer.SanitizeArticle(buf.String())), nil
}

// pairs turns "k1", v1, "k2", v2 into a map.
func pairs(kv []any) map[string]any {
	if len(kv) == 0 {
		return nil
	}
	if m, ok := kv[0].(map[string]any); ok && len(kv) == 1 {
		return m
	}
	out := make(map[string]any, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		out[fmt.Sprint(kv[i])] = kv[i+1]
	}
	return out
}

func str(ctx map[string]any, key string) string {
	s, _ := ctx[key].(string)
	return s
}

func toFloat(v any) float64 {
	switch n := v.(type) {
	case int:
		return float64(n)
	case int64:
		return float64(n)
	case float64:
		return n
	case float32:
		return float64(n)
	case string:
		f, _ := strconv.ParseFloat(n, 64)
		return f
	}
	f, _ := strconv.ParseFloat(fmt.Sprint(v), 64)
	return f
}

// withQuery sets key=value on the query of uri.
func withQuery(uri, key, value string) string {
	p, q, _ := strings.Cut(uri, "?")
	var kept []string
	for kv := range strings.SplitSeq(q, "&") {
		if kv == "" || strings.HasPrefix(kv, key+"=") || kv == key {
			continue
		}
		kept = append(kept, kv)
	}
	kept = append(kept, key+"="+value)
	if p == "" {
		p = "/"
	}
	return p + "?" + strings.Join(kept, "&")
}

var _ Renderer = (*HTMLEngine)(nil)
