package mailer

import (
	"bytes"
	"fmt"
	"html/template"
	"io/fs"
	"path"
	"sync"
	texttemplate "text/template"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

// Renderer turns Markdown templates into HTML and plain text. Parsed
// templates and layouts are cached; rendered output is not.
type Renderer struct {
	fs        fs.FS
	md        goldmark.Markdown
	templates map[string]*parsedTemplate
	layouts   map[string]*template.Template
	layoutDir string
	mu        sync.RWMutex
}

type parsedTemplate struct {
	metadata map[string]any
	tmpl     *texttemplate.Template
}

// Result is a rendered message.
type Result struct {
	Metadata map[string]any
	HTML     string
	Text     string
}

// NewRenderer reads templates from the root of fsys and layouts from
// fsys/layouts.
func NewRenderer(fsys fs.FS) *Renderer {
	return &Renderer{
		fs:        fsys,
		md:        goldmark.New(goldmark.WithExtensions(extension.Linkify, extension.Table)),
		templates: make(map[string]*parsedTemplate),
		layouts:   make(map[string]*template.Template),
		layoutDir: "layouts",
	}
}

// Render executes name with data, converts it to HTML and wraps it in layout.
// The plain-text part is the executed Markdown.
func (r *Renderer) Render(layout, name string, data any) (*Result, error) {
	t, err := r.template(name)
	if err != nil {
		return nil, err
	}

	var markdown bytes.Buffer
	if err := t.tmpl.Execute(&markdown, data); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrRenderFailed, name, err)
	}

	var body bytes.Buffer
	if err := r.md.Convert(markdown.Bytes(), &body); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrRenderFailed, name, err)
	}

	l, err := r.layout(layout)
	if err != nil {
		return nil, err
	}
	var out bytes.Buffer
	if err := l.Execute(&out, map[string]any{
		"Content":  template.HTML(body.String()),
		"Metadata": t.metadata,
	}); err != nil {
		return nil, fmt.Errorf("%w: layout %s: %v", ErrRenderFailed, layout, err)
	}

	return &Result{HTML: out.String(), Text: markdown.String(), Metadata: t.metadata}, nil
}

func (r *Renderer) template(name string) (*parsedTemplate, error) {
	r.mu.RLock()
	t, ok := r.templates[name]
	r.mu.RUnlock()
	if ok {
		return t, nil
	}

	content, err := fs.ReadFile(r.fs, name)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrTemplateNotFound, name, err)
	}
	parsed, err := ParseTemplate(content)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	tmpl, err := texttemplate.New(name).Parse(parsed.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrRenderFailed, name, err)
	}

	t = &parsedTemplate{metadata: parsed.Metadata, tmpl: tmpl}
	r.mu.Lock()
	r.templates[name] = t
	r.mu.Unlock()
	return t, nil
}

func (r *Renderer) layout(name string) (*template.Template, error) {
	r.mu.RLock()
	l, ok := r.layouts[name]
	r.mu.RUnlock()
	if ok {
		return l, nil
	}

	content, err := fs.ReadFile(r.fs, path.Join(r.layoutDir, name))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrLayoutNotFound, name, err)
	}
	l, err = template.New(name).Parse(string(content))
	if err != nil {
		return nil, fmt.Errorf("%w: layout %s: %v", ErrRenderFailed, name, err)
	}

	r.mu.Lock()
	r.layouts[name] = l
	r.mu.Unlock()
	return l, nil
}
