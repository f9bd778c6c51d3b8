package render

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path"
	"strings"
	"sync"

	"github.com/cureconnect/portal/pkg/logger"
)

// maxInheritanceDepth bounds extends chains.
const maxInheritanceDepth = 10

// Engine is the fallback renderer for the Twig-like subset described in the
// package documentation.
type Engine struct {
	globals
	fsys   fs.FS
	ext    string
	log    *slog.Logger
	strict bool
	cache  bool

	mu     sync.RWMutex
	parsed map[string]*parsed
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithExtension sets the file extension appended to logical names.
func WithExtension(ext string) EngineOption {
	return func(e *Engine) { e.ext = ext }
}

// WithStrict makes unknown {% %} directives an error instead of stripping them.
func WithStrict(strict bool) EngineOption {
	return func(e *Engine) { e.strict = strict }
}

// WithCache keeps parsed templates in memory.
func WithCache(enabled bool) EngineOption {
	return func(e *Engine) { e.cache = enabled }
}

// WithEngineLogger sets the logger for stripped directives.
func WithEngineLogger(l *slog.Logger) EngineOption {
	return func(e *Engine) { e.log = l }
}

// NewEngine returns a fallback Engine reading templates from fsys.
func NewEngine(fsys fs.FS, opts ...EngineOption) *Engine {
	e := &Engine{
		fsys:   fsys,
		ext:    ".twig",
		log:    logger.NewNope(),
		parsed: make(map[string]*parsed),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Render renders name with data over the globals.
func (e *Engine) Render(name string, data map[string]any) (string, error) {
	chain, err := e.chain(name)
	if err != nil {
		return "", err
	}

	// Nearest definition wins: the child first, then each ancestor.
	overrides := make(map[string]*blockNode)
	for _, t := range chain {
		for bn, b := range t.blocks {
			if _, ok := overrides[bn]; !ok {
				overrides[bn] = b
			}
		}
	}

	ctx := e.merge(data)
	var b strings.Builder
	e.write(&b, chain[len(chain)-1].nodes, overrides, ctx)
	return b.String(), nil
}

// chain returns name followed by its ancestors.
func (e *Engine) chain(name string) ([]*parsed, error) {
	t, err := e.load(name)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrTemplateNotFound, e.file(name))
	}
	if err != nil {
		return nil, err
	}

	chain := []*parsed{t}
	visited := map[string]bool{e.file(name): true}
	for t.extends != "" {
		parent := e.file(t.extends)
		if visited[parent] {
			return nil, fmt.Errorf("%w: %s extends %s", ErrInheritanceCycle, t.name, parent)
		}
		if len(chain) >= maxInheritanceDepth {
			return nil, fmt.Errorf("%w: deeper than %d levels at %s", ErrInheritanceCycle, maxInheritanceDepth, parent)
		}
		visited[parent] = true

		next, err := e.load(t.extends)
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s (extended by %s)", ErrBaseTemplateNotFound, parent, t.name)
		}
		if err != nil {
			return nil, err
		}
		chain = append(chain, next)
		t = next
	}
	return chain, nil
}

func (e *Engine) write(b *strings.Builder, nodes []node, overrides map[string]*blockNode, ctx map[string]any) {
	for _, n := range nodes {
		switch n := n.(type) {
		case textNode:
			b.WriteString(n.text)
		case varNode:
			if v, ok := lookup(ctx, n.path); ok {
				b.WriteString(stringify(v))
			}
		case *blockNode:
			body := n
			if o, ok := overrides[n.name]; ok {
				body = o
			}
			e.write(b, body.nodes, overrides, ctx)
		}
	}
}

func (e *Engine) file(name string) string {
	name = strings.TrimPrefix(path.Clean("/"+name), "/")
	if e.ext != "" && !strings.HasSuffix(name, e.ext) {
		name += e.ext
	}
	return name
}

func (e *Engine) load(name string) (*parsed, error) {
	file := e.file(name)
	if e.cache {
		e.mu.RLock()
		t, ok := e.parsed[file]
		e.mu.RUnlock()
		if ok {
			return t, nil
		}
	}

	if e.fsys == nil {
		return nil, fs.ErrNotExist
	}
	src, err := fs.ReadFile(e.fsys, file)
	if err != nil {
		return nil, err
	}
	t, err := parse(file, string(src), e.strict)
	if err != nil {
		return nil, err
	}
	for _, kw := range t.skipped {
		e.log.Debug("template directive stripped", slog.String("template", file), slog.String("directive", kw))
	}

	if e.cache {
		e.mu.Lock()
		e.parsed[file] = t
		e.mu.Unlock()
	}
	return t, nil
}

var _ Renderer = (*Engine)(nil)
