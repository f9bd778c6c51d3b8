package i18n

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/cureconnect/portal/pkg/cache"
	"github.com/cureconnect/portal/pkg/logger"
)

type table = map[string]string

// Translator resolves keys against per-language tables read from an fs.FS.
// It holds no per-request state and is safe for concurrent use.
type Translator struct {
	fsys   fs.FS
	tables *cache.Memory[table]
	log    *slog.Logger
}

// Option configures a Translator.
type Option func(*Translator)

// WithLogger sets the logger used to report unreadable tables.
func WithLogger(l *slog.Logger) Option {
	return func(t *Translator) { t.log = l }
}

// New returns a Translator over fsys, whose root holds {lang}.json files.
func New(fsys fs.FS, opts ...Option) *Translator {
	t := &Translator{
		fsys:   fsys,
		tables: cache.NewMemory[table](cache.WithDefaultTTL(-1), cache.WithSweepInterval(0)),
		log:    logger.NewNope(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Translate returns the text for key in lang with {name} and {{name}}
// placeholders replaced from params. Unknown languages use Default; unknown
// keys are returned unchanged.
func (t *Translator) Translate(lang, key string, params map[string]any) string {
	msg, ok := t.table(Normalize(lang))[key]
	if !ok {
		msg = key
	}
	return ReplacePlaceholders(msg, params)
}

// ClearCache drops every loaded table; the next lookup re-reads the files.
func (t *Translator) ClearCache() {
	_ = t.tables.Clear(context.Background())
}

// Close releases the table cache.
func (t *Translator) Close() error {
	return t.tables.Close()
}

func (t *Translator) table(lang string) table {
	tbl, err := cache.GetOrLoad(context.Background(), t.tables, lang, 0, func(context.Context) (table, error) {
		tbl, err := t.load(lang)
		if errors.Is(err, fs.ErrNotExist) && lang != Default {
			tbl, err = t.load(Default)
		}
		if errors.Is(err, fs.ErrNotExist) {
			return table{}, nil
		}
		return tbl, err
	})
	if err != nil {
		t.log.Warn("translation table unavailable", slog.String("lang", lang), slog.Any("error", err))
		return table{}
	}
	return tbl
}

func (t *Translator) load(lang string) (table, error) {
	if t.fsys == nil {
		return nil, fs.ErrNotExist
	}
	candidates := []struct {
		name      string
		unmarshal func([]byte, any) error
	}{
		{lang + ".json", json.Unmarshal},
		{lang + ".yaml", yaml.Unmarshal},
	}
	for _, c := range candidates {
		data, err := fs.ReadFile(t.fsys, c.name)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("reading %q: %w", c.name, err)
		}
		var raw map[string]any
		if err := c.unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("%w: parsing %q: %s", ErrInvalidFile, c.name, err)
		}
		out := make(table)
		flatten(raw, "", out)
		return out, nil
	}
	return nil, fs.ErrNotExist
}

func flatten(in map[string]any, prefix string, out table) {
	for k, v := range in {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		switch val := v.(type) {
		case map[string]any:
			flatten(val, key, out)
		case string:
			out[key] = val
		case nil:
		default:
			out[key] = fmt.Sprint(val)
		}
	}
}

// ReplacePlaceholders substitutes {name} and {{name}} in msg.
func ReplacePlaceholders(msg string, params map[string]any) string {
	if len(params) == 0 || !strings.Contains(msg, "{") {
		return msg
	}
	pairs := make([]string, 0, len(params)*4)
	for k, v := range params {
		s := fmt.Sprint(v)
		pairs = append(pairs, "{{"+k+"}}", s, "{"+k+"}", s)
	}
	return strings.NewReplacer(pairs...).Replace(msg)
}

// Locale binds a Translator to one language for use in templates.
type Locale struct {
	t    *Translator
	Lang string
}

// For returns a Locale for lang.
func (t *Translator) For(lang string) Locale {
	return Locale{t: t, Lang: Normalize(lang)}
}

// T translates key. An optional single map supplies placeholder values.
func (l Locale) T(key string, params ...map[string]any) string {
	var p map[string]any
	if len(params) > 0 {
		p = params[0]
	}
	return l.t.Translate(l.Lang, key, p)
}

// Dir returns the text direction of the locale.
func (l Locale) Dir() string { return Direction(l.Lang) }
