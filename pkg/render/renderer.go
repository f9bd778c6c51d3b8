package render

import (
	"fmt"
	"html"
	"html/template"
	"maps"
	"reflect"
	"strconv"
	"strings"
	"sync"
)

// Renderer renders a named template with data merged over the engine globals.
type Renderer interface {
	Render(name string, data map[string]any) (string, error)
	AddGlobal(key string, value any)
}

// Safe marks a string as trusted HTML for the fallback engine.
type Safe string

type globals struct {
	mu   sync.RWMutex
	vars map[string]any
}

func (g *globals) AddGlobal(key string, value any) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.vars == nil {
		g.vars = make(map[string]any)
	}
	g.vars[key] = value
}

// merge returns globals overlaid with data.
func (g *globals) merge(data map[string]any) map[string]any {
	g.mu.RLock()
	out := make(map[string]any, len(g.vars)+len(data))
	maps.Copy(out, g.vars)
	g.mu.RUnlock()
	maps.Copy(out, data)
	return out
}

// lookup resolves "name" or "name.field" in ctx.
func lookup(ctx map[string]any, path []string) (any, bool) {
	v, ok := ctx[path[0]]
	if !ok {
		return nil, false
	}
	if len(path) == 1 {
		return v, true
	}
	return field(v, path[1])
}

func field(v any, name string) (any, bool) {
	switch m := v.(type) {
	case map[string]any:
		f, ok := m[name]
		return f, ok
	case map[string]string:
		f, ok := m[name]
		return f, ok
	}

	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return nil, false
		}
		rv = rv.Elem()
	}
	switch rv.Kind() {
	case reflect.Struct:
		f := rv.FieldByName(name)
		if !f.IsValid() || !f.CanInterface() {
			f = rv.FieldByNameFunc(func(n string) bool { return strings.EqualFold(n, strings.ReplaceAll(name, "_", "")) })
		}
		if f.IsValid() && f.CanInterface() {
			return f.Interface(), true
		}
	case reflect.Map:
		if rv.Type().Key().Kind() == reflect.String {
			f := rv.MapIndex(reflect.ValueOf(name).Convert(rv.Type().Key()))
			if f.IsValid() {
				return f.Interface(), true
			}
		}
	}
	return nil, false
}

// stringify renders scalars; collections and unknown values render empty.
// Plain strings are escaped, Safe and template.HTML are trusted. Named
// scalar types and pointers to scalars render through their kind.
func stringify(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case Safe:
		return string(s)
	case template.HTML:
		return string(s)
	case string:
		return html.EscapeString(s)
	case fmt.Stringer:
		return html.EscapeString(s.String())
	case error:
		return html.EscapeString(s.Error())
	case bool, int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64:
		return fmt.Sprint(s)
	}

	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return ""
		}
		rv = rv.Elem()
	}
	if rv.CanInterface() {
		switch e := rv.Interface().(type) {
		case fmt.Stringer:
			return html.EscapeString(e.String())
		case error:
			return html.EscapeString(e.Error())
		}
	}
	switch rv.Kind() {
	case reflect.String:
		return html.EscapeString(rv.String())
	case reflect.Bool:
		return strconv.FormatBool(rv.Bool())
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(rv.Int(), 10)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return strconv.FormatUint(rv.Uint(), 10)
	case reflect.Float32, reflect.Float64:
		return strconv.FormatFloat(rv.Float(), 'g', -1, rv.Type().Bits())
	}
	return ""
}
