package config

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/viper"
)

// Parser reads one configuration file into a generic map.
type Parser interface {
	Parse(path string) (map[string]any, error)
}

// ViperParser reads any format viper understands (YAML, JSON, TOML).
type ViperParser struct{}

func (ViperParser) Parse(path string) (map[string]any, error) {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrParse, path, err)
	}
	return v.AllSettings(), nil
}

// SimpleParser understands the two-level "key: value" YAML subset used by the
// shipped files: top-level scalars, one level of indented children, comments
// and quoted strings. It has no dependencies beyond the standard library.
type SimpleParser struct{}

func (SimpleParser) Parse(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrParse, path, err)
	}

	out := make(map[string]any)
	var section map[string]any
	sc := bufio.NewScanner(bytes.NewReader(data))
	for n := 1; sc.Scan(); n++ {
		line := sc.Text()
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") || trimmed == "---" {
			continue
		}
		key, raw, ok := strings.Cut(trimmed, ":")
		if !ok {
			return nil, fmt.Errorf("%w: %s:%d: expected key: value", ErrParse, path, n)
		}
		key = strings.ToLower(strings.TrimSpace(key))
		raw = strings.TrimSpace(raw)
		indented := line[0] == ' ' || line[0] == '\t'

		switch {
		case !indented && raw == "":
			section = make(map[string]any)
			out[key] = section
		case !indented:
			section = nil
			out[key] = scalar(raw)
		case section != nil:
			section[key] = scalar(raw)
		default:
			return nil, fmt.Errorf("%w: %s:%d: unexpected indentation", ErrParse, path, n)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrParse, path, err)
	}
	return out, nil
}

func scalar(raw string) any {
	if len(raw) >= 2 && (raw[0] == '"' || raw[0] == '\'') && raw[len(raw)-1] == raw[0] {
		return raw[1 : len(raw)-1]
	}
	if i := strings.Index(raw, " #"); i >= 0 {
		raw = strings.TrimSpace(raw[:i])
	}
	switch strings.ToLower(raw) {
	case "true", "yes", "on":
		return true
	case "false", "no", "off":
		return false
	case "null", "~":
		return nil
	}
	if n, err := strconv.Atoi(raw); err == nil {
		return n
	}
	return raw
}
