package render

import (
	"fmt"
	"strings"
)

type tokenKind int

const (
	tokText tokenKind = iota
	tokVar
	tokTag
	tokComment
)

type token struct {
	val  string
	kind tokenKind
	line int

	// trimLeft and trimRight hold the whitespace set a "-" or "~" marker
	// strips from the neighbouring text.
	trimLeft, trimRight string
}

const (
	trimAll    = " \t\r\n"
	trimInline = " \t"
)

var delimiters = []struct {
	open, close string
	kind        tokenKind
}{
	{"{{", "}}", tokVar},
	{"{%", "%}", tokTag},
	{"{#", "#}", tokComment},
}

// lex splits src into text, variable, tag and comment tokens. A "-" next to
// a delimiter strips all whitespace from the adjacent text, a "~" strips
// spaces and tabs only.
func lex(name, src string) ([]token, error) {
	var toks []token
	line := 1
	for len(src) > 0 {
		i := strings.IndexByte(src, '{')
		if i < 0 {
			toks = append(toks, token{kind: tokText, val: src, line: line})
			break
		}
		if i+1 >= len(src) {
			toks = append(toks, token{kind: tokText, val: src, line: line})
			break
		}

		open := -1
		for d, delim := range delimiters {
			if strings.HasPrefix(src[i:], delim.open) {
				open = d
				break
			}
		}
		if open < 0 {
			toks = append(toks, token{kind: tokText, val: src[:i+1], line: line})
			line += strings.Count(src[:i+1], "\n")
			src = src[i+1:]
			continue
		}

		if i > 0 {
			toks = append(toks, token{kind: tokText, val: src[:i], line: line})
			line += strings.Count(src[:i], "\n")
		}
		delim := delimiters[open]
		rest := src[i+len(delim.open):]
		end := strings.Index(rest, delim.close)
		if end < 0 {
			return nil, fmt.Errorf("%w: %s:%d: unterminated %q", ErrSyntax, name, line, delim.open)
		}
		body := rest[:end]
		tok := token{kind: delim.kind, val: strings.TrimSpace(strings.Trim(body, "-~")), line: line}
		tok.trimLeft = trimSet(body, strings.HasPrefix)
		tok.trimRight = trimSet(body, strings.HasSuffix)
		toks = append(toks, tok)
		line += strings.Count(body, "\n")
		src = rest[end+len(delim.close):]
	}
	return trim(merge(toks)), nil
}

func trimSet(body string, has func(s, marker string) bool) string {
	switch {
	case has(body, "-"):
		return trimAll
	case has(body, "~"):
		return trimInline
	}
	return ""
}

// trim applies whitespace control to the text around marked tokens.
func trim(toks []token) []token {
	for i, t := range toks {
		if t.kind != tokText {
			continue
		}
		if i > 0 && toks[i-1].trimRight != "" {
			t.val = strings.TrimLeft(t.val, toks[i-1].trimRight)
		}
		if i+1 < len(toks) && toks[i+1].trimLeft != "" {
			t.val = strings.TrimRight(t.val, toks[i+1].trimLeft)
		}
		toks[i].val = t.val
	}
	return toks
}

// merge joins adjacent text tokens.
func merge(toks []token) []token {
	out := toks[:0]
	for _, t := range toks {
		if t.kind == tokText && len(out) > 0 && out[len(out)-1].kind == tokText {
			out[len(out)-1].val += t.val
			continue
		}
		out = append(out, t)
	}
	return out
}
