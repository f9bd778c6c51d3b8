package render

import (
	"fmt"
	"strconv"
	"strings"
)

type node interface{ isNode() }

type textNode struct{ text string }

type varNode struct {
	path []string
	raw  string
}

type blockNode struct {
	name  string
	nodes []node
}

func (textNode) isNode()   {}
func (varNode) isNode()    {}
func (*blockNode) isNode() {}

// parsed is one template file after parsing.
type parsed struct {
	name    string
	extends string
	nodes   []node
	blocks  map[string]*blockNode
	skipped []string
}

type parser struct {
	name   string
	strict bool
	out    *parsed
	stack  []*blockNode
	root   []node
	seen   bool
}

func parse(name, src string, strict bool) (*parsed, error) {
	toks, err := lex(name, src)
	if err != nil {
		return nil, err
	}

	p := &parser{
		name:   name,
		strict: strict,
		out:    &parsed{name: name, blocks: make(map[string]*blockNode)},
	}
	for _, t := range toks {
		if err := p.token(t); err != nil {
			return nil, err
		}
	}
	if len(p.stack) > 0 {
		open := p.stack[len(p.stack)-1]
		return nil, fmt.Errorf("%w: %s: block %q is never closed", ErrUnterminatedBlock, name, open.name)
	}
	p.out.nodes = p.root
	return p.out, nil
}

func (p *parser) emit(n node) {
	if len(p.stack) == 0 {
		p.root = append(p.root, n)
		return
	}
	top := p.stack[len(p.stack)-1]
	top.nodes = append(top.nodes, n)
}

func (p *parser) token(t token) error {
	switch t.kind {
	case tokComment:
		return nil
	case tokText:
		if strings.TrimSpace(t.val) != "" {
			p.seen = true
		}
		p.emit(textNode{text: t.val})
		return nil
	case tokVar:
		p.seen = true
		expr, _, _ := strings.Cut(t.val, "|")
		expr = strings.TrimSpace(expr)
		if expr == "" {
			return fmt.Errorf("%w: %s:%d: empty variable", ErrSyntax, p.name, t.line)
		}
		path := strings.SplitN(expr, ".", 2)
		p.emit(varNode{path: path, raw: expr})
		return nil
	}
	return p.tag(t)
}

func (p *parser) tag(t token) error {
	keyword, arg, _ := strings.Cut(t.val, " ")
	arg = strings.TrimSpace(arg)

	switch keyword {
	case "extends":
		if p.seen || p.out.extends != "" || len(p.stack) > 0 {
			return fmt.Errorf("%w: %s:%d: extends must be the first directive", ErrSyntax, p.name, t.line)
		}
		parent, err := strconv.Unquote(arg)
		if err != nil {
			parent = strings.Trim(arg, `"'`)
		}
		if parent == "" {
			return fmt.Errorf("%w: %s:%d: extends needs a template name", ErrSyntax, p.name, t.line)
		}
		p.out.extends = parent
		p.seen = true
		return nil

	case "block":
		p.seen = true
		if arg == "" || strings.ContainsAny(arg, " \t") {
			return fmt.Errorf("%w: %s:%d: invalid block name %q", ErrSyntax, p.name, t.line, arg)
		}
		if _, dup := p.out.blocks[arg]; dup {
			return fmt.Errorf("%w: %s:%d: duplicate block %q", ErrSyntax, p.name, t.line, arg)
		}
		b := &blockNode{name: arg}
		p.out.blocks[arg] = b
		p.emit(b)
		p.stack = append(p.stack, b)
		return nil

	case "endblock":
		if len(p.stack) == 0 {
			return fmt.Errorf("%w: %s:%d: endblock without block", ErrSyntax, p.name, t.line)
		}
		open := p.stack[len(p.stack)-1]
		if arg != "" && arg != open.name {
			return fmt.Errorf("%w: %s:%d: endblock %q closes block %q", ErrSyntax, p.name, t.line, arg, open.name)
		}
		p.stack = p.stack[:len(p.stack)-1]
		return nil
	}

	if p.strict {
		return fmt.Errorf("%w: %s:%d: %q", ErrUnknownDirective, p.name, t.line, keyword)
	}
	p.out.skipped = append(p.out.skipped, keyword)
	return nil
}
