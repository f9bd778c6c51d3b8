package render

import "errors"

var (
	ErrTemplateNotFound     = errors.New("render: template not found")
	ErrBaseTemplateNotFound = errors.New("render: base template not found")
	ErrSyntax               = errors.New("render: syntax error")
	ErrUnterminatedBlock    = errors.New("render: unterminated block")
	ErrInheritanceCycle     = errors.New("render: inheritance cycle")
	ErrUnknownDirective     = errors.New("render: unknown directive")
	ErrNoTemplates          = errors.New("render: template root unavailable")
)
