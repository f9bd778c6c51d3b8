package mailer

import (
	"bytes"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Template is a parsed template file: front matter plus Markdown body.
type Template struct {
	Metadata map[string]any
	Body     string
}

// ParseTemplate splits content into YAML front matter delimited by "---"
// lines and the remaining body. Content without front matter is all body.
func ParseTemplate(content []byte) (*Template, error) {
	delim := []byte("---")
	if !bytes.HasPrefix(content, delim) {
		return &Template{Metadata: map[string]any{}, Body: string(content)}, nil
	}

	rest := bytes.TrimLeft(bytes.TrimPrefix(content, delim), "\r\n")
	front, body, ok := bytes.Cut(rest, delim)
	if !ok {
		return nil, fmt.Errorf("%w: closing delimiter not found", ErrInvalidFrontmatter)
	}
	body = bytes.TrimPrefix(bytes.TrimPrefix(body, []byte("\r")), []byte("\n"))

	meta := map[string]any{}
	if len(bytes.TrimSpace(front)) > 0 {
		if err := yaml.Unmarshal(front, &meta); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidFrontmatter, err)
		}
	}
	return &Template{Metadata: meta, Body: string(body)}, nil
}
