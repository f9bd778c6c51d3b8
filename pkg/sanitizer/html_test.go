package sanitizer_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/cureconnect/portal/pkg/sanitizer"
)

func TestStripHTML(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain text", "Knee replacement", "Knee replacement"},
		{"tags removed", "<b>Heart</b> surgery", "Heart surgery"},
		{"script dropped", `<script>alert("x")</script>Hello`, "Hello"},
		{"entities decoded", "Tom &amp; Jerry", "Tom & Jerry"},
		{"trimmed", "  <p>spaced</p>  ", "spaced"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, sanitizer.StripHTML(tt.input))
		})
	}
}

func TestSanitizeArticle(t *testing.T) {
	t.Parallel()

	out := sanitizer.SanitizeArticle(`<h2>Recovery</h2><p onclick="x()">Rest <a href="javascript:alert(1)">here</a></p><img src="/a.png" alt="ward">`)

	assert.Contains(t, out, "<h2>Recovery</h2>")
	assert.Contains(t, out, `<img src="/a.png" alt="ward">`)
	assert.NotContains(t, out, "onclick")
	assert.NotContains(t, out, "javascript:")
}
