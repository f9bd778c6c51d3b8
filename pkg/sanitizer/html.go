// Package sanitizer cleans user-supplied and stored HTML with bluemonday
// policies.
package sanitizer

import (
	"html"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	strictPolicy  *bluemonday.Policy
	articlePolicy *bluemonday.Policy
	initOnce      sync.Once
)

func initPolicies() {
	initOnce.Do(func() {
		strictPolicy = bluemonday.StrictPolicy()

		// Article bodies come from Markdown and keep headings, tables and images.
		articlePolicy = bluemonday.UGCPolicy()
		articlePolicy.AllowElements("h1", "h2", "h3", "h4", "figure", "figcaption")
		articlePolicy.RequireNoFollowOnLinks(true)
		articlePolicy.AddTargetBlankToFullyQualifiedLinks(true)
	})
}

// StripHTML removes every tag and returns plain text with entities decoded.
func StripHTML(s string) string {
	initPolicies()
	return strings.TrimSpace(html.UnescapeString(strictPolicy.Sanitize(s)))
}

// SanitizeArticle keeps the formatting an article body needs and removes
// scripts, event handlers and javascript: URLs.
func SanitizeArticle(s string) string {
	initPolicies()
	return articlePolicy.Sanitize(s)
}
