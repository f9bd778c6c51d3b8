// Package mailer sends transactional email rendered from Markdown templates.
//
// A template is a Markdown file with optional YAML front matter. The body is a
// text/template executed with the caller's data, converted to HTML by goldmark
// and wrapped in an html/template layout:
//
//	---
//	subject: "New inquiry from {{.Name}}"
//	---
//	**{{.Name}}** ({{.Email}}) asked about {{.Treatment}}.
//
// Delivery goes through a Sender: resend.Sender in production, LogSender when
// no provider is configured.
package mailer
