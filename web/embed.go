// Package web embeds the portal's templates, translations, mail templates
// and static assets.
package web

import (
	"embed"
	"io/fs"
)

//go:embed templates
var templates embed.FS

//go:embed lang
var lang embed.FS

//go:embed mail
var mail embed.FS

//go:embed static
var static embed.FS

// Templates returns the page templates: base.gohtml with shared/ partials
// for the html engine, *.twig for the fallback engine.
func Templates() fs.FS { return sub(templates, "templates") }

// Lang returns the translation tables, one {lang}.json or {lang}.yaml each.
func Lang() fs.FS { return sub(lang, "lang") }

// Mail returns the Markdown mail templates and their layouts/.
func Mail() fs.FS { return sub(mail, "mail") }

// Static returns the files served under /assets/.
func Static() fs.FS { return sub(static, "static") }

func sub(fsys embed.FS, dir string) fs.FS {
	out, err := fs.Sub(fsys, dir)
	if err != nil {
		// Only reachable when the embed directive and dir disagree.
		panic(err)
	}
	return out
}
