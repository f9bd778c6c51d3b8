// Package render turns named templates and a data map into HTML.
//
// Two engines implement Renderer:
//
//   - HTMLEngine is the primary engine. It uses html/template with a
//     base.gohtml layout that page templates fill through {{define}} blocks,
//     and exposes translation and formatting helpers to templates.
//   - Engine is the dependency-free fallback used when the primary layout is
//     absent. It understands a small Twig-like subset:
//
//     {% extends "base" %}
//     {% block main %}default{% endblock %}
//     {{ title }} {{ page.heading }}
//     {# comment #}
//
// Template names are logical ("pages/home"); each engine appends its file
// extension.
package render
