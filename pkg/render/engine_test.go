package render_test

import (
	"errors"
	"testing"
	"testing/fstest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cureconnect/portal/pkg/render"
)

func file(s string) *fstest.MapFile { return &fstest.MapFile{Data: []byte(s)} }

func TestEngine_ChildBlockReplacesParent(t *testing.T) {
	t.Parallel()

	e := render.NewEngine(fstest.MapFS{
		"base.twig":  file(`<html><body>{% block main %}DEFAULT{% endblock %}</body></html>`),
		"child.twig": file(`{% extends "base" %}{% block main %}HELLO{% endblock %}`),
	})

	out, err := e.Render("child", nil)
	require.NoError(t, err)
	assert.Equal(t, "<html><body>HELLO</body></html>", out)
	assert.NotContains(t, out, "DEFAULT")
}

func TestEngine_InheritanceKeepsParentContent(t *testing.T) {
	t.Parallel()

	e := render.NewEngine(fstest.MapFS{
		"base.twig": file("<title>{% block title %}Site{% endblock %}</title>\n<nav>menu</nav>\n{% block content %}placeholder{% endblock %}\n<footer>{{ app_name }}</footer>"),
		"pages/home.twig": file("{# home page #}\n{% extends 'base' %}\nignored text outside blocks\n" +
			"{% block content %}<h1>{{ title }}</h1>{% endblock content %}"),
	})
	e.AddGlobal("app_name", "CureConnect")

	out, err := e.Render("pages/home", map[string]any{"title": "Welcome"})
	require.NoError(t, err)
	assert.Equal(t, "<title>Site</title>\n<nav>menu</nav>\n<h1>Welcome</h1>\n<footer>CureConnect</footer>", out)
	assert.NotContains(t, out, "ignored text")
	assert.NotContains(t, out, "placeholder")
}

func TestEngine_ChildOnlyBlocksAreDropped(t *testing.T) {
	t.Parallel()

	e := render.NewEngine(fstest.MapFS{
		"base.twig":  file(`[{% block a %}A{% endblock %}]`),
		"child.twig": file(`{% extends "base" %}{% block a %}a{% endblock %}{% block extra %}EXTRA{% endblock %}`),
	})

	out, err := e.Render("child", nil)
	require.NoError(t, err)
	assert.Equal(t, "[a]", out)
}

func TestEngine_MultiLevelInheritance(t *testing.T) {
	t.Parallel()

	e := render.NewEngine(fstest.MapFS{
		"base.twig":   file(`<{% block body %}{% block head %}H{% endblock %}|{% block main %}M{% endblock %}{% endblock %}>`),
		"layout.twig": file(`{% extends "base" %}{% block head %}LAYOUT{% endblock %}`),
		"page.twig":   file(`{% extends "layout" %}{% block main %}PAGE{% endblock %}`),
	})

	out, err := e.Render("page", nil)
	require.NoError(t, err)
	assert.Equal(t, "<LAYOUT|PAGE>", out)
}

func TestEngine_Substitution(t *testing.T) {
	t.Parallel()

	type doctor struct {
		Name      string
		Specialty string
	}

	e := render.NewEngine(fstest.MapFS{
		"vars.twig":  file(`{{ name }}|{{ config.app }}|{{ labels.cta }}|{{ doc.Name }}|{{ doc.specialty }}|{{ missing }}|{{ config.missing }}|{{ count }}|{{ html }}|{{ safe }}|{{ list }}`),
		"plain.twig": file("no placeholders {here} at all\n"),
	})

	data := map[string]any{
		"name":   "Asha",
		"config": map[string]any{"app": "CureConnect"},
		"labels": map[string]string{"cta": "Book"},
		"doc":    &doctor{Name: "Dr. Rao", Specialty: "Cardiology"},
		"count":  3,
		"html":   "<b>x</b>",
		"safe":   render.Safe("<b>y</b>"),
		"list":   []string{"a"},
	}

	out, err := e.Render("vars", data)
	require.NoError(t, err)
	assert.Equal(t, "Asha|CureConnect|Book|Dr. Rao|Cardiology|||3|&lt;b&gt;x&lt;/b&gt;|<b>y</b>|", out)
	assert.NotContains(t, out, "{{")

	plain, err := e.Render("plain", data)
	require.NoError(t, err)
	assert.Equal(t, "no placeholders {here} at all\n", plain)
}

func TestEngine_NamedScalars(t *testing.T) {
	t.Parallel()

	type status string
	type count int
	type ratio float64
	slot := "10:30"
	var nilSlot *string

	e := render.NewEngine(fstest.MapFS{
		"scalars.twig": file(`[{{ s }}][{{ n }}][{{ r }}][{{ d }}][{{ e }}][{{ p }}][{{ np }}][{{ pn }}][{{ tag }}]`),
	})
	n := count(7)
	out, err := e.Render("scalars", map[string]any{
		"s":   status("<pending>"),
		"n":   count(3),
		"r":   ratio(0.5),
		"d":   2 * time.Second,
		"e":   errors.New("slot <taken>"),
		"p":   &slot,
		"np":  nilSlot,
		"pn":  &n,
		"tag": render.Safe("<i>ok</i>"),
	})
	require.NoError(t, err)
	assert.Equal(t, "[&lt;pending&gt;][3][0.5][2s][slot &lt;taken&gt;][10:30][][7][<i>ok</i>]", out)
}

func TestEngine_WhitespaceControl(t *testing.T) {
	t.Parallel()

	e := render.NewEngine(fstest.MapFS{
		"dash.twig":    file("A\n  {{- name -}}\n  B"),
		"tilde.twig":   file("A \t{{~ name ~}}  \nB"),
		"plain.twig":   file("A\n{{ name }}\nB"),
		"comment.twig": file("A\n{#- note -#}\nB"),
		"block.twig":   file("<p>\n  {%- block body -%}\n  x\n  {%- endblock -%}\n</p>"),
	})
	data := map[string]any{"name": "N"}

	for name, want := range map[string]string{
		"dash":    "ANB",
		"tilde":   "AN\nB",
		"plain":   "A\nN\nB",
		"comment": "AB",
		"block":   "<p>x</p>",
	} {
		out, err := e.Render(name, data)
		require.NoError(t, err, name)
		assert.Equal(t, want, out, name)
	}
}

func TestEngine_UnknownDirectives(t *testing.T) {
	t.Parallel()

	fsys := fstest.MapFS{"loop.twig": file(`a{% if x %}b{% endif %}c`)}

	out, err := render.NewEngine(fsys).Render("loop", nil)
	require.NoError(t, err)
	assert.Equal(t, "abc", out)

	_, err = render.NewEngine(fsys, render.WithStrict(true)).Render("loop", nil)
	require.ErrorIs(t, err, render.ErrUnknownDirective)
}

func TestEngine_Errors(t *testing.T) {
	t.Parallel()

	e := render.NewEngine(fstest.MapFS{
		"unterminated_var.twig": file(`hello {{ name`),
		"unterminated_tag.twig": file(`{% block main`),
		"unclosed_block.twig":   file(`{% block main %}x`),
		"stray_end.twig":        file(`x{% endblock %}`),
		"mismatched.twig":       file(`{% block a %}{% block b %}{% endblock a %}{% endblock %}`),
		"duplicate.twig":        file(`{% block a %}{% endblock %}{% block a %}{% endblock %}`),
		"late_extends.twig":     file(`text{% extends "base" %}`),
		"orphan.twig":           file(`{% extends "nowhere" %}`),
		"cycle_a.twig":          file(`{% extends "cycle_b" %}`),
		"cycle_b.twig":          file(`{% extends "cycle_a" %}`),
		"self.twig":             file(`{% extends "self" %}`),
	})

	tests := []struct {
		name string
		want error
	}{
		{"unterminated_var", render.ErrSyntax},
		{"unterminated_tag", render.ErrSyntax},
		{"unclosed_block", render.ErrUnterminatedBlock},
		{"stray_end", render.ErrSyntax},
		{"mismatched", render.ErrSyntax},
		{"duplicate", render.ErrSyntax},
		{"late_extends", render.ErrSyntax},
		{"orphan", render.ErrBaseTemplateNotFound},
		{"cycle_a", render.ErrInheritanceCycle},
		{"self", render.ErrInheritanceCycle},
		{"does/not/exist", render.ErrTemplateNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := e.Render(tt.name, nil)
			require.ErrorIs(t, err, tt.want)
		})
	}
}

func TestEngine_ErrorsNamePaths(t *testing.T) {
	t.Parallel()

	e := render.NewEngine(fstest.MapFS{"orphan.twig": file(`{% extends "layouts/main" %}`)})

	_, err := e.Render("orphan", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "layouts/main.twig")

	_, err = e.Render("missing/page", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing/page.twig")
}

func TestEngine_CacheAndGlobals(t *testing.T) {
	t.Parallel()

	fsys := fstest.MapFS{"g.twig": file(`{{ base_url }}/{{ page }}`)}
	e := render.NewEngine(fsys, render.WithCache(true))
	e.AddGlobal("base_url", "http://localhost:8001")
	e.AddGlobal("page", "global")

	out, err := e.Render("g", map[string]any{"page": "local"})
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8001/local", out, "data overrides globals")

	fsys["g.twig"] = file("changed")
	out, err = e.Render("g", nil)
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8001/global", out, "parsed template is cached")
}
