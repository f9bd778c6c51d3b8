package controllers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/cureconnect/portal/internal"
	"github.com/cureconnect/portal/internal/models"
	"github.com/cureconnect/portal/pkg/httpx"
	"github.com/cureconnect/portal/pkg/i18n"
	"github.com/cureconnect/portal/pkg/render"
)

const (
	defaultArticleSlug = "welcome"
	searchLimit        = 20
	relatedLimit       = 3
)

// Articles lists published articles in the visitor language: ?q= searches,
// ?category= filters and ?page= paginates. With ?format=json or an
// Accept: application/json header the listing is returned as JSON.
func (p *Page) Articles(c *internal.Context) (*httpx.Response, error) {
	ctx := c.Context()
	lang := c.Lang()
	query := strings.TrimSpace(c.Request().Query("q", ""))
	category := strings.TrimSpace(c.Request().Query("category", ""))

	var (
		articles   []models.Article
		pagination models.Pagination
	)
	if query != "" {
		found, err := p.articles.Search(ctx, query, lang, searchLimit)
		if err != nil {
			return nil, err
		}
		articles = found
		pagination = models.Pagination{CurrentPage: 1, TotalPages: 1, TotalItems: len(found), ItemsPerPage: searchLimit}
	} else {
		page, err := p.articles.Published(ctx, models.ArticleQuery{
			Page:     queryInt(c, "page", 1),
			Language: lang,
			Category: category,
		})
		if err != nil {
			return nil, err
		}
		articles, pagination = page.Articles, page.Pagination
	}

	if wantsJSON(c) {
		return p.json(http.StatusOK, map[string]any{
			"articles":   articles,
			"pagination": pagination,
		})
	}

	categories, err := p.articles.Categories(ctx, lang)
	if err != nil {
		c.Logger().WarnContext(ctx, "article categories unavailable", slog.Any("error", err))
	}

	meta := p.metaTags(c,
		p.trans(c, "Medical Tourism Articles"),
		p.trans(c, "Learn about medical tourism, healthcare in India, and treatment options."),
		"medical tourism articles, healthcare india, treatment information",
		"",
	)
	return p.render(c, "pages/articles", map[string]any{
		"title":      meta["title"],
		"meta":       meta,
		"body_class": "articles-page",
		"articles":   articles,
		"pagination": pagination,
		"categories": categories,
		"query":      query,
		"category":   category,
	})
}

// Article renders ?slug= (default "welcome") in the visitor language, or in
// the default language when no translation exists.
func (p *Page) Article(c *internal.Context) (*httpx.Response, error) {
	ctx := c.Context()
	slug := strings.TrimSpace(c.Request().Query("slug", ""))
	if slug == "" {
		slug = defaultArticleSlug
	}

	article, err := p.articles.BySlug(ctx, slug, c.Lang())
	if errors.Is(err, models.ErrNotFound) && c.Lang() != i18n.Default {
		article, err = p.articles.BySlug(ctx, slug, i18n.Default)
	}
	if errors.Is(err, models.ErrNotFound) {
		return nil, internal.ErrNotFound(p.trans(c, "Article not found"), internal.WithError(err))
	}
	if err != nil {
		return nil, err
	}

	body, err := render.Markdown(article.Content)
	if err != nil {
		c.Logger().WarnContext(ctx, "article markdown failed", slog.String("slug", slug), slog.Any("error", err))
	}
	related, err := p.articles.Related(ctx, article, relatedLimit)
	if err != nil {
		c.Logger().WarnContext(ctx, "related articles unavailable", slog.Any("error", err))
	}

	description := article.MetaDescription
	if description == "" {
		description = p.trans(c, "Learn about medical tourism, healthcare in India, and treatment options.")
	}
	meta := p.metaTags(c,
		article.Title,
		description,
		strings.Join(article.Tags, ", "),
		p.asset("images/hospital-main.png"),
	)
	return p.render(c, "pages/article", map[string]any{
		"title":      article.Title,
		"meta":       meta,
		"body_class": "article-page",
		"article":    article,
		"body":       body,
		"related":    related,
	})
}

func wantsJSON(c *internal.Context) bool {
	return c.Request().Query("format", "") == "json" ||
		strings.Contains(c.Request().Header("Accept"), "application/json")
}
