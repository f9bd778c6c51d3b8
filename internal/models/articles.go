package models

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/cureconnect/portal/pkg/security"
)

// Article statuses.
const (
	ArticleDraft     = "draft"
	ArticlePublished = "published"
)

// Listing limits.
const (
	DefaultPageSize = 10
	MaxPageSize     = 50
	maxSlugAttempts = 1000
)

// Article is a localized Markdown article.
type Article struct {
	ID              int64      `db:"id" json:"id"`
	Title           string     `db:"title" json:"title"`
	Slug            string     `db:"slug" json:"slug"`
	Content         string     `db:"content" json:"content"`
	Language        string     `db:"language" json:"language"`
	MetaDescription string     `db:"meta_description" json:"meta_description"`
	Tags            Tags       `db:"tags" json:"tags"`
	Category        string     `db:"category" json:"category"`
	AuthorName      string     `db:"author_name" json:"author_name"`
	Status          string     `db:"status" json:"status"`
	PublishedAt     *time.Time `db:"published_at" json:"published_at"`
	CreatedAt       time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt       *time.Time `db:"updated_at" json:"updated_at"`
}

// Date is the publication date, or the creation date for drafts, as
// YYYY-MM-DD.
func (a Article) Date() string {
	if a.PublishedAt != nil {
		return a.PublishedAt.Format(DateLayout)
	}
	return a.CreatedAt.Format(DateLayout)
}

// ArticleInput creates an article. Slug defaults to the slugified title,
// Language to "en" and Status to draft.
type ArticleInput struct {
	Title           string     `form:"title" validate:"required,max=255"`
	Slug            string     `form:"slug" validate:"max=255"`
	Content         string     `form:"content" validate:"required"`
	Language        string     `form:"language" validate:"omitempty,oneof=en bn ar"`
	MetaDescription string     `form:"meta_description" validate:"max=500"`
	Tags            []string   `form:"tags"`
	Category        string     `form:"category" validate:"max=100"`
	AuthorName      string     `form:"author_name" validate:"max=150"`
	Status          string     `form:"status" validate:"omitempty,oneof=draft published"`
	PublishedAt     *time.Time `form:"-"`
}

// ArticlePatch updates the non-nil fields of an article.
type ArticlePatch struct {
	Title           *string
	Slug            *string
	Content         *string
	MetaDescription *string
	Tags            *[]string
	Category        *string
	AuthorName      *string
	Status          *string
	PublishedAt     *time.Time
}

// ArticleQuery selects a page of published articles.
type ArticleQuery struct {
	Page     int
	Limit    int
	Language string
	Category string
}

// Pagination describes one page of a listing.
type Pagination struct {
	CurrentPage  int `json:"current_page"`
	TotalPages   int `json:"total_pages"`
	TotalItems   int `json:"total_items"`
	ItemsPerPage int `json:"items_per_page"`
}

func (p Pagination) HasPrev() bool { return p.CurrentPage > 1 }
func (p Pagination) HasNext() bool { return p.CurrentPage < p.TotalPages }
func (p Pagination) PrevPage() int { return p.CurrentPage - 1 }
func (p Pagination) NextPage() int { return p.CurrentPage + 1 }

// ArticlePage is one page of published articles.
type ArticlePage struct {
	Articles   []Article
	Pagination Pagination
}

// CategoryCount is a category with its number of published articles.
type CategoryCount struct {
	Category string `db:"category"`
	Count    int    `db:"article_count"`
}

const articleColumns = `id, title, slug, content, language, meta_description, tags, category,
	author_name, status, published_at, created_at, updated_at`

// Articles manages articles.
type Articles struct {
	db *sqlx.DB
}

func NewArticles(conn *sqlx.DB) *Articles {
	return &Articles{db: conn}
}

// Create stores a new article and returns its id. The slug is made unique
// within the language by appending -1, -2 and so on.
func (m *Articles) Create(ctx context.Context, in ArticleInput) (int64, error) {
	if err := validateStruct(in); err != nil {
		return 0, err
	}
	if in.Language == "" {
		in.Language = "en"
	}
	if in.Status == "" {
		in.Status = ArticleDraft
	}
	if in.Status == ArticlePublished && in.PublishedAt == nil {
		now := time.Now().UTC()
		in.PublishedAt = &now
	}

	slug, err := m.uniqueSlug(ctx, baseSlug(in.Slug, in.Title), in.Language, 0)
	if err != nil {
		return 0, err
	}

	return insert(ctx, m.db, `INSERT INTO articles
		(title, slug, content, language, meta_description, tags, category, author_name, status, published_at, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		in.Title, slug, in.Content, in.Language, in.MetaDescription, Tags(in.Tags), in.Category,
		in.AuthorName, in.Status, in.PublishedAt, time.Now().UTC(),
	)
}

// ByID returns any article, published or not.
func (m *Articles) ByID(ctx context.Context, id int64) (*Article, error) {
	if id <= 0 {
		return nil, ErrInvalidID
	}
	var a Article
	if err := get(ctx, m.db, &a, "SELECT "+articleColumns+" FROM articles WHERE id = ?", id); err != nil {
		return nil, err
	}
	return &a, nil
}

// BySlug returns the published article with slug in lang.
func (m *Articles) BySlug(ctx context.Context, slug, lang string) (*Article, error) {
	var a Article
	err := get(ctx, m.db, &a, "SELECT "+articleColumns+" FROM articles WHERE slug = ? AND language = ? AND status = ?",
		slug, lang, ArticlePublished)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// Published returns a page of published articles in q.Language, newest
// first, optionally restricted to q.Category.
func (m *Articles) Published(ctx context.Context, q ArticleQuery) (*ArticlePage, error) {
	q.Page = max(q.Page, 1)
	if q.Limit <= 0 {
		q.Limit = DefaultPageSize
	}
	q.Limit = min(q.Limit, MaxPageSize)
	if q.Language == "" {
		q.Language = "en"
	}

	where := " WHERE status = ? AND language = ?"
	args := []any{ArticlePublished, q.Language}
	if q.Category != "" {
		where += " AND category = ?"
		args = append(args, q.Category)
	}

	var total int
	if err := get(ctx, m.db, &total, "SELECT COUNT(*) FROM articles"+where, args...); err != nil {
		return nil, err
	}

	page := &ArticlePage{
		Articles: []Article{},
		Pagination: Pagination{
			CurrentPage:  q.Page,
			TotalPages:   (total + q.Limit - 1) / q.Limit,
			TotalItems:   total,
			ItemsPerPage: q.Limit,
		},
	}
	if total == 0 {
		return page, nil
	}

	err := list(ctx, m.db, &page.Articles,
		"SELECT "+articleColumns+" FROM articles"+where+" ORDER BY published_at DESC, created_at DESC, id DESC LIMIT ? OFFSET ?",
		append(args, q.Limit, (q.Page-1)*q.Limit)...)
	if err != nil {
		return nil, err
	}
	return page, nil
}

// Search finds published articles in lang whose title, content or tags
// contain query. Exact title matches rank first, then title, then content
// matches.
func (m *Articles) Search(ctx context.Context, query, lang string, limit int) ([]Article, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []Article{}, nil
	}
	if limit <= 0 {
		limit = 20
	}
	like := "%" + strings.ToLower(query) + "%"

	out := []Article{}
	err := list(ctx, m.db, &out, "SELECT "+articleColumns+` FROM articles
		WHERE (LOWER(title) LIKE ? OR LOWER(content) LIKE ? OR LOWER(tags) LIKE ?)
		AND language = ? AND status = ?
		ORDER BY
			CASE
				WHEN LOWER(title) = ? THEN 1
				WHEN LOWER(title) LIKE ? THEN 2
				WHEN LOWER(content) LIKE ? THEN 3
				ELSE 4
			END,
			published_at DESC
		LIMIT ?`,
		like, like, like, lang, ArticlePublished, strings.ToLower(query), like, like, limit)
	return out, err
}

// Related returns other published articles of a's category and language.
func (m *Articles) Related(ctx context.Context, a *Article, limit int) ([]Article, error) {
	out := []Article{}
	if a == nil || a.Category == "" {
		return out, nil
	}
	if limit <= 0 {
		limit = 3
	}
	err := list(ctx, m.db, &out, "SELECT "+articleColumns+` FROM articles
		WHERE id <> ? AND category = ? AND language = ? AND status = ?
		ORDER BY published_at DESC LIMIT ?`,
		a.ID, a.Category, a.Language, ArticlePublished, limit)
	return out, err
}

// Update applies p to article id. A patch without fields is ErrNothingToSet.
func (m *Articles) Update(ctx context.Context, id int64, p ArticlePatch) error {
	if id <= 0 {
		return ErrInvalidID
	}
	var (
		sets []string
		args []any
	)
	set := func(col string, v any) {
		sets = append(sets, col+" = ?")
		args = append(args, v)
	}

	if p.Slug != nil || p.Title != nil {
		current, err := m.ByID(ctx, id)
		if err != nil {
			return err
		}
		if p.Slug != nil {
			slug, err := m.uniqueSlug(ctx, baseSlug(*p.Slug, current.Title), current.Language, id)
			if err != nil {
				return err
			}
			set("slug", slug)
		}
	}
	if p.Title != nil {
		set("title", *p.Title)
	}
	if p.Content != nil {
		set("content", *p.Content)
	}
	if p.MetaDescription != nil {
		set("meta_description", *p.MetaDescription)
	}
	if p.Tags != nil {
		set("tags", Tags(*p.Tags))
	}
	if p.Category != nil {
		set("category", *p.Category)
	}
	if p.AuthorName != nil {
		set("author_name", *p.AuthorName)
	}
	if p.Status != nil {
		if *p.Status != ArticleDraft && *p.Status != ArticlePublished {
			return ValidationErrors{"status": "Please select a valid status"}
		}
		set("status", *p.Status)
	}
	if p.PublishedAt != nil {
		set("published_at", *p.PublishedAt)
	}
	if len(sets) == 0 {
		return ErrNothingToSet
	}
	set("updated_at", time.Now().UTC())

	n, err := exec(ctx, m.db, "UPDATE articles SET "+strings.Join(sets, ", ")+" WHERE id = ?", append(args, id)...)
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes article id.
func (m *Articles) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return ErrInvalidID
	}
	n, err := exec(ctx, m.db, "DELETE FROM articles WHERE id = ?", id)
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// Categories counts published articles per category in lang, largest first.
func (m *Articles) Categories(ctx context.Context, lang string) ([]CategoryCount, error) {
	out := []CategoryCount{}
	err := list(ctx, m.db, &out, `SELECT category, COUNT(*) AS article_count FROM articles
		WHERE status = ? AND language = ? AND category <> ''
		GROUP BY category ORDER BY article_count DESC, category`,
		ArticlePublished, lang)
	return out, err
}

func baseSlug(slug, title string) string {
	s := security.Slug(slug)
	if s == "" {
		s = security.Slug(title)
	}
	if s == "" {
		s = "article"
	}
	return s
}

func (m *Articles) uniqueSlug(ctx context.Context, slug, lang string, excludeID int64) (string, error) {
	candidate := slug
	for i := 1; i <= maxSlugAttempts; i++ {
		var n int
		err := get(ctx, m.db, &n, "SELECT COUNT(*) FROM articles WHERE slug = ? AND language = ? AND id <> ?",
			candidate, lang, excludeID)
		if err != nil {
			return "", err
		}
		if n == 0 {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d", slug, i)
	}
	return "", errors.New("models: no free slug for " + slug)
}
