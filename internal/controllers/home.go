package controllers

import (
	"log/slog"

	"github.com/cureconnect/portal/internal"
	"github.com/cureconnect/portal/internal/models"
	"github.com/cureconnect/portal/pkg/httpx"
)

type Home struct {
	base
	articles *models.Articles
	catalog  *models.Catalog
}

func NewHome(app *internal.Application) internal.Controller {
	h := &Home{
		base:     base{app: app},
		articles: models.NewArticles(app.DB()),
		catalog:  models.NewCatalog(app.DB()),
	}
	return internal.Actions{"index": h.Index}
}

// Index renders the landing page.
func (h *Home) Index(c *internal.Context) (*httpx.Response, error) {
	meta := h.metaTags(c,
		h.trans(c, "World-Class Healthcare in India"),
		h.trans(c, "Experience affordable, high-quality medical treatments with our comprehensive medical tourism services. Connect with top hospitals and specialists across India."),
		"medical tourism india, healthcare india, cost savings, treatments",
		h.asset("images/hero-medical-tourism.svg"),
	)

	statistics := map[string]any{
		"medical_tourists": 7300000,
		"cost_savings":     70,
		"hospitals":        500,
		"countries":        156,
	}

	treatments := []map[string]any{
		{
			"title":       h.trans(c, "Cardiology"),
			"description": h.trans(c, "Advanced cardiac procedures including bypass surgery, angioplasty, and valve replacement with 95%+ success rates."),
			"icon":        "fas fa-heartbeat",
			"india_cost":  300000,
			"usa_cost":    2500000,
			"savings":     88,
		},
		{
			"title":       h.trans(c, "Orthopedics"),
			"description": h.trans(c, "Joint replacement, spine surgery, and sports medicine with cutting-edge technology and rehabilitation."),
			"icon":        "fas fa-bone",
			"india_cost":  200000,
			"usa_cost":    1800000,
			"savings":     89,
		},
		{
			"title":       h.trans(c, "Oncology"),
			"description": h.trans(c, "Comprehensive cancer treatment including chemotherapy, radiation therapy, and surgical oncology."),
			"icon":        "fas fa-user-md",
			"india_cost":  500000,
			"usa_cost":    3500000,
			"savings":     86,
		},
	}

	// The landing page still renders when the listings are unavailable.
	var latest []models.Article
	if page, err := h.articles.Published(c.Context(), models.ArticleQuery{Limit: 3, Language: c.Lang()}); err != nil {
		c.Logger().WarnContext(c.Context(), "latest articles unavailable", slog.Any("error", err))
	} else {
		latest = page.Articles
	}
	hospitals, err := h.catalog.Hospitals(c.Context())
	if err != nil {
		c.Logger().WarnContext(c.Context(), "hospitals unavailable", slog.Any("error", err))
	}

	return h.render(c, "pages/home", map[string]any{
		"title":               meta["title"],
		"meta":                meta,
		"statistics":          statistics,
		"featured_treatments": treatments,
		"latest_articles":     latest,
		"hospitals":           hospitals,
		"body_class":          "home-page",
	})
}
