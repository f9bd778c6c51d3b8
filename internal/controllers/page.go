package controllers

import (
	"log/slog"

	"github.com/cureconnect/portal/internal"
	"github.com/cureconnect/portal/internal/models"
	"github.com/cureconnect/portal/pkg/httpx"
)

// Page serves the informational pages, the contact form and the articles.
type Page struct {
	base
	articles  *models.Articles
	inquiries *models.Inquiries
	catalog   *models.Catalog
}

func NewPage(app *internal.Application) internal.Controller {
	p := &Page{
		base:      base{app: app},
		articles:  models.NewArticles(app.DB()),
		inquiries: models.NewInquiries(app.DB()),
		catalog:   models.NewCatalog(app.DB()),
	}
	return internal.Actions{
		"about":             p.About,
		"contact":           p.Contact,
		"gallery":           p.Gallery,
		"governmentSchemes": p.GovernmentSchemes,
		"articles":          p.Articles,
		"article":           p.Article,
	}
}

func (p *Page) About(c *internal.Context) (*httpx.Response, error) {
	meta := p.metaTags(c,
		p.trans(c, "About CureConnect - Leading Medical Tourism Platform in India"),
		p.trans(c, "Learn about CureConnect's mission to connect international patients with India's world-class healthcare providers."),
		"medical tourism india, about cureconnect, healthcare india, medical visa",
		"",
	)
	return p.render(c, "pages/about", map[string]any{
		"title":      meta["title"],
		"meta":       meta,
		"body_class": "about-page",
	})
}

func (p *Page) Gallery(c *internal.Context) (*httpx.Response, error) {
	meta := p.metaTags(c,
		p.trans(c, "Medical Tourism Gallery - Hospitals & Treatment Facilities in India"),
		p.trans(c, "Explore world-class medical facilities, hospitals, and treatment centers in India."),
		"medical tourism gallery, hospitals india, medical facilities",
		"",
	)

	categories := []map[string]any{
		{"key": "all", "label": p.trans(c, "All Images")},
		{"key": "hospitals", "label": p.trans(c, "Hospitals")},
		{"key": "treatments", "label": p.trans(c, "Treatments")},
		{"key": "facilities", "label": p.trans(c, "Facilities")},
		{"key": "patient-rooms", "label": p.trans(c, "Patient Rooms")},
		{"key": "equipment", "label": p.trans(c, "Medical Equipment")},
		{"key": "doctors", "label": p.trans(c, "Doctors & Staff")},
	}

	items := []map[string]any{
		{
			"id":          1,
			"title":       p.trans(c, "Apollo Hospital Chennai - Main Building"),
			"category":    "hospitals",
			"image":       p.asset("images/hospital-main.png"),
			"thumbnail":   p.asset("images/logo_250x150.svg"),
			"description": p.trans(c, "State-of-the-art medical facility with 500+ beds"),
			"hospital":    "Apollo Hospital Chennai",
		},
		{
			"id":          2,
			"title":       p.trans(c, "Cardiac Surgery Suite"),
			"category":    "treatments",
			"image":       p.asset("images/hospital-main.png"),
			"thumbnail":   p.asset("images/logo_100x100.svg"),
			"description": p.trans(c, "Advanced cardiac surgery operating theater"),
			"hospital":    "Fortis Hospital Delhi",
		},
	}

	return p.render(c, "pages/gallery", map[string]any{
		"title":         meta["title"],
		"meta":          meta,
		"body_class":    "gallery-page",
		"categories":    categories,
		"gallery_items": items,
	})
}

func (p *Page) GovernmentSchemes(c *internal.Context) (*httpx.Response, error) {
	meta := p.metaTags(c,
		p.trans(c, "Government Schemes & e-Medical Visa for Medical Tourism in India"),
		p.trans(c, "Learn about Indian government initiatives supporting medical tourism including e-Medical visa process."),
		"government schemes medical tourism, e-medical visa india, heal in india",
		"",
	)

	schemes := []map[string]any{
		{
			"title":       p.trans(c, "Heal in India"),
			"description": p.trans(c, "National initiative to position India as a global healthcare destination"),
			"icon":        "fas fa-heart",
			"benefits": []string{
				p.trans(c, "Streamlined medical visa process"),
				p.trans(c, "Quality assurance through accredited hospitals"),
				p.trans(c, "24/7 helpline support for international patients"),
				p.trans(c, "Promotional activities in target countries"),
			},
		},
		{
			"title":       p.trans(c, "e-Medical Visa"),
			"description": p.trans(c, "Online medical visa facility for 156+ countries"),
			"icon":        "fas fa-passport",
			"benefits": []string{
				p.trans(c, "Online application process"),
				p.trans(c, "Quick processing (72 hours)"),
				p.trans(c, "Available for 156+ countries"),
				p.trans(c, "Medical attendant visa facility"),
			},
		},
	}

	steps := []map[string]any{
		{"step": 1, "title": p.trans(c, "Check Eligibility"), "description": p.trans(c, "Verify if your country is eligible for e-Medical visa")},
		{"step": 2, "title": p.trans(c, "Prepare Documents"), "description": p.trans(c, "Gather required documents for visa application")},
		{"step": 3, "title": p.trans(c, "Apply Online"), "description": p.trans(c, "Complete the online visa application form")},
	}

	countries, err := p.catalog.VisaCountries(c.Context())
	if err != nil {
		c.Logger().WarnContext(c.Context(), "visa countries unavailable", slog.Any("error", err))
	}

	return p.render(c, "pages/government-schemes", map[string]any{
		"title":          meta["title"],
		"meta":           meta,
		"body_class":     "government-schemes-page",
		"schemes":        schemes,
		"visa_steps":     steps,
		"visa_countries": countries,
	})
}
