package controllers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/cureconnect/portal/internal"
	"github.com/cureconnect/portal/internal/models"
	"github.com/cureconnect/portal/pkg/httpx"
	"github.com/cureconnect/portal/pkg/mailer"
	"github.com/cureconnect/portal/pkg/security"
)

// Contact form limits: at most contactLimit submissions per contactWindow for
// one session and client address.
const (
	contactLimit  = 5
	contactWindow = 300 * time.Second

	inquiryTemplate = "inquiry.md"
)

// contactForm is the state of the contact form between renders.
type contactForm struct {
	Message     string
	MessageType string
	Status      int
	Values      map[string]string
	Errors      models.ValidationErrors
}

func (p *Page) Contact(c *internal.Context) (*httpx.Response, error) {
	f := contactForm{Status: http.StatusOK, Values: map[string]string{}}
	if c.Request().IsMethod(http.MethodPost) {
		if done := p.submitContact(c, &f); done {
			return p.redirect("/contact")
		}
	}

	meta := p.metaTags(c,
		p.trans(c, "Contact CureConnect - Get Free Medical Tourism Consultation"),
		p.trans(c, "Contact CureConnect for personalized medical tourism assistance. Get free consultation, treatment cost estimates, and visa guidance."),
		"contact medical tourism, free consultation india, medical visa help",
		"",
	)
	return p.render(c, "pages/contact", map[string]any{
		"title":        meta["title"],
		"meta":         meta,
		"body_class":   "contact-page",
		"message":      f.Message,
		"message_type": f.MessageType,
		"values":       f.Values,
		"errors":       f.Errors,
	}, f.Status)
}

// submitContact handles a POST. It reports true when the inquiry was stored
// and the visitor should be redirected; otherwise f carries the message to
// show with the form.
func (p *Page) submitContact(c *internal.Context, f *contactForm) bool {
	in := models.InquiryInput{
		Name:      form(c, "name"),
		Email:     form(c, "email"),
		Phone:     form(c, "phone"),
		Subject:   form(c, "subject"),
		Message:   form(c, "message"),
		Language:  c.Lang(),
		IPAddress: security.ClientIP(c.Request().Header, c.Request().RemoteAddr()),
		UserAgent: c.Request().Header("User-Agent"),
	}
	f.Values = map[string]string{
		"name":    in.Name,
		"email":   in.Email,
		"phone":   in.Phone,
		"subject": in.Subject,
		"message": in.Message,
	}
	fail := func(status int, msg string) bool {
		f.Status, f.MessageType, f.Message = status, "error", msg
		return false
	}

	if !security.VerifyCSRFToken(c.Session(), c.Request().Form("csrf_token", "")) {
		return fail(http.StatusForbidden, p.trans(c, "Security token mismatch. Please try again."))
	}
	if !security.CheckRateLimit(c.Session(), "contact_"+in.IPAddress, contactLimit, contactWindow, time.Now()) {
		return fail(http.StatusTooManyRequests, p.trans(c, "Too many requests. Please try again later."))
	}
	if in.Name == "" || in.Email == "" || in.Message == "" {
		f.Errors, _ = models.AsValidationErrors(p.inquiries.Validate(in))
		return fail(http.StatusOK, p.trans(c, "Please fill in all required fields."))
	}
	if !security.ValidateEmail(in.Email) {
		f.Errors = models.ValidationErrors{"email": p.trans(c, "Please provide a valid email address.")}
		return fail(http.StatusOK, p.trans(c, "Please provide a valid email address."))
	}

	inq, err := p.inquiries.Create(c.Context(), in)
	if err != nil {
		if fields, ok := models.AsValidationErrors(err); ok {
			f.Errors = fields
			return fail(http.StatusOK, p.trans(c, "Please check the highlighted fields."))
		}
		c.Logger().ErrorContext(c.Context(), "failed to store inquiry", slog.Any("error", err))
		return fail(http.StatusInternalServerError, p.trans(c, "We could not send your message. Please try again later."))
	}
	c.Logger().InfoContext(c.Context(), "inquiry received",
		slog.String("reference", inq.Reference),
		slog.String("language", inq.Language),
	)

	p.notify(c, inq)
	c.SetFlash("success", p.trans(c, "Thank you for your inquiry. We will contact you soon!"))
	return true
}

// notify mails the inquiry to the admin address. Delivery failures are
// logged; the visitor's submission is already stored.
func (p *Page) notify(c *internal.Context, inq *models.Inquiry) {
	m := p.app.Mailer()
	admin := p.app.Config().Services.Mailer.Admin
	if m == nil || admin == "" {
		return
	}
	err := m.Send(c.Context(), mailer.SendParams{
		To:       admin,
		ReplyTo:  inq.Email,
		Template: inquiryTemplate,
		Data:     inq,
		Tags:     map[string]string{"category": "inquiry", "language": inq.Language},
	})
	if err != nil {
		c.Logger().ErrorContext(c.Context(), "failed to send inquiry notification",
			slog.String("reference", inq.Reference),
			slog.Any("error", err),
		)
	}
}
