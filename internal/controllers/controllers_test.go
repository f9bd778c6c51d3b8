package controllers_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"regexp"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cureconnect/portal/internal"
	"github.com/cureconnect/portal/internal/controllers"
	"github.com/cureconnect/portal/internal/models"
	"github.com/cureconnect/portal/pkg/config"
	"github.com/cureconnect/portal/pkg/logger"
	"github.com/cureconnect/portal/pkg/mailer"
	"github.com/cureconnect/portal/web"
)

const adminEmail = "admin@cureconnect.test"

var csrfPattern = regexp.MustCompile(`name="csrf_token" value="([0-9a-f]+)"`)

type portal struct {
	app    *internal.Application
	srv    *httptest.Server
	client *http.Client
	mail   *mailer.LogSender
}

func newPortal(t *testing.T) *portal {
	t.Helper()
	root := t.TempDir()
	cfg := config.Testing(root)
	cfg.Services.Mailer.Admin = adminEmail
	cfg.Services.Mailer.From = "CureConnect <noreply@cureconnect.test>"

	log := logger.NewNope()
	sender := mailer.NewLogSender(log)
	app, err := internal.New(root,
		internal.WithConfig(cfg),
		internal.WithLogger(log),
		internal.WithControllers(controllers.Registry()),
		internal.WithTemplatesFS(web.Templates()),
		internal.WithLangFS(web.Lang()),
		internal.WithMailTemplatesFS(web.Mail()),
		internal.WithMailSender(sender),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = app.Shutdown(context.Background()) })

	srv := httptest.NewServer(app)
	t.Cleanup(srv.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	client := &http.Client{
		Jar: jar,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
	return &portal{app: app, srv: srv, client: client, mail: sender}
}

func (p *portal) get(t *testing.T, path string) (int, http.Header, string) {
	t.Helper()
	res, err := p.client.Get(p.srv.URL + path)
	require.NoError(t, err)
	return read(t, res)
}

func (p *portal) post(t *testing.T, path string, form url.Values) (int, http.Header, string) {
	t.Helper()
	res, err := p.client.PostForm(p.srv.URL+path, form)
	require.NoError(t, err)
	return read(t, res)
}

// token loads path and returns the CSRF token embedded in its form.
func (p *portal) token(t *testing.T, path string) string {
	t.Helper()
	status, _, body := p.get(t, path)
	require.Equal(t, http.StatusOK, status, body)
	m := csrfPattern.FindStringSubmatch(body)
	require.Len(t, m, 2, "csrf token in %s", path)
	return m[1]
}

func read(t *testing.T, res *http.Response) (int, http.Header, string) {
	t.Helper()
	defer res.Body.Close()
	body, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	return res.StatusCode, res.Header, string(body)
}

func appointmentForm(token string) url.Values {
	return url.Values{
		"csrf_token":       {token},
		"patient_name":     {"Amina Rahman"},
		"patient_email":    {"amina@example.com"},
		"patient_phone":    {"+880 1711 000000"},
		"appointment_date": {time.Now().AddDate(0, 0, 14).Format(models.DateLayout)},
		"appointment_time": {"10:30"},
		"doctor_id":        {"1"},
		"service_type":     {"consultation"},
		"notes":            {"First visit"},
	}
}

func TestAppointments(t *testing.T) {
	t.Parallel()
	p := newPortal(t)
	token := p.token(t, "/appointments/create")

	t.Run("rejects a missing csrf token", func(t *testing.T) {
		form := appointmentForm("")
		status, _, body := p.post(t, "/appointments/create", form)
		assert.Equal(t, http.StatusForbidden, status)
		assert.Contains(t, body, "Invalid CSRF token")
	})

	t.Run("re-renders invalid input", func(t *testing.T) {
		form := appointmentForm(token)
		form.Set("patient_name", "")
		form.Set("appointment_date", "2001-01-01")
		form.Set("appointment_time", "25:99")
		status, _, body := p.post(t, "/appointments/create", form)
		assert.Equal(t, http.StatusUnprocessableEntity, status)
		assert.Contains(t, body, "Patient name is required")
		assert.Contains(t, body, "Appointment date cannot be in the past")
		assert.Contains(t, body, "Please enter a valid time")
		assert.Contains(t, body, "amina@example.com", "submitted values are kept")
	})

	t.Run("rejects an unknown doctor", func(t *testing.T) {
		form := appointmentForm(token)
		form.Set("doctor_id", "999")
		status, _, body := p.post(t, "/appointments/create", form)
		assert.Equal(t, http.StatusUnprocessableEntity, status)
		assert.Contains(t, body, "Please select a valid doctor")
	})

	var id int64
	t.Run("creates", func(t *testing.T) {
		status, header, _ := p.post(t, "/appointments/create", appointmentForm(token))
		require.Equal(t, http.StatusFound, status)
		assert.Equal(t, "/appointments", header.Get("Location"))

		status, _, body := p.get(t, "/appointments")
		require.Equal(t, http.StatusOK, status)
		assert.Contains(t, body, "Appointment created successfully")
		assert.Contains(t, body, "Amina")

		list, err := models.NewAppointments(p.app.DB()).All(context.Background())
		require.NoError(t, err)
		require.Len(t, list, 1)
		id = list[0].ID
		assert.Equal(t, "Dr. Anil Sharma", list[0].DoctorName)
		assert.Equal(t, models.StatusPending, list[0].Status)
	})
	require.NotZero(t, id)
	ref := "?id=" + strconv.FormatInt(id, 10)

	t.Run("shows", func(t *testing.T) {
		status, _, body := p.get(t, "/appointments/show"+ref)
		assert.Equal(t, http.StatusOK, status)
		assert.Contains(t, body, "amina@example.com")
		assert.Contains(t, body, "10:30")

		status, _, _ = p.get(t, "/appointments/show?id=abc")
		assert.Equal(t, http.StatusBadRequest, status)
		status, _, _ = p.get(t, "/appointments/show?id=4040")
		assert.Equal(t, http.StatusNotFound, status)
	})

	t.Run("updates", func(t *testing.T) {
		status, _, body := p.get(t, "/appointments/update"+ref)
		require.Equal(t, http.StatusOK, status)
		assert.Contains(t, body, `value="Amina Rahman"`)

		form := appointmentForm(token)
		form.Set("status", models.StatusConfirmed)
		form.Set("appointment_time", "11:45")
		status, header, _ := p.post(t, "/appointments/update"+ref, form)
		require.Equal(t, http.StatusFound, status)
		assert.Equal(t, "/appointments", header.Get("Location"))

		appt, err := models.NewAppointments(p.app.DB()).FindByID(context.Background(), id)
		require.NoError(t, err)
		assert.Equal(t, models.StatusConfirmed, appt.Status)
		assert.Equal(t, "11:45", appt.Time)
	})

	t.Run("deletes", func(t *testing.T) {
		status, header, _ := p.get(t, "/appointments/delete"+ref)
		assert.Equal(t, http.StatusFound, status, "GET only redirects")
		assert.Equal(t, "/appointments", header.Get("Location"))

		status, _, _ = p.post(t, "/appointments/delete"+ref, url.Values{"csrf_token": {token}})
		require.Equal(t, http.StatusFound, status)

		_, _, body := p.get(t, "/appointments")
		assert.Contains(t, body, "Appointment deleted successfully")

		status, _, _ = p.get(t, "/appointments/show"+ref)
		assert.Equal(t, http.StatusNotFound, status)

		status, _, _ = p.post(t, "/appointments/delete"+ref, url.Values{"csrf_token": {token}})
		require.Equal(t, http.StatusFound, status)
		_, _, body = p.get(t, "/appointments")
		assert.Contains(t, body, "Unable to delete appointment")
	})
}

func TestContact(t *testing.T) {
	t.Parallel()
	p := newPortal(t)
	token := p.token(t, "/contact")

	valid := func() url.Values {
		return url.Values{
			"csrf_token": {token},
			"name":       {"Jean <b>Dupont</b>"},
			"email":      {"jean@example.com"},
			"phone":      {"+33 6 12 34 56 78"},
			"subject":    {"Knee replacement"},
			"message":    {"What does a knee replacement cost?"},
		}
	}

	status, _, body := p.post(t, "/contact", url.Values{"csrf_token": {"forged"}, "name": {"x"}})
	assert.Equal(t, http.StatusForbidden, status)
	assert.Contains(t, body, "Security token mismatch. Please try again.")

	form := valid()
	form.Del("message")
	status, _, body = p.post(t, "/contact", form)
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, "Please fill in all required fields.")
	assert.Contains(t, body, "Knee replacement", "values are kept")

	form = valid()
	form.Set("email", "not-an-email")
	status, _, body = p.post(t, "/contact", form)
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, "Please provide a valid email address.")

	status, header, _ := p.post(t, "/contact", valid())
	require.Equal(t, http.StatusFound, status)
	assert.Equal(t, "/contact", header.Get("Location"))

	_, _, body = p.get(t, "/contact")
	assert.Contains(t, body, "Thank you for your inquiry. We will contact you soon!")

	recent, err := models.NewInquiries(p.app.DB()).Recent(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, recent, 1)
	assert.Equal(t, "Jean Dupont", recent[0].Name, "markup is stripped")
	assert.Equal(t, models.InquiryNew, recent[0].Status)

	sent := p.mail.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, []string{adminEmail}, sent[0].To)
	assert.Equal(t, "jean@example.com", sent[0].ReplyTo)
	assert.Equal(t, "New inquiry "+recent[0].Reference+" from Jean Dupont", sent[0].Subject)
	assert.Contains(t, sent[0].HTML, "What does a knee replacement cost?")

	// Three attempts were counted above; the limit allows five per window.
	for range 2 {
		status, _, _ = p.post(t, "/contact", valid())
		require.Equal(t, http.StatusFound, status)
	}
	status, _, body = p.post(t, "/contact", valid())
	assert.Equal(t, http.StatusTooManyRequests, status)
	assert.Contains(t, body, "Too many requests. Please try again later.")
}

func TestArticles(t *testing.T) {
	t.Parallel()
	p := newPortal(t)

	t.Run("json listing", func(t *testing.T) {
		status, header, body := p.get(t, "/articles?format=json")
		require.Equal(t, http.StatusOK, status)
		assert.Equal(t, "application/json", header.Get("Content-Type"))

		var out struct {
			Articles   []models.Article  `json:"articles"`
			Pagination models.Pagination `json:"pagination"`
		}
		require.NoError(t, json.Unmarshal([]byte(body), &out))
		assert.Len(t, out.Articles, 2)
		assert.Equal(t, 1, out.Pagination.CurrentPage)
		assert.Equal(t, 2, out.Pagination.TotalItems)
	})

	t.Run("search", func(t *testing.T) {
		status, _, body := p.get(t, "/articles?q=visa")
		require.Equal(t, http.StatusOK, status)
		assert.Contains(t, body, "slug=e-medical-visa")
	})

	t.Run("category", func(t *testing.T) {
		status, _, body := p.get(t, "/articles?category=visa")
		require.Equal(t, http.StatusOK, status)
		assert.Contains(t, body, "slug=e-medical-visa")
		assert.NotContains(t, body, `href="/article?slug=welcome"`)
	})

	t.Run("translated article", func(t *testing.T) {
		status, header, body := p.get(t, "/article?slug=welcome&lang=ar")
		require.Equal(t, http.StatusOK, status)
		assert.Equal(t, "ar", header.Get("Content-Language"))
		assert.Contains(t, body, `dir="rtl"`)
	})

	t.Run("falls back to english", func(t *testing.T) {
		status, _, body := p.get(t, "/article?slug=e-medical-visa&lang=bn")
		require.Equal(t, http.StatusOK, status)
		assert.Contains(t, body, "article-body")
	})
}

