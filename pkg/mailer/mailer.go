package mailer

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"sync"
	texttemplate "text/template"
)

// Email is a fully prepared message.
type Email struct {
	Tags    map[string]string
	Subject string
	HTML    string
	Text    string
	From    string
	ReplyTo string
	To      []string
}

// Sender delivers prepared messages.
type Sender interface {
	Send(ctx context.Context, email *Email) error
}

// Config holds mailer defaults.
type Config struct {
	From            string
	FallbackSubject string
	Layout          string
}

// Mailer renders templates and hands the result to a Sender.
type Mailer struct {
	sender   Sender
	renderer *Renderer
	config   Config
}

// New creates a Mailer.
func New(sender Sender, renderer *Renderer, cfg Config) *Mailer {
	if cfg.FallbackSubject == "" {
		cfg.FallbackSubject = "Notification"
	}
	if cfg.Layout == "" {
		cfg.Layout = "base.html"
	}
	return &Mailer{sender: sender, renderer: renderer, config: cfg}
}

// SendParams describes one templated message.
type SendParams struct {
	Data     any
	Tags     map[string]string
	To       string
	Template string
	Subject  string
	ReplyTo  string
}

// Send renders params.Template and delivers it. The subject comes from params,
// then the template front matter, then the configured fallback, and is itself
// executed as a template.
func (m *Mailer) Send(ctx context.Context, params SendParams) error {
	if params.To == "" {
		return ErrNoRecipient
	}

	result, err := m.renderer.Render(m.config.Layout, params.Template, params.Data)
	if err != nil {
		return errors.Join(ErrRenderFailed, err)
	}

	subject := params.Subject
	if subject == "" {
		if s, ok := result.Metadata["subject"].(string); ok {
			subject = s
		} else {
			subject = m.config.FallbackSubject
		}
	}
	subject, err = executeSubject(subject, params.Data)
	if err != nil {
		return errors.Join(ErrRenderFailed, err)
	}

	return m.SendRaw(ctx, &Email{
		To:      []string{params.To},
		From:    m.config.From,
		Subject: subject,
		HTML:    result.HTML,
		Text:    result.Text,
		ReplyTo: params.ReplyTo,
		Tags:    params.Tags,
	})
}

// SendRaw delivers a prepared message.
func (m *Mailer) SendRaw(ctx context.Context, email *Email) error {
	switch {
	case len(email.To) == 0:
		return ErrNoRecipient
	case email.Subject == "":
		return ErrNoSubject
	case email.HTML == "":
		return ErrNoContent
	}
	if err := m.sender.Send(ctx, email); err != nil {
		return errors.Join(ErrSendFailed, err)
	}
	return nil
}

func executeSubject(subject string, data any) (string, error) {
	tmpl, err := texttemplate.New("subject").Parse(subject)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// LogSender records messages in the log instead of delivering them. It keeps
// the last messages for inspection.
type LogSender struct {
	log  *slog.Logger
	mu   sync.Mutex
	sent []Email
}

// NewLogSender returns a LogSender writing to log.
func NewLogSender(log *slog.Logger) *LogSender {
	return &LogSender{log: log}
}

func (s *LogSender) Send(ctx context.Context, email *Email) error {
	s.mu.Lock()
	s.sent = append(s.sent, *email)
	s.mu.Unlock()

	s.log.InfoContext(ctx, "email not delivered, no provider configured",
		slog.Any("to", email.To),
		slog.String("subject", email.Subject),
	)
	return nil
}

// Sent returns copies of the recorded messages.
func (s *LogSender) Sent() []Email {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Email(nil), s.sent...)
}
