package mailer_test

import (
	"context"
	"errors"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cureconnect/portal/pkg/logger"
	"github.com/cureconnect/portal/pkg/mailer"
)

type inquiry struct {
	Name      string
	Email     string
	Treatment string
}

func mailFS() fstest.MapFS {
	return fstest.MapFS{
		"layouts/base.html": {Data: []byte(`<html><body>{{.Content}}</body></html>`)},
		"inquiry.md": {Data: []byte("---\nsubject: \"New inquiry from {{.Name}}\"\n---\n**{{.Name}}** ({{.Email}}) asked about {{.Treatment}}.\n")},
		"plain.md":   {Data: []byte("No front matter here.")},
		"broken.md":  {Data: []byte("---\nsubject: x\n")},
	}
}

type failingSender struct{}

func (failingSender) Send(context.Context, *mailer.Email) error { return errors.New("provider down") }

func TestMailer_Send(t *testing.T) {
	t.Parallel()

	sender := mailer.NewLogSender(logger.NewNope())
	m := mailer.New(sender, mailer.NewRenderer(mailFS()), mailer.Config{From: "care@example.com"})

	err := m.Send(context.Background(), mailer.SendParams{
		To:       "desk@example.com",
		Template: "inquiry.md",
		Data:     inquiry{Name: "Asha", Email: "asha@example.com", Treatment: "Cardiology"},
		ReplyTo:  "asha@example.com",
	})
	require.NoError(t, err)

	sent := sender.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, "New inquiry from Asha", sent[0].Subject)
	assert.Equal(t, []string{"desk@example.com"}, sent[0].To)
	assert.Equal(t, "care@example.com", sent[0].From)
	assert.Contains(t, sent[0].HTML, "<html><body><p><strong>Asha</strong>")
	assert.Contains(t, sent[0].Text, "**Asha** (asha@example.com) asked about Cardiology.")
}

func TestMailer_SubjectFallback(t *testing.T) {
	t.Parallel()

	sender := mailer.NewLogSender(logger.NewNope())
	m := mailer.New(sender, mailer.NewRenderer(mailFS()), mailer.Config{FallbackSubject: "CureConnect"})

	require.NoError(t, m.Send(context.Background(), mailer.SendParams{To: "a@example.com", Template: "plain.md"}))
	assert.Equal(t, "CureConnect", sender.Sent()[0].Subject)
}

func TestMailer_Errors(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	m := mailer.New(mailer.NewLogSender(logger.NewNope()), mailer.NewRenderer(mailFS()), mailer.Config{})

	require.ErrorIs(t, m.Send(ctx, mailer.SendParams{Template: "plain.md"}), mailer.ErrNoRecipient)
	require.ErrorIs(t, m.Send(ctx, mailer.SendParams{To: "a@example.com", Template: "missing.md"}), mailer.ErrTemplateNotFound)
	require.ErrorIs(t, m.Send(ctx, mailer.SendParams{To: "a@example.com", Template: "broken.md"}), mailer.ErrInvalidFrontmatter)

	require.ErrorIs(t, m.SendRaw(ctx, &mailer.Email{To: []string{"a@example.com"}}), mailer.ErrNoSubject)
	require.ErrorIs(t, m.SendRaw(ctx, &mailer.Email{To: []string{"a@example.com"}, Subject: "s"}), mailer.ErrNoContent)

	failing := mailer.New(failingSender{}, mailer.NewRenderer(mailFS()), mailer.Config{})
	require.ErrorIs(t, failing.Send(ctx, mailer.SendParams{To: "a@example.com", Template: "plain.md"}), mailer.ErrSendFailed)
}

func TestParseTemplate(t *testing.T) {
	t.Parallel()

	tpl, err := mailer.ParseTemplate([]byte("---\nsubject: Hi\npriority: 2\n---\nBody\n"))
	require.NoError(t, err)
	assert.Equal(t, "Hi", tpl.Metadata["subject"])
	assert.Equal(t, 2, tpl.Metadata["priority"])
	assert.Equal(t, "Body\n", tpl.Body)

	tpl, err = mailer.ParseTemplate([]byte("Just text"))
	require.NoError(t, err)
	assert.Empty(t, tpl.Metadata)
	assert.Equal(t, "Just text", tpl.Body)
}
