package email

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/gomail.v2"

	"github.com/formcraft-io/formcraft/internal/application/notification"
	"github.com/formcraft-io/formcraft/internal/shared/config"
	"github.com/formcraft-io/formcraft/internal/shared/logger"
)

type recordingSender struct {
	messages []*gomail.Message
	err      error
}

func (s *recordingSender) DialAndSend(m ...*gomail.Message) error {
	if s.err != nil {
		return s.err
	}
	s.messages = append(s.messages, m...)
	return nil
}

func TestRenderer_EveryTemplateRenders(t *testing.T) {
	r, err := NewRenderer()
	require.NoError(t, err)

	data := map[string]any{
		"threshold":         80,
		"month":             "2026-03",
		"forms_count":       int64(8),
		"max_forms":         int64(10),
		"submissions_count": int64(10),
		"max_submissions":   int64(100),
		"storage_used_mb":   1.5,
		"max_storage_mb":    int64(50),
		"invoice_id":        "in_1",
		"retry_at":          "2026-03-04",
		"downgrade_at":      "2026-03-11",
		"subscription_id":   "sub_1",
		"plan":              "Gratuit",
		"form_title":        "Contact",
		"submission_id":     "sbm_1",
		"data":              map[string]any{"email": "a@b.c"},
	}
	for name := range subjects {
		out, err := r.Render(notification.Message{To: "a@b.c", Name: "Ada", Template: name, Data: data})
		require.NoError(t, err, name)
		assert.Contains(t, out.Text, "Ada", name)
		assert.NotEmpty(t, out.HTML, name)
	}
}

func TestRenderer_QuotaWarningContent(t *testing.T) {
	r, err := NewRenderer()
	require.NoError(t, err)

	out, err := r.Render(notification.Message{
		Name:     "Ada",
		Template: notification.TemplateQuotaWarning,
		Data: map[string]any{
			"threshold":       80,
			"month":           "2026-03",
			"storage_used_mb": 0.0,
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "Vous approchez de votre quota", out.Subject)
	assert.Contains(t, out.Text, "80 %")
	assert.Contains(t, out.HTML, "<table>")
}

func TestRenderer_SanitizesInjectedMarkup(t *testing.T) {
	r, err := NewRenderer()
	require.NoError(t, err)

	out, err := r.Render(notification.Message{
		Name:     "Ada",
		Template: notification.TemplateNewSubmission,
		Data: map[string]any{
			"form_title":    "<script>alert(1)</script>",
			"submission_id": "sbm_1",
			"data":          map[string]any{"x": "<img src=x onerror=alert(1)>"},
		},
	})
	require.NoError(t, err)
	assert.NotContains(t, out.HTML, "<script>")
	assert.NotContains(t, out.HTML, "onerror")
}

func TestRenderer_UnknownTemplate(t *testing.T) {
	r, err := NewRenderer()
	require.NoError(t, err)

	_, err = r.Render(notification.Message{Template: "nope"})
	assert.Error(t, err)
}

func TestSMTPNotifier_Send(t *testing.T) {
	r, err := NewRenderer()
	require.NoError(t, err)
	sender := &recordingSender{}
	n := newSMTPNotifier(config.EmailConfig{FromAddress: "noreply@formcraft.io", FromName: "FormCraft"}, sender, r, logger.NewNopLogger())

	err = n.Send(context.Background(), notification.Message{
		To:       "ada@example.com",
		Name:     "Ada",
		Template: notification.TemplateReactivated,
		Data:     map[string]any{"subscription_id": "sub_1"},
	})
	require.NoError(t, err)
	require.Len(t, sender.messages, 1)

	m := sender.messages[0]
	assert.Equal(t, []string{"Abonnement réactivé"}, m.GetHeader("Subject"))

	var buf bytes.Buffer
	_, err = m.WriteTo(&buf)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "ada@example.com")
}

func TestSMTPNotifier_TransportError(t *testing.T) {
	r, err := NewRenderer()
	require.NoError(t, err)
	sender := &recordingSender{err: errors.New("connection refused")}
	n := newSMTPNotifier(config.EmailConfig{FromAddress: "noreply@formcraft.io"}, sender, r, logger.NewNopLogger())

	err = n.Send(context.Background(), notification.Message{To: "a@b.c", Template: notification.TemplateReactivated})
	assert.ErrorContains(t, err, "connection refused")
}

func TestNewNotifier_FallsBackToLog(t *testing.T) {
	n, err := NewNotifier(config.EmailConfig{}, logger.NewNopLogger())
	require.NoError(t, err)
	assert.IsType(t, &LogNotifier{}, n)
	assert.NoError(t, n.Send(context.Background(), notification.Message{Template: notification.TemplateQuotaReached}))
}
