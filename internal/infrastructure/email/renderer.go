package email

import (
	"bytes"
	"embed"
	"fmt"
	"text/template"

	"github.com/formcraft-io/formcraft/internal/application/notification"
	"github.com/formcraft-io/formcraft/internal/shared/services/markdown"
)

//go:embed templates/*.md
var templateFS embed.FS

var subjects = map[string]string{
	notification.TemplateQuotaWarning:       "Vous approchez de votre quota",
	notification.TemplateQuotaReached:       "Quota atteint",
	notification.TemplatePaymentFailed:      "Échec de paiement",
	notification.TemplatePaymentUrgent:      "Action requise : paiement en échec",
	notification.TemplateSuspensionImminent: "Votre abonnement va être suspendu",
	notification.TemplateSubscriptionPaused: "Abonnement suspendu",
	notification.TemplateReactivated:        "Abonnement réactivé",
	notification.TemplateDowngraded:         "Passage à l'offre gratuite",
	notification.TemplateNewSubmission:      "Nouvelle réponse à votre formulaire",
}

// Rendered is a message ready for the transport.
type Rendered struct {
	Subject string
	Text    string
	HTML    string
}

// Renderer turns a notification into a subject, a markdown text body and
// its sanitized HTML alternative.
type Renderer struct {
	templates *template.Template
	markdown  *markdown.EmailConverter
}

func NewRenderer() (*Renderer, error) {
	tmpl, err := template.New("email").ParseFS(templateFS, "templates/*.md")
	if err != nil {
		return nil, fmt.Errorf("failed to parse email templates: %w", err)
	}
	for name := range subjects {
		if tmpl.Lookup(name+".md") == nil {
			return nil, fmt.Errorf("missing email template %s", name)
		}
	}
	return &Renderer{
		templates: tmpl,
		markdown:  markdown.NewEmailConverter(),
	}, nil
}

func (r *Renderer) Render(msg notification.Message) (*Rendered, error) {
	subject, ok := subjects[msg.Template]
	if !ok {
		return nil, fmt.Errorf("unknown email template %q", msg.Template)
	}

	data := msg.Data
	if data == nil {
		data = map[string]any{}
	}

	var body bytes.Buffer
	err := r.templates.ExecuteTemplate(&body, msg.Template+".md", map[string]any{
		"Name": msg.Name,
		"Data": data,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to render template %s: %w", msg.Template, err)
	}

	htmlBody, err := r.markdown.Convert(body.String())
	if err != nil {
		return nil, err
	}

	return &Rendered{
		Subject: subject,
		Text:    body.String(),
		HTML:    htmlBody,
	}, nil
}
