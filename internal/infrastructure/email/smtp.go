package email

import (
	"context"
	"fmt"

	"gopkg.in/gomail.v2"

	"github.com/formcraft-io/formcraft/internal/application/notification"
	"github.com/formcraft-io/formcraft/internal/shared/config"
	"github.com/formcraft-io/formcraft/internal/shared/logger"
	"github.com/formcraft-io/formcraft/internal/shared/utils"
)

type mailSender interface {
	DialAndSend(m ...*gomail.Message) error
}

// SMTPNotifier delivers notifications by email.
type SMTPNotifier struct {
	fromAddress string
	fromName    string
	sender      mailSender
	renderer    *Renderer
	logger      logger.Interface
}

func NewSMTPNotifier(cfg config.EmailConfig, renderer *Renderer, logger logger.Interface) *SMTPNotifier {
	dialer := gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword)
	return newSMTPNotifier(cfg, dialer, renderer, logger)
}

func newSMTPNotifier(cfg config.EmailConfig, sender mailSender, renderer *Renderer, logger logger.Interface) *SMTPNotifier {
	return &SMTPNotifier{
		fromAddress: cfg.FromAddress,
		fromName:    cfg.FromName,
		sender:      sender,
		renderer:    renderer,
		logger:      logger,
	}
}

func (n *SMTPNotifier) Send(ctx context.Context, msg notification.Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	rendered, err := n.renderer.Render(msg)
	if err != nil {
		return err
	}

	m := gomail.NewMessage()
	m.SetAddressHeader("From", n.fromAddress, n.fromName)
	if msg.Name != "" {
		m.SetAddressHeader("To", msg.To, msg.Name)
	} else {
		m.SetHeader("To", msg.To)
	}
	m.SetHeader("Subject", rendered.Subject)
	m.SetBody("text/plain", rendered.Text)
	m.AddAlternative("text/html", rendered.HTML)

	if err := n.sender.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	n.logger.Debugw("email sent", "template", msg.Template, "to", utils.MaskEmail(msg.To))
	return nil
}

// LogNotifier only logs messages. It is used when no SMTP host is configured.
type LogNotifier struct {
	logger logger.Interface
}

func NewLogNotifier(logger logger.Interface) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) Send(_ context.Context, msg notification.Message) error {
	n.logger.Infow("notification not sent, smtp disabled", "template", msg.Template, "to", utils.MaskEmail(msg.To))
	return nil
}

// NewNotifier returns an SMTP notifier, or a log-only notifier when the
// SMTP host is empty.
func NewNotifier(cfg config.EmailConfig, logger logger.Interface) (notification.Notifier, error) {
	if cfg.SMTPHost == "" {
		return NewLogNotifier(logger), nil
	}
	renderer, err := NewRenderer()
	if err != nil {
		return nil, err
	}
	return NewSMTPNotifier(cfg, renderer, logger), nil
}
