// AngelaMos | 2026
// mail.go

package mail

import (
	"context"
	"fmt"
	"html"
	"log/slog"
	"strings"

	gomail "github.com/wneessen/go-mail"

	"github.com/nhpc-ltd/blog-api/internal/config"
)

const resetSubject = "Reset your NHPC Blog password"

type Mailer interface {
	SendPasswordReset(ctx context.Context, to, link string) error
}

type SMTPMailer struct {
	client *gomail.Client
	from   string
}

// New returns an SMTP mailer, or a LogMailer when no SMTP host is set.
func New(cfg config.SMTPConfig, logger *slog.Logger) (Mailer, error) {
	if cfg.Host == "" {
		logger.Warn("smtp host not configured, reset links will be logged")
		return NewLogMailer(logger), nil
	}

	m, err := NewSMTPMailer(cfg)
	if err != nil {
		return nil, err
	}
	return m, nil
}

func NewSMTPMailer(cfg config.SMTPConfig) (*SMTPMailer, error) {
	opts := []gomail.Option{
		gomail.WithPort(cfg.Port),
		gomail.WithTLSPolicy(gomail.TLSOpportunistic),
	}
	if cfg.Username != "" {
		opts = append(opts,
			gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
			gomail.WithUsername(cfg.Username),
			gomail.WithPassword(cfg.Password),
		)
	}

	client, err := gomail.NewClient(cfg.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("smtp client: %w", err)
	}
	return &SMTPMailer{client: client, from: cfg.From}, nil
}

func (m *SMTPMailer) SendPasswordReset(ctx context.Context, to, link string) error {
	msg, err := resetMessage(m.from, to, link)
	if err != nil {
		return err
	}
	if err := m.client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("send reset mail: %w", err)
	}
	return nil
}

func resetMessage(from, to, link string) (*gomail.Msg, error) {
	msg := gomail.NewMsg()
	if err := msg.From(from); err != nil {
		return nil, fmt.Errorf("reset mail from: %w", err)
	}
	if err := msg.To(to); err != nil {
		return nil, fmt.Errorf("reset mail to: %w", err)
	}
	msg.Subject(resetSubject)
	msg.SetBodyString(gomail.TypeTextPlain, resetText(link))
	msg.AddAlternativeString(gomail.TypeTextHTML, resetHTML(link))
	return msg, nil
}

func resetText(link string) string {
	var b strings.Builder
	b.WriteString("We received a request to reset your password.\n\n")
	b.WriteString("Open the link below to choose a new one. It expires in one hour.\n\n")
	b.WriteString(link)
	b.WriteString("\n\nIf you did not ask for this you can ignore this email.\n")
	return b.String()
}

func resetHTML(link string) string {
	return `<p>We received a request to reset your password.</p>` +
		`<p><a href="` + html.EscapeString(link) + `">Choose a new password</a>. The link expires in one hour.</p>` +
		`<p>If you did not ask for this you can ignore this email.</p>`
}

// LogMailer writes reset links to the log. Development only.
type LogMailer struct {
	logger *slog.Logger
}

func NewLogMailer(logger *slog.Logger) *LogMailer {
	return &LogMailer{logger: logger}
}

func (m *LogMailer) SendPasswordReset(ctx context.Context, to, link string) error {
	m.logger.InfoContext(ctx, "password reset mail", "to", to, "link", link)
	return nil
}
