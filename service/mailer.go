package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/go-mail/mail/v2"
)

// Message is one outgoing email. HTML is optional.
type Message struct {
	Subject string
	Text    string
	HTML    string
}

// Mailer delivers one message to every recipient in a single call.
type Mailer interface {
	Send(ctx context.Context, msg Message, to []string) error
}

// SMTPMailer sends through an SMTP relay. Multiple recipients are placed in
// Bcc so subscribers never see each other's addresses.
type SMTPMailer struct {
	dialer *mail.Dialer
	from   string
}

var _ Mailer = (*SMTPMailer)(nil)

func NewSMTPMailer(host string, port int, username, password, from string) *SMTPMailer {
	d := mail.NewDialer(host, port, username, password)
	d.StartTLSPolicy = mail.MandatoryStartTLS
	return &SMTPMailer{dialer: d, from: from}
}

func (m *SMTPMailer) Send(ctx context.Context, msg Message, to []string) error {
	if len(to) == 0 {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	mm := mail.NewMessage()
	mm.SetHeader("From", m.from)
	if len(to) == 1 {
		mm.SetHeader("To", to[0])
	} else {
		mm.SetHeader("To", m.from)
		mm.SetHeader("Bcc", to...)
	}
	mm.SetHeader("Subject", msg.Subject)
	mm.SetBody("text/plain", msg.Text)
	if msg.HTML != "" {
		mm.AddAlternative("text/html", msg.HTML)
	}
	if err := m.dialer.DialAndSend(mm); err != nil {
		return fmt.Errorf("smtp send to %d recipients: %w", len(to), err)
	}
	return nil
}

// LogMailer writes messages to the log instead of sending them. It is used
// when SMTP is not configured. Bodies can carry reset links, so they are only
// logged at debug level.
type LogMailer struct {
	logger *slog.Logger
}

var _ Mailer = (*LogMailer)(nil)

func NewLogMailer(logger *slog.Logger) *LogMailer {
	return &LogMailer{logger: logger.With("component", "mail")}
}

func (m *LogMailer) Send(_ context.Context, msg Message, to []string) error {
	m.logger.Info("mail not sent, smtp disabled",
		"subject", msg.Subject,
		"recipients", strings.Join(to, ","),
	)
	m.logger.Debug("unsent mail body", "subject", msg.Subject, "body", msg.Text)
	return nil
}
