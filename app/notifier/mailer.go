package notifier

import (
	"context"
	"errors"
	"io"
	"strings"

	"gopkg.in/gomail.v2"
)

var ErrMailerNotConfigured = errors.New("smtp is not configured")

type Attachment struct {
	Filename    string
	ContentType string
	Data        []byte
}

type Mail struct {
	To          []string
	Subject     string
	HTML        string
	Attachments []Attachment
}

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

type dialer interface {
	DialAndSend(m ...*gomail.Message) error
}

type SMTPMailer struct {
	from   string
	dialer dialer
}

func NewSMTPMailer(cfg SMTPConfig) *SMTPMailer {
	from := cfg.From
	if from == "" {
		from = cfg.Username
	}
	m := &SMTPMailer{from: from}
	if strings.TrimSpace(cfg.Host) != "" && strings.TrimSpace(cfg.Username) != "" {
		m.dialer = gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password)
	}
	return m
}

// Send builds the MIME message and delivers it over a fresh SMTP connection.
// gomail has no context support; ctx is only checked before dialing.
func (m *SMTPMailer) Send(ctx context.Context, mail Mail) error {
	if m.dialer == nil {
		return ErrMailerNotConfigured
	}
	if len(mail.To) == 0 {
		return errors.New("mail has no recipients")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	return m.dialer.DialAndSend(m.buildMessage(mail))
}

func (m *SMTPMailer) buildMessage(mail Mail) *gomail.Message {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", mail.To...)
	msg.SetHeader("Subject", mail.Subject)
	msg.SetBody("text/html", mail.HTML)

	for _, att := range mail.Attachments {
		data := att.Data
		contentType := att.ContentType
		if contentType == "" {
			contentType = "application/octet-stream"
		}
		msg.Attach(att.Filename,
			gomail.SetHeader(map[string][]string{"Content-Type": {contentType}}),
			gomail.SetCopyFunc(func(w io.Writer) error {
				_, err := w.Write(data)
				return err
			}),
		)
	}
	return msg
}
