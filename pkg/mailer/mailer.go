// Package mailer is the SMTP transport for outreach email. It hides the
// wire-level client behind a one-method interface so the send stages can be
// tested without a mail server.
package mailer

import (
	"context"
	"os"
	"strings"

	"github.com/rotisserie/eris"
	gomail "github.com/wneessen/go-mail"
	"go.uber.org/zap"
)

// Message is one outbound email. AttachmentPath is optional; a missing file
// downgrades to sending without the attachment rather than failing the send.
type Message struct {
	To             string
	Subject        string
	Body           string
	AttachmentPath string
}

// Mailer sends messages. The returned bool reports whether the attachment
// actually went out with the message.
type Mailer interface {
	Send(ctx context.Context, msg Message) (attached bool, err error)
}

// Config holds SMTP transport settings.
type Config struct {
	Host     string
	Port     int
	Username string // full From address, aliases allowed (user+tag@host)
	Password string
	From     string // defaults to Username
}

// LoginAddress strips a plus alias from an address for providers (Gmail)
// that reject aliased logins while still delivering aliased From headers.
func LoginAddress(addr string) string {
	at := strings.IndexByte(addr, '@')
	if at < 0 {
		return addr
	}
	user, domain := addr[:at], addr[at+1:]
	if plus := strings.IndexByte(user, '+'); plus >= 0 {
		user = user[:plus]
	}
	return user + "@" + domain
}

// SMTPMailer implements Mailer over go-mail.
type SMTPMailer struct {
	cfg Config
}

// New creates an SMTP mailer.
func New(cfg Config) (*SMTPMailer, error) {
	if cfg.Host == "" {
		return nil, eris.New("mailer: smtp host is required")
	}
	if cfg.Username == "" || cfg.Password == "" {
		return nil, eris.New("mailer: smtp credentials are required")
	}
	if cfg.Port == 0 {
		cfg.Port = 587
	}
	if cfg.From == "" {
		cfg.From = cfg.Username
	}
	return &SMTPMailer{cfg: cfg}, nil
}

// Send implements Mailer.
func (m *SMTPMailer) Send(ctx context.Context, msg Message) (bool, error) {
	mail := gomail.NewMsg()
	if err := mail.From(m.cfg.From); err != nil {
		return false, eris.Wrap(err, "mailer: from address")
	}
	if err := mail.To(msg.To); err != nil {
		return false, eris.Wrapf(err, "mailer: to address %q", msg.To)
	}
	mail.Subject(msg.Subject)
	mail.SetBodyString(gomail.TypeTextPlain, msg.Body)

	attached := false
	if msg.AttachmentPath != "" {
		if _, err := os.Stat(msg.AttachmentPath); err != nil {
			zap.L().Error("mailer: attachment missing, sending without it",
				zap.String("path", msg.AttachmentPath),
				zap.Error(err),
			)
		} else {
			mail.AttachFile(msg.AttachmentPath)
			attached = true
		}
	}

	client, err := gomail.NewClient(m.cfg.Host,
		gomail.WithPort(m.cfg.Port),
		gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
		gomail.WithUsername(LoginAddress(m.cfg.Username)),
		gomail.WithPassword(m.cfg.Password),
		gomail.WithTLSPortPolicy(gomail.TLSMandatory),
	)
	if err != nil {
		return false, eris.Wrap(err, "mailer: smtp client")
	}

	if err := client.DialAndSendWithContext(ctx, mail); err != nil {
		return false, eris.Wrapf(err, "mailer: send to %s", msg.To)
	}
	return attached, nil
}
