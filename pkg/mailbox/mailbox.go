// Package mailbox reads the outreach inbox over IMAP so the closer can
// detect and classify replies. The Reader interface keeps the closer
// testable without a live mailbox.
package mailbox

import (
	"context"
	"fmt"
	"io"

	"github.com/emersion/go-imap"
	"github.com/emersion/go-imap/client"
	"github.com/rotisserie/eris"

	"github.com/dontaybee-cyber/dbai-sale-swarm/pkg/mailer"
)

// Reader answers reply questions about one inbox.
type Reader interface {
	// HasReplyFrom reports whether any message from the address exists.
	HasReplyFrom(ctx context.Context, address string) (bool, error)
	// LatestBody returns the raw body of the newest message from the
	// address, or "" when none exists.
	LatestBody(ctx context.Context, address string) (string, error)
	Close() error
}

// Config holds IMAP connection settings.
type Config struct {
	Host     string
	Port     int
	Username string
	Password string
}

// IMAPReader implements Reader over go-imap.
type IMAPReader struct {
	c *client.Client
}

// Dial connects and authenticates. Plus aliases are stripped from the login
// the same way the SMTP side does it.
func Dial(cfg Config) (*IMAPReader, error) {
	if cfg.Host == "" {
		return nil, eris.New("mailbox: imap host is required")
	}
	if cfg.Port == 0 {
		cfg.Port = 993
	}

	c, err := client.DialTLS(fmt.Sprintf("%s:%d", cfg.Host, cfg.Port), nil)
	if err != nil {
		return nil, eris.Wrapf(err, "mailbox: dial %s", cfg.Host)
	}
	if err := c.Login(mailer.LoginAddress(cfg.Username), cfg.Password); err != nil {
		_ = c.Logout()
		return nil, eris.Wrap(err, "mailbox: login")
	}
	return &IMAPReader{c: c}, nil
}

// HasReplyFrom implements Reader.
func (r *IMAPReader) HasReplyFrom(_ context.Context, address string) (bool, error) {
	ids, err := r.searchFrom(address)
	if err != nil {
		return false, err
	}
	return len(ids) > 0, nil
}

// LatestBody implements Reader.
func (r *IMAPReader) LatestBody(_ context.Context, address string) (string, error) {
	ids, err := r.searchFrom(address)
	if err != nil {
		return "", err
	}
	if len(ids) == 0 {
		return "", nil
	}

	seq := new(imap.SeqSet)
	seq.AddNum(ids[len(ids)-1])
	section := &imap.BodySectionName{Peek: true}

	messages := make(chan *imap.Message, 1)
	done := make(chan error, 1)
	go func() {
		done <- r.c.Fetch(seq, []imap.FetchItem{section.FetchItem()}, messages)
	}()

	var body string
	for msg := range messages {
		literal := msg.GetBody(section)
		if literal == nil {
			continue
		}
		raw, err := io.ReadAll(literal)
		if err != nil {
			return "", eris.Wrap(err, "mailbox: read message body")
		}
		body = string(raw)
	}
	if err := <-done; err != nil {
		return "", eris.Wrapf(err, "mailbox: fetch from %s", address)
	}
	return body, nil
}

// Close logs out of the IMAP session.
func (r *IMAPReader) Close() error {
	return r.c.Logout()
}

func (r *IMAPReader) searchFrom(address string) ([]uint32, error) {
	if _, err := r.c.Select("INBOX", true); err != nil {
		return nil, eris.Wrap(err, "mailbox: select inbox")
	}

	criteria := imap.NewSearchCriteria()
	criteria.Header.Add("From", address)
	ids, err := r.c.Search(criteria)
	if err != nil {
		return nil, eris.Wrapf(err, "mailbox: search from %s", address)
	}
	return ids, nil
}
