package email

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/emersion/go-imap"
	"github.com/emersion/go-imap/client"

	"github.com/soyeahso/reactor/internal/agent"
	"github.com/soyeahso/reactor/internal/config"
	"github.com/soyeahso/reactor/internal/logging"
)

const maxInboxLimit = 50

// MessageSummary is the envelope of one inbox message.
type MessageSummary struct {
	From    string
	Subject string
	Date    time.Time
}

// Mailbox lists recent messages, newest first.
type Mailbox interface {
	Recent(ctx context.Context, n int) ([]MessageSummary, error)
}

// IMAPMailbox reads a mailbox over IMAP, opening a connection per call.
type IMAPMailbox struct {
	cfg  config.IMAPConfig
	dial func(addr string) (*client.Client, error)
	log  *logging.Logger
}

// NewIMAPMailbox connects over TLS to cfg.Host:cfg.Port.
func NewIMAPMailbox(cfg config.IMAPConfig, log *logging.Logger) *IMAPMailbox {
	if cfg.Port == 0 {
		cfg.Port = 993
	}
	if cfg.Mailbox == "" {
		cfg.Mailbox = "INBOX"
	}
	return &IMAPMailbox{
		cfg:  cfg,
		dial: func(addr string) (*client.Client, error) { return client.DialTLS(addr, nil) },
		log:  log.Sub("imap"),
	}
}

func (m *IMAPMailbox) connect() (*client.Client, error) {
	addr := net.JoinHostPort(m.cfg.Host, strconv.Itoa(m.cfg.Port))
	c, err := m.dial(addr)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to IMAP server: %w", err)
	}
	if err := c.Login(m.cfg.Username, m.cfg.Password); err != nil {
		c.Logout()
		return nil, fmt.Errorf("failed to login: %w", err)
	}
	return c, nil
}

func (m *IMAPMailbox) Recent(ctx context.Context, n int) ([]MessageSummary, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	c, err := m.connect()
	if err != nil {
		return nil, err
	}
	defer c.Logout()

	mbox, err := c.Select(m.cfg.Mailbox, true)
	if err != nil {
		return nil, fmt.Errorf("failed to select mailbox %s: %w", m.cfg.Mailbox, err)
	}
	if mbox.Messages == 0 || n <= 0 {
		return nil, nil
	}

	from := uint32(1)
	if mbox.Messages > uint32(n) {
		from = mbox.Messages - uint32(n) + 1
	}
	seqset := new(imap.SeqSet)
	seqset.AddRange(from, mbox.Messages)

	messages := make(chan *imap.Message, n)
	done := make(chan error, 1)
	go func() {
		done <- c.Fetch(seqset, []imap.FetchItem{imap.FetchEnvelope}, messages)
	}()

	var out []MessageSummary
	for msg := range messages {
		if msg.Envelope == nil {
			continue
		}
		out = append(out, MessageSummary{
			From:    formatAddresses(msg.Envelope.From),
			Subject: msg.Envelope.Subject,
			Date:    msg.Envelope.Date,
		})
	}
	if err := <-done; err != nil {
		return nil, fmt.Errorf("failed to fetch messages: %w", err)
	}

	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	m.log.Debug().Int("count", len(out)).Str("mailbox", m.cfg.Mailbox).Msg("inbox fetched")
	return out, nil
}

func formatAddresses(addrs []*imap.Address) string {
	parts := make([]string, 0, len(addrs))
	for _, a := range addrs {
		if a == nil {
			continue
		}
		if a.PersonalName != "" {
			parts = append(parts, fmt.Sprintf("%s <%s>", a.PersonalName, a.Address()))
		} else {
			parts = append(parts, a.Address())
		}
	}
	return strings.Join(parts, ", ")
}

// InboxTool returns read_inbox over mb.
func InboxTool(mb Mailbox, log *logging.Logger) agent.Tool {
	log = log.Sub("email")
	return agent.ToolFunc{
		Desc: agent.ToolDescriptor{
			Name:          "read_inbox",
			ArgumentNames: []string{"limit"},
			Description:   fmt.Sprintf("Lists the most recent emails in the inbox, newest first. limit is between 1 and %d.", maxInboxLimit),
		},
		Fn: func(ctx context.Context, args []string) (string, error) {
			limit, err := strconv.Atoi(strings.TrimSpace(arg(args, 0)))
			if err != nil || limit < 1 {
				return fmt.Sprintf("Invalid limit %q. Expected a positive number.", arg(args, 0)), nil
			}
			limit = min(limit, maxInboxLimit)

			msgs, err := mb.Recent(ctx, limit)
			if err != nil {
				return "", err
			}
			if len(msgs) == 0 {
				return "The inbox is empty.", nil
			}

			log.Debug().Int("count", len(msgs)).Msg("inbox listed")
			var sb strings.Builder
			for i, m := range msgs {
				fmt.Fprintf(&sb, "%d. From: %s\n   Subject: %s\n   Date: %s\n", i+1, m.From, m.Subject, m.Date.Format(time.RFC1123Z))
			}
			return strings.TrimRight(sb.String(), "\n"), nil
		},
	}
}
