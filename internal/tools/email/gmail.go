package email

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"mime"
	"strings"

	"google.golang.org/api/gmail/v1"

	"github.com/soyeahso/reactor/internal/agent"
	"github.com/soyeahso/reactor/internal/logging"
	"github.com/soyeahso/reactor/internal/store"
)

// Sender delivers a plain-text message and returns the provider message ID.
type Sender interface {
	Send(ctx context.Context, to, subject, body string) (string, error)
}

// GmailSender sends mail as the authorised Gmail user.
type GmailSender struct {
	svc  *gmail.Service
	from string
}

// NewGmailSender wraps a Gmail service. from is optional; Gmail fills in the
// account address when it is empty.
func NewGmailSender(svc *gmail.Service, from string) *GmailSender {
	return &GmailSender{svc: svc, from: from}
}

func (g *GmailSender) Send(ctx context.Context, to, subject, body string) (string, error) {
	msg := &gmail.Message{Raw: encodeMessage(g.from, to, subject, body)}
	sent, err := g.svc.Users.Messages.Send("me", msg).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("failed to send email: %w", err)
	}
	return sent.Id, nil
}

// encodeMessage builds an RFC 2822 message in the URL-safe base64 form the
// Gmail API expects. Line breaks are removed from header values and the
// subject is RFC 2047 encoded when it is not plain ASCII.
func encodeMessage(from, to, subject, body string) string {
	var sb strings.Builder
	if from != "" {
		sb.WriteString("From: " + headerValue(from) + "\r\n")
	}
	sb.WriteString("To: " + headerValue(to) + "\r\n")
	sb.WriteString("Subject: " + mime.QEncoding.Encode("utf-8", headerValue(subject)) + "\r\n")
	sb.WriteString("MIME-Version: 1.0\r\n")
	sb.WriteString("Content-Type: text/plain; charset=UTF-8\r\n")
	sb.WriteString("\r\n")
	sb.WriteString(body)
	return base64.URLEncoding.EncodeToString([]byte(sb.String()))
}

var headerBreaks = strings.NewReplacer("\r", "", "\n", "")

func headerValue(s string) string {
	return headerBreaks.Replace(s)
}

func hasLineBreak(s string) bool {
	return strings.ContainsAny(s, "\r\n")
}

// SendTool returns send_email, which delivers a stored draft and marks it
// sent.
func SendTool(repo DraftRepository, sender Sender, log *logging.Logger) agent.Tool {
	log = log.Sub("email")
	return agent.ToolFunc{
		Desc: agent.ToolDescriptor{
			Name:          "send_email",
			ArgumentNames: []string{"draft_id"},
			Description:   "Sends a previously written email draft.",
		},
		Fn: func(ctx context.Context, args []string) (string, error) {
			id := arg(args, 0)
			draft, err := repo.Get(ctx, id)
			if msg, ok := describeDraftError(err, id); ok {
				return msg, nil
			}
			if err != nil {
				return "", err
			}
			if draft.SentAt != nil {
				return fmt.Sprintf("Draft %s was already sent (message %s).", draft.ID, draft.MessageID), nil
			}
			if strings.TrimSpace(draft.To) == "" {
				return fmt.Sprintf("Draft %s has no recipient.", draft.ID), nil
			}
			if hasLineBreak(draft.To) || hasLineBreak(draft.Subject) {
				log.Warn().Str("draft", draft.ID).Msg("refusing to send draft with line breaks in headers")
				return fmt.Sprintf("Draft %s has line breaks in its recipient or subject. Update those fields before sending.", draft.ID), nil
			}

			messageID, err := sender.Send(ctx, draft.To, draft.Subject, draft.Body)
			if err != nil {
				return "", fmt.Errorf("sending draft %s: %w", draft.ID, err)
			}
			if err := repo.MarkSent(ctx, draft.ID, messageID); err != nil && !errors.Is(err, store.ErrDraftNotFound) {
				log.Warn().Err(err).Str("draft", draft.ID).Msg("sent but failed to mark draft")
			}

			log.Info().Str("draft", draft.ID).Str("to", draft.To).Str("messageId", messageID).Msg("email sent")
			return fmt.Sprintf("Email sent to %s (message ID %s).", draft.To, messageID), nil
		},
	}
}
