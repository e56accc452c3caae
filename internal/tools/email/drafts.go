// Package email implements the draft, send and inbox tools.
package email

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/soyeahso/reactor/internal/agent"
	"github.com/soyeahso/reactor/internal/logging"
	"github.com/soyeahso/reactor/internal/store"
)

// DraftRepository is the draft storage the tools need. *store.DraftStore
// satisfies it.
type DraftRepository interface {
	Create(ctx context.Context, to, subject, body string) (*store.Draft, error)
	Put(ctx context.Context, id, to, subject, body string) (*store.Draft, error)
	Get(ctx context.Context, id string) (*store.Draft, error)
	UpdateField(ctx context.Context, id, field, value string) (*store.Draft, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, limit int) ([]store.Draft, error)
	MarkSent(ctx context.Context, id, messageID string) error
}

// DraftTools returns write_email, get_draft, update_draft, delete_draft and
// list_drafts bound to repo.
func DraftTools(repo DraftRepository, log *logging.Logger) []agent.Tool {
	d := &drafts{repo: repo, log: log.Sub("email")}
	return []agent.Tool{
		agent.ToolFunc{
			Desc: agent.ToolDescriptor{
				Name:          "write_email",
				ArgumentNames: []string{"to", "subject", "body", "draft_id"},
				Description: "Writes an email draft and returns its draft ID. Pass draft_id to overwrite an existing draft. " +
					"A single JSON object with to, subject, body and draft_id keys is also accepted.",
			},
			Fn: d.write,
		},
		agent.ToolFunc{
			Desc: agent.ToolDescriptor{
				Name:          "get_draft",
				ArgumentNames: []string{"draft_id"},
				Description:   "Shows the recipient, subject and body of an email draft.",
			},
			Fn: d.get,
		},
		agent.ToolFunc{
			Desc: agent.ToolDescriptor{
				Name:          "update_draft",
				ArgumentNames: []string{"draft_id", "field", "new_content"},
				Description:   "Replaces one field of an email draft. field must be to, subject or body.",
			},
			Fn: d.update,
		},
		agent.ToolFunc{
			Desc: agent.ToolDescriptor{
				Name:          "delete_draft",
				ArgumentNames: []string{"draft_id"},
				Description:   "Deletes an email draft.",
			},
			Fn: d.delete,
		},
		agent.ToolFunc{
			Desc: agent.ToolDescriptor{
				Name:          "list_drafts",
				ArgumentNames: []string{"amount"},
				Description:   "Lists up to amount email drafts, oldest first.",
			},
			Fn: d.list,
		},
	}
}

type drafts struct {
	repo DraftRepository
	log  *logging.Logger
}

type draftInput struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
	DraftID string `json:"draft_id"`
}

func parseDraftInput(args []string) draftInput {
	if len(args) == 1 && strings.HasPrefix(strings.TrimSpace(args[0]), "{") {
		var in draftInput
		if err := json.Unmarshal([]byte(args[0]), &in); err == nil {
			return in
		}
	}
	var in draftInput
	fields := []*string{&in.To, &in.Subject, &in.Body, &in.DraftID}
	for i, a := range args {
		if i < len(fields) {
			*fields[i] = a
		}
	}
	return in
}

func (d *drafts) write(ctx context.Context, args []string) (string, error) {
	in := parseDraftInput(args)
	if strings.TrimSpace(in.To) == "" {
		return "Please provide a recipient for the email.", nil
	}

	var (
		draft *store.Draft
		err   error
	)
	if id := strings.TrimSpace(in.DraftID); id != "" && !strings.EqualFold(id, "none") {
		draft, err = d.repo.Put(ctx, id, in.To, in.Subject, in.Body)
	} else {
		draft, err = d.repo.Create(ctx, in.To, in.Subject, in.Body)
	}
	if msg, ok := describeDraftError(err, in.DraftID); ok {
		return msg, nil
	}
	if err != nil {
		return "", err
	}

	d.log.Info().Str("draft", draft.ID).Str("to", draft.To).Msg("draft saved")
	return fmt.Sprintf("Draft saved with ID: %s", draft.ID), nil
}

func (d *drafts) get(ctx context.Context, args []string) (string, error) {
	id := arg(args, 0)
	draft, err := d.repo.Get(ctx, id)
	if msg, ok := describeDraftError(err, id); ok {
		return msg, nil
	}
	if err != nil {
		return "", err
	}
	return formatDraft(draft), nil
}

func (d *drafts) update(ctx context.Context, args []string) (string, error) {
	if len(args) < 3 {
		return "Please provide draft_id, field and new_content.", nil
	}
	id, field := args[0], args[1]
	draft, err := d.repo.UpdateField(ctx, id, field, args[2])
	if msg, ok := describeDraftError(err, id); ok {
		return msg, nil
	}
	if err != nil {
		return "", err
	}

	d.log.Info().Str("draft", draft.ID).Str("field", field).Msg("draft updated")
	return fmt.Sprintf("Draft %s updated: %s changed.", draft.ID, strings.ToLower(strings.TrimSpace(field))), nil
}

func (d *drafts) delete(ctx context.Context, args []string) (string, error) {
	id := arg(args, 0)
	err := d.repo.Delete(ctx, id)
	if msg, ok := describeDraftError(err, id); ok {
		return msg, nil
	}
	if err != nil {
		return "", err
	}

	d.log.Info().Str("draft", id).Msg("draft deleted")
	return fmt.Sprintf("Draft %s deleted.", strings.TrimSpace(id)), nil
}

func (d *drafts) list(ctx context.Context, args []string) (string, error) {
	amount, err := strconv.Atoi(strings.TrimSpace(arg(args, 0)))
	if err != nil || amount < 1 {
		return fmt.Sprintf("Invalid amount %q. Expected a positive number.", arg(args, 0)), nil
	}

	list, err := d.repo.List(ctx, amount)
	if err != nil {
		return "", err
	}
	if len(list) == 0 {
		return "No drafts found.", nil
	}

	lines := make([]string, 0, len(list))
	for _, dr := range list {
		line := fmt.Sprintf("%s | To: %s | Subject: %s", dr.ID, dr.To, dr.Subject)
		if dr.SentAt != nil {
			line += " | sent"
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n"), nil
}

func formatDraft(d *store.Draft) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "ID: %s\n", d.ID)
	fmt.Fprintf(&sb, "To: %s\n", d.To)
	fmt.Fprintf(&sb, "Subject: %s\n", d.Subject)
	if d.SentAt != nil {
		fmt.Fprintf(&sb, "Status: sent %s\n", d.SentAt.Format("2006-01-02 15:04"))
	}
	fmt.Fprintf(&sb, "Body:\n%s", d.Body)
	return sb.String()
}

// describeDraftError turns expected draft failures into model-facing text.
func describeDraftError(err error, id string) (string, bool) {
	id = strings.TrimSpace(id)
	switch {
	case err == nil:
		return "", false
	case errors.Is(err, store.ErrDraftNotFound):
		return fmt.Sprintf("Draft %s not found.", id), true
	case errors.Is(err, store.ErrInvalidDraftID):
		return fmt.Sprintf("Invalid draft ID %q. Draft IDs look like draft_1.", id), true
	case errors.Is(err, store.ErrInvalidDraftField):
		return fmt.Sprintf("Invalid field. Expected one of %s.", strings.Join(store.DraftFields, ", ")), true
	}
	return "", false
}

func arg(args []string, i int) string {
	if i < len(args) {
		return args[i]
	}
	return ""
}
