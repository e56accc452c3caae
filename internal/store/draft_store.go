package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"
)

const draftIDPrefix = "draft_"

var (
	// ErrDraftNotFound is returned when no draft has the given ID.
	ErrDraftNotFound = errors.New("draft not found")

	// ErrInvalidDraftID is returned for IDs not of the form draft_<n>.
	ErrInvalidDraftID = errors.New("invalid draft id")

	// ErrInvalidDraftField is returned when updating a field other than
	// to, subject or body.
	ErrInvalidDraftField = errors.New("invalid draft field")
)

// DraftFields lists the fields UpdateField accepts.
var DraftFields = []string{"to", "subject", "body"}

// Draft is a locally stored email draft.
type Draft struct {
	ID        string     `json:"id"`
	To        string     `json:"to"`
	Subject   string     `json:"subject"`
	Body      string     `json:"body"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
	SentAt    *time.Time `json:"sentAt,omitempty"`
	MessageID string     `json:"messageId,omitempty"`
}

// DraftStore keeps email drafts in SQLite. Draft IDs are draft_<n>.
type DraftStore struct {
	db *DB
}

// NewDraftStore creates a draft store using the given database.
func NewDraftStore(db *DB) *DraftStore {
	return &DraftStore{db: db}
}

// FormatDraftID renders a sequence number as a draft ID.
func FormatDraftID(seq int64) string {
	return draftIDPrefix + strconv.FormatInt(seq, 10)
}

// ParseDraftID extracts the sequence number from "draft_<n>" or a bare "<n>".
func ParseDraftID(id string) (int64, error) {
	raw := strings.TrimPrefix(strings.TrimSpace(id), draftIDPrefix)
	seq, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || seq < 0 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidDraftID, id)
	}
	return seq, nil
}

// Create stores a new draft and returns it with its assigned ID.
func (s *DraftStore) Create(ctx context.Context, to, subject, body string) (*Draft, error) {
	now := time.Now().UTC().Format(time.DateTime)
	res, err := s.db.sql.ExecContext(ctx,
		`INSERT INTO email_drafts (to_addr, subject, body, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?)`,
		to, subject, body, now, now,
	)
	if err != nil {
		return nil, fmt.Errorf("creating draft: %w", err)
	}
	seq, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return s.get(ctx, seq)
}

// Put creates or overwrites the draft with the given ID.
func (s *DraftStore) Put(ctx context.Context, id, to, subject, body string) (*Draft, error) {
	seq, err := ParseDraftID(id)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC().Format(time.DateTime)
	_, err = s.db.sql.ExecContext(ctx,
		`INSERT INTO email_drafts (seq, to_addr, subject, body, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(seq) DO UPDATE SET
		   to_addr = excluded.to_addr,
		   subject = excluded.subject,
		   body = excluded.body,
		   updated_at = excluded.updated_at,
		   sent_at = NULL,
		   message_id = NULL`,
		seq, to, subject, body, now, now,
	)
	if err != nil {
		return nil, fmt.Errorf("saving draft %s: %w", id, err)
	}
	return s.get(ctx, seq)
}

// Get returns the draft with the given ID.
func (s *DraftStore) Get(ctx context.Context, id string) (*Draft, error) {
	seq, err := ParseDraftID(id)
	if err != nil {
		return nil, err
	}
	return s.get(ctx, seq)
}

// UpdateField replaces one of to, subject or body.
func (s *DraftStore) UpdateField(ctx context.Context, id, field, value string) (*Draft, error) {
	seq, err := ParseDraftID(id)
	if err != nil {
		return nil, err
	}

	field = strings.ToLower(strings.TrimSpace(field))
	if !slices.Contains(DraftFields, field) {
		return nil, fmt.Errorf("%w: %q (expected one of %s)", ErrInvalidDraftField, field, strings.Join(DraftFields, ", "))
	}
	column := field
	if field == "to" {
		column = "to_addr"
	}

	res, err := s.db.sql.ExecContext(ctx,
		`UPDATE email_drafts SET `+column+` = ?, updated_at = ? WHERE seq = ?`,
		value, time.Now().UTC().Format(time.DateTime), seq,
	)
	if err != nil {
		return nil, fmt.Errorf("updating draft %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, ErrDraftNotFound
	}
	return s.get(ctx, seq)
}

// Delete removes the draft with the given ID.
func (s *DraftStore) Delete(ctx context.Context, id string) error {
	seq, err := ParseDraftID(id)
	if err != nil {
		return err
	}
	res, err := s.db.sql.ExecContext(ctx, `DELETE FROM email_drafts WHERE seq = ?`, seq)
	if err != nil {
		return fmt.Errorf("deleting draft %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrDraftNotFound
	}
	return nil
}

// List returns up to limit drafts in ID order. Limit of 0 returns all.
func (s *DraftStore) List(ctx context.Context, limit int) ([]Draft, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.sql.QueryContext(ctx,
		`SELECT seq, to_addr, subject, body, created_at, updated_at, sent_at, message_id
		 FROM email_drafts ORDER BY seq LIMIT ?`, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var drafts []Draft
	for rows.Next() {
		d, err := scanDraft(rows)
		if err != nil {
			return nil, err
		}
		drafts = append(drafts, *d)
	}
	return drafts, rows.Err()
}

// MarkSent records that a draft was sent under the given message ID.
func (s *DraftStore) MarkSent(ctx context.Context, id, messageID string) error {
	seq, err := ParseDraftID(id)
	if err != nil {
		return err
	}
	res, err := s.db.sql.ExecContext(ctx,
		`UPDATE email_drafts SET sent_at = ?, message_id = ? WHERE seq = ?`,
		time.Now().UTC().Format(time.DateTime), messageID, seq,
	)
	if err != nil {
		return fmt.Errorf("marking draft %s sent: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrDraftNotFound
	}
	return nil
}

func (s *DraftStore) get(ctx context.Context, seq int64) (*Draft, error) {
	rows, err := s.db.sql.QueryContext(ctx,
		`SELECT seq, to_addr, subject, body, created_at, updated_at, sent_at, message_id
		 FROM email_drafts WHERE seq = ?`, seq,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, err
		}
		return nil, ErrDraftNotFound
	}
	return scanDraft(rows)
}

func parseDraftTime(id, column, value string) (time.Time, error) {
	t, err := time.Parse(time.DateTime, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing %s of %s: %w", column, id, err)
	}
	return t, nil
}

func scanDraft(rows *sql.Rows) (*Draft, error) {
	var (
		d                    Draft
		seq                  int64
		createdAt, updatedAt string
		sentAt, messageID    sql.NullString
	)
	if err := rows.Scan(&seq, &d.To, &d.Subject, &d.Body, &createdAt, &updatedAt, &sentAt, &messageID); err != nil {
		return nil, err
	}

	d.ID = FormatDraftID(seq)
	var err error
	if d.CreatedAt, err = parseDraftTime(d.ID, "created_at", createdAt); err != nil {
		return nil, err
	}
	if d.UpdatedAt, err = parseDraftTime(d.ID, "updated_at", updatedAt); err != nil {
		return nil, err
	}
	if sentAt.Valid {
		t, err := parseDraftTime(d.ID, "sent_at", sentAt.String)
		if err != nil {
			return nil, err
		}
		d.SentAt = &t
	}
	d.MessageID = messageID.String
	return &d, nil
}
