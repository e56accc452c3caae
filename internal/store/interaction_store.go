package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/soyeahso/reactor/internal/agent"
)

// timestampLayout is fixed width so timestamps sort lexically.
const timestampLayout = "2006-01-02T15:04:05.000000000Z07:00"

// ErrInteractionNotFound is returned when no interaction has the given ID.
var ErrInteractionNotFound = errors.New("interaction not found")

// Interaction is a stored interaction log.
type Interaction struct {
	ID string `json:"id"`
	agent.InteractionLog
	Rank float64 `json:"rank,omitempty"` // FTS5 rank score (search results only)
}

// InteractionLister lists stored interactions, newest first.
type InteractionLister interface {
	List(ctx context.Context, limit int) ([]Interaction, error)
}

// InteractionStore implements agent.InteractionSink backed by SQLite, with
// full-text search over queries and responses.
type InteractionStore struct {
	db *DB
}

// NewInteractionStore creates an interaction store using the given database.
func NewInteractionStore(db *DB) *InteractionStore {
	return &InteractionStore{db: db}
}

// Save inserts an interaction snapshot.
func (s *InteractionStore) Save(ctx context.Context, rec agent.InteractionLog) error {
	_, err := s.Insert(ctx, rec)
	return err
}

// Insert stores an interaction snapshot and returns its generated ID.
func (s *InteractionStore) Insert(ctx context.Context, rec agent.InteractionLog) (string, error) {
	window, err := json.Marshal(rec.Context)
	if err != nil {
		return "", fmt.Errorf("encoding context window: %w", err)
	}
	if rec.Timestamp.IsZero() {
		rec.Timestamp = time.Now()
	}

	id := uuid.New().String()
	_, err = s.db.sql.ExecContext(ctx,
		`INSERT INTO interactions
		   (id, timestamp, query, response, total_queries, total_thoughts, total_actions, total_time_ns, context_window)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, rec.Timestamp.UTC().Format(timestampLayout), rec.Query, rec.Response,
		rec.Metrics.TotalQueries, rec.Metrics.TotalThoughts, rec.Metrics.TotalActions,
		int64(rec.Metrics.TotalTime), string(window),
	)
	if err != nil {
		return "", fmt.Errorf("inserting interaction: %w", err)
	}

	s.db.log.Debug().Str("id", id).Str("query", rec.Query).Msg("interaction saved")
	return id, nil
}

// Get returns an interaction by ID.
func (s *InteractionStore) Get(ctx context.Context, id string) (*Interaction, error) {
	rows, err := s.db.sql.QueryContext(ctx,
		`SELECT id, timestamp, query, response, total_queries, total_thoughts, total_actions,
		        total_time_ns, context_window, 0
		 FROM interactions WHERE id = ?`, id,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	found, err := scanInteractions(rows)
	if err != nil {
		return nil, err
	}
	if len(found) == 0 {
		return nil, ErrInteractionNotFound
	}
	return &found[0], nil
}

// List returns the most recent interactions, newest first. Limit of 0
// defaults to 20.
func (s *InteractionStore) List(ctx context.Context, limit int) ([]Interaction, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.sql.QueryContext(ctx,
		`SELECT id, timestamp, query, response, total_queries, total_thoughts, total_actions,
		        total_time_ns, context_window, 0
		 FROM interactions
		 ORDER BY timestamp DESC, rowid DESC
		 LIMIT ?`, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanInteractions(rows)
}

// Search finds interactions whose query or response match the FTS5 query.
// Results are ranked by relevance. Limit of 0 defaults to 20.
func (s *InteractionStore) Search(ctx context.Context, query string, limit int) ([]Interaction, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.sql.QueryContext(ctx,
		`SELECT i.id, i.timestamp, i.query, i.response, i.total_queries, i.total_thoughts,
		        i.total_actions, i.total_time_ns, i.context_window, rank
		 FROM interactions_fts
		 JOIN interactions i ON i.rowid = interactions_fts.rowid
		 WHERE interactions_fts MATCH ?
		 ORDER BY rank
		 LIMIT ?`,
		query, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("searching interactions: %w", err)
	}
	defer rows.Close()

	return scanInteractions(rows)
}

// Delete removes an interaction by ID.
func (s *InteractionStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.sql.ExecContext(ctx, `DELETE FROM interactions WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrInteractionNotFound
	}
	return nil
}

func scanInteractions(rows *sql.Rows) ([]Interaction, error) {
	var out []Interaction
	for rows.Next() {
		var (
			in        Interaction
			timestamp string
			totalNS   int64
			window    string
		)
		if err := rows.Scan(
			&in.ID, &timestamp, &in.Query, &in.Response,
			&in.Metrics.TotalQueries, &in.Metrics.TotalThoughts, &in.Metrics.TotalActions,
			&totalNS, &window, &in.Rank,
		); err != nil {
			return nil, err
		}

		ts, err := time.Parse(timestampLayout, timestamp)
		if err != nil {
			return nil, fmt.Errorf("parsing timestamp for %s: %w", in.ID, err)
		}
		in.Timestamp = ts
		in.Metrics.TotalTime = time.Duration(totalNS)
		if err := json.Unmarshal([]byte(window), &in.Context); err != nil {
			return nil, fmt.Errorf("decoding context window for %s: %w", in.ID, err)
		}
		out = append(out, in)
	}
	return out, rows.Err()
}
