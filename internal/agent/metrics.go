package agent

import (
	"context"
	"time"
)

// Metrics are counters accumulated over a runner's lifetime.
type Metrics struct {
	TotalQueries  int           `json:"total_queries"`
	TotalThoughts int           `json:"total_thoughts"`
	TotalActions  int           `json:"total_actions"`
	TotalTime     time.Duration `json:"total_time"`
}

// InteractionLog is a snapshot of one completed interaction.
type InteractionLog struct {
	Timestamp time.Time `json:"timestamp"`
	Query     string    `json:"query"`
	Response  string    `json:"response"`
	Metrics   Metrics   `json:"metrics"`
	Context   []Entry   `json:"context_window"`
}

// InteractionSink persists interaction snapshots.
type InteractionSink interface {
	Save(ctx context.Context, rec InteractionLog) error
}

// Metrics returns a copy of the runner's counters.
func (r *Runner) Metrics() Metrics {
	return r.metrics
}

// Snapshot captures the query, its answer, the current metrics and the
// window contents. It does not mutate the runner.
func (r *Runner) Snapshot(query, response string) InteractionLog {
	return InteractionLog{
		Timestamp: r.now(),
		Query:     query,
		Response:  response,
		Metrics:   r.metrics,
		Context:   r.window.Snapshot(),
	}
}
