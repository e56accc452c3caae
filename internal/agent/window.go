package agent

import "strings"

// Role tags a context entry.
type Role string

const (
	RoleUser        Role = "user"
	RoleAssistant   Role = "assistant"
	RoleObservation Role = "observation"
)

// Label returns the capitalised role name used in rendered transcripts.
func (r Role) Label() string {
	if r == "" {
		return ""
	}
	return strings.ToUpper(string(r[:1])) + string(r[1:])
}

// DefaultWindowSize is the context window capacity used when none is configured.
const DefaultWindowSize = 5

// Entry is a single turn in the context window.
type Entry struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// ContextWindow is a fixed-capacity FIFO of entries backed by a ring buffer.
// Appending beyond capacity evicts the oldest entry.
// It is not safe for concurrent use.
type ContextWindow struct {
	buf   []Entry
	start int
	n     int
}

// NewContextWindow creates a window holding at most capacity entries.
// A capacity below 1 is treated as 1.
func NewContextWindow(capacity int) *ContextWindow {
	if capacity < 1 {
		capacity = 1
	}
	return &ContextWindow{buf: make([]Entry, capacity)}
}

// Append adds an entry, evicting the oldest one when full.
func (w *ContextWindow) Append(e Entry) {
	c := len(w.buf)
	if w.n < c {
		w.buf[(w.start+w.n)%c] = e
		w.n++
		return
	}
	w.buf[w.start] = e
	w.start = (w.start + 1) % c
}

// Len returns the number of entries held.
func (w *ContextWindow) Len() int { return w.n }

// Cap returns the fixed capacity.
func (w *ContextWindow) Cap() int { return len(w.buf) }

// Snapshot returns a copy of the entries, oldest first.
func (w *ContextWindow) Snapshot() []Entry {
	out := make([]Entry, w.n)
	for i := 0; i < w.n; i++ {
		out[i] = w.buf[(w.start+i)%len(w.buf)]
	}
	return out
}

// Last returns the newest entry.
func (w *ContextWindow) Last() (Entry, bool) {
	if w.n == 0 {
		return Entry{}, false
	}
	return w.buf[(w.start+w.n-1)%len(w.buf)], true
}

// Render produces the transcript sent to the model: one "Role: content"
// block per entry, joined by newlines, oldest first.
func (w *ContextWindow) Render() string {
	var b strings.Builder
	for i, e := range w.Snapshot() {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(e.Role.Label())
		b.WriteString(": ")
		b.WriteString(e.Content)
	}
	return b.String()
}
