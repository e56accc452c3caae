package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/soyeahso/reactor/internal/agent"
)

const interactionFilePrefix = "interaction_"

// FileSink writes each interaction snapshot as an indented JSON file named
// interaction_<timestamp>.json.
type FileSink struct {
	dir string
}

// NewFileSink creates a file sink rooted at dir, creating it if needed.
func NewFileSink(dir string) (*FileSink, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("creating interaction log directory: %w", err)
	}
	return &FileSink{dir: dir}, nil
}

// Dir returns the directory the sink writes to.
func (f *FileSink) Dir() string { return f.dir }

// Save writes rec to a new file. Snapshots taken within the same second get
// a numeric suffix instead of overwriting each other.
func (f *FileSink) Save(_ context.Context, rec agent.InteractionLog) error {
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding interaction: %w", err)
	}

	stamp := rec.Timestamp.Format("20060102-150405")
	name := interactionFilePrefix + stamp + ".json"
	for i := 1; ; i++ {
		file, err := os.OpenFile(filepath.Join(f.dir, name), os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o600)
		if os.IsExist(err) {
			name = fmt.Sprintf("%s%s-%d.json", interactionFilePrefix, stamp, i)
			continue
		}
		if err != nil {
			return fmt.Errorf("creating interaction file: %w", err)
		}
		_, werr := file.Write(data)
		cerr := file.Close()
		if werr != nil {
			return fmt.Errorf("writing interaction file: %w", werr)
		}
		return cerr
	}
}

// List reads back the newest interaction files. The file name serves as the
// ID. Limit of 0 defaults to 20.
func (f *FileSink) List(_ context.Context, limit int) ([]Interaction, error) {
	if limit <= 0 {
		limit = 20
	}

	entries, err := os.ReadDir(f.dir)
	if err != nil {
		return nil, err
	}

	var names []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasPrefix(e.Name(), interactionFilePrefix) && strings.HasSuffix(e.Name(), ".json") {
			names = append(names, e.Name())
		}
	}
	sort.Sort(sort.Reverse(sort.StringSlice(names)))
	if len(names) > limit {
		names = names[:limit]
	}

	out := make([]Interaction, 0, len(names))
	for _, name := range names {
		data, err := os.ReadFile(filepath.Join(f.dir, name))
		if err != nil {
			return nil, err
		}
		var rec agent.InteractionLog
		if err := json.Unmarshal(data, &rec); err != nil {
			return nil, fmt.Errorf("decoding %s: %w", name, err)
		}
		out = append(out, Interaction{ID: strings.TrimSuffix(name, ".json"), InteractionLog: rec})
	}
	return out, nil
}
