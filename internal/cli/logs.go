package cli

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/soyeahso/reactor/internal/config"
	"github.com/soyeahso/reactor/internal/logging"
	"github.com/soyeahso/reactor/internal/store"
)

func newLogsCmd() *cobra.Command {
	var (
		limit   int
		search  string
		verbose bool
	)

	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Show recorded interactions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			records, closeFn, err := queryInteractions(cmd.Context(), cfg, search, limit, log)
			if err != nil {
				return err
			}
			defer closeFn()

			printInteractions(cmd.OutOrStdout(), records, verbose)
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "number of interactions to show")
	cmd.Flags().StringVarP(&search, "search", "s", "", "full-text search over queries and answers (sqlite only)")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "include the context window")

	return cmd
}

func queryInteractions(ctx context.Context, cfg config.Config, search string, limit int, log *logging.Logger) ([]store.Interaction, func() error, error) {
	noop := func() error { return nil }
	if ctx == nil {
		ctx = context.Background()
	}

	switch cfg.Store.Interactions {
	case "sqlite":
		db, err := store.Open(cfg.Store.Path, log)
		if err != nil {
			return nil, noop, fmt.Errorf("opening database: %w", err)
		}
		is := store.NewInteractionStore(db)
		var records []store.Interaction
		if search != "" {
			records, err = is.Search(ctx, search, limit)
		} else {
			records, err = is.List(ctx, limit)
		}
		if err != nil {
			db.Close()
			return nil, noop, err
		}
		return records, db.Close, nil

	case "file":
		if search != "" {
			return nil, noop, fmt.Errorf("--search needs store.interactions: sqlite")
		}
		sink, err := store.NewFileSink(cfg.Store.LogDir)
		if err != nil {
			return nil, noop, err
		}
		records, err := sink.List(ctx, limit)
		return records, noop, err

	default:
		return nil, noop, fmt.Errorf("interaction logging is disabled (store.interactions: %s)", cfg.Store.Interactions)
	}
}

func printInteractions(out io.Writer, records []store.Interaction, verbose bool) {
	if len(records) == 0 {
		fmt.Fprintln(out, dimStyle.Render("No interactions recorded."))
		return
	}

	for i, r := range records {
		if i > 0 {
			fmt.Fprintln(out)
		}
		fmt.Fprintln(out, headerStyle.Render(r.Timestamp.Local().Format(time.DateTime))+"  "+dimStyle.Render(r.ID))
		fmt.Fprintln(out, promptStyle.Render("Q: ")+r.Query)
		fmt.Fprintln(out, assistantStyle.Render("A: ")+r.Response)
		fmt.Fprintln(out, dimStyle.Render(fmt.Sprintf("   %d queries, %d thoughts, %d actions, %s",
			r.Metrics.TotalQueries, r.Metrics.TotalThoughts, r.Metrics.TotalActions,
			r.Metrics.TotalTime.Round(time.Millisecond))))

		if verbose {
			for _, e := range r.Context {
				content := strings.ReplaceAll(e.Content, "\n", "\n     ")
				fmt.Fprintf(out, "   %s %s\n", dimStyle.Render(e.Role.Label()+":"), content)
			}
		}
	}
}
