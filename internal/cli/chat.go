package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/soyeahso/reactor/internal/agent"
)

func newChatCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "chat",
		Short: "Start an interactive conversation",
		Long: "Start an interactive conversation. Type 'exit' to quit, '/reset' to clear the " +
			"conversation memory and '/metrics' to show session metrics.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			a, err := newApp(ctx, true)
			if err != nil {
				return err
			}
			defer a.Close()

			return runChat(ctx, a, os.Stdin, cmd.OutOrStdout())
		},
	}
}

func newAskCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ask <query>",
		Short: "Answer a single query and exit",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			a, err := newApp(ctx, true)
			if err != nil {
				return err
			}
			defer a.Close()

			answer, err := a.answer(ctx, a.newRunner(), strings.Join(args, " "))
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), answer)
			return nil
		},
	}
}

// runChat reads queries line by line until exit, EOF or cancellation.
// Metrics from runners discarded by /reset are carried into the session
// totals printed on exit.
func runChat(ctx context.Context, a *app, in io.Reader, out io.Writer) error {
	runner := a.newRunner()
	var carried agent.Metrics

	fmt.Fprintln(out, headerStyle.Render("Reactor")+dimStyle.Render(fmt.Sprintf(" %d tools, type 'exit' to quit", a.tools.Len())))

	lines := make(chan string)
	done := make(chan struct{})
	defer close(done)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-done:
				return
			}
		}
	}()

	for {
		fmt.Fprint(out, promptStyle.Render("You: "))

		var line string
		select {
		case <-ctx.Done():
			fmt.Fprintln(out)
			printMetrics(out, sumMetrics(carried, runner.Metrics()))
			return nil
		case l, ok := <-lines:
			if !ok {
				fmt.Fprintln(out)
				printMetrics(out, sumMetrics(carried, runner.Metrics()))
				return nil
			}
			line = strings.TrimSpace(l)
		}

		switch strings.ToLower(line) {
		case "":
			continue
		case "exit", "quit":
			printMetrics(out, sumMetrics(carried, runner.Metrics()))
			return nil
		case "/reset":
			carried = sumMetrics(carried, runner.Metrics())
			runner = a.newRunner()
			fmt.Fprintln(out, dimStyle.Render("Conversation memory cleared."))
			continue
		case "/metrics":
			printMetrics(out, sumMetrics(carried, runner.Metrics()))
			continue
		}

		answer, err := a.answer(ctx, runner, line)
		switch {
		case errors.Is(err, context.Canceled):
			fmt.Fprintln(out)
			printMetrics(out, sumMetrics(carried, runner.Metrics()))
			return nil
		case errors.Is(err, agent.ErrStepLimit):
			fmt.Fprintln(out, warningStyle.Render("No final answer within the step limit. Try rephrasing the question."))
		case err != nil:
			fmt.Fprintln(out, errorStyle.Render("Error: ")+err.Error())
		default:
			fmt.Fprintln(out, assistantStyle.Render("Assistant: ")+answer)
		}
	}
}

func sumMetrics(a, b agent.Metrics) agent.Metrics {
	return agent.Metrics{
		TotalQueries:  a.TotalQueries + b.TotalQueries,
		TotalThoughts: a.TotalThoughts + b.TotalThoughts,
		TotalActions:  a.TotalActions + b.TotalActions,
		TotalTime:     a.TotalTime + b.TotalTime,
	}
}

func printMetrics(out io.Writer, m agent.Metrics) {
	fmt.Fprintln(out, headerStyle.Render("Session metrics"))
	fmt.Fprintf(out, "  Queries:    %d\n", m.TotalQueries)
	fmt.Fprintf(out, "  Thoughts:   %d\n", m.TotalThoughts)
	fmt.Fprintf(out, "  Actions:    %d\n", m.TotalActions)
	fmt.Fprintf(out, "  Total time: %s\n", m.TotalTime.Round(time.Millisecond))
	if m.TotalQueries > 0 {
		avg := m.TotalTime / time.Duration(m.TotalQueries)
		fmt.Fprintf(out, "  Avg/query:  %s\n", avg.Round(time.Millisecond))
	}
}
