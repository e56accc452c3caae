package agent

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/soyeahso/reactor/internal/hooks"
	"github.com/soyeahso/reactor/internal/llm"
	"github.com/soyeahso/reactor/internal/logging"
)

// DefaultMaxSteps bounds the number of model calls per Run.
const DefaultMaxSteps = 10

// finalAnswerMarker terminates a run when present in a thought.
const finalAnswerMarker = "Final Answer:"

// ErrStepLimit is returned when a run exceeds MaxSteps without a final answer.
var ErrStepLimit = errors.New("step limit reached without a final answer")

// RunnerConfig configures the agent runner.
type RunnerConfig struct {
	Model       string
	MaxTokens   int
	Temperature *float64

	// WindowSize is the context window capacity. Zero means DefaultWindowSize.
	WindowSize int

	// MaxSteps caps model calls per Run. Zero means DefaultMaxSteps.
	MaxSteps int

	OperatorName     string
	OperatorLocation string
	ExtraPrompt      string
}

// Runner is the Reason-Act loop. It owns its context window and metrics;
// one Runner serves one conversation and is not safe for concurrent use.
type Runner struct {
	cfg     RunnerConfig
	client  llm.Client
	tools   *ToolRegistry
	window  *ContextWindow
	metrics Metrics
	hooks   *hooks.Manager
	log     *logging.Logger
	now     func() time.Time
}

// NewRunner creates an agent runner. hooks may be nil.
func NewRunner(
	cfg RunnerConfig,
	client llm.Client,
	tools *ToolRegistry,
	hm *hooks.Manager,
	log *logging.Logger,
) *Runner {
	if cfg.WindowSize <= 0 {
		cfg.WindowSize = DefaultWindowSize
	}
	if cfg.MaxSteps <= 0 {
		cfg.MaxSteps = DefaultMaxSteps
	}
	return &Runner{
		cfg:    cfg,
		client: client,
		tools:  tools,
		window: NewContextWindow(cfg.WindowSize),
		hooks:  hm,
		log:    log.Sub("agent"),
		now:    time.Now,
	}
}

// Window exposes the context window for inspection.
func (r *Runner) Window() *ContextWindow { return r.window }

// Tools returns the runner's tool registry.
func (r *Runner) Tools() *ToolRegistry { return r.tools }

// Run answers a query, alternating model thoughts and tool actions until the
// model emits a final answer. Parse failures and tool errors are fed back to
// the model as observations; model failures and the step limit end the run.
//
// after_agent_run fires on every exit and carries either the answer or the
// error.
func (r *Runner) Run(ctx context.Context, query string) (answer string, err error) {
	start := time.Now()
	r.metrics.TotalQueries++
	steps := 0
	defer func() {
		elapsed := time.Since(start)
		r.metrics.TotalTime += elapsed

		data := map[string]any{
			"query":    query,
			"steps":    steps,
			"duration": elapsed.String(),
		}
		if err != nil {
			data["error"] = err.Error()
		} else {
			data["answer"] = answer
		}
		r.emit(context.WithoutCancel(ctx), hooks.EventAfterAgentRun, data)
	}()

	r.log.Info().Str("query", query).Int("windowLen", r.window.Len()).Msg("processing query")
	r.emit(ctx, hooks.EventBeforeAgentRun, map[string]any{"query": query})

	r.window.Append(Entry{Role: RoleUser, Content: query})

	for step := 1; step <= r.cfg.MaxSteps; step++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		steps = step

		thought, err := r.think(ctx)
		if err != nil {
			return "", err
		}
		r.window.Append(Entry{Role: RoleAssistant, Content: thought})
		r.metrics.TotalThoughts++

		if idx := strings.LastIndex(thought, finalAnswerMarker); idx >= 0 {
			answer = strings.TrimSpace(thought[idx+len(finalAnswerMarker):])
			r.window.Append(Entry{Role: RoleAssistant, Content: answer})

			r.log.Info().
				Int("steps", step).
				Dur("duration", time.Since(start)).
				Msg("final answer produced")
			return answer, nil
		}

		r.log.Debug().Int("step", step).Str("thought", thought).Msg("thought")

		action, err := ParseAction(thought, r.tools)
		if err != nil {
			r.log.Debug().Int("step", step).Err(err).Msg("invalid action")
			r.window.Append(Entry{Role: RoleObservation, Content: err.Error()})
			continue
		}

		r.window.Append(Entry{Role: RoleObservation, Content: r.act(ctx, action)})
	}

	r.log.Warn().Int("maxSteps", r.cfg.MaxSteps).Msg("step limit reached")
	return "", fmt.Errorf("%w (%d steps)", ErrStepLimit, r.cfg.MaxSteps)
}

// think requests the next thought, conditioned on the whole window.
func (r *Runner) think(ctx context.Context) (string, error) {
	system := BuildSystemPrompt(PromptConfig{
		Tools:            r.tools.Describe(),
		OperatorName:     r.cfg.OperatorName,
		OperatorLocation: r.cfg.OperatorLocation,
		Now:              r.now(),
		ExtraPrompt:      r.cfg.ExtraPrompt,
	})

	resp, err := r.client.Complete(ctx, llm.CompletionRequest{
		Model:  r.cfg.Model,
		System: system,
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: r.window.Render()},
		},
		MaxTokens:   r.cfg.MaxTokens,
		Temperature: r.cfg.Temperature,
	})
	if err != nil {
		return "", fmt.Errorf("LLM completion: %w", err)
	}
	return strings.TrimSpace(resp.Content), nil
}

// act dispatches a parsed action and formats the observation.
func (r *Runner) act(ctx context.Context, action *Action) string {
	r.log.Info().Str("tool", action.Name).Str("args", action.Joined()).Msg("executing action")

	result, err := r.tools.Invoke(ctx, action.Name, action.Args)
	if err != nil {
		r.log.Warn().Str("tool", action.Name).Err(err).Msg("action failed")
		r.emit(ctx, hooks.EventActionExecuted, map[string]any{
			"action": action.Name,
			"args":   action.Args,
			"error":  err.Error(),
		})
		return fmt.Sprintf("Action: %s\nError: %s", action, err)
	}

	r.metrics.TotalActions++
	r.emit(ctx, hooks.EventActionExecuted, map[string]any{
		"action": action.Name,
		"args":   action.Args,
		"result": result,
	})
	return fmt.Sprintf("Action: %s\nResult: %s", action, result)
}

func (r *Runner) emit(ctx context.Context, event string, data map[string]any) {
	if r.hooks == nil {
		return
	}
	r.hooks.Emit(ctx, event, data)
}
