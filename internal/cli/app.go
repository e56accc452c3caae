package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/soyeahso/reactor/internal/agent"
	"github.com/soyeahso/reactor/internal/config"
	"github.com/soyeahso/reactor/internal/hooks"
	"github.com/soyeahso/reactor/internal/llm"
	"github.com/soyeahso/reactor/internal/logging"
	"github.com/soyeahso/reactor/internal/store"
	"github.com/soyeahso/reactor/internal/tools"
)

// app holds everything a conversation needs, built once per command.
type app struct {
	cfg    config.Config
	log    *logging.Logger
	client llm.Client
	tools  *agent.ToolRegistry
	hooks  *hooks.Manager
	sink   agent.InteractionSink
	db     *store.DB

	closers []func() error
}

// loadConfig reads, completes and validates the config file.
func loadConfig() (config.Config, error) {
	cfg, err := config.Load(paths.Config)
	if err != nil {
		return cfg, err
	}
	paths.Fill(&cfg)

	if issues := config.Validate(&cfg); len(issues) > 0 {
		for _, issue := range issues {
			log.Error().Str("path", issue.Path).Msg(issue.Message)
		}
		return cfg, fmt.Errorf("config validation failed with %d issue(s)", len(issues))
	}
	return cfg, nil
}

// newApp wires config, logging, storage, tools and hooks. The model client
// is only created when withModel is set, so commands that never call the
// model work without an API key.
func newApp(ctx context.Context, withModel bool) (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	if err := paths.EnsureDirs(); err != nil {
		return nil, fmt.Errorf("creating reactor directories: %w", err)
	}

	a := &app{cfg: cfg}
	if err := a.initLogging(); err != nil {
		return nil, err
	}
	if err := a.initStore(); err != nil {
		a.Close()
		return nil, err
	}

	var drafts *store.DraftStore
	if a.db != nil && !cfg.Tools.Email.Disabled {
		drafts = store.NewDraftStore(a.db)
	}
	deps := tools.Deps{}
	if drafts != nil {
		deps.Drafts = drafts
	}
	list, err := tools.Build(ctx, &a.cfg, deps, a.log)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("building tools: %w", err)
	}
	if a.tools, err = agent.NewToolRegistry(list...); err != nil {
		a.Close()
		return nil, err
	}

	a.hooks = newHookManager(cfg.Hooks, a.log)

	if withModel {
		registry, err := llm.NewRegistryFromConfig(cfg.LLM, a.log)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("configuring LLM provider: %w", err)
		}
		if a.client, err = registry.Resolve(cfg.LLM.Model); err != nil {
			a.Close()
			return nil, err
		}
	}
	return a, nil
}

func (a *app) initLogging() error {
	level := a.cfg.Logging.Level
	if logLevel != "" {
		level = logLevel
	}
	l, closeLog, err := logging.NewWithOptions(logging.Options{
		Level: level,
		Style: a.cfg.Logging.ConsoleStyle,
		File:  a.cfg.Logging.File,
		Out:   os.Stderr,
	})
	if err != nil {
		return fmt.Errorf("opening log file: %w", err)
	}
	a.log = l
	log = l
	a.closers = append(a.closers, closeLog)
	return nil
}

func (a *app) initStore() error {
	needDB := a.cfg.Store.Interactions == "sqlite" || !a.cfg.Tools.Email.Disabled
	if needDB {
		db, err := store.Open(a.cfg.Store.Path, a.log)
		if err != nil {
			return fmt.Errorf("opening database: %w", err)
		}
		a.db = db
		a.closers = append(a.closers, db.Close)
	}

	switch a.cfg.Store.Interactions {
	case "sqlite":
		a.sink = store.NewInteractionStore(a.db)
		a.log.Debug().Str("path", a.cfg.Store.Path).Msg("saving interactions to SQLite")
	case "file":
		sink, err := store.NewFileSink(a.cfg.Store.LogDir)
		if err != nil {
			return err
		}
		a.sink = sink
		a.log.Debug().Str("dir", sink.Dir()).Msg("saving interactions to JSON files")
	}
	return nil
}

func newHookManager(cfg config.HooksConfig, log *logging.Logger) *hooks.Manager {
	hm := hooks.NewManager(log)
	register := func(event string, entries []config.HookEntry) {
		for i, h := range entries {
			timeout := time.Duration(h.Timeout) * time.Millisecond
			hm.On(event, fmt.Sprintf("config:%s[%d]", event, i), hooks.CommandHandler(h.Command, timeout))
		}
	}
	register(hooks.EventBeforeAgentRun, cfg.BeforeAgentRun)
	register(hooks.EventActionExecuted, cfg.ActionExecuted)
	register(hooks.EventAfterAgentRun, cfg.AfterAgentRun)
	return hm
}

// newRunner starts a conversation with an empty context window.
func (a *app) newRunner() *agent.Runner {
	return agent.NewRunner(agent.RunnerConfig{
		Model:            a.cfg.LLM.Model,
		MaxTokens:        a.cfg.LLM.MaxTokens,
		Temperature:      a.cfg.LLM.Temperature,
		WindowSize:       a.cfg.Agent.WindowSize,
		MaxSteps:         a.cfg.Agent.MaxSteps,
		OperatorName:     a.cfg.Operator.Name,
		OperatorLocation: a.cfg.Operator.Location,
		ExtraPrompt:      a.cfg.Agent.ExtraPrompt,
	}, a.client, a.tools, a.hooks, a.log)
}

// answer runs one query and records the interaction when a sink is set.
// Failing to record is logged, not returned.
func (a *app) answer(ctx context.Context, r *agent.Runner, query string) (string, error) {
	answer, err := r.Run(ctx, query)
	if err != nil {
		return "", err
	}
	if a.sink != nil {
		if err := a.sink.Save(ctx, r.Snapshot(query, answer)); err != nil {
			a.log.Warn().Err(err).Msg("failed to save interaction log")
		}
	}
	return answer, nil
}

// Close releases resources in reverse order of acquisition.
func (a *app) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
