package config

import (
	"fmt"
	"slices"
)

// ValidationIssue describes a problem with a config value.
type ValidationIssue struct {
	Path    string
	Message string
}

func (v ValidationIssue) String() string {
	return fmt.Sprintf("%s: %s", v.Path, v.Message)
}

// Validate checks a Config for issues. Returns nil if valid.
// Missing API keys are not reported here; they surface when a client is built.
func Validate(cfg *Config) []ValidationIssue {
	var issues []ValidationIssue

	// LLM validation
	validProviders := []string{"openai", "claude", "ollama"}
	if cfg.LLM.Provider != "" && !slices.Contains(validProviders, cfg.LLM.Provider) {
		issues = append(issues, ValidationIssue{
			Path:    "llm.provider",
			Message: fmt.Sprintf("must be one of %v, got %q", validProviders, cfg.LLM.Provider),
		})
	}
	if cfg.LLM.MaxTokens < 0 {
		issues = append(issues, ValidationIssue{
			Path:    "llm.maxTokens",
			Message: fmt.Sprintf("must not be negative, got %d", cfg.LLM.MaxTokens),
		})
	}
	if t := cfg.LLM.Temperature; t != nil && (*t < 0 || *t > 2) {
		issues = append(issues, ValidationIssue{
			Path:    "llm.temperature",
			Message: fmt.Sprintf("must be 0-2, got %g", *t),
		})
	}

	// Agent validation
	if cfg.Agent.WindowSize < 0 {
		issues = append(issues, ValidationIssue{
			Path:    "agent.windowSize",
			Message: fmt.Sprintf("must not be negative, got %d", cfg.Agent.WindowSize),
		})
	}
	if cfg.Agent.MaxSteps < 0 {
		issues = append(issues, ValidationIssue{
			Path:    "agent.maxSteps",
			Message: fmt.Sprintf("must not be negative, got %d", cfg.Agent.MaxSteps),
		})
	}

	// Tool validation
	validUnits := []string{"metric", "imperial", "standard"}
	if cfg.Tools.Weather.Units != "" && !slices.Contains(validUnits, cfg.Tools.Weather.Units) {
		issues = append(issues, ValidationIssue{
			Path:    "tools.weather.units",
			Message: fmt.Sprintf("must be one of %v, got %q", validUnits, cfg.Tools.Weather.Units),
		})
	}
	if (cfg.Tools.Music.ClientID == "") != (cfg.Tools.Music.ClientSecret == "") {
		issues = append(issues, ValidationIssue{
			Path:    "tools.music",
			Message: "clientId and clientSecret must be set together",
		})
	}
	if imap := cfg.Tools.IMAP; imap != nil {
		if imap.Host == "" {
			issues = append(issues, ValidationIssue{
				Path:    "tools.imap.host",
				Message: "host is required",
			})
		}
		if imap.Username == "" {
			issues = append(issues, ValidationIssue{
				Path:    "tools.imap.username",
				Message: "username is required",
			})
		}
		if imap.Port < 0 || imap.Port > 65535 {
			issues = append(issues, ValidationIssue{
				Path:    "tools.imap.port",
				Message: fmt.Sprintf("port must be 0-65535, got %d", imap.Port),
			})
		}
	}

	// Logging validation
	validLogLevels := []string{"silent", "fatal", "error", "warn", "info", "debug", "trace"}
	if cfg.Logging.Level != "" && !slices.Contains(validLogLevels, cfg.Logging.Level) {
		issues = append(issues, ValidationIssue{
			Path:    "logging.level",
			Message: fmt.Sprintf("must be one of %v, got %q", validLogLevels, cfg.Logging.Level),
		})
	}

	validConsoleStyles := []string{"pretty", "json"}
	if cfg.Logging.ConsoleStyle != "" && !slices.Contains(validConsoleStyles, cfg.Logging.ConsoleStyle) {
		issues = append(issues, ValidationIssue{
			Path:    "logging.consoleStyle",
			Message: fmt.Sprintf("must be one of %v, got %q", validConsoleStyles, cfg.Logging.ConsoleStyle),
		})
	}

	// Store validation
	validSinks := []string{"sqlite", "file", "none"}
	if cfg.Store.Interactions != "" && !slices.Contains(validSinks, cfg.Store.Interactions) {
		issues = append(issues, ValidationIssue{
			Path:    "store.interactions",
			Message: fmt.Sprintf("must be one of %v, got %q", validSinks, cfg.Store.Interactions),
		})
	}

	// Hook validation
	hookSets := map[string][]HookEntry{
		"hooks.beforeAgentRun": cfg.Hooks.BeforeAgentRun,
		"hooks.actionExecuted": cfg.Hooks.ActionExecuted,
		"hooks.afterAgentRun":  cfg.Hooks.AfterAgentRun,
	}
	for _, path := range []string{"hooks.beforeAgentRun", "hooks.actionExecuted", "hooks.afterAgentRun"} {
		for i, h := range hookSets[path] {
			if h.Command == "" {
				issues = append(issues, ValidationIssue{
					Path:    fmt.Sprintf("%s[%d].command", path, i),
					Message: "command is required",
				})
			}
		}
	}

	return issues
}
