package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func issuePaths(issues []ValidationIssue) []string {
	paths := make([]string, 0, len(issues))
	for _, i := range issues {
		paths = append(paths, i.Path)
	}
	return paths
}

func TestValidate_ValidDefaults(t *testing.T) {
	cfg := Defaults()
	assert.Empty(t, Validate(&cfg))
}

func TestValidate_Provider(t *testing.T) {
	for _, p := range []string{"openai", "claude", "ollama", ""} {
		cfg := Defaults()
		cfg.LLM.Provider = p
		assert.Empty(t, Validate(&cfg), "provider %q should be valid", p)
	}

	cfg := Defaults()
	cfg.LLM.Provider = "gemini"
	issues := Validate(&cfg)
	require.Len(t, issues, 1)
	assert.Equal(t, "llm.provider", issues[0].Path)
}

func TestValidate_Temperature(t *testing.T) {
	cfg := Defaults()
	hot := 2.5
	cfg.LLM.Temperature = &hot
	assert.Equal(t, []string{"llm.temperature"}, issuePaths(Validate(&cfg)))

	cfg.LLM.Temperature = nil
	assert.Empty(t, Validate(&cfg))
}

func TestValidate_NegativeCounts(t *testing.T) {
	cfg := Defaults()
	cfg.LLM.MaxTokens = -1
	cfg.Agent.WindowSize = -1
	cfg.Agent.MaxSteps = -2

	paths := issuePaths(Validate(&cfg))
	assert.Contains(t, paths, "llm.maxTokens")
	assert.Contains(t, paths, "agent.windowSize")
	assert.Contains(t, paths, "agent.maxSteps")
}

func TestValidate_WeatherUnits(t *testing.T) {
	cfg := Defaults()
	cfg.Tools.Weather.Units = "kelvin"
	assert.Equal(t, []string{"tools.weather.units"}, issuePaths(Validate(&cfg)))
}

func TestValidate_MusicCredentialsPaired(t *testing.T) {
	cfg := Defaults()
	cfg.Tools.Music.ClientID = "id"
	assert.Equal(t, []string{"tools.music"}, issuePaths(Validate(&cfg)))

	cfg.Tools.Music.ClientSecret = "secret"
	assert.Empty(t, Validate(&cfg))
}

func TestValidate_IMAP(t *testing.T) {
	cfg := Defaults()
	cfg.Tools.IMAP = &IMAPConfig{Port: 70000}

	paths := issuePaths(Validate(&cfg))
	assert.Contains(t, paths, "tools.imap.host")
	assert.Contains(t, paths, "tools.imap.username")
	assert.Contains(t, paths, "tools.imap.port")

	cfg.Tools.IMAP = &IMAPConfig{Host: "imap.example.com", Username: "me", Port: 993}
	assert.Empty(t, Validate(&cfg))
}

func TestValidate_Logging(t *testing.T) {
	cfg := Defaults()
	cfg.Logging.Level = "verbose"
	cfg.Logging.ConsoleStyle = "compact"

	paths := issuePaths(Validate(&cfg))
	assert.Contains(t, paths, "logging.level")
	assert.Contains(t, paths, "logging.consoleStyle")
}

func TestValidate_StoreInteractions(t *testing.T) {
	for _, v := range []string{"sqlite", "file", "none"} {
		cfg := Defaults()
		cfg.Store.Interactions = v
		assert.Empty(t, Validate(&cfg), "interactions %q should be valid", v)
	}

	cfg := Defaults()
	cfg.Store.Interactions = "postgres"
	assert.Equal(t, []string{"store.interactions"}, issuePaths(Validate(&cfg)))
}

func TestValidate_HookMissingCommand(t *testing.T) {
	cfg := Defaults()
	cfg.Hooks.ActionExecuted = []HookEntry{{Command: "true"}, {Timeout: 100}}
	assert.Equal(t, []string{"hooks.actionExecuted[1].command"}, issuePaths(Validate(&cfg)))
}

func TestValidationIssueString(t *testing.T) {
	issue := ValidationIssue{Path: "llm.provider", Message: "bad"}
	assert.Equal(t, "llm.provider: bad", issue.String())
}
