package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv unsets every variable Load consults so host settings do not leak
// into a test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, name := range []string{
		"REACTOR_LLM_PROVIDER", "REACTOR_LLM_MODEL", "REACTOR_LLM_API_KEY",
		"REACTOR_LLM_ENDPOINT", "REACTOR_MAX_STEPS", "REACTOR_LOG_LEVEL",
		"OPENAI_API_KEY", "ANTHROPIC_API_KEY", "BRAVE_API_KEY", "OPENWEATHER_API_KEY",
	} {
		t.Setenv(name, "")
	}
}

func TestDefaults(t *testing.T) {
	cfg := Defaults()
	assert.Equal(t, "openai", cfg.LLM.Provider)
	assert.Equal(t, "gpt-4o-mini", cfg.LLM.Model)
	assert.Equal(t, 300, cfg.LLM.MaxTokens)
	require.NotNil(t, cfg.LLM.Temperature)
	assert.InDelta(t, 0.7, *cfg.LLM.Temperature, 1e-9)
	assert.Equal(t, 5, cfg.Agent.WindowSize)
	assert.Equal(t, 10, cfg.Agent.MaxSteps)
	assert.Equal(t, 3, cfg.Tools.Search.Count)
	assert.Equal(t, "metric", cfg.Tools.Weather.Units)
	assert.Equal(t, "primary", cfg.Tools.Google.CalendarID)
	assert.Nil(t, cfg.Tools.IMAP)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "pretty", cfg.Logging.ConsoleStyle)
	assert.Equal(t, "sqlite", cfg.Store.Interactions)
}

func TestLoadMissingFile(t *testing.T) {
	clearEnv(t)
	cfg, err := Load("/nonexistent/path/config.yaml")
	require.NoError(t, err)
	assert.Equal(t, "openai", cfg.LLM.Provider)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoadValidYAML(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")

	yaml := `
llm:
  provider: claude
  apiKey: sk-test
  maxTokens: 512
  temperature: 0
agent:
  windowSize: 8
  maxSteps: 4
operator:
  name: Alex
  location: Lisbon
tools:
  weather:
    apiKey: owm-key
    units: imperial
  imap:
    host: imap.example.com
    username: alex@example.com
    password: hunter2
logging:
  level: debug
  consoleStyle: json
store:
  interactions: file
hooks:
  afterAgentRun:
    - command: "cat >> /tmp/answers.jsonl"
      timeout: 2000
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "claude", cfg.LLM.Provider)
	assert.Equal(t, "claude-sonnet-4-5", cfg.LLM.Model)
	assert.Equal(t, "sk-test", cfg.LLM.APIKey)
	assert.Equal(t, 512, cfg.LLM.MaxTokens)
	require.NotNil(t, cfg.LLM.Temperature)
	assert.Zero(t, *cfg.LLM.Temperature)
	assert.Equal(t, 8, cfg.Agent.WindowSize)
	assert.Equal(t, 4, cfg.Agent.MaxSteps)
	assert.Equal(t, "Alex", cfg.Operator.Name)
	assert.Equal(t, "Lisbon", cfg.Operator.Location)
	assert.Equal(t, "owm-key", cfg.Tools.Weather.APIKey)
	assert.Equal(t, "imperial", cfg.Tools.Weather.Units)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.ConsoleStyle)
	assert.Equal(t, "file", cfg.Store.Interactions)

	require.NotNil(t, cfg.Tools.IMAP)
	assert.Equal(t, 993, cfg.Tools.IMAP.Port)
	assert.Equal(t, "INBOX", cfg.Tools.IMAP.Mailbox)

	require.Len(t, cfg.Hooks.AfterAgentRun, 1)
	assert.Equal(t, 2000, cfg.Hooks.AfterAgentRun[0].Timeout)
}

func TestLoadInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("{{invalid yaml"), 0o600))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse config")
}

func TestLoadEnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("REACTOR_LLM_PROVIDER", "Ollama")
	t.Setenv("REACTOR_MAX_STEPS", "3")
	t.Setenv("REACTOR_LOG_LEVEL", "TRACE")

	cfg, err := Load("/nonexistent/config.yaml")
	require.NoError(t, err)

	assert.Equal(t, "ollama", cfg.LLM.Provider)
	assert.Equal(t, "llama3.1", cfg.LLM.Model)
	assert.Equal(t, 3, cfg.Agent.MaxSteps)
	assert.Equal(t, "trace", cfg.Logging.Level)
}

func TestLoadExpandsSecrets(t *testing.T) {
	clearEnv(t)
	t.Setenv("MY_OWM_KEY", "expanded-key")
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
tools:
  weather:
    apiKey: ${MY_OWM_KEY}
  search:
    apiKey: ${UNSET_REACTOR_VAR}
`), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "expanded-key", cfg.Tools.Weather.APIKey)
	assert.Equal(t, "${UNSET_REACTOR_VAR}", cfg.Tools.Search.APIKey)
}

func TestLoadKeyFallbacks(t *testing.T) {
	clearEnv(t)
	t.Setenv("OPENAI_API_KEY", "sk-openai")
	t.Setenv("BRAVE_API_KEY", "brave")
	t.Setenv("OPENWEATHER_API_KEY", "owm")

	cfg, err := Load("/nonexistent/config.yaml")
	require.NoError(t, err)
	assert.Equal(t, "sk-openai", cfg.LLM.APIKey)
	assert.Equal(t, "brave", cfg.Tools.Search.APIKey)
	assert.Equal(t, "owm", cfg.Tools.Weather.APIKey)
}

func TestLoadRawAndSaveRaw(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	raw := map[string]any{
		"agent": map[string]any{
			"maxSteps": 7,
		},
	}
	require.NoError(t, SaveRaw(path, raw))

	loaded, err := LoadRaw(path)
	require.NoError(t, err)

	val, ok := GetValueAtPath(loaded, []string{"agent", "maxSteps"})
	assert.True(t, ok)
	assert.Equal(t, 7, val)
}

func TestLoadRawMissingFile(t *testing.T) {
	raw, err := LoadRaw(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Empty(t, raw)
}
