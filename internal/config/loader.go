package config

import (
	"os"
	"regexp"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// envVarPattern matches ${VAR_NAME} patterns in strings.
var envVarPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// defaultModels maps a provider to the model used when none is configured.
var defaultModels = map[string]string{
	"openai": "gpt-4o-mini",
	"claude": "claude-sonnet-4-5",
	"ollama": "llama3.1",
}

// providerKeyEnv names the conventional API key variable per provider.
var providerKeyEnv = map[string]string{
	"openai": "OPENAI_API_KEY",
	"claude": "ANTHROPIC_API_KEY",
}

// expandEnvVars replaces ${VAR} patterns with environment variable values.
// Unset variables are left unchanged.
func expandEnvVars(s string) string {
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		varName := match[2 : len(match)-1]
		if val, ok := os.LookupEnv(varName); ok {
			return val
		}
		return match
	})
}

// expandSensitiveFields processes environment variable references in
// credential fields so keys and passwords can be stored as ${ENV_VAR}.
func expandSensitiveFields(cfg *Config) {
	cfg.LLM.APIKey = expandEnvVars(cfg.LLM.APIKey)
	cfg.Tools.Search.APIKey = expandEnvVars(cfg.Tools.Search.APIKey)
	cfg.Tools.Weather.APIKey = expandEnvVars(cfg.Tools.Weather.APIKey)
	cfg.Tools.Music.ClientID = expandEnvVars(cfg.Tools.Music.ClientID)
	cfg.Tools.Music.ClientSecret = expandEnvVars(cfg.Tools.Music.ClientSecret)
	if cfg.Tools.IMAP != nil {
		cfg.Tools.IMAP.Password = expandEnvVars(cfg.Tools.IMAP.Password)
	}
}

// Load reads the config file, applies environment overrides, and returns
// a merged Config. Missing files produce defaults only.
func Load(path string) (Config, error) {
	var cfg Config

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return Defaults(), err
		}
	} else if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Defaults(), &ConfigError{Message: "failed to parse config: " + err.Error()}
	}

	applyEnvOverrides(&cfg)
	applyDefaults(&cfg)
	expandSensitiveFields(&cfg)
	applyKeyFallbacks(&cfg)
	return cfg, nil
}

// LoadRaw reads the config file into a generic map for path-based access.
func LoadRaw(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]any{}, nil
		}
		return nil, err
	}

	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, &ConfigError{Message: "failed to parse config: " + err.Error()}
	}
	if raw == nil {
		raw = map[string]any{}
	}
	return raw, nil
}

// SaveRaw writes a generic map back to a YAML config file.
func SaveRaw(path string, raw map[string]any) error {
	data, err := yaml.Marshal(raw)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

// applyDefaults fills zero-value fields with sensible defaults.
func applyDefaults(cfg *Config) {
	if cfg.LLM.Provider == "" {
		cfg.LLM.Provider = "openai"
	}
	if cfg.LLM.Model == "" {
		cfg.LLM.Model = defaultModels[cfg.LLM.Provider]
	}
	if cfg.LLM.MaxTokens == 0 {
		cfg.LLM.MaxTokens = 300
	}
	if cfg.LLM.Temperature == nil {
		t := 0.7
		cfg.LLM.Temperature = &t
	}
	if cfg.Agent.WindowSize == 0 {
		cfg.Agent.WindowSize = 5
	}
	if cfg.Agent.MaxSteps == 0 {
		cfg.Agent.MaxSteps = 10
	}
	if cfg.Tools.Search.Count == 0 {
		cfg.Tools.Search.Count = 3
	}
	if cfg.Tools.Weather.Units == "" {
		cfg.Tools.Weather.Units = "metric"
	}
	if cfg.Tools.Google.CalendarID == "" {
		cfg.Tools.Google.CalendarID = "primary"
	}
	if imap := cfg.Tools.IMAP; imap != nil {
		if imap.Port == 0 {
			imap.Port = 993
		}
		if imap.Mailbox == "" {
			imap.Mailbox = "INBOX"
		}
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.ConsoleStyle == "" {
		cfg.Logging.ConsoleStyle = "pretty"
	}
	if cfg.Store.Interactions == "" {
		cfg.Store.Interactions = "sqlite"
	}
}

// applyEnvOverrides reads REACTOR_* environment variables and overrides config values.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("REACTOR_LLM_PROVIDER"); v != "" {
		cfg.LLM.Provider = strings.ToLower(v)
	}
	if v := os.Getenv("REACTOR_LLM_MODEL"); v != "" {
		cfg.LLM.Model = v
	}
	if v := os.Getenv("REACTOR_LLM_API_KEY"); v != "" {
		cfg.LLM.APIKey = v
	}
	if v := os.Getenv("REACTOR_LLM_ENDPOINT"); v != "" {
		cfg.LLM.Endpoint = v
	}
	if v := os.Getenv("REACTOR_MAX_STEPS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Agent.MaxSteps = n
		}
	}
	if v := os.Getenv("REACTOR_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = strings.ToLower(v)
	}
}

// applyKeyFallbacks fills empty credentials from the providers' conventional
// environment variables.
func applyKeyFallbacks(cfg *Config) {
	if cfg.LLM.APIKey == "" {
		if name, ok := providerKeyEnv[cfg.LLM.Provider]; ok {
			cfg.LLM.APIKey = os.Getenv(name)
		}
	}
	if cfg.Tools.Search.APIKey == "" {
		cfg.Tools.Search.APIKey = os.Getenv("BRAVE_API_KEY")
	}
	if cfg.Tools.Weather.APIKey == "" {
		cfg.Tools.Weather.APIKey = os.Getenv("OPENWEATHER_API_KEY")
	}
}
