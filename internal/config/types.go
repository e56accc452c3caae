package config

// Config is the root configuration for reactor.
type Config struct {
	LLM      LLMConfig      `yaml:"llm,omitempty"`
	Agent    AgentConfig    `yaml:"agent,omitempty"`
	Operator OperatorConfig `yaml:"operator,omitempty"`
	Tools    ToolsConfig    `yaml:"tools,omitempty"`
	Logging  LoggingConfig  `yaml:"logging,omitempty"`
	Store    StoreConfig    `yaml:"store,omitempty"`
	Hooks    HooksConfig    `yaml:"hooks,omitempty"`
}

// LLMConfig selects the model provider used by the agent.
type LLMConfig struct {
	Provider    string   `yaml:"provider,omitempty"` // "openai" | "claude" | "ollama"
	APIKey      string   `yaml:"apiKey,omitempty"`
	Model       string   `yaml:"model,omitempty"`
	Endpoint    string   `yaml:"endpoint,omitempty"` // custom base URL (Ollama, OpenAI-compatible proxies)
	MaxTokens   int      `yaml:"maxTokens,omitempty"`
	Temperature *float64 `yaml:"temperature,omitempty"`
}

// AgentConfig tunes the Reason-Act loop.
type AgentConfig struct {
	WindowSize  int    `yaml:"windowSize,omitempty"`
	MaxSteps    int    `yaml:"maxSteps,omitempty"`
	ExtraPrompt string `yaml:"extraPrompt,omitempty"`
}

// OperatorConfig describes the person the agent works for.
type OperatorConfig struct {
	Name     string `yaml:"name,omitempty"`
	Location string `yaml:"location,omitempty"`
}

// ToolsConfig holds per-tool credentials. A tool whose credentials are
// missing is not registered.
type ToolsConfig struct {
	Search  SearchConfig  `yaml:"search,omitempty"`
	Weather WeatherConfig `yaml:"weather,omitempty"`
	Music   MusicConfig   `yaml:"music,omitempty"`
	Google  GoogleConfig  `yaml:"google,omitempty"`
	Email   EmailConfig   `yaml:"email,omitempty"`
	IMAP    *IMAPConfig   `yaml:"imap,omitempty"`
}

// SearchConfig configures the Brave web search tool.
type SearchConfig struct {
	APIKey   string `yaml:"apiKey,omitempty"`
	Count    int    `yaml:"count,omitempty"`
	Endpoint string `yaml:"endpoint,omitempty"`
}

// WeatherConfig configures the OpenWeatherMap tool.
type WeatherConfig struct {
	APIKey   string `yaml:"apiKey,omitempty"`
	Units    string `yaml:"units,omitempty"` // "metric" | "imperial" | "standard"
	Endpoint string `yaml:"endpoint,omitempty"`
}

// MusicConfig configures Spotify playback.
type MusicConfig struct {
	ClientID     string `yaml:"clientId,omitempty"`
	ClientSecret string `yaml:"clientSecret,omitempty"`
	TokenFile    string `yaml:"tokenFile,omitempty"`
}

// GoogleConfig configures Gmail and Calendar access.
type GoogleConfig struct {
	CredentialsFile string `yaml:"credentialsFile,omitempty"` // OAuth client JSON from the Google console
	TokenFile       string `yaml:"tokenFile,omitempty"`
	CalendarID      string `yaml:"calendarId,omitempty"`
}

// EmailConfig controls the draft tools.
type EmailConfig struct {
	Disabled bool   `yaml:"disabled,omitempty"`
	From     string `yaml:"from,omitempty"`
}

// IMAPConfig defines the inbox reader connection.
type IMAPConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port,omitempty"`
	Username string `yaml:"username"`
	Password string `yaml:"password,omitempty"`
	Mailbox  string `yaml:"mailbox,omitempty"`
}

// LoggingConfig controls logging behavior.
type LoggingConfig struct {
	Level        string `yaml:"level,omitempty"` // "silent" | "fatal" | "error" | "warn" | "info" | "debug" | "trace"
	File         string `yaml:"file,omitempty"`
	ConsoleStyle string `yaml:"consoleStyle,omitempty"` // "pretty" | "json"
}

// StoreConfig controls where interaction logs and drafts live.
type StoreConfig struct {
	Path         string `yaml:"path,omitempty"`         // SQLite file; empty means <data>/reactor.db
	Interactions string `yaml:"interactions,omitempty"` // "sqlite" | "file" | "none"
	LogDir       string `yaml:"logDir,omitempty"`       // used when interactions: file
}

// HooksConfig defines shell commands run on agent lifecycle events.
type HooksConfig struct {
	BeforeAgentRun []HookEntry `yaml:"beforeAgentRun,omitempty"`
	ActionExecuted []HookEntry `yaml:"actionExecuted,omitempty"`
	AfterAgentRun  []HookEntry `yaml:"afterAgentRun,omitempty"`
}

// HookEntry defines a single hook action.
type HookEntry struct {
	Command string `yaml:"command"`
	Timeout int    `yaml:"timeout,omitempty"` // milliseconds
}
