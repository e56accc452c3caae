package llm

import (
	"fmt"
	"sort"
	"sync"

	"github.com/soyeahso/reactor/internal/config"
	"github.com/soyeahso/reactor/internal/logging"
)

// Registry manages provider clients and resolves model references to clients.
type Registry struct {
	mu       sync.RWMutex
	clients  map[string]Client // provider name → client
	aliases  map[string]string // model alias → provider name
	fallback string            // default provider name
	log      *logging.Logger
}

// NewRegistry creates an empty provider registry.
func NewRegistry(log *logging.Logger) *Registry {
	return &Registry{
		clients: make(map[string]Client),
		aliases: make(map[string]string),
		log:     log.Sub("llm.registry"),
	}
}

// Register adds a client under the given provider name.
func (r *Registry) Register(name string, client Client) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.clients[name] = client
	r.log.Debug().Str("provider", name).Msg("registered LLM provider")
}

// Alias maps a model name to a provider.
// e.g., Alias("gpt-4o-mini", "openai") means "gpt-4o-mini" resolves to the "openai" provider.
func (r *Registry) Alias(model, provider string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.aliases[model] = provider
}

// SetFallback sets the default provider used when no model/provider match is found.
func (r *Registry) SetFallback(provider string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fallback = provider
}

// Resolve returns the Client for the given model reference.
// Resolution order: exact provider name → alias → fallback.
func (r *Registry) Resolve(model string) (Client, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if c, ok := r.clients[model]; ok {
		return c, nil
	}

	if provider, ok := r.aliases[model]; ok {
		if c, ok := r.clients[provider]; ok {
			return c, nil
		}
	}

	if r.fallback != "" {
		if c, ok := r.clients[r.fallback]; ok {
			return c, nil
		}
	}

	return nil, fmt.Errorf("no LLM provider for model %q", model)
}

// List returns all registered provider names, sorted.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.clients))
	for n := range r.clients {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// NewClient builds the client for the configured provider.
func NewClient(cfg config.LLMConfig) (Client, error) {
	switch cfg.Provider {
	case "openai", "":
		if cfg.APIKey == "" {
			return nil, &ProviderError{Provider: "openai", Message: "apiKey is required (set llm.apiKey or OPENAI_API_KEY)"}
		}
		return NewOpenAIAPIClient(cfg.APIKey, cfg.Model, cfg.Endpoint), nil
	case "claude":
		if cfg.APIKey == "" {
			return nil, &ProviderError{Provider: "claude", Message: "apiKey is required (set llm.apiKey or ANTHROPIC_API_KEY)"}
		}
		return NewClaudeAPIClient(cfg.APIKey, cfg.Model, cfg.Endpoint), nil
	case "ollama":
		return NewOllamaAPIClient(cfg.Endpoint, cfg.Model), nil
	default:
		return nil, fmt.Errorf("unknown LLM provider %q", cfg.Provider)
	}
}

// NewRegistryFromConfig builds a Registry holding the configured provider,
// aliased by its model name and set as the fallback.
func NewRegistryFromConfig(cfg config.LLMConfig, log *logging.Logger) (*Registry, error) {
	reg := NewRegistry(log)

	client, err := NewClient(cfg)
	if err != nil {
		return nil, err
	}

	reg.Register(client.Name(), client)
	reg.SetFallback(client.Name())
	if cfg.Model != "" {
		reg.Alias(cfg.Model, client.Name())
	}

	reg.log.Info().
		Str("provider", client.Name()).
		Str("model", cfg.Model).
		Msg("LLM provider configured")
	return reg, nil
}
