package llm

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/soyeahso/reactor/internal/config"
	"github.com/soyeahso/reactor/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func silentLog() *logging.Logger {
	return logging.New(nil, "silent")
}

// --- Registry tests ---

func TestRegistryRegisterAndResolve(t *testing.T) {
	reg := NewRegistry(silentLog())

	mock := &MockClient{ProviderName: "test-provider"}
	reg.Register("test-provider", mock)

	client, err := reg.Resolve("test-provider")
	require.NoError(t, err)
	assert.Equal(t, "test-provider", client.Name())
}

func TestRegistryAlias(t *testing.T) {
	reg := NewRegistry(silentLog())

	reg.Register("openai", &MockClient{ProviderName: "openai"})
	reg.Alias("gpt-4o-mini", "openai")

	client, err := reg.Resolve("gpt-4o-mini")
	require.NoError(t, err)
	assert.Equal(t, "openai", client.Name())
}

func TestRegistryFallback(t *testing.T) {
	reg := NewRegistry(silentLog())

	reg.Register("default-llm", &MockClient{ProviderName: "default-llm"})
	reg.SetFallback("default-llm")

	client, err := reg.Resolve("unknown-model-xyz")
	require.NoError(t, err)
	assert.Equal(t, "default-llm", client.Name())
}

func TestRegistryResolveNotFound(t *testing.T) {
	reg := NewRegistry(silentLog())

	_, err := reg.Resolve("nonexistent")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "no LLM provider")
}

func TestRegistryList(t *testing.T) {
	reg := NewRegistry(silentLog())
	reg.Register("b", &MockClient{ProviderName: "b"})
	reg.Register("a", &MockClient{ProviderName: "a"})

	assert.Equal(t, []string{"a", "b"}, reg.List())
}

func TestNewRegistryFromConfig(t *testing.T) {
	tests := []struct {
		name     string
		cfg      config.LLMConfig
		provider string
		wantErr  bool
	}{
		{"openai", config.LLMConfig{Provider: "openai", APIKey: "sk-test", Model: "gpt-4o-mini"}, "openai", false},
		{"claude", config.LLMConfig{Provider: "claude", APIKey: "sk-ant", Model: "claude-sonnet-4-5"}, "claude", false},
		{"ollama without key", config.LLMConfig{Provider: "ollama", Model: "llama3.1"}, "ollama", false},
		{"openai without key", config.LLMConfig{Provider: "openai", Model: "gpt-4o-mini"}, "", true},
		{"claude without key", config.LLMConfig{Provider: "claude"}, "", true},
		{"unknown provider", config.LLMConfig{Provider: "gemini", APIKey: "k"}, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg, err := NewRegistryFromConfig(tt.cfg, silentLog())
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, []string{tt.provider}, reg.List())

			client, err := reg.Resolve(tt.cfg.Model)
			require.NoError(t, err)
			assert.Equal(t, tt.provider, client.Name())

			client, err = reg.Resolve("anything-else")
			require.NoError(t, err)
			assert.Equal(t, tt.provider, client.Name())
		})
	}
}

// --- MockClient tests ---

func TestMockClientComplete(t *testing.T) {
	mock := &MockClient{
		ProviderName: "test",
		CompleteFunc: func(ctx context.Context, req CompletionRequest) (*CompletionResponse, error) {
			return &CompletionResponse{
				Content: "The answer is 42",
				Usage:   Usage{InputTokens: 10, OutputTokens: 5},
			}, nil
		},
	}

	resp, err := mock.Complete(context.Background(), CompletionRequest{
		Messages: []Message{{Role: RoleUser, Content: "What is the answer?"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "The answer is 42", resp.Content)
	assert.Equal(t, 10, resp.Usage.InputTokens)
}

func TestMockClientDefaultComplete(t *testing.T) {
	mock := &MockClient{ProviderName: "test"}
	resp, err := mock.Complete(context.Background(), CompletionRequest{})
	require.NoError(t, err)
	assert.Equal(t, "mock response", resp.Content)
	assert.Equal(t, "test", mock.Name())
}

func TestMockClientCompleteError(t *testing.T) {
	mock := &MockClient{
		ProviderName: "test",
		CompleteFunc: func(ctx context.Context, req CompletionRequest) (*CompletionResponse, error) {
			return nil, &ProviderError{Provider: "test", Message: "rate limited", Code: 429}
		},
	}

	_, err := mock.Complete(context.Background(), CompletionRequest{})
	assert.Error(t, err)

	var provErr *ProviderError
	assert.ErrorAs(t, err, &provErr)
	assert.Equal(t, 429, provErr.Code)
}

func TestScriptedClient(t *testing.T) {
	client := ScriptedClient("first", "second")
	ctx := context.Background()

	for _, want := range []string{"first", "second", "second"} {
		resp, err := client.Complete(ctx, CompletionRequest{})
		require.NoError(t, err)
		assert.Equal(t, want, resp.Content)
	}
}

func TestProviderErrorFormat(t *testing.T) {
	assert.Equal(t, "openai: 401 invalid key", (&ProviderError{Provider: "openai", Code: 401, Message: "invalid key"}).Error())
	assert.Equal(t, "ollama: connection refused", (&ProviderError{Provider: "ollama", Message: "connection refused"}).Error())
}

func TestCompletionRequestJSON(t *testing.T) {
	temp := 0.7
	req := CompletionRequest{
		Model:       "gpt-4o-mini",
		System:      "You run in a loop",
		Messages:    []Message{{Role: RoleUser, Content: "User: hi"}},
		MaxTokens:   300,
		Temperature: &temp,
	}

	data, err := json.Marshal(req)
	require.NoError(t, err)

	var decoded CompletionRequest
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, req, decoded)
}
