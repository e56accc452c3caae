package llm

import (
	"context"
	"net/http"
	"strings"
	"time"
)

const (
	defaultClaudeBaseURL   = "https://api.anthropic.com"
	defaultClaudeMaxTokens = 1024
)

// ClaudeAPIClient is a direct HTTP client for the Anthropic Messages API.
type ClaudeAPIClient struct {
	apiKey  string
	model   string
	baseURL string
	client  *http.Client
}

// NewClaudeAPIClient creates a new Claude API client. An empty baseURL uses
// the public Anthropic endpoint.
func NewClaudeAPIClient(apiKey, model, baseURL string) *ClaudeAPIClient {
	if baseURL == "" {
		baseURL = defaultClaudeBaseURL
	}
	return &ClaudeAPIClient{
		apiKey:  apiKey,
		model:   model,
		baseURL: strings.TrimSuffix(baseURL, "/"),
		client:  &http.Client{Timeout: defaultHTTPTimeout},
	}
}

// Complete sends a completion request to the Messages API.
func (c *ClaudeAPIClient) Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error) {
	start := time.Now()

	var result claudeAPIResponse
	err := postJSON(ctx, c.client, c.Name(), c.baseURL+"/v1/messages", map[string]string{
		"x-api-key":         c.apiKey,
		"anthropic-version": "2023-06-01",
	}, c.buildRequestBody(req), &result)
	if err != nil {
		return nil, err
	}

	var content strings.Builder
	for _, block := range result.Content {
		if block.Type == "text" {
			content.WriteString(block.Text)
		}
	}

	return &CompletionResponse{
		Content:    content.String(),
		StopReason: result.StopReason,
		Usage: Usage{
			InputTokens:  result.Usage.InputTokens,
			OutputTokens: result.Usage.OutputTokens,
		},
		Model:    result.Model,
		Duration: time.Since(start),
	}, nil
}

// Name returns the provider name.
func (c *ClaudeAPIClient) Name() string {
	return "claude"
}

func (c *ClaudeAPIClient) buildRequestBody(req CompletionRequest) claudeAPIRequest {
	model := req.Model
	if model == "" {
		model = c.model
	}
	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultClaudeMaxTokens
	}

	// The Messages API carries the system prompt out of band.
	msgs := make([]Message, 0, len(req.Messages))
	for _, m := range req.Messages {
		if m.Role != RoleSystem {
			msgs = append(msgs, m)
		}
	}

	return claudeAPIRequest{
		Model:       model,
		System:      req.System,
		Messages:    msgs,
		MaxTokens:   maxTokens,
		Temperature: req.Temperature,
	}
}

type claudeAPIRequest struct {
	Model       string    `json:"model"`
	System      string    `json:"system,omitempty"`
	Messages    []Message `json:"messages"`
	MaxTokens   int       `json:"max_tokens"`
	Temperature *float64  `json:"temperature,omitempty"`
}

type claudeAPIResponse struct {
	ID         string               `json:"id"`
	Type       string               `json:"type"`
	Role       string               `json:"role"`
	Content    []claudeContentBlock `json:"content"`
	Model      string               `json:"model"`
	StopReason string               `json:"stop_reason"`
	Usage      claudeUsage          `json:"usage"`
}

type claudeContentBlock struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

type claudeUsage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}
