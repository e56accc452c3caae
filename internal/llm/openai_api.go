package llm

import (
	"context"
	"errors"
	"math"
	"net/http"
	"time"

	"github.com/sashabaranov/go-openai"
)

// OpenAIAPIClient talks to the OpenAI chat completions API, or to any
// OpenAI-compatible server when a base URL is given.
type OpenAIAPIClient struct {
	model  string
	client *openai.Client
}

// NewOpenAIAPIClient creates an OpenAI client. An empty baseURL uses the
// public OpenAI endpoint.
func NewOpenAIAPIClient(apiKey, model, baseURL string) *OpenAIAPIClient {
	config := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = baseURL
	}
	config.HTTPClient = &http.Client{Timeout: defaultHTTPTimeout}

	return &OpenAIAPIClient{
		model:  model,
		client: openai.NewClientWithConfig(config),
	}
}

// Complete sends a chat completion request.
func (c *OpenAIAPIClient) Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error) {
	start := time.Now()

	model := req.Model
	if model == "" {
		model = c.model
	}

	msgs := make([]openai.ChatCompletionMessage, 0, len(req.Messages)+1)
	if req.System != "" {
		msgs = append(msgs, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: req.System,
		})
	}
	for _, m := range req.Messages {
		msgs = append(msgs, openai.ChatCompletionMessage{Role: m.Role, Content: m.Content})
	}

	chatReq := openai.ChatCompletionRequest{
		Model:     model,
		Messages:  msgs,
		MaxTokens: req.MaxTokens,
	}
	if req.Temperature != nil {
		chatReq.Temperature = float32(*req.Temperature)
		// go-openai omits a zero temperature, which the API reads as 1.
		if chatReq.Temperature == 0 {
			chatReq.Temperature = math.SmallestNonzeroFloat32
		}
	}

	resp, err := c.client.CreateChatCompletion(ctx, chatReq)
	if err != nil {
		return nil, c.wrapError(err)
	}
	if len(resp.Choices) == 0 {
		return nil, &ProviderError{Provider: c.Name(), Message: "response contained no choices"}
	}

	choice := resp.Choices[0]
	return &CompletionResponse{
		Content:    choice.Message.Content,
		StopReason: string(choice.FinishReason),
		Usage: Usage{
			InputTokens:  resp.Usage.PromptTokens,
			OutputTokens: resp.Usage.CompletionTokens,
		},
		Model:    resp.Model,
		Duration: time.Since(start),
	}, nil
}

// Name returns the provider name.
func (c *OpenAIAPIClient) Name() string {
	return "openai"
}

func (c *OpenAIAPIClient) wrapError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return &ProviderError{Provider: c.Name(), Code: apiErr.HTTPStatusCode, Message: apiErr.Message}
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return &ProviderError{Provider: c.Name(), Code: reqErr.HTTPStatusCode, Message: reqErr.Error()}
	}
	return &ProviderError{Provider: c.Name(), Message: err.Error()}
}
