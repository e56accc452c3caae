package llm

import "context"

// MockClient is a test double for Client.
type MockClient struct {
	ProviderName string
	CompleteFunc func(ctx context.Context, req CompletionRequest) (*CompletionResponse, error)
}

func (m *MockClient) Name() string { return m.ProviderName }

func (m *MockClient) Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error) {
	if m.CompleteFunc != nil {
		return m.CompleteFunc(ctx, req)
	}
	return &CompletionResponse{Content: "mock response"}, nil
}

// ScriptedClient returns a MockClient that answers with replies in order and
// repeats the last one once the script is exhausted.
func ScriptedClient(replies ...string) *MockClient {
	var i int
	return &MockClient{
		ProviderName: "scripted",
		CompleteFunc: func(_ context.Context, _ CompletionRequest) (*CompletionResponse, error) {
			if len(replies) == 0 {
				return &CompletionResponse{}, nil
			}
			reply := replies[min(i, len(replies)-1)]
			i++
			return &CompletionResponse{Content: reply}, nil
		},
	}
}
