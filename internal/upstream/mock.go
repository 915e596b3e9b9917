package upstream

import "context"

// MockClient provides deterministic output when no API key is configured and
// scripted behavior in tests.
type MockClient struct {
	// InvokeFn overrides the canned reply when set.
	InvokeFn func(ctx context.Context, audio []byte, mimeType, instruction string) (Output, error)
}

func NewMockClient() *MockClient { return &MockClient{} }

func (m *MockClient) Invoke(ctx context.Context, audio []byte, mimeType, instruction string) (Output, error) {
	select {
	case <-ctx.Done():
		return Output{}, ctx.Err()
	default:
	}

	if m.InvokeFn != nil {
		return m.InvokeFn(ctx, audio, mimeType, instruction)
	}
	return Output{
		Text:  "TRANSCRIPT: voice message received\nRESPONSE: I'm running without a configured model, but I heard your message.",
		Model: "mock",
	}, nil
}
