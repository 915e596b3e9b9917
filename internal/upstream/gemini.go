package upstream

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"google.golang.org/genai"

	"github.com/lcampanelli/relayvox/internal/reliability"
)

// GeminiConfig controls the Gemini-backed client.
type GeminiConfig struct {
	APIKey string
	// Candidates is the ordered model priority list, most-preferred first.
	Candidates []string
}

// GeminiClient invokes the Gemini API with an ordered list of candidate
// models. The first candidate the API reports as invokable is used and cached;
// an invocation failure that looks like model unavailability clears the cache
// so the next exchange probes the list again.
type GeminiClient struct {
	client     *genai.Client
	candidates []string

	// probe is swapped in tests; production probes via Models.Get.
	probe func(ctx context.Context, name string) error

	mu       sync.Mutex
	resolved string
}

func NewGeminiClient(ctx context.Context, cfg GeminiConfig) (*GeminiClient, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, errors.New("gemini API key is required")
	}
	if len(cfg.Candidates) == 0 {
		return nil, errors.New("at least one candidate model is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: cfg.APIKey})
	if err != nil {
		return nil, fmt.Errorf("gemini client: %w", err)
	}

	c := &GeminiClient{
		client:     client,
		candidates: cfg.Candidates,
	}
	c.probe = func(ctx context.Context, name string) error {
		_, err := client.Models.Get(ctx, name, nil)
		return err
	}
	return c, nil
}

// Invoke sends the audio payload and instruction to the resolved model and
// returns the raw text output. A single attempt, no same-candidate retry.
func (c *GeminiClient) Invoke(ctx context.Context, audio []byte, mimeType, instruction string) (Output, error) {
	model, err := c.resolveModel(ctx)
	if err != nil {
		return Output{}, err
	}

	contents := []*genai.Content{{
		Role: "user",
		Parts: []*genai.Part{
			{Text: instruction},
			{InlineData: &genai.Blob{MIMEType: mimeType, Data: audio}},
		},
	}}

	resp, err := c.client.Models.GenerateContent(ctx, model, contents, nil)
	if err != nil {
		if code := reliability.HTTPStatusFromError(err); reliability.IsModelUnavailableStatus(code) {
			c.invalidate(model)
		}
		return Output{}, fmt.Errorf("invoke %s: %w", model, err)
	}

	var sb strings.Builder
	if len(resp.Candidates) > 0 && resp.Candidates[0].Content != nil {
		for _, p := range resp.Candidates[0].Content.Parts {
			if p.Text != "" {
				sb.WriteString(p.Text)
			}
		}
	}
	return Output{Text: sb.String(), Model: model}, nil
}

// resolveModel returns the first candidate the API reports as invokable.
func (c *GeminiClient) resolveModel(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.resolved != "" {
		return c.resolved, nil
	}

	var lastErr error
	for _, name := range c.candidates {
		if err := c.probe(ctx, name); err != nil {
			lastErr = err
			continue
		}
		c.resolved = name
		return name, nil
	}
	if lastErr != nil {
		return "", fmt.Errorf("%w: %v", ErrNoCandidates, lastErr)
	}
	return "", ErrNoCandidates
}

func (c *GeminiClient) invalidate(model string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.resolved == model {
		c.resolved = ""
	}
}
