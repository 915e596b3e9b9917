package upstream

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrNoCandidates means no model in the priority list could be probed as
// invokable. This is a hard failure for the invocation; the caller applies its
// own fallback text.
var ErrNoCandidates = errors.New("no candidate model available")

// Output is the raw result of one model invocation.
type Output struct {
	Text  string
	Model string
}

// Client converts an audio payload plus instruction text into raw model
// output. Implementations make exactly one invocation attempt per call;
// retry policy, if any, belongs to the caller.
type Client interface {
	Invoke(ctx context.Context, audio []byte, mimeType, instruction string) (Output, error)
}

// Config controls client construction.
type Config struct {
	Mode       string
	APIKey     string
	Candidates []string
}

// New builds a Client for the requested mode. Mode "auto" picks Gemini when an
// API key is configured and falls back to the deterministic mock otherwise.
func New(ctx context.Context, cfg Config) (Client, error) {
	mode := strings.ToLower(strings.TrimSpace(cfg.Mode))
	if mode == "" {
		mode = "auto"
	}

	switch mode {
	case "auto":
		if strings.TrimSpace(cfg.APIKey) != "" {
			return NewGeminiClient(ctx, GeminiConfig{APIKey: cfg.APIKey, Candidates: cfg.Candidates})
		}
		return NewMockClient(), nil
	case "gemini":
		return NewGeminiClient(ctx, GeminiConfig{APIKey: cfg.APIKey, Candidates: cfg.Candidates})
	case "mock":
		return NewMockClient(), nil
	default:
		return nil, fmt.Errorf("unsupported upstream mode %q", cfg.Mode)
	}
}
