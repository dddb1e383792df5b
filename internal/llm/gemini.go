// Package llm wraps the Gemini API behind the oracle interfaces the
// pipeline depends on.
package llm

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	genai "google.golang.org/genai"
)

// ErrNotReady indicates the client could not be initialized (missing
// credential or SDK failure). Ranking callers degrade on it; the final
// analysis call treats it as fatal.
var ErrNotReady = errors.New("llm: client not ready")

// Client is a thin wrapper around the official genai client, constructed
// once per model role and reused.
type Client struct {
	cli         *genai.Client
	model       string
	timeout     time.Duration
	temperature float32
	initErr     error
}

// NewClient builds a client for one model role. Ranking roles pass 0 so
// selection output stays stable across runs; analysis passes a small
// sampling temperature. Initialization failure is recorded, not
// returned: callers check Ready and decide whether a dead oracle is
// fatal for their stage.
func NewClient(ctx context.Context, model string, timeout time.Duration, temperature float32) *Client {
	c := &Client{model: model, timeout: timeout, temperature: temperature}
	apiKey := os.Getenv("GOOGLE_API_KEY")
	if apiKey == "" {
		c.initErr = fmt.Errorf("%w: missing GOOGLE_API_KEY", ErrNotReady)
		return c
	}
	cli, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		c.initErr = fmt.Errorf("%w: %v", ErrNotReady, err)
		return c
	}
	c.cli = cli
	return c
}

// Ready reports whether the client can make calls.
func (c *Client) Ready() bool {
	return c.initErr == nil && c.cli != nil
}

// Err returns the initialization error, if any.
func (c *Client) Err() error {
	return c.initErr
}

// Generate sends one system+user exchange and returns the response text.
// Each call is bounded by the configured timeout. There is no retry: a
// failed call is the caller's signal to degrade or abort.
func (c *Client) Generate(ctx context.Context, system, user string) (string, error) {
	if !c.Ready() {
		return "", c.initErr
	}
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	cfg := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(c.temperature),
		TopP:        genai.Ptr[float32](1),
	}
	if system != "" {
		cfg.SystemInstruction = &genai.Content{Parts: []*genai.Part{{Text: system}}}
	}

	resp, err := c.cli.Models.GenerateContent(ctx, c.model,
		[]*genai.Content{{Role: genai.RoleUser, Parts: []*genai.Part{{Text: user}}}},
		cfg,
	)
	if err != nil {
		return "", fmt.Errorf("llm: generate failed: %w", err)
	}
	return extractText(resp), nil
}

// extractText pulls the first candidate's text, joining parts when the
// model returns several.
func extractText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 {
		return ""
	}
	cand := resp.Candidates[0]
	if cand.Content == nil {
		return ""
	}
	var parts []string
	for _, p := range cand.Content.Parts {
		if p != nil && p.Text != "" {
			parts = append(parts, p.Text)
		}
	}
	return strings.Join(parts, "\n")
}
