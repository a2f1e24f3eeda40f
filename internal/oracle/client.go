package oracle

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

const defaultModel = "gpt-5"

// Result contains the outcome of one oracle call
type Result struct {
	Content          string
	Model            string
	PromptTokens     int
	CompletionTokens int
	LatencyMs        int64
}

// Config holds explicit oracle configuration. An empty APIKey produces a
// client that declines every request instead of failing.
type Config struct {
	APIKey            string
	Model             string
	BaseURL           string
	RequestsPerMinute int
}

// Client is the boundary to the external generative fixer. Every call is
// single-shot and stateless; a declined or unconfigured call returns a nil
// Result with a nil error, never a fatal condition.
type Client struct {
	api     *openai.Client
	model   string
	limiter *RateLimiter
}

// NewClient creates an oracle client from explicit configuration
func NewClient(cfg Config) *Client {
	c := &Client{
		model:   cfg.Model,
		limiter: NewRateLimiter(cfg.RequestsPerMinute),
	}
	if c.model == "" {
		c.model = defaultModel
	}

	if cfg.APIKey == "" {
		slog.Info("no oracle credential configured, all oracle requests will be declined")
		return c
	}

	apiCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		apiCfg.BaseURL = cfg.BaseURL
	}
	c.api = openai.NewClientWithConfig(apiCfg)
	return c
}

// Enabled reports whether a backing service is configured
func (c *Client) Enabled() bool {
	return c.api != nil
}

// Repair asks for a complete corrected replacement of a failing file
func (c *Client) Repair(ctx context.Context, fileText string, errs []string) (*Result, error) {
	return c.complete(ctx, repairSystemPrompt, buildRepairPrompt(fileText, errs))
}

// Extend asks for a replacement that adds new, thematically consistent
// content without removing existing content
func (c *Client) Extend(ctx context.Context, fileText, theme string) (*Result, error) {
	return c.complete(ctx, extendSystemPrompt, buildExtendPrompt(fileText, theme))
}

// Document asks for a replacement adding only explanatory annotation,
// preserving behavior
func (c *Client) Document(ctx context.Context, fileText string) (*Result, error) {
	return c.complete(ctx, documentSystemPrompt, buildDocumentPrompt(fileText))
}

func (c *Client) complete(ctx context.Context, systemPrompt, userPrompt string) (*Result, error) {
	if c.api == nil {
		slog.Debug("oracle not configured, declining")
		return nil, nil
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	start := time.Now()
	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: userPrompt},
		},
	})
	if err != nil {
		c.limiter.RecordError()
		return nil, fmt.Errorf("oracle request failed: %w", err)
	}
	c.limiter.RecordSuccess()

	if len(resp.Choices) == 0 {
		return nil, nil
	}

	code := StripFences(resp.Choices[0].Message.Content)
	if code == "" {
		return nil, nil
	}

	return &Result{
		Content:          code,
		Model:            resp.Model,
		PromptTokens:     resp.Usage.PromptTokens,
		CompletionTokens: resp.Usage.CompletionTokens,
		LatencyMs:        time.Since(start).Milliseconds(),
	}, nil
}
