// internal/generation/provider/httpclient.go
package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"contractgen-workers/internal/common/config"
	commonhttp "contractgen-workers/internal/common/http"
	"contractgen-workers/internal/common/logger"
)

// HTTPClient speaks an OpenAI-compatible chat-completions endpoint. All
// credentials and the model id come from the injected ProviderConfig; there
// is no ambient configuration lookup.
type HTTPClient struct {
	id      string
	baseURL string
	apiKey  string
	model   string
	timeout time.Duration
	client  *commonhttp.Client
	logger  logger.Logger
}

func NewHTTPClient(cfg config.ProviderConfig, log logger.Logger) *HTTPClient {
	timeout := time.Duration(cfg.Timeout) * time.Millisecond
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &HTTPClient{
		id:      cfg.ID,
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		model:   cfg.Model,
		timeout: timeout,
		// Client-level timeout stays unset; the per-call context below is
		// the only deadline so chain-level budgets compose cleanly.
		client: commonhttp.NewClient(0),
		logger: log.With(map[string]interface{}{"provider": cfg.ID}),
	}
}

func (c *HTTPClient) ID() string { return c.id }

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model     string        `json:"model"`
	Messages  []chatMessage `json:"messages"`
	MaxTokens int           `json:"max_tokens,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

// Invoke sends one bounded-token completion request and classifies the result.
func (c *HTTPClient) Invoke(ctx context.Context, req Request) Outcome {
	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	c.logger.Debug("invoking provider", map[string]interface{}{
		"model":     c.model,
		"maxTokens": req.MaxTokens,
	})

	payload := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: req.InstructionPrefix},
			{Role: "user", Content: req.PromptBody},
		},
		MaxTokens: req.MaxTokens,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return Outcome{Kind: OutcomeTransport, Err: fmt.Errorf("marshal request: %w", err)}
	}

	httpReq, err := http.NewRequestWithContext(callCtx, http.MethodPost, c.baseURL+"/v1/chat/completions", bytes.NewReader(body))
	if err != nil {
		return Outcome{Kind: OutcomeTransport, Err: fmt.Errorf("build request: %w", err)}
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return c.classifyTransportError(ctx, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return Outcome{Kind: OutcomeAuthError, Err: fmt.Errorf("provider %s: status %d", c.id, resp.StatusCode)}
	case resp.StatusCode == http.StatusTooManyRequests:
		return Outcome{Kind: OutcomeRateLimited, Err: fmt.Errorf("provider %s: rate limited", c.id)}
	case resp.StatusCode != http.StatusOK:
		return Outcome{Kind: OutcomeTransport, Err: fmt.Errorf("provider %s: status %d", c.id, resp.StatusCode)}
	}

	var parsed chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return Outcome{Kind: OutcomeTransport, Err: fmt.Errorf("decode response: %w", err)}
	}
	if parsed.Error != nil {
		return Outcome{Kind: OutcomeTransport, Err: fmt.Errorf("provider %s: %s", c.id, parsed.Error.Message)}
	}
	if len(parsed.Choices) == 0 || strings.TrimSpace(parsed.Choices[0].Message.Content) == "" {
		return Outcome{Kind: OutcomeEmptyResult, Err: fmt.Errorf("provider %s: empty completion", c.id)}
	}

	return Outcome{Kind: OutcomeSuccess, Text: parsed.Choices[0].Message.Content}
}

func (c *HTTPClient) classifyTransportError(ctx context.Context, err error) Outcome {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return Outcome{Kind: OutcomeTimeout, Err: err}
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return Outcome{Kind: OutcomeTimeout, Err: err}
	}
	return Outcome{Kind: OutcomeTransport, Err: err}
}
