package genai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"strings"
	"time"

	"github.com/ecocampmy/campsite-chat-service/internal/circuitbreaker"
	"github.com/ecocampmy/campsite-chat-service/internal/observability"
)

// Generator produces free text from a single prompt string. The reply
// composer falls back to canned text when generation fails, so callers treat
// errors as recoverable.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

var (
	ErrMissingAPIKey   = errors.New("generation API key not configured")
	ErrUpstreamFailure = errors.New("generation upstream failure")
	ErrEmptyCompletion = errors.New("generation returned empty text")
	ErrCircuitOpen     = errors.New("generation circuit open")
)

// maxJitter is the upper bound of the random delay added to each backoff.
const maxJitter = 500 * time.Millisecond

// Client calls a chat-completions style HTTP API with bounded retry:
// after the first failure, up to maxRetries further attempts run with
// exponential backoff (base delay doubled per attempt) plus random jitter.
type Client struct {
	apiKey         string
	apiURL         string
	model          string
	timeout        time.Duration
	maxRetries     int
	retryBaseDelay time.Duration
	client         *http.Client
	breaker        *circuitbreaker.Breaker
}

// NewClient builds a generation client. An empty API key is allowed;
// Generate then fails soft with ErrMissingAPIKey.
func NewClient(apiKey, apiURL, model string, timeout time.Duration, maxRetries int, retryBaseDelay time.Duration) *Client {
	if maxRetries < 0 {
		maxRetries = 0
	}
	if retryBaseDelay <= 0 {
		retryBaseDelay = 200 * time.Millisecond
	}
	return &Client{
		apiKey:         apiKey,
		apiURL:         apiURL,
		model:          model,
		timeout:        timeout,
		maxRetries:     maxRetries,
		retryBaseDelay: retryBaseDelay,
		client:         &http.Client{Timeout: timeout},
	}
}

// SetCircuitBreaker installs an optional breaker around the upstream call.
func (c *Client) SetCircuitBreaker(b *circuitbreaker.Breaker) {
	c.breaker = b
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Generate sends the prompt and returns the generated text. Attempts run
// until one succeeds with non-empty text or the retry budget is spent.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	if c.apiKey == "" {
		return "", ErrMissingAPIKey
	}

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			observability.GenerationRetriesTotal.Inc()
			delay := c.retryBaseDelay<<uint(attempt) + time.Duration(rand.Int63n(int64(maxJitter)))
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(delay):
			}
		}

		if c.breaker != nil {
			if err := c.breaker.Allow(); err != nil {
				return "", fmt.Errorf("%w: %v", ErrCircuitOpen, err)
			}
		}

		text, err := c.callAPI(ctx, prompt)
		if c.breaker != nil {
			c.breaker.Record(err)
		}
		if err == nil {
			return text, nil
		}
		lastErr = err
		if errors.Is(err, context.Canceled) {
			return "", err
		}
	}
	return "", fmt.Errorf("exhausted retries: %w", lastErr)
}

func (c *Client) callAPI(ctx context.Context, prompt string) (string, error) {
	reqCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	payload := chatRequest{
		Model:    c.model,
		Messages: []chatMessage{{Role: "user", Content: prompt}},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(reqCtx, "POST", c.apiURL, bytes.NewReader(body))
	if err != nil {
		observability.GenerationCallsTotal.WithLabelValues("error").Inc()
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		observability.GenerationCallsTotal.WithLabelValues("error").Inc()
		observability.GenerationDuration.WithLabelValues("error").Observe(time.Since(start).Seconds())
		if errors.Is(err, context.Canceled) {
			return "", context.Canceled
		}
		return "", fmt.Errorf("%w: %v", ErrUpstreamFailure, err)
	}
	defer resp.Body.Close()

	status := statusLabel(resp.StatusCode)
	observability.GenerationCallsTotal.WithLabelValues(status).Inc()
	observability.GenerationDuration.WithLabelValues(status).Observe(time.Since(start).Seconds())

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response body: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("%w: HTTP %d", ErrUpstreamFailure, resp.StatusCode)
	}

	var out chatResponse
	if err := json.Unmarshal(respBody, &out); err != nil {
		return "", fmt.Errorf("parse response: %w", err)
	}
	if len(out.Choices) == 0 {
		return "", ErrEmptyCompletion
	}
	text := strings.TrimSpace(out.Choices[0].Message.Content)
	if text == "" {
		return "", ErrEmptyCompletion
	}
	return text, nil
}

func statusLabel(statusCode int) string {
	switch {
	case statusCode >= 200 && statusCode < 300:
		return "success"
	case statusCode == http.StatusTooManyRequests:
		return "rate_limited"
	case statusCode >= 400 && statusCode < 500:
		return "client_error"
	case statusCode >= 500:
		return "server_error"
	}
	return "error"
}
