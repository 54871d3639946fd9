// Package llm wraps the Gemini API with retry, backoff and model
// fallback for the summarization and reranking stages.
package llm

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"google.golang.org/genai"

	"aibrief/internal/config"
	"aibrief/internal/logger"
)

const (
	retryBaseWait = 2 * time.Second
	retryMaxWait  = 30 * time.Second
)

var (
	// ErrEmptyResponse is returned when the model produces no text
	ErrEmptyResponse = errors.New("empty response from model")

	// ErrAllModelsFailed is returned when the primary and every fallback
	// model exhausted their retries
	ErrAllModelsFailed = errors.New("all models failed")
)

// Client is a Gemini text-generation client with model fallback
type Client struct {
	gClient        *genai.Client
	model          string
	fallbackModels []string
	maxTokens      int32
	temperature    float32
	maxRetries     int

	sleep func(time.Duration)
}

// NewClient creates an LLM client from application configuration
func NewClient(ctx context.Context, cfg *config.Config) (*Client, error) {
	gemini := cfg.AI.Gemini
	if gemini.APIKey == "" {
		return nil, fmt.Errorf("gemini API key is required. Set GEMINI_API_KEY or ai.gemini.api_key in config")
	}

	gClient, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  gemini.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &Client{
		gClient:        gClient,
		model:          gemini.Model,
		fallbackModels: gemini.FallbackModels,
		maxTokens:      int32(gemini.MaxTokens),
		temperature:    float32(gemini.Temperature),
		maxRetries:     gemini.MaxRetries,
		sleep:          time.Sleep,
	}, nil
}

// Generate produces text from a system instruction and user prompt. The
// primary model is tried first with backoff on rate limits and server
// errors; each fallback model gets the same treatment before giving up.
func (c *Client) Generate(ctx context.Context, system, user string) (string, error) {
	models := append([]string{c.model}, c.fallbackModels...)

	var lastErr error
	for _, model := range models {
		text, err := c.generateWithRetry(ctx, model, system, user)
		if err == nil {
			return text, nil
		}
		lastErr = err
		if !isRetryable(err) && !errors.Is(err, ErrEmptyResponse) {
			return "", err
		}
		logger.Warn("Model failed, trying fallback", "model", model, "error", err.Error())
	}
	return "", fmt.Errorf("%w: %v", ErrAllModelsFailed, lastErr)
}

func (c *Client) generateWithRetry(ctx context.Context, model, system, user string) (string, error) {
	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		text, err := c.generate(ctx, model, system, user)
		if err == nil {
			return text, nil
		}
		lastErr = err
		if !isRetryable(err) {
			return "", err
		}
		if attempt == c.maxRetries {
			break
		}
		wait := backoffWait(err, attempt)
		logger.Debug("Rate limited, backing off", "model", model, "attempt", attempt, "wait", wait.String())
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		default:
		}
		c.sleep(wait)
	}
	return "", lastErr
}

func (c *Client) generate(ctx context.Context, model, system, user string) (string, error) {
	contents := []*genai.Content{{
		Parts: []*genai.Part{{Text: user}},
		Role:  "user",
	}}

	genConfig := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(c.temperature),
		MaxOutputTokens: c.maxTokens,
	}
	if system != "" {
		genConfig.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{{Text: system}},
		}
	}

	resp, err := c.gClient.Models.GenerateContent(ctx, model, contents, genConfig)
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", err)
	}

	text := resp.Text()
	if text == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}

// isRetryable reports whether an error is a rate limit or server error
func isRetryable(err error) bool {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code == 429 || apiErr.Code >= 500
	}
	return false
}

// retryDelayPattern matches the retry hint Gemini embeds in 429 errors
var retryDelayPattern = regexp.MustCompile(`retryDelay"?\s*:\s*"?(\d+(?:\.\d+)?)s`)

// backoffWait computes the wait before the next attempt, preferring the
// server-provided retry hint when one is present
func backoffWait(err error, attempt int) time.Duration {
	if hint, ok := retryHint(err); ok {
		if hint > retryMaxWait {
			return retryMaxWait
		}
		return hint
	}
	wait := retryBaseWait * (1 << attempt)
	if wait > retryMaxWait {
		wait = retryMaxWait
	}
	return wait
}

func retryHint(err error) (time.Duration, bool) {
	if err == nil {
		return 0, false
	}
	match := retryDelayPattern.FindStringSubmatch(err.Error())
	if match == nil {
		return 0, false
	}
	seconds, parseErr := strconv.ParseFloat(match[1], 64)
	if parseErr != nil {
		return 0, false
	}
	return time.Duration(seconds * float64(time.Second)), true
}

// StripCodeFences removes a wrapping markdown code fence from model
// output, e.g. ```json ... ```
func StripCodeFences(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	trimmed = strings.TrimPrefix(trimmed, "```")
	if newline := strings.Index(trimmed, "\n"); newline >= 0 {
		head := trimmed[:newline]
		if head == "" || isFenceLanguage(head) {
			trimmed = trimmed[newline+1:]
		}
	}
	trimmed = strings.TrimSuffix(strings.TrimSpace(trimmed), "```")
	return strings.TrimSpace(trimmed)
}

func isFenceLanguage(s string) bool {
	for _, r := range s {
		if (r < 'a' || r > 'z') && (r < 'A' || r > 'Z') {
			return false
		}
	}
	return true
}
