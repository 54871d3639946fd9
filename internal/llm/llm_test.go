package llm

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"google.golang.org/genai"
)

func TestStripCodeFences(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"plain json", `[{"Headline": "x"}]`, `[{"Headline": "x"}]`},
		{"json fence", "```json\n[{\"Headline\": \"x\"}]\n```", `[{"Headline": "x"}]`},
		{"bare fence", "```\n[1, 2]\n```", `[1, 2]`},
		{"leading whitespace", "  ```json\n[]\n```  ", `[]`},
		{"no closing fence", "```json\n[]", `[]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StripCodeFences(tt.input); got != tt.expected {
				t.Errorf("Expected %q, got %q", tt.expected, got)
			}
		})
	}
}

func TestIsRetryable(t *testing.T) {
	if !isRetryable(genai.APIError{Code: 429, Message: "rate limited"}) {
		t.Error("Expected 429 to be retryable")
	}
	if !isRetryable(genai.APIError{Code: 503, Message: "overloaded"}) {
		t.Error("Expected 503 to be retryable")
	}
	if isRetryable(genai.APIError{Code: 400, Message: "bad request"}) {
		t.Error("Expected 400 to not be retryable")
	}
	if isRetryable(errors.New("network down")) {
		t.Error("Expected plain error to not be retryable")
	}
}

func TestBackoffWaitExponential(t *testing.T) {
	err := errors.New("overloaded")
	if got := backoffWait(err, 0); got != 2*time.Second {
		t.Errorf("Expected 2s for attempt 0, got %v", got)
	}
	if got := backoffWait(err, 2); got != 8*time.Second {
		t.Errorf("Expected 8s for attempt 2, got %v", got)
	}
	if got := backoffWait(err, 10); got != retryMaxWait {
		t.Errorf("Expected cap at %v, got %v", retryMaxWait, got)
	}
}

func TestBackoffWaitRespectsHint(t *testing.T) {
	err := fmt.Errorf(`rate limited: {"retryDelay": "12s"}`)
	if got := backoffWait(err, 0); got != 12*time.Second {
		t.Errorf("Expected hinted 12s, got %v", got)
	}

	huge := fmt.Errorf(`rate limited: {"retryDelay": "300s"}`)
	if got := backoffWait(huge, 0); got != retryMaxWait {
		t.Errorf("Expected hint capped at %v, got %v", retryMaxWait, got)
	}
}
