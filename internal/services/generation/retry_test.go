package generation

import (
	"errors"
	"testing"
	"time"
)

func TestIsRateLimitError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{"nil", nil, false},
		{"status code", errors.New("Error 429: too many requests"), true},
		{"grpc status", errors.New("rpc error: code = ResourceExhausted desc = RESOURCE_EXHAUSTED"), true},
		{"quota", errors.New("quota exceeded for model"), true},
		{"unrelated", errors.New("connection refused"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsRateLimitError(tt.err); got != tt.expected {
				t.Errorf("IsRateLimitError(%v) = %v, want %v", tt.err, got, tt.expected)
			}
		})
	}
}

func TestExtractRetryDelay(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected time.Duration
	}{
		{"nil", nil, 0},
		{"please retry", errors.New("429: Please retry in 42s"), 42 * time.Second},
		{"retryDelay field", errors.New("retryDelay: 7s"), 7 * time.Second},
		{"fractional", errors.New("Please retry in 2.5s"), 2500 * time.Millisecond},
		{"no hint", errors.New("429 too many requests"), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExtractRetryDelay(tt.err); got != tt.expected {
				t.Errorf("ExtractRetryDelay(%v) = %v, want %v", tt.err, got, tt.expected)
			}
		})
	}
}

func TestCalculateBackoff(t *testing.T) {
	cfg := NewDefaultRetryConfig()

	first := cfg.CalculateBackoff(0, 0)
	if first != cfg.InitialBackoff {
		t.Errorf("attempt 0 backoff = %v, want %v", first, cfg.InitialBackoff)
	}

	second := cfg.CalculateBackoff(1, 0)
	if second <= first {
		t.Errorf("backoff must grow: %v then %v", first, second)
	}

	huge := cfg.CalculateBackoff(10, 0)
	if huge > cfg.MaxBackoff {
		t.Errorf("backoff %v exceeds cap %v", huge, cfg.MaxBackoff)
	}
}

func TestCalculateBackoffHonorsAPIDelay(t *testing.T) {
	cfg := NewDefaultRetryConfig()
	got := cfg.CalculateBackoff(0, 10*time.Second)
	if got != 15*time.Second {
		t.Errorf("API-provided delay should win with headroom, got %v", got)
	}
}
