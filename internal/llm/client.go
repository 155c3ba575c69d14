// Package llm provides CompletionClient implementations over the HTTP APIs
// of the supported model vendors.
package llm

import (
	"context"
	"fmt"
	"time"

	"github.com/ludo-technologies/crev/domain"
)

// Options configures a completion client
type Options struct {
	// Model is the vendor model identifier
	Model string

	// APIKey overrides the environment credential when set
	APIKey string

	// BaseURL overrides the vendor endpoint, used for local gateways and tests
	BaseURL string

	// Timeout bounds one completion call; zero means 120s
	Timeout time.Duration
}

func (o Options) timeout() time.Duration {
	if o.Timeout <= 0 {
		return 120 * time.Second
	}
	return o.Timeout
}

// New creates a completion client by vendor name
func New(vendor string, opts Options) (domain.CompletionClient, error) {
	switch vendor {
	case "anthropic":
		return NewAnthropic(opts)
	case "openai":
		return NewOpenAI(opts)
	case "ollama":
		return NewOllama(opts)
	default:
		return nil, fmt.Errorf("unknown completion vendor: %s", vendor)
	}
}

type rateLimitError struct{}

func (e *rateLimitError) Error() string { return "rate limited" }

type authError struct {
	message string
}

func (e *authError) Error() string {
	return "authentication error: " + e.message
}

// retryWithBackoff retries fn with exponential backoff. Auth errors are
// never retried; only rate limit errors are.
func retryWithBackoff(ctx context.Context, maxRetries int, fn func() error) error {
	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		lastErr = fn()
		if lastErr == nil {
			return nil
		}

		if _, ok := lastErr.(*authError); ok {
			return lastErr
		}
		if _, ok := lastErr.(*rateLimitError); !ok {
			return lastErr
		}

		if attempt < maxRetries {
			backoff := time.Duration(1<<uint(attempt)) * time.Second
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
			}
		}
	}
	return lastErr
}
