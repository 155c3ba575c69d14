package providers

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/ludo-technologies/crev/domain"
)

// doJSON issues one HTTP request and classifies the outcome for the retry
// loop: network failures and 5xx are transient, 401/403 is an auth error,
// 429 is rate limiting, any other non-2xx is permanent.
func doJSON(ctx context.Context, client *http.Client, method, url string, headers map[string]string, payload []byte) ([]byte, error) {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, &permanentError{cause: fmt.Errorf("creating request: %w", err)}
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := client.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, &permanentError{cause: domain.NewTimeoutError("analysis deadline exceeded", err)}
		}
		return nil, &transientError{cause: domain.NewProviderUnavailableError("request failed", err)}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &transientError{cause: domain.NewProviderUnavailableError("reading response", err)}
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, &permanentError{cause: domain.NewAuthError(fmt.Sprintf("status %d: %s", resp.StatusCode, truncate(body, 200)), nil)}
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, &transientError{cause: domain.NewRateLimitedError("vendor throttled the request", nil)}
	case resp.StatusCode >= 500:
		return nil, &transientError{cause: domain.NewProviderUnavailableError(fmt.Sprintf("server error (status %d)", resp.StatusCode), nil)}
	case resp.StatusCode >= 300:
		return nil, &permanentError{cause: fmt.Errorf("API error (status %d): %s", resp.StatusCode, truncate(body, 200))}
	}

	return body, nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
