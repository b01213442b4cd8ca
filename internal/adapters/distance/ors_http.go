package distance

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// ErrMalformedResponse is returned when the provider answers 2xx with a body
// that cannot be decoded into a usable matrix.
var ErrMalformedResponse = errors.New("malformed matrix response")

// APIError is a non-2xx answer from the provider. Body is kept for diagnostics.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("Code %d: %s", e.StatusCode, e.Body)
}

// ConnectivityError is a transport-level failure (DNS, refused connection,
// timeout) where no HTTP response was received.
type ConnectivityError struct {
	Err error
}

func (e *ConnectivityError) Error() string {
	return fmt.Sprintf("matrix provider unreachable: %v", e.Err)
}

func (e *ConnectivityError) Unwrap() error { return e.Err }

// IsTransient reports whether err may succeed on retry: connectivity
// failures, rate limiting, and 5xx gateway errors.
func IsTransient(err error) bool {
	var ce *ConnectivityError
	if errors.As(err, &ce) {
		return !errors.Is(err, context.Canceled)
	}

	var ae *APIError
	if errors.As(err, &ae) {
		switch ae.StatusCode {
		case 429, 500, 502, 503, 504:
			return true
		}
	}

	return false
}

func (o *ORSDistanceProvider) newRequest(
	ctx context.Context,
	method string,
	url string,
	body io.Reader,
) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	// ORS expects the raw key, not a Bearer token.
	req.Header.Set("Authorization", o.apiKey)
	req.Header.Set("Accept", "application/json")

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	return req, nil
}

func (o *ORSDistanceProvider) do(req *http.Request) (*http.Response, error) {
	resp, err := o.session.Do(req)
	if err != nil {
		return nil, &ConnectivityError{Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
		resp.Body.Close()
		return nil, &APIError{
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(b)),
		}
	}
	return resp, nil
}

// doWithRetry retries transient failures (network errors, 429/5xx responses)
// using exponential backoff while respecting context cancellation.
func (o *ORSDistanceProvider) doWithRetry(
	ctx context.Context,
	makeReq func() (*http.Request, error),
) (*http.Response, error) {
	backoff := o.retryBackoff

	var lastErr error

	for attempt := 1; attempt <= o.maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, &ConnectivityError{Err: err}
		}

		req, err := makeReq()
		if err != nil {
			return nil, fmt.Errorf("make request: %w", err)
		}

		resp, err := o.do(req)
		if err == nil {
			return resp, nil
		}
		lastErr = err

		if !IsTransient(err) || attempt == o.maxAttempts {
			return nil, lastErr
		}

		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, &ConnectivityError{Err: ctx.Err()}
		case <-timer.C:
		}

		backoff *= 2
	}

	return nil, lastErr
}
