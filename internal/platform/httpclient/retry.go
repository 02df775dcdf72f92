package httpclient

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"
)

const (
	DefaultBackoff = 200 * time.Millisecond
	maxErrorBody   = 512
)

// StatusError is returned for responses with status 400 or above.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("Code %d: %s", e.Code, e.Body)
}

// Retryable reports whether a status code indicates a transient upstream
// condition.
func Retryable(code int) bool {
	switch code {
	case http.StatusTooManyRequests,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	}
	return false
}

// Client sends requests to one upstream service with bounded retries.
//
// The client is safe for concurrent use.
type Client struct {
	HTTP *http.Client
	// Total tries per call including the first. Values below 1 mean 1.
	MaxAttempts int
	// Delay before the second try; doubled after each failure.
	Backoff time.Duration
}

func New(timeout time.Duration, maxAttempts int) *Client {
	return &Client{
		HTTP:        &http.Client{Timeout: timeout},
		MaxAttempts: maxAttempts,
		Backoff:     DefaultBackoff,
	}
}

func (c *Client) do(req *http.Request) (*http.Response, error) {
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 400 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		resp.Body.Close()
		return nil, &StatusError{
			Code: resp.StatusCode,
			Body: strings.TrimSpace(string(b)),
		}
	}
	return resp, nil
}

// Do retries transient failures (network errors, 429 and 5xx responses)
// using exponential backoff while respecting context cancellation.
// makeReq is called once per attempt since request bodies are single use.
func (c *Client) Do(
	ctx context.Context,
	makeReq func() (*http.Request, error),
) (*http.Response, error) {
	attempts := max(c.MaxAttempts, 1)
	backoff := c.Backoff

	var lastErr error

	for attempt := 1; attempt <= attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		req, err := makeReq()
		if err != nil {
			return nil, fmt.Errorf("make request: %w", err)
		}

		resp, err := c.do(req)
		if err == nil {
			return resp, nil
		}
		lastErr = err

		retry := false
		var se *StatusError
		if errors.As(err, &se) {
			retry = Retryable(se.Code)
		}

		var netErr net.Error
		if !retry && errors.As(err, &netErr) && ctx.Err() == nil {
			retry = true
		}

		if !retry || attempt == attempts {
			return nil, lastErr
		}

		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}

		backoff *= 2
	}

	return nil, lastErr
}
