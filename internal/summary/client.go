package summary

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
)

// maxResponseBytes caps how much of a response body is read.
const maxResponseBytes = 1 << 20

// request is the JSON body sent to the summary endpoint.
type request struct {
	Title     string `json:"title"`
	Content   string `json:"content"`
	WordLimit int    `json:"wordLimit"`
	APIKey    string `json:"apiKey,omitempty"`
}

type response struct {
	Summary *string `json:"summary"`
}

// call performs one request against the endpoint. It returns the raw
// summary text on success.
func (p *Provider) call(ctx context.Context, requestID, title, content string) (string, error) {
	req := request{
		Title:     title,
		Content:   content,
		WordLimit: p.cfg.WordLimit,
	}

	bearer := p.cfg.APIKey != "" && headerSafe(p.cfg.APIKey)
	if p.cfg.APIKey != "" && !bearer {
		req.APIKey = p.cfg.APIKey
	}

	payload, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("encode request: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.cfg.Endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("X-Request-Id", requestID)

	if bearer {
		httpReq.Header.Set("Authorization", "Bearer "+p.cfg.APIKey)
	}

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return "", err
	}

	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &StatusError{Code: resp.StatusCode, Body: snippet(string(data), 200)}
	}

	var out response

	if err := json.Unmarshal(data, &out); err != nil {
		return "", fmt.Errorf("%w: %w", ErrMalformedResponse, err)
	}

	if out.Summary == nil {
		return "", fmt.Errorf("%w: missing summary field", ErrMalformedResponse)
	}

	if strings.TrimSpace(*out.Summary) == "" {
		return "", ErrEmptySummary
	}

	return *out.Summary, nil
}

// callWithRetry retries temporary failures with linear backoff.
func (p *Provider) callWithRetry(ctx context.Context, title, content string) (string, string, error) {
	requestID := uuid.NewString()

	var lastErr error

	for attempt := 0; attempt <= p.retries; attempt++ {
		if attempt > 0 {
			p.log.Debug("retrying summary request", "request_id", requestID, "attempt", attempt+1, "error", lastErr)

			select {
			case <-ctx.Done():
				return "", requestID, ctx.Err()
			case <-time.After(p.backoff * time.Duration(attempt)):
			}
		}

		text, err := p.call(ctx, requestID, title, content)
		if err == nil {
			return text, requestID, nil
		}

		lastErr = err

		if !retryable(ctx, err) {
			break
		}
	}

	return "", requestID, lastErr
}

func retryable(ctx context.Context, err error) bool {
	if ctx.Err() != nil {
		return false
	}

	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.Temporary()
	}

	if errors.Is(err, ErrMalformedResponse) || errors.Is(err, ErrEmptySummary) {
		return false
	}

	// Per-attempt timeouts are final: a silent endpoint must not stall the run.
	if errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	return true
}

// headerSafe reports whether s can be sent as an HTTP header value.
func headerSafe(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < 0x20 || s[i] > 0x7e {
			return false
		}
	}

	return true
}

func snippet(s string, n int) string {
	s = strings.TrimSpace(s)

	runes := []rune(s)
	if len(runes) <= n {
		return s
	}

	return string(runes[:n]) + "…"
}
