// Package summary produces the summary sentence for one document.
//
// A [Provider] asks the configured completion endpoint first and falls back
// to a deterministic local summary when no endpoint is configured, the
// request fails or times out, or the answer looks like source code. Either
// way the text is canonicalized by [normalize.Declarative] before it is
// returned, so callers always get a bounded sentence.
package summary

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/calvinalkan/mdsummary/internal/config"
	"github.com/calvinalkan/mdsummary/internal/normalize"
)

// Placeholder is the summary of a document with neither text nor title.
const Placeholder = "暂无摘要。"

// Defaults for the endpoint client.
const (
	DefaultTimeout = 30 * time.Second
	DefaultRetries = 1
	DefaultBackoff = 500 * time.Millisecond
)

// Source tells where a summary came from.
type Source string

// Summary sources.
const (
	SourceAPI   Source = "api"
	SourceLocal Source = "local"
)

// Result is a canonicalized summary and its source.
type Result struct {
	Text      string
	Source    Source
	RequestID string // Set when the endpoint was called.
}

// Provider produces summaries. It is safe for concurrent use.
type Provider struct {
	cfg     config.RunConfig
	log     *slog.Logger
	client  *http.Client
	timeout time.Duration
	retries int
	backoff time.Duration
}

// Option configures a [Provider].
type Option func(*Provider)

// WithHTTPClient sets the client used for endpoint requests.
func WithHTTPClient(c *http.Client) Option {
	return func(p *Provider) {
		p.client = c
	}
}

// WithTimeout bounds each endpoint attempt.
func WithTimeout(d time.Duration) Option {
	return func(p *Provider) {
		if d > 0 {
			p.timeout = d
		}
	}
}

// WithRetry sets how many times a temporary failure is retried and the
// linear backoff step between attempts.
func WithRetry(retries int, backoff time.Duration) Option {
	return func(p *Provider) {
		if retries >= 0 {
			p.retries = retries
		}

		if backoff >= 0 {
			p.backoff = backoff
		}
	}
}

// New returns a [Provider] for cfg. A nil logger discards log output.
func New(cfg config.RunConfig, log *slog.Logger, opts ...Option) *Provider {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}

	p := &Provider{
		cfg:     cfg,
		log:     log,
		client:  http.DefaultClient,
		timeout: DefaultTimeout,
		retries: DefaultRetries,
		backoff: DefaultBackoff,
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

// Summarize returns the summary for a document. It never fails: endpoint
// problems are logged and answered with the local summary.
func (p *Provider) Summarize(ctx context.Context, title, body string) Result {
	content := limitRunes(body, p.cfg.WordLimit)

	res := p.fromEndpoint(ctx, title, content)
	if res.Text == "" {
		res.Text = p.local(title, content)
		res.Source = SourceLocal
	}

	res.Text = normalize.Declarative(res.Text, p.cfg.SummaryMaxLen)

	return res
}

// fromEndpoint returns an empty Result when the endpoint is not configured
// or its answer cannot be used.
func (p *Provider) fromEndpoint(ctx context.Context, title, content string) Result {
	if p.cfg.Endpoint == "" {
		return Result{}
	}

	submitted := content
	if p.cfg.Sanitize {
		submitted = normalize.StripMarkup(content)
	}

	raw, requestID, err := p.callWithRetry(ctx, title, submitted)
	if err != nil {
		p.log.Error("summary endpoint failed, using local summary", "title", title, "request_id", requestID, "error", err)

		return Result{RequestID: requestID}
	}

	p.log.Debug("summary endpoint answered", "request_id", requestID, "preview", snippet(raw, 80))

	if score := CodeScore(raw); score >= CodeThreshold {
		p.log.Error("summary endpoint answer rejected, using local summary",
			"title", title, "request_id", requestID, "error", ErrCodeLike, "code_score", score)

		return Result{RequestID: requestID}
	}

	text := normalize.Declarative(raw, p.cfg.SummaryMaxLen)
	if text == "" {
		return Result{RequestID: requestID}
	}

	return Result{Text: text, Source: SourceAPI, RequestID: requestID}
}

// local derives the summary from the body, then the title, then a
// placeholder.
func (p *Provider) local(title, content string) string {
	if s := normalize.Declarative(normalize.StripMarkup(content), p.cfg.SummaryMaxLen); s != "" {
		return s
	}

	if s := normalize.Declarative(title, p.cfg.SummaryMaxLen); s != "" {
		return s
	}

	return Placeholder
}

func limitRunes(s string, n int) string {
	if n <= 0 {
		return s
	}

	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}

		count++
	}

	return s
}
