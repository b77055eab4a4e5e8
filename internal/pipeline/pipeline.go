// Package pipeline runs the summary pass over a content tree.
//
// Documents are located once, queued, and processed by a fixed number of
// workers. A document either gets its summary field written atomically or
// is left byte-for-byte unmodified; failures never stop the other workers.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/calvinalkan/mdsummary/internal/config"
	"github.com/calvinalkan/mdsummary/internal/content"
	"github.com/calvinalkan/mdsummary/internal/fs"
	"github.com/calvinalkan/mdsummary/internal/policy"
	"github.com/calvinalkan/mdsummary/internal/summary"
)

// Summarizer produces the summary for one document.
type Summarizer interface {
	Summarize(ctx context.Context, title, body string) summary.Result
}

// Pipeline holds the collaborators of a run.
type Pipeline struct {
	fs         fs.FS
	cfg        config.RunConfig
	summarizer Summarizer
	prompter   policy.Prompter
	log        *slog.Logger
}

// New returns a [Pipeline]. prompter may be nil, in which case the ask
// policy declines every overwrite. A nil logger discards output.
func New(fsys fs.FS, cfg config.RunConfig, s Summarizer, prompter policy.Prompter, log *slog.Logger) *Pipeline {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}

	return &Pipeline{
		fs:         fsys,
		cfg:        cfg,
		summarizer: s,
		prompter:   prompter,
		log:        log,
	}
}

// Run processes every document below root. The error is non-nil only when
// root cannot be read; per-document problems are counted in the [Report].
func (p *Pipeline) Run(ctx context.Context, root string) (Report, error) {
	start := time.Now()

	paths, err := content.Locate(p.fs, root, func(path string, err error) {
		p.log.Error("skipping unreadable directory", "path", p.rel(root, path), "error", err)
	})
	if err != nil {
		return Report{}, err
	}

	p.log.Debug("located documents", "root", root, "count", len(paths))

	queue := make(chan string, len(paths))
	for _, path := range paths {
		queue <- path
	}

	close(queue)

	workers := min(max(p.cfg.Concurrency, 1), max(len(paths), 1))
	tallies := make([]Report, workers)

	var g errgroup.Group

	for i := range workers {
		tally := &tallies[i]

		g.Go(func() error {
			p.work(ctx, root, queue, tally)

			return nil
		})
	}

	_ = g.Wait()

	var report Report
	for _, t := range tallies {
		report.merge(t)
	}

	report.Duration = time.Since(start)

	return report, nil
}

func (p *Pipeline) work(ctx context.Context, root string, queue <-chan string, tally *Report) {
	for path := range queue {
		if ctx.Err() != nil {
			tally.add(OutcomeCanceled, "")

			continue
		}

		outcome, src := p.processSafe(ctx, root, path)
		tally.add(outcome, src)
	}
}

// processSafe turns errors and panics into [OutcomeFailed].
func (p *Pipeline) processSafe(ctx context.Context, root, path string) (outcome Outcome, src summary.Source) {
	rel := p.rel(root, path)

	defer func() {
		if r := recover(); r != nil {
			p.log.Error("document failed", "path", rel, "error", fmt.Errorf("panic: %v", r))

			outcome, src = OutcomeFailed, ""
		}
	}()

	res, err := p.process(ctx, path, rel)
	if err != nil {
		if ctx.Err() != nil {
			p.log.Debug("document canceled", "path", rel, "error", err)

			return OutcomeCanceled, ""
		}

		p.log.Error("document failed", "path", rel, "error", err)

		return OutcomeFailed, ""
	}

	if res.outcome == OutcomeSkipped {
		p.log.Info("document skipped", "path", rel, "policy", p.cfg.Overwrite)
	} else {
		p.log.Info("document summarized", "path", rel, "outcome", res.outcome, "source", res.source, "request_id", res.requestID)
	}

	return res.outcome, res.source
}

func (p *Pipeline) rel(root, path string) string {
	r, err := filepath.Rel(root, path)
	if err != nil {
		return path
	}

	return filepath.ToSlash(r)
}
