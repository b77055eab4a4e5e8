package pipeline

import (
	"context"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/calvinalkan/mdsummary/internal/frontmatter"
	"github.com/calvinalkan/mdsummary/internal/policy"
	"github.com/calvinalkan/mdsummary/internal/summary"
)

// documentPerm applies to files the pipeline creates. Existing documents
// keep their mode.
const documentPerm = 0o644

type processed struct {
	outcome   Outcome
	source    summary.Source
	requestID string
}

func (p *Pipeline) process(ctx context.Context, path, rel string) (processed, error) {
	data, err := p.fs.ReadFile(path)
	if err != nil {
		return processed{}, fmt.Errorf("read: %w", err)
	}

	original := string(data)
	doc := frontmatter.Split(original)
	existing, hasExisting := doc.Summary()

	decision, err := policy.Decide(ctx, policy.Input{
		Policy:      p.cfg.Overwrite,
		Existing:    existing,
		HasExisting: hasExisting,
		Path:        rel,
	}, p.prompter)
	if err != nil {
		return processed{}, fmt.Errorf("decide: %w", err)
	}

	p.log.Debug("overwrite decision", "path", rel, "has_summary", hasExisting, "decision", decision)

	if decision == policy.Skip {
		return processed{outcome: OutcomeSkipped}, nil
	}

	res := p.summarizer.Summarize(ctx, Title(doc, path), doc.Body)
	out := processed{source: res.Source, requestID: res.RequestID}

	updated := doc.WithSummary(res.Text).String()
	if updated == original {
		out.outcome = OutcomeUnchanged

		return out, nil
	}

	if err := p.fs.WriteFileAtomic(path, []byte(updated), documentPerm); err != nil {
		return processed{}, fmt.Errorf("write: %w", err)
	}

	out.outcome = OutcomeWritten
	if hasExisting {
		out.outcome = OutcomeOverwritten
	}

	return out, nil
}

var atxHeading = regexp.MustCompile(`^#[ \t]+(.*?)(?:[ \t]+#+)?[ \t]*$`)

// Title returns the front-matter title, else the first level-one heading
// of the body, else the name of the directory holding the document.
func Title(doc frontmatter.Document, path string) string {
	if t, ok := doc.Field("title"); ok {
		if t = strings.TrimSpace(t); t != "" {
			return t
		}
	}

	if h := firstHeading(doc.Body); h != "" {
		return h
	}

	return filepath.Base(filepath.Dir(path))
}

func firstHeading(body string) string {
	fence := ""

	for line := range strings.Lines(body) {
		line = strings.TrimRight(line, "\r\n")
		trimmed := strings.TrimLeft(line, " ")

		if fence != "" {
			if strings.HasPrefix(trimmed, fence) {
				fence = ""
			}

			continue
		}

		if strings.HasPrefix(trimmed, "```") || strings.HasPrefix(trimmed, "~~~") {
			fence = trimmed[:3]

			continue
		}

		if m := atxHeading.FindStringSubmatch(line); m != nil {
			if h := strings.TrimSpace(m[1]); h != "" {
				return h
			}
		}
	}

	return ""
}
