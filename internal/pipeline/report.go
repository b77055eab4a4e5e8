package pipeline

import (
	"fmt"
	"strings"
	"time"

	"github.com/calvinalkan/mdsummary/internal/summary"
)

// Outcome is what happened to one document.
type Outcome string

// Document outcomes.
const (
	OutcomeWritten     Outcome = "written"
	OutcomeOverwritten Outcome = "overwritten"
	OutcomeUnchanged   Outcome = "unchanged"
	OutcomeSkipped     Outcome = "skipped"
	OutcomeFailed      Outcome = "failed"
	OutcomeCanceled    Outcome = "canceled"
)

// Report aggregates the outcomes of a run.
type Report struct {
	Written     int
	Overwritten int
	Unchanged   int
	Skipped     int
	Failed      int
	Canceled    int

	// Summary sources of the documents that got one.
	API   int
	Local int

	Duration time.Duration
}

// Total is the number of documents the run saw.
func (r Report) Total() int {
	return r.Written + r.Overwritten + r.Unchanged + r.Skipped + r.Failed + r.Canceled
}

// Count returns the number of documents with outcome o.
func (r Report) Count(o Outcome) int {
	switch o {
	case OutcomeWritten:
		return r.Written
	case OutcomeOverwritten:
		return r.Overwritten
	case OutcomeUnchanged:
		return r.Unchanged
	case OutcomeSkipped:
		return r.Skipped
	case OutcomeFailed:
		return r.Failed
	case OutcomeCanceled:
		return r.Canceled
	default:
		return 0
	}
}

func (r *Report) add(o Outcome, src summary.Source) {
	switch o {
	case OutcomeWritten:
		r.Written++
	case OutcomeOverwritten:
		r.Overwritten++
	case OutcomeUnchanged:
		r.Unchanged++
	case OutcomeSkipped:
		r.Skipped++
	case OutcomeFailed:
		r.Failed++
	case OutcomeCanceled:
		r.Canceled++
	}

	switch src {
	case summary.SourceAPI:
		r.API++
	case summary.SourceLocal:
		r.Local++
	}
}

func (r *Report) merge(other Report) {
	r.Written += other.Written
	r.Overwritten += other.Overwritten
	r.Unchanged += other.Unchanged
	r.Skipped += other.Skipped
	r.Failed += other.Failed
	r.Canceled += other.Canceled
	r.API += other.API
	r.Local += other.Local
}

// String renders the one-line run summary.
func (r Report) String() string {
	var b strings.Builder

	fmt.Fprintf(&b, "%d documents: %d written, %d overwritten, %d unchanged, %d skipped, %d failed",
		r.Total(), r.Written, r.Overwritten, r.Unchanged, r.Skipped, r.Failed)

	if r.Canceled > 0 {
		fmt.Fprintf(&b, ", %d canceled", r.Canceled)
	}

	fmt.Fprintf(&b, " (api %d, local %d) in %s", r.API, r.Local, r.Duration.Round(time.Millisecond))

	return b.String()
}
