// Package policy decides whether an existing summary may be replaced.
package policy

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/calvinalkan/mdsummary/internal/config"
)

// Decision is the outcome of [Decide] for one document.
type Decision int

const (
	// Skip leaves the document untouched.
	Skip Decision = iota
	// Write stores the generated summary.
	Write
)

func (d Decision) String() string {
	if d == Write {
		return "write"
	}

	return "skip"
}

// PreviewRunes is how much of the current summary the prompt shows.
const PreviewRunes = 40

// Input describes the document being decided on.
type Input struct {
	Policy      config.Policy
	Existing    string
	HasExisting bool
	Path        string // As shown to the user.
}

// Decide applies the overwrite policy. Only a canceled ctx is returned as
// an error; prompt failures decline the overwrite.
func Decide(ctx context.Context, in Input, p Prompter) (Decision, error) {
	if !in.HasExisting {
		return Write, nil
	}

	switch in.Policy {
	case config.PolicyAlways:
		return Write, nil
	case config.PolicyAsk:
		return ask(ctx, in, p)
	default:
		return Skip, nil
	}
}

func ask(ctx context.Context, in Input, p Prompter) (Decision, error) {
	if p == nil {
		return Skip, nil
	}

	if err := ctx.Err(); err != nil {
		return Skip, err
	}

	answer, err := p.Prompt(ctx, Question(in.Path, in.Existing))
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return Skip, err
		}

		return Skip, nil
	}

	if Accepts(answer) {
		return Write, nil
	}

	return Skip, nil
}

// Question formats the overwrite prompt for path.
func Question(path, current string) string {
	return fmt.Sprintf("Overwrite summary in %s? current: %q [y/N] ", path, Preview(current))
}

// Preview shortens s to [PreviewRunes] runes, marking the cut with "…".
func Preview(s string) string {
	runes := []rune(s)
	if len(runes) <= PreviewRunes {
		return s
	}

	return string(runes[:PreviewRunes]) + "…"
}

// Accepts reports whether answer confirms an overwrite.
func Accepts(answer string) bool {
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true
	default:
		return false
	}
}
