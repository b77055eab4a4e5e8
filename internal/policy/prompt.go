package policy

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/peterh/liner"
	"golang.org/x/term"
)

// ErrNoAnswer is returned when input ended before an answer was read.
var ErrNoAnswer = errors.New("no answer")

// Prompter asks the user a yes/no question and returns the raw answer.
// Implementations serialize concurrent calls.
type Prompter interface {
	Prompt(ctx context.Context, question string) (string, error)
}

// ReaderPrompter writes questions to an output stream and reads one line
// per answer. Used for piped stdin and in tests.
type ReaderPrompter struct {
	mu  sync.Mutex
	in  *bufio.Reader
	out io.Writer
}

// NewReaderPrompter returns a [ReaderPrompter] reading from in.
func NewReaderPrompter(in io.Reader, out io.Writer) *ReaderPrompter {
	return &ReaderPrompter{in: bufio.NewReader(in), out: out}
}

// Prompt implements [Prompter]. Cancellation is checked before the question
// is written; a read in progress is not interrupted.
func (p *ReaderPrompter) Prompt(ctx context.Context, question string) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return "", err
	}

	if _, err := io.WriteString(p.out, question); err != nil {
		return "", fmt.Errorf("write prompt: %w", err)
	}

	line, err := p.in.ReadString('\n')
	if err != nil && line == "" {
		if errors.Is(err, io.EOF) {
			_, _ = io.WriteString(p.out, "\n")

			return "", ErrNoAnswer
		}

		return "", fmt.Errorf("read answer: %w", err)
	}

	return strings.TrimRight(line, "\r\n"), nil
}

// LinePrompter reads answers with line editing on an interactive terminal.
// Ctrl-C aborts the prompt, which declines the overwrite.
type LinePrompter struct {
	mu    sync.Mutex
	state *liner.State
}

// NewLinePrompter takes over the terminal until [LinePrompter.Close].
func NewLinePrompter() *LinePrompter {
	state := liner.NewLiner()
	state.SetCtrlCAborts(true)

	return &LinePrompter{state: state}
}

// Prompt implements [Prompter].
func (p *LinePrompter) Prompt(ctx context.Context, question string) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return "", err
	}

	answer, err := p.state.Prompt(question)
	if err != nil {
		if errors.Is(err, liner.ErrPromptAborted) || errors.Is(err, io.EOF) {
			return "", ErrNoAnswer
		}

		return "", fmt.Errorf("read answer: %w", err)
	}

	return answer, nil
}

// Close restores the terminal.
func (p *LinePrompter) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.state.Close()
}

// Interactive reports whether both stdin and stdout are terminals. Line
// editing writes to the process stdout, so a redirected stdout rules it out
// even when stdin is a terminal.
func Interactive(stdin io.Reader, stdout io.Writer) bool {
	return isTerminal(stdin) && isTerminal(stdout)
}

func isTerminal(v any) bool {
	f, ok := v.(*os.File)

	return ok && term.IsTerminal(int(f.Fd()))
}

// NewPrompter picks a [LinePrompter] when the session is [Interactive] and a
// [ReaderPrompter] writing questions to prompts otherwise. The returned func
// releases the prompter.
func NewPrompter(stdin io.Reader, stdout, prompts io.Writer) (Prompter, func()) {
	if Interactive(stdin, stdout) {
		lp := NewLinePrompter()

		return lp, func() { _ = lp.Close() }
	}

	return NewReaderPrompter(stdin, prompts), func() {}
}
