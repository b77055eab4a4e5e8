package cli

import (
	"fmt"
	"io"
)

// IO is the output side of one command. Results go to stdout. Errors and
// documents the command had to leave out go to stderr.
type IO struct {
	out      io.Writer
	errOut   io.Writer
	problems []problem
}

// problem is a document a command could not handle.
type problem struct {
	path string
	err  error
}

// NewIO creates a new IO instance.
func NewIO(out, errOut io.Writer) *IO {
	return &IO{out: out, errOut: errOut}
}

// Println writes to stdout.
func (o *IO) Println(a ...any) {
	_, _ = fmt.Fprintln(o.out, a...)
}

// Printf writes formatted output to stdout.
func (o *IO) Printf(format string, a ...any) {
	_, _ = fmt.Fprintf(o.out, format, a...)
}

// Errorf writes an "error: " line to stderr.
func (o *IO) Errorf(format string, a ...any) {
	_, _ = fmt.Fprintf(o.errOut, "error: "+format+"\n", a...)
}

// Problem records a document the command skipped. Problems are listed on
// stderr by [IO.Finish], after all regular output.
func (o *IO) Problem(path string, err error) {
	o.problems = append(o.problems, problem{path: path, err: err})
}

// Finish lists recorded problems and returns the exit code:
// [ExitProblems] when any document was skipped, [ExitOK] otherwise.
func (o *IO) Finish() int {
	if len(o.problems) == 0 {
		return ExitOK
	}

	for _, p := range o.problems {
		_, _ = fmt.Fprintf(o.errOut, "warning: cannot read %s: %v\n", p.path, p.err)
	}

	_, _ = fmt.Fprintf(o.errOut, "warning: %d document(s) skipped\n", len(o.problems))

	return ExitProblems
}
