package cli

import (
	"context"
	"fmt"

	flag "github.com/spf13/pflag"

	"github.com/calvinalkan/mdsummary/internal/pipeline"
)

// LsCmd returns the ls command.
func LsCmd(a *app) *Command {
	flags := flag.NewFlagSet("ls", flag.ContinueOnError)
	missing := flags.Bool("missing", false, "Only list documents without a summary")

	return &Command{
		Flags: flags,
		Usage: "ls [flags]",
		Short: "List documents and their summaries",
		Long:  "List every document below the content directory with its current summary. Nothing is modified.",
		Exec: func(_ context.Context, o *IO) error {
			return execLs(o, a, *missing)
		},
	}
}

func execLs(o *IO, a *app, missingOnly bool) error {
	p := pipeline.New(a.fs, a.cfg, nil, nil, a.log)

	listings, err := p.List(a.contentDir)
	if err != nil {
		return fmt.Errorf("locate documents: %w", err)
	}

	for _, l := range listings {
		if l.Err != nil {
			o.Problem(l.Path, l.Err)

			continue
		}

		if l.HasSummary {
			if !missingOnly {
				o.Printf("%s\t%s\n", l.Path, l.Summary)
			}

			continue
		}

		o.Printf("%s\t(no summary)\n", l.Path)
	}

	return nil
}
