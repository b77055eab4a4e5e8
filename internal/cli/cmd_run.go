package cli

import (
	"context"
	"fmt"

	flag "github.com/spf13/pflag"

	"github.com/calvinalkan/mdsummary/internal/config"
	"github.com/calvinalkan/mdsummary/internal/pipeline"
	"github.com/calvinalkan/mdsummary/internal/policy"
	"github.com/calvinalkan/mdsummary/internal/summary"
)

// RunCmd returns the run command.
func RunCmd(a *app) *Command {
	return &Command{
		Flags: flag.NewFlagSet("run", flag.ContinueOnError),
		Usage: "run",
		Short: "Write summaries into document front matter",
		Long: `Summarize every index.md and index.mdx below the content directory and
store the result in the front-matter summary field.

Existing summaries are handled by AI_SUMMARY_OVERWRITE (ask, always, never).
Per-document failures are logged and leave the document untouched.`,
		Exec: func(ctx context.Context, o *IO) error {
			return execRun(ctx, o, a)
		},
	}
}

func execRun(ctx context.Context, o *IO, a *app) error {
	var prompter policy.Prompter

	if a.cfg.Overwrite == config.PolicyAsk {
		p, release := policy.NewPrompter(a.stdin, a.stdout, a.errOut)
		defer release()

		prompter = p
	}

	a.log.Info("summary run started",
		"content", a.contentDir,
		"concurrency", a.cfg.Concurrency,
		"overwrite", a.cfg.Overwrite,
		"endpoint", a.cfg.Endpoint != "",
	)

	provider := summary.New(a.cfg, a.log)

	report, err := pipeline.New(a.fs, a.cfg, provider, prompter, a.log).Run(ctx, a.contentDir)
	if err != nil {
		return fmt.Errorf("locate documents: %w", err)
	}

	a.log.Info("summary run finished", "documents", report.Total(), "failed", report.Failed, "duration", report.Duration)

	o.Println(report.String())

	return nil
}
