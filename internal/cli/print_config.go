package cli

import (
	"context"

	flag "github.com/spf13/pflag"
)

// PrintConfigCmd returns the print-config command.
func PrintConfigCmd(a *app) *Command {
	return &Command{
		Flags: flag.NewFlagSet("print-config", flag.ContinueOnError),
		Usage: "print-config",
		Short: "Show resolved configuration",
		Long:  "Display the effective settings, where each came from, and which files were read. The API key is masked.",
		Exec: func(_ context.Context, io *IO) error {
			return execPrintConfig(io, a)
		},
	}
}

func execPrintConfig(io *IO, a *app) error {
	io.Println("effective_cwd=" + a.workDir)
	io.Println("content_dir=" + a.contentDir)

	for _, e := range a.cfg.Entries(a.sources) {
		io.Printf("%s=%s # %s\n", e.Key, e.Value, e.Source)
	}

	io.Println("")
	io.Println("# sources")

	if a.sources.SideFile == "" && a.sources.DotEnv == "" {
		io.Println("(environment and defaults only)")
	} else {
		if a.sources.SideFile != "" {
			io.Println("side_file=" + a.sources.SideFile)
		}

		if a.sources.DotEnv != "" {
			io.Println("dotenv=" + a.sources.DotEnv)
		}
	}

	return nil
}
