package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	flag "github.com/spf13/pflag"

	"github.com/calvinalkan/mdsummary/internal/config"
	"github.com/calvinalkan/mdsummary/internal/content"
	"github.com/calvinalkan/mdsummary/internal/fs"
)

// ErrUnknownCommand is returned for a command name that is not registered.
var ErrUnknownCommand = errors.New("unknown command")

const defaultCommand = "run"

// app is the resolved state shared by all commands of one invocation.
type app struct {
	stdin      io.Reader
	stdout     io.Writer
	errOut     io.Writer
	workDir    string
	contentDir string
	cfg        config.RunConfig
	sources    config.Sources
	log        *slog.Logger
	fs         fs.FS
}

type globalFlags struct {
	workDir    string
	configPath string
	contentDir string
	help       bool
	remaining  []string
}

// Run is the main entry point. Returns exit code.
//
// A signal received on sigCh cancels the running command; documents already
// being processed finish, the rest are reported as canceled.
func Run(stdin io.Reader, out io.Writer, errOut io.Writer, args []string, env map[string]string, sigCh <-chan os.Signal) int {
	if stdin == nil {
		stdin = strings.NewReader("")
	}

	if len(args) > 0 {
		args = args[1:]
	}

	flags, err := parseGlobalFlags(args)
	if err != nil {
		fprintln(errOut, "error:", err)
		fprintln(errOut)
		printUsage(errOut, nil)

		return 1
	}

	workDir := flags.workDir
	if workDir == "" {
		workDir, err = os.Getwd()
		if err != nil {
			fprintln(errOut, "error: cannot get working directory:", err)

			return 1
		}
	}

	workDir, err = filepath.Abs(workDir)
	if err != nil {
		fprintln(errOut, "error: cannot resolve working directory:", err)

		return 1
	}

	cfg, sources := config.Resolve(config.Input{
		WorkDir:  workDir,
		SideFile: flags.configPath,
		Env:      env,
	})

	contentDir := flags.contentDir
	if !filepath.IsAbs(contentDir) {
		contentDir = filepath.Join(workDir, contentDir)
	}

	a := &app{
		stdin:      stdin,
		stdout:     out,
		errOut:     errOut,
		workDir:    workDir,
		contentDir: contentDir,
		cfg:        cfg,
		sources:    sources,
		log:        newLogger(errOut, cfg.LogLevel),
		fs:         fs.NewReal(),
	}

	commands := []*Command{
		RunCmd(a),
		LsCmd(a),
		PrintConfigCmd(a),
	}

	o := NewIO(out, errOut)

	if flags.help {
		printUsage(out, commands)

		return 0
	}

	name := defaultCommand
	cmdArgs := flags.remaining

	if len(cmdArgs) > 0 {
		name, cmdArgs = cmdArgs[0], cmdArgs[1:]
	}

	cmd := findCommand(commands, name)
	if cmd == nil {
		fprintln(errOut, "error:", fmt.Errorf("%w: %s", ErrUnknownCommand, name))
		fprintln(errOut)
		printUsage(errOut, commands)

		return 1
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if sigCh != nil {
		go func() {
			select {
			case sig := <-sigCh:
				a.log.Info("received signal, stopping", "signal", sig.String())
				cancel()
			case <-ctx.Done():
			}
		}()
	}

	return cmd.Run(ctx, o, cmdArgs)
}

func parseGlobalFlags(args []string) (globalFlags, error) {
	var flags globalFlags

	flagSet := flag.NewFlagSet("mdsummary", flag.ContinueOnError)
	flagSet.SetOutput(io.Discard)
	flagSet.SetInterspersed(false)

	flagSet.StringVarP(&flags.workDir, "cwd", "C", "", "Run as if started in `dir`")
	flagSet.StringVarP(&flags.configPath, "config", "c", "", "Read settings from `file` instead of "+config.SideFileName)
	flagSet.StringVar(&flags.contentDir, "content", content.DefaultDir, "Content `dir`, relative to the working directory")
	flagSet.BoolVarP(&flags.help, "help", "h", false, "Show help")

	if err := flagSet.Parse(args); err != nil {
		return globalFlags{}, err
	}

	flags.remaining = flagSet.Args()

	return flags, nil
}

func findCommand(commands []*Command, name string) *Command {
	for _, c := range commands {
		if c.Name() == name {
			return c
		}
	}

	return nil
}

func newLogger(w io.Writer, level config.LogLevel) *slog.Logger {
	var l slog.Level

	switch level {
	case config.LevelError:
		l = slog.LevelError
	case config.LevelDebug:
		l = slog.LevelDebug
	default:
		l = slog.LevelInfo
	}

	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: l}))
}

func fprintln(w io.Writer, a ...any) {
	_, _ = fmt.Fprintln(w, a...)
}

func printUsage(w io.Writer, commands []*Command) {
	fprintln(w, `mdsummary - write summary front matter for markdown content

Usage: mdsummary [options] [command] [args]

Options:
  -C, --cwd <dir>        Run as if started in <dir>
  -c, --config <file>    Read settings from <file> instead of `+config.SideFileName+`
      --content <dir>    Content directory (default `+content.DefaultDir+`)
  -h, --help             Show help

Commands:`)

	if commands == nil {
		fprintln(w, "  run, ls, print-config")

		return
	}

	for _, c := range commands {
		fprintln(w, c.HelpLine())
	}

	fprintln(w)
	fprintln(w, "Without a command, run is used. Settings come from "+config.SideFileName+", the environment and .env.")
}
