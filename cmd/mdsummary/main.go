// Package main provides mdsummary, which writes a one-sentence summary into
// the front matter of every index.md and index.mdx below a content directory.
package main

import (
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/calvinalkan/mdsummary/internal/cli"
)

func main() {
	os.Exit(run())
}

func run() int {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	return cli.Run(os.Stdin, os.Stdout, os.Stderr, os.Args, environ(os.Environ()), sigCh)
}

// environ turns KEY=value pairs into a map. The first occurrence of a key
// wins, as with os.Getenv.
func environ(pairs []string) map[string]string {
	env := make(map[string]string, len(pairs))

	for _, kv := range pairs {
		k, v, ok := strings.Cut(kv, "=")
		if !ok || k == "" {
			continue
		}

		if _, seen := env[k]; !seen {
			env[k] = v
		}
	}

	return env
}
