package main

import (
	"fmt"
	"io"
	"os"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"

	"github.com/dusk-indust/flint/internal/check"
	"github.com/dusk-indust/flint/internal/diag"
	"github.com/dusk-indust/flint/internal/rules"
)

// version is set by goreleaser at build time.
var version = "dev"

// logLevelEnv selects logger verbosity, e.g. FLINT_LOG=debug.
const logLevelEnv = "FLINT_LOG"

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stderr))
}

// run executes the root command and maps the outcome to an exit status: 1
// when any diagnostics were reported or the command itself failed, else 0.
func run(args []string, stdin io.Reader, stderr io.Writer) int {
	var total int
	cmd := newRootCmd(stdin, stderr, &total)
	cmd.SetArgs(args)

	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}
	if total > 0 {
		return 1
	}
	return 0
}

// newRootCmd builds the flint command. The diagnostic total lands in *total
// so run can turn it into the exit status.
func newRootCmd(stdin io.Reader, stderr io.Writer, total *int) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "flint [path ...]",
		Short: "Flint checks Python source files for errors",
		Long: `Flint parses Python source files and reports syntax errors and
suspicious constructs on standard error. Directory arguments are walked
recursively for .py files; with no arguments, source is read from standard
input. The exit status is 1 when anything was reported.`,
		Args:          cobra.ArbitraryArgs,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(_ *cobra.Command, args []string) error {
			checker := check.NewChecker(check.Config{
				Analyzer: rules.NewEngine(),
				Reporter: diag.NewStreamReporter(stderr),
				Logger:   newLogger(stderr),
			})

			n, err := checker.Run(args, stdin)
			if err != nil {
				return err
			}
			*total = n
			return nil
		},
	}
	cmd.CompletionOptions.DisableDefaultCmd = true
	cmd.SetErr(stderr)
	return cmd
}

// newLogger builds the logger from the environment. Without logLevelEnv set,
// logging is off.
func newLogger(stderr io.Writer) hclog.Logger {
	level := os.Getenv(logLevelEnv)
	if level == "" {
		return hclog.NewNullLogger()
	}
	return hclog.New(&hclog.LoggerOptions{
		Name:   "flint",
		Output: stderr,
		Level:  hclog.LevelFromString(level),
	})
}
