// Package main provides the genomebank command-line tool.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/inodb/genomebank/internal/genome"
)

// Exit codes
const (
	ExitSuccess  = 0
	ExitError    = 1
	ExitUsage    = 2
	ExitNotFound = 3
)

// Version information (set at build time)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

// run executes the command line and maps its error to an exit code.
func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	a := newApp(stdin, stdout, stderr)
	defer a.close()

	root := newRootCmd(a)
	root.SetArgs(args)
	root.SetIn(stdin)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.ExecuteContext(ctx)
	if err == nil {
		return ExitSuccess
	}
	fmt.Fprintf(stderr, "Error: %v\n", err)
	code := exitCode(err)
	if code == ExitUsage {
		var ue usageError
		if errors.As(err, &ue) {
			fmt.Fprintf(stderr, "Run '%s --help' for usage.\n", ue.cmd)
		}
	}
	return code
}

// usageError marks errors in flags or positional arguments.
type usageError struct {
	cmd string
	err error
}

func (e usageError) Error() string { return e.err.Error() }
func (e usageError) Unwrap() error { return e.err }

func exitCode(err error) int {
	var ue usageError
	if errors.As(err, &ue) || isCobraUsage(err) {
		return ExitUsage
	}
	switch genome.StatusCode(err) {
	case 404:
		return ExitNotFound
	case 400:
		return ExitUsage
	}
	return ExitError
}

// isCobraUsage reports errors cobra raises itself, outside flag parsing and
// argument validation.
func isCobraUsage(err error) bool {
	msg := err.Error()
	return strings.HasPrefix(msg, "required flag(s)") ||
		strings.HasPrefix(msg, "unknown command")
}

// withUsage wraps positional argument validation so failures exit with ExitUsage.
func withUsage(fn cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := fn(cmd, args); err != nil {
			return usageError{cmd: cmd.CommandPath(), err: err}
		}
		return nil
	}
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "genomebank",
		Short: "Store chromosome sequences and gene intervals, and query them",
		Long: `genomebank keeps chromosome sequences and gene annotations in a local
database and answers range overlap, subsequence and base composition queries.

Coordinates are 0-based and half-open: [start, end).`,
		Example: `  genomebank import fasta GRCh38.fa.gz
  genomebank import gtf gencode.v46.annotation.gtf.gz
  genomebank analysis genes --chromosome 1 --start 25205245 --end 25250929
  genomebank analysis stats --chromosome 1`,
		Version:       fmt.Sprintf("%s (%s) built %s", version, commit, date),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init()
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.cfgFile, "config", "", "config file (default ~/.genomebank.yaml)")
	flags.String("driver", "", "store driver: duckdb, sqlite or memory")
	flags.String("db", "", "database file (default ~/.genomebank/genomebank.<ext>)")
	flags.StringP("format", "f", "", "output format: tab or json")
	flags.String("log-level", "", "log level: debug, info, warn or error")
	mustBind(a.v, "store.driver", root, "driver")
	mustBind(a.v, "store.path", root, "db")
	mustBind(a.v, "output.format", root, "format")
	mustBind(a.v, "log.level", root, "log-level")

	root.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return usageError{cmd: cmd.CommandPath(), err: err}
	})

	root.AddCommand(
		newChromosomeCmd(a),
		newSequenceCmd(a),
		newGeneCmd(a),
		newAnalysisCmd(a),
		newFunctionCmd(a),
		newImportCmd(a),
		newConfigCmd(a),
	)
	return root
}

func mustBind(v *viper.Viper, key string, cmd *cobra.Command, flag string) {
	if err := v.BindPFlag(key, cmd.PersistentFlags().Lookup(flag)); err != nil {
		panic(fmt.Sprintf("bind flag %s: %v", flag, err))
	}
}
