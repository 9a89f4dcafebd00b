// Package maincmd implements the lox command-line driver: a REPL when
// invoked with no arguments, a one-shot file runner when invoked with a
// single path, and a usage error otherwise. It is the only caller of
// lang/scanner, lang/parser, lang/resolver and lang/interp.
package maincmd

import (
	"context"
	"fmt"
	"os"

	"github.com/mna/mainer"
)

const binName = "lox"

var (
	shortUsage = fmt.Sprintf("Usage: %s [script]\n", binName)

	longUsage = fmt.Sprintf(`usage: %[1]s [script]
       %[1]s -h|--help
       %[1]s -v|--version

Tree-walking interpreter for the lox programming language.

With no arguments, %[1]s starts an interactive REPL reading from
standard input, saving and loading line history from history.txt in the
current directory. With a single argument, %[1]s runs the named script
and exits. Any other number of arguments is a usage error.
`, binName)
)

// exit codes per the language's external interface: 0 success, 64 bad
// usage or a syntax/compile error, 70 a runtime error.
const (
	exitSuccess = 0
	exitUsage   = 64
	exitRuntime = 70
)

// Cmd holds parsed flags and arguments for a single invocation.
type Cmd struct {
	BuildVersion string
	BuildDate    string

	Help    bool `flag:"h,help"`
	Version bool `flag:"v,version"`

	args []string
}

func (c *Cmd) SetArgs(args []string)          { c.args = args }
func (c *Cmd) SetFlags(flags map[string]bool) {}

// Validate accepts every combination of flags and arguments; the "too
// many arguments" case is handled in Main so it can print the exact usage
// message and exit code the CLI contract requires instead of the
// generic invalid-arguments path.
func (c *Cmd) Validate() error {
	return nil
}

// Main runs the CLI and returns the process exit code.
func (c *Cmd) Main(args []string, stdio mainer.Stdio) int {
	p := mainer.Parser{
		EnvVars:   false,
		EnvPrefix: binName + "_",
	}
	if err := p.Parse(args, c); err != nil {
		fmt.Fprintf(stdio.Stderr, "invalid arguments: %s\n%s", err, shortUsage)
		return exitUsage
	}

	switch {
	case c.Help:
		fmt.Fprint(stdio.Stdout, longUsage)
		return exitSuccess
	case c.Version:
		fmt.Fprintf(stdio.Stdout, "%s %s %s\n", binName, c.BuildVersion, c.BuildDate)
		return exitSuccess
	}

	if len(c.args) > 1 {
		fmt.Fprint(stdio.Stdout, shortUsage)
		return exitUsage
	}

	ctx := mainer.CancelOnSignal(context.Background(), os.Interrupt)

	if len(c.args) == 1 {
		return runFile(ctx, stdio, c.args[0])
	}
	return runREPL(ctx, stdio)
}
