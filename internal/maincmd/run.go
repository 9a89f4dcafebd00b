package maincmd

import (
	"context"
	"fmt"
	"os"

	"github.com/loxlang/glox/lang/interp"
	"github.com/loxlang/glox/lang/parser"
	"github.com/loxlang/glox/lang/resolver"
	"github.com/loxlang/glox/lang/scanner"
	"github.com/mna/mainer"
)

// runFile scans, parses, resolves and interprets the named file with a
// fresh *interp.Interpreter, per spec.md §5: run_file constructs a fresh
// interpreter rather than reusing one across runs the way the REPL does.
func runFile(ctx context.Context, stdio mainer.Stdio, path string) int {
	src, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(stdio.Stderr, "%s\n", err)
		return exitUsage
	}
	return run(ctx, interp.New(stdio.Stdout), string(src), stdio)
}

// run scans, parses, resolves and interprets source against interp,
// writing diagnostics to stdio.Stderr in the format §6 specifies, and
// returns the process exit code the CLI contract assigns to the
// outcome: 0 on success, 64 for a scan/parse/resolve error, 70 for a
// runtime error.
func run(ctx context.Context, it *interp.Interpreter, source string, stdio mainer.Stdio) int {
	tokens, serr := scanner.Scan(source)
	if serr != nil {
		scanner.PrintError(stdio.Stderr, serr)
	}

	stmts, perr := parser.Parse(tokens)
	if perr != nil {
		scanner.PrintError(stdio.Stderr, perr)
		return exitUsage
	}
	if serr != nil {
		return exitUsage
	}

	if rerr := resolver.Resolve(stmts); rerr != nil {
		scanner.PrintError(stdio.Stderr, rerr)
		return exitUsage
	}

	if err := it.Interpret(ctx, stmts); err != nil {
		fmt.Fprintln(stdio.Stderr, err)
		return exitRuntime
	}
	return exitSuccess
}
