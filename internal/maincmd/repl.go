package maincmd

import (
	"context"
	"io"
	"os"

	"github.com/loxlang/glox/lang/interp"
	"github.com/mna/mainer"
	"github.com/peterh/liner"
)

const (
	prompt      = ">> "
	historyFile = "history.txt"
)

// runREPL drives an interactive read-eval-print loop against a single
// *interp.Interpreter held across lines, per spec.md §5, so top-level
// var/fun/class declarations persist between prompts. History is loaded
// from and saved to history.txt in the working directory; its absence is
// not an error, matching spec.md §6.
func runREPL(ctx context.Context, stdio mainer.Stdio) int {
	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)

	if f, err := os.Open(historyFile); err == nil {
		line.ReadHistory(f)
		f.Close()
	}

	it := interp.New(stdio.Stdout)

	for {
		if ctx.Err() != nil {
			break
		}

		input, err := line.Prompt(prompt)
		if err != nil {
			if err == liner.ErrPromptAborted || err == io.EOF {
				break
			}
			break
		}
		if input != "" {
			line.AppendHistory(input)
		}

		// Exit status of individual REPL lines is not propagated to the
		// process; only a fresh run_file invocation does that. Errors are
		// already printed to stderr by run.
		run(ctx, it, input, stdio)
	}

	if f, err := os.Create(historyFile); err == nil {
		line.WriteHistory(f)
		f.Close()
	}

	return exitSuccess
}
