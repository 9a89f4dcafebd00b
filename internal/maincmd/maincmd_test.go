package maincmd_test

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/loxlang/glox/internal/maincmd"
	"github.com/mna/mainer"
	"github.com/stretchr/testify/require"
)

func writeScript(t *testing.T, src string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "script.lox")
	require.NoError(t, os.WriteFile(path, []byte(src), 0o600))
	return path
}

func newStdio() (mainer.Stdio, *bytes.Buffer, *bytes.Buffer) {
	var out, errw bytes.Buffer
	return mainer.Stdio{Stdout: &out, Stderr: &errw, Stdin: strings.NewReader("")}, &out, &errw
}

func TestRunFileSuccess(t *testing.T) {
	path := writeScript(t, `print (1 + 2) * 3 / 2;`)
	stdio, out, errw := newStdio()

	c := maincmd.Cmd{}
	code := c.Main([]string{"lox", path}, stdio)

	require.Equal(t, 0, code)
	require.Equal(t, "4.5\n", out.String())
	require.Empty(t, errw.String())
}

func TestRunFileRuntimeError(t *testing.T) {
	path := writeScript(t, `print 1 + "x";`)
	stdio, _, errw := newStdio()

	c := maincmd.Cmd{}
	code := c.Main([]string{"lox", path}, stdio)

	require.Equal(t, 70, code)
	require.Contains(t, errw.String(), "line 1")
}

func TestRunFileParseError(t *testing.T) {
	path := writeScript(t, `var ;`)
	stdio, _, errw := newStdio()

	c := maincmd.Cmd{}
	code := c.Main([]string{"lox", path}, stdio)

	require.Equal(t, 64, code)
	require.NotEmpty(t, errw.String())
}

func TestRunFileMissingFile(t *testing.T) {
	stdio, _, errw := newStdio()

	c := maincmd.Cmd{}
	code := c.Main([]string{"lox", filepath.Join(t.TempDir(), "missing.lox")}, stdio)

	require.Equal(t, 64, code)
	require.NotEmpty(t, errw.String())
}

func TestUsageTooManyArguments(t *testing.T) {
	stdio, out, _ := newStdio()

	c := maincmd.Cmd{}
	code := c.Main([]string{"lox", "a.lox", "b.lox"}, stdio)

	require.Equal(t, 64, code)
	require.Equal(t, "Usage: lox [script]\n", out.String())
}

func TestVersionFlag(t *testing.T) {
	stdio, out, _ := newStdio()

	c := maincmd.Cmd{BuildVersion: "1.2.3", BuildDate: "2026-01-01"}
	code := c.Main([]string{"lox", "--version"}, stdio)

	require.Equal(t, 0, code)
	require.Contains(t, out.String(), "1.2.3")
}
