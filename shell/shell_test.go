package shell_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/dverbeek/fat32emu/imgtest"
	"github.com/dverbeek/fat32emu/shell"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newShell(t *testing.T, formatted bool) (*shell.Shell, *bytes.Buffer) {
	t.Helper()

	if formatted {
		session, _ := imgtest.NewFormattedSession(t)
		out := &bytes.Buffer{}
		return shell.New(session, strings.NewReader(""), out), out
	}
	session, _ := imgtest.NewSession(t)
	out := &bytes.Buffer{}
	return shell.New(session, strings.NewReader(""), out), out
}

func TestLsBeforeFormat(t *testing.T) {
	sh, out := newShell(t, false)

	stop := sh.Execute("ls")
	assert.True(t, stop, "unrecognized image terminates the session")
	assert.Contains(t, out.String(), "Unknown disk format")
}

func TestFormatPrintsOk(t *testing.T) {
	sh, out := newShell(t, false)

	stop := sh.Execute("format")
	assert.False(t, stop)
	assert.Equal(t, "Ok\n", out.String())

	out.Reset()
	sh.Execute("ls")
	assert.Equal(t, ".\n..\n", out.String())
}

func TestMkdirAndLs(t *testing.T) {
	sh, out := newShell(t, true)

	sh.Execute("mkdir ttt")
	assert.Equal(t, "Ok\n", out.String())

	out.Reset()
	sh.Execute("mkdir ttt")
	assert.Equal(t, "mkdir failed\n", out.String(), "name collision")

	out.Reset()
	sh.Execute("mkdir")
	assert.Equal(t, "Usage: mkdir <name>\n", out.String())

	out.Reset()
	sh.Execute("ls")
	assert.Contains(t, strings.Split(out.String(), "\n"), "ttt")
}

func TestTouch(t *testing.T) {
	sh, out := newShell(t, true)

	sh.Execute("touch file1.txt")
	assert.Equal(t, "Ok\n", out.String())

	out.Reset()
	sh.Execute("ls")
	assert.Contains(t, strings.Split(out.String(), "\n"), "file1.txt",
		"listing must render the name case-preserved")

	out.Reset()
	sh.Execute("touch")
	assert.Equal(t, "Usage: touch <name>\n", out.String())

	out.Reset()
	sh.Execute("touch file1.txt")
	assert.Equal(t, "touch failed\n", out.String())
}

func TestCd(t *testing.T) {
	sh, out := newShell(t, true)

	sh.Execute("mkdir ttt")
	out.Reset()

	stop := sh.Execute("cd /ttt")
	assert.False(t, stop)
	assert.Empty(t, out.String(), "cd is silent on success")

	sh.Execute("cd /missing")
	assert.Equal(t, "cd failed\n", out.String())

	out.Reset()
	sh.Execute("cd")
	assert.Equal(t, "Usage: cd <path>\n", out.String())
}

func TestUnknownCommand(t *testing.T) {
	sh, out := newShell(t, true)

	stop := sh.Execute("unknowncmd")
	assert.False(t, stop)
	assert.Contains(t, out.String(), "Unknown command: unknowncmd")
}

func TestEmptyLineIsNoOp(t *testing.T) {
	sh, out := newShell(t, true)

	stop := sh.Execute("   ")
	assert.False(t, stop)
	assert.Empty(t, out.String())
}

func TestExitAndQuit(t *testing.T) {
	sh, _ := newShell(t, true)
	assert.True(t, sh.Execute("exit"))
	assert.True(t, sh.Execute("quit"))
}

func TestExtraFieldsAreIgnored(t *testing.T) {
	sh, out := newShell(t, true)

	sh.Execute("mkdir ttt extra junk")
	assert.Equal(t, "Ok\n", out.String())
}

func TestRunFullSession(t *testing.T) {
	session, _ := imgtest.NewSession(t)
	input := strings.Join([]string{
		"format",
		"mkdir ttt",
		"cd /ttt",
		"ls",
		"cd /",
		"touch file1.txt",
		"ls",
		"exit",
	}, "\n") + "\n"

	out := &bytes.Buffer{}
	sh := shell.New(session, strings.NewReader(input), out)
	require.NoError(t, sh.Run())

	output := out.String()
	assert.Contains(t, output, "FAT32 Emulator started")
	assert.Contains(t, output, "/>")
	assert.Contains(t, output, "/ttt>", "prompt must follow the cursor")
	assert.Contains(t, output, "file1.txt")
	assert.Contains(t, output, "Goodbye!")
}

func TestRunStopsAtEOF(t *testing.T) {
	session, _ := imgtest.NewFormattedSession(t)

	out := &bytes.Buffer{}
	sh := shell.New(session, strings.NewReader("ls\n"), out)
	require.NoError(t, sh.Run())
	assert.Contains(t, out.String(), "Goodbye!")
}
