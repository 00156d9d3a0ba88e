// Package shell implements the interactive command processor that drives a
// filesystem session: one command per line, fixed result strings, a prompt
// showing the current path.
package shell

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/dverbeek/fat32emu/fat32"
)

type Shell struct {
	fs  *fat32.Filesystem
	in  io.Reader
	out io.Writer
}

func New(fs *fat32.Filesystem, in io.Reader, out io.Writer) *Shell {
	return &Shell{fs: fs, in: in, out: out}
}

// Run reads commands until EOF or a terminating command and prints the
// farewell line.
func (s *Shell) Run() error {
	fmt.Fprintln(s.out, "FAT32 Emulator started. Type 'exit' or 'quit' to exit.")

	scanner := bufio.NewScanner(s.in)
	for {
		fmt.Fprintf(s.out, "%s>", s.fs.CurrentPath())
		if !scanner.Scan() {
			break
		}
		if s.Execute(scanner.Text()) {
			break
		}
	}

	fmt.Fprintln(s.out, "Goodbye!")
	return scanner.Err()
}

// Execute runs a single command line and reports whether the session should
// terminate. Lines are split on whitespace into at most three fields:
// the command and up to two arguments; extra fields are ignored.
//
// The ls, mkdir, touch and cd commands require a valid volume; on an
// unrecognized image they print "Unknown disk format" and terminate the session, which is
// the sentinel behavior this shell inherited.
func (s *Shell) Execute(line string) bool {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false
	}

	cmd := fields[0]
	var arg1 string
	if len(fields) > 1 {
		arg1 = fields[1]
	}

	switch cmd {
	case "format":
		if s.fs.Format() == nil {
			fmt.Fprintln(s.out, "Ok")
		} else {
			fmt.Fprintln(s.out, "Format failed")
		}

	case "ls":
		if s.fs.IsValid() != nil {
			fmt.Fprintln(s.out, "Unknown disk format")
			return true
		}
		names, err := s.fs.Ls(arg1)
		if err != nil {
			fmt.Fprintln(s.out, "ls failed")
			break
		}
		for _, name := range names {
			fmt.Fprintln(s.out, name)
		}

	case "mkdir":
		if s.fs.IsValid() != nil {
			fmt.Fprintln(s.out, "Unknown disk format")
			return true
		}
		if arg1 == "" {
			fmt.Fprintln(s.out, "Usage: mkdir <name>")
		} else if s.fs.Mkdir(arg1) == nil {
			fmt.Fprintln(s.out, "Ok")
		} else {
			fmt.Fprintln(s.out, "mkdir failed")
		}

	case "touch":
		if s.fs.IsValid() != nil {
			fmt.Fprintln(s.out, "Unknown disk format")
			return true
		}
		if arg1 == "" {
			fmt.Fprintln(s.out, "Usage: touch <name>")
		} else if s.fs.Touch(arg1) == nil {
			fmt.Fprintln(s.out, "Ok")
		} else {
			fmt.Fprintln(s.out, "touch failed")
		}

	case "cd":
		if s.fs.IsValid() != nil {
			fmt.Fprintln(s.out, "Unknown disk format")
			return true
		}
		if arg1 == "" {
			fmt.Fprintln(s.out, "Usage: cd <path>")
		} else if s.fs.Cd(arg1) != nil {
			fmt.Fprintln(s.out, "cd failed")
		}

	case "exit", "quit":
		return true

	default:
		fmt.Fprintf(s.out, "Unknown command: %s\n", cmd)
	}

	return false
}
