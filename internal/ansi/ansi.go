// Package ansi provides ANSI escape code constants for terminal output and
// the helpers that drop them when the output is not a color terminal.
package ansi

import (
	"io"
	"os"
	"regexp"

	"github.com/mattn/go-isatty"
)

// ANSI SGR (Select Graphic Rendition) codes.
const (
	Reset   = "\033[0m"
	Bold    = "\033[1m"
	Dim     = "\033[2m"
	Blue    = "\033[34m"
	Yellow  = "\033[33m"
	Green   = "\033[32m"
	Red     = "\033[31m"
	Cyan    = "\033[36m"
	Magenta = "\033[35m"
)

var sgr = regexp.MustCompile("\033\\[[0-9;]*m")

// Strip removes SGR sequences from s.
func Strip(s string) string {
	return sgr.ReplaceAllString(s, "")
}

// Enabled reports whether colored output should be written to f: it must be a
// terminal and NO_COLOR must be unset.
func Enabled(f *os.File) bool {
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return false
	}
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// plainWriter strips SGR sequences before writing.
type plainWriter struct {
	w io.Writer
}

// Plain wraps w so that everything written to it has SGR sequences removed.
func Plain(w io.Writer) io.Writer {
	return plainWriter{w: w}
}

func (p plainWriter) Write(b []byte) (int, error) {
	if _, err := io.WriteString(p.w, Strip(string(b))); err != nil {
		return 0, err
	}
	return len(b), nil
}
