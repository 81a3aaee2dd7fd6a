package ui

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/papapumpkin/debate/internal/judge"
)

// Prompt texts shown in manual mode.
const (
	manualContentPrompt = "Compromise generation failed; paste compromise content, then Ctrl-D:"
	rebuttalPrompt      = "Optional rebuttal (empty to auto-generate): "
	closedNotice        = "Input stream closed. Using default."
)

// LinePrompter reads manual-mode answers line by line from an input stream.
type LinePrompter struct {
	in  *bufio.Reader
	out io.Writer
}

// NewLinePrompter returns a prompter reading from in and prompting on out.
func NewLinePrompter(in io.Reader, out io.Writer) *LinePrompter {
	return &LinePrompter{in: bufio.NewReader(in), out: out}
}

// ReadChoice asks for an A-E override of the judged choice. A closed input
// stream yields an empty answer, which keeps the judged choice.
func (p *LinePrompter) ReadChoice(judged judge.Choice) (string, error) {
	fmt.Fprintf(p.out, "Choose [A/B/C/D/E] (default %s): ", judged)
	return p.readLine()
}

// ReadRebuttal asks for an optional rebuttal text.
func (p *LinePrompter) ReadRebuttal() (string, error) {
	fmt.Fprint(p.out, rebuttalPrompt)
	return p.readLine()
}

// ReadManualContent asks for replacement artifact content, read until EOF.
func (p *LinePrompter) ReadManualContent() (string, error) {
	fmt.Fprintln(p.out, manualContentPrompt)
	data, err := io.ReadAll(p.in)
	if err != nil {
		return "", fmt.Errorf("reading manual content: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}

func (p *LinePrompter) readLine() (string, error) {
	line, err := p.in.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) {
			if line == "" {
				fmt.Fprintln(p.out)
				fmt.Fprintln(p.out, closedNotice)
			}
			return strings.TrimSpace(line), nil
		}
		return "", fmt.Errorf("reading input: %w", err)
	}
	return strings.TrimSpace(line), nil
}
