package utils

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// Prompter asks the user for values on an interactive session.
type Prompter struct {
	in  *bufio.Reader
	out io.Writer
	fd  int
}

// NewPrompter reads from in and masks passwords when in is a terminal.
func NewPrompter(in *os.File, out io.Writer) *Prompter {
	return &Prompter{in: bufio.NewReader(in), out: out, fd: int(in.Fd())}
}

// NewLinePrompter reads plain lines from in, passwords included.
func NewLinePrompter(in io.Reader, out io.Writer) *Prompter {
	return &Prompter{in: bufio.NewReader(in), out: out, fd: -1}
}

// readLine prints label and returns the answer without its line ending.
func (p *Prompter) readLine(label string) (string, error) {
	fmt.Fprint(p.out, label)
	line, err := p.in.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", fmt.Errorf("reading %q: %w", strings.TrimSpace(label), err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// Ask prints label and returns the trimmed answer.
func (p *Prompter) Ask(label string) (string, error) {
	line, err := p.readLine(label)
	return strings.TrimSpace(line), err
}

// AskPassword reads a password without echo when reading from a terminal.
// Surrounding spaces are part of the password.
func (p *Prompter) AskPassword(label string) (string, error) {
	if p.fd < 0 || !term.IsTerminal(p.fd) {
		return p.readLine(label)
	}

	fmt.Fprint(p.out, label)
	password, err := term.ReadPassword(p.fd)
	fmt.Fprintln(p.out)
	if err != nil {
		return "", fmt.Errorf("reading password: %w", err)
	}
	return string(password), nil
}
