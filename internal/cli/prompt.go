package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/peterh/liner"
)

// Prompter reads one line of input after showing a prompt. It returns
// io.EOF when input ends or the user aborts.
type Prompter interface {
	Prompt(prompt string) (string, error)
	Close() error
}

func defaultPrompter(in io.Reader, out io.Writer) Prompter {
	if f, ok := in.(*os.File); ok && f == os.Stdin && liner.TerminalSupported() {
		return newLinePrompter()
	}
	return newScanPrompter(in, out)
}

type linePrompter struct {
	state *liner.State
}

func newLinePrompter() *linePrompter {
	state := liner.NewLiner()
	state.SetCtrlCAborts(true)
	return &linePrompter{state: state}
}

func (p *linePrompter) Prompt(prompt string) (string, error) {
	line, err := p.state.Prompt(prompt)
	if errors.Is(err, liner.ErrPromptAborted) {
		return "", io.EOF
	}
	if err != nil {
		return "", err
	}
	if line != "" {
		p.state.AppendHistory(line)
	}
	return line, nil
}

func (p *linePrompter) Close() error { return p.state.Close() }

// scanPrompter serves piped input and tests.
type scanPrompter struct {
	scanner *bufio.Scanner
	out     io.Writer
}

func newScanPrompter(in io.Reader, out io.Writer) *scanPrompter {
	return &scanPrompter{scanner: bufio.NewScanner(in), out: out}
}

func (p *scanPrompter) Prompt(prompt string) (string, error) {
	fmt.Fprint(p.out, prompt)
	if p.scanner.Scan() {
		return p.scanner.Text(), nil
	}
	if err := p.scanner.Err(); err != nil {
		return "", err
	}
	return "", io.EOF
}

func (p *scanPrompter) Close() error { return nil }
