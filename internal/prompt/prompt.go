// Package prompt owns the interactive confirmation channel of a run.
package prompt

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
)

var (
	// ErrInputClosed means the input stream ended while an answer was awaited.
	ErrInputClosed = errors.New("confirmation input closed")
	// ErrClosed means the prompter was used after Close.
	ErrClosed = errors.New("prompter closed")
)

// Confirmer asks whether a path may be removed
type Confirmer interface {
	Confirm(path string) (bool, error)
}

// Prompter writes one question per request and reads one line of answer.
// It is opened once per run and must be closed on every exit path.
type Prompter struct {
	mu     sync.Mutex
	in     *bufio.Reader
	out    io.Writer
	closed bool
}

// Open returns a Prompter reading answers from in and writing questions to out.
// The streams stay owned by the caller; Close never closes them.
func Open(in io.Reader, out io.Writer) *Prompter {
	return &Prompter{
		in:  bufio.NewReader(in),
		out: out,
	}
}

// Confirm asks "Remove file/directory <path> [y/n]? " and reports whether the
// answer is exactly "y". Only the line terminator is stripped from the answer.
func (p *Prompter) Confirm(path string) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return false, ErrClosed
	}

	if _, err := fmt.Fprintf(p.out, "Remove file/directory %s [y/n]? ", path); err != nil {
		return false, fmt.Errorf("write prompt: %w", err)
	}

	line, err := p.in.ReadString('\n')
	if err != nil {
		if !errors.Is(err, io.EOF) {
			return false, fmt.Errorf("read answer: %w", err)
		}
		if line == "" {
			return false, ErrInputClosed
		}
		// A final answer without a newline still counts
	}

	line = strings.TrimSuffix(line, "\n")
	line = strings.TrimSuffix(line, "\r")
	return line == "y", nil
}

// Close ends the prompting session, later Confirm calls return ErrClosed.
// It is safe to call more than once.
func (p *Prompter) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.closed = true
	p.in = nil
	return nil
}

// Always confirms every path without asking
type Always struct{}

func (Always) Confirm(string) (bool, error) { return true, nil }
