// Package prompt asks the user for values the config cannot supply.
package prompt

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ErrNoInput is returned when input ends before a line is read.
var ErrNoInput = errors.New("no input")

// Prompter reads answers line by line from an input stream. A Prompter is
// not safe for concurrent use.
//
// A read cannot be interrupted, so when ctx ends an Ask the read it started
// stays outstanding and the next Ask receives its line.
type Prompter struct {
	in      *bufio.Reader
	out     io.Writer
	pending chan reply
}

type reply struct {
	line string
	err  error
}

// New creates a Prompter reading from in and writing questions to out.
func New(in io.Reader, out io.Writer) *Prompter {
	return &Prompter{
		in:  bufio.NewReader(in),
		out: out,
	}
}

// MigrationTag asks for the migration tag last applied to the deployed
// worker. An empty answer yields defaultTag.
func (p *Prompter) MigrationTag(ctx context.Context, defaultTag string) (string, error) {
	question := "Enter migration_tag: "
	if defaultTag != "" {
		question = fmt.Sprintf("Enter migration_tag [%s]: ", defaultTag)
	}

	answer, err := p.Ask(ctx, question)
	if err != nil {
		return "", err
	}
	if answer == "" {
		return defaultTag, nil
	}
	return answer, nil
}

// Ask writes question and returns the trimmed line typed in reply. A final
// line without a newline is accepted.
func (p *Prompter) Ask(ctx context.Context, question string) (string, error) {
	if _, err := io.WriteString(p.out, question); err != nil {
		return "", fmt.Errorf("write prompt: %w", err)
	}

	if p.pending == nil {
		done := make(chan reply, 1)
		go func() {
			line, err := p.in.ReadString('\n')
			done <- reply{line: line, err: err}
		}()
		p.pending = done
	}

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case r := <-p.pending:
		p.pending = nil
		if r.err != nil {
			if errors.Is(r.err, io.EOF) && r.line != "" {
				return strings.TrimSpace(r.line), nil
			}
			if errors.Is(r.err, io.EOF) {
				return "", ErrNoInput
			}
			return "", fmt.Errorf("read answer: %w", r.err)
		}
		return strings.TrimSpace(r.line), nil
	}
}
