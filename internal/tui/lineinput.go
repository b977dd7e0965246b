package tui

import (
	"context"
	"errors"
	"io"

	"github.com/charmbracelet/huh"
)

// PromptReader reads one line per call through a Huh input field. Aborting
// the field (Ctrl+C or Esc) ends input like EOF.
type PromptReader struct {
	Title       string
	Suggestions []string // offered as completions, e.g. command names
}

// ReadLine shows the input field and returns the submitted line.
func (r *PromptReader) ReadLine(ctx context.Context) (string, error) {
	var line string
	form := huh.NewForm(huh.NewGroup(
		huh.NewInput().
			Title(r.Title).
			Placeholder("Ask about states, transitions or events...").
			Suggestions(r.Suggestions).
			Value(&line),
	)).WithShowHelp(false)

	err := form.RunWithContext(ctx)
	if errors.Is(err, huh.ErrUserAborted) {
		return "", io.EOF
	}
	if err != nil {
		return "", err
	}
	return line, nil
}
