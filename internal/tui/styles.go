package tui

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
)

var (
	stageStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.AdaptiveColor{Light: "#005FAF", Dark: "#5FAFFF"})
	successStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.AdaptiveColor{Light: "#00875F", Dark: "#5FD787"})
	warnStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.AdaptiveColor{Light: "#CC8800", Dark: "#FFAA00"})
	errorStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FF0000"))
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#666666", Dark: "#999999"})
)

// Printer writes styled status lines, usually to stderr. A quiet printer
// drops everything except errors.
type Printer struct {
	w     io.Writer
	quiet bool
}

// NewPrinter returns a Printer writing to w.
func NewPrinter(w io.Writer, quiet bool) *Printer {
	return &Printer{w: w, quiet: quiet}
}

// Stage prints a progress line for a pipeline step.
func (p *Printer) Stage(stage, detail string) {
	if p.quiet {
		return
	}
	fmt.Fprintf(p.w, "%s %s\n", stageStyle.Render("["+stage+"]"), detail)
}

// Success prints a completion line.
func (p *Printer) Success(format string, args ...any) {
	if p.quiet {
		return
	}
	fmt.Fprintln(p.w, successStyle.Render("✓")+" "+fmt.Sprintf(format, args...))
}

// Path prints a labelled artifact path.
func (p *Printer) Path(label, path string) {
	if p.quiet {
		return
	}
	fmt.Fprintf(p.w, "  %s %s\n", mutedStyle.Render(label+":"), path)
}

// Warn prints a warning line.
func (p *Printer) Warn(format string, args ...any) {
	if p.quiet {
		return
	}
	fmt.Fprintln(p.w, warnStyle.Render("!")+" "+fmt.Sprintf(format, args...))
}

// Error prints an error line; it is never suppressed.
func (p *Printer) Error(err error) {
	fmt.Fprintln(p.w, errorStyle.Render("Error:")+" "+err.Error())
}
