// Package output formats analysis summaries and run history for stdout.
package output

import (
	"fmt"

	"github.com/julianshen/codefsm/internal/store"
)

// RunSummary is the stdout view of one analysis run.
type RunSummary struct {
	RunID         string     `json:"run_id"`
	Workspace     string     `json:"workspace"`
	FilesAnalyzed []string   `json:"files_analyzed"`
	Skipped       []string   `json:"skipped,omitempty"`
	Strategy      string     `json:"strategy"`
	Diagram       string     `json:"diagram"`
	Analysis      string     `json:"analysis,omitempty"`
	States        int        `json:"states,omitempty"`
	Transitions   int        `json:"transitions,omitempty"`
	Artifacts     []Artifact `json:"artifacts,omitempty"`
	DurationMs    int64      `json:"duration_ms"`
	Error         string     `json:"error,omitempty"`
}

// Artifact names one file written by the run.
type Artifact struct {
	Kind string `json:"kind"`
	Path string `json:"path"`
}

// Formatter formats run summaries and history listings into output bytes.
type Formatter interface {
	Format(result *RunSummary) ([]byte, error)
	FormatHistory(runs []store.Run) ([]byte, error)
}

// ForName returns the formatter registered under name.
func ForName(name string) (Formatter, error) {
	switch name {
	case "markdown", "md", "":
		return NewMarkdownFormatter(), nil
	case "json":
		return NewJSONFormatter(), nil
	default:
		return nil, fmt.Errorf("unknown output format %q (want markdown or json)", name)
	}
}
