package output

import (
	"fmt"
	"strings"
	"time"

	"github.com/julianshen/codefsm/internal/store"
)

// MarkdownFormatter outputs RunSummary as human-readable Markdown.
type MarkdownFormatter struct{}

// NewMarkdownFormatter creates a new MarkdownFormatter.
func NewMarkdownFormatter() *MarkdownFormatter {
	return &MarkdownFormatter{}
}

// Format renders the RunSummary as Markdown.
func (f *MarkdownFormatter) Format(result *RunSummary) ([]byte, error) {
	var b strings.Builder

	if result.Error != "" {
		b.WriteString("## Error\n\n")
		b.WriteString(result.Error)
		b.WriteString("\n")
		return []byte(b.String()), nil
	}

	if result.Analysis != "" {
		b.WriteString("## Analysis\n\n")
		b.WriteString(result.Analysis)
		b.WriteString("\n\n")
	}

	b.WriteString("## State Diagram\n\n```mermaid\n")
	b.WriteString(result.Diagram)
	b.WriteString("\n```\n")
	if result.States > 0 {
		fmt.Fprintf(&b, "\n%d states, %d transitions\n", result.States, result.Transitions)
	}

	fmt.Fprintf(&b, "\n## Files Analyzed (%d)\n\n", len(result.FilesAnalyzed))
	for _, f := range result.FilesAnalyzed {
		fmt.Fprintf(&b, "- `%s`\n", f)
	}
	if len(result.Skipped) > 0 {
		fmt.Fprintf(&b, "\n## Skipped (%d)\n\n", len(result.Skipped))
		for _, f := range result.Skipped {
			fmt.Fprintf(&b, "- `%s`\n", f)
		}
	}

	if len(result.Artifacts) > 0 {
		b.WriteString("\n## Artifacts\n\n")
		for _, a := range result.Artifacts {
			fmt.Fprintf(&b, "- %s: `%s`\n", a.Kind, a.Path)
		}
	}

	duration := time.Duration(result.DurationMs) * time.Millisecond
	fmt.Fprintf(&b, "\n---\n*Completed in %s using %s extraction (run %s)*\n",
		duration.Round(100*time.Millisecond), result.Strategy, result.RunID)

	return []byte(b.String()), nil
}

// FormatHistory renders runs as a Markdown table.
func (f *MarkdownFormatter) FormatHistory(runs []store.Run) ([]byte, error) {
	if len(runs) == 0 {
		return []byte("No recorded runs.\n"), nil
	}

	var b strings.Builder
	b.WriteString("| Run | When | Workspace | Files | Strategy | Output |\n")
	b.WriteString("|---|---|---|---|---|---|\n")
	for _, r := range runs {
		fmt.Fprintf(&b, "| `%s` | %s | %s | %d | %s | %s |\n",
			shortID(r.ID), r.CreatedAt.Local().Format("2006-01-02 15:04"),
			escapeCell(r.Workspace), r.Files, r.Strategy, escapeCell(r.OutputDir))
	}
	return []byte(b.String()), nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}
