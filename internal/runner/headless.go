package runner

import (
	"github.com/julianshen/codefsm/internal/artifact"
	"github.com/julianshen/codefsm/internal/diagram"
	"github.com/julianshen/codefsm/internal/output"
	"github.com/julianshen/codefsm/internal/pipeline"
	"github.com/julianshen/codefsm/internal/store"
)

// Summarize builds the stdout summary of a finished run. extra lists
// artifacts written after the core three, such as a snapshot or code.
func Summarize(res *pipeline.AnalysisResult, paths artifact.Paths, includeAnalysis bool, extra ...output.Artifact) *output.RunSummary {
	s := &output.RunSummary{
		RunID:         res.RunID,
		Workspace:     res.Workspace,
		FilesAnalyzed: res.FilesAnalyzed,
		Skipped:       res.Skipped,
		Strategy:      res.Strategy,
		Diagram:       res.Diagram,
		DurationMs:    res.Duration.Milliseconds(),
	}
	if includeAnalysis {
		s.Analysis = res.Analysis
	}
	if m, err := diagram.Parse(res.Diagram); err == nil {
		s.States = len(m.States)
		s.Transitions = len(m.Transitions)
	}

	for _, a := range []output.Artifact{
		{Kind: "diagram", Path: paths.Diagram},
		{Kind: "report", Path: paths.Report},
		{Kind: "viewer", Path: paths.Viewer},
	} {
		if a.Path != "" {
			s.Artifacts = append(s.Artifacts, a)
		}
	}
	s.Artifacts = append(s.Artifacts, extra...)
	return s
}

// ErrorSummary reports a failed run.
func ErrorSummary(err error) *output.RunSummary {
	return &output.RunSummary{Error: err.Error()}
}

// LedgerEntry converts a finished run into its history record.
func LedgerEntry(res *pipeline.AnalysisResult, outDir, focus string) store.Run {
	return store.Run{
		ID:        res.RunID,
		Workspace: res.Workspace,
		Files:     len(res.FilesAnalyzed),
		Skipped:   len(res.Skipped),
		Strategy:  res.Strategy,
		OutputDir: outDir,
		Focus:     focus,
		Diagram:   res.Diagram,
		Duration:  res.Duration,
	}
}
