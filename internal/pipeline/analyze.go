// Package pipeline chains the analysis stages: select files, read them,
// build the prompt, consult the oracle, extract the diagram and persist the
// artifacts.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/julianshen/codefsm/internal/artifact"
	"github.com/julianshen/codefsm/internal/diagram"
	"github.com/julianshen/codefsm/internal/logging"
	"github.com/julianshen/codefsm/internal/oracle"
	"github.com/julianshen/codefsm/internal/prompt"
	"github.com/julianshen/codefsm/internal/workspace"
)

// ErrNoFilesMatched is returned when file selection yields nothing to analyze.
var ErrNoFilesMatched = errors.New("no files matched")

// Stage identifies a pipeline step in progress reports.
type Stage string

const (
	StageScan    Stage = "scan"
	StageRead    Stage = "read"
	StageInfer   Stage = "infer"
	StageExtract Stage = "extract"
	StageWrite   Stage = "write"
)

// AnalyzeOptions selects the files of one run. Files wins over Changed,
// which wins over a pattern scan.
type AnalyzeOptions struct {
	Workspace    string
	Files        []string // explicit workspace-relative paths
	Changed      bool     // analyze files changed relative to ChangedRange
	ChangedRange string   // git range; empty means the working tree vs HEAD
	Focus        string
}

// AnalysisRequest is the input handed to the oracle.
type AnalysisRequest struct {
	Files     []workspace.FileRecord
	FocusArea string
}

// AnalysisResult is the product of a successful run.
type AnalysisResult struct {
	RunID         string        `json:"run_id"`
	Workspace     string        `json:"workspace"`
	Analysis      string        `json:"-"`
	Diagram       string        `json:"diagram"`
	Strategy      string        `json:"strategy"`
	FilesAnalyzed []string      `json:"files_analyzed"`
	Skipped       []string      `json:"skipped,omitempty"`
	Duration      time.Duration `json:"duration"`
}

// Artifact converts the result into the writer's input.
func (r *AnalysisResult) Artifact() artifact.Result {
	return artifact.Result{Diagram: r.Diagram, Analysis: r.Analysis, Files: r.FilesAnalyzed}
}

// NoDiagramError carries the reply that no extraction strategy could use.
type NoDiagramError struct {
	Reply string
}

func (e *NoDiagramError) Error() string { return diagram.ErrDiagramNotFound.Error() }

func (e *NoDiagramError) Unwrap() error { return diagram.ErrDiagramNotFound }

// Analyzer runs the analysis pipeline against one oracle.
type Analyzer struct {
	Oracle   oracle.Oracle
	Scan     workspace.ScanOptions
	Logger   *slog.Logger
	Progress func(stage Stage, detail string) // optional
}

func (a *Analyzer) logger() *slog.Logger {
	if a.Logger != nil {
		return a.Logger
	}
	return logging.New("pipeline")
}

func (a *Analyzer) report(stage Stage, format string, args ...any) {
	if a.Progress != nil {
		a.Progress(stage, fmt.Sprintf(format, args...))
	}
}

// Load selects and reads the files of a run. It fails with
// ErrNoFilesMatched if selection is empty or every file is unreadable.
func (a *Analyzer) Load(ctx context.Context, opts AnalyzeOptions) ([]workspace.FileRecord, []workspace.Skipped, error) {
	a.report(StageScan, "Scanning workspace %s", opts.Workspace)
	paths, err := a.selectFiles(ctx, opts)
	if err != nil {
		return nil, nil, err
	}
	if len(paths) == 0 {
		return nil, nil, fmt.Errorf("%w in %s", ErrNoFilesMatched, opts.Workspace)
	}

	a.report(StageRead, "Found %d files to analyze", len(paths))
	records, skipped := workspace.Read(ctx, opts.Workspace, paths)
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}
	if len(records) == 0 {
		return nil, skipped, fmt.Errorf("%w: all %d selected files were unreadable", ErrNoFilesMatched, len(paths))
	}
	return records, skipped, nil
}

func (a *Analyzer) selectFiles(ctx context.Context, opts AnalyzeOptions) ([]string, error) {
	switch {
	case len(opts.Files) > 0:
		return workspace.ResolveExplicit(opts.Workspace, opts.Files)
	case opts.Changed:
		changed, err := workspace.ChangedFiles(ctx, opts.Workspace, opts.ChangedRange)
		if err != nil {
			return nil, fmt.Errorf("listing changed files: %w", err)
		}
		return workspace.Filter(opts.Workspace, changed, a.Scan)
	default:
		return workspace.Scan(ctx, opts.Workspace, a.Scan)
	}
}

// Analyze runs every stage up to diagram extraction. The oracle is never
// consulted when no file could be loaded.
func (a *Analyzer) Analyze(ctx context.Context, opts AnalyzeOptions) (*AnalysisResult, error) {
	if a.Oracle == nil {
		return nil, errors.New("pipeline: no oracle configured")
	}
	start := time.Now()
	logger := a.logger()

	records, skipped, err := a.Load(ctx, opts)
	if err != nil {
		return nil, err
	}

	req := AnalysisRequest{Files: records, FocusArea: opts.Focus}
	reply, err := a.Infer(ctx, req)
	if err != nil {
		return nil, err
	}

	a.report(StageExtract, "Extracting state diagram")
	match, err := diagram.Extract(reply)
	if err != nil {
		logger.Debug("oracle reply without diagram", "reply_bytes", len(reply))
		return nil, &NoDiagramError{Reply: reply}
	}
	if match.Lenient() {
		logger.Warn("no structured diagram block in oracle reply; using the whole reply", "strategy", match.Strategy)
	}

	res := &AnalysisResult{
		RunID:     uuid.NewString(),
		Workspace: opts.Workspace,
		Analysis:  reply,
		Diagram:   match.Text,
		Strategy:  match.Strategy,
		Duration:  time.Since(start),
	}
	for _, r := range records {
		res.FilesAnalyzed = append(res.FilesAnalyzed, r.Path)
	}
	for _, s := range skipped {
		res.Skipped = append(res.Skipped, s.Path)
	}
	logger.Info("analysis complete",
		"run_id", res.RunID, "files", len(res.FilesAnalyzed), "skipped", len(res.Skipped),
		"strategy", res.Strategy, "duration", res.Duration)
	return res, nil
}

// Infer builds the analysis prompt for req and sends it to the oracle.
func (a *Analyzer) Infer(ctx context.Context, req AnalysisRequest) (string, error) {
	text := prompt.BuildAnalysis(req.Files, req.FocusArea)
	a.report(StageInfer, "Analyzing %d files with the oracle", len(req.Files))
	a.logger().Debug("prompt built", "files", len(req.Files), "bytes", len(text), "focus", req.FocusArea)

	reply, err := a.Oracle.Infer(ctx, text)
	if err != nil {
		return "", fmt.Errorf("analyzing %d files: %w", len(req.Files), err)
	}
	return reply, nil
}

// Run analyzes and then writes the artifacts into outDir.
func (a *Analyzer) Run(ctx context.Context, opts AnalyzeOptions, outDir string) (*AnalysisResult, artifact.Paths, error) {
	res, err := a.Analyze(ctx, opts)
	if err != nil {
		return nil, artifact.Paths{}, err
	}
	a.report(StageWrite, "Writing artifacts to %s", outDir)
	paths, err := artifact.Write(res.Artifact(), outDir)
	if err != nil {
		return res, paths, err
	}
	return res, paths, nil
}
