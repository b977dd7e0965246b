// cmd/codefsm/analyze.go
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/julianshen/codefsm/internal/artifact"
	"github.com/julianshen/codefsm/internal/config"
	"github.com/julianshen/codefsm/internal/convert"
	"github.com/julianshen/codefsm/internal/diagram"
	"github.com/julianshen/codefsm/internal/logging"
	"github.com/julianshen/codefsm/internal/oracle"
	"github.com/julianshen/codefsm/internal/output"
	"github.com/julianshen/codefsm/internal/pipeline"
	"github.com/julianshen/codefsm/internal/runner"
	"github.com/julianshen/codefsm/internal/store"
	"github.com/julianshen/codefsm/internal/tui"
	"github.com/julianshen/codefsm/internal/workspace"
)

// SnapshotFile is the PNG written by --png next to the viewer.
const SnapshotFile = "state-machine.png"

type analyzeFlags struct {
	output    string
	files     []string
	include   []string
	exclude   []string
	maxSize   int64
	focus     string
	focusFile string
	changed   bool
	diffRange string
	convertTo string
	name      string
	png       bool
	format    string
	noHistory bool
	quiet     bool
}

func analyzeCmd() *cobra.Command {
	var f analyzeFlags

	cmd := &cobra.Command{
		Use:   "analyze [workspace]",
		Short: "Extract a state machine from a workspace",
		Long: `Scan a workspace for source files, ask the oracle to describe the state
machine they implement, and write the Mermaid diagram, the raw analysis
and an HTML viewer to the output directory.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}
			return runAnalyze(cmd, dir, f)
		},
	}

	cmd.Flags().StringVarP(&f.output, "output", "o", "", "output directory (default from config, ./fsm-output)")
	cmd.Flags().StringSliceVar(&f.files, "files", nil, "comma-separated workspace-relative files to analyze instead of scanning")
	cmd.Flags().StringArrayVar(&f.include, "include", nil, "include glob, repeatable (replaces configured patterns)")
	cmd.Flags().StringArrayVar(&f.exclude, "exclude", nil, "exclude glob, repeatable (replaces configured patterns)")
	cmd.Flags().Int64Var(&f.maxSize, "max-size", 0, "per-file size ceiling in bytes, 0 disables it")
	cmd.Flags().StringVar(&f.focus, "focus", "", "area of the code to concentrate on")
	cmd.Flags().StringVar(&f.focusFile, "focus-file", "", "read the focus from a file (- for stdin)")
	cmd.Flags().BoolVar(&f.changed, "changed", false, "analyze only files changed in git")
	cmd.Flags().StringVar(&f.diffRange, "diff-range", "", "git range for --changed, e.g. main..HEAD")
	cmd.Flags().StringVar(&f.convertTo, "convert", "", "also generate code from the diagram: "+strings.Join(convert.Formats, ", "))
	cmd.Flags().StringVar(&f.name, "name", "Machine", "state machine name for --convert")
	cmd.Flags().BoolVar(&f.png, "png", false, "render a PNG snapshot of the viewer (needs Chrome)")
	cmd.Flags().StringVar(&f.format, "format", "markdown", "summary format: markdown, json")
	cmd.Flags().BoolVar(&f.noHistory, "no-history", false, "do not record the run in the history ledger")
	cmd.Flags().BoolVarP(&f.quiet, "quiet", "q", false, "suppress progress output")

	return cmd
}

func runAnalyze(cmd *cobra.Command, dir string, f analyzeFlags) error {
	ctx := cmd.Context()
	stdout, stderr := cmd.OutOrStdout(), cmd.ErrOrStderr()
	logger := logging.New("cli")

	root, err := filepath.Abs(dir)
	if err != nil {
		return fmt.Errorf("resolving workspace: %w", err)
	}
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	project, err := config.LoadProjectConfig(root)
	if err != nil {
		return err
	}
	project.Apply(&cfg.Scan)
	applyScanFlags(cmd, &cfg.Scan, f)

	projectFocus := ""
	if project != nil {
		projectFocus = project.Focus
	}
	focus, err := runner.ResolveFocus(f.focus, f.focusFile, cmd.InOrStdin(), projectFocus)
	if err != nil {
		return err
	}
	if f.convertTo != "" && !slices.Contains(convert.Formats, f.convertTo) {
		return fmt.Errorf("unknown convert format %q (want %s)", f.convertTo, strings.Join(convert.Formats, ", "))
	}
	formatter, err := output.ForName(f.format)
	if err != nil {
		return err
	}

	outDir := f.output
	if outDir == "" {
		outDir = cfg.Output.Dir
	}

	printer := tui.NewPrinter(stderr, f.quiet)
	analyzer := &pipeline.Analyzer{
		Oracle: withSpinner(newOracle(cfg, root), stderr, f.quiet),
		Scan: workspace.ScanOptions{
			Include:     cfg.Scan.Include,
			Exclude:     cfg.Scan.Exclude,
			MaxFileSize: cfg.Scan.MaxFileSize,
		},
		Logger: logger,
		Progress: func(stage pipeline.Stage, detail string) {
			printer.Stage(string(stage), detail)
		},
	}

	res, paths, err := analyzer.Run(ctx, pipeline.AnalyzeOptions{
		Workspace:    root,
		Files:        runner.SplitList(f.files),
		Changed:      f.changed || f.diffRange != "",
		ChangedRange: f.diffRange,
		Focus:        focus,
	}, outDir)
	if err != nil {
		var noDiagram *pipeline.NoDiagramError
		if errors.As(err, &noDiagram) && !f.quiet && noDiagram.Reply != "" {
			printer.Warn("the oracle replied without a state diagram:")
			fmt.Fprintln(stderr, noDiagram.Reply)
		}
		if f.format == "json" {
			writeSummary(stdout, formatter, runner.ErrorSummary(err), false)
		}
		return err
	}

	if res.Strategy == diagram.StrategyWholeReply {
		printer.Warn("no diagram block found; the whole reply was saved as the diagram")
	}
	printer.Success("Analysis complete (%d files)", len(res.FilesAnalyzed))
	printer.Path("diagram", paths.Diagram)
	printer.Path("report", paths.Report)
	printer.Path("viewer", paths.Viewer)

	var extra []output.Artifact
	if f.convertTo != "" {
		path, err := writeConverted(res.Diagram, f.name, f.convertTo, outDir)
		if err != nil {
			printer.Warn("code generation skipped: %v", err)
		} else {
			printer.Path(f.convertTo, path)
			extra = append(extra, output.Artifact{Kind: f.convertTo, Path: path})
		}
	}
	if f.png {
		pngPath := filepath.Join(outDir, SnapshotFile)
		printer.Stage("snapshot", "Rendering "+pngPath)
		if err := artifact.Snapshot(ctx, paths.Viewer, pngPath); err != nil {
			printer.Warn("snapshot skipped: %v", err)
		} else {
			printer.Path("snapshot", pngPath)
			extra = append(extra, output.Artifact{Kind: "snapshot", Path: pngPath})
		}
	}

	if cfg.History.Enabled && !f.noHistory {
		if err := recordRun(cfg, runner.LedgerEntry(res, outDir, focus)); err != nil {
			logger.Warn("could not record run history", "error", err)
		}
	}

	return writeSummary(stdout, formatter, runner.Summarize(res, paths, true, extra...), f.format != "json")
}

// applyScanFlags overlays explicitly set scan flags onto sc.
func applyScanFlags(cmd *cobra.Command, sc *config.ScanConfig, f analyzeFlags) {
	if cmd.Flags().Changed("include") {
		sc.Include = f.include
	}
	if cmd.Flags().Changed("exclude") {
		sc.Exclude = f.exclude
	}
	if cmd.Flags().Changed("max-size") {
		sc.MaxFileSize = f.maxSize
	}
}

// withSpinner shows a spinner on a terminal stderr while the oracle works.
func withSpinner(o oracle.Oracle, stderr io.Writer, quiet bool) oracle.Oracle {
	if quiet || !isTerminal(stderr) {
		return o
	}
	return oracle.Func(func(ctx context.Context, prompt string) (string, error) {
		var reply string
		err := tui.RunWithSpinner(ctx, stderr, "Waiting for the oracle", func(ctx context.Context) error {
			var err error
			reply, err = o.Infer(ctx, prompt)
			return err
		})
		return reply, err
	})
}

// writeConverted generates code for the diagram text and writes it into dir.
func writeConverted(text, name, format, dir string) (string, error) {
	m, err := diagram.Parse(text)
	if err != nil {
		return "", fmt.Errorf("parsing diagram: %w", err)
	}
	code, err := convert.Generate(m, name, format)
	if err != nil {
		return "", err
	}
	path := filepath.Join(dir, strings.ToLower(name)+convert.Extension(format))
	if err := os.WriteFile(path, code, 0o644); err != nil {
		return "", fmt.Errorf("%w: %s: %w", artifact.ErrArtifactWrite, path, err)
	}
	return path, nil
}

func recordRun(cfg *config.Config, run store.Run) error {
	path, err := historyPath(cfg)
	if err != nil {
		return err
	}
	s, err := store.NewStore(path)
	if err != nil {
		return err
	}
	defer s.Close()
	return s.RecordRun(run)
}

// writeSummary formats summary onto w. Markdown bound for a terminal is
// rendered with Glamour.
func writeSummary(w io.Writer, formatter output.Formatter, summary *output.RunSummary, markdown bool) error {
	data, err := formatter.Format(summary)
	if err != nil {
		return fmt.Errorf("formatting summary: %w", err)
	}
	text := string(data)
	if f, ok := w.(*os.File); ok && markdown && tui.IsTerminal(f) {
		if r, err := tui.NewMarkdownRenderer("auto", tui.Width(f)); err == nil {
			text = r.RenderOrPlain(text)
		}
	}
	if !strings.HasSuffix(text, "\n") {
		text += "\n"
	}
	_, err = io.WriteString(w, text)
	return err
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && tui.IsTerminal(f)
}
