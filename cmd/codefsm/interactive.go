// cmd/codefsm/interactive.go
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/julianshen/codefsm/internal/chat"
	"github.com/julianshen/codefsm/internal/config"
	"github.com/julianshen/codefsm/internal/pipeline"
	"github.com/julianshen/codefsm/internal/runner"
	"github.com/julianshen/codefsm/internal/tui"
	"github.com/julianshen/codefsm/internal/workspace"
)

func interactiveCmd() *cobra.Command {
	var (
		filesFlag  []string
		outputFlag string
	)

	cmd := &cobra.Command{
		Use:   "interactive [workspace]",
		Short: "Chat with the oracle about a workspace's state machine",
		Long: `Load the workspace files once and hold a conversation about them. Each
message is sent together with the files and the conversation so far.
Type "/save [dir]" to write the last diagram, "exit" or "quit" to leave.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}
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

			stdout, stderr := cmd.OutOrStdout(), cmd.ErrOrStderr()
			printer := tui.NewPrinter(stderr, false)
			analyzer := &pipeline.Analyzer{
				Scan: workspace.ScanOptions{
					Include:     cfg.Scan.Include,
					Exclude:     cfg.Scan.Exclude,
					MaxFileSize: cfg.Scan.MaxFileSize,
				},
				Progress: func(stage pipeline.Stage, detail string) {
					printer.Stage(string(stage), detail)
				},
			}
			records, skipped, err := analyzer.Load(cmd.Context(), pipeline.AnalyzeOptions{
				Workspace: root,
				Files:     runner.SplitList(filesFlag),
			})
			if err != nil {
				return err
			}
			for _, s := range skipped {
				printer.Warn("skipped %s: %v", s.Path, s.Err)
			}

			outDir := outputFlag
			if outDir == "" {
				outDir = cfg.Output.Dir
			}
			loop := &chat.Loop{
				Session: chat.NewSession(newOracle(cfg, root), records),
				Out:     stdout,
				OutDir:  outDir,
			}
			loop.Commands = loop.DefaultCommands()

			if isTerminal(stdout) {
				fmt.Fprint(stdout, tui.RenderBanner(versionString()))
				out := stdout.(*os.File)
				if r, err := tui.NewMarkdownRenderer("auto", tui.Width(out)); err == nil {
					loop.Render = r.RenderOrPlain
				}
			}
			if in, ok := cmd.InOrStdin().(*os.File); ok && tui.IsTerminal(in) {
				var names []string
				for _, c := range loop.Commands.Match("") {
					names = append(names, c.Value)
				}
				loop.In = &tui.PromptReader{Title: "You", Suggestions: names}
			} else {
				loop.In = chat.NewScannerReader(cmd.InOrStdin(), "> ", stdout)
			}
			if isTerminal(stderr) {
				loop.Busy = func(ctx context.Context, work func(ctx context.Context) error) error {
					return tui.RunWithSpinner(ctx, stderr, "Thinking", work)
				}
			}

			return loop.Run(cmd.Context())
		},
	}

	cmd.Flags().StringSliceVar(&filesFlag, "files", nil, "comma-separated workspace-relative files to discuss instead of scanning")
	cmd.Flags().StringVarP(&outputFlag, "output", "o", "", "default directory for \"save\"")

	return cmd
}
