// cmd/codefsm/history.go
package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/julianshen/codefsm/internal/output"
	"github.com/julianshen/codefsm/internal/store"
)

func historyCmd() *cobra.Command {
	var (
		limitFlag  int
		formatFlag string
	)

	cmd := &cobra.Command{
		Use:   "history [run-id]",
		Short: "List recorded analysis runs",
		Long: `List the most recent analysis runs, newest first. With a run id (or a
unique prefix of one) print the diagram that run extracted.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			path, err := historyPath(cfg)
			if err != nil {
				return err
			}
			s, err := store.NewStore(path)
			if err != nil {
				return fmt.Errorf("opening history: %w", err)
			}
			defer s.Close()

			out := cmd.OutOrStdout()
			if len(args) == 1 {
				run, err := findRun(s, args[0])
				if err != nil {
					return err
				}
				_, err = io.WriteString(out, strings.TrimRight(run.Diagram, "\n")+"\n")
				return err
			}

			formatter, err := output.ForName(formatFlag)
			if err != nil {
				return err
			}
			runs, err := s.ListRuns(limitFlag)
			if err != nil {
				return err
			}
			data, err := formatter.FormatHistory(runs)
			if err != nil {
				return err
			}
			if len(data) > 0 && data[len(data)-1] != '\n' {
				data = append(data, '\n')
			}
			_, err = out.Write(data)
			return err
		},
	}

	cmd.Flags().IntVarP(&limitFlag, "limit", "n", 20, "number of runs to list, 0 for all")
	cmd.Flags().StringVar(&formatFlag, "format", "markdown", "output format: markdown, json")

	return cmd
}

// findRun resolves a full run id or a unique prefix of one.
func findRun(s *store.Store, id string) (*store.Run, error) {
	run, err := s.GetRun(id)
	if err == nil || !errors.Is(err, store.ErrRunNotFound) {
		return run, err
	}

	runs, listErr := s.ListRuns(0)
	if listErr != nil {
		return nil, listErr
	}
	var match *store.Run
	for i := range runs {
		if !strings.HasPrefix(runs[i].ID, id) {
			continue
		}
		if match != nil {
			return nil, fmt.Errorf("run id prefix %q is ambiguous", id)
		}
		match = &runs[i]
	}
	if match == nil {
		return nil, err
	}
	return match, nil
}
