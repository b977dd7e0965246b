// cmd/codefsm/convert.go
package main

import (
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/julianshen/codefsm/internal/convert"
	"github.com/julianshen/codefsm/internal/diagram"
)

func convertCmd() *cobra.Command {
	var (
		nameFlag   string
		formatFlag string
		outFlag    string
	)

	cmd := &cobra.Command{
		Use:   "convert <diagram.mmd>",
		Short: "Generate state machine code from a Mermaid state diagram",
		Long: `Parse a stateDiagram-v2 file, such as the state-machine.mmd written by
analyze, and generate an equivalent state machine. Use - to read stdin.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(convert.Formats, formatFlag) {
				return fmt.Errorf("unknown format %q (want %s)", formatFlag, strings.Join(convert.Formats, ", "))
			}

			var data []byte
			var err error
			if args[0] == "-" {
				data, err = io.ReadAll(cmd.InOrStdin())
			} else {
				data, err = os.ReadFile(args[0])
			}
			if err != nil {
				return fmt.Errorf("reading diagram: %w", err)
			}

			m, err := diagram.Parse(string(data))
			if err != nil {
				return fmt.Errorf("parsing %s: %w", args[0], err)
			}
			code, err := convert.Generate(m, nameFlag, formatFlag)
			if err != nil {
				return err
			}

			if outFlag == "" || outFlag == "-" {
				_, err = cmd.OutOrStdout().Write(code)
				return err
			}
			if err := os.WriteFile(outFlag, code, 0o644); err != nil {
				return fmt.Errorf("writing %s: %w", outFlag, err)
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "Wrote %s (%d states, %d transitions)\n", outFlag, len(m.States), len(m.Transitions))
			return nil
		},
	}

	cmd.Flags().StringVar(&nameFlag, "name", "Machine", "name of the generated state machine")
	cmd.Flags().StringVar(&formatFlag, "format", "go", "output format: "+strings.Join(convert.Formats, ", "))
	cmd.Flags().StringVar(&outFlag, "out", "", "output file (default stdout)")

	return cmd
}
