// cmd/codefsm/main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/julianshen/codefsm/internal/config"
	"github.com/julianshen/codefsm/internal/logging"
	"github.com/julianshen/codefsm/internal/oracle"
	"github.com/julianshen/codefsm/internal/runner"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"

	configPath    string
	oracleFlag    string
	logLevelFlag  string
	logFormatFlag string
)

func versionString() string {
	return fmt.Sprintf("codefsm %s (commit: %s, built: %s)", version, commit, date)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", errorDetail(err, logging.DebugEnabled()))
		os.Exit(runner.ExitCodeFor(err))
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "codefsm",
		Short: "Infer state machines from source code",
		Long: `codefsm sends the source files of a workspace to an analysis oracle
and extracts the state machine it describes as a Mermaid stateDiagram-v2,
together with an HTML viewer and the raw analysis.`,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return setupLogging()
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to config file (default ~/.config/codefsm/config.toml)")
	rootCmd.PersistentFlags().StringVar(&oracleFlag, "oracle", "", "override the oracle command")
	rootCmd.PersistentFlags().StringVar(&logLevelFlag, "log-level", "warn", "log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&logFormatFlag, "log-format", "text", "log format: text, json")

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), versionString())
		},
	}

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(analyzeCmd())
	rootCmd.AddCommand(interactiveCmd())
	rootCmd.AddCommand(convertCmd())
	rootCmd.AddCommand(historyCmd())
	rootCmd.AddCommand(configCmd())

	return rootCmd
}

func setupLogging() error {
	level, err := logging.ParseLevel(logLevelFlag)
	if err != nil {
		return err
	}
	if logging.DebugEnabled() {
		level, _ = logging.ParseLevel("debug")
	}
	switch logFormatFlag {
	case "text", "json":
	default:
		return fmt.Errorf("unknown log format %q (want text or json)", logFormatFlag)
	}
	logging.Init(level, logFormatFlag)
	return nil
}

// resolveConfigPath returns --config or the default user config location.
func resolveConfigPath() (string, error) {
	if configPath != "" {
		return configPath, nil
	}
	dir, err := config.Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

func loadConfig() (*config.Config, error) {
	path, err := resolveConfigPath()
	if err != nil {
		return nil, err
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if oracleFlag != "" {
		cfg.Oracle.Command = oracleFlag
	}
	return cfg, nil
}

// historyPath returns the ledger database location.
func historyPath(cfg *config.Config) (string, error) {
	if cfg.History.Path != "" {
		return cfg.History.Path, nil
	}
	dir, err := config.Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "runs.db"), nil
}

func newOracle(cfg *config.Config, workspace string) *oracle.Process {
	return &oracle.Process{
		Command: cfg.Oracle.Command,
		Args:    cfg.Oracle.Args,
		TempDir: cfg.Oracle.TempDir,
		Timeout: cfg.Oracle.Timeout,
		Dir:     workspace,
	}
}

// errorDetail renders err for the terminal. With verbose set every wrapped
// cause is listed with its type.
func errorDetail(err error, verbose bool) string {
	if !verbose {
		return err.Error()
	}
	var b strings.Builder
	b.WriteString(err.Error())
	for e := errors.Unwrap(err); e != nil; e = errors.Unwrap(e) {
		fmt.Fprintf(&b, "\n  caused by %T: %v", e, e)
	}
	var execErr *oracle.ExecutionError
	if errors.As(err, &execErr) && execErr.Stderr != "" {
		fmt.Fprintf(&b, "\n  oracle stderr:\n%s", execErr.Stderr)
	}
	return b.String()
}
