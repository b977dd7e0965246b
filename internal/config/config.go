package config

import (
	"runtime"
	"time"
)

// Config represents the top-level application configuration.
type Config struct {
	Oracle  OracleConfig  `toml:"oracle"`
	Scan    ScanConfig    `toml:"scan"`
	Output  OutputConfig  `toml:"output"`
	History HistoryConfig `toml:"history"`
}

// OracleConfig controls how the external analysis process is invoked.
type OracleConfig struct {
	Command string        `toml:"command"`
	Args    []string      `toml:"args"`
	TempDir string        `toml:"temp_dir"` // empty means os.TempDir()
	Timeout time.Duration `toml:"timeout"`  // 0 disables the timeout
}

// ScanConfig holds the workspace file selection rules.
type ScanConfig struct {
	Include     []string `toml:"include"`
	Exclude     []string `toml:"exclude"`
	MaxFileSize int64    `toml:"max_file_size"`
}

// OutputConfig holds artifact output settings.
type OutputConfig struct {
	Dir string `toml:"dir"`
}

// HistoryConfig controls the SQLite run ledger.
type HistoryConfig struct {
	Enabled bool   `toml:"enabled"`
	Path    string `toml:"path"` // empty means <config dir>/runs.db
}

// DefaultInclude lists the glob patterns scanned when nothing else is configured.
var DefaultInclude = []string{
	"**/*.py", "**/*.js", "**/*.ts", "**/*.cpp", "**/*.c", "**/*.java", "**/*.go",
}

// DefaultExclude lists the glob patterns excluded when nothing else is configured.
var DefaultExclude = []string{
	"**/node_modules/**", "**/venv/**", "**/build/**", "**/.git/**",
	"**/__pycache__/**", "**/*.pyc", "**/vendor/**",
}

// DefaultMaxFileSize is the per-file size ceiling in bytes.
const DefaultMaxFileSize int64 = 100_000

// DefaultOracleCommand returns the oracle executable name for the current
// platform.
func DefaultOracleCommand() string {
	if runtime.GOOS == "windows" {
		return "claude.cmd"
	}
	return "claude"
}

// DefaultConfig returns a Config populated with sensible default values.
func DefaultConfig() *Config {
	return &Config{
		Oracle: OracleConfig{
			Command: DefaultOracleCommand(),
			Args:    []string{"--print"},
			Timeout: 10 * time.Minute,
		},
		Scan: ScanConfig{
			Include:     append([]string(nil), DefaultInclude...),
			Exclude:     append([]string(nil), DefaultExclude...),
			MaxFileSize: DefaultMaxFileSize,
		},
		Output: OutputConfig{
			Dir: "fsm-output",
		},
		History: HistoryConfig{
			Enabled: true,
		},
	}
}
