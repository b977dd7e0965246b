package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/julianshen/codefsm/internal/artifact"
	"github.com/julianshen/codefsm/internal/oracle"
	"github.com/julianshen/codefsm/internal/output"
	"github.com/julianshen/codefsm/internal/runner"
	"github.com/julianshen/codefsm/internal/store"
)

const doorReply = `The door opens and closes.

stateDiagram-v2
    [*] --> Closed
    Closed --> Open: open
    Open --> Closed: close
`

func executeCmd(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	return executeCmdIn(t, "", args...)
}

func executeCmdIn(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	root := newRootCmd()
	var stdout, stderr bytes.Buffer
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

// setupEnv writes a fake oracle printing reply, a config file pointing at
// it and a workspace with one Go file.
func setupEnv(t *testing.T, reply string) (cfgPath, ws string) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("fake oracle is a shell script")
	}
	dir := t.TempDir()

	script := filepath.Join(dir, "oracle.sh")
	body := fmt.Sprintf("#!/bin/sh\ncat >/dev/null\ncat <<'EOF'\n%sEOF\n", reply)
	require.NoError(t, os.WriteFile(script, []byte(body), 0o755))

	cfgPath = filepath.Join(dir, "config.toml")
	cfg := fmt.Sprintf("[oracle]\ncommand = %q\n\n[history]\nenabled = true\npath = %q\n",
		script, filepath.Join(dir, "runs.db"))
	require.NoError(t, os.WriteFile(cfgPath, []byte(cfg), 0o644))

	ws = filepath.Join(dir, "ws")
	require.NoError(t, os.MkdirAll(ws, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(ws, "door.go"), []byte("package door\n"), 0o644))
	return cfgPath, ws
}

func TestVersionString(t *testing.T) {
	s := versionString()
	assert.Contains(t, s, "codefsm")
	assert.Contains(t, s, version)
	assert.Contains(t, s, commit)
	assert.Contains(t, s, date)
}

func TestVersionCommand(t *testing.T) {
	out, _, err := executeCmd(t, "version")
	require.NoError(t, err)
	assert.Equal(t, versionString()+"\n", out)
}

func TestRootHasSubcommands(t *testing.T) {
	root := newRootCmd()
	var names []string
	for _, c := range root.Commands() {
		names = append(names, c.Name())
	}
	for _, want := range []string{"analyze", "interactive", "convert", "history", "config", "version"} {
		assert.Contains(t, names, want)
	}
}

func TestAnalyzeCmdDefaultFlags(t *testing.T) {
	cmd := analyzeCmd()
	assert.Equal(t, "analyze [workspace]", cmd.Use)

	format, _ := cmd.Flags().GetString("format")
	assert.Equal(t, "markdown", format)
	name, _ := cmd.Flags().GetString("name")
	assert.Equal(t, "Machine", name)
	out, _ := cmd.Flags().GetString("output")
	assert.Empty(t, out)
	assert.NotNil(t, cmd.Flags().ShorthandLookup("o"))
}

func TestUnknownLogLevel(t *testing.T) {
	_, _, err := executeCmd(t, "--log-level", "loud", "version")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "loud")
}

func TestErrorDetail(t *testing.T) {
	err := fmt.Errorf("analyzing 2 files: %w", &oracle.ExecutionError{ExitCode: 2, Stderr: "quota"})

	assert.Equal(t, err.Error(), errorDetail(err, false))

	verbose := errorDetail(err, true)
	assert.True(t, strings.HasPrefix(verbose, err.Error()))
	assert.Contains(t, verbose, "caused by *oracle.ExecutionError")
	assert.Contains(t, verbose, "oracle stderr:\nquota")
}

func TestAnalyzeEndToEnd(t *testing.T) {
	cfgPath, ws := setupEnv(t, doorReply)
	outDir := filepath.Join(t.TempDir(), "out")

	stdout, stderr, err := executeCmd(t, "--config", cfgPath, "analyze", ws,
		"-o", outDir, "--format", "json", "--convert", "go", "--name", "Door")
	require.NoError(t, err, stderr)

	var summary output.RunSummary
	require.NoError(t, json.Unmarshal([]byte(stdout), &summary))
	assert.Equal(t, []string{"door.go"}, summary.FilesAnalyzed)
	assert.Equal(t, "keyword-block", summary.Strategy)
	assert.Contains(t, summary.Diagram, "Closed --> Open: open")
	assert.Contains(t, summary.Analysis, "The door opens and closes.")
	assert.NotEmpty(t, summary.RunID)

	mmd, err := os.ReadFile(filepath.Join(outDir, artifact.DiagramFile))
	require.NoError(t, err)
	assert.Equal(t, summary.Diagram, string(mmd))
	assert.FileExists(t, filepath.Join(outDir, artifact.ReportFile))
	assert.FileExists(t, filepath.Join(outDir, artifact.ViewerFile))

	code, err := os.ReadFile(filepath.Join(outDir, "door.go"))
	require.NoError(t, err)
	assert.Contains(t, string(code), "func NewDoor()")

	assert.Contains(t, stderr, "Analysis complete (1 files)")

	// The run is in the ledger.
	hist, _, err := executeCmd(t, "--config", cfgPath, "history", "--format", "json")
	require.NoError(t, err)
	var runs []store.Run
	require.NoError(t, json.Unmarshal([]byte(hist), &runs))
	require.Len(t, runs, 1)
	assert.Equal(t, summary.RunID, runs[0].ID)
	assert.Equal(t, outDir, runs[0].OutputDir)

	shown, _, err := executeCmd(t, "--config", cfgPath, "history", summary.RunID[:8])
	require.NoError(t, err)
	assert.Equal(t, summary.Diagram+"\n", shown)
}

func TestAnalyzeQuietMarkdown(t *testing.T) {
	cfgPath, ws := setupEnv(t, doorReply)
	outDir := filepath.Join(t.TempDir(), "out")

	stdout, stderr, err := executeCmd(t, "--config", cfgPath, "analyze", ws, "-o", outDir, "--quiet", "--no-history")
	require.NoError(t, err)
	assert.Empty(t, stderr)
	assert.Contains(t, stdout, "## State Diagram")
	assert.Contains(t, stdout, "- `door.go`")

	hist, _, err := executeCmd(t, "--config", cfgPath, "history")
	require.NoError(t, err)
	assert.Equal(t, "No recorded runs.\n", hist)
}

func TestAnalyzeNoDiagramExitCode(t *testing.T) {
	cfgPath, ws := setupEnv(t, "Just prose, no diagram.\n")

	stdout, stderr, err := executeCmd(t, "--config", cfgPath, "analyze", ws,
		"-o", filepath.Join(t.TempDir(), "out"), "--format", "json")
	require.Error(t, err)
	assert.Equal(t, runner.ExitNoDiagram, runner.ExitCodeFor(err))
	assert.Contains(t, stderr, "Just prose, no diagram.")

	var summary output.RunSummary
	require.NoError(t, json.Unmarshal([]byte(stdout), &summary))
	assert.Equal(t, err.Error(), summary.Error)
}

func TestAnalyzeNoFilesExitCode(t *testing.T) {
	cfgPath, ws := setupEnv(t, doorReply)

	_, _, err := executeCmd(t, "--config", cfgPath, "analyze", ws, "--include", "**/*.rs", "--no-history")
	require.Error(t, err)
	assert.Equal(t, runner.ExitNoFiles, runner.ExitCodeFor(err))
}

func TestAnalyzeOracleUnavailableExitCode(t *testing.T) {
	cfgPath, ws := setupEnv(t, doorReply)

	_, _, err := executeCmd(t, "--config", cfgPath, "--oracle", "codefsm-missing-oracle", "analyze", ws,
		"-o", filepath.Join(t.TempDir(), "out"), "--no-history")
	require.Error(t, err)
	assert.Equal(t, runner.ExitOracleUnavailable, runner.ExitCodeFor(err))
}

func TestAnalyzeRejectsUnknownConvertFormat(t *testing.T) {
	cfgPath, ws := setupEnv(t, doorReply)

	_, _, err := executeCmd(t, "--config", cfgPath, "analyze", ws, "--convert", "cobol")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cobol")
}

func TestAnalyzeFocusFromStdin(t *testing.T) {
	cfgPath, ws := setupEnv(t, doorReply)
	outDir := filepath.Join(t.TempDir(), "out")

	stdout, _, err := executeCmdIn(t, "the latch\n", "--config", cfgPath, "analyze", ws,
		"-o", outDir, "--focus-file", "-", "--format", "json")
	require.NoError(t, err)
	var summary output.RunSummary
	require.NoError(t, json.Unmarshal([]byte(stdout), &summary))

	hist, _, err := executeCmd(t, "--config", cfgPath, "history", "--format", "json")
	require.NoError(t, err)
	var runs []store.Run
	require.NoError(t, json.Unmarshal([]byte(hist), &runs))
	require.Len(t, runs, 1)
	assert.Equal(t, "the latch", runs[0].Focus)
}

func TestInteractiveSession(t *testing.T) {
	cfgPath, ws := setupEnv(t, doorReply)
	outDir := filepath.Join(t.TempDir(), "saved")

	stdout, _, err := executeCmdIn(t, "What states exist?\n/files\n/save "+outDir+"\nexit\nnever sent\n",
		"--config", cfgPath, "interactive", ws)
	require.NoError(t, err)

	assert.Contains(t, stdout, "Chatting about 1 files.")
	assert.Contains(t, stdout, "The door opens and closes.")
	assert.Contains(t, stdout, "1 files:\n  door.go")
	assert.Contains(t, stdout, "Saved "+filepath.Join(outDir, artifact.DiagramFile))
	assert.FileExists(t, filepath.Join(outDir, artifact.ViewerFile))
}

func TestConvertCmd(t *testing.T) {
	dir := t.TempDir()
	mmd := filepath.Join(dir, "door.mmd")
	require.NoError(t, os.WriteFile(mmd, []byte(strings.SplitN(doorReply, "\n\n", 2)[1]), 0o644))

	out, _, err := executeCmd(t, "convert", mmd, "--format", "json", "--name", "Door")
	require.NoError(t, err)
	var doc map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	assert.Equal(t, "Door", doc["name"])

	target := filepath.Join(dir, "door.py")
	_, stderr, err := executeCmd(t, "convert", mmd, "--format", "python", "--out", target)
	require.NoError(t, err)
	assert.FileExists(t, target)
	assert.Contains(t, stderr, "Wrote "+target)

	_, _, err = executeCmd(t, "convert", mmd, "--format", "cobol")
	require.Error(t, err)

	_, _, err = executeCmd(t, "convert", filepath.Join(dir, "missing.mmd"))
	require.Error(t, err)
}

func TestConfigShowAndPath(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("[output]\ndir = \"diagrams\"\n"), 0o644))

	out, _, err := executeCmd(t, "--config", cfgPath, "config", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "[oracle]")
	assert.Contains(t, out, `dir = "diagrams"`)

	out, _, err = executeCmd(t, "--config", cfgPath, "config", "path")
	require.NoError(t, err)
	assert.Equal(t, cfgPath+"\n", out)
}
