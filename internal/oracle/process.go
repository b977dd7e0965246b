package oracle

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/exec"
	"runtime"
	"strings"
	"time"

	"mvdan.cc/sh/v3/syntax"

	"github.com/julianshen/codefsm/internal/logging"
)

// exit codes a shell uses for "command not found"
const (
	exitNotFoundPOSIX   = 127
	exitNotFoundWindows = 9009
)

// waitDelay bounds how long Wait blocks on inherited pipes after the
// process has been killed.
const waitDelay = 2 * time.Second

// Process is an Oracle backed by a command-line program that reads its
// prompt from standard input and writes its reply to standard output.
type Process struct {
	Command string        // executable name or path, resolved via PATH
	Args    []string      // extra arguments, e.g. "--print"
	TempDir string        // directory for prompt files; empty means os.TempDir()
	Timeout time.Duration // 0 disables the timeout
	Dir     string        // working directory of the oracle process

	// shell overrides the interpreter; tests use it to force spawn failures.
	shell string
}

// Infer writes prompt to a temporary file, runs the oracle with that file
// redirected to its standard input, and returns its trimmed standard output.
// The prompt file is removed before Infer returns on every path.
func (p *Process) Infer(ctx context.Context, prompt string) (string, error) {
	logger := logging.New("oracle")

	executable, err := exec.LookPath(p.Command)
	if err != nil {
		return "", &UnavailableError{Command: p.Command, Hint: remediationHint(p.Command), Err: err}
	}

	promptPath, err := p.writePrompt(prompt)
	if err != nil {
		return "", err
	}
	defer func() {
		if err := os.Remove(promptPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
			logger.Warn("could not remove prompt file", "path", promptPath, "error", err)
		}
	}()

	line, err := redirectLine(executable, p.Args, promptPath)
	if err != nil {
		return "", err
	}

	runCtx := ctx
	if p.Timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, p.Timeout)
		defer cancel()
	}

	cmd := p.shellCommand(runCtx, line)
	cmd.Dir = p.Dir
	cmd.WaitDelay = waitDelay
	configureProcessGroup(cmd)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	logger.Debug("invoking oracle", "command", line, "prompt_bytes", len(prompt))
	start := time.Now()
	runErr := cmd.Run()
	logger.Debug("oracle finished", "duration", time.Since(start), "stdout_bytes", stdout.Len(), "stderr_bytes", stderr.Len())

	if runErr != nil {
		return "", p.classify(ctx, runCtx, runErr, stderr.String())
	}
	return strings.TrimSpace(stdout.String()), nil
}

// classify maps a failed run to the oracle error taxonomy.
func (p *Process) classify(parent, runCtx context.Context, runErr error, stderr string) error {
	stderr = strings.TrimSpace(stderr)

	if errors.Is(runCtx.Err(), context.DeadlineExceeded) && parent.Err() == nil {
		return fmt.Errorf("%w after %s", ErrTimeout, p.Timeout)
	}
	if err := parent.Err(); err != nil {
		return fmt.Errorf("oracle interrupted: %w", err)
	}

	var exitErr *exec.ExitError
	if errors.As(runErr, &exitErr) {
		code := exitErr.ExitCode()
		if code == exitNotFoundPOSIX || code == exitNotFoundWindows {
			return &UnavailableError{
				Command: p.Command,
				Hint:    remediationHint(p.Command),
				Err:     fmt.Errorf("shell exit %d: %s", code, stderr),
			}
		}
		return &ExecutionError{ExitCode: code, Stderr: stderr}
	}

	return &UnavailableError{Command: p.Command, Hint: remediationHint(p.Command), Err: runErr}
}

// writePrompt stores prompt in a fresh file under the temp directory and
// returns its path. The name embeds a timestamp to ease debugging of leaked
// files; uniqueness comes from os.CreateTemp.
func (p *Process) writePrompt(prompt string) (string, error) {
	dir := p.TempDir
	if dir == "" {
		dir = os.TempDir()
	}
	f, err := os.CreateTemp(dir, fmt.Sprintf("codefsm-prompt-%d-*.txt", time.Now().UnixNano()))
	if err != nil {
		return "", fmt.Errorf("creating prompt file: %w", err)
	}
	path := f.Name()

	_, writeErr := f.WriteString(prompt)
	closeErr := f.Close()
	if err := errors.Join(writeErr, closeErr); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("writing prompt file: %w", err)
	}
	return path, nil
}

func (p *Process) shellCommand(ctx context.Context, line string) *exec.Cmd {
	if runtime.GOOS == "windows" {
		shell := p.shell
		if shell == "" {
			shell = "cmd"
		}
		return exec.CommandContext(ctx, shell, "/C", line)
	}
	shell := p.shell
	if shell == "" {
		shell = "sh"
	}
	return exec.CommandContext(ctx, shell, "-c", line)
}

// redirectLine builds "<executable> <args...> < <promptPath>" with every
// word quoted for the platform shell.
func redirectLine(executable string, args []string, promptPath string) (string, error) {
	words := make([]string, 0, len(args)+1)
	for _, w := range append([]string{executable}, args...) {
		q, err := quoteWord(w)
		if err != nil {
			return "", err
		}
		words = append(words, q)
	}
	target, err := quoteWord(promptPath)
	if err != nil {
		return "", err
	}
	return strings.Join(words, " ") + " < " + target, nil
}

func quoteWord(s string) (string, error) {
	if runtime.GOOS == "windows" {
		if strings.ContainsRune(s, '"') {
			return "", fmt.Errorf("cannot quote %q for cmd.exe", s)
		}
		return `"` + s + `"`, nil
	}
	q, err := syntax.Quote(s, syntax.LangPOSIX)
	if err != nil {
		return "", fmt.Errorf("quoting %q: %w", s, err)
	}
	return q, nil
}
