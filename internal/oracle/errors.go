package oracle

import (
	"errors"
	"fmt"
)

var (
	// ErrUnavailable means the oracle process could not be started.
	ErrUnavailable = errors.New("oracle unavailable")
	// ErrExecutionFailed means the oracle process exited non-zero.
	ErrExecutionFailed = errors.New("oracle execution failed")
	// ErrTimeout means the oracle did not finish within the configured timeout.
	ErrTimeout = errors.New("oracle timed out")
)

// UnavailableError reports a missing or unstartable oracle executable.
type UnavailableError struct {
	Command string
	Hint    string
	Err     error
}

func (e *UnavailableError) Error() string {
	msg := fmt.Sprintf("oracle unavailable: cannot start %q", e.Command)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	if e.Hint != "" {
		msg += "\n" + e.Hint
	}
	return msg
}

func (e *UnavailableError) Is(target error) bool { return target == ErrUnavailable }

func (e *UnavailableError) Unwrap() error { return e.Err }

// ExecutionError reports a non-zero oracle exit together with its stderr.
type ExecutionError struct {
	ExitCode int
	Stderr   string
}

func (e *ExecutionError) Error() string {
	if e.Stderr == "" {
		return fmt.Sprintf("oracle execution failed: exit code %d", e.ExitCode)
	}
	return fmt.Sprintf("oracle execution failed: exit code %d: %s", e.ExitCode, e.Stderr)
}

func (e *ExecutionError) Is(target error) bool { return target == ErrExecutionFailed }

// remediationHint explains how to make the oracle command available.
func remediationHint(command string) string {
	return fmt.Sprintf("Install the Claude CLI (npm install -g @anthropic-ai/claude-code) and make sure %q is on your PATH, "+
		"or point [oracle] command in the codefsm config at another executable.", command)
}
