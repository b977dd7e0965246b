package runner

import (
	"errors"

	"github.com/julianshen/codefsm/internal/artifact"
	"github.com/julianshen/codefsm/internal/diagram"
	"github.com/julianshen/codefsm/internal/oracle"
	"github.com/julianshen/codefsm/internal/pipeline"
	"github.com/julianshen/codefsm/internal/workspace"
)

// Process exit codes.
const (
	ExitOK                = 0
	ExitFailure           = 1
	ExitNoFiles           = 2
	ExitOracleUnavailable = 3
	ExitOracleFailed      = 4
	ExitNoDiagram         = 5
	ExitArtifactWrite     = 6
)

// ExitCodeFor maps an error to the exit code of its failure kind.
func ExitCodeFor(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, workspace.ErrWorkspaceNotFound), errors.Is(err, pipeline.ErrNoFilesMatched):
		return ExitNoFiles
	case errors.Is(err, oracle.ErrUnavailable):
		return ExitOracleUnavailable
	case errors.Is(err, oracle.ErrExecutionFailed), errors.Is(err, oracle.ErrTimeout):
		return ExitOracleFailed
	case errors.Is(err, diagram.ErrDiagramNotFound):
		return ExitNoDiagram
	case errors.Is(err, artifact.ErrArtifactWrite):
		return ExitArtifactWrite
	default:
		return ExitFailure
	}
}
