// Package prompt renders the instruction text sent to the oracle.
package prompt

import (
	"bytes"
	"strings"
	"text/template"

	"github.com/julianshen/codefsm/internal/workspace"
)

// fileSeparator separates consecutive files in the prompt.
const fileSeparator = "\n---\n\n"

var analysisTmpl = template.Must(template.New("analysis").Parse(
	`You are analyzing a codebase to extract state machine patterns.

Here are the relevant files from the project:

{{.Files}}

Your task is to:
1. Identify any state machine logic, state transitions, or finite state machine patterns
2. Extract the states, events/transitions, and their relationships
3. Generate a Mermaid stateDiagram-v2 that represents this state machine

{{if .Focus}}
Focus specifically on: {{.Focus}}
{{end}}
Look for patterns like:
- Explicit state variables or enums (e.g., state = "IDLE", State.RUNNING)
- State transition functions (e.g., transition_to(), setState())
- Switch/case statements on state variables
- If/else chains checking state
- Event handlers that change state
- Robot control states (idle, moving, stopped, error, etc.)

Output format:
1. First, provide a brief explanation of what state machine you found
2. Then output ONLY the Mermaid diagram code, starting with "stateDiagram-v2"
3. Use clear, descriptive state names
4. Label transitions with the events/conditions that trigger them

Example output format:
I found a robot control state machine with 4 states...

stateDiagram-v2
    [*] --> Idle
    Idle --> Moving: start_command
    Moving --> Stopped: stop_command
    Moving --> Error: sensor_fault
    Error --> Idle: reset
    Stopped --> [*]
`))

// BuildAnalysis renders the state-machine extraction prompt for files and an
// optional focus hint. It is a pure function of its inputs.
func BuildAnalysis(files []workspace.FileRecord, focus string) string {
	var buf bytes.Buffer
	// Execute only fails on writer errors, which bytes.Buffer never returns.
	_ = analysisTmpl.Execute(&buf, struct {
		Files string
		Focus string
	}{
		Files: formatFiles(files),
		Focus: strings.TrimSpace(focus),
	})
	return buf.String()
}

// formatFiles lays out each file under a "File:" heading inside a fenced
// block, separated by a horizontal rule.
func formatFiles(files []workspace.FileRecord) string {
	blocks := make([]string, len(files))
	for i, f := range files {
		blocks[i] = "File: " + f.Path + "\n```\n" + f.Content + "\n```\n"
	}
	return strings.Join(blocks, fileSeparator)
}
