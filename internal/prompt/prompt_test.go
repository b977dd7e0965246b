package prompt

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"

	"github.com/julianshen/codefsm/internal/workspace"
)

var sampleFiles = []workspace.FileRecord{
	{Path: "robot.py", Content: "state = 'IDLE'"},
	{Path: "pkg/motor.go", Content: "package pkg\n\nconst Running = 1"},
}

func TestBuildAnalysisIsDeterministic(t *testing.T) {
	first := BuildAnalysis(sampleFiles, "motor control")
	second := BuildAnalysis(sampleFiles, "motor control")
	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("prompt changed between calls (-first +second):\n%s", diff)
	}
}

func TestBuildAnalysisLayout(t *testing.T) {
	p := BuildAnalysis(sampleFiles, "")

	wantFiles := "File: robot.py\n```\nstate = 'IDLE'\n```\n" +
		"\n---\n\n" +
		"File: pkg/motor.go\n```\npackage pkg\n\nconst Running = 1\n```\n"
	assert.Contains(t, p, wantFiles)
	assert.True(t, strings.HasPrefix(p, "You are analyzing a codebase to extract state machine patterns."))
	assert.Contains(t, p, "Generate a Mermaid stateDiagram-v2")
	assert.Contains(t, p, "    Idle --> Moving: start_command")
	assert.NotContains(t, p, "Focus specifically on")
}

func TestBuildAnalysisPreservesFileOrder(t *testing.T) {
	p := BuildAnalysis(sampleFiles, "")
	assert.Less(t, strings.Index(p, "File: robot.py"), strings.Index(p, "File: pkg/motor.go"))
}

func TestBuildAnalysisFocusOnlyAddsDirective(t *testing.T) {
	without := BuildAnalysis(sampleFiles, "")
	with := BuildAnalysis(sampleFiles, "  the door controller ")

	assert.Contains(t, with, "\nFocus specifically on: the door controller\n")

	stripped := strings.Replace(with, "\nFocus specifically on: the door controller\n", "", 1)
	if diff := cmp.Diff(without, stripped); diff != "" {
		t.Errorf("focus altered the rest of the template (-without +stripped):\n%s", diff)
	}
}

func TestBuildAnalysisDoesNotEscapeContent(t *testing.T) {
	files := []workspace.FileRecord{{Path: "t.js", Content: `if (a < b && c > "d") {}`}}
	p := BuildAnalysis(files, "")
	assert.Contains(t, p, `if (a < b && c > "d") {}`)
}

func TestBuildChat(t *testing.T) {
	transcript := []Message{
		{Role: RoleUser, Text: "what states exist?"},
		{Role: RoleAssistant, Text: "Idle and Moving."},
	}
	p := BuildChat(sampleFiles[:1], transcript, "how do I stop?")

	assert.Contains(t, p, "File: robot.py")
	assert.Contains(t, p, "User: what states exist?\n\nAssistant: Idle and Moving.\n\n")
	assert.True(t, strings.HasSuffix(p, "User: how do I stop?\n\nAssistant:"))
}

func TestBuildChatWithoutHistory(t *testing.T) {
	p := BuildChat(nil, nil, "hi")
	assert.NotContains(t, p, "Conversation so far")
	assert.NotContains(t, p, "relevant files")
}
