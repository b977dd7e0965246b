package chat

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/julianshen/codefsm/internal/oracle"
	"github.com/julianshen/codefsm/internal/prompt"
	"github.com/julianshen/codefsm/internal/workspace"
)

// scriptedOracle replies from a fixed list and records prompts.
type scriptedOracle struct {
	replies []string
	errs    []error
	prompts []string
}

func (o *scriptedOracle) Infer(_ context.Context, p string) (string, error) {
	i := len(o.prompts)
	o.prompts = append(o.prompts, p)
	if i < len(o.errs) && o.errs[i] != nil {
		return "", o.errs[i]
	}
	if i < len(o.replies) {
		return o.replies[i], nil
	}
	return "", nil
}

// lines is a LineReader over a fixed slice.
type lines []string

func (l *lines) ReadLine(context.Context) (string, error) {
	if len(*l) == 0 {
		return "", io.EOF
	}
	line := (*l)[0]
	*l = (*l)[1:]
	return line, nil
}

var files = []workspace.FileRecord{{Path: "door.go", Content: "package door\n"}}

func TestTurnAppendsTranscript(t *testing.T) {
	o := &scriptedOracle{replies: []string{"It has Open and Closed.", "Closing happens on timeout."}}
	s := NewSession(o, files)

	reply, err := s.Turn(context.Background(), "What states exist?")
	require.NoError(t, err)
	assert.Equal(t, "It has Open and Closed.", reply)

	_, err = s.Turn(context.Background(), "When does it close?")
	require.NoError(t, err)

	assert.Equal(t, []prompt.Message{
		{Role: prompt.RoleUser, Text: "What states exist?"},
		{Role: prompt.RoleAssistant, Text: "It has Open and Closed."},
		{Role: prompt.RoleUser, Text: "When does it close?"},
		{Role: prompt.RoleAssistant, Text: "Closing happens on timeout."},
	}, s.Transcript())

	require.Len(t, o.prompts, 2)
	assert.Contains(t, o.prompts[0], "File: door.go")
	assert.Contains(t, o.prompts[1], "User: What states exist?")
	assert.Contains(t, o.prompts[1], "Assistant: It has Open and Closed.")
	assert.True(t, strings.HasSuffix(o.prompts[1], "User: When does it close?\n\nAssistant:"))
}

func TestTurnFailureLeavesTranscriptUntouched(t *testing.T) {
	o := &scriptedOracle{errs: []error{oracle.ErrExecutionFailed}}
	s := NewSession(o, files)

	_, err := s.Turn(context.Background(), "hello")
	assert.ErrorIs(t, err, oracle.ErrExecutionFailed)
	assert.Empty(t, s.Transcript())
}

func TestTurnRemembersDiagram(t *testing.T) {
	o := &scriptedOracle{replies: []string{
		"Here:\n\nstateDiagram-v2\n    [*] --> Open\n",
		"No diagram this time.",
	}}
	s := NewSession(o, files)

	_, ok := s.LastDiagram()
	assert.False(t, ok)

	_, err := s.Turn(context.Background(), "draw it")
	require.NoError(t, err)
	_, err = s.Turn(context.Background(), "thanks")
	require.NoError(t, err)

	m, ok := s.LastDiagram()
	require.True(t, ok)
	assert.Equal(t, "stateDiagram-v2\n    [*] --> Open", m.Text)
	assert.Equal(t, "No diagram this time.", s.LastReply())
}

func TestLoopRunsUntilExit(t *testing.T) {
	o := &scriptedOracle{replies: []string{"first", "second"}}
	in := lines{"  ", "one", "two", "exit", "never sent"}
	var out strings.Builder

	l := &Loop{Session: NewSession(o, files), In: &in, Out: &out}
	require.NoError(t, l.Run(context.Background()))

	assert.Len(t, o.prompts, 2)
	assert.Contains(t, out.String(), "first\n")
	assert.Contains(t, out.String(), "second\n")
	assert.Equal(t, lines{"never sent"}, in)
}

func TestLoopEndsAtEOF(t *testing.T) {
	in := lines{"quit?"}
	o := &scriptedOracle{replies: []string{"ok"}}
	l := &Loop{Session: NewSession(o, files), In: &in, Out: &strings.Builder{}}

	require.NoError(t, l.Run(context.Background()))
	assert.Len(t, o.prompts, 1)
}

func TestLoopContinuesAfterOracleError(t *testing.T) {
	o := &scriptedOracle{errs: []error{errors.New("boom")}, replies: []string{"", "recovered"}}
	in := lines{"a", "b", "quit"}
	var out strings.Builder

	l := &Loop{Session: NewSession(o, files), In: &in, Out: &out}
	require.NoError(t, l.Run(context.Background()))
	assert.Contains(t, out.String(), "Error: chat turn: boom")
	assert.Contains(t, out.String(), "recovered")
}

func TestLoopRenderAndBusyHooks(t *testing.T) {
	o := &scriptedOracle{replies: []string{"reply"}}
	in := lines{"q"}
	var out strings.Builder
	busyCalls := 0

	l := &Loop{
		Session: NewSession(o, files),
		In:      &in,
		Out:     &out,
		Render:  strings.ToUpper,
		Busy: func(ctx context.Context, work func(context.Context) error) error {
			busyCalls++
			return work(ctx)
		},
	}
	require.NoError(t, l.Run(context.Background()))
	assert.Equal(t, 1, busyCalls)
	assert.Contains(t, out.String(), "REPLY\n")
}

func TestLoopStopsOnCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	o := oracle.Func(func(ctx context.Context, _ string) (string, error) {
		cancel()
		return "", ctx.Err()
	})
	in := lines{"a", "b"}

	l := &Loop{Session: NewSession(o, files), In: &in, Out: &strings.Builder{}}
	assert.ErrorIs(t, l.Run(ctx), context.Canceled)
}

func TestLoopSave(t *testing.T) {
	o := &scriptedOracle{replies: []string{"Door:\n\nstateDiagram-v2\n    [*] --> Open\n    Open --> Closed: push\n"}}
	outDir := filepath.Join(t.TempDir(), "out")
	in := lines{"save", "draw", "/save " + outDir, "exit"}
	var out strings.Builder

	l := &Loop{Session: NewSession(o, files), In: &in, Out: &out}
	require.NoError(t, l.Run(context.Background()))

	assert.Contains(t, out.String(), "Error: no output directory given")
	data, err := os.ReadFile(filepath.Join(outDir, "state-machine.mmd"))
	require.NoError(t, err)
	assert.Equal(t, "stateDiagram-v2\n    [*] --> Open\n    Open --> Closed: push", string(data))
}

func TestLoopBareWordWithArgumentsReachesOracle(t *testing.T) {
	o := &scriptedOracle{replies: []string{"Moving exits on stop.", "Idle is initial.", "criteria"}}
	dir := t.TempDir()
	in := lines{"exit transitions of the Moving state?", "save Idle as the initial state please", "exit criteria?", "exit"}
	var out strings.Builder

	l := &Loop{Session: NewSession(o, files), In: &in, Out: &out, OutDir: dir}
	require.NoError(t, l.Run(context.Background()))

	require.Len(t, o.prompts, 3)
	assert.Contains(t, o.prompts[2], "exit criteria?")
	assert.Contains(t, out.String(), "Moving exits on stop.")
	assert.NotContains(t, out.String(), "Error:")
	assert.NoFileExists(t, filepath.Join(dir, "state-machine.mmd"))
}

func TestLoopSaveWithoutDiagram(t *testing.T) {
	in := lines{"save", "exit"}
	var out strings.Builder

	l := &Loop{Session: NewSession(&scriptedOracle{}, files), In: &in, Out: &out, OutDir: t.TempDir()}
	require.NoError(t, l.Run(context.Background()))
	assert.Contains(t, out.String(), "No diagram in the conversation yet.")
}

func TestLoopSlashCommands(t *testing.T) {
	o := &scriptedOracle{replies: []string{"Door:\n\nstateDiagram-v2\n    [*] --> Open\n", "fresh"}}
	in := lines{"/files", "draw", "/diagram", "/clear", "/diagram", "/bogus", "again", "/help", "/quit", "never"}
	var out strings.Builder

	s := NewSession(o, files)
	l := &Loop{Session: s, In: &in, Out: &out}
	require.NoError(t, l.Run(context.Background()))

	text := out.String()
	assert.Contains(t, text, "1 files:\n  door.go")
	assert.Contains(t, text, "stateDiagram-v2\n    [*] --> Open\nConversation cleared.")
	assert.Contains(t, text, "No diagram in the conversation yet.")
	assert.Contains(t, text, "Error: unknown command /bogus (try /help)")
	assert.Contains(t, text, "/save [dir]")
	assert.Equal(t, lines{"never"}, in)

	// The cleared transcript is not sent with the next turn.
	require.Len(t, o.prompts, 2)
	assert.NotContains(t, o.prompts[1], "User: draw")
	assert.Equal(t, []prompt.Message{
		{Role: prompt.RoleUser, Text: "again"},
		{Role: prompt.RoleAssistant, Text: "fresh"},
	}, s.Transcript())
}

func TestScannerReader(t *testing.T) {
	var out strings.Builder
	r := NewScannerReader(strings.NewReader("first\nsecond"), "> ", &out)

	line, err := r.ReadLine(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "first", line)
	line, err = r.ReadLine(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "second", line)
	_, err = r.ReadLine(context.Background())
	assert.ErrorIs(t, err, io.EOF)
	assert.Equal(t, "> > > ", out.String())
}
