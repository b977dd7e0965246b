package commands

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuitAndExitRequestQuit(t *testing.T) {
	for _, cmd := range []SlashCommand{NewQuitCommand(), NewExitCommand()} {
		assert.NotEmpty(t, cmd.Description())
		result, err := cmd.Execute(context.Background(), nil)
		require.NoError(t, err)
		assert.Equal(t, ActionQuit, result.Action, cmd.Name())
	}
}

func TestClearCommandCallsCallback(t *testing.T) {
	called := false
	cmd := NewClearCommand(func() { called = true })
	assert.Equal(t, "clear", cmd.Name())

	result, err := cmd.Execute(context.Background(), nil)
	require.NoError(t, err)
	assert.True(t, called)
	assert.Equal(t, ActionNone, result.Action)
	assert.Equal(t, "Conversation cleared.", result.Output)
}

func TestSaveCommand(t *testing.T) {
	var got []string
	cmd := NewSaveCommand(func(dir string) (string, error) {
		got = append(got, dir)
		return "saved to " + dir, nil
	})
	assert.Equal(t, "[dir]", cmd.Usage())

	result, err := cmd.Execute(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, "saved to ", result.Output)

	result, err = cmd.Execute(context.Background(), []string{"out"})
	require.NoError(t, err)
	assert.Equal(t, "saved to out", result.Output)
	assert.Equal(t, []string{"", "out"}, got)

	_, err = cmd.Execute(context.Background(), []string{"a", "b"})
	assert.Error(t, err)
}

func TestSaveCommandError(t *testing.T) {
	cmd := NewSaveCommand(func(string) (string, error) { return "", errors.New("disk full") })

	_, err := cmd.Execute(context.Background(), nil)
	assert.EqualError(t, err, "disk full")
}

func TestFilesCommand(t *testing.T) {
	cmd := NewFilesCommand(func() []string { return []string{"a.go", "b/c.py"} })

	result, err := cmd.Execute(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, "2 files:\n  a.go\n  b/c.py", result.Output)

	empty := NewFilesCommand(func() []string { return nil })
	result, err = empty.Execute(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, "No files loaded.", result.Output)
}

func TestDiagramCommand(t *testing.T) {
	cmd := NewDiagramCommand(func() (string, bool) { return "stateDiagram-v2\n    [*] --> A", true })
	result, err := cmd.Execute(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, "stateDiagram-v2\n    [*] --> A", result.Output)

	none := NewDiagramCommand(func() (string, bool) { return "", false })
	result, err = none.Execute(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, "No diagram in the conversation yet.", result.Output)
}

func TestHelpCommandListsRegistered(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.Register(NewHelpCommand(reg)))
	require.NoError(t, reg.Register(NewQuitCommand()))
	require.NoError(t, reg.Register(NewSaveCommand(func(string) (string, error) { return "", nil })))

	cmd, ok := reg.Get("help")
	require.True(t, ok)
	result, err := cmd.Execute(context.Background(), nil)
	require.NoError(t, err)
	assert.Contains(t, result.Output, "Available commands:")
	assert.Contains(t, result.Output, "/help")
	assert.Contains(t, result.Output, "/quit")
	assert.Contains(t, result.Output, "/save [dir]")
	assert.Contains(t, result.Output, "Write the last diagram's artifacts")
}

func TestHelpCommandEmptyRegistry(t *testing.T) {
	result, err := NewHelpCommand(NewRegistry()).Execute(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, "No commands available.", result.Output)
}
