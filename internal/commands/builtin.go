package commands

import (
	"context"
	"fmt"
	"strings"
)

// --- quit ---

type quitCommand struct{}

// NewQuitCommand creates a command that ends the session.
func NewQuitCommand() SlashCommand {
	return &quitCommand{}
}

func (c *quitCommand) Name() string        { return "quit" }
func (c *quitCommand) Description() string { return "End the session" }
func (c *quitCommand) Usage() string       { return "" }

func (c *quitCommand) Execute(_ context.Context, _ []string) (Result, error) {
	return Result{Action: ActionQuit}, nil
}

// --- exit ---

type exitCommand struct{}

// NewExitCommand creates a command that ends the session. It behaves
// identically to quit.
func NewExitCommand() SlashCommand {
	return &exitCommand{}
}

func (c *exitCommand) Name() string        { return "exit" }
func (c *exitCommand) Description() string { return "End the session" }
func (c *exitCommand) Usage() string       { return "" }

func (c *exitCommand) Execute(_ context.Context, _ []string) (Result, error) {
	return Result{Action: ActionQuit}, nil
}

// --- clear ---

type clearCommand struct {
	onClear func()
}

// NewClearCommand creates a command that invokes onClear to forget the
// conversation so far.
func NewClearCommand(onClear func()) SlashCommand {
	return &clearCommand{onClear: onClear}
}

func (c *clearCommand) Name() string        { return "clear" }
func (c *clearCommand) Description() string { return "Forget the conversation so far" }
func (c *clearCommand) Usage() string       { return "" }

func (c *clearCommand) Execute(_ context.Context, _ []string) (Result, error) {
	if c.onClear != nil {
		c.onClear()
	}
	return Result{Output: "Conversation cleared."}, nil
}

// --- save ---

type saveCommand struct {
	onSave func(dir string) (string, error)
}

// NewSaveCommand creates a command that writes the latest diagram's
// artifacts. onSave receives the optional directory argument and returns
// the message to show.
func NewSaveCommand(onSave func(dir string) (string, error)) SlashCommand {
	return &saveCommand{onSave: onSave}
}

func (c *saveCommand) Name() string        { return "save" }
func (c *saveCommand) Description() string { return "Write the last diagram's artifacts" }
func (c *saveCommand) Usage() string       { return "[dir]" }

func (c *saveCommand) Execute(_ context.Context, args []string) (Result, error) {
	if len(args) > 1 {
		return Result{}, fmt.Errorf("save takes at most one directory")
	}
	dir := ""
	if len(args) == 1 {
		dir = args[0]
	}
	msg, err := c.onSave(dir)
	if err != nil {
		return Result{}, err
	}
	return Result{Output: msg}, nil
}

// --- files ---

type filesCommand struct {
	list func() []string
}

// NewFilesCommand creates a command that lists the files in the session's
// context.
func NewFilesCommand(list func() []string) SlashCommand {
	return &filesCommand{list: list}
}

func (c *filesCommand) Name() string        { return "files" }
func (c *filesCommand) Description() string { return "List the files under discussion" }
func (c *filesCommand) Usage() string       { return "" }

func (c *filesCommand) Execute(_ context.Context, _ []string) (Result, error) {
	paths := c.list()
	if len(paths) == 0 {
		return Result{Output: "No files loaded."}, nil
	}
	return Result{Output: fmt.Sprintf("%d files:\n  %s", len(paths), strings.Join(paths, "\n  "))}, nil
}

// --- diagram ---

type diagramCommand struct {
	last func() (string, bool)
}

// NewDiagramCommand creates a command that prints the latest diagram.
func NewDiagramCommand(last func() (string, bool)) SlashCommand {
	return &diagramCommand{last: last}
}

func (c *diagramCommand) Name() string        { return "diagram" }
func (c *diagramCommand) Description() string { return "Print the last diagram" }
func (c *diagramCommand) Usage() string       { return "" }

func (c *diagramCommand) Execute(_ context.Context, _ []string) (Result, error) {
	text, ok := c.last()
	if !ok {
		return Result{Output: "No diagram in the conversation yet."}, nil
	}
	return Result{Output: text}, nil
}

// --- help ---

type helpCommand struct {
	registry *Registry
}

// NewHelpCommand creates a command that lists all registered commands
// with their descriptions.
func NewHelpCommand(registry *Registry) SlashCommand {
	return &helpCommand{registry: registry}
}

func (c *helpCommand) Name() string        { return "help" }
func (c *helpCommand) Description() string { return "Show available commands" }
func (c *helpCommand) Usage() string       { return "" }

func (c *helpCommand) Execute(_ context.Context, _ []string) (Result, error) {
	cmds := c.registry.All()
	if len(cmds) == 0 {
		return Result{Output: "No commands available."}, nil
	}

	var b strings.Builder
	b.WriteString("Available commands:\n")
	for _, cmd := range cmds {
		name := "/" + cmd.Name()
		if u := cmd.Usage(); u != "" {
			name += " " + u
		}
		fmt.Fprintf(&b, "  %-12s %s\n", name, cmd.Description())
	}
	return Result{Output: strings.TrimRight(b.String(), "\n")}, nil
}
