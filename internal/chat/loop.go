package chat

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/julianshen/codefsm/internal/artifact"
	"github.com/julianshen/codefsm/internal/commands"
)

// LineReader yields one line of user input per call and io.EOF when the
// input is exhausted.
type LineReader interface {
	ReadLine(ctx context.Context) (string, error)
}

// Loop configures the read-eval-print loop around a Session.
type Loop struct {
	Session  *Session
	In       LineReader
	Out      io.Writer
	OutDir   string              // default target of "save"
	Render   func(string) string // optional reply formatter
	Busy     func(ctx context.Context, work func(ctx context.Context) error) error
	Commands *commands.Registry // nil means DefaultCommands
}

// DefaultCommands returns the session commands: /help, /clear, /files,
// /diagram, /save [dir], /exit and /quit. A line that is just exit, quit
// or save also works without the slash.
func (l *Loop) DefaultCommands() *commands.Registry {
	reg := commands.NewRegistry()
	for _, c := range []commands.SlashCommand{
		commands.NewHelpCommand(reg),
		commands.NewExitCommand(),
		commands.NewQuitCommand(),
		commands.NewClearCommand(l.Session.Reset),
		commands.NewFilesCommand(l.Session.Paths),
		commands.NewDiagramCommand(func() (string, bool) {
			m, ok := l.Session.LastDiagram()
			return m.Text, ok
		}),
		commands.NewSaveCommand(l.save),
	} {
		_ = reg.Register(c)
	}
	reg.AllowBare("exit", "quit", "save")
	return reg
}

// Run reads lines until EOF or a quit command. Oracle and command failures
// are printed and the loop continues; only input errors and cancellation
// end it early.
func (l *Loop) Run(ctx context.Context) error {
	if l.Commands == nil {
		l.Commands = l.DefaultCommands()
	}
	fmt.Fprintf(l.Out, "Chatting about %d files. Type /help for commands, \"exit\" to quit.\n", len(l.Session.Files))

	for {
		line, err := l.In.ReadLine(ctx)
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		res, handled, err := l.Commands.Dispatch(ctx, line)
		if handled {
			if err != nil {
				fmt.Fprintf(l.Out, "Error: %v\n", err)
				continue
			}
			if res.Output != "" {
				fmt.Fprintln(l.Out, res.Output)
			}
			if res.Action == commands.ActionQuit {
				return nil
			}
			continue
		}

		var reply string
		turn := func(ctx context.Context) error {
			var err error
			reply, err = l.Session.Turn(ctx, line)
			return err
		}
		if l.Busy != nil {
			err = l.Busy(ctx, turn)
		} else {
			err = turn(ctx)
		}
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			fmt.Fprintf(l.Out, "Error: %v\n", err)
			continue
		}

		if l.Render != nil {
			reply = l.Render(reply)
		}
		fmt.Fprintln(l.Out, reply)
	}
}

func (l *Loop) save(dir string) (string, error) {
	if dir == "" {
		dir = l.OutDir
	}
	if dir == "" {
		return "", errors.New("no output directory given")
	}
	m, ok := l.Session.LastDiagram()
	if !ok {
		return "No diagram in the conversation yet.", nil
	}

	paths, err := artifact.Write(artifact.Result{
		Diagram:  m.Text,
		Analysis: l.Session.LastReply(),
		Files:    l.Session.Paths(),
	}, dir)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("Saved %s, %s and %s", paths.Diagram, paths.Report, paths.Viewer), nil
}
