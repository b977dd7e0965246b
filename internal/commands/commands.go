// Package commands implements the slash commands of an interactive session.
package commands

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Action represents the side-effect a command requests from the host.
type Action int

const (
	// ActionNone indicates no special action is needed.
	ActionNone Action = iota
	// ActionQuit requests the host to end the session.
	ActionQuit
)

// Candidate represents a completion suggestion.
type Candidate struct {
	Value       string
	Description string
}

// Result is the outcome of executing a command.
type Result struct {
	Output string
	Action Action
}

// SlashCommand defines the interface for a user-invokable command.
type SlashCommand interface {
	Name() string
	Description() string
	Usage() string // argument synopsis, empty when the command takes none
	Execute(ctx context.Context, args []string) (Result, error)
}

// Registry manages a collection of commands. All methods are safe for
// concurrent use.
type Registry struct {
	mu   sync.RWMutex
	cmds map[string]SlashCommand
	bare map[string]bool
}

// NewRegistry creates a new empty command registry.
func NewRegistry() *Registry {
	return &Registry{cmds: make(map[string]SlashCommand), bare: make(map[string]bool)}
}

// Register adds a command to the registry. Returns an error if a command
// with the same name is already registered or if cmd is nil.
func (r *Registry) Register(cmd SlashCommand) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if cmd == nil {
		return fmt.Errorf("cannot register nil command")
	}
	if _, exists := r.cmds[cmd.Name()]; exists {
		return fmt.Errorf("command already registered: %s", cmd.Name())
	}
	r.cmds[cmd.Name()] = cmd
	return nil
}

// AllowBare lets the named commands run without the leading slash.
func (r *Registry) AllowBare(names ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, n := range names {
		r.bare[n] = true
	}
}

// Get retrieves a command by name.
func (r *Registry) Get(name string) (SlashCommand, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	cmd, ok := r.cmds[name]
	return cmd, ok
}

// All returns all registered commands sorted by name.
func (r *Registry) All() []SlashCommand {
	r.mu.RLock()
	defer r.mu.RUnlock()

	cmds := make([]SlashCommand, 0, len(r.cmds))
	for _, cmd := range r.cmds {
		cmds = append(cmds, cmd)
	}
	sort.Slice(cmds, func(i, j int) bool {
		return cmds[i].Name() < cmds[j].Name()
	})
	return cmds
}

// Match returns completion candidates for commands whose names match the
// given prefix (case-insensitive, leading slash optional). Results are
// sorted by name.
func (r *Registry) Match(prefix string) []Candidate {
	r.mu.RLock()
	defer r.mu.RUnlock()

	lower := strings.ToLower(strings.TrimPrefix(prefix, "/"))
	var candidates []Candidate
	for _, cmd := range r.cmds {
		if strings.HasPrefix(strings.ToLower(cmd.Name()), lower) {
			candidates = append(candidates, Candidate{
				Value:       "/" + cmd.Name(),
				Description: cmd.Description(),
			})
		}
	}
	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].Value < candidates[j].Value
	})
	return candidates
}

// Dispatch runs the command named by line. handled is false when line is
// ordinary input: it neither starts with "/" nor consists of a bare command
// word alone. Arguments always need the slash form.
func (r *Registry) Dispatch(ctx context.Context, line string) (res Result, handled bool, err error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return Result{}, false, nil
	}
	name, slash := strings.CutPrefix(fields[0], "/")

	cmd, ok := r.Get(name)
	r.mu.RLock()
	bare := r.bare[name]
	r.mu.RUnlock()

	switch {
	case !ok && slash:
		return Result{}, true, fmt.Errorf("unknown command /%s (try /help)", name)
	case !ok, !slash && (!bare || len(fields) > 1):
		return Result{}, false, nil
	}
	res, err = cmd.Execute(ctx, fields[1:])
	return res, true, err
}
