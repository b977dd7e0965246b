package diagram

import (
	"fmt"
	"regexp"
	"strings"
)

// Pseudo is the Mermaid start/end pseudo-state.
const Pseudo = "[*]"

// Machine is the flattened state machine described by a diagram.
type Machine struct {
	States      []State      // in order of first appearance
	Transitions []Transition // in diagram order
	Initial     []string     // targets of top-level [*] --> X
	Final       []string     // sources of top-level X --> [*]
}

// State is a named state with an optional description.
type State struct {
	Name        string
	Description string
}

// Transition is an edge between two states, optionally labelled with the
// event that triggers it.
type Transition struct {
	From  string
	To    string
	Event string
}

// Events returns the distinct transition labels in diagram order.
func (m *Machine) Events() []string {
	seen := make(map[string]bool)
	var events []string
	for _, t := range m.Transitions {
		if t.Event == "" || seen[t.Event] {
			continue
		}
		seen[t.Event] = true
		events = append(events, t.Event)
	}
	return events
}

var (
	transitionRe = regexp.MustCompile(`^(\S+)\s*-->\s*([^:\s]+)\s*(?::\s*(.*))?$`)
	aliasRe      = regexp.MustCompile(`^state\s+"([^"]*)"\s+as\s+(\S+?)\s*(\{)?$`)
	compositeRe  = regexp.MustCompile(`^state\s+(\S+?)\s*(<<\w+>>)?\s*(\{)?$`)
	describeRe   = regexp.MustCompile(`^([^\s:]+)\s*:\s*(.*)$`)
	bareStateRe  = regexp.MustCompile(`^[\w.-]+$`)
)

// Parse reads stateDiagram-v2 text into a Machine. Composite states are
// flattened: their inner states and transitions join the top level, and
// [*] edges inside them are dropped. Notes, styling and concurrency
// separators are ignored.
func Parse(text string) (*Machine, error) {
	p := &parser{m: &Machine{}, index: make(map[string]int)}

	sawHeader := false
	inNote := false
	for i, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(raw)
		lineNo := i + 1

		if inNote {
			if line == "end note" {
				inNote = false
			}
			continue
		}
		if line == "" || strings.HasPrefix(line, "%%") {
			continue
		}
		if !sawHeader {
			if line != Keyword {
				return nil, fmt.Errorf("line %d: expected %q header, got %q", lineNo, Keyword, line)
			}
			sawHeader = true
			continue
		}
		if err := p.statement(line, &inNote); err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
	}

	if !sawHeader {
		return nil, fmt.Errorf("missing %q header", Keyword)
	}
	if p.depth != 0 {
		return nil, fmt.Errorf("unclosed composite state")
	}
	if len(p.m.States) == 0 {
		return nil, fmt.Errorf("diagram declares no states")
	}
	return p.m, nil
}

type parser struct {
	m     *Machine
	index map[string]int
	depth int
}

func (p *parser) statement(line string, inNote *bool) error {
	switch {
	case line == "}":
		if p.depth == 0 {
			return fmt.Errorf("unbalanced %q", "}")
		}
		p.depth--
		return nil
	case line == "--",
		strings.HasPrefix(line, "direction "),
		strings.HasPrefix(line, "classDef "),
		strings.HasPrefix(line, "class "),
		strings.HasPrefix(line, "style "),
		strings.HasPrefix(line, "accTitle"),
		strings.HasPrefix(line, "accDescr"):
		return nil
	case strings.HasPrefix(line, "note "):
		// Single-line notes carry their text after a colon.
		if !strings.Contains(line, ":") {
			*inNote = true
		}
		return nil
	}

	if m := transitionRe.FindStringSubmatch(line); m != nil {
		p.transition(stripClass(m[1]), stripClass(m[2]), strings.TrimSpace(m[3]))
		return nil
	}
	if m := aliasRe.FindStringSubmatch(line); m != nil {
		p.describe(m[2], m[1])
		if m[3] != "" {
			p.depth++
		}
		return nil
	}
	if m := compositeRe.FindStringSubmatch(line); m != nil {
		p.state(m[1])
		if m[3] != "" {
			p.depth++
		}
		return nil
	}
	if name := stripClass(line); bareStateRe.MatchString(name) {
		p.state(name)
		return nil
	}
	if m := describeRe.FindStringSubmatch(line); m != nil {
		p.describe(m[1], strings.TrimSpace(m[2]))
		return nil
	}
	return fmt.Errorf("unrecognized statement %q", line)
}

func (p *parser) transition(from, to, event string) {
	switch {
	case from == Pseudo && to == Pseudo:
		return
	case from == Pseudo:
		p.state(to)
		if p.depth == 0 {
			p.m.Initial = appendUnique(p.m.Initial, to)
		}
		return
	case to == Pseudo:
		p.state(from)
		if p.depth == 0 {
			p.m.Final = appendUnique(p.m.Final, from)
		}
		return
	}
	p.state(from)
	p.state(to)
	p.m.Transitions = append(p.m.Transitions, Transition{From: from, To: to, Event: event})
}

func (p *parser) state(name string) int {
	if i, ok := p.index[name]; ok {
		return i
	}
	p.index[name] = len(p.m.States)
	p.m.States = append(p.m.States, State{Name: name})
	return p.index[name]
}

func (p *parser) describe(name, text string) {
	i := p.state(name)
	if text == "" {
		return
	}
	if d := p.m.States[i].Description; d != "" {
		text = d + " " + text
	}
	p.m.States[i].Description = text
}

// stripClass drops a ":::className" styling suffix.
func stripClass(name string) string {
	if i := strings.Index(name, ":::"); i >= 0 {
		return name[:i]
	}
	return name
}

func appendUnique(list []string, s string) []string {
	for _, v := range list {
		if v == s {
			return list
		}
	}
	return append(list, s)
}
