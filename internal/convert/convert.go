// Package convert turns a parsed state diagram into source code.
package convert

import (
	"bytes"
	"encoding/json"
	"fmt"
	gofmt "go/format"
	"go/token"
	"strings"

	"github.com/julianshen/codefsm/internal/diagram"
)

// Formats lists the supported output formats.
var Formats = []string{"go", "python", "json"}

// Extension returns the file extension conventionally used for format.
func Extension(format string) string {
	switch format {
	case "go":
		return ".go"
	case "python":
		return ".py"
	default:
		return ".json"
	}
}

// Generate renders m as a state machine named name in the given format.
func Generate(m *diagram.Machine, name, format string) ([]byte, error) {
	if m == nil || len(m.States) == 0 {
		return nil, fmt.Errorf("convert: machine has no states")
	}
	model, err := newModel(m, name)
	if err != nil {
		return nil, err
	}

	switch format {
	case "go":
		var b bytes.Buffer
		if err := goTmpl.Execute(&b, model); err != nil {
			return nil, fmt.Errorf("rendering go: %w", err)
		}
		src, err := gofmt.Source(b.Bytes())
		if err != nil {
			return nil, fmt.Errorf("formatting go: %w", err)
		}
		return src, nil
	case "python":
		var b bytes.Buffer
		if err := pythonTmpl.Execute(&b, model); err != nil {
			return nil, fmt.Errorf("rendering python: %w", err)
		}
		return b.Bytes(), nil
	case "json":
		data, err := json.MarshalIndent(model.document(), "", "  ")
		if err != nil {
			return nil, fmt.Errorf("encoding json: %w", err)
		}
		return append(data, '\n'), nil
	default:
		return nil, fmt.Errorf("unsupported format %q (want one of %s)", format, strings.Join(Formats, ", "))
	}
}

// model is the template view of a machine.
type model struct {
	Name    string // exported Go/Python type name
	Package string
	Initial stateView
	States  []stateView
	Finals  []stateView
	Events  []eventView
	Table   []fromView
}

type stateView struct {
	Label       string // name as written in the diagram
	Ident       string // CamelCase identifier
	Const       string // UPPER_SNAKE identifier
	Description string
	Final       bool
}

type eventView struct {
	Label string
	Ident string
	Const string
}

type edgeView struct {
	Event eventView
	To    stateView
}

type fromView struct {
	From  stateView
	Edges []edgeView
}

func newModel(m *diagram.Machine, name string) (*model, error) {
	typeName := camel(name)
	if typeName == "" {
		return nil, fmt.Errorf("convert: %q is not a usable machine name", name)
	}

	final := make(map[string]bool)
	for _, f := range m.Final {
		final[f] = true
	}

	stateIdents := uniqueIdents(stateLabels(m))
	states := make(map[string]stateView, len(m.States))
	pkg := strings.ToLower(typeName)
	if token.IsKeyword(pkg) {
		pkg += "fsm"
	}
	md := &model{Name: typeName, Package: pkg}
	for _, s := range m.States {
		v := stateView{
			Label:       s.Name,
			Ident:       stateIdents[s.Name],
			Const:       upperSnake(stateIdents[s.Name]),
			Description: s.Description,
			Final:       final[s.Name],
		}
		states[s.Name] = v
		md.States = append(md.States, v)
		if v.Final {
			md.Finals = append(md.Finals, v)
		}
	}

	initial := m.States[0].Name
	if len(m.Initial) > 0 {
		initial = m.Initial[0]
	}
	md.Initial = states[initial]

	// Unlabelled transitions are triggered by a synthetic "to_<target>" event.
	eventLabel := func(t diagram.Transition) string {
		if t.Event != "" {
			return t.Event
		}
		return "to_" + t.To
	}
	var labels []string
	seen := make(map[string]bool)
	for _, t := range m.Transitions {
		if l := eventLabel(t); !seen[l] {
			seen[l] = true
			labels = append(labels, l)
		}
	}
	eventIdents := uniqueIdents(labels)
	events := make(map[string]eventView, len(labels))
	for _, l := range labels {
		v := eventView{Label: l, Ident: eventIdents[l], Const: upperSnake(eventIdents[l])}
		events[l] = v
		md.Events = append(md.Events, v)
	}

	rows := make(map[string]*fromView)
	for _, t := range m.Transitions {
		row, ok := rows[t.From]
		if !ok {
			row = &fromView{From: states[t.From]}
			rows[t.From] = row
		}
		ev := events[eventLabel(t)]
		if containsEvent(row.Edges, ev) {
			continue // first transition for an event wins
		}
		row.Edges = append(row.Edges, edgeView{Event: ev, To: states[t.To]})
	}
	for _, s := range m.States {
		if row, ok := rows[s.Name]; ok {
			md.Table = append(md.Table, *row)
		}
	}
	return md, nil
}

func containsEvent(edges []edgeView, ev eventView) bool {
	for _, e := range edges {
		if e.Event.Label == ev.Label {
			return true
		}
	}
	return false
}

func stateLabels(m *diagram.Machine) []string {
	labels := make([]string, len(m.States))
	for i, s := range m.States {
		labels[i] = s.Name
	}
	return labels
}

type jsonState struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Final       bool   `json:"final,omitempty"`
}

type jsonTransition struct {
	From  string `json:"from"`
	To    string `json:"to"`
	Event string `json:"event"`
}

type jsonMachine struct {
	Name        string           `json:"name"`
	Initial     string           `json:"initial"`
	States      []jsonState      `json:"states"`
	Events      []string         `json:"events"`
	Transitions []jsonTransition `json:"transitions"`
}

func (md *model) document() jsonMachine {
	doc := jsonMachine{Name: md.Name, Initial: md.Initial.Label}
	for _, s := range md.States {
		doc.States = append(doc.States, jsonState{Name: s.Label, Description: s.Description, Final: s.Final})
	}
	for _, e := range md.Events {
		doc.Events = append(doc.Events, e.Label)
	}
	for _, row := range md.Table {
		for _, e := range row.Edges {
			doc.Transitions = append(doc.Transitions, jsonTransition{From: row.From.Label, To: e.To.Label, Event: e.Event.Label})
		}
	}
	return doc
}
