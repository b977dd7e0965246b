package convert

import "text/template"

var goTmpl = template.Must(template.New("go").Parse(`// Code generated by codefsm from a state diagram. DO NOT EDIT.

package {{.Package}}

import "fmt"

// {{.Name}}State is a state of the {{.Name}} machine.
type {{.Name}}State string

const (
{{- range .States}}
	{{$.Name}}State{{.Ident}} {{$.Name}}State = {{printf "%q" .Label}}{{if .Description}} // {{.Description}}{{end}}
{{- end}}
)

// {{.Name}}Event triggers a transition of the {{.Name}} machine.
type {{.Name}}Event string

const (
{{- range .Events}}
	{{$.Name}}Event{{.Ident}} {{$.Name}}Event = {{printf "%q" .Label}}
{{- end}}
)

// {{.Name}} holds the current state and applies events to it.
type {{.Name}} struct {
	state {{.Name}}State
}

// New{{.Name}} returns a machine in its initial state.
func New{{.Name}}() *{{.Name}} {
	return &{{.Name}}{state: {{.Name}}State{{.Initial.Ident}}}
}

// State returns the current state.
func (m *{{.Name}}) State() {{.Name}}State {
	return m.state
}

// Done reports whether the machine is in a final state.
func (m *{{.Name}}) Done() bool {
	return {{range $i, $s := .Finals}}{{if $i}} || {{end}}m.state == {{$.Name}}State{{$s.Ident}}{{else}}false{{end}}
}

// Fire applies event and returns the new state. An event that is not
// permitted in the current state leaves it unchanged.
func (m *{{.Name}}) Fire(event {{.Name}}Event) ({{.Name}}State, error) {
	switch m.state {
{{- range .Table}}
	case {{$.Name}}State{{.From.Ident}}:
		switch event {
{{- range .Edges}}
		case {{$.Name}}Event{{.Event.Ident}}:
			m.state = {{$.Name}}State{{.To.Ident}}
			return m.state, nil
{{- end}}
		}
{{- end}}
	}
	return m.state, fmt.Errorf("{{.Package}}: event %q not permitted in state %q", event, m.state)
}
`))

var pythonTmpl = template.Must(template.New("python").Parse(`# Generated by codefsm from a state diagram.
from enum import Enum


class {{.Name}}State(Enum):
{{- range .States}}
    {{.Const}} = {{printf "%q" .Label}}{{if .Description}}  # {{.Description}}{{end}}
{{- end}}


class {{.Name}}Event(Enum):
{{- range .Events}}
    {{.Const}} = {{printf "%q" .Label}}
{{- else}}
    pass
{{- end}}


class {{.Name}}:
    """State machine generated from a Mermaid stateDiagram-v2."""

    _TRANSITIONS = {
{{- range .Table}}
        {{$.Name}}State.{{.From.Const}}: {
{{- range .Edges}}
            {{$.Name}}Event.{{.Event.Const}}: {{$.Name}}State.{{.To.Const}},
{{- end}}
        },
{{- end}}
    }

    _FINAL = frozenset([{{range $i, $s := .Finals}}{{if $i}}, {{end}}{{$.Name}}State.{{$s.Const}}{{end}}])

    def __init__(self):
        self.state = {{.Name}}State.{{.Initial.Const}}

    def fire(self, event):
        targets = self._TRANSITIONS.get(self.state, {})
        if event not in targets:
            raise ValueError(
                f"event {event.value!r} not permitted in state {self.state.value!r}"
            )
        self.state = targets[event]
        return self.state

    def done(self):
        return self.state in self._FINAL
`))
