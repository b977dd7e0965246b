package artifact

import (
	_ "embed"
	"html/template"
	"io"
)

//go:embed viewer.html.tmpl
var viewerSource string

var viewerTmpl = template.Must(template.New("viewer").Parse(viewerSource))

// MermaidScript is the script the viewer loads Mermaid from.
const MermaidScript = "https://cdn.jsdelivr.net/npm/mermaid@10/dist/mermaid.min.js"

type viewerData struct {
	Diagram       string
	MermaidScript string
}

// RenderViewer writes the standalone HTML viewer for diagram to w. The
// diagram is HTML-escaped; Mermaid reads it back as text content.
func RenderViewer(w io.Writer, diagram string) error {
	return viewerTmpl.Execute(w, viewerData{Diagram: diagram, MermaidScript: MermaidScript})
}
