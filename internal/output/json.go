package output

import (
	"encoding/json"

	"github.com/julianshen/codefsm/internal/store"
)

// JSONFormatter outputs RunSummary as JSON.
type JSONFormatter struct{}

// NewJSONFormatter creates a new JSONFormatter.
func NewJSONFormatter() *JSONFormatter {
	return &JSONFormatter{}
}

// Format marshals the RunSummary as indented JSON.
func (f *JSONFormatter) Format(result *RunSummary) ([]byte, error) {
	return json.MarshalIndent(result, "", "  ")
}

// FormatHistory marshals the runs as an indented JSON array.
func (f *JSONFormatter) FormatHistory(runs []store.Run) ([]byte, error) {
	if runs == nil {
		runs = []store.Run{}
	}
	return json.MarshalIndent(runs, "", "  ")
}
