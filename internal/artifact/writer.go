// Package artifact persists the products of one analysis run.
package artifact

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// File names written into the output directory.
const (
	DiagramFile = "state-machine.mmd"
	ReportFile  = "analysis.txt"
	ViewerFile  = "view-diagram.html"
)

// ErrArtifactWrite is returned when an output file cannot be written.
var ErrArtifactWrite = errors.New("artifact write failed")

// Result is what an analysis run hands to the writer.
type Result struct {
	Diagram  string   // extracted diagram text
	Analysis string   // the oracle's full reply
	Files    []string // analyzed paths, relative to the workspace
}

// Paths holds the locations of the written artifacts.
type Paths struct {
	Diagram string `json:"diagram"`
	Report  string `json:"report"`
	Viewer  string `json:"viewer"`
}

// Write creates outDir if needed and writes the diagram, the report and the
// viewer, in that order. It stops at the first failure; files already
// written are left in place.
func Write(res Result, outDir string) (Paths, error) {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return Paths{}, fmt.Errorf("%w: creating %s: %w", ErrArtifactWrite, outDir, err)
	}

	paths := Paths{
		Diagram: filepath.Join(outDir, DiagramFile),
		Report:  filepath.Join(outDir, ReportFile),
		Viewer:  filepath.Join(outDir, ViewerFile),
	}

	if err := writeFile(paths.Diagram, []byte(res.Diagram)); err != nil {
		return paths, err
	}
	if err := writeFile(paths.Report, []byte(Report(res.Files, res.Analysis))); err != nil {
		return paths, err
	}

	var viewer bytes.Buffer
	if err := RenderViewer(&viewer, res.Diagram); err != nil {
		return paths, fmt.Errorf("%w: rendering viewer: %w", ErrArtifactWrite, err)
	}
	if err := writeFile(paths.Viewer, viewer.Bytes()); err != nil {
		return paths, err
	}
	return paths, nil
}

// Report formats the combined plain-text report.
func Report(files []string, analysis string) string {
	return "Files Analyzed:\n" + strings.Join(files, "\n") + "\n\nAnalysis:\n" + analysis
}

// writeFile replaces path atomically: the data goes to a sibling temp file
// that is renamed over the target, so readers never see a partial file.
func writeFile(path string, data []byte) error {
	dir, base := filepath.Split(path)
	if dir == "" {
		dir = "."
	}
	tmp, err := os.CreateTemp(dir, "."+base+"-*.tmp")
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrArtifactWrite, path, err)
	}
	tmpPath := tmp.Name()

	_, writeErr := tmp.Write(data)
	closeErr := tmp.Close()
	err = errors.Join(writeErr, closeErr)
	if err == nil {
		err = os.Chmod(tmpPath, 0o644)
	}
	if err == nil {
		err = os.Rename(tmpPath, path)
	}
	if err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("%w: %s: %w", ErrArtifactWrite, path, err)
	}
	return nil
}
