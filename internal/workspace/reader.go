package workspace

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"unicode/utf8"

	"golang.org/x/sync/errgroup"

	"github.com/julianshen/codefsm/internal/logging"
)

// errNotUTF8 marks files that cannot be fed to the oracle as text.
var errNotUTF8 = errors.New("content is not valid UTF-8")

// FileRecord is the content of one workspace file.
type FileRecord struct {
	Path    string // slash-separated, relative to the workspace root
	Content string
}

// Skipped records a file that could not be read.
type Skipped struct {
	Path string // relative to the workspace root, like FileRecord.Path
	Err  error
}

// maxReadWorkers bounds concurrent file reads.
const maxReadWorkers = 8

// Read loads each path into a FileRecord with its path made relative to
// root. Unreadable files are logged and reported in the skipped list; they
// never fail the batch. Records keep the order of paths.
func Read(ctx context.Context, root string, paths []string) ([]FileRecord, []Skipped) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		absRoot = root
	}

	records := make([]*FileRecord, len(paths))
	failures := make([]error, len(paths))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxReadWorkers)
	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				failures[i] = err
				return nil
			}
			rec, err := readOne(absRoot, path)
			if err != nil {
				failures[i] = err
				return nil
			}
			records[i] = &rec
			return nil
		})
	}
	_ = g.Wait() // workers never return errors

	logger := logging.New("reader")
	var out []FileRecord
	var skipped []Skipped
	for i, rec := range records {
		if rec != nil {
			out = append(out, *rec)
			continue
		}
		logger.Warn("could not read file, skipping", "path", paths[i], "error", failures[i])
		skipped = append(skipped, Skipped{Path: relativePath(absRoot, paths[i]), Err: failures[i]})
	}
	return out, skipped
}

func readOne(absRoot, path string) (FileRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return FileRecord{}, err
	}
	if !utf8.Valid(data) {
		return FileRecord{}, fmt.Errorf("%s: %w", path, errNotUTF8)
	}
	return FileRecord{Path: relativePath(absRoot, path), Content: string(data)}, nil
}

// relativePath returns path relative to root in slash form, or path itself
// when it cannot be expressed relative to root.
func relativePath(root, path string) string {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(rel)
}
