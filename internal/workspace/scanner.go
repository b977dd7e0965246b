// Package workspace discovers and loads the source files of the project under
// analysis.
package workspace

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/sourcegraph/conc/pool"

	"github.com/julianshen/codefsm/internal/logging"
)

// ErrWorkspaceNotFound is returned when the workspace root does not exist or
// is not a directory.
var ErrWorkspaceNotFound = errors.New("workspace not found")

// ScanOptions controls which files Scan selects.
type ScanOptions struct {
	Include     []string // slash-separated globs relative to the root; "**" supported
	Exclude     []string // applied to the union of include matches; wins over Include
	MaxFileSize int64    // inclusive ceiling in bytes; <= 0 disables it
}

// maxPatternWorkers bounds how many include patterns are globbed at once.
const maxPatternWorkers = 4

// Scan returns the absolute paths of regular files under root that match at
// least one include pattern, match no exclude pattern, and are no larger than
// MaxFileSize. Paths are unique and ordered by their path relative to root.
func Scan(ctx context.Context, root string, opts ScanOptions) ([]string, error) {
	absRoot, err := checkRoot(root)
	if err != nil {
		return nil, err
	}
	if err := validatePatterns(opts); err != nil {
		return nil, err
	}

	fsys := os.DirFS(absRoot)
	p := pool.NewWithResults[[]string]().
		WithContext(ctx).
		WithMaxGoroutines(maxPatternWorkers)
	for _, pattern := range opts.Include {
		pattern := pattern
		p.Go(func(ctx context.Context) ([]string, error) {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			matches, err := doublestar.Glob(fsys, pattern, doublestar.WithFilesOnly())
			if err != nil {
				return nil, fmt.Errorf("include pattern %q: %w", pattern, err)
			}
			return matches, nil
		})
	}
	perPattern, err := p.Wait()
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", absRoot, err)
	}

	seen := make(map[string]bool)
	var rels []string
	for _, matches := range perPattern {
		for _, rel := range matches {
			if seen[rel] {
				continue
			}
			seen[rel] = true
			rels = append(rels, rel)
		}
	}
	sort.Strings(rels)

	return filterRelative(absRoot, rels, opts), nil
}

// Filter applies the exclude rules and the size ceiling of opts to paths
// given relative to root, keeping only those that also match an include
// pattern. Order is preserved. Used for file sets that did not come from
// Scan, such as the files changed in a git range.
func Filter(root string, rels []string, opts ScanOptions) ([]string, error) {
	absRoot, err := checkRoot(root)
	if err != nil {
		return nil, err
	}
	if err := validatePatterns(opts); err != nil {
		return nil, err
	}

	var included []string
	for _, rel := range rels {
		rel = filepath.ToSlash(rel)
		if matchesAny(opts.Include, rel) {
			included = append(included, rel)
		}
	}
	return filterRelative(absRoot, included, opts), nil
}

// ResolveExplicit turns an explicit list of workspace-relative paths into
// absolute paths, keeping the given order. No pattern or size rules apply.
func ResolveExplicit(root string, rels []string) ([]string, error) {
	absRoot, err := checkRoot(root)
	if err != nil {
		return nil, err
	}
	paths := make([]string, 0, len(rels))
	for _, rel := range rels {
		if filepath.IsAbs(rel) {
			paths = append(paths, filepath.Clean(rel))
			continue
		}
		paths = append(paths, filepath.Join(absRoot, filepath.FromSlash(rel)))
	}
	return paths, nil
}

// filterRelative drops excluded, oversized, unreadable and non-regular
// entries and returns the survivors as absolute paths.
func filterRelative(absRoot string, rels []string, opts ScanOptions) []string {
	logger := logging.New("scanner")

	var out []string
	for _, rel := range rels {
		if matchesAny(opts.Exclude, rel) {
			continue
		}

		abs := filepath.Join(absRoot, filepath.FromSlash(rel))
		info, err := os.Stat(abs)
		if err != nil {
			logger.Debug("skipping file without status", "path", rel, "error", err)
			continue
		}
		if !info.Mode().IsRegular() {
			continue
		}
		if opts.MaxFileSize > 0 && info.Size() > opts.MaxFileSize {
			logger.Debug("skipping oversized file", "path", rel, "size", info.Size(), "max", opts.MaxFileSize)
			continue
		}
		out = append(out, abs)
	}
	return out
}

// checkRoot resolves root to an absolute directory path.
func checkRoot(root string) (string, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return "", fmt.Errorf("resolving workspace %s: %w", root, err)
	}
	info, err := os.Stat(absRoot)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("%w: %s", ErrWorkspaceNotFound, root)
		}
		return "", fmt.Errorf("%w: %s: %v", ErrWorkspaceNotFound, root, err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("%w: %s is not a directory", ErrWorkspaceNotFound, root)
	}
	return absRoot, nil
}

func validatePatterns(opts ScanOptions) error {
	for _, list := range [][]string{opts.Include, opts.Exclude} {
		for _, pattern := range list {
			if !doublestar.ValidatePattern(pattern) {
				return fmt.Errorf("invalid glob pattern %q", pattern)
			}
		}
	}
	return nil
}

// matchesAny reports whether the slash-separated relative path matches any
// of the patterns.
func matchesAny(patterns []string, rel string) bool {
	for _, pattern := range patterns {
		if ok, err := doublestar.Match(pattern, rel); err == nil && ok {
			return true
		}
	}
	return false
}
