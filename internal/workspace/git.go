package workspace

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// ChangedFiles lists the workspace-relative paths that differ from rangeSpec
// (default "HEAD"). Untracked files are included only when comparing the
// working tree against HEAD. Deleted files are left for Filter to drop.
func ChangedFiles(ctx context.Context, root, rangeSpec string) ([]string, error) {
	absRoot, err := checkRoot(root)
	if err != nil {
		return nil, err
	}
	if rangeSpec == "" {
		rangeSpec = "HEAD"
	}

	diffed, err := gitLines(ctx, absRoot, "diff", "--name-only", "--relative", rangeSpec)
	if err != nil {
		return nil, err
	}
	var untracked []string
	if rangeSpec == "HEAD" {
		untracked, err = gitLines(ctx, absRoot, "ls-files", "--others", "--exclude-standard")
		if err != nil {
			return nil, err
		}
	}

	seen := make(map[string]bool)
	var paths []string
	for _, p := range append(diffed, untracked...) {
		if !seen[p] {
			seen[p] = true
			paths = append(paths, p)
		}
	}
	return paths, nil
}

// gitLines runs git in dir and returns the non-empty output lines.
func gitLines(ctx context.Context, dir string, args ...string) ([]string, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = dir
	out, err := cmd.Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return nil, fmt.Errorf("git %s: %s", args[0], strings.TrimSpace(string(exitErr.Stderr)))
		}
		return nil, fmt.Errorf("git %s: %w", args[0], err)
	}

	var lines []string
	scanner := bufio.NewScanner(bytes.NewReader(out))
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			lines = append(lines, line)
		}
	}
	return lines, scanner.Err()
}
