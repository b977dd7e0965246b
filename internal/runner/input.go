package runner

import (
	"fmt"
	"io"
	"os"
	"strings"
)

// ResolveFocus determines the optional focus hint of an analysis.
// Priority: focusFlag > focusFile > fallback. A focusFile of "-" reads
// stdin. An empty result is valid and means no focus.
func ResolveFocus(focusFlag, focusFile string, stdin io.Reader, fallback string) (string, error) {
	if text := strings.TrimSpace(focusFlag); text != "" {
		return text, nil
	}

	if focusFile == "-" {
		if stdin == nil {
			return "", fmt.Errorf("reading focus from stdin: no stdin available")
		}
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("reading stdin: %w", err)
		}
		return strings.TrimSpace(string(data)), nil
	}

	if focusFile != "" {
		data, err := os.ReadFile(focusFile)
		if err != nil {
			return "", fmt.Errorf("reading focus file: %w", err)
		}
		text := strings.TrimSpace(string(data))
		if text == "" {
			return "", fmt.Errorf("focus file is empty: %s", focusFile)
		}
		return text, nil
	}

	return strings.TrimSpace(fallback), nil
}

// SplitList splits comma-separated flag values, trimming blanks.
func SplitList(values []string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
