package chat

import (
	"bufio"
	"context"
	"fmt"
	"io"
)

// ScannerReader reads lines from a plain stream, printing Prompt before
// each one when Out is set.
type ScannerReader struct {
	Prompt  string
	Out     io.Writer
	scanner *bufio.Scanner
}

// NewScannerReader reads lines from r.
func NewScannerReader(r io.Reader, prompt string, out io.Writer) *ScannerReader {
	s := bufio.NewScanner(r)
	s.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	return &ScannerReader{Prompt: prompt, Out: out, scanner: s}
}

// ReadLine implements LineReader.
func (r *ScannerReader) ReadLine(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if r.Out != nil && r.Prompt != "" {
		fmt.Fprint(r.Out, r.Prompt)
	}
	if !r.scanner.Scan() {
		if err := r.scanner.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	return r.scanner.Text(), nil
}
