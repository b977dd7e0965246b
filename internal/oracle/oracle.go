// Package oracle runs the external code-understanding process that performs
// all semantic analysis. The oracle is a black box: text in, text out.
package oracle

import "context"

// Oracle turns a prompt into a free-text reply.
type Oracle interface {
	Infer(ctx context.Context, prompt string) (string, error)
}

// Func adapts a plain function to the Oracle interface.
type Func func(ctx context.Context, prompt string) (string, error)

// Infer calls f.
func (f Func) Infer(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}
