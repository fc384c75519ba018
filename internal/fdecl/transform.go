package fdecl

import "gpuport/internal/rewrite"

// TempDeclTransform adapts RewriteTempDecls to the driver's Transform shape.
type TempDeclTransform struct{}

func (TempDeclTransform) Name() string { return "temps" }

// Fingerprint is empty: the transform carries no configuration.
func (TempDeclTransform) Fingerprint() string { return "" }

func (TempDeclTransform) RewriteLines(lines []string) rewrite.Result {
	out, n := RewriteTempDecls(lines)
	return rewrite.Result{Lines: out, Changed: n > 0, Rewritten: n}
}

// AllocCallTransform adapts RewriteAllocCalls to the driver's Transform shape.
type AllocCallTransform struct{}

func (AllocCallTransform) Name() string { return "allocs" }

func (AllocCallTransform) Fingerprint() string { return "" }

func (AllocCallTransform) RewriteLines(lines []string) rewrite.Result {
	out, n := RewriteAllocCalls(lines)
	return rewrite.Result{Lines: out, Changed: n > 0, Rewritten: n}
}
