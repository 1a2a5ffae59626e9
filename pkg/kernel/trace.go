package kernel

import (
	"fmt"

	"github.com/relang/symkernel/pkg/term"
)

// TraceStep records one rewrite: the step index in the normalization
// run, the firing rule's name ("<prim>" for a primitive fold), the
// path to the rewrite site as a list of argument indices from the
// root (design note §9), and the before/after sub-terms.
type TraceStep struct {
	Index    int
	RuleName string
	Path     []int
	Before   term.Term
	After    term.Term
}

// String renders a trace step for host diagnostics. This is the
// "trace-to-text" supplement noted in SPEC_FULL.md: spec.md requires
// the structured record but never forbids a human-readable form, and
// every projector-facing file in the pack (e.g. the teacher's
// wfs_trace.go) pairs a structured trace with a renderer.
func (s TraceStep) String() string {
	return fmt.Sprintf("#%d %s @%v: %s -> %s", s.Index, s.RuleName, s.Path, term.Show(s.Before), term.Show(s.After))
}

func clonePath(path []int) []int {
	if len(path) == 0 {
		return nil
	}
	cp := make([]int, len(path))
	copy(cp, path)
	return cp
}
