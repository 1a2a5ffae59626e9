// Package pattern implements one-sided unification of pattern terms
// (plain pattern variables and sequence/rest variables) against
// subject terms, per spec.md §4.2.
package pattern

import "github.com/relang/symkernel/pkg/term"

// VarSym and VarRestSym are the head symbols recognized as pattern
// forms: Call(Sym("Var"), [Str(name)]) and Call(Sym("VarRest"),
// [Str(name)]), per spec.md §3.2.
const (
	VarSym     = "Var"
	VarRestSym = "VarRest"

	// Wildcard is the reserved name that matches without capturing a
	// binding, for both Var and VarRest.
	Wildcard = "_"
)

// Bindings maps pattern-variable names to either a single captured
// term or a captured sequence of terms (for VarRest). Bindings are
// owned exclusively by the match attempt that produced them and are
// cheap to copy: cloning a Bindings is a shallow copy of its two maps'
// headers plus an explicit copy-on-write of the maps themselves, so
// sibling branches of the sequence matcher's backtracking never see
// each other's tentative bindings (spec.md §5, "Bindings are owned
// exclusively by the current match attempt").
type Bindings struct {
	single map[string]term.Term
	seq    map[string][]term.Term
}

// NewBindings returns an empty binding set.
func NewBindings() Bindings {
	return Bindings{}
}

// Get returns the single-term binding for name, if any.
func (b Bindings) Get(name string) (term.Term, bool) {
	if b.single == nil {
		return nil, false
	}
	t, ok := b.single[name]
	return t, ok
}

// GetSeq returns the sequence binding for name, if any.
func (b Bindings) GetSeq(name string) ([]term.Term, bool) {
	if b.seq == nil {
		return nil, false
	}
	s, ok := b.seq[name]
	return s, ok
}

// Names returns all bound single-term variable names.
func (b Bindings) Names() []string {
	names := make([]string, 0, len(b.single))
	for k := range b.single {
		names = append(names, k)
	}
	return names
}

// SeqNames returns all bound sequence-variable names.
func (b Bindings) SeqNames() []string {
	names := make([]string, 0, len(b.seq))
	for k := range b.seq {
		names = append(names, k)
	}
	return names
}

// withBound returns a copy of b with name bound to t. The copy is a
// fresh map so callers backtracking out of a failed branch never
// observe the tentative binding.
func (b Bindings) withBound(name string, t term.Term) Bindings {
	nb := Bindings{single: make(map[string]term.Term, len(b.single)+1), seq: b.seq}
	for k, v := range b.single {
		nb.single[k] = v
	}
	nb.single[name] = t
	return nb
}

// withBoundSeq returns a copy of b with name bound to the sequence s.
func (b Bindings) withBoundSeq(name string, s []term.Term) Bindings {
	nb := Bindings{single: b.single, seq: make(map[string][]term.Term, len(b.seq)+1)}
	for k, v := range b.seq {
		nb.seq[k] = v
	}
	nb.seq[name] = s
	return nb
}

// IsVar reports whether t is a simple pattern variable, returning its
// name.
func IsVar(t term.Term) (string, bool) {
	c, ok := t.(*term.Call)
	if !ok || len(c.Args) != 1 {
		return "", false
	}
	sym, ok := c.HeadSym()
	if !ok || sym != VarSym {
		return "", false
	}
	name, ok := c.Args[0].(term.Str)
	if !ok {
		return "", false
	}
	return string(name), true
}

// IsVarRest reports whether t is a sequence pattern variable, returning
// its name.
func IsVarRest(t term.Term) (string, bool) {
	c, ok := t.(*term.Call)
	if !ok || len(c.Args) != 1 {
		return "", false
	}
	sym, ok := c.HeadSym()
	if !ok || sym != VarRestSym {
		return "", false
	}
	name, ok := c.Args[0].(term.Str)
	if !ok {
		return "", false
	}
	return string(name), true
}

func seqEqual(a, b []term.Term) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !term.Equal(a[i], b[i]) {
			return false
		}
	}
	return true
}
