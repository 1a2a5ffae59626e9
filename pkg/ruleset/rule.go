// Package ruleset holds rules indexed by head symbol and arity,
// ordered by declared priority then declaration order, per spec.md
// §3.3 and §4.4.
package ruleset

import "github.com/relang/symkernel/pkg/term"

// Rule is a named lhs→rhs rewrite with an optional guard, a priority,
// and an optional scope restriction (spec.md §3.3).
type Rule struct {
	// Name is the rule's stable identifier, used in traces, in
	// RuleRules, and for removal (Index.Remove).
	Name string

	// LHS is the pattern matched against a rewrite site.
	LHS term.Term

	// RHS is the replacement template.
	RHS term.Term

	// Guard is an optional boolean side-condition; nil means
	// unconditional.
	Guard term.Term

	// Priority orders candidates within a bucket, higher fires first.
	// Default 0; positive values are "early firing", negative values
	// are fallbacks (spec.md §3.3).
	Priority int64

	// Scope, if non-empty, restricts this rule to rewrite sites whose
	// immediately enclosing call has this head symbol (spec.md §4.4).
	// It is an optimization/safety hint: correctness never depends on
	// it, so a driver is free to ignore it.
	Scope string
}
