package pattern

import (
	"fmt"

	"github.com/relang/symkernel/pkg/term"
)

// Match attempts to unify pattern against subject, returning the
// resulting bindings and true on success, or a zero Bindings and false
// on "no match" — Match never returns an error for ordinary mismatch;
// see Validate for the one structural-error case (a standalone
// VarRest), which is checked once at rule-build time rather than on
// every match attempt.
func Match(pattern, subject term.Term) (Bindings, bool) {
	return matchTerm(pattern, subject, NewBindings())
}

func matchTerm(p, s term.Term, b Bindings) (Bindings, bool) {
	if name, ok := IsVar(p); ok {
		if name == Wildcard {
			return b, true
		}
		if existing, had := b.Get(name); had {
			if term.Equal(existing, s) {
				return b, true
			}
			return b, false
		}
		return b.withBound(name, s), true
	}

	switch pv := p.(type) {
	case term.Num:
		sv, ok := s.(term.Num)
		return b, ok && sv == pv
	case term.Str:
		sv, ok := s.(term.Str)
		return b, ok && sv == pv
	case term.Sym:
		sv, ok := s.(term.Sym)
		return b, ok && sv == pv
	case *term.Call:
		sc, ok := s.(*term.Call)
		if !ok {
			return b, false
		}
		nb, ok := matchTerm(pv.Head, sc.Head, b)
		if !ok {
			return b, false
		}
		return matchArgs(pv.Args, sc.Args, nb)
	default:
		return b, false
	}
}

// matchArgs is the sequence matcher (spec.md §4.2): non-VarRest
// pattern entries consume exactly one subject element; a VarRest entry
// backtracks over contiguous spans of the remaining subjects, starting
// from the empty span and extending it by one element on each retry
// until the pattern remainder matches the subject remainder, so the
// shortest workable span is the one bound.
func matchArgs(pargs, sargs []term.Term, b Bindings) (Bindings, bool) {
	if len(pargs) == 0 {
		if len(sargs) == 0 {
			return b, true
		}
		return b, false
	}

	head := pargs[0]
	if name, ok := IsVarRest(head); ok {
		for k := 0; k <= len(sargs); k++ {
			span := sargs[:k]
			nb := b
			ok := true
			if name != Wildcard {
				if existing, had := nb.GetSeq(name); had {
					if !seqEqual(existing, span) {
						ok = false
					}
				} else {
					nb = nb.withBoundSeq(name, span)
				}
			}
			if ok {
				if rb, matched := matchArgs(pargs[1:], sargs[k:], nb); matched {
					return rb, true
				}
			}
		}
		return b, false
	}

	if len(sargs) == 0 {
		return b, false
	}
	nb, ok := matchTerm(head, sargs[0], b)
	if !ok {
		return b, false
	}
	return matchArgs(pargs[1:], sargs[1:], nb)
}

// Validate walks a pattern term and reports an error if a VarRest form
// appears anywhere other than directly inside a Call's argument list —
// the one structural error spec.md §4.2/§7 assigns to the matcher
// rather than to ordinary match failure. It is meant to be invoked once
// per rule at rule-index build time (component D), not per match
// attempt.
func Validate(p term.Term) error {
	return validate(p, false)
}

// validate recursively checks p. inArgList is true when p is itself
// one element of some enclosing Call's argument list — the only
// position where VarRest is legal.
func validate(p term.Term, inArgList bool) error {
	if _, ok := IsVarRest(p); ok {
		if !inArgList {
			return fmt.Errorf("pattern: VarRest used outside a call argument list: %s", term.Show(p))
		}
		return nil
	}
	if _, ok := IsVar(p); ok {
		return nil
	}
	c, ok := p.(*term.Call)
	if !ok {
		return nil
	}
	if err := validate(c.Head, false); err != nil {
		return err
	}
	for _, a := range c.Args {
		if err := validate(a, true); err != nil {
			return err
		}
	}
	return nil
}
