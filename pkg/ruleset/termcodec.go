package ruleset

import (
	"fmt"

	"github.com/relang/symkernel/pkg/term"
)

// RSym is the head symbol of a declared rule term: R[name, lhs, rhs,
// (:guard g)?, (:scope S)?, prio?] (spec.md §3.3, §3.4).
const RSym = "R"

const (
	guardKeyword = ":guard"
	scopeKeyword = ":scope"
)

// ParseRule decodes one R[...] call term into a Rule. It does not call
// pattern.Validate itself — Build does that for every rule it indexes
// — so a caller assembling a section of many rule terms can collect
// ParseRule errors the same way Build collects validation errors.
func ParseRule(t term.Term) (Rule, error) {
	c, ok := t.(*term.Call)
	if !ok {
		return Rule{}, fmt.Errorf("ruleset: rule term is not a call: %s", term.Show(t))
	}
	sym, ok := c.HeadSym()
	if !ok || sym != RSym {
		return Rule{}, fmt.Errorf("ruleset: rule term head is not %q: %s", RSym, term.Show(t))
	}
	if len(c.Args) < 3 {
		return Rule{}, fmt.Errorf("ruleset: rule term needs at least name, lhs, rhs: %s", term.Show(t))
	}

	name, err := nameOf(c.Args[0])
	if err != nil {
		return Rule{}, err
	}

	r := Rule{Name: name, LHS: c.Args[1], RHS: c.Args[2]}

	rest := c.Args[3:]
	for i := 0; i < len(rest); i++ {
		switch v := rest[i].(type) {
		case term.Sym:
			switch string(v) {
			case guardKeyword:
				if i+1 >= len(rest) {
					return Rule{}, fmt.Errorf("ruleset: rule %q: %s with no value", name, guardKeyword)
				}
				r.Guard = rest[i+1]
				i++
			case scopeKeyword:
				if i+1 >= len(rest) {
					return Rule{}, fmt.Errorf("ruleset: rule %q: %s with no value", name, scopeKeyword)
				}
				scopeSym, ok := rest[i+1].(term.Sym)
				if !ok {
					return Rule{}, fmt.Errorf("ruleset: rule %q: %s value must be a Sym", name, scopeKeyword)
				}
				r.Scope = string(scopeSym)
				i++
			default:
				return Rule{}, fmt.Errorf("ruleset: rule %q: unexpected trailing symbol %q", name, v)
			}
		case term.Num:
			r.Priority = int64(v)
		default:
			return Rule{}, fmt.Errorf("ruleset: rule %q: unexpected trailing argument %s", name, term.Show(v))
		}
	}

	return r, nil
}

func nameOf(t term.Term) (string, error) {
	switch v := t.(type) {
	case term.Str:
		return string(v), nil
	case term.Sym:
		return string(v), nil
	default:
		return "", fmt.Errorf("ruleset: rule name must be a Str or Sym: %s", term.Show(t))
	}
}

// RuleToTerm re-encodes a Rule as an R[...] call term, the inverse of
// ParseRule. Used (through SectionToTerm) by pkg/universe to write the
// meta-layer's resulting rules back into the Rules section as ordinary
// terms, and by tests asserting round-trip fidelity.
func RuleToTerm(r Rule) term.Term {
	args := []term.Term{term.Str(r.Name), r.LHS, r.RHS}
	if r.Guard != nil {
		args = append(args, term.Sym(guardKeyword), r.Guard)
	}
	if r.Scope != "" {
		args = append(args, term.Sym(scopeKeyword), term.Sym(r.Scope))
	}
	if r.Priority != 0 {
		args = append(args, term.Num(float64(r.Priority)))
	}
	return term.NewCall(term.Sym(RSym), args...)
}

// ParseSection decodes every argument of a section call (e.g. a
// Rules[...] or RuleRules[...] term) into Rules, in declaration order.
func ParseSection(section term.Term) ([]Rule, error) {
	c, ok := section.(*term.Call)
	if !ok {
		return nil, fmt.Errorf("ruleset: section term is not a call: %s", term.Show(section))
	}
	rules := make([]Rule, 0, len(c.Args))
	for _, a := range c.Args {
		r, err := ParseRule(a)
		if err != nil {
			return nil, err
		}
		rules = append(rules, r)
	}
	return rules, nil
}

// SectionToTerm is the inverse of ParseSection, re-encoding rules under
// headSym (conventionally "Rules").
func SectionToTerm(headSym string, rules []Rule) term.Term {
	args := make([]term.Term, len(rules))
	for i, r := range rules {
		args[i] = RuleToTerm(r)
	}
	return term.NewCall(term.Sym(headSym), args...)
}
