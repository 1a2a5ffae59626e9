package ruleset

import (
	"sort"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"

	"github.com/relang/symkernel/pkg/pattern"
	"github.com/relang/symkernel/pkg/term"
)

// ErrMalformedRule is the fatal error category spec.md §7 assigns to a
// rule that lacks a name/lhs/rhs, or whose lhs/rhs/guard uses VarRest
// outside an argument list.
type ErrMalformedRule struct {
	RuleName string
	Reason   string
}

func (e *ErrMalformedRule) Error() string {
	name := e.RuleName
	if name == "" {
		name = "<unnamed>"
	}
	return "malformed rule " + name + ": " + e.Reason
}

type candidate struct {
	rule      *Rule
	minArity  int
	hasRest   bool
	declOrder int
}

// Index holds the compiled, immutable candidate buckets for one rule
// set: a bucket per concrete head symbol, plus a catch-all bucket for
// rules whose lhs head is not a plain Sym (spec.md §4.4). An Index is
// never mutated after Build; Remove returns a freshly built Index.
type Index struct {
	rules    []Rule
	byHead   map[string][]*candidate
	catchAll []*candidate
}

// Build validates and indexes rules, in declaration order. It returns a
// single aggregated error (via hashicorp/go-multierror, so a rule
// author sees every malformed rule at once rather than one at a time)
// if any rule is malformed; a successful Build's Index is ready for
// concurrent, read-only use by any number of normalizations.
func Build(rules []Rule) (*Index, error) {
	idx := &Index{
		rules:  append([]Rule(nil), rules...),
		byHead: make(map[string][]*candidate),
	}

	var errs *multierror.Error
	for i := range idx.rules {
		r := &idx.rules[i]
		if err := validateRule(r); err != nil {
			errs = multierror.Append(errs, errors.Wrapf(err, "rule %q", r.Name))
			continue
		}
		c := &candidate{rule: r, declOrder: i}
		c.minArity, c.hasRest = minArityOf(r.LHS)

		if head, ok := r.LHS.(*term.Call); ok {
			if sym, isSym := head.HeadSym(); isSym {
				idx.byHead[sym] = append(idx.byHead[sym], c)
				continue
			}
		}
		idx.catchAll = append(idx.catchAll, c)
	}

	if err := errs.ErrorOrNil(); err != nil {
		return nil, err
	}

	for _, bucket := range idx.byHead {
		sortCandidates(bucket)
	}
	sortCandidates(idx.catchAll)

	return idx, nil
}

func validateRule(r *Rule) error {
	if r.Name == "" {
		return &ErrMalformedRule{Reason: "missing name"}
	}
	if r.LHS == nil {
		return &ErrMalformedRule{RuleName: r.Name, Reason: "missing lhs"}
	}
	if r.RHS == nil {
		return &ErrMalformedRule{RuleName: r.Name, Reason: "missing rhs"}
	}
	if err := pattern.Validate(r.LHS); err != nil {
		return &ErrMalformedRule{RuleName: r.Name, Reason: "lhs: " + err.Error()}
	}
	if err := pattern.Validate(r.RHS); err != nil {
		return &ErrMalformedRule{RuleName: r.Name, Reason: "rhs: " + err.Error()}
	}
	if r.Guard != nil {
		if err := pattern.Validate(r.Guard); err != nil {
			return &ErrMalformedRule{RuleName: r.Name, Reason: "guard: " + err.Error()}
		}
	}
	return nil
}

// minArityOf reports the fixed argument count of a lhs Call pattern and
// whether it contains a VarRest, per spec.md §4.4 ("a pattern with a
// VarRest argument matches any arity >= fixed_args_count").
func minArityOf(lhs term.Term) (fixed int, hasRest bool) {
	c, ok := lhs.(*term.Call)
	if !ok {
		return 0, false
	}
	for _, a := range c.Args {
		if _, isRest := pattern.IsVarRest(a); isRest {
			hasRest = true
			continue
		}
		fixed++
	}
	return fixed, hasRest
}

func sortCandidates(cs []*candidate) {
	sort.SliceStable(cs, func(i, j int) bool {
		if cs[i].rule.Priority != cs[j].rule.Priority {
			return cs[i].rule.Priority > cs[j].rule.Priority
		}
		return cs[i].declOrder < cs[j].declOrder
	})
}

// Candidates returns, in priority-then-declaration order, every rule
// whose lhs head matches headSym (or whose lhs head is not a concrete
// symbol) and whose arity requirement is compatible with arity.
func (idx *Index) Candidates(headSym string, arity int) []*Rule {
	specific := idx.byHead[headSym]
	if len(idx.catchAll) == 0 {
		return compatible(specific, arity)
	}
	merged := make([]*candidate, 0, len(specific)+len(idx.catchAll))
	merged = append(merged, specific...)
	merged = append(merged, idx.catchAll...)
	sortCandidates(merged)
	return compatible(merged, arity)
}

func compatible(cs []*candidate, arity int) []*Rule {
	out := make([]*Rule, 0, len(cs))
	for _, c := range cs {
		if c.hasRest {
			if arity >= c.minArity {
				out = append(out, c.rule)
			}
		} else if arity == c.minArity {
			out = append(out, c.rule)
		}
	}
	return out
}

// Rules returns the full rule set in declaration order.
func (idx *Index) Rules() []Rule {
	return append([]Rule(nil), idx.rules...)
}

// Remove returns a freshly built Index without the named rule. It does
// not mutate idx: the rule index is immutable for the lifetime of any
// normalization that holds a reference to it (spec.md §5).
func (idx *Index) Remove(name string) (*Index, error) {
	kept := make([]Rule, 0, len(idx.rules))
	for _, r := range idx.rules {
		if r.Name != name {
			kept = append(kept, r)
		}
	}
	return Build(kept)
}
