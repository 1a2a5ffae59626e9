// Package kernel implements the normalization driver (component E of
// spec.md): innermost-leftmost rewriting to a fixed point, with a step
// budget, optional trace capture, and primitive folding ahead of rule
// matching.
package kernel

import (
	"github.com/relang/symkernel/internal/config"
	"github.com/relang/symkernel/internal/kernellog"
	"github.com/relang/symkernel/pkg/pattern"
	"github.com/relang/symkernel/pkg/primitive"
	"github.com/relang/symkernel/pkg/ruleset"
	"github.com/relang/symkernel/pkg/subst"
	"github.com/relang/symkernel/pkg/term"
	"go.uber.org/zap"
)

// SetLogger installs the zap logger used for per-step debug records and
// budget-exhaustion warnings. The default is silent; see
// internal/kernellog for the no-op fallback.
func SetLogger(l *zap.SugaredLogger) { kernellog.Set(l) }

// Driver reduces terms to a fixed point under one immutable rule index
// and primitive folder. A Driver is safe for concurrent use by multiple
// goroutines normalizing unrelated terms, since Bindings, the rule
// index, and the folder's internal state (a fresh-id source and a
// seeded RNG) are either read-only or themselves safe for concurrent
// use — though spec.md §5 reminds us the kernel's own driving loop is
// meant to be run single-threaded per Universe.
type Driver struct {
	rules  *ruleset.Index
	folder *primitive.Folder
	cfg    config.KernelConfig
}

// New constructs a Driver over rules and folder, using cfg for budgets
// and trace defaults.
func New(rules *ruleset.Index, folder *primitive.Folder, cfg config.KernelConfig) *Driver {
	return &Driver{rules: rules, folder: folder, cfg: cfg}
}

// Result is what Normalize returns: the reduced term, the trace (nil
// unless tracing was requested), and whether the step budget was
// exhausted before a fixed point was reached (spec.md §4.5, §7 —
// non-fatal).
type Result struct {
	Term          term.Term
	Steps         []TraceStep
	LimitExceeded bool
}

type normOpts struct {
	trace    bool
	traceSet bool
	observer func(TraceStep)
}

// Option configures a single Normalize call.
type Option func(*normOpts)

// WithTrace overrides the driver's configured TraceEnabled for this
// call only.
func WithTrace(enabled bool) Option {
	return func(o *normOpts) { o.trace = enabled; o.traceSet = true }
}

// WithObserver registers a callback invoked synchronously after every
// successful rewrite step, in addition to any trace capture. This is
// the "bounded observe hook on dispatch" SPEC_FULL.md adds so an
// external effects bridge (spec.md §5, §6.2) can be driven from the
// same process without the kernel importing it.
func WithObserver(fn func(TraceStep)) Option {
	return func(o *normOpts) { o.observer = fn }
}

// Normalize reduces t to a fixed point by repeated single-step,
// innermost-leftmost traversals (spec.md §4.5). Purity (spec.md §8
// property 1) holds because Normalize's only inputs are t, d's rule
// index, and d's folder, and none of those are mutated during the
// call.
func (d *Driver) Normalize(t term.Term, opts ...Option) (Result, error) {
	o := normOpts{trace: d.cfg.TraceEnabled}
	for _, opt := range opts {
		opt(&o)
	}

	budget := d.cfg.StepBudget
	if budget <= 0 {
		budget = config.DefaultStepBudget
	}

	cur := t
	var steps []TraceStep
	for i := 0; i < budget; i++ {
		next, step, err := d.tryStep(cur, nil, "")
		if err != nil {
			return Result{Term: cur, Steps: steps}, err
		}
		if step == nil {
			return Result{Term: cur, Steps: steps}, nil
		}
		step.Index = i
		kernellog.Get().Debugw("rewrite",
			"rule", step.RuleName, "path", step.Path,
			"before", term.Show(step.Before), "after", term.Show(step.After))
		if o.trace {
			steps = append(steps, *step)
		}
		if o.observer != nil {
			o.observer(*step)
		}
		cur = next
	}
	kernellog.Get().Warnw("step budget exhausted", "budget", budget)
	return Result{Term: cur, Steps: steps, LimitExceeded: true}, nil
}

// tryStep performs one full post-order traversal of t looking for the
// first rewritable node, per spec.md §4.5 step 2a: children before
// parent, primitive folding before rule matching, first candidate rule
// in priority order that matches and whose guard (if any) holds. It
// returns (t, nil, nil) — unchanged — if no node in t's subtree can be
// rewritten.
func (d *Driver) tryStep(t term.Term, path []int, parentHead string) (term.Term, *TraceStep, error) {
	c, ok := t.(*term.Call)
	if !ok {
		return t, nil, nil
	}
	selfHead, _ := c.HeadSym()

	for i, a := range c.Args {
		childPath := append(clonePath(path), i)
		newArg, step, err := d.tryStep(a, childPath, selfHead)
		if err != nil {
			return t, nil, err
		}
		if step != nil {
			newArgs := append([]term.Term(nil), c.Args...)
			newArgs[i] = newArg
			return term.NewCall(c.Head, newArgs...), step, nil
		}
	}

	if folded, ok := d.folder.Fold(c); ok && !term.Equal(folded, t) {
		return folded, &TraceStep{RuleName: "<prim>", Path: clonePath(path), Before: t, After: folded}, nil
	}

	for _, r := range d.rules.Candidates(selfHead, len(c.Args)) {
		if r.Scope != "" && r.Scope != parentHead {
			continue
		}
		b, matched := pattern.Match(r.LHS, t)
		if !matched {
			continue
		}
		if r.Guard != nil {
			holds, err := d.evalGuard(r.Guard, b)
			if err != nil {
				return t, nil, wrapBindingMiss(r.Name, err)
			}
			if !holds {
				continue
			}
		}
		out, err := subst.Apply(r.RHS, b)
		if err != nil {
			return t, nil, wrapBindingMiss(r.Name, err)
		}
		if term.Equal(out, t) {
			// Fixed-point identity (spec.md §4.5): this candidate
			// reproduces its own input, so it never counts as a
			// rewrite — try the next candidate instead of looping.
			continue
		}
		return out, &TraceStep{RuleName: r.Name, Path: clonePath(path), Before: t, After: out}, nil
	}

	return t, nil, nil
}

// evalGuard substitutes bindings into guard and normalizes the result
// in a nested Driver with its own, smaller budget (spec.md §9's answer
// to the guard-recursion open question), never tracing. A guard holds
// iff the normalized form is the symbol True; any other outcome,
// including the nested normalization exhausting its budget, is guard
// = false (spec.md §7), not an error.
func (d *Driver) evalGuard(guard term.Term, b pattern.Bindings) (bool, error) {
	substituted, err := subst.Apply(guard, b)
	if err != nil {
		return false, err
	}
	nested := &Driver{
		rules:  d.rules,
		folder: d.folder,
		cfg: config.KernelConfig{
			StepBudget: d.cfg.GuardBudget(),
		},
	}
	result, nerr := nested.Normalize(substituted)
	if nerr != nil {
		return false, nil
	}
	sym, ok := result.Term.(term.Sym)
	return ok && sym == "True", nil
}
