// Package universe implements component G (spec.md §4.7): the
// top-level container plumbing, the RuleRules meta-pass wiring, effects
// scaffolding, and dispatch. It is the thin layer that glues together
// pkg/term, pkg/ruleset, pkg/metarules, and pkg/kernel into the
// load-once/dispatch-many lifecycle spec.md §3.4 describes.
package universe

import (
	"github.com/pkg/errors"

	"github.com/relang/symkernel/internal/config"
	"github.com/relang/symkernel/internal/freshid"
	"github.com/relang/symkernel/pkg/kernel"
	"github.com/relang/symkernel/pkg/metarules"
	"github.com/relang/symkernel/pkg/primitive"
	"github.com/relang/symkernel/pkg/ruleset"
	"github.com/relang/symkernel/pkg/term"
)

const (
	universeSym = "Universe"
	programSym  = "Program"
	rulesSym    = "Rules"
	ruleRulesSym = "RuleRules"
	appSym      = "App"
	stateSym    = "State"
	uiSym       = "UI"
	effectsSym  = "Effects"
	pendingSym  = "Pending"
	inboxSym    = "Inbox"
)

// ErrMissingSection is returned by getProgram/extractRules when the
// named child section is absent from the Universe term.
type ErrMissingSection struct {
	Section string
}

func (e *ErrMissingSection) Error() string {
	return "universe: missing " + e.Section + " section"
}

// ErrMissingProgramStructure is the fatal dispatch error spec.md §7
// names for "Missing Program / App structure during dispatch": dispatch
// refuses and the caller's prior Universe is returned unchanged.
type ErrMissingProgramStructure struct {
	Reason string
}

func (e *ErrMissingProgramStructure) Error() string {
	return "universe: missing Program/App structure: " + e.Reason
}

// New builds a bare Universe term from a Program term and a Rules
// section (both ordinary term.Term call trees). RuleRules may be nil.
func New(program, rulesSection, ruleRulesSection term.Term) *term.Call {
	children := []term.Term{
		term.NewCall(term.Sym(programSym), program),
		rulesSection,
	}
	if ruleRulesSection != nil {
		children = append(children, ruleRulesSection)
	}
	return term.NewCall(term.Sym(universeSym), children...)
}

// getProgram finds the Program child of u.
func getProgram(u *term.Call) (term.Term, error) {
	for _, c := range u.Args {
		call, ok := c.(*term.Call)
		if !ok {
			continue
		}
		if sym, ok := call.HeadSym(); ok && sym == programSym {
			if len(call.Args) != 1 {
				return nil, &ErrMissingSection{Section: programSym}
			}
			return call.Args[0], nil
		}
	}
	return nil, &ErrMissingSection{Section: programSym}
}

// setProgram returns a new Universe with its Program child replaced by
// p, leaving every other section untouched.
func setProgram(u *term.Call, p term.Term) *term.Call {
	newArgs := make([]term.Term, len(u.Args))
	replaced := false
	for i, c := range u.Args {
		if call, ok := c.(*term.Call); ok {
			if sym, ok := call.HeadSym(); ok && sym == programSym {
				newArgs[i] = term.NewCall(term.Sym(programSym), p)
				replaced = true
				continue
			}
		}
		newArgs[i] = c
	}
	if !replaced {
		newArgs = append(newArgs, term.NewCall(term.Sym(programSym), p))
	}
	return term.NewCall(u.Head, newArgs...)
}

func findSection(u *term.Call, headSym string) (term.Term, bool) {
	for _, c := range u.Args {
		if call, ok := c.(*term.Call); ok {
			if sym, ok := call.HeadSym(); ok && sym == headSym {
				return call, true
			}
		}
	}
	return nil, false
}

// extractRules builds a rule index from u's Rules section. Rules must
// already have had the RuleRules pass applied (see Load) — extractRules
// itself does not run the meta-layer.
func extractRules(u *term.Call) (*ruleset.Index, error) {
	rulesSection, ok := findSection(u, rulesSym)
	if !ok {
		return nil, &ErrMissingSection{Section: rulesSym}
	}
	rules, err := ruleset.ParseSection(rulesSection)
	if err != nil {
		return nil, errors.Wrap(err, "universe: extracting rules")
	}
	return ruleset.Build(rules)
}

// applyRuleRules runs the spec.md §4.6 one-shot meta-pass over u's Rules
// section using its RuleRules section (if any), and returns a new
// Universe with Rules replaced by the result and RuleRules discarded.
// Calling this twice on an already-processed Universe is a safe no-op
// (meta-idempotence): the second call simply finds no RuleRules section
// left to apply.
func applyRuleRules(u *term.Call, cfg config.KernelConfig) (*term.Call, error) {
	rulesSection, ok := findSection(u, rulesSym)
	if !ok {
		return nil, &ErrMissingSection{Section: rulesSym}
	}
	ruleRulesSection, hasMeta := findSection(u, ruleRulesSym)

	var metaTerm term.Term
	if hasMeta {
		metaTerm = ruleRulesSection
	}
	rules, err := metarules.Apply(rulesSection, metaTerm, cfg)
	if err != nil {
		return nil, errors.Wrap(err, "universe: RuleRules pass")
	}

	newArgs := make([]term.Term, 0, len(u.Args))
	for _, c := range u.Args {
		if call, ok := c.(*term.Call); ok {
			if sym, ok := call.HeadSym(); ok {
				if sym == ruleRulesSym {
					continue // discarded per spec.md §3.4
				}
				if sym == rulesSym {
					newArgs = append(newArgs, ruleset.SectionToTerm(rulesSym, rules))
					continue
				}
			}
		}
		newArgs = append(newArgs, c)
	}
	return term.NewCall(u.Head, newArgs...), nil
}

// enrichProgramWithEffects ensures u's Program contains an
// Effects[Pending[], Inbox[]] child, inserting an empty one if absent.
// Idempotent: a Program that already carries Effects is returned
// unchanged.
func enrichProgramWithEffects(u *term.Call) (*term.Call, error) {
	program, err := getProgram(u)
	if err != nil {
		return nil, err
	}
	programCall, ok := program.(*term.Call)
	if !ok {
		return nil, &ErrMissingProgramStructure{Reason: "Program child is not a call"}
	}
	if _, hasEffects := findChild(programCall, effectsSym); hasEffects {
		return u, nil
	}
	effects := term.NewCall(term.Sym(effectsSym),
		term.NewCall(term.Sym(pendingSym)),
		term.NewCall(term.Sym(inboxSym)))
	newArgs := append(append([]term.Term(nil), programCall.Args...), effects)
	newProgram := term.NewCall(programCall.Head, newArgs...)
	return setProgram(u, newProgram), nil
}

func findChild(c *term.Call, headSym string) (term.Term, bool) {
	for _, a := range c.Args {
		if call, ok := a.(*term.Call); ok {
			if sym, ok := call.HeadSym(); ok && sym == headSym {
				return call, true
			}
		}
	}
	return nil, false
}

// Kernel bundles a built rule index and primitive folder with the
// config that produced them — the three things dispatch needs on every
// call, so a host builds them once at Load and reuses them across
// dispatches without re-parsing Rules (spec.md §3.4: "Dispatch never
// mutates rules").
type Kernel struct {
	Index  *ruleset.Index
	Folder *primitive.Folder
	Config config.KernelConfig
}

// Load runs the full universe construction lifecycle spec.md §3.4 and
// §4.7 describe: the one-shot RuleRules pass, Effects enrichment, and
// rule-index extraction. The returned Universe and Kernel are what a
// host holds onto and feeds to Dispatch on every subsequent action.
func Load(u *term.Call, cfg config.KernelConfig, fresh freshid.Source) (*term.Call, *Kernel, error) {
	afterMeta, err := applyRuleRules(u, cfg)
	if err != nil {
		return nil, nil, err
	}
	enriched, err := enrichProgramWithEffects(afterMeta)
	if err != nil {
		return nil, nil, err
	}
	idx, err := extractRules(enriched)
	if err != nil {
		return nil, nil, err
	}
	folder := primitive.NewFolder(fresh, 0)
	return enriched, &Kernel{Index: idx, Folder: folder, Config: cfg}, nil
}

// Dispatcher drives Dispatch calls and, if OnStep is set, forwards
// every rewrite step performed while servicing an action — the bounded
// observe hook SPEC_FULL.md adds so an external effects bridge can
// watch Pending/Inbox traffic without the kernel importing it.
type Dispatcher struct {
	OnStep func(kernel.TraceStep)
}

// Dispatch replaces u's Program with
// normalize(Apply[action, Program], rules) (spec.md §4.7), and returns
// the resulting Universe. Dispatch is serial by construction: it
// performs exactly one full normalization before returning, so a host
// never needs external locking as long as it waits for Dispatch to
// return before issuing the next action (spec.md §4.7, §5).
//
// A Universe missing Program/App structure is a fatal, non-mutating
// refusal: the caller's u is returned unchanged alongside the error.
func (d Dispatcher) Dispatch(u *term.Call, k *Kernel, action term.Term) (*term.Call, error) {
	program, err := getProgram(u)
	if err != nil {
		return u, err
	}
	programCall, ok := program.(*term.Call)
	if !ok {
		return u, &ErrMissingProgramStructure{Reason: "Program does not hold an App[...] term"}
	}
	if sym, isSym := programCall.HeadSym(); !isSym || sym != appSym {
		return u, &ErrMissingProgramStructure{Reason: "Program does not hold an App[...] term"}
	}

	driver := kernel.New(k.Index, k.Folder, k.Config)
	toNormalize := term.NewCall(term.Sym("Apply"), action, program)

	var opts []kernel.Option
	if d.OnStep != nil {
		opts = append(opts, kernel.WithObserver(d.OnStep))
	}
	result, err := driver.Normalize(toNormalize, opts...)
	if err != nil {
		return u, errors.Wrap(err, "universe: dispatch normalization failed")
	}
	return setProgram(u, result.Term), nil
}
