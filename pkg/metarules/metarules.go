// Package metarules implements the one-shot RuleRules pass (component
// F, spec.md §4.6): at universe load, the Rules section is normalized
// using RuleRules as its own rule set, then RuleRules is discarded. The
// result is the effective rule set for every subsequent normalization.
package metarules

import (
	"github.com/pkg/errors"

	"github.com/relang/symkernel/internal/config"
	"github.com/relang/symkernel/internal/freshid"
	"github.com/relang/symkernel/pkg/kernel"
	"github.com/relang/symkernel/pkg/primitive"
	"github.com/relang/symkernel/pkg/ruleset"
	"github.com/relang/symkernel/pkg/term"
)

// ErrMetaBudgetExceeded is returned when the meta-pass does not reach a
// fixed point within its budget. Unlike an ordinary normalization's
// step-budget exhaustion, this is a fatal configuration error (spec.md
// §4.6): a RuleRules section that cannot settle is an author mistake to
// fix, not a runtime condition a caller can recover from.
type ErrMetaBudgetExceeded struct {
	Budget int
}

func (e *ErrMetaBudgetExceeded) Error() string {
	return "metarules: RuleRules pass did not reach a fixed point within its budget"
}

// Apply runs the RuleRules pass over rulesSection and returns the
// transformed Rules as []ruleset.Rule, ready for ruleset.Build. Both
// sections are ordinary term.Term call trees, per spec.md §3.4 —
// typically Rules[R[...], ...] and RuleRules[R[...], ...].
//
// If ruleRulesSection is nil (no RuleRules present), rulesSection is
// parsed and returned unchanged: the meta-pass is a no-op over an empty
// rule set, which trivially reaches its fixed point in zero steps.
func Apply(rulesSection, ruleRulesSection term.Term, cfg config.KernelConfig) ([]ruleset.Rule, error) {
	if ruleRulesSection == nil {
		return ruleset.ParseSection(rulesSection)
	}

	metaRules, err := ruleset.ParseSection(ruleRulesSection)
	if err != nil {
		return nil, errors.Wrap(err, "metarules: parsing RuleRules")
	}
	metaIndex, err := ruleset.Build(metaRules)
	if err != nil {
		return nil, errors.Wrap(err, "metarules: building RuleRules index")
	}

	budget := cfg.MetaBudget
	if budget <= 0 {
		budget = config.DefaultMetaBudget
	}
	metaCfg := config.KernelConfig{StepBudget: budget, GuardBudgetDivisor: cfg.GuardBudgetDivisor}

	folder := primitive.NewFolder(freshid.NewUUIDSource(), 0)
	driver := kernel.New(metaIndex, folder, metaCfg)

	result, err := driver.Normalize(rulesSection)
	if err != nil {
		return nil, errors.Wrap(err, "metarules: RuleRules pass failed")
	}
	if result.LimitExceeded {
		return nil, &ErrMetaBudgetExceeded{Budget: budget}
	}

	return ruleset.ParseSection(result.Term)
}
