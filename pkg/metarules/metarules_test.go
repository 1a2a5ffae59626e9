package metarules_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relang/symkernel/internal/config"
	"github.com/relang/symkernel/internal/freshid"
	"github.com/relang/symkernel/pkg/kernel"
	"github.com/relang/symkernel/pkg/metarules"
	"github.com/relang/symkernel/pkg/pattern"
	"github.com/relang/symkernel/pkg/primitive"
	"github.com/relang/symkernel/pkg/ruleset"
	"github.com/relang/symkernel/pkg/term"
)

func pvar(name string) term.Term { return term.NewCall(term.Sym(pattern.VarSym), term.Str(name)) }

func incRule() ruleset.Rule {
	return ruleset.Rule{
		Name: "Inc",
		LHS: term.NewCall(term.Sym("Apply"), term.Sym("Inc"),
			term.NewCall(term.Sym("State"), term.NewCall(term.Sym("Count"), pvar("n")))),
		RHS: term.NewCall(term.Sym("State"), term.NewCall(term.Sym("Count"),
			term.NewCall(term.Sym("Add"), pvar("n"), term.Num(1)))),
	}
}

// S6 — Meta-rule.
func TestScenarioMetaRuleRewritesLiteral(t *testing.T) {
	rulesSection := ruleset.SectionToTerm("Rules", []ruleset.Rule{incRule()})

	metaRule := ruleset.Rule{
		Name: "BumpIncBy1",
		LHS: term.NewCall(term.Sym(ruleset.RSym), term.Str("Inc"), pvar("lhsAny"),
			term.NewCall(term.Sym("State"), term.NewCall(term.Sym("Count"),
				term.NewCall(term.Sym("Add"), pvar("nAny"), term.Num(1))))),
		RHS: term.NewCall(term.Sym(ruleset.RSym), term.Str("Inc"), pvar("lhsAny"),
			term.NewCall(term.Sym("State"), term.NewCall(term.Sym("Count"),
				term.NewCall(term.Sym("Add"), pvar("nAny"), term.Num(2))))),
	}
	ruleRulesSection := ruleset.SectionToTerm("RuleRules", []ruleset.Rule{metaRule})

	transformed, err := metarules.Apply(rulesSection, ruleRulesSection, config.Default())
	require.NoError(t, err)
	require.Len(t, transformed, 1)

	idx, err := ruleset.Build(transformed)
	require.NoError(t, err)
	folder := primitive.NewFolder(freshid.NewCounterSource("m-"), 1)
	driver := kernel.New(idx, folder, config.Default())

	in := term.NewCall(term.Sym("Apply"), term.Sym("Inc"),
		term.NewCall(term.Sym("State"), term.NewCall(term.Sym("Count"), term.Num(4))))
	res, err := driver.Normalize(in)
	require.NoError(t, err)

	want := term.NewCall(term.Sym("State"), term.NewCall(term.Sym("Count"), term.Num(6)))
	assert.True(t, term.Equal(res.Term, want))
}

func TestApplyWithoutRuleRulesIsNoop(t *testing.T) {
	rulesSection := ruleset.SectionToTerm("Rules", []ruleset.Rule{incRule()})
	transformed, err := metarules.Apply(rulesSection, nil, config.Default())
	require.NoError(t, err)
	require.Len(t, transformed, 1)
	assert.Equal(t, "Inc", transformed[0].Name)
}

func TestApplyIsIdempotent(t *testing.T) {
	// Meta-idempotence (spec.md §8 property 7): applying Apply twice
	// (once with, once without RuleRules) yields the same Rules.
	rulesSection := ruleset.SectionToTerm("Rules", []ruleset.Rule{incRule()})
	metaRule := ruleset.Rule{
		Name: "BumpIncBy1",
		LHS: term.NewCall(term.Sym(ruleset.RSym), term.Str("Inc"), pvar("lhsAny"),
			term.NewCall(term.Sym("State"), term.NewCall(term.Sym("Count"),
				term.NewCall(term.Sym("Add"), pvar("nAny"), term.Num(1))))),
		RHS: term.NewCall(term.Sym(ruleset.RSym), term.Str("Inc"), pvar("lhsAny"),
			term.NewCall(term.Sym("State"), term.NewCall(term.Sym("Count"),
				term.NewCall(term.Sym("Add"), pvar("nAny"), term.Num(2))))),
	}
	ruleRulesSection := ruleset.SectionToTerm("RuleRules", []ruleset.Rule{metaRule})

	once, err := metarules.Apply(rulesSection, ruleRulesSection, config.Default())
	require.NoError(t, err)

	onceSection := ruleset.SectionToTerm("Rules", once)
	twice, err := metarules.Apply(onceSection, nil, config.Default())
	require.NoError(t, err)

	require.Len(t, once, len(twice))
	assert.True(t, term.Equal(once[0].RHS, twice[0].RHS))
}
