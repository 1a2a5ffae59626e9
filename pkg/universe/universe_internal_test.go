package universe

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relang/symkernel/internal/config"
	"github.com/relang/symkernel/pkg/term"
)

func TestGetSetProgramRoundTrip(t *testing.T) {
	u := New(term.NewCall(term.Sym(appSym)), term.NewCall(term.Sym(rulesSym)), nil)
	p, err := getProgram(u)
	require.NoError(t, err)
	assert.True(t, term.Equal(p, term.NewCall(term.Sym(appSym))))

	u2 := setProgram(u, term.NewCall(term.Sym(appSym), term.Sym("changed")))
	p2, err := getProgram(u2)
	require.NoError(t, err)
	assert.True(t, term.Equal(p2, term.NewCall(term.Sym(appSym), term.Sym("changed"))))
}

func TestGetProgramMissingSection(t *testing.T) {
	u := term.NewCall(term.Sym(universeSym), term.NewCall(term.Sym(rulesSym)))
	_, err := getProgram(u)
	assert.Error(t, err)
}

func TestEnrichProgramWithEffectsInsertsOnce(t *testing.T) {
	u := New(term.NewCall(term.Sym(appSym), term.NewCall(term.Sym(stateSym))), term.NewCall(term.Sym(rulesSym)), nil)
	enriched, err := enrichProgramWithEffects(u)
	require.NoError(t, err)
	program, err := getProgram(enriched)
	require.NoError(t, err)
	programCall := program.(*term.Call)
	_, has := findChild(programCall, effectsSym)
	assert.True(t, has)

	again, err := enrichProgramWithEffects(enriched)
	require.NoError(t, err)
	program2, err := getProgram(again)
	require.NoError(t, err)
	assert.True(t, term.Equal(program, program2), "enrichment must be idempotent")
}

func TestApplyRuleRulesDiscardsMetaSection(t *testing.T) {
	incLHS := term.NewCall(term.Sym("Apply"), term.Sym("Inc"),
		term.NewCall(term.Sym(stateSym), term.NewCall(term.Sym("Count"), pvar("n"))))
	incRHS := term.NewCall(term.Sym(stateSym), term.NewCall(term.Sym("Count"),
		term.NewCall(term.Sym("Add"), pvar("n"), term.Num(1))))
	rulesSection := term.NewCall(term.Sym(rulesSym),
		term.NewCall(term.Sym("R"), term.Str("Inc"), incLHS, incRHS))

	u := term.NewCall(term.Sym(universeSym),
		term.NewCall(term.Sym(programSym), term.NewCall(term.Sym(appSym))),
		rulesSection,
		term.NewCall(term.Sym(ruleRulesSym)))
	_, hadMeta := findSection(u, ruleRulesSym)
	require.True(t, hadMeta)

	out, err := applyRuleRules(u, config.Default())
	require.NoError(t, err)
	_, hasMeta := findSection(out, ruleRulesSym)
	assert.False(t, hasMeta)
	_, hasRules := findSection(out, rulesSym)
	assert.True(t, hasRules)
}

func pvar(name string) term.Term { return term.NewCall(term.Sym("Var"), term.Str(name)) }
