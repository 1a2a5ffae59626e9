package pattern_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relang/symkernel/pkg/pattern"
	"github.com/relang/symkernel/pkg/term"
)

func pvar(name string) term.Term  { return term.NewCall(term.Sym(pattern.VarSym), term.Str(name)) }
func prest(name string) term.Term { return term.NewCall(term.Sym(pattern.VarRestSym), term.Str(name)) }

func TestMatchAtoms(t *testing.T) {
	_, ok := pattern.Match(term.Num(1), term.Num(1))
	assert.True(t, ok)
	_, ok = pattern.Match(term.Num(1), term.Num(2))
	assert.False(t, ok)
}

func TestMatchVarCaptures(t *testing.T) {
	b, ok := pattern.Match(pvar("x"), term.Num(42))
	require.True(t, ok)
	got, ok := b.Get("x")
	require.True(t, ok)
	assert.True(t, term.Equal(got, term.Num(42)))
}

func TestMatchWildcardCapturesNothing(t *testing.T) {
	b, ok := pattern.Match(pvar("_"), term.Num(42))
	require.True(t, ok)
	_, had := b.Get("_")
	assert.False(t, had)
}

func TestMatchRepeatedVarRequiresEquality(t *testing.T) {
	p := term.NewCall(term.Sym("Pair"), pvar("x"), pvar("x"))
	_, ok := pattern.Match(p, term.NewCall(term.Sym("Pair"), term.Num(1), term.Num(1)))
	assert.True(t, ok)
	_, ok = pattern.Match(p, term.NewCall(term.Sym("Pair"), term.Num(1), term.Num(2)))
	assert.False(t, ok)
}

func TestMatchVarRestSplicesSequence(t *testing.T) {
	p := term.NewCall(term.Sym("List"), prest("xs"))
	subject := term.NewCall(term.Sym("List"), term.Num(1), term.Num(2), term.Num(3))
	b, ok := pattern.Match(p, subject)
	require.True(t, ok)
	seq, ok := b.GetSeq("xs")
	require.True(t, ok)
	require.Len(t, seq, 3)
	assert.True(t, term.Equal(seq[0], term.Num(1)))
	assert.True(t, term.Equal(seq[2], term.Num(3)))
}

func TestMatchVarRestEmptySequenceIsValid(t *testing.T) {
	p := term.NewCall(term.Sym("List"), prest("xs"))
	subject := term.NewCall(term.Sym("List"))
	b, ok := pattern.Match(p, subject)
	require.True(t, ok)
	seq, ok := b.GetSeq("xs")
	require.True(t, ok)
	assert.Empty(t, seq)
}

func TestMatchFixedArityRequiresExactLength(t *testing.T) {
	p := term.NewCall(term.Sym("Pair"), pvar("a"), pvar("b"))
	_, ok := pattern.Match(p, term.NewCall(term.Sym("Pair"), term.Num(1)))
	assert.False(t, ok)
}

func TestMatchMultipleVarRestBacktracks(t *testing.T) {
	// List[xs.., 0, ys..] against List[1,2,0,3,4]: xs=[1,2], ys=[3,4].
	p := term.NewCall(term.Sym("List"), prest("xs"), term.Num(0), prest("ys"))
	subject := term.NewCall(term.Sym("List"), term.Num(1), term.Num(2), term.Num(0), term.Num(3), term.Num(4))
	b, ok := pattern.Match(p, subject)
	require.True(t, ok)
	xs, _ := b.GetSeq("xs")
	ys, _ := b.GetSeq("ys")
	require.Len(t, xs, 2)
	require.Len(t, ys, 2)
	assert.True(t, term.Equal(xs[0], term.Num(1)))
	assert.True(t, term.Equal(ys[1], term.Num(4)))
}

func TestMatchRepeatedVarRestRequiresEqualSequences(t *testing.T) {
	p := term.NewCall(term.Sym("Same"), prest("xs"), term.Sym("|"), prest("xs"))
	ok1 := func() bool {
		_, ok := pattern.Match(p, term.NewCall(term.Sym("Same"), term.Num(1), term.Num(2), term.Sym("|"), term.Num(1), term.Num(2)))
		return ok
	}
	assert.True(t, ok1())
	_, ok := pattern.Match(p, term.NewCall(term.Sym("Same"), term.Num(1), term.Sym("|"), term.Num(2)))
	assert.False(t, ok)
}

func TestValidateRejectsStandaloneVarRest(t *testing.T) {
	bad := prest("xs")
	err := pattern.Validate(bad)
	assert.Error(t, err)
}

func TestValidateAcceptsVarRestInArgList(t *testing.T) {
	good := term.NewCall(term.Sym("List"), prest("xs"))
	assert.NoError(t, pattern.Validate(good))
}
