package primitive_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relang/symkernel/internal/freshid"
	"github.com/relang/symkernel/pkg/primitive"
	"github.com/relang/symkernel/pkg/term"
)

func newFolder() *primitive.Folder {
	return primitive.NewFolder(freshid.NewCounterSource("f-"), 1)
}

func TestFoldArithmetic(t *testing.T) {
	f := newFolder()
	out, ok := f.Fold(term.NewCall(term.Sym("Add"), term.Num(2), term.Num(3)))
	require.True(t, ok)
	assert.True(t, term.Equal(out, term.Num(5)))
}

func TestFoldDivisionByZeroLeavesNodeAlone(t *testing.T) {
	f := newFolder()
	_, ok := f.Fold(term.NewCall(term.Sym("Div"), term.Num(6), term.Num(0)))
	assert.False(t, ok)
}

func TestFoldComparisons(t *testing.T) {
	f := newFolder()
	out, ok := f.Fold(term.NewCall(term.Sym("Lt"), term.Num(1), term.Num(2)))
	require.True(t, ok)
	assert.Equal(t, term.Sym("True"), out)
}

func TestFoldBoolean(t *testing.T) {
	f := newFolder()
	out, ok := f.Fold(term.NewCall(term.Sym("Not"), term.Sym("False")))
	require.True(t, ok)
	assert.Equal(t, term.Sym("True"), out)
}

func TestFoldIf(t *testing.T) {
	f := newFolder()
	out, ok := f.Fold(term.NewCall(term.Sym("If"), term.Sym("True"), term.Num(1), term.Num(2)))
	require.True(t, ok)
	assert.True(t, term.Equal(out, term.Num(1)))

	out, ok = f.Fold(term.NewCall(term.Sym("If"), term.Sym("False"), term.Num(1), term.Num(2)))
	require.True(t, ok)
	assert.True(t, term.Equal(out, term.Num(2)))
}

func TestFoldStrings(t *testing.T) {
	f := newFolder()
	out, ok := f.Fold(term.NewCall(term.Sym("Concat"), term.Str("ab"), term.Str("cd")))
	require.True(t, ok)
	assert.Equal(t, term.Str("abcd"), out)

	out, ok = f.Fold(term.NewCall(term.Sym("StrLen"), term.Str("abc")))
	require.True(t, ok)
	assert.True(t, term.Equal(out, term.Num(3)))
}

func TestFoldToStringLeavesStrAndSymUnquoted(t *testing.T) {
	f := newFolder()
	out, ok := f.Fold(term.NewCall(term.Sym("ToString"), term.Str("hi")))
	require.True(t, ok)
	assert.Equal(t, term.Str("hi"), out)

	out, ok = f.Fold(term.NewCall(term.Sym("ToString"), term.Sym("Foo")))
	require.True(t, ok)
	assert.Equal(t, term.Str("Foo"), out)

	out, ok = f.Fold(term.NewCall(term.Sym("ToString"), term.Num(5)))
	require.True(t, ok)
	assert.Equal(t, term.Str("5"), out)
}

func TestFoldTypeTests(t *testing.T) {
	f := newFolder()
	out, ok := f.Fold(term.NewCall(term.Sym("IsNum"), term.Num(1)))
	require.True(t, ok)
	assert.Equal(t, term.Sym("True"), out)

	out, ok = f.Fold(term.NewCall(term.Sym("IsNil"), term.Sym("Nil")))
	require.True(t, ok)
	assert.Equal(t, term.Sym("True"), out)
}

func TestFoldFreshIdIsUnique(t *testing.T) {
	f := newFolder()
	a, ok := f.Fold(term.NewCall(term.Sym("FreshId")))
	require.True(t, ok)
	b, ok := f.Fold(term.NewCall(term.Sym("FreshId")))
	require.True(t, ok)
	assert.NotEqual(t, a, b)
}

func TestFoldUnknownPrimitiveIsNotAnError(t *testing.T) {
	f := newFolder()
	_, ok := f.Fold(term.NewCall(term.Sym("TotallyUnknown"), term.Num(1)))
	assert.False(t, ok)
}

func TestFoldLeavesNonGroundArgsAlone(t *testing.T) {
	f := newFolder()
	_, ok := f.Fold(term.NewCall(term.Sym("Add"), term.NewCall(term.Sym("X")), term.Num(1)))
	assert.False(t, ok)
}
