// Package primitive implements the kernel-hosted pure built-in folders
// described in spec.md §6.3: the driver calls Fold on each call node,
// in post-order, before consulting the rule index. A fold fires only
// when every argument child is already a ground atom of the expected
// kind; mis-typed or non-ground calls are left alone so a rule may
// still match or produce a better error.
package primitive

import (
	"math"
	"math/rand"
	"strconv"
	"strings"
	"sync"

	"github.com/relang/symkernel/internal/freshid"
	"github.com/relang/symkernel/pkg/term"
)

// Folder holds the small amount of non-pure state two built-ins need:
// Random needs a source of randomness and FreshId needs an id
// generator. Everything else is a pure function of its arguments.
// rng is guarded by rngMu since *rand.Rand itself has no internal
// locking — unlike the top-level math/rand functions, a Folder shared
// across goroutines would otherwise race on Random folds.
type Folder struct {
	fresh freshid.Source
	rngMu sync.Mutex
	rng   *rand.Rand
}

// NewFolder constructs a Folder. fresh supplies FreshId's values; rngSeed
// seeds Random deterministically (tests should pass a fixed seed).
func NewFolder(fresh freshid.Source, rngSeed int64) *Folder {
	return &Folder{fresh: fresh, rng: rand.New(rand.NewSource(rngSeed))}
}

func boolSym(b bool) term.Term {
	if b {
		return term.Sym("True")
	}
	return term.Sym("False")
}

func asNum(t term.Term) (float64, bool) {
	n, ok := t.(term.Num)
	return float64(n), ok
}

func asStr(t term.Term) (string, bool) {
	s, ok := t.(term.Str)
	return string(s), ok
}

// Fold attempts to reduce a fully-constant application of a known
// built-in. It returns the folded term and true on success, or
// (nil, false) if c's head is not a known primitive, its arguments
// aren't the right shape/kind, or the operation is undefined (e.g.
// division by zero) — in every "false" case the node is left exactly
// as it was for the rule index to consider next.
func (f *Folder) Fold(c *term.Call) (term.Term, bool) {
	name, ok := c.HeadSym()
	if !ok {
		return nil, false
	}

	// If is special: only the condition must be a ground True/False
	// atom, the branches are returned verbatim.
	if name == "If" {
		if len(c.Args) != 3 {
			return nil, false
		}
		cond, ok := c.Args[0].(term.Sym)
		if !ok {
			return nil, false
		}
		switch cond {
		case "True":
			return c.Args[1], true
		case "False":
			return c.Args[2], true
		default:
			return nil, false
		}
	}

	switch name {
	case "Add", "Sub", "Mul", "Div", "Mod", "Pow", "Min", "Max":
		return f.foldBinaryArith(name, c.Args)
	case "Sqrt", "Abs", "Floor", "Ceil", "Round":
		return f.foldUnaryArith(name, c.Args)
	case "Eq", "Neq":
		return f.foldStructuralCompare(name, c.Args)
	case "Lt", "Gt", "Lte", "Gte":
		return f.foldNumericCompare(name, c.Args)
	case "And", "Or":
		return f.foldBoolBinary(name, c.Args)
	case "Not":
		return f.foldNot(c.Args)
	case "Concat":
		return f.foldConcat(c.Args)
	case "ToString":
		return f.foldToString(c.Args)
	case "ToUpper", "ToLower", "Trim":
		return f.foldStrUnary(name, c.Args)
	case "StrLen":
		return f.foldStrLen(c.Args)
	case "Substring":
		return f.foldSubstring(c.Args)
	case "IndexOf":
		return f.foldIndexOf(c.Args)
	case "Replace":
		return f.foldReplace(c.Args)
	case "CharFromCode":
		return f.foldCharFromCode(c.Args)
	case "IsNum", "IsStr", "IsSym", "IsTrue", "IsFalse", "IsNil":
		return f.foldTypeTest(name, c.Args)
	case "Random":
		return f.foldRandom(c.Args)
	case "ParseNum":
		return f.foldParseNum(c.Args)
	case "FreshId":
		return f.foldFreshID(c.Args)
	default:
		return nil, false
	}
}

func (f *Folder) foldBinaryArith(name string, args []term.Term) (term.Term, bool) {
	if len(args) != 2 {
		return nil, false
	}
	a, ok := asNum(args[0])
	if !ok {
		return nil, false
	}
	b, ok := asNum(args[1])
	if !ok {
		return nil, false
	}
	switch name {
	case "Add":
		return term.Num(a + b), true
	case "Sub":
		return term.Num(a - b), true
	case "Mul":
		return term.Num(a * b), true
	case "Div":
		if b == 0 {
			return nil, false
		}
		return term.Num(a / b), true
	case "Mod":
		if b == 0 {
			return nil, false
		}
		return term.Num(math.Mod(a, b)), true
	case "Pow":
		return term.Num(math.Pow(a, b)), true
	case "Min":
		return term.Num(math.Min(a, b)), true
	case "Max":
		return term.Num(math.Max(a, b)), true
	}
	return nil, false
}

func (f *Folder) foldUnaryArith(name string, args []term.Term) (term.Term, bool) {
	if len(args) != 1 {
		return nil, false
	}
	a, ok := asNum(args[0])
	if !ok {
		return nil, false
	}
	switch name {
	case "Sqrt":
		if a < 0 {
			return nil, false
		}
		return term.Num(math.Sqrt(a)), true
	case "Abs":
		return term.Num(math.Abs(a)), true
	case "Floor":
		return term.Num(math.Floor(a)), true
	case "Ceil":
		return term.Num(math.Ceil(a)), true
	case "Round":
		return term.Num(math.Round(a)), true
	}
	return nil, false
}

// foldStructuralCompare implements Eq/Neq, which spec.md groups with
// the other comparisons but which apply across any ground atom shape
// (two Nums, two Strs, two Syms), not just numbers.
func (f *Folder) foldStructuralCompare(name string, args []term.Term) (term.Term, bool) {
	if len(args) != 2 {
		return nil, false
	}
	if !isGroundAtom(args[0]) || !isGroundAtom(args[1]) {
		return nil, false
	}
	eq := term.Equal(args[0], args[1])
	if name == "Neq" {
		eq = !eq
	}
	return boolSym(eq), true
}

func (f *Folder) foldNumericCompare(name string, args []term.Term) (term.Term, bool) {
	if len(args) != 2 {
		return nil, false
	}
	a, ok := asNum(args[0])
	if !ok {
		return nil, false
	}
	b, ok := asNum(args[1])
	if !ok {
		return nil, false
	}
	switch name {
	case "Lt":
		return boolSym(a < b), true
	case "Gt":
		return boolSym(a > b), true
	case "Lte":
		return boolSym(a <= b), true
	case "Gte":
		return boolSym(a >= b), true
	}
	return nil, false
}

func asBool(t term.Term) (bool, bool) {
	s, ok := t.(term.Sym)
	if !ok {
		return false, false
	}
	switch s {
	case "True":
		return true, true
	case "False":
		return false, true
	default:
		return false, false
	}
}

func (f *Folder) foldBoolBinary(name string, args []term.Term) (term.Term, bool) {
	if len(args) != 2 {
		return nil, false
	}
	a, ok := asBool(args[0])
	if !ok {
		return nil, false
	}
	b, ok := asBool(args[1])
	if !ok {
		return nil, false
	}
	if name == "And" {
		return boolSym(a && b), true
	}
	return boolSym(a || b), true
}

func (f *Folder) foldNot(args []term.Term) (term.Term, bool) {
	if len(args) != 1 {
		return nil, false
	}
	a, ok := asBool(args[0])
	if !ok {
		return nil, false
	}
	return boolSym(!a), true
}

func (f *Folder) foldConcat(args []term.Term) (term.Term, bool) {
	if len(args) == 0 {
		return nil, false
	}
	var b strings.Builder
	for _, a := range args {
		s, ok := asStr(a)
		if !ok {
			return nil, false
		}
		b.WriteString(s)
	}
	return term.Str(b.String()), true
}

func (f *Folder) foldToString(args []term.Term) (term.Term, bool) {
	if len(args) != 1 {
		return nil, false
	}
	switch v := args[0].(type) {
	case term.Str:
		return v, true
	case term.Sym:
		return term.Str(string(v)), true
	}
	if !isGroundAtom(args[0]) {
		return nil, false
	}
	return term.Str(term.Show(args[0])), true
}

func (f *Folder) foldStrUnary(name string, args []term.Term) (term.Term, bool) {
	if len(args) != 1 {
		return nil, false
	}
	s, ok := asStr(args[0])
	if !ok {
		return nil, false
	}
	switch name {
	case "ToUpper":
		return term.Str(strings.ToUpper(s)), true
	case "ToLower":
		return term.Str(strings.ToLower(s)), true
	case "Trim":
		return term.Str(strings.TrimSpace(s)), true
	}
	return nil, false
}

func (f *Folder) foldStrLen(args []term.Term) (term.Term, bool) {
	if len(args) != 1 {
		return nil, false
	}
	s, ok := asStr(args[0])
	if !ok {
		return nil, false
	}
	return term.Num(float64(len([]rune(s)))), true
}

func (f *Folder) foldSubstring(args []term.Term) (term.Term, bool) {
	if len(args) != 3 {
		return nil, false
	}
	s, ok := asStr(args[0])
	if !ok {
		return nil, false
	}
	start, ok := asNum(args[1])
	if !ok {
		return nil, false
	}
	length, ok := asNum(args[2])
	if !ok {
		return nil, false
	}
	r := []rune(s)
	st, ln := int(start), int(length)
	if st < 0 || ln < 0 || st > len(r) || st+ln > len(r) {
		return nil, false
	}
	return term.Str(string(r[st : st+ln])), true
}

func (f *Folder) foldIndexOf(args []term.Term) (term.Term, bool) {
	if len(args) != 2 {
		return nil, false
	}
	s, ok := asStr(args[0])
	if !ok {
		return nil, false
	}
	sub, ok := asStr(args[1])
	if !ok {
		return nil, false
	}
	idx := strings.Index(s, sub)
	return term.Num(float64(idx)), true
}

func (f *Folder) foldReplace(args []term.Term) (term.Term, bool) {
	if len(args) != 3 {
		return nil, false
	}
	s, ok := asStr(args[0])
	if !ok {
		return nil, false
	}
	old, ok := asStr(args[1])
	if !ok {
		return nil, false
	}
	newS, ok := asStr(args[2])
	if !ok {
		return nil, false
	}
	return term.Str(strings.ReplaceAll(s, old, newS)), true
}

func (f *Folder) foldCharFromCode(args []term.Term) (term.Term, bool) {
	if len(args) != 1 {
		return nil, false
	}
	n, ok := asNum(args[0])
	if !ok {
		return nil, false
	}
	return term.Str(string(rune(int(n)))), true
}

func (f *Folder) foldTypeTest(name string, args []term.Term) (term.Term, bool) {
	if len(args) != 1 {
		return nil, false
	}
	arg := args[0]
	switch name {
	case "IsNum":
		_, ok := arg.(term.Num)
		return boolSym(ok), true
	case "IsStr":
		_, ok := arg.(term.Str)
		return boolSym(ok), true
	case "IsSym":
		_, ok := arg.(term.Sym)
		return boolSym(ok), true
	case "IsTrue":
		s, ok := arg.(term.Sym)
		return boolSym(ok && s == "True"), true
	case "IsFalse":
		s, ok := arg.(term.Sym)
		return boolSym(ok && s == "False"), true
	case "IsNil":
		if s, ok := arg.(term.Sym); ok && s == "Nil" {
			return boolSym(true), true
		}
		if c, ok := arg.(*term.Call); ok {
			if sym, ok := c.HeadSym(); ok && sym == "Nil" {
				return boolSym(true), true
			}
		}
		// Only folds when the argument is a ground atom or a
		// recognizably-shaped Call; otherwise we can't yet tell.
		if isGroundAtom(arg) {
			return boolSym(false), true
		}
		return nil, false
	}
	return nil, false
}

func (f *Folder) foldRandom(args []term.Term) (term.Term, bool) {
	if len(args) != 1 {
		return nil, false
	}
	bound, ok := asNum(args[0])
	if !ok || bound <= 0 {
		return nil, false
	}
	f.rngMu.Lock()
	v := f.rng.Float64()
	f.rngMu.Unlock()
	return term.Num(v * bound), true
}

func (f *Folder) foldParseNum(args []term.Term) (term.Term, bool) {
	if len(args) != 1 {
		return nil, false
	}
	s, ok := asStr(args[0])
	if !ok {
		return nil, false
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return nil, false
	}
	return term.Num(v), true
}

func (f *Folder) foldFreshID(args []term.Term) (term.Term, bool) {
	if len(args) != 0 {
		return nil, false
	}
	return term.Str(f.fresh.Next()), true
}

func isGroundAtom(t term.Term) bool {
	switch t.(type) {
	case term.Num, term.Str, term.Sym:
		return true
	default:
		return false
	}
}
