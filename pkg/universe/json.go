package universe

import (
	"encoding/json"
	"fmt"

	"github.com/relang/symkernel/pkg/term"
)

// wireNode is the JSON shape spec.md §6.1 defines for one term node.
// Readers must accept a: [] and h: null for an empty call, and ignore
// any keys not listed here.
type wireNode struct {
	Kind string     `json:"k"`
	V    *wireValue `json:"v,omitempty"`
	Head *wireNode  `json:"h,omitempty"`
	Args []wireNode `json:"a,omitempty"`
}

// wireValue carries the payload of a Num/Str/Sym leaf. A custom type
// (rather than interface{}) keeps Num round-tripping through
// encoding/json as a float64 without reflection surprises on Str/Sym.
type wireValue struct {
	num   float64
	str   string
	isNum bool
}

func (v wireValue) MarshalJSON() ([]byte, error) {
	if v.isNum {
		return json.Marshal(v.num)
	}
	return json.Marshal(v.str)
}

func (v *wireValue) UnmarshalJSON(data []byte) error {
	var f float64
	if err := json.Unmarshal(data, &f); err == nil {
		v.num, v.isNum = f, true
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("universe: value is neither number nor string: %s", data)
	}
	v.str = s
	return nil
}

// MarshalJSON encodes t as the tagged JSON tree spec.md §6.1 describes.
func MarshalJSON(t term.Term) ([]byte, error) {
	return json.Marshal(toWire(t))
}

func toWire(t term.Term) wireNode {
	switch v := t.(type) {
	case term.Num:
		return wireNode{Kind: "Num", V: &wireValue{num: float64(v), isNum: true}}
	case term.Str:
		return wireNode{Kind: "Str", V: &wireValue{str: string(v)}}
	case term.Sym:
		return wireNode{Kind: "Sym", V: &wireValue{str: string(v)}}
	case *term.Call:
		args := make([]wireNode, len(v.Args))
		for i, a := range v.Args {
			args[i] = toWire(a)
		}
		node := wireNode{Kind: "Call", Args: args}
		if v.Head != nil {
			h := toWire(v.Head)
			node.Head = &h
		}
		return node
	default:
		panic(fmt.Sprintf("universe: unknown term variant %T", t))
	}
}

// UnmarshalJSON decodes a tagged JSON tree into a term.Term, the
// inverse of MarshalJSON. Unknown "k" values are rejected; unknown
// object keys alongside the recognized ones are silently ignored, per
// spec.md §6.1 ("No other keys are defined; unknown keys are
// ignored") — encoding/json already does this by default.
func UnmarshalJSON(data []byte) (term.Term, error) {
	var node wireNode
	if err := json.Unmarshal(data, &node); err != nil {
		return nil, err
	}
	return fromWire(node)
}

func fromWire(n wireNode) (term.Term, error) {
	switch n.Kind {
	case "Num":
		if n.V == nil || !n.V.isNum {
			return nil, fmt.Errorf("universe: Num node missing numeric v")
		}
		return term.Num(n.V.num), nil
	case "Str":
		if n.V == nil {
			return nil, fmt.Errorf("universe: Str node missing v")
		}
		return term.Str(n.V.str), nil
	case "Sym":
		if n.V == nil {
			return nil, fmt.Errorf("universe: Sym node missing v")
		}
		return term.Sym(n.V.str), nil
	case "Call":
		var head term.Term
		if n.Head != nil {
			h, err := fromWire(*n.Head)
			if err != nil {
				return nil, err
			}
			head = h
		}
		args := make([]term.Term, len(n.Args))
		for i, a := range n.Args {
			at, err := fromWire(a)
			if err != nil {
				return nil, err
			}
			args[i] = at
		}
		return term.NewCall(head, args...), nil
	default:
		return nil, fmt.Errorf("universe: unknown node kind %q", n.Kind)
	}
}
