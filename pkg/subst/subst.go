// Package subst applies pattern bindings to a replacement template,
// splicing sequence bindings in place, per spec.md §4.3.
package subst

import (
	"fmt"

	"github.com/relang/symkernel/pkg/pattern"
	"github.com/relang/symkernel/pkg/term"
)

// ErrUnboundVar is the error Apply returns when a template references
// a name the bindings never captured — an author
// error in the rule (spec.md §7, "Binding miss in substitution").
type ErrUnboundVar struct {
	Name string
}

func (e *ErrUnboundVar) Error() string {
	return fmt.Sprintf("subst: template variable %q is not bound", e.Name)
}

// ErrVarRestOutsideArgs mirrors pattern.Validate's structural error,
// raised here if a VarRest form survives into Apply's recursion outside
// a call's argument list (rule authors are expected to have caught this
// earlier via pattern.Validate on the rule's rhs).
type ErrVarRestOutsideArgs struct {
	Name string
}

func (e *ErrVarRestOutsideArgs) Error() string {
	return fmt.Sprintf("subst: VarRest(%q) used outside a call argument list", e.Name)
}

// Apply returns a concrete term in which every Var(name)/VarRest(name)
// form in template has been replaced by its binding. VarRest bindings
// are spliced into the surrounding argument list rather than nested as
// a single element; no VarRest wrapper survives into the result
// (spec.md §8 property 3).
func Apply(template term.Term, b pattern.Bindings) (term.Term, error) {
	if name, ok := pattern.IsVar(template); ok {
		if name == pattern.Wildcard {
			return nil, &ErrUnboundVar{Name: name}
		}
		v, had := b.Get(name)
		if !had {
			return nil, &ErrUnboundVar{Name: name}
		}
		return v, nil
	}
	if name, ok := pattern.IsVarRest(template); ok {
		return nil, &ErrVarRestOutsideArgs{Name: name}
	}

	c, ok := template.(*term.Call)
	if !ok {
		return template, nil
	}

	head, err := Apply(c.Head, b)
	if err != nil {
		return nil, err
	}
	args, err := applyArgs(c.Args, b)
	if err != nil {
		return nil, err
	}
	return term.NewCall(head, args...), nil
}

// applyArgs substitutes each argument template, splicing any VarRest
// bindings into the resulting slice in place.
func applyArgs(templates []term.Term, b pattern.Bindings) ([]term.Term, error) {
	out := make([]term.Term, 0, len(templates))
	for _, t := range templates {
		if name, ok := pattern.IsVarRest(t); ok {
			seq, had := b.GetSeq(name)
			if !had {
				return nil, &ErrUnboundVar{Name: name}
			}
			out = append(out, seq...)
			continue
		}
		v, err := Apply(t, b)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}
