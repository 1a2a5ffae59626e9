package kernel

import "github.com/pkg/errors"

// ErrBindingMiss is the fatal error spec.md §7 assigns to a rewrite
// whose rhs (or guard, before nested normalization) references a
// pattern-variable name the lhs never captured. The driver reports the
// offending rule name and aborts the normalization run that triggered
// it.
type ErrBindingMiss struct {
	RuleName string
	cause    error
}

func (e *ErrBindingMiss) Error() string {
	return "rule " + e.RuleName + ": " + e.cause.Error()
}

func (e *ErrBindingMiss) Unwrap() error { return e.cause }

func wrapBindingMiss(ruleName string, err error) error {
	return errors.WithStack(&ErrBindingMiss{RuleName: ruleName, cause: err})
}
