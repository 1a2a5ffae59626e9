// Package config declares the kernel's configuration knobs as a small
// per-concern struct loadable from YAML, in the style of
// theRebelliousNerd-codenerd's internal/config package (one struct per
// subsystem, yaml struct tags, documented defaults).
package config

import (
	"gopkg.in/yaml.v3"
)

// DefaultStepBudget is the normalization driver's default step budget
// (spec.md §4.5: "a caller-provided upper bound (default 10 000)").
const DefaultStepBudget = 10000

// DefaultGuardBudgetDivisor implements the open question in spec.md §9:
// guard evaluation gets its own budget, "a small dedicated budget (e.g.
// 1/10 of the outer budget)".
const DefaultGuardBudgetDivisor = 10

// DefaultMetaBudget is the "generous budget" spec.md §4.6 allots the
// one-shot RuleRules pass before treating overrun as a configuration
// error.
const DefaultMetaBudget = 100000

// KernelConfig configures the normalization driver and meta-layer.
type KernelConfig struct {
	// StepBudget bounds normalize's outer rewrite loop (spec.md §4.5).
	StepBudget int `yaml:"step_budget"`

	// GuardBudgetDivisor divides StepBudget to produce the guard's own
	// nested normalization budget (spec.md §9).
	GuardBudgetDivisor int `yaml:"guard_budget_divisor"`

	// MetaBudget bounds the one-shot RuleRules pass (spec.md §4.6).
	MetaBudget int `yaml:"meta_budget"`

	// TraceEnabled turns on per-step TraceStep capture (spec.md §4.5).
	TraceEnabled bool `yaml:"trace_enabled"`

	// LogLevel is a zap level name ("debug", "info", "warn", "error").
	// It is only carried as configuration: no kernel code reads it, so
	// the host-installed logger's own level always applies.
	LogLevel string `yaml:"log_level"`
}

// Default returns the configuration spec.md's defaults describe.
func Default() KernelConfig {
	return KernelConfig{
		StepBudget:         DefaultStepBudget,
		GuardBudgetDivisor: DefaultGuardBudgetDivisor,
		MetaBudget:         DefaultMetaBudget,
		TraceEnabled:       false,
	}
}

// GuardBudget derives the guard-evaluation budget from StepBudget,
// falling back to DefaultGuardBudgetDivisor if the divisor is
// unconfigured or non-positive.
func (c KernelConfig) GuardBudget() int {
	d := c.GuardBudgetDivisor
	if d <= 0 {
		d = DefaultGuardBudgetDivisor
	}
	budget := c.StepBudget / d
	if budget < 1 {
		budget = 1
	}
	return budget
}

// Load parses a YAML document into a KernelConfig, starting from
// Default() so an empty or partial document still yields sane budgets.
func Load(data []byte) (KernelConfig, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return KernelConfig{}, err
	}
	if cfg.StepBudget <= 0 {
		cfg.StepBudget = DefaultStepBudget
	}
	if cfg.MetaBudget <= 0 {
		cfg.MetaBudget = DefaultMetaBudget
	}
	if cfg.GuardBudgetDivisor <= 0 {
		cfg.GuardBudgetDivisor = DefaultGuardBudgetDivisor
	}
	return cfg, nil
}
