// Package kernellog wires the kernel's structured logging to
// go.uber.org/zap. It defaults to a silent no-op logger so that
// importing the kernel as a library never writes to a host's stdout
// unless the host opts in, matching the convention of treating a
// package-level logger as a configurable dependency rather than a
// global side effect.
package kernellog

import "go.uber.org/zap"

var current = zap.NewNop().Sugar()

// Set installs l as the package-wide logger used by the normalization
// driver (including the driver the meta-layer runs). Rule-index
// construction does not log. Passing nil restores the no-op logger.
func Set(l *zap.SugaredLogger) {
	if l == nil {
		current = zap.NewNop().Sugar()
		return
	}
	current = l
}

// Get returns the currently installed logger.
func Get() *zap.SugaredLogger {
	return current
}

// NewDevelopment is a convenience constructor hosts can pass to Set
// when they want human-readable logs during development, mirroring
// zap.NewDevelopment's defaults.
func NewDevelopment() (*zap.SugaredLogger, error) {
	l, err := zap.NewDevelopment()
	if err != nil {
		return nil, err
	}
	return l.Sugar(), nil
}
