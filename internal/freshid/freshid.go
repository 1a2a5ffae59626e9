// Package freshid generates the symbolically unique identifiers the
// FreshId primitive (spec.md §6.2, §6.3, §9) hands out to effect
// requests. Design notes §9 call the source's counter "the only
// mutable global" and ask implementations to confine it to a
// per-kernel counter rather than a process-wide one — Source below is
// that per-kernel cell, grounded on the teacher's atomic Var-id counter
// (variable.go).
package freshid

import (
	"strconv"
	"sync/atomic"

	"github.com/google/uuid"
)

// Source produces fresh identifier strings. The zero Source is not
// usable; construct one with NewUUIDSource or NewCounterSource.
type Source interface {
	// Next returns a string guaranteed unique among all strings this
	// Source has ever produced.
	Next() string
}

// uuidSource backs production use: every id is a random UUIDv4, unique
// across concurrently-driven Universes without any shared mutable
// state between them (spec.md §5).
type uuidSource struct{}

// NewUUIDSource returns a Source backed by github.com/google/uuid.
func NewUUIDSource() Source { return uuidSource{} }

func (uuidSource) Next() string {
	return uuid.NewString()
}

// counterSource backs golden-trace tests that need deterministic,
// reproducible ids. It is an atomic monotonic counter scoped to the
// single Source value, never a package-level global, so two tests
// running in parallel with their own counterSource never interfere.
type counterSource struct {
	prefix string
	n      atomic.Uint64
}

// NewCounterSource returns a deterministic Source that yields
// "<prefix><n>" for n = 0, 1, 2, .... Safe for concurrent use.
func NewCounterSource(prefix string) Source {
	return &counterSource{prefix: prefix}
}

func (c *counterSource) Next() string {
	n := c.n.Add(1) - 1
	return c.prefix + strconv.FormatUint(n, 10)
}
