package freshid_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/relang/symkernel/internal/freshid"
)

func TestCounterSourceIsDeterministicAndUnique(t *testing.T) {
	s := freshid.NewCounterSource("id-")
	a := s.Next()
	b := s.Next()
	assert.Equal(t, "id-0", a)
	assert.Equal(t, "id-1", b)
	assert.NotEqual(t, a, b)
}

func TestUUIDSourceProducesUniqueValues(t *testing.T) {
	s := freshid.NewUUIDSource()
	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		id := s.Next()
		assert.False(t, seen[id])
		seen[id] = true
	}
}
