// Package random provides Random implementations.
package random

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"sync"

	"github.com/artpar/cmdgate/ports"
)

// Real uses crypto/rand for secure randomness.
type Real struct{}

// IntN returns a uniform random int in [0, max). Rejection sampling
// keeps the distribution unbiased for any max.
func (Real) IntN(max int) (int, error) {
	if max <= 0 {
		return 0, fmt.Errorf("random: max must be positive, got %d", max)
	}

	bound := uint64(max)
	limit := (^uint64(0)/bound)*bound - 1

	var buf [8]byte
	for {
		if _, err := rand.Read(buf[:]); err != nil {
			return 0, fmt.Errorf("random: %w", err)
		}
		v := binary.BigEndian.Uint64(buf[:])
		if v <= limit {
			return int(v % bound), nil
		}
	}
}

// Fake provides deterministic randomness for testing.
type Fake struct {
	mu     sync.Mutex
	values []int
	index  int
}

// NewFake creates a fake random source that cycles through values.
// With no values it always returns 0.
func NewFake(values ...int) *Fake {
	return &Fake{values: values}
}

// IntN returns the next preset value modulo max.
func (f *Fake) IntN(max int) (int, error) {
	if max <= 0 {
		return 0, fmt.Errorf("random: max must be positive, got %d", max)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if len(f.values) == 0 {
		return 0, nil
	}
	v := f.values[f.index%len(f.values)]
	f.index++
	return v % max, nil
}

// Ensure interface compliance.
var (
	_ ports.Random = Real{}
	_ ports.Random = (*Fake)(nil)
)
