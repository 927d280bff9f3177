package testutil

import (
	"fmt"
	"sync"
)

// FixedIDGenerator generates predictable session ids.
//
// This enables deterministic test execution and golden snapshot comparison.
// With a prefix of "session" it yields "session-0001", "session-0002", ...
// If prefix is empty, "test-session" is used.
//
// Thread-safety: Generate is safe for concurrent use.
type FixedIDGenerator struct {
	mu     sync.Mutex
	prefix string
	n      int
}

// NewFixedIDGenerator creates a generator for the given prefix.
func NewFixedIDGenerator(prefix string) *FixedIDGenerator {
	if prefix == "" {
		prefix = "test-session"
	}
	return &FixedIDGenerator{prefix: prefix}
}

// Generate returns the next id.
func (g *FixedIDGenerator) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n++
	return fmt.Sprintf("%s-%04d", g.prefix, g.n)
}
