package testutil

import "fmt"

// SequenceIDGenerator returns "<prefix>-0001", "<prefix>-0002", ... driven by
// a DeterministicClock, so the same test produces the same run IDs every
// time and they sort in creation order.
type SequenceIDGenerator struct {
	prefix string
	clock  *DeterministicClock
}

// NewSequenceIDGenerator creates a generator. An empty prefix means "run".
func NewSequenceIDGenerator(prefix string) *SequenceIDGenerator {
	if prefix == "" {
		prefix = "run"
	}
	return &SequenceIDGenerator{prefix: prefix, clock: NewDeterministicClock()}
}

// Generate returns the next ID.
func (g *SequenceIDGenerator) Generate() string {
	return fmt.Sprintf("%s-%04d", g.prefix, g.clock.Next())
}

// Reset restarts the sequence.
func (g *SequenceIDGenerator) Reset() {
	g.clock.Reset()
}
