package obs

import (
	"sync/atomic"
	"time"
)

// SequenceGenerator creates monotonically increasing sequence numbers for
// book deltas and journal records.
type SequenceGenerator struct {
	next uint64
}

// NewSequenceGenerator returns a generator seeded with the given value.
func NewSequenceGenerator(seed uint64) *SequenceGenerator {
	if seed == 0 {
		seed = uint64(time.Now().UTC().UnixNano())
	}
	return &SequenceGenerator{next: seed}
}

// Next returns the next sequence number.
func (g *SequenceGenerator) Next() uint64 {
	if g == nil {
		return 0
	}
	return atomic.AddUint64(&g.next, 1)
}
