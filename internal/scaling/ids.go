package scaling

import (
	"fmt"
	"sync/atomic"
	"time"
)

// IDGenerator issues line-item identifiers of the form
// <prefix>-<unix millis>-<sequence>. The sequence is shared by every prefix
// so identifiers stay unique inside a collection even within one millisecond.
type IDGenerator struct {
	seq atomic.Uint64
	now func() time.Time
}

// NewIDGenerator returns a generator using the wall clock.
func NewIDGenerator() *IDGenerator {
	return &IDGenerator{now: time.Now}
}

// Next returns a fresh identifier.
func (g *IDGenerator) Next(prefix string) string {
	now := time.Now
	if g.now != nil {
		now = g.now
	}
	return fmt.Sprintf("%s-%d-%d", prefix, now().UnixMilli(), g.seq.Add(1))
}
