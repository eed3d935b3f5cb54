// Package ids hands out entity identifiers.
//
// Ids are millisecond timestamps so they stay compatible with existing
// backups, but the generator never returns the same or a smaller value twice,
// even when called several times within one millisecond.
package ids

import (
	"sync"
	"time"
)

type Generator struct {
	mu   sync.Mutex
	last int64
	now  func() time.Time
}

func NewGenerator() *Generator {
	return &Generator{now: time.Now}
}

// NewGeneratorWithClock is used by tests to pin the clock.
func NewGeneratorWithClock(now func() time.Time) *Generator {
	return &Generator{now: now}
}

// Next returns max(now in ms, last+1).
func (g *Generator) Next() int64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	id := g.now().UnixMilli()
	if id <= g.last {
		id = g.last + 1
	}
	g.last = id
	return id
}

// Observe makes sure future ids are greater than id.
func (g *Generator) Observe(id int64) {
	g.mu.Lock()
	if id > g.last {
		g.last = id
	}
	g.mu.Unlock()
}
