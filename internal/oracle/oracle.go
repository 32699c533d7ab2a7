// Package oracle implements the memoized point-to-point travel-time
// provider (Distance Oracle, C1) that sits in front of an external
// shortest-path planner.
package oracle

import (
	"sync"

	"darp-dispatch/internal/models"
)

// Planner is the consumed shortest-path contract: Init resets internal
// search state, Astar returns the shortest travel time in seconds
// between two locations.
type Planner interface {
	Init()
	Astar(from, to models.Location) (seconds float64, reachable bool)
}

// unreachableCost is the prohibitively large but finite cost substituted
// when the planner reports no path, per SPEC_FULL.md §7 ("Oracle
// failure" is not a process abort — the working-time constraint will
// forbid the arc instead).
const unreachableCost = 1e12

// Oracle is the memoized, monotone-growing distance table. Entries are
// never evicted within a run; the table is additively grown and is the
// only source of edge costs consumed by the formulator and repair loop.
type Oracle struct {
	planner Planner

	mu    sync.RWMutex
	index map[key]int // O(1) lookup into entries, mirrors the file-cache pattern
	costs []float64
}

type key struct {
	from, to models.Location
}

// New constructs an Oracle backed by the given planner.
func New(planner Planner) *Oracle {
	return &Oracle{
		planner: planner,
		index:   make(map[key]int),
	}
}

// Cost returns the memoized travel time between a and b, computing and
// storing it first if absent. Any pair touching the depot is 0 by
// definition.
func (o *Oracle) Cost(a, b models.Location) float64 {
	if a == models.DepotLocation || b == models.DepotLocation {
		return 0
	}
	if a == b {
		return 0
	}

	k := key{a, b}

	o.mu.RLock()
	if idx, ok := o.index[k]; ok {
		c := o.costs[idx]
		o.mu.RUnlock()
		return c
	}
	o.mu.RUnlock()

	return o.ensure(k)
}

// ensure computes the cost under the write lock, re-checking presence
// to stay correct under concurrent callers (SPEC_FULL.md §5: pair
// insertion must be atomic per key).
func (o *Oracle) ensure(k key) float64 {
	o.mu.Lock()
	defer o.mu.Unlock()

	if idx, ok := o.index[k]; ok {
		return o.costs[idx]
	}

	o.planner.Init()
	secs, reachable := o.planner.Astar(k.from, k.to)
	if !reachable {
		secs = unreachableCost
	}

	o.index[k] = len(o.costs)
	o.costs = append(o.costs, secs)
	return secs
}

// WarmFor precomputes the cost between subject and every location in
// others (both directions), used by the registry on admission.
func (o *Oracle) WarmFor(subject models.Location, others []models.Location) {
	for _, other := range others {
		if other == subject {
			continue
		}
		o.Cost(subject, other)
		o.Cost(other, subject)
	}
}
