package solver

// SubtourCallback implements the sub-tour elimination callback (C4,
// SPEC_FULL.md §4.4): given a per-vehicle successor assignment (the
// functional graph an integer-feasible incumbent would decode into),
// it detects disconnected components that are not the depot-rooted
// route and reports them as lazy cuts.
//
// The callback is reentrant: it touches no outer mutable state, only
// the succ/node-count values passed in by value/reference, and the
// cuts slice it allocates and returns is owned by the caller.
type SubtourCallback struct {
	depot int
	n     int // total distinct nodes considered for this vehicle, including depot
}

// NewSubtourCallback constructs a callback scoped to one vehicle's
// candidate node set of size n (including the depot), per SPEC_FULL.md
// §9 ("pass it the per-solve context... by value or immutable
// reference").
func NewSubtourCallback(depot, n int) SubtourCallback {
	return SubtourCallback{depot: depot, n: n}
}

// Cut names a bad sub-tour: the set of node indices participating in a
// disconnected cycle, and the forbidding inequality's right-hand side
// (|T|-1).
type Cut struct {
	Nodes []int
	Bound int
}

// Detect walks succ starting at the depot's route origin and returns
// every bad sub-tour found among the remaining nodes not reached by
// that walk. succ maps a node index to its chosen successor; a node
// absent from succ has no outgoing edge yet (should not happen for an
// integer-feasible incumbent, which is total over the serviced set).
func (cb SubtourCallback) Detect(origin int, succ map[int]int) []Cut {
	reached := make(map[int]bool, cb.n)
	cur := origin
	for {
		if reached[cur] {
			break
		}
		reached[cur] = true
		next, ok := succ[cur]
		if !ok || next == cb.depot {
			break
		}
		cur = next
	}

	var cuts []Cut
	seen := make(map[int]bool, cb.n)
	for node := range succ {
		if reached[node] || seen[node] {
			continue
		}
		component := cb.peelComponent(node, succ, seen)
		if len(component) >= 2 {
			cuts = append(cuts, Cut{Nodes: component, Bound: len(component) - 1})
		}
	}
	return cuts
}

// peelComponent follows succ from start until it returns to an
// already-visited node, marking every node walked as seen so the
// caller's outer loop does not re-discover the same component from a
// different starting node. A component is "bad" (SPEC_FULL.md §4.4)
// iff it excludes the depot and has at least two nodes.
func (cb SubtourCallback) peelComponent(start int, succ map[int]int, seen map[int]bool) []int {
	var component []int
	visited := make(map[int]bool)
	cur := start
	for {
		if visited[cur] {
			break
		}
		visited[cur] = true
		seen[cur] = true
		if cur != cb.depot {
			component = append(component, cur)
		}
		next, ok := succ[cur]
		if !ok {
			break
		}
		cur = next
	}
	return component
}
