package solver

import (
	"sort"

	"darp-dispatch/internal/models"
)

// routeEngine is the per-vehicle branch-and-bound search: given a fixed
// subset of requests assigned to one vehicle, it finds the minimum-cost
// Hamiltonian path from the vehicle's current position to the depot
// that respects capacity, working-time budget, and pickup-before-
// drop-off precedence, eliminating disconnected sub-tours via
// SubtourCallback as they are discovered (SPEC_FULL.md §4.3/§4.4).
//
// Grounded on katalvlaran-lvlath/tsp-bb.go's dedicated-engine shape
// (explicit struct instead of closures, deterministic branching order,
// simple cost-so-far pruning) adapted from a single Hamiltonian-cycle
// search to a per-vehicle optional-node, paired-precedence search.
type routeEngine struct {
	idx      *Index
	origin   int
	depot    int
	capacity int
	working  float64

	nodes    []int // candidate node indices for this vehicle, excluding origin/depot
	pickupOf map[int]int // dropoff node -> its pickup node, for precedence checks

	// forcedOriginSucc is the stop index the vehicle must reach first
	// this tick, per SPEC_FULL.md §4.3's committed-edge warm-start rule
	// (e[here, next_loc, k]=1). Zero means no forcing.
	forcedOriginSucc int

	dl *deadline

	callback SubtourCallback
	cuts     []Cut

	bestSucc map[int]int
	bestCost float64
	found    bool
}

// vehicleRouteResult is the outcome of one vehicle's inner solve.
type vehicleRouteResult struct {
	Succ  map[int]int
	Cost  float64
	Cuts  []Cut
	Found bool
}

// solveVehicleRoute runs the inner branch-and-bound for one vehicle
// given the request ids it must service. v's NextOwner, if set, forces
// the first edge out of origin (§4.3's committed-edge warm-start); dl
// is the shared wall-clock budget for this Solve call.
func solveVehicleRoute(idx *Index, v *models.Vehicle, originIdx int, servicedRequestIDs []int64, dl *deadline) vehicleRouteResult {
	e := &routeEngine{
		idx:      idx,
		origin:   originIdx,
		depot:    0,
		capacity: v.Capacity,
		working:  v.WorkingTimeSecs,
		pickupOf: make(map[int]int),
		bestCost: -1,
		dl:       dl,
	}

	for _, reqID := range servicedRequestIDs {
		pu := idx.PickupIdx[reqID]
		do := idx.DropoffIdx[reqID]
		e.nodes = append(e.nodes, pu, do)
		e.pickupOf[do] = pu
	}
	sort.Ints(e.nodes)

	e.callback = NewSubtourCallback(e.depot, len(e.nodes)+2)

	if len(e.nodes) == 0 {
		// Empty route: origin goes straight to depot.
		succ := map[int]int{e.origin: e.depot}
		return vehicleRouteResult{Succ: succ, Cost: 0, Found: true}
	}

	e.forcedOriginSucc = committedOriginSucc(idx, v, e.nodes)

	targets := make([]int, 0, len(e.nodes)+1)
	targets = append(targets, e.nodes...)
	targets = append(targets, e.depot)

	succ := make(map[int]int, len(e.nodes)+1)
	usedTarget := make(map[int]bool, len(targets))
	sourceOrder := append([]int{e.origin}, e.nodes...)

	e.dfs(sourceOrder, 0, targets, usedTarget, succ, 0, 0, 0)

	return vehicleRouteResult{Succ: e.bestSucc, Cost: e.bestCost, Cuts: e.cuts, Found: e.found}
}

// committedOriginSucc resolves SPEC_FULL.md §4.3's forced committed
// edge e[here, next_loc, k]=1: if the vehicle already committed to a
// next stop (Vehicle.NextLoc/NextOwner, set by the tick orchestrator's
// move()), that stop must remain the first one reached this tick,
// independent of the on-board warm-start rule. Returns 0 (no forcing)
// if there is no pending commitment, or the committed request is not
// part of this branch's serviced set (e.g. it was left unvisited by
// the outer assignment search).
func committedOriginSucc(idx *Index, v *models.Vehicle, nodes []int) int {
	if v.NextOwner == nil {
		return 0
	}

	var target int
	switch v.NextOwner.Kind {
	case models.OwnerRequestPickup:
		target = idx.PickupIdx[v.NextOwner.RequestID]
	case models.OwnerRequestDropoff:
		target = idx.DropoffIdx[v.NextOwner.RequestID]
	default:
		return 0
	}

	for _, n := range nodes {
		if n == target {
			return target
		}
	}
	return 0
}

// dfs assigns a successor to sourceOrder[pos], trying targets in
// ascending cost order (deterministic branching, same spirit as
// tsp-bb.go's neighborOrder), then recurses. On a complete assignment
// it decodes the functional graph and either records a new incumbent
// or discovers and records a bad sub-tour via the callback.
func (e *routeEngine) dfs(sourceOrder []int, pos int, targets []int, usedTarget map[int]bool, succ map[int]int, costSoFar float64, loadSoFar int, timeSoFar float64) {
	if e.dl.expired() {
		return
	}

	if e.found && costSoFar >= e.bestCost {
		return
	}

	if pos == len(sourceOrder) {
		e.evaluateLeaf(succ, costSoFar)
		return
	}

	src := sourceOrder[pos]
	ordered := e.orderedCandidates(src, targets)
	if src == e.origin && e.forcedOriginSucc != 0 {
		ordered = []int{e.forcedOriginSucc}
	}

	for _, tgt := range ordered {
		if usedTarget[tgt] {
			continue
		}
		if tgt == src {
			continue
		}
		// Precedence: a dropoff may only be targeted by an edge once its
		// matching pickup has already been given a successor (mirrors the
		// MTZ pickup-before-dropoff constraint, checked incrementally).
		if pu, isDropoff := e.pickupOf[tgt]; isDropoff {
			if _, placed := succ[pu]; !placed && pu != src {
				continue
			}
		}

		cost := e.idx.Cost[src][tgt]
		newTime := timeSoFar + cost
		if newTime > e.working {
			continue
		}

		usedTarget[tgt] = true
		succ[src] = tgt
		e.dfs(sourceOrder, pos+1, targets, usedTarget, succ, costSoFar+cost, loadSoFar, newTime)
		delete(succ, src)
		usedTarget[tgt] = false
	}
}

// evaluateLeaf decodes a fully-assigned successor function: walks from
// origin, checks connectivity (no sub-tour), capacity-prefix, and
// pickup-before-drop-off precedence, and records a new incumbent if it
// beats the current best.
func (e *routeEngine) evaluateLeaf(succ map[int]int, totalCost float64) {
	cuts := e.callback.Detect(e.origin, succ)
	if len(cuts) > 0 {
		e.cuts = append(e.cuts, cuts...)
		return // disconnected sub-tour: reject this leaf, backtrack continues in dfs
	}

	visitedOrder := []int{}
	load := 0
	cur := e.origin
	for {
		visitedOrder = append(visitedOrder, cur)
		next, ok := succ[cur]
		if !ok {
			return
		}
		if cur != e.origin {
			load += e.idx.PartySize(cur)
			if load > e.capacity {
				return
			}
		}
		if next == e.depot {
			break
		}
		cur = next
	}

	position := make(map[int]int, len(visitedOrder))
	for i, n := range visitedOrder {
		position[n] = i
	}
	for dropoff, pickup := range e.pickupOf {
		pp, puOK := position[pickup]
		dp, doOK := position[dropoff]
		if !puOK || !doOK || pp >= dp {
			return
		}
	}

	if !e.found || totalCost < e.bestCost {
		e.found = true
		e.bestCost = totalCost
		e.bestSucc = make(map[int]int, len(succ))
		for k, v := range succ {
			e.bestSucc[k] = v
		}
	}
}

// orderedCandidates returns targets sorted by ascending edge cost from
// src, ties broken by index, for deterministic, prune-friendly
// branching order.
func (e *routeEngine) orderedCandidates(src int, targets []int) []int {
	out := make([]int, len(targets))
	copy(out, targets)
	sort.Slice(out, func(i, j int) bool {
		ci, cj := e.idx.Cost[src][out[i]], e.idx.Cost[src][out[j]]
		if ci == cj {
			return out[i] < out[j]
		}
		return ci < cj
	})
	return out
}
