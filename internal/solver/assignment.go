package solver

import (
	"sort"
)

// Weights are the caller-supplied objective coefficients (α, β, γ) plus
// the per-unvisited-stop penalty, per SPEC_FULL.md §4.3.
type Weights struct {
	Alpha, Beta, Gamma float64
	Penalty            float64
}

// assignmentEngine performs the outer branch-and-bound: for every
// request, decide whether it is served by some vehicle (and which) or
// left unvisited, subject to a per-vehicle inner route search
// (vehicle_route.go) validating capacity/time/precedence feasibility.
// This decomposition is valid because no constraint in SPEC_FULL.md
// §4.3 couples two different vehicles directly — flow conservation,
// capacity, and working time are all scoped to one vehicle at a time.
type assignmentEngine struct {
	idx     *Index
	weights Weights

	requestIDs []int64
	vehicleIDs []int64

	forced map[int64]int64 // request id -> vehicle id, from warm-start commitments

	dl *deadline

	bestObjective float64
	bestAssign    map[int64]int64              // request id -> vehicle id (absent = unvisited)
	bestRoutes    map[int64]vehicleRouteResult // captured at incumbent time, SPEC_FULL.md §5
	found         bool

	cuts []Cut
}

// Result is the outer solve's outcome for one tick.
type Result struct {
	Status     Status
	Assignment map[int64]int64        // request id -> vehicle id
	Routes     map[int64]vehicleRouteResult // vehicle id -> its chosen route
	Objective  float64
	Cuts       []Cut
}

// Status mirrors the small taxonomy SPEC_FULL.md §6 requires any
// consumed solver interface to expose.
type Status int

const (
	StatusOptimal Status = iota
	StatusInfeasible
	StatusTimeLimit
	StatusOther
)

// Solve runs the outer branch-and-bound over request-to-vehicle
// assignment. forced carries warm-start commitments: a request id that
// must be served by a specific vehicle id because it is already on
// board or is that vehicle's committed next pickup (SPEC_FULL.md §4.3's
// warm-start/commitment rule). deadlineMS is
// a per-solve wall-clock budget in milliseconds (SPEC_FULL.md §5);
// zero or negative disables it and the search runs to completion.
func Solve(idx *Index, weights Weights, forced map[int64]int64, deadlineMS int) Result {
	e := &assignmentEngine{
		idx:           idx,
		weights:       weights,
		requestIDs:    append([]int64{}, idx.RequestIDs...),
		vehicleIDs:    append([]int64{}, idx.VehicleIDs...),
		forced:        forced,
		dl:            newDeadline(deadlineMS),
		bestObjective: 0,
	}
	sort.Slice(e.requestIDs, func(i, j int) bool { return e.requestIDs[i] < e.requestIDs[j] })

	assign := make(map[int64]int64, len(e.requestIDs))
	e.dfs(0, assign)

	if e.dl.fired {
		if !e.found {
			return Result{Status: StatusTimeLimit, Cuts: e.cuts}
		}
		return Result{
			Status:     StatusTimeLimit,
			Assignment: e.bestAssign,
			Routes:     e.bestRoutes,
			Objective:  e.bestObjective,
			Cuts:       e.cuts,
		}
	}

	if !e.found {
		return Result{Status: StatusInfeasible, Cuts: e.cuts}
	}

	return Result{
		Status:     StatusOptimal,
		Assignment: e.bestAssign,
		Routes:     e.bestRoutes,
		Objective:  e.bestObjective,
		Cuts:       e.cuts,
	}
}

// dfs decides, for requestIDs[pos], whether it is unvisited or served
// by one of the candidate vehicles, then recurses. At a leaf it
// evaluates the full objective by solving every vehicle's inner route.
func (e *assignmentEngine) dfs(pos int, assign map[int64]int64) {
	if e.dl.expired() {
		return
	}

	if pos == len(e.requestIDs) {
		e.evaluateLeaf(assign)
		return
	}

	reqID := e.requestIDs[pos]

	if vehID, isForced := e.forced[reqID]; isForced {
		assign[reqID] = vehID
		e.dfs(pos+1, assign)
		delete(assign, reqID)
		return
	}

	// Option 1: leave unvisited.
	e.dfs(pos+1, assign)

	// Option 2: assign to each candidate vehicle (capacity-prechecked
	// cheaply; the inner route search re-validates exactly at the leaf).
	req := e.idx.Requests[reqID]
	for _, vehID := range e.vehicleIDs {
		veh := e.idx.Vehicles[vehID]
		if req.PartySize > veh.Capacity {
			continue
		}
		assign[reqID] = vehID
		e.dfs(pos+1, assign)
		delete(assign, reqID)
	}
}

// evaluateLeaf computes the objective for one complete assignment by
// solving each vehicle's inner route, then compares against the
// incumbent.
func (e *assignmentEngine) evaluateLeaf(assign map[int64]int64) {
	routes, ok := e.materializeRoutes(assign)
	if !ok {
		return
	}

	objective := 0.0
	for vehID, rr := range routes {
		objective += e.weights.Alpha * rr.Cost
		_ = vehID
	}
	for _, reqID := range e.requestIDs {
		req := e.idx.Requests[reqID]
		if _, served := assign[reqID]; served {
			objective += e.weights.Beta * (-float64(req.PartySize))
		} else {
			objective += e.weights.Gamma * e.weights.Penalty
			objective += e.weights.Gamma * e.weights.Penalty // pickup + dropoff both unvisited (u[pu]=u[do]=1)
		}
	}

	if !e.found || objective < e.bestObjective {
		e.found = true
		e.bestObjective = objective
		e.bestAssign = make(map[int64]int64, len(assign))
		for k, v := range assign {
			e.bestAssign[k] = v
		}
		e.bestRoutes = routes
	}
}

// materializeRoutes solves every vehicle's inner route for the given
// assignment, returning ok=false if any vehicle's assigned set is
// infeasible (capacity/time/precedence cannot be satisfied by any
// ordering).
func (e *assignmentEngine) materializeRoutes(assign map[int64]int64) (map[int64]vehicleRouteResult, bool) {
	byVehicle := make(map[int64][]int64, len(e.vehicleIDs))
	for reqID, vehID := range assign {
		byVehicle[vehID] = append(byVehicle[vehID], reqID)
	}

	routes := make(map[int64]vehicleRouteResult, len(e.vehicleIDs))
	for k, vehID := range e.vehicleIDs {
		if e.dl.expired() {
			return nil, false
		}
		veh := e.idx.Vehicles[vehID]
		reqs := byVehicle[vehID]
		sort.Slice(reqs, func(i, j int) bool { return reqs[i] < reqs[j] })
		rr := solveVehicleRoute(e.idx, veh, e.idx.OriginIdx[k], reqs, e.dl)
		e.cuts = append(e.cuts, rr.Cuts...)
		if !rr.Found {
			return nil, false
		}
		routes[vehID] = rr
	}
	return routes, true
}

// EmptySnapshot reports whether there is nothing to solve (no active
// vehicles means no feasible formulation regardless of requests).
func EmptySnapshot(idx *Index) bool {
	return len(idx.VehicleIDs) == 0
}
