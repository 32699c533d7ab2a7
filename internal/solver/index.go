// Package solver implements the MIP Formulator (C3), the hand-written
// branch-and-bound search that plays the role of the MIP engine, the
// sub-tour elimination callback (C4), and the solution decoder (C5).
//
// No off-the-shelf MIP/ILP solver library is used: none exists in the
// reference corpus this module was grounded on (see DESIGN.md). The
// search is grounded stylistically on a dedicated-engine branch-and-
// bound TSP solver and algorithmically on the exact constraint set this
// system replaces a gurobipy model with.
package solver

import (
	"sort"

	"darp-dispatch/internal/models"
	"darp-dispatch/internal/oracle"
)

// Index is the contiguous stop table built from a registry snapshot,
// per SPEC_FULL.md §4.3: depot at index 0, followed by vehicle origins,
// then pickups and drop-offs.
type Index struct {
	Stops []models.Stop // Stops[i] is the stop at index i; Stops[0] is the depot

	VehicleIDs  []int64 // VehicleIDs[k] for vehicle slot k
	OriginIdx   []int   // OriginIdx[k] is the stop index of vehicle k's origin
	Vehicles    map[int64]*models.Vehicle

	PickupIdx   map[int64]int // request id -> pickup stop index
	DropoffIdx  map[int64]int // request id -> dropoff stop index
	RequestOf   map[int]int64 // stop index -> owning request id (pickup or dropoff)
	Requests    map[int64]*models.Request
	RequestIDs  []int64 // stable order

	Cost [][]float64 // Cost[i][j], symmetric-not-assumed
}

// N returns the total stop count including the depot.
func (idx *Index) N() int { return len(idx.Stops) }

// Build constructs the Index from the currently active vehicles and
// requests, computing the full pairwise cost matrix via the oracle.
// Vehicles and requests are ordered by id for determinism.
func Build(vehicles []*models.Vehicle, requests []*models.Request, o *oracle.Oracle) *Index {
	sort.Slice(vehicles, func(i, j int) bool { return vehicles[i].ID < vehicles[j].ID })
	sort.Slice(requests, func(i, j int) bool { return requests[i].ID < requests[j].ID })

	idx := &Index{
		Vehicles:   make(map[int64]*models.Vehicle, len(vehicles)),
		PickupIdx:  make(map[int64]int, len(requests)),
		DropoffIdx: make(map[int64]int, len(requests)),
		RequestOf:  make(map[int]int64, 2*len(requests)),
		Requests:   make(map[int64]*models.Request, len(requests)),
	}

	idx.Stops = append(idx.Stops, models.Stop{Loc: models.DepotLocation, Owner: models.StopOwner{Kind: models.OwnerVehicleOrigin}})

	for _, v := range vehicles {
		idx.Vehicles[v.ID] = v
		idx.VehicleIDs = append(idx.VehicleIDs, v.ID)
		stopIdx := len(idx.Stops)
		// The route's origin stop is the vehicle's *current* position
		// (Here), not its immutable shift-start Origin: after the first
		// tick these diverge once vehicle.move() has advanced Here.
		idx.Stops = append(idx.Stops, models.Stop{Loc: v.Here, Owner: models.StopOwner{Kind: models.OwnerVehicleOrigin, VehicleID: v.ID}})
		idx.OriginIdx = append(idx.OriginIdx, stopIdx)
	}

	for _, r := range requests {
		idx.Requests[r.ID] = r
		idx.RequestIDs = append(idx.RequestIDs, r.ID)

		puIdx := len(idx.Stops)
		idx.Stops = append(idx.Stops, models.Stop{Loc: r.Pickup, Owner: models.StopOwner{Kind: models.OwnerRequestPickup, RequestID: r.ID}})
		idx.PickupIdx[r.ID] = puIdx
		idx.RequestOf[puIdx] = r.ID

		doIdx := len(idx.Stops)
		idx.Stops = append(idx.Stops, models.Stop{Loc: r.Dropoff, Owner: models.StopOwner{Kind: models.OwnerRequestDropoff, RequestID: r.ID}})
		idx.DropoffIdx[r.ID] = doIdx
		idx.RequestOf[doIdx] = r.ID
	}

	n := len(idx.Stops)
	idx.Cost = make([][]float64, n)
	for i := 0; i < n; i++ {
		idx.Cost[i] = make([]float64, n)
		for j := 0; j < n; j++ {
			if i == j {
				continue
			}
			idx.Cost[i][j] = o.Cost(idx.Stops[i].Loc, idx.Stops[j].Loc)
		}
	}

	return idx
}

// PartySize returns the party size consumed by stop i: positive for a
// pickup, negative for a drop-off (the matching release), zero for
// origin/depot stops.
func (idx *Index) PartySize(stopIdx int) int {
	if reqID, ok := idx.RequestOf[stopIdx]; ok {
		req := idx.Requests[reqID]
		if idx.PickupIdx[reqID] == stopIdx {
			return req.PartySize
		}
		return -req.PartySize
	}
	return 0
}
