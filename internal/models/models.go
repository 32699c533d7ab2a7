// Package models defines the core value types of the dispatch engine:
// locations, requests, vehicles, stops, and the supporting DTOs used by
// the feed readers and audit log.
package models

import "time"

// Location is an opaque road-network node id. DepotLocation is the
// sentinel artificial depot: every arc touching it costs zero.
type Location int64

// DepotLocation is the artificial depot sentinel.
const DepotLocation Location = 0

// StopOwnerKind tags which of the three roles a Stop plays.
type StopOwnerKind int

const (
	OwnerVehicleOrigin StopOwnerKind = iota
	OwnerRequestPickup
	OwnerRequestDropoff
)

func (k StopOwnerKind) String() string {
	switch k {
	case OwnerVehicleOrigin:
		return "origin"
	case OwnerRequestPickup:
		return "pickup"
	case OwnerRequestDropoff:
		return "dropoff"
	default:
		return "unknown"
	}
}

// StopOwner is a tagged variant over the three owner kinds. Deliberately
// not modeled as a common base type — see the pairing requirement in
// SPEC_FULL.md §9.
type StopOwner struct {
	Kind      StopOwnerKind
	VehicleID int64 // valid when Kind == OwnerVehicleOrigin
	RequestID int64 // valid when Kind == OwnerRequestPickup/Dropoff
}

// Stop is a node of the routing graph: a (Location, owner) pair.
// Uniqueness is by the pair, not by Location alone.
type Stop struct {
	Loc   Location
	Owner StopOwner
}

// RouteLeg is one entry of a committed vehicle route: the stop visited
// and the cumulative travel time to reach it.
type RouteLeg struct {
	Loc             Location
	Owner           StopOwner
	CumulativeSecs  float64
}

// Request is a single rider's pickup/drop-off demand ("User" in the
// distilled spec).
type Request struct {
	ID         int64
	RequestAt  time.Time
	Pickup     Location
	Dropoff    Location
	PartySize  int

	// plan state, mutated by the solver/decoder/repair loop
	ShortestTimeSecs     float64
	ExpectedWaitingSecs  float64
	ExpectedTravelSecs   float64
	AssignedVehicleID    int64 // 0 means unassigned (vehicle ids are never 0; depot owns that id space for locations only)
	Assigned             bool
	PickedUp             bool
	DroppedOff           bool
}

// DetourRatio returns expected_travel_time / shortest_time, or 0 if the
// shortest time is not yet known (unassigned request).
func (r *Request) DetourRatio() float64 {
	if r.ShortestTimeSecs <= 0 {
		return 0
	}
	return r.ExpectedTravelSecs / r.ShortestTimeSecs
}

// Reset clears plan state, returning the request to the free pool.
func (r *Request) Reset() {
	r.ExpectedWaitingSecs = 0
	r.ExpectedTravelSecs = 0
	r.AssignedVehicleID = 0
	r.Assigned = false
	r.PickedUp = false
	r.DroppedOff = false
}

// Vehicle is a single fleet vehicle and its committed plan state.
type Vehicle struct {
	ID                 int64
	StartAt            time.Time
	Origin             Location
	WorkingTimeSecs    float64
	Capacity           int

	// plan state
	Route       []RouteLeg
	OnBoard     map[int64]int // request id -> party size, for fast capacity recompute
	DetourRatio map[int64]float64
	TravelTimeSecs float64
	Here        Location
	NextLoc     *Location // nil if no committed outgoing edge
	NextOwner   *StopOwner
}

// Reset clears plan state for a fresh tick's formulation, matching the
// original `Vehicle.reset()`: route begins at Origin, on-board/detour
// maps are cleared. It does NOT touch identity fields.
func (v *Vehicle) Reset() {
	v.Route = []RouteLeg{{Loc: v.Origin, Owner: StopOwner{Kind: OwnerVehicleOrigin, VehicleID: v.ID}, CumulativeSecs: 0}}
	v.OnBoard = make(map[int64]int)
	v.DetourRatio = make(map[int64]float64)
	v.TravelTimeSecs = 0
	v.Here = v.Origin
	v.NextLoc = nil
	v.NextOwner = nil
}

// NumOnBoard recomputes the party-size sum over on-board riders from
// scratch. The original `accept_user`'s incremental bookkeeping is
// known-buggy (see SPEC_FULL.md §9 / DESIGN.md); this is the
// recompute-from-scratch form the spec mandates instead.
func (v *Vehicle) NumOnBoard() int {
	total := 0
	for _, partySize := range v.OnBoard {
		total += partySize
	}
	return total
}

// IsOverDetour reports whether any on-board rider exceeds limit.
func (v *Vehicle) IsOverDetour(limit float64) bool {
	for _, ratio := range v.DetourRatio {
		if ratio > limit {
			return true
		}
	}
	return false
}

// HasExpired reports whether the vehicle's shift has ended by now.
func (v *Vehicle) HasExpired(now time.Time) bool {
	return !v.StartAt.Add(time.Duration(v.WorkingTimeSecs) * time.Second).After(now)
}

// RequestRow and VehicleRow are the raw CSV feed DTOs (see SPEC_FULL.md
// §3), decoded by internal/feed.
type RequestRow struct {
	Time    time.Time
	ID      int64
	Pickup  Location
	Dropoff Location
	Num     int
}

type VehicleRow struct {
	Time        time.Time
	ID          int64
	Location    Location
	WorkingTime float64
	Capacity    int
}

// AuditRoute is one persisted row of the audit log (C12): a single
// vehicle stop committed in a given tick.
type AuditRoute struct {
	TickID            string
	VehicleID         int64
	StopOrder         int
	LocationID        Location
	OwnerKind         string
	CumulativeSeconds float64
	CommittedAt       time.Time
}
