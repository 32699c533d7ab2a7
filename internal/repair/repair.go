// Package repair implements the post-optimization detour-repair loop
// (C6, SPEC_FULL.md §4.6): ejects the smallest-capacity rider whose
// realized detour ratio exceeds the operator bound and rebuilds the
// vehicle's route, repeating until every remaining rider is within
// bound.
//
// Grounded on original_source/vehicle.py's reject_user/is_detour: the
// partition of offenders into the committed "booking" rider (who
// cannot be ejected) and the remaining candidates, and the
// smallest-party-first, earliest-request-time tie-break.
package repair

import (
	"sort"

	"github.com/samber/lo"

	"darp-dispatch/internal/models"
	"darp-dispatch/internal/oracle"
)

// Offender describes one over-limit rider during repair.
type Offender struct {
	RequestID int64
	PartySize int
	RequestAt int64 // unix seconds, for tie-break only
}

// Ejected is emitted once per repair iteration for the status reporter
// and audit log.
type Ejected struct {
	VehicleID int64
	RequestID int64
}

// Run repeatedly ejects the minimum-capacity detour offender from v
// until every remaining on-board rider is within limit, or the vehicle
// has no riders left. requests maps request id to its live Request
// record so the ejected rider can be reset.
func Run(v *models.Vehicle, requests map[int64]*models.Request, o *oracle.Oracle, limit float64) []Ejected {
	var ejections []Ejected

	for v.IsOverDetour(limit) {
		offenders := collectOffenders(v, limit)

		booking := bookingOffender(v, offenders)
		if booking != 0 {
			delete(v.DetourRatio, booking)
			continue
		}

		if len(offenders) == 0 {
			break
		}

		victim := pickVictim(offenders, requests)
		ejectRider(v, requests[victim], o)
		ejections = append(ejections, Ejected{VehicleID: v.ID, RequestID: victim})
	}

	return ejections
}

func collectOffenders(v *models.Vehicle, limit float64) []int64 {
	var out []int64
	for reqID, ratio := range v.DetourRatio {
		if ratio > limit {
			out = append(out, reqID)
		}
	}
	return out
}

// bookingOffender returns the request id the vehicle has committed to
// serving next (NextOwner points at a pickup), if it appears among the
// offenders — that promise is honored even if degraded.
func bookingOffender(v *models.Vehicle, offenders []int64) int64 {
	if v.NextOwner == nil || v.NextOwner.Kind != models.OwnerRequestPickup {
		return 0
	}
	bookingID := v.NextOwner.RequestID
	if lo.Contains(offenders, bookingID) {
		return bookingID
	}
	return 0
}

// pickVictim chooses argmin(candidates, party_size), ties broken by
// earliest request time then by id, matching SPEC_FULL.md §4.6 step 3.
func pickVictim(offenders []int64, requests map[int64]*models.Request) int64 {
	sort.Slice(offenders, func(i, j int) bool {
		ri, rj := requests[offenders[i]], requests[offenders[j]]
		if ri.PartySize != rj.PartySize {
			return ri.PartySize < rj.PartySize
		}
		if !ri.RequestAt.Equal(rj.RequestAt) {
			return ri.RequestAt.Before(rj.RequestAt)
		}
		return ri.ID < rj.ID
	})
	return offenders[0]
}

// ejectRider removes both stops of the victim from the route, recomputes
// cumulative times along the revised route via the oracle, zeroes the
// rider's waiting/travel times, and detaches it from the vehicle.
func ejectRider(v *models.Vehicle, req *models.Request, o *oracle.Oracle) {
	revised := make([]models.RouteLeg, 0, len(v.Route))
	for _, leg := range v.Route {
		if leg.Owner.Kind != models.OwnerVehicleOrigin && leg.Owner.RequestID == req.ID {
			continue
		}
		revised = append(revised, leg)
	}

	cumulative := 0.0
	for i := range revised {
		if i > 0 {
			cumulative += o.Cost(revised[i-1].Loc, revised[i].Loc)
		}
		revised[i].CumulativeSecs = cumulative
	}
	v.Route = revised
	v.TravelTimeSecs = cumulative

	delete(v.OnBoard, req.ID)
	delete(v.DetourRatio, req.ID)

	req.Reset()
}
