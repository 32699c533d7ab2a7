package solver

import (
	"github.com/pkg/errors"

	"darp-dispatch/internal/models"
)

// ErrInconsistentSolution is fatal per SPEC_FULL.md §4.5: the walk from
// a vehicle's origin must always terminate at the depot.
var ErrInconsistentSolution = errors.New("solver returned inconsistent solution: walk did not reach depot")

// Decode applies a solved Result to the registry's live Vehicle and
// Request objects (C5, SPEC_FULL.md §4.5): walks each vehicle's chosen
// successor map, accumulates travel time, and populates per-rider
// waiting/travel times and detour ratios.
func Decode(idx *Index, result Result) error {
	for k, vehID := range idx.VehicleIDs {
		veh := idx.Vehicles[vehID]
		rr, ok := result.Routes[vehID]
		if !ok {
			continue
		}

		veh.Route = veh.Route[:0]
		veh.OnBoard = make(map[int64]int)
		veh.DetourRatio = make(map[int64]float64)
		veh.TravelTimeSecs = 0

		originIdx := idx.OriginIdx[k]
		cur := originIdx
		travel := 0.0
		veh.Route = append(veh.Route, models.RouteLeg{
			Loc:            idx.Stops[originIdx].Loc,
			Owner:          idx.Stops[originIdx].Owner,
			CumulativeSecs: 0,
		})

		for {
			next, found := rr.Succ[cur]
			if !found {
				return errors.Wrapf(ErrInconsistentSolution, "vehicle %d stop %d", vehID, cur)
			}
			if next == 0 {
				break
			}

			travel += idx.Cost[cur][next]
			stop := idx.Stops[next]
			veh.Route = append(veh.Route, models.RouteLeg{
				Loc:            stop.Loc,
				Owner:          stop.Owner,
				CumulativeSecs: travel,
			})

			if reqID, isRequestStop := idx.RequestOf[next]; isRequestStop {
				req := idx.Requests[reqID]
				if idx.PickupIdx[reqID] == next {
					req.ExpectedWaitingSecs = travel
					req.Assigned = true
					req.AssignedVehicleID = vehID
					veh.OnBoard[reqID] = req.PartySize
				} else {
					req.ExpectedTravelSecs = travel - req.ExpectedWaitingSecs
					if req.ShortestTimeSecs > 0 {
						veh.DetourRatio[reqID] = req.ExpectedTravelSecs / req.ShortestTimeSecs
					}
					// OnBoard membership is NOT cleared here: a single walk
					// visits both legs of every paired request, which would
					// make OnBoard unconditionally empty by the time Decode
					// returns. The tick orchestrator's move() is the
					// authoritative source of "on board as of now", derived
					// from how far into this route the elapsed tick horizon
					// actually reaches.
				}
			}

			cur = next
		}

		veh.TravelTimeSecs = travel
	}

	return nil
}
