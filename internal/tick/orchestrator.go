// Package tick implements the Tick Orchestrator (C7, SPEC_FULL.md
// §4.7): per discrete control tick, admit arrivals, expire vehicles,
// formulate and solve, decode, repair, commit, and advance vehicle
// position.
package tick

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/pkg/errors"

	"darp-dispatch/internal/audit"
	"darp-dispatch/internal/feed"
	"darp-dispatch/internal/logging"
	"darp-dispatch/internal/models"
	"darp-dispatch/internal/oracle"
	"darp-dispatch/internal/registry"
	"darp-dispatch/internal/repair"
	"darp-dispatch/internal/report"
	"darp-dispatch/internal/solver"
)

// ErrInfeasible is returned when a tick's MIP is infeasible, per
// SPEC_FULL.md §4.7 step 3 / §7.
var ErrInfeasible = errors.New("infeasible model")

// ErrSolverFault is returned for any solver status other than optimal,
// infeasible, or time limit.
var ErrSolverFault = errors.New("solver did not return optimal or infeasible status")

// Orchestrator drives the tick loop against a registry, oracle, feeds,
// and weights.
type Orchestrator struct {
	Registry        *registry.Registry
	Oracle          *oracle.Oracle
	Requests        *feed.RequestFeed
	Vehicles        *feed.VehicleFeed
	Weights         solver.Weights
	Detour          float64
	TickSeconds     float64 // wall-clock length of one tick, for move()'s progress horizon
	SolveDeadlineMS int     // per-solve wall-clock budget, SPEC_FULL.md §5; <=0 disables it
	Log             *logging.Logger
	Audit           *audit.Log
	Report          io.Writer
}

// RunTick advances the simulation to now and executes one full tick:
// admission, expiry, formulate+solve, decode, repair, commit. Returns
// an error for any fatal condition per SPEC_FULL.md §7.
func (o *Orchestrator) RunTick(ctx context.Context, now time.Time) error {
	tickID := audit.NewTickID()
	log := o.Log.WithTick(tickID)

	if err := o.admit(now); err != nil {
		return err
	}

	expired := o.Registry.Expire(now)
	for _, v := range expired {
		log.Infow("vehicle expired", "vehicle_id", v.ID)
		for reqID := range v.OnBoard {
			o.Registry.Unassign(reqID)
		}
	}

	activeVehicles := o.Registry.ActiveVehicles()
	activeRequests := o.Registry.ActiveRequests()

	fmt.Fprintf(o.Report, "\n=== tick %s @ %s ===\n", tickID, now.Format(time.RFC3339))
	report.WriteCalls(o.Report, activeRequests)
	report.WriteVehicles(o.Report, activeVehicles)

	if len(activeVehicles) == 0 {
		return nil
	}

	idx := solver.Build(activeVehicles, activeRequests, o.Oracle)
	forced := committedAssignments(activeVehicles)

	result := solver.Solve(idx, o.Weights, forced, o.SolveDeadlineMS)

	switch result.Status {
	case solver.StatusOptimal:
		// fall through to decode
	case solver.StatusTimeLimit:
		if result.Routes == nil {
			// No feasible incumbent found before the deadline: skip this
			// tick, leaving registry state unchanged (SPEC_FULL.md §5).
			log.Warnw("solve timed out with no incumbent, skipping tick", "tick_id", tickID)
			return nil
		}
		log.Warnw("solve timed out, accepting best incumbent", "tick_id", tickID, "objective", result.Objective)
		// fall through to decode
	case solver.StatusInfeasible:
		log.Errorw("infeasible model", "tick_id", tickID, "cuts", len(result.Cuts))
		return errors.Wrap(ErrInfeasible, tickID)
	default:
		return errors.Wrap(ErrSolverFault, tickID)
	}

	if err := solver.Decode(idx, result); err != nil {
		return err
	}

	for _, v := range activeVehicles {
		ejections := repair.Run(v, o.Registry.RequestsByID(), o.Oracle, o.Detour)
		for _, e := range ejections {
			log.Infow("rider ejected for detour", "vehicle_id", e.VehicleID, "request_id", e.RequestID)
		}
	}

	for _, v := range activeVehicles {
		o.move(v)
		if err := o.Audit.RecordRoute(ctx, tickID, v); err != nil {
			log.Warnw("audit write failed", "error", err.Error())
		}
	}

	report.WriteVehicles(o.Report, activeVehicles)

	return nil
}

// admit pulls every due row from both feeds and registers them.
func (o *Orchestrator) admit(now time.Time) error {
	for _, row := range o.Vehicles.PopDue(now) {
		v := &models.Vehicle{
			ID:              row.ID,
			StartAt:         row.Time,
			Origin:          row.Location,
			WorkingTimeSecs: row.WorkingTime,
			Capacity:        row.Capacity,
		}
		if err := o.Registry.AdmitVehicle(v); err != nil {
			return err
		}
	}

	for _, row := range o.Requests.PopDue(now) {
		r := &models.Request{
			ID:        row.ID,
			RequestAt: row.Time,
			Pickup:    row.Pickup,
			Dropoff:   row.Dropoff,
			PartySize: row.Num,
		}
		if err := o.Registry.AdmitRequest(r); err != nil {
			return err
		}
	}

	return nil
}

// committedAssignments returns the warm-start forcing map: every
// on-board rider must remain assigned to its current vehicle, and so
// must a rider whose pickup the vehicle has already committed to drive
// to next (SPEC_FULL.md §4.3's warm-start/commitment rule — both the
// on-board-rider fixing and the committed-edge fixing require the
// owning request to stay on the same vehicle across the tick boundary).
func committedAssignments(vehicles []*models.Vehicle) map[int64]int64 {
	forced := make(map[int64]int64)
	for _, v := range vehicles {
		for reqID := range v.OnBoard {
			forced[reqID] = v.ID
		}
		if v.NextOwner != nil && v.NextOwner.Kind == models.OwnerRequestPickup {
			forced[v.NextOwner.RequestID] = v.ID
		}
	}
	return forced
}

// move advances the vehicle's committed route by one tick's worth of
// wall-clock time: every leg whose cumulative travel time falls within
// that horizon has actually been executed, so it toggles OnBoard,
// marks the owning request picked up/dropped off, and retires dropped-
// off requests from the registry (spec.md §3's lifecycle invariant —
// "requests persist until dropped off or rejected" — and SPEC_FULL.md
// §4.7 step 4). OnBoard is rebuilt from scratch here rather than
// trusted from Decode's walk, since Decode always walks a route to the
// depot in one pass and so cannot by itself distinguish "on board now"
// from "on board at some point this plan".
func (o *Orchestrator) move(v *models.Vehicle) {
	horizon := o.TickSeconds
	onBoard := make(map[int64]int, len(v.OnBoard))
	requests := o.Registry.RequestsByID()

	for i, leg := range v.Route {
		if leg.CumulativeSecs > horizon {
			v.Here = v.Route[max(0, i-1)].Loc
			loc := leg.Loc
			owner := leg.Owner
			v.NextLoc = &loc
			v.NextOwner = &owner
			v.OnBoard = onBoard
			return
		}

		switch leg.Owner.Kind {
		case models.OwnerRequestPickup:
			if req, ok := requests[leg.Owner.RequestID]; ok {
				req.PickedUp = true
				onBoard[leg.Owner.RequestID] = req.PartySize
			}
		case models.OwnerRequestDropoff:
			delete(onBoard, leg.Owner.RequestID)
			if req, ok := requests[leg.Owner.RequestID]; ok {
				req.DroppedOff = true
			}
			o.Registry.DropRequest(leg.Owner.RequestID)
		}
	}

	// Every leg has elapsed: the vehicle has reached (or passed) depot.
	if len(v.Route) > 0 {
		v.Here = v.Route[len(v.Route)-1].Loc
	}
	v.NextLoc = nil
	v.NextOwner = nil
	v.OnBoard = onBoard
}
