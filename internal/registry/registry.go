// Package registry implements the append-only Request/Vehicle registry
// (C2): admission with duplicate-id rejection, oracle warm-up, and
// shift-based vehicle expiry.
package registry

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/samber/lo"

	"darp-dispatch/internal/models"
	"darp-dispatch/internal/oracle"
)

// ErrDuplicateID is returned when admit_request/admit_vehicle sees an
// id already present in the registry. SPEC_FULL.md §7 treats this as
// fatal for the whole process, not just the tick.
var ErrDuplicateID = errors.New("duplicate identity")

// Registry holds the currently active requests and vehicles, grounded
// on the teacher's generic-repository CRUD-over-slice shape
// (internal/database/generic_repo.go) adapted to the dispatch domain:
// no persistence, no timestamps-on-entity, dedup-by-id instead of
// auto-incrementing ids.
type Registry struct {
	mu       sync.Mutex
	oracle   *oracle.Oracle
	requests map[int64]*models.Request
	vehicles map[int64]*models.Vehicle
}

// New constructs an empty registry backed by the given oracle.
func New(o *oracle.Oracle) *Registry {
	return &Registry{
		oracle:   o,
		requests: make(map[int64]*models.Request),
		vehicles: make(map[int64]*models.Vehicle),
	}
}

// knownLocationsLocked collects every location currently known to the
// registry plus the depot, for oracle warm-up. Caller must hold mu.
func (r *Registry) knownLocationsLocked() []models.Location {
	locs := make([]models.Location, 0, 2*len(r.requests)+len(r.vehicles)+1)
	locs = append(locs, models.DepotLocation)
	for _, req := range r.requests {
		locs = append(locs, req.Pickup, req.Dropoff)
	}
	for _, v := range r.vehicles {
		locs = append(locs, v.Origin)
	}
	return lo.Uniq(locs)
}

// AdmitRequest registers a new request, warms the oracle for its
// pickup/dropoff against every known location, and sets its shortest
// travel time.
func (r *Registry) AdmitRequest(req *models.Request) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.requests[req.ID]; exists {
		return errors.Wrap(ErrDuplicateID, fmt.Sprintf("request id %d", req.ID))
	}

	known := r.knownLocationsLocked()
	r.oracle.WarmFor(req.Pickup, known)
	r.oracle.WarmFor(req.Dropoff, known)
	req.ShortestTimeSecs = r.oracle.Cost(req.Pickup, req.Dropoff)

	r.requests[req.ID] = req
	return nil
}

// AdmitVehicle registers a new vehicle and warms the oracle for its
// origin against every known location.
func (r *Registry) AdmitVehicle(v *models.Vehicle) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.vehicles[v.ID]; exists {
		return errors.Wrap(ErrDuplicateID, fmt.Sprintf("vehicle id %d", v.ID))
	}

	known := r.knownLocationsLocked()
	r.oracle.WarmFor(v.Origin, known)

	v.Reset()
	r.vehicles[v.ID] = v
	return nil
}

// Expire removes every vehicle whose shift has ended by now, returning
// the removed vehicles so the caller can re-pool their on-board riders.
func (r *Registry) Expire(now time.Time) []*models.Vehicle {
	r.mu.Lock()
	defer r.mu.Unlock()

	var expired []*models.Vehicle
	for id, v := range r.vehicles {
		if v.HasExpired(now) {
			expired = append(expired, v)
			delete(r.vehicles, id)
		}
	}
	return expired
}

// ActiveVehicles returns a stable-ordered snapshot of currently active
// vehicles.
func (r *Registry) ActiveVehicles() []*models.Vehicle {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]*models.Vehicle, 0, len(r.vehicles))
	for _, v := range r.vehicles {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// ActiveRequests returns a stable-ordered snapshot of currently active
// (not yet dropped off) requests.
func (r *Registry) ActiveRequests() []*models.Request {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]*models.Request, 0, len(r.requests))
	for _, req := range r.requests {
		if !req.DroppedOff {
			out = append(out, req)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// RequestsByID returns the live request-id -> *Request map for repair
// and decode code that needs direct lookup rather than a snapshot.
func (r *Registry) RequestsByID() map[int64]*models.Request {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make(map[int64]*models.Request, len(r.requests))
	for id, req := range r.requests {
		out[id] = req
	}
	return out
}

// DropRequest removes a request from the registry once it has been
// dropped off.
func (r *Registry) DropRequest(id int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.requests, id)
}

// Unassign resets a request's plan state, returning it to the free
// pool for the next tick's formulation (used by the repair loop and by
// vehicle expiry).
func (r *Registry) Unassign(id int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if req, ok := r.requests[id]; ok {
		req.Reset()
	}
}
