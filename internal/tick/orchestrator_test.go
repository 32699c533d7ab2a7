package tick

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"darp-dispatch/internal/audit"
	"darp-dispatch/internal/feed"
	"darp-dispatch/internal/logging"
	"darp-dispatch/internal/models"
	"darp-dispatch/internal/oracle"
	"darp-dispatch/internal/registry"
	"darp-dispatch/internal/solver"
)

type manhattanPlanner struct{}

func (manhattanPlanner) Init() {}
func (manhattanPlanner) Astar(a, b models.Location) (float64, bool) {
	d := int64(a) - int64(b)
	if d < 0 {
		d = -d
	}
	return float64(d), true
}

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func newTestOrchestrator(t *testing.T, requestsCSV, vehiclesCSV string) *Orchestrator {
	t.Helper()

	requests, err := feed.LoadRequests(requestsCSV)
	require.NoError(t, err)
	vehicles, err := feed.LoadVehicles(vehiclesCSV)
	require.NoError(t, err)

	o := oracle.New(manhattanPlanner{})
	reg := registry.New(o)
	log, err := logging.New("error")
	require.NoError(t, err)

	return &Orchestrator{
		Registry: reg,
		Oracle:   o,
		Requests: requests,
		Vehicles: vehicles,
		Weights:  solver.Weights{Alpha: 1, Beta: 1, Gamma: 1, Penalty: 1000},
		Detour:   2.0,
		Log:      log,
		Audit:    audit.NewDisabled(),
		Report:   &bytes.Buffer{},
	}
}

// Scenario 1 (spec.md §8) run end to end through the orchestrator.
func TestRunTickAssignsAndCommitsRoute(t *testing.T) {
	requestsCSV := writeTemp(t, "requests.csv", "time,id,pick up,drop off,num\n"+
		"2026/01/01 00:00:00,1,20,30,1\n")
	vehiclesCSV := writeTemp(t, "vehicles.csv", "time,id,location,working time,capacity\n"+
		"2026/01/01 00:00:00,1,10,600,2\n")

	orch := newTestOrchestrator(t, requestsCSV, vehiclesCSV)
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, orch.RunTick(context.Background(), now))

	vehicles := orch.Registry.ActiveVehicles()
	require.Len(t, vehicles, 1)
	assert.NotEmpty(t, vehicles[0].Route)

	requests := orch.Registry.ActiveRequests()
	require.Len(t, requests, 1)
	assert.True(t, requests[0].Assigned)
}

// Scenario 6 (spec.md §8): an expired vehicle with no on-board riders
// disappears from the active set, the tick otherwise completing cleanly.
func TestRunTickExpiresVehicleWithNoRiders(t *testing.T) {
	requestsCSV := writeTemp(t, "requests.csv", "time,id,pick up,drop off,num\n")
	vehiclesCSV := writeTemp(t, "vehicles.csv", "time,id,location,working time,capacity\n"+
		"2026/01/01 00:00:00,1,10,60,2\n")

	orch := newTestOrchestrator(t, requestsCSV, vehiclesCSV)
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, orch.RunTick(context.Background(), start))
	require.Len(t, orch.Registry.ActiveVehicles(), 1)

	require.NoError(t, orch.RunTick(context.Background(), start.Add(60*time.Second)))
	assert.Empty(t, orch.Registry.ActiveVehicles())
}

// Scenario 4 (spec.md §8): a committed promise is honored across
// ticks. Tick 1 commits the vehicle to its next stop before it has
// physically arrived there; tick 2 admits a dramatically cheaper
// request, and the solver must still reach the committed stop first
// (SPEC_FULL.md §4.3's forced committed-edge warm-start rule).
func TestRunTickHonorsCommittedNextStopAcrossTicks(t *testing.T) {
	requestsCSV := writeTemp(t, "requests.csv", "time,id,pick up,drop off,num\n"+
		"2026/01/01 00:00:00,1,200,300,1\n"+
		"2026/01/01 00:00:50,2,101,400,1\n")
	vehiclesCSV := writeTemp(t, "vehicles.csv", "time,id,location,working time,capacity\n"+
		"2026/01/01 00:00:00,1,100,100000,2\n")

	orch := newTestOrchestrator(t, requestsCSV, vehiclesCSV)
	orch.TickSeconds = 50 // shorter than the 100-second A->B leg: the vehicle hasn't arrived by tick 2

	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, orch.RunTick(context.Background(), now))

	vehicles := orch.Registry.ActiveVehicles()
	require.Len(t, vehicles, 1)
	v1 := vehicles[0]
	require.NotNil(t, v1.NextOwner)
	assert.Equal(t, models.OwnerRequestPickup, v1.NextOwner.Kind, "vehicle must have committed to request 1's pickup after tick 1")
	assert.Equal(t, int64(1), v1.NextOwner.RequestID)

	require.NoError(t, orch.RunTick(context.Background(), now.Add(50*time.Second)))

	require.GreaterOrEqual(t, len(v1.Route), 2)
	assert.Equal(t, models.OwnerRequestPickup, v1.Route[1].Owner.Kind, "the committed stop must still be reached first despite request 2's much cheaper pickup")
	assert.Equal(t, int64(1), v1.Route[1].Owner.RequestID)
}

func TestRunTickWithNoVehiclesIsANoop(t *testing.T) {
	requestsCSV := writeTemp(t, "requests.csv", "time,id,pick up,drop off,num\n")
	vehiclesCSV := writeTemp(t, "vehicles.csv", "time,id,location,working time,capacity\n")

	orch := newTestOrchestrator(t, requestsCSV, vehiclesCSV)
	require.NoError(t, orch.RunTick(context.Background(), time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)))
}
