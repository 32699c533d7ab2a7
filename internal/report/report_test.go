package report

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"darp-dispatch/internal/models"
)

func TestWriteCallsIncludesEveryRequestColumn(t *testing.T) {
	var buf bytes.Buffer
	req := &models.Request{
		ID: 1, Pickup: 10, Dropoff: 20, PartySize: 2,
		RequestAt: time.Date(2026, 1, 1, 9, 30, 0, 0, time.UTC),
		ShortestTimeSecs: 100, ExpectedWaitingSecs: 50, ExpectedTravelSecs: 150,
	}

	WriteCalls(&buf, []*models.Request{req})
	out := buf.String()

	assert.Contains(t, out, "[Calls]")
	assert.Contains(t, out, "id")
	assert.Contains(t, out, "1")
	for _, col := range []string{"pickup", "dropoff", "party", "requested", "waiting", "travel", "detour"} {
		assert.Contains(t, out, col)
	}
	assert.Contains(t, out, "9:30AM")
	assert.Contains(t, out, "1.50")
}

func TestWriteVehiclesShowsDashWhenNoCommittedNext(t *testing.T) {
	var buf bytes.Buffer
	v := &models.Vehicle{ID: 1, Origin: 5, Capacity: 2}
	v.Reset()

	WriteVehicles(&buf, []*models.Vehicle{v})
	out := buf.String()

	assert.Contains(t, out, "[Vehicles]")
	assert.Contains(t, out, "-")
}

func TestWriteVehiclesShowsCommittedNextStop(t *testing.T) {
	var buf bytes.Buffer
	v := &models.Vehicle{ID: 1, Origin: 5, Capacity: 2}
	v.Reset()
	next := models.Location(42)
	v.NextLoc = &next
	v.NextOwner = &models.StopOwner{Kind: models.OwnerRequestPickup, RequestID: 7}

	WriteVehicles(&buf, []*models.Vehicle{v})
	assert.Contains(t, buf.String(), "42")
}
