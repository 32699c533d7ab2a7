package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRequestDetourRatio(t *testing.T) {
	r := &Request{ShortestTimeSecs: 100, ExpectedTravelSecs: 250}
	assert.Equal(t, 2.5, r.DetourRatio())
}

func TestRequestDetourRatioZeroWhenUnassigned(t *testing.T) {
	r := &Request{ShortestTimeSecs: 0, ExpectedTravelSecs: 0}
	assert.Equal(t, 0.0, r.DetourRatio())
}

func TestRequestReset(t *testing.T) {
	r := &Request{
		ExpectedWaitingSecs: 10, ExpectedTravelSecs: 20,
		AssignedVehicleID: 7, Assigned: true, PickedUp: true, DroppedOff: true,
	}
	r.Reset()

	assert.Zero(t, r.ExpectedWaitingSecs)
	assert.Zero(t, r.ExpectedTravelSecs)
	assert.Zero(t, r.AssignedVehicleID)
	assert.False(t, r.Assigned)
	assert.False(t, r.PickedUp)
	assert.False(t, r.DroppedOff)
}

func TestVehicleResetRebuildsOriginRoute(t *testing.T) {
	v := &Vehicle{ID: 3, Origin: 42}
	v.Here = 99
	v.NextLoc = new(Location)
	v.Reset()

	require := assert.New(t)
	require.Len(v.Route, 1)
	require.Equal(Location(42), v.Route[0].Loc)
	require.Equal(OwnerVehicleOrigin, v.Route[0].Owner.Kind)
	require.Equal(Location(42), v.Here)
	require.Nil(v.NextLoc)
	require.Empty(v.OnBoard)
	require.Empty(v.DetourRatio)
}

func TestVehicleNumOnBoardSumsPartySizes(t *testing.T) {
	v := &Vehicle{ID: 1}
	v.Reset()
	v.OnBoard[10] = 2
	v.OnBoard[11] = 3
	assert.Equal(t, 5, v.NumOnBoard())
}

func TestVehicleIsOverDetour(t *testing.T) {
	v := &Vehicle{ID: 1}
	v.Reset()
	assert.False(t, v.IsOverDetour(2.0))

	v.DetourRatio[1] = 1.5
	assert.False(t, v.IsOverDetour(2.0))

	v.DetourRatio[2] = 2.1
	assert.True(t, v.IsOverDetour(2.0))
}

func TestVehicleHasExpired(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	v := &Vehicle{StartAt: start, WorkingTimeSecs: 600}

	assert.False(t, v.HasExpired(start.Add(599*time.Second)))
	assert.True(t, v.HasExpired(start.Add(600*time.Second)))
	assert.True(t, v.HasExpired(start.Add(601*time.Second)))
}

func TestStopOwnerKindString(t *testing.T) {
	assert.Equal(t, "origin", OwnerVehicleOrigin.String())
	assert.Equal(t, "pickup", OwnerRequestPickup.String())
	assert.Equal(t, "dropoff", OwnerRequestDropoff.String())
	assert.Equal(t, "unknown", StopOwnerKind(99).String())
}
