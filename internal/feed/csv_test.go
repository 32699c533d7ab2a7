package feed

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"darp-dispatch/internal/models"
)

func writeCSV(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "feed.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadRequestsSortsByTimeAscending(t *testing.T) {
	path := writeCSV(t, "time,id,pick up,drop off,num\n"+
		"2026/01/01 00:05:00,2,20,21,1\n"+
		"2026/01/01 00:01:00,1,10,11,2\n")

	f, err := LoadRequests(path)
	require.NoError(t, err)

	now := time.Date(2026, 1, 1, 1, 0, 0, 0, time.UTC)
	due := f.PopDue(now)
	require.Len(t, due, 2)
	assert.Equal(t, int64(1), due[0].ID)
	assert.Equal(t, int64(2), due[1].ID)
	assert.Equal(t, models.Location(10), due[0].Pickup)
	assert.True(t, f.Exhausted())
}

func TestRequestFeedPopDueOnlyReturnsPastRows(t *testing.T) {
	path := writeCSV(t, "time,id,pick up,drop off,num\n"+
		"2026/01/01 00:10:00,1,10,11,1\n")

	f, err := LoadRequests(path)
	require.NoError(t, err)

	early := f.PopDue(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	assert.Empty(t, early)
	assert.False(t, f.Exhausted())

	late := f.PopDue(time.Date(2026, 1, 1, 0, 10, 0, 0, time.UTC))
	require.Len(t, late, 1)
	assert.True(t, f.Exhausted())
}

func TestLoadRequestsRejectsBadTime(t *testing.T) {
	path := writeCSV(t, "time,id,pick up,drop off,num\nnot-a-time,1,10,11,1\n")
	_, err := LoadRequests(path)
	assert.Error(t, err)
}

func TestLoadVehiclesParsesAllColumns(t *testing.T) {
	path := writeCSV(t, "time,id,location,working time,capacity\n"+
		"2026/01/01 00:00:00,1,5,600,3\n")

	f, err := LoadVehicles(path)
	require.NoError(t, err)

	due := f.PopDue(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	require.Len(t, due, 1)
	assert.Equal(t, models.Location(5), due[0].Location)
	assert.Equal(t, 600.0, due[0].WorkingTime)
	assert.Equal(t, 3, due[0].Capacity)
}
