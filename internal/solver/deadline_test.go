package solver

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDeadlineDisabledNeverExpires(t *testing.T) {
	dl := newDeadline(0)
	for i := 0; i < 5000; i++ {
		assert.False(t, dl.expired())
	}
}

// expired() samples the wall clock only once every 4096 calls
// (katalvlaran-lvlath/tsp-bb.go's deadlineCheck pattern), so a deadline
// that has already passed still reports false until that many calls
// have been made, then latches true for good.
func TestDeadlineFiresAfterSparseSampling(t *testing.T) {
	dl := newDeadline(1)
	time.Sleep(5 * time.Millisecond)

	for i := 0; i < 4095; i++ {
		assert.False(t, dl.expired())
	}
	assert.True(t, dl.expired())
	assert.True(t, dl.expired(), "once fired, stays fired for the rest of the Solve call")
}
