package oracle

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"darp-dispatch/internal/models"
)

type fakePlanner struct {
	inits int
	costs map[[2]models.Location]float64
}

func (p *fakePlanner) Init() { p.inits++ }

func (p *fakePlanner) Astar(from, to models.Location) (float64, bool) {
	if c, ok := p.costs[[2]models.Location{from, to}]; ok {
		return c, true
	}
	return 0, false
}

func TestOracleDepotIsAlwaysZero(t *testing.T) {
	p := &fakePlanner{costs: map[[2]models.Location]float64{}}
	o := New(p)

	assert.Equal(t, 0.0, o.Cost(models.DepotLocation, 42))
	assert.Equal(t, 0.0, o.Cost(42, models.DepotLocation))
	assert.Equal(t, 0, p.inits, "depot arcs must never touch the planner")
}

func TestOracleMemoizesAndReinitsOnMiss(t *testing.T) {
	p := &fakePlanner{costs: map[[2]models.Location]float64{{1, 2}: 100}}
	o := New(p)

	c1 := o.Cost(1, 2)
	require.Equal(t, 100.0, c1)
	require.Equal(t, 1, p.inits)

	c2 := o.Cost(1, 2)
	assert.Equal(t, 100.0, c2)
	assert.Equal(t, 1, p.inits, "second query must hit the memo, not the planner")
}

func TestOracleUnreachableIsProhibitivelyExpensiveNotFatal(t *testing.T) {
	p := &fakePlanner{costs: map[[2]models.Location]float64{}}
	o := New(p)

	cost := o.Cost(7, 8)
	assert.Greater(t, cost, 1e6)
}

func TestOracleSameLocationIsZero(t *testing.T) {
	p := &fakePlanner{costs: map[[2]models.Location]float64{}}
	o := New(p)
	assert.Equal(t, 0.0, o.Cost(5, 5))
}
