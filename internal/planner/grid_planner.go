// Package planner implements a small deterministic A* planner over a
// fixed weighted graph, standing in for the road-network shortest-path
// service the Distance Oracle consumes (SPEC_FULL.md §4.10). It is not
// the focus of this repository — a faithful, testable stand-in for the
// external collaborator spec.md treats as out of scope.
package planner

import (
	"container/heap"
	"math"

	"darp-dispatch/internal/models"
)

// Edge is a directed, weighted arc of the planner's graph.
type Edge struct {
	To      models.Location
	Seconds float64
}

// GridPlanner is a plain adjacency-list weighted graph searched with
// A*. Heuristic is zero (Dijkstra-equivalent) unless coordinates are
// supplied via WithCoordinates, in which case a straight-line-distance
// heuristic (scaled by MinSecondsPerUnit) is used.
type GridPlanner struct {
	adjacency map[models.Location][]Edge
	coords    map[models.Location][2]float64
	speed     float64 // heuristic scale: seconds per unit distance, must not overestimate true cost
}

// New constructs an empty planner. Use AddEdge to populate the graph.
func New() *GridPlanner {
	return &GridPlanner{
		adjacency: make(map[models.Location][]Edge),
		coords:    make(map[models.Location][2]float64),
		speed:     0, // zero heuristic by default: admissible degenerate case
	}
}

// AddEdge inserts a directed arc. Call twice for an undirected edge.
func (g *GridPlanner) AddEdge(from, to models.Location, seconds float64) {
	g.adjacency[from] = append(g.adjacency[from], Edge{To: to, Seconds: seconds})
}

// WithCoordinates registers planar coordinates for a node and a
// heuristic speed (seconds per unit distance); the heuristic must not
// overestimate the true shortest cost to remain admissible.
func (g *GridPlanner) WithCoordinates(loc models.Location, x, y, minSecondsPerUnit float64) {
	g.coords[loc] = [2]float64{x, y}
	g.speed = minSecondsPerUnit
}

// Init resets no persistent state: the planner holds no cross-call
// search state today, but the method exists to satisfy the contract
// that callers must invoke it before every query (SPEC_FULL.md §4.10)
// and to give a future stateful planner a reset hook.
func (g *GridPlanner) Init() {}

type searchNode struct {
	loc      models.Location
	priority float64
	gScore   float64
	index    int
}

type nodeQueue []*searchNode

func (q nodeQueue) Len() int            { return len(q) }
func (q nodeQueue) Less(i, j int) bool  { return q[i].priority < q[j].priority }
func (q nodeQueue) Swap(i, j int)       { q[i], q[j] = q[j], q[i]; q[i].index = i; q[j].index = j }
func (q *nodeQueue) Push(x interface{}) {
	n := x.(*searchNode)
	n.index = len(*q)
	*q = append(*q, n)
}
func (q *nodeQueue) Pop() interface{} {
	old := *q
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	item.index = -1
	*q = old[:n-1]
	return item
}

// Astar returns the shortest travel time from a to b, or
// reachable=false if no path exists in the graph.
func (g *GridPlanner) Astar(from, to models.Location) (float64, bool) {
	if from == to {
		return 0, true
	}

	gScore := map[models.Location]float64{from: 0}
	visited := make(map[models.Location]bool)

	pq := &nodeQueue{}
	heap.Init(pq)
	heap.Push(pq, &searchNode{loc: from, priority: g.heuristic(from, to), gScore: 0})

	for pq.Len() > 0 {
		current := heap.Pop(pq).(*searchNode)
		if visited[current.loc] {
			continue
		}
		if current.loc == to {
			return current.gScore, true
		}
		visited[current.loc] = true

		for _, e := range g.adjacency[current.loc] {
			tentative := current.gScore + e.Seconds
			if best, ok := gScore[e.To]; ok && tentative >= best {
				continue
			}
			gScore[e.To] = tentative
			heap.Push(pq, &searchNode{
				loc:      e.To,
				gScore:   tentative,
				priority: tentative + g.heuristic(e.To, to),
			})
		}
	}

	return 0, false
}

func (g *GridPlanner) heuristic(a, b models.Location) float64 {
	if g.speed <= 0 {
		return 0
	}
	ac, aok := g.coords[a]
	bc, bok := g.coords[b]
	if !aok || !bok {
		return 0
	}
	dx := ac[0] - bc[0]
	dy := ac[1] - bc[1]
	return math.Sqrt(dx*dx+dy*dy) * g.speed
}
