package tsp

import (
	"strconv"
	"strings"

	"golang.org/x/exp/slices"
	"gonum.org/v1/gonum/floats"

	"github.com/zeu5/graphenv/types"
)

// successorTours extends tour by every unvisited neighbour of its last
// node, in ascending order. Once every node is visited the only
// successor closes the circuit back to the start.
func successorTours(g *Graph, tour []int) [][]int {
	n := g.NumNodes()
	if len(tour) > n {
		return nil
	}
	cur := tour[len(tour)-1]
	next := make([]int, 0, n)
	for _, nbr := range g.Neighbors(cur) {
		if !slices.Contains(tour, nbr) {
			next = append(next, nbr)
		}
	}
	if len(next) == 0 && len(tour) == n {
		next = append(next, tour[0])
	}

	tours := make([][]int, len(next))
	for i, nbr := range next {
		t := make([]int, len(tour), len(tour)+1)
		copy(t, tour)
		tours[i] = append(t, nbr)
	}
	return tours
}

// lastEdge returns the weight of the last edge of the tour, 0 for the start
func lastEdge(g *Graph, tour []int) float64 {
	if len(tour) < 2 {
		return 0
	}
	return g.Weight(tour[len(tour)-2], tour[len(tour)-1])
}

func tourHash(tour []int) string {
	parts := make([]string, len(tour))
	for i, n := range tour {
		parts[i] = strconv.Itoa(n)
	}
	return strings.Join(parts, "-")
}

// State is a partial tour starting at node 0.
// Each action appends one node; the reward is the negative weight of
// the edge traversed.
type State struct {
	types.NodeBase
	g    *Graph
	tour []int
}

var _ types.Node = &State{}

func NewState(g *Graph) *State {
	return newState(g, []int{0})
}

func newState(g *Graph, tour []int) *State {
	return &State{
		NodeBase: types.NewNodeBase(g.NumNodes()),
		g:        g,
		tour:     tour,
	}
}

// Tour returns a copy of the nodes visited so far
func (s *State) Tour() []int {
	return append([]int{}, s.tour...)
}

func (s *State) Root() types.Vertex {
	return newState(s.g, []int{0})
}

func (s *State) Children() []types.Vertex {
	return s.Successors(func() []types.Vertex {
		tours := successorTours(s.g, s.tour)
		children := make([]types.Vertex, len(tours))
		for i, t := range tours {
			children[i] = newState(s.g, t)
		}
		return children
	})
}

func (s *State) Terminal() bool {
	return types.IsTerminal(s)
}

func (s *State) Reward() float64 {
	return -lastEdge(s.g, s.tour)
}

func (s *State) ObservationSpace() types.ObservationSpace {
	return types.ObservationSpace{
		"node_obs":    types.NewBox(0, 1, types.Float, 2),
		"node_idx":    types.NewBox(0, float64(s.g.NumNodes()), types.Int, 1),
		"parent_dist": types.NewBox(0, MaxWeight, types.Float, 1),
		"nbr_dist":    types.NewBox(0, MaxWeight, types.Float, 1),
	}
}

func (s *State) NullObservation() types.Observation {
	return types.Observation{
		"node_obs":    types.NewArray(2),
		"node_idx":    types.NewArray(1),
		"parent_dist": types.NewArray(1),
		"nbr_dist":    types.NewArray(1),
	}
}

// Observation encodes the current node, its position, the distance
// to the previous node and the distance to the closest unvisited neighbour
func (s *State) Observation() types.Observation {
	return s.Observe(func() types.Observation {
		cur := s.tour[len(s.tour)-1]
		pos := s.g.Position(cur)

		dists := make([]float64, 0)
		for _, nbr := range s.g.Neighbors(cur) {
			if !slices.Contains(s.tour, nbr) {
				dists = append(dists, s.g.Weight(cur, nbr))
			}
		}
		nbrDist := 0.0
		if len(dists) > 0 {
			nbrDist = floats.Min(dists)
		}

		return types.Observation{
			"node_obs":    types.Vector(pos.X, pos.Y),
			"node_idx":    types.Vector(float64(cur)),
			"parent_dist": types.Vector(lastEdge(s.g, s.tour)),
			"nbr_dist":    types.Vector(nbrDist),
		}
	})
}

func (s *State) Info() map[string]interface{} {
	info := types.BaseInfo()
	info["tour"] = s.Tour()
	return info
}

func (s *State) Hash() string {
	return tourHash(s.tour)
}
