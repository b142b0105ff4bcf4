package tsp

import (
	"fmt"
	"math"

	"github.com/zeu5/graphenv/types"
)

// ValidateTour checks that tour is a closed Hamiltonian cycle over n nodes
// starting at node 0
func ValidateTour(tour []int, n int) error {
	if len(tour) != n+1 {
		return fmt.Errorf("%w: length %d, expected %d", ErrInvalidTour, len(tour), n+1)
	}
	if tour[0] != 0 || tour[n] != 0 {
		return fmt.Errorf("%w: must start and end at node 0", ErrInvalidTour)
	}
	seen := make([]bool, n)
	for _, v := range tour[:n] {
		if v < 0 || v >= n {
			return fmt.Errorf("%w: node %d out of range", ErrInvalidTour, v)
		}
		if seen[v] {
			return fmt.Errorf("%w: node %d visited twice", ErrInvalidTour, v)
		}
		seen[v] = true
	}
	return nil
}

// TourCost is the total weight of a closed tour
func TourCost(g *Graph, tour []int) (float64, error) {
	if err := ValidateTour(tour, g.NumNodes()); err != nil {
		return 0, err
	}
	cost := 0.0
	for i := 0; i+1 < len(tour); i++ {
		cost += g.Weight(tour[i], tour[i+1])
	}
	return cost, nil
}

// GreedyTour builds the nearest neighbour tour from node 0.
// Ties go to the lower node id.
func GreedyTour(g *Graph) []int {
	n := g.NumNodes()
	visited := make([]bool, n)
	tour := make([]int, 0, n+1)
	cur := 0
	visited[cur] = true
	tour = append(tour, cur)
	for len(tour) < n {
		best, bestWeight := -1, math.Inf(1)
		for _, nbr := range g.Neighbors(cur) {
			if w := g.Weight(cur, nbr); !visited[nbr] && w < bestWeight {
				best, bestWeight = nbr, w
			}
		}
		cur = best
		visited[cur] = true
		tour = append(tour, cur)
	}
	return append(tour, 0)
}

// TwoOpt improves a closed tour with first-improvement 2-opt moves
// until no move shortens it by more than eps. The input is not modified.
func TwoOpt(g *Graph, tour []int, eps float64) ([]int, float64, error) {
	n := g.NumNodes()
	if err := ValidateTour(tour, n); err != nil {
		return nil, 0, err
	}
	cur := append([]int{}, tour...)

	improved := true
	for improved {
		improved = false
		for i := 1; i < n-1 && !improved; i++ {
			for k := i + 1; k < n; k++ {
				a, b, c, d := cur[i-1], cur[i], cur[k], cur[k+1]
				delta := g.Weight(a, c) + g.Weight(b, d) - g.Weight(a, b) - g.Weight(c, d)
				if delta < -eps {
					for l, r := i, k; l < r; l, r = l+1, r-1 {
						cur[l], cur[r] = cur[r], cur[l]
					}
					improved = true
					break
				}
			}
		}
	}
	cost, err := TourCost(g, cur)
	return cur, cost, err
}

// ActionsFor returns the action indices that lead from the root of v
// along tour. tour must start at node 0.
func ActionsFor(v types.Vertex, tour []int) ([]int, error) {
	if len(tour) == 0 || tour[0] != 0 {
		return nil, fmt.Errorf("%w: must start at node 0", ErrInvalidTour)
	}
	state := v.Root()
	actions := make([]int, 0, len(tour))
	for step, node := range tour[1:] {
		index := -1
		for i, child := range state.Children() {
			t := tourOf(child)
			if len(t) > 0 && t[len(t)-1] == node {
				index = i
				break
			}
		}
		if index < 0 {
			return nil, fmt.Errorf("%w: node %d is not reachable at step %d", ErrInvalidTour, node, step+1)
		}
		actions = append(actions, index)
		state = state.Children()[index]
	}
	return actions, nil
}

func tourOf(v types.Vertex) []int {
	switch s := v.(type) {
	case *State:
		return s.tour
	case *NFPState:
		return s.tour
	}
	return nil
}
