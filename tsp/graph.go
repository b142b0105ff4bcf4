package tsp

import (
	"errors"
	"fmt"
	"math"

	"golang.org/x/exp/rand"
	"golang.org/x/exp/slices"
	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/simple"
)

var (
	ErrInvalidGraph = errors.New("invalid tsp graph")
	ErrInvalidTour  = errors.New("invalid tour")
)

// Point is a location in the unit square
type Point struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

func (p Point) Distance(o Point) float64 {
	return math.Hypot(p.X-o.X, p.Y-o.Y)
}

// Graph is an undirected weighted graph over points in the unit square.
// It is never modified after construction and is shared by all states.
type Graph struct {
	g      *simple.WeightedUndirectedGraph
	points []Point
	// neighbors in ascending id order
	neighbors [][]int
}

// NewGraph builds the complete graph over points with euclidean weights
func NewGraph(points []Point) (*Graph, error) {
	if len(points) < 2 {
		return nil, fmt.Errorf("%w: need at least 2 nodes, got %d", ErrInvalidGraph, len(points))
	}
	for i, p := range points {
		if p.X < 0 || p.X > 1 || p.Y < 0 || p.Y > 1 {
			return nil, fmt.Errorf("%w: node %d at (%v, %v) outside the unit square", ErrInvalidGraph, i, p.X, p.Y)
		}
	}
	g := simple.NewWeightedUndirectedGraph(0, math.Inf(1))
	for i := range points {
		g.AddNode(simple.Node(i))
	}
	for i := range points {
		for j := i + 1; j < len(points); j++ {
			g.SetWeightedEdge(g.NewWeightedEdge(simple.Node(i), simple.Node(j), points[i].Distance(points[j])))
		}
	}
	return newGraph(g, points), nil
}

func newGraph(g *simple.WeightedUndirectedGraph, points []Point) *Graph {
	neighbors := make([][]int, len(points))
	for i := range points {
		nodes := graph.NodesOf(g.From(int64(i)))
		ids := make([]int, len(nodes))
		for j, n := range nodes {
			ids[j] = int(n.ID())
		}
		slices.Sort(ids)
		neighbors[i] = ids
	}
	return &Graph{
		g:         g,
		points:    append([]Point{}, points...),
		neighbors: neighbors,
	}
}

// NewCompletePlanarGraph places n uniformly random points in the unit square
// and connects every pair. The same seed always yields the same graph.
func NewCompletePlanarGraph(n int, seed uint64) (*Graph, error) {
	if n < 2 {
		return nil, fmt.Errorf("%w: need at least 2 nodes, got %d", ErrInvalidGraph, n)
	}
	rng := rand.New(rand.NewSource(seed))
	points := make([]Point, n)
	for i := range points {
		points[i] = Point{X: rng.Float64(), Y: rng.Float64()}
	}
	return NewGraph(points)
}

func (g *Graph) NumNodes() int {
	return len(g.points)
}

func (g *Graph) Position(node int) Point {
	return g.points[node]
}

// Neighbors returns the adjacent nodes in ascending order
func (g *Graph) Neighbors(node int) []int {
	return g.neighbors[node]
}

// Weight of the edge between u and v, +Inf if absent
func (g *Graph) Weight(u, v int) float64 {
	w, _ := g.g.Weight(int64(u), int64(v))
	return w
}

// MaxWeight is the largest possible edge weight in the unit square
var MaxWeight = math.Sqrt2
