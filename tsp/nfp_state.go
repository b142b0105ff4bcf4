package tsp

import (
	"sort"

	"github.com/zeu5/graphenv/types"
)

// GraphInputs is the static k-nearest-neighbour encoding of a graph
// shared by every NFPState of the same graph
type GraphInputs struct {
	NumEdges     int
	EdgeWeights  *types.Array
	Connectivity *types.Array
}

// NewGraphInputs keeps, for every node, the edges to its maxNumNeighbors
// closest nodes. maxNumNeighbors <= 0 keeps every edge.
func NewGraphInputs(g *Graph, maxNumNeighbors int) *GraphInputs {
	n := g.NumNodes()
	if maxNumNeighbors <= 0 || maxNumNeighbors > n-1 {
		maxNumNeighbors = n - 1
	}
	weights := make([]float64, 0, n*maxNumNeighbors)
	connectivity := make([]float64, 0, 2*n*maxNumNeighbors)
	for u := 0; u < n; u++ {
		nbrs := append([]int{}, g.Neighbors(u)...)
		sort.SliceStable(nbrs, func(i, j int) bool {
			return g.Weight(u, nbrs[i]) < g.Weight(u, nbrs[j])
		})
		if len(nbrs) > maxNumNeighbors {
			nbrs = nbrs[:maxNumNeighbors]
		}
		for _, v := range nbrs {
			weights = append(weights, g.Weight(u, v))
			connectivity = append(connectivity, float64(u), float64(v))
		}
	}
	return &GraphInputs{
		NumEdges:     len(weights),
		EdgeWeights:  &types.Array{Shape: []int{len(weights)}, Data: weights},
		Connectivity: &types.Array{Shape: []int{len(weights), 2}, Data: connectivity},
	}
}

// NFPState is a tour state observed through the whole graph structure,
// for message passing models. Transitions and rewards match State.
type NFPState struct {
	types.NodeBase
	g      *Graph
	inputs *GraphInputs
	tour   []int
}

var _ types.Node = &NFPState{}

func NewNFPState(g *Graph, maxNumNeighbors int) *NFPState {
	return newNFPState(g, NewGraphInputs(g, maxNumNeighbors), []int{0})
}

func newNFPState(g *Graph, inputs *GraphInputs, tour []int) *NFPState {
	return &NFPState{
		NodeBase: types.NewNodeBase(g.NumNodes()),
		g:        g,
		inputs:   inputs,
		tour:     tour,
	}
}

func (s *NFPState) Tour() []int {
	return append([]int{}, s.tour...)
}

func (s *NFPState) Root() types.Vertex {
	return newNFPState(s.g, s.inputs, []int{0})
}

func (s *NFPState) Children() []types.Vertex {
	return s.Successors(func() []types.Vertex {
		tours := successorTours(s.g, s.tour)
		children := make([]types.Vertex, len(tours))
		for i, t := range tours {
			children[i] = newNFPState(s.g, s.inputs, t)
		}
		return children
	})
}

func (s *NFPState) Terminal() bool {
	return types.IsTerminal(s)
}

func (s *NFPState) Reward() float64 {
	return -lastEdge(s.g, s.tour)
}

func (s *NFPState) ObservationSpace() types.ObservationSpace {
	n := float64(s.g.NumNodes())
	return types.ObservationSpace{
		"current_node": types.NewBox(0, n, types.Int),
		"distance":     types.NewBox(0, MaxWeight, types.Float),
		"node_visited": types.NewBox(0, 2, types.Int, s.g.NumNodes()),
		"edge_weights": types.NewBox(0, MaxWeight, types.Float, s.inputs.NumEdges),
		"connectivity": types.NewBox(0, n, types.Int, s.inputs.NumEdges, 2),
	}
}

func (s *NFPState) NullObservation() types.Observation {
	return types.Observation{
		"current_node": types.Scalar(0),
		"distance":     types.Scalar(0),
		"node_visited": types.NewArray(s.g.NumNodes()),
		"edge_weights": types.NewArray(s.inputs.NumEdges),
		"connectivity": types.NewArray(s.inputs.NumEdges, 2),
	}
}

// Observation marks unvisited nodes 1 and visited nodes 2
func (s *NFPState) Observation() types.Observation {
	return s.Observe(func() types.Observation {
		visited := types.NewArray(s.g.NumNodes())
		for i := range visited.Data {
			visited.Data[i] = 1
		}
		for _, node := range s.tour {
			visited.Data[node] = 2
		}
		return types.Observation{
			"current_node": types.Scalar(float64(s.tour[len(s.tour)-1])),
			"distance":     types.Scalar(lastEdge(s.g, s.tour)),
			"node_visited": visited,
			"edge_weights": s.inputs.EdgeWeights.Clone(),
			"connectivity": s.inputs.Connectivity.Clone(),
		}
	})
}

func (s *NFPState) Info() map[string]interface{} {
	info := types.BaseInfo()
	info["tour"] = s.Tour()
	return info
}

func (s *NFPState) Hash() string {
	return tourHash(s.tour)
}
