package tsp

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/zeu5/graphenv/types"
)

func squareGraph(t *testing.T) *Graph {
	t.Helper()
	g, err := NewGraph([]Point{{0, 0}, {1, 0}, {1, 1}, {0, 1}})
	require.NoError(t, err)
	return g
}

func TestNewGraph(t *testing.T) {
	t.Run("complete graph with euclidean weights", func(t *testing.T) {
		g := squareGraph(t)
		require.Equal(t, 4, g.NumNodes())
		require.Equal(t, []int{0, 2, 3}, g.Neighbors(1))
		require.Equal(t, 1.0, g.Weight(0, 1))
		require.InDelta(t, math.Sqrt2, g.Weight(0, 2), 1e-12)
	})

	t.Run("points outside the unit square", func(t *testing.T) {
		_, err := NewGraph([]Point{{0, 0}, {2, 0}})
		require.True(t, errors.Is(err, ErrInvalidGraph))
	})

	t.Run("too few nodes", func(t *testing.T) {
		_, err := NewGraph([]Point{{0, 0}})
		require.True(t, errors.Is(err, ErrInvalidGraph))
	})

	t.Run("negative node count", func(t *testing.T) {
		g, err := NewCompletePlanarGraph(-3, 1)
		require.Nil(t, g)
		require.True(t, errors.Is(err, ErrInvalidGraph))
	})

	t.Run("random graph is deterministic per seed", func(t *testing.T) {
		a, err := NewCompletePlanarGraph(6, 1)
		require.NoError(t, err)
		b, err := NewCompletePlanarGraph(6, 1)
		require.NoError(t, err)
		for i := 0; i < 6; i++ {
			require.Equal(t, a.Position(i), b.Position(i))
		}
	})
}

func TestStateChildren(t *testing.T) {
	g := squareGraph(t)
	root := NewState(g)
	require.Equal(t, 4, root.MaxNumActions())
	require.Equal(t, 0.0, root.Reward(), "Root has no incoming edge")

	children := root.Children()
	require.Len(t, children, 3, "Every unvisited node is a successor")
	for i, want := range []int{1, 2, 3} {
		require.Equal(t, []int{0, want}, children[i].(*State).Tour())
	}

	state := types.Vertex(root)
	for _, next := range []int{1, 2, 3} {
		for _, c := range state.Children() {
			if tour := c.(*State).Tour(); tour[len(tour)-1] == next {
				state = c
			}
		}
	}
	require.Equal(t, []int{0, 1, 2, 3}, state.(*State).Tour())
	closing := state.Children()
	require.Len(t, closing, 1, "Only the return to the start remains")
	require.Equal(t, []int{0, 1, 2, 3, 0}, closing[0].(*State).Tour())
	require.True(t, closing[0].Terminal())
	require.Equal(t, -1.0, closing[0].Reward())
}

func TestStateObservation(t *testing.T) {
	g := squareGraph(t)
	root := NewState(g)
	require.NoError(t, root.ObservationSpace().Contains(root.Observation()))
	require.NoError(t, root.ObservationSpace().Contains(root.NullObservation()))

	child := root.Children()[1].(*State)
	obs := child.Observation()
	require.Equal(t, []float64{1, 1}, obs["node_obs"].Data)
	require.Equal(t, []float64{2}, obs["node_idx"].Data)
	require.InDelta(t, math.Sqrt2, obs["parent_dist"].Data[0], 1e-12)
	require.Equal(t, []float64{1}, obs["nbr_dist"].Data)
}

func TestStateRootDeterministic(t *testing.T) {
	g := squareGraph(t)
	a := NewState(g).Root()
	b := NewState(g).Children()[2].Root()
	require.True(t, a.Observation().Equal(b.Observation()))
}

func TestEnvFullTour(t *testing.T) {
	g, err := NewCompletePlanarGraph(4, 1)
	require.NoError(t, err)
	env, err := types.NewGraphEnv(NewState(g))
	require.NoError(t, err)

	obs, err := env.Reset()
	require.NoError(t, err)
	require.Equal(t, []bool{false, true, true, true, false}, obs.ActionMask)
	require.Equal(t, []int{10}, obs.ActionObservations["node_obs"].Shape)

	steps := 0
	total := 0.0
	var result *types.StepResult
	for !env.Done() {
		children := env.State().Children()
		expected := children[0].Reward()
		result, err = env.Step(0)
		require.NoError(t, err)
		require.Equal(t, expected, result.Reward)
		total += result.Reward
		steps++
		require.LessOrEqual(t, steps, g.NumNodes())
	}
	require.Equal(t, g.NumNodes(), steps)
	require.True(t, result.Terminal)
	tour := env.State().(*State).Tour()
	require.Len(t, tour, g.NumNodes()+1)

	cost, err := TourCost(g, tour)
	require.NoError(t, err)
	require.InDelta(t, -cost, total, 1e-9)
}

func TestEnvPadding(t *testing.T) {
	g := squareGraph(t)
	env, err := types.NewGraphEnv(NewState(g))
	require.NoError(t, err)
	_, err = env.Reset()
	require.NoError(t, err)
	for i := 0; i < 2; i++ {
		_, err = env.Step(0)
		require.NoError(t, err)
	}

	obs, err := env.MakeObservation()
	require.NoError(t, err)
	require.Equal(t, []bool{false, true, false, false, false}, obs.ActionMask)
	own := env.State().Observation()
	idx := obs.ActionObservations["node_idx"].Data
	for slot := 2; slot < 5; slot++ {
		require.Equal(t, own["node_idx"].Data[0], idx[slot], "Slot %d pads with the current state", slot)
	}
}

func TestNFPStateBatching(t *testing.T) {
	g, err := NewCompletePlanarGraph(5, 3)
	require.NoError(t, err)
	state := NewNFPState(g, 2)
	require.Equal(t, 10, state.inputs.NumEdges)
	require.NoError(t, state.ObservationSpace().Contains(state.Observation()))
	require.NoError(t, state.ObservationSpace().Contains(state.NullObservation()))

	env, err := types.NewGraphEnv(state)
	require.NoError(t, err)
	obs, err := env.Reset()
	require.NoError(t, err)
	require.NoError(t, env.ObservationSpace().Contains(obs))
	require.Equal(t, []int{6}, obs.ActionObservations["current_node"].Shape)
	require.Equal(t, []int{60, 2}, obs.ActionObservations["connectivity"].Shape)
	require.Equal(t, []int{30}, obs.ActionObservations["node_visited"].Shape)

	result, err := env.Step(3)
	require.NoError(t, err)
	require.Equal(t, []int{0, 4}, env.State().(*NFPState).Tour())
	require.InDelta(t, -g.Weight(0, 4), result.Reward, 1e-12)
	visited := env.State().Observation()["node_visited"].Data
	require.Equal(t, []float64{2, 1, 1, 1, 2}, visited)

	// graph inputs are copied per vertex
	child := state.Children()[0]
	weights := state.Observation()["edge_weights"]
	original := weights.Data[0]
	weights.Data[0] = -1
	require.Equal(t, original, child.Observation()["edge_weights"].Data[0])
	require.Equal(t, original, state.inputs.EdgeWeights.Data[0])
}

func TestBaselines(t *testing.T) {
	g, err := NewCompletePlanarGraph(8, 7)
	require.NoError(t, err)

	greedy := GreedyTour(g)
	require.NoError(t, ValidateTour(greedy, g.NumNodes()))
	greedyCost, err := TourCost(g, greedy)
	require.NoError(t, err)

	improved, improvedCost, err := TwoOpt(g, greedy, 1e-9)
	require.NoError(t, err)
	require.NoError(t, ValidateTour(improved, g.NumNodes()))
	require.LessOrEqual(t, improvedCost, greedyCost+1e-9)

	t.Run("replaying a tour through the env returns its negative cost", func(t *testing.T) {
		root := NewState(g)
		actions, err := ActionsFor(root, improved)
		require.NoError(t, err)
		env, err := types.NewGraphEnv(root)
		require.NoError(t, err)
		_, err = env.Reset()
		require.NoError(t, err)
		total := 0.0
		for _, a := range actions {
			result, err := env.Step(a)
			require.NoError(t, err)
			total += result.Reward
		}
		require.True(t, env.Done())
		require.InDelta(t, -improvedCost, total, 1e-9)
	})

	t.Run("invalid tours", func(t *testing.T) {
		_, err := TourCost(g, []int{0, 1, 0})
		require.True(t, errors.Is(err, ErrInvalidTour))
		_, err = TourCost(g, []int{0, 1, 1, 2, 3, 4, 5, 6, 0})
		require.True(t, errors.Is(err, ErrInvalidTour))
	})
}
