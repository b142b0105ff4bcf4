package hallway

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/zeu5/graphenv/types"
)

func newEnv(t *testing.T, h *Hallway) *types.GraphEnv {
	t.Helper()
	env, err := types.NewGraphEnv(h)
	require.NoError(t, err)
	return env
}

func TestHallwayChildren(t *testing.T) {
	h := NewHallway(5, 0)

	children := h.Children()
	require.Len(t, children, 1, "Only moving right is allowed at position 0")
	require.Equal(t, 1, children[0].(*Hallway).Position())

	children = children[0].Children()
	require.Len(t, children, 2)
	require.Equal(t, 0, children[0].(*Hallway).Position(), "Left comes first")
	require.Equal(t, 2, children[1].(*Hallway).Position())
}

func TestHallwayMemoizesChildren(t *testing.T) {
	h := NewHallway(5, 0).At(2, 2)

	first := h.Children()
	second := h.Children()
	require.Len(t, second, len(first))
	for i := range first {
		require.Same(t, first[i], second[i], "Children are computed once per instance")
	}
	require.Equal(t, h.Observation(), h.Observation())
}

func TestHallwayTerminal(t *testing.T) {
	h := NewHallway(5, 0)
	require.False(t, h.At(0, 0).Terminal())
	require.False(t, h.At(4, 4).Terminal())
	require.True(t, h.At(5, 5).Terminal())

	limited := NewHallway(5, 3)
	require.True(t, limited.At(1, 3).Terminal(), "No steps left")
	require.Equal(t, StepReward, limited.At(1, 3).Reward())
}

func TestHallwayReward(t *testing.T) {
	h := NewHallway(5, 0)
	require.Greater(t, h.At(5, 5).Reward(), 0.0)
	require.Equal(t, -0.1, h.At(3, 3).Reward())
	require.Equal(t, 0.0, h.Root().Reward(), "Nothing is earned before the first step")
	require.Equal(t, StepReward, h.At(0, 2).Reward())
}

func TestHallwayRootDeterministic(t *testing.T) {
	a := NewHallway(5, 10).At(3, 4).Root()
	b := NewHallway(5, 10).Root()
	require.True(t, a.Observation().Equal(b.Observation()))
	require.Equal(t, a.Hash(), b.Hash())
}

func TestHallwayObservationSpace(t *testing.T) {
	h := NewHallway(5, 10)
	space := h.ObservationSpace()
	require.NoError(t, space.Contains(h.Observation()))
	require.NoError(t, space.Contains(h.NullObservation()))
	require.NoError(t, space.Contains(h.At(5, 10).Observation()))
}

func TestGraphEnvReset(t *testing.T) {
	env := newEnv(t, NewHallway(5, 0))

	obs, err := env.Reset()
	require.NoError(t, err)
	require.Len(t, obs.ActionMask, 3)
	require.Equal(t, []bool{false, true, false}, obs.ActionMask)
	require.Equal(t, []float64{0, 1, 0}, obs.ActionObservations["position"].Data,
		"Unused slot replicates the current state")
	require.Equal(t, []int{3}, obs.ActionObservations["position"].Shape)
	require.NoError(t, env.ObservationSpace().Contains(obs))
}

func TestGraphEnvStepRight(t *testing.T) {
	env := newEnv(t, NewHallway(5, 0))
	_, err := env.Reset()
	require.NoError(t, err)

	result, err := env.Step(0)
	require.NoError(t, err)
	for i := 0; i < 3; i++ {
		require.False(t, result.Terminal)
		require.Equal(t, -0.1, result.Reward)
		require.NoError(t, env.ObservationSpace().Contains(result.Observation))
		require.True(t, env.ActionSpace().Contains(1))
		result, err = env.Step(1)
		require.NoError(t, err)
	}
	require.False(t, result.Terminal)
	require.Equal(t, 4, result.Info["position"])

	result, err = env.Step(1)
	require.NoError(t, err)
	require.True(t, result.Terminal, "Five steps right reach the end")
	require.Greater(t, result.Reward, 0.0)
	require.Equal(t, 5, result.Info["episode_steps"])
	require.Equal(t, []bool{false, false, false}, result.Observation.ActionMask)

	_, err = env.Step(0)
	require.True(t, errors.Is(err, types.ErrEpisodeDone))
}

func TestGraphEnvStepLeftRight(t *testing.T) {
	env := newEnv(t, NewHallway(5, 0))
	_, err := env.Reset()
	require.NoError(t, err)
	_, err = env.Step(0)
	require.NoError(t, err)

	for i := 0; i < 10; i++ {
		result, err := env.Step(0)
		require.NoError(t, err)
		require.False(t, result.Terminal)
		require.Equal(t, -0.1, result.Reward)

		result, err = env.Step(len(env.State().Children()) - 1)
		require.NoError(t, err)
		require.False(t, result.Terminal)
		require.Equal(t, -0.1, result.Reward)
	}
}

func TestGraphEnvActionBounds(t *testing.T) {
	env := newEnv(t, NewHallway(5, 0))
	_, err := env.Reset()
	require.NoError(t, err)
	root := env.State()

	_, err = env.Step(-1)
	require.True(t, errors.Is(err, types.ErrActionOutOfRange))
	_, err = env.Step(MaxNumActions)
	require.True(t, errors.Is(err, types.ErrActionOutOfRange))
	_, err = env.Step(1)
	require.True(t, errors.Is(err, types.ErrActionUnavailable), "Only one successor exists at position 0")
	require.Same(t, root, env.State(), "Rejected steps do not move the state")
}

func TestGraphEnvRewardAttribution(t *testing.T) {
	env := newEnv(t, NewHallway(3, 0))
	_, err := env.Reset()
	require.NoError(t, err)
	for !env.Done() {
		children := env.State().Children()
		action := len(children) - 1
		expected := children[action].Reward()
		result, err := env.Step(action)
		require.NoError(t, err)
		require.Equal(t, expected, result.Reward)
		require.Same(t, children[action], env.State())
	}
}
