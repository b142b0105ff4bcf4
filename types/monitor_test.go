package types

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func atDepth(d int) func(Vertex) bool {
	return func(v Vertex) bool {
		return v.(*mockNode).depth == d
	}
}

func tookAction(a int) MonitorCondition {
	return func(_ Vertex, action int, _ Vertex) bool {
		return action == a
	}
}

func runFirst(t *testing.T, root Node, horizon int) *Trace {
	t.Helper()
	env, err := NewGraphEnv(root)
	require.NoError(t, err)
	agent := NewAgent(&AgentConfig{Episodes: 1, Horizon: horizon, Policy: FirstPolicy{}, Environment: env})
	trace, err := agent.RunEpisode(0)
	require.NoError(t, err)
	return trace
}

func TestMonitorCheck(t *testing.T) {
	trace := runFirst(t, newMockNode(2, chain(2, 4)), 10)

	m := NewMonitor()
	m.Build().
		On(Reached(atDepth(2)), "middle").
		On(Reached(atDepth(3)), "deep").
		MarkSuccess()

	prefix, ok := m.Check(trace)
	require.True(t, ok)
	require.Equal(t, 3, prefix.Len(), "The prefix ends at the transition into the success state")

	strict := NewMonitor()
	strict.Build().On(tookAction(1), "right").MarkSuccess()
	_, ok = strict.Check(trace)
	require.False(t, ok, "FirstPolicy never takes action 1")

	either := NewMonitor()
	either.Build().On(tookAction(1).Or(Reached(atDepth(1))), "done").MarkSuccess()
	prefix, ok = either.Check(trace)
	require.True(t, ok)
	require.Equal(t, 1, prefix.Len())

	never := NewMonitor()
	never.Build().On(tookAction(0).And(tookAction(0).Not()), "impossible").MarkSuccess()
	_, ok = never.Check(trace)
	require.False(t, ok)
}

func TestMonitorOrderedTransitions(t *testing.T) {
	trace := runFirst(t, newMockNode(2, chain(2, 2)), 10)
	m := NewMonitor()
	b := m.Build()
	b.On(Reached(atDepth(1)), "first").MarkSuccess()
	b.On(Reached(atDepth(1)), "second")

	for i := 0; i < 20; i++ {
		prefix, ok := m.Check(trace)
		require.True(t, ok, "The first matching transition is taken")
		require.Equal(t, 1, prefix.Len())
	}
}

func TestMonitorAnalyzer(t *testing.T) {
	m := NewMonitor()
	m.Build().On(Reached(func(v Vertex) bool {
		return strings.HasSuffix(v.Hash(), ".1")
	}), "right").MarkSuccess()

	analyzer := MonitorAnalyzerConstructor(m)()
	analyzer.Analyze(0, 0, "first", runFirst(t, newMockNode(2, chain(2, 3)), 10))

	env, err := NewGraphEnv(newMockNode(2, chain(2, 3)))
	require.NoError(t, err)
	agent := NewAgent(&AgentConfig{Episodes: 1, Horizon: 10, Policy: lastPolicy{}, Environment: env})
	trace, err := agent.RunEpisode(1)
	require.NoError(t, err)
	analyzer.Analyze(0, 1, "last", trace)

	stats := analyzer.DataSet().(*MonitorStats)
	require.Equal(t, 2, stats.Episodes)
	require.Equal(t, []int{1}, stats.Satisfied)
	require.Equal(t, []int{1}, stats.Steps)
	require.NoError(t, MonitorPrintComparator("right")(0, []string{"x"}, []DataSet{stats}))

	analyzer.Reset()
	require.Equal(t, 0, analyzer.DataSet().(*MonitorStats).Episodes)
}

// lastPolicy takes the last available action
type lastPolicy struct{ FirstPolicy }

func (lastPolicy) NextAction(_ int, _ Vertex, obs *GraphObservation) (int, bool) {
	actions := obs.Available()
	if len(actions) == 0 {
		return -1, false
	}
	return actions[len(actions)-1], true
}
