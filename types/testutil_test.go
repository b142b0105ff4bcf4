package types

import (
	"fmt"
	"sync/atomic"
)

// mockNode is a tree where a vertex at depth d has fanout(d) children
type mockNode struct {
	NodeBase
	depth    int
	path     string
	fanout   func(depth int) int
	badObs   bool
	computed *int64
}

var _ Node = &mockNode{}

func newMockNode(maxActions int, fanout func(int) int) *mockNode {
	var computed int64
	return &mockNode{
		NodeBase: NewNodeBase(maxActions),
		path:     "r",
		fanout:   fanout,
		computed: &computed,
	}
}

func (m *mockNode) child(i int) *mockNode {
	return &mockNode{
		NodeBase: NewNodeBase(m.MaxNumActions()),
		depth:    m.depth + 1,
		path:     fmt.Sprintf("%s.%d", m.path, i),
		fanout:   m.fanout,
		badObs:   m.badObs,
		computed: m.computed,
	}
}

func (m *mockNode) Root() Vertex {
	r := newMockNode(m.MaxNumActions(), m.fanout)
	r.badObs = m.badObs
	r.computed = m.computed
	return r
}

func (m *mockNode) Children() []Vertex {
	return m.Successors(func() []Vertex {
		atomic.AddInt64(m.computed, 1)
		n := m.fanout(m.depth)
		children := make([]Vertex, n)
		for i := range children {
			children[i] = m.child(i)
		}
		return children
	})
}

func (m *mockNode) Terminal() bool {
	return IsTerminal(m)
}

func (m *mockNode) Reward() float64 {
	return float64(-m.depth)
}

func (m *mockNode) ObservationSpace() ObservationSpace {
	return ObservationSpace{
		"depth": NewBox(0, 100, Int, 1),
		"pair":  NewBox(-100, 100, Float, 1, 2),
	}
}

func (m *mockNode) NullObservation() Observation {
	return Observation{
		"depth": NewArray(1),
		"pair":  NewArray(1, 2),
	}
}

func (m *mockNode) Observation() Observation {
	return m.Observe(func() Observation {
		if m.badObs && m.depth > 0 {
			return Observation{"depth": Vector(float64(m.depth))}
		}
		return Observation{
			"depth": Vector(float64(m.depth)),
			"pair":  &Array{Shape: []int{1, 2}, Data: []float64{float64(m.depth), float64(-m.depth)}},
		}
	})
}

func (m *mockNode) Info() map[string]interface{} {
	info := BaseInfo()
	info["depth"] = m.depth
	return info
}

func (m *mockNode) Hash() string {
	return m.path
}

// chain has fanout branches until depth levels
func chain(fanout, levels int) func(int) int {
	return func(depth int) int {
		if depth >= levels {
			return 0
		}
		return fanout
	}
}
