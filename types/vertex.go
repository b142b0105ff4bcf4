package types

import "sync"

// Vertex is an immutable state in an implicit, possibly infinite graph.
// Successors are always new Vertex values; a Vertex is never mutated
// once constructed, so it can be shared across environments.
type Vertex interface {
	// Root returns a fresh initial state of the domain
	Root() Vertex
	// Children returns the successors in a stable order.
	// The order defines the action index of each successor.
	Children() []Vertex
	// Terminal is true iff there are no successors
	Terminal() bool
	// Reward earned by the transition into this vertex
	Reward() float64
	// Observation of this vertex alone
	Observation() Observation
	// ObservationSpace is identical for all vertices of a domain
	ObservationSpace() ObservationSpace
	// NullObservation is a schema valid placeholder
	NullObservation() Observation
	Info() map[string]interface{}
	// Hash identifies the vertex in traces and tables.
	// Should be deterministic
	Hash() string
}

// VertexBase memoizes successors and observations of a vertex.
// Domain states embed it and route Children/Observation through
// Successors/Observe. The memo is safe for concurrent readers.
type VertexBase struct {
	childrenOnce sync.Once
	children     []Vertex

	observationOnce sync.Once
	observation     Observation
}

// Successors computes the children once with gen and returns the cached list
func (b *VertexBase) Successors(gen func() []Vertex) []Vertex {
	b.childrenOnce.Do(func() {
		children := gen()
		if children == nil {
			children = make([]Vertex, 0)
		}
		b.children = children
	})
	return b.children
}

// Observe computes the observation once with build and returns the cached value
func (b *VertexBase) Observe(build func() Observation) Observation {
	b.observationOnce.Do(func() {
		b.observation = build()
	})
	return b.observation
}

// IsTerminal is the derived terminal test shared by domains
func IsTerminal(v Vertex) bool {
	return len(v.Children()) == 0
}

// BaseInfo is the default empty info mapping
func BaseInfo() map[string]interface{} {
	return make(map[string]interface{})
}
