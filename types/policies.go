package types

import (
	"time"

	"golang.org/x/exp/rand"
)

// Policy picks actions from the batched observation of a state
type Policy interface {
	UpdateIteration(int, *Trace)
	// NextAction returns the action index to take, false if none can be taken
	NextAction(int, Vertex, *GraphObservation) (int, bool)
	Update(int, Vertex, int, Vertex, float64)
	Reset()
}

// RandomPolicy picks uniformly among the available actions
type RandomPolicy struct {
	rand *rand.Rand
}

var _ Policy = &RandomPolicy{}

func NewRandomPolicy() *RandomPolicy {
	return NewSeededRandomPolicy(uint64(time.Now().UnixNano()))
}

func NewSeededRandomPolicy(seed uint64) *RandomPolicy {
	return &RandomPolicy{
		rand: rand.New(rand.NewSource(seed)),
	}
}

func (r *RandomPolicy) Reset() {

}

func (r *RandomPolicy) UpdateIteration(_ int, _ *Trace) {

}

func (r *RandomPolicy) NextAction(_ int, _ Vertex, obs *GraphObservation) (int, bool) {
	actions := obs.Available()
	if len(actions) == 0 {
		return -1, false
	}
	return actions[r.rand.Intn(len(actions))], true
}

func (r *RandomPolicy) Update(_ int, _ Vertex, _ int, _ Vertex, _ float64) {}

// FirstPolicy always takes the first available action
type FirstPolicy struct{}

var _ Policy = FirstPolicy{}

func (FirstPolicy) Reset() {}

func (FirstPolicy) UpdateIteration(_ int, _ *Trace) {}

func (FirstPolicy) NextAction(_ int, _ Vertex, obs *GraphObservation) (int, bool) {
	actions := obs.Available()
	if len(actions) == 0 {
		return -1, false
	}
	return actions[0], true
}

func (FirstPolicy) Update(_ int, _ Vertex, _ int, _ Vertex, _ float64) {}
