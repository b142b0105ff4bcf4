package types

import "gonum.org/v1/gonum/floats"

// Trace of an episode as tuples (state, action, nextState, reward)
type Trace struct {
	states     []Vertex
	actions    []int
	nextStates []Vertex
	rewards    []float64
}

func NewTrace() *Trace {
	return &Trace{
		states:     make([]Vertex, 0),
		actions:    make([]int, 0),
		nextStates: make([]Vertex, 0),
		rewards:    make([]float64, 0),
	}
}

func (t *Trace) Slice(from, to int) *Trace {
	slicedTrace := NewTrace()
	for i := from; i < to; i++ {
		slicedTrace.Append(i-from, t.states[i], t.actions[i], t.nextStates[i], t.rewards[i])
	}
	return slicedTrace
}

func (t *Trace) Append(step int, state Vertex, action int, nextState Vertex, reward float64) {
	t.states = append(t.states, state)
	t.actions = append(t.actions, action)
	t.nextStates = append(t.nextStates, nextState)
	t.rewards = append(t.rewards, reward)
}

func (t *Trace) Len() int {
	return len(t.states)
}

func (t *Trace) Get(i int) (Vertex, int, Vertex, float64, bool) {
	if i < 0 || i >= len(t.states) {
		return nil, -1, nil, 0, false
	}
	return t.states[i], t.actions[i], t.nextStates[i], t.rewards[i], true
}

func (t *Trace) Last() (Vertex, int, Vertex, float64, bool) {
	return t.Get(len(t.states) - 1)
}

// Return is the undiscounted sum of rewards
func (t *Trace) Return() float64 {
	return floats.Sum(t.rewards)
}

// Actions returns a copy of the action indices taken
func (t *Trace) Actions() []int {
	return append([]int{}, t.actions...)
}

// Terminal is true if the trace ended in a terminal state
func (t *Trace) Terminal() bool {
	_, _, last, _, ok := t.Last()
	return ok && last.Terminal()
}

// TraceStep is a recorded transition with hashed states
type TraceStep struct {
	State     string  `json:"state"`
	Action    int     `json:"action"`
	NextState string  `json:"next_state"`
	Reward    float64 `json:"reward"`
}

// Steps returns the hashed representation used when recording traces
func (t *Trace) Steps() []TraceStep {
	steps := make([]TraceStep, t.Len())
	for i := range t.states {
		steps[i] = TraceStep{
			State:     t.states[i].Hash(),
			Action:    t.actions[i],
			NextState: t.nextStates[i].Hash(),
			Reward:    t.rewards[i],
		}
	}
	return steps
}
