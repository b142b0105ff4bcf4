package types

import (
	"github.com/rs/zerolog/log"
)

var (
	InitState string = "init"
)

// Transitions of a Monitor are labelled with a MonitorCondition
// MonitorCondition is a predicate on the transition of RL (state, action, nextState)
type MonitorCondition func(Vertex, int, Vertex) bool

// Not operator on the MonitorCondition
func (m MonitorCondition) Not() MonitorCondition {
	return func(s Vertex, a int, ns Vertex) bool {
		return !m(s, a, ns)
	}
}

// Or operator between MonitorCondition's
func (m MonitorCondition) Or(other MonitorCondition) MonitorCondition {
	return func(s Vertex, a int, ns Vertex) bool {
		return m(s, a, ns) || other(s, a, ns)
	}
}

// And operator between MonitorCondition's
func (m MonitorCondition) And(other MonitorCondition) MonitorCondition {
	return func(s Vertex, a int, ns Vertex) bool {
		return m(s, a, ns) && other(s, a, ns)
	}
}

// Reached holds when the next state satisfies pred
func Reached(pred func(Vertex) bool) MonitorCondition {
	return func(_ Vertex, _ int, ns Vertex) bool {
		return pred(ns)
	}
}

type monitorTransition struct {
	cond MonitorCondition
	next string
}

// MonitorState is a state in the state machine (Monitor)
// Use MonitorBuilder to create monitor states (do not instantiate directly)
type MonitorState struct {
	Success bool
	Name    string
	// checked in the order they were added
	transitions []monitorTransition
}

// Monitor is a state machine over the transitions of a trace
type Monitor struct {
	states map[string]*MonitorState
}

// Creates a new Monitor
// with a default initial state
func NewMonitor() *Monitor {
	m := &Monitor{
		states: make(map[string]*MonitorState),
	}
	m.states[InitState] = &MonitorState{Name: InitState}
	return m
}

// Check simulates the monitor on the trace and returns the
// prefix that results in a transition to a success state
func (m *Monitor) Check(t *Trace) (*Trace, bool) {
	curState := m.states[InitState]
	if curState.Success {
		return NewTrace(), true
	}
	for i := 0; i < t.Len(); i++ {
		s, a, ns, _, _ := t.Get(i)
		for _, tr := range curState.transitions {
			if tr.cond(s, a, ns) {
				curState = m.states[tr.next]
				break
			}
		}
		if curState.Success {
			return t.Slice(0, i+1), true
		}
	}
	return nil, false
}

// Returns a MonitorBuilder to construct the remainder of the state machine
// Initialized at the initial state
func (m *Monitor) Build() *MonitorBuilder {
	return &MonitorBuilder{
		monitor:  m,
		curState: m.states[InitState],
	}
}

// Encodes a Builder pattern to create the state machine
// The builder is indexed at a particular state of the state machine (Monitor)
type MonitorBuilder struct {
	monitor  *Monitor
	curState *MonitorState
}

// On defines a transition from the current state to next, taken when cond holds,
// and returns a builder indexed at next. Chains read s1.On().On().On()...
// If next is not part of the state machine it is created.
func (m *MonitorBuilder) On(cond MonitorCondition, next string) *MonitorBuilder {
	nextState, ok := m.monitor.states[next]
	if !ok {
		nextState = &MonitorState{Name: next}
		m.monitor.states[next] = nextState
	}
	m.curState.transitions = append(m.curState.transitions, monitorTransition{cond: cond, next: next})
	return &MonitorBuilder{
		monitor:  m.monitor,
		curState: nextState,
	}
}

// Mark the corresponding state indexed at this builder instance as a success state
func (m *MonitorBuilder) MarkSuccess() *MonitorBuilder {
	m.curState.Success = true
	return m
}

// MonitorStats is the dataset of a MonitorAnalyzer
type MonitorStats struct {
	Episodes int
	// Satisfied lists the episodes whose trace satisfied the monitor
	Satisfied []int
	// Steps is the length of the satisfying prefix of each satisfied episode
	Steps []int
}

// MonitorAnalyzer checks every trace against a monitor
type MonitorAnalyzer struct {
	monitor *Monitor
	stats   *MonitorStats
}

var _ Analyzer = &MonitorAnalyzer{}

// MonitorAnalyzerConstructor creates analyzers sharing the monitor, monitors are read only
func MonitorAnalyzerConstructor(m *Monitor) AnalyzerConstructor {
	return func() Analyzer {
		return &MonitorAnalyzer{monitor: m, stats: &MonitorStats{}}
	}
}

func (a *MonitorAnalyzer) Analyze(_ int, episode int, _ string, trace *Trace) {
	a.stats.Episodes++
	if prefix, ok := a.monitor.Check(trace); ok {
		a.stats.Satisfied = append(a.stats.Satisfied, episode)
		a.stats.Steps = append(a.stats.Steps, prefix.Len())
	}
}

func (a *MonitorAnalyzer) DataSet() DataSet {
	return &MonitorStats{
		Episodes:  a.stats.Episodes,
		Satisfied: append([]int{}, a.stats.Satisfied...),
		Steps:     append([]int{}, a.stats.Steps...),
	}
}

func (a *MonitorAnalyzer) Reset() {
	a.stats = &MonitorStats{}
}

// MonitorPrintComparator logs how often each experiment satisfied the property
func MonitorPrintComparator(property string) Comparator {
	return func(run int, names []string, ds []DataSet) error {
		for i, name := range names {
			stats := ds[i].(*MonitorStats)
			event := log.Info().
				Int("run", run).
				Str("experiment", name).
				Str("property", property).
				Int("satisfied", len(stats.Satisfied)).
				Int("episodes", stats.Episodes)
			if len(stats.Satisfied) > 0 {
				event = event.Int("first_episode", stats.Satisfied[0])
			}
			event.Msg("property check")
		}
		return nil
	}
}
