package policies

import (
	"math"
	"time"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/sampleuv"

	"github.com/zeu5/graphenv/types"
)

// qLearner holds the shared tabular update
type qLearner struct {
	qTable *QTable
	alpha  float64
	gamma  float64
}

func newQLearner(alpha, gamma float64) *qLearner {
	return &qLearner{
		qTable: NewQTable(),
		alpha:  alpha,
		gamma:  gamma,
	}
}

func (l *qLearner) Update(_ int, state types.Vertex, action int, nextState types.Vertex, reward float64) {
	stateHash := state.Hash()
	curVal := l.qTable.Get(stateHash, action, 0)

	nextVal := stateValue(l.qTable, nextState, 0)
	l.qTable.Set(stateHash, action, (1-l.alpha)*curVal+l.alpha*(reward+l.gamma*nextVal))
}

// stateValue is the best value among the actions of v, 0 for terminal states
func stateValue(q *QTable, v types.Vertex, def float64) float64 {
	children := v.Children()
	if len(children) == 0 {
		return 0
	}
	_, val := q.MaxAmong(v.Hash(), indices(len(children)), def)
	return val
}

func (l *qLearner) Reset() {
	l.qTable = NewQTable()
}

func (l *qLearner) UpdateIteration(_ int, _ *types.Trace) {}

func (l *qLearner) QTable() *QTable {
	return l.qTable
}

// EpsilonGreedyQ is tabular Q-learning acting greedily
// with probability 1-epsilon
type EpsilonGreedyQ struct {
	*qLearner
	epsilon float64
	rand    *rand.Rand
}

var _ types.Policy = &EpsilonGreedyQ{}

func NewEpsilonGreedyQ(alpha, gamma, epsilon float64) *EpsilonGreedyQ {
	return NewSeededEpsilonGreedyQ(alpha, gamma, epsilon, uint64(time.Now().UnixNano()))
}

func NewSeededEpsilonGreedyQ(alpha, gamma, epsilon float64, seed uint64) *EpsilonGreedyQ {
	return &EpsilonGreedyQ{
		qLearner: newQLearner(alpha, gamma),
		epsilon:  epsilon,
		rand:     rand.New(rand.NewSource(seed)),
	}
}

func (e *EpsilonGreedyQ) NextAction(_ int, state types.Vertex, obs *types.GraphObservation) (int, bool) {
	actions := obs.Available()
	if len(actions) == 0 {
		return -1, false
	}
	if e.rand.Float64() < e.epsilon {
		return actions[e.rand.Intn(len(actions))], true
	}
	action, _ := e.qTable.MaxAmong(state.Hash(), actions, 0)
	return action, true
}

// SoftMaxQ is tabular Q-learning sampling actions
// from the Boltzmann distribution of their values
type SoftMaxQ struct {
	*qLearner
	temperature float64
	rand        rand.Source
}

var _ types.Policy = &SoftMaxQ{}

func NewSoftMaxQ(alpha, gamma, temperature float64) *SoftMaxQ {
	return NewSeededSoftMaxQ(alpha, gamma, temperature, uint64(time.Now().UnixNano()))
}

func NewSeededSoftMaxQ(alpha, gamma, temperature float64, seed uint64) *SoftMaxQ {
	return &SoftMaxQ{
		qLearner:    newQLearner(alpha, gamma),
		temperature: temperature,
		rand:        rand.NewSource(seed),
	}
}

func (s *SoftMaxQ) NextAction(_ int, state types.Vertex, obs *types.GraphObservation) (int, bool) {
	actions := obs.Available()
	if len(actions) == 0 {
		return -1, false
	}
	stateHash := state.Hash()
	vals := make([]float64, len(actions))
	for i, a := range actions {
		vals[i] = s.qTable.Get(stateHash, a, 0)
	}
	i, ok := softmaxSample(vals, s.temperature, s.rand)
	if !ok {
		return -1, false
	}
	return actions[i], true
}

// softmaxSample picks an index with probability proportional to exp(val/temperature)
func softmaxSample(vals []float64, temperature float64, src rand.Source) (int, bool) {
	weights := make([]float64, len(vals))
	maxVal := math.Inf(-1)
	for i, v := range vals {
		weights[i] = v / temperature
		if weights[i] > maxVal {
			maxVal = weights[i]
		}
	}
	sum := 0.0
	for i, w := range weights {
		weights[i] = math.Exp(w - maxVal)
		sum += weights[i]
	}
	for i := range weights {
		weights[i] /= sum
	}
	return sampleuv.NewWeighted(weights, src).Take()
}
