package policies

import (
	"time"

	"github.com/zeu5/graphenv/types"
	"golang.org/x/exp/rand"
)

// BonusPolicyGreedy ignores the environment reward and learns from the
// exploration bonus 1/n(s, a) where n counts how often the action was taken.
// Values are updated backwards over the trace once the episode ends.
type BonusPolicyGreedy struct {
	qTable   *QTable
	visits   *QTable
	alpha    float64
	discount float64
	epsilon  float64
	rand     *rand.Rand

	// max uses max(bonus, discounted value) in place of their sum
	max bool
}

var _ types.Policy = &BonusPolicyGreedy{}

func NewBonusPolicyGreedy(alpha, discount, epsilon float64, max bool) *BonusPolicyGreedy {
	return NewSeededBonusPolicyGreedy(alpha, discount, epsilon, max, uint64(time.Now().UnixNano()))
}

func NewSeededBonusPolicyGreedy(alpha, discount, epsilon float64, max bool, seed uint64) *BonusPolicyGreedy {
	return &BonusPolicyGreedy{
		qTable:   NewQTable(),
		visits:   NewQTable(),
		alpha:    alpha,
		discount: discount,
		epsilon:  epsilon,
		rand:     rand.New(rand.NewSource(seed)),
		max:      max,
	}
}

func (b *BonusPolicyGreedy) QTable() *QTable {
	return b.qTable
}

func (b *BonusPolicyGreedy) Reset() {
	b.qTable = NewQTable()
	b.visits = NewQTable()
}

// NextAction is optimistic: unseen actions are worth 1
func (b *BonusPolicyGreedy) NextAction(_ int, state types.Vertex, obs *types.GraphObservation) (int, bool) {
	actions := obs.Available()
	if len(actions) == 0 {
		return -1, false
	}
	if b.rand.Float64() < b.epsilon {
		return actions[b.rand.Intn(len(actions))], true
	}
	action, _ := b.qTable.MaxAmong(state.Hash(), actions, 1)
	return action, true
}

func (b *BonusPolicyGreedy) Update(_ int, _ types.Vertex, _ int, _ types.Vertex, _ float64) {}

func (b *BonusPolicyGreedy) update(state types.Vertex, action int, nextState types.Vertex, outOfHorizon bool) {
	stateHash := state.Hash()
	t := b.visits.Get(stateHash, action, 0) + 1
	b.visits.Set(stateHash, action, t)

	nextStateVal := 0.0
	// if not horizon reached, get the value of the next state
	if !outOfHorizon {
		nextStateVal = stateValue(b.qTable, nextState, 1)
	}
	curVal := b.qTable.Get(stateHash, action, 1)

	var newVal float64
	if b.max {
		newVal = (1-b.alpha)*curVal + b.alpha*max(1/t, b.discount*nextStateVal)
	} else {
		newVal = (1-b.alpha)*curVal + b.alpha*(1/t+b.discount*nextStateVal)
	}
	b.qTable.Set(stateHash, action, newVal)
}

func (b *BonusPolicyGreedy) UpdateIteration(_ int, trace *types.Trace) {
	lastIndex := trace.Len() - 1
	for i := lastIndex; i > -1; i-- {
		state, action, nextState, _, ok := trace.Get(i)
		if ok {
			b.update(state, action, nextState, i == lastIndex)
		}
	}
}

// BonusPolicySoftMax samples actions from the softmax of the bonus values
type BonusPolicySoftMax struct {
	*BonusPolicyGreedy
	temperature float64
	source      rand.Source
}

var _ types.Policy = &BonusPolicySoftMax{}

func NewSeededBonusPolicySoftMax(alpha, discount, temperature float64, seed uint64) *BonusPolicySoftMax {
	return &BonusPolicySoftMax{
		BonusPolicyGreedy: NewSeededBonusPolicyGreedy(alpha, discount, 0, false, seed),
		temperature:       temperature,
		source:            rand.NewSource(seed + 1),
	}
}

func (b *BonusPolicySoftMax) NextAction(_ int, state types.Vertex, obs *types.GraphObservation) (int, bool) {
	actions := obs.Available()
	if len(actions) == 0 {
		return -1, false
	}
	stateHash := state.Hash()
	vals := make([]float64, len(actions))
	for i, a := range actions {
		vals[i] = b.qTable.Get(stateHash, a, 1)
	}
	i, ok := softmaxSample(vals, b.temperature, b.source)
	if !ok {
		return -1, false
	}
	return actions[i], true
}
