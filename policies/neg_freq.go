package policies

import (
	"math"

	"github.com/zeu5/graphenv/types"
)

// SoftMaxNegFreqPolicy is softmax Q-learning where the reward of a transition
// is minus the number of times its next state was reached
type SoftMaxNegFreqPolicy struct {
	*SoftMaxQ
	freq map[string]int
	// Max updates with max instead of plus
	Max bool
}

var _ types.Policy = &SoftMaxNegFreqPolicy{}

func NewSeededSoftMaxNegFreqPolicy(alpha, gamma, temperature float64, max bool, seed uint64) *SoftMaxNegFreqPolicy {
	return &SoftMaxNegFreqPolicy{
		SoftMaxQ: NewSeededSoftMaxQ(alpha, gamma, temperature, seed),
		freq:     make(map[string]int),
		Max:      max,
	}
}

// Frequency returns how often the state was reached
func (p *SoftMaxNegFreqPolicy) Frequency(state types.Vertex) int {
	return p.freq[state.Hash()]
}

func (p *SoftMaxNegFreqPolicy) Reset() {
	p.SoftMaxQ.Reset()
	p.freq = make(map[string]int)
}

func (p *SoftMaxNegFreqPolicy) Update(_ int, state types.Vertex, action int, nextState types.Vertex, _ float64) {
	stateHash := state.Hash()
	nextStateHash := nextState.Hash()

	p.freq[nextStateHash] += 1
	reward := float64(-1 * p.freq[nextStateHash])

	curVal := p.qTable.Get(stateHash, action, 0)
	nextVal := stateValue(p.qTable, nextState, 0)

	var newVal float64
	if p.Max {
		newVal = (1-p.alpha)*curVal + p.alpha*math.Max(reward, p.gamma*nextVal)
	} else {
		newVal = (1-p.alpha)*curVal + p.alpha*(reward+p.gamma*nextVal)
	}
	p.qTable.Set(stateHash, action, newVal)
}
