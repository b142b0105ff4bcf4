package benchmarks

import (
	"context"
	"os"
	"os/signal"
	"path"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/zeu5/graphenv/policies"
	"github.com/zeu5/graphenv/types"
)

const (
	alpha       = 0.1
	gamma       = 0.99
	epsilon     = 0.1
	temperature = 0.5
)

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt)
}

// policySet is the set of policies compared on every domain
type policySet struct {
	random  *types.RandomPolicy
	greedy  *policies.EpsilonGreedyQ
	softmax *policies.SoftMaxQ
	bonus   *policies.BonusPolicyGreedy
	bonusSM *policies.BonusPolicySoftMax
	negFreq *policies.SoftMaxNegFreqPolicy
}

func newPolicySet(seed uint64) policySet {
	return policySet{
		random:  types.NewSeededRandomPolicy(seed),
		greedy:  policies.NewSeededEpsilonGreedyQ(alpha, gamma, epsilon, seed+1),
		softmax: policies.NewSeededSoftMaxQ(alpha, gamma, temperature, seed+2),
		bonus:   policies.NewSeededBonusPolicyGreedy(alpha, gamma, epsilon, false, seed+3),
		bonusSM: policies.NewSeededBonusPolicySoftMax(alpha, gamma, temperature, seed+5),
		negFreq: policies.NewSeededSoftMaxNegFreqPolicy(alpha, gamma, temperature, false, seed+4),
	}
}

// newComparison compares the policy set, each with its own environment over root.
// Traces are checked against the monitor of property.
func newComparison(root types.Node, set policySet, recorder types.Recorder, property string, monitor *types.Monitor) (*types.Comparison, error) {
	c := types.NewComparison(episodes, horizon, runs)
	c.Recorder = recorder
	c.AddAnalysis("Rewards", types.NewRewardAnalyzer, types.RewardPlotComparator(saveFile))
	c.AddAnalysis("RewardStats", types.NewRewardAnalyzer, types.RewardPrintComparator())
	c.AddAnalysis("Coverage", types.NewCoverageAnalyzer, types.CoveragePlotComparator(saveFile))
	c.AddAnalysis("Visits", types.NewVisitGraphAnalyzer, types.VisitGraphComparator(saveFile))
	c.AddAnalysis(property, types.MonitorAnalyzerConstructor(monitor), types.MonitorPrintComparator(property))

	named := []struct {
		name   string
		policy types.Policy
	}{
		{"Random", set.random},
		{"EpsilonGreedyQ", set.greedy},
		{"SoftMaxQ", set.softmax},
		{"Bonus", set.bonus},
		{"BonusSoftMax", set.bonusSM},
		{"NegFreq", set.negFreq},
	}
	for _, p := range named {
		env, err := types.NewGraphEnv(root)
		if err != nil {
			return nil, err
		}
		c.AddExperiment(types.NewExperiment(p.name, p.policy, env))
	}
	return c, nil
}

// runParallel rolls out random policies on workers sharing root and logs the returns
func runParallel(ctx context.Context, name string, root types.Node, workers int, seed uint64, recorder types.Recorder, recordTraces bool) error {
	exp := types.NewParallelExperiment(name, root, workers, func(worker int) types.Policy {
		return types.NewSeededRandomPolicy(seed + uint64(worker))
	}).WithLiveOutput(500 * time.Millisecond)

	rewards := types.NewRewardAnalyzer()
	err := exp.Run(&types.RunConfig{
		Context:      ctx,
		Episodes:     episodes,
		Horizon:      horizon,
		Analyzers:    []types.Analyzer{rewards},
		Recorder:     recorder,
		RecordTraces: recordTraces,
	})
	if err != nil {
		return err
	}
	return types.RewardPrintComparator()(0, []string{name}, []types.DataSet{rewards.DataSet()})
}

func saveQTable(p *policies.EpsilonGreedyQ, name string) {
	file := path.Join(saveFile, name+"_qtable.json")
	if err := p.QTable().Record(file); err != nil {
		log.Warn().Err(err).Str("file", file).Msg("failed to save q table")
	}
}
