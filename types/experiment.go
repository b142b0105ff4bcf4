package types

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// EpisodeSummary is what gets recorded for every episode
type EpisodeSummary struct {
	Experiment string      `json:"experiment"`
	Run        int         `json:"run"`
	Episode    int         `json:"episode"`
	Steps      int         `json:"steps"`
	Return     float64     `json:"return"`
	Terminal   bool        `json:"terminal"`
	Final      string      `json:"final"`
	Trace      []TraceStep `json:"trace,omitempty"`
}

func NewEpisodeSummary(experiment string, run, episode int, trace *Trace, withTrace bool) *EpisodeSummary {
	s := &EpisodeSummary{
		Experiment: experiment,
		Run:        run,
		Episode:    episode,
		Steps:      trace.Len(),
		Return:     trace.Return(),
		Terminal:   trace.Terminal(),
	}
	if _, _, last, _, ok := trace.Last(); ok {
		s.Final = last.Hash()
	}
	if withTrace {
		s.Trace = trace.Steps()
	}
	return s
}

// Recorder persists episode summaries
type Recorder interface {
	Record(context.Context, *EpisodeSummary) error
}

// RunConfig configures a single run of an experiment
type RunConfig struct {
	Context      context.Context
	Run          int
	Episodes     int
	Horizon      int
	Analyzers    []Analyzer
	Recorder     Recorder
	RecordTraces bool
	// Progress is invoked after every episode with the number of completed episodes
	Progress func(done int)
}

// Experiment encapsulates a policy acting on an environment
type Experiment struct {
	Name        string
	policy      Policy
	environment *GraphEnv
	logger      zerolog.Logger
}

// NewExperiment creates a new experiment instance
func NewExperiment(name string, policy Policy, environment *GraphEnv) *Experiment {
	return &Experiment{
		Name:        name,
		policy:      policy,
		environment: environment,
		logger:      log.With().Str("experiment", name).Logger(),
	}
}

// Run the experiment for the specified number of episodes. Each trace
// is passed to the analyzers and the recorder. Episode errors abort the run.
func (e *Experiment) Run(rConfig *RunConfig) error {
	ctx := rConfig.Context
	if ctx == nil {
		ctx = context.Background()
	}
	agent := NewAgent(&AgentConfig{
		Episodes:    rConfig.Episodes,
		Horizon:     rConfig.Horizon,
		Policy:      e.policy,
		Environment: e.environment,
	})
	e.logger.Info().Int("run", rConfig.Run).Int("episodes", rConfig.Episodes).Int("horizon", rConfig.Horizon).Msg("running experiment")

	for i := 0; i < rConfig.Episodes; i++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		trace, err := agent.RunEpisode(i)
		if err != nil {
			e.logger.Error().Err(err).Int("episode", i).Msg("episode failed")
			return fmt.Errorf("experiment %s, episode %d: %w", e.Name, i, err)
		}
		for _, a := range rConfig.Analyzers {
			a.Analyze(rConfig.Run, i, e.Name, trace)
		}
		if rConfig.Recorder != nil {
			summary := NewEpisodeSummary(e.Name, rConfig.Run, i, trace, rConfig.RecordTraces)
			if err := rConfig.Recorder.Record(ctx, summary); err != nil {
				return fmt.Errorf("recording episode %d: %w", i, err)
			}
		}
		if rConfig.Progress != nil {
			rConfig.Progress(i + 1)
		}
		e.logger.Debug().Int("episode", i).Int("steps", trace.Len()).Float64("return", trace.Return()).Msg("episode done")
	}
	return nil
}

// Reset the policy between runs
func (e *Experiment) Reset() {
	e.policy.Reset()
}

type DataSet interface{}

// Analyzer accumulates data over the traces of an experiment
type Analyzer interface {
	Analyze(run int, episode int, name string, trace *Trace)
	DataSet() DataSet
	Reset()
}

type AnalyzerConstructor func() Analyzer

// Comparator compares the datasets of different experiments for a run
type Comparator func(run int, names []string, datasets []DataSet) error

// Comparison runs several experiments with the same settings and
// compares the data collected by each analyzer
type Comparison struct {
	Experiments []*Experiment
	Episodes    int
	Horizon     int
	Runs        int
	Recorder    Recorder

	analyzers   map[string]AnalyzerConstructor
	comparators map[string]Comparator
	names       []string
}

func NewComparison(episodes, horizon, runs int) *Comparison {
	return &Comparison{
		Experiments: make([]*Experiment, 0),
		Episodes:    episodes,
		Horizon:     horizon,
		Runs:        runs,
		analyzers:   make(map[string]AnalyzerConstructor),
		comparators: make(map[string]Comparator),
		names:       make([]string, 0),
	}
}

func (c *Comparison) AddExperiment(e *Experiment) {
	c.Experiments = append(c.Experiments, e)
}

// AddAnalysis registers an analyzer and the comparator fed with its datasets
func (c *Comparison) AddAnalysis(name string, analyzer AnalyzerConstructor, comparator Comparator) {
	if _, ok := c.analyzers[name]; !ok {
		c.names = append(c.names, name)
	}
	c.analyzers[name] = analyzer
	c.comparators[name] = comparator
}

func (c *Comparison) Run(ctx context.Context) error {
	for run := 0; run < c.Runs; run++ {
		datasets := make(map[string][]DataSet)
		names := make([]string, len(c.Experiments))
		for i, e := range c.Experiments {
			names[i] = e.Name
			analyzers := make([]Analyzer, len(c.names))
			for j, name := range c.names {
				analyzers[j] = c.analyzers[name]()
			}
			err := e.Run(&RunConfig{
				Context:   ctx,
				Run:       run,
				Episodes:  c.Episodes,
				Horizon:   c.Horizon,
				Analyzers: analyzers,
				Recorder:  c.Recorder,
			})
			if err != nil {
				return err
			}
			for j, name := range c.names {
				datasets[name] = append(datasets[name], analyzers[j].DataSet())
			}
			e.Reset()
		}
		for _, name := range c.names {
			comparator := c.comparators[name]
			if comparator == nil {
				continue
			}
			if err := comparator(run, names, datasets[name]); err != nil {
				return fmt.Errorf("comparator %s: %w", name, err)
			}
		}
	}
	return nil
}
