package types

import "fmt"

type AgentConfig struct {
	Episodes    int
	Horizon     int
	Policy      Policy
	Environment *GraphEnv
}

// RL Agent configured with the corresponding
// policy and environment
type Agent struct {
	config *AgentConfig
	// collects the traces of the run
	// Only populated if the Run function is invoked
	traces      []*Trace
	policy      Policy
	environment *GraphEnv
}

// Instantiates a new Agent
func NewAgent(config *AgentConfig) *Agent {
	return &Agent{
		config:      config,
		traces:      make([]*Trace, config.Episodes),
		policy:      config.Policy,
		environment: config.Environment,
	}
}

func (a *Agent) Traces() []*Trace {
	return a.traces
}

// Run the agent for the specified number of episodes and horizon
func (a *Agent) Run() error {
	for i := 0; i < a.config.Episodes; i++ {
		trace, err := a.RunEpisode(i)
		if err != nil {
			return fmt.Errorf("episode %d: %w", i, err)
		}
		a.traces[i] = trace
	}
	return nil
}

// RunEpisode runs a single episode from the root and returns the resulting trace.
// The episode stops at a terminal state or when the horizon is reached.
func (a *Agent) RunEpisode(episode int) (*Trace, error) {
	obs, err := a.environment.Reset()
	if err != nil {
		return nil, err
	}
	state := a.environment.State()
	trace := NewTrace()

	for i := 0; i < a.config.Horizon; i++ {
		if a.environment.Done() {
			break
		}
		action, ok := a.policy.NextAction(i, state, obs)
		if !ok {
			break
		}
		result, err := a.environment.Step(action)
		if err != nil {
			return trace, err
		}
		nextState := a.environment.State()
		a.policy.Update(i, state, action, nextState, result.Reward)

		trace.Append(i, state, action, nextState, result.Reward)
		state = nextState
		obs = result.Observation
	}
	a.policy.UpdateIteration(episode, trace)

	return trace, nil
}
