package types

import (
	"fmt"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// GraphObservation is the batched observation of a state and its successors.
// Slot 0 holds the current state, slot i+1 the successor reached by action i.
type GraphObservation struct {
	ActionMask         []bool      `json:"action_mask"`
	ActionObservations Observation `json:"action_observations"`
}

// Available returns the action indices backed by a real successor
func (o *GraphObservation) Available() []int {
	actions := make([]int, 0, len(o.ActionMask))
	for i := 1; i < len(o.ActionMask); i++ {
		if o.ActionMask[i] {
			actions = append(actions, i-1)
		}
	}
	return actions
}

// StepResult is the outcome of a single transition, describing the new state
type StepResult struct {
	Observation *GraphObservation
	Reward      float64
	Terminal    bool
	Info        map[string]interface{}
}

type EnvOption func(*GraphEnv)

func WithLogger(logger zerolog.Logger) EnvOption {
	return func(e *GraphEnv) {
		e.logger = logger
	}
}

// WithValidation toggles checking every observation against the observation space
func WithValidation(validate bool) EnvOption {
	return func(e *GraphEnv) {
		e.validate = validate
	}
}

// GraphEnv exposes a Node as a step based environment with a fixed
// number of action slots. The current vertex is the only mutable state.
// Not safe for concurrent use; vertices can be shared between environments.
type GraphEnv struct {
	state         Vertex
	space         ObservationSpace
	maxNumActions int
	done          bool
	validate      bool
	logger        zerolog.Logger
}

func NewGraphEnv(state Node, opts ...EnvOption) (*GraphEnv, error) {
	if state == nil {
		return nil, ErrNoState
	}
	if state.MaxNumActions() < 1 {
		return nil, fmt.Errorf("max actions must be positive, got %d", state.MaxNumActions())
	}
	e := &GraphEnv{
		state:         state,
		space:         state.ObservationSpace(),
		maxNumActions: state.MaxNumActions(),
		done:          state.Terminal(),
		validate:      true,
		logger:        log.With().Str("component", "graphenv").Logger(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

func (e *GraphEnv) State() Vertex {
	return e.state
}

func (e *GraphEnv) MaxNumActions() int {
	return e.maxNumActions
}

// Done is true once the current state is terminal
func (e *GraphEnv) Done() bool {
	return e.done
}

func (e *GraphEnv) ActionSpace() Discrete {
	return Discrete{N: e.maxNumActions}
}

func (e *GraphEnv) ObservationSpace() *GraphObservationSpace {
	numSlots := 1 + e.maxNumActions
	obsSpace := make(ObservationSpace, len(e.space))
	for k, box := range e.space {
		obsSpace[k] = box.Repeat(numSlots)
	}
	return &GraphObservationSpace{
		ActionMask:         NewBox(0, 1, Bool, numSlots),
		ActionObservations: obsSpace,
	}
}

// Reset moves to the root of the domain and returns its observation
func (e *GraphEnv) Reset() (*GraphObservation, error) {
	root := e.state.Root()
	obs, err := e.observe(root)
	if err != nil {
		return nil, err
	}
	e.state = root
	e.done = root.Terminal()
	return obs, nil
}

// Step moves to the successor at index action. On error the
// current state is left unchanged.
func (e *GraphEnv) Step(action int) (*StepResult, error) {
	if e.done {
		return nil, fmt.Errorf("%w: state %s", ErrEpisodeDone, e.state.Hash())
	}
	if !e.ActionSpace().Contains(action) {
		return nil, fmt.Errorf("%w: action %d, max actions %d", ErrActionOutOfRange, action, e.maxNumActions)
	}
	children, err := Successors(e.state, e.maxNumActions)
	if err != nil {
		return nil, err
	}
	if action >= len(children) {
		return nil, fmt.Errorf("%w: action %d, state %s has %d successors", ErrActionUnavailable, action, e.state.Hash(), len(children))
	}

	next := children[action]
	obs, err := e.observe(next)
	if err != nil {
		return nil, err
	}
	e.state = next
	e.done = next.Terminal()

	result := &StepResult{
		Observation: obs,
		Reward:      next.Reward(),
		Terminal:    e.done,
		Info:        next.Info(),
	}
	e.logger.Debug().
		Int("action", action).
		Str("state", next.Hash()).
		Float64("reward", result.Reward).
		Bool("terminal", result.Terminal).
		Interface("info", result.Info).
		Int("successors", len(next.Children())).
		Msg("step")
	return result, nil
}

// MakeObservation returns the batched observation of the current state
func (e *GraphEnv) MakeObservation() (*GraphObservation, error) {
	return e.observe(e.state)
}

// observe batches the observation of v with those of its successors.
// Unused slots replicate the observation of v itself.
func (e *GraphEnv) observe(v Vertex) (*GraphObservation, error) {
	children, err := Successors(v, e.maxNumActions)
	if err != nil {
		return nil, err
	}
	numSlots := 1 + e.maxNumActions
	mask := make([]bool, numSlots)
	slots := make([]Observation, numSlots)

	own := v.Observation()
	if err := e.check(v, own); err != nil {
		return nil, err
	}
	for i := range slots {
		slots[i] = own
	}
	for i, child := range children {
		childObs := child.Observation()
		if err := e.check(child, childObs); err != nil {
			return nil, err
		}
		slots[i+1] = childObs
		mask[i+1] = true
	}

	flat := make(Observation, len(own))
	for _, key := range own.Keys() {
		arrays := make([]*Array, numSlots)
		for i, o := range slots {
			a, ok := o[key]
			if !ok {
				return nil, fmt.Errorf("%w: slot %d is missing channel %q", ErrSchemaMismatch, i, key)
			}
			arrays[i] = a
		}
		joined, err := Concatenate(arrays...)
		if err != nil {
			return nil, fmt.Errorf("channel %q: %w", key, err)
		}
		flat[key] = joined
	}

	return &GraphObservation{
		ActionMask:         mask,
		ActionObservations: flat,
	}, nil
}

func (e *GraphEnv) check(v Vertex, o Observation) error {
	if !e.validate {
		return nil
	}
	if err := e.space.Contains(o); err != nil {
		return fmt.Errorf("state %s: %w", v.Hash(), err)
	}
	return nil
}
