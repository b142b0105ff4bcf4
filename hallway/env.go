package hallway

import (
	"fmt"
	"math"

	"github.com/zeu5/graphenv/types"
)

const (
	// MaxNumActions is the branching bound of the hallway: left and right
	MaxNumActions = 2
	GoalReward    = 1.0
	StepReward    = -0.1
)

// Hallway is a position in a 1-D corridor of cells 0..size.
// The agent starts at 0 and the episode ends on reaching size
// or after maxSteps steps. maxSteps <= 0 disables the step limit.
type Hallway struct {
	types.NodeBase
	size     int
	maxSteps int
	position int
	steps    int
}

var _ types.Node = &Hallway{}

func NewHallway(size, maxSteps int) *Hallway {
	return newHallway(size, maxSteps, 0, 0)
}

func newHallway(size, maxSteps, position, steps int) *Hallway {
	return &Hallway{
		NodeBase: types.NewNodeBase(MaxNumActions),
		size:     size,
		maxSteps: maxSteps,
		position: position,
		steps:    steps,
	}
}

// At returns the state of the same hallway at the given position and step count
func (h *Hallway) At(position, steps int) *Hallway {
	return newHallway(h.size, h.maxSteps, position, steps)
}

func (h *Hallway) Position() int {
	return h.position
}

func (h *Hallway) Steps() int {
	return h.steps
}

func (h *Hallway) Root() types.Vertex {
	return h.At(0, 0)
}

func (h *Hallway) stepsLeft() bool {
	return h.maxSteps <= 0 || h.steps < h.maxSteps
}

// Children moves left (except at 0) then right
func (h *Hallway) Children() []types.Vertex {
	return h.Successors(func() []types.Vertex {
		children := make([]types.Vertex, 0, MaxNumActions)
		if h.position < h.size && h.stepsLeft() {
			if h.position > 0 {
				children = append(children, h.At(h.position-1, h.steps+1))
			}
			children = append(children, h.At(h.position+1, h.steps+1))
		}
		return children
	})
}

func (h *Hallway) Terminal() bool {
	return types.IsTerminal(h)
}

// Reward is 0 at the root, the goal reward at the end of the hallway
// and the step reward everywhere else
func (h *Hallway) Reward() float64 {
	if h.steps == 0 {
		return 0
	}
	if h.position >= h.size {
		return GoalReward
	}
	return StepReward
}

func (h *Hallway) ObservationSpace() types.ObservationSpace {
	maxSteps := math.Inf(1)
	if h.maxSteps > 0 {
		maxSteps = float64(h.maxSteps)
	}
	return types.ObservationSpace{
		"position": types.NewBox(0, float64(h.size), types.Int, 1),
		"steps":    types.NewBox(0, maxSteps, types.Int, 1),
	}
}

func (h *Hallway) NullObservation() types.Observation {
	return types.Observation{
		"position": types.Vector(0),
		"steps":    types.Vector(0),
	}
}

func (h *Hallway) Observation() types.Observation {
	return h.Observe(func() types.Observation {
		return types.Observation{
			"position": types.Vector(float64(h.position)),
			"steps":    types.Vector(float64(h.steps)),
		}
	})
}

func (h *Hallway) Info() map[string]interface{} {
	info := types.BaseInfo()
	info["position"] = h.position
	info["episode_steps"] = h.steps
	return info
}

func (h *Hallway) Hash() string {
	return fmt.Sprintf("(%d, %d)", h.position, h.steps)
}
