package types

import (
	"fmt"
	"math"
	"sort"
)

type DType string

var (
	Int   DType = "int"
	Float DType = "float"
	Bool  DType = "bool"
)

// Box describes a bounded numeric channel of a fixed shape
type Box struct {
	Low   float64 `json:"low"`
	High  float64 `json:"high"`
	Shape []int   `json:"shape"`
	DType DType   `json:"dtype"`
}

func NewBox(low, high float64, dtype DType, shape ...int) *Box {
	return &Box{
		Low:   low,
		High:  high,
		Shape: append([]int{}, shape...),
		DType: dtype,
	}
}

// Contains checks shape, bounds and dtype of the array
func (b *Box) Contains(a *Array) error {
	if a == nil {
		return fmt.Errorf("missing array")
	}
	if !sameShape(a.Shape, b.Shape) {
		return fmt.Errorf("shape %v, expected %v", a.Shape, b.Shape)
	}
	if len(a.Data) != numElements(b.Shape) {
		return fmt.Errorf("%d elements, expected %d", len(a.Data), numElements(b.Shape))
	}
	for i, v := range a.Data {
		if math.IsNaN(v) || v < b.Low || v > b.High {
			return fmt.Errorf("element %d = %v outside [%v, %v]", i, v, b.Low, b.High)
		}
		switch b.DType {
		case Int:
			if v != math.Trunc(v) {
				return fmt.Errorf("element %d = %v is not integral", i, v)
			}
		case Bool:
			if v != 0 && v != 1 {
				return fmt.Errorf("element %d = %v is not boolean", i, v)
			}
		}
	}
	return nil
}

// Repeat returns the box of k arrays of this box concatenated along axis 0
func (b *Box) Repeat(k int) *Box {
	shape := b.Shape
	if len(shape) == 0 {
		shape = []int{1}
	}
	repeated := append([]int{k * shape[0]}, shape[1:]...)
	return NewBox(b.Low, b.High, b.DType, repeated...)
}

// ObservationSpace is the schema of an Observation
type ObservationSpace map[string]*Box

func (s ObservationSpace) Keys() []string {
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Contains returns an ErrSchemaMismatch error naming the first offending channel
func (s ObservationSpace) Contains(o Observation) error {
	if len(o) != len(s) {
		return fmt.Errorf("%w: observation has channels %v, space declares %v", ErrSchemaMismatch, o.Keys(), s.Keys())
	}
	for _, k := range s.Keys() {
		a, ok := o[k]
		if !ok {
			return fmt.Errorf("%w: missing channel %q", ErrSchemaMismatch, k)
		}
		if err := s[k].Contains(a); err != nil {
			return fmt.Errorf("%w: channel %q: %s", ErrSchemaMismatch, k, err)
		}
	}
	return nil
}

// Discrete is an action space of N actions indexed 0..N-1
type Discrete struct {
	N int `json:"n"`
}

func (d Discrete) Contains(action int) bool {
	return action >= 0 && action < d.N
}

// GraphObservationSpace is the schema of a GraphObservation.
// The mask holds 1 + max actions entries.
type GraphObservationSpace struct {
	ActionMask         *Box             `json:"action_mask"`
	ActionObservations ObservationSpace `json:"action_observations"`
}

func (g *GraphObservationSpace) Contains(o *GraphObservation) error {
	if o == nil {
		return fmt.Errorf("%w: nil observation", ErrSchemaMismatch)
	}
	if len(o.ActionMask) != g.ActionMask.Shape[0] {
		return fmt.Errorf("%w: action mask of length %d, expected %d", ErrSchemaMismatch, len(o.ActionMask), g.ActionMask.Shape[0])
	}
	return g.ActionObservations.Contains(o.ActionObservations)
}
