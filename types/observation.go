package types

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/floats"
)

// Array is a dense row-major numeric array.
// A nil or empty Shape denotes a scalar holding a single value.
type Array struct {
	Shape []int     `json:"shape"`
	Data  []float64 `json:"data"`
}

// NewArray creates a zero filled array of the given shape
func NewArray(shape ...int) *Array {
	return &Array{
		Shape: append([]int{}, shape...),
		Data:  make([]float64, numElements(shape)),
	}
}

// Scalar creates a rank 0 array
func Scalar(v float64) *Array {
	return &Array{Shape: []int{}, Data: []float64{v}}
}

// Vector creates a rank 1 array holding a copy of vals
func Vector(vals ...float64) *Array {
	return &Array{
		Shape: []int{len(vals)},
		Data:  append([]float64{}, vals...),
	}
}

func numElements(shape []int) int {
	n := 1
	for _, d := range shape {
		n *= d
	}
	return n
}

func (a *Array) Clone() *Array {
	return &Array{
		Shape: append([]int{}, a.Shape...),
		Data:  append([]float64{}, a.Data...),
	}
}

// Equal compares shape and values exactly
func (a *Array) Equal(other *Array) bool {
	if a == nil || other == nil {
		return a == other
	}
	if !sameShape(a.Shape, other.Shape) {
		return false
	}
	return floats.Equal(a.Data, other.Data)
}

func (a *Array) String() string {
	return fmt.Sprintf("%v%v", a.Shape, a.Data)
}

func sameShape(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// leading returns the shape with an explicit leading axis.
// Scalars are promoted to shape [1].
func (a *Array) leading() []int {
	if len(a.Shape) == 0 {
		return []int{1}
	}
	return a.Shape
}

// Concatenate joins arrays along axis 0.
// All arrays must agree on every axis except the first.
func Concatenate(arrays ...*Array) (*Array, error) {
	if len(arrays) == 0 {
		return nil, fmt.Errorf("%w: nothing to concatenate", ErrSchemaMismatch)
	}
	first := arrays[0].leading()
	rest := first[1:]
	rows := 0
	size := 0
	for i, a := range arrays {
		shape := a.leading()
		if !sameShape(shape[1:], rest) {
			return nil, fmt.Errorf("%w: array %d has shape %v, expected trailing axes %v", ErrSchemaMismatch, i, a.Shape, rest)
		}
		rows += shape[0]
		size += len(a.Data)
	}

	data := make([]float64, 0, size)
	for _, a := range arrays {
		data = append(data, a.Data...)
	}
	shape := append([]int{rows}, rest...)
	return &Array{Shape: shape, Data: data}, nil
}

// Observation maps a channel name to its array
type Observation map[string]*Array

// Keys returns the channel names in sorted order
func (o Observation) Keys() []string {
	keys := make([]string, 0, len(o))
	for k := range o {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (o Observation) Equal(other Observation) bool {
	if len(o) != len(other) {
		return false
	}
	for k, a := range o {
		b, ok := other[k]
		if !ok || !a.Equal(b) {
			return false
		}
	}
	return true
}

func (o Observation) Clone() Observation {
	c := make(Observation, len(o))
	for k, a := range o {
		c[k] = a.Clone()
	}
	return c
}
