package types

import "fmt"

// Node is a Vertex with a declared upper bound on its branching factor
type Node interface {
	Vertex
	MaxNumActions() int
}

// NodeBase carries the declared bound of a Node
type NodeBase struct {
	VertexBase
	maxNumActions int
}

func NewNodeBase(maxNumActions int) NodeBase {
	return NodeBase{maxNumActions: maxNumActions}
}

func (n *NodeBase) MaxNumActions() int {
	return n.maxNumActions
}

// Successors returns the children of v checked against the bound max.
// Exceeding the bound is a configuration error of the domain.
func Successors(v Vertex, max int) ([]Vertex, error) {
	children := v.Children()
	if len(children) > max {
		return nil, fmt.Errorf("%w: state %s has %d successors, max %d", ErrTooManyActions, v.Hash(), len(children), max)
	}
	return children, nil
}
