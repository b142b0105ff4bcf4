package server

import (
	"errors"
	"fmt"

	"github.com/zeu5/graphenv/hallway"
	"github.com/zeu5/graphenv/tsp"
	"github.com/zeu5/graphenv/types"
)

var (
	ErrUnknownDomain = errors.New("unknown domain")
	ErrInvalidParams = errors.New("invalid domain parameters")
)

const (
	HallwayDomain = "hallway"
	TSPDomain     = "tsp"
	TSPNFPDomain  = "tsp-nfp"

	defaultHallwaySize     = 5
	defaultHallwayMaxSteps = 100
	defaultTSPNodes        = 10
	// the graph is complete, larger requests are refused
	maxTSPNodes = 1000
)

// DomainConfig selects a domain and its parameters.
// Zero values fall back to the defaults of the domain.
type DomainConfig struct {
	Domain string `json:"domain" yaml:"domain"`
	// hallway
	Size     int `json:"size,omitempty" yaml:"size"`
	MaxSteps int `json:"max_steps,omitempty" yaml:"max_steps"`
	// tsp
	Nodes     int    `json:"nodes,omitempty" yaml:"nodes"`
	Seed      uint64 `json:"seed,omitempty" yaml:"seed"`
	Neighbors int    `json:"neighbors,omitempty" yaml:"neighbors"`
}

// BuildDomain creates the root Node described by the config
func BuildDomain(c DomainConfig) (types.Node, error) {
	switch c.Domain {
	case HallwayDomain:
		size := c.Size
		if size == 0 {
			size = defaultHallwaySize
		}
		maxSteps := c.MaxSteps
		if maxSteps == 0 {
			maxSteps = defaultHallwayMaxSteps
		}
		if size < 1 || maxSteps < 1 {
			return nil, fmt.Errorf("%w: hallway size %d, max steps %d", ErrInvalidParams, size, maxSteps)
		}
		return hallway.NewHallway(size, maxSteps), nil
	case TSPDomain, TSPNFPDomain:
		nodes := c.Nodes
		if nodes == 0 {
			nodes = defaultTSPNodes
		}
		if nodes < 2 || nodes > maxTSPNodes {
			return nil, fmt.Errorf("%w: tsp nodes %d outside [2, %d]", ErrInvalidParams, nodes, maxTSPNodes)
		}
		if c.Neighbors < 0 {
			return nil, fmt.Errorf("%w: negative neighbors %d", ErrInvalidParams, c.Neighbors)
		}
		g, err := tsp.NewCompletePlanarGraph(nodes, c.Seed)
		if err != nil {
			return nil, fmt.Errorf("%w: %s", ErrInvalidParams, err)
		}
		if c.Domain == TSPNFPDomain {
			return tsp.NewNFPState(g, c.Neighbors), nil
		}
		return tsp.NewState(g), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDomain, c.Domain)
	}
}
