package types

import (
	"bufio"
	"encoding/json"
	"os"
	"path"
	"strconv"
)

// VisitGraph records the transitions taken between states
type VisitGraph struct {
	Nodes map[string]*VisitNode
}

func NewVisitGraph() *VisitGraph {
	return &VisitGraph{
		Nodes: make(map[string]*VisitNode),
	}
}

// Update records the transition and returns true if from was not seen before
func (v *VisitGraph) Update(from Vertex, action int, to Vertex) bool {
	fromKey := from.Hash()
	toKey := to.Hash()
	new := false
	if _, ok := v.Nodes[fromKey]; !ok {
		v.Nodes[fromKey] = NewVisitNode(fromKey)
		new = true
	}
	if _, ok := v.Nodes[toKey]; !ok {
		v.Nodes[toKey] = NewVisitNode(toKey)
	}
	actionKey := strconv.Itoa(action)
	v.Nodes[fromKey].Visits += 1
	v.Nodes[fromKey].AddNext(actionKey, toKey)
	v.Nodes[toKey].AddPrev(actionKey, fromKey)
	return new
}

func (v *VisitGraph) GetVisits() map[string]int {
	results := make(map[string]int)
	for k, n := range v.Nodes {
		results[k] = n.Visits
	}
	return results
}

func (v *VisitGraph) Record(filePath string) error {
	bs, err := json.Marshal(v)
	if err != nil {
		return err
	}
	file, err := os.Create(filePath)
	if err != nil {
		return err
	}
	defer file.Close()
	writer := bufio.NewWriter(file)
	if _, err := writer.Write(bs); err != nil {
		return err
	}
	return writer.Flush()
}

type VisitNode struct {
	Key    string
	Visits int
	// Next, Prev: action index to the set of states
	Next map[string]map[string]bool
	Prev map[string]map[string]bool
}

func NewVisitNode(key string) *VisitNode {
	return &VisitNode{
		Key:    key,
		Visits: 0,
		Next:   make(map[string]map[string]bool),
		Prev:   make(map[string]map[string]bool),
	}
}

func (n *VisitNode) AddPrev(a, prev string) {
	if _, ok := n.Prev[a]; !ok {
		n.Prev[a] = make(map[string]bool)
	}
	n.Prev[a][prev] = true
}

func (n *VisitNode) AddNext(a, next string) {
	if _, ok := n.Next[a]; !ok {
		n.Next[a] = make(map[string]bool)
	}
	n.Next[a][next] = true
}

// VisitGraphAnalyzer builds a VisitGraph out of all the traces
type VisitGraphAnalyzer struct {
	graph *VisitGraph
}

var _ Analyzer = &VisitGraphAnalyzer{}

func NewVisitGraphAnalyzer() Analyzer {
	return &VisitGraphAnalyzer{graph: NewVisitGraph()}
}

func (v *VisitGraphAnalyzer) Analyze(_ int, _ int, _ string, trace *Trace) {
	for i := 0; i < trace.Len(); i++ {
		s, a, ns, _, _ := trace.Get(i)
		v.graph.Update(s, a, ns)
	}
}

func (v *VisitGraphAnalyzer) DataSet() DataSet {
	return v.graph
}

func (v *VisitGraphAnalyzer) Reset() {
	v.graph = NewVisitGraph()
}

// VisitGraphComparator writes the visit graph of every experiment as json
func VisitGraphComparator(savePath string) Comparator {
	return func(run int, names []string, ds []DataSet) error {
		if err := os.MkdirAll(savePath, os.ModePerm); err != nil {
			return err
		}
		for i, name := range names {
			g := ds[i].(*VisitGraph)
			if err := g.Record(path.Join(savePath, strconv.Itoa(run)+"_"+name+"_visits.json")); err != nil {
				return err
			}
		}
		return nil
	}
}
