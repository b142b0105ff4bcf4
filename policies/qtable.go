package policies

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"sort"
	"strconv"

	"github.com/zeu5/graphenv/util"
)

// QTable maps a state hash and an action index to a value
type QTable struct {
	table map[string]map[int]float64
}

func NewQTable() *QTable {
	return &QTable{
		table: make(map[string]map[int]float64),
	}
}

func (q *QTable) Get(state string, action int, def float64) float64 {
	if _, ok := q.table[state]; !ok {
		q.table[state] = make(map[int]float64)
	}
	if _, ok := q.table[state][action]; !ok {
		q.table[state][action] = def
	}
	return q.table[state][action]
}

func (q *QTable) Set(state string, action int, val float64) {
	if _, ok := q.table[state]; !ok {
		q.table[state] = make(map[int]float64)
	}
	q.table[state][action] = val
}

func (q *QTable) HasState(state string) bool {
	_, ok := q.table[state]
	return ok
}

// MaxAmong returns the best of the given actions, the lowest index on ties.
// Unseen actions take the value def.
func (q *QTable) MaxAmong(state string, actions []int, def float64) (int, float64) {
	maxAction := -1
	maxVal := math.Inf(-1)
	for _, a := range actions {
		val := q.Get(state, a, def)
		if val > maxVal || (val == maxVal && a < maxAction) {
			maxAction = a
			maxVal = val
		}
	}
	if maxAction < 0 {
		return -1, def
	}
	return maxAction, maxVal
}

func (q *QTable) Record(path string) error {
	out := make(map[string]map[string]float64, len(q.table))
	for s, actions := range q.table {
		out[s] = make(map[string]float64, len(actions))
		for a, v := range actions {
			out[s][strconv.Itoa(a)] = v
		}
	}
	bs, err := json.Marshal(out)
	if err != nil {
		return err
	}
	return util.WriteToFile(path, string(bs))
}

// Read replaces the table with the contents of a file written by Record
func (q *QTable) Read(path string) error {
	bs, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	in := make(map[string]map[string]float64)
	if err := json.Unmarshal(bs, &in); err != nil {
		return fmt.Errorf("failed to parse q table %s: %w", path, err)
	}
	table := make(map[string]map[int]float64, len(in))
	for s, actions := range in {
		table[s] = make(map[int]float64, len(actions))
		for a, v := range actions {
			action, err := strconv.Atoi(a)
			if err != nil {
				return fmt.Errorf("invalid action %q of state %s: %w", a, s, err)
			}
			table[s][action] = v
		}
	}
	q.table = table
	return nil
}

// Actions returns the actions with a value for the state in ascending order
func (q *QTable) Actions(state string) []int {
	actions := make([]int, 0, len(q.table[state]))
	for a := range q.table[state] {
		actions = append(actions, a)
	}
	sort.Ints(actions)
	return actions
}

// indices returns 0..n-1
func indices(n int) []int {
	actions := make([]int, n)
	for i := range actions {
		actions[i] = i
	}
	return actions
}
