package explorer

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/zeu5/graphenv/policies"
	"github.com/zeu5/graphenv/types"
)

const maxSummarySize = 5 * 1024 * 1024

// Explorer relates recorded episodes to the values of a learned q table
type Explorer struct {
	PolicyFile   string
	EpisodesFile string

	QTable   *policies.QTable
	Episodes []*types.EpisodeSummary
}

// Create an explorer of q tables and recorded episodes
func NewExplorer(policyFile string, episodesFile string) (*Explorer, error) {
	e := &Explorer{
		PolicyFile:   policyFile,
		EpisodesFile: episodesFile,
		QTable:       policies.NewQTable(),
	}

	if err := e.QTable.Read(policyFile); err != nil {
		return nil, err
	}
	episodes, err := readEpisodes(episodesFile)
	if err != nil {
		return nil, err
	}
	e.Episodes = episodes
	return e, nil
}

func readEpisodes(path string) ([]*types.EpisodeSummary, error) {
	episodes := make([]*types.EpisodeSummary, 0)
	file, err := os.Open(path)
	if err != nil {
		return episodes, fmt.Errorf("error reading file: %w", err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), maxSummarySize)
	for scanner.Scan() {
		bs := scanner.Bytes()
		if len(strings.TrimSpace(string(bs))) == 0 {
			continue
		}
		s := &types.EpisodeSummary{}
		if err := json.Unmarshal(bs, s); err != nil {
			return episodes, fmt.Errorf("error reading file contents: %w", err)
		}
		episodes = append(episodes, s)
	}
	if err := scanner.Err(); err != nil {
		return episodes, fmt.Errorf("failed to read episodes: %w", err)
	}
	return episodes, nil
}

// Step is a recorded transition with the values of the actions of its state
type Step struct {
	types.TraceStep
	Values map[int]float64
	// Greedy is true if the action taken had the highest value
	Greedy bool
}

func (e *Explorer) Steps(episode *types.EpisodeSummary) []Step {
	steps := make([]Step, len(episode.Trace))
	for i, ts := range episode.Trace {
		step := Step{TraceStep: ts, Values: make(map[int]float64)}
		actions := e.QTable.Actions(ts.State)
		for _, a := range actions {
			step.Values[a] = e.QTable.Get(ts.State, a, 0)
		}
		if len(actions) > 0 {
			_, best := e.QTable.MaxAmong(ts.State, actions, 0)
			val, ok := step.Values[ts.Action]
			step.Greedy = ok && val >= best
		}
		steps[i] = step
	}
	return steps
}

// Report writes the steps of every episode of the experiment, all experiments if empty
func (e *Explorer) Report(w io.Writer, experiment string) error {
	found := false
	for _, ep := range e.Episodes {
		if experiment != "" && ep.Experiment != experiment {
			continue
		}
		found = true
		fmt.Fprintf(w, "experiment %s run %d episode %d: %d steps, return %.3f, terminal %v\n",
			ep.Experiment, ep.Run, ep.Episode, ep.Steps, ep.Return, ep.Terminal)
		for _, s := range e.Steps(ep) {
			greedy := ""
			if s.Greedy {
				greedy = " greedy"
			}
			fmt.Fprintf(w, "  %s -[%d]-> %s reward %.3f values %v%s\n", s.State, s.Action, s.NextState, s.Reward, s.Values, greedy)
		}
	}
	if !found {
		return errors.New("no recorded episodes to report")
	}
	return nil
}

// Example invocation - ./graphenv explore results/hallway_qtable.json episodes.jsonl
func ExploreCommand() *cobra.Command {
	var experiment string
	cmd := &cobra.Command{
		Use:  "explore [qtable] [episodes]",
		Long: "Explore the choices of a q-table along recorded episodes",
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			exp, err := NewExplorer(args[0], args[1])
			if err != nil {
				return err
			}
			return exp.Report(cmd.OutOrStdout(), experiment)
		},
	}
	cmd.Flags().StringVar(&experiment, "experiment", "", "Only report the episodes of this experiment")
	return cmd
}
