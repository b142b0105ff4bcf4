package types

import (
	"fmt"
	"os"
	"path"
	"strconv"

	"github.com/rs/zerolog/log"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
)

// RewardAnalyzer collects the return of every episode
type RewardAnalyzer struct {
	returns []float64
}

var _ Analyzer = &RewardAnalyzer{}

func NewRewardAnalyzer() Analyzer {
	return &RewardAnalyzer{returns: make([]float64, 0)}
}

func (r *RewardAnalyzer) Analyze(_ int, _ int, _ string, trace *Trace) {
	r.returns = append(r.returns, trace.Return())
}

// DataSet is the slice of episode returns
func (r *RewardAnalyzer) DataSet() DataSet {
	return append([]float64{}, r.returns...)
}

func (r *RewardAnalyzer) Reset() {
	r.returns = make([]float64, 0)
}

// RewardStats summarizes episode returns
type RewardStats struct {
	Mean   float64
	StdDev float64
	Best   float64
}

func NewRewardStats(returns []float64) RewardStats {
	if len(returns) == 0 {
		return RewardStats{}
	}
	best := returns[0]
	for _, r := range returns[1:] {
		if r > best {
			best = r
		}
	}
	mean, std := stat.MeanStdDev(returns, nil)
	return RewardStats{Mean: mean, StdDev: std, Best: best}
}

// CoverageAnalyzer counts the unique states visited after every episode
type CoverageAnalyzer struct {
	uniqueStates    map[string]bool
	numUniqueStates []int
}

var _ Analyzer = &CoverageAnalyzer{}

func NewCoverageAnalyzer() Analyzer {
	return &CoverageAnalyzer{
		uniqueStates:    make(map[string]bool),
		numUniqueStates: make([]int, 0),
	}
}

func (c *CoverageAnalyzer) Analyze(_ int, _ int, _ string, trace *Trace) {
	for j := 0; j < trace.Len(); j++ {
		s, _, ns, _, _ := trace.Get(j)
		c.uniqueStates[s.Hash()] = true
		c.uniqueStates[ns.Hash()] = true
	}
	c.numUniqueStates = append(c.numUniqueStates, len(c.uniqueStates))
}

// DataSet is the number of unique states seen after each episode
func (c *CoverageAnalyzer) DataSet() DataSet {
	return append([]int{}, c.numUniqueStates...)
}

func (c *CoverageAnalyzer) Reset() {
	c.uniqueStates = make(map[string]bool)
	c.numUniqueStates = make([]int, 0)
}

// RewardPrintComparator logs the statistics of the returns of each experiment
func RewardPrintComparator() Comparator {
	return func(run int, names []string, ds []DataSet) error {
		for i, name := range names {
			stats := NewRewardStats(ds[i].([]float64))
			log.Info().
				Int("run", run).
				Str("experiment", name).
				Float64("mean", stats.Mean).
				Float64("std", stats.StdDev).
				Float64("best", stats.Best).
				Msg("episode returns")
		}
		return nil
	}
}

// RewardPlotComparator plots the return of every episode for each experiment
func RewardPlotComparator(plotPath string) Comparator {
	return func(run int, names []string, ds []DataSet) error {
		series := make([][]float64, len(names))
		for i := range names {
			series[i] = ds[i].([]float64)
		}
		return savePlot(plotPath, strconv.Itoa(run)+"_rewards.png", "Episode", "Return", names, series)
	}
}

// CoveragePlotComparator plots the unique states covered over the episodes
func CoveragePlotComparator(plotPath string) Comparator {
	return func(run int, names []string, ds []DataSet) error {
		series := make([][]float64, len(names))
		for i, name := range names {
			counts := ds[i].([]int)
			series[i] = make([]float64, len(counts))
			for j, v := range counts {
				series[i][j] = float64(v)
			}
			if len(counts) > 0 {
				log.Info().Int("run", run).Str("experiment", name).Int("states", counts[len(counts)-1]).Msg("unique states covered")
			}
		}
		return savePlot(plotPath, strconv.Itoa(run)+"_coverage.png", "Episode", "States covered", names, series)
	}
}

func savePlot(plotPath, file, xLabel, yLabel string, names []string, series [][]float64) error {
	if err := os.MkdirAll(plotPath, os.ModePerm); err != nil {
		return err
	}
	p := plot.New()
	p.Title.Text = "Comparison"
	p.X.Label.Text = xLabel
	p.Y.Label.Text = yLabel
	for i, values := range series {
		points := make(plotter.XYs, len(values))
		for j, v := range values {
			points[j] = plotter.XY{
				X: float64(j),
				Y: v,
			}
		}
		line, err := plotter.NewLine(points)
		if err != nil {
			return fmt.Errorf("plotting %s: %w", names[i], err)
		}
		line.Color = plotutil.Color(i)
		p.Add(line)
		p.Legend.Add(names[i], line)
	}
	return p.Save(8*vg.Inch, 8*vg.Inch, path.Join(plotPath, file))
}
