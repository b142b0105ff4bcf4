package benchmarks

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/zeu5/graphenv/tsp"
	"github.com/zeu5/graphenv/types"
)

type tspOptions struct {
	nodes     int
	neighbors int
	nfp       bool
	workers   int
	seed      uint64
	recorder  recorderFlags
}

func TSP(ctx context.Context, opts tspOptions) error {
	g, err := tsp.NewCompletePlanarGraph(opts.nodes, opts.seed)
	if err != nil {
		return err
	}
	var root types.Node = tsp.NewState(g)
	if opts.nfp {
		root = tsp.NewNFPState(g, opts.neighbors)
	}
	if err := printBaselines(g); err != nil {
		return err
	}

	recorder, closeRecorder := opts.recorder.build()
	defer closeRecorder()

	set := newPolicySet(opts.seed)
	closed := types.NewMonitor()
	closed.Build().On(types.Reached(types.IsTerminal), "closed").MarkSuccess()
	c, err := newComparison(root, set, recorder, "ClosedTour", closed)
	if err != nil {
		return err
	}
	log.Info().Int("nodes", opts.nodes).Bool("nfp", opts.nfp).Msg("tsp comparison")
	if err := c.Run(ctx); err != nil {
		return err
	}
	saveQTable(set.greedy, "tsp")

	if opts.workers > 1 {
		return runParallel(ctx, "Random-Parallel", root, opts.workers, opts.seed, recorder, opts.recorder.recordTraces)
	}
	return nil
}

// printBaselines logs the cost of the heuristic tours, an episode return of -cost matches them
func printBaselines(g *tsp.Graph) error {
	greedy := tsp.GreedyTour(g)
	greedyCost, err := tsp.TourCost(g, greedy)
	if err != nil {
		return fmt.Errorf("greedy baseline: %w", err)
	}
	improved, improvedCost, err := tsp.TwoOpt(g, greedy, 1e-9)
	if err != nil {
		return fmt.Errorf("2-opt baseline: %w", err)
	}
	log.Info().Float64("cost", greedyCost).Ints("tour", greedy).Msg("nearest neighbour tour")
	log.Info().Float64("cost", improvedCost).Ints("tour", improved).Msg("2-opt tour")
	return nil
}

func TSPCommand() *cobra.Command {
	opts := tspOptions{}
	cmd := &cobra.Command{
		Use:   "tsp",
		Short: "Compare policies on random euclidean TSP instances",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signalContext()
			defer cancel()
			return TSP(ctx, opts)
		},
	}
	cmd.Flags().IntVar(&opts.nodes, "nodes", 8, "Number of cities")
	cmd.Flags().IntVar(&opts.neighbors, "neighbors", 0, "Nearest neighbours kept per node in the graph inputs, 0 for all")
	cmd.Flags().BoolVar(&opts.nfp, "nfp", false, "Observe the whole graph structure")
	cmd.Flags().IntVar(&opts.workers, "workers", 1, "Parallel rollout workers sharing the state graph")
	cmd.Flags().Uint64Var(&opts.seed, "seed", 1, "Seed of the graph and the policies")
	opts.recorder.register(cmd)
	return cmd
}
