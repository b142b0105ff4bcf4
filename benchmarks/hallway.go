package benchmarks

import (
	"context"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/zeu5/graphenv/hallway"
	"github.com/zeu5/graphenv/types"
)

type hallwayOptions struct {
	size     int
	maxSteps int
	workers  int
	seed     uint64
	recorder recorderFlags
}

func Hallway(ctx context.Context, opts hallwayOptions) error {
	root := hallway.NewHallway(opts.size, opts.maxSteps)
	recorder, closeRecorder := opts.recorder.build()
	defer closeRecorder()

	set := newPolicySet(opts.seed)
	c, err := newComparison(root, set, recorder, "MiddleThenGoal", middleThenGoal(opts.size))
	if err != nil {
		return err
	}
	log.Info().Int("size", opts.size).Int("max_steps", opts.maxSteps).Msg("hallway comparison")
	if err := c.Run(ctx); err != nil {
		return err
	}
	saveQTable(set.greedy, "hallway")

	if opts.workers > 1 {
		return runParallel(ctx, "Random-Parallel", root, opts.workers, opts.seed, recorder, opts.recorder.recordTraces)
	}
	return nil
}

// middleThenGoal is satisfied by episodes passing the middle of the hallway before reaching its end
func middleThenGoal(size int) *types.Monitor {
	at := func(pos int) func(types.Vertex) bool {
		return func(v types.Vertex) bool {
			h, ok := v.(*hallway.Hallway)
			return ok && h.Position() == pos
		}
	}
	m := types.NewMonitor()
	m.Build().
		On(types.Reached(at(size/2)), "middle").
		On(types.Reached(at(size)), "goal").
		MarkSuccess()
	return m
}

func HallwayCommand() *cobra.Command {
	opts := hallwayOptions{}
	cmd := &cobra.Command{
		Use:   "hallway",
		Short: "Compare policies on the hallway domain",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signalContext()
			defer cancel()
			return Hallway(ctx, opts)
		},
	}
	cmd.Flags().IntVar(&opts.size, "size", 5, "Length of the hallway")
	cmd.Flags().IntVar(&opts.maxSteps, "max-steps", 20, "Steps before the episode ends, 0 for no limit")
	cmd.Flags().IntVar(&opts.workers, "workers", 1, "Parallel rollout workers sharing the state graph")
	cmd.Flags().Uint64Var(&opts.seed, "seed", 1, "Seed of the policies")
	opts.recorder.register(cmd)
	return cmd
}
