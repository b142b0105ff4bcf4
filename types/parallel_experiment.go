package types

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/gosuri/uilive"
	"github.com/rs/zerolog/log"
)

// PolicyConstructor creates the policy of a rollout worker
type PolicyConstructor func(worker int) Policy

// ParallelExperiment runs episodes on several workers. Every worker owns
// its environment and policy while all of them walk the same root Node,
// sharing the memoized successors.
type ParallelExperiment struct {
	Name    string
	root    Node
	workers int
	policy  PolicyConstructor
	envOpts []EnvOption

	liveOutput time.Duration
}

func NewParallelExperiment(name string, root Node, workers int, policy PolicyConstructor, opts ...EnvOption) *ParallelExperiment {
	if workers < 1 {
		workers = 1
	}
	return &ParallelExperiment{
		Name:    name,
		root:    root,
		workers: workers,
		policy:  policy,
		envOpts: opts,
	}
}

// WithLiveOutput prints the status of the workers to the terminal at the given frequency
func (p *ParallelExperiment) WithLiveOutput(frequency time.Duration) *ParallelExperiment {
	p.liveOutput = frequency
	return p
}

type workerResult struct {
	worker  int
	episode int
	trace   *Trace
	err     error
}

// Run distributes rConfig.Episodes episodes over the workers. Analyzers and
// the recorder are fed from a single goroutine in completion order.
// The first episode error cancels the remaining work and is returned.
func (p *ParallelExperiment) Run(rConfig *RunConfig) error {
	parent := rConfig.Context
	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	tasks := make(chan int, rConfig.Episodes)
	for i := 0; i < rConfig.Episodes; i++ {
		tasks <- i
	}
	close(tasks)

	outputs := make([]*ParallelOutput, p.workers)
	agents := make([]*Agent, p.workers)
	for w := 0; w < p.workers; w++ {
		env, err := NewGraphEnv(p.root, p.envOpts...)
		if err != nil {
			return err
		}
		agents[w] = NewAgent(&AgentConfig{
			Episodes:    0,
			Horizon:     rConfig.Horizon,
			Policy:      p.policy(w),
			Environment: env,
		})
		outputs[w] = NewParallelOutput()
	}

	if p.liveOutput > 0 {
		printer := NewTerminalPrinter(ctx, outputs, p.liveOutput)
		printer.Start()
		defer printer.Stop()
	}

	results := make(chan workerResult)
	var wg sync.WaitGroup
	for w := 0; w < p.workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			output := outputs[w]
			completed := 0
			for episode := range tasks {
				select {
				case <-ctx.Done():
					return
				default:
				}
				trace, err := agents[w].RunEpisode(episode)
				completed++
				if err == nil {
					output.TrySet(fmt.Sprintf("%s worker %d: %d episodes, last return %.3f", p.Name, w, completed, trace.Return()))
				}
				select {
				case results <- workerResult{worker: w, episode: episode, trace: trace, err: err}:
				case <-ctx.Done():
					return
				}
			}
		}(w)
	}
	go func() {
		wg.Wait()
		close(results)
	}()

	var firstErr error
	done := 0
	for r := range results {
		if firstErr != nil {
			continue
		}
		if r.err != nil {
			firstErr = fmt.Errorf("experiment %s, worker %d, episode %d: %w", p.Name, r.worker, r.episode, r.err)
			cancel()
			continue
		}
		for _, a := range rConfig.Analyzers {
			a.Analyze(rConfig.Run, r.episode, p.Name, r.trace)
		}
		if rConfig.Recorder != nil {
			summary := NewEpisodeSummary(p.Name, rConfig.Run, r.episode, r.trace, rConfig.RecordTraces)
			if err := rConfig.Recorder.Record(ctx, summary); err != nil {
				firstErr = fmt.Errorf("recording episode %d: %w", r.episode, err)
				cancel()
				continue
			}
		}
		done++
		if rConfig.Progress != nil {
			rConfig.Progress(done)
		}
	}
	if firstErr == nil && parent.Err() != nil {
		firstErr = parent.Err()
	}
	log.Info().Str("experiment", p.Name).Int("workers", p.workers).Int("episodes", done).Msg("parallel experiment finished")
	return firstErr
}

// TERMINAL PRINTER

type TerminalPrinter struct {
	parallelOutputs []*ParallelOutput
	ctx             context.Context
	printerCtx      context.Context
	printerCancel   context.CancelFunc
	frequency       time.Duration

	writer  *uilive.Writer
	writers []io.Writer
}

func NewTerminalPrinter(ctx context.Context, parallelOutputs []*ParallelOutput, frequency time.Duration) *TerminalPrinter {
	printerCtx, cancel := context.WithCancel(ctx)
	size := len(parallelOutputs)
	writers := make([]io.Writer, size)
	writer := uilive.New()
	for i := 0; i < size-1; i++ {
		writers[i] = writer.Newline()
	}

	return &TerminalPrinter{
		parallelOutputs: parallelOutputs,
		ctx:             ctx,
		printerCtx:      printerCtx,
		printerCancel:   cancel,
		frequency:       frequency,

		writer:  writer,
		writers: writers,
	}
}

func (p *TerminalPrinter) Start() {
	p.writer.Start()
	go func() {
		for {
			select {
			case <-p.printerCtx.Done():
				p.print()
				p.writer.Stop()
				return
			case <-time.After(p.frequency):
				p.print()
			}
		}
	}()
}

func (p *TerminalPrinter) Stop() {
	p.printerCancel()
}

func (p *TerminalPrinter) print() {
	for i, output := range p.parallelOutputs {
		s := output.Get()
		if s == "" {
			continue
		}
		if i == 0 {
			fmt.Fprint(p.writer, s+"\n")
		} else {
			fmt.Fprint(p.writers[i-1], s+"\n")
		}
	}
	p.writer.Flush()
}

// PARALLEL OUTPUT

// used to update and print worker outputs
type ParallelOutput struct {
	mu        sync.Mutex
	printable string
}

func NewParallelOutput() *ParallelOutput {
	return &ParallelOutput{}
}

// Try to set the output string (non-blocking)
func (p *ParallelOutput) TrySet(s string) bool {
	if p.mu.TryLock() {
		defer p.mu.Unlock()
		p.printable = s
		return true
	}
	return false
}

// Get the output string (blocking)
func (p *ParallelOutput) Get() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.printable
}
