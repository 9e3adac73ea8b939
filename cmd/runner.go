package cmd

import (
	"context"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/inference-sim/traffic-sim/sim"
	"github.com/inference-sim/traffic-sim/sim/policy"
	"github.com/inference-sim/traffic-sim/sim/trace"
)

// runOptions controls a batch of headless episodes.
type runOptions struct {
	Episodes   int
	MaxSteps   int
	Policy     string
	TraceLevel trace.TraceLevel
	Workers    int
}

// episodeResult is what one worker hands back for one episode.
type episodeResult struct {
	metrics sim.EpisodeMetrics
	trace   *trace.EpisodeTrace
	err     error
}

// runEpisodes plays opts.Episodes independent episodes of cfg, spreading
// them over opts.Workers goroutines. Episode i always runs with the seed
// derived from cfg.Seed and i, so results do not depend on the worker count.
// The returned trace concatenates every episode's decisions in episode order.
func runEpisodes(ctx context.Context, cfg sim.Config, opts runOptions) (*sim.RunMetrics, *trace.EpisodeTrace, error) {
	if opts.Episodes < 1 {
		return nil, nil, fmt.Errorf("episodes must be at least 1, got %d", opts.Episodes)
	}
	if opts.MaxSteps < 1 {
		return nil, nil, fmt.Errorf("max steps must be at least 1, got %d", opts.MaxSteps)
	}
	if !policy.ValidPolicies[opts.Policy] {
		return nil, nil, fmt.Errorf("unknown policy %q", opts.Policy)
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}
	workers := max(1, min(opts.Workers, opts.Episodes))

	master := sim.NewPartitionedRNG(sim.NewSimulationKey(cfg.Seed))
	seeds := make([]int64, opts.Episodes)
	for i := range seeds {
		seeds[i] = master.DeriveSeed(sim.SubsystemEpisode(i))
	}

	results := make([]episodeResult, opts.Episodes)
	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				epCfg := cfg
				epCfg.Seed = seeds[i]
				results[i] = runEpisode(epCfg, opts)
				results[i].metrics.Episode = i + 1
			}
		}()
	}

feed:
	for i := 0; i < opts.Episodes; i++ {
		select {
		case jobs <- i:
		case <-ctx.Done():
			break feed
		}
	}
	close(jobs)
	wg.Wait()

	run := &sim.RunMetrics{Policy: opts.Policy, Seed: cfg.Seed}
	merged := trace.NewEpisodeTrace(trace.TraceConfig{Level: opts.TraceLevel})
	for i, r := range results {
		if r.err != nil {
			return nil, nil, fmt.Errorf("episode %d: %w", i+1, r.err)
		}
		if r.trace == nil {
			break // never dispatched: the run was interrupted
		}
		run.Add(r.metrics)
		merged.Spawns = append(merged.Spawns, r.trace.Spawns...)
		merged.Culls = append(merged.Culls, r.trace.Culls...)
		merged.Collisions = append(merged.Collisions, r.trace.Collisions...)
	}
	if err := ctx.Err(); err != nil {
		logrus.Warnf("run interrupted after %d of %d episodes", len(run.Episodes), opts.Episodes)
	}
	return run, merged, nil
}

// runEpisode drives one fresh environment with a fresh policy until it
// terminates or hits the step limit.
func runEpisode(cfg sim.Config, opts runOptions) episodeResult {
	tr := trace.NewEpisodeTrace(trace.TraceConfig{Level: opts.TraceLevel})
	env, err := sim.New(cfg, sim.WithTrace(tr))
	if err != nil {
		return episodeResult{err: err}
	}
	pol, err := policy.NewPolicy(opts.Policy, sim.NewPartitionedRNG(env.Key()).ForSubsystem(sim.SubsystemPolicy))
	if err != nil {
		return episodeResult{err: err}
	}

	obs := env.Observation()
	for step := 0; step < opts.MaxSteps; step++ {
		res, err := env.Step(pol.Act(obs))
		if err != nil {
			return episodeResult{err: err}
		}
		obs = res.Observation
		if res.Terminal {
			break
		}
	}
	m := env.Metrics()
	logrus.Debugf("episode seed=%d finished: ticks=%d score=%.1f crashed=%v", cfg.Seed, m.Ticks, m.Score, m.Crashed)
	return episodeResult{metrics: m, trace: tr}
}
