package main

import (
	"math"
	"sync"

	"github.com/pthm-cable/icing/config"
	"github.com/pthm-cable/icing/sim"
)

// FitnessEvaluator runs headless simulations and scores how far first ice
// lands from the target droplet count.
type FitnessEvaluator struct {
	params     *ParamVector
	seeds      []int64
	target     float64
	baseConfig *config.Config

	mu   sync.Mutex
	last Evaluation
}

// Evaluation summarises one parameter vector across all seeds.
type Evaluation struct {
	Loss           float64
	MeanDropsAtIce float64 // over seeds that formed ice
	IceRate        float64 // fraction of seeds that formed ice
}

// NewFitnessEvaluator creates a new evaluator.
func NewFitnessEvaluator(params *ParamVector, seeds []int64, target int, baseCfg *config.Config) *FitnessEvaluator {
	return &FitnessEvaluator{
		params:     params,
		seeds:      seeds,
		target:     float64(target),
		baseConfig: baseCfg,
	}
}

// Last returns the most recent evaluation.
func (fe *FitnessEvaluator) Last() Evaluation {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.last
}

// Evaluate computes the loss for raw parameter values x (lower = better).
func (fe *FitnessEvaluator) Evaluate(x []float64) float64 {
	results := make([]sim.Result, len(fe.seeds))
	errs := make([]error, len(fe.seeds))

	// Seeds run in parallel, each with a single-threaded simulation.
	var wg sync.WaitGroup
	for i, seed := range fe.seeds {
		wg.Add(1)
		go func(idx int, s int64) {
			defer wg.Done()
			results[idx], errs[idx] = fe.runSimulation(x, s)
		}(i, seed)
	}
	wg.Wait()

	var ev Evaluation
	var iced int
	var total float64
	for i, r := range results {
		if errs[i] != nil {
			ev.Loss = math.Inf(1)
			fe.setLast(ev)
			return ev.Loss
		}
		total += lossTerm(dropsToIce(r), fe.target)
		if r.IceFormed {
			iced++
			ev.MeanDropsAtIce += float64(r.DropletsAtIce)
		}
	}
	n := float64(len(fe.seeds))
	ev.Loss = total / n
	ev.IceRate = float64(iced) / n
	if iced > 0 {
		ev.MeanDropsAtIce /= float64(iced)
	}
	fe.setLast(ev)
	return ev.Loss
}

func (fe *FitnessEvaluator) setLast(ev Evaluation) {
	fe.mu.Lock()
	fe.last = ev
	fe.mu.Unlock()
}

func (fe *FitnessEvaluator) runSimulation(x []float64, seed int64) (sim.Result, error) {
	cfg := fe.baseConfig.Clone()
	fe.params.ApplyToConfig(cfg, x)
	cfg.Spray.Seed = seed
	cfg.Run.Workers = 1

	s, err := sim.New(cfg, sim.Options{})
	if err != nil {
		return sim.Result{}, err
	}
	defer s.Close()
	return s.Run(), nil
}

// dropsToIce is the droplet count at first ice; runs without ice score
// twice their budget so they rank behind every run that froze.
func dropsToIce(r sim.Result) float64 {
	if r.IceFormed {
		return float64(r.DropletsAtIce)
	}
	return 2 * float64(max(r.Droplets, 1))
}

func lossTerm(drops, target float64) float64 {
	d := math.Log(math.Max(drops, 1)) - math.Log(target)
	return d * d
}
