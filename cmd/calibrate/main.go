// Package main calibrates cooling_per_drop so that first ice forms after a
// target number of droplets.
package main

import (
	"flag"
	"fmt"
	"log"
	"math"
	"os"
	"path/filepath"
	"time"

	"gonum.org/v1/gonum/optimize"

	"github.com/pthm-cable/icing/config"
	"github.com/pthm-cable/icing/telemetry"
)

// evalRecord is one row of calibrate_log.csv.
type evalRecord struct {
	Eval           int     `csv:"eval"`
	Loss           float64 `csv:"loss"`
	CoolingPerDrop float64 `csv:"cooling_per_drop"`
	Diffusivity    float64 `csv:"diffusivity"`
	MeanDropsAtIce float64 `csv:"mean_drops_at_ice"`
	IceRate        float64 `csv:"ice_rate"`
}

// formatDuration formats a duration as HH:MM:SS or MM:SS for shorter durations.
func formatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute
	d -= m * time.Minute
	s := d / time.Second

	if h > 0 {
		return fmt.Sprintf("%dh%02dm%02ds", h, m, s)
	}
	return fmt.Sprintf("%dm%02ds", m, s)
}

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Base config YAML file (empty = use defaults)")
	target := flag.Int("target", 500000, "Desired droplet count at first ice")
	seeds := flag.Int("seeds", 3, "Number of seeds per evaluation")
	maxEvals := flag.Int("max-evals", 60, "Maximum number of evaluations")
	tuneDiffusivity := flag.Bool("diffusivity", false, "Also search thermal.diffusivity")
	outputDir := flag.String("output", "", "Output directory for results")
	flag.Parse()

	if *outputDir == "" {
		log.Fatal("--output is required")
	}
	if *target < 1 || *seeds < 1 {
		log.Fatal("--target and --seeds must be positive")
	}
	if err := os.MkdirAll(*outputDir, 0755); err != nil {
		log.Fatalf("failed to create output directory: %v", err)
	}

	if err := config.Init(*configPath); err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	baseCfg := config.Cfg()
	if *target > baseCfg.Spray.Budget {
		log.Fatalf("target %d exceeds the droplet budget %d", *target, baseCfg.Spray.Budget)
	}

	params := NewParamVector(baseCfg, *tuneDiffusivity)

	evalSeeds := make([]int64, *seeds)
	for i := range evalSeeds {
		evalSeeds[i] = int64(i*1000 + 42)
	}
	evaluator := NewFitnessEvaluator(params, evalSeeds, *target, baseCfg)

	logPath := filepath.Join(*outputDir, "calibrate_log.csv")
	evalLog, err := telemetry.CreateCSVLog(logPath)
	if err != nil {
		log.Fatalf("failed to create log file: %v", err)
	}
	defer evalLog.Close()

	evalCount := 0
	bestLoss := math.Inf(1)
	var bestParams []float64
	startTime := time.Now()

	problem := optimize.Problem{
		Func: func(x []float64) float64 {
			raw := params.Clamp(params.Denormalize(x))
			loss := evaluator.Evaluate(raw)
			ev := evaluator.Last()
			evalCount++

			if loss < bestLoss {
				bestLoss = loss
				bestParams = raw
			}

			applied := baseCfg.Clone()
			params.ApplyToConfig(applied, raw)
			rec := evalRecord{
				Eval:           evalCount,
				Loss:           loss,
				CoolingPerDrop: applied.Spray.CoolingPerDrop,
				Diffusivity:    applied.Thermal.Diffusivity,
				MeanDropsAtIce: ev.MeanDropsAtIce,
				IceRate:        ev.IceRate,
			}
			if err := evalLog.Write([]evalRecord{rec}); err != nil {
				log.Printf("failed to log evaluation: %v", err)
			}

			elapsed := time.Since(startTime)
			avgPerEval := elapsed / time.Duration(evalCount)
			remaining := time.Duration(max(*maxEvals-evalCount, 0)) * avgPerEval
			fmt.Printf("Eval %d/%d: cooling=%.4g drops_at_ice=%.0f ice_rate=%.2f loss=%.4f (best=%.4f) | elapsed: %s, ETA: %s\n",
				evalCount, *maxEvals, rec.CoolingPerDrop, ev.MeanDropsAtIce, ev.IceRate, loss, bestLoss,
				formatDuration(elapsed), formatDuration(remaining))

			return loss
		},
	}

	settings := &optimize.Settings{
		FuncEvaluations: *maxEvals,
		Converger: &optimize.FunctionConverge{
			Absolute:   1e-6,
			Iterations: 10,
		},
	}
	method := &optimize.NelderMead{
		SimplexSize: 0.1,
	}

	fmt.Printf("Starting Nelder-Mead calibration with %d parameters, target=%d droplets, max_evals=%d\n",
		params.Dim(), *target, *maxEvals)
	fmt.Printf("Seeds per evaluation: %d, budget per run: %d\n", *seeds, baseCfg.Spray.Budget)

	initX := params.Normalize(params.DefaultVector())
	result, err := optimize.Minimize(problem, initX, settings, method)
	if err != nil {
		log.Printf("calibration ended: %v", err)
	}
	if bestParams == nil && result != nil {
		bestParams = params.Clamp(params.Denormalize(result.X))
	}
	if bestParams == nil {
		log.Fatal("no evaluations completed")
	}

	fmt.Printf("\nCalibration complete after %d evaluations in %s\n", evalCount, formatDuration(time.Since(startTime)))
	fmt.Printf("Best loss: %.6f\n", bestLoss)
	fmt.Println("\nBest parameters:")
	for i, spec := range params.Specs {
		fmt.Printf("  %s: %.6g\n", spec.Path, bestParams[i])
	}

	bestCfg := baseCfg.Clone()
	params.ApplyToConfig(bestCfg, bestParams)
	configOutPath := filepath.Join(*outputDir, "best_config.yaml")
	if err := bestCfg.WriteYAML(configOutPath); err != nil {
		log.Printf("failed to write best config: %v", err)
	} else {
		fmt.Printf("\nBest config saved to: %s\n", configOutPath)
	}
}
