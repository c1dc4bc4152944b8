package main

import (
	"flag"
	"log/slog"
	"os"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/icing/config"
	"github.com/pthm-cable/icing/game"
)

// keepConfigSeed is the -seed value that leaves the config seed in place.
const keepConfigSeed = -1

// applySeed overrides the config seed unless seed is keepConfigSeed.
// Other negative values are valid seeds.
func applySeed(cfg *config.Config, seed int64) {
	if seed != keepConfigSeed {
		cfg.Spray.Seed = seed
	}
}

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	headless := flag.Bool("headless", false, "Run without graphics")
	logStats := flag.Bool("log-stats", false, "Output stats via slog")
	snapshotDir := flag.String("snapshot-dir", "", "Directory for field snapshot files")
	outputDir := flag.String("output-dir", "", "Output directory for CSV logs and config snapshot")
	seed := flag.Int64("seed", -1, "RNG seed (-1 = use config)")
	maxIterations := flag.Int("max-iterations", 0, "Stop after N iterations (0 = until ice or budget exhausted)")
	iterationsPerFrame := flag.Int("iterations-per-frame", 0, "Iterations per rendered frame (0 = use config)")

	flag.Parse()

	// Set up slog (JSON to stdout for structured logging)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := config.Cfg()
	applySeed(cfg, *seed)

	if !cfg.Derived.Stable {
		slog.Warn("explicit diffusion is unstable for this config",
			"fo_x", cfg.Derived.FoX,
			"fo_y", cfg.Derived.FoY,
			"fo_sum", cfg.Derived.FoSum,
			"limit", config.StabilityLimit,
		)
	}

	opts := game.Options{
		LogStats:           *logStats,
		OutputDir:          *outputDir,
		SnapshotDir:        *snapshotDir,
		Headless:           *headless,
		IterationsPerFrame: *iterationsPerFrame,
	}

	if *headless {
		// Headless mode - pure CPU simulation, no raylib needed
		g, err := game.NewGameWithOptions(cfg, opts)
		if err != nil {
			slog.Error("failed to start simulation", "error", err)
			os.Exit(1)
		}
		defer g.Unload()

		slog.Info("starting headless simulation",
			"seed", cfg.Spray.Seed,
			"grid", []int{cfg.Grid.NX, cfg.Grid.NY},
			"batch_size", cfg.Spray.BatchSize,
			"budget", cfg.Spray.Budget,
			"max_iterations", *maxIterations,
		)

		for !g.Stopped() {
			g.UpdateHeadless()

			if *maxIterations > 0 && g.Iteration() >= *maxIterations && !g.Stopped() {
				slog.Info("max iterations reached", "iteration", g.Iteration())
				g.Halt()
			}
		}
	} else {
		// Graphical mode
		rl.SetConfigFlags(rl.FlagWindowResizable)
		rl.InitWindow(int32(cfg.Screen.Width), int32(cfg.Screen.Height), "Plate Icing")
		defer rl.CloseWindow()

		rl.SetTargetFPS(int32(cfg.Screen.TargetFPS))

		g, err := game.NewGameWithOptions(cfg, opts)
		if err != nil {
			slog.Error("failed to start simulation", "error", err)
			rl.CloseWindow()
			os.Exit(1)
		}
		defer g.Unload()

		for !rl.WindowShouldClose() {
			g.Update()
			g.Draw()

			if *maxIterations > 0 && g.Iteration() >= *maxIterations {
				g.Halt()
				break
			}
		}
	}
}
