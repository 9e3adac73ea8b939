package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/inference-sim/traffic-sim/sim"
	"github.com/inference-sim/traffic-sim/sim/policy"
	"github.com/inference-sim/traffic-sim/sim/trace"
)

var (
	// Environment selection, shared by run and play
	seed         int64  // Master seed for the partitioned RNG
	presetName   string // Named preset from the defaults file
	configPath   string // Standalone environment YAML
	defaultsPath string // Path to defaults.yaml
	allowReverse bool   // Let programmatic control brake below zero
	logLevel     string // Log verbosity level

	// Headless run
	episodes    int    // Number of episodes to play
	maxSteps    int    // Step limit per episode
	policyName  string // Built-in driving policy
	traceLevel  string // Decision trace verbosity
	resultsPath string // Optional JSON results file
	workers     int    // Episodes played concurrently
)

// rootCmd is the base command for the CLI
var rootCmd = &cobra.Command{
	Use:   "traffic-sim",
	Short: "Lane-based driving simulator with a sensor-equipped car and reactive traffic",
}

// runCmd plays headless episodes with a built-in policy and reports metrics
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run headless driving episodes",
	Run: func(cmd *cobra.Command, args []string) {
		setLogLevel(logLevel)

		cfg, err := resolveEnvConfig(cmd)
		if err != nil {
			logrus.Fatalf("%v", err)
		}
		if !trace.IsValidTraceLevel(traceLevel) {
			logrus.Fatalf("Invalid trace level: %s (valid: none, decisions)", traceLevel)
		}
		if !policy.ValidPolicies[policyName] {
			logrus.Fatalf("Unknown policy: %s (valid: idle, random, cruise)", policyName)
		}

		logrus.Infof("Starting %d episodes: policy=%s seed=%d lanes=%d activation=%.0f workers=%d",
			episodes, policyName, cfg.Seed, cfg.NumLanes, cfg.ActivationDistance, workers)

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		startTime := time.Now()
		run, tr, err := runEpisodes(ctx, cfg, runOptions{
			Episodes:   episodes,
			MaxSteps:   maxSteps,
			Policy:     policyName,
			TraceLevel: trace.TraceLevel(traceLevel),
			Workers:    workers,
		})
		if err != nil {
			logrus.Fatalf("Simulation failed: %v", err)
		}
		elapsed := time.Since(startTime)

		run.Print(elapsed)
		if trace.TraceLevel(traceLevel) != trace.TraceLevelNone {
			printTraceSummary(tr)
		}
		if resultsPath != "" {
			if err := run.SaveResults(resultsPath, elapsed); err != nil {
				logrus.Fatalf("%v", err)
			}
		}
		logrus.Info("Simulation complete.")
	},
}

func setLogLevel(level string) {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		logrus.Fatalf("Invalid log level: %s", level)
	}
	logrus.SetLevel(lvl)
}

// resolveEnvConfig layers the environment config: built-in defaults, then a
// preset or a config file, then any flag the user set explicitly.
func resolveEnvConfig(cmd *cobra.Command) (sim.Config, error) {
	if presetName != "" && configPath != "" {
		return sim.Config{}, fmt.Errorf("--preset and --config are mutually exclusive")
	}
	cfg := sim.DefaultConfig()
	switch {
	case presetName != "":
		d, err := loadEnvDefaults(defaultsPath)
		if err != nil {
			return sim.Config{}, err
		}
		if cfg, err = d.Preset(presetName); err != nil {
			return sim.Config{}, err
		}
	case configPath != "":
		var err error
		if cfg, err = sim.LoadConfig(configPath); err != nil {
			return sim.Config{}, err
		}
	}
	if cmd.Flags().Changed("seed") {
		cfg.Seed = seed
	}
	if cmd.Flags().Changed("allow-reverse") {
		cfg.AllowReverse = allowReverse
	}
	return cfg, cfg.Validate()
}

func printTraceSummary(tr *trace.EpisodeTrace) {
	data, err := json.MarshalIndent(trace.Summarize(tr), "", "  ")
	if err != nil {
		logrus.Errorf("marshaling trace summary: %v", err)
		return
	}
	fmt.Println("=== Trace Summary ===")
	fmt.Println(string(data))
}

// Execute runs the CLI root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// addEnvFlags registers the environment-selection flags on c.
func addEnvFlags(c *cobra.Command) {
	c.Flags().Int64Var(&seed, "seed", 42, "Master seed for traffic and policy randomness")
	c.Flags().StringVar(&presetName, "preset", "", "Named environment preset from the defaults file")
	c.Flags().StringVar(&configPath, "config", "", "Path to an environment YAML file")
	c.Flags().StringVar(&defaultsPath, "defaults", "defaults.yaml", "Path to the presets file")
	c.Flags().BoolVar(&allowReverse, "allow-reverse", false, "Allow braking below zero speed")
	c.Flags().StringVar(&logLevel, "log", "error", "Log level (trace, debug, info, warn, error, fatal, panic)")
}

// init sets up CLI flags and subcommands
func init() {
	addEnvFlags(runCmd)
	runCmd.Flags().IntVar(&episodes, "episodes", 10, "Number of episodes to play")
	runCmd.Flags().IntVar(&maxSteps, "max-steps", 5000, "Step limit per episode")
	runCmd.Flags().StringVar(&policyName, "policy", "cruise", "Driving policy (idle, random, cruise)")
	runCmd.Flags().StringVar(&traceLevel, "trace", "none", "Decision trace level (none, decisions)")
	runCmd.Flags().StringVar(&resultsPath, "results", "", "Write per-episode results as JSON to this file")
	runCmd.Flags().IntVar(&workers, "workers", runtime.NumCPU(), "Episodes played concurrently")

	addEnvFlags(playCmd)
	playCmd.Flags().Float64Var(&windowScale, "scale", 1, "Window scale factor")

	// Attach subcommands to `root`
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(playCmd)
}
