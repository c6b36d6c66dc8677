// Command pvsim runs the virtual-memory subsystem simulator end to end:
// it builds a kernel, wires its stats to a terminal dashboard, and drives
// the tick loop until the workload dies out or the process is interrupted.
package main

import (
	"context"
	"fmt"
	"os"
	"runtime/pprof"
	"time"

	"pvsim/internal/config"
	"pvsim/internal/dashboard"
	"pvsim/internal/kernel"
	"pvsim/internal/rng"

	"github.com/rs/zerolog"
	"github.com/spf13/pflag"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "pvsim:", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		policy     = pflag.StringP("policy", "p", "clock", "replacement policy (clock, random); also accepted as the first positional argument")
		configPath = pflag.String("config", "", "path to a YAML config file overriding flag defaults; flags set explicitly win")
		seed1      = pflag.Uint64("seed", 0, "primary RNG seed; entropy is used when --seed and --seed2 are both 0")
		seed2      = pflag.Uint64("seed2", 0, "secondary RNG seed, paired with --seed")
		tick       = pflag.Duration("tick", 500*time.Millisecond, "wall-clock pacing between ticks")
		frames     = pflag.Int("frames", 0, "fixed frame count; 0 draws uniformly from [512, 1024]")
		profile    = pflag.String("profile", "", "write a CPU profile to this path")
		verbose    = pflag.BoolP("verbose", "v", false, "log debug-level kernel events")
	)
	pflag.Parse()
	policySet := pflag.CommandLine.Changed("policy") || pflag.NArg() > 0
	if pflag.NArg() > 0 {
		*policy = pflag.Arg(0)
	}

	fileCfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	flagCfg := config.SimConfig{
		Policy:  *policy,
		Seed1:   *seed1,
		Seed2:   *seed2,
		Tick:    *tick,
		Frames:  *frames,
		Profile: *profile,
	}
	// A flag left at its non-zero default must not mask the file's value.
	if fileCfg.Policy != "" && !policySet {
		flagCfg.Policy = ""
	}
	if fileCfg.Tick != 0 && !pflag.CommandLine.Changed("tick") {
		flagCfg.Tick = 0
	}
	cfg := config.Merge(fileCfg, flagCfg)

	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).With().Timestamp().Logger()
	if *verbose {
		log = log.Level(zerolog.DebugLevel)
	} else {
		log = log.Level(zerolog.InfoLevel)
	}

	if cfg.Profile != "" {
		f, err := os.Create(cfg.Profile)
		if err != nil {
			return fmt.Errorf("profile: %w", err)
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			return fmt.Errorf("profile: %w", err)
		}
		defer pprof.StopCPUProfile()
	}

	source := rng.NewEntropy()
	if cfg.Seed1 != 0 || cfg.Seed2 != 0 {
		source = rng.NewSeeded(cfg.Seed1, cfg.Seed2)
	}

	k, err := kernel.New(kernel.Options{
		Policy: cfg.Policy,
		RNG:    source,
		Log:    &log,
		Tick:   cfg.Tick,
		Frames: cfg.Frames,
	})
	if err != nil {
		return fmt.Errorf("kernel: %w", err)
	}

	ctx, cancel := notifyContext()
	defer cancel()

	renderer := dashboard.New(os.Stdout, isTerminal(os.Stdout))
	return k.Run(ctx, renderer.Render)
}
