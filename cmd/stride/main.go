package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/Versifine/stride/internal/config"
	"github.com/Versifine/stride/internal/debug"
	"github.com/Versifine/stride/internal/input"
	"github.com/Versifine/stride/internal/logger"
	"github.com/Versifine/stride/internal/sim"
)

func main() {
	configPath := flag.String("config", "configs/config.yaml", "path to a .yaml or .toml config file")
	mode := flag.String("mode", "sim", "run mode: sim (headless replay) or console (interactive)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("Failed to load config", "path", *configPath, "error", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		slog.Error("Invalid config", "path", *configPath, "error", err)
		os.Exit(1)
	}

	var output io.Writer = os.Stdout
	if cfg.Logging.File != "" {
		f, err := logger.OpenFile(cfg.Logging.File)
		if err != nil {
			slog.Error("Failed to open log file", "error", err)
			os.Exit(1)
		}
		defer f.Close()
		output = f
	}
	logger.Init(logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: output,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch *mode {
	case "sim":
		err = runReplay(cfg)
	case "console":
		err = runConsole(ctx, cfg)
	default:
		err = fmt.Errorf("unknown mode %q", *mode)
	}
	if err != nil {
		slog.Error("Run failed", "mode", *mode, "error", err)
		os.Exit(1)
	}
}

func runReplay(cfg *config.Config) error {
	frames := input.FramesFromConfig(cfg.Scenario.Frames)
	samples, err := sim.Replay(cfg, frames, cfg.Scenario.DT)
	if err != nil {
		return err
	}
	for _, s := range samples {
		fmt.Printf("%5d  pos=(%8.3f %8.3f %8.3f)  vel=(%7.3f %7.3f %7.3f)  grounded=%t\n",
			s.Tick,
			s.Position.X(), s.Position.Y(), s.Position.Z(),
			s.Velocity.X(), s.Velocity.Y(), s.Velocity.Z(),
			s.Grounded,
		)
	}
	if len(samples) > 0 {
		last := samples[len(samples)-1]
		slog.Info("Replay complete", "ticks", len(samples), "position", last.Position, "grounded", last.Grounded)
	}
	return nil
}

func runConsole(ctx context.Context, cfg *config.Config) error {
	state := input.NewState()
	scene, err := sim.NewScene(cfg, state)
	if err != nil {
		return err
	}
	console, err := debug.NewConsole(scene, state, cfg.Loop.TickRate, cfg.Loop.MaxDelta)
	if err != nil {
		return err
	}
	return console.Start(ctx)
}
