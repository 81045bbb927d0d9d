package sim

import (
	"fmt"
	"log/slog"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/Versifine/stride/internal/config"
	"github.com/Versifine/stride/internal/input"
	"github.com/Versifine/stride/internal/locomotion"
	"github.com/Versifine/stride/internal/physics"
	"github.com/Versifine/stride/internal/world"
)

// Scene wires one actor into a voxel level: a collider as the move
// primitive, a heading as the orientation and a controller driving both.
type Scene struct {
	Grid       *world.Grid
	Collider   *physics.Collider
	Heading    *locomotion.Heading
	Controller *locomotion.Controller

	input  locomotion.InputSource
	logger *slog.Logger
}

type Sample struct {
	Tick         int
	Position     mgl64.Vec3
	Velocity     mgl64.Vec3
	Displacement mgl64.Vec3
	Grounded     bool
	Yaw          float64
}

// NewScene builds a scene from cfg that reads its input from src.
func NewScene(cfg *config.Config, src locomotion.InputSource) (*Scene, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	grid, err := world.FromLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("build level: %w", err)
	}

	logger := slog.Default().With("component", "locomotion")
	shape := physics.Shape{Width: cfg.Actor.Width, Height: cfg.Actor.Height}
	collider := physics.NewCollider(mgl64.Vec3(cfg.Actor.Position), shape, grid)
	heading := locomotion.NewHeading(cfg.Actor.Yaw)
	controller := locomotion.New(
		cfg.Controller.Settings(),
		src,
		collider,
		heading,
		locomotion.WithLogger(logger),
	)

	logger.Info("Scene ready",
		"blocks", grid.Count(),
		"position", collider.Position(),
		"grounded", collider.IsGrounded(),
		"yaw", heading.Yaw(),
	)
	return &Scene{
		Grid:       grid,
		Collider:   collider,
		Heading:    heading,
		Controller: controller,
		input:      src,
		logger:     logger,
	}, nil
}

func (s *Scene) Tick(dt float64) {
	s.Controller.Tick(dt)
}

func (s *Scene) Sample(tick int) Sample {
	return Sample{
		Tick:         tick,
		Position:     s.Collider.Position(),
		Velocity:     s.Controller.Velocity(),
		Displacement: s.Collider.LastMove(),
		Grounded:     s.Collider.IsGrounded(),
		Yaw:          s.Heading.Yaw(),
	}
}

// Teleport moves the actor and clears its velocity.
func (s *Scene) Teleport(pos mgl64.Vec3) {
	s.Collider.Teleport(pos)
	s.Controller.Reset()
	s.logger.Debug("Actor teleported", "position", pos)
}

// Replay runs a script to completion with a fixed dt and records one sample
// per tick. The script's turn axis is applied to the heading before each
// tick.
func Replay(cfg *config.Config, frames []input.Frame, dt float64) ([]Sample, error) {
	script := input.NewScript(frames)
	scene, err := NewScene(cfg, script)
	if err != nil {
		return nil, err
	}
	return scene.replay(script, dt), nil
}

func (s *Scene) replay(script *input.Script, dt float64) []Sample {
	samples := make([]Sample, 0, script.Len())
	for tick := 0; !script.Done(); tick++ {
		if turn := script.Turn(); turn != 0 {
			s.Heading.Turn(turn, s.Controller.Settings().TurnSpeed, dt)
		}
		s.Tick(dt)
		script.Advance()
		samples = append(samples, s.Sample(tick))
	}
	s.logger.Debug("Replay finished", "ticks", len(samples))
	return samples
}
