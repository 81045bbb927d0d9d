package sim

import (
	"math"
	"strings"
	"testing"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/Versifine/stride/internal/config"
	"github.com/Versifine/stride/internal/input"
)

func approxEqual(t *testing.T, got, want, tol float64, field string) {
	t.Helper()
	if math.Abs(got-want) > tol {
		t.Fatalf("%s = %.8f, want %.8f (tol=%.8f)", field, got, want, tol)
	}
}

const frameDT = 1.0 / 60.0

func TestReplay_JumpReachesApexAndLands(t *testing.T) {
	cfg := config.Default()

	samples, err := Replay(cfg, []input.Frame{{Jump: true, Repeat: 150}}, frameDT)
	if err != nil {
		t.Fatalf("Replay() error = %v", err)
	}
	if len(samples) != 150 {
		t.Fatalf("samples = %d, want 150", len(samples))
	}
	if samples[0].Grounded {
		t.Fatalf("grounded right after jump tick")
	}

	maxY := 0.0
	for _, s := range samples {
		maxY = math.Max(maxY, s.Position.Y())
	}
	// v^2 / 2g for jump 8 and gravity 9.81 is about 3.26.
	if maxY < 3.0 || maxY > 3.3 {
		t.Fatalf("jump apex = %.4f, want around 3.2", maxY)
	}

	last := samples[len(samples)-1]
	approxEqual(t, last.Position.Y(), 0, 1e-9, "landed position.y")
	if !last.Grounded {
		t.Fatalf("not grounded after landing")
	}
}

func TestReplay_WallBlocksForwardWalk(t *testing.T) {
	cfg := config.Default()
	cfg.Level.Boxes = []config.BoxConfig{{Min: [3]int{-8, 0, 3}, Max: [3]int{7, 2, 3}}}

	samples, err := Replay(cfg, []input.Frame{{Forward: 1, Repeat: 120}}, frameDT)
	if err != nil {
		t.Fatalf("Replay() error = %v", err)
	}

	last := samples[len(samples)-1]
	approxEqual(t, last.Position.Z(), 2.7, 1e-9, "position.z")
	approxEqual(t, last.Position.X(), 0.5, 1e-9, "position.x")
	approxEqual(t, last.Position.Y(), 0, 1e-9, "position.y")
	approxEqual(t, last.Velocity.Z(), 2, 1e-9, "velocity.z keeps intent")
	approxEqual(t, last.Displacement.Z(), 0, 1e-9, "displacement.z")
}

func TestReplay_YawRedirectsForward(t *testing.T) {
	cfg := config.Default()
	cfg.Actor.Yaw = 90

	samples, err := Replay(cfg, []input.Frame{{Forward: 1, Repeat: 30}}, frameDT)
	if err != nil {
		t.Fatalf("Replay() error = %v", err)
	}

	last := samples[len(samples)-1]
	approxEqual(t, last.Position.X(), 1.5, 1e-9, "position.x")
	approxEqual(t, last.Position.Z(), 0.5, 1e-9, "position.z")
	if !last.Grounded {
		t.Fatalf("walking on a floor should stay grounded")
	}
}

func TestReplay_TurnFrameRotatesHeading(t *testing.T) {
	cfg := config.Default()

	samples, err := Replay(cfg, []input.Frame{{Turn: 1, Repeat: 60}}, frameDT)
	if err != nil {
		t.Fatalf("Replay() error = %v", err)
	}

	approxEqual(t, samples[len(samples)-1].Yaw, cfg.Controller.TurnSpeed, 1e-6, "yaw after one second")
}

func TestReplay_WalkOffLedgeFalls(t *testing.T) {
	cfg := config.Default()
	cfg.Level.Floors = []config.FloorConfig{{MinX: 0, MaxX: 1, MinZ: 0, MaxZ: 0, Y: -1}}

	samples, err := Replay(cfg, []input.Frame{{Horizontal: 1, Repeat: 60}}, frameDT)
	if err != nil {
		t.Fatalf("Replay() error = %v", err)
	}

	last := samples[len(samples)-1]
	if last.Grounded {
		t.Fatalf("still grounded after walking off the ledge")
	}
	if last.Position.Y() >= 0 {
		t.Fatalf("position.y = %.4f, want falling below 0", last.Position.Y())
	}
	approxEqual(t, last.Position.X(), 2.5, 1e-9, "position.x keeps full air control")
}

func TestNewScene_RejectsInvalidConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Controller.Gravity = 0

	_, err := NewScene(cfg, input.NewState())
	if err == nil || !strings.Contains(err.Error(), "gravity") {
		t.Fatalf("NewScene() error = %v, want gravity validation error", err)
	}
}

func TestScene_TeleportClearsVelocity(t *testing.T) {
	state := input.NewState()
	scene, err := NewScene(config.Default(), state)
	if err != nil {
		t.Fatalf("NewScene() error = %v", err)
	}

	state.PressJump()
	scene.Tick(frameDT)
	if scene.Controller.Velocity().Y() <= 0 {
		t.Fatalf("jump did not set upward velocity")
	}

	scene.Teleport(mgl64.Vec3{2.5, 0, 2.5})
	if scene.Controller.Velocity() != (mgl64.Vec3{}) {
		t.Fatalf("velocity = %v after teleport, want zero", scene.Controller.Velocity())
	}
	s := scene.Sample(1)
	if !s.Grounded || s.Position != (mgl64.Vec3{2.5, 0, 2.5}) {
		t.Fatalf("sample after teleport = %+v", s)
	}
}
