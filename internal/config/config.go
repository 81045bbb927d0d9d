package config

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/Versifine/stride/internal/locomotion"
)

type Config struct {
	Logging    LoggingConfig    `yaml:"logging" toml:"logging"`
	Controller ControllerConfig `yaml:"controller" toml:"controller"`
	Actor      ActorConfig      `yaml:"actor" toml:"actor"`
	Level      LevelConfig      `yaml:"level" toml:"level"`
	Loop       LoopConfig       `yaml:"loop" toml:"loop"`
	Scenario   ScenarioConfig   `yaml:"scenario" toml:"scenario"`
}

type LoggingConfig struct {
	Level  string `yaml:"level" toml:"level"`
	Format string `yaml:"format" toml:"format"`
	File   string `yaml:"file" toml:"file"`
}

type ControllerConfig struct {
	MoveSpeed    float64 `yaml:"move_speed" toml:"move_speed"`
	TurnSpeed    float64 `yaml:"turn_speed" toml:"turn_speed"`
	JumpPower    float64 `yaml:"jump_power" toml:"jump_power"`
	Gravity      float64 `yaml:"gravity" toml:"gravity"`
	SnapToGround bool    `yaml:"snap_to_ground" toml:"snap_to_ground"`
}

type ActorConfig struct {
	Position [3]float64 `yaml:"position" toml:"position"`
	Yaw      float64    `yaml:"yaw" toml:"yaw"`
	Width    float64    `yaml:"width" toml:"width"`
	Height   float64    `yaml:"height" toml:"height"`
}

type LevelConfig struct {
	Floors []FloorConfig `yaml:"floors" toml:"floors"`
	Boxes  []BoxConfig   `yaml:"boxes" toml:"boxes"`
	Blocks [][3]int      `yaml:"blocks" toml:"blocks"`
}

type FloorConfig struct {
	MinX int `yaml:"min_x" toml:"min_x"`
	MaxX int `yaml:"max_x" toml:"max_x"`
	MinZ int `yaml:"min_z" toml:"min_z"`
	MaxZ int `yaml:"max_z" toml:"max_z"`
	Y    int `yaml:"y" toml:"y"`
}

type BoxConfig struct {
	Min [3]int `yaml:"min" toml:"min"`
	Max [3]int `yaml:"max" toml:"max"`
}

type LoopConfig struct {
	// TickRate is in ticks per second.
	TickRate int `yaml:"tick_rate" toml:"tick_rate"`
	// MaxDelta caps the measured dt in seconds after a stall.
	MaxDelta float64 `yaml:"max_delta" toml:"max_delta"`
}

type ScenarioConfig struct {
	DT     float64       `yaml:"dt" toml:"dt"`
	Frames []FrameConfig `yaml:"frames" toml:"frames"`
}

type FrameConfig struct {
	Horizontal float64 `yaml:"horizontal" toml:"horizontal"`
	Forward    float64 `yaml:"forward" toml:"forward"`
	Jump       bool    `yaml:"jump" toml:"jump"`
	Turn       float64 `yaml:"turn" toml:"turn"`
	Repeat     int     `yaml:"repeat" toml:"repeat"`
}

// MaxTickRate bounds loop.tick_rate so the frame interval stays well above
// zero.
const MaxTickRate = 1000

func Default() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level:  "info",
			Format: "auto",
		},
		Controller: ControllerConfig{
			MoveSpeed: locomotion.DefaultMoveSpeed,
			TurnSpeed: locomotion.DefaultTurnSpeed,
			JumpPower: locomotion.DefaultJumpPower,
			Gravity:   locomotion.DefaultGravity,
		},
		Actor: ActorConfig{
			Position: [3]float64{0.5, 0, 0.5},
			Width:    0.6,
			Height:   1.8,
		},
		Level: LevelConfig{
			Floors: []FloorConfig{{MinX: -8, MaxX: 7, MinZ: -8, MaxZ: 7, Y: -1}},
		},
		Loop: LoopConfig{
			TickRate: 60,
			MaxDelta: 0.25,
		},
		Scenario: ScenarioConfig{
			DT: 1.0 / 60.0,
		},
	}
}

// Load decodes a YAML or TOML file (chosen by extension) on top of Default.
func Load(path string) (*Config, error) {
	cfg := Default()
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, err
		}
	default:
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c == nil {
		return fmt.Errorf("config is nil")
	}
	ctl := c.Controller
	for name, v := range map[string]float64{
		"controller.move_speed": ctl.MoveSpeed,
		"controller.turn_speed": ctl.TurnSpeed,
		"controller.jump_power": ctl.JumpPower,
		"controller.gravity":    ctl.Gravity,
		"actor.yaw":             c.Actor.Yaw,
		"actor.position.x":      c.Actor.Position[0],
		"actor.position.y":      c.Actor.Position[1],
		"actor.position.z":      c.Actor.Position[2],
		"scenario.dt":           c.Scenario.DT,
	} {
		if !isFinite(v) {
			return fmt.Errorf("%s must be finite, got %v", name, v)
		}
	}
	if ctl.MoveSpeed <= 0 {
		return fmt.Errorf("controller.move_speed must be > 0, got %v", ctl.MoveSpeed)
	}
	if ctl.JumpPower <= 0 {
		return fmt.Errorf("controller.jump_power must be > 0, got %v", ctl.JumpPower)
	}
	if ctl.Gravity <= 0 {
		return fmt.Errorf("controller.gravity must be > 0, got %v", ctl.Gravity)
	}
	if c.Actor.Width <= 0 || c.Actor.Height <= 0 {
		return fmt.Errorf("actor size must be positive, got %vx%v", c.Actor.Width, c.Actor.Height)
	}
	if c.Loop.TickRate <= 0 || c.Loop.TickRate > MaxTickRate {
		return fmt.Errorf("loop.tick_rate must be in [1, %d], got %d", MaxTickRate, c.Loop.TickRate)
	}
	if c.Loop.MaxDelta <= 0 {
		return fmt.Errorf("loop.max_delta must be > 0, got %v", c.Loop.MaxDelta)
	}
	if c.Scenario.DT < 0 {
		return fmt.Errorf("scenario.dt must be >= 0, got %v", c.Scenario.DT)
	}
	for i, f := range c.Scenario.Frames {
		if f.Repeat < 0 {
			return fmt.Errorf("scenario.frames[%d].repeat must be >= 0, got %d", i, f.Repeat)
		}
	}
	switch c.Logging.Format {
	case "", "auto", "console", "text", "json":
	default:
		return fmt.Errorf("logging.format %q is not one of auto, console, text, json", c.Logging.Format)
	}
	return nil
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func (c ControllerConfig) Settings() locomotion.Settings {
	return locomotion.Settings{
		MoveSpeed:    c.MoveSpeed,
		TurnSpeed:    c.TurnSpeed,
		JumpPower:    c.JumpPower,
		Gravity:      c.Gravity,
		SnapToGround: c.SnapToGround,
	}
}
