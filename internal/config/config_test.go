package config

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// TestLoad 使用表驱动测试覆盖配置加载的核心场景
func TestLoad(t *testing.T) {
	tests := []struct {
		name       string
		fileName   string
		createFile bool
		content    string
		wantErr    bool
		validate   func(t *testing.T, cfg *Config, err error)
	}{
		{
			name:       "正常加载有效YAML",
			fileName:   "config.yaml",
			createFile: true,
			content: `logging:
  level: "debug"
  format: "json"
  file: "stride.log"
controller:
  move_speed: 4
  turn_speed: 90
  jump_power: 6.5
  gravity: 20
  snap_to_ground: true
actor:
  position: [1.5, 2, -0.5]
  yaw: 45
level:
  floors:
    - {min_x: -2, max_x: 2, min_z: -2, max_z: 2, y: -1}
  blocks:
    - [1, 0, 1]
scenario:
  dt: 0.05
  frames:
    - {forward: 1, repeat: 10}
    - {jump: true}
`,
			validate: func(t *testing.T, cfg *Config, err error) {
				if cfg.Logging.Level != "debug" {
					t.Errorf("Logging.Level = %q, 期望 %q", cfg.Logging.Level, "debug")
				}
				if cfg.Logging.File != "stride.log" {
					t.Errorf("Logging.File = %q, 期望 %q", cfg.Logging.File, "stride.log")
				}
				if cfg.Controller.MoveSpeed != 4 || cfg.Controller.JumpPower != 6.5 || cfg.Controller.Gravity != 20 {
					t.Errorf("Controller = %+v", cfg.Controller)
				}
				if !cfg.Controller.SnapToGround {
					t.Errorf("Controller.SnapToGround = false, 期望 true")
				}
				if cfg.Actor.Position != [3]float64{1.5, 2, -0.5} {
					t.Errorf("Actor.Position = %v", cfg.Actor.Position)
				}
				// 未出现的字段保留默认值
				if cfg.Actor.Width != 0.6 || cfg.Loop.TickRate != 60 {
					t.Errorf("defaults lost: width=%v tick_rate=%d", cfg.Actor.Width, cfg.Loop.TickRate)
				}
				if len(cfg.Level.Floors) != 1 || cfg.Level.Floors[0].MinX != -2 {
					t.Errorf("Level.Floors = %+v", cfg.Level.Floors)
				}
				if len(cfg.Level.Blocks) != 1 || cfg.Level.Blocks[0] != [3]int{1, 0, 1} {
					t.Errorf("Level.Blocks = %v", cfg.Level.Blocks)
				}
				if len(cfg.Scenario.Frames) != 2 || cfg.Scenario.Frames[0].Repeat != 10 || !cfg.Scenario.Frames[1].Jump {
					t.Errorf("Scenario.Frames = %+v", cfg.Scenario.Frames)
				}
			},
		},
		{
			name:       "正常加载有效TOML",
			fileName:   "config.toml",
			createFile: true,
			content: `[logging]
level = "warn"

[controller]
move_speed = 3.0
gravity = 12.5

[loop]
tick_rate = 30

[[scenario.frames]]
horizontal = -1.0
repeat = 4
`,
			validate: func(t *testing.T, cfg *Config, err error) {
				if cfg.Logging.Level != "warn" {
					t.Errorf("Logging.Level = %q, 期望 %q", cfg.Logging.Level, "warn")
				}
				if cfg.Controller.MoveSpeed != 3 || cfg.Controller.Gravity != 12.5 {
					t.Errorf("Controller = %+v", cfg.Controller)
				}
				if cfg.Controller.JumpPower != 8 {
					t.Errorf("Controller.JumpPower = %v, 期望默认值 8", cfg.Controller.JumpPower)
				}
				if cfg.Loop.TickRate != 30 {
					t.Errorf("Loop.TickRate = %d, 期望 30", cfg.Loop.TickRate)
				}
				if len(cfg.Scenario.Frames) != 1 || cfg.Scenario.Frames[0].Horizontal != -1 {
					t.Errorf("Scenario.Frames = %+v", cfg.Scenario.Frames)
				}
			},
		},
		{
			name:       "文件不存在",
			fileName:   "config.yaml",
			createFile: false,
			wantErr:    true,
			validate: func(t *testing.T, cfg *Config, err error) {
				if !os.IsNotExist(err) {
					t.Errorf("期望文件不存在错误，实际: %v", err)
				}
			},
		},
		{
			name:       "YAML格式错误",
			fileName:   "config.yml",
			createFile: true,
			content: `controller:
  move_speed: [2
`,
			wantErr: true,
			validate: func(t *testing.T, cfg *Config, err error) {
				if err == nil || !strings.Contains(err.Error(), "yaml") {
					t.Errorf("期望返回YAML解析错误，实际: %v", err)
				}
			},
		},
		{
			name:       "TOML格式错误",
			fileName:   "config.toml",
			createFile: true,
			content:    "[controller\nmove_speed = 2\n",
			wantErr:    true,
			validate: func(t *testing.T, cfg *Config, err error) {
				if err == nil || !strings.Contains(err.Error(), "toml") {
					t.Errorf("期望返回TOML解析错误，实际: %v", err)
				}
			},
		},
		{
			name:       "空文件",
			fileName:   "config.yaml",
			createFile: true,
			content:    "",
			validate: func(t *testing.T, cfg *Config, err error) {
				// 空文件会得到默认配置。
				def := Default()
				if cfg.Controller != def.Controller {
					t.Errorf("Controller = %+v, 期望默认 %+v", cfg.Controller, def.Controller)
				}
				if cfg.Validate() != nil {
					t.Errorf("默认配置应通过校验: %v", cfg.Validate())
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tempDir := t.TempDir()
			configPath := filepath.Join(tempDir, tt.fileName)

			if tt.createFile {
				if err := os.WriteFile(configPath, []byte(tt.content), 0o644); err != nil {
					t.Fatalf("创建测试配置文件失败: %v", err)
				}
			}

			cfg, err := Load(configPath)

			if (err != nil) != tt.wantErr {
				t.Fatalf("Load() error = %v, wantErr %v", err, tt.wantErr)
			}

			if err == nil && cfg == nil {
				t.Fatalf("Load() 返回了 nil 配置")
			}

			if tt.validate != nil {
				tt.validate(t, cfg, err)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"default", func(c *Config) {}, ""},
		{"zero move speed", func(c *Config) { c.Controller.MoveSpeed = 0 }, "move_speed"},
		{"negative jump", func(c *Config) { c.Controller.JumpPower = -1 }, "jump_power"},
		{"zero gravity", func(c *Config) { c.Controller.Gravity = 0 }, "gravity"},
		{"flat actor", func(c *Config) { c.Actor.Height = 0 }, "actor size"},
		{"no tick rate", func(c *Config) { c.Loop.TickRate = 0 }, "tick_rate"},
		{"tick rate above cap", func(c *Config) { c.Loop.TickRate = 2_000_000_000 }, "tick_rate"},
		{"tick rate at cap", func(c *Config) { c.Loop.TickRate = MaxTickRate }, ""},
		{"huge yaw accepted", func(c *Config) { c.Actor.Yaw = 1e12 }, ""},
		{"infinite yaw", func(c *Config) { c.Actor.Yaw = math.Inf(1) }, "actor.yaw"},
		{"nan yaw", func(c *Config) { c.Actor.Yaw = math.NaN() }, "actor.yaw"},
		{"infinite gravity", func(c *Config) { c.Controller.Gravity = math.Inf(1) }, "controller.gravity"},
		{"nan move speed", func(c *Config) { c.Controller.MoveSpeed = math.NaN() }, "controller.move_speed"},
		{"infinite position", func(c *Config) { c.Actor.Position[1] = math.Inf(-1) }, "actor.position.y"},
		{"no max delta", func(c *Config) { c.Loop.MaxDelta = 0 }, "max_delta"},
		{"negative dt", func(c *Config) { c.Scenario.DT = -0.1 }, "scenario.dt"},
		{"negative repeat", func(c *Config) {
			c.Scenario.Frames = []FrameConfig{{Repeat: -2}}
		}, "repeat"},
		{"bad log format", func(c *Config) { c.Logging.Format = "xml" }, "logging.format"},
		{"zero turn speed allowed", func(c *Config) { c.Controller.TurnSpeed = 0 }, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Validate() = %v, want nil", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("Validate() = %v, want error containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestControllerSettings(t *testing.T) {
	cfg := Default()
	cfg.Controller.SnapToGround = true
	s := cfg.Controller.Settings()
	if s.MoveSpeed != 2 || s.TurnSpeed != 60 || s.JumpPower != 8 || s.Gravity != 9.81 || !s.SnapToGround {
		t.Fatalf("Settings() = %+v", s)
	}
}

// TestLoadInfiniteYawRejected 测试 YAML 中的 .inf 偏航角会被校验拒绝
func TestLoadInfiniteYawRejected(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(configPath, []byte("actor:\n  yaw: .inf\n"), 0o644); err != nil {
		t.Fatalf("创建测试配置文件失败: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if err := cfg.Validate(); err == nil || !strings.Contains(err.Error(), "actor.yaw") {
		t.Fatalf("Validate() = %v, want actor.yaw error", err)
	}
}

// TestShippedConfigs 测试仓库自带的配置文件可以加载并通过校验
func TestShippedConfigs(t *testing.T) {
	for _, name := range []string{"config.yaml", "config.toml"} {
		t.Run(name, func(t *testing.T) {
			cfg, err := Load(filepath.Join("..", "..", "configs", name))
			if err != nil {
				t.Fatalf("Load(%s) error = %v", name, err)
			}
			if err := cfg.Validate(); err != nil {
				t.Fatalf("Validate(%s) = %v", name, err)
			}
			// 交互配置需要贴地，否则站立时竖直速度会无限累积
			if !cfg.Controller.SnapToGround {
				t.Errorf("%s: controller.snap_to_ground = false, 期望 true", name)
			}
		})
	}
}
