package locomotion

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/go-gl/mathgl/mgl64"
)

// Defaults used when a config leaves the controller section empty.
const (
	DefaultMoveSpeed = 2.0
	DefaultTurnSpeed = 60.0
	DefaultJumpPower = 8.0
	DefaultGravity   = 9.81
)

// InputSource supplies normalized movement intent for one tick.
type InputSource interface {
	Horizontal() float64
	Forward() float64
	JumpTriggered() bool
}

// Mover is the collision-resolving move primitive that owns the actor's
// collider. IsGrounded reflects contact as of the end of the previous Move.
type Mover interface {
	IsGrounded() bool
	Move(displacement mgl64.Vec3)
}

// Orienter supplies the actor's facing. Intent is rotated by it each tick.
type Orienter interface {
	Orientation() mgl64.Quat
}

type Settings struct {
	MoveSpeed float64
	// TurnSpeed is in degrees per second. The motion math never reads it.
	TurnSpeed float64
	JumpPower float64
	Gravity   float64
	// SnapToGround zeroes the vertical velocity on grounded ticks before
	// the jump check.
	SnapToGround bool
}

func DefaultSettings() Settings {
	return Settings{
		MoveSpeed: DefaultMoveSpeed,
		TurnSpeed: DefaultTurnSpeed,
		JumpPower: DefaultJumpPower,
		Gravity:   DefaultGravity,
	}
}

var ErrMissingCollaborator = errors.New("missing collaborator")

// ConfigurationFault reports a required collaborator that was absent when
// the controller was built.
type ConfigurationFault struct {
	Collaborator string
}

func (f *ConfigurationFault) Error() string {
	return fmt.Sprintf("locomotion: %s is not configured", f.Collaborator)
}

func (f *ConfigurationFault) Unwrap() error {
	return ErrMissingCollaborator
}

// Frame is everything a single integration step needs.
type Frame struct {
	Horizontal  float64
	Forward     float64
	Jump        bool
	Grounded    bool
	DT          float64
	Orientation mgl64.Quat
}

// Integrate advances velocity by one step and returns the new velocity.
func Integrate(velocity mgl64.Vec3, frame Frame, settings Settings) mgl64.Vec3 {
	orientation := frame.Orientation
	if orientation == (mgl64.Quat{}) {
		orientation = mgl64.QuatIdent()
	}

	intent := mgl64.Vec3{frame.Horizontal, 0, frame.Forward}
	worldIntent := orientation.Rotate(intent)

	next := velocity
	if frame.Grounded {
		next[0] = worldIntent.X() * settings.MoveSpeed
		next[2] = worldIntent.Z() * settings.MoveSpeed
		if settings.SnapToGround {
			next[1] = 0
		}
		if frame.Jump {
			next[1] = settings.JumpPower
		}
	} else {
		// Air control is full: horizontal speed follows input, not momentum.
		next[0] = worldIntent.X() * settings.MoveSpeed
		next[2] = worldIntent.Z() * settings.MoveSpeed
	}

	next[1] -= settings.Gravity * frame.DT
	return next
}

// Option customizes a Controller built by New.
type Option func(*Controller)

func WithLogger(logger *slog.Logger) Option {
	return func(c *Controller) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithVelocity seeds the starting velocity, e.g. when restoring a snapshot.
func WithVelocity(v mgl64.Vec3) Option {
	return func(c *Controller) {
		c.velocity = v
	}
}

type Controller struct {
	settings Settings
	input    InputSource
	mover    Mover
	orienter Orienter
	logger   *slog.Logger

	velocity mgl64.Vec3
	fault    error
}

// New builds a controller. A missing mover or input source is reported once
// and leaves the controller in a degraded state where Tick does nothing.
func New(settings Settings, input InputSource, mover Mover, orienter Orienter, opts ...Option) *Controller {
	c := &Controller{
		settings: settings,
		input:    input,
		mover:    mover,
		orienter: orienter,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}

	switch {
	case mover == nil:
		c.fault = &ConfigurationFault{Collaborator: "move primitive"}
	case input == nil:
		c.fault = &ConfigurationFault{Collaborator: "input source"}
	}
	if c.fault != nil {
		c.logger.Error("Locomotion controller degraded to no-op", "error", c.fault)
	}
	return c
}

// Tick reads input, integrates velocity for dt seconds and hands the
// displacement velocity*dt to the mover. It is a no-op on a degraded
// controller.
func (c *Controller) Tick(dt float64) {
	if c == nil || c.fault != nil {
		return
	}

	frame := Frame{
		Horizontal:  c.input.Horizontal(),
		Forward:     c.input.Forward(),
		Jump:        c.input.JumpTriggered(),
		Grounded:    c.mover.IsGrounded(),
		DT:          dt,
		Orientation: c.orientation(),
	}
	c.velocity = Integrate(c.velocity, frame, c.settings)
	c.mover.Move(c.velocity.Mul(dt))
}

func (c *Controller) orientation() mgl64.Quat {
	if c.orienter == nil {
		return mgl64.QuatIdent()
	}
	return c.orienter.Orientation()
}

// Velocity returns the velocity carried into the next tick.
func (c *Controller) Velocity() mgl64.Vec3 {
	if c == nil {
		return mgl64.Vec3{}
	}
	return c.velocity
}

func (c *Controller) SetVelocity(v mgl64.Vec3) {
	if c == nil {
		return
	}
	c.velocity = v
}

// Reset clears accumulated velocity, for landing or teleport logic owned by
// the caller.
func (c *Controller) Reset() {
	c.SetVelocity(mgl64.Vec3{})
}

// Settings returns the tuning the controller was built with.
func (c *Controller) Settings() Settings {
	if c == nil {
		return Settings{}
	}
	return c.settings
}

func (c *Controller) Fault() error {
	if c == nil {
		return nil
	}
	return c.fault
}
