package locomotion

import (
	"math"
	"sync"

	"github.com/go-gl/mathgl/mgl64"
)

var upAxis = mgl64.Vec3{0, 1, 0}

// Heading is a yaw-only facing around +Y. Positive yaw turns local forward
// (+Z) toward +X.
type Heading struct {
	mu  sync.Mutex
	yaw float64
}

func NewHeading(yaw float64) *Heading {
	return &Heading{yaw: normalizeYaw(yaw)}
}

func (h *Heading) Orientation() mgl64.Quat {
	return mgl64.QuatRotate(mgl64.DegToRad(h.Yaw()), upAxis)
}

func (h *Heading) Yaw() float64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.yaw
}

func (h *Heading) SetYaw(yaw float64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.yaw = normalizeYaw(yaw)
}

// Turn rotates by axis*turnSpeed*dt degrees.
func (h *Heading) Turn(axis, turnSpeed, dt float64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.yaw = normalizeYaw(h.yaw + axis*turnSpeed*dt)
}

// normalizeYaw wraps yaw into (-180, 180]. Non-finite input maps to 0.
func normalizeYaw(yaw float64) float64 {
	if math.IsNaN(yaw) || math.IsInf(yaw, 0) {
		return 0
	}
	yaw = math.Mod(yaw, 360)
	if yaw <= -180 {
		yaw += 360
	} else if yaw > 180 {
		yaw -= 360
	}
	return yaw
}
