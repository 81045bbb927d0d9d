package physics

import (
	"sync"

	"github.com/go-gl/mathgl/mgl64"
)

// Collider is a move primitive over a voxel block store. It resolves each
// requested displacement against solid blocks and records ground contact
// for the next query.
type Collider struct {
	mu       sync.Mutex
	position mgl64.Vec3
	shape    Shape
	blocks   BlockStore
	onGround bool
	lastMove mgl64.Vec3
}

func NewCollider(position mgl64.Vec3, shape Shape, blocks BlockStore) *Collider {
	if shape.Width <= 0 || shape.Height <= 0 {
		shape = DefaultShape()
	}
	return &Collider{
		position: position,
		shape:    shape,
		blocks:   blocks,
		onGround: isStandingOnSolidBlock(position, shape, blocks),
	}
}

func (c *Collider) IsGrounded() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.onGround
}

func (c *Collider) Move(displacement mgl64.Vec3) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.position, c.lastMove = ResolveMovement(c.position, displacement, c.shape, c.blocks)
	c.onGround = displacement.Y() <= 0 && isStandingOnSolidBlock(c.position, c.shape, c.blocks)
}

func (c *Collider) Position() mgl64.Vec3 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.position
}

// LastMove is the displacement applied by the most recent Move after
// clamping.
func (c *Collider) LastMove() mgl64.Vec3 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastMove
}

func (c *Collider) Shape() Shape {
	return c.shape
}

func (c *Collider) Teleport(position mgl64.Vec3) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.position = position
	c.lastMove = mgl64.Vec3{}
	c.onGround = isStandingOnSolidBlock(position, c.shape, c.blocks)
}

func isStandingOnSolidBlock(pos mgl64.Vec3, shape Shape, blocks BlockStore) bool {
	if blocks == nil {
		return false
	}
	below := shape.AABB(pos).offset(1, -GroundCheckDistance)
	return CollidesWithBlock(below, blocks)
}
