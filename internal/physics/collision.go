package physics

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

type BlockStore interface {
	IsSolid(x, y, z int) bool
}

// Shape is an upright box centred on the actor position in X/Z with its
// base at the position's Y.
type Shape struct {
	Width  float64
	Height float64
}

func DefaultShape() Shape {
	return Shape{Width: DefaultActorWidth, Height: DefaultActorHeight}
}

type AABB struct {
	Min mgl64.Vec3
	Max mgl64.Vec3
}

func (s Shape) AABB(pos mgl64.Vec3) AABB {
	half := s.Width / 2.0
	return AABB{
		Min: mgl64.Vec3{pos.X() - half, pos.Y(), pos.Z() - half},
		Max: mgl64.Vec3{pos.X() + half, pos.Y() + s.Height, pos.Z() + half},
	}
}

func (a AABB) offset(axis int, delta float64) AABB {
	a.Min[axis] += delta
	a.Max[axis] += delta
	return a
}

func CollidesWithBlock(box AABB, blocks BlockStore) bool {
	if blocks == nil {
		return false
	}

	lo := [3]int{floorForMin(box.Min[0]), floorForMin(box.Min[1]), floorForMin(box.Min[2])}
	hi := [3]int{floorForMax(box.Max[0]), floorForMax(box.Max[1]), floorForMax(box.Max[2])}

	for y := lo[1]; y <= hi[1]; y++ {
		for x := lo[0]; x <= hi[0]; x++ {
			for z := lo[2]; z <= hi[2]; z++ {
				if !blocks.IsSolid(x, y, z) {
					continue
				}
				if intersects(box, blockAABB(x, y, z)) {
					return true
				}
			}
		}
	}
	return false
}

// ResolveMovement sweeps the shape from pos by displacement one axis at a
// time (Y, X, Z) and returns the final position and the displacement that
// was actually applied.
func ResolveMovement(pos, displacement mgl64.Vec3, shape Shape, blocks BlockStore) (mgl64.Vec3, mgl64.Vec3) {
	newPos := pos
	var applied mgl64.Vec3

	for _, axis := range [3]int{1, 0, 2} {
		allowed := resolveAxis(shape.AABB(newPos), axis, displacement[axis], blocks)
		newPos[axis] += allowed
		applied[axis] = allowed
	}
	return newPos, applied
}

func resolveAxis(box AABB, axis int, delta float64, blocks BlockStore) float64 {
	if blocks == nil || nearlyZero(delta) {
		return delta
	}

	// The two axes the sweep does not travel along.
	a, b := (axis+1)%3, (axis+2)%3
	minA, maxA := floorForMin(box.Min[a]), floorForMax(box.Max[a])
	minB, maxB := floorForMin(box.Min[b]), floorForMax(box.Max[b])

	allowed := delta
	if delta > 0 {
		start := int(math.Floor(box.Max[axis]))
		end := int(math.Floor(box.Max[axis] + delta))
		for c := start; c <= end; c++ {
			for i := minA; i <= maxA; i++ {
				for j := minB; j <= maxB; j++ {
					if !blocks.IsSolid(cellAt(axis, c, a, i, b, j)) {
						continue
					}
					candidate := float64(c) - box.Max[axis]
					if candidate < allowed {
						allowed = candidate
					}
				}
			}
		}
	} else {
		start := int(math.Floor(box.Min[axis] + delta))
		end := int(math.Floor(box.Min[axis] - CollisionAxisTolerance))
		for c := end; c >= start; c-- {
			for i := minA; i <= maxA; i++ {
				for j := minB; j <= maxB; j++ {
					if !blocks.IsSolid(cellAt(axis, c, a, i, b, j)) {
						continue
					}
					candidate := float64(c+1) - box.Min[axis]
					if candidate > allowed {
						allowed = candidate
					}
				}
			}
		}
	}

	if nearlyEqual(allowed, delta) {
		return delta
	}
	return allowed
}

func cellAt(axis, c, a, i, b, j int) (int, int, int) {
	var cell [3]int
	cell[axis] = c
	cell[a] = i
	cell[b] = j
	return cell[0], cell[1], cell[2]
}

func blockAABB(x, y, z int) AABB {
	return AABB{
		Min: mgl64.Vec3{float64(x), float64(y), float64(z)},
		Max: mgl64.Vec3{float64(x + 1), float64(y + 1), float64(z + 1)},
	}
}

func floorForMin(v float64) int {
	return int(math.Floor(v + CollisionAxisTolerance))
}

func floorForMax(v float64) int {
	return int(math.Floor(v - CollisionAxisTolerance))
}

func intersects(a, b AABB) bool {
	return a.Min[0] < b.Max[0] && a.Max[0] > b.Min[0] &&
		a.Min[1] < b.Max[1] && a.Max[1] > b.Min[1] &&
		a.Min[2] < b.Max[2] && a.Max[2] > b.Min[2]
}

func nearlyZero(v float64) bool {
	return math.Abs(v) <= CollisionAxisTolerance
}

func nearlyEqual(a, b float64) bool {
	return math.Abs(a-b) <= CollisionAxisTolerance
}
