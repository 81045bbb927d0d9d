package world

import (
	"fmt"
	"sync"

	"github.com/Versifine/stride/internal/config"
)

type BlockPos struct {
	X int
	Y int
	Z int
}

// Grid is a sparse set of solid unit blocks.
type Grid struct {
	mu    sync.RWMutex
	solid map[BlockPos]struct{}
}

func NewGrid() *Grid {
	return &Grid{solid: make(map[BlockPos]struct{})}
}

// FromLevel builds a grid from floor slabs, boxes and single blocks.
func FromLevel(level config.LevelConfig) (*Grid, error) {
	g := NewGrid()
	for i, f := range level.Floors {
		if f.MinX > f.MaxX || f.MinZ > f.MaxZ {
			return nil, fmt.Errorf("level floor %d has inverted bounds", i)
		}
		g.AddFloor(f.MinX, f.MaxX, f.MinZ, f.MaxZ, f.Y)
	}
	for i, b := range level.Boxes {
		if b.Min[0] > b.Max[0] || b.Min[1] > b.Max[1] || b.Min[2] > b.Max[2] {
			return nil, fmt.Errorf("level box %d has inverted bounds", i)
		}
		g.AddBox(
			BlockPos{X: b.Min[0], Y: b.Min[1], Z: b.Min[2]},
			BlockPos{X: b.Max[0], Y: b.Max[1], Z: b.Max[2]},
		)
	}
	for _, p := range level.Blocks {
		g.SetSolid(p[0], p[1], p[2])
	}
	return g, nil
}

func (g *Grid) IsSolid(x, y, z int) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	_, ok := g.solid[BlockPos{X: x, Y: y, Z: z}]
	return ok
}

func (g *Grid) SetSolid(x, y, z int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.solid == nil {
		g.solid = make(map[BlockPos]struct{})
	}
	g.solid[BlockPos{X: x, Y: y, Z: z}] = struct{}{}
}

func (g *Grid) Clear(x, y, z int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.solid, BlockPos{X: x, Y: y, Z: z})
}

func (g *Grid) AddFloor(minX, maxX, minZ, maxZ, y int) {
	g.AddBox(BlockPos{X: minX, Y: y, Z: minZ}, BlockPos{X: maxX, Y: y, Z: maxZ})
}

// AddBox fills every block between lo and hi inclusive.
func (g *Grid) AddBox(lo, hi BlockPos) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.solid == nil {
		g.solid = make(map[BlockPos]struct{})
	}
	for y := lo.Y; y <= hi.Y; y++ {
		for x := lo.X; x <= hi.X; x++ {
			for z := lo.Z; z <= hi.Z; z++ {
				g.solid[BlockPos{X: x, Y: y, Z: z}] = struct{}{}
			}
		}
	}
}

func (g *Grid) Count() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.solid)
}
