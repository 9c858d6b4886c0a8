package voxel

import (
	"math"
	"sort"
)

// Pos is an integer position, either in voxel or in chunk (brick) space.
type Pos struct {
	X, Y, Z int32
}

// Add returns p + o.
func (p Pos) Add(o Pos) Pos { return Pos{p.X + o.X, p.Y + o.Y, p.Z + o.Z} }

// Shr shifts every component right (arithmetic shift, floors negative values).
func (p Pos) Shr(n uint) Pos { return Pos{p.X >> n, p.Y >> n, p.Z >> n} }

// Chunk returns the chunk key covering the voxel position.
func (p Pos) Chunk() Pos { return p.Shr(BrickShift) }

// Local returns the brick-local part of the voxel position.
func (p Pos) Local() Pos { return Pos{p.X & brickMask, p.Y & brickMask, p.Z & brickMask} }

// Color is a linear RGBA color.
type Color [4]float32

// Palette maps the 256 palette indices to colors. Index 0 is empty.
type Palette [256]Color

// DefaultPalette returns an all opaque white palette.
func DefaultPalette() Palette {
	var p Palette
	for i := range p {
		p[i] = Color{1, 1, 1, 1}
	}
	return p
}

// Map is a sparse voxel volume made of bricks keyed by chunk coordinate.
type Map struct {
	Palette Palette
	chunks  map[Pos]*Brick
}

// NewMap returns an empty map with the default palette.
func NewMap() *Map {
	return &Map{
		Palette: DefaultPalette(),
		chunks:  make(map[Pos]*Brick),
	}
}

// Len returns the number of stored bricks.
func (m *Map) Len() int { return len(m.chunks) }

// Brick returns the brick covering the voxel position, or nil.
func (m *Map) Brick(voxel Pos) *Brick {
	return m.chunks[voxel.Chunk()]
}

// BrickAt returns the brick stored under the chunk key, or nil.
func (m *Map) BrickAt(chunk Pos) *Brick {
	return m.chunks[chunk]
}

// Voxel returns the palette index at the voxel position, 0 when empty.
func (m *Map) Voxel(voxel Pos) uint8 {
	b := m.Brick(voxel)
	if b == nil {
		return 0
	}
	l := voxel.Local()
	return b.At(l.X, l.Y, l.Z)
}

// SetVoxel writes a palette index. Bricks are only created for non-zero values.
func (m *Map) SetVoxel(voxel Pos, v uint8) {
	key := voxel.Chunk()
	b, ok := m.chunks[key]
	if !ok {
		if v == 0 {
			return
		}
		b = new(Brick)
		m.chunks[key] = b
	}
	l := voxel.Local()
	b.Set(l.X, l.Y, l.Z, v)
}

// Prune drops bricks that no longer hold any voxel.
func (m *Map) Prune() {
	for k, b := range m.chunks {
		if b.Empty() {
			delete(m.chunks, k)
		}
	}
}

// Keys returns the chunk keys in Morton order.
func (m *Map) Keys() []Pos {
	keys := make([]Pos, 0, len(m.chunks))
	for k := range m.chunks {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		return mortonKey(keys[i]) < mortonKey(keys[j])
	})
	return keys
}

// Bounds returns the minimum and maximum chunk keys. ok is false for an empty map.
func (m *Map) Bounds() (min, max Pos, ok bool) {
	if len(m.chunks) == 0 {
		return min, max, false
	}
	min = Pos{math.MaxInt32, math.MaxInt32, math.MaxInt32}
	max = Pos{math.MinInt32, math.MinInt32, math.MinInt32}
	for k := range m.chunks {
		min = Pos{min32(min.X, k.X), min32(min.Y, k.Y), min32(min.Z, k.Z)}
		max = Pos{max32(max.X, k.X), max32(max.Y, k.Y), max32(max.Z, k.Z)}
	}
	return min, max, true
}

// HasBricksInRegion reports whether any brick intersects the cube of size voxels
// starting at pos. It scans whichever is smaller: the stored keys or the chunk
// range covering the region.
func (m *Map) HasBricksInRegion(pos Pos, size uint32) bool {
	if size == 0 {
		return false
	}
	// the far corner is computed in 64 bits; shifted back to chunks it fits
	// in 32 bits for any position and size
	ext := int64(size) - 1
	lo := pos.Chunk()
	hi := Pos{
		X: int32((int64(pos.X) + ext) >> BrickShift),
		Y: int32((int64(pos.Y) + ext) >> BrickShift),
		Z: int32((int64(pos.Z) + ext) >> BrickShift),
	}

	dx := int64(max32(hi.X-lo.X+1, 0))
	dy := int64(max32(hi.Y-lo.Y+1, 0))
	dz := int64(max32(hi.Z-lo.Z+1, 0))
	// volume stops growing once it passes the key count
	n := int64(len(m.chunks))
	volume := dx
	if volume <= n {
		volume *= dy
	}
	if volume <= n {
		volume *= dz
	}

	if n < volume {
		for k := range m.chunks {
			if k.X >= lo.X && k.X <= hi.X &&
				k.Y >= lo.Y && k.Y <= hi.Y &&
				k.Z >= lo.Z && k.Z <= hi.Z {
				return true
			}
		}
		return false
	}
	for x := lo.X; x <= hi.X; x++ {
		for y := lo.Y; y <= hi.Y; y++ {
			for z := lo.Z; z <= hi.Z; z++ {
				if _, ok := m.chunks[Pos{x, y, z}]; ok {
					return true
				}
			}
		}
	}
	return false
}

// ShiftToPositive translates every chunk so that no coordinate is negative.
func (m *Map) ShiftToPositive() {
	min, _, ok := m.Bounds()
	if !ok {
		return
	}
	off := Pos{max32(-min.X, 0), max32(-min.Y, 0), max32(-min.Z, 0)}
	if off == (Pos{}) {
		return
	}
	shifted := make(map[Pos]*Brick, len(m.chunks))
	for k, b := range m.chunks {
		shifted[k.Add(off)] = b
	}
	m.chunks = shifted
}

// RequiredExp returns the smallest even exponent (at least 2) whose root cube
// holds every brick. The map must already be shifted to positive.
func (m *Map) RequiredExp() uint32 {
	exp := uint32(2)
	_, max, ok := m.Bounds()
	if !ok {
		return exp
	}
	top := max32(max.X, max32(max.Y, max.Z))
	need := (int64(top) + 1) << BrickShift
	for exp < MaxExp && int64(1)<<exp < need {
		exp += 2
	}
	return exp
}

func min32(a, b int32) int32 {
	if a < b {
		return a
	}
	return b
}

func max32(a, b int32) int32 {
	if a > b {
		return a
	}
	return b
}
