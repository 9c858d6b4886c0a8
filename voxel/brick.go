package voxel

const (
	// BrickSize is the side of a brick in voxels.
	BrickSize = 8
	// BrickShift converts voxel coordinates to chunk coordinates.
	BrickShift = 3
	brickMask  = BrickSize - 1
	brickCells = BrickSize * BrickSize * BrickSize
)

// Brick is a dense 8x8x8 block of palette indices, cells indexed x + z*8 + y*64.
// A zero cell is empty.
type Brick [brickCells]uint8

// CellIndex returns the index of the brick-local position (each component 0..7).
func CellIndex(x, y, z int32) int {
	return int(x + z*BrickSize + y*BrickSize*BrickSize)
}

// At returns the cell at the brick-local position.
func (b *Brick) At(x, y, z int32) uint8 {
	return b[CellIndex(x, y, z)]
}

// Set writes the cell at the brick-local position.
func (b *Brick) Set(x, y, z int32, v uint8) {
	b[CellIndex(x, y, z)] = v
}

// Empty reports whether every cell is zero.
func (b *Brick) Empty() bool {
	for _, c := range b {
		if c != 0 {
			return false
		}
	}
	return true
}

// Count returns the number of non-zero cells.
func (b *Brick) Count() int {
	n := 0
	for _, c := range b {
		if c != 0 {
			n++
		}
	}
	return n
}
