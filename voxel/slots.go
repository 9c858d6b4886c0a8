package voxel

// Offset is a child slot (or tile cell) offset in units of the child size.
type Offset struct {
	X, Y, Z int32
}

// ChildSlots maps a 6-bit slot index to its offset: bits 0-1 select X,
// bits 2-3 select Z and bits 4-5 select Y. The traversal kernel reads masks
// with this exact layout. Leaf nodes index their 4x4x4 tile cells the same way.
var ChildSlots = [64]Offset{
	{X: 0, Y: 0, Z: 0}, //  0
	{X: 1, Y: 0, Z: 0}, //  1
	{X: 2, Y: 0, Z: 0}, //  2
	{X: 3, Y: 0, Z: 0}, //  3
	{X: 0, Y: 0, Z: 1}, //  4
	{X: 1, Y: 0, Z: 1}, //  5
	{X: 2, Y: 0, Z: 1}, //  6
	{X: 3, Y: 0, Z: 1}, //  7
	{X: 0, Y: 0, Z: 2}, //  8
	{X: 1, Y: 0, Z: 2}, //  9
	{X: 2, Y: 0, Z: 2}, // 10
	{X: 3, Y: 0, Z: 2}, // 11
	{X: 0, Y: 0, Z: 3}, // 12
	{X: 1, Y: 0, Z: 3}, // 13
	{X: 2, Y: 0, Z: 3}, // 14
	{X: 3, Y: 0, Z: 3}, // 15
	{X: 0, Y: 1, Z: 0}, // 16
	{X: 1, Y: 1, Z: 0}, // 17
	{X: 2, Y: 1, Z: 0}, // 18
	{X: 3, Y: 1, Z: 0}, // 19
	{X: 0, Y: 1, Z: 1}, // 20
	{X: 1, Y: 1, Z: 1}, // 21
	{X: 2, Y: 1, Z: 1}, // 22
	{X: 3, Y: 1, Z: 1}, // 23
	{X: 0, Y: 1, Z: 2}, // 24
	{X: 1, Y: 1, Z: 2}, // 25
	{X: 2, Y: 1, Z: 2}, // 26
	{X: 3, Y: 1, Z: 2}, // 27
	{X: 0, Y: 1, Z: 3}, // 28
	{X: 1, Y: 1, Z: 3}, // 29
	{X: 2, Y: 1, Z: 3}, // 30
	{X: 3, Y: 1, Z: 3}, // 31
	{X: 0, Y: 2, Z: 0}, // 32
	{X: 1, Y: 2, Z: 0}, // 33
	{X: 2, Y: 2, Z: 0}, // 34
	{X: 3, Y: 2, Z: 0}, // 35
	{X: 0, Y: 2, Z: 1}, // 36
	{X: 1, Y: 2, Z: 1}, // 37
	{X: 2, Y: 2, Z: 1}, // 38
	{X: 3, Y: 2, Z: 1}, // 39
	{X: 0, Y: 2, Z: 2}, // 40
	{X: 1, Y: 2, Z: 2}, // 41
	{X: 2, Y: 2, Z: 2}, // 42
	{X: 3, Y: 2, Z: 2}, // 43
	{X: 0, Y: 2, Z: 3}, // 44
	{X: 1, Y: 2, Z: 3}, // 45
	{X: 2, Y: 2, Z: 3}, // 46
	{X: 3, Y: 2, Z: 3}, // 47
	{X: 0, Y: 3, Z: 0}, // 48
	{X: 1, Y: 3, Z: 0}, // 49
	{X: 2, Y: 3, Z: 0}, // 50
	{X: 3, Y: 3, Z: 0}, // 51
	{X: 0, Y: 3, Z: 1}, // 52
	{X: 1, Y: 3, Z: 1}, // 53
	{X: 2, Y: 3, Z: 1}, // 54
	{X: 3, Y: 3, Z: 1}, // 55
	{X: 0, Y: 3, Z: 2}, // 56
	{X: 1, Y: 3, Z: 2}, // 57
	{X: 2, Y: 3, Z: 2}, // 58
	{X: 3, Y: 3, Z: 2}, // 59
	{X: 0, Y: 3, Z: 3}, // 60
	{X: 1, Y: 3, Z: 3}, // 61
	{X: 2, Y: 3, Z: 3}, // 62
	{X: 3, Y: 3, Z: 3}, // 63
}

// SlotIndex returns the slot index of the offset (each component 0..3).
func SlotIndex(o Offset) int {
	return int(o.X | o.Z<<2 | o.Y<<4)
}
