package voxel

// mortonBias moves signed chunk keys into the 21-bit unsigned range of
// interleave.
const mortonBias = 1 << 20

// mortonKey orders chunk keys along a Z-curve with x in the lowest bit.
func mortonKey(p Pos) uint64 {
	return interleave(uint32(p.X+mortonBias)) |
		interleave(uint32(p.Y+mortonBias))<<1 |
		interleave(uint32(p.Z+mortonBias))<<2
}

// interleave spreads the low 21 bits of v so that bit i lands on bit 3i.
func interleave(v uint32) uint64 {
	x := uint64(v) & 0x1fffff
	x = (x | x<<32) & 0x1f00000000ffff
	x = (x | x<<16) & 0x1f0000ff0000ff
	x = (x | x<<8) & 0x100f00f00f00f00f
	x = (x | x<<4) & 0x10c30c30c30c30c3
	x = (x | x<<2) & 0x1249249249249249
	return x
}
