package voxel

const (
	treeMagic   = "VXTR"
	treeVersion = 1
	// paletteBytes is the encoded palette size: 256 RGBA float32 entries.
	paletteBytes = 256 * 4 * 4
	// treeHeaderSize covers magic, version, exp, palette and the node byte count.
	treeHeaderSize = 4 + 1 + 4 + paletteBytes + 4
)

// TreeHeader holds the fixed fields in front of the node and leaf arrays.
// The node byte count is derived from the node array when encoding.
type TreeHeader struct {
	Ver       uint8
	Exp       uint32
	NodeBytes uint32
}
