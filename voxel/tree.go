package voxel

import (
	"fmt"
	"math"
	"math/bits"
)

const (
	// MaxExp is the largest supported root exponent.
	MaxExp = 30
	// NodeSize is the encoded size of a Node in bytes.
	NodeSize = 16

	maxPointer = 1<<31 - 1
)

// Node is one element of the compiled 64-ary tree. Its layout is read as-is
// by the traversal kernel:
//
//	[ child_ptr (31) | is_leaf (1) ] [ mask_low ] [ mask_high ] [ pad ]
//
// A leaf points at popcount(mask) palette indices in the leaf array, an
// internal node at popcount(mask) children in the node array, both in
// ascending bit order. A zero mask is the empty sentinel.
type Node struct {
	ChildPtrIsLeaf uint32
	MaskLow        uint32
	MaskHigh       uint32
	Pad            uint32
}

func newNode(mask uint64, ptr int, leaf bool) Node {
	if ptr > maxPointer {
		panic(fmt.Sprintf("voxel: child pointer %d does not fit in 31 bits", ptr))
	}
	n := Node{
		ChildPtrIsLeaf: uint32(ptr) << 1,
		MaskLow:        uint32(mask),
		MaskHigh:       uint32(mask >> 32),
	}
	if leaf {
		n.ChildPtrIsLeaf |= 1
	}
	return n
}

// Mask returns the 64-bit occupancy mask.
func (n Node) Mask() uint64 { return uint64(n.MaskHigh)<<32 | uint64(n.MaskLow) }

// IsLeaf reports whether the pointer indexes the leaf array.
func (n Node) IsLeaf() bool { return n.ChildPtrIsLeaf&1 != 0 }

// Ptr returns the child pointer.
func (n Node) Ptr() uint32 { return n.ChildPtrIsLeaf >> 1 }

// Empty reports whether the node is the empty sentinel.
func (n Node) Empty() bool { return n.MaskLow == 0 && n.MaskHigh == 0 }

// Count returns the number of occupied slots.
func (n Node) Count() int { return bits.OnesCount64(n.Mask()) }

// Tree is a compiled voxel tree. The root is Nodes[0] and covers a cube of
// side 2^Exp voxels.
type Tree struct {
	Nodes   []Node
	Leaves  []byte
	Palette Palette
	Exp     uint32
}

// Root returns the root node.
func (t *Tree) Root() Node {
	if len(t.Nodes) == 0 {
		return Node{}
	}
	return t.Nodes[0]
}

// CellSize returns 2^-Exp, the factor mapping world space into tree space.
func (t *Tree) CellSize() float32 {
	return math.Float32frombits((127 - t.Exp) << 23)
}

// Sizes returns the byte sizes of the node and leaf arrays.
func (t *Tree) Sizes() (nodeBytes, leafBytes int) {
	return len(t.Nodes) * NodeSize, len(t.Leaves)
}

// Stats counts the work done by a Compiler.
type Stats struct {
	Visited    int // GenerateTree calls
	Pruned     int // regions skipped without descending
	LeafNodes  int
	DedupHits  int
	SavedBytes int
}

// CompileOption configures a Compiler.
type CompileOption func(*Compiler)

// WithLeafDedup makes identical leaf runs share storage. Leaf indices stop
// being unique per leaf node.
func WithLeafDedup() CompileOption {
	return func(c *Compiler) {
		c.dedup = newLeafIndex()
	}
}

// Compiler turns a Map into a Tree. It owns the node and leaf arrays while
// compiling and must not be shared between goroutines.
type Compiler struct {
	m      *Map
	nodes  []Node
	leaves []byte
	dedup  *leafIndex
	stats  Stats
}

// NewCompiler returns a compiler reading from m.
func NewCompiler(m *Map, opts ...CompileOption) *Compiler {
	c := &Compiler{
		m:     m,
		nodes: make([]Node, 1, 1+m.Len()),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Compile compiles m with a root cube of side 2^exp.
func Compile(m *Map, exp uint32, opts ...CompileOption) *Tree {
	return NewCompiler(m, opts...).Compile(exp)
}

// Compile builds the tree. It panics when exp is odd or out of range, when
// the map holds negative chunk keys, or when a brick lies outside the root cube.
func (c *Compiler) Compile(exp uint32) *Tree {
	checkCompile(c.m, exp)
	root := c.GenerateTree(exp, Pos{})
	c.nodes[0] = root
	return &Tree{
		Nodes:   c.nodes,
		Leaves:  c.leaves,
		Palette: c.m.Palette,
		Exp:     exp,
	}
}

// Stats returns the counters of the last compilation.
func (c *Compiler) Stats() Stats { return c.stats }

func checkCompile(m *Map, exp uint32) {
	if exp%2 != 0 || exp < 2 || exp > MaxExp {
		panic(fmt.Sprintf("voxel: invalid tree exponent %d", exp))
	}
	min, max, ok := m.Bounds()
	if !ok {
		return
	}
	if min.X < 0 || min.Y < 0 || min.Z < 0 {
		panic(fmt.Sprintf("voxel: negative chunk key %v, shift the map to positive first", min))
	}
	side := int64(1) << exp
	top := int64(max32(max.X, max32(max.Y, max.Z)))
	if (top+1)<<BrickShift > side {
		panic(fmt.Sprintf("voxel: chunk %v outside the root cube of side %d", max, side))
	}
}

// GenerateTree compiles the cube of side 2^scale at pos and returns its node.
// Children are appended to the node array, leaf payloads to the leaf array.
func (c *Compiler) GenerateTree(scale uint32, pos Pos) Node {
	c.stats.Visited++
	if scale == 2 {
		return c.leaf(pos)
	}

	if !c.m.HasBricksInRegion(pos, 1<<scale) {
		c.stats.Pruned++
		return Node{}
	}

	child := scale - 2
	var children [64]Node
	var mask uint64
	n := 0
	for i, o := range ChildSlots {
		cp := Pos{pos.X + o.X<<child, pos.Y + o.Y<<child, pos.Z + o.Z<<child}
		ch := c.GenerateTree(child, cp)
		if ch.Empty() {
			continue
		}
		mask |= 1 << uint(i)
		children[n] = ch
		n++
	}
	ptr := len(c.nodes)
	c.nodes = append(c.nodes, children[:n]...)
	return newNode(mask, ptr, false)
}

// leaf packs the 4x4x4 tile at pos.
func (c *Compiler) leaf(pos Pos) Node {
	b := c.m.Brick(pos)
	if b == nil {
		return Node{}
	}
	l := pos.Local()
	var buf [64]byte
	run := buf[:0]
	var mask uint64
	for i, o := range ChildSlots {
		v := b.At(l.X+o.X, l.Y+o.Y, l.Z+o.Z)
		if v == 0 {
			continue
		}
		mask |= 1 << uint(i)
		run = append(run, v)
	}
	if mask == 0 {
		return Node{}
	}
	c.stats.LeafNodes++
	return newNode(mask, c.appendLeaves(run), true)
}

func (c *Compiler) appendLeaves(run []byte) int {
	if c.dedup != nil && len(run) > 0 {
		if off, ok := c.dedup.lookup(c.leaves, run); ok {
			c.stats.DedupHits++
			c.stats.SavedBytes += len(run)
			return off
		}
		c.dedup.add(run, len(c.leaves))
	}
	off := len(c.leaves)
	c.leaves = append(c.leaves, run...)
	return off
}

// Expand walks the tree back into a map. The tree must be valid.
func (t *Tree) Expand() *Map {
	m := NewMap()
	m.Palette = t.Palette
	t.expand(m, t.Root(), t.Exp, Pos{})
	return m
}

func (t *Tree) expand(m *Map, n Node, scale uint32, pos Pos) {
	if n.Empty() {
		return
	}
	ptr := int(n.Ptr())
	mask := n.Mask()
	k := 0
	if n.IsLeaf() {
		for i, o := range ChildSlots {
			if mask&(1<<uint(i)) == 0 {
				continue
			}
			m.SetVoxel(Pos{pos.X + o.X, pos.Y + o.Y, pos.Z + o.Z}, t.Leaves[ptr+k])
			k++
		}
		return
	}
	child := scale - 2
	for i, o := range ChildSlots {
		if mask&(1<<uint(i)) == 0 {
			continue
		}
		cp := Pos{pos.X + o.X<<child, pos.Y + o.Y<<child, pos.Z + o.Z<<child}
		t.expand(m, t.Nodes[ptr+k], child, cp)
		k++
	}
}
