package voxel

import (
	"bytes"

	xxhash "github.com/cespare/xxhash/v2"
)

// leafIndex finds previously written leaf runs by content. It lives for one
// compilation only.
type leafIndex struct {
	offsets map[uint64]int
}

func newLeafIndex() *leafIndex {
	return &leafIndex{offsets: make(map[uint64]int, 1024)}
}

func (x *leafIndex) lookup(leaves, run []byte) (int, bool) {
	off, ok := x.offsets[xxhash.Sum64(run)]
	if !ok || off+len(run) > len(leaves) {
		return 0, false
	}
	// hash collisions are verified against the stored bytes
	if !bytes.Equal(leaves[off:off+len(run)], run) {
		return 0, false
	}
	return off, true
}

func (x *leafIndex) add(run []byte, off int) {
	x.offsets[xxhash.Sum64(run)] = off
}
