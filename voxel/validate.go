package voxel

import (
	"github.com/aukilabs/go-tooling/pkg/errors"
)

// Validate checks that every reachable node is consistent: pointers stay in
// bounds, leaf runs hold popcount(mask) non-zero bytes, internal runs hold
// popcount(mask) non-empty children and leaves only appear at scale 2.
func (t *Tree) Validate() error {
	if t.Exp%2 != 0 || t.Exp < 2 || t.Exp > MaxExp {
		return errors.New("invalid tree exponent").
			WithType(ErrTypeInputFormat).
			WithTag("exp", t.Exp)
	}
	if len(t.Nodes) == 0 {
		return errors.New("tree has no root").
			WithType(ErrTypeInputFormat)
	}
	return t.validate(t.Nodes[0], t.Exp, 0)
}

func (t *Tree) validate(n Node, scale uint32, index int) error {
	if n.Empty() {
		return nil
	}
	ptr := int(n.Ptr())
	count := n.Count()

	if n.IsLeaf() != (scale == 2) {
		return errors.New("leaf flag at wrong depth").
			WithType(ErrTypeInputFormat).
			WithTag("node", index).
			WithTag("scale", scale)
	}

	if n.IsLeaf() {
		if ptr+count > len(t.Leaves) {
			return errors.New("leaf run out of bounds").
				WithType(ErrTypeInputFormat).
				WithTag("node", index).
				WithTag("ptr", ptr).
				WithTag("count", count)
		}
		for i, v := range t.Leaves[ptr : ptr+count] {
			if v == 0 {
				return errors.New("empty cell in leaf run").
					WithType(ErrTypeInputFormat).
					WithTag("node", index).
					WithTag("offset", ptr+i)
			}
		}
		return nil
	}

	// children always follow the placeholder root slot
	if ptr == 0 || ptr+count > len(t.Nodes) {
		return errors.New("child run out of bounds").
			WithType(ErrTypeInputFormat).
			WithTag("node", index).
			WithTag("ptr", ptr).
			WithTag("count", count)
	}
	for i := 0; i < count; i++ {
		child := t.Nodes[ptr+i]
		if child.Empty() {
			return errors.New("empty child referenced").
				WithType(ErrTypeInputFormat).
				WithTag("node", ptr+i)
		}
		if err := t.validate(child, scale-2, ptr+i); err != nil {
			return err
		}
	}
	return nil
}
