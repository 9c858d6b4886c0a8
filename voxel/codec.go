package voxel

import (
	"bytes"
	"encoding/binary"

	"github.com/aukilabs/go-tooling/pkg/errors"
)

// EncodeTree serializes the tree:
//
//	"VXTR" | ver u8 | exp u32 | palette 256x4 f32 | node bytes u32 | nodes | leaves
//
// All fields are little-endian; nodes are 16-byte records.
func EncodeTree(t *Tree) []byte {
	nodeBytes := len(t.Nodes) * NodeSize
	var buf bytes.Buffer
	buf.Grow(treeHeaderSize + nodeBytes + len(t.Leaves))
	buf.WriteString(treeMagic)
	_ = binary.Write(&buf, binary.LittleEndian, uint8(treeVersion))
	_ = binary.Write(&buf, binary.LittleEndian, t.Exp)
	_ = binary.Write(&buf, binary.LittleEndian, &t.Palette)
	_ = binary.Write(&buf, binary.LittleEndian, uint32(nodeBytes))
	_ = binary.Write(&buf, binary.LittleEndian, t.Nodes)
	_, _ = buf.Write(t.Leaves)
	return buf.Bytes()
}

// ParseTreeHeader reads the header of an encoded tree and returns it along
// with the bytes that follow the node byte count.
func ParseTreeHeader(data []byte) (TreeHeader, []byte, error) {
	var hdr TreeHeader
	if len(data) < 4 || string(data[:4]) != treeMagic {
		return hdr, nil, errors.New("not a voxel tree").
			WithType(ErrTypeInputFormat)
	}
	if len(data) < treeHeaderSize {
		return hdr, nil, errors.New("truncated tree header").
			WithType(ErrTypeInputFormat).
			WithTag("size", len(data))
	}
	hdr.Ver = data[4]
	if hdr.Ver != treeVersion {
		return hdr, nil, errors.New("unsupported tree version").
			WithType(ErrTypeInputFormat).
			WithTag("version", hdr.Ver)
	}
	hdr.Exp = binary.LittleEndian.Uint32(data[5:9])
	hdr.NodeBytes = binary.LittleEndian.Uint32(data[treeHeaderSize-4 : treeHeaderSize])
	return hdr, data[treeHeaderSize:], nil
}

// DecodeTree parses bytes produced by EncodeTree and validates the result.
func DecodeTree(data []byte) (*Tree, error) {
	hdr, body, err := ParseTreeHeader(data)
	if err != nil {
		return nil, err
	}
	if hdr.NodeBytes%NodeSize != 0 || uint64(hdr.NodeBytes) > uint64(len(body)) {
		return nil, errors.New("invalid node byte count").
			WithType(ErrTypeInputFormat).
			WithTag("node_bytes", hdr.NodeBytes).
			WithTag("available", len(body))
	}

	t := &Tree{Exp: hdr.Exp}
	pr := bytes.NewReader(data[9 : 9+paletteBytes])
	if err := binary.Read(pr, binary.LittleEndian, &t.Palette); err != nil {
		return nil, errors.New("reading palette failed").
			WithType(ErrTypeInputFormat).
			Wrap(err)
	}

	t.Nodes = make([]Node, hdr.NodeBytes/NodeSize)
	if err := binary.Read(bytes.NewReader(body[:hdr.NodeBytes]), binary.LittleEndian, t.Nodes); err != nil {
		return nil, errors.New("reading nodes failed").
			WithType(ErrTypeInputFormat).
			Wrap(err)
	}
	if rest := body[hdr.NodeBytes:]; len(rest) > 0 {
		t.Leaves = append([]byte(nil), rest...)
	}

	if err := t.Validate(); err != nil {
		return nil, err
	}
	return t, nil
}
