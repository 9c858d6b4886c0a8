package voxel

import (
	"encoding/binary"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/stretchr/testify/require"
)

func TestCompressRoundTrip(t *testing.T) {
	raw := EncodeTree(Compile(randomMap(t, 1500, 64), 6))

	for _, comp := range []Compression{CompNone, CompZlib, CompZstd} {
		t.Run(comp.String(), func(t *testing.T) {
			data, err := Compress(raw, comp)
			require.NoError(t, err)
			require.Equal(t, "VXTZ", string(data[:4]))
			require.Equal(t, uint8(comp), data[5])

			out, got, err := Decompress(data)
			require.NoError(t, err)
			require.Equal(t, comp, got)
			require.Equal(t, raw, out)
		})
	}
}

func TestCompressBest(t *testing.T) {
	raw := make([]byte, 64*1024)
	for i := range raw {
		raw[i] = byte(i % 7)
	}

	data, err := Compress(raw, CompBest)
	require.NoError(t, err)
	require.NotEqual(t, uint8(CompBest), data[5])
	require.Less(t, len(data), len(raw))

	for _, comp := range []Compression{CompNone, CompZlib, CompZstd} {
		other, err := Compress(raw, comp)
		require.NoError(t, err)
		require.LessOrEqual(t, len(data), len(other))
	}

	out, _, err := Decompress(data)
	require.NoError(t, err)
	require.Equal(t, raw, out)
}

func TestDecompressCorruption(t *testing.T) {
	raw := EncodeTree(Compile(randomMap(t, 200, 16), 4))

	for _, comp := range []Compression{CompNone, CompZlib, CompZstd} {
		t.Run(comp.String(), func(t *testing.T) {
			data, err := Compress(raw, comp)
			require.NoError(t, err)

			flipped := append([]byte(nil), data...)
			flipped[len(flipped)-3] ^= 0x5a
			_, _, err = Decompress(flipped)
			require.Error(t, err)
			require.Equal(t, ErrTypeCorrupt, errors.Type(err))

			_, _, err = Decompress(data[:len(data)-1])
			require.Error(t, err)
			require.Equal(t, ErrTypeCorrupt, errors.Type(err))
		})
	}

	t.Run("bad header", func(t *testing.T) {
		_, _, err := Decompress([]byte("VXTZ"))
		require.Equal(t, ErrTypeCorrupt, errors.Type(err))

		data, err := Compress(raw, CompNone)
		require.NoError(t, err)
		data[5] = 42
		_, _, err = Decompress(data)
		require.Equal(t, ErrTypeCorrupt, errors.Type(err))
	})
}

func withRawLen(data []byte, n uint32) []byte {
	out := append([]byte(nil), data...)
	binary.LittleEndian.PutUint32(out[6:10], n)
	return out
}

func allocated(f func()) uint64 {
	var before, after runtime.MemStats
	runtime.ReadMemStats(&before)
	f()
	runtime.ReadMemStats(&after)
	return after.TotalAlloc - before.TotalAlloc
}

func TestDecompressOversizedLength(t *testing.T) {
	for _, comp := range []Compression{CompNone, CompZlib, CompZstd} {
		t.Run(comp.String(), func(t *testing.T) {
			data, err := Compress([]byte("hello"), comp)
			require.NoError(t, err)
			forged := withRawLen(data, 0xFFFFFFF0)

			var derr error
			n := allocated(func() { _, _, derr = Decompress(forged) })
			require.Error(t, derr)
			require.Equal(t, ErrTypeCorrupt, errors.Type(derr))
			require.Less(t, n, uint64(64<<20))
		})
	}
}

func TestDecompressExpansionIsBounded(t *testing.T) {
	raw := make([]byte, 32<<20)

	for _, comp := range []Compression{CompZlib, CompZstd} {
		t.Run(comp.String(), func(t *testing.T) {
			data, err := Compress(raw, comp)
			require.NoError(t, err)
			forged := withRawLen(data, 16)

			var derr error
			n := allocated(func() { _, _, derr = Decompress(forged) })
			require.Error(t, derr)
			require.Equal(t, ErrTypeCorrupt, errors.Type(derr))
			require.Less(t, n, uint64(len(raw)))
		})
	}
}

func TestParseCompression(t *testing.T) {
	for name, want := range map[string]Compression{
		"":     CompZstd,
		"none": CompNone,
		"zlib": CompZlib,
		"zstd": CompZstd,
		"best": CompBest,
	} {
		got, err := ParseCompression(name)
		require.NoError(t, err)
		require.Equal(t, want, got)
	}

	_, err := ParseCompression("lz4")
	require.Error(t, err)
}

func TestSaveLoadTree(t *testing.T) {
	tree := Compile(randomMap(t, 500, 32), 6, WithLeafDedup())
	path := filepath.Join(t.TempDir(), "scene.vxt")

	require.NoError(t, SaveTree(tree, path, CompBest))
	loaded, err := LoadTree(path)
	require.NoError(t, err)
	require.Equal(t, tree, loaded)

	_, err = LoadTree(filepath.Join(t.TempDir(), "missing.vxt"))
	require.Error(t, err)
}
