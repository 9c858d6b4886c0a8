package utils

import (
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/aukilabs/go-tooling/pkg/logs"

	"github.com/voxelsplace/voxtree/api"
	"github.com/voxelsplace/voxtree/internal/config"
	"github.com/voxelsplace/voxtree/voxel"
)

// NoiseSide is the edge length in voxels of generated noise volumes.
const NoiseSide = 64

// generateNoiseMap fills percentage of a NoiseSide^3 cube with random palette
// indices in the range [1..63].
func generateNoiseMap(percentage float64, r *rand.Rand) *voxel.Map {
	if percentage < 0 {
		percentage = 0
	}
	if percentage > 100 {
		percentage = 100
	}
	total := NoiseSide * NoiseSide * NoiseSide
	want := int(float64(total)*(percentage/100.0) + 0.5)
	if want > total {
		want = total
	}

	// partial Fisher-Yates over the cell indices
	idx := make([]int32, total)
	for i := range idx {
		idx[i] = int32(i)
	}
	for i := 0; i < want; i++ {
		j := i + r.Intn(total-i)
		idx[i], idx[j] = idx[j], idx[i]
	}

	m := voxel.NewMap()
	for k := 0; k < want; k++ {
		i := idx[k]
		m.SetVoxel(voxel.Pos{
			X: i % NoiseSide,
			Y: i / (NoiseSide * NoiseSide),
			Z: (i / NoiseSide) % NoiseSide,
		}, uint8(1+r.Intn(63)))
	}
	return m
}

// RunGenerateNoiseTrees writes amount trees named 0.vxt..(amount-1).vxt to
// outDir, each filled with random noise at the given percentage.
func RunGenerateNoiseTrees(percentage float64, amount int, outDir string, cfg *config.Config) error {
	return RunGenerateNoiseTreesRange(percentage, percentage, amount, outDir, cfg)
}

// RunGenerateNoiseTreesRange is RunGenerateNoiseTrees with a fill percentage
// sampled uniformly in [percentageMin, percentageMax] for each tree.
func RunGenerateNoiseTreesRange(percentageMin, percentageMax float64, amount int, outDir string, cfg *config.Config) error {
	if outDir == "" {
		outDir = "."
	}
	if percentageMin < 0 {
		percentageMin = 0
	}
	if percentageMax > 100 {
		percentageMax = 100
	}
	if percentageMax < percentageMin {
		percentageMin, percentageMax = percentageMax, percentageMin
	}

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return errors.New("creating output directory failed").
			WithTag("dir", outDir).
			Wrap(err)
	}

	// noise volumes pick their own depth
	opts, err := cfg.APIOptions()
	if err != nil {
		return err
	}
	opts.Exp = 0

	baseSeed := uint64(time.Now().UnixNano())
	for i := 0; i < amount; i++ {
		const weyl = uint64(0x9e3779b97f4a7c15)
		seed := baseSeed ^ (uint64(i)+1)*weyl
		r := rand.New(rand.NewSource(int64(seed & 0x7fffffffffffffff)))

		perc := percentageMin
		if percentageMax > percentageMin {
			perc = percentageMin + r.Float64()*(percentageMax-percentageMin)
		}

		tree, _, err := api.CompileMap(generateNoiseMap(perc, r), opts)
		if err != nil {
			return err
		}
		path := filepath.Join(outDir, fmt.Sprintf("%d%s", i, TreeExt))
		if err := voxel.SaveTree(tree, path, opts.Compression); err != nil {
			return errors.New("writing noise tree failed").
				WithTag("path", path).
				Wrap(err)
		}
		logs.WithTag("path", path).
			WithTag("fill", perc).
			Debug("noise tree written")
	}

	logs.WithTag("dir", outDir).
		WithTag("amount", amount).
		Info("noise trees generated")
	return nil
}
