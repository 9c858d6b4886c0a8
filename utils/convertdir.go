package utils

import (
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/aukilabs/go-tooling/pkg/logs"

	"github.com/voxelsplace/voxtree/internal/config"
)

// RunConvertDir converts every supported asset of inDir into a tree inside
// outDir, using cfg.Workers goroutines. A failing asset does not stop the
// others; the returned error reports how many failed.
func RunConvertDir(inDir, outDir string, cfg *config.Config) error {
	if outDir == "" {
		outDir = inDir
	}
	entries, err := os.ReadDir(inDir)
	if err != nil {
		return errors.New("reading input directory failed").
			WithTag("dir", inDir).
			Wrap(err)
	}

	var inputs []string
	for _, e := range entries {
		if e.IsDir() || !Supported(e.Name()) {
			continue
		}
		inputs = append(inputs, filepath.Join(inDir, e.Name()))
	}
	sort.Strings(inputs)
	if len(inputs) == 0 {
		return errors.New("no supported assets found").
			WithTag("dir", inDir)
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return errors.New("creating output directory failed").
			WithTag("dir", outDir).
			Wrap(err)
	}

	stop := ServeMetrics(cfg.MetricsAddr)
	defer stop()

	workers := cfg.Workers
	if workers <= 0 {
		workers = 1
	}
	if workers > len(inputs) {
		workers = len(inputs)
	}

	outputs := outputPaths(inputs, outDir)
	start := time.Now()
	jobs := make(chan int)
	failures := make([]error, len(inputs))

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				p := inputs[i]
				if err := RunConvert(p, outputs[i], cfg); err != nil {
					logs.Warn(errors.New("converting asset failed").
						WithTag("path", p).
						Wrap(err))
					failures[i] = err
				}
			}
		}()
	}
	for i := range inputs {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	failed := 0
	for _, err := range failures {
		if err != nil {
			failed++
		}
	}
	logs.WithTag("dir", inDir).
		WithTag("output", outDir).
		WithTag("assets", len(inputs)).
		WithTag("failed", failed).
		WithTag("workers", workers).
		WithTag("duration", time.Since(start).String()).
		Info("directory converted")

	if failed > 0 {
		return errors.New("some assets failed to convert").
			WithTag("failed", failed).
			WithTag("assets", len(inputs))
	}
	return nil
}

// outputPaths maps every input to its tree path. Inputs sharing a name, such
// as castle.obj and castle.vox, keep their extension: castle.obj.vxt.
func outputPaths(inputs []string, outDir string) []string {
	stems := make(map[string]int, len(inputs))
	for _, p := range inputs {
		stems[TreePath(p, outDir)]++
	}

	out := make([]string, len(inputs))
	for i, p := range inputs {
		out[i] = TreePath(p, outDir)
		if stems[out[i]] > 1 {
			out[i] = filepath.Join(outDir, filepath.Base(p)+TreeExt)
			logs.WithTag("path", p).
				WithTag("output", out[i]).
				Info("asset name is shared, keeping its extension")
		}
	}
	return out
}
