//go:build !(js && wasm)

package main

import (
	"fmt"
	"os"

	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/aukilabs/go-tooling/pkg/logs"
	"github.com/segmentio/encoding/json"

	"github.com/voxelsplace/voxtree/internal/config"
	"github.com/voxelsplace/voxtree/utils"
)

func usage() {
	fmt.Println("Usage: voxtree <command> [args]")
	fmt.Println("Commands:")
	fmt.Println("  mesh2tree input.(obj|gltf|glb) output.vxt   (voxelize a triangle mesh into a compressed tree)")
	fmt.Println("  vox2tree input.vox output.vxt               (bake a MagicaVoxel scene into a compressed tree)")
	fmt.Println("  convert input output.vxt                    (pick the converter from the input extension)")
	fmt.Println("  convertdir input_dir [output_dir]           (convert every supported asset of a directory)")
	fmt.Println("  treeinfo input.vxt                          (validate a tree and print its summary as JSON)")
	fmt.Println("  tree2glb input.vxt output.glb               (expand a tree into a greedy meshed .glb)")
	fmt.Println("  gennoise <percentage> <amount> <output_dir>                      (generate N random trees with fixed fill %)")
	fmt.Println("  gennoise <percentageMin> <percentageMax> <amount> <output_dir>   (generate with per-file random fill in [min,max])")
	fmt.Println()
	fmt.Printf("Settings are read from the YAML file named by %s.\n", config.EnvPath)
}

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	conf, err := config.FromEnv()
	if err != nil {
		logs.Fatal(err)
	}

	logs.SetLevel(logs.ParseLevel(conf.LogLevel))
	logs.Encoder = json.Marshal
	if conf.LogIndent {
		logs.Encoder = func(v any) ([]byte, error) {
			return json.MarshalIndent(v, "", "  ")
		}
	}
	errors.Encoder = json.Marshal

	if err := run(os.Args[1], os.Args[2:], conf); err != nil {
		logs.Fatal(err)
	}
}

func run(cmd string, args []string, conf *config.Config) error {
	switch cmd {
	case "mesh2tree":
		if len(args) != 2 {
			return usageError(cmd)
		}
		return utils.RunMesh2Tree(args[0], args[1], conf)

	case "vox2tree":
		if len(args) != 2 {
			return usageError(cmd)
		}
		return utils.RunVox2Tree(args[0], args[1], conf)

	case "convert":
		if len(args) != 2 {
			return usageError(cmd)
		}
		return utils.RunConvert(args[0], args[1], conf)

	case "convertdir":
		switch len(args) {
		case 1:
			return utils.RunConvertDir(args[0], "", conf)
		case 2:
			return utils.RunConvertDir(args[0], args[1], conf)
		default:
			return usageError(cmd)
		}

	case "treeinfo":
		if len(args) != 1 {
			return usageError(cmd)
		}
		info, err := utils.RunTreeInfo(args[0])
		if err != nil {
			return err
		}
		out, err := json.MarshalIndent(info, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(out))
		return nil

	case "tree2glb":
		if len(args) != 2 {
			return usageError(cmd)
		}
		return utils.RunTree2GLB(args[0], args[1])

	case "gennoise":
		// Two forms:
		// 1) gennoise <percentage> <amount> <output_dir>
		// 2) gennoise <percentageMin> <percentageMax> <amount> <output_dir>
		switch len(args) {
		case 3:
			var perc float64
			var amt int
			if _, err := fmt.Sscan(args[0], &perc); err != nil {
				return errors.New("invalid percentage").WithTag("value", args[0]).Wrap(err)
			}
			if _, err := fmt.Sscan(args[1], &amt); err != nil {
				return errors.New("invalid amount").WithTag("value", args[1]).Wrap(err)
			}
			return utils.RunGenerateNoiseTrees(perc, amt, args[2], conf)

		case 4:
			var minP, maxP float64
			var amt int
			if _, err := fmt.Sscan(args[0], &minP); err != nil {
				return errors.New("invalid percentage").WithTag("value", args[0]).Wrap(err)
			}
			if _, err := fmt.Sscan(args[1], &maxP); err != nil {
				return errors.New("invalid percentage").WithTag("value", args[1]).Wrap(err)
			}
			if _, err := fmt.Sscan(args[2], &amt); err != nil {
				return errors.New("invalid amount").WithTag("value", args[2]).Wrap(err)
			}
			return utils.RunGenerateNoiseTreesRange(minP, maxP, amt, args[3], conf)

		default:
			return usageError(cmd)
		}

	default:
		usage()
		os.Exit(1)
	}
	return nil
}

func usageError(cmd string) error {
	usage()
	return errors.New("wrong number of arguments").WithTag("command", cmd)
}
