//go:build js && wasm

package main

import (
	"syscall/js"

	"github.com/segmentio/encoding/json"

	"github.com/voxelsplace/voxtree/api"
)

func bytesFromJS(v js.Value) []byte {
	buf := make([]byte, v.Get("length").Int())
	js.CopyBytesToGo(buf, v)
	return buf
}

func bytesToJS(b []byte) js.Value {
	arr := js.Global().Get("Uint8Array").New(len(b))
	js.CopyBytesToJS(arr, b)
	return arr
}

// meshToTree(bytes, format) voxelizes an obj, gltf or glb buffer.
func meshToTree(this js.Value, args []js.Value) any {
	if len(args) < 2 {
		return js.ValueOf("missing mesh bytes or format")
	}
	out, err := api.MeshToTreeBytes(bytesFromJS(args[0]), args[1].String(), api.DefaultOptions())
	if err != nil {
		return js.ValueOf(err.Error())
	}
	return bytesToJS(out)
}

func voxToTree(this js.Value, args []js.Value) any {
	if len(args) < 1 {
		return js.ValueOf("missing vox bytes")
	}
	out, err := api.VoxToTreeBytes(bytesFromJS(args[0]), api.DefaultOptions())
	if err != nil {
		return js.ValueOf(err.Error())
	}
	return bytesToJS(out)
}

// treeInfo returns the tree summary as a JSON string.
func treeInfo(this js.Value, args []js.Value) any {
	if len(args) < 1 {
		return js.ValueOf("missing tree bytes")
	}
	_, info, err := api.DecodeTree(bytesFromJS(args[0]))
	if err != nil {
		return js.ValueOf(err.Error())
	}
	out, err := json.Marshal(info)
	if err != nil {
		return js.ValueOf(err.Error())
	}
	return js.ValueOf(string(out))
}

func tree2glb(this js.Value, args []js.Value) any {
	if len(args) < 1 {
		return js.ValueOf("missing tree bytes")
	}
	out, err := api.TreeToGLB(bytesFromJS(args[0]))
	if err != nil {
		return js.ValueOf(err.Error())
	}
	return bytesToJS(out)
}

func main() {
	js.Global().Set("meshToTree", js.FuncOf(meshToTree))
	js.Global().Set("voxToTree", js.FuncOf(voxToTree))
	js.Global().Set("treeInfo", js.FuncOf(treeInfo))
	js.Global().Set("tree2glb", js.FuncOf(tree2glb))
	select {}
}
