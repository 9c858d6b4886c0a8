package voxel

// Vertex is a mesh vertex carrying the palette index of its face.
type Vertex struct {
	Position [3]float32
	Color    uint8
}

// Mesh is an indexed triangle mesh.
type Mesh struct {
	Vertices []Vertex
	Indices  []uint32
}

type dirSpec struct {
	normal [3]float32
	u, v   int
	du, dv [3]int
}

var directions = []dirSpec{
	{[3]float32{1, 0, 0}, 1, 2, [3]int{0, 1, 0}, [3]int{0, 0, 1}},
	{[3]float32{-1, 0, 0}, 1, 2, [3]int{0, 1, 0}, [3]int{0, 0, 1}},
	{[3]float32{0, 1, 0}, 0, 2, [3]int{1, 0, 0}, [3]int{0, 0, 1}},
	{[3]float32{0, -1, 0}, 0, 2, [3]int{1, 0, 0}, [3]int{0, 0, 1}},
	{[3]float32{0, 0, 1}, 0, 1, [3]int{1, 0, 0}, [3]int{0, 1, 0}},
	{[3]float32{0, 0, -1}, 0, 1, [3]int{1, 0, 0}, [3]int{0, 1, 0}},
}

func addQuad(mesh *Mesh, dir dirSpec, origin [3]float32, start [3]int, w, h int, color uint8, perp int) {
	base := origin
	base[perp] += float32(start[0])
	if dir.normal[perp] > 0 {
		base[perp] += 1
	}
	base[dir.u] += float32(start[1])
	base[dir.v] += float32(start[2])

	at := func(a, b int) [3]float32 {
		return [3]float32{
			base[0] + float32(dir.du[0]*a+dir.dv[0]*b),
			base[1] + float32(dir.du[1]*a+dir.dv[1]*b),
			base[2] + float32(dir.du[2]*a+dir.dv[2]*b),
		}
	}
	verts := [4]Vertex{
		{Position: base, Color: color},
		{Position: at(h, 0), Color: color},
		{Position: at(h, w), Color: color},
		{Position: at(0, w), Color: color},
	}

	swap := (dir.normal[perp] < 0) != (perp == 1)
	if swap {
		verts[1], verts[3] = verts[3], verts[1]
	}

	baseIdx := uint32(len(mesh.Vertices))
	mesh.Vertices = append(mesh.Vertices, verts[:]...)
	mesh.Indices = append(mesh.Indices, baseIdx, baseIdx+1, baseIdx+2, baseIdx, baseIdx+2, baseIdx+3)
}

// GenerateMesh builds a greedy surface mesh of the map, one brick at a time.
// Faces between neighbouring bricks are culled.
func GenerateMesh(m *Map) *Mesh {
	mesh := &Mesh{}
	for _, key := range m.Keys() {
		meshBrick(mesh, m, key)
	}
	return mesh
}

func meshBrick(mesh *Mesh, m *Map, key Pos) {
	b := m.BrickAt(key)
	o := Pos{key.X << BrickShift, key.Y << BrickShift, key.Z << BrickShift}
	origin := [3]float32{float32(o.X), float32(o.Y), float32(o.Z)}

	var mask, visited [BrickSize][BrickSize]uint8
	for _, dir := range directions {
		perp := 3 - dir.u - dir.v

		for p := 0; p < BrickSize; p++ {
			mask = [BrickSize][BrickSize]uint8{}
			visited = [BrickSize][BrickSize]uint8{}

			for u := 0; u < BrickSize; u++ {
				for v := 0; v < BrickSize; v++ {
					var pos [3]int32
					pos[dir.u] = int32(u)
					pos[dir.v] = int32(v)
					pos[perp] = int32(p)

					voxel := b.At(pos[0], pos[1], pos[2])
					if voxel == 0 {
						continue
					}

					adj := pos
					if dir.normal[perp] < 0 {
						adj[perp]--
					} else {
						adj[perp]++
					}
					if m.Voxel(Pos{o.X + adj[0], o.Y + adj[1], o.Z + adj[2]}) == 0 {
						mask[u][v] = voxel
					}
				}
			}

			for u := 0; u < BrickSize; u++ {
				for v := 0; v < BrickSize; {
					if mask[u][v] == 0 || visited[u][v] != 0 {
						v++
						continue
					}
					color := mask[u][v]
					width := 1
					for w := v + 1; w < BrickSize && mask[u][w] == color && visited[u][w] == 0; w++ {
						width++
					}
					height := 1
					stop := false
					for h := u + 1; h < BrickSize && !stop; h++ {
						for w := v; w < v+width; w++ {
							if mask[h][w] != color || visited[h][w] != 0 {
								stop = true
								break
							}
						}
						if !stop {
							height++
						}
					}
					for hu := u; hu < u+height; hu++ {
						for hv := v; hv < v+width; hv++ {
							visited[hu][hv] = 1
						}
					}
					addQuad(mesh, dir, origin, [3]int{p, u, v}, width, height, color, perp)
					v += width
				}
			}
		}
	}
}
