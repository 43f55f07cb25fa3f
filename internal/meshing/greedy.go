package meshing

import (
	"voxelterrain/internal/profiling"
	"voxelterrain/internal/terrain"

	"github.com/go-gl/mathgl/mgl32"
)

// VoxelGrid is the blocky meshers' view of one chunk: N^3 fused voxels plus
// an accessor for cells outside the chunk.
type VoxelGrid struct {
	Size   int
	Voxels []terrain.Voxel

	// Neighbor takes chunk-local coordinates outside [0,N). A nil accessor
	// reads as air.
	Neighbor func(x, y, z int) terrain.Voxel
}

func (g *VoxelGrid) at(x, y, z int) terrain.Voxel {
	n := g.Size
	if x >= 0 && y >= 0 && z >= 0 && x < n && y < n && z < n {
		return g.Voxels[x+y*n+z*n*n]
	}
	if g.Neighbor == nil {
		return terrain.Voxel{}
	}
	return g.Neighbor(x, y, z)
}

// faceVisible reports whether v shows a face towards nb.
func faceVisible(v, nb terrain.Voxel) bool {
	return v.Material != terrain.Air && nb.IsTransparent() && nb.Material != v.Material
}

var axisUnit = [3]mgl32.Vec3{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}}

// GenerateCulled emits one quad per visible voxel face.
func GenerateCulled(g *VoxelGrid, voxelSize float32, dst *MeshBuffers) *MeshBuffers {
	defer profiling.Track("meshing.GenerateCulled")()

	if dst == nil {
		dst = &MeshBuffers{}
	}
	dst.Reset()
	if g == nil || g.Size <= 0 || len(g.Voxels) < g.Size*g.Size*g.Size {
		return dst
	}
	if voxelSize <= 0 {
		voxelSize = 1
	}

	n := g.Size
	for z := 0; z < n; z++ {
		for y := 0; y < n; y++ {
			for x := 0; x < n; x++ {
				v := g.Voxels[x+y*n+z*n*n]
				if v.Material == terrain.Air {
					continue
				}
				p := [3]int{x, y, z}
				for axis := range 3 {
					for _, back := range [2]bool{false, true} {
						q := p
						if back {
							q[axis]--
						} else {
							q[axis]++
						}
						if !faceVisible(v, g.at(q[0], q[1], q[2])) {
							continue
						}
						emitFace(dst, axis, back, p[axis], p[(axis+1)%3], p[(axis+2)%3], 1, 1, v.Material, voxelSize)
					}
				}
			}
		}
	}
	return dst
}

// GenerateGreedy merges same-material visible faces into maximal rectangles.
// Each slice is scanned row by row; a run grows along U first and then along
// V while every cell of the widened row matches.
func GenerateGreedy(g *VoxelGrid, voxelSize float32, dst *MeshBuffers) *MeshBuffers {
	defer profiling.Track("meshing.GenerateGreedy")()

	if dst == nil {
		dst = &MeshBuffers{}
	}
	dst.Reset()
	if g == nil || g.Size <= 0 || len(g.Voxels) < g.Size*g.Size*g.Size {
		return dst
	}
	if voxelSize <= 0 {
		voxelSize = 1
	}

	n := g.Size
	mask := make([]terrain.Material, n*n)
	for axis := range 3 {
		u := (axis + 1) % 3
		v := (axis + 2) % 3
		for _, back := range [2]bool{false, true} {
			for d := 0; d < n; d++ {
				buildMask(g, mask, axis, u, v, d, back)
				mergeMask(dst, mask, n, axis, back, d, voxelSize)
			}
		}
	}
	return dst
}

// buildMask fills mask[i+j*n] with the material of every visible face in
// slice d, where i runs along axis u and j along axis v. Air means no face.
func buildMask(g *VoxelGrid, mask []terrain.Material, axis, u, v, d int, back bool) {
	n := g.Size
	for j := 0; j < n; j++ {
		for i := 0; i < n; i++ {
			var p [3]int
			p[axis], p[u], p[v] = d, i, j
			vox := g.at(p[0], p[1], p[2])

			q := p
			if back {
				q[axis]--
			} else {
				q[axis]++
			}
			if faceVisible(vox, g.at(q[0], q[1], q[2])) {
				mask[i+j*n] = vox.Material
			} else {
				mask[i+j*n] = terrain.Air
			}
		}
	}
}

func mergeMask(dst *MeshBuffers, mask []terrain.Material, n, axis int, back bool, d int, voxelSize float32) {
	for j := 0; j < n; j++ {
		for i := 0; i < n; {
			m := mask[i+j*n]
			if m == terrain.Air {
				i++
				continue
			}

			w := 1
			for i+w < n && mask[i+w+j*n] == m {
				w++
			}

			h := 1
		grow:
			for j+h < n {
				for k := 0; k < w; k++ {
					if mask[i+k+(j+h)*n] != m {
						break grow
					}
				}
				h++
			}

			emitFace(dst, axis, back, d, i, j, w, h, m, voxelSize)

			for jj := j; jj < j+h; jj++ {
				for ii := i; ii < i+w; ii++ {
					mask[ii+jj*n] = terrain.Air
				}
			}
			i += w
		}
	}
}

// emitFace appends the quad covering w x h cells of slice d. Front faces sit
// on the far side of the slice and face +axis; back faces sit on the near side
// and face -axis.
func emitFace(dst *MeshBuffers, axis int, back bool, d, i, j, w, h int, m terrain.Material, voxelSize float32) {
	u := (axis + 1) % 3
	v := (axis + 2) % 3

	var origin mgl32.Vec3
	plane := d + 1
	if back {
		plane = d
	}
	origin[axis] = float32(plane) * voxelSize
	origin[u] = float32(i) * voxelSize
	origin[v] = float32(j) * voxelSize

	du := axisUnit[u].Mul(float32(w) * voxelSize)
	dv := axisUnit[v].Mul(float32(h) * voxelSize)
	normal := axisUnit[axis]
	c := m.Color()
	if back {
		dst.addQuad(origin, dv, du, normal.Mul(-1), float32(h), float32(w), c)
		return
	}
	dst.addQuad(origin, du, dv, normal, float32(w), float32(h), c)
}
