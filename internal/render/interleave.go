package render

import (
	"voxelterrain/internal/meshing"
)

// interleave packs mesh into dst as position, normal and color with
// channels in [0,1]. Missing normals are zero and missing colors are opaque
// white.
func interleave(mesh *meshing.MeshBuffers, dst []float32) []float32 {
	n := len(mesh.Vertices)
	if cap(dst) < n*vertexFloats {
		dst = make([]float32, 0, n*vertexFloats)
	}
	dst = dst[:n*vertexFloats]
	for i, v := range mesh.Vertices {
		o := i * vertexFloats
		dst[o], dst[o+1], dst[o+2] = v.X(), v.Y(), v.Z()
		dst[o+3], dst[o+4], dst[o+5] = 0, 0, 0
		if i < len(mesh.Normals) {
			nm := mesh.Normals[i]
			dst[o+3], dst[o+4], dst[o+5] = nm.X(), nm.Y(), nm.Z()
		}
		dst[o+6], dst[o+7], dst[o+8], dst[o+9] = 1, 1, 1, 1
		if i < len(mesh.Colors) {
			c := mesh.Colors[i]
			dst[o+6] = float32(c.R) / 255
			dst[o+7] = float32(c.G) / 255
			dst[o+8] = float32(c.B) / 255
			dst[o+9] = float32(c.A) / 255
		}
	}
	return dst
}
