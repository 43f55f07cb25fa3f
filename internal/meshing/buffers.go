package meshing

import (
	"image/color"
	"unsafe"

	"github.com/go-gl/mathgl/mgl32"
)

// MeshBuffers is the renderable output of a mesher. Positions are relative to
// the chunk origin and already scaled by the voxel size. Triangles index into
// the per-vertex slices and wind counter-clockwise seen from outside.
type MeshBuffers struct {
	Vertices  []mgl32.Vec3
	Triangles []uint32
	Normals   []mgl32.Vec3
	UVs       []mgl32.Vec2
	Colors    []color.RGBA
	Tangents  []mgl32.Vec4 // xyz tangent, w handedness
}

// Reset empties every buffer while keeping capacity.
func (m *MeshBuffers) Reset() {
	m.Vertices = m.Vertices[:0]
	m.Triangles = m.Triangles[:0]
	m.Normals = m.Normals[:0]
	m.UVs = m.UVs[:0]
	m.Colors = m.Colors[:0]
	m.Tangents = m.Tangents[:0]
}

// IsEmpty reports whether the mesh has no triangles.
func (m *MeshBuffers) IsEmpty() bool {
	return m == nil || len(m.Triangles) == 0
}

// TriangleCount returns the number of triangles.
func (m *MeshBuffers) TriangleCount() int {
	if m == nil {
		return 0
	}
	return len(m.Triangles) / 3
}

// VertexCount returns the number of vertices.
func (m *MeshBuffers) VertexCount() int {
	if m == nil {
		return 0
	}
	return len(m.Vertices)
}

// AllocatedBytes estimates the memory held by the buffers.
func (m *MeshBuffers) AllocatedBytes() int {
	if m == nil {
		return 0
	}
	return cap(m.Vertices)*int(unsafe.Sizeof(mgl32.Vec3{})) +
		cap(m.Triangles)*4 +
		cap(m.Normals)*int(unsafe.Sizeof(mgl32.Vec3{})) +
		cap(m.UVs)*int(unsafe.Sizeof(mgl32.Vec2{})) +
		cap(m.Colors)*int(unsafe.Sizeof(color.RGBA{})) +
		cap(m.Tangents)*int(unsafe.Sizeof(mgl32.Vec4{}))
}

// addVertex appends one vertex and returns its index.
func (m *MeshBuffers) addVertex(pos, normal mgl32.Vec3, uv mgl32.Vec2, c color.RGBA, tangent mgl32.Vec4) uint32 {
	idx := uint32(len(m.Vertices))
	m.Vertices = append(m.Vertices, pos)
	m.Normals = append(m.Normals, normal)
	m.UVs = append(m.UVs, uv)
	m.Colors = append(m.Colors, c)
	m.Tangents = append(m.Tangents, tangent)
	return idx
}

// addQuad appends a quad with corner order origin, origin+du, origin+du+dv,
// origin+dv. The face normal is du x dv.
func (m *MeshBuffers) addQuad(origin, du, dv, normal mgl32.Vec3, w, h float32, c color.RGBA) {
	tangent := du.Normalize()
	t4 := mgl32.Vec4{tangent.X(), tangent.Y(), tangent.Z(), 1}
	i0 := m.addVertex(origin, normal, mgl32.Vec2{0, 0}, c, t4)
	i1 := m.addVertex(origin.Add(du), normal, mgl32.Vec2{w, 0}, c, t4)
	i2 := m.addVertex(origin.Add(du).Add(dv), normal, mgl32.Vec2{w, h}, c, t4)
	i3 := m.addVertex(origin.Add(dv), normal, mgl32.Vec2{0, h}, c, t4)
	m.Triangles = append(m.Triangles, i0, i1, i2, i0, i2, i3)
}
