package render

import (
	_ "embed"
	"log/slog"

	"voxelterrain/internal/meshing"
	"voxelterrain/internal/profiling"
	"voxelterrain/internal/world"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"
)

var (
	//go:embed shaders/terrain.vert
	terrainVert string
	//go:embed shaders/terrain.frag
	terrainFrag string
)

// position(3) normal(3) color(4)
const (
	vertexFloats = 10
	vertexStride = vertexFloats * 4
)

type chunkMesh struct {
	vao        uint32
	vbo        uint32
	ebo        uint32
	indexCount int32
	origin     mgl32.Vec3
	collision  bool
}

// ChunkRenderer keeps one VAO per chunk mesh handed over by the chunk
// store. It must be used on the thread owning the GL context.
type ChunkRenderer struct {
	shader    *Shader
	meshes    map[world.ChunkCoord]*chunkMesh
	chunkSize float32
	log       *slog.Logger
	scratch   []float32

	Wireframe     bool
	ShowCollision bool
	FogColor      mgl32.Vec3
	LightDir      mgl32.Vec3

	drawn int
}

// NewChunkRenderer compiles the terrain shader. chunkWorldSize is the edge
// length of a chunk, used for frustum tests.
func NewChunkRenderer(chunkWorldSize float32, log *slog.Logger) (*ChunkRenderer, error) {
	shader, err := NewShader(terrainVert, terrainFrag)
	if err != nil {
		return nil, err
	}
	if log == nil {
		log = slog.Default()
	}
	return &ChunkRenderer{
		shader:    shader,
		meshes:    make(map[world.ChunkCoord]*chunkMesh),
		chunkSize: chunkWorldSize,
		log:       log.With("component", "renderer"),
		FogColor:  mgl32.Vec3{0.62, 0.76, 0.92},
		LightDir:  mgl32.Vec3{0.3, 0.4, 1.0}.Normalize(),
	}, nil
}

// UpdateChunkMesh uploads mesh for coord, replacing any earlier upload.
func (r *ChunkRenderer) UpdateChunkMesh(coord world.ChunkCoord, origin mgl32.Vec3, mesh *meshing.MeshBuffers, collision bool) {
	defer profiling.Track("renderer.UpdateChunkMesh")()

	if mesh.IsEmpty() {
		r.RemoveChunkMesh(coord)
		return
	}
	m := r.meshes[coord]
	if m == nil {
		m = &chunkMesh{}
		gl.GenVertexArrays(1, &m.vao)
		gl.GenBuffers(1, &m.vbo)
		gl.GenBuffers(1, &m.ebo)
		setupChunkVAO(m)
		r.meshes[coord] = m
	}
	m.origin = origin
	m.collision = collision
	m.indexCount = int32(len(mesh.Triangles))

	r.scratch = interleave(mesh, r.scratch[:0])
	gl.BindBuffer(gl.ARRAY_BUFFER, m.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(r.scratch)*4, gl.Ptr(r.scratch), gl.STATIC_DRAW)
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, m.ebo)
	gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(mesh.Triangles)*4, gl.Ptr(mesh.Triangles), gl.STATIC_DRAW)
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
	glCheckError(r.log, "upload chunk mesh")
}

// RemoveChunkMesh frees the GPU buffers of coord, if any.
func (r *ChunkRenderer) RemoveChunkMesh(coord world.ChunkCoord) {
	m, ok := r.meshes[coord]
	if !ok {
		return
	}
	deleteChunkMesh(m)
	delete(r.meshes, coord)
}

// MeshCount returns the number of uploaded chunk meshes.
func (r *ChunkRenderer) MeshCount() int { return len(r.meshes) }

// Drawn returns how many chunks passed the frustum test in the last Render.
func (r *ChunkRenderer) Drawn() int { return r.drawn }

// Render draws every uploaded chunk that intersects the camera frustum.
func (r *ChunkRenderer) Render(cam *Camera) {
	defer profiling.Track("renderer.Render")()

	if r.Wireframe {
		gl.PolygonMode(gl.FRONT_AND_BACK, gl.LINE)
		defer gl.PolygonMode(gl.FRONT_AND_BACK, gl.FILL)
	}

	proj, view := cam.ProjectionMatrix(), cam.ViewMatrix()
	planes := extractFrustumPlanes(proj.Mul4(view))

	r.shader.Use()
	r.shader.SetMatrix4("proj", &proj[0])
	r.shader.SetMatrix4("view", &view[0])
	r.shader.SetVector3("lightDir", r.LightDir.X(), r.LightDir.Y(), r.LightDir.Z())
	r.shader.SetVector3("fogColor", r.FogColor.X(), r.FogColor.Y(), r.FogColor.Z())
	r.shader.SetFloat("fogEnd", cam.FarPlane)

	margin := mgl32.Vec3{frustumMargin, frustumMargin, frustumMargin}
	extent := mgl32.Vec3{r.chunkSize, r.chunkSize, r.chunkSize}
	r.drawn = 0
	for _, m := range r.meshes {
		lo := m.origin.Sub(margin)
		hi := m.origin.Add(extent).Add(margin)
		if !aabbInFrustum(lo, hi, planes) {
			continue
		}
		r.shader.SetVector3("chunkOrigin", m.origin.X(), m.origin.Y(), m.origin.Z())
		r.shader.SetBool("collisionTint", r.ShowCollision && m.collision)
		gl.BindVertexArray(m.vao)
		gl.DrawElements(gl.TRIANGLES, m.indexCount, gl.UNSIGNED_INT, nil)
		r.drawn++
	}
	gl.BindVertexArray(0)
}

// Dispose cleans up OpenGL resources
func (r *ChunkRenderer) Dispose() {
	r.Clear()
	if r.shader != nil {
		r.shader.Delete()
	}
}

func setupChunkVAO(m *chunkMesh) {
	gl.BindVertexArray(m.vao)
	gl.BindBuffer(gl.ARRAY_BUFFER, m.vbo)
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, m.ebo)

	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointer(0, 3, gl.FLOAT, false, vertexStride, gl.PtrOffset(0))
	gl.EnableVertexAttribArray(1)
	gl.VertexAttribPointer(1, 3, gl.FLOAT, false, vertexStride, gl.PtrOffset(3*4))
	gl.EnableVertexAttribArray(2)
	gl.VertexAttribPointer(2, 4, gl.FLOAT, false, vertexStride, gl.PtrOffset(6*4))

	gl.BindVertexArray(0)
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
}

func deleteChunkMesh(m *chunkMesh) {
	gl.DeleteVertexArrays(1, &m.vao)
	gl.DeleteBuffers(1, &m.vbo)
	gl.DeleteBuffers(1, &m.ebo)
}

func glCheckError(log *slog.Logger, label string) {
	if err := gl.GetError(); err != gl.NO_ERROR {
		log.Warn("gl error", "op", label, "code", err)
	}
}

// Clear frees every uploaded chunk mesh but keeps the shader.
func (r *ChunkRenderer) Clear() {
	for coord, m := range r.meshes {
		deleteChunkMesh(m)
		delete(r.meshes, coord)
	}
}
