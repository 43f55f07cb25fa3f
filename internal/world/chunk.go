package world

import (
	"context"
	"errors"
	"math"
	"sync/atomic"

	"voxelterrain/internal/config"
	"voxelterrain/internal/meshing"
	"voxelterrain/internal/profiling"
	"voxelterrain/internal/terrain"

	"github.com/go-gl/mathgl/mgl32"
)

// Field is the terrain source a chunk samples from. Coordinates are world
// voxel lattice indices.
type Field interface {
	Density(x, y, z int) float64
	MaterialAt(x, y, z int) terrain.Material
}

// columnField is implemented by fields that can share the horizontal part of
// the evaluation across a whole column (terrain.Sampler does).
type columnField interface {
	Column(x, y int) terrain.Column
	DensityInColumn(c *terrain.Column, z int) float64
	MaterialInColumn(c *terrain.Column, z int) terrain.Material
}

var (
	// ErrNoField is returned when a chunk is asked to generate without a
	// terrain source.
	ErrNoField = errors.New("world: no terrain field")

	errChunkReleased = errors.New("world: chunk released during generation")
)

// ChunkState is the lifecycle stage of a chunk.
type ChunkState uint8

const (
	ChunkUnloaded ChunkState = iota
	ChunkLoading
	ChunkGenerated
	ChunkMeshed
	ChunkPendingUnload
)

func (s ChunkState) String() string {
	switch s {
	case ChunkLoading:
		return "loading"
	case ChunkGenerated:
		return "generated"
	case ChunkMeshed:
		return "meshed"
	case ChunkPendingUnload:
		return "pending-unload"
	default:
		return "unloaded"
	}
}

// Chunk is a cubic block of N^3 voxel cells. Density is stored per corner,
// (N+1)^3 samples, so a chunk can be meshed without touching its neighbors'
// storage. Material is stored per cell.
//
// Everything except the atomic flags belongs to the main thread. A generation
// worker writes density and materials only while generated is unset; readers
// on other chunks check generated before touching them.
type Chunk struct {
	coord  ChunkCoord
	size   int
	cfg    *config.Settings
	field  Field
	lookup chunkLookup

	density   []float32
	materials []terrain.Material
	voxels    []terrain.Voxel
	mesh      *meshing.MeshBuffers

	lod       config.LOD
	collision bool
	links     uint32
	empty     bool

	generated   atomic.Bool
	pendingKill atomic.Bool
	inFlight    atomic.Bool

	active        bool
	meshed        bool
	meshDirty     bool
	queuedForMesh bool
}

// NewChunk creates a standalone chunk. It has no neighbor links, so every
// read past its edges goes to the field.
func NewChunk(coord ChunkCoord, cfg *config.Settings, field Field) *Chunk {
	c := &Chunk{}
	c.Init(coord, cfg, field, nil)
	return c
}

// Init prepares the chunk for coord, reusing storage when it is large enough.
func (c *Chunk) Init(coord ChunkCoord, cfg *config.Settings, field Field, lookup chunkLookup) {
	n := cfg.ChunkSize
	c.coord = coord
	c.size = n
	c.cfg = cfg
	c.field = field
	c.lookup = lookup

	c.density = resize(c.density, (n+1)*(n+1)*(n+1))
	c.materials = resize(c.materials, n*n*n)
	if c.voxels != nil {
		c.voxels = resize(c.voxels, n*n*n)
	}
	if c.mesh == nil {
		c.mesh = &meshing.MeshBuffers{}
	}
	c.mesh.Reset()

	c.lod = config.LOD0
	c.collision = false
	c.links = 0
	c.empty = true
	c.generated.Store(false)
	c.pendingKill.Store(false)
	c.inFlight.Store(false)
	c.active = true
	c.meshed = false
	c.meshDirty = true
	c.queuedForMesh = false
}

// resize returns s with length n and zeroed contents, keeping the backing
// array when it is large enough.
func resize[T any](s []T, n int) []T {
	if cap(s) >= n {
		s = s[:n]
		clear(s)
		return s
	}
	return make([]T, n)
}

// Reset zeroes the chunk for reuse. Storage capacity is kept.
func (c *Chunk) Reset() {
	clear(c.density)
	clear(c.materials)
	clear(c.voxels)
	if c.mesh != nil {
		c.mesh.Reset()
	}
	c.coord = ChunkCoord{}
	c.field = nil
	c.lookup = nil
	c.lod = config.LOD0
	c.collision = false
	c.links = 0
	c.empty = true
	c.generated.Store(false)
	c.pendingKill.Store(false)
	c.inFlight.Store(false)
	c.active = false
	c.meshed = false
	c.meshDirty = false
	c.queuedForMesh = false
}

// destroy drops the chunk's storage.
func (c *Chunk) destroy() {
	c.pendingKill.Store(true)
	c.active = false
	c.density = nil
	c.materials = nil
	c.voxels = nil
	c.mesh = nil
	c.field = nil
	c.lookup = nil
	c.links = 0
}

func (c *Chunk) Coord() ChunkCoord { return c.coord }
func (c *Chunk) Size() int { return c.size }
func (c *Chunk) LOD() config.LOD { return c.lod }
func (c *Chunk) HasCollision() bool { return c.collision }
func (c *Chunk) IsGenerated() bool { return c.generated.Load() }
func (c *Chunk) IsPendingKill() bool { return c.pendingKill.Load() }
func (c *Chunk) IsMeshDirty() bool { return c.meshDirty }
func (c *Chunk) Mesh() *meshing.MeshBuffers { return c.mesh }
func (c *Chunk) DensityData() []float32 { return c.density }
func (c *Chunk) MaterialData() []terrain.Material { return c.materials }

// IsEmpty reports whether generation found no solid corner and no non-air
// cell. Edits that add material clear it.
func (c *Chunk) IsEmpty() bool { return c.empty }

// State derives the lifecycle stage from the chunk's flags.
func (c *Chunk) State() ChunkState {
	switch {
	case c.pendingKill.Load():
		return ChunkPendingUnload
	case !c.active:
		return ChunkUnloaded
	case !c.generated.Load():
		return ChunkLoading
	case c.meshed:
		return ChunkMeshed
	}
	return ChunkGenerated
}

// Origin returns the world voxel index of the chunk's minimum corner.
func (c *Chunk) Origin() [3]int {
	return [3]int{c.coord.X * c.size, c.coord.Y * c.size, c.coord.Z * c.size}
}

// WorldOrigin returns the chunk's minimum corner in world units.
func (c *Chunk) WorldOrigin() mgl32.Vec3 {
	return ChunkOrigin(c.coord, c.size, c.cfg.VoxelSize)
}

// MemoryBytes estimates the chunk's heap footprint.
func (c *Chunk) MemoryBytes() int {
	b := cap(c.density)*4 + cap(c.materials) + cap(c.voxels)*3
	if c.mesh != nil {
		b += c.mesh.AllocatedBytes()
	}
	return b
}

func (c *Chunk) cornerIndex(x, y, z int) int {
	s := c.size + 1
	return x + y*s + z*s*s
}

func (c *Chunk) cellIndex(x, y, z int) int {
	n := c.size
	return x + y*n + z*n*n
}

func (c *Chunk) cornerInBounds(x, y, z int) bool {
	n := c.size
	return x >= 0 && y >= 0 && z >= 0 && x <= n && y <= n && z <= n && len(c.density) > 0
}

func (c *Chunk) cellInBounds(x, y, z int) bool {
	n := c.size
	return x >= 0 && y >= 0 && z >= 0 && x < n && y < n && z < n && len(c.materials) > 0
}

// GetDensity returns the density at local corner (x,y,z), or +1 (air)
// outside [0,N].
func (c *Chunk) GetDensity(x, y, z int) float64 {
	if !c.cornerInBounds(x, y, z) {
		return 1
	}
	return float64(c.density[c.cornerIndex(x, y, z)])
}

// SetDensity writes a local corner, clamped to [-1,1]. Out of range writes
// are ignored.
func (c *Chunk) SetDensity(x, y, z int, d float64) {
	if !c.cornerInBounds(x, y, z) {
		return
	}
	d = math.Max(-1, math.Min(1, d))
	c.density[c.cornerIndex(x, y, z)] = float32(d)
	if d < 0 {
		c.empty = false
	}
	c.meshDirty = true
}

// GetMaterial returns the material of local cell (x,y,z), or Air outside
// [0,N).
func (c *Chunk) GetMaterial(x, y, z int) terrain.Material {
	if !c.cellInBounds(x, y, z) {
		return terrain.Air
	}
	return c.materials[c.cellIndex(x, y, z)]
}

// SetMaterial writes a local cell. Out of range writes are ignored.
func (c *Chunk) SetMaterial(x, y, z int, m terrain.Material) {
	if !c.cellInBounds(x, y, z) {
		return
	}
	c.materials[c.cellIndex(x, y, z)] = m
	if m != terrain.Air {
		c.empty = false
	}
	c.meshDirty = true
}

// GetVoxel fuses the cell material with the density at its minimum corner.
func (c *Chunk) GetVoxel(x, y, z int) terrain.Voxel {
	if !c.cellInBounds(x, y, z) {
		return terrain.Voxel{}
	}
	return terrain.Voxel{
		Material: c.materials[c.cellIndex(x, y, z)],
		Density:  terrain.DensityToByte(float64(c.density[c.cornerIndex(x, y, z)])),
	}
}

// SetVoxel writes the cell material and its minimum corner density.
func (c *Chunk) SetVoxel(x, y, z int, v terrain.Voxel) {
	if !c.cellInBounds(x, y, z) {
		return
	}
	c.SetMaterial(x, y, z, v.Material)
	c.SetDensity(x, y, z, terrain.ByteToDensity(v.Density))
}

// GenerateVoxelData fills density and materials from field. It gives up
// without publishing anything when ctx is done or the chunk is released.
func (c *Chunk) GenerateVoxelData(ctx context.Context, field Field) error {
	defer profiling.Track("world.GenerateVoxelData")()

	if field == nil {
		return ErrNoField
	}
	if c.pendingKill.Load() {
		return errChunkReleased
	}

	n := c.size
	o := c.Origin()
	cf, columns := field.(columnField)
	nonEmpty := false

	for y := 0; y <= n; y++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		if c.pendingKill.Load() {
			return errChunkReleased
		}
		for x := 0; x <= n; x++ {
			wx, wy := o[0]+x, o[1]+y
			var col terrain.Column
			if columns {
				col = cf.Column(wx, wy)
			}
			for z := 0; z <= n; z++ {
				wz := o[2] + z
				var d float64
				if columns {
					d = cf.DensityInColumn(&col, wz)
				} else {
					d = field.Density(wx, wy, wz)
				}
				c.density[c.cornerIndex(x, y, z)] = float32(d)
				if d < 0 {
					nonEmpty = true
				}
				if x == n || y == n || z == n {
					continue
				}
				var m terrain.Material
				if columns {
					m = cf.MaterialInColumn(&col, wz)
				} else {
					m = field.MaterialAt(wx, wy, wz)
				}
				c.materials[c.cellIndex(x, y, z)] = m
				if m != terrain.Air {
					nonEmpty = true
				}
			}
		}
	}

	c.empty = !nonEmpty
	c.generated.Store(true)
	return nil
}

// BuildMesh runs the configured mesher over the chunk. It returns false
// without touching the mesh when the chunk has no generated data or is
// culled.
func (c *Chunk) BuildMesh() bool {
	defer profiling.Track("world.BuildMesh")()

	if !c.generated.Load() || c.lod == config.LODCulled || c.mesh == nil {
		return false
	}

	switch c.cfg.Mesher {
	case config.MesherCulled, config.MesherGreedy:
		c.fillVoxels()
		grid := meshing.VoxelGrid{Size: c.size, Voxels: c.voxels, Neighbor: c.NeighborVoxel}
		if c.cfg.Mesher == config.MesherCulled {
			c.mesh = meshing.GenerateCulled(&grid, c.cfg.VoxelSize, c.mesh)
		} else {
			c.mesh = meshing.GenerateGreedy(&grid, c.cfg.VoxelSize, c.mesh)
		}
	default:
		grid := meshing.Grid{
			Size:             c.size,
			Density:          c.density,
			Materials:        c.materials,
			NeighborDensity:  c.NeighborDensity,
			NeighborMaterial: c.NeighborMaterial,
		}
		opts := meshing.MarchingOptions{
			Step:      config.StepForLOD(c.lod),
			VoxelSize: c.cfg.VoxelSize,
			Dedup:     c.cfg.VertexDedup,
		}
		c.mesh = meshing.GenerateMarchingCubes(&grid, opts, c.mesh)
	}
	c.meshDirty = false
	return true
}

// fillVoxels refreshes the blocky scratch grid from density and materials.
func (c *Chunk) fillVoxels() {
	n := c.size
	c.voxels = resize(c.voxels, n*n*n)
	for z := range n {
		for y := range n {
			for x := range n {
				c.voxels[c.cellIndex(x, y, z)] = c.GetVoxel(x, y, z)
			}
		}
	}
}

// ModifyTerrain adds (build) or removes (dig) density inside a sphere.
// center and radius are in world voxel units so chunks sharing a boundary
// corner compute the same result for it. Cells that turn solid while
// building take mat; cells that turn empty while digging become Air.
func (c *Chunk) ModifyTerrain(center mgl32.Vec3, radius, strength float32, add bool, mat terrain.Material) bool {
	if !c.generated.Load() || radius <= 0 || len(c.density) == 0 {
		return false
	}
	if !mat.IsSolid() {
		mat = terrain.Dirt
	}

	n := c.size
	o := c.Origin()
	r := float64(radius)
	cx, cy, cz := float64(center.X()), float64(center.Y()), float64(center.Z())

	var lo, hi [3]int
	for i, v := range [3]float64{cx, cy, cz} {
		lo[i] = max(0, int(math.Floor(v-r))-o[i])
		hi[i] = min(n, int(math.Ceil(v+r))-o[i])
		if lo[i] > hi[i] {
			return false
		}
	}

	changed := false
	for z := lo[2]; z <= hi[2]; z++ {
		for y := lo[1]; y <= hi[1]; y++ {
			for x := lo[0]; x <= hi[0]; x++ {
				dx := float64(o[0]+x) - cx
				dy := float64(o[1]+y) - cy
				dz := float64(o[2]+z) - cz
				dist := math.Sqrt(dx*dx + dy*dy + dz*dz)
				if dist > r {
					continue
				}
				delta := float64(strength) * (1 - smoothstep(dist/r))
				i := c.cornerIndex(x, y, z)
				d := float64(c.density[i])
				if add {
					d -= delta
				} else {
					d += delta
				}
				d = math.Max(-1, math.Min(1, d))
				if float32(d) != c.density[i] {
					c.density[i] = float32(d)
					changed = true
				}
			}
		}
	}
	if !changed {
		return false
	}

	for z := max(lo[2]-1, 0); z <= min(hi[2], n-1); z++ {
		for y := max(lo[1]-1, 0); y <= min(hi[1], n-1); y++ {
			for x := max(lo[0]-1, 0); x <= min(hi[0], n-1); x++ {
				avg := c.cellDensity(x, y, z)
				i := c.cellIndex(x, y, z)
				m := c.materials[i]
				switch {
				case add && avg < 0 && !m.IsSolid():
					c.materials[i] = mat
				case !add && avg >= 0 && m.IsSolid() && m != terrain.Bedrock:
					c.materials[i] = terrain.Air
				}
			}
		}
	}

	if add {
		c.empty = false
	}
	c.meshDirty = true
	return true
}

// cellDensity averages the eight corners of a cell.
func (c *Chunk) cellDensity(x, y, z int) float64 {
	var sum float64
	for _, o := range cellCorners {
		sum += float64(c.density[c.cornerIndex(x+o[0], y+o[1], z+o[2])])
	}
	return sum / 8
}

var cellCorners = [8][3]int{
	{0, 0, 0}, {1, 0, 0}, {0, 1, 0}, {1, 1, 0},
	{0, 0, 1}, {1, 0, 1}, {0, 1, 1}, {1, 1, 1},
}

func smoothstep(t float64) float64 {
	t = math.Max(0, math.Min(1, t))
	return t * t * (3 - 2*t)
}
