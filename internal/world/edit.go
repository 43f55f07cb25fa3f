package world

import (
	"math"

	"voxelterrain/internal/physics"
	"voxelterrain/internal/terrain"

	"github.com/go-gl/mathgl/mgl32"
)

// WorldToChunkCoord returns the chunk containing a world position.
func (s *ChunkStore) WorldToChunkCoord(pos mgl32.Vec3) ChunkCoord {
	return WorldToChunkCoord(pos, s.cfg.ChunkSize, s.cfg.VoxelSize)
}

// WorldToLocalVoxel returns the chunk containing pos and the voxel index
// inside it.
func (s *ChunkStore) WorldToLocalVoxel(pos mgl32.Vec3) (ChunkCoord, [3]int) {
	return WorldToLocalVoxel(pos, s.cfg.ChunkSize, s.cfg.VoxelSize)
}

// voxelAt reads a voxel by world lattice index. Positions not covered by a
// generated chunk are evaluated from the field.
func (s *ChunkStore) voxelAt(v [3]int) terrain.Voxel {
	coord, l := splitVoxel(v, s.cfg.ChunkSize)
	if c, ok := s.chunks[coord]; ok && c.generated.Load() && !c.pendingKill.Load() {
		return c.GetVoxel(l[0], l[1], l[2])
	}
	if s.field == nil {
		return terrain.Voxel{}
	}
	return terrain.Voxel{
		Material: s.field.MaterialAt(v[0], v[1], v[2]),
		Density:  terrain.DensityToByte(float64(float32(s.field.Density(v[0], v[1], v[2])))),
	}
}

// GetVoxelAtWorldPosition returns the voxel containing pos.
func (s *ChunkStore) GetVoxelAtWorldPosition(pos mgl32.Vec3) terrain.Voxel {
	return s.voxelAt(VoxelIndex(pos, s.cfg.VoxelSize))
}

// IsSolid reports whether the voxel at lattice index (ix,iy,iz) is solid.
func (s *ChunkStore) IsSolid(ix, iy, iz int) bool {
	return s.voxelAt([3]int{ix, iy, iz}).IsSolid()
}

// SetVoxelAtWorldPosition writes the voxel containing pos. The density goes
// to the voxel's minimum corner, which is mirrored into every loaded chunk
// that shares it. The owning chunk is marked for a rebuild, and so is the
// neighbor across each face the voxel touches. It returns false when the
// owning chunk is not loaded and generated.
func (s *ChunkStore) SetVoxelAtWorldPosition(pos mgl32.Vec3, v terrain.Voxel) bool {
	n := s.cfg.ChunkSize
	coord, l := splitVoxel(VoxelIndex(pos, s.cfg.VoxelSize), n)
	c, ok := s.chunks[coord]
	if !ok || !c.generated.Load() || c.pendingKill.Load() {
		return false
	}

	c.SetVoxel(l[0], l[1], l[2], v)
	s.markDirty(c)

	d := terrain.ByteToDensity(v.Density)
	for mask := 1; mask < 8; mask++ {
		off := [3]int{}
		corner := l
		shared := true
		for a := range 3 {
			if mask&(1<<a) == 0 {
				continue
			}
			if l[a] != 0 {
				shared = false
				break
			}
			off[a] = -1
			corner[a] = n
		}
		if !shared {
			continue
		}
		nb, ok := s.chunks[coord.Add(off[0], off[1], off[2])]
		if !ok || !nb.generated.Load() || nb.pendingKill.Load() {
			continue
		}
		nb.SetDensity(corner[0], corner[1], corner[2], d)
		s.markDirty(nb)
	}

	for a := range 3 {
		var off [3]int
		switch l[a] {
		case 0:
			off[a] = -1
		case n - 1:
			off[a] = 1
		default:
			continue
		}
		s.markDirty(s.chunks[coord.Add(off[0], off[1], off[2])])
	}
	return true
}

// ModifySphere digs (add=false) or builds (add=true) a smooth sphere
// centered at a world position, across every loaded chunk it reaches.
// Chunks within one voxel of the sphere are remeshed too, since their
// boundary normals read the edited corners. It returns the number of chunks
// whose data changed.
func (s *ChunkStore) ModifySphere(center mgl32.Vec3, radius, strength float32, add bool, mat terrain.Material) int {
	vs := s.cfg.VoxelSize
	if vs <= 0 || radius <= 0 {
		return 0
	}
	cv := center.Mul(1 / vs)
	rv := radius / vs

	lo, hi := s.chunkRange(cv, rv)
	changed := 0
	for z := lo.Z; z <= hi.Z; z++ {
		for y := lo.Y; y <= hi.Y; y++ {
			for x := lo.X; x <= hi.X; x++ {
				c, ok := s.chunks[ChunkCoord{X: x, Y: y, Z: z}]
				if !ok || !c.generated.Load() || c.pendingKill.Load() {
					continue
				}
				if c.ModifyTerrain(cv, rv, strength, add, mat) {
					changed++
				}
			}
		}
	}
	if changed == 0 {
		return 0
	}

	lo, hi = s.chunkRange(cv, rv+1)
	for z := lo.Z; z <= hi.Z; z++ {
		for y := lo.Y; y <= hi.Y; y++ {
			for x := lo.X; x <= hi.X; x++ {
				if c, ok := s.chunks[ChunkCoord{X: x, Y: y, Z: z}]; ok && c.generated.Load() {
					s.markDirty(c)
				}
			}
		}
	}
	return changed
}

// chunkRange returns the chunks whose corner lattice overlaps the box
// around a sphere in voxel units.
func (s *ChunkStore) chunkRange(center mgl32.Vec3, radius float32) (ChunkCoord, ChunkCoord) {
	n := s.cfg.ChunkSize
	var lo, hi [3]int
	for i := range 3 {
		a := int(math.Floor(float64(center[i] - radius)))
		b := int(math.Ceil(float64(center[i] + radius)))
		// Corner 0 of a chunk is corner N of the one below it.
		lo[i] = floorDiv(a-1, n)
		hi[i] = floorDiv(b, n)
	}
	return ChunkCoord{X: lo[0], Y: lo[1], Z: lo[2]}, ChunkCoord{X: hi[0], Y: hi[1], Z: hi[2]}
}

// VoxelRaycast walks voxels from start to end and reports the first solid
// one with the face the ray entered through.
func (s *ChunkStore) VoxelRaycast(start, end mgl32.Vec3) physics.RaycastResult {
	return physics.Raycast(start, end, s.cfg.VoxelSize, s.IsSolid)
}
