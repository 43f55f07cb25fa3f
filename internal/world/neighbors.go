package world

import (
	"math/bits"

	"voxelterrain/internal/terrain"
)

// chunkLookup resolves a coordinate to a loaded chunk. Neighbor links are
// coordinates resolved through it at query time, never stored pointers.
type chunkLookup interface {
	loadedChunk(c ChunkCoord) *Chunk
}

// linkBit indexes the 26 surrounding chunks. Offsets outside [-1,1] have no
// bit.
func linkBit(dx, dy, dz int) uint32 {
	if dx < -1 || dx > 1 || dy < -1 || dy > 1 || dz < -1 || dz > 1 || (dx == 0 && dy == 0 && dz == 0) {
		return 0
	}
	return 1 << uint((dx+1)+(dy+1)*3+(dz+1)*9)
}

func (c *Chunk) link(dx, dy, dz int) { c.links |= linkBit(dx, dy, dz) }
func (c *Chunk) unlink(dx, dy, dz int) { c.links &^= linkBit(dx, dy, dz) }

// IsLinked reports whether the chunk at offset (dx,dy,dz) is wired in.
func (c *Chunk) IsLinked(dx, dy, dz int) bool {
	b := linkBit(dx, dy, dz)
	return b != 0 && c.links&b != 0
}

// LinkCount returns the number of wired neighbors.
func (c *Chunk) LinkCount() int { return bits.OnesCount32(c.links) }

// neighbor returns the linked chunk at an offset if it is safe to read.
func (c *Chunk) neighbor(dx, dy, dz int) *Chunk {
	if c.lookup == nil || !c.IsLinked(dx, dy, dz) {
		return nil
	}
	nb := c.lookup.loadedChunk(c.coord.Add(dx, dy, dz))
	if nb == nil || nb.size != c.size || !nb.generated.Load() || nb.pendingKill.Load() {
		return nil
	}
	return nb
}

// splitCorner maps a local corner coordinate to a chunk offset and the corner
// index inside that chunk. Values in [0,n] stay in this chunk.
func splitCorner(v, n int) (int, int) {
	switch {
	case v < 0:
		d := floorDiv(v, n)
		return d, v - d*n
	case v > n:
		d := floorDiv(v-1, n)
		return d, v - d*n
	}
	return 0, v
}

// NeighborDensity reads a corner at chunk-local coordinates that may lie
// outside [0,N]. It uses the owning neighbor when it is linked and
// generated, else the field. Field values are rounded through float32 like
// stored samples, so both paths agree bit for bit on untouched terrain.
func (c *Chunk) NeighborDensity(x, y, z int) float64 {
	n := c.size
	dx, lx := splitCorner(x, n)
	dy, ly := splitCorner(y, n)
	dz, lz := splitCorner(z, n)
	if dx == 0 && dy == 0 && dz == 0 {
		return c.GetDensity(x, y, z)
	}
	if nb := c.neighbor(dx, dy, dz); nb != nil {
		return nb.GetDensity(lx, ly, lz)
	}
	if c.field == nil {
		return 1
	}
	o := c.Origin()
	return float64(float32(c.field.Density(o[0]+x, o[1]+y, o[2]+z)))
}

// NeighborMaterial reads a cell at chunk-local coordinates that may lie
// outside [0,N).
func (c *Chunk) NeighborMaterial(x, y, z int) terrain.Material {
	n := c.size
	dx, dy, dz := floorDiv(x, n), floorDiv(y, n), floorDiv(z, n)
	if dx == 0 && dy == 0 && dz == 0 {
		return c.GetMaterial(x, y, z)
	}
	if nb := c.neighbor(dx, dy, dz); nb != nil {
		return nb.GetMaterial(floorMod(x, n), floorMod(y, n), floorMod(z, n))
	}
	if c.field == nil {
		return terrain.Air
	}
	o := c.Origin()
	return c.field.MaterialAt(o[0]+x, o[1]+y, o[2]+z)
}

// NeighborVoxel is the fused voxel view of NeighborMaterial and the cell's
// minimum corner density.
func (c *Chunk) NeighborVoxel(x, y, z int) terrain.Voxel {
	n := c.size
	dx, dy, dz := floorDiv(x, n), floorDiv(y, n), floorDiv(z, n)
	if dx == 0 && dy == 0 && dz == 0 {
		return c.GetVoxel(x, y, z)
	}
	if nb := c.neighbor(dx, dy, dz); nb != nil {
		return nb.GetVoxel(floorMod(x, n), floorMod(y, n), floorMod(z, n))
	}
	if c.field == nil {
		return terrain.Voxel{}
	}
	o := c.Origin()
	wx, wy, wz := o[0]+x, o[1]+y, o[2]+z
	return terrain.Voxel{
		Material: c.field.MaterialAt(wx, wy, wz),
		Density:  terrain.DensityToByte(float64(float32(c.field.Density(wx, wy, wz)))),
	}
}
