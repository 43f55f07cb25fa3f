package world

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// ChunkCoord addresses a chunk on the chunk lattice. Z is the vertical layer.
type ChunkCoord struct {
	X, Y, Z int
}

// Add offsets c by (dx,dy,dz) chunks.
func (c ChunkCoord) Add(dx, dy, dz int) ChunkCoord {
	return ChunkCoord{X: c.X + dx, Y: c.Y + dy, Z: c.Z + dz}
}

// HorizontalDistance is the Euclidean distance between c and o in the XY
// plane, in chunks.
func (c ChunkCoord) HorizontalDistance(o ChunkCoord) float64 {
	dx := float64(c.X - o.X)
	dy := float64(c.Y - o.Y)
	return math.Sqrt(dx*dx + dy*dy)
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

func floorMod(a, b int) int {
	return a - floorDiv(a, b)*b
}

// VoxelIndex maps a world position to the lattice index of the voxel that
// contains it.
func VoxelIndex(pos mgl32.Vec3, voxelSize float32) [3]int {
	if voxelSize <= 0 {
		voxelSize = 1
	}
	return [3]int{
		int(math.Floor(float64(pos.X() / voxelSize))),
		int(math.Floor(float64(pos.Y() / voxelSize))),
		int(math.Floor(float64(pos.Z() / voxelSize))),
	}
}

// WorldToChunkCoord returns the chunk containing pos.
func WorldToChunkCoord(pos mgl32.Vec3, chunkSize int, voxelSize float32) ChunkCoord {
	v := VoxelIndex(pos, voxelSize)
	return ChunkCoord{
		X: floorDiv(v[0], chunkSize),
		Y: floorDiv(v[1], chunkSize),
		Z: floorDiv(v[2], chunkSize),
	}
}

// WorldToLocalVoxel returns the chunk containing pos and the voxel index
// inside it, each component in [0, chunkSize).
func WorldToLocalVoxel(pos mgl32.Vec3, chunkSize int, voxelSize float32) (ChunkCoord, [3]int) {
	return splitVoxel(VoxelIndex(pos, voxelSize), chunkSize)
}

func splitVoxel(v [3]int, chunkSize int) (ChunkCoord, [3]int) {
	c := ChunkCoord{
		X: floorDiv(v[0], chunkSize),
		Y: floorDiv(v[1], chunkSize),
		Z: floorDiv(v[2], chunkSize),
	}
	local := [3]int{
		floorMod(v[0], chunkSize),
		floorMod(v[1], chunkSize),
		floorMod(v[2], chunkSize),
	}
	return c, local
}

// ChunkOrigin returns the world position of the chunk's minimum corner.
func ChunkOrigin(c ChunkCoord, chunkSize int, voxelSize float32) mgl32.Vec3 {
	s := float32(chunkSize) * voxelSize
	return mgl32.Vec3{float32(c.X) * s, float32(c.Y) * s, float32(c.Z) * s}
}
