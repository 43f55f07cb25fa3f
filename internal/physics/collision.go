package physics

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Collides checks whether an upright box centered horizontally on pos, with
// its base at pos.Z(), overlaps any solid voxel.
func Collides(pos mgl32.Vec3, halfWidth, height, voxelSize float32, isSolid SolidFunc) bool {
	if voxelSize <= 0 {
		voxelSize = 1
	}
	minX := voxelFloor(pos.X()-halfWidth, voxelSize)
	maxX := voxelFloor(pos.X()+halfWidth, voxelSize)
	minY := voxelFloor(pos.Y()-halfWidth, voxelSize)
	maxY := voxelFloor(pos.Y()+halfWidth, voxelSize)
	minZ := voxelFloor(pos.Z(), voxelSize)
	maxZ := voxelFloor(pos.Z()+height, voxelSize)

	for x := minX; x <= maxX; x++ {
		for y := minY; y <= maxY; y++ {
			for z := minZ; z <= maxZ; z++ {
				if !isSolid(x, y, z) {
					continue
				}
				bx, by, bz := float32(x)*voxelSize, float32(y)*voxelSize, float32(z)*voxelSize
				if pos.X()-halfWidth < bx+voxelSize && pos.X()+halfWidth > bx &&
					pos.Y()-halfWidth < by+voxelSize && pos.Y()+halfWidth > by &&
					pos.Z() < bz+voxelSize && pos.Z()+height > bz {
					return true
				}
			}
		}
	}
	return false
}

// FindGroundLevel scans down from fromZ and returns the top of the first solid
// voxel under (x,y), or ok=false if none is found within depth voxels.
func FindGroundLevel(x, y, fromZ, voxelSize float32, depth int, isSolid SolidFunc) (float32, bool) {
	if voxelSize <= 0 {
		voxelSize = 1
	}
	ix := voxelFloor(x, voxelSize)
	iy := voxelFloor(y, voxelSize)
	top := voxelFloor(fromZ, voxelSize)
	for iz := top; iz > top-depth; iz-- {
		if isSolid(ix, iy, iz) {
			return float32(iz+1) * voxelSize, true
		}
	}
	return 0, false
}

func voxelFloor(v, voxelSize float32) int {
	return int(math.Floor(float64(v / voxelSize)))
}
