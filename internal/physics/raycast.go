package physics

import (
	"math"

	"voxelterrain/internal/profiling"

	"github.com/go-gl/mathgl/mgl32"
)

// SolidFunc reports whether the voxel at lattice index (ix,iy,iz) blocks rays
// and bodies.
type SolidFunc func(ix, iy, iz int) bool

// RaycastResult stores the result of a raycast operation
type RaycastResult struct {
	Hit      bool
	Position mgl32.Vec3 // entry point on the hit voxel, world units
	Normal   mgl32.Vec3 // face the ray entered through
	Voxel    [3]int     // lattice index of the hit voxel
	Previous [3]int     // last empty voxel before the hit
	Distance float32
}

// Raycast walks the voxel lattice from start to end (Amanatides-Woo) and
// stops at the first solid voxel. Voxel (i,j,k) covers [i,i+1)*voxelSize on
// each axis. A ray that starts inside a solid voxel hits it at distance zero
// with a zero normal.
func Raycast(start, end mgl32.Vec3, voxelSize float32, isSolid SolidFunc) RaycastResult {
	defer profiling.Track("physics.Raycast")()

	var res RaycastResult
	if isSolid == nil {
		return res
	}
	if voxelSize <= 0 {
		voxelSize = 1
	}

	delta := end.Sub(start)
	length := delta.Len()

	var (
		voxel  [3]int
		step   [3]int
		tMax   [3]float64
		tDelta [3]float64
		dir    [3]float64
	)
	vs := float64(voxelSize)
	for i := range 3 {
		p := float64(start[i]) / vs
		voxel[i] = int(math.Floor(p))
		if length > 0 {
			dir[i] = float64(delta[i]) / float64(length)
		}
		switch {
		case dir[i] > 0:
			step[i] = 1
			tDelta[i] = vs / dir[i]
			tMax[i] = (float64(voxel[i]+1) - p) * vs / dir[i]
		case dir[i] < 0:
			step[i] = -1
			tDelta[i] = -vs / dir[i]
			tMax[i] = (p - float64(voxel[i])) * vs / -dir[i]
		default:
			tDelta[i] = math.Inf(1)
			tMax[i] = math.Inf(1)
		}
	}

	if isSolid(voxel[0], voxel[1], voxel[2]) {
		res.Hit = true
		res.Position = start
		res.Voxel = voxel
		res.Previous = voxel
		return res
	}
	if length == 0 {
		return res
	}

	maxT := float64(length)
	for {
		axis := 0
		if tMax[1] < tMax[axis] {
			axis = 1
		}
		if tMax[2] < tMax[axis] {
			axis = 2
		}
		t := tMax[axis]
		if t > maxT {
			return res
		}

		prev := voxel
		voxel[axis] += step[axis]
		tMax[axis] += tDelta[axis]

		if isSolid(voxel[0], voxel[1], voxel[2]) {
			var n mgl32.Vec3
			n[axis] = float32(-step[axis])
			res.Hit = true
			res.Voxel = voxel
			res.Previous = prev
			res.Normal = n
			res.Distance = float32(t)
			res.Position = start.Add(mgl32.Vec3{float32(dir[0]), float32(dir[1]), float32(dir[2])}.Mul(float32(t)))
			return res
		}
	}
}
