package meshing

import (
	"image/color"
	"math"

	"voxelterrain/internal/profiling"
	"voxelterrain/internal/terrain"

	"github.com/go-gl/mathgl/mgl32"
)

// Grid is the smooth mesher's view of one chunk: (N+1)^3 density corners,
// N^3 material cells and accessors for samples that fall outside them.
type Grid struct {
	Size      int
	Density   []float32
	Materials []terrain.Material

	// NeighborDensity and NeighborMaterial take chunk-local coordinates
	// outside the grid. A nil accessor reads as air.
	NeighborDensity  func(x, y, z int) float64
	NeighborMaterial func(x, y, z int) terrain.Material
}

func (g *Grid) density(x, y, z int) float64 {
	n := g.Size
	if x >= 0 && y >= 0 && z >= 0 && x <= n && y <= n && z <= n {
		s := n + 1
		return float64(g.Density[x+y*s+z*s*s])
	}
	if g.NeighborDensity == nil {
		return 1
	}
	return g.NeighborDensity(x, y, z)
}

func (g *Grid) material(x, y, z int) terrain.Material {
	n := g.Size
	if x >= 0 && y >= 0 && z >= 0 && x < n && y < n && z < n {
		return g.Materials[x+y*n+z*n*n]
	}
	if g.NeighborMaterial == nil {
		return terrain.Air
	}
	return g.NeighborMaterial(x, y, z)
}

// MarchingOptions controls one marching cubes pass.
type MarchingOptions struct {
	Step      int // lattice stride, 1 for full detail
	VoxelSize float32
	Dedup     bool
}

type vertexKey [3]int32

const dedupScale = 100

// GenerateMarchingCubes extracts the zero isosurface of g. Output is written
// into dst (reset first) when non-nil.
func GenerateMarchingCubes(g *Grid, opts MarchingOptions, dst *MeshBuffers) *MeshBuffers {
	defer profiling.Track("meshing.GenerateMarchingCubes")()

	if dst == nil {
		dst = &MeshBuffers{}
	}
	dst.Reset()
	if g == nil || g.Size <= 0 || len(g.Density) < (g.Size+1)*(g.Size+1)*(g.Size+1) {
		return dst
	}

	step := opts.Step
	if step < 1 {
		step = 1
	}
	if step > g.Size {
		step = g.Size
	}
	voxelSize := opts.VoxelSize
	if voxelSize <= 0 {
		voxelSize = 1
	}

	mc := marcher{grid: g, step: step, voxelSize: voxelSize, out: dst}
	if opts.Dedup {
		mc.dedup = make(map[vertexKey]uint32, 1024)
	}

	n := g.Size
	var d [8]float64
	var edgeVerts [12]uint32
	for z := 0; z+step <= n; z += step {
		for y := 0; y+step <= n; y += step {
			for x := 0; x+step <= n; x += step {
				cfg := 0
				for i, o := range cornerOffsets {
					d[i] = g.density(x+o[0]*step, y+o[1]*step, z+o[2]*step)
					if d[i] < 0 {
						cfg |= 1 << i
					}
				}
				edges := edgeTable[cfg]
				if edges == 0 {
					continue
				}

				c := mc.cellColor(x, y, z)
				for e := range 12 {
					if edges&(1<<e) != 0 {
						edgeVerts[e] = mc.edgeVertex(x, y, z, e, &d, c)
					}
				}
				tris := &triTable[cfg]
				for t := 0; t < 15 && tris[t] >= 0; t += 3 {
					a, b, cc := edgeVerts[tris[t]], edgeVerts[tris[t+1]], edgeVerts[tris[t+2]]
					if a == b || b == cc || a == cc {
						continue
					}
					dst.Triangles = append(dst.Triangles, a, b, cc)
				}
			}
		}
	}
	return dst
}

type marcher struct {
	grid      *Grid
	step      int
	voxelSize float32
	dedup     map[vertexKey]uint32
	out       *MeshBuffers
}

// edgeVertex interpolates the surface crossing on edge e of the cube at
// (x,y,z). Endpoints are ordered by position so both cubes sharing an edge
// compute the identical point.
func (mc *marcher) edgeVertex(x, y, z, e int, d *[8]float64, c color.RGBA) uint32 {
	ca, cb := edgeCorners[e][0], edgeCorners[e][1]
	oa, ob := cornerOffsets[ca], cornerOffsets[cb]
	s := mc.step
	pa := [3]int{x + oa[0]*s, y + oa[1]*s, z + oa[2]*s}
	pb := [3]int{x + ob[0]*s, y + ob[1]*s, z + ob[2]*s}
	da, db := d[ca], d[cb]
	if pb[0] < pa[0] || pb[1] < pa[1] || pb[2] < pa[2] {
		pa, pb = pb, pa
		da, db = db, da
	}

	t := 0.5
	if den := da - db; math.Abs(den) > 1e-12 {
		t = da / den
	}
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}

	px := float64(pa[0]) + t*float64(pb[0]-pa[0])
	py := float64(pa[1]) + t*float64(pb[1]-pa[1])
	pz := float64(pa[2]) + t*float64(pb[2]-pa[2])

	var key vertexKey
	if mc.dedup != nil {
		key = vertexKey{
			int32(math.Round(px * dedupScale)),
			int32(math.Round(py * dedupScale)),
			int32(math.Round(pz * dedupScale)),
		}
		if idx, ok := mc.dedup[key]; ok {
			return idx
		}
	}

	ga := mc.gradient(pa)
	gb := mc.gradient(pb)
	normal := ga.Add(gb.Sub(ga).Mul(float32(t)))
	if normal.Len() < 1e-6 {
		normal = mgl32.Vec3{0, 0, 1}
	} else {
		normal = normal.Normalize()
	}

	pos := mgl32.Vec3{float32(px), float32(py), float32(pz)}
	uv, tangent := planarMapping(pos, normal)
	idx := mc.out.addVertex(pos.Mul(mc.voxelSize), normal, uv, c, tangent)
	if mc.dedup != nil {
		mc.dedup[key] = idx
	}
	return idx
}

// gradient is the central difference of density at a lattice corner. It
// points from solid towards air.
func (mc *marcher) gradient(p [3]int) mgl32.Vec3 {
	g := mc.grid
	s := mc.step
	x, y, z := p[0], p[1], p[2]
	return mgl32.Vec3{
		float32(g.density(x+s, y, z) - g.density(x-s, y, z)),
		float32(g.density(x, y+s, z) - g.density(x, y-s, z)),
		float32(g.density(x, y, z+s) - g.density(x, y, z-s)),
	}
}

// cellColor picks the most common solid material among the cube's corner
// cells. Corners on the far faces read the next cells over, through the
// neighbour accessor at the chunk edge. Ties go to the earliest corner, so
// the cube's own cell wins them.
func (mc *marcher) cellColor(x, y, z int) color.RGBA {
	var counts [8]int
	var mats [8]terrain.Material
	s := mc.step
	for i, o := range cornerOffsets {
		mats[i] = mc.grid.material(x+o[0]*s, y+o[1]*s, z+o[2]*s)
		if !mats[i].IsSolid() {
			continue
		}
		for j := 0; j <= i; j++ {
			if mats[j] == mats[i] {
				counts[j]++
				break
			}
		}
	}
	best := -1
	for i, n := range counts {
		if n > 0 && (best < 0 || n > counts[best]) {
			best = i
		}
	}
	if best < 0 {
		return terrain.Stone.Color()
	}
	return mats[best].Color()
}

// planarMapping projects along the dominant normal axis.
func planarMapping(pos, normal mgl32.Vec3) (mgl32.Vec2, mgl32.Vec4) {
	ax := float32(math.Abs(float64(normal.X())))
	ay := float32(math.Abs(float64(normal.Y())))
	az := float32(math.Abs(float64(normal.Z())))

	var uv mgl32.Vec2
	var axis mgl32.Vec3
	switch {
	case az >= ax && az >= ay:
		uv = mgl32.Vec2{pos.X(), pos.Y()}
		axis = mgl32.Vec3{1, 0, 0}
	case ax >= ay:
		uv = mgl32.Vec2{pos.Y(), pos.Z()}
		axis = mgl32.Vec3{0, 1, 0}
	default:
		uv = mgl32.Vec2{pos.X(), pos.Z()}
		axis = mgl32.Vec3{1, 0, 0}
	}
	t := axis.Sub(normal.Mul(normal.Dot(axis)))
	if t.Len() < 1e-6 {
		t = axis
	}
	t = t.Normalize()
	return uv, mgl32.Vec4{t.X(), t.Y(), t.Z(), 1}
}
