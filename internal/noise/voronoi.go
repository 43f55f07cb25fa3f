package noise

import "math"

// Voronoi2D returns the distance from (x,y)/scale to the nearest cell feature
// point and that point's position in cell space. Each cell holds one point
// hashed from the permutation table.
func (f *Field) Voronoi2D(x, y, scale float64) (float64, [2]float64) {
	if scale == 0 {
		scale = 1
	}
	x /= scale
	y /= scale
	cx, cy := math.Floor(x), math.Floor(y)

	minDist := math.MaxFloat64
	var best [2]float64
	for dy := -1.0; dy <= 1; dy++ {
		for dx := -1.0; dx <= 1; dx++ {
			nx, ny := cx+dx, cy+dy
			px, py := f.cellPoint(nx, ny)
			px += nx
			py += ny
			ddx, ddy := px-x, py-y
			d := ddx*ddx + ddy*ddy
			if d < minDist {
				minDist = d
				best = [2]float64{px, py}
			}
		}
	}
	return math.Sqrt(minDist), best
}

// cellPoint returns the feature point offset inside cell (cx,cy), in [0,1)^2.
func (f *Field) cellPoint(cx, cy float64) (float64, float64) {
	xi, yi := wrap(cx), wrap(cy)
	h := f.perm[int(f.perm[xi])+yi]
	h2 := f.perm[int(h)+1]
	return float64(h) / 256, float64(h2) / 256
}
