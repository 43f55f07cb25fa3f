package meshing

// Cube corner layout:
//
//	corner 0 (0,0,0)  1 (1,0,0)  2 (1,1,0)  3 (0,1,0)
//	corner 4 (0,0,1)  5 (1,0,1)  6 (1,1,1)  7 (0,1,1)
//
// Edges 0-3 ring the bottom face, 4-7 the top face, 8-11 are the verticals.
var cornerOffsets = [8][3]int{
	{0, 0, 0}, {1, 0, 0}, {1, 1, 0}, {0, 1, 0},
	{0, 0, 1}, {1, 0, 1}, {1, 1, 1}, {0, 1, 1},
}

var edgeCorners = [12][2]int{
	{0, 1}, {1, 2}, {2, 3}, {3, 0},
	{4, 5}, {5, 6}, {6, 7}, {7, 4},
	{0, 4}, {1, 5}, {2, 6}, {3, 7},
}

// cubeFaces lists each face's corners counter-clockwise seen from outside.
var cubeFaces = [6][4]int{
	{0, 3, 2, 1}, // -z
	{4, 5, 6, 7}, // +z
	{0, 1, 5, 4}, // -y
	{3, 7, 6, 2}, // +y
	{0, 4, 7, 3}, // -x
	{1, 2, 6, 5}, // +x
}

// edgeTable has bit e set when edge e is crossed by the surface for a corner
// configuration. triTable lists edge triples per configuration, terminated
// by -1. A corner is inside (bit set) when its density is negative.
var (
	edgeTable [256]uint16
	triTable  [256][16]int8

	// edgeFaces has bit f set when the edge lies on cubeFaces[f].
	edgeFaces [12]uint8
)

func init() {
	for f, face := range cubeFaces {
		for k := range 4 {
			edgeFaces[edgeBetween(face[k], face[(k+1)%4])] |= 1 << f
		}
	}
	for cfg := range 256 {
		edgeTable[cfg] = crossedEdges(cfg)
		triTable[cfg] = triangulate(cfg)
	}
}

func crossedEdges(cfg int) uint16 {
	var mask uint16
	for e, c := range edgeCorners {
		if inside(cfg, c[0]) != inside(cfg, c[1]) {
			mask |= 1 << e
		}
	}
	return mask
}

func inside(cfg, corner int) bool {
	return cfg&(1<<corner) != 0
}

func edgeBetween(a, b int) int {
	for e, c := range edgeCorners {
		if (c[0] == a && c[1] == b) || (c[0] == b && c[1] == a) {
			return e
		}
	}
	return -1
}

// triangulate builds the polygons for one configuration. On every face the
// surface enters across one edge and leaves across another; walking each
// face counter-clockwise from outside and pairing every entering edge with
// the next leaving edge links the crossed edges into closed loops whose
// winding faces the outside (positive density). Faces with two diagonal
// inside corners always keep those corners apart, which only depends on the
// face itself, so neighbouring cubes agree on every segment drawn on a face.
// Loops are ear-clipped so no diagonal joins two edges of the same face;
// otherwise it would overlap the neighbouring cube's segment there.
func triangulate(cfg int) [16]int8 {
	var next [12]int
	for i := range next {
		next[i] = -1
	}

	for _, face := range cubeFaces {
		var edges [4]int
		var entering, leaving [4]bool
		for k := range 4 {
			a, b := face[k], face[(k+1)%4]
			edges[k] = edgeBetween(a, b)
			ia, ib := inside(cfg, a), inside(cfg, b)
			entering[k] = !ia && ib
			leaving[k] = ia && !ib
		}
		for k := range 4 {
			if !entering[k] {
				continue
			}
			for j := 1; j < 4; j++ {
				if l := (k + j) % 4; leaving[l] {
					next[edges[k]] = edges[l]
					break
				}
			}
		}
	}

	var out [16]int8
	for i := range out {
		out[i] = -1
	}
	n := 0
	var visited [12]bool
	for start := range 12 {
		if next[start] < 0 || visited[start] {
			continue
		}
		var loop []int
		for e := start; !visited[e]; e = next[e] {
			visited[e] = true
			loop = append(loop, e)
		}
		for len(loop) > 3 {
			i := earIndex(loop)
			if i < 0 {
				panic("meshing: no interior diagonal for loop")
			}
			a, c := loop[(i+len(loop)-1)%len(loop)], loop[(i+1)%len(loop)]
			n = emit(&out, n, a, loop[i], c)
			loop = append(loop[:i], loop[i+1:]...)
		}
		n = emit(&out, n, loop[0], loop[1], loop[2])
	}
	return out
}

// earIndex returns a loop position whose two neighbours share no cube face.
func earIndex(loop []int) int {
	for i := range loop {
		prev, next := loop[(i+len(loop)-1)%len(loop)], loop[(i+1)%len(loop)]
		if edgeFaces[prev]&edgeFaces[next] == 0 {
			return i
		}
	}
	return -1
}

func emit(out *[16]int8, n, a, b, c int) int {
	if n+3 > 15 {
		panic("meshing: triangle table overflow")
	}
	out[n], out[n+1], out[n+2] = int8(a), int8(b), int8(c)
	return n + 3
}
