package noise

import "math"

// Field is a seeded gradient-noise source. A Field is immutable after New and
// safe for concurrent use.
type Field struct {
	seed int64
	perm [512]uint8
}

// New builds the permutation table for seed. Equal seeds give identical fields.
func New(seed int64) *Field {
	f := &Field{seed: seed}
	var p [256]uint8
	for i := range p {
		p[i] = uint8(i)
	}
	// LCG driven Fisher-Yates.
	state := uint64(seed)
	for i := 255; i > 0; i-- {
		state = state*6364136223846793005 + 1442695040888963407
		j := int((state >> 33) % uint64(i+1))
		p[i], p[j] = p[j], p[i]
	}
	for i := range 512 {
		f.perm[i] = p[i&255]
	}
	return f
}

// Seed returns the seed the field was built from.
func (f *Field) Seed() int64 { return f.seed }

// Noise2D returns Perlin noise in [0,1].
func (f *Field) Noise2D(x, y float64) float64 {
	fx, fy := math.Floor(x), math.Floor(y)
	xi, yi := wrap(fx), wrap(fy)
	x -= fx
	y -= fy

	u, v := fade(x), fade(y)
	p := &f.perm

	a := int(p[xi]) + yi
	b := int(p[xi+1]) + yi
	aa, ab := p[a], p[a+1]
	ba, bb := p[b], p[b+1]

	r := lerp(v,
		lerp(u, grad2(aa, x, y), grad2(ba, x-1, y)),
		lerp(u, grad2(ab, x, y-1), grad2(bb, x-1, y-1)))
	return remap(r)
}

// Noise3D returns Perlin noise in [0,1].
func (f *Field) Noise3D(x, y, z float64) float64 {
	fx, fy, fz := math.Floor(x), math.Floor(y), math.Floor(z)
	xi, yi, zi := wrap(fx), wrap(fy), wrap(fz)
	x -= fx
	y -= fy
	z -= fz

	u, v, w := fade(x), fade(y), fade(z)
	p := &f.perm

	a := int(p[xi]) + yi
	aa := int(p[a]) + zi
	ab := int(p[a+1]) + zi
	b := int(p[xi+1]) + yi
	ba := int(p[b]) + zi
	bb := int(p[b+1]) + zi

	r := lerp(w,
		lerp(v,
			lerp(u, grad3(p[aa], x, y, z), grad3(p[ba], x-1, y, z)),
			lerp(u, grad3(p[ab], x, y-1, z), grad3(p[bb], x-1, y-1, z))),
		lerp(v,
			lerp(u, grad3(p[aa+1], x, y, z-1), grad3(p[ba+1], x-1, y, z-1)),
			lerp(u, grad3(p[ab+1], x, y-1, z-1), grad3(p[bb+1], x-1, y-1, z-1))))
	return remap(r)
}

// wrap maps a floored lattice coordinate into the table range. Coordinates too
// large for an exact integer conversion still land on a valid index.
func wrap(f float64) int {
	m := math.Mod(f, 256)
	if m < 0 {
		m += 256
	}
	i := int(m)
	if i < 0 || i > 255 {
		return 0
	}
	return i
}

func fade(t float64) float64 {
	return t * t * t * (t*(t*6-15) + 10)
}

func lerp(t, a, b float64) float64 {
	return a + t*(b-a)
}

func remap(r float64) float64 {
	v := (r + 1) * 0.5
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	if v != v {
		return 0.5
	}
	return v
}

func grad2(hash uint8, x, y float64) float64 {
	h := hash & 7
	u, v := y, x
	if h < 4 {
		u, v = x, y
	}
	if h&1 != 0 {
		u = -u
	}
	if h&2 != 0 {
		v = -v
	}
	return u + v
}

var gradients3 = [16][3]float64{
	{1, 1, 0}, {-1, 1, 0}, {1, -1, 0}, {-1, -1, 0},
	{1, 0, 1}, {-1, 0, 1}, {1, 0, -1}, {-1, 0, -1},
	{0, 1, 1}, {0, -1, 1}, {0, 1, -1}, {0, -1, -1},
	{1, 1, 0}, {-1, 1, 0}, {0, -1, 1}, {0, -1, -1},
}

func grad3(hash uint8, x, y, z float64) float64 {
	g := &gradients3[hash&15]
	return g[0]*x + g[1]*y + g[2]*z
}
