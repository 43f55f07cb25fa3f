package noise

import (
	"math"
	"math/rand"
	"testing"
)

// TestNoiseDeterministic verifies two fields with the same seed agree bit for bit
func TestNoiseDeterministic(t *testing.T) {
	a := New(12345)
	b := New(12345)
	rng := rand.New(rand.NewSource(7))

	for i := 0; i < 1000; i++ {
		x := rng.Float64()*2000 - 1000
		y := rng.Float64()*2000 - 1000
		z := rng.Float64()*2000 - 1000

		if va, vb := a.Noise2D(x, y), b.Noise2D(x, y); va != vb {
			t.Fatalf("Noise2D(%f, %f) not deterministic: %v != %v", x, y, va, vb)
		}
		if va, vb := a.Noise3D(x, y, z), b.Noise3D(x, y, z); va != vb {
			t.Fatalf("Noise3D(%f, %f, %f) not deterministic: %v != %v", x, y, z, va, vb)
		}
		if va, vb := a.Fractal2D(x, y, 4, 0.5, 2), b.Fractal2D(x, y, 4, 0.5, 2); va != vb {
			t.Fatalf("Fractal2D(%f, %f) not deterministic: %v != %v", x, y, va, vb)
		}
	}
}

// TestSeedsDiffer verifies different seeds give different fields
func TestSeedsDiffer(t *testing.T) {
	a := New(1)
	b := New(2)
	same := 0
	for i := 0; i < 100; i++ {
		x := float64(i)*1.37 + 0.5
		if a.Noise2D(x, x*0.7) == b.Noise2D(x, x*0.7) {
			same++
		}
	}
	if same > 10 {
		t.Errorf("seeds 1 and 2 agree on %d/100 samples", same)
	}
}

// TestNoiseRange verifies every variant stays in [0,1]
func TestNoiseRange(t *testing.T) {
	f := New(42)
	rng := rand.New(rand.NewSource(12345))

	check := func(name string, v float64) {
		t.Helper()
		if v < 0 || v > 1 || math.IsNaN(v) {
			t.Fatalf("%s = %f, expected in [0,1]", name, v)
		}
	}
	for i := 0; i < 2000; i++ {
		x := rng.Float64()*400 - 200
		y := rng.Float64()*400 - 200
		z := rng.Float64()*400 - 200

		check("Noise2D", f.Noise2D(x, y))
		check("Noise3D", f.Noise3D(x, y, z))
		check("Fractal2D", f.Fractal2D(x, y, 6, 0.5, 2))
		check("Fractal3D", f.Fractal3D(x, y, z, 3, 0.5, 2))
		check("Ridged2D", f.Ridged2D(x, y, 3, 0.5, 2))
		check("Billow2D", f.Billow2D(x, y, 3, 0.5, 2))
	}
}

// TestNoiseExtremeCoordinates verifies no NaN or out of range values near the int32 limits
func TestNoiseExtremeCoordinates(t *testing.T) {
	f := New(99)
	coords := []float64{math.MaxInt32, math.MinInt32, math.MaxInt32 * 0.01, -math.MaxInt32 * 3.7, 1e12}
	for _, c := range coords {
		for _, v := range []float64{f.Noise2D(c, -c), f.Noise3D(c, c, -c), f.Fractal3D(c, 1, c, 4, 0.5, 2)} {
			if math.IsNaN(v) || v < 0 || v > 1 {
				t.Errorf("noise at %g = %f, expected finite value in [0,1]", c, v)
			}
		}
	}
}

// TestNoiseLatticeIsMidpoint verifies gradient noise is zero (0.5 remapped) on integer lattice points
func TestNoiseLatticeIsMidpoint(t *testing.T) {
	f := New(3)
	for x := -5; x <= 5; x++ {
		for y := -5; y <= 5; y++ {
			if v := f.Noise2D(float64(x), float64(y)); v != 0.5 {
				t.Errorf("Noise2D(%d, %d) = %f, expected 0.5 on lattice", x, y, v)
			}
		}
	}
}

// TestNoiseContinuity verifies small steps give small changes
func TestNoiseContinuity(t *testing.T) {
	f := New(5)
	const step = 0.001
	for i := 0; i < 500; i++ {
		x := float64(i) * 0.173
		a := f.Noise3D(x, x*0.5, 1.25)
		b := f.Noise3D(x+step, x*0.5, 1.25)
		if math.Abs(a-b) > 0.01 {
			t.Errorf("Noise3D jumps by %f over step %f at x=%f", math.Abs(a-b), step, x)
		}
	}
}

// TestVoronoiNearestPoint verifies the returned distance matches the returned point
func TestVoronoiNearestPoint(t *testing.T) {
	f := New(11)
	for i := 0; i < 200; i++ {
		x := float64(i)*3.1 - 300
		y := float64(i)*1.7 + 40
		d, p := f.Voronoi2D(x, y, 16)
		want := math.Hypot(p[0]-x/16, p[1]-y/16)
		if math.Abs(d-want) > 1e-9 {
			t.Errorf("Voronoi2D(%f, %f) distance %f does not match point distance %f", x, y, d, want)
		}
		if d > math.Sqrt2*2 {
			t.Errorf("Voronoi2D(%f, %f) distance %f larger than neighborhood", x, y, d)
		}
	}
}

func BenchmarkFractal3D(b *testing.B) {
	f := New(1)
	for i := 0; i < b.N; i++ {
		f.Fractal3D(float64(i)*0.01, 3.3, 7.7, 4, 0.5, 2)
	}
}
