package noise

import "math"

// Fractal2D sums octaves of Noise2D and normalizes by the amplitude sum so the
// result stays in [0,1].
func (f *Field) Fractal2D(x, y float64, octaves int, persistence, lacunarity float64) float64 {
	return f.octaves2D(x, y, octaves, persistence, lacunarity, identity)
}

// Fractal3D is the 3D counterpart of Fractal2D.
func (f *Field) Fractal3D(x, y, z float64, octaves int, persistence, lacunarity float64) float64 {
	if octaves < 1 {
		octaves = 1
	}
	total, amp, freq, maxAmp := 0.0, 1.0, 1.0, 0.0
	for range octaves {
		total += f.Noise3D(x*freq, y*freq, z*freq) * amp
		maxAmp += amp
		amp *= persistence
		freq *= lacunarity
	}
	return normalize(total, maxAmp)
}

// Ridged2D produces sharp ridgelines: each octave contributes (1-|2n-1|)^2.
func (f *Field) Ridged2D(x, y float64, octaves int, persistence, lacunarity float64) float64 {
	return f.octaves2D(x, y, octaves, persistence, lacunarity, ridge)
}

// Billow2D produces rounded variation: each octave contributes |2n-1|.
func (f *Field) Billow2D(x, y float64, octaves int, persistence, lacunarity float64) float64 {
	return f.octaves2D(x, y, octaves, persistence, lacunarity, billow)
}

func (f *Field) octaves2D(x, y float64, octaves int, persistence, lacunarity float64, shape func(float64) float64) float64 {
	if octaves < 1 {
		octaves = 1
	}
	total, amp, freq, maxAmp := 0.0, 1.0, 1.0, 0.0
	for range octaves {
		total += shape(f.Noise2D(x*freq, y*freq)) * amp
		maxAmp += amp
		amp *= persistence
		freq *= lacunarity
	}
	return normalize(total, maxAmp)
}

func identity(n float64) float64 { return n }

func ridge(n float64) float64 {
	r := 1 - math.Abs(2*n-1)
	return r * r
}

func billow(n float64) float64 {
	return math.Abs(2*n - 1)
}

func normalize(total, maxAmp float64) float64 {
	if maxAmp <= 0 {
		return 0
	}
	v := total / maxAmp
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
