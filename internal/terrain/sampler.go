package terrain

import (
	"math"

	"voxelterrain/internal/config"
	"voxelterrain/internal/noise"
)

// Sampler evaluates the terrain field. It holds no mutable state and is safe
// for concurrent use by generation workers.
type Sampler struct {
	cfg   *config.Settings
	noise *noise.Field
}

// NewSampler builds a sampler over immutable settings.
func NewSampler(cfg *config.Settings) *Sampler {
	return &Sampler{cfg: cfg, noise: noise.New(cfg.Seed)}
}

// Settings returns the settings the sampler was built with.
func (s *Sampler) Settings() *config.Settings { return s.cfg }

// Column caches every horizontal channel for one (x, y) position so that a
// chunk can evaluate a whole vertical run without recomputing them.
type Column struct {
	X, Y int

	Height          float64
	Continentalness float64
	Erosion         float64
	PeaksValleys    float64
	Temperature     float64
	Moisture        float64

	Plateau float64
	Valley  float64
	Canyon  float64

	Climate Biome
	Biome   Biome
}

// Column evaluates the horizontal channels at (x, y).
func (s *Sampler) Column(x, y int) Column {
	c := Column{X: x, Y: y}
	c.Continentalness = s.Continentalness(x, y)
	c.Erosion = s.Erosion(x, y)
	c.PeaksValleys = s.PeaksValleys(x, y)
	c.Temperature = s.Temperature(x, y)
	c.Moisture = s.Moisture(x, y)
	c.Plateau = s.PlateauInfluence(x, y)
	c.Valley = s.ValleyInfluence(x, y)
	c.Canyon = s.CanyonInfluence(x, y)
	c.Height = s.height(&c)
	c.Climate = classifyClimate(&c)
	c.Biome = classifyFeature(&c)
	return c
}

// TerrainHeight returns the surface height at (x, y) in voxels.
func (s *Sampler) TerrainHeight(x, y int) float64 {
	c := s.Column(x, y)
	return c.Height
}

// BiomeAt returns the biome at (x, y), feature biomes first.
func (s *Sampler) BiomeAt(x, y int) Biome {
	c := s.Column(x, y)
	return c.Biome
}

// Density returns the signed density at a grid corner: negative is solid,
// positive is air. The result is always in [-1,1].
func (s *Sampler) Density(x, y, z int) float64 {
	c := s.Column(x, y)
	return s.DensityInColumn(&c, z)
}

// MaterialAt returns the material of the voxel cell whose minimum corner is
// (x, y, z).
func (s *Sampler) MaterialAt(x, y, z int) Material {
	c := s.Column(x, y)
	return s.MaterialInColumn(&c, z)
}

func (s *Sampler) fractal(x, y float64, octaves int) float64 {
	return s.noise.Fractal2D(x, y, octaves, 0.5, 2)
}

// Continentalness shifts the land baseline; low values are ocean.
func (s *Sampler) Continentalness(x, y int) float64 {
	f := s.cfg.NoiseFrequency * 0.3
	return s.fractal(float64(x)*f, float64(y)*f, 3)
}

// Erosion is an inverse roughness multiplier.
func (s *Sampler) Erosion(x, y int) float64 {
	f := s.cfg.NoiseFrequency * 0.5
	return s.fractal(float64(x)*f+1000, float64(y)*f+1000, 4)
}

// PeaksValleys is ridged noise shaping mountain spines.
func (s *Sampler) PeaksValleys(x, y int) float64 {
	f := s.cfg.NoiseFrequency * 2
	return s.noise.Ridged2D(float64(x)*f+2000, float64(y)*f+2000, 3, 0.4, 2)
}

func (s *Sampler) Temperature(x, y int) float64 {
	f := s.cfg.NoiseFrequency * 0.2
	return s.fractal(float64(x)*f+5000, float64(y)*f+5000, 2)
}

func (s *Sampler) Moisture(x, y int) float64 {
	f := s.cfg.NoiseFrequency * 0.25
	return s.fractal(float64(x)*f+7000, float64(y)*f+7000, 2)
}

// featureBand returns the smoothstep edges for a feature centered on mid.
// Steeper cliffs narrow the band.
func (s *Sampler) featureBand(mid float64) (float64, float64) {
	w := 0.5 / s.cfg.Biome.CliffSteepness
	return mid - w/2, mid + w/2
}

// PlateauInfluence is the [0,1] weight of plateau shaping at (x, y).
func (s *Sampler) PlateauInfluence(x, y int) float64 {
	if !s.cfg.Biome.EnablePlateaus {
		return 0
	}
	sc := s.cfg.Biome.Scale
	fx, fy := float64(x), float64(y)
	n1 := s.fractal(fx*sc+10000, fy*sc+10000, 2)
	n2 := s.fractal(fx*sc*2+15000, fy*sc*2+15000, 2)
	lo, hi := s.featureBand(0.55)
	return smoothstep(lo, hi, n1*0.7+n2*0.3)
}

// ValleyInfluence is the [0,1] weight of valley carving at (x, y).
func (s *Sampler) ValleyInfluence(x, y int) float64 {
	if !s.cfg.Biome.EnableValleys {
		return 0
	}
	sc := s.cfg.Biome.Scale
	fx, fy := float64(x), float64(y)
	factor := 1 - s.noise.Ridged2D(fx*sc*0.8+20000, fy*sc*0.8+20000, 3, 0.5, 2)
	lo, hi := s.featureBand(0.75)
	if factor <= lo {
		return 0
	}
	variation := s.fractal(fx*sc*2+25000, fy*sc*2+25000, 2)
	return smoothstep(lo, hi, factor) * lerp(0.6, 1, variation)
}

// CanyonInfluence is the [0,1] weight of canyon carving at (x, y). Canyon
// paths are domain warped so they wind.
func (s *Sampler) CanyonInfluence(x, y int) float64 {
	if !s.cfg.Biome.EnableCanyons {
		return 0
	}
	sc := s.cfg.Biome.Scale
	fx, fy := float64(x), float64(y)
	wx := s.fractal(fx*sc*2+30000, fy*sc*2+30000, 2) * 50
	wy := s.fractal(fx*sc*2+35000, fy*sc*2+35000, 2) * 50
	n := s.noise.Ridged2D((fx+wx)*sc*2, (fy+wy)*sc*2, 2, 0.6, 2)
	if n <= 0.88 {
		return 0
	}
	return smoothstep(0.88, 0.95, n)
}

func (s *Sampler) height(c *Column) float64 {
	cfg := s.cfg
	f := cfg.NoiseFrequency
	fx, fy := float64(c.X), float64(c.Y)

	base := cfg.BaseTerrainHeight
	continent := lerp(-20, 20, c.Continentalness)
	erosion := lerp(0.3, 1, 1-c.Erosion)
	variation := (c.PeaksValleys - 0.5) * cfg.TerrainAmplitude * erosion
	detail := (s.fractal(fx*f*4, fy*f*4, cfg.NoiseOctaves) - 0.5) * 2

	h := base + continent + variation + detail
	h += c.Plateau * cfg.Biome.PlateauHeight * 2
	h -= c.Valley * cfg.Biome.ValleyDepth
	h -= c.Canyon * cfg.Biome.ValleyDepth * 1.5

	if c.Plateau > 0.5 {
		flat := cfg.Biome.PlateauFlatness
		top := base + cfg.Biome.PlateauHeight*2
		h = lerp(h, top, flat*c.Plateau)
		topVar := s.fractal(fx*f*8+15000, fy*f*8+15000, 2)
		h += (topVar - 0.5) * (1 - flat)
	}
	return h
}

const (
	caveSurfaceMargin = 20.0
	caveSolidDensity  = -0.8
	bedrockDensity    = -10.0
	bedrockBand       = 3
)

// DensityInColumn evaluates density at height z for a precomputed column.
func (s *Sampler) DensityInColumn(c *Column, z int) float64 {
	fz := float64(z)
	raw := fz - c.Height
	d := raw

	if s.cfg.GenerateCaves && fz < c.Height-caveSurfaceMargin && z > bedrockBand && d < caveSolidDensity {
		if cave := s.caveDensity(c, z); cave > 0 {
			d = lerp(d, cave, smoothstep(0, 0.5, cave))
		}
	}

	if z <= 0 {
		d = bedrockDensity
	} else if z < bedrockBand {
		blend := float64(bedrockBand-z) / bedrockBand
		d = math.Min(d, lerp(d, bedrockDensity, blend))
	}

	minT := min(s.cfg.MinSolidThickness, config.DensityScale)
	if d < 0 && d > -minT {
		d = -minT
	}
	d = clamp(d/config.DensityScale, -1, 1)

	if d > -0.15 && d < 0.15 && raw < -0.5 {
		d = -math.Max(s.cfg.MinSolidDensity(), 0.2)
	}
	return d
}

// caveDensity is positive inside a cave. Caves only form well below the
// surface, above the bedrock band and outside plateau cores.
func (s *Sampler) caveDensity(c *Column, z int) float64 {
	if !s.cfg.GenerateCaves {
		return -1
	}
	fz := float64(z)
	if fz > c.Height-5 || z < bedrockBand || c.Plateau > 0.7 || c.Height <= 0 {
		return -1
	}
	cf := s.cfg.NoiseFrequency * 3
	fx, fy := float64(c.X), float64(c.Y)
	n1 := s.noise.Fractal3D(fx*cf, fy*cf, fz*cf, 3, 0.5, 2)
	n2 := s.noise.Fractal3D(fx*cf*0.5+3000, fy*cf*0.5+3000, fz*cf*0.5+3000, 2, 0.5, 2)
	combined := (n1 + n2) * 0.5

	threshold := s.cfg.CaveThreshold - (1-fz/c.Height)*0.1
	if c.Valley > 0.3 {
		threshold -= 0.1 * c.Valley
	}
	return (combined - threshold) * 5
}

// IsCave reports whether (x, y, z) lies inside carved cave space.
func (s *Sampler) IsCave(x, y, z int) bool {
	c := s.Column(x, y)
	return s.caveDensity(&c, z) > 0
}

// WaterLevel returns the height below which open air in ocean and valley
// basins fills with water.
func (s *Sampler) WaterLevel(c *Column) float64 {
	if c.Climate == DeepValley {
		return s.cfg.BaseTerrainHeight - s.cfg.Biome.ValleyDepth*c.Valley + 5
	}
	return s.cfg.BaseTerrainHeight - 5
}

// MaterialInColumn picks the material at height z for a precomputed column.
func (s *Sampler) MaterialInColumn(c *Column, z int) Material {
	fz := float64(z)
	if s.DensityInColumn(c, z) > 0 {
		if (c.Climate == Ocean || c.Climate == DeepValley) && fz <= s.WaterLevel(c) {
			return Water
		}
		return Air
	}
	if z > 0 && s.caveDensity(c, z) > 0 {
		return Air
	}
	if c.Height-fz < 5 {
		return s.surfaceMaterial(c, z)
	}
	return s.undergroundMaterial(c, z)
}

func (s *Sampler) surfaceMaterial(c *Column, z int) Material {
	if z <= 0 {
		return Bedrock
	}
	fz := float64(z)
	depth := c.Height - fz

	switch {
	case c.Plateau > 0.5:
		return s.plateauMaterial(c, depth)
	case c.Valley > 0.5 || c.Canyon > 0.5:
		return s.valleyMaterial(c, fz, depth)
	}

	switch c.Climate {
	case Desert:
		if depth < 4 {
			return Sand
		}
	case Badlands:
		if depth < 4 {
			return RedRock
		}
	case Tundra:
		if depth < 1 {
			return Snow
		}
		if depth < 3 {
			return Dirt
		}
	case Mountains:
		if c.Height > s.cfg.BaseTerrainHeight+20 && depth < 1 {
			return Snow
		}
		return Stone
	case Ocean:
		if fz < s.cfg.BaseTerrainHeight-10 || depth < 3 {
			return Sand
		}
	case Swamp:
		switch {
		case depth < 1:
			return Grass
		case depth < 2:
			return Clay
		case depth < 4:
			return Dirt
		}
	case HighlandPlains:
		if depth < 1 {
			return Grass
		}
		if depth < 3 {
			return Dirt
		}
	default:
		if depth < 1 {
			return Grass
		}
		if depth < 4 {
			return Dirt
		}
	}
	return Stone
}

func (s *Sampler) plateauMaterial(c *Column, depth float64) Material {
	if depth < 1 && c.Plateau > 0.7 {
		if c.Temperature < 0.3 {
			return Snow
		}
		return Grass
	}
	if c.Plateau > 0.3 && c.Plateau < 0.8 {
		return PlateauStone
	}
	if depth < 5 {
		return Dirt
	}
	return Stone
}

func (s *Sampler) valleyMaterial(c *Column, fz, depth float64) Material {
	floor := s.cfg.BaseTerrainHeight - s.cfg.Biome.ValleyDepth*c.Valley
	if fz < floor+3 {
		if c.Moisture > 0.6 {
			return Clay
		}
		return Gravel
	}
	if depth < 2 {
		return DarkStone
	}
	return Stone
}

func (s *Sampler) undergroundMaterial(c *Column, z int) Material {
	if z <= 0 {
		return Bedrock
	}
	fx, fy, fz := float64(c.X), float64(c.Y), float64(z)
	if z < bedrockBand && s.noise.Noise2D(fx*0.37+0.5, fy*0.37+0.5) > 0.3*fz {
		return Bedrock
	}
	if fz < c.Height-10 && s.noise.Noise3D(fx*0.1+0.5, fy*0.1+0.5, fz*0.1+0.5) > 0.8 {
		return Gravel
	}
	if c.Biome == Plateau || c.Biome == Canyon {
		return DarkStone
	}
	return Stone
}

func lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func smoothstep(edge0, edge1, x float64) float64 {
	if edge1 == edge0 {
		if x < edge0 {
			return 0
		}
		return 1
	}
	t := clamp((x-edge0)/(edge1-edge0), 0, 1)
	return t * t * (3 - 2*t)
}
