// Package mapimage renders top-down pictures of the terrain sampler.
package mapimage

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"math"
	"runtime"
	"sync/atomic"

	"voxelterrain/internal/profiling"
	"voxelterrain/internal/terrain"

	"golang.org/x/sync/errgroup"
)

// Mode selects what a pixel shows.
type Mode string

const (
	ModeBiome  Mode = "biome"  // flat biome colors
	ModeHeight Mode = "height" // grayscale height, water in blue
	ModeShaded Mode = "shaded" // biome colors lit by the slope
)

// Options describe the sampled area. Each pixel covers Step by Step voxel
// columns; the image is centered on (CenterX, CenterY).
type Options struct {
	CenterX, CenterY int
	Width, Height    int
	Step             int
	Mode             Mode
}

var biomeColors = map[terrain.Biome]color.RGBA{
	terrain.Plains:         {124, 184, 82, 255},
	terrain.Desert:         {228, 206, 150, 255},
	terrain.Mountains:      {128, 122, 116, 255},
	terrain.Forest:         {46, 118, 56, 255},
	terrain.Tundra:         {214, 226, 232, 255},
	terrain.Ocean:          {42, 92, 170, 255},
	terrain.Swamp:          {82, 104, 70, 255},
	terrain.Plateau:        {176, 132, 96, 255},
	terrain.DeepValley:     {60, 128, 150, 255},
	terrain.Canyon:         {190, 96, 58, 255},
	terrain.Badlands:       {168, 74, 48, 255},
	terrain.HighlandPlains: {156, 176, 96, 255},
}

// BiomeColor returns the map color of b.
func BiomeColor(b terrain.Biome) color.RGBA {
	if c, ok := biomeColors[b]; ok {
		return c
	}
	return color.RGBA{255, 0, 255, 255}
}

var waterColor = color.RGBA{36, 84, 160, 255}

// Map is a rendered area.
type Map struct {
	Image  *image.RGBA
	Biomes []terrain.Biome // biomes present, in id order
}

// Render samples the terrain columns of the area and paints them. Rows are
// sampled in parallel; the sampler is only read.
func Render(ctx context.Context, s *terrain.Sampler, opt Options) (*Map, error) {
	defer profiling.Track("mapimage.Render")()

	if opt.Width <= 0 || opt.Height <= 0 {
		return nil, fmt.Errorf("image size %dx%d must be positive", opt.Width, opt.Height)
	}
	if opt.Step <= 0 {
		opt.Step = 1
	}
	switch opt.Mode {
	case ModeBiome, ModeHeight, ModeShaded:
	case "":
		opt.Mode = ModeShaded
	default:
		return nil, fmt.Errorf("unknown map mode %q", opt.Mode)
	}

	cfg := s.Settings()
	top := float64(cfg.WorldHeightChunks*cfg.ChunkSize) * float64(cfg.VoxelSize)
	img := image.NewRGBA(image.Rect(0, 0, opt.Width, opt.Height))
	x0 := opt.CenterX - opt.Width/2*opt.Step
	y0 := opt.CenterY + opt.Height/2*opt.Step
	all := terrain.Biomes()
	seen := make([]atomic.Bool, len(all))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())
	for py := range opt.Height {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			// north is up
			wy := y0 - py*opt.Step
			for px := range opt.Width {
				wx := x0 + px*opt.Step
				c := s.Column(wx, wy)
				if int(c.Biome) < len(seen) {
					seen[c.Biome].Store(true)
				}
				img.SetRGBA(px, py, pixel(s, &c, opt, top))
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	m := &Map{Image: img}
	for _, b := range all {
		if seen[b].Load() {
			m.Biomes = append(m.Biomes, b)
		}
	}
	return m, nil
}

func pixel(s *terrain.Sampler, c *terrain.Column, opt Options, top float64) color.RGBA {
	water := (c.Climate == terrain.Ocean || c.Climate == terrain.DeepValley) && c.Height < s.WaterLevel(c)
	switch opt.Mode {
	case ModeBiome:
		return BiomeColor(c.Biome)
	case ModeHeight:
		if water {
			return waterColor
		}
		v := uint8(255 * clamp01(c.Height/top))
		return color.RGBA{v, v, v, 255}
	}

	base := BiomeColor(c.Biome)
	if water {
		base = waterColor
	}
	// Light from the north-west using the height difference to the
	// neighboring columns.
	east := s.TerrainHeight(c.X+opt.Step, c.Y)
	south := s.TerrainHeight(c.X, c.Y-opt.Step)
	slope := ((c.Height - east) + (south - c.Height)) / float64(opt.Step)
	light := 0.55 + 0.35*clamp01(c.Height/top) + 0.15*math.Max(-1, math.Min(1, slope/2))
	return scale(base, light)
}

func scale(c color.RGBA, f float64) color.RGBA {
	ch := func(v uint8) uint8 { return uint8(255 * clamp01(float64(v)/255*f)) }
	return color.RGBA{ch(c.R), ch(c.G), ch(c.B), c.A}
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
