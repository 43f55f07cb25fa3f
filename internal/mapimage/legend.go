package mapimage

import (
	"image"
	"image/color"
	"image/draw"
	"slices"

	"voxelterrain/internal/terrain"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

const (
	swatch     = 10
	lineHeight = 16
	padding    = 6
)

// Upscale enlarges src by an integer factor with nearest-neighbor sampling
// so biome borders stay crisp.
func Upscale(src image.Image, factor int) *image.RGBA {
	b := src.Bounds()
	if factor < 1 {
		factor = 1
	}
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx()*factor, b.Dy()*factor))
	xdraw.NearestNeighbor.Scale(dst, dst.Bounds(), src, b, xdraw.Src, nil)
	return dst
}

// DrawLegend paints a swatch and name for each biome in the top-left corner
// of dst.
func DrawLegend(dst draw.Image, biomes []terrain.Biome) {
	if len(biomes) == 0 {
		return
	}
	face := basicfont.Face7x13
	names := make([]int, len(biomes))
	for i, b := range biomes {
		names[i] = font.MeasureString(face, b.String()).Ceil()
	}
	width := padding*3 + swatch + slices.Max(names)
	height := padding*2 + lineHeight*len(biomes)
	box := image.Rect(0, 0, width, height).Add(dst.Bounds().Min)
	draw.Draw(dst, box, image.NewUniform(color.RGBA{0, 0, 0, 160}), image.Point{}, draw.Over)

	d := &font.Drawer{Dst: dst, Src: image.White, Face: face}
	for i, b := range biomes {
		top := box.Min.Y + padding + i*lineHeight
		sw := image.Rect(box.Min.X+padding, top+2, box.Min.X+padding+swatch, top+2+swatch)
		draw.Draw(dst, sw, image.NewUniform(BiomeColor(b)), image.Point{}, draw.Src)
		d.Dot = fixed.P(sw.Max.X+padding, top+face.Ascent+1)
		d.DrawString(b.String())
	}
}
