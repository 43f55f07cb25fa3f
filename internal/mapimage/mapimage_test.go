package mapimage

import (
	"context"
	"image"
	"image/color"
	"testing"

	"voxelterrain/internal/config"
	"voxelterrain/internal/terrain"
)

func sampler() *terrain.Sampler {
	return terrain.NewSampler(config.DefaultSettings())
}

func TestRenderBiomeMode(t *testing.T) {
	s := sampler()
	opt := Options{CenterX: 100, CenterY: -40, Width: 24, Height: 16, Step: 8, Mode: ModeBiome}
	m, err := Render(context.Background(), s, opt)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if got := m.Image.Bounds().Size(); got != (image.Point{24, 16}) {
		t.Fatalf("image size %v", got)
	}

	present := make(map[terrain.Biome]bool)
	for _, b := range m.Biomes {
		present[b] = true
	}
	x0, y0 := 100-12*8, -40+8*8
	for py := range 16 {
		for px := range 24 {
			b := s.BiomeAt(x0+px*8, y0-py*8)
			if got, want := m.Image.RGBAAt(px, py), BiomeColor(b); got != want {
				t.Fatalf("pixel (%d,%d) = %v, expected %v (%v)", px, py, got, want, b)
			}
			if !present[b] {
				t.Fatalf("biome %v drawn but not listed", b)
			}
		}
	}
}

func TestRenderDeterministic(t *testing.T) {
	opt := Options{Width: 20, Height: 20, Step: 16, Mode: ModeShaded}
	a, err := Render(context.Background(), sampler(), opt)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	b, err := Render(context.Background(), sampler(), opt)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	for i := range a.Image.Pix {
		if a.Image.Pix[i] != b.Image.Pix[i] {
			t.Fatalf("byte %d differs between renders", i)
		}
	}
}

func TestRenderRejectsBadOptions(t *testing.T) {
	s := sampler()
	if _, err := Render(context.Background(), s, Options{Width: 0, Height: 4}); err == nil {
		t.Errorf("zero width accepted")
	}
	if _, err := Render(context.Background(), s, Options{Width: 4, Height: 4, Mode: "satellite"}); err == nil {
		t.Errorf("unknown mode accepted")
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := Render(ctx, s, Options{Width: 4, Height: 4}); err == nil {
		t.Errorf("cancelled context accepted")
	}
}

func TestUpscale(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 2, 1))
	red, blue := color.RGBA{255, 0, 0, 255}, color.RGBA{0, 0, 255, 255}
	src.SetRGBA(0, 0, red)
	src.SetRGBA(1, 0, blue)

	dst := Upscale(src, 3)
	if got := dst.Bounds().Size(); got != (image.Point{6, 3}) {
		t.Fatalf("upscaled size %v", got)
	}
	if dst.RGBAAt(2, 2) != red || dst.RGBAAt(3, 0) != blue {
		t.Errorf("nearest-neighbor scaling blurred the border")
	}
}

func TestDrawLegend(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 200, 100))
	DrawLegend(img, []terrain.Biome{terrain.Ocean, terrain.Desert})

	// first swatch sits inside the padding
	if got := img.RGBAAt(padding+1, padding+4); got != BiomeColor(terrain.Ocean) {
		t.Errorf("first swatch = %v, expected ocean color", got)
	}
	if got := img.RGBAAt(padding+1, padding+lineHeight+4); got != BiomeColor(terrain.Desert) {
		t.Errorf("second swatch = %v, expected desert color", got)
	}
	if got := img.RGBAAt(199, 99); got != (color.RGBA{}) {
		t.Errorf("legend painted outside its box: %v", got)
	}
}
