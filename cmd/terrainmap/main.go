// Command terrainmap writes a top-down PNG of the generated terrain.
package main

import (
	"context"
	"flag"
	"fmt"
	"image/png"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"voxelterrain/internal/config"
	"voxelterrain/internal/mapimage"
	"voxelterrain/internal/terrain"
)

func main() {
	fs := flag.CommandLine
	settings := config.RegisterFlags(fs)
	out := fs.String("out", "terrain.png", "output PNG path")
	mode := fs.String("mode", string(mapimage.ModeShaded), "biome, height or shaded")
	width := fs.Int("width", 512, "map width in samples")
	height := fs.Int("height", 512, "map height in samples")
	step := fs.Int("step", 4, "voxel columns per sample")
	centerX := fs.Int("x", 0, "center column x")
	centerY := fs.Int("y", 0, "center column y")
	zoom := fs.Int("zoom", 1, "integer upscale of the output")
	legend := fs.Bool("legend", true, "draw a biome legend")
	flag.Parse()

	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	cfg, err := settings.Settings(fs)
	if err != nil {
		log.Error("load settings", "error", err)
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, cfg, *out, mapimage.Options{
		CenterX: *centerX,
		CenterY: *centerY,
		Width:   *width,
		Height:  *height,
		Step:    *step,
		Mode:    mapimage.Mode(*mode),
	}, *zoom, *legend, log); err != nil {
		log.Error("terrain map", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Settings, out string, opt mapimage.Options, zoom int, legend bool, log *slog.Logger) error {
	start := time.Now()
	m, err := mapimage.Render(ctx, terrain.NewSampler(cfg), opt)
	if err != nil {
		return fmt.Errorf("render: %w", err)
	}
	img := m.Image
	if zoom > 1 {
		img = mapimage.Upscale(img, zoom)
	}
	if legend {
		mapimage.DrawLegend(img, m.Biomes)
	}

	f, err := os.Create(out)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	if err := png.Encode(f, img); err != nil {
		_ = f.Close()
		return fmt.Errorf("encode png: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close output: %w", err)
	}

	log.Info("map written",
		"path", out,
		"seed", cfg.Seed,
		"mode", opt.Mode,
		"size", fmt.Sprintf("%dx%d", img.Bounds().Dx(), img.Bounds().Dy()),
		"biomes", len(m.Biomes),
		"took", time.Since(start).Round(time.Millisecond))
	return nil
}
