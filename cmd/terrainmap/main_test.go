package main

import (
	"context"
	"image/png"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"voxelterrain/internal/config"
	"voxelterrain/internal/mapimage"
)

func TestRunWritesPNG(t *testing.T) {
	out := filepath.Join(t.TempDir(), "map.png")
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	opt := mapimage.Options{Width: 32, Height: 24, Step: 8, Mode: mapimage.ModeBiome}
	if err := run(context.Background(), config.DefaultSettings(), out, opt, 2, true, log); err != nil {
		t.Fatalf("run: %v", err)
	}

	f, err := os.Open(out)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 64 || b.Dy() != 48 {
		t.Errorf("image is %dx%d, expected 64x48", b.Dx(), b.Dy())
	}
}

func TestRunReportsBadMode(t *testing.T) {
	out := filepath.Join(t.TempDir(), "map.png")
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	opt := mapimage.Options{Width: 8, Height: 8, Mode: "relief"}
	if err := run(context.Background(), config.DefaultSettings(), out, opt, 1, false, log); err == nil {
		t.Errorf("unknown mode accepted")
	}
	if _, err := os.Stat(out); !os.IsNotExist(err) {
		t.Errorf("output written for a failed render")
	}
}
