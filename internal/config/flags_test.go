package config

import (
	"errors"
	"flag"
	"io"
	"os"
	"path/filepath"
	"testing"
)

func parseFlags(t *testing.T, args ...string) (*Settings, error) {
	t.Helper()
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	f := RegisterFlags(fs)
	if err := fs.Parse(args); err != nil {
		t.Fatalf("Parse(%v): %v", args, err)
	}
	return f.Settings(fs)
}

func TestFlagsDefaults(t *testing.T) {
	s, err := parseFlags(t)
	if err != nil {
		t.Fatalf("Settings: %v", err)
	}
	if *s != *DefaultSettings() {
		t.Errorf("no flags should give the defaults, got %+v", s)
	}
}

func TestFlagsOverrideFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "world.yaml")
	yml := "seed: 7\nrender_distance: 5\nmesher: greedy\n"
	if err := os.WriteFile(path, []byte(yml), 0o644); err != nil {
		t.Fatal(err)
	}

	s, err := parseFlags(t, "-config", path, "-render-distance", "3", "-async=false")
	if err != nil {
		t.Fatalf("Settings: %v", err)
	}
	if s.Seed != 7 {
		t.Errorf("Seed = %d, expected 7 from the file", s.Seed)
	}
	if s.Mesher != MesherGreedy {
		t.Errorf("Mesher = %q, expected greedy from the file", s.Mesher)
	}
	if s.RenderDistance != 3 {
		t.Errorf("RenderDistance = %d, expected the flag value 3", s.RenderDistance)
	}
	if s.AsyncGeneration {
		t.Errorf("AsyncGeneration = true, expected the flag to disable it")
	}
}

func TestFlagsRejectInvalid(t *testing.T) {
	if _, err := parseFlags(t, "-mesher", "wireframe"); !errors.Is(err, ErrInvalid) {
		t.Errorf("unknown mesher: err = %v, expected ErrInvalid", err)
	}
	if _, err := parseFlags(t, "-chunk-size", "12"); !errors.Is(err, ErrInvalid) {
		t.Errorf("chunk size 12: err = %v, expected ErrInvalid", err)
	}
	if _, err := parseFlags(t, "-config", filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Errorf("missing config file accepted")
	}
}

func TestSampleConfigMatchesDefaults(t *testing.T) {
	s, err := Load(filepath.Join("..", "..", "configs", "world.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if *s != *DefaultSettings() {
		t.Errorf("configs/world.yaml drifted from DefaultSettings:\n got %+v\nwant %+v", *s, *DefaultSettings())
	}
}
