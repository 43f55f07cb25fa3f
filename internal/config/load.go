package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ErrInvalid wraps every validation failure.
var ErrInvalid = errors.New("invalid settings")

// Load reads a YAML settings file. Missing keys keep their default values.
func Load(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML settings over the defaults and validates them.
func Parse(data []byte) (*Settings, error) {
	s := DefaultSettings()
	if err := yaml.Unmarshal(data, s); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Validate rejects settings no world can run with and clamps the rest into
// working ranges.
func (s *Settings) Validate() error {
	if s.ChunkSize < 8 || s.ChunkSize > 64 || s.ChunkSize&(s.ChunkSize-1) != 0 {
		return fmt.Errorf("%w: chunk_size must be a power of two in [8,64], got %d", ErrInvalid, s.ChunkSize)
	}
	if s.VoxelSize <= 0 {
		return fmt.Errorf("%w: voxel_size must be positive", ErrInvalid)
	}
	if s.WorldHeightChunks <= 0 {
		return fmt.Errorf("%w: world_height_chunks must be positive", ErrInvalid)
	}
	if s.NoiseFrequency <= 0 {
		return fmt.Errorf("%w: noise_frequency must be positive", ErrInvalid)
	}
	switch s.Mesher {
	case MesherSmooth, MesherCulled, MesherGreedy:
	case "":
		s.Mesher = MesherSmooth
	default:
		return fmt.Errorf("%w: unknown mesher %q", ErrInvalid, s.Mesher)
	}
	l := s.LOD
	if l.LOD0Distance > l.LOD1Distance || l.LOD1Distance > l.LOD2Distance || l.LOD2Distance > l.LOD3Distance {
		return fmt.Errorf("%w: lod distances must be non-decreasing", ErrInvalid)
	}

	if s.RenderDistance < 1 {
		s.RenderDistance = 1
	}
	if s.RenderDistance > 64 {
		s.RenderDistance = 64
	}
	if s.NoiseOctaves < 1 {
		s.NoiseOctaves = 1
	}
	if s.NoiseOctaves > 8 {
		s.NoiseOctaves = 8
	}
	if s.MinSolidThickness < 0 {
		s.MinSolidThickness = 0
	}
	if s.MinSolidThickness > DensityScale {
		s.MinSolidThickness = DensityScale
	}
	if s.GenerationWorkers < 1 {
		s.GenerationWorkers = 1
	}
	if s.ChunksPerTick < 1 {
		s.ChunksPerTick = 1
	}
	if s.MeshBuildsPerTick < 1 {
		s.MeshBuildsPerTick = 1
	}
	if s.PoolSize < 0 {
		s.PoolSize = 0
	}
	if s.Biome.CliffSteepness <= 0 {
		s.Biome.CliffSteepness = 2.5
	}
	if s.Biome.PlateauFlatness < 0 {
		s.Biome.PlateauFlatness = 0
	}
	if s.Biome.PlateauFlatness > 1 {
		s.Biome.PlateauFlatness = 1
	}
	if s.LOD.UpdateInterval <= 0 {
		s.LOD.UpdateInterval = 0.5
	}
	if s.LOD.CollisionInterval <= 0 {
		s.LOD.CollisionInterval = 0.5
	}
	return nil
}
