package main

import (
	"math"
	"testing"

	"voxelterrain/internal/config"
	"voxelterrain/internal/meshing"
	"voxelterrain/internal/terrain"
	"voxelterrain/internal/world"

	"github.com/go-gl/mathgl/mgl32"
)

func TestCountingSink(t *testing.T) {
	s := &countingSink{meshes: make(map[world.ChunkCoord]int)}
	mesh := func(tris int) *meshing.MeshBuffers {
		return &meshing.MeshBuffers{Triangles: make([]uint32, 3*tris)}
	}
	a, b := world.ChunkCoord{}, world.ChunkCoord{X: 1}

	s.UpdateChunkMesh(a, mgl32.Vec3{}, mesh(4), false)
	s.UpdateChunkMesh(b, mgl32.Vec3{}, mesh(2), true)
	s.UpdateChunkMesh(a, mgl32.Vec3{}, mesh(1), false)
	if s.triangles != 3 || s.uploads != 3 {
		t.Errorf("triangles %d uploads %d, expected 3 and 3", s.triangles, s.uploads)
	}
	s.RemoveChunkMesh(b)
	s.RemoveChunkMesh(b)
	if s.triangles != 1 || len(s.meshes) != 1 {
		t.Errorf("after removal: triangles %d meshes %d", s.triangles, len(s.meshes))
	}
}

func TestCenterAtFollowsPath(t *testing.T) {
	cfg := config.DefaultSettings()
	cfg.AsyncGeneration = false
	store := world.NewChunkStore(cfg, terrain.NewSampler(cfg), nil, nil)

	orbit := options{speed: 10, orbit: 50}
	for _, tt := range []float64{0, 3, 12.5} {
		p := centerAt(cfg, store, orbit, tt)
		if r := math.Hypot(float64(p.X()), float64(p.Y())); math.Abs(r-50) > 1e-3 {
			t.Errorf("t=%v: orbit radius %v, expected 50", tt, r)
		}
		if store.IsSolid(int(math.Floor(float64(p.X()))), int(math.Floor(float64(p.Y()))), int(math.Floor(float64(p.Z())))) {
			t.Errorf("t=%v: load center %v inside terrain", tt, p)
		}
	}

	line := options{speed: 10}
	if p := centerAt(cfg, store, line, 2); p.X() != 20 || p.Y() != 0 {
		t.Errorf("straight path at t=2: %v, expected x=20 y=0", p)
	}
}
