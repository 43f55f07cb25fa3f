package world

import (
	"io"
	"log/slog"
	"math"
	"sync"
	"testing"
	"time"

	"voxelterrain/internal/config"
	"voxelterrain/internal/meshing"
	"voxelterrain/internal/terrain"

	"github.com/go-gl/mathgl/mgl32"
)

// planeField is solid stone below z = level.
type planeField struct{ level int }

func (p planeField) Density(x, y, z int) float64 {
	return math.Max(-1, math.Min(1, float64(z-p.level)/5))
}

func (p planeField) MaterialAt(x, y, z int) terrain.Material {
	if z < p.level {
		return terrain.Stone
	}
	return terrain.Air
}

// gateField blocks every sample until gate is closed. started is closed on
// the first sample.
type gateField struct {
	planeField
	once    sync.Once
	started chan struct{}
	gate    chan struct{}
}

func newGateField(level int) *gateField {
	return &gateField{
		planeField: planeField{level: level},
		started:    make(chan struct{}),
		gate:       make(chan struct{}),
	}
}

func (g *gateField) Density(x, y, z int) float64 {
	g.once.Do(func() { close(g.started) })
	<-g.gate
	return g.planeField.Density(x, y, z)
}

// recordingSink remembers what the store delivered.
type recordingSink struct {
	meshes    map[ChunkCoord]int // triangle count of the last update
	collision map[ChunkCoord]bool
	updates   int
	removals  int
}

func newRecordingSink() *recordingSink {
	return &recordingSink{
		meshes:    make(map[ChunkCoord]int),
		collision: make(map[ChunkCoord]bool),
	}
}

func (r *recordingSink) UpdateChunkMesh(coord ChunkCoord, origin mgl32.Vec3, mesh *meshing.MeshBuffers, collision bool) {
	r.meshes[coord] = mesh.TriangleCount()
	r.collision[coord] = collision
	r.updates++
}

func (r *recordingSink) RemoveChunkMesh(coord ChunkCoord) {
	delete(r.meshes, coord)
	delete(r.collision, coord)
	r.removals++
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testSettings() *config.Settings {
	cfg := config.DefaultSettings()
	cfg.ChunkSize = 8
	cfg.RenderDistance = 2
	cfg.WorldHeightChunks = 2
	cfg.AsyncGeneration = false
	cfg.ChunksPerTick = 1000
	cfg.MeshBuildsPerTick = 1000
	cfg.PoolSize = 64
	return cfg
}

func newTestStore(t *testing.T, cfg *config.Settings, field Field) (*ChunkStore, *recordingSink) {
	t.Helper()
	sink := newRecordingSink()
	s := NewChunkStore(cfg, field, sink, quietLogger())
	t.Cleanup(func() { _ = s.Shutdown(5 * time.Second) })
	return s, sink
}

// drain ticks until no generation or mesh work is left.
func drain(t *testing.T, s *ChunkStore) {
	t.Helper()
	deadline := time.Now().Add(10 * time.Second)
	for !s.Idle() {
		if time.Now().After(deadline) {
			t.Fatalf("store did not settle: %+v", s.GetChunkStats())
		}
		s.Tick(0.01)
		if s.gen != nil {
			time.Sleep(time.Millisecond)
		}
	}
}

// chunkCenter returns a world position inside chunk c.
func chunkCenter(cfg *config.Settings, c ChunkCoord) mgl32.Vec3 {
	half := cfg.ChunkWorldSize() / 2
	return ChunkOrigin(c, cfg.ChunkSize, cfg.VoxelSize).Add(mgl32.Vec3{half, half, half})
}

// voxelCenter returns the world position of the middle of voxel v.
func voxelCenter(cfg *config.Settings, v [3]int) mgl32.Vec3 {
	s := cfg.VoxelSize
	return mgl32.Vec3{(float32(v[0]) + 0.5) * s, (float32(v[1]) + 0.5) * s, (float32(v[2]) + 0.5) * s}
}
