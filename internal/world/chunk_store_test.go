package world

import (
	"context"
	"errors"
	"testing"
	"time"

	"voxelterrain/internal/config"
	"voxelterrain/internal/terrain"

	"github.com/go-gl/mathgl/mgl32"
)

func expectedKeepSet(cfg *config.Settings, center ChunkCoord) map[ChunkCoord]bool {
	r := cfg.RenderDistance
	want := make(map[ChunkCoord]bool)
	for dx := -r; dx <= r; dx++ {
		for dy := -r; dy <= r; dy++ {
			if dx*dx+dy*dy > r*r {
				continue
			}
			for z := 0; z < cfg.WorldHeightChunks; z++ {
				want[ChunkCoord{center.X + dx, center.Y + dy, z}] = true
			}
		}
	}
	return want
}

func checkLoadedEquals(t *testing.T, s *ChunkStore, want map[ChunkCoord]bool) {
	t.Helper()
	loaded := s.LoadedCoords()
	if len(loaded) != len(want) {
		t.Errorf("loaded %d chunks, expected %d", len(loaded), len(want))
	}
	for _, c := range loaded {
		if !want[c] {
			t.Errorf("chunk %v loaded outside the keep-set", c)
		}
	}
	for c := range want {
		if !s.HasChunk(c) {
			t.Errorf("chunk %v in keep-set not loaded", c)
		}
	}
}

func checkQueueInvariants(t *testing.T, s *ChunkStore) {
	t.Helper()
	for c := range s.queued {
		if s.HasChunk(c) {
			t.Errorf("chunk %v both loaded and queued for generation", c)
		}
	}
	seen := make(map[*Chunk]bool)
	for _, c := range s.meshQueue {
		if seen[c] {
			t.Errorf("chunk %v queued for meshing twice", c.Coord())
		}
		seen[c] = true
	}
}

func TestKeepSet(t *testing.T) {
	cfg := testSettings()
	s, _ := newTestStore(t, cfg, planeField{level: 4})

	s.SetLoadCenter(mgl32.Vec3{1, 1, 1})
	checkQueueInvariants(t, s)
	drain(t, s)
	checkLoadedEquals(t, s, expectedKeepSet(cfg, ChunkCoord{}))
	if got := len(s.LoadedCoords()); got != 13*cfg.WorldHeightChunks {
		t.Errorf("loaded %d chunks at radius 2, expected %d", got, 13*cfg.WorldHeightChunks)
	}

	far := ChunkCoord{X: 5, Y: -3}
	s.SetLoadCenter(chunkCenter(cfg, far))
	checkQueueInvariants(t, s)
	drain(t, s)
	checkQueueInvariants(t, s)
	checkLoadedEquals(t, s, expectedKeepSet(cfg, far))

	// Moving within the same column changes nothing.
	before := s.GetChunkStats()
	s.SetLoadCenter(chunkCenter(cfg, far).Add(mgl32.Vec3{0, 0, 40}))
	if after := s.GetChunkStats(); after.Pending != 0 || after.Loaded != before.Loaded {
		t.Errorf("vertical move changed streaming: %+v -> %+v", before, after)
	}
}

func TestGenerationQueueNearestFirst(t *testing.T) {
	cfg := testSettings()
	cfg.RenderDistance = 4
	s, _ := newTestStore(t, cfg, planeField{level: 4})
	s.SetLoadCenter(mgl32.Vec3{0, 0, 0})

	prev := -1
	for _, c := range s.genQueue {
		d := c.X*c.X + c.Y*c.Y
		if d < prev {
			t.Fatalf("queue not sorted by distance at %v", c)
		}
		prev = d
	}
	if first := s.genQueue[0]; first.X != 0 || first.Y != 0 {
		t.Errorf("first queued chunk %v, expected the center column", first)
	}
}

func TestPerTickBudgets(t *testing.T) {
	cfg := testSettings()
	cfg.ChunksPerTick = 3
	cfg.MeshBuildsPerTick = 2
	s, sink := newTestStore(t, cfg, planeField{level: 4})
	s.SetLoadCenter(mgl32.Vec3{})

	s.Tick(0.01)
	if got := len(s.LoadedCoords()); got != 3 {
		t.Errorf("loaded %d chunks after one tick, expected 3", got)
	}
	if sink.updates+s.GetChunkStats().Empty > 3 {
		t.Errorf("more meshes than generated chunks")
	}
	if got := len(s.meshQueue); got < 1 {
		t.Errorf("mesh queue drained past its budget")
	}
	checkQueueInvariants(t, s)
}

// acquire -> mutate -> release -> acquire hands back zeroed storage without
// reallocating.
func TestPoolRoundTrip(t *testing.T) {
	cfg := testSettings()
	field := planeField{level: 4}
	s, _ := newTestStore(t, cfg, field)

	c := s.AcquireChunk(ChunkCoord{X: 10})
	s.AcquireChunk(ChunkCoord{X: -21})
	if err := c.GenerateVoxelData(context.Background(), field); err != nil {
		t.Fatal(err)
	}
	c.SetDensity(1, 1, 1, -0.5)
	c.SetMaterial(2, 2, 2, terrain.Lava)
	density := &c.DensityData()[0]
	material := &c.MaterialData()[0]

	if !s.ReleaseChunk(ChunkCoord{X: 10}) {
		t.Fatalf("release reported no chunk")
	}
	if st := s.GetChunkStats(); st.Pooled != 1 || st.Loaded != 1 {
		t.Fatalf("after release: %+v", st)
	}

	// A loaded neighbor is linked on acquire; the pooled chunk must not
	// carry links from its previous life.
	again := s.AcquireChunk(ChunkCoord{X: -20})
	if again != c {
		t.Fatalf("acquire did not reuse the pooled chunk")
	}
	if &again.DensityData()[0] != density || &again.MaterialData()[0] != material {
		t.Errorf("pooled chunk storage was reallocated")
	}
	for i, d := range again.DensityData() {
		if d != 0 {
			t.Fatalf("density[%d] = %v after round trip", i, d)
		}
	}
	for i, m := range again.MaterialData() {
		if m != terrain.Air {
			t.Fatalf("material[%d] = %v after round trip", i, m)
		}
	}
	if again.LinkCount() != 1 || !again.IsLinked(-1, 0, 0) {
		t.Errorf("links after reuse = %d, expected only the new neighbor", again.LinkCount())
	}
	if again.State() != ChunkLoading || again.IsPendingKill() {
		t.Errorf("reused chunk state %v", again.State())
	}
}

func TestPoolDisabled(t *testing.T) {
	cfg := testSettings()
	cfg.UsePooling = false
	s, _ := newTestStore(t, cfg, planeField{level: 4})
	c := s.AcquireChunk(ChunkCoord{})
	s.ReleaseChunk(ChunkCoord{})
	if s.GetChunkStats().Pooled != 0 {
		t.Errorf("chunk pooled with pooling disabled")
	}
	if c.DensityData() != nil {
		t.Errorf("destroyed chunk kept its storage")
	}
	if again := s.AcquireChunk(ChunkCoord{}); again == c {
		t.Errorf("destroyed chunk was reused")
	}
}

func TestReleaseUnlinksNeighbors(t *testing.T) {
	cfg := testSettings()
	s, _ := newTestStore(t, cfg, planeField{level: 4})
	a := s.AcquireChunk(ChunkCoord{})
	s.AcquireChunk(ChunkCoord{X: 1})
	s.AcquireChunk(ChunkCoord{X: 1, Y: 1, Z: 1})
	if a.LinkCount() != 2 {
		t.Fatalf("links = %d, expected 2", a.LinkCount())
	}
	s.ReleaseChunk(ChunkCoord{X: 1})
	if a.IsLinked(1, 0, 0) || !a.IsLinked(1, 1, 1) {
		t.Errorf("release left links %b", a.links)
	}
}

func TestMeshQueueHoldsChunkOnce(t *testing.T) {
	cfg := testSettings()
	s, _ := newTestStore(t, cfg, planeField{level: 4})
	c := s.AcquireChunk(ChunkCoord{})
	s.markDirty(c)
	s.markDirty(c)
	s.enqueueMesh(c)
	if len(s.meshQueue) != 1 {
		t.Errorf("mesh queue length %d, expected 1", len(s.meshQueue))
	}
	s.ReleaseChunk(ChunkCoord{})
	if len(s.meshQueue) != 0 {
		t.Errorf("released chunk left in mesh queue")
	}
}

func TestMeshRequeuedUntilGenerated(t *testing.T) {
	cfg := testSettings()
	field := planeField{level: 4}
	s, sink := newTestStore(t, cfg, field)
	c := s.AcquireChunk(ChunkCoord{})
	s.enqueueMesh(c)

	s.processMeshQueue()
	if sink.updates != 0 || len(s.meshQueue) != 1 {
		t.Fatalf("ungenerated chunk meshed or dropped: updates=%d queue=%d", sink.updates, len(s.meshQueue))
	}
	if s.RebuildMesh(ChunkCoord{}) {
		t.Errorf("RebuildMesh succeeded on an ungenerated chunk")
	}

	if err := c.GenerateVoxelData(context.Background(), field); err != nil {
		t.Fatal(err)
	}
	s.processMeshQueue()
	if sink.meshes[ChunkCoord{}] == 0 || c.State() != ChunkMeshed {
		t.Errorf("chunk not meshed once generated: state %v", c.State())
	}
}

func TestSkipEmptyChunks(t *testing.T) {
	cfg := testSettings()
	s, sink := newTestStore(t, cfg, planeField{level: 4})
	s.SetLoadCenter(mgl32.Vec3{})
	drain(t, s)

	st := s.GetChunkStats()
	if st.Empty != 13 {
		t.Errorf("empty chunks = %d, expected the 13 above the plane", st.Empty)
	}
	if len(sink.meshes) != 13 || st.Meshed != 13 {
		t.Errorf("meshes delivered = %d (meshed %d), expected 13", len(sink.meshes), st.Meshed)
	}
	for c := range sink.meshes {
		if c.Z != 0 {
			t.Errorf("empty chunk %v reached the sink", c)
		}
	}
}

func TestAsyncGenerationAndShutdown(t *testing.T) {
	cfg := testSettings()
	cfg.AsyncGeneration = true
	cfg.GenerationWorkers = 3
	cfg.ChunksPerTick = 4
	sink := newRecordingSink()
	s := NewChunkStore(cfg, terrain.NewSampler(cfg), sink, quietLogger())

	s.SetLoadCenter(mgl32.Vec3{})
	drain(t, s)
	checkLoadedEquals(t, s, expectedKeepSet(cfg, ChunkCoord{}))
	for _, coord := range s.LoadedCoords() {
		if !s.GetChunk(coord).IsGenerated() {
			t.Errorf("chunk %v not generated after drain", coord)
		}
	}

	if err := s.Shutdown(5 * time.Second); err != nil {
		t.Fatalf("Shutdown: %v", err)
	}
	if st := s.GetChunkStats(); st.Loaded != 0 || st.Pooled != 0 || st.InFlight != 0 {
		t.Errorf("after shutdown: %+v", st)
	}
	if len(sink.meshes) != 0 {
		t.Errorf("%d meshes left in the sink after shutdown", len(sink.meshes))
	}
	s.SetLoadCenter(mgl32.Vec3{500, 0, 0})
	s.Tick(1)
	if s.GetChunkStats().Loaded != 0 {
		t.Errorf("store streamed after shutdown")
	}
	if err := s.Shutdown(time.Second); err != nil {
		t.Errorf("second Shutdown: %v", err)
	}
}

func TestReleaseDuringGeneration(t *testing.T) {
	cfg := testSettings()
	cfg.AsyncGeneration = true
	cfg.GenerationWorkers = 1
	cfg.RenderDistance = 0
	cfg.WorldHeightChunks = 1
	field := newGateField(4)
	s, _ := newTestStore(t, cfg, field)

	s.SetLoadCenter(mgl32.Vec3{})
	s.Tick(0.01)
	c := s.GetChunk(ChunkCoord{})
	if c == nil {
		t.Fatalf("center chunk not acquired")
	}
	select {
	case <-field.started:
	case <-time.After(5 * time.Second):
		t.Fatalf("generation never started")
	}

	s.SetLoadCenter(chunkCenter(cfg, ChunkCoord{X: 50}))
	if !c.IsPendingKill() || c.State() != ChunkPendingUnload {
		t.Errorf("released in-flight chunk state %v", c.State())
	}
	if s.GetChunkStats().Pooled != 0 {
		t.Errorf("in-flight chunk went to the pool")
	}

	close(field.gate)
	deadline := time.Now().Add(5 * time.Second)
	for s.gen.pending() > 0 {
		if time.Now().After(deadline) {
			t.Fatalf("generation job never finished")
		}
		time.Sleep(time.Millisecond)
	}
	if c.IsGenerated() {
		t.Errorf("abandoned chunk was published as generated")
	}
}

func TestShutdownTimeout(t *testing.T) {
	cfg := testSettings()
	cfg.AsyncGeneration = true
	cfg.GenerationWorkers = 1
	cfg.RenderDistance = 0
	cfg.WorldHeightChunks = 1
	field := newGateField(4)
	s := NewChunkStore(cfg, field, newRecordingSink(), quietLogger())
	t.Cleanup(func() { close(field.gate) })

	s.SetLoadCenter(mgl32.Vec3{})
	s.Tick(0.01)
	<-field.started

	err := s.Shutdown(20 * time.Millisecond)
	if !errors.Is(err, ErrShutdownTimeout) {
		t.Fatalf("Shutdown = %v, expected ErrShutdownTimeout", err)
	}
	if s.GetChunkStats().Loaded != 0 {
		t.Errorf("chunks left after timed out shutdown")
	}
}

func TestLODAndCollisionBands(t *testing.T) {
	cfg := testSettings()
	cfg.RenderDistance = 5
	cfg.WorldHeightChunks = 1
	cfg.LOD = config.LODSettings{
		LOD0Distance:      1,
		LOD1Distance:      2,
		LOD2Distance:      3,
		LOD3Distance:      4,
		CollisionDistance: 1,
		UpdateInterval:    0.5,
		CollisionInterval: 0.5,
	}
	s, sink := newTestStore(t, cfg, planeField{level: 4})
	s.SetLoadCenter(mgl32.Vec3{})
	drain(t, s)

	check := func(center ChunkCoord) {
		t.Helper()
		for _, coord := range s.LoadedCoords() {
			c := s.GetChunk(coord)
			d := coord.HorizontalDistance(center)
			if want := cfg.LOD.LODForDistance(d); c.LOD() != want {
				t.Errorf("chunk %v at %.2f has %v, expected %v", coord, d, c.LOD(), want)
			}
			if want := cfg.LOD.CollisionForDistance(d); c.HasCollision() != want {
				t.Errorf("chunk %v at %.2f collision %v", coord, d, c.HasCollision())
			}
			_, delivered := sink.meshes[coord]
			if c.LOD() == config.LODCulled && delivered {
				t.Errorf("culled chunk %v has a mesh", coord)
			}
			if c.LOD() != config.LODCulled && !delivered {
				t.Errorf("visible chunk %v has no mesh", coord)
			}
			if delivered && sink.collision[coord] != c.HasCollision() {
				t.Errorf("sink collision for %v = %v", coord, sink.collision[coord])
			}
		}
	}
	check(ChunkCoord{})

	// LOD and collision follow the center on their interval, not per tick.
	s.SetLoadCenter(chunkCenter(cfg, ChunkCoord{X: 1}))
	drain(t, s)
	if c := s.GetChunk(ChunkCoord{X: 2}); c.LOD() != config.LOD1 {
		t.Errorf("LOD updated before its interval: %v", c.LOD())
	}
	s.Tick(0.5)
	drain(t, s)
	check(ChunkCoord{X: 1})
}

func TestMissingFieldAndSink(t *testing.T) {
	cfg := testSettings()
	s := NewChunkStore(cfg, nil, nil, quietLogger())
	defer s.Shutdown(time.Second)

	s.SetLoadCenter(mgl32.Vec3{})
	s.Tick(1)
	if st := s.GetChunkStats(); st.Loaded != 0 || st.Pending == 0 {
		t.Errorf("generation without a field: %+v", st)
	}
	if v := s.GetVoxelAtWorldPosition(mgl32.Vec3{}); v.Material != terrain.Air {
		t.Errorf("voxel without a field = %v", v.Material)
	}
}

func TestForceCleanupAndDestroy(t *testing.T) {
	cfg := testSettings()
	s, sink := newTestStore(t, cfg, planeField{level: 4})
	s.SetLoadCenter(mgl32.Vec3{})
	drain(t, s)

	s.AcquireChunk(ChunkCoord{X: 40})
	if n := s.ForceCleanup(); n != 1 {
		t.Errorf("ForceCleanup released %d, expected 1", n)
	}
	if s.HasChunk(ChunkCoord{X: 40}) || s.GetChunkStats().Pooled != 0 {
		t.Errorf("cleanup left far chunk or pooled chunks")
	}

	loaded := len(s.LoadedCoords())
	if n := s.DestroyAllChunks(); n != loaded {
		t.Errorf("DestroyAllChunks = %d, expected %d", n, loaded)
	}
	if len(sink.meshes) != 0 || s.GetChunkStats().Loaded != 0 {
		t.Errorf("destroy left meshes or chunks")
	}
}

func TestChunkStatsMemory(t *testing.T) {
	cfg := testSettings()
	s, _ := newTestStore(t, cfg, planeField{level: 4})
	s.SetLoadCenter(mgl32.Vec3{})
	drain(t, s)

	st := s.GetChunkStats()
	n := int64(cfg.ChunkSize)
	if st.TotalVoxels != int64(st.Loaded)*n*n*n {
		t.Errorf("TotalVoxels = %d", st.TotalVoxels)
	}
	floor := int64(st.Loaded) * ((n+1)*(n+1)*(n+1)*4 + n*n*n)
	if st.MemoryBytes < floor {
		t.Errorf("MemoryBytes = %d, expected at least %d", st.MemoryBytes, floor)
	}
	if mb := s.MemoryUsageMB(); mb <= 0 {
		t.Errorf("MemoryUsageMB = %v", mb)
	}
}

func BenchmarkStreamColumnRing(b *testing.B) {
	cfg := config.DefaultSettings()
	cfg.ChunkSize = 16
	cfg.RenderDistance = 3
	cfg.WorldHeightChunks = 8
	cfg.AsyncGeneration = false
	cfg.ChunksPerTick = 10000
	cfg.MeshBuildsPerTick = 10000
	s := NewChunkStore(cfg, terrain.NewSampler(cfg), newRecordingSink(), quietLogger())
	defer s.Shutdown(time.Second)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		s.SetLoadCenter(mgl32.Vec3{float32(i%4) * 200, 0, 0})
		for !s.Idle() {
			s.Tick(0.01)
		}
	}
}
