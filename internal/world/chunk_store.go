package world

import (
	"log/slog"
	"slices"
	"time"

	"voxelterrain/internal/config"
	"voxelterrain/internal/meshing"

	"github.com/go-gl/mathgl/mgl32"
)

// MeshSink receives finished chunk meshes. The buffers belong to the chunk
// and are rewritten on its next rebuild, so a sink must copy or upload them
// before returning.
type MeshSink interface {
	UpdateChunkMesh(coord ChunkCoord, origin mgl32.Vec3, mesh *meshing.MeshBuffers, collision bool)
	RemoveChunkMesh(coord ChunkCoord)
}

// ChunkStore streams chunks around a load center. Every method must be called
// from a single goroutine (the frame loop); only voxel generation runs
// elsewhere.
type ChunkStore struct {
	cfg   *config.Settings
	field Field
	sink  MeshSink
	log   *slog.Logger

	chunks map[ChunkCoord]*Chunk
	pool   *chunkPool
	gen    *generatorPool

	genQueue  []ChunkCoord
	queued    map[ChunkCoord]struct{}
	meshQueue []*Chunk

	center    ChunkCoord
	hasCenter bool

	lodTimer       float64
	collisionTimer float64
	closed         bool
}

// NewChunkStore creates a store over field. cfg must not be modified
// afterwards. A nil field disables generation and a nil sink disables
// meshing; both are logged.
func NewChunkStore(cfg *config.Settings, field Field, sink MeshSink, log *slog.Logger) *ChunkStore {
	if cfg == nil {
		cfg = config.DefaultSettings()
	}
	if log == nil {
		log = slog.Default()
	}
	log = log.With("component", "chunkstore")

	poolSize := 0
	if cfg.UsePooling {
		poolSize = cfg.PoolSize
	}

	s := &ChunkStore{
		cfg:    cfg,
		field:  field,
		sink:   sink,
		log:    log,
		chunks: make(map[ChunkCoord]*Chunk),
		pool:   newChunkPool(poolSize),
		queued: make(map[ChunkCoord]struct{}),
	}

	if field == nil {
		log.Warn("no terrain field assigned, chunk generation disabled")
	}
	if sink == nil {
		log.Warn("no mesh sink assigned, chunk meshing disabled")
	}
	if cfg.AsyncGeneration && field != nil {
		workers := max(cfg.GenerationWorkers, 1)
		s.gen = newGeneratorPool(workers, max(cfg.ChunksPerTick*2, workers*2), field, log)
	}

	log.Info("chunk store initialized",
		"chunkSize", cfg.ChunkSize,
		"voxelSize", cfg.VoxelSize,
		"renderDistance", cfg.RenderDistance,
		"heightChunks", cfg.WorldHeightChunks,
		"mesher", cfg.Mesher,
		"async", s.gen != nil,
		"poolSize", poolSize,
	)
	return s
}

// Settings returns the store's configuration.
func (s *ChunkStore) Settings() *config.Settings { return s.cfg }

// Field returns the terrain source.
func (s *ChunkStore) Field() Field { return s.field }

// Center returns the chunk the load center is in.
func (s *ChunkStore) Center() ChunkCoord { return s.center }

func (s *ChunkStore) loadedChunk(c ChunkCoord) *Chunk { return s.chunks[c] }

// GetChunk returns the loaded chunk at coord, or nil.
func (s *ChunkStore) GetChunk(coord ChunkCoord) *Chunk { return s.chunks[coord] }

// HasChunk checks if a chunk is loaded.
func (s *ChunkStore) HasChunk(coord ChunkCoord) bool {
	_, ok := s.chunks[coord]
	return ok
}

// IsQueued reports whether coord is waiting for generation.
func (s *ChunkStore) IsQueued(coord ChunkCoord) bool {
	_, ok := s.queued[coord]
	return ok
}

// LoadedCoords returns the coordinates of all loaded chunks.
func (s *ChunkStore) LoadedCoords() []ChunkCoord {
	out := make([]ChunkCoord, 0, len(s.chunks))
	for c := range s.chunks {
		out = append(out, c)
	}
	return out
}

// AcquireChunk loads the chunk at coord, reusing a pooled chunk when one is
// available, and wires it to its loaded neighbors. The chunk is not
// generated. An already loaded chunk is returned as is.
func (s *ChunkStore) AcquireChunk(coord ChunkCoord) *Chunk {
	if c, ok := s.chunks[coord]; ok {
		return c
	}
	delete(s.queued, coord)

	c := s.pool.get(s.cfg.ChunkSize)
	if c == nil {
		c = &Chunk{}
	}
	c.Init(coord, s.cfg, s.field, s)

	d := coord.HorizontalDistance(s.center)
	c.lod = s.cfg.LOD.LODForDistance(d)
	c.collision = s.cfg.LOD.CollisionForDistance(d)

	s.chunks[coord] = c
	s.linkNeighbors(c)
	return c
}

// ReleaseChunk unloads the chunk at coord. It goes back to the pool when
// there is room and no generation job holds it; otherwise it is dropped.
func (s *ChunkStore) ReleaseChunk(coord ChunkCoord) bool {
	delete(s.queued, coord)
	c, ok := s.chunks[coord]
	if !ok {
		return false
	}
	delete(s.chunks, coord)
	s.unlinkNeighbors(c)
	s.removeFromMeshQueue(c)
	if c.meshed && s.sink != nil {
		s.sink.RemoveChunkMesh(coord)
	}
	s.dispose(c, true)
	return true
}

// dispose hands c to the pool or frees it. A chunk still owned by a
// generation job is only flagged; the job sees the flag and drops it.
func (s *ChunkStore) dispose(c *Chunk, pool bool) {
	c.pendingKill.Store(true)
	c.active = false
	if c.inFlight.Load() {
		s.log.Debug("released chunk during generation", "chunk", c.coord)
		return
	}
	if pool && s.pool.put(c) {
		return
	}
	c.destroy()
}

func (s *ChunkStore) linkNeighbors(c *Chunk) {
	for dz := -1; dz <= 1; dz++ {
		for dy := -1; dy <= 1; dy++ {
			for dx := -1; dx <= 1; dx++ {
				if dx == 0 && dy == 0 && dz == 0 {
					continue
				}
				if nb, ok := s.chunks[c.coord.Add(dx, dy, dz)]; ok {
					c.link(dx, dy, dz)
					nb.link(-dx, -dy, -dz)
				} else {
					c.unlink(dx, dy, dz)
				}
			}
		}
	}
}

func (s *ChunkStore) unlinkNeighbors(c *Chunk) {
	for dz := -1; dz <= 1; dz++ {
		for dy := -1; dy <= 1; dy++ {
			for dx := -1; dx <= 1; dx++ {
				if nb, ok := s.chunks[c.coord.Add(dx, dy, dz)]; ok {
					nb.unlink(-dx, -dy, -dz)
				}
			}
		}
	}
	c.links = 0
}

func (s *ChunkStore) enqueueMesh(c *Chunk) {
	if c.queuedForMesh {
		return
	}
	c.queuedForMesh = true
	s.meshQueue = append(s.meshQueue, c)
}

func (s *ChunkStore) removeFromMeshQueue(c *Chunk) {
	if !c.queuedForMesh {
		return
	}
	s.meshQueue = slices.DeleteFunc(s.meshQueue, func(q *Chunk) bool { return q == c })
	c.queuedForMesh = false
}

// markDirty flags a loaded chunk for a mesh rebuild.
func (s *ChunkStore) markDirty(c *Chunk) {
	if c == nil || !c.active {
		return
	}
	c.meshDirty = true
	s.enqueueMesh(c)
}

// RebuildMesh meshes the chunk at coord immediately, refreshing its
// neighbor links first.
func (s *ChunkStore) RebuildMesh(coord ChunkCoord) bool {
	c, ok := s.chunks[coord]
	if !ok {
		return false
	}
	if !c.generated.Load() {
		s.log.Warn("mesh requested for ungenerated chunk", "chunk", coord)
		return false
	}
	s.removeFromMeshQueue(c)
	s.rebuildMesh(c)
	return true
}

func (s *ChunkStore) rebuildMesh(c *Chunk) {
	if s.sink == nil {
		return
	}
	s.linkNeighbors(c)

	if c.lod == config.LODCulled || (s.cfg.SkipEmptyChunks && c.empty) {
		c.mesh.Reset()
		c.meshDirty = false
		s.dropMesh(c)
		return
	}

	c.BuildMesh()
	if c.mesh.IsEmpty() {
		s.dropMesh(c)
		return
	}
	s.sink.UpdateChunkMesh(c.coord, c.WorldOrigin(), c.mesh, c.collision)
	c.meshed = true
}

func (s *ChunkStore) dropMesh(c *Chunk) {
	if c.meshed {
		s.sink.RemoveChunkMesh(c.coord)
		c.meshed = false
	}
}

// ForceCleanup unloads every chunk outside the keep-set of the current load
// center, drops stale generation requests and empties the pool.
func (s *ChunkStore) ForceCleanup() int {
	keep := s.keepSet()
	released := 0
	for _, coord := range s.LoadedCoords() {
		if _, ok := keep[coord]; !ok {
			s.ReleaseChunk(coord)
			released++
		}
	}
	for coord := range s.queued {
		if _, ok := keep[coord]; !ok {
			delete(s.queued, coord)
		}
	}
	trimmed := s.pool.trim(0)
	s.log.Debug("forced cleanup", "released", released, "trimmed", trimmed)
	return released
}

// DestroyAllChunks unloads everything without pooling and clears both
// queues.
func (s *ChunkStore) DestroyAllChunks() int {
	n := len(s.chunks)
	for coord, c := range s.chunks {
		if c.meshed && s.sink != nil {
			s.sink.RemoveChunkMesh(coord)
		}
		c.queuedForMesh = false
		s.dispose(c, false)
	}
	clear(s.chunks)
	clear(s.queued)
	s.genQueue = s.genQueue[:0]
	s.meshQueue = s.meshQueue[:0]
	s.pool.trim(0)
	return n
}

// Shutdown stops generation, waits up to timeout for running jobs and
// destroys every chunk. Cleanup happens even when the wait times out.
func (s *ChunkStore) Shutdown(timeout time.Duration) error {
	if s.closed {
		return nil
	}
	s.closed = true

	var err error
	if s.gen != nil {
		if err = s.gen.shutdown(timeout); err != nil {
			s.log.Warn("generation workers still running at shutdown", "timeout", timeout, "error", err)
		}
	}
	n := s.DestroyAllChunks()
	s.log.Info("chunk store shut down", "destroyed", n)
	return err
}
