package world

import (
	"cmp"
	"context"
	"slices"

	"voxelterrain/internal/profiling"

	"github.com/go-gl/mathgl/mgl32"
)

// SetLoadCenter moves the streaming center. When it enters a different chunk
// column, chunks outside the render distance are released and missing ones
// are queued for generation, nearest first.
func (s *ChunkStore) SetLoadCenter(pos mgl32.Vec3) {
	if s.closed {
		return
	}
	c := s.WorldToChunkCoord(pos)
	if s.hasCenter && c.X == s.center.X && c.Y == s.center.Y {
		s.center.Z = c.Z
		return
	}
	s.center = c
	s.hasCenter = true
	s.updateKeepSet()
}

// keepSet is every coordinate within render distance of the center column,
// measured horizontally, across all vertical layers.
func (s *ChunkStore) keepSet() map[ChunkCoord]struct{} {
	r := s.cfg.RenderDistance
	keep := make(map[ChunkCoord]struct{}, (2*r+1)*(2*r+1)*s.cfg.WorldHeightChunks)
	if !s.hasCenter {
		return keep
	}
	for dy := -r; dy <= r; dy++ {
		for dx := -r; dx <= r; dx++ {
			if dx*dx+dy*dy > r*r {
				continue
			}
			for z := 0; z < s.cfg.WorldHeightChunks; z++ {
				keep[ChunkCoord{X: s.center.X + dx, Y: s.center.Y + dy, Z: z}] = struct{}{}
			}
		}
	}
	return keep
}

func (s *ChunkStore) updateKeepSet() {
	defer profiling.Track("world.updateKeepSet")()

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
	for coord := range keep {
		if _, ok := s.chunks[coord]; !ok {
			s.queued[coord] = struct{}{}
		}
	}

	s.genQueue = s.genQueue[:0]
	for coord := range s.queued {
		s.genQueue = append(s.genQueue, coord)
	}
	slices.SortFunc(s.genQueue, s.compareDistance)

	s.log.Debug("load center moved",
		"center", s.center,
		"queued", len(s.genQueue),
		"released", released,
		"loaded", len(s.chunks),
	)
}

// compareDistance orders coordinates nearest first: horizontal distance to
// the center, then vertical distance, then position.
func (s *ChunkStore) compareDistance(a, b ChunkCoord) int {
	da := sq(a.X-s.center.X) + sq(a.Y-s.center.Y)
	db := sq(b.X-s.center.X) + sq(b.Y-s.center.Y)
	if c := cmp.Compare(da, db); c != 0 {
		return c
	}
	if c := cmp.Compare(abs(a.Z-s.center.Z), abs(b.Z-s.center.Z)); c != 0 {
		return c
	}
	if c := cmp.Compare(a.Z, b.Z); c != 0 {
		return c
	}
	if c := cmp.Compare(a.Y, b.Y); c != 0 {
		return c
	}
	return cmp.Compare(a.X, b.X)
}

func sq(v int) int { return v * v }

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// Tick advances streaming by one frame: it drains the generation and mesh
// queues within their per-tick budgets and re-evaluates LOD and collision
// bands on their own intervals. dt is in seconds.
func (s *ChunkStore) Tick(dt float64) {
	if s.closed {
		return
	}
	defer profiling.Track("world.Tick")()

	s.processGenerationQueue()
	s.processMeshQueue()

	s.lodTimer += dt
	if s.lodTimer >= s.cfg.LOD.UpdateInterval {
		s.lodTimer = 0
		s.updateLODs()
	}
	s.collisionTimer += dt
	if s.collisionTimer >= s.cfg.LOD.CollisionInterval {
		s.collisionTimer = 0
		s.updateCollision()
	}
}

func (s *ChunkStore) processGenerationQueue() {
	if s.field == nil {
		return
	}
	defer profiling.Track("world.processGenerationQueue")()

	budget := s.cfg.ChunksPerTick
	for budget > 0 && len(s.genQueue) > 0 {
		coord := s.genQueue[0]
		if _, ok := s.queued[coord]; !ok {
			s.genQueue = s.genQueue[1:]
			continue
		}
		if s.gen != nil && s.gen.full() {
			break
		}
		s.genQueue = s.genQueue[1:]

		c := s.AcquireChunk(coord)
		if s.gen != nil {
			if !s.gen.submit(c) {
				s.ReleaseChunk(coord)
				s.queued[coord] = struct{}{}
				s.genQueue = slices.Insert(s.genQueue, 0, coord)
				break
			}
		} else if err := c.GenerateVoxelData(context.Background(), s.field); err != nil {
			s.log.Warn("generation failed", "chunk", coord, "error", err)
		}
		s.enqueueMesh(c)
		budget--
	}
}

func (s *ChunkStore) processMeshQueue() {
	if s.sink == nil {
		return
	}
	defer profiling.Track("world.processMeshQueue")()

	budget := s.cfg.MeshBuildsPerTick
	for n := len(s.meshQueue); n > 0 && budget > 0 && len(s.meshQueue) > 0; n-- {
		c := s.meshQueue[0]
		s.meshQueue = s.meshQueue[1:]
		c.queuedForMesh = false

		if !c.active || c.pendingKill.Load() {
			continue
		}
		if !c.generated.Load() {
			s.enqueueMesh(c)
			continue
		}
		s.rebuildMesh(c)
		budget--
	}
}

func (s *ChunkStore) updateLODs() {
	for _, c := range s.chunks {
		l := s.cfg.LOD.LODForDistance(c.coord.HorizontalDistance(s.center))
		if l == c.lod {
			continue
		}
		c.lod = l
		if c.generated.Load() {
			s.markDirty(c)
		}
	}
}

func (s *ChunkStore) updateCollision() {
	for _, c := range s.chunks {
		col := s.cfg.LOD.CollisionForDistance(c.coord.HorizontalDistance(s.center))
		if col == c.collision {
			continue
		}
		c.collision = col
		if c.meshed && !c.queuedForMesh && s.sink != nil {
			s.sink.UpdateChunkMesh(c.coord, c.WorldOrigin(), c.mesh, col)
		}
	}
}
