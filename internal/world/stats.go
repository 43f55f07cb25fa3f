package world

// ChunkStats is a snapshot of the store's bookkeeping.
type ChunkStats struct {
	Loaded      int
	Pending     int // waiting for generation
	Pooled      int
	InFlight    int // generation jobs not yet finished
	MeshQueue   int
	Meshed      int
	Empty       int
	TotalVoxels int64
	MemoryBytes int64
}

// GetChunkStats counts loaded, queued and pooled chunks and their memory.
func (s *ChunkStore) GetChunkStats() ChunkStats {
	st := ChunkStats{
		Loaded:    len(s.chunks),
		Pending:   len(s.queued),
		Pooled:    s.pool.pooled(),
		MeshQueue: len(s.meshQueue),
	}
	if s.gen != nil {
		st.InFlight = s.gen.pending()
	}
	n := int64(s.cfg.ChunkSize)
	for _, c := range s.chunks {
		st.TotalVoxels += n * n * n
		st.MemoryBytes += int64(c.MemoryBytes())
		if c.meshed {
			st.Meshed++
		}
		if c.generated.Load() && c.empty {
			st.Empty++
		}
	}
	st.MemoryBytes += int64(s.pool.memoryBytes())
	return st
}

// MemoryUsageMB is the estimated heap held by loaded and pooled chunks.
func (s *ChunkStore) MemoryUsageMB() float64 {
	return float64(s.GetChunkStats().MemoryBytes) / (1024 * 1024)
}

// Idle reports whether no generation or mesh work is outstanding.
func (s *ChunkStore) Idle() bool {
	st := s.GetChunkStats()
	return st.Pending == 0 && st.InFlight == 0 && st.MeshQueue == 0
}
