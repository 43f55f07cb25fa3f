package world

// chunkPool is a free list of reset chunks keyed by chunk size. It is only
// touched from the main thread.
type chunkPool struct {
	free     map[int][]*Chunk
	capacity int
	count    int
}

func newChunkPool(capacity int) *chunkPool {
	return &chunkPool{free: make(map[int][]*Chunk), capacity: max(capacity, 0)}
}

// get pops a chunk whose storage was sized for size, or returns nil.
func (p *chunkPool) get(size int) *Chunk {
	list := p.free[size]
	if len(list) == 0 {
		return nil
	}
	c := list[len(list)-1]
	list[len(list)-1] = nil
	p.free[size] = list[:len(list)-1]
	p.count--
	return c
}

// put resets c and keeps it. It reports false when the pool is full.
func (p *chunkPool) put(c *Chunk) bool {
	if p.count >= p.capacity {
		return false
	}
	size := c.size
	c.Reset()
	p.free[size] = append(p.free[size], c)
	p.count++
	return true
}

// trim drops pooled chunks until at most keep remain.
func (p *chunkPool) trim(keep int) int {
	dropped := 0
	for size, list := range p.free {
		for len(list) > 0 && p.count > keep {
			list[len(list)-1].destroy()
			list[len(list)-1] = nil
			list = list[:len(list)-1]
			p.count--
			dropped++
		}
		if len(list) == 0 {
			delete(p.free, size)
		} else {
			p.free[size] = list
		}
	}
	return dropped
}

func (p *chunkPool) pooled() int { return p.count }

// memoryBytes sums the storage held by pooled chunks.
func (p *chunkPool) memoryBytes() int {
	b := 0
	for _, list := range p.free {
		for _, c := range list {
			b += c.MemoryBytes()
		}
	}
	return b
}
