package world

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
)

// ErrShutdownTimeout is returned by Shutdown when generation workers did not
// stop within the allowed time.
var ErrShutdownTimeout = errors.New("world: timed out waiting for generation workers")

// generatorPool runs chunk generation off the main thread. Jobs are chunks
// whose storage belongs to the worker until generated is set.
type generatorPool struct {
	jobs     chan *Chunk
	field    Field
	log      *slog.Logger
	ctx      context.Context
	cancel   context.CancelFunc
	group    *errgroup.Group
	inFlight atomic.Int64
	closed   bool
}

func newGeneratorPool(workers, queueSize int, field Field, log *slog.Logger) *generatorPool {
	ctx, cancel := context.WithCancel(context.Background())
	group, gctx := errgroup.WithContext(ctx)

	p := &generatorPool{
		jobs:   make(chan *Chunk, max(queueSize, 1)),
		field:  field,
		log:    log,
		ctx:    gctx,
		cancel: cancel,
		group:  group,
	}
	for range max(workers, 1) {
		group.Go(p.worker)
	}
	return p
}

func (p *generatorPool) worker() error {
	for {
		select {
		case c, ok := <-p.jobs:
			if !ok {
				return nil
			}
			p.run(c)
		case <-p.ctx.Done():
			return nil
		}
	}
}

func (p *generatorPool) run(c *Chunk) {
	defer p.inFlight.Add(-1)
	// Last write: once inFlight is clear the main thread may pool the chunk.
	defer c.inFlight.Store(false)

	err := c.GenerateVoxelData(p.ctx, p.field)
	switch {
	case err == nil:
	case errors.Is(err, errChunkReleased), errors.Is(err, context.Canceled):
		p.log.Debug("generation abandoned", "chunk", c.coord, "reason", err)
	default:
		p.log.Warn("generation failed", "chunk", c.coord, "error", err)
	}
}

// full reports whether a submit would be refused.
func (p *generatorPool) full() bool {
	return p.closed || len(p.jobs) >= cap(p.jobs)
}

// submit queues c without blocking.
func (p *generatorPool) submit(c *Chunk) bool {
	if p.closed {
		return false
	}
	c.inFlight.Store(true)
	p.inFlight.Add(1)
	select {
	case p.jobs <- c:
		return true
	default:
		p.inFlight.Add(-1)
		c.inFlight.Store(false)
		return false
	}
}

// pending returns the number of submitted jobs that have not finished.
func (p *generatorPool) pending() int {
	return int(p.inFlight.Load())
}

// shutdown cancels outstanding work and waits up to timeout for workers to
// exit.
func (p *generatorPool) shutdown(timeout time.Duration) error {
	if p.closed {
		return nil
	}
	p.closed = true
	p.cancel()
	close(p.jobs)

	done := make(chan error, 1)
	go func() { done <- p.group.Wait() }()

	var err error
	select {
	case err = <-done:
	case <-time.After(timeout):
		return ErrShutdownTimeout
	}

	// Jobs the workers never picked up.
	for c := range p.jobs {
		p.inFlight.Add(-1)
		c.inFlight.Store(false)
	}
	return err
}
