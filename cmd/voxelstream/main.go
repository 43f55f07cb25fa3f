// Command voxelstream moves a load center through the world without a window
// and reports what the chunk store does.
package main

import (
	"context"
	"flag"
	"log/slog"
	"math"
	"os"
	"time"

	"voxelterrain/internal/config"
	"voxelterrain/internal/meshing"
	"voxelterrain/internal/physics"
	"voxelterrain/internal/profiling"
	"voxelterrain/internal/terrain"
	"voxelterrain/internal/world"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/xlab/closer"
)

// countingSink tallies what a renderer would receive.
type countingSink struct {
	meshes    map[world.ChunkCoord]int
	triangles int
	uploads   int
	removals  int
}

func (s *countingSink) UpdateChunkMesh(coord world.ChunkCoord, origin mgl32.Vec3, mesh *meshing.MeshBuffers, collision bool) {
	s.triangles += mesh.TriangleCount() - s.meshes[coord]
	s.meshes[coord] = mesh.TriangleCount()
	s.uploads++
}

func (s *countingSink) RemoveChunkMesh(coord world.ChunkCoord) {
	s.triangles -= s.meshes[coord]
	delete(s.meshes, coord)
	s.removals++
}

type options struct {
	duration time.Duration
	tickRate int
	speed    float64
	orbit    float64
	interval time.Duration
	digEvery time.Duration
}

func main() {
	fs := flag.CommandLine
	settings := config.RegisterFlags(fs)
	var opt options
	fs.DurationVar(&opt.duration, "duration", 30*time.Second, "how long to stream")
	fs.IntVar(&opt.tickRate, "tick-rate", 60, "store ticks per second")
	fs.Float64Var(&opt.speed, "speed", 20, "load center speed in world units per second")
	fs.Float64Var(&opt.orbit, "orbit", 0, "orbit radius around the origin; 0 walks a straight line along +X")
	fs.DurationVar(&opt.interval, "stats", 2*time.Second, "stats logging interval")
	fs.DurationVar(&opt.digEvery, "dig-every", 0, "dig a sphere under the load center at this interval; 0 disables")
	verbose := fs.Bool("v", false, "debug logging")
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level}))

	cfg, err := settings.Settings(fs)
	if err != nil {
		log.Error("load settings", "error", err)
		os.Exit(1)
	}

	sampler := terrain.NewSampler(cfg)
	sink := &countingSink{meshes: make(map[world.ChunkCoord]int)}
	store := world.NewChunkStore(cfg, sampler, sink, log)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	closer.Bind(func() {
		cancel()
		<-done
		if err := store.Shutdown(5 * time.Second); err != nil {
			log.Warn("chunk store shutdown", "error", err)
		}
		log.Info("stream finished",
			"uploads", sink.uploads,
			"removals", sink.removals,
			"meshes", len(sink.meshes),
			"triangles", sink.triangles,
			"profile", profiling.TopN(5))
	})

	// The store is driven from this goroutine only.
	go func() {
		stream(ctx, cfg, store, sink, opt, log)
		close(done)
		if ctx.Err() == nil {
			closer.Close()
		}
	}()
	closer.Hold()
}

func stream(ctx context.Context, cfg *config.Settings, store *world.ChunkStore, sink *countingSink, opt options, log *slog.Logger) {
	rate := max(opt.tickRate, 1)
	dt := 1 / float64(rate)
	ticker := time.NewTicker(time.Second / time.Duration(rate))
	defer ticker.Stop()

	start := time.Now()
	lastStats, lastDig := start, start
	peakMB := 0.0
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			elapsed := now.Sub(start)
			if elapsed >= opt.duration {
				logStats(log, store, sink, elapsed, peakMB)
				return
			}

			pos := centerAt(cfg, store, opt, elapsed.Seconds())
			store.SetLoadCenter(pos)
			store.Tick(dt)
			peakMB = math.Max(peakMB, store.MemoryUsageMB())

			if opt.digEvery > 0 && now.Sub(lastDig) >= opt.digEvery {
				n := store.ModifySphere(pos.Sub(mgl32.Vec3{0, 0, 3 * cfg.VoxelSize}), 3*cfg.VoxelSize, 1, false, terrain.Air)
				log.Debug("dig", "at", pos, "chunks", n)
				lastDig = now
			}
			if now.Sub(lastStats) >= opt.interval {
				logStats(log, store, sink, elapsed, peakMB)
				lastStats = now
			}
		}
	}
}

// centerAt places the load center on the path at time t, hovering a few
// voxels above the ground.
func centerAt(cfg *config.Settings, store *world.ChunkStore, opt options, t float64) mgl32.Vec3 {
	var x, y float64
	if opt.orbit > 0 {
		a := opt.speed * t / opt.orbit
		x, y = opt.orbit*math.Cos(a), opt.orbit*math.Sin(a)
	} else {
		x = opt.speed * t
	}
	top := float32(cfg.WorldHeightChunks) * cfg.ChunkWorldSize()
	z := top / 2
	if g, ok := physics.FindGroundLevel(float32(x), float32(y), top, cfg.VoxelSize, cfg.WorldHeightChunks*cfg.ChunkSize, store.IsSolid); ok {
		z = g + 4*cfg.VoxelSize
	}
	return mgl32.Vec3{float32(x), float32(y), z}
}

func logStats(log *slog.Logger, store *world.ChunkStore, sink *countingSink, elapsed time.Duration, peakMB float64) {
	st := store.GetChunkStats()
	log.Info("stream stats",
		"elapsed", elapsed.Round(time.Millisecond),
		"center", store.Center(),
		"loaded", st.Loaded,
		"pending", st.Pending,
		"in_flight", st.InFlight,
		"mesh_queue", st.MeshQueue,
		"meshed", st.Meshed,
		"empty", st.Empty,
		"pooled", st.Pooled,
		"triangles", sink.triangles,
		"memory_mb", math.Round(store.MemoryUsageMB()*10)/10,
		"peak_mb", math.Round(peakMB*10)/10,
		"profile", profiling.TopN(3))
	profiling.Reset()
}
