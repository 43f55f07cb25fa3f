package main

import (
	"flag"
	"log/slog"
	"os"
	"runtime"
	"time"

	"voxelterrain/internal/config"
	"voxelterrain/internal/physics"
	"voxelterrain/internal/player"
	"voxelterrain/internal/render"
	"voxelterrain/internal/terrain"
	"voxelterrain/internal/world"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/go-gl/mathgl/mgl32"
)

func init() {
	runtime.LockOSThread()
}

func main() {
	fs := flag.CommandLine
	settings := config.RegisterFlags(fs)
	width := fs.Int("width", 1280, "window width")
	height := fs.Int("height", 720, "window height")
	fpsLimit := fs.Int("fps", 120, "frame rate cap, 0 for none")
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

	if err := glfw.Init(); err != nil {
		log.Error("init glfw", "error", err)
		os.Exit(1)
	}
	defer glfw.Terminate()

	window, err := setupWindow(*width, *height)
	if err != nil {
		log.Error("create window", "error", err)
		os.Exit(1)
	}

	renderer, err := render.NewChunkRenderer(cfg.ChunkWorldSize(), log)
	if err != nil {
		log.Error("create renderer", "error", err)
		os.Exit(1)
	}
	defer renderer.Dispose()

	sampler := terrain.NewSampler(cfg)
	store := world.NewChunkStore(cfg, sampler, renderer, log)

	spawn := spawnPoint(cfg, store)
	log.Info("spawning", "position", spawn, "biome", sampler.BiomeAt(0, 0))

	v := newViewer(window, cfg, sampler, store, renderer, player.New(spawn), log)
	v.camera.SetViewport(window.GetFramebufferSize())
	v.limiter = NewFPSLimiter(*fpsLimit)
	v.run()

	if err := v.store.Shutdown(5 * time.Second); err != nil {
		log.Warn("chunk store shutdown", "error", err)
	}
}

func setupWindow(width, height int) (*glfw.Window, error) {
	glfw.WindowHint(glfw.ContextVersionMajor, 4)
	glfw.WindowHint(glfw.ContextVersionMinor, 1)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)

	window, err := glfw.CreateWindow(width, height, "voxelview", nil, nil)
	if err != nil {
		return nil, err
	}
	window.MakeContextCurrent()

	// Initialize OpenGL bindings
	if err := gl.Init(); err != nil {
		return nil, err
	}

	// Disable V-Sync; we'll use our own FPS limiter
	glfw.SwapInterval(0)
	window.SetInputMode(glfw.CursorMode, glfw.CursorDisabled)

	gl.Enable(gl.DEPTH_TEST)
	gl.Enable(gl.CULL_FACE)
	gl.Enable(gl.BLEND)
	gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)
	return window, nil
}

// spawnPoint drops the player onto the ground at the world origin. The store
// answers from the field before any chunk is loaded.
func spawnPoint(cfg *config.Settings, store *world.ChunkStore) mgl32.Vec3 {
	top := float32(cfg.WorldHeightChunks) * cfg.ChunkWorldSize()
	depth := cfg.WorldHeightChunks * cfg.ChunkSize
	x, y := 0.5*cfg.VoxelSize, 0.5*cfg.VoxelSize
	if z, ok := physics.FindGroundLevel(x, y, top, cfg.VoxelSize, depth, store.IsSolid); ok {
		return mgl32.Vec3{x, y, z + 2*cfg.VoxelSize}
	}
	return mgl32.Vec3{x, y, top}
}
