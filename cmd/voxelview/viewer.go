package main

import (
	"fmt"
	"log/slog"
	"time"

	"voxelterrain/internal/config"
	"voxelterrain/internal/input"
	"voxelterrain/internal/player"
	"voxelterrain/internal/profiling"
	"voxelterrain/internal/render"
	"voxelterrain/internal/terrain"
	"voxelterrain/internal/world"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/glfw/v3.3/glfw"
)

const (
	reach          = 8.0
	editStrength   = 0.8
	minBrushRadius = 1.0
	maxBrushRadius = 8.0
)

// buildMaterials are selected with the number keys.
var buildMaterials = [input.MaterialSlots]terrain.Material{
	terrain.Stone, terrain.Dirt, terrain.Grass, terrain.Sand, terrain.Snow, terrain.RedRock,
}

var mesherCycle = []config.MesherMode{config.MesherSmooth, config.MesherGreedy, config.MesherCulled}

type viewer struct {
	window   *glfw.Window
	cfg      *config.Settings
	field    world.Field
	store    *world.ChunkStore
	renderer *render.ChunkRenderer
	camera   *render.Camera
	player   *player.Player
	input    *input.Manager
	limiter  *FPSLimiter
	log      *slog.Logger

	paused   bool
	brush    float32
	material terrain.Material

	frames    int
	lastTitle time.Time
	lastTime  time.Time
}

func newViewer(window *glfw.Window, cfg *config.Settings, field world.Field, store *world.ChunkStore, r *render.ChunkRenderer, p *player.Player, log *slog.Logger) *viewer {
	w, h := window.GetSize()
	v := &viewer{
		window:    window,
		cfg:       cfg,
		field:     field,
		store:     store,
		renderer:  r,
		camera:    render.NewCamera(w, h),
		player:    p,
		input:     input.NewManager(),
		limiter:   NewFPSLimiter(0),
		log:       log,
		brush:     2.5,
		material:  buildMaterials[0],
		lastTitle: time.Now(),
		lastTime:  time.Now(),
	}
	v.camera.FarPlane = float32(cfg.RenderDistance+1) * cfg.ChunkWorldSize()
	v.input.Attach(window)
	window.SetCursorPosCallback(func(w *glfw.Window, xpos, ypos float64) {
		if !v.paused {
			v.camera.HandleMouseMovement(xpos, ypos)
		}
	})
	window.SetFramebufferSizeCallback(func(w *glfw.Window, width, height int) {
		gl.Viewport(0, 0, int32(width), int32(height))
		v.camera.SetViewport(width, height)
	})
	return v
}

func (v *viewer) run() {
	for !v.window.ShouldClose() {
		v.tick()
	}
}

func (v *viewer) tick() {
	now := time.Now()
	dt := min(now.Sub(v.lastTime).Seconds(), 0.1)
	v.lastTime = now

	func() { defer profiling.Track("glfw.PollEvents")(); glfw.PollEvents() }()

	v.handleToggles()
	if !v.paused {
		v.updatePlayer(dt)
		v.handleEdits()
	}

	v.store.SetLoadCenter(v.player.Position)
	v.store.Tick(dt)

	v.camera.Position = v.player.EyePosition()
	gl.ClearColor(v.renderer.FogColor.X(), v.renderer.FogColor.Y(), v.renderer.FogColor.Z(), 1)
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)
	v.renderer.Render(v.camera)

	func() { defer profiling.Track("glfw.SwapBuffers")(); v.window.SwapBuffers() }()

	v.input.PostUpdate()
	v.frames++
	if time.Since(v.lastTitle) >= time.Second {
		v.updateTitle()
	}
	v.limiter.Wait(v.paused)
}

func (v *viewer) handleToggles() {
	in := v.input
	if in.JustPressed(input.ActionPause) {
		v.paused = !v.paused
		if v.paused {
			v.window.SetInputMode(glfw.CursorMode, glfw.CursorNormal)
		} else {
			v.window.SetInputMode(glfw.CursorMode, glfw.CursorDisabled)
			v.camera.ResetMouse()
		}
	}
	if in.JustPressed(input.ActionToggleFly) {
		v.player.ToggleFlying()
	}
	if in.JustPressed(input.ActionToggleWireframe) {
		v.renderer.Wireframe = !v.renderer.Wireframe
	}
	if in.JustPressed(input.ActionToggleCollision) {
		v.renderer.ShowCollision = !v.renderer.ShowCollision
	}
	if in.JustPressed(input.ActionCycleMesher) {
		v.cycleMesher()
	}
	for i := range input.MaterialSlots {
		if in.JustPressed(input.ActionMaterial1 + input.Action(i)) {
			v.material = buildMaterials[i]
		}
	}
	if s := in.Scroll(); s != 0 {
		v.brush = max(minBrushRadius, min(maxBrushRadius, v.brush+float32(s)*0.5))
	}
}

func (v *viewer) updatePlayer(dt float64) {
	in := v.input
	forward := in.Axis(input.ActionMoveBackward, input.ActionMoveForward)
	strafe := in.Axis(input.ActionMoveLeft, input.ActionMoveRight)
	move := v.camera.Forward().Mul(forward).Add(v.camera.Right().Mul(strafe))

	v.player.Update(dt, player.Input{
		Move:    move,
		Ascend:  in.IsActive(input.ActionAscend),
		Descend: in.IsActive(input.ActionDescend),
		Sprint:  in.IsActive(input.ActionSprint),
	}, v.cfg.VoxelSize, v.store.IsSolid)
}

// handleEdits digs with the left button and builds with the right one at
// the voxel under the crosshair.
func (v *viewer) handleEdits() {
	dig := v.input.JustPressed(input.ActionDig)
	build := v.input.JustPressed(input.ActionBuild)
	if !dig && !build {
		return
	}
	eye := v.player.EyePosition()
	hit := v.store.VoxelRaycast(eye, eye.Add(v.camera.Front().Mul(reach)))
	if !hit.Hit {
		return
	}

	var changed int
	if dig {
		changed = v.store.ModifySphere(hit.Position, v.brush, editStrength, false, terrain.Air)
	} else {
		if v.player.Overlaps(hit.Previous[0], hit.Previous[1], hit.Previous[2], v.cfg.VoxelSize) {
			return
		}
		center := hit.Position.Add(hit.Normal.Mul(0.5 * v.cfg.VoxelSize))
		changed = v.store.ModifySphere(center, v.brush, editStrength, true, v.material)
	}
	v.log.Debug("terrain edit", "dig", dig, "at", hit.Voxel, "radius", v.brush, "chunks", changed)
}

// cycleMesher restarts the chunk store with the next mesher. Edits are not
// carried over.
func (v *viewer) cycleMesher() {
	next := mesherCycle[0]
	for i, m := range mesherCycle {
		if m == v.cfg.Mesher {
			next = mesherCycle[(i+1)%len(mesherCycle)]
		}
	}
	if err := v.store.Shutdown(2 * time.Second); err != nil {
		v.log.Warn("chunk store shutdown", "error", err)
	}
	v.renderer.Clear()

	cfg := *v.cfg
	cfg.Mesher = next
	v.cfg = &cfg
	v.store = world.NewChunkStore(v.cfg, v.field, v.renderer, v.log)
	v.log.Info("mesher switched", "mesher", next)
}

func (v *viewer) updateTitle() {
	st := v.store.GetChunkStats()
	c := v.store.WorldToChunkCoord(v.player.Position)
	mode := "walk"
	if v.player.Flying {
		mode = "fly"
	}
	title := fmt.Sprintf("voxelview | %d fps | %s | chunk %d,%d,%d | loaded %d pending %d meshed %d drawn %d | %.0f MB | brush %.1f %s | %s",
		v.frames, mode, c.X, c.Y, c.Z, st.Loaded, st.Pending, st.Meshed, v.renderer.Drawn(),
		v.store.MemoryUsageMB(), v.brush, v.material, v.cfg.Mesher)
	if top := profiling.TopN(2); top != "" {
		title += " | " + top
	}
	v.window.SetTitle(title)
	v.frames = 0
	v.lastTitle = time.Now()
	profiling.Reset()
}
