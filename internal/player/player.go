package player

import (
	"voxelterrain/internal/physics"
	"voxelterrain/internal/profiling"

	"github.com/go-gl/mathgl/mgl32"
)

const (
	Gravity          = 32.0
	TerminalVelocity = -78.4
	JumpVelocity     = 9.4

	WalkSpeed        = 4.3
	FlySpeed         = 12.0
	SprintMultiplier = 2.5

	HalfWidth = 0.3
	Height    = 1.8
	EyeHeight = 1.62

	// collisions are resolved in substeps no longer than this
	maxStep = 0.25
)

// Player is a box-shaped body moving through voxel terrain. Position is the
// center of the box's base.
type Player struct {
	Position mgl32.Vec3
	Velocity mgl32.Vec3
	Flying   bool
	OnGround bool
}

// Input is the movement intent for one update. Move is a horizontal
// direction in world space; its length scales the speed.
type Input struct {
	Move    mgl32.Vec3
	Ascend  bool
	Descend bool
	Sprint  bool
}

// New places a flying player at pos.
func New(pos mgl32.Vec3) *Player {
	return &Player{Position: pos, Flying: true}
}

// EyePosition returns the camera position.
func (p *Player) EyePosition() mgl32.Vec3 {
	return p.Position.Add(mgl32.Vec3{0, 0, EyeHeight})
}

// ToggleFlying switches between flying and walking.
func (p *Player) ToggleFlying() {
	p.Flying = !p.Flying
	p.Velocity[2] = 0
}

// Update integrates one step. Walking applies gravity and jumps with Ascend;
// flying moves straight up or down. Solid voxels block every axis
// separately, so the body slides along walls.
func (p *Player) Update(dt float64, in Input, voxelSize float32, isSolid physics.SolidFunc) {
	defer profiling.Track("player.Update")()
	if dt <= 0 {
		return
	}
	t := float32(dt)

	speed := float32(WalkSpeed)
	if p.Flying {
		speed = FlySpeed
	}
	if in.Sprint {
		speed *= SprintMultiplier
	}
	move := mgl32.Vec3{in.Move.X(), in.Move.Y(), 0}
	if l := move.Len(); l > 1 {
		move = move.Mul(1 / l)
	}
	p.Velocity[0] = move.X() * speed
	p.Velocity[1] = move.Y() * speed

	if p.Flying {
		p.Velocity[2] = 0
		if in.Ascend {
			p.Velocity[2] += speed
		}
		if in.Descend {
			p.Velocity[2] -= speed
		}
	} else {
		if in.Ascend && p.OnGround {
			p.Velocity[2] = JumpVelocity
		}
		p.Velocity[2] = max(p.Velocity[2]-Gravity*t, TerminalVelocity)
	}

	delta := p.Velocity.Mul(t)
	steps := 1
	for _, d := range delta {
		if n := int(abs32(d)/maxStep) + 1; n > steps {
			steps = n
		}
	}
	step := delta.Mul(1 / float32(steps))

	p.OnGround = false
	for range steps {
		for axis := range 3 {
			if step[axis] == 0 {
				continue
			}
			next := p.Position
			next[axis] += step[axis]
			if physics.Collides(next, HalfWidth, Height, voxelSize, isSolid) {
				if axis == 2 && step[axis] < 0 {
					p.OnGround = true
				}
				p.Velocity[axis] = 0
				step[axis] = 0
				continue
			}
			p.Position = next
		}
	}
}

// Overlaps reports whether the body intersects voxel (ix,iy,iz).
func (p *Player) Overlaps(ix, iy, iz int, voxelSize float32) bool {
	lo := mgl32.Vec3{float32(ix), float32(iy), float32(iz)}.Mul(voxelSize)
	hi := lo.Add(mgl32.Vec3{voxelSize, voxelSize, voxelSize})
	return p.Position.X()+HalfWidth > lo.X() && p.Position.X()-HalfWidth < hi.X() &&
		p.Position.Y()+HalfWidth > lo.Y() && p.Position.Y()-HalfWidth < hi.Y() &&
		p.Position.Z()+Height > lo.Z() && p.Position.Z() < hi.Z()
}

func abs32(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}
