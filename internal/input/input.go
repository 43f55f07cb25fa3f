package input

import (
	"sync"

	"github.com/go-gl/glfw/v3.3/glfw"
)

// Action is a logical viewer command, not a physical key.
type Action int

const (
	ActionMoveForward Action = iota
	ActionMoveBackward
	ActionMoveLeft
	ActionMoveRight
	ActionAscend
	ActionDescend
	ActionSprint
	ActionDig
	ActionBuild
	ActionPause
	ActionToggleFly
	ActionToggleWireframe
	ActionToggleCollision
	ActionCycleMesher
	ActionMaterial1
	ActionMaterial2
	ActionMaterial3
	ActionMaterial4
	ActionMaterial5
	ActionMaterial6
	ActionCount // Sentinel value for array sizing
)

// MaterialSlots is the number of ActionMaterialN actions.
const MaterialSlots = int(ActionMaterial6-ActionMaterial1) + 1

// Manager maps keys and mouse buttons to actions and tracks per-frame
// edges. Event handlers may run from GLFW callbacks.
type Manager struct {
	mu sync.RWMutex

	keys    map[glfw.Key][]Action
	buttons map[glfw.MouseButton][]Action

	current      [ActionCount]bool
	justPressed  [ActionCount]bool
	justReleased [ActionCount]bool
	scroll       float64
}

// NewManager creates a Manager with the default bindings.
func NewManager() *Manager {
	m := &Manager{
		keys:    make(map[glfw.Key][]Action),
		buttons: make(map[glfw.MouseButton][]Action),
	}

	m.BindKey(glfw.KeyW, ActionMoveForward)
	m.BindKey(glfw.KeyS, ActionMoveBackward)
	m.BindKey(glfw.KeyA, ActionMoveLeft)
	m.BindKey(glfw.KeyD, ActionMoveRight)
	m.BindKey(glfw.KeyUp, ActionMoveForward)
	m.BindKey(glfw.KeyDown, ActionMoveBackward)
	m.BindKey(glfw.KeyLeft, ActionMoveLeft)
	m.BindKey(glfw.KeyRight, ActionMoveRight)
	m.BindKey(glfw.KeySpace, ActionAscend)
	m.BindKey(glfw.KeyLeftShift, ActionDescend)
	m.BindKey(glfw.KeyLeftControl, ActionSprint)
	m.BindKey(glfw.KeyEscape, ActionPause)
	m.BindKey(glfw.KeyG, ActionToggleFly)
	m.BindKey(glfw.KeyF, ActionToggleWireframe)
	m.BindKey(glfw.KeyC, ActionToggleCollision)
	m.BindKey(glfw.KeyM, ActionCycleMesher)
	for i := range MaterialSlots {
		m.BindKey(glfw.Key1+glfw.Key(i), ActionMaterial1+Action(i))
	}

	m.BindMouseButton(glfw.MouseButtonLeft, ActionDig)
	m.BindMouseButton(glfw.MouseButtonRight, ActionBuild)
	return m
}

// BindKey binds a physical key to an action. Several keys may share one.
func (m *Manager) BindKey(key glfw.Key, action Action) {
	if action < 0 || action >= ActionCount {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.keys[key] = append(m.keys[key], action)
}

// BindMouseButton binds a mouse button to an action.
func (m *Manager) BindMouseButton(button glfw.MouseButton, action Action) {
	if action < 0 || action >= ActionCount {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.buttons[button] = append(m.buttons[button], action)
}

// HandleKeyEvent records a key press, repeat or release.
func (m *Manager) HandleKeyEvent(key glfw.Key, action glfw.Action) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.apply(m.keys[key], action == glfw.Press || action == glfw.Repeat)
}

// HandleMouseButtonEvent records a button press or release.
func (m *Manager) HandleMouseButtonEvent(button glfw.MouseButton, action glfw.Action) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.apply(m.buttons[button], action == glfw.Press)
}

// HandleScroll accumulates vertical wheel movement until the next PostUpdate.
func (m *Manager) HandleScroll(yoff float64) {
	m.mu.Lock()
	m.scroll += yoff
	m.mu.Unlock()
}

func (m *Manager) apply(actions []Action, pressed bool) {
	for _, a := range actions {
		// Detect edges immediately when event arrives
		if pressed && !m.current[a] {
			m.justPressed[a] = true
		}
		if !pressed && m.current[a] {
			m.justReleased[a] = true
		}
		m.current[a] = pressed
	}
}

// Attach installs key, button and scroll callbacks on window.
func (m *Manager) Attach(window *glfw.Window) {
	window.SetKeyCallback(func(w *glfw.Window, key glfw.Key, scancode int, action glfw.Action, mods glfw.ModifierKey) {
		m.HandleKeyEvent(key, action)
	})
	window.SetMouseButtonCallback(func(w *glfw.Window, button glfw.MouseButton, action glfw.Action, mods glfw.ModifierKey) {
		m.HandleMouseButtonEvent(button, action)
	})
	window.SetScrollCallback(func(w *glfw.Window, xoff, yoff float64) {
		m.HandleScroll(yoff)
	})
}

// PostUpdate must be called at the end of each frame to clear edge flags.
func (m *Manager) PostUpdate() {
	m.mu.Lock()
	defer m.mu.Unlock()
	clear(m.justPressed[:])
	clear(m.justReleased[:])
	m.scroll = 0
}

// IsActive reports whether the action is held down.
func (m *Manager) IsActive(action Action) bool {
	if action < 0 || action >= ActionCount {
		return false
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current[action]
}

// JustPressed reports whether the action was pressed this frame.
func (m *Manager) JustPressed(action Action) bool {
	if action < 0 || action >= ActionCount {
		return false
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.justPressed[action]
}

// JustReleased reports whether the action was released this frame.
func (m *Manager) JustReleased(action Action) bool {
	if action < 0 || action >= ActionCount {
		return false
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.justReleased[action]
}

// Scroll returns the wheel movement accumulated this frame.
func (m *Manager) Scroll() float64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.scroll
}

// Axis returns -1, 0 or 1 from a pair of opposing actions.
func (m *Manager) Axis(negative, positive Action) float32 {
	var v float32
	if m.IsActive(positive) {
		v++
	}
	if m.IsActive(negative) {
		v--
	}
	return v
}
