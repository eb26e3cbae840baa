package control

import "math"

// Action is a discrete command triggered by a key press.
type Action int

const (
	ActionNone Action = iota
	ActionQuit
	ActionPrecisionUp
	ActionPrecisionDown
	ActionTogglePause
	ActionStep
	ActionSnapshot
	ActionDebug
	ActionCycleColoring
	ActionNextPalette
	ActionHome
)

var actionNames = map[Action]string{
	ActionNone:          "none",
	ActionQuit:          "quit",
	ActionPrecisionUp:   "precision+",
	ActionPrecisionDown: "precision-",
	ActionTogglePause:   "pause",
	ActionStep:          "step",
	ActionSnapshot:      "snapshot",
	ActionDebug:         "debug",
	ActionCycleColoring: "coloring",
	ActionNextPalette:   "palette",
	ActionHome:          "home",
}

func (a Action) String() string {
	if s, ok := actionNames[a]; ok {
		return s
	}
	return "unknown"
}

// AxisID names one of the keyboard's axes.
type AxisID int

const (
	AxisHorizontal AxisID = iota
	AxisVertical
	AxisZoom
	numAxes
)

// AxisKey binds a key to one direction of an axis.
type AxisKey struct {
	Axis AxisID
	Dir  int
}

// Bindings maps key names to axes and actions.
type Bindings struct {
	Axes    map[string]AxisKey
	Actions map[string]Action
}

// DefaultBindings returns the classic layout: WASD to move, R/F to zoom in
// and out, T/G for precision, Tab to pause, Space to step, Ctrl+S to save a
// snapshot and ; to print the viewport.
func DefaultBindings() Bindings {
	return Bindings{
		Axes: map[string]AxisKey{
			"d": {AxisHorizontal, 1},
			"a": {AxisHorizontal, -1},
			"w": {AxisVertical, 1},
			"s": {AxisVertical, -1},
			"f": {AxisZoom, 1},
			"r": {AxisZoom, -1},
		},
		Actions: map[string]Action{
			"esc":    ActionQuit,
			"ctrl+c": ActionQuit,
			"t":      ActionPrecisionUp,
			"g":      ActionPrecisionDown,
			"tab":    ActionTogglePause,
			" ":      ActionStep,
			"ctrl+s": ActionSnapshot,
			";":      ActionDebug,
			"c":      ActionCycleColoring,
			"p":      ActionNextPalette,
			"h":      ActionHome,
		},
	}
}

// Keyboard holds axis state for a set of bindings.
type Keyboard struct {
	bindings Bindings
	axes     [numAxes]Axis
}

func NewKeyboard(b Bindings) *Keyboard {
	return &Keyboard{bindings: b}
}

// KeyDown records a press and returns the bound action, if any.
func (k *Keyboard) KeyDown(key string) Action {
	if ak, ok := k.bindings.Axes[key]; ok {
		k.axes[ak.Axis].Press(ak.Dir)
		return ActionNone
	}
	return k.bindings.Actions[key]
}

// KeyUp records a release.
func (k *Keyboard) KeyUp(key string) {
	if ak, ok := k.bindings.Axes[key]; ok {
		k.axes[ak.Axis].Release(ak.Dir)
	}
}

// Poll sets every axis key from a held-state query, for frontends that poll
// the keyboard each frame.
func (k *Keyboard) Poll(held func(key string) bool) {
	var up, down [numAxes]bool
	for key, ak := range k.bindings.Axes {
		if !held(key) {
			continue
		}
		if ak.Dir > 0 {
			up[ak.Axis] = true
		} else {
			down[ak.Axis] = true
		}
	}
	for i := range k.axes {
		k.axes[i].Set(up[i], down[i])
	}
}

// Axis returns the current value of an axis.
func (k *Keyboard) Axis(id AxisID) float64 {
	return k.axes[id].Value()
}

// Release clears every held key.
func (k *Keyboard) Release() {
	for i := range k.axes {
		k.axes[i].Clear()
	}
}

// Apply moves and zooms cam for dt seconds of held keys and reports whether
// the camera changed.
func (k *Keyboard) Apply(cam *Camera, dt float64) bool {
	h, v, z := k.Axis(AxisHorizontal), k.Axis(AxisVertical), k.Axis(AxisZoom)
	if (h == 0 && v == 0 && z == 0) || dt <= 0 {
		return false
	}
	before := cam.Viewport()
	if h != 0 || v != 0 {
		// diagonal movement is as fast as straight movement
		cam.Move(complex(h, v)/complex(math.Hypot(h, v), 0), dt)
	}
	if z != 0 {
		cam.ZoomBy(z, dt)
	}
	return cam.Viewport() != before
}

// Pulse applies a single key press as dt seconds of motion, for terminals
// that report presses but not releases. It returns the bound action for
// non-axis keys and whether the camera changed.
func (k *Keyboard) Pulse(key string, cam *Camera, dt float64) (Action, bool) {
	ak, ok := k.bindings.Axes[key]
	if !ok {
		return k.bindings.Actions[key], false
	}
	before := cam.Viewport()
	d := float64(ak.Dir)
	switch ak.Axis {
	case AxisHorizontal:
		cam.Move(complex(d, 0), dt)
	case AxisVertical:
		cam.Move(complex(0, d), dt)
	case AxisZoom:
		cam.ZoomBy(d, dt)
	}
	return ActionNone, cam.Viewport() != before
}
