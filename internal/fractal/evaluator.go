package fractal

import "github.com/san-kum/mandel/internal/logx"

// CPU is the single-threaded evaluator. It owns two buffer slots and
// alternates their read and write roles on every step.
type CPU struct {
	pending Params
	applied Params
	slots   [2]*Grids
	front   int // slot holding the latest result
	ready   bool
}

// NewCPU returns an evaluator configured with DefaultParams. Grids are
// allocated by Initialize or lazily by the first Reset or Step.
func NewCPU() *CPU {
	return &CPU{pending: DefaultParams()}
}

func (e *CPU) Initialize() error {
	if err := e.pending.Viewport.Validate(); err != nil {
		return err
	}
	e.apply(true)
	e.ready = true
	return nil
}

func (e *CPU) SetResolutionPower(p uint) {
	e.pending.ResolutionPower = ClampResolutionPower(p)
}

func (e *CPU) Resolution() int {
	return e.pending.Resolution()
}

func (e *CPU) SetViewport(v Viewport) {
	e.pending.Viewport = v
}

func (e *CPU) Viewport() Viewport {
	return e.pending.Viewport
}

func (e *CPU) SetIterationsPerStep(k uint) {
	e.pending.IterationsPerStep = max(k, 1)
}

func (e *CPU) IterationsPerStep() uint {
	return e.pending.IterationsPerStep
}

// Pending returns the configuration the next step will use.
func (e *CPU) Pending() Params { return e.pending }

// Applied returns the configuration the current grids were computed with.
func (e *CPU) Applied() Params { return e.applied }

func (e *CPU) Reset() {
	e.apply(true)
	e.slots[0].Clear()
	e.slots[1].Clear()
	e.front = 0
	logx.Logger().Debug("evaluator reset", "resolution", e.applied.Resolution(), "viewport", e.applied.Viewport.String())
}

// apply copies the pending configuration into the applied one. Grids are
// (re)allocated when missing or when the resolution changed; fresh grids
// are already zeroed.
func (e *CPU) apply(force bool) {
	changes := e.pending.Diff(e.applied)
	if !force && !changes.Any() && e.slots[0] != nil {
		return
	}
	if changes.Resolution || e.slots[0] == nil {
		res := e.pending.Resolution()
		e.slots[0] = NewGrids(res)
		e.slots[1] = NewGrids(res)
		e.front = 0
		logx.Logger().Debug("evaluator resized", "resolution", res)
	}
	e.applied = e.pending
}

func (e *CPU) Execute() { e.Step() }

func (e *CPU) Step() {
	e.apply(false)

	in := e.slots[e.front]
	out := e.slots[e.front^1]
	res := in.Res
	k := e.applied.IterationsPerStep
	vp := e.applied.Viewport
	bl := vp.BottomLeft()
	step := vp.Size / float64(res)

	for j := 0; j < res; j++ {
		ci := imag(bl) + float64(j)*step
		row := j * res
		for i := 0; i < res; i++ {
			idx := row + i
			z, life := in.Value[idx], in.Lifetime[idx]
			cr := real(bl) + float64(i)*step
			zr, zi := real(z), imag(z)
			for n := uint(0); n < k; n++ {
				if zr*zr+zi*zi > EscapeRadius2 {
					break
				}
				zr, zi = zr*zr-zi*zi+cr, 2*zr*zi+ci
				life++
			}
			out.Value[idx] = complex(zr, zi)
			out.Lifetime[idx] = life
		}
	}

	e.front ^= 1
}

func (e *CPU) Output() *Grids {
	if e.slots[0] == nil {
		e.apply(false)
	}
	return e.slots[e.front]
}

// Ready reports whether Initialize succeeded.
func (e *CPU) Ready() bool { return e.ready }
