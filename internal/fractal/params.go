package fractal

// Params is the full evaluator configuration. Evaluators keep two copies:
// the pending one written by setters and the applied one the grids were
// last computed with.
type Params struct {
	ResolutionPower   uint
	Viewport          Viewport
	IterationsPerStep uint
}

// DefaultParams returns a 512×512 view of the whole set, one iteration per step.
func DefaultParams() Params {
	return Params{
		ResolutionPower:   9,
		Viewport:          Viewport{Position: complex(-0.5, 0), Size: 3},
		IterationsPerStep: 1,
	}
}

// Resolution returns the grid side length.
func (p Params) Resolution() int {
	return 1 << p.ResolutionPower
}

// Changes lists which parts of a configuration differ from another one.
type Changes struct {
	Resolution bool
	Viewport   bool
	Iterations bool
}

// Any reports whether anything changed.
func (c Changes) Any() bool {
	return c.Resolution || c.Viewport || c.Iterations
}

// Diff compares p (pending) against applied.
func (p Params) Diff(applied Params) Changes {
	return Changes{
		Resolution: p.ResolutionPower != applied.ResolutionPower,
		Viewport:   p.Viewport != applied.Viewport,
		Iterations: p.IterationsPerStep != applied.IterationsPerStep,
	}
}
