package fractal

// Stage is a processing step of the render pipeline. Initialize acquires the
// stage's resources and reports why it could not. Execute runs one pass with
// whatever configuration was set since the previous pass.
type Stage interface {
	Initialize() error
	Execute()
}

// Evaluator is the contract shared by the CPU and GPU evaluators. Setters are
// lazy: they only change the pending configuration, which is applied right
// before the next Reset or Step.
type Evaluator interface {
	Stage

	SetResolutionPower(p uint)
	Resolution() int
	SetViewport(v Viewport)
	Viewport() Viewport
	SetIterationsPerStep(k uint)
	IterationsPerStep() uint

	// Reset clears both buffer slots and applies pending configuration.
	Reset()
	// Step advances every cell by IterationsPerStep iterations and swaps
	// the in/out roles.
	Step()
	// Output returns the grids written by the most recent step. The grids
	// stay owned by the evaluator and are only valid until the next Step
	// or Reset.
	Output() *Grids
}
