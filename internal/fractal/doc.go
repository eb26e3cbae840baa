// Package fractal provides the escape-time evaluator at the heart of the
// renderer.
//
// The package defines the values shared by every stage of the pipeline and
// the stepped CPU evaluator:
//
//   - [Viewport]: the square region of the complex plane being rendered
//   - [Grids]: value and lifetime grids at a power-of-two resolution
//   - [Params]: evaluator configuration, kept as pending and applied copies
//   - [Stage]: the capability every pipeline stage implements
//   - [CPU]: the resumable, double-buffered evaluator
//
// # Example
//
//	ev := fractal.NewCPU()
//	ev.SetResolutionPower(6)
//	ev.SetViewport(fractal.Viewport{Position: complex(-0.5, 0), Size: 3})
//	ev.SetIterationsPerStep(8)
//	if err := ev.Initialize(); err != nil {
//		return err
//	}
//	for i := 0; i < 50; i++ {
//		ev.Step()
//	}
//	out := ev.Output()
//
// # Escape semantics
//
// A cell freezes the moment its squared magnitude exceeds [EscapeRadius2].
// From then on neither its value nor its lifetime changes until the next
// Reset, so lifetime is the exact number of iterations the cell survived.
//
// # Thread Safety
//
// Evaluators are NOT thread-safe. They are driven from a single frame loop.
package fractal
