// Package compute provides the evaluator backends.
//
//   - CPU: the single-threaded [fractal.CPU] evaluator
//   - GL: an OpenGL 4.3 compute shader running the same iteration on the GPU
//
// Both satisfy [fractal.Evaluator], so the renderer does not care which one
// it drives:
//
//	backend, err := compute.New("gl")
//	if err != nil {
//	    backend, _ = compute.New("cpu")
//	}
//	r := render.New(render.Options{Evaluator: backend})
//
// The GL backend needs a current OpenGL 4.3 context on the calling thread,
// so it is only usable from the windowed frontend. Its Initialize reports a
// missing context or an old driver as an error and the caller falls back to
// the CPU backend.
package compute
