// Package control turns user input into camera motion and pipeline commands.
//
//   - [Camera]: viewport center and size, moved and zoomed over time
//   - [Axis]: a pair of opposing keys where the most recent press wins
//   - [Keyboard]: key bindings mapping key names to axes and [Action]s
//
// Key names follow the terminal convention ("a", "ctrl+s", "tab", " ",
// "esc") so the windowed and terminal frontends share one binding table.
//
// # Usage
//
//	cam := control.NewCamera(cfg.Viewport(), 0.5, 1.0)
//	kb := control.NewKeyboard(control.DefaultBindings())
//	kb.KeyDown("d")
//	if kb.Apply(cam, dt) {
//		renderer.SetViewport(cam.Viewport())
//	}
package control
