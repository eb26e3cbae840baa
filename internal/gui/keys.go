package gui

import rl "github.com/gen2brain/raylib-go/raylib"

// keyCodes maps binding names to raylib keys.
var keyCodes = map[string]int32{
	"w":   rl.KeyW,
	"a":   rl.KeyA,
	"s":   rl.KeyS,
	"d":   rl.KeyD,
	"r":   rl.KeyR,
	"f":   rl.KeyF,
	"t":   rl.KeyT,
	"g":   rl.KeyG,
	"c":   rl.KeyC,
	"p":   rl.KeyP,
	"h":   rl.KeyH,
	"tab": rl.KeyTab,
	" ":   rl.KeySpace,
	";":   rl.KeySemicolon,
	"esc": rl.KeyEscape,
}

// pressedKeys returns the binding names of keys pressed this frame. S with
// a control key held is reported as "ctrl+s" rather than a move.
func pressedKeys() []string {
	ctrl := rl.IsKeyDown(rl.KeyLeftControl) || rl.IsKeyDown(rl.KeyRightControl)
	var keys []string
	for name, code := range keyCodes {
		if !rl.IsKeyPressed(code) {
			continue
		}
		if ctrl {
			name = "ctrl+" + name
		}
		keys = append(keys, name)
	}
	return keys
}

// held reports whether the key bound to name is down. Movement is ignored
// while a control key is held so Ctrl+S does not also move down.
func held(name string) bool {
	if rl.IsKeyDown(rl.KeyLeftControl) || rl.IsKeyDown(rl.KeyRightControl) {
		return false
	}
	code, ok := keyCodes[name]
	return ok && rl.IsKeyDown(code)
}
