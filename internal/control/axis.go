package control

// Axis tracks two opposing keys. While both are held the one pressed last
// wins.
type Axis struct {
	up, down bool
	latest   int
}

// Press marks the positive (dir > 0) or negative key as held.
func (a *Axis) Press(dir int) {
	switch {
	case dir > 0:
		a.up = true
		a.latest = 1
	case dir < 0:
		a.down = true
		a.latest = -1
	}
}

// Release marks a key as no longer held.
func (a *Axis) Release(dir int) {
	switch {
	case dir > 0:
		a.up = false
	case dir < 0:
		a.down = false
	}
}

// Set updates both keys from polled state, treating newly held keys as
// presses.
func (a *Axis) Set(up, down bool) {
	if up && !a.up {
		a.Press(1)
	} else if !up {
		a.Release(1)
	}
	if down && !a.down {
		a.Press(-1)
	} else if !down {
		a.Release(-1)
	}
}

// Value returns -1, 0 or +1.
func (a *Axis) Value() float64 {
	switch {
	case a.up && a.down:
		return float64(a.latest)
	case a.up:
		return 1
	case a.down:
		return -1
	}
	return 0
}

// Clear releases both keys.
func (a *Axis) Clear() {
	*a = Axis{}
}
