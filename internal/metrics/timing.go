// Package metrics observes how long rendering takes.
package metrics

import "time"

// Metric accumulates observed durations into one value.
type Metric interface {
	Name() string
	Observe(d time.Duration)
	Value() float64
	Reset()
}

// StepTime is the mean step duration in milliseconds since the last Reset.
type StepTime struct {
	name    string
	total   time.Duration
	samples int
}

func NewStepTime() *StepTime {
	return &StepTime{name: "step_ms"}
}

func (s *StepTime) Name() string { return s.name }

func (s *StepTime) Observe(d time.Duration) {
	s.total += d
	s.samples++
}

func (s *StepTime) Value() float64 {
	if s.samples == 0 {
		return 0
	}
	return float64(s.total.Microseconds()) / 1000 / float64(s.samples)
}

// Total is the summed duration since the last Reset.
func (s *StepTime) Total() time.Duration { return s.total }

func (s *StepTime) Reset() {
	s.total = 0
	s.samples = 0
}

// FrameRate is an exponentially smoothed frames-per-second estimate.
type FrameRate struct {
	name   string
	alpha  float64
	period float64
}

// NewFrameRate weights each new frame by alpha in (0, 1].
func NewFrameRate(alpha float64) *FrameRate {
	return &FrameRate{name: "fps", alpha: min(max(alpha, 0.01), 1)}
}

func (f *FrameRate) Name() string { return f.name }

func (f *FrameRate) Observe(d time.Duration) {
	if d <= 0 {
		return
	}
	sec := d.Seconds()
	if f.period == 0 {
		f.period = sec
		return
	}
	f.period += f.alpha * (sec - f.period)
}

func (f *FrameRate) Value() float64 {
	if f.period == 0 {
		return 0
	}
	return 1 / f.period
}

func (f *FrameRate) Reset() { f.period = 0 }
