package export

import (
	"errors"
	"image"
	"image/gif"
	"os"
)

// Recorder collects frames for an animated GIF.
type Recorder struct {
	frames []*image.Paletted
	// Delay between frames in 100ths of a second.
	Delay int
	// Max caps the number of kept frames; older frames are dropped.
	Max int
}

func NewRecorder(delay, maxFrames int) *Recorder {
	return &Recorder{Delay: delay, Max: maxFrames}
}

// Add dithers img and appends it.
func (r *Recorder) Add(img image.Image) {
	r.frames = append(r.frames, Paletted(img))
	if r.Max > 0 && len(r.frames) > r.Max {
		r.frames = r.frames[len(r.frames)-r.Max:]
	}
}

func (r *Recorder) Len() int { return len(r.frames) }

// Save writes the recording to path and clears it.
func (r *Recorder) Save(path string) error {
	if len(r.frames) == 0 {
		return errors.New("export: no frames recorded")
	}
	anim := gif.GIF{LoopCount: 0}
	for _, frame := range r.frames {
		anim.Image = append(anim.Image, frame)
		anim.Delay = append(anim.Delay, r.Delay)
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := gif.EncodeAll(f, &anim); err != nil {
		f.Close()
		return err
	}
	r.frames = r.frames[:0]
	return f.Close()
}
