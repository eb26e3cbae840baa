package render_test

import (
	"errors"
	"image/color"
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/mandel/internal/colorize"
	"github.com/san-kum/mandel/internal/fractal"
	"github.com/san-kum/mandel/internal/palette"
	"github.com/san-kum/mandel/internal/render"
)

// failingStage is an evaluator whose initialization always fails.
type failingStage struct {
	*fractal.CPU
}

func (failingStage) Initialize() error { return fractal.ErrGridTooLarge }

func newRenderer(res int, steps uint) *render.Renderer {
	ev := fractal.NewCPU()
	ev.SetResolutionPower(fractal.ResolutionPowerFor(res))
	ev.SetViewport(fractal.Viewport{Position: complex(-0.5, 0), Size: 3})
	ev.SetIterationsPerStep(1)

	r := render.New(render.Options{
		Evaluator:     ev,
		DisplayWidth:  res,
		DisplayHeight: res,
		MaxStepCount:  steps,
	})
	Expect(r.Initialize()).To(Succeed())
	return r
}

func runToCompletion(r *render.Renderer) {
	for !r.IsDone() {
		r.RenderStep()
	}
}

var _ = Describe("Renderer", func() {
	Describe("Initialize", func() {
		It("prefixes the failing stage", func() {
			r := render.New(render.Options{Evaluator: failingStage{fractal.NewCPU()}})
			err := r.Initialize()

			var serr *fractal.StageError
			Expect(errors.As(err, &serr)).To(BeTrue())
			Expect(serr.Stage).To(Equal(render.StageComputation))
			Expect(err).To(MatchError(fractal.ErrGridTooLarge))
			Expect(r.Status()).To(HavePrefix("Computation stage:\n"))
			Expect(r.Ready()).To(BeFalse())
		})

		It("reports an invalid viewport from the computation stage", func() {
			ev := fractal.NewCPU()
			ev.SetViewport(fractal.Viewport{Size: -1})
			r := render.New(render.Options{Evaluator: ev})

			Expect(r.Initialize()).To(MatchError(fractal.ErrInvalidViewport))
		})
	})

	Describe("state machine", func() {
		var r *render.Renderer

		BeforeEach(func() {
			r = newRenderer(16, 5)
		})

		It("starts computing", func() {
			Expect(r.State()).To(Equal(render.Computing))
			Expect(r.Steps().Done).To(BeZero())
		})

		It("completes after max step count steps", func() {
			for i := 0; i < 4; i++ {
				r.RenderStep()
				Expect(r.State()).To(Equal(render.Computing))
			}
			r.RenderStep()
			Expect(r.State()).To(Equal(render.Complete))
			Expect(r.Steps().Done).To(BeEquivalentTo(5))
		})

		It("ignores steps once complete", func() {
			runToCompletion(r)
			before := append([]uint32(nil), r.Output().Lifetime...)
			r.RenderStep()
			Expect(r.Steps().Done).To(BeEquivalentTo(5))
			Expect(r.Output().Lifetime).To(Equal(before))
		})

		It("refuses to flush while computing", func() {
			r.RenderStep()
			Expect(r.Flush()).To(MatchError(fractal.ErrNotComplete))
			Expect(r.Image()).To(BeNil())
		})

		It("flushes idempotently", func() {
			runToCompletion(r)
			Expect(r.Flush()).To(Succeed())
			first := append([]byte(nil), r.Image().Pix...)
			Expect(r.Flush()).To(Succeed())
			Expect(r.Image().Pix).To(Equal(first))
			Expect(r.Flushed()).To(BeTrue())
		})

		It("returns to computing on reset from either state", func() {
			r.RenderStep()
			r.Reset()
			Expect(r.Steps().Done).To(BeZero())

			runToCompletion(r)
			Expect(r.Flush()).To(Succeed())
			r.Reset()
			r.Reset()
			Expect(r.State()).To(Equal(render.Computing))
			Expect(r.Steps().Done).To(BeZero())
			Expect(r.Flushed()).To(BeFalse())
			for k := range r.Output().Lifetime {
				Expect(r.Output().Lifetime[k]).To(BeZero())
				Expect(r.Output().Value[k]).To(BeZero())
			}
		})

		DescribeTable("invalidates on viewport change",
			func(change func(*render.Renderer)) {
				runToCompletion(r)
				Expect(r.Flush()).To(Succeed())

				change(r)
				Expect(r.State()).To(Equal(render.Computing))
				Expect(r.Steps().Done).To(BeZero())
				Expect(r.Flush()).To(MatchError(fractal.ErrNotComplete))
			},
			Entry("position", func(r *render.Renderer) { r.SetViewportPosition(complex(0.25, 0)) }),
			Entry("size", func(r *render.Renderer) { r.SetViewportSize(1.5) }),
			Entry("both", func(r *render.Renderer) {
				r.SetViewport(fractal.Viewport{Position: complex(-1, 0.3), Size: 0.5})
			}),
		)

		DescribeTable("rejects viewports that cannot be rendered",
			func(change func(*render.Renderer)) {
				runToCompletion(r)
				Expect(r.Flush()).To(Succeed())
				before := r.Viewport()

				change(r)
				Expect(r.Viewport()).To(Equal(before))
				Expect(r.Viewport().Validate()).To(Succeed())
				Expect(r.State()).To(Equal(render.Complete))
				Expect(r.Flush()).To(Succeed())
				Expect(r.DisplayViewport().Size).To(BeNumerically(">", 0))
			},
			Entry("zero size", func(r *render.Renderer) { r.SetViewportSize(0) }),
			Entry("negative size", func(r *render.Renderer) { r.SetViewportSize(-3) }),
			Entry("NaN size", func(r *render.Renderer) { r.SetViewportSize(math.NaN()) }),
			Entry("infinite size", func(r *render.Renderer) { r.SetViewportSize(math.Inf(1)) }),
			Entry("NaN center", func(r *render.Renderer) {
				r.SetViewportPosition(complex(math.NaN(), 0))
			}),
			Entry("infinite center", func(r *render.Renderer) {
				r.SetViewport(fractal.Viewport{Position: complex(0, math.Inf(-1)), Size: 1})
			}),
		)

		It("follows the camera after a rejected viewport", func() {
			runToCompletion(r)
			Expect(r.Flush()).To(Succeed())
			r.SetViewportSize(-3)

			r.SetViewportSize(1.5)
			runToCompletion(r)
			Expect(r.Flush()).To(Succeed())
			Expect(r.DisplayViewport().Size).To(Equal(1.5))
		})

		It("invalidates mid-computation", func() {
			r.RenderStep()
			r.RenderStep()
			r.SetViewportSize(2)
			Expect(r.Steps().Done).To(BeZero())
		})

		It("keeps state when the viewport is set to itself", func() {
			r.RenderStep()
			r.SetViewport(r.Viewport())
			Expect(r.Steps().Done).To(BeEquivalentTo(1))
		})

		It("keeps the display baseline until the next flush", func() {
			runToCompletion(r)
			Expect(r.Flush()).To(Succeed())
			baseline := r.DisplayViewport()

			r.SetViewportSize(1)
			Expect(r.DisplayViewport()).To(Equal(baseline))
			r.Render()
			Expect(r.DisplayViewport()).To(Equal(baseline))
		})
	})

	Describe("settings", func() {
		It("rounds resolution up to a power of two", func() {
			r := newRenderer(8, 1)
			for n, want := range map[int]int{500: 512, 512: 512, 513: 1024, 1: 2} {
				r.SetResolution(n)
				Expect(r.Resolution()).To(Equal(want), "n=%d", n)
			}
		})

		It("resets on resolution change", func() {
			r := newRenderer(8, 3)
			runToCompletion(r)
			r.SetResolution(32)
			Expect(r.State()).To(Equal(render.Computing))
			r.RenderStep()
			Expect(r.Output().Res).To(Equal(32))
		})

		It("derives the max lifetime from steps and iterations", func() {
			r := newRenderer(8, 10)
			r.SetIterationsPerStep(8)
			Expect(r.MaxLifetime()).To(BeEquivalentTo(80))
			r.SetMaxStepCount(0)
			Expect(r.MaxStepCount()).To(BeEquivalentTo(1))
			Expect(r.MaxLifetime()).To(BeEquivalentTo(8))
		})

		It("saturates the max lifetime instead of wrapping", func() {
			r := newRenderer(8, 1)
			r.SetIterationsPerStep(1 << 16)
			r.SetMaxStepCount(1 << 16)
			Expect(r.MaxLifetime()).To(BeEquivalentTo(uint32(math.MaxUint32)))
		})

		It("resumes when the step target is raised", func() {
			r := newRenderer(8, 2)
			runToCompletion(r)
			r.SetMaxStepCount(3)
			Expect(r.State()).To(Equal(render.Computing))
			r.RenderStep()
			Expect(r.State()).To(Equal(render.Complete))
		})

		It("keeps the previous table when given an empty one", func() {
			r := newRenderer(8, 1)
			custom := palette.Table{{255, 0, 0, 255}, {0, 255, 0, 255}}
			r.SetColorTable(custom)
			r.SetColorTable(palette.Table{})
			Expect(r.ColorTable()).To(Equal(custom))
		})
	})

	Describe("end to end", func() {
		It("renders the main cardioid as interior", func() {
			r := newRenderer(64, 50)
			Expect(r.Resolution()).To(Equal(64))

			for i := 0; i < 50; i++ {
				Expect(r.State()).To(Equal(render.Computing))
				r.RenderStep()
			}
			Expect(r.State()).To(Equal(render.Complete))
			Expect(r.Flush()).To(Succeed())

			// cell (32, 32) maps to c = -0.5 exactly.
			g := r.Output()
			c := r.Viewport().Point(32, 32, g.Res)
			Expect(c).To(Equal(complex(-0.5, 0)))
			_, life := g.At(32, 32)
			Expect(life).To(BeEquivalentTo(50))

			// image row 0 is the top edge, so grid row 32 is image row 31.
			interior := palette.Default().Interior()
			Expect(r.Image().RGBAAt(32, 31)).To(Equal(interior))

			// the reprojected frame at the same viewport is the cached image.
			frame := r.Render()
			Expect(frame.Pix).To(Equal(r.Image().Pix))

			// the far corner escapes on the first iteration.
			_, corner := g.At(0, 0)
			Expect(corner).To(BeEquivalentTo(1))
			Expect(r.Image().RGBAAt(0, 63)).NotTo(Equal(interior))
		})

		It("colors smoothly when asked", func() {
			r := newRenderer(32, 20)
			r.SetColoring(colorize.Smooth)
			runToCompletion(r)
			Expect(r.Flush()).To(Succeed())
			Expect(r.Image().RGBAAt(16, 15)).To(Equal(color.RGBA{0, 0, 0, 255}))
		})

		It("resamples bilinearly when smooth panning", func() {
			r := newRenderer(16, 8)
			runToCompletion(r)
			Expect(r.Flush()).To(Succeed())
			Expect(r.SmoothPan()).To(BeFalse())

			// a third of a cell off the cached grid
			r.SetViewportPosition(r.Viewport().Position + complex(3.0/16/3, 3.0/16/3))
			nearest := append([]byte(nil), r.Render().Pix...)

			r.SetSmoothPan(true)
			Expect(r.SmoothPan()).To(BeTrue())
			smooth := append([]byte(nil), r.Render().Pix...)
			Expect(smooth).NotTo(Equal(nearest))

			r.SetSmoothPan(false)
			Expect(r.Render().Pix).To(Equal(nearest))
		})

		It("returns tightly packed RGB pixels", func() {
			r := newRenderer(8, 1)
			r.SetDisplaySize(5, 3)
			buf := r.Pixels(nil)
			Expect(buf).To(HaveLen(5 * 3 * 3))
		})
	})
})
