package compute

import (
	"fmt"
	"strings"

	"github.com/go-gl/gl/v4.3-core/gl"

	"github.com/san-kum/mandel/internal/fractal"
	"github.com/san-kum/mandel/internal/logx"
)

const (
	valueBytes = 16 // dvec2
	lifeBytes  = 4  // uint
)

// slot is one pair of value/lifetime storage buffers.
type slot struct {
	Value, Life uint32
}

// OpenGLBackend runs the evaluator as a compute shader. It mirrors the CPU
// evaluator: setters fill the pending configuration and the next Reset or
// Step applies it.
type OpenGLBackend struct {
	Program     uint32
	In, Out     slot
	Initialized bool

	pending  fractal.Params
	applied  fractal.Params
	maxBlock int64

	locBottomLeft, locSize, locRes, locDt int32

	host  *fractal.Grids
	stale bool
}

func NewOpenGLBackend() *OpenGLBackend {
	return &OpenGLBackend{pending: fractal.DefaultParams()}
}

func (c *OpenGLBackend) Name() string { return "gl" }

func (c *OpenGLBackend) Initialize() error {
	if err := c.pending.Viewport.Validate(); err != nil {
		return err
	}
	if err := gl.Init(); err != nil {
		return fmt.Errorf("failed to init opengl: %v", err)
	}
	var major, minor int32
	gl.GetIntegerv(gl.MAJOR_VERSION, &major)
	gl.GetIntegerv(gl.MINOR_VERSION, &minor)
	if major < 4 || (major == 4 && minor < 3) {
		return fmt.Errorf("compute shaders need OpenGL 4.3, have %d.%d", major, minor)
	}
	var maxBlock int32
	gl.GetIntegerv(gl.MAX_SHADER_STORAGE_BLOCK_SIZE, &maxBlock)
	c.maxBlock = int64(maxBlock)

	program, err := createComputeProgram(computeShaderSource)
	if err != nil {
		return err
	}
	c.Program = program
	c.locBottomLeft = gl.GetUniformLocation(program, gl.Str("viewport_bottom_left\x00"))
	c.locSize = gl.GetUniformLocation(program, gl.Str("viewport_size\x00"))
	c.locRes = gl.GetUniformLocation(program, gl.Str("resolution\x00"))
	c.locDt = gl.GetUniformLocation(program, gl.Str("dt\x00"))
	for name, loc := range map[string]int32{
		"viewport_bottom_left": c.locBottomLeft,
		"viewport_size":        c.locSize,
		"resolution":           c.locRes,
		"dt":                   c.locDt,
	} {
		if loc < 0 {
			return fmt.Errorf("uniform %s not found in compute shader", name)
		}
	}

	for _, s := range []*slot{&c.In, &c.Out} {
		gl.GenBuffers(1, &s.Value)
		gl.GenBuffers(1, &s.Life)
	}
	if err := c.allocate(c.pending.Resolution()); err != nil {
		return err
	}
	c.applied = c.pending
	c.uploadUniforms()
	c.Initialized = true

	logx.Logger().Info("opengl compute initialized", "version", fmt.Sprintf("%d.%d", major, minor),
		"max_block", c.maxBlock)
	return nil
}

// allocate sizes all four buffers for res×res cells and zeroes them.
func (c *OpenGLBackend) allocate(res int) error {
	cells := int64(res) * int64(res)
	if c.maxBlock > 0 && cells*valueBytes > c.maxBlock {
		return fmt.Errorf("%w: %d cells exceed the %d byte storage block limit", fractal.ErrGridTooLarge, cells, c.maxBlock)
	}
	for _, s := range []slot{c.In, c.Out} {
		gl.BindBuffer(gl.SHADER_STORAGE_BUFFER, s.Value)
		gl.BufferData(gl.SHADER_STORAGE_BUFFER, int(cells*valueBytes), nil, gl.DYNAMIC_COPY)
		gl.BindBuffer(gl.SHADER_STORAGE_BUFFER, s.Life)
		gl.BufferData(gl.SHADER_STORAGE_BUFFER, int(cells*lifeBytes), nil, gl.DYNAMIC_COPY)
	}
	c.host = fractal.NewGrids(res)
	c.clear()
	return nil
}

func (c *OpenGLBackend) clear() {
	for _, buf := range []uint32{c.In.Value, c.In.Life, c.Out.Value, c.Out.Life} {
		gl.BindBuffer(gl.SHADER_STORAGE_BUFFER, buf)
		gl.ClearBufferData(gl.SHADER_STORAGE_BUFFER, gl.R32UI, gl.RED_INTEGER, gl.UNSIGNED_INT, nil)
	}
	c.host.Clear()
	c.stale = false
}

func (c *OpenGLBackend) uploadUniforms() {
	gl.UseProgram(c.Program)
	bl := c.applied.Viewport.BottomLeft()
	gl.Uniform2d(c.locBottomLeft, real(bl), imag(bl))
	gl.Uniform1d(c.locSize, c.applied.Viewport.Size)
	gl.Uniform1ui(c.locRes, uint32(c.applied.Resolution()))
	gl.Uniform1ui(c.locDt, uint32(c.applied.IterationsPerStep))
}

// apply pushes pending changes to the GPU. Only the uniforms and buffers
// that changed are touched.
func (c *OpenGLBackend) apply() {
	changes := c.pending.Diff(c.applied)
	if !changes.Any() {
		return
	}
	if changes.Resolution {
		if err := c.allocate(c.pending.Resolution()); err != nil {
			logx.Logger().Error("gl resize failed, keeping resolution", "err", err)
			c.pending.ResolutionPower = c.applied.ResolutionPower
		}
	}
	c.applied = c.pending
	c.uploadUniforms()
}

func (c *OpenGLBackend) SetResolutionPower(p uint) {
	c.pending.ResolutionPower = fractal.ClampResolutionPower(p)
}

func (c *OpenGLBackend) Resolution() int { return c.pending.Resolution() }

func (c *OpenGLBackend) SetViewport(v fractal.Viewport) { c.pending.Viewport = v }

func (c *OpenGLBackend) Viewport() fractal.Viewport { return c.pending.Viewport }

func (c *OpenGLBackend) SetIterationsPerStep(k uint) { c.pending.IterationsPerStep = max(k, 1) }

func (c *OpenGLBackend) IterationsPerStep() uint { return c.pending.IterationsPerStep }

func (c *OpenGLBackend) Reset() {
	if !c.Initialized {
		return
	}
	c.apply()
	c.clear()
}

func (c *OpenGLBackend) Execute() { c.Step() }

func (c *OpenGLBackend) Step() {
	if !c.Initialized {
		return
	}
	c.apply()

	gl.UseProgram(c.Program)
	gl.BindBufferBase(gl.SHADER_STORAGE_BUFFER, 0, c.In.Value)
	gl.BindBufferBase(gl.SHADER_STORAGE_BUFFER, 1, c.In.Life)
	gl.BindBufferBase(gl.SHADER_STORAGE_BUFFER, 2, c.Out.Value)
	gl.BindBufferBase(gl.SHADER_STORAGE_BUFFER, 3, c.Out.Life)

	groups := uint32((c.applied.Resolution() + workGroupSize - 1) / workGroupSize)
	gl.DispatchCompute(groups, groups, 1)
	gl.MemoryBarrier(gl.SHADER_STORAGE_BARRIER_BIT | gl.BUFFER_UPDATE_BARRIER_BIT)

	c.In, c.Out = c.Out, c.In
	c.stale = true
}

// Output reads the latest buffers back into host memory. The copy is reused
// until the next step.
func (c *OpenGLBackend) Output() *fractal.Grids {
	if c.host == nil || (!c.Initialized && c.host.Res != c.pending.Resolution()) {
		c.host = fractal.NewGrids(c.pending.Resolution())
	}
	if !c.stale {
		return c.host
	}
	n := len(c.host.Value)
	gl.BindBuffer(gl.SHADER_STORAGE_BUFFER, c.In.Value)
	gl.GetBufferSubData(gl.SHADER_STORAGE_BUFFER, 0, n*valueBytes, gl.Ptr(c.host.Value))
	gl.BindBuffer(gl.SHADER_STORAGE_BUFFER, c.In.Life)
	gl.GetBufferSubData(gl.SHADER_STORAGE_BUFFER, 0, n*lifeBytes, gl.Ptr(c.host.Lifetime))
	c.stale = false
	return c.host
}

func (c *OpenGLBackend) Cleanup() {
	if !c.Initialized {
		return
	}
	bufs := []uint32{c.In.Value, c.In.Life, c.Out.Value, c.Out.Life}
	gl.DeleteBuffers(int32(len(bufs)), &bufs[0])
	gl.DeleteProgram(c.Program)
	c.Initialized = false
}

func createComputeProgram(source string) (uint32, error) {
	shader := gl.CreateShader(gl.COMPUTE_SHADER)
	csources, free := gl.Strs(source)
	gl.ShaderSource(shader, 1, csources, nil)
	free()
	gl.CompileShader(shader)

	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &logLength)
		log := strings.Repeat("\x00", int(logLength+1))
		gl.GetShaderInfoLog(shader, logLength, nil, gl.Str(log))
		gl.DeleteShader(shader)
		return 0, fmt.Errorf("failed to compile compute shader: %v", log)
	}

	program := gl.CreateProgram()
	gl.AttachShader(program, shader)
	gl.LinkProgram(program)
	gl.DeleteShader(shader)

	gl.GetProgramiv(program, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetProgramiv(program, gl.INFO_LOG_LENGTH, &logLength)
		log := strings.Repeat("\x00", int(logLength+1))
		gl.GetProgramInfoLog(program, logLength, nil, gl.Str(log))
		gl.DeleteProgram(program)
		return 0, fmt.Errorf("failed to link compute program: %v", log)
	}
	return program, nil
}
