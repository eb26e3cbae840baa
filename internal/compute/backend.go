package compute

import (
	"fmt"

	"github.com/san-kum/mandel/internal/fractal"
)

// Backend is an evaluator that may hold external resources.
type Backend interface {
	fractal.Evaluator
	Name() string
	Cleanup()
}

// Names lists the selectable backends.
var Names = []string{"cpu", "gl"}

// New returns the named backend, not yet initialized.
func New(name string) (Backend, error) {
	switch name {
	case "", "cpu":
		return NewCPUBackend(), nil
	case "gl":
		return NewOpenGLBackend(), nil
	}
	return nil, fmt.Errorf("compute: unknown backend %q", name)
}

// CPUBackend adapts fractal.CPU to Backend.
type CPUBackend struct {
	*fractal.CPU
}

func NewCPUBackend() *CPUBackend {
	return &CPUBackend{CPU: fractal.NewCPU()}
}

func (b *CPUBackend) Name() string { return "cpu" }

func (b *CPUBackend) Cleanup() {}
