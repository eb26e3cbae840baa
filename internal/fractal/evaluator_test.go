package fractal

import "testing"

func newTestCPU(t *testing.T, power uint, v Viewport, k uint) *CPU {
	t.Helper()
	e := NewCPU()
	e.SetResolutionPower(power)
	e.SetViewport(v)
	e.SetIterationsPerStep(k)
	if err := e.Initialize(); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	return e
}

func TestInitializeRejectsBadViewport(t *testing.T) {
	e := NewCPU()
	e.SetViewport(Viewport{Size: 0})
	if err := e.Initialize(); err == nil {
		t.Error("expected error for zero-size viewport")
	}
}

func TestSettersClamp(t *testing.T) {
	e := NewCPU()
	e.SetIterationsPerStep(0)
	if e.IterationsPerStep() != 1 {
		t.Errorf("iterations per step: got %d, want 1", e.IterationsPerStep())
	}
	e.SetResolutionPower(0)
	if e.Resolution() != 2 {
		t.Errorf("resolution: got %d, want 2", e.Resolution())
	}
}

func TestSettersAreLazy(t *testing.T) {
	e := newTestCPU(t, 2, Viewport{Size: 4}, 1)
	e.SetViewport(Viewport{Position: 1, Size: 2})
	e.SetResolutionPower(3)

	if e.Applied().Viewport.Size != 4 || e.Applied().ResolutionPower != 2 {
		t.Fatalf("setters should not apply immediately: %+v", e.Applied())
	}
	if e.Output().Res != 4 {
		t.Errorf("grids resized before step: res %d", e.Output().Res)
	}

	e.Step()
	if e.Applied() != e.Pending() {
		t.Errorf("step should apply pending config: applied %+v pending %+v", e.Applied(), e.Pending())
	}
	if e.Output().Res != 8 {
		t.Errorf("res after step: got %d, want 8", e.Output().Res)
	}
}

func TestEscapeFreezing(t *testing.T) {
	// 2×2 grid over [-6,2]²: cell (0,0) has c = -6-6i, far outside |c| = 2.
	e := newTestCPU(t, 1, Viewport{Position: complex(-2, -2), Size: 8}, 3)

	e.Step()
	z1, l1 := e.Output().At(0, 0)
	if l1 != 1 {
		t.Fatalf("cell should freeze after one iteration, lifetime %d", l1)
	}

	for i := 0; i < 10; i++ {
		e.Step()
	}
	z2, l2 := e.Output().At(0, 0)
	if l2 != l1 || z2 != z1 {
		t.Errorf("frozen cell changed: (%v,%d) -> (%v,%d)", z1, l1, z2, l2)
	}
}

func TestFreezeMidBatchRecordsExactIteration(t *testing.T) {
	// 2×2 grid over [0,2]²: cell (1,0) maps to c = 1, whose orbit is
	// 0, 1, 2, 5 and exceeds the escape radius on the third iteration.
	e := newTestCPU(t, 1, Viewport{Position: complex(1, 1), Size: 2}, 10)
	e.Step()

	z, life := e.Output().At(1, 0)
	if life != 3 {
		t.Errorf("c=1 lifetime: got %d, want 3", life)
	}
	if z != complex(5, 0) {
		t.Errorf("c=1 frozen value: got %v, want 5", z)
	}

	// cell (0,0) maps to c = 0 and runs the whole batch.
	if _, life := e.Output().At(0, 0); life != 10 {
		t.Errorf("c=0 lifetime: got %d, want 10", life)
	}
}

func TestInteriorNeverEscapes(t *testing.T) {
	// 2×2 grid over [-1,1]²: cell (1,1) maps to c = 0.
	e := newTestCPU(t, 1, Viewport{Size: 2}, 7)
	for i := 0; i < 5; i++ {
		e.Step()
	}
	z, life := e.Output().At(1, 1)
	if life != 35 {
		t.Errorf("lifetime: got %d, want 35", life)
	}
	if z != 0 {
		t.Errorf("value: got %v, want 0", z)
	}
}

func TestResetIdempotence(t *testing.T) {
	e := newTestCPU(t, 3, Viewport{Position: complex(-0.5, 0), Size: 3}, 4)
	for i := 0; i < 6; i++ {
		e.Step()
	}

	e.Reset()
	e.Reset()

	for _, g := range e.slots {
		for k := range g.Value {
			if g.Value[k] != 0 || g.Lifetime[k] != 0 {
				t.Fatalf("cell %d not cleared: (%v, %d)", k, g.Value[k], g.Lifetime[k])
			}
		}
	}
}

func TestStepSwapsSlots(t *testing.T) {
	e := newTestCPU(t, 2, Viewport{Size: 3}, 1)
	before := e.Output()
	e.Step()
	after := e.Output()
	if before == after {
		t.Error("step should swap in/out slots")
	}
	e.Step()
	if e.Output() != before {
		t.Error("second step should swap back")
	}
}

func TestStepsAccumulate(t *testing.T) {
	v := Viewport{Position: complex(-0.5, 0), Size: 3}
	a := newTestCPU(t, 4, v, 1)
	b := newTestCPU(t, 4, v, 6)

	for i := 0; i < 6; i++ {
		a.Step()
	}
	b.Step()

	ga, gb := a.Output(), b.Output()
	for k := range ga.Lifetime {
		if ga.Lifetime[k] != gb.Lifetime[k] || ga.Value[k] != gb.Value[k] {
			t.Fatalf("cell %d: six single steps differ from one six-iteration step", k)
		}
	}
}
