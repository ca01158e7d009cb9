package fixed

import "testing"

func shapeRangeTest(t *testing.T, shape int) {
	var lo, hi Q16 = 65535, 0
	// 64-bit loop variable so the stride cannot wrap short of the bound.
	for p := uint64(0); p < 1<<32; p += 0x00100000 {
		v := ShapeQ16(uint32(p), shape)
		if v > 65535 {
			t.Fatalf("shape %d out of range at phase 0x%x: %d\n", shape, p, v)
		}
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	if lo > 2048 || hi < 63487 {
		t.Fatalf("shape %d barely swings: lo=%d hi=%d\n", shape, lo, hi)
	}
}

func TestShapeQ16Ranges(t *testing.T) {
	shapeRangeTest(t, ShapeTriangle)
	shapeRangeTest(t, ShapeTriangleSmooth)
	shapeRangeTest(t, ShapeSine)
}

func TestShapeTriangleFolds(t *testing.T) {
	// A phase and its mirror around the fold point give the same value.
	a := ShapeQ16(0x20000000, ShapeTriangle)
	b := ShapeQ16(0x60000000, ShapeTriangle)
	if a != b {
		t.Fatalf("triangle fold asymmetric: %d vs %d\n", a, b)
	}
}

func TestLFORateAndWrap(t *testing.T) {
	var o LFO
	o.SetRate(1.0, 48000)
	// One second of stepping must come back to (near) the start phase.
	start := o.Phase
	for i := 0; i < 48000; i++ {
		o.Step(ShapeTriangle)
	}
	diff := int64(o.Phase) - int64(start)
	if diff < 0 {
		diff = -diff
	}
	// Allow the rounding slack of the increment computation.
	if diff > 48000 && diff < (1<<32)-48000 {
		t.Fatalf("1 Hz LFO did not wrap to start after 1 s (drift %d)\n", diff)
	}
}

func TestLFOOffsetKeepsSpacing(t *testing.T) {
	o := LFO{Phase: 0x1000, Inc: 500}
	q := o.Offset(PhaseOffset180)
	for i := 0; i < 1000; i++ {
		o.Step(ShapeTriangle)
		q.Step(ShapeTriangle)
	}
	if q.Phase-o.Phase != PhaseOffset180 {
		t.Fatalf("phase spacing drifted: 0x%x\n", q.Phase-o.Phase)
	}
}
