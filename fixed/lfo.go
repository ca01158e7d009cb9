package fixed

// LFO shapes. Triangle is the raw folded phase; TriangleSmooth runs it
// through a smoothstep; Sine is a parabolic approximation, cheap and
// close enough for modulation duty.
const (
	ShapeTriangle = iota
	ShapeTriangleSmooth
	ShapeSine
)

// LFO is a 32-bit phase-accumulator oscillator. Phase wraps naturally
// on uint32 overflow; one full period is 2^32 increments.
type LFO struct {
	Phase uint32
	Inc   uint32
}

// SetRate sets the oscillator frequency.
func (o *LFO) SetRate(hz float64, sampleRate int) {
	o.Inc = uint32((hz / float64(sampleRate)) * 4294967296.0)
}

// Step advances the phase by one sample and returns the shaped Q16.16
// amplitude in [0, 65535].
func (o *LFO) Step(shape int) Q16 {
	o.Phase += o.Inc
	return ShapeQ16(o.Phase, shape)
}

// Offset returns a copy of the oscillator with its phase shifted.
// phaseDelta is in accumulator units: 0x80000000 is half a period.
func (o *LFO) Offset(phaseDelta uint32) LFO {
	return LFO{Phase: o.Phase + phaseDelta, Inc: o.Inc}
}

// Common phase offsets for multi-tap modulation.
const (
	PhaseOffset120 = 0x55555555
	PhaseOffset180 = 0x80000000
	PhaseOffset240 = 0xAAAAAAAA
)

// ShapeQ16 folds a 32-bit phase into a unipolar Q16.16 amplitude with
// the requested shape.
func ShapeQ16(phase uint32, shape int) Q16 {
	folded := (phase >> 15) & 0x1FFFF
	if folded >= 65536 {
		folded = 131071 - folded
	}

	switch shape {
	case ShapeTriangleSmooth:
		// smoothstep: y = 3x^2 - 2x^3
		x := uint64(folded)
		x2 := (x * x) >> 16
		x3 := (x2 * x) >> 16
		y := 3*x2 - 2*x3
		if y > 65535 {
			y = 65535
		}
		return Q16(y)
	case ShapeSine:
		// parabolic: y = 1 - 4(x - 0.5)^2
		x := int64(folded) - 32768
		x2 := (x * x) >> 15
		y := 65535 - x2
		if y < 0 {
			y = 0
		}
		return Q16(y)
	default:
		return Q16(folded)
	}
}
