package fixed

import "math"

// Q24 is a Q8.24 fixed-point value, used for audio gains and filter
// coefficients.
type Q24 int32

// Q16 is a Q16.16 fixed-point value, used for control-rate ramps,
// LFO amplitudes and mix levels.
type Q16 uint32

const (
	Q24One Q24 = 0x01000000
	Q16One Q16 = 0x00010000

	// Samples are 24-bit signed, sign-extended in an int32.
	SampleMax = 0x7FFFFF
	SampleMin = -0x800000
)

// Clamp24 clamps a 32-bit value to the 24-bit signed sample range.
func Clamp24(x int32) int32 {
	if x > SampleMax {
		return SampleMax
	}
	if x < SampleMin {
		return SampleMin
	}
	return x
}

// Clamp24From64 clamps a 64-bit intermediate to the 24-bit sample range.
func Clamp24From64(x int64) int32 {
	if x > SampleMax {
		return SampleMax
	}
	if x < SampleMin {
		return SampleMin
	}
	return int32(x)
}

// Mul multiplies a sample by a Q8.24 coefficient, rounding to
// nearest. The intermediate product is 64-bit, the result saturates
// to the 24-bit sample range.
func Mul(x int32, g Q24) int32 {
	return Clamp24From64((int64(x)*int64(g) + 1<<23) >> 24)
}

// Scale multiplies a sample by a Q8.24 coefficient without
// saturating. For intermediate stages that clamp once at the end.
func Scale(x int32, g Q24) int32 {
	return int32((int64(x) * int64(g)) >> 24)
}

// MulQ24 multiplies two Q8.24 values without sample-range saturation.
// Used for coefficient products where the result is itself a gain.
func MulQ24(a, b Q24) Q24 {
	return Q24((int64(a) * int64(b)) >> 24)
}

// MulQ16 multiplies a sample by a Q16.16 amplitude.
func MulQ16(x int32, g Q16) int32 {
	return int32((int64(x) * int64(g)) >> 16)
}

// DivQ24 divides two Q8.24 values. A zero denominator yields unity.
func DivQ24(num, den Q24) Q24 {
	if den == 0 {
		return Q24One
	}
	return Q24((int64(num) << 24) / int64(den))
}

// Lerp interpolates between two samples with a Q16.16 fraction.
func Lerp(a, b int32, frac Q16) int32 {
	return a + int32((int64(b-a)*int64(frac))>>16)
}

// CubicQ16 performs 4-point Catmull-Rom interpolation with a Q16.16
// fraction, for fractional-delay reads in the modulation effects. The
// result is not clamped; callers clamp after their final mix stage.
func CubicQ16(yM1, y0, y1, y2 int32, frac Q16) int32 {
	t := int64(frac)
	t2 := (t * t) >> 16
	t3 := (t2 * t) >> 16

	a0 := (-t3 + 2*t2 - t) >> 1
	a1 := (3*t3 - 5*t2 + 2*int64(Q16One)) >> 1
	a2 := (-3*t3 + 4*t2 + t) >> 1
	a3 := (t3 - t2) >> 1

	r := (a0 * int64(yM1)) >> 16
	r += (a1 * int64(y0)) >> 16
	r += (a2 * int64(y1)) >> 16
	r += (a3 * int64(y2)) >> 16
	return int32(r)
}

// FromFloat converts a float to Q8.24.
func FromFloat(x float64) Q24 {
	return Q24(x * float64(Q24One))
}

// ToFloat converts a Q8.24 value to a float.
func ToFloat(x Q24) float64 {
	return float64(x) / float64(Q24One)
}

// Q16FromFloat converts a float in [0,n] to Q16.16.
func Q16FromFloat(x float64) Q16 {
	if x < 0 {
		return 0
	}
	return Q16(x * float64(Q16One))
}

// Q16ToFloat converts a Q16.16 value to a float.
func Q16ToFloat(x Q16) float64 {
	return float64(x) / float64(Q16One)
}

// FromDB converts a decibel gain to a Q8.24 linear factor.
func FromDB(db float64) Q24 {
	return FromFloat(math.Pow(10, db/20.0))
}

// AlphaFromHz derives a one-pole coefficient from a corner frequency.
// Approximation: alpha = 2*sin(pi*fc/fs). Computed on parameter reload
// only, never per sample.
func AlphaFromHz(fc, fs int) Q24 {
	if fc >= fs/2 {
		return Q24One - 1
	}
	coeff := 2.0 * math.Sin(math.Pi*float64(fc)/float64(fs))
	return Q24(coeff*float64(Q24One) + 0.5)
}

// CoeffFromMs derives a smoothing coefficient from a time constant:
// a = exp(-1 / (ms * 0.001 * fs)). Used by envelope followers.
func CoeffFromMs(ms float64, fs int) Q24 {
	return FromFloat(math.Exp(-1.0 / (ms * 0.001 * float64(fs))))
}
