package fixed

// OnePole is a first-order IIR filter with independent left/right
// state and a shared Q8.24 coefficient.
type OnePole struct {
	Alpha  Q24
	stateL int32
	stateR int32
}

// Lowpass advances the filter for one channel (0 = left) and returns
// the low-passed sample.
func (f *OnePole) Lowpass(x int32, ch int) int32 {
	s := f.state(ch)
	*s += int32((int64(x-*s) * int64(f.Alpha)) >> 24)
	return *s
}

// Highpass advances the filter for one channel and returns the
// high-passed sample: x minus the low-pass of x.
func (f *OnePole) Highpass(x int32, ch int) int32 {
	return x - f.Lowpass(x, ch)
}

// Reset zeroes the filter state for both channels.
func (f *OnePole) Reset() {
	f.stateL = 0
	f.stateR = 0
}

func (f *OnePole) state(ch int) *int32 {
	if ch == 0 {
		return &f.stateL
	}
	return &f.stateR
}

// LowpassStep is the free-function form for callers that keep their
// own state word, like the delay line's pre-write damping filter.
func LowpassStep(x int32, state *int32, alpha Q24) int32 {
	*state += int32((int64(x-*state) * int64(alpha)) >> 24)
	return *state
}

// HighpassStep is the high-pass counterpart of LowpassStep.
func HighpassStep(x int32, state *int32, alpha Q24) int32 {
	*state += int32((int64(x-*state) * int64(alpha)) >> 24)
	return x - *state
}

// BandPair cascades a high-pass into a low-pass to form a band-pass
// (or, subtracted from the input, a band-stop) with a Q8.24 gain.
type BandPair struct {
	HPF  OnePole
	LPF  OnePole
	Gain Q24
}

// Bandpass advances both stages for one channel.
func (f *BandPair) Bandpass(x int32, ch int) int32 {
	bp := f.LPF.Lowpass(f.HPF.Highpass(x, ch), ch)
	if f.Gain == Q24One {
		return bp
	}
	return Mul(bp, f.Gain)
}

// Bandstop returns the input minus the band-passed signal, scaled.
func (f *BandPair) Bandstop(x int32, ch int) int32 {
	bp := f.LPF.Lowpass(f.HPF.Highpass(x, ch), ch)
	return Mul(x-bp, f.Gain)
}

// Reset zeroes both stages.
func (f *BandPair) Reset() {
	f.HPF.Reset()
	f.LPF.Reset()
}

// LowpassQ16Step is a one-pole smoother in Q16.16 coefficient form:
// y = (1-c)*x + c*state. The modulation effects use this on their wet
// taps where the coefficient comes straight from a pot mapping.
func LowpassQ16Step(x int32, state *int32, coeff Q16) int32 {
	y := int32(((int64(Q16One-coeff) * int64(x)) + (int64(coeff) * int64(*state))) >> 16)
	*state = y
	return y
}

// AllpassQ16Step is a first-order allpass used to smear modulation
// taps without coloring them.
func AllpassQ16Step(x int32, state *int32, coeff Q16) int32 {
	y := *state + int32((int64(coeff)*int64(x-*state))>>16)
	*state = y + int32((int64(coeff)*int64(x-y))>>16)
	return y
}
