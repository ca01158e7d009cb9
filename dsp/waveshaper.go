package dsp

import (
	"github.com/pedalworks/multifx/base"
	"github.com/pedalworks/multifx/fixed"
)

// Waveshaper is the distortion/overdrive/fuzz family: input gain,
// rumble HPF, nonlinearity, fizz LPF, tonestack, volume. The three
// variants differ only in their clip curve and their fixed asymmetry
// factor; everything around the nonlinearity is shared.
type Waveshaper struct {
	id   base.EffectID
	clip func(x int32, asym fixed.Q24) int32
	asym fixed.Q24

	gain fixed.Q24
	tone toneStack
	hpf  fixed.OnePole
	lpf  fixed.OnePole

	maxVolume float64
}

// NewDistortion clips against an asymmetric diode threshold with a
// soft knee.
func NewDistortion() *Waveshaper {
	return &Waveshaper{
		id:        base.EffectDistortion,
		clip:      diodeClip,
		asym:      fixed.FromFloat(1.1),
		maxVolume: 26.0,
	}
}

// NewOverdrive uses a cubic soft clip, harder on the negative side.
func NewOverdrive() *Waveshaper {
	return &Waveshaper{
		id:        base.EffectOverdrive,
		clip:      cubicClip,
		asym:      fixed.FromFloat(1.55),
		maxVolume: 20.0,
	}
}

// NewFuzz clips hard against a low threshold with a square term that
// bites more on the negative side.
func NewFuzz() *Waveshaper {
	return &Waveshaper{
		id:        base.EffectFuzz,
		clip:      fuzzClip,
		asym:      fixed.FromFloat(1.25),
		maxVolume: 26.0,
	}
}

func (w *Waveshaper) Configure(ctx *Context) {
	w.gain = fixed.MapPotQ24(ctx.Pot(w.id, 0), base.PotMax,
		fixed.FromFloat(0.05), fixed.FromFloat(1.0))
	volume := fixed.MapPotQ24(ctx.Pot(w.id, 5), base.PotMax,
		fixed.FromFloat(0.5), fixed.FromFloat(w.maxVolume))
	w.tone.configure(ctx,
		ctx.Pot(w.id, 1), ctx.Pot(w.id, 2), ctx.Pot(w.id, 3), ctx.Pot(w.id, 4),
		400, 1000, volume)

	w.hpf.Alpha = fixed.AlphaFromHz(rumbleHz, ctx.SampleRate)
	w.lpf.Alpha = fixed.AlphaFromHz(fizzHz, ctx.SampleRate)
	w.hpf.Reset()
	w.lpf.Reset()
}

func (w *Waveshaper) Reset() {
	w.tone.reset()
	w.hpf.Reset()
	w.lpf.Reset()
}

func (w *Waveshaper) ProcessBlock(ctx *Context, l, r []int32) {
	stereo := ctx.Stereo()
	for i := range l {
		l[i] = w.processChannel(l[i], 0)
		if stereo {
			r[i] = w.processChannel(r[i], 1)
		} else {
			r[i] = l[i]
		}
	}
}

func (w *Waveshaper) processChannel(s int32, ch int) int32 {
	s = fixed.Scale(s, w.gain)
	s = w.hpf.Highpass(s, ch)
	s = w.clip(s, w.asym)
	s = w.lpf.Lowpass(s, ch)
	return w.tone.process(s, ch)
}

// diodeClip flattens against ±0.25 with a soft knee; the negative
// threshold is scaled by the asymmetry factor.
func diodeClip(x int32, asym fixed.Q24) int32 {
	const (
		thresh = 0x400000 // 0.25
		knee   = 0x040000 // 0.0625
	)
	negThresh := -fixed.Scale(thresh, asym)

	switch {
	case x > thresh+knee:
		x = thresh
	case x > thresh:
		x = thresh - ((x - thresh) >> 1)
	case x < negThresh-knee:
		x = negThresh
	case x < negThresh:
		x = negThresh + ((negThresh - x) >> 1)
	}
	return x * 6 // makeup gain
}

// cubicClip is y = (x - x^3/4) with the cubic term stretched by the
// asymmetry factor below zero.
func cubicClip(x int32, asym fixed.Q24) int32 {
	if x > int32(fixed.Q24One) {
		x = int32(fixed.Q24One)
	}
	if x < -int32(fixed.Q24One) {
		x = -int32(fixed.Q24One)
	}

	x2 := (x >> 12) * (x >> 12)
	x3 := (x2 >> 12) * (x >> 12)

	var cubic int32
	if x >= 0 {
		cubic = x3 / 4
	} else {
		cubic = int32((int64(x3) << 24) / (4 * int64(asym)))
	}
	return (x - cubic) * 3
}

// fuzzClip squashes against ±0.1875 with a square term, stronger on
// the negative side.
func fuzzClip(x int32, asym fixed.Q24) int32 {
	const thresh = 0x300000 // 0.1875
	if x > thresh {
		x = thresh
	}
	if x < -thresh {
		x = -thresh
	}

	x2 := (x >> 12) * (x >> 12)
	if x >= 0 {
		return (x - (x2 >> 13)) * 8
	}
	bias := (int64(x2) << 24) / int64(asym)
	return (x + int32(bias>>13)) * 8
}
